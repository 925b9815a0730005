package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/sketchkit/sketchkit/check"
	"github.com/sketchkit/sketchkit/filters"
	"github.com/sketchkit/sketchkit/settings"
	"github.com/spf13/cobra"
)

type checkOptions struct {
	existing []string
	file     string
}

func newCheckCmd(root *rootOptions) *cobra.Command {
	opts := &checkOptions{}
	cmd := &cobra.Command{
		Use:   "check [flags] <item>...",
		Short: "Classify items as unique or already used",
		Long: `Seeds a Bloom filter with the --existing items, then classifies every
candidate in order. A candidate is "already used" when the filter probably
contains it, otherwise it is "unique" and is added so later duplicates are
caught. Candidates come from the arguments and from --file, one per line.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, root, opts, args)
		},
	}
	cmd.Flags().StringSliceVar(&opts.existing, "existing", nil, "items already in use")
	cmd.Flags().StringVar(&opts.file, "file", "", "file of candidate items, one per line")
	return cmd
}

const maxCandidateBytes = 1024 * 1024

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	lines := []string{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxCandidateBytes)
	for scanner.Scan() {
		if line := strings.TrimRight(scanner.Text(), "\r"); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}

func newFilter(cmd *cobra.Command, root *rootOptions) (check.Filter, func(), error) {
	ctx := cmd.Context()
	s := root.settings.Bloom
	client, err := root.redisClient(ctx)
	if err != nil {
		return nil, nil, err
	}
	if client == nil {
		var bloom *filters.BloomFilter
		if s.ExpectedItems > 0 && s.ErrorRate > 0 {
			bloom, err = filters.NewBloomFilterWithParameters(s.ExpectedItems, s.ErrorRate)
		} else {
			bloom, err = filters.NewBloomFilter(s.Size, s.NumHashes)
		}
		if err != nil {
			return nil, nil, err
		}
		settings.Logger.Debug().Uint("size", bloom.Size()).Uint("num_hashes", bloom.NumHashes()).Msg("created in-memory bloom filter")
		return check.Memory(bloom), func() {}, nil
	}
	var bloom *filters.BloomFilterRedis
	if s.ExpectedItems > 0 && s.ErrorRate > 0 {
		bloom, err = filters.NewBloomFilterRedisWithParameters(ctx, client, s.ExpectedItems, s.ErrorRate)
	} else {
		bloom, err = filters.NewBloomFilterRedis(ctx, client, s.Size, s.NumHashes)
	}
	if err != nil {
		client.Close()
		return nil, nil, err
	}
	settings.Logger.Debug().Uint("size", bloom.Size()).Uint("num_hashes", bloom.NumHashes()).Str("metadata_key", bloom.MetadataKey()).Msg("created redis bloom filter")
	cleanup := func() {
		if err := bloom.Delete(ctx); err != nil {
			settings.Logger.Warn().Err(err).Msg("could not delete bloom filter from redis")
		}
		client.Close()
	}
	return bloom, cleanup, nil
}

func runCheck(cmd *cobra.Command, root *rootOptions, opts *checkOptions, args []string) error {
	candidates := append([]string{}, args...)
	if opts.file != "" {
		lines, err := readLines(opts.file)
		if err != nil {
			return fmt.Errorf("sketchkit: reading candidates: %w", err)
		}
		candidates = append(candidates, lines...)
	}
	if len(candidates) == 0 {
		return fmt.Errorf("sketchkit: no items to check")
	}

	filter, cleanup, err := newFilter(cmd, root)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	err = check.Seed(ctx, filter, opts.existing)
	if err != nil {
		return err
	}
	report, err := check.Run(ctx, filter, check.Strings(candidates))
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, res := range report {
		fmt.Fprintf(out, "Password '%v' - %s.\n", res.Item, res.Status)
	}
	settings.Logger.Info().
		Int("items", len(report)).
		Int("unique", report.Count(check.Unique)).
		Int("already_used", report.Count(check.AlreadyUsed)).
		Msg("uniqueness check complete")
	return nil
}
