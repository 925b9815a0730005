/*
Package cli holds the sketchkit commands: check classifies candidate passwords
with a Bloom filter, compare benchmarks exact vs HyperLogLog distinct counts
over an access log.
*/
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/sketchkit/sketchkit"
	"github.com/sketchkit/sketchkit/count"
	"github.com/sketchkit/sketchkit/hash"
	"github.com/sketchkit/sketchkit/settings"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	backend    string
	logLevel   string
	settings   *settings.SKSettings
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:   "sketchkit",
		Short: "Probabilistic membership and distinct counting",
		Long: `sketchkit flags previously seen values with a Bloom filter and estimates
distinct counts with HyperLogLog.

The check command classifies candidate values (e.g. passwords) as unique or
already used. The compare command counts distinct client addresses in a
JSON-lines access log both exactly and with HyperLogLog and prints both results
with their timings.
`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&opts.backend, "backend", "", "memory or redis (overrides config)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (overrides config)")
	rootCmd.AddCommand(newCheckCmd(opts), newCompareCmd(opts))
	return rootCmd
}

func (opts *rootOptions) load(cmd *cobra.Command) error {
	s, err := settings.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.backend != "" {
		s.Backend = opts.backend
	}
	if opts.logLevel != "" {
		s.LogLevel = opts.logLevel
	}
	err = s.Validate()
	if err != nil {
		return err
	}
	_, err = settings.SetupLogger(s, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	opts.settings = s
	return nil
}

// redisClient connects to the configured Redis server, nil for the memory backend
func (opts *rootOptions) redisClient(ctx context.Context) (*redis.Client, error) {
	if opts.settings.Backend != "redis" {
		return nil, nil
	}
	client, err := sketchkit.NewRedisClientFromURI(opts.settings.Redis.URL)
	if err != nil {
		return nil, err
	}
	err = client.Ping(ctx).Err()
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("sketchkit: connecting to redis: %w", err)
	}
	return client, nil
}

func (opts *rootOptions) hllOptions() []count.Option {
	switch opts.settings.HLL.Hash {
	case "xxhash":
		return []count.Option{count.WithHasher(hash.XXHash{})}
	case "metro":
		return []count.Option{count.WithHasher(hash.Metro{})}
	}
	return nil
}

// Execute runs the root command with the process arguments.
// This is called by main.main().
func Execute() {
	err := NewRootCmd().Execute()
	if err != nil {
		os.Exit(1)
	}
}
