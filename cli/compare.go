package cli

import (
	"fmt"

	"github.com/sketchkit/sketchkit/compare"
	"github.com/sketchkit/sketchkit/settings"
	"github.com/spf13/cobra"
)

type compareOptions struct {
	logFile   string
	field     string
	precision uint8
	json      bool
}

func newCompareCmd(root *rootOptions) *cobra.Command {
	opts := &compareOptions{}
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare exact and HyperLogLog distinct counts of log addresses",
		Long: `Loads the client addresses of a JSON-lines access log, counts the distinct
ones exactly with a set and approximately with HyperLogLog, and prints both
counts and timings as a table.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(cmd, root, opts)
		},
	}
	cmd.Flags().StringVar(&opts.logFile, "log-file", "", "access log (overrides config)")
	cmd.Flags().StringVar(&opts.field, "field", "", "address field of each record (overrides config)")
	cmd.Flags().Uint8Var(&opts.precision, "precision", 0, "HyperLogLog precision (overrides config)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the result as JSON instead of a table")
	return cmd
}

func runCompare(cmd *cobra.Command, root *rootOptions, opts *compareOptions) error {
	s := root.settings
	if opts.logFile != "" {
		s.Compare.LogFile = opts.logFile
	}
	if opts.field != "" {
		s.Compare.Field = opts.field
	}
	if opts.precision != 0 {
		s.HLL.Precision = opts.precision
	}

	ips, err := compare.LoadIPsFile(s.Compare.LogFile, s.Compare.Field)
	if err != nil {
		return err
	}
	settings.Logger.Debug().Str("file", s.Compare.LogFile).Int("addresses", len(ips)).Msg("loaded addresses")

	counter := compare.HLLCounter(s.HLL.Precision, root.hllOptions()...)
	client, err := root.redisClient(cmd.Context())
	if err != nil {
		return err
	}
	if client != nil {
		defer client.Close()
		counter = compare.HLLRedisCounter(cmd.Context(), client, s.HLL.Precision, root.hllOptions()...)
	}

	result, err := compare.Run(ips, s.HLL.Precision, counter)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if opts.json {
		err = compare.WriteJSON(out, result)
	} else {
		fmt.Fprint(out, "\nResults comparison:\n\n")
		err = compare.Render(out, result)
		fmt.Fprintln(out)
	}
	if err != nil {
		return err
	}
	settings.Logger.Info().
		Int("addresses", result.Items).
		Int("exact", result.Exact).
		Float64("approx", result.Approx).
		Float64("relative_error", result.RelativeError()).
		Msg("comparison complete")
	return nil
}
