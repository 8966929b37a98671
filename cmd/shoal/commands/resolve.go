package commands

import (
	"github.com/dyluth/shoal/internal/format"
	"github.com/dyluth/shoal/internal/printer"
	"github.com/spf13/cobra"
)

func newResolveCmd(opts *globalOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve configuration into a pooling policy and print it",
		Long: `Resolve reads every configuration source, selects the single active pooling
mode and prints the resulting policy.

Hints about unset keys are written to stderr, so -o json and -o yaml output
can be piped safely.

Examples:
  # Pool devices by API level
  shoal resolve -D shoal.pool.computed.api=legacy=1,modern=26

  # Explicit serial-based pools as JSON
  shoal resolve -D shoal.pool.serial.hdpi=S1,S2 -D shoal.pool.serial.ldpi=S3 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer redirectPrinter(cmd)()

			outputFormat, err := format.ParseOutputFormat(output)
			if err != nil {
				return printer.Error("invalid output format", err.Error(), []string{"Valid formats: text, json, yaml"})
			}

			s, err := opts.load(cmd.Context(), cmd, false)
			if err != nil {
				return err
			}
			defer s.Close()

			p, err := s.resolve()
			if err != nil {
				return err
			}

			return format.FormatPolicy(cmd.OutOrStdout(), p, outputFormat)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", string(format.OutputFormatText), "Output format: text, json or yaml")
	return cmd
}
