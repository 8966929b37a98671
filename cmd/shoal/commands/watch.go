package commands

import (
	"github.com/dyluth/shoal/internal/format"
	"github.com/dyluth/shoal/internal/printer"
	"github.com/spf13/cobra"
)

func newWatchCmd(opts *globalOptions) *cobra.Command {
	var (
		output string
		count  int
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print policies as they are published",
		Long: `Watch subscribes to the instance's policy events channel and prints every
policy published after it starts. It runs until interrupted, or until --count
policies were received.

Examples:
  shoal watch --instance device-lab
  shoal watch -o json --count 1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer redirectPrinter(cmd)()
			ctx := cmd.Context()

			outputFormat, err := format.ParseOutputFormat(output)
			if err != nil {
				return printer.Error("invalid output format", err.Error(), []string{"Valid formats: text, json, yaml"})
			}

			s, err := opts.load(ctx, cmd, true)
			if err != nil {
				return err
			}
			defer s.Close()

			client, err := s.policyClient(ctx)
			if err != nil {
				return err
			}
			defer client.Close()

			sub, err := client.SubscribePolicies(ctx, s.registry)
			if err != nil {
				return printer.Error("failed to subscribe", err.Error(), nil)
			}
			defer sub.Close()

			printer.Info("Watching policies for instance '%s'...\n", s.instance)

			received := 0
			for {
				select {
				case <-ctx.Done():
					return nil
				case err, ok := <-sub.Errors():
					if !ok {
						return nil
					}
					printer.Warning("%v\n", err)
				case p, ok := <-sub.Events():
					if !ok {
						return nil
					}
					if err := format.FormatPolicy(cmd.OutOrStdout(), p, outputFormat); err != nil {
						return err
					}
					received++
					if count > 0 && received >= count {
						return nil
					}
				}
			}
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", string(format.OutputFormatText), "Output format: text, json or yaml")
	cmd.Flags().IntVar(&count, "count", 0, "Exit after this many policies (0 runs until interrupted)")
	return cmd
}
