package commands

import (
	"fmt"

	"github.com/dyluth/shoal/internal/printer"
	"github.com/spf13/cobra"
)

func newPublishCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "publish",
		Short: "Resolve the policy and hand it to the execution engine through Redis",
		Long: `Publish resolves the pooling policy, stores it under the instance's namespace,
marks it as the latest policy and announces it on the policy events channel.

The new policy ID is written to stdout.

Examples:
  shoal publish --instance device-lab --redis-url redis://redis:6379
  shoal publish --container test-runner`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer redirectPrinter(cmd)()
			ctx := cmd.Context()

			s, err := opts.load(ctx, cmd, true)
			if err != nil {
				return err
			}
			defer s.Close()

			p, err := s.resolve()
			if err != nil {
				return err
			}

			printer.Step("Publishing policy to %s (instance '%s')\n", s.redisOpts.Addr, s.instance)
			client, err := s.policyClient(ctx)
			if err != nil {
				return err
			}
			defer client.Close()

			if err := client.PublishPolicy(ctx, p); err != nil {
				return printer.ErrorWithContext(
					"failed to publish policy",
					err.Error(),
					map[string]string{"instance": s.instance, "policy": p.ID},
					nil,
				)
			}

			printer.Success("Published policy %s (mode: %s) to instance '%s'\n", p.ID, p.Mode, s.instance)
			fmt.Fprintln(cmd.OutOrStdout(), p.ID)
			return nil
		},
	}
}
