package commands

import (
	"github.com/dyluth/shoal/internal/format"
	"github.com/dyluth/shoal/pkg/pooling"
	"github.com/spf13/cobra"
)

func newStrategiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "List the strategies available to computed pools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format.FormatStrategies(cmd.OutOrStdout(), pooling.DefaultRegistry())
			return nil
		},
	}
}
