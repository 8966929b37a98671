package commands

import (
	"github.com/dyluth/shoal/internal/printer"
	"github.com/dyluth/shoal/internal/scaffold"
	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [DIR]",
		Short: "Write a starter shoal.yml and example device list",
		Long: `Initialize writes a commented shoal.yml and an example devices.yml into DIR
(the current directory by default).

Use --force to overwrite existing files.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer redirectPrinter(cmd)()

			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}

			if err := scaffold.Initialize(dir, force); err != nil {
				return printer.ErrorWithContext(
					"initialization failed",
					err.Error(),
					map[string]string{"directory": dir},
					nil,
				)
			}

			printer.Success("Initialized shoal configuration\n")
			for _, name := range scaffold.CreatedFiles() {
				printer.Info("  ✓ %s\n", name)
			}
			printer.Info("\nNext steps:\n  1. Choose a pooling mode in %s\n  2. Preview it with 'shoal assign --devices %s'\n",
				scaffold.ConfigFile, scaffold.DevicesFile)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")
	return cmd
}
