package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dyluth/shoal/internal/config"
	"github.com/spf13/cobra"
)

var versionString = "dev"

// globalOptions are the configuration source flags shared by every command.
type globalOptions struct {
	configFile string
	defines    []string
	container  string
	redisURL   string
	instance   string
}

// NewRootCmd builds the command tree. Each call returns independent commands and flags.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "shoal",
		Short: "Shoal - device pool policy resolution for parallel test runs",
		Long: `Shoal turns operator configuration into the device pool policy used by a
parallel Android test-execution platform.

Configuration is read from a YAML file, Docker container labels, a Redis hash
and -D key=value flags, later sources overriding earlier ones. Exactly one
pooling mode is resolved: serial-based pools, one computed pool, a pool per
device, or a single shared pool.`,
		Version: versionString,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		FParseErrWhitelist: cobra.FParseErrWhitelist{},
		SilenceErrors:      true,
		SilenceUsage:       true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", config.DefaultFile, "YAML configuration file")
	flags.StringArrayVarP(&opts.defines, "define", "D", nil, "Set a configuration key (key=value, repeatable)")
	flags.StringVar(&opts.container, "container", "", "Read shoal.* labels from this Docker container")
	flags.StringVar(&opts.redisURL, "redis-url", "", "Redis URL for the configuration hash and policy hand-off")
	flags.StringVarP(&opts.instance, "instance", "n", "", "Instance name namespacing Redis keys")

	rootCmd.AddCommand(
		newResolveCmd(opts),
		newAssignCmd(opts),
		newStrategiesCmd(),
		newPublishCmd(opts),
		newWatchCmd(opts),
		newInitCmd(),
	)

	return rootCmd
}

// Execute runs the CLI until it finishes or is interrupted. It is called by main.main().
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	versionString = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}
