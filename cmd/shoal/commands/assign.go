package commands

import (
	"fmt"
	"os"

	"github.com/dyluth/shoal/internal/format"
	"github.com/dyluth/shoal/internal/printer"
	"github.com/dyluth/shoal/pkg/policy"
	"github.com/dyluth/shoal/pkg/pooling"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newAssignCmd(opts *globalOptions) *cobra.Command {
	var (
		devicesFile string
		output      string
		latest      bool
	)

	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Partition devices into pools",
		Long: `Assign resolves the pooling policy and shows which pool every device joins.

Devices are read from a YAML list:

  - serial: 01234567
    api_level: 26
    smallest_width_dp: 600
    density: 320
    tablet: true

Excluded serials are dropped first, then non-tablets when shoal.pool.tablet
is set. With --latest the policy last published to Redis is used instead of
resolving the local configuration.

Examples:
  shoal assign --devices devices.yml -D shoal.pool.computed.sw=phone=0,tablet=600
  shoal assign --devices devices.yml --latest --redis-url redis://localhost:6379 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer redirectPrinter(cmd)()
			ctx := cmd.Context()

			outputFormat, err := format.ParseOutputFormat(output)
			if err != nil {
				return printer.Error("invalid output format", err.Error(), []string{"Valid formats: text, json, yaml"})
			}

			if devicesFile == "" {
				return printer.Error(
					"no devices given",
					"The --devices flag is required.",
					[]string{"List the connected devices in a YAML file:\n  shoal assign --devices devices.yml"},
				)
			}

			devices, err := readDevices(devicesFile)
			if err != nil {
				return printer.ErrorWithContext(
					"cannot read devices",
					err.Error(),
					map[string]string{"file": devicesFile},
					[]string{"Devices are a YAML list of entries with at least a serial"},
				)
			}

			s, err := opts.load(ctx, cmd, latest)
			if err != nil {
				return err
			}
			defer s.Close()

			var p *policy.Policy
			if latest {
				client, err := s.policyClient(ctx)
				if err != nil {
					return err
				}
				defer client.Close()

				p, err = client.LatestPolicy(ctx, s.registry)
				if policy.IsNotFound(err) {
					return printer.ErrorWithContext(
						"no published policy",
						"Nothing has been published for this instance yet.",
						map[string]string{"instance": s.instance},
						[]string{"Publish one first:\n  shoal publish"},
					)
				}
				if err != nil {
					return printer.Error("failed to read latest policy", err.Error(), nil)
				}
			} else if p, err = s.resolve(); err != nil {
				return err
			}

			return format.FormatPools(cmd.OutOrStdout(), p.Assign(devices), outputFormat)
		},
	}

	cmd.Flags().StringVar(&devicesFile, "devices", "", "YAML file listing the connected devices")
	cmd.Flags().StringVarP(&output, "output", "o", string(format.OutputFormatText), "Output format: text, json or yaml")
	cmd.Flags().BoolVar(&latest, "latest", false, "Use the policy last published to Redis")

	return cmd
}

// readDevices loads a YAML device list. Every device needs a unique serial.
func readDevices(path string) ([]pooling.Device, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read devices: %w", err)
	}

	var devices []pooling.Device
	if err := yaml.Unmarshal(data, &devices); err != nil {
		return nil, fmt.Errorf("failed to parse devices: %w", err)
	}

	seen := make(map[string]bool, len(devices))
	for i, d := range devices {
		if d.Serial == "" {
			return nil, fmt.Errorf("device %d has no serial", i+1)
		}
		if seen[d.Serial] {
			return nil, fmt.Errorf("device serial '%s' listed more than once", d.Serial)
		}
		seen[d.Serial] = true
	}
	return devices, nil
}
