// Package format renders policies, pool assignments and strategies for the CLI.
package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dyluth/shoal/pkg/policy"
	"github.com/dyluth/shoal/pkg/pooling"
	"gopkg.in/yaml.v3"
)

// OutputFormat selects how results are written.
type OutputFormat string

const (
	// OutputFormatText is a human-readable summary
	OutputFormatText OutputFormat = "text"

	// OutputFormatJSON is pretty-printed JSON
	OutputFormatJSON OutputFormat = "json"

	// OutputFormatYAML is YAML with two-space indentation
	OutputFormatYAML OutputFormat = "yaml"
)

// ParseOutputFormat validates a user-supplied format name.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case OutputFormatText, OutputFormatJSON, OutputFormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format: %s (must be 'text', 'json', or 'yaml')", s)
	}
}

// FormatPolicy writes a resolved policy.
func FormatPolicy(w io.Writer, p *policy.Policy, f OutputFormat) error {
	switch f {
	case OutputFormatJSON:
		return writeJSON(w, p.ToDocument())
	case OutputFormatYAML:
		return writeYAML(w, p.ToDocument())
	}

	fmt.Fprintf(w, "Policy %s (mode: %s)\n\n", p.ID, p.Mode)
	fmt.Fprintf(w, "  %-18s %t\n", "Tablet only:", p.TabletOnly)
	fmt.Fprintf(w, "  %-18s %t\n", "Pool per device:", p.PoolPerDevice)
	fmt.Fprintf(w, "  %-18s %s\n", "Excluded serials:", orNone(strings.Join(p.ExcludedSerials, ", ")))
	fmt.Fprintf(w, "  %-18s %s\n", "Test filter:", orNone(p.FilterPattern))
	fmt.Fprintf(w, "  %-18s %s\n", "Title:", orNone(p.Title))
	fmt.Fprintf(w, "  %-18s %s\n", "Subtitle:", orNone(p.Subtitle))

	switch p.Mode {
	case policy.ModeComputed:
		fmt.Fprintf(w, "  %-18s %s\n", "Computed pools:", p.Computed)
	case policy.ModeSerial:
		fmt.Fprintf(w, "  %-18s\n", "Serial pools:")
		for _, name := range p.SerialPools.Names() {
			fmt.Fprintf(w, "    %-16s %s\n", name, orNone(strings.Join(p.SerialPools.Serials(name), ", ")))
		}
	}
	return nil
}

// FormatPools writes a device-to-pool assignment.
func FormatPools(w io.Writer, pools []policy.Pool, f OutputFormat) error {
	if pools == nil {
		pools = []policy.Pool{}
	}
	switch f {
	case OutputFormatJSON:
		return writeJSON(w, pools)
	case OutputFormatYAML:
		return writeYAML(w, pools)
	}

	if len(pools) == 0 {
		fmt.Fprintf(w, "No eligible devices\n")
		return nil
	}

	fmt.Fprintf(w, "%-20s %-7s %s\n", "POOL", "DEVICES", "SERIALS")
	fmt.Fprintf(w, "%-20s %-7s %s\n", "--------------------", "-------", "----------------------------------------")

	devices := 0
	for _, pool := range pools {
		fmt.Fprintf(w, "%-20s %-7d %s\n", pool.Name, len(pool.Serials), strings.Join(pool.Serials, ", "))
		devices += len(pool.Serials)
	}

	fmt.Fprintf(w, "\n%s, %s\n", plural(len(pools), "pool"), plural(devices, "device"))
	return nil
}

// FormatStrategies lists the registered strategies and their help text.
func FormatStrategies(w io.Writer, reg *pooling.Registry) {
	strategies := reg.All()
	if len(strategies) == 0 {
		fmt.Fprintf(w, "No strategies registered\n")
		return
	}

	fmt.Fprintf(w, "%-10s %s\n", "STRATEGY", "DESCRIPTION")
	for _, s := range strategies {
		fmt.Fprintf(w, "%-10s %s\n", s.BaseName(), s.Help())
	}
	fmt.Fprintf(w, "\nConfigure one with -D shoal.pool.computed.STRATEGY=(PoolName=LowerBound','?)*\n")
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
		return fmt.Errorf("failed to write JSON output: %w", err)
	}
	return nil
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write YAML output: %w", err)
	}
	return enc.Close()
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
