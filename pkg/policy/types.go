// Package policy defines the resolved runtime policy handed to the test-execution
// engine, the device-to-pool assignment it implies, and the Redis schema used to
// hand it off.
//
// A Policy is built once per process invocation and is never mutated afterwards,
// so it can be shared freely between device workers.
package policy

import (
	"fmt"

	"github.com/dyluth/shoal/pkg/pooling"
)

// Mode is the single active pooling mode of a policy.
type Mode string

const (
	// ModeNone means no pooling was configured; the engine runs every device in one pool
	ModeNone Mode = "none"

	// ModePerDevice creates one pool per connected device
	ModePerDevice Mode = "per-device"

	// ModeSerial uses operator-declared serial-based pools
	ModeSerial Mode = "serial"

	// ModeComputed buckets devices with a strategy and sorted thresholds
	ModeComputed Mode = "computed"
)

// Validate checks that the mode is one of the known values.
func (m Mode) Validate() error {
	switch m {
	case ModeNone, ModePerDevice, ModeSerial, ModeComputed:
		return nil
	default:
		return fmt.Errorf("invalid pooling mode: %s (must be 'none', 'per-device', 'serial', or 'computed')", m)
	}
}

// Policy is the resolved runtime policy.
// Consumers must treat every field as read-only.
type Policy struct {
	ID              string                         // UUID of this resolution pass
	Mode            Mode                           // Active pooling mode
	TabletOnly      bool                           // Only tablets take part in the run
	PoolPerDevice   bool                           // Resolved per-device flag (defaults to true)
	ExcludedSerials []string                       // Devices never used, in declaration order
	SerialPools     *pooling.SerialBasedPools      // Set when Mode is ModeSerial
	Computed        *pooling.ComputedPoolsSelector // Set when Mode is ModeComputed
	FilterPattern   string                         // Test class filter regex, passed through
	Title           string                         // Report title, optional
	Subtitle        string                         // Report subtitle, optional
	CreatedAtMs     int64                          // Unix timestamp in milliseconds
}

// Validate checks that the policy's mode agrees with the structures it carries.
func (p *Policy) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("policy ID is required")
	}
	if err := p.Mode.Validate(); err != nil {
		return err
	}

	switch p.Mode {
	case ModeSerial:
		if p.SerialPools.IsEmpty() {
			return fmt.Errorf("mode 'serial' requires at least one serial-based pool")
		}
		if p.Computed != nil {
			return fmt.Errorf("mode 'serial' cannot carry a computed pools selector")
		}
	case ModeComputed:
		if p.Computed == nil {
			return fmt.Errorf("mode 'computed' requires a computed pools selector")
		}
		if !p.SerialPools.IsEmpty() {
			return fmt.Errorf("mode 'computed' cannot carry serial-based pools")
		}
	default:
		if p.Computed != nil || !p.SerialPools.IsEmpty() {
			return fmt.Errorf("mode '%s' cannot carry serial-based or computed pools", p.Mode)
		}
	}

	return nil
}

// IsExcluded reports whether the serial was excluded by the operator.
func (p *Policy) IsExcluded(serial string) bool {
	for _, s := range p.ExcludedSerials {
		if s == serial {
			return true
		}
	}
	return false
}

// Pool is a named group of devices produced by Assign.
type Pool struct {
	Name    string   `json:"name" yaml:"name"`
	Serials []string `json:"serials" yaml:"serials"`
}
