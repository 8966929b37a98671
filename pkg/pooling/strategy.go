package pooling

import "fmt"

// Device carries the characteristics strategies measure.
type Device struct {
	Serial          string `json:"serial" yaml:"serial"`
	Model           string `json:"model,omitempty" yaml:"model,omitempty"`
	APILevel        int    `json:"api_level,omitempty" yaml:"api_level,omitempty"`
	SmallestWidthDp int    `json:"smallest_width_dp,omitempty" yaml:"smallest_width_dp,omitempty"`
	Density         int    `json:"density,omitempty" yaml:"density,omitempty"`
	Tablet          bool   `json:"tablet,omitempty" yaml:"tablet,omitempty"`
}

// Strategy measures one numeric device characteristic used to compute pools.
// BaseName is matched against the suffix of a computed pool configuration key.
type Strategy interface {
	BaseName() string
	Help() string
	Measure(d Device) int
}

// MeasureFunc adapts a function into a Strategy.
type MeasureFunc struct {
	Name        string
	Description string
	Fn          func(d Device) int
}

func (m MeasureFunc) BaseName() string     { return m.Name }
func (m MeasureFunc) Help() string         { return m.Description }
func (m MeasureFunc) Measure(d Device) int { return m.Fn(d) }

// Built-in strategies
var (
	APILevel = MeasureFunc{
		Name:        "api",
		Description: "pools by Android API level, e.g. pre-lollipop=1,lollipop=21,modern=26",
		Fn:          func(d Device) int { return d.APILevel },
	}

	SmallestWidth = MeasureFunc{
		Name:        "sw",
		Description: "pools by smallest screen width in dp, e.g. phone=0,tablet=600",
		Fn:          func(d Device) int { return d.SmallestWidthDp },
	}

	Density = MeasureFunc{
		Name:        "dpi",
		Description: "pools by screen density in dpi, e.g. ldpi=0,mdpi=160,hdpi=240,xhdpi=320",
		Fn:          func(d Device) int { return d.Density },
	}
)

// Registry is an ordered collection of strategies keyed by BaseName.
type Registry struct {
	strategies []Strategy
}

// NewRegistry creates a registry preserving the given order.
// Returns an error if two strategies share a BaseName or a BaseName is empty.
func NewRegistry(strategies ...Strategy) (*Registry, error) {
	seen := make(map[string]bool, len(strategies))
	for _, s := range strategies {
		name := s.BaseName()
		if name == "" {
			return nil, fmt.Errorf("strategy base name cannot be empty")
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate strategy base name '%s'", name)
		}
		seen[name] = true
	}

	return &Registry{strategies: append([]Strategy(nil), strategies...)}, nil
}

// DefaultRegistry returns the built-in strategies.
func DefaultRegistry() *Registry {
	return &Registry{strategies: []Strategy{APILevel, SmallestWidth, Density}}
}

// Lookup finds a strategy by exact BaseName. A nil registry finds nothing.
func (r *Registry) Lookup(name string) (Strategy, bool) {
	if r == nil {
		return nil, false
	}
	for _, s := range r.strategies {
		if s.BaseName() == name {
			return s, true
		}
	}
	return nil, false
}

// All returns the strategies in registration order.
func (r *Registry) All() []Strategy {
	if r == nil {
		return nil
	}
	return append([]Strategy(nil), r.strategies...)
}

// Names returns every BaseName in registration order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, len(r.strategies))
	for i, s := range r.strategies {
		names[i] = s.BaseName()
	}
	return names
}
