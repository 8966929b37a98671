package pooling

import (
	"slices"
	"strings"
)

// SerialBasedPools maps operator-declared pool names to device serials.
// Pools keep their declaration order. A serial may appear in more than one pool.
type SerialBasedPools struct {
	names []string
	pools map[string][]string
}

// SerialBasedPoolsBuilder accumulates pools one configuration key at a time.
type SerialBasedPoolsBuilder struct {
	pools SerialBasedPools
}

// NewSerialBasedPoolsBuilder returns an empty builder.
func NewSerialBasedPoolsBuilder() *SerialBasedPoolsBuilder {
	return &SerialBasedPoolsBuilder{
		pools: SerialBasedPools{pools: make(map[string][]string)},
	}
}

// Add registers a pool. Serials are de-duplicated and blank serials dropped.
// Returns a *DuplicatePoolError if the name was already registered.
func (b *SerialBasedPoolsBuilder) Add(name string, serials []string) error {
	if _, exists := b.pools.pools[name]; exists {
		return &DuplicatePoolError{Name: name}
	}

	b.pools.names = append(b.pools.names, name)
	b.pools.pools[name] = uniqueNonBlank(serials)
	return nil
}

// Build returns the accumulated pools. The builder must not be reused.
func (b *SerialBasedPoolsBuilder) Build() *SerialBasedPools {
	built := b.pools
	return &built
}

// ParseSerials splits a comma-separated serial list. An empty value yields an empty list.
func ParseSerials(value string) []string {
	return uniqueNonBlank(strings.Split(value, ","))
}

// IsEmpty reports whether no pool was declared.
func (p *SerialBasedPools) IsEmpty() bool {
	return p == nil || len(p.names) == 0
}

// Len returns the number of pools.
func (p *SerialBasedPools) Len() int {
	if p == nil {
		return 0
	}
	return len(p.names)
}

// Names returns pool names in declaration order.
func (p *SerialBasedPools) Names() []string {
	if p == nil {
		return nil
	}
	return slices.Clone(p.names)
}

// Serials returns a copy of the serials declared for a pool.
func (p *SerialBasedPools) Serials(name string) []string {
	if p == nil {
		return nil
	}
	return slices.Clone(p.pools[name])
}

// ToMap returns a copy of the pools as a plain map.
func (p *SerialBasedPools) ToMap() map[string][]string {
	out := make(map[string][]string, p.Len())
	for _, name := range p.Names() {
		out[name] = p.Serials(name)
	}
	return out
}

func uniqueNonBlank(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
