// Package pooling defines the building blocks used to decide which devices belong
// to which pool: thresholds (bounds), device measuring strategies, operator-declared
// serial pools and the computed pools selector.
//
// All types in this package are immutable once constructed and safe to share
// between goroutines.
package pooling

import (
	"cmp"
	"slices"
	"sort"
	"strconv"
	"strings"
)

// Bound binds an inclusive lower threshold to an optional pool name.
// An empty Name marks the unnamed (default) bucket.
type Bound struct {
	Lower int    `json:"lower" yaml:"lower"`
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
}

// Named reports whether the bound carries a pool name.
func (b Bound) Named() bool {
	return b.Name != ""
}

func (b Bound) String() string {
	if !b.Named() {
		return strconv.Itoa(b.Lower)
	}
	return b.Name + "=" + strconv.Itoa(b.Lower)
}

// Bounds is an ordered collection of Bound, always sorted ascending by Lower.
// Bounds sharing the same Lower keep the order in which they were declared.
type Bounds struct {
	bounds []Bound
}

// NewBounds returns a sorted copy of the given bounds.
func NewBounds(bounds ...Bound) Bounds {
	sorted := slices.Clone(bounds)
	slices.SortStableFunc(sorted, func(a, b Bound) int {
		return cmp.Compare(a.Lower, b.Lower)
	})
	return Bounds{bounds: sorted}
}

// ParseBounds parses a computed pool value of the form "NAME=LOWER,NAME=LOWER"
// or "LOWER,LOWER" (entries may mix both forms). key is only used for error reporting.
//
// Returns a *MalformedBoundError if any threshold is not an integer.
func ParseBounds(key, value string) (Bounds, error) {
	entries := strings.Split(value, ",")
	parsed := make([]Bound, 0, len(entries))

	for _, entry := range entries {
		var name, lower string
		if before, after, found := strings.Cut(entry, "="); found {
			name, lower = strings.TrimSpace(before), after
		} else {
			lower = entry
		}

		n, err := strconv.Atoi(strings.TrimSpace(lower))
		if err != nil {
			return Bounds{}, &MalformedBoundError{Key: key, Value: value, Entry: entry}
		}
		parsed = append(parsed, Bound{Lower: n, Name: name})
	}

	return NewBounds(parsed...), nil
}

// Len returns the number of bounds.
func (b Bounds) Len() int {
	return len(b.bounds)
}

// At returns the i-th bound in ascending order.
func (b Bounds) At(i int) Bound {
	return b.bounds[i]
}

// All returns a copy of the bounds in ascending order.
func (b Bounds) All() []Bound {
	return slices.Clone(b.bounds)
}

// Index returns the index of the last bound whose Lower is <= v,
// or -1 when v is below every threshold.
func (b Bounds) Index(v int) int {
	// first bound strictly above v; everything before it qualifies
	above := sort.Search(len(b.bounds), func(i int) bool {
		return b.bounds[i].Lower > v
	})
	return above - 1
}

func (b Bounds) String() string {
	parts := make([]string, len(b.bounds))
	for i, bound := range b.bounds {
		parts[i] = bound.String()
	}
	return strings.Join(parts, ",")
}
