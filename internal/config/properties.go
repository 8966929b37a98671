package config

import (
	"fmt"
	"sort"
	"strings"
)

// Properties is an ordered string-to-string configuration source.
// Keys keep the position at which they were first set; overriding a key
// replaces its value in place.
type Properties struct {
	keys   []string
	values map[string]string
}

// NewProperties returns an empty property set.
func NewProperties() *Properties {
	return &Properties{values: make(map[string]string)}
}

// FromMap builds properties from an unordered map, inserting keys in sorted order.
func FromMap(m map[string]string) *Properties {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	p := NewProperties()
	for _, k := range keys {
		p.Set(k, m[k])
	}
	return p
}

// FromPairs builds properties from alternating key, value arguments.
func FromPairs(kv ...string) *Properties {
	p := NewProperties()
	for i := 0; i+1 < len(kv); i += 2 {
		p.Set(kv[i], kv[i+1])
	}
	return p
}

// Set stores a value, keeping the key's original position if it already exists.
func (p *Properties) Set(key, value string) {
	if _, exists := p.values[key]; !exists {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
}

// Get returns the value for key, or "" when absent.
func (p *Properties) Get(key string) string {
	return p.values[key]
}

// Lookup returns the value for key and whether it was set.
func (p *Properties) Lookup(key string) (string, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Keys returns every key in insertion order.
func (p *Properties) Keys() []string {
	return append([]string(nil), p.keys...)
}

// KeysWithPrefix returns keys starting with prefix, in insertion order.
func (p *Properties) KeysWithPrefix(prefix string) []string {
	var matched []string
	for _, k := range p.keys {
		if strings.HasPrefix(k, prefix) {
			matched = append(matched, k)
		}
	}
	return matched
}

// Len returns the number of keys.
func (p *Properties) Len() int {
	return len(p.keys)
}

// Merge copies every property from other, overriding existing values.
func (p *Properties) Merge(other *Properties) {
	if other == nil {
		return
	}
	for _, k := range other.keys {
		p.Set(k, other.values[k])
	}
}

// UnknownKeys returns keys in the shoal namespace that shoal does not read.
func (p *Properties) UnknownKeys() []string {
	var unknown []string
	for _, k := range p.keys {
		if strings.HasPrefix(k, Namespace) && !IsKnownKey(k) {
			unknown = append(unknown, k)
		}
	}
	return unknown
}

// ParseDefine parses a single "key=value" definition as given to -D.
func ParseDefine(define string) (string, string, error) {
	key, value, found := strings.Cut(define, "=")
	if !found {
		return "", "", fmt.Errorf("invalid definition '%s': expected key=value", define)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", "", fmt.Errorf("invalid definition '%s': key cannot be empty", define)
	}
	return key, value, nil
}

// FromDefines builds properties from "key=value" definitions, in order.
func FromDefines(defines []string) (*Properties, error) {
	p := NewProperties()
	for _, d := range defines {
		key, value, err := ParseDefine(d)
		if err != nil {
			return nil, err
		}
		p.Set(key, value)
	}
	return p, nil
}
