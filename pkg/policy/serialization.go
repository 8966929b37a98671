package policy

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/dyluth/shoal/pkg/pooling"
)

// Serialization helpers for converting policies to documents and Redis hashes.
//
// Strategies are behaviour, not data: they are written by BaseName and looked up
// in a registry when a policy is read back.

// Document is the serializable form of a Policy.
type Document struct {
	ID              string            `json:"id" yaml:"id"`
	Mode            Mode              `json:"mode" yaml:"mode"`
	TabletOnly      bool              `json:"tablet_only" yaml:"tablet_only"`
	PoolPerDevice   bool              `json:"pool_per_device" yaml:"pool_per_device"`
	ExcludedSerials []string          `json:"excluded_serials" yaml:"excluded_serials"`
	SerialPools     []Pool            `json:"serial_pools,omitempty" yaml:"serial_pools,omitempty"`
	Computed        *ComputedDocument `json:"computed,omitempty" yaml:"computed,omitempty"`
	FilterPattern   string            `json:"filter_pattern,omitempty" yaml:"filter_pattern,omitempty"`
	Title           string            `json:"title,omitempty" yaml:"title,omitempty"`
	Subtitle        string            `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`
	CreatedAtMs     int64             `json:"created_at_ms" yaml:"created_at_ms"`
}

// ComputedDocument is the serializable form of a computed pools selector.
type ComputedDocument struct {
	Strategy string          `json:"strategy" yaml:"strategy"`
	Bounds   []pooling.Bound `json:"bounds" yaml:"bounds"`
}

// ToDocument converts the policy into its serializable form.
func (p *Policy) ToDocument() Document {
	excluded := p.ExcludedSerials
	if excluded == nil {
		excluded = []string{}
	}

	return Document{
		ID:              p.ID,
		Mode:            p.Mode,
		TabletOnly:      p.TabletOnly,
		PoolPerDevice:   p.PoolPerDevice,
		ExcludedSerials: excluded,
		SerialPools:     serialPoolsToList(p.SerialPools),
		Computed:        computedToDocument(p.Computed),
		FilterPattern:   p.FilterPattern,
		Title:           p.Title,
		Subtitle:        p.Subtitle,
		CreatedAtMs:     p.CreatedAtMs,
	}
}

// MarshalJSON encodes the policy as its Document.
func (p *Policy) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.ToDocument())
}

// FromDocument rebuilds a policy, resolving the computed strategy in reg.
func FromDocument(doc Document, reg *pooling.Registry) (*Policy, error) {
	serialPools, err := serialPoolsFromList(doc.SerialPools)
	if err != nil {
		return nil, err
	}

	computed, err := computedFromDocument(doc.Computed, reg)
	if err != nil {
		return nil, err
	}

	p := &Policy{
		ID:              doc.ID,
		Mode:            doc.Mode,
		TabletOnly:      doc.TabletOnly,
		PoolPerDevice:   doc.PoolPerDevice,
		ExcludedSerials: doc.ExcludedSerials,
		SerialPools:     serialPools,
		Computed:        computed,
		FilterPattern:   doc.FilterPattern,
		Title:           doc.Title,
		Subtitle:        doc.Subtitle,
		CreatedAtMs:     doc.CreatedAtMs,
	}
	if p.ExcludedSerials == nil {
		p.ExcludedSerials = []string{}
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid policy: %w", err)
	}
	return p, nil
}

// Decode parses a JSON-encoded policy.
func Decode(data []byte, reg *pooling.Registry) (*Policy, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal policy: %w", err)
	}
	return FromDocument(doc, reg)
}

// PolicyToHash converts a Policy to a Redis hash.
// Collection fields are JSON-encoded.
func PolicyToHash(p *Policy) (map[string]interface{}, error) {
	doc := p.ToDocument()

	excludedJSON, err := json.Marshal(doc.ExcludedSerials)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal excluded_serials: %w", err)
	}

	serialPoolsJSON := ""
	if len(doc.SerialPools) > 0 {
		data, err := json.Marshal(doc.SerialPools)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal serial_pools: %w", err)
		}
		serialPoolsJSON = string(data)
	}

	computedJSON := ""
	if doc.Computed != nil {
		data, err := json.Marshal(doc.Computed)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal computed: %w", err)
		}
		computedJSON = string(data)
	}

	hash := map[string]interface{}{
		"id":               doc.ID,
		"mode":             string(doc.Mode),
		"tablet_only":      strconv.FormatBool(doc.TabletOnly),
		"pool_per_device":  strconv.FormatBool(doc.PoolPerDevice),
		"excluded_serials": string(excludedJSON),
		"serial_pools":     serialPoolsJSON,
		"computed":         computedJSON,
		"filter_pattern":   doc.FilterPattern,
		"title":            doc.Title,
		"subtitle":         doc.Subtitle,
		"created_at_ms":    doc.CreatedAtMs,
	}

	return hash, nil
}

// HashToPolicy converts a Redis hash back to a Policy.
func HashToPolicy(hash map[string]string, reg *pooling.Registry) (*Policy, error) {
	doc := Document{
		ID:            hash["id"],
		Mode:          Mode(hash["mode"]),
		FilterPattern: hash["filter_pattern"],
		Title:         hash["title"],
		Subtitle:      hash["subtitle"],
	}

	var err error
	if doc.TabletOnly, err = parseBoolField(hash, "tablet_only"); err != nil {
		return nil, err
	}
	if doc.PoolPerDevice, err = parseBoolField(hash, "pool_per_device"); err != nil {
		return nil, err
	}

	if raw := hash["excluded_serials"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &doc.ExcludedSerials); err != nil {
			return nil, fmt.Errorf("failed to unmarshal excluded_serials: %w", err)
		}
	}
	if raw := hash["serial_pools"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &doc.SerialPools); err != nil {
			return nil, fmt.Errorf("failed to unmarshal serial_pools: %w", err)
		}
	}
	if raw := hash["computed"]; raw != "" {
		doc.Computed = &ComputedDocument{}
		if err := json.Unmarshal([]byte(raw), doc.Computed); err != nil {
			return nil, fmt.Errorf("failed to unmarshal computed: %w", err)
		}
	}

	if raw := hash["created_at_ms"]; raw != "" {
		if doc.CreatedAtMs, err = strconv.ParseInt(raw, 10, 64); err != nil {
			return nil, fmt.Errorf("invalid created_at_ms field: %w", err)
		}
	}

	return FromDocument(doc, reg)
}

func parseBoolField(hash map[string]string, field string) (bool, error) {
	raw := hash[field]
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s field: %w", field, err)
	}
	return v, nil
}

func serialPoolsToList(pools *pooling.SerialBasedPools) []Pool {
	if pools.IsEmpty() {
		return nil
	}
	out := make([]Pool, 0, pools.Len())
	for _, name := range pools.Names() {
		out = append(out, Pool{Name: name, Serials: pools.Serials(name)})
	}
	return out
}

func serialPoolsFromList(list []Pool) (*pooling.SerialBasedPools, error) {
	builder := pooling.NewSerialBasedPoolsBuilder()
	for _, pool := range list {
		if err := builder.Add(pool.Name, pool.Serials); err != nil {
			return nil, err
		}
	}
	return builder.Build(), nil
}

func computedToDocument(selector *pooling.ComputedPoolsSelector) *ComputedDocument {
	if selector == nil {
		return nil
	}
	return &ComputedDocument{
		Strategy: selector.Strategy().BaseName(),
		Bounds:   selector.Bounds().All(),
	}
}

func computedFromDocument(doc *ComputedDocument, reg *pooling.Registry) (*pooling.ComputedPoolsSelector, error) {
	if doc == nil {
		return nil, nil
	}
	if reg == nil {
		return nil, fmt.Errorf("a strategy registry is required to decode computed pools")
	}

	strategy, ok := reg.Lookup(doc.Strategy)
	if !ok {
		return nil, &pooling.UnrecognisedStrategyError{Key: "computed.strategy", Strategy: doc.Strategy}
	}
	return pooling.NewComputedPoolsSelector(strategy, pooling.NewBounds(doc.Bounds...))
}
