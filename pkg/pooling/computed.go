package pooling

import "fmt"

// DefaultPoolName is the pool for devices landing in an unnamed bucket or below
// every threshold.
const DefaultPoolName = "default"

// ComputedPoolsSelector partitions devices using a strategy's measured value
// against sorted thresholds.
type ComputedPoolsSelector struct {
	strategy Strategy
	bounds   Bounds
}

// NewComputedPoolsSelector binds a strategy to its bounds.
func NewComputedPoolsSelector(strategy Strategy, bounds Bounds) (*ComputedPoolsSelector, error) {
	if strategy == nil {
		return nil, fmt.Errorf("computed pools selector requires a strategy")
	}
	return &ComputedPoolsSelector{strategy: strategy, bounds: bounds}, nil
}

// Bucket is the outcome of selecting a pool for a measured value.
// Index is -1 when the value sits below every threshold.
type Bucket struct {
	Index int
	Bound Bound
}

// PoolName returns the bound's name, or DefaultPoolName for unnamed buckets.
func (b Bucket) PoolName() string {
	if b.Index < 0 || !b.Bound.Named() {
		return DefaultPoolName
	}
	return b.Bound.Name
}

// IsDefault reports whether the bucket resolves to the default pool.
func (b Bucket) IsDefault() bool {
	return b.PoolName() == DefaultPoolName
}

// Strategy returns the strategy used to measure devices.
func (s *ComputedPoolsSelector) Strategy() Strategy {
	return s.strategy
}

// Bounds returns the sorted thresholds.
func (s *ComputedPoolsSelector) Bounds() Bounds {
	return s.bounds
}

// Select picks the last bound whose lower threshold does not exceed v.
// Increasing v never yields a smaller Index.
func (s *ComputedPoolsSelector) Select(v int) Bucket {
	i := s.bounds.Index(v)
	if i < 0 {
		return Bucket{Index: -1}
	}
	return Bucket{Index: i, Bound: s.bounds.At(i)}
}

// PoolFor measures the device and selects its bucket.
func (s *ComputedPoolsSelector) PoolFor(d Device) Bucket {
	return s.Select(s.strategy.Measure(d))
}

func (s *ComputedPoolsSelector) String() string {
	return fmt.Sprintf("%s=%s", s.strategy.BaseName(), s.bounds)
}
