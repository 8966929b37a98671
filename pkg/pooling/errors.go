package pooling

import (
	"fmt"
	"strings"
)

// MalformedBoundError indicates a computed pool threshold that is not an integer.
type MalformedBoundError struct {
	Key   string
	Value string
	Entry string
}

func (e *MalformedBoundError) Error() string {
	return fmt.Sprintf("malformed bound '%s' in %s=%s: lower bound must be an integer", e.Entry, e.Key, e.Value)
}

// MultipleComputedPoolsError indicates more than one computed pool key was configured.
type MultipleComputedPoolsError struct {
	Keys []string
}

func (e *MultipleComputedPoolsError) Error() string {
	return fmt.Sprintf("only one computed pool supported at a time, found %d: %s", len(e.Keys), strings.Join(e.Keys, ", "))
}

// UnrecognisedStrategyError indicates a computed pool key naming no registered strategy.
type UnrecognisedStrategyError struct {
	Key      string
	Strategy string
}

func (e *UnrecognisedStrategyError) Error() string {
	return fmt.Sprintf("unrecognised computed pool: %s (no strategy named '%s')", e.Key, e.Strategy)
}

// DuplicatePoolError indicates two serial-based pools resolved to the same name.
type DuplicatePoolError struct {
	Name string
}

func (e *DuplicatePoolError) Error() string {
	return fmt.Sprintf("serial-based pool '%s' declared more than once", e.Name)
}

// InvalidPoolNameError indicates a serial-based pool key with nothing after the prefix.
type InvalidPoolNameError struct {
	Key string
}

func (e *InvalidPoolNameError) Error() string {
	return fmt.Sprintf("serial-based pool key '%s' does not name a pool", e.Key)
}

// ConflictingPoolModesError indicates serial-based pools and a computed pool were
// both configured for the same run.
type ConflictingPoolModesError struct {
	SerialPools []string
	ComputedKey string
}

func (e *ConflictingPoolModesError) Error() string {
	return fmt.Sprintf("serial-based pools (%s) cannot be combined with computed pool %s",
		strings.Join(e.SerialPools, ", "), e.ComputedKey)
}
