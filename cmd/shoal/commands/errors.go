package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dyluth/shoal/internal/config"
	"github.com/dyluth/shoal/internal/printer"
	"github.com/dyluth/shoal/pkg/pooling"
)

// renderResolveError prints a resolution failure naming the offending key and
// value, and returns the short error handed back to cobra.
func renderResolveError(err error) error {
	var (
		malformed    *pooling.MalformedBoundError
		multiple     *pooling.MultipleComputedPoolsError
		unrecognised *pooling.UnrecognisedStrategyError
		duplicate    *pooling.DuplicatePoolError
		invalidName  *pooling.InvalidPoolNameError
		conflict     *pooling.ConflictingPoolModesError
	)

	switch {
	case errors.As(err, &malformed):
		return printer.ErrorWithContext(
			"malformed computed pool bound",
			err.Error(),
			map[string]string{"key": malformed.Key, "value": malformed.Value, "entry": malformed.Entry},
			[]string{fmt.Sprintf("Bounds are comma-separated PoolName=LowerBound entries, e.g.:\n  -D %s=low=10,high=20", malformed.Key)},
		)

	case errors.As(err, &multiple):
		return printer.ErrorWithContext(
			"multiple computed pools configured",
			err.Error(),
			map[string]string{"keys": strings.Join(multiple.Keys, ", ")},
			[]string{fmt.Sprintf("Keep exactly one %sSTRATEGY key", config.PrefixPoolComputed)},
		)

	case errors.As(err, &unrecognised):
		return printer.ErrorWithContext(
			"unrecognised computed pool",
			err.Error(),
			map[string]string{"key": unrecognised.Key, "strategy": unrecognised.Strategy},
			[]string{"List the available strategies:\n  shoal strategies"},
		)

	case errors.As(err, &duplicate):
		return printer.ErrorWithContext(
			"duplicate serial-based pool",
			err.Error(),
			map[string]string{"pool": duplicate.Name},
			[]string{"Give each serial-based pool a unique name"},
		)

	case errors.As(err, &invalidName):
		return printer.ErrorWithContext(
			"serial-based pool without a name",
			err.Error(),
			map[string]string{"key": invalidName.Key},
			[]string{fmt.Sprintf("Name the pool after the prefix, e.g.:\n  -D %shdpi=01234567,abcdefgh", config.PrefixPoolSerial)},
		)

	case errors.As(err, &conflict):
		return printer.ErrorWithContext(
			"conflicting pooling modes",
			err.Error(),
			map[string]string{"serial pools": strings.Join(conflict.SerialPools, ", "), "computed pool": conflict.ComputedKey},
			[]string{
				fmt.Sprintf("Remove the %s* keys to use the computed pool", config.PrefixPoolSerial),
				fmt.Sprintf("Remove %s to use the serial-based pools", conflict.ComputedKey),
			},
		)
	}

	return printer.Error("failed to resolve policy", err.Error(), nil)
}
