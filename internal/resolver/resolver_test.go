package resolver

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/dyluth/shoal/internal/config"
	"github.com/dyluth/shoal/pkg/policy"
	"github.com/dyluth/shoal/pkg/pooling"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingLogger captures diagnostics instead of printing them
type recordingLogger struct {
	warnings []string
	infos    []string
}

func (l *recordingLogger) Warningf(format string, a ...any) {
	l.warnings = append(l.warnings, fmt.Sprintf(format, a...))
}

func (l *recordingLogger) Infof(format string, a ...any) {
	l.infos = append(l.infos, fmt.Sprintf(format, a...))
}

func (l *recordingLogger) warned(substr string) bool {
	for _, w := range l.warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}

var sdk = pooling.MeasureFunc{
	Name:        "sdk",
	Description: "pools by SDK level",
	Fn:          func(d pooling.Device) int { return d.APILevel },
}

func newResolver(t *testing.T, kv ...string) (*Resolver, *recordingLogger) {
	t.Helper()
	log := &recordingLogger{}
	return New(config.FromPairs(kv...), WithLogger(log)), log
}

func testRegistry(t *testing.T) *pooling.Registry {
	t.Helper()
	reg, err := pooling.NewRegistry(sdk, pooling.SmallestWidth)
	require.NoError(t, err)
	return reg
}

func TestExtractPoolPerDeviceFlag(t *testing.T) {
	testCases := []struct {
		name     string
		kv       []string
		expected bool
	}{
		{name: "absent defaults to true", kv: nil, expected: true},
		{name: "blank defaults to true", kv: []string{config.KeyPoolEachDevice, "  "}, expected: true},
		{name: "true", kv: []string{config.KeyPoolEachDevice, "true"}, expected: true},
		{name: "false", kv: []string{config.KeyPoolEachDevice, "false"}, expected: false},
		{name: "upper case false", kv: []string{config.KeyPoolEachDevice, "FALSE"}, expected: false},
		{name: "garbage is false", kv: []string{config.KeyPoolEachDevice, "nope"}, expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r, _ := newResolver(t, tc.kv...)
			assert.Equal(t, tc.expected, r.ExtractPoolPerDeviceFlag())
		})
	}
}

func TestExtractPoolPerDeviceFlag_HintOnlyWhenAbsent(t *testing.T) {
	r, log := newResolver(t)
	r.ExtractPoolPerDeviceFlag()
	assert.True(t, log.warned("-D shoal.pool.each.device=(true|false)"))

	r, log = newResolver(t, config.KeyPoolEachDevice, "false")
	r.ExtractPoolPerDeviceFlag()
	assert.Empty(t, log.warnings)
}

func TestExtractTabletFlag(t *testing.T) {
	testCases := []struct {
		name     string
		kv       []string
		expected bool
	}{
		{name: "absent defaults to false", kv: nil, expected: false},
		{name: "blank defaults to false", kv: []string{config.KeyPoolTablet, ""}, expected: false},
		{name: "true", kv: []string{config.KeyPoolTablet, "true"}, expected: true},
		{name: "false", kv: []string{config.KeyPoolTablet, "false"}, expected: false},
		{name: "garbage is false", kv: []string{config.KeyPoolTablet, "tablet"}, expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r, _ := newResolver(t, tc.kv...)
			assert.Equal(t, tc.expected, r.ExtractTabletFlag())
		})
	}
}

func TestExtractTabletFlag_WarnsOnGarbage(t *testing.T) {
	r, log := newResolver(t, config.KeyPoolTablet, "yes please")
	assert.False(t, r.ExtractTabletFlag())
	assert.True(t, log.warned("shoal.pool.tablet=yes please is not a boolean"))
}

func TestExtractExcludedSerials(t *testing.T) {
	t.Run("splits serials", func(t *testing.T) {
		r, log := newResolver(t, config.KeyExcludedSerials, "A,B,C")
		assert.Equal(t, []string{"A", "B", "C"}, r.ExtractExcludedSerials())
		require.Len(t, log.infos, 1)
		assert.Contains(t, log.infos[0], "A, B, C")
		assert.Empty(t, log.warnings)
	})

	t.Run("absent yields empty set", func(t *testing.T) {
		r, log := newResolver(t)
		assert.Empty(t, r.ExtractExcludedSerials())
		assert.Empty(t, log.infos)
		assert.True(t, log.warned("-D shoal.excluded.serials="))
	})

	t.Run("blank yields empty set", func(t *testing.T) {
		r, _ := newResolver(t, config.KeyExcludedSerials, " ")
		assert.Empty(t, r.ExtractExcludedSerials())
	})
}

func TestExtractSerialBasedPools(t *testing.T) {
	t.Run("pools named after key suffix", func(t *testing.T) {
		r, log := newResolver(t,
			"shoal.pool.serial.hdpi", "S1,S2",
			"shoal.pool.serial.ldpi", "S3",
		)

		pools, err := r.ExtractSerialBasedPools()
		require.NoError(t, err)
		assert.Equal(t, map[string][]string{
			"hdpi": {"S1", "S2"},
			"ldpi": {"S3"},
		}, pools.ToMap())
		assert.Equal(t, []string{"hdpi", "ldpi"}, pools.Names())
		assert.Empty(t, log.warnings)
	})

	t.Run("no keys emits hint", func(t *testing.T) {
		r, log := newResolver(t)

		pools, err := r.ExtractSerialBasedPools()
		require.NoError(t, err)
		assert.True(t, pools.IsEmpty())
		assert.True(t, log.warned("-D shoal.pool.serial.POOL_NAME="))
	})

	t.Run("empty value yields empty pool", func(t *testing.T) {
		r, _ := newResolver(t, "shoal.pool.serial.spare", "")

		pools, err := r.ExtractSerialBasedPools()
		require.NoError(t, err)
		assert.Equal(t, []string{"spare"}, pools.Names())
		assert.Empty(t, pools.Serials("spare"))
	})

	t.Run("bare prefix rejected", func(t *testing.T) {
		r, _ := newResolver(t, "shoal.pool.serial.", "S1")

		_, err := r.ExtractSerialBasedPools()
		var invalid *pooling.InvalidPoolNameError
		require.True(t, errors.As(err, &invalid))
		assert.Equal(t, "shoal.pool.serial.", invalid.Key)
	})
}

func TestExtractComputedPoolsSelector(t *testing.T) {
	t.Run("no keys returns nil and lists strategies", func(t *testing.T) {
		r, log := newResolver(t)

		selector, err := r.ExtractComputedPoolsSelector(testRegistry(t))
		require.NoError(t, err)
		assert.Nil(t, selector)
		assert.True(t, log.warned("STRATEGY:=sdk - pools by SDK level"))
		assert.True(t, log.warned("STRATEGY:=sw - "))
	})

	t.Run("builds selector", func(t *testing.T) {
		r, log := newResolver(t, "shoal.pool.computed.sdk", "low=10,high=20")

		selector, err := r.ExtractComputedPoolsSelector(testRegistry(t))
		require.NoError(t, err)
		require.NotNil(t, selector)
		assert.Equal(t, "sdk", selector.Strategy().BaseName())
		assert.Equal(t, []pooling.Bound{{Lower: 10, Name: "low"}, {Lower: 20, Name: "high"}}, selector.Bounds().All())
		assert.Equal(t, "low", selector.Select(15).PoolName())
		assert.Equal(t, "high", selector.Select(25).PoolName())
		assert.Equal(t, pooling.DefaultPoolName, selector.Select(5).PoolName())
		assert.False(t, log.warned("STRATEGY:="))
	})

	t.Run("two keys rejected regardless of strategy", func(t *testing.T) {
		combos := [][]string{
			{"shoal.pool.computed.sdk", "10", "shoal.pool.computed.sw", "600"},
			{"shoal.pool.computed.nope", "10", "shoal.pool.computed.other", "x"},
			{"shoal.pool.computed.sdk", "10", "shoal.pool.computed.unknown", "10"},
		}
		for _, kv := range combos {
			r, _ := newResolver(t, kv...)
			_, err := r.ExtractComputedPoolsSelector(testRegistry(t))

			var multiple *pooling.MultipleComputedPoolsError
			require.True(t, errors.As(err, &multiple), "expected multiple computed pools error for %v, got %v", kv, err)
			assert.Equal(t, []string{kv[0], kv[2]}, multiple.Keys)
			assert.Contains(t, err.Error(), "only one computed pool supported at a time")
		}
	})

	t.Run("unrecognised strategy names the key", func(t *testing.T) {
		r, _ := newResolver(t, "shoal.pool.computed.density", "10")

		_, err := r.ExtractComputedPoolsSelector(testRegistry(t))
		var unrecognised *pooling.UnrecognisedStrategyError
		require.True(t, errors.As(err, &unrecognised))
		assert.Equal(t, "shoal.pool.computed.density", unrecognised.Key)
		assert.Equal(t, "density", unrecognised.Strategy)
		assert.Contains(t, err.Error(), "unrecognised computed pool: shoal.pool.computed.density")
	})

	t.Run("strategy lookup is exact", func(t *testing.T) {
		r, _ := newResolver(t, "shoal.pool.computed.SDK", "10")

		_, err := r.ExtractComputedPoolsSelector(testRegistry(t))
		var unrecognised *pooling.UnrecognisedStrategyError
		assert.True(t, errors.As(err, &unrecognised))
	})

	t.Run("malformed bound is fatal", func(t *testing.T) {
		r, _ := newResolver(t, "shoal.pool.computed.sdk", "low=ten")

		_, err := r.ExtractComputedPoolsSelector(testRegistry(t))
		var malformed *pooling.MalformedBoundError
		require.True(t, errors.As(err, &malformed))
		assert.Equal(t, "shoal.pool.computed.sdk", malformed.Key)
		assert.Equal(t, "low=ten", malformed.Value)
	})

	t.Run("nil registry recognises nothing", func(t *testing.T) {
		r, _ := newResolver(t, "shoal.pool.computed.sdk", "10")

		_, err := r.ExtractComputedPoolsSelector(nil)
		var unrecognised *pooling.UnrecognisedStrategyError
		assert.True(t, errors.As(err, &unrecognised))
	})
}

func TestExtractPassThroughValues(t *testing.T) {
	t.Run("values returned unmodified", func(t *testing.T) {
		r, log := newResolver(t,
			config.KeyTestClasses, `com\.example\..*Test`,
			config.KeyReportTitle, " Nightly ",
			config.KeyReportSubtitle, "build 42",
		)

		assert.Equal(t, `com\.example\..*Test`, r.ExtractFilterPattern())
		assert.Equal(t, " Nightly ", r.ExtractTitle())
		assert.Equal(t, "build 42", r.ExtractSubtitle())
		assert.Empty(t, log.warnings)
	})

	t.Run("absent values emit hints", func(t *testing.T) {
		r, log := newResolver(t)

		assert.Equal(t, "", r.ExtractFilterPattern())
		assert.Equal(t, "", r.ExtractTitle())
		assert.Equal(t, "", r.ExtractSubtitle())
		assert.True(t, log.warned("-D shoal.test.classes=REGEX"))
		assert.True(t, log.warned("-D shoal.report.title=Title"))
		assert.True(t, log.warned("-D shoal.report.subtitle=Subtitle"))
	})
}

func TestResolve(t *testing.T) {
	fixed := time.UnixMilli(1_700_000_000_000)

	resolve := func(t *testing.T, kv ...string) (*policy.Policy, *recordingLogger, error) {
		t.Helper()
		log := &recordingLogger{}
		r := New(config.FromPairs(kv...), WithLogger(log), WithClock(func() time.Time { return fixed }))
		p, err := r.Resolve(testRegistry(t))
		return p, log, err
	}

	t.Run("defaults to per-device", func(t *testing.T) {
		p, _, err := resolve(t)
		require.NoError(t, err)
		require.NoError(t, p.Validate())
		assert.Equal(t, policy.ModePerDevice, p.Mode)
		assert.True(t, p.PoolPerDevice)
		assert.False(t, p.TabletOnly)
		assert.Empty(t, p.ExcludedSerials)
		assert.NotEmpty(t, p.ID)
		assert.Equal(t, fixed.UnixMilli(), p.CreatedAtMs)
	})

	t.Run("per-device switched off resolves to none", func(t *testing.T) {
		p, _, err := resolve(t, config.KeyPoolEachDevice, "false")
		require.NoError(t, err)
		assert.Equal(t, policy.ModeNone, p.Mode)
		assert.False(t, p.PoolPerDevice)
	})

	t.Run("serial pools win over per-device", func(t *testing.T) {
		p, _, err := resolve(t,
			"shoal.pool.serial.hdpi", "S1,S2",
			"shoal.pool.serial.ldpi", "S3",
			config.KeyPoolTablet, "true",
			config.KeyExcludedSerials, "S9",
		)
		require.NoError(t, err)
		require.NoError(t, p.Validate())
		assert.Equal(t, policy.ModeSerial, p.Mode)
		assert.Nil(t, p.Computed)
		assert.Equal(t, []string{"hdpi", "ldpi"}, p.SerialPools.Names())
		assert.True(t, p.TabletOnly)
		assert.Equal(t, []string{"S9"}, p.ExcludedSerials)
	})

	t.Run("computed pools win over per-device", func(t *testing.T) {
		p, _, err := resolve(t,
			"shoal.pool.computed.sdk", "low=10,high=20",
			config.KeyReportTitle, "Nightly",
		)
		require.NoError(t, err)
		require.NoError(t, p.Validate())
		assert.Equal(t, policy.ModeComputed, p.Mode)
		assert.True(t, p.SerialPools.IsEmpty())
		require.NotNil(t, p.Computed)
		assert.Equal(t, "sdk", p.Computed.Strategy().BaseName())
		assert.Equal(t, "Nightly", p.Title)
	})

	t.Run("serial and computed pools conflict", func(t *testing.T) {
		p, _, err := resolve(t,
			"shoal.pool.serial.hdpi", "S1",
			"shoal.pool.computed.sdk", "10",
		)
		assert.Nil(t, p)

		var conflict *pooling.ConflictingPoolModesError
		require.True(t, errors.As(err, &conflict))
		assert.Equal(t, []string{"hdpi"}, conflict.SerialPools)
		assert.Equal(t, "shoal.pool.computed.sdk", conflict.ComputedKey)
	})

	t.Run("fatal errors return no policy", func(t *testing.T) {
		p, _, err := resolve(t,
			"shoal.pool.computed.sdk", "10",
			"shoal.pool.computed.sw", "600",
		)
		assert.Nil(t, p)
		var multiple *pooling.MultipleComputedPoolsError
		assert.True(t, errors.As(err, &multiple))
	})

	t.Run("unknown keys are reported", func(t *testing.T) {
		_, log, err := resolve(t, "shoal.pool.tablets", "true")
		require.NoError(t, err)
		assert.True(t, log.warned("Ignoring unknown configuration key shoal.pool.tablets"))
	})

	t.Run("each resolution gets its own ID", func(t *testing.T) {
		first, _, err := resolve(t)
		require.NoError(t, err)
		second, _, err := resolve(t)
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID)
	})
}

func TestNew_NilProperties(t *testing.T) {
	r := New(nil, WithLogger(&recordingLogger{}))
	assert.True(t, r.ExtractPoolPerDeviceFlag())
	assert.False(t, r.ExtractTabletFlag())
}
