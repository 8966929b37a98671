package resolver

import (
	"strconv"
	"strings"
	"time"

	"github.com/dyluth/shoal/internal/config"
	"github.com/dyluth/shoal/internal/printer"
	"github.com/dyluth/shoal/pkg/policy"
	"github.com/dyluth/shoal/pkg/pooling"
	"github.com/google/uuid"
)

// Logger receives operator diagnostics emitted during resolution.
type Logger interface {
	Warningf(format string, a ...any)
	Infof(format string, a ...any)
}

// Resolver turns raw configuration into pooling structures and a resolved policy.
// It never reads global state: everything comes from the Properties it was built with.
type Resolver struct {
	props *config.Properties
	log   Logger
	now   func() time.Time
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger routes diagnostics to l instead of the console printer.
func WithLogger(l Logger) Option {
	return func(r *Resolver) {
		r.log = l
	}
}

// WithClock overrides the time source used to stamp policies.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		r.now = now
	}
}

// New creates a resolver over props.
func New(props *config.Properties, opts ...Option) *Resolver {
	if props == nil {
		props = config.NewProperties()
	}
	r := &Resolver{
		props: props,
		log:   printer.Console{},
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ExtractFilterPattern returns the test class filter regex, unmodified.
func (r *Resolver) ExtractFilterPattern() string {
	pattern := r.props.Get(config.KeyTestClasses)
	r.documentValue(config.KeyTestClasses, pattern,
		"Use -D %s=REGEX to specify a pattern for the classes/packages to run")
	return pattern
}

// ExtractExcludedSerials returns the serials of devices that must not run tests.
// An absent or blank value yields an empty list.
func (r *Resolver) ExtractExcludedSerials() []string {
	excluded := pooling.ParseSerials(r.props.Get(config.KeyExcludedSerials))
	r.documentKeys(config.KeyExcludedSerials, excluded,
		"Use -D %s=(Serial','?)* to exclude specific devices from running any tests")

	if len(excluded) > 0 {
		r.log.Infof("Devices with serials %s are excluded from the tests", strings.Join(excluded, ", "))
	}
	return excluded
}

// ExtractTabletFlag reports whether only tablets take part. Defaults to false.
func (r *Resolver) ExtractTabletFlag() bool {
	value := r.props.Get(config.KeyPoolTablet)
	r.documentValue(config.KeyPoolTablet, value,
		"Use -D %s=(true|false) to only run on devices whose manufacturer sets the 'tablet' flag (ro.build.characteristics)")
	return r.parseFlag(config.KeyPoolTablet, value, false)
}

// ExtractPoolPerDeviceFlag reports whether each device gets its own pool.
// Unlike other flags it defaults to true when absent or blank.
func (r *Resolver) ExtractPoolPerDeviceFlag() bool {
	value := r.props.Get(config.KeyPoolEachDevice)
	r.documentValue(config.KeyPoolEachDevice, value,
		"Use -D %s=(true|false) to create a pool per device. This is the default behaviour")
	return r.parseFlag(config.KeyPoolEachDevice, value, true)
}

// ExtractSerialBasedPools builds pools from every serial-based pool key,
// naming each pool after the key with the prefix removed.
func (r *Resolver) ExtractSerialBasedPools() (*pooling.SerialBasedPools, error) {
	keys := r.props.KeysWithPrefix(config.PrefixPoolSerial)
	r.documentKeys(config.PrefixPoolSerial, keys,
		"Use -D %sPOOL_NAME=(Serial','?)* to add devices with a given serial to a pool with given name, e.g. hdpi=01234567,abcdefgh")

	builder := pooling.NewSerialBasedPoolsBuilder()
	for _, key := range keys {
		name := strings.TrimPrefix(key, config.PrefixPoolSerial)
		if strings.TrimSpace(name) == "" {
			return nil, &pooling.InvalidPoolNameError{Key: key}
		}
		if err := builder.Add(name, pooling.ParseSerials(r.props.Get(key))); err != nil {
			return nil, err
		}
	}
	return builder.Build(), nil
}

// ExtractComputedPoolsSelector builds the computed pools selector, or returns nil
// when no computed pool key is configured. Only one computed pool key may be set.
func (r *Resolver) ExtractComputedPoolsSelector(reg *pooling.Registry) (*pooling.ComputedPoolsSelector, error) {
	keys := r.props.KeysWithPrefix(config.PrefixPoolComputed)
	r.documentComputedPools(reg, keys)

	switch len(keys) {
	case 0:
		return nil, nil
	case 1:
	default:
		return nil, &pooling.MultipleComputedPoolsError{Keys: keys}
	}

	key := keys[0]
	name := strings.TrimPrefix(key, config.PrefixPoolComputed)
	strategy, ok := reg.Lookup(name)
	if !ok {
		return nil, &pooling.UnrecognisedStrategyError{Key: key, Strategy: name}
	}

	bounds, err := pooling.ParseBounds(key, r.props.Get(key))
	if err != nil {
		return nil, err
	}
	return pooling.NewComputedPoolsSelector(strategy, bounds)
}

// ExtractTitle returns the report title, or "" when absent.
func (r *Resolver) ExtractTitle() string {
	title := r.props.Get(config.KeyReportTitle)
	r.documentValue(config.KeyReportTitle, title,
		"Use -D %s=Title to specify a title for the generated report")
	return title
}

// ExtractSubtitle returns the report subtitle, or "" when absent.
func (r *Resolver) ExtractSubtitle() string {
	subtitle := r.props.Get(config.KeyReportSubtitle)
	r.documentValue(config.KeyReportSubtitle, subtitle,
		"Use -D %s=Subtitle to specify a subtitle for the generated report")
	return subtitle
}

func (r *Resolver) parseFlag(key, value string, fallback bool) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		r.log.Warningf("%s=%s is not a boolean, treating it as false", key, value)
		return false
	}
	return parsed
}

func (r *Resolver) documentValue(key, value, hint string) {
	if strings.TrimSpace(value) == "" {
		r.log.Warningf(hint, key)
	}
}

func (r *Resolver) documentKeys(key string, values []string, hint string) {
	if len(values) == 0 {
		r.log.Warningf(hint, key)
	}
}

func (r *Resolver) documentComputedPools(reg *pooling.Registry, keys []string) {
	r.documentKeys(config.PrefixPoolComputed, keys,
		"Use -D %sSTRATEGY=(PoolName=LowerBound','?)* to automatically create pools based on device characteristics")
	if len(keys) > 0 {
		return
	}
	for _, s := range reg.All() {
		r.log.Warningf("STRATEGY:=%s - %s", s.BaseName(), s.Help())
	}
}

// Resolve runs every extraction and returns the resolved policy.
//
// Serial-based pools and a computed pool cannot be combined; doing so returns a
// *pooling.ConflictingPoolModesError. The mode is chosen in order: serial,
// computed, per-device, none. No partial policy is returned on error.
func (r *Resolver) Resolve(reg *pooling.Registry) (*policy.Policy, error) {
	for _, key := range r.props.UnknownKeys() {
		r.log.Warningf("Ignoring unknown configuration key %s", key)
	}

	serialPools, err := r.ExtractSerialBasedPools()
	if err != nil {
		return nil, err
	}

	computed, err := r.ExtractComputedPoolsSelector(reg)
	if err != nil {
		return nil, err
	}

	if !serialPools.IsEmpty() && computed != nil {
		return nil, &pooling.ConflictingPoolModesError{
			SerialPools: serialPools.Names(),
			ComputedKey: config.PrefixPoolComputed + computed.Strategy().BaseName(),
		}
	}

	p := &policy.Policy{
		ID:              uuid.New().String(),
		TabletOnly:      r.ExtractTabletFlag(),
		PoolPerDevice:   r.ExtractPoolPerDeviceFlag(),
		ExcludedSerials: r.ExtractExcludedSerials(),
		FilterPattern:   r.ExtractFilterPattern(),
		Title:           r.ExtractTitle(),
		Subtitle:        r.ExtractSubtitle(),
		CreatedAtMs:     r.now().UnixMilli(),
	}

	switch {
	case !serialPools.IsEmpty():
		p.Mode = policy.ModeSerial
		p.SerialPools = serialPools
	case computed != nil:
		p.Mode = policy.ModeComputed
		p.Computed = computed
	case p.PoolPerDevice:
		p.Mode = policy.ModePerDevice
	default:
		p.Mode = policy.ModeNone
	}

	return p, nil
}
