package config

import "strings"

// Namespace prefixes every configuration key shoal reads.
const Namespace = "shoal."

// Configuration keys
const (
	KeyTestClasses     = "shoal.test.classes"
	KeyExcludedSerials = "shoal.excluded.serials"
	KeyPoolTablet      = "shoal.pool.tablet"
	KeyPoolEachDevice  = "shoal.pool.each.device"
	KeyReportTitle     = "shoal.report.title"
	KeyReportSubtitle  = "shoal.report.subtitle"

	// PrefixPoolSerial is followed by the pool name, e.g. shoal.pool.serial.hdpi
	PrefixPoolSerial = "shoal.pool.serial."
	// PrefixPoolComputed is followed by a strategy name, e.g. shoal.pool.computed.api
	PrefixPoolComputed = "shoal.pool.computed."
)

var knownKeys = map[string]bool{
	KeyTestClasses:     true,
	KeyExcludedSerials: true,
	KeyPoolTablet:      true,
	KeyPoolEachDevice:  true,
	KeyReportTitle:     true,
	KeyReportSubtitle:  true,
}

// IsKnownKey reports whether key is a recognised shoal key or sits under
// one of the pool prefixes.
func IsKnownKey(key string) bool {
	if knownKeys[key] {
		return true
	}
	return strings.HasPrefix(key, PrefixPoolSerial) || strings.HasPrefix(key, PrefixPoolComputed)
}
