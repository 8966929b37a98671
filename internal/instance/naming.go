package instance

import (
	"fmt"
	"regexp"
)

const (
	// DefaultName is used when neither --instance nor a container label names the instance
	DefaultName = "default"

	// MaxNameLength keeps names usable as DNS labels
	MaxNameLength = 63
)

// NamePattern matches lowercase alphanumeric names with inner hyphens.
var NamePattern = regexp.MustCompile(`^[a-z0-9]([-a-z0-9]*[a-z0-9])?$`)

// ValidateName checks that an instance name can namespace Redis keys.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("instance name cannot be empty")
	}

	if len(name) > MaxNameLength {
		return fmt.Errorf("instance name too long: %d characters (max: %d)", len(name), MaxNameLength)
	}

	if !NamePattern.MatchString(name) {
		return fmt.Errorf("invalid instance name '%s': must be lowercase alphanumeric with hyphens (not at start/end)", name)
	}

	return nil
}
