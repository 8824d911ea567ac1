package release

import (
	"strings"

	"golang.org/x/mod/semver"
)

// Equal reports whether two version identifiers are the same string.
// No normalisation is applied: "v1.0.0" and "1.0.0" differ.
func Equal(v1, v2 string) bool {
	return v1 == v2
}

// IsNewer returns true if latest is a newer semantic version than current.
// It is only used to describe a difference already found by Equal.
func IsNewer(current, latest string) bool {
	// Ensure both have 'v' prefix for semver comparison
	if !strings.HasPrefix(current, "v") {
		current = "v" + current
	}
	if !strings.HasPrefix(latest, "v") {
		latest = "v" + latest
	}

	// Handle "dev" or "unknown" versions
	if !semver.IsValid(current) {
		return true
	}
	if !semver.IsValid(latest) {
		return false
	}

	return semver.Compare(latest, current) > 0
}
