package wizard

import (
	"regexp"
	"strings"
)

var platePattern = regexp.MustCompile(`^[A-Z]{3}-?[0-9]{4}$`)

// NormalizePlate trims and uppercases a plate as typed.
func NormalizePlate(p string) string {
	return strings.ToUpper(strings.TrimSpace(p))
}

// ValidatePlate accepts LLL-DDDD and LLLDDDD, case-insensitively.
func ValidatePlate(p string) bool {
	return platePattern.MatchString(NormalizePlate(p))
}
