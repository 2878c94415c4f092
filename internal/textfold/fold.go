// Package textfold provides case- and accent-insensitive matching for the
// Portuguese free text stored in checklists (names, titles, plates).
package textfold

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold strips combining marks and applies Unicode case folding,
// so "Inspeção" and "INSPECAO" fold to the same string.
func Fold(s string) string {
	// transform.Chain keeps per-call state; never share the transformer.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return cases.Fold().String(strings.TrimSpace(stripped))
}

// Contains reports whether needle occurs in any of the haystacks after folding.
// An empty needle matches everything.
func Contains(needle string, haystacks ...string) bool {
	n := Fold(needle)
	if n == "" {
		return true
	}
	for _, h := range haystacks {
		if strings.Contains(Fold(h), n) {
			return true
		}
	}
	return false
}
