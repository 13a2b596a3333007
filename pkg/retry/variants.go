package retry

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// VariantPolicy generates the string variants the fuzzy search probes with.
// The defaults encode the Spanish-locale heuristics the assistant's data
// needs: diacritic stripping, first-word search, digit stripping and a
// truncated prefix.
type VariantPolicy struct {
	// MinLength drops variants shorter than this many runes.
	MinLength int
	// PrefixRatio controls the truncated-prefix variant: the prefix keeps
	// at least 3 runes or this share of the value, whichever is longer.
	PrefixRatio float64
}

// DefaultPolicy matches the behavior tuned against the production ERP data.
func DefaultPolicy() VariantPolicy {
	return VariantPolicy{MinLength: 2, PrefixRatio: 0.7}
}

var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// StripDiacritics removes combining marks: "Málaga" becomes "Malaga".
func StripDiacritics(s string) string {
	out, _, err := transform.String(deaccent, s)
	if err != nil {
		return s
	}
	return out
}

// Variants returns the ordered, de-duplicated probe values for one search
// term: original, upper, lower, diacritic-stripped, first word, without
// spaces, without digits, truncated prefix.
func (p VariantPolicy) Variants(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	candidates := []string{
		value,
		strings.ToUpper(value),
		strings.ToLower(value),
		StripDiacritics(value),
		firstWord(value),
		strings.Join(strings.Fields(value), ""),
		stripDigits(value),
		prefix(value, p.PrefixRatio),
	}

	seen := make(map[string]bool, len(candidates))
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c == "" || len([]rune(c)) < p.MinLength || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func stripDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return -1
		}
		return r
	}, s)
}

func prefix(s string, ratio float64) string {
	r := []rune(s)
	n := int(float64(len(r)) * ratio)
	if n < 3 {
		n = 3
	}
	if n > len(r) {
		n = len(r)
	}
	return string(r[:n])
}

// escapeLiteral doubles single quotes for inclusion in a SQL string literal.
func escapeLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
