// Package subject maps the free-text subject labels found in the question
// banks onto the fixed set of canonical subjects used for quotas and weights.
package subject

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Canonical subjects.
const (
	Portuguese   = "Português"
	Logic        = "RLM"
	Computing    = "Informática"
	HistoryGeo   = "História e Geografia"
	LegalNotions = "Noções de Direito"
	Legislation  = "Legislação"
	Other        = "Outros"
)

type rule struct {
	fragments []string
	canonical string
}

// rules are evaluated in order; the first rule with a matching fragment wins.
var rules = []rule{
	{fragments: []string{"portugu", "língua"}, canonical: Portuguese},
	{fragments: []string{"lógic", "raciocínio", "matemát"}, canonical: Logic},
	{fragments: []string{"informát"}, canonical: Computing},
	{fragments: []string{"história", "geografia"}, canonical: HistoryGeo},
	{fragments: []string{"direito"}, canonical: LegalNotions},
	{fragments: []string{"legisla"}, canonical: Legislation},
}

// foldedRules holds the fragments with accents stripped, built once.
var foldedRules = func() []rule {
	out := make([]rule, len(rules))
	for i, r := range rules {
		frags := make([]string, len(r.fragments))
		for j, f := range r.fragments {
			frags[j] = fold(f)
		}
		out[i] = rule{fragments: frags, canonical: r.canonical}
	}
	return out
}()

// Normalize returns the canonical subject for raw. Empty input yields Other;
// a label no rule recognises is returned unchanged.
func Normalize(raw string) string {
	key := fold(strings.TrimSpace(raw))
	if key == "" {
		return Other
	}
	for _, r := range foldedRules {
		for _, f := range r.fragments {
			if strings.Contains(key, f) {
				return r.canonical
			}
		}
	}
	return raw
}

// Canonical lists the six scored subjects in exam order.
func Canonical() []string {
	return []string{Portuguese, Logic, Computing, HistoryGeo, LegalNotions, Legislation}
}

// IsCanonical reports whether name is one of the six scored subjects.
func IsCanonical(name string) bool {
	for _, c := range Canonical() {
		if c == name {
			return true
		}
	}
	return false
}

// fold lowercases s and strips combining marks ("Língua" -> "lingua").
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}
