package rdf

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// LangMatches implements SPARQL LANGMATCHES (RFC 4647 basic filtering).
// Searches render the same test into the query as a FILTER and let the
// triplestore evaluate it; LangMatches and LabelMatches are the in-process
// model of that FILTER, and the tests of package rdf pin its semantics.
//
// "*" matches any non-empty tag. Otherwise the tag matches when it equals
// the range, or starts with the range followed by '-', compared without
// regard to case. An empty tag never matches.
func LangMatches(tag, languageRange string) bool {
	if tag == "" {
		return false
	}
	if languageRange == "*" {
		return true
	}
	if len(tag) < len(languageRange) {
		return false
	}
	if !strings.EqualFold(tag[:len(languageRange)], languageRange) {
		return false
	}
	return len(tag) == len(languageRange) || tag[len(languageRange)] == '-'
}

// LabelMatches reports whether a label carrying tag satisfies the type-label
// language filter: untagged labels always match, tagged ones match iff
// LangMatches(tag, requested). An empty requested language accepts all.
func LabelMatches(tag, requested string) bool {
	if requested == "" || tag == "" {
		return true
	}
	return LangMatches(tag, requested)
}

// ParseLanguage validates a BCP 47 language tag supplied by a caller and
// returns it unchanged. The original spelling is kept because it is sent to
// the triplestore as a LANGMATCHES range.
func ParseLanguage(tag string) (string, error) {
	if tag == "" {
		return "", nil
	}
	if _, err := language.Parse(tag); err != nil {
		return "", fmt.Errorf("invalid language tag %q: %w", tag, err)
	}
	return tag, nil
}

// foldKey returns the normalized, case folded form used for label matching.
func foldKey(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}

// ContainsFold reports whether needle occurs in haystack, ignoring case.
// Both strings are NFC normalized first so composed and decomposed accents
// compare equal.
func ContainsFold(haystack, needle string) bool {
	return strings.Contains(foldKey(haystack), foldKey(needle))
}
