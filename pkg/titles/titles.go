// Package titles normalises content titles for tenant-scoped uniqueness checks.
package titles

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// separators are folded into a single dash.
	separators = regexp.MustCompile(`[\s_\-/.]+`)
	// disallowed is anything left that is neither a letter, a digit nor a
	// dash, in any script.
	disallowed = regexp.MustCompile(`[^\p{L}\p{N}-]+`)
	multiDash  = regexp.MustCompile(`-{2,}`)
)

// Strip returns the canonical form of a title: accents folded, lowercase,
// punctuation dropped, whitespace and separator runs collapsed into one dash.
//
//	Strip("  Annual   Report ") == "annual-report"
//	Strip("Café / Policy_2024") == "cafe-policy-2024"
//	Strip("Отчёт 2024") == "отчет-2024"
//
// A title with no letters or digits strips to "". Such titles never collide
// by stripped form, and the unique index skips them too.
func Strip(title string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	out, _, err := transform.String(t, title)
	if err != nil {
		out = title
	}

	out = strings.ToLower(strings.TrimSpace(out))
	out = separators.ReplaceAllString(out, "-")
	out = disallowed.ReplaceAllString(out, "")
	out = multiDash.ReplaceAllString(out, "-")
	return strings.Trim(out, "-")
}

// Clean trims a raw title and collapses inner whitespace. It is the form
// stored in the title column and used for containment matching.
func Clean(title string) string {
	return strings.Join(strings.Fields(title), " ")
}

// Collides reports whether an existing title blocks the candidate: either
// both strip to the same value, or the existing raw title contains the
// candidate anywhere, compared case-insensitively.
func Collides(candidate, existingTitle, existingStripped string) bool {
	cand := Clean(candidate)
	if cand == "" {
		return false
	}
	stripped := Strip(cand)
	if existingStripped == "" {
		existingStripped = Strip(existingTitle)
	}
	if stripped != "" && stripped == existingStripped {
		return true
	}
	return strings.Contains(strings.ToLower(Clean(existingTitle)), strings.ToLower(cand))
}

func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
