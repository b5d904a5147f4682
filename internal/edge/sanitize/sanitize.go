// Package sanitize strips markup and canonicalizes free-text input.
// Validation is the authoritative gate; this package is defense-in-depth
// for values that reach storage or display.
package sanitize

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/unicode/norm"
)

// policy strips every tag and attribute (zero-tag allowlist) while
// keeping text content. The explicit forbid lists are redundant with the
// empty allowlist; they stay so a future relaxation of the allowlist
// cannot quietly re-admit the dangerous set.
var policy = func() *bluemonday.Policy {
	p := bluemonday.StrictPolicy()
	p.SkipElementsContent("script", "style", "iframe", "object", "embed")
	return p
}()

// xssPatterns is the fixed signature set checked by
// ContainsSuspiciousPattern. Case-insensitive.
var xssPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<script`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)onerror=`),
	regexp.MustCompile(`(?i)onload=`),
	regexp.MustCompile(`(?i)<iframe`),
	regexp.MustCompile(`(?i)eval\(`),
	regexp.MustCompile(`(?i)expression\(`),
	regexp.MustCompile(`(?i)vbscript:`),
	regexp.MustCompile(`(?i)on\w+\s*=`), // any inline event handler
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// Sanitize canonicalizes a free-text input:
//  1. Unicode NFC normalization (defeats homoglyph/encoding evasion)
//  2. strips all markup tags and attributes, keeping text content
//  3. removes control characters (below 0x20 except common whitespace, and 0x7F)
//  4. collapses whitespace runs to single spaces and trims
//
// Pure function; empty or absent input yields the empty string, and the
// result is a fixed point: Sanitize(Sanitize(x)) == Sanitize(x).
func Sanitize(input string) string {
	if input == "" {
		return ""
	}

	s := norm.NFC.String(input)
	// Surviving text stays entity-escaped. Unescaping here would turn
	// inert text like "&lt;script&gt;" back into live markup and break
	// the fixed-point guarantee.
	s = policy.Sanitize(s)
	s = stripControl(s)
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// SanitizeEmail normalizes an email for storage and comparison:
// sanitized, lowercased, all whitespace removed.
func SanitizeEmail(email string) string {
	s := Sanitize(email)
	s = strings.ToLower(s)
	return strings.ReplaceAll(s, " ", "")
}

// ContainsSuspiciousPattern reports whether input matches any of the
// fixed XSS signatures. It runs server-side as a second check after any
// client-side sanitizer, because client-side sanitization is not
// trustworthy.
func ContainsSuspiciousPattern(input string) bool {
	for _, p := range xssPatterns {
		if p.MatchString(input) {
			return true
		}
	}
	return false
}

// EscapeHTML escapes special characters for safe embedding of user input
// in an HTML context (e.g. notification email bodies).
func EscapeHTML(text string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#x27;",
		"/", "&#x2F;",
	)
	return r.Replace(text)
}

// EnforceMaxBytes truncates input to at most maxBytes of UTF-8 without
// splitting a rune.
func EnforceMaxBytes(input string, maxBytes int) string {
	if len(input) <= maxBytes {
		return input
	}

	cut := maxBytes
	for cut > 0 && !isRuneStart(input[cut]) {
		cut--
	}
	return input[:cut]
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }

func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			// kept here; the whitespace collapse pass folds them away
			return r
		case r < 0x20 || r == 0x7F:
			return -1
		default:
			return r
		}
	}, s)
}
