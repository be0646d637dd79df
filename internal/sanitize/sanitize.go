// Package sanitize implements the request validation and text-cleanup
// pipeline applied before a message reaches any TTS back-end.
package sanitize

import (
	"regexp"
	"strings"
)

const MaxFieldLength = 500

var (
	scriptTag  = regexp.MustCompile(`(?i)<script`)
	dotdotSlash = regexp.MustCompile(`\.\./`)
	shellMeta  = regexp.MustCompile("[;&|><`$\\\\]")
	emphasis   = regexp.MustCompile(`\*\*([^*]*)\*\*|\*([^*]*)\*|` + "`([^`]*)`")
	heading    = regexp.MustCompile(`(?m)^#{1,6} `)
	bracketRun = regexp.MustCompile(`\[[^\]]*\]`)
	urlScheme  = regexp.MustCompile(`(?i)https?://`)
	mdLink     = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	wsRun      = regexp.MustCompile(`\s+`)
)

// Sanitise runs the ordered cleanup pipeline described in the request
// pipeline's validation rules. It is idempotent: Sanitise(Sanitise(x)) ==
// Sanitise(x).
func Sanitise(s string) string {
	s = scriptTag.ReplaceAllString(s, "")
	s = dotdotSlash.ReplaceAllString(s, "")
	s = shellMeta.ReplaceAllString(s, "")
	s = emphasis.ReplaceAllString(s, "$1$2$3")
	s = heading.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	return s
}

// ValidateField sanitises and trims a title/message field, returning an
// error reason if the result is invalid. A field that sanitises down to
// 500 characters or fewer is accepted as-is; a field still over 500
// characters after sanitisation is rejected rather than silently
// truncated, per the length-rejection testable property.
func ValidateField(raw string) (sanitised string, reason string, ok bool) {
	s := Sanitise(raw)
	if s == "" {
		return "", "field is empty after sanitisation", false
	}
	if len(s) > MaxFieldLength {
		return "", "message too long", false
	}
	return s, "", true
}

// StripBrackets removes bracketed runs, a legacy cleanup step applied in
// addition to Sanitise, immediately before speech.
func StripBrackets(s string) string {
	return bracketRun.ReplaceAllString(s, "")
}

// StripURLSchemes removes literal http:// and https:// prefixes.
func StripURLSchemes(s string) string {
	return urlScheme.ReplaceAllString(s, "")
}

// FlattenMarkdownLinks rewrites [text](url) to text.
func FlattenMarkdownLinks(s string) string {
	return mdLink.ReplaceAllString(s, "$1")
}

// ApplyPronunciations replaces each map key, matched as a whole word,
// case-insensitively, with its value.
func ApplyPronunciations(s string, m map[string]string) string {
	for term, replacement := range m {
		pattern := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(term) + `\b`)
		s = pattern.ReplaceAllString(s, replacement)
	}
	return s
}

// PrepareForSpeech applies the full pre-synthesis pipeline: markdown-link
// flattening, bracket stripping, pronunciation substitution, and
// URL-scheme stripping, in that order. Markdown-link flattening must run
// before the generic bracket strip, since a bare "[text]" strip would
// otherwise consume the link-text bracket of "[text](url)" before it can
// be flattened to "text".
func PrepareForSpeech(s string, pronunciations map[string]string) string {
	s = FlattenMarkdownLinks(s)
	s = StripBrackets(s)
	s = ApplyPronunciations(s, pronunciations)
	s = StripURLSchemes(s)
	return wsRun.ReplaceAllString(s, " ")
}

// SplitSentences splits a message into sentences by matching runs of
// non-terminator characters followed by one or more of . ! ?, optionally
// followed by whitespace. The trailing fragment, if any, forms the last
// sentence. Empty sentences are dropped.
func SplitSentences(s string) []string {
	re := regexp.MustCompile(`[^.!?]+[.!?]+\s*`)
	matches := re.FindAllString(s, -1)

	consumed := 0
	for _, m := range matches {
		consumed += len(m)
	}

	var out []string
	for _, m := range matches {
		t := strings.TrimSpace(m)
		if t != "" {
			out = append(out, t)
		}
	}
	if consumed < len(s) {
		if trailing := strings.TrimSpace(s[consumed:]); trailing != "" {
			out = append(out, trailing)
		}
	}
	return out
}
