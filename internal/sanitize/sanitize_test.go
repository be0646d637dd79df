package sanitize

import (
	"strings"
	"testing"
)

func TestSanitiseIdempotent(t *testing.T) {
	inputs := []string{
		"<script>alert(1)</script>; rm -rf /",
		"**bold** and `code` and # Heading",
		"../../etc/passwd",
		"plain text",
	}
	for _, in := range inputs {
		once := Sanitise(in)
		twice := Sanitise(once)
		if once != twice {
			t.Errorf("Sanitise not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
	}
}

func TestSanitiseStripsDangerousConstructs(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"script tag", "<script>alert(1)</script>"},
		{"path traversal", "../etc/passwd"},
		{"shell metacharacters", "foo; rm -rf / | cat"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Sanitise(tt.in)
			if out == tt.in {
				t.Errorf("expected %q to be modified by sanitisation", tt.in)
			}
		})
	}
}

func TestValidateFieldBoundaries(t *testing.T) {
	t.Run("exactly 500 after sanitisation accepted", func(t *testing.T) {
		s := make([]byte, MaxFieldLength)
		for i := range s {
			s[i] = 'a'
		}
		_, _, ok := ValidateField(string(s))
		if !ok {
			t.Fatal("expected exactly-500-length field to be accepted")
		}
	})

	t.Run("empty after sanitisation rejected", func(t *testing.T) {
		_, reason, ok := ValidateField("<script></script>")
		if ok {
			t.Fatal("expected empty-after-sanitisation field to be rejected")
		}
		if reason == "" {
			t.Fatal("expected a rejection reason")
		}
	})

	t.Run("501 post-sanitisation rejected as too long", func(t *testing.T) {
		s := make([]byte, MaxFieldLength+1)
		for i := range s {
			s[i] = 'a'
		}
		_, reason, ok := ValidateField(string(s))
		if ok {
			t.Fatal("expected over-length field to be rejected, not truncated")
		}
		if reason != "message too long" {
			t.Errorf("expected \"message too long\" reason, got %q", reason)
		}
	})

	t.Run("501 pre-sanitisation that shrinks to 500 accepted", func(t *testing.T) {
		s := "a;" + strings.Repeat("a", MaxFieldLength-1)
		if len(s) != MaxFieldLength+1 {
			t.Fatalf("test setup: expected %d-byte input, got %d", MaxFieldLength+1, len(s))
		}
		sanitised, _, ok := ValidateField(s)
		if !ok {
			t.Fatal("expected field that sanitises down to 500 bytes to be accepted")
		}
		if len(sanitised) != MaxFieldLength {
			t.Errorf("expected sanitised length %d, got %d", MaxFieldLength, len(sanitised))
		}
	})
}

func TestApplyPronunciationsWholeWordCaseInsensitive(t *testing.T) {
	m := map[string]string{"api": "A P I"}
	out := ApplyPronunciations("Call the API now, apiary visit later", m)
	if out != "Call the A P I now, apiary visit later" {
		t.Errorf("unexpected pronunciation substitution: %q", out)
	}
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected int
	}{
		{"single sentence no terminator", "hello world", 1},
		{"three sentences", "First. Second! Third?", 3},
		{"trailing fragment", "First sentence. trailing bit", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitSentences(tt.in)
			if len(got) != tt.expected {
				t.Errorf("SplitSentences(%q) = %v, want %d sentences", tt.in, got, tt.expected)
			}
		})
	}
}

func TestStripBrackets(t *testing.T) {
	out := StripBrackets("hello [world] there")
	if out != "hello  there" {
		t.Errorf("unexpected bracket stripping: %q", out)
	}
}

func TestFlattenMarkdownLinks(t *testing.T) {
	out := FlattenMarkdownLinks("see [docs](https://example.com) for more")
	if out != "see docs for more" {
		t.Errorf("unexpected markdown link flattening: %q", out)
	}
}

func TestPrepareForSpeechFlattensMarkdownLinkBeforeBracketStrip(t *testing.T) {
	out := PrepareForSpeech("see [docs](https://example.com) for more", nil)
	if out != "see docs for more" {
		t.Errorf("expected markdown link to flatten to its text, got %q", out)
	}
}
