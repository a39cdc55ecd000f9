package coach

import (
	"regexp"
	"strings"
)

// Stock safety phrases read as filler to beginners, so they are stripped
// unless the user actually asked about safety, pain, or form.
var clichePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\blisten to your body\b`),
	regexp.MustCompile(`(?i)\bif (you )?feel( any)? pain[^.?!]*\bstop\b`),
	regexp.MustCompile(`(?i)\bstop if (you )?feel pain\b`),
	regexp.MustCompile(`(?i)\btalk to (a|your) doctor\b`),
}

// sanitizeCliches removes whole sentences containing blocked phrases.
// Filtering everything away returns the original reply untouched.
func sanitizeCliches(userMessage, reply string) string {
	if isSafetyTopic(userMessage) {
		return reply
	}

	var kept []string
	for _, sent := range splitWithPunct(reply) {
		blocked := false
		for _, pat := range clichePatterns {
			if pat.MatchString(sent) {
				blocked = true
				break
			}
		}
		if !blocked {
			kept = append(kept, strings.TrimSpace(sent))
		}
	}
	cleaned := strings.TrimSpace(strings.Join(kept, " "))
	if cleaned == "" {
		return reply
	}
	return cleaned
}

// splitWithPunct cuts text into sentences keeping the terminal punctuation
// attached, so rejoining preserves the original rhythm.
func splitWithPunct(text string) []string {
	var out []string
	start := 0
	for i, ch := range text {
		if ch == '.' || ch == '!' || ch == '?' {
			if s := strings.TrimSpace(text[start : i+1]); s != "" {
				out = append(out, s)
			}
			start = i + 1
		}
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}
