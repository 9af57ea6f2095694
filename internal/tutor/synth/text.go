package synth

import (
	"strings"
)

// splitSentences breaks prose into trimmed sentences on terminal punctuation.
// Markdown bullets and headers are treated as sentence boundaries too.
func splitSentences(text string) []string {
	var out []string
	var b strings.Builder
	flush := func() {
		s := strings.TrimSpace(b.String())
		if s != "" {
			out = append(out, s)
		}
		b.Reset()
	}
	for _, r := range text {
		switch r {
		case '.', '!', '?':
			b.WriteRune(r)
			flush()
		case '\n':
			flush()
		default:
			b.WriteRune(r)
		}
	}
	flush()
	return out
}

// firstSentence returns the first sentence of text, or "" when empty.
func firstSentence(text string) string {
	for _, s := range splitSentences(text) {
		if s != "" {
			return s
		}
	}
	return ""
}

// questionsIn extracts the sentences ending in "?" in order.
func questionsIn(text string) []string {
	var out []string
	for _, s := range splitSentences(text) {
		if strings.HasSuffix(s, "?") {
			out = append(out, s)
		}
	}
	return out
}

// firstQuestion returns the first question found in text, or fallback.
func firstQuestion(text, fallback string) string {
	if qs := questionsIn(text); len(qs) > 0 {
		return qs[0]
	}
	return fallback
}

// hasQuestion reports whether text contains any question mark.
func hasQuestion(text string) bool {
	return strings.Contains(text, "?")
}

// hasBullets reports whether text contains markdown bullet or numbered lines.
func hasBullets(text string) bool {
	return countBullets(text) > 0
}

// countBullets counts the markdown bullet and numbered lines in text.
func countBullets(text string) int {
	n := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ") {
			n++
			continue
		}
		if len(line) > 2 && line[0] >= '1' && line[0] <= '9' && line[1] == '.' {
			n++
		}
	}
	return n
}

// insertAfterLastBullet places line directly after the final bullet line, or
// appends it when the text has none.
func insertAfterLastBullet(text, bullet string) string {
	lines := strings.Split(text, "\n")
	last := -1
	for i, l := range lines {
		t := strings.TrimSpace(l)
		if strings.HasPrefix(t, "- ") || strings.HasPrefix(t, "* ") {
			last = i
		}
	}
	if last == -1 {
		return strings.TrimRight(text, "\n ") + "\n" + bullet
	}
	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[:last+1]...)
	out = append(out, bullet)
	out = append(out, lines[last+1:]...)
	return strings.Join(out, "\n")
}

// bulletsFromSentences turns up to max sentences into "- " bullet lines,
// skipping ones already shaped as bullets.
func bulletsFromSentences(text string, max int) []string {
	var out []string
	for _, s := range splitSentences(text) {
		if strings.HasPrefix(s, "- ") || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, "- "+s)
		if len(out) == max {
			break
		}
	}
	return out
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}
