package copywriter

import (
	"regexp"
	"strings"
)

var (
	numberedLine   = regexp.MustCompile(`^\s*\d+\.`)
	numberedPrefix = regexp.MustCompile(`^\s*\d+\.\s*`)
)

// ExtractNumbered keeps the lines of text that start with "N.", strips the
// number and trims them. Other lines are dropped. At most limit items are
// returned; limit <= 0 keeps all.
func ExtractNumbered(text string, limit int) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !numberedLine.MatchString(line) {
			continue
		}
		out = append(out, strings.TrimSpace(numberedPrefix.ReplaceAllString(line, "")))
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
