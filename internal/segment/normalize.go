package segment

import (
	"regexp"
	"strings"
)

var (
	controlRe   = regexp.MustCompile("[\x00-\x08\x0b\x0c\x0e-\x1f]")
	hspaceRe    = regexp.MustCompile(`[ \t]+`)
	lineEdgeRe  = regexp.MustCompile(` ?\n ?`)
	manyBreakRe = regexp.MustCompile(`\n{3,}`)

	// OCR glyphs that commonly stand in for a period after a question number,
	// e.g. "1o What" or "12, Which". Applied at line starts only so body text
	// is never rewritten.
	confusedDotRe = regexp.MustCompile(`(?m)^(\d{1,3})[oOlI,](\s)`)
	gluedMarkerRe = regexp.MustCompile(`(?m)^(\d{1,3})\.(\w)`)
)

// Normalize cleans raw recognized or extracted text: control characters are
// removed, runs of horizontal whitespace collapse to single spaces, excess
// blank lines collapse to one paragraph break, and marker-position OCR
// substitutions are corrected. Total on any input; empty in, empty out.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = controlRe.ReplaceAllString(s, "")
	s = hspaceRe.ReplaceAllString(s, " ")
	s = lineEdgeRe.ReplaceAllString(s, "\n")
	s = manyBreakRe.ReplaceAllString(s, "\n\n")
	s = confusedDotRe.ReplaceAllString(s, "${1}.${2}")
	s = gluedMarkerRe.ReplaceAllString(s, "${1}. ${2}")
	return strings.TrimSpace(s)
}
