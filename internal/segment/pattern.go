package segment

import (
	"regexp"
	"strings"
)

// Family is one registered question-marker pattern. Matches are anchored at
// the start of the text or after a line break.
type Family struct {
	Name string
	re   *regexp.Regexp
}

// Match is one marker occurrence within a text.
type Match struct {
	Marker      string
	MarkerStart int
	MarkerEnd   int
	// BodyStart is the offset just past the marker and its trailing
	// whitespace, where the question body begins.
	BodyStart int
}

var questionFamilies = []Family{
	{"numeric-period", regexp.MustCompile(`(?m)^(\d{1,3}\.)\s*`)},
	{"q-prefixed", regexp.MustCompile(`(?mi)^(q\d{1,3}\.?)\s*`)},
	{"numeric-paren", regexp.MustCompile(`(?m)^(\d{1,3}\))\s*`)},
	{"parenthesized", regexp.MustCompile(`(?m)^(\(\d{1,3}\))\s*`)},
	{"question-keyword", regexp.MustCompile(`(?mi)^(question\s+\d{1,3}\.?)\s*`)},
	{"numeric-dash", regexp.MustCompile(`(?m)^(\d{1,3}[-–—])\s*`)},
}

// permissiveNumeric is the fallback when no registered family matches: a
// numeric-period marker anywhere in the text, not only at line starts.
var permissiveNumeric = Family{"numeric-any", regexp.MustCompile(`(\d{1,3}\.)\s*`)}

// FindAll returns the family's non-overlapping matches in order.
func (f Family) FindAll(text string) []Match {
	idx := f.re.FindAllStringSubmatchIndex(text, -1)
	if len(idx) == 0 {
		return nil
	}
	matches := make([]Match, 0, len(idx))
	for _, m := range idx {
		matches = append(matches, Match{
			Marker:      text[m[2]:m[3]],
			MarkerStart: m[2],
			MarkerEnd:   m[3],
			BodyStart:   m[1],
		})
	}
	return matches
}

// HasLeadingMarker reports whether text begins with any registered question
// marker. Used to enforce the strip-once invariant on produced stems.
func HasLeadingMarker(text string) bool {
	for _, f := range questionFamilies {
		if loc := f.re.FindStringIndex(text); loc != nil && loc[0] == 0 {
			return true
		}
	}
	return false
}

// Marker-token patterns for geometric detection: a short OCR token that is
// exactly one question marker.
var tokenMarkerRes = []*regexp.Regexp{
	regexp.MustCompile(`^\d{1,3}\.$`),
	regexp.MustCompile(`(?i)^q\d{1,3}\.?$`),
	regexp.MustCompile(`^\d{1,3}\)$`),
	regexp.MustCompile(`^\(\d{1,3}\)$`),
}

// IsMarkerToken reports whether a recognized token is a question marker on
// its own.
func IsMarkerToken(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	for _, re := range tokenMarkerRes {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// optionRe matches answer-choice markers: lettered A-E or numeric 1-4 in
// parentheses or brackets, or a letter with a period/paren suffix. A marker
// must follow the start of the span or whitespace.
var optionRe = regexp.MustCompile(`(?:^|\s)(?:\(([A-Ea-e1-4])\)|\[([A-Ea-e1-4])\]|([A-Ea-e])[.)])\s*`)

// SplitOptions divides one question span into its stem and ordered options.
// Fewer than two option markers means the whole span is stem: synthetic
// options are never invented. Trailing text after the final marker belongs to
// the last option.
func SplitOptions(span string) (string, []Option) {
	ms := optionRe.FindAllStringSubmatchIndex(span, -1)
	if len(ms) < 2 {
		return strings.TrimSpace(span), nil
	}
	stem := strings.TrimSpace(span[:ms[0][0]])
	opts := make([]Option, 0, len(ms))
	for i, m := range ms {
		end := len(span)
		if i+1 < len(ms) {
			end = ms[i+1][0]
		}
		opts = append(opts, Option{
			Label: strings.ToUpper(submatchText(span, m)),
			Text:  strings.TrimSpace(span[m[1]:end]),
		})
	}
	return stem, opts
}

// submatchText returns the first non-empty capture group of a match produced
// by FindAllStringSubmatchIndex.
func submatchText(s string, m []int) string {
	for i := 2; i+1 < len(m); i += 2 {
		if m[i] >= 0 {
			return s[m[i]:m[i+1]]
		}
	}
	return ""
}
