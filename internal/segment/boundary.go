package segment

import (
	"sort"
	"strings"
)

// Mode identifies which detection method produced a resolution.
type Mode string

const (
	// ModeEmpty means no boundary candidates were found anywhere. This is a
	// reportable condition, not an error.
	ModeEmpty Mode = "empty"
	// ModeText means anchors carry text offsets into the normalized content.
	ModeText Mode = "text"
	// ModeGeometric means anchors carry vertical pixel positions.
	ModeGeometric Mode = "geometric"
)

// Anchor is one resolved question boundary. Start/End are text offsets in
// ModeText and vertical pixel positions in ModeGeometric. Anchors are strictly
// ordered and contiguous: each End equals the next anchor's Start.
type Anchor struct {
	Marker     string
	Start      int
	End        int
	BodyStart  int // text offset where the stem begins (ModeText only)
	Box        Box // marker bounding box (ModeGeometric only)
	Confidence float64
}

// Resolution is the outcome of boundary detection for one region.
type Resolution struct {
	Mode    Mode
	Family  string
	Anchors []Anchor
}

// ResolveText picks the pattern family with the most matches over the content
// and converts its matches to a contiguous anchor sequence. With no family
// matching at all, a permissive numeric pattern is tried before giving up.
func ResolveText(text string) Resolution {
	if strings.TrimSpace(text) == "" {
		return Resolution{Mode: ModeEmpty}
	}
	var best Family
	var bestMatches []Match
	for _, f := range questionFamilies {
		if ms := f.FindAll(text); len(ms) > len(bestMatches) {
			best, bestMatches = f, ms
		}
	}
	if len(bestMatches) == 0 {
		best = permissiveNumeric
		bestMatches = best.FindAll(text)
	}
	if len(bestMatches) == 0 {
		return Resolution{Mode: ModeEmpty}
	}

	anchors := make([]Anchor, 0, len(bestMatches))
	for i, m := range bestMatches {
		end := len(text)
		if i+1 < len(bestMatches) {
			end = bestMatches[i+1].MarkerStart
		}
		a := Anchor{
			Marker:     m.Marker,
			Start:      m.MarkerStart,
			End:        end,
			BodyStart:  m.BodyStart,
			Confidence: ConfidenceUnknown,
		}
		if strings.TrimSpace(text[a.BodyStart:a.End]) == "" {
			// Degenerate span: marker with no body. Fold it into the
			// previous anchor to keep the sequence contiguous.
			if n := len(anchors); n > 0 {
				anchors[n-1].End = a.End
			}
			continue
		}
		anchors = append(anchors, a)
	}
	if len(anchors) == 0 {
		return Resolution{Mode: ModeEmpty}
	}
	return Resolution{Mode: ModeText, Family: best.Name, Anchors: anchors}
}

// ResolveGeometric builds anchors from positioned marker tokens. Tokens below
// the confidence floor are ignored; near-coincident detections (vertical delta
// under DedupVertPx and horizontal delta under DedupHorizPx) collapse to the
// first seen. Survivors are ordered top-to-bottom, left-to-right, and spans
// shorter than MinSpanPx are dropped as noise.
func ResolveGeometric(tokens []TextFragment, contentHeight int, cfg Config) Resolution {
	var cands []TextFragment
	for _, t := range tokens {
		if !IsMarkerToken(t.Text) || t.Confidence <= cfg.ConfidenceFloor {
			continue
		}
		dup := false
		for _, k := range cands {
			if abs(k.Box.Top-t.Box.Top) < cfg.DedupVertPx && abs(k.Box.Left-t.Box.Left) < cfg.DedupHorizPx {
				dup = true
				break
			}
		}
		if !dup {
			cands = append(cands, t)
		}
	}
	if len(cands) == 0 {
		return Resolution{Mode: ModeEmpty}
	}

	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].Box.Top != cands[j].Box.Top {
			return cands[i].Box.Top < cands[j].Box.Top
		}
		return cands[i].Box.Left < cands[j].Box.Left
	})

	// Drop boundaries that would open a span shorter than the minimum.
	kept := cands[:0]
	for _, c := range cands {
		if len(kept) > 0 && c.Box.Top-kept[len(kept)-1].Box.Top < cfg.MinSpanPx {
			continue
		}
		kept = append(kept, c)
	}
	// The final span runs to the bottom of the content.
	for len(kept) > 0 && contentHeight-kept[len(kept)-1].Box.Top < cfg.MinSpanPx {
		kept = kept[:len(kept)-1]
	}
	if len(kept) == 0 {
		return Resolution{Mode: ModeEmpty}
	}

	anchors := make([]Anchor, len(kept))
	for i, c := range kept {
		end := contentHeight
		if i+1 < len(kept) {
			end = kept[i+1].Box.Top
		}
		anchors[i] = Anchor{
			Marker:     strings.TrimSpace(c.Text),
			Start:      c.Box.Top,
			End:        end,
			Box:        c.Box,
			Confidence: c.Confidence,
		}
	}
	return Resolution{Mode: ModeGeometric, Family: "token", Anchors: anchors}
}

// Resolve runs both detection methods and selects the one yielding more
// anchors. Ties go to geometric detection, which is robust to transcription
// errors inside the marker itself.
func Resolve(text string, tokens []TextFragment, contentHeight int, cfg Config) Resolution {
	t := ResolveText(text)
	g := ResolveGeometric(tokens, contentHeight, cfg)
	switch {
	case len(g.Anchors) == 0 && len(t.Anchors) == 0:
		return Resolution{Mode: ModeEmpty}
	case len(g.Anchors) >= len(t.Anchors):
		return g
	default:
		return t
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
