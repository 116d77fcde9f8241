package segment

// ImageOnlyStem is the sentinel stem for questions that produced no readable
// text, only a cropped region.
const ImageOnlyStem = "(image only)"

type parsedSpan struct {
	stem string
	opts []Option
}

// parseSpans runs textual resolution over the region text and splits each
// span into stem and options. Used to pair text with geometric anchors by
// position order.
func parseSpans(text string) []parsedSpan {
	res := ResolveText(text)
	if res.Mode != ModeText {
		return nil
	}
	spans := make([]parsedSpan, 0, len(res.Anchors))
	for _, a := range res.Anchors {
		stem, opts := SplitOptions(text[a.BodyStart:a.End])
		spans = append(spans, parsedSpan{stem: stem, opts: opts})
	}
	return spans
}

// buildTextual assembles records from text-offset anchors. Question numbers
// follow anchor order; the parsed marker value is advisory only.
func (e *Engine) buildTextual(r Region, res Resolution, text string, regionAvg float64) []Question {
	qs := make([]Question, 0, len(res.Anchors))
	for _, a := range res.Anchors {
		stem, opts := SplitOptions(text[a.BodyStart:a.End])
		if stem == "" && len(opts) == 0 {
			continue
		}
		qs = append(qs, Question{
			Number:     len(qs) + 1,
			Stem:       stem,
			Options:    opts,
			Confidence: regionAvg,
			Page:       r.Page,
			Column:     r.Column,
		})
	}
	return qs
}

// buildGeometric assembles records from pixel-position anchors. Stems and
// options come from pairing textual spans by order when available; anchors
// with no paired text get the image-only sentinel. Each record's crop is the
// band between its anchor and the next, with the visible marker glyph trimmed
// off the left edge.
func (e *Engine) buildGeometric(r Region, res Resolution, text string, regionAvg float64) []Question {
	spans := parseSpans(text)
	qs := make([]Question, 0, len(res.Anchors))
	for i, a := range res.Anchors {
		q := Question{
			Number:     i + 1,
			Stem:       ImageOnlyStem,
			Confidence: a.Confidence,
			Page:       r.Page,
			Column:     r.Column,
		}
		if i < len(spans) {
			q.Stem = spans[i].stem
			q.Options = spans[i].opts
			if q.Stem == "" {
				q.Stem = ImageOnlyStem
			}
		}
		if q.Confidence == ConfidenceUnknown {
			q.Confidence = regionAvg
		}

		if e.cropper != nil && len(r.Pixmap) > 0 {
			top := a.Start - e.cfg.TopPaddingPx
			if top < 0 {
				top = 0
			}
			trimLeft := 0
			if a.Box.Width > 0 {
				trimLeft = a.Box.Right() + e.cfg.TrimPaddingPx
			}
			if crop, err := e.cropper.CropBand(r.Pixmap, top, a.End, trimLeft); err == nil {
				q.Crop = crop
			}
		}

		if idx := NearestBelow(a.Box.Bottom(), r.Images); idx >= 0 {
			q.Images = append(q.Images, r.Images[idx])
		}

		qs = append(qs, q)
	}
	return qs
}
