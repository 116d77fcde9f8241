package segment

import (
	"sort"
	"strings"
)

// NearestBelow returns the index of the image with the smallest non-negative
// vertical offset below the given bottom position, or -1 when no image sits
// at or below it. Images above an anchor are never associated backward.
func NearestBelow(bottom int, images []ImageFragment) int {
	best := -1
	bestOff := int(^uint(0) >> 1)
	for i, img := range images {
		off := img.Box.Top - bottom
		if off < 0 || off >= bestOff {
			continue
		}
		best, bestOff = i, off
	}
	return best
}

// Columns partitions a page into independent regions. With twoColumn set, the
// page splits at its horizontal midpoint and fragment coordinates become
// column-local; cross-column association is impossible afterwards.
func Columns(p Page, twoColumn bool) []Region {
	if !twoColumn {
		r := Region{Page: p.Number, Column: 1, Width: p.Width, Height: p.Height,
			Tokens: p.Fragments, Images: p.Images}
		r.Text = Linearize(r.Tokens)
		return []Region{r}
	}

	mid := p.Width / 2
	left := Region{Page: p.Number, Column: 1, Width: mid, Height: p.Height}
	right := Region{Page: p.Number, Column: 2, Width: p.Width - mid, Height: p.Height}

	for _, f := range p.Fragments {
		if f.Box.Left+f.Box.Width/2 < mid {
			left.Tokens = append(left.Tokens, f)
		} else {
			f.Box.Left -= mid
			right.Tokens = append(right.Tokens, f)
		}
	}
	for _, img := range p.Images {
		if img.Box.Left+img.Box.Width/2 < mid {
			left.Images = append(left.Images, img)
		} else {
			img.Box.Left -= mid
			right.Images = append(right.Images, img)
		}
	}
	left.Text = Linearize(left.Tokens)
	right.Text = Linearize(right.Tokens)
	return []Region{left, right}
}

// Linearize reconstructs reading-order text from positioned fragments:
// top-to-bottom, left-to-right, with a line break whenever the vertical
// position advances past a small tolerance.
func Linearize(frags []TextFragment) string {
	if len(frags) == 0 {
		return ""
	}
	sorted := make([]TextFragment, len(frags))
	copy(sorted, frags)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Box.Top != sorted[j].Box.Top {
			return sorted[i].Box.Top < sorted[j].Box.Top
		}
		return sorted[i].Box.Left < sorted[j].Box.Left
	})

	const lineTolerance = 4
	var sb strings.Builder
	lineTop := sorted[0].Box.Top
	for i, f := range sorted {
		t := strings.TrimSpace(f.Text)
		if t == "" {
			continue
		}
		if i > 0 {
			if f.Box.Top-lineTop > lineTolerance {
				sb.WriteByte('\n')
				lineTop = f.Box.Top
			} else if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(t)
	}
	return sb.String()
}
