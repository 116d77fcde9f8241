// Package docgen serializes question records into a Word document: one table,
// one row per question, stem plus options laid out across a fixed column
// count the way exam papers are typeset.
package docgen

import (
	"bytes"
	"fmt"

	"github.com/fumiama/go-docx"

	"github.com/nitishgarg26/pdf-mcq/internal/imaging"
	"github.com/nitishgarg26/pdf-mcq/internal/segment"
)

// A4 page dimensions in twentieths of a point.
const (
	a4WidthTwips  = 11906
	a4HeightTwips = 16838
)

// Options controls document geometry.
type Options struct {
	// Landscape rotates the page, trading height for table width.
	Landscape bool
	// MarginTwips is the uniform page margin. 720 twips is half an inch.
	MarginTwips int
	// Columns is the total table column count: one stem cell plus
	// option cells. Rows with fewer options get empty padding cells.
	Columns int
	// ImageWidthPx is the width cropped question images are scaled to
	// before embedding.
	ImageWidthPx int
}

// DefaultOptions is the landscape five-column layout.
func DefaultOptions() Options {
	return Options{
		Landscape:    true,
		MarginTwips:  720,
		Columns:      5,
		ImageWidthPx: 420,
	}
}

// UsableWidthTwips is the page width left between the margins. The table and
// embedded images are sized from it.
func (o Options) UsableWidthTwips() int {
	w := a4WidthTwips
	if o.Landscape {
		w = a4HeightTwips
	}
	u := w - 2*o.MarginTwips
	if u < 1000 {
		u = 1000
	}
	return u
}

// Generate builds the .docx bytes for a question sequence.
func Generate(questions []segment.Question, opts Options) ([]byte, error) {
	if opts.Columns < 2 {
		opts.Columns = DefaultOptions().Columns
	}
	if opts.ImageWidthPx <= 0 {
		opts.ImageWidthPx = DefaultOptions().ImageWidthPx
	}

	doc := docx.New().WithDefaultTheme()

	tbl := doc.AddTable(len(questions)+1, opts.Columns, int64(opts.UsableWidthTwips()), nil)
	header := tbl.TableRows[0]
	header.TableCells[0].AddParagraph().AddText("Question")
	for i := 1; i < opts.Columns; i++ {
		header.TableCells[i].AddParagraph().AddText(fmt.Sprintf("Option %c", 'A'+i-1))
	}

	for qi, q := range questions {
		row := tbl.TableRows[qi+1]
		stem := row.TableCells[0].AddParagraph()
		stem.AddText(fmt.Sprintf("Q%d. %s", q.Number, q.Stem))
		embedImages(row.TableCells[0], q, opts)

		for ci := 1; ci < opts.Columns; ci++ {
			cell := row.TableCells[ci].AddParagraph()
			if oi := ci - 1; oi < len(q.Options) {
				cell.AddText(fmt.Sprintf("%s. %s", q.Options[oi].Label, q.Options[oi].Text))
			}
		}
	}

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("serialize docx: %w", err)
	}
	return buf.Bytes(), nil
}

// paragraphAdder is the slice of the cell API the generator needs.
type paragraphAdder interface {
	AddParagraph() *docx.Paragraph
}

// embedImages adds the cropped question raster and any associated figures to
// the stem cell. A broken image degrades to a placeholder line so one bad
// crop never sinks the whole document.
func embedImages(cell paragraphAdder, q segment.Question, opts Options) {
	for _, data := range collectImages(q) {
		scaled, err := prepareImage(data, opts.ImageWidthPx)
		if err == nil {
			_, err = cell.AddParagraph().AddInlineDrawing(scaled)
		}
		if err != nil {
			cell.AddParagraph().AddText("[image unavailable]")
		}
	}
}

func collectImages(q segment.Question) [][]byte {
	var imgs [][]byte
	if len(q.Crop) > 0 {
		imgs = append(imgs, q.Crop)
	}
	for _, f := range q.Images {
		if len(f.Data) > 0 {
			imgs = append(imgs, f.Data)
		}
	}
	return imgs
}

func prepareImage(data []byte, widthPx int) ([]byte, error) {
	img, err := imaging.Decode(data)
	if err != nil {
		return nil, err
	}
	if img.Bounds().Dx() <= widthPx {
		return data, nil
	}
	return imaging.EncodePNG(imaging.ScaleToWidth(img, widthPx))
}
