// Package pagesource opens uploaded PDFs and exposes their pages as
// positioned text fragments for the segmentation engine. It reads the
// embedded text layer; scanned pages with no usable layer are handled
// upstream by rasterization plus OCR.
package pagesource

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/nitishgarg26/pdf-mcq/internal/segment"
)

// ErrUnreadable marks input that is not a parseable PDF.
var ErrUnreadable = errors.New("unreadable pdf")

// ErrTooLarge marks input exceeding the configured upload limit.
var ErrTooLarge = errors.New("input too large")

// ValidateUpload checks an upload payload against the size limit and the PDF
// magic header before any job is created for it.
func ValidateUpload(data []byte, maxBytes int64) error {
	if int64(len(data)) > maxBytes {
		return fmt.Errorf("%w: %d bytes over the %d byte limit", ErrTooLarge, int64(len(data))-maxBytes, maxBytes)
	}
	if !IsPDF(data) {
		return fmt.Errorf("%w: missing PDF header", ErrUnreadable)
	}
	return nil
}

// IsPDF reports whether the payload starts with the PDF magic header.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(data, []byte("%PDF-"))
}

// Document is an opened PDF backed by a temp file. Close releases the file.
type Document struct {
	f      *os.File
	reader *pdflib.Reader
	path   string
}

// Open writes the payload to a temp file and opens it. The PDF library needs
// a ReaderAt plus size, and the rasterizer needs an on-disk path anyway.
func Open(data []byte) (*Document, error) {
	if !IsPDF(data) {
		return nil, fmt.Errorf("%w: missing PDF header", ErrUnreadable)
	}

	tmp, err := os.CreateTemp("", "mcq-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	path := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(path)
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	f, reader, err := pdflib.Open(path)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	return &Document{f: f, reader: reader, path: path}, nil
}

// Path returns the on-disk location, for collaborators that shell out.
func (d *Document) Path() string { return d.path }

// PageCount returns the number of pages.
func (d *Document) PageCount() int { return d.reader.NumPage() }

// Close closes and removes the backing temp file.
func (d *Document) Close() error {
	err := d.f.Close()
	os.Remove(d.path)
	return err
}

// Page extracts page number n (1-based) as positioned word fragments in
// top-left-origin point coordinates. Text-layer fragments carry no
// recognition confidence.
func (d *Document) Page(n int) (segment.Page, error) {
	if n < 1 || n > d.reader.NumPage() {
		return segment.Page{}, fmt.Errorf("page %d out of range 1..%d", n, d.reader.NumPage())
	}
	p := d.reader.Page(n)
	if p.V.IsNull() {
		return segment.Page{Number: n}, nil
	}

	width, height := mediaBox(p)
	page := segment.Page{Number: n, Width: int(math.Ceil(width)), Height: int(math.Ceil(height))}
	page.Fragments = groupWords(p.Content().Text, height)
	return page, nil
}

// PageText returns linear text for page n, falling back to pdftotext when the
// text layer yields nothing.
func (d *Document) PageText(n int) string {
	page, err := d.Page(n)
	if err == nil && len(page.Fragments) > 0 {
		return segment.Linearize(page.Fragments)
	}
	out, err := pdftotextPage(d.path, n)
	if err != nil {
		return ""
	}
	return out
}

func pdftotextPage(path string, n int) (string, error) {
	p := strconv.Itoa(n)
	cmd := exec.Command("pdftotext", "-layout", "-f", p, "-l", p, path, "-")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// mediaBox resolves the page dimensions, walking up to inherited page-tree
// attributes. Letter size is the fallback for broken documents.
func mediaBox(p pdflib.Page) (w, h float64) {
	v := p.V
	for i := 0; i < 16 && !v.IsNull(); i++ {
		if mb := v.Key("MediaBox"); mb.Len() == 4 {
			w = mb.Index(2).Float64() - mb.Index(0).Float64()
			h = mb.Index(3).Float64() - mb.Index(1).Float64()
			if w > 0 && h > 0 {
				return w, h
			}
		}
		v = v.Key("Parent")
	}
	return 612, 792
}

// groupWords merges the library's per-run text items into word fragments.
// Runs share a word when they sit on the same baseline and the horizontal
// gap is smaller than a third of the font size. PDF y grows upward from the
// bottom edge; fragment boxes use the top-left origin the engine expects.
func groupWords(texts []pdflib.Text, pageHeight float64) []segment.TextFragment {
	var frags []segment.TextFragment

	var (
		cur      strings.Builder
		x0, x1   float64
		baseline float64
		fontSize float64
	)
	flush := func() {
		word := strings.TrimSpace(cur.String())
		cur.Reset()
		if word == "" {
			return
		}
		top := pageHeight - baseline - fontSize
		if top < 0 {
			top = 0
		}
		frags = append(frags, segment.TextFragment{
			Text: word,
			Box: segment.Box{
				Left:   int(math.Round(x0)),
				Top:    int(math.Round(top)),
				Width:  int(math.Round(x1 - x0)),
				Height: int(math.Round(fontSize)),
			},
			Confidence: segment.ConfidenceUnknown,
		})
	}

	for _, t := range texts {
		if t.S == "" {
			continue
		}
		sameLine := math.Abs(t.Y-baseline) < 2
		gap := t.X - x1
		if cur.Len() == 0 || !sameLine || gap < -1 || gap > maxWordGap(fontSize) {
			flush()
			x0, baseline, fontSize = t.X, t.Y, t.FontSize
		}
		if t.FontSize > fontSize {
			fontSize = t.FontSize
		}
		cur.WriteString(t.S)
		x1 = t.X + t.W
	}
	flush()
	return frags
}

func maxWordGap(fontSize float64) float64 {
	if fontSize <= 0 {
		return 2
	}
	return fontSize / 3
}
