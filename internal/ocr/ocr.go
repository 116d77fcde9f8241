// Package ocr defines the recognition-engine contract and its Tesseract
// implementation. Engines return both linear text and positioned word tokens
// with confidences, which the segmentation engine consumes directly.
package ocr

import (
	"context"

	"github.com/nitishgarg26/pdf-mcq/internal/segment"
)

// Input is a single image submitted for recognition.
type Input struct {
	// Image is the encoded payload (PNG unless Format says otherwise).
	Image  []byte
	Format string
	// DPI is the effective resolution; zero means unknown.
	DPI int
	// Languages lists trained-data hints, e.g. "eng".
	Languages []string
	// Variables passes engine-specific knobs (e.g. Tesseract's
	// tessedit_pageseg_mode) without widening the API.
	Variables map[string]string
}

// Result is recognition output for one image.
type Result struct {
	PlainText string
	// Words carries per-token text, bounding box, and confidence (0-100,
	// segment.ConfidenceUnknown when the engine reported none).
	Words []segment.TextFragment
}

// Engine is the recognition provider contract: one image in, one result out.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, in Input) (Result, error)
}
