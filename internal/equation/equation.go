// Package equation turns cropped formula images into LaTeX and LaTeX into
// MathML for previews. Recognition is an optional external service; when none
// is configured the pipeline keeps the OCR plain text instead.
package equation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	treeblood "github.com/wyatt915/goldmark-treeblood"
)

// ErrUnavailable is returned when no recognition backend is configured or
// the backend declined the image. Callers fall back to OCR text.
var ErrUnavailable = errors.New("equation recognition unavailable")

// Recognizer converts a cropped formula image into a LaTeX string.
type Recognizer interface {
	Name() string
	Recognize(ctx context.Context, image []byte) (string, error)
}

// Unavailable is the no-backend Recognizer. Every call reports ErrUnavailable.
type Unavailable struct{}

func (Unavailable) Name() string { return "none" }

func (Unavailable) Recognize(context.Context, []byte) (string, error) {
	return "", ErrUnavailable
}

var mathMarkdown = goldmark.New(goldmark.WithExtensions(treeblood.MathML()))

// ToMathML renders a LaTeX snippet to an HTML fragment with inline MathML.
func ToMathML(latex string) (string, error) {
	latex = strings.TrimSpace(latex)
	if latex == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := mathMarkdown.Convert([]byte("$"+latex+"$"), &buf); err != nil {
		return "", fmt.Errorf("render mathml: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}
