package docgen

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/nitishgarg26/pdf-mcq/internal/imaging"
	"github.com/nitishgarg26/pdf-mcq/internal/segment"
)

func sampleQuestions() []segment.Question {
	return []segment.Question{
		{
			Number: 1,
			Stem:   "What is 2+2?",
			Options: []segment.Option{
				{Label: "A", Text: "3"},
				{Label: "B", Text: "4"},
				{Label: "C", Text: "5"},
			},
			Confidence: 91,
		},
		{
			Number:     2,
			Stem:       "(image only)",
			LowQuality: true,
		},
	}
}

func TestGenerate(t *testing.T) {
	data, err := Generate(sampleQuestions(), DefaultOptions())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("PK")) {
		t.Error("output is not a zip container")
	}
}

func TestGenerateWithImages(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 600, 200))
	for y := 0; y < 200; y++ {
		for x := 0; x < 600; x++ {
			img.Set(x, y, color.White)
		}
	}
	png, err := imaging.EncodePNG(img)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	qs := sampleQuestions()
	qs[1].Crop = png
	// Undecodable image data degrades to a placeholder, not an error.
	qs[0].Images = []segment.ImageFragment{{Data: []byte("not an image")}}

	data, err := Generate(qs, DefaultOptions())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(data) == 0 {
		t.Error("empty document")
	}
}

func TestGenerateEmpty(t *testing.T) {
	data, err := Generate(nil, Options{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("PK")) {
		t.Error("output is not a zip container")
	}
}

func TestUsableWidth(t *testing.T) {
	portrait := Options{MarginTwips: 720}
	landscape := Options{Landscape: true, MarginTwips: 720}
	if landscape.UsableWidthTwips() <= portrait.UsableWidthTwips() {
		t.Errorf("landscape usable width %d should exceed portrait %d",
			landscape.UsableWidthTwips(), portrait.UsableWidthTwips())
	}
}

func TestPrepareImageScalesDown(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 800, 400))
	png, _ := imaging.EncodePNG(img)

	scaled, err := prepareImage(png, 400)
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	out, err := imaging.Decode(scaled)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Bounds().Dx() != 400 {
		t.Errorf("width = %d, want 400", out.Bounds().Dx())
	}

	small, err := prepareImage(png, 1000)
	if err != nil {
		t.Fatalf("prepare small: %v", err)
	}
	if !bytes.Equal(small, png) {
		t.Error("image narrower than target should pass through unchanged")
	}
}
