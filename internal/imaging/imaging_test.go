package imaging

import (
	"image"
	"image/color"
	"strings"
	"testing"
)

// testPage builds a white image with a black rectangle drawn at ink.
func testPage(w, h int, ink image.Rectangle) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if image.Pt(x, y).In(ink) {
				img.Set(x, y, color.Black)
			} else {
				img.Set(x, y, color.White)
			}
		}
	}
	return img
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	src := testPage(80, 40, image.Rect(10, 10, 30, 30))
	data, err := EncodePNG(src)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	img, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds() != src.Bounds() {
		t.Errorf("bounds = %v, want %v", img.Bounds(), src.Bounds())
	}
}

func TestTrimMargins(t *testing.T) {
	img := testPage(200, 50, image.Rect(60, 10, 140, 40))
	trimmed := TrimMargins(img, 240)
	b := trimmed.Bounds()
	if b.Min.X != 60 || b.Max.X != 140 {
		t.Errorf("trimmed x range = [%d, %d), want [60, 140)", b.Min.X, b.Max.X)
	}
	if b.Min.Y != 0 || b.Max.Y != 50 {
		t.Errorf("vertical extent changed: %v", b)
	}
}

func TestTrimMarginsAllWhite(t *testing.T) {
	img := testPage(100, 30, image.Rect(0, 0, 0, 0))
	trimmed := TrimMargins(img, 240)
	if trimmed.Bounds() != img.Bounds() {
		t.Errorf("all-white image should pass through unchanged, got %v", trimmed.Bounds())
	}
}

func TestScaleToWidth(t *testing.T) {
	img := testPage(400, 200, image.Rect(0, 0, 400, 200))
	scaled := ScaleToWidth(img, 100)
	b := scaled.Bounds()
	if b.Dx() != 100 || b.Dy() != 50 {
		t.Errorf("scaled to %dx%d, want 100x50", b.Dx(), b.Dy())
	}

	if same := ScaleToWidth(img, 400); same != img {
		t.Error("scaling to current width should be a no-op")
	}
}

func TestEnhanceContrast(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 2))
	img.Set(0, 0, color.Gray{Y: 200})
	img.Set(0, 1, color.Gray{Y: 60})

	out := EnhanceContrast(img, 1.5)
	light := luminance(out.At(0, 0))
	dark := luminance(out.At(0, 1))
	if light <= 200 {
		t.Errorf("light pixel should get lighter, got %d", light)
	}
	if dark >= 60 {
		t.Errorf("dark pixel should get darker, got %d", dark)
	}
}

func TestCropBand(t *testing.T) {
	page := testPage(300, 400, image.Rect(50, 120, 250, 180))
	data, err := EncodePNG(page)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	c := NewBandCropper()

	band, err := c.CropBand(data, 100, 200, 0)
	if err != nil {
		t.Fatalf("crop: %v", err)
	}
	img, err := Decode(band)
	if err != nil {
		t.Fatalf("decode band: %v", err)
	}
	// Margin trimming cuts the white flanks around the ink.
	if got := img.Bounds().Dx(); got != 200 {
		t.Errorf("band width = %d, want 200", got)
	}
	if got := img.Bounds().Dy(); got != 100 {
		t.Errorf("band height = %d, want 100", got)
	}
}

func TestCropBandClampsToPage(t *testing.T) {
	page := testPage(300, 100, image.Rect(0, 0, 300, 100))
	data, _ := EncodePNG(page)
	c := &BandCropper{}

	band, err := c.CropBand(data, -20, 500, 0)
	if err != nil {
		t.Fatalf("crop: %v", err)
	}
	img, _ := Decode(band)
	if img.Bounds().Dy() != 100 {
		t.Errorf("clamped band height = %d, want 100", img.Bounds().Dy())
	}
}

func TestCropBandTooSmall(t *testing.T) {
	page := testPage(300, 400, image.Rect(0, 0, 300, 400))
	data, _ := EncodePNG(page)
	c := NewBandCropper()

	if _, err := c.CropBand(data, 100, 110, 0); err == nil {
		t.Error("band thinner than the minimum should fail")
	} else if !strings.Contains(err.Error(), "minimum usable size") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCropBandIgnoresExcessiveTrim(t *testing.T) {
	page := testPage(300, 400, image.Rect(0, 0, 300, 400))
	data, _ := EncodePNG(page)
	c := &BandCropper{}

	// Trimming 280px would leave 20px; the trim is dropped instead.
	band, err := c.CropBand(data, 0, 100, 280)
	if err != nil {
		t.Fatalf("crop: %v", err)
	}
	img, _ := Decode(band)
	if img.Bounds().Dx() != 300 {
		t.Errorf("band width = %d, want full 300", img.Bounds().Dx())
	}
}
