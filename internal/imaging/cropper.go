package imaging

import (
	"fmt"
	"image"
)

// Minimum usable crop dimensions. Bands below this carry no legible content
// and embedding them would only pad the output document.
const (
	minCropWidth  = 50
	minCropHeight = 20
)

// BandCropper cuts horizontal question bands out of rendered page pixmaps.
// It implements the segmentation engine's Cropper contract.
type BandCropper struct {
	// WhiteThreshold is the luminance above which edge pixels count as
	// empty margin. Zero disables margin trimming.
	WhiteThreshold uint8
}

// NewBandCropper returns a cropper with the default near-white threshold.
func NewBandCropper() *BandCropper {
	return &BandCropper{WhiteThreshold: 240}
}

// CropBand extracts the horizontal slice [top, bottom) of the pixmap,
// discarding trimLeft pixels from the left edge, and returns it re-encoded as
// PNG. trimLeft is ignored when it would leave less than the minimum usable
// width, which happens when a marker sits unusually far right.
func (c *BandCropper) CropBand(pixmap []byte, top, bottom, trimLeft int) ([]byte, error) {
	img, err := Decode(pixmap)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()

	if top < b.Min.Y {
		top = b.Min.Y
	}
	if bottom > b.Max.Y {
		bottom = b.Max.Y
	}
	left := b.Min.X
	if trimLeft > 0 && trimLeft < b.Max.X-minCropWidth {
		left = trimLeft
	}

	if bottom-top < minCropHeight || b.Max.X-left < minCropWidth {
		return nil, fmt.Errorf("band %dx%d below minimum usable size", b.Max.X-left, bottom-top)
	}

	band, err := Crop(img, image.Rect(left, top, b.Max.X, bottom))
	if err != nil {
		return nil, err
	}
	if c.WhiteThreshold > 0 {
		band = TrimMargins(band, c.WhiteThreshold)
	}
	return EncodePNG(band)
}
