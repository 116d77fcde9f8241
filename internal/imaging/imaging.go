// Package imaging holds the raster operations the pipeline needs: cropping
// question bands out of page pixel maps, trimming empty margins, boosting
// contrast before recognition, and scaling images for document embedding.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	xdraw "golang.org/x/image/draw"
)

// Decode decodes an encoded image (PNG or any registered format).
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// EncodePNG encodes an image as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Crop returns the sub-image of r, clamped to the image bounds.
func Crop(img image.Image, r image.Rectangle) (image.Image, error) {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return nil, fmt.Errorf("crop region outside image bounds")
	}
	sub, ok := img.(interface {
		SubImage(r image.Rectangle) image.Image
	})
	if !ok {
		return nil, fmt.Errorf("image type %T does not support sub-images", img)
	}
	return sub.SubImage(r), nil
}

// TrimMargins removes near-white columns from the left and right edges.
// whiteThreshold is the 8-bit luminance above which a pixel counts as empty.
func TrimMargins(img image.Image, whiteThreshold uint8) image.Image {
	b := img.Bounds()
	left, right := b.Min.X, b.Max.X

	for x := b.Min.X; x < b.Max.X; x++ {
		if !columnEmpty(img, x, whiteThreshold) {
			left = x
			break
		}
	}
	for x := b.Max.X - 1; x >= left; x-- {
		if !columnEmpty(img, x, whiteThreshold) {
			right = x + 1
			break
		}
	}
	if left >= right {
		return img
	}
	cropped, err := Crop(img, image.Rect(left, b.Min.Y, right, b.Max.Y))
	if err != nil {
		return img
	}
	return cropped
}

func columnEmpty(img image.Image, x int, whiteThreshold uint8) bool {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		if luminance(img.At(x, y)) <= whiteThreshold {
			return false
		}
	}
	return true
}

func luminance(c color.Color) uint8 {
	return color.GrayModel.Convert(c).(color.Gray).Y
}

// EnhanceContrast stretches pixel values around mid-gray by the given factor.
// Factor 1 is the identity; values above 1 sharpen the separation between ink
// and paper ahead of recognition.
func EnhanceContrast(img image.Image, factor float64) image.Image {
	b := img.Bounds()
	out := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bb, a := img.At(x, y).RGBA()
			out.SetRGBA(x, y, color.RGBA{
				R: stretch(r, factor),
				G: stretch(g, factor),
				B: stretch(bb, factor),
				A: uint8(a >> 8),
			})
		}
	}
	return out
}

func stretch(v uint32, factor float64) uint8 {
	f := 128 + (float64(v>>8)-128)*factor
	if f < 0 {
		f = 0
	} else if f > 255 {
		f = 255
	}
	return uint8(f)
}

// ScaleToWidth resizes an image to the given width, preserving aspect ratio.
func ScaleToWidth(img image.Image, width int) image.Image {
	b := img.Bounds()
	if b.Dx() <= 0 || width <= 0 || b.Dx() == width {
		return img
	}
	height := b.Dy() * width / b.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Over, nil)
	return dst
}
