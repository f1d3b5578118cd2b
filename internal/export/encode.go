package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"strings"

	"golang.org/x/image/bmp"
)

// Format is a supported bitmap output encoding.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatBMP  Format = "bmp"
)

// ParseFormat maps a file extension or name to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "bmp":
		return FormatBMP, nil
	}
	return "", fmt.Errorf("unknown image format %q", s)
}

// Encode writes the bitmap in the given format. JPEG takes a quality
// fraction in (0, 1]; formats without an alpha channel are flattened
// against white first.
func Encode(w io.Writer, img image.Image, format Format, quality float64) error {
	switch format {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatJPEG:
		if quality <= 0 || quality > 1 {
			return fmt.Errorf("jpeg quality %g outside (0, 1]", quality)
		}
		return jpeg.Encode(w, flatten(img), &jpeg.Options{
			Quality: int(math.Round(quality * 100)),
		})
	case FormatBMP:
		return bmp.Encode(w, flatten(img))
	}
	return fmt.Errorf("unknown image format %q", format)
}

// flatten composites the image over an opaque white background.
func flatten(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, b, img, b.Min, draw.Over)
	return dst
}
