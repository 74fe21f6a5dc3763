package media

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"

	_ "golang.org/x/image/webp"
)

// DecodeImage decodes raw image bytes fetched from a generation service.
func DecodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// ResizeSquare scales the image to size x size using Lanczos resampling.
func ResizeSquare(img image.Image, size int) *image.NRGBA {
	return imaging.Resize(img, size, size, imaging.Lanczos)
}

// Black returns an all-black square canvas of the given size.
func Black(size int) *image.NRGBA {
	return imaging.New(size, size, color.NRGBA{0, 0, 0, 255})
}

// Blend linearly mixes two equally sized images. alpha 0 is all a, 1 is all b.
func Blend(a, b image.Image, alpha float64) *image.NRGBA {
	if alpha <= 0 {
		return imaging.Clone(a)
	}
	if alpha >= 1 {
		return imaging.Clone(b)
	}

	na := imaging.Clone(a)
	nb := imaging.Clone(b)
	out := imaging.New(na.Bounds().Dx(), na.Bounds().Dy(), color.NRGBA{})

	n := len(out.Pix)
	if len(na.Pix) < n {
		n = len(na.Pix)
	}
	if len(nb.Pix) < n {
		n = len(nb.Pix)
	}
	for i := 0; i < n; i++ {
		va := float64(na.Pix[i])
		vb := float64(nb.Pix[i])
		out.Pix[i] = uint8(va + (vb-va)*alpha + 0.5)
	}
	return out
}

// BlendToBlack darkens the image toward black. alpha 0 leaves it untouched,
// alpha 1 yields full black.
func BlendToBlack(img image.Image, alpha float64) *image.NRGBA {
	src := imaging.Clone(img)
	if alpha <= 0 {
		return src
	}
	if alpha > 1 {
		alpha = 1
	}
	scale := 1 - alpha
	for i := 0; i < len(src.Pix); i += 4 {
		src.Pix[i] = uint8(float64(src.Pix[i])*scale + 0.5)
		src.Pix[i+1] = uint8(float64(src.Pix[i+1])*scale + 0.5)
		src.Pix[i+2] = uint8(float64(src.Pix[i+2])*scale + 0.5)
	}
	return src
}
