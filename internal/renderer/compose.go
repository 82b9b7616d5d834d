package renderer

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// backdropDownscale is how much the backdrop is shrunk before blurring. The
// blur radius is divided by the same factor, so the result matches a
// full-resolution blur closely at a fraction of the cost.
const backdropDownscale = 4

// Stretch resizes src to exactly w×h, ignoring its aspect ratio.
func Stretch(src image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// Backdrop stretches src over a w×h canvas and applies a Gaussian blur of the
// given radius in canvas pixels.
func Backdrop(src image.Image, w, h int, radius float64) *image.RGBA {
	sw, sh := w/backdropDownscale, h/backdropDownscale
	if sw < 1 || sh < 1 {
		return toRGBA(imaging.Blur(imaging.Resize(src, w, h, imaging.Linear), radius))
	}
	small := imaging.Resize(src, sw, sh, imaging.Linear)
	small = imaging.Blur(small, radius/backdropDownscale)
	return toRGBA(imaging.Resize(small, w, h, imaging.Linear))
}

// ZoomInto draws src into dst scaled by scale around the center of dst.
// src is expected to have dst's size; a scale >= 1 covers all of dst.
func ZoomInto(dst *image.RGBA, src image.Image, scale float64) {
	b := dst.Bounds()
	if scale == 1 {
		draw.Draw(dst, b, src, src.Bounds().Min, draw.Src)
		return
	}
	cx := float64(b.Min.X) + float64(b.Dx())/2
	cy := float64(b.Min.Y) + float64(b.Dy())/2
	m := f64.Aff3{
		scale, 0, lerp(cx, 0, scale),
		0, scale, lerp(cy, 0, scale),
	}
	draw.ApproxBiLinear.Transform(dst, m, src, src.Bounds(), draw.Src, nil)
}

// Overlay draws src over dst with its top-left corner at at, honoring src's alpha.
func Overlay(dst *image.RGBA, src image.Image, at image.Point) {
	r := image.Rectangle{Min: at, Max: at.Add(src.Bounds().Size())}
	draw.Draw(dst, r, src, src.Bounds().Min, draw.Over)
}

// Blend draws src over dst at uniform opacity alpha in [0, 1]. With an opaque
// src this yields dst*(1-alpha) + src*alpha.
func Blend(dst *image.RGBA, src image.Image, alpha float64) {
	switch {
	case alpha <= 0:
		return
	case alpha >= 1:
		draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Over)
		return
	}
	mask := image.NewUniform(color.Alpha{A: uint8(alpha*255 + 0.5)})
	draw.DrawMask(dst, dst.Bounds(), src, src.Bounds().Min, mask, image.Point{}, draw.Over)
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
