// Package textpanel rasterizes word-wrapped text onto semi-transparent panels.
package textpanel

import (
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Leading is the extra space between wrapped lines, in pixels.
const Leading = 6

// DefaultPadding is the horizontal and vertical inset of the text.
var DefaultPadding = image.Pt(24, 14)

// Options controls panel styling.
type Options struct {
	Padding image.Point
	Opacity uint8 // alpha of the black background, 0-255
}

// Panel is a rendered text block. Width always equals the requested max width.
type Panel struct {
	Lines   []string
	Width   int
	Height  int
	Opacity uint8
	Image   *image.RGBA
}

// Render word-wraps text to fit maxWidth and draws it left-aligned in white on
// a black background of the given opacity. Blank text yields nil.
func Render(text string, maxWidth int, face font.Face, opts Options) *Panel {
	if strings.TrimSpace(text) == "" || maxWidth <= 0 {
		return nil
	}

	pad := opts.Padding
	lines := Wrap(text, maxWidth-2*pad.X, face)
	lineH := LineHeight(face)
	height := lineH*len(lines) + 2*pad.Y

	img := image.NewRGBA(image.Rect(0, 0, maxWidth, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{A: opts.Opacity}), image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.White,
		Face: face,
	}
	ascent := face.Metrics().Ascent.Ceil()
	y := pad.Y
	for _, ln := range lines {
		d.Dot = fixed.P(pad.X, y+ascent)
		d.DrawString(ln)
		y += lineH
	}

	return &Panel{
		Lines:   lines,
		Width:   maxWidth,
		Height:  height,
		Opacity: opts.Opacity,
		Image:   img,
	}
}

// Wrap greedily packs words into lines no wider than available. A word that is
// wider on its own still gets a line to itself.
func Wrap(text string, available int, face font.Face) []string {
	var lines []string
	line := ""
	for _, w := range strings.Fields(text) {
		test := w
		if line != "" {
			test = line + " " + w
		}
		if line != "" && Measure(test, face) > available {
			lines = append(lines, line)
			line = w
			continue
		}
		line = test
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

// Measure returns the rendered width of s in whole pixels.
func Measure(s string, face font.Face) int {
	return font.MeasureString(face, s).Ceil()
}

// LineHeight is the font's ascent plus descent plus Leading.
func LineHeight(face font.Face) int {
	m := face.Metrics()
	return (m.Ascent + m.Descent).Ceil() + Leading
}
