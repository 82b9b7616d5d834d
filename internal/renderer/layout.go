package renderer

import (
	"image"
	"math"
)

// FitWithin returns the rectangle an iw×ih image occupies when scaled, with its
// aspect ratio preserved, to fit inside the canvas width and heightFrac of the
// canvas height, centered on the canvas.
func FitWithin(iw, ih, canvasW, canvasH int, heightFrac float64) image.Rectangle {
	if iw <= 0 || ih <= 0 {
		return image.Rectangle{}
	}
	scale := math.Min(float64(canvasW)/float64(iw), heightFrac*float64(canvasH)/float64(ih))

	w := int(math.Floor(float64(iw) * scale))
	h := int(math.Floor(float64(ih) * scale))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	x := (canvasW - w) / 2
	y := (canvasH - h) / 2
	return image.Rect(x, y, x+w, y+h)
}

// TopCenter places a w×h box horizontally centered at the given top offset.
func TopCenter(w, h, canvasW, top int) image.Rectangle {
	x := (canvasW - w) / 2
	return image.Rect(x, top, x+w, top+h)
}

// BottomCenter places a w×h box horizontally centered with margin pixels
// between its bottom edge and the bottom of the canvas.
func BottomCenter(w, h, canvasW, canvasH, margin int) image.Rectangle {
	return TopCenter(w, h, canvasW, canvasH-h-margin)
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
