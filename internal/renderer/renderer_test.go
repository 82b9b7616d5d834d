package renderer

import (
	"image"
	"image/color"
	"testing"
)

func uniform(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestFitWithin(t *testing.T) {
	const W, H = 1080, 1920

	tests := []struct {
		name   string
		iw, ih int
	}{
		{"landscape", 1920, 1080},
		{"portrait", 1080, 1920},
		{"square", 1024, 1024},
		{"tall strip", 100, 4000},
		{"tiny", 10, 10},
		{"wide strip", 5000, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := FitWithin(tt.iw, tt.ih, W, H, 0.9)
			if r.Dx() > W {
				t.Errorf("width %d exceeds canvas %d", r.Dx(), W)
			}
			if float64(r.Dy()) > 0.9*H {
				t.Errorf("height %d exceeds 90%% of canvas", r.Dy())
			}
			if r.Min.X < 0 || r.Min.Y < 0 || r.Max.X > W || r.Max.Y > H {
				t.Errorf("rect %v leaves the canvas", r)
			}
			// Centered within one pixel.
			if d := r.Min.X - (W - r.Max.X); d < -1 || d > 1 {
				t.Errorf("not horizontally centered: %v", r)
			}
			if d := r.Min.Y - (H - r.Max.Y); d < -1 || d > 1 {
				t.Errorf("not vertically centered: %v", r)
			}
			// One side is bound by a canvas limit.
			if r.Dx() < W-1 && float64(r.Dy()) < 0.9*H-1 {
				t.Errorf("image not scaled to fit: %v", r)
			}
		})
	}
}

func TestPanelAnchors(t *testing.T) {
	top := TopCenter(972, 100, 1080, 80)
	if top != image.Rect(54, 80, 1026, 180) {
		t.Errorf("TopCenter = %v", top)
	}
	bottom := BottomCenter(972, 100, 1080, 1920, 120)
	if bottom.Min.Y != 1920-100-120 || bottom.Max.Y != 1920-120 {
		t.Errorf("BottomCenter = %v", bottom)
	}
}

func TestZoomIntoCoversCanvas(t *testing.T) {
	src := uniform(108, 192, color.RGBA{R: 200, G: 10, B: 10, A: 255})

	for _, scale := range []float64{1.0, 1.01, 1.05} {
		dst := image.NewRGBA(src.Bounds())
		ZoomInto(dst, src, scale)

		for _, p := range []image.Point{{0, 0}, {107, 191}, {54, 96}, {0, 191}} {
			c := dst.RGBAAt(p.X, p.Y)
			if c.A != 255 {
				t.Errorf("scale %.2f: pixel %v not covered: %v", scale, p, c)
			}
		}
	}
}

func TestZoomIntoMovesAwayFromCenter(t *testing.T) {
	src := uniform(200, 200, color.RGBA{A: 255})
	// White column right of center.
	for y := 0; y < 200; y++ {
		src.SetRGBA(150, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	}

	dst := image.NewRGBA(src.Bounds())
	ZoomInto(dst, src, 1.2)

	// 100 + (150.5-100)*1.2 ≈ 160.6: the column drifts outward.
	if c := dst.RGBAAt(160, 100); c.R < 100 {
		t.Errorf("expected column near x=160 after zoom, got %v", c)
	}
	if c := dst.RGBAAt(150, 100); c.R > 100 {
		t.Errorf("column should have left x=150, got %v", c)
	}
}

func TestBlend(t *testing.T) {
	black := color.RGBA{A: 255}
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}

	tests := []struct {
		alpha float64
		want  uint8
	}{
		{0, 0},
		{1, 255},
		{0.5, 128},
	}

	for _, tt := range tests {
		dst := uniform(4, 4, black)
		Blend(dst, uniform(4, 4, white), tt.alpha)
		got := dst.RGBAAt(2, 2).R
		if d := int(got) - int(tt.want); d < -1 || d > 1 {
			t.Errorf("alpha %.1f: got %d, want ~%d", tt.alpha, got, tt.want)
		}
		if a := dst.RGBAAt(2, 2).A; a != 255 {
			t.Errorf("alpha %.1f: result must stay opaque, got %d", tt.alpha, a)
		}
	}
}

func TestBackdropSize(t *testing.T) {
	src := uniform(64, 48, color.RGBA{R: 10, G: 200, B: 30, A: 255})

	bg := Backdrop(src, 108, 192, 25)
	if bg.Bounds().Dx() != 108 || bg.Bounds().Dy() != 192 {
		t.Fatalf("unexpected size %v", bg.Bounds())
	}
	c := bg.RGBAAt(54, 96)
	if c.A != 255 || c.G < 150 {
		t.Errorf("blurred uniform image should keep its color, got %v", c)
	}

	st := Stretch(src, 30, 70)
	if st.Bounds() != image.Rect(0, 0, 30, 70) {
		t.Errorf("Stretch size %v", st.Bounds())
	}
}
