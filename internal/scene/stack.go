package scene

import (
	"image"
	"image/color"
	"os"

	"golang.org/x/image/draw"

	"github.com/ivlev/reel2video/internal/effects"
	"github.com/ivlev/reel2video/internal/failure"
	"github.com/ivlev/reel2video/internal/renderer"
	"github.com/ivlev/reel2video/internal/scenario"
)

// LayerKind names a layer of a scene stack.
type LayerKind int

const (
	Background LayerKind = iota
	Foreground
	SubtitlePanel
	CaptionPanel
)

func (k LayerKind) String() string {
	switch k {
	case Background:
		return "background"
	case Foreground:
		return "foreground"
	case SubtitlePanel:
		return "subtitle"
	case CaptionPanel:
		return "caption"
	default:
		return "unknown"
	}
}

// Layer is one image of a scene stack placed at Rect on the canvas. Zoom
// layers follow the scene's Ken Burns scale; panels stay put.
type Layer struct {
	Kind LayerKind
	Rect image.Rectangle
	Zoom bool

	// Exactly one of Path and Image is set: Path when the layer was spilled
	// to the render arena.
	Path  string
	Image image.Image
}

// Stack is the ordered layer list of one scene: background, foreground, then
// at most one subtitle and one caption panel.
type Stack struct {
	Index  int
	Scene  scenario.Scene
	Width  int
	Height int
	Layers []Layer

	effect effects.Effect
}

// Duration is the scene's on-screen time in seconds.
func (s *Stack) Duration() float64 { return s.Scene.Duration }

// Count returns the number of layers of the given kind.
func (s *Stack) Count(kind LayerKind) int {
	n := 0
	for _, l := range s.Layers {
		if l.Kind == kind {
			n++
		}
	}
	return n
}

// Panels returns the number of text panel layers.
func (s *Stack) Panels() int {
	return s.Count(SubtitlePanel) + s.Count(CaptionPanel)
}

// Release deletes the stack's arena files. It is safe to call more than once.
func (s *Stack) Release() {
	for i := range s.Layers {
		if s.Layers[i].Path != "" {
			os.Remove(s.Layers[i].Path)
			s.Layers[i].Path = ""
		}
		s.Layers[i].Image = nil
	}
}

// Open loads the stack's layers and flattens the zooming ones into a single
// canvas-sized plate.
func (s *Stack) Open() (*Plate, error) {
	canvas := image.Rect(0, 0, s.Width, s.Height)
	base := image.NewRGBA(canvas)
	draw.Draw(base, canvas, image.NewUniform(color.Black), image.Point{}, draw.Src)

	p := &Plate{base: base, duration: s.Scene.Duration, effect: s.effect, stack: s}
	if p.effect == nil {
		p.effect = effects.Static{}
	}

	for _, l := range s.Layers {
		img := l.Image
		if l.Path != "" {
			var err error
			img, err = loadFile(l.Path)
			if err != nil {
				return nil, failure.Wrap(failure.AssetNotFound, s.Index, err)
			}
		}
		if img == nil {
			return nil, failure.New(failure.AssetNotFound, s.Index, "%s layer was released", l.Kind)
		}

		if l.Zoom {
			draw.Draw(base, l.Rect, img, img.Bounds().Min, draw.Over)
			continue
		}
		p.panels = append(p.panels, panel{img: img, at: l.Rect.Min})
	}
	return p, nil
}

type panel struct {
	img image.Image
	at  image.Point
}

// Plate is an opened stack, ready to draw frames at any local time.
type Plate struct {
	base     *image.RGBA
	panels   []panel
	duration float64
	effect   effects.Effect
	stack    *Stack
}

// Draw renders the scene at local time t into dst, which must be canvas-sized.
func (p *Plate) Draw(dst *image.RGBA, t float64) {
	renderer.ZoomInto(dst, p.base, p.effect.ScaleAt(t, p.duration))
	for _, pn := range p.panels {
		renderer.Overlay(dst, pn.img, pn.at)
	}
}

// Close drops the decoded layers and the stack's arena files; the scene has
// been fully consumed once its plate is closed.
func (p *Plate) Close() error {
	p.base = nil
	p.panels = nil
	if p.stack != nil {
		p.stack.Release()
	}
	return nil
}
