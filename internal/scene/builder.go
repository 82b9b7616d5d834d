// Package scene turns one scenario scene into its layer stack: a blurred
// full-canvas backdrop, the aspect-preserving foreground, and up to two text
// panels.
package scene

import (
	"context"
	"image"

	"github.com/pkg/errors"

	"github.com/ivlev/reel2video/internal/effects"
	"github.com/ivlev/reel2video/internal/failure"
	"github.com/ivlev/reel2video/internal/renderer"
	"github.com/ivlev/reel2video/internal/scenario"
	"github.com/ivlev/reel2video/internal/source"
	"github.com/ivlev/reel2video/internal/textpanel"
)

// Style holds the fixed look of every scene.
type Style struct {
	BlurRadius     float64
	ForegroundFrac float64 // max foreground height as a fraction of the canvas
	PanelWidthFrac float64

	SubtitleSize    float64
	SubtitleOpacity uint8
	SubtitleTop     int

	CaptionSize    float64
	CaptionOpacity uint8
	CaptionBottom  int
}

// DefaultStyle is the reel look: subtitle near the top, caption near the
// bottom, foreground at most 90% of the canvas height.
func DefaultStyle() Style {
	return Style{
		BlurRadius:      25,
		ForegroundFrac:  0.9,
		PanelWidthFrac:  0.9,
		SubtitleSize:    40,
		SubtitleOpacity: 110,
		SubtitleTop:     80,
		CaptionSize:     44,
		CaptionOpacity:  140,
		CaptionBottom:   120,
	}
}

// Builder produces scene stacks. Builders are safe for concurrent use as long
// as Loader is.
type Builder struct {
	Width  int
	Height int
	Style  Style
	Loader source.Loader
	Fonts  *textpanel.Fonts
	Effect effects.Effect

	// Arena receives the layer images. Without one, layers stay in memory.
	Arena *Arena
}

// Build renders the layers of scene sc, the index-th of the render.
func (b *Builder) Build(ctx context.Context, index int, sc scenario.Scene) (*Stack, error) {
	if err := ctx.Err(); err != nil {
		return nil, failure.Wrap(failure.Canceled, index, err)
	}
	if err := sc.Validate(index); err != nil {
		return nil, err
	}

	img, err := b.Loader.Load(sc.Asset)
	if err != nil {
		return nil, failure.Wrap(failure.AssetNotFound, index, err)
	}

	st := &Stack{
		Index:  index,
		Scene:  sc,
		Width:  b.Width,
		Height: b.Height,
		effect: b.Effect,
	}
	canvas := image.Rect(0, 0, b.Width, b.Height)

	bg := renderer.Backdrop(img, b.Width, b.Height, b.Style.BlurRadius)
	if err := b.add(st, Layer{Kind: Background, Rect: canvas, Zoom: true}, bg); err != nil {
		return nil, err
	}

	iw, ih := img.Bounds().Dx(), img.Bounds().Dy()
	fgRect := renderer.FitWithin(iw, ih, b.Width, b.Height, b.Style.ForegroundFrac)
	fg := renderer.Stretch(img, fgRect.Dx(), fgRect.Dy())
	if err := b.add(st, Layer{Kind: Foreground, Rect: fgRect, Zoom: true}, fg); err != nil {
		return nil, err
	}

	panelW := int(b.Style.PanelWidthFrac * float64(b.Width))

	sub, err := b.panel(sc.Subtitle, panelW, b.Style.SubtitleSize, b.Style.SubtitleOpacity)
	if err != nil {
		st.Release()
		return nil, errors.Wrapf(err, "scene %d subtitle", index)
	}
	if sub != nil {
		r := renderer.TopCenter(sub.Width, sub.Height, b.Width, b.Style.SubtitleTop)
		if err := b.add(st, Layer{Kind: SubtitlePanel, Rect: r}, sub.Image); err != nil {
			return nil, err
		}
	}

	capt, err := b.panel(sc.Caption, panelW, b.Style.CaptionSize, b.Style.CaptionOpacity)
	if err != nil {
		st.Release()
		return nil, errors.Wrapf(err, "scene %d caption", index)
	}
	if capt != nil {
		r := renderer.BottomCenter(capt.Width, capt.Height, b.Width, b.Height, b.Style.CaptionBottom)
		if err := b.add(st, Layer{Kind: CaptionPanel, Rect: r}, capt.Image); err != nil {
			return nil, err
		}
	}

	return st, nil
}

func (b *Builder) panel(text string, width int, size float64, opacity uint8) (*textpanel.Panel, error) {
	if text == "" {
		return nil, nil
	}
	face, err := b.Fonts.Face(size)
	if err != nil {
		return nil, err
	}
	defer face.Close()

	return textpanel.Render(text, width, face, textpanel.Options{
		Padding: textpanel.DefaultPadding,
		Opacity: opacity,
	}), nil
}

// add appends l with its pixels, spilling them to the arena when there is one.
// On error the stack's files are released.
func (b *Builder) add(st *Stack, l Layer, img image.Image) error {
	if b.Arena == nil {
		l.Image = img
		st.Layers = append(st.Layers, l)
		return nil
	}

	var (
		path string
		err  error
	)
	if l.Kind == Background {
		path, err = b.Arena.saveJPEG(st.Index, l.Kind.String(), img)
	} else {
		path, err = b.Arena.savePNG(st.Index, l.Kind.String(), img)
	}
	if err != nil {
		st.Release()
		return errors.Wrapf(err, "scene %d", st.Index)
	}
	l.Path = path
	st.Layers = append(st.Layers, l)
	return nil
}
