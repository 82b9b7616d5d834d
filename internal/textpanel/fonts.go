package textpanel

import (
	"os"

	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/ivlev/reel2video/internal/failure"
)

// Fonts is a parsed typeface that hands out sized faces. The parsed font is
// shared; every Face call returns a new face, so callers on different
// goroutines never share one.
type Fonts struct {
	font *opentype.Font
	// Path is the file the typeface came from, empty for the built-in font.
	Path string
}

// Builtin returns the typeface compiled into the binary.
func Builtin() (*Fonts, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, errors.Wrap(err, "parse built-in font")
	}
	return &Fonts{font: f}, nil
}

// Load parses the TrueType/OpenType file at path. A missing file is an
// AssetNotFound failure so callers can decide to fall back.
func Load(path string) (*Fonts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, failure.Wrap(failure.AssetNotFound, failure.NoScene, errors.Wrapf(err, "font %s", path))
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parse font %s", path)
	}
	return &Fonts{font: f, Path: path}, nil
}

// Resolve tries preferred, then each candidate in order, then the built-in
// font. The returned error is non-nil only when preferred was given and could
// not be used; the Fonts value is valid either way.
func Resolve(preferred string, candidates []string) (*Fonts, error) {
	var preferredErr error
	if preferred != "" {
		f, err := Load(preferred)
		if err == nil {
			return f, nil
		}
		preferredErr = err
	}

	for _, p := range candidates {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if f, err := Load(p); err == nil {
			return f, preferredErr
		}
	}

	f, err := Builtin()
	if err != nil {
		return nil, err
	}
	return f, preferredErr
}

// Face returns a new face at size points (72 DPI, so points equal pixels).
func (f *Fonts) Face(size float64) (font.Face, error) {
	face, err := opentype.NewFace(f.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "font face %.0fpt", size)
	}
	return face, nil
}
