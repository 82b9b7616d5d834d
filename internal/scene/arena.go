package scene

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Arena is the scratch directory of one render. Every intermediate layer image
// lives here, and Close removes all of it.
type Arena struct {
	Dir string
}

// NewArena creates a fresh arena under parent ("" means the system temp dir).
func NewArena(parent string) (*Arena, error) {
	dir, err := os.MkdirTemp(parent, "reel2video_")
	if err != nil {
		return nil, errors.Wrap(err, "create render arena")
	}
	return &Arena{Dir: dir}, nil
}

// Close deletes the arena and everything in it.
func (a *Arena) Close() error {
	if a == nil || a.Dir == "" {
		return nil
	}
	return os.RemoveAll(a.Dir)
}

func (a *Arena) path(scene int, kind, ext string) string {
	return filepath.Join(a.Dir, fmt.Sprintf("_%s_%03d_%s%s", kind, scene, uuid.NewString(), ext))
}

// savePNG writes img losslessly; panels and the foreground keep exact pixels.
func (a *Arena) savePNG(scene int, kind string, img image.Image) (string, error) {
	p := a.path(scene, kind, ".png")
	f, err := os.Create(p)
	if err != nil {
		return "", errors.WithStack(err)
	}
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(f, img); err != nil {
		f.Close()
		os.Remove(p)
		return "", errors.Wrapf(err, "encode %s", kind)
	}
	return p, errors.WithStack(f.Close())
}

// saveJPEG is used for the blurred backdrop, where compression loss is invisible.
func (a *Arena) saveJPEG(scene int, kind string, img image.Image) (string, error) {
	p := a.path(scene, kind, ".jpg")
	f, err := os.Create(p)
	if err != nil {
		return "", errors.WithStack(err)
	}
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 85}); err != nil {
		f.Close()
		os.Remove(p)
		return "", errors.Wrapf(err, "encode %s", kind)
	}
	return p, errors.WithStack(f.Close())
}

func loadFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return img, nil
}
