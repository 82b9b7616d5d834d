package source

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/pkg/errors"
	_ "golang.org/x/image/webp"

	"github.com/ivlev/reel2video/internal/scenario"
)

// pdfDPI is the rasterizing resolution for PDF page assets. A 9:16 page at
// this DPI is taller than the canvas, so the foreground is always downscaled.
const pdfDPI = 200

// Loader decodes scene assets into images.
type Loader interface {
	Load(asset string) (image.Image, error)
}

// FileLoader reads raster images from disk and rasterizes "file.pdf#N" pages.
type FileLoader struct{}

// Load decodes the asset. A missing file yields an error matching os.ErrNotExist.
func (FileLoader) Load(asset string) (image.Image, error) {
	path, page := scenario.SplitPage(asset)
	if path == "" {
		return nil, errors.Wrap(os.ErrNotExist, "empty asset path")
	}

	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		if page == 0 {
			page = 1
		}
		return renderPDFPage(path, page)
	}

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

func renderPDFPage(path string, page int) (image.Image, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.WithStack(err)
	}

	// Each call opens its own document so scene workers never share one.
	doc, err := fitz.New(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open pdf %s", path)
	}
	defer doc.Close()

	if page > doc.NumPage() {
		return nil, errors.Errorf("pdf %s has %d pages, page %d requested", path, doc.NumPage(), page)
	}
	img, err := doc.ImageDPI(page-1, pdfDPI)
	if err != nil {
		return nil, errors.Wrapf(err, "render pdf page %d", page)
	}
	return img, nil
}
