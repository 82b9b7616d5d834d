package engine

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/ivlev/reel2video/internal/config"
	"github.com/ivlev/reel2video/internal/scenario"
)

// Result describes a finished render.
type Result struct {
	OutputPath       string        `json:"output_path" yaml:"output_path"`
	Duration         float64       `json:"duration" yaml:"duration"`
	Resolution       string        `json:"resolution" yaml:"resolution"`
	FPS              int           `json:"fps" yaml:"fps"`
	Bitrate          string        `json:"bitrate" yaml:"bitrate"`
	SceneCount       int           `json:"scene_count" yaml:"scene_count"`
	Encoder          string        `json:"encoder" yaml:"encoder"`
	Crossfade        float64       `json:"crossfade" yaml:"crossfade"`
	Music            string        `json:"music,omitempty" yaml:"music,omitempty"`
	AudioTailSilence float64       `json:"audio_tail_silence,omitempty" yaml:"audio_tail_silence,omitempty"`
	PublishedURL     string        `json:"published_url,omitempty" yaml:"published_url,omitempty"`
	Meta             scenario.Meta `json:"meta,omitempty" yaml:"meta,omitempty"`
}

// WriteReport saves res as JSON when path ends in .json, YAML otherwise.
func WriteReport(res *Result, path string) error {
	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err = json.MarshalIndent(res, "", "  ")
	} else {
		data, err = yaml.Marshal(res)
	}
	if err != nil {
		return errors.Wrap(err, "encode report")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.WithStack(err)
		}
	}
	return errors.WithStack(os.WriteFile(path, data, 0644))
}

// LoadDocument reads the scene list named by cfg: a spec file, or story
// metadata plus its images directory.
func LoadDocument(cfg *config.Config) (*scenario.Document, error) {
	if cfg.SpecPath != "" {
		return scenario.Read(cfg.SpecPath)
	}
	return scenario.ReadStoryMeta(cfg.MetaPath, cfg.ImagesDir)
}

// NewRenderSpec pairs doc with the render settings of cfg.
func NewRenderSpec(doc *scenario.Document, cfg *config.Config) *scenario.RenderSpec {
	spec := scenario.NewRenderSpec(doc, cfg.FPS, cfg.Crossfade, cfg.Bitrate, cfg.Music())
	if cfg.Width > 0 && cfg.Height > 0 {
		spec.Width, spec.Height = cfg.Width, cfg.Height
	}
	return spec
}
