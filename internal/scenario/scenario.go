package scenario

import (
	"github.com/ivlev/reel2video/internal/failure"
)

// Canvas size of every rendered reel.
const (
	Width  = 1080
	Height = 1920
)

// DefaultDuration applies to frames that omit "dur".
const DefaultDuration = 6.0

// Scene is one timeline unit: a still image, how long it stays on screen and
// up to two text overlays. Scenes are read once and never mutated.
type Scene struct {
	ID       string  `json:"id,omitempty" yaml:"id,omitempty"`
	Asset    string  `json:"asset" yaml:"asset"`
	Duration float64 `json:"dur" yaml:"dur"` // seconds
	Subtitle string  `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`
	Caption  string  `json:"caption_tr,omitempty" yaml:"caption_tr,omitempty"`
}

// Meta holds the descriptive top-level keys of a scene document.
type Meta struct {
	Version      string `json:"echo_os_version,omitempty" yaml:"echo_os_version,omitempty"`
	Project      string `json:"project,omitempty" yaml:"project,omitempty"`
	Series       string `json:"series,omitempty" yaml:"series,omitempty"`
	EpisodeTitle string `json:"episode_title,omitempty" yaml:"episode_title,omitempty"`
}

// Document is a parsed scene document.
type Document struct {
	Meta   `yaml:",inline"`
	Scenes []Scene `json:"frames" yaml:"frames"`
}

// Music is the optional background track of a render.
type Music struct {
	Path   string
	GainDB float64
}

// RenderSpec is everything a render needs. It is immutable once the render starts.
type RenderSpec struct {
	Scenes    []Scene
	Width     int
	Height    int
	FPS       int
	Crossfade float64 // seconds
	Bitrate   string
	Music     *Music
}

// NewRenderSpec pairs a document with render settings at the fixed reel resolution.
func NewRenderSpec(doc *Document, fps int, crossfade float64, bitrate string, music *Music) *RenderSpec {
	scenes := make([]Scene, len(doc.Scenes))
	copy(scenes, doc.Scenes)
	return &RenderSpec{
		Scenes:    scenes,
		Width:     Width,
		Height:    Height,
		FPS:       fps,
		Crossfade: crossfade,
		Bitrate:   bitrate,
		Music:     music,
	}
}

// Validate rejects specs that must not reach the renderer.
func (s *RenderSpec) Validate() error {
	if len(s.Scenes) == 0 {
		return failure.New(failure.InvalidSpec, failure.NoScene, "spec contains no scenes")
	}
	if s.FPS <= 0 {
		return failure.New(failure.InvalidSpec, failure.NoScene, "fps must be > 0, got %d", s.FPS)
	}
	if s.Crossfade < 0 {
		return failure.New(failure.InvalidSpec, failure.NoScene, "crossfade must be >= 0, got %v", s.Crossfade)
	}
	for i, sc := range s.Scenes {
		if err := sc.Validate(i); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks a single scene at position index.
func (sc Scene) Validate(index int) error {
	if !(sc.Duration > 0) {
		return failure.New(failure.InvalidScene, index, "duration must be > 0, got %v", sc.Duration)
	}
	return nil
}

// TotalSceneDuration is the sum of all scene durations, before any overlap.
func (s *RenderSpec) TotalSceneDuration() float64 {
	sum := 0.0
	for _, sc := range s.Scenes {
		sum += sc.Duration
	}
	return sum
}
