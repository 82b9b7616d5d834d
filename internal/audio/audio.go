// Package audio prepares the optional background music of a render: its gain
// and how its length lines up with the video.
package audio

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"strconv"

	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Track is a music file ready to be muxed under the video.
type Track struct {
	Path   string
	GainDB float64
	Gain   float64 // linear multiplier

	SourceDuration float64 // length of the file, 0 when unknown
	Duration       float64 // audible part, never longer than the video
	Target         float64 // video duration
	SilenceTail    float64 // seconds at the end without music
}

// GainMultiplier converts decibels to a linear amplitude factor.
func GainMultiplier(db float64) float64 {
	return math.Pow(10, db/20)
}

// Prober reports the duration of a media file in seconds.
type Prober func(ctx context.Context, path string) (float64, error)

// Mixer reconciles music against the video duration.
type Mixer struct {
	Probe Prober
}

func NewMixer() *Mixer {
	return &Mixer{Probe: ProbeDuration}
}

// Mix returns the track to play under a video of target seconds. No path, or a
// path that does not exist, yields nil: the video is rendered silent. Music
// longer than target is trimmed; shorter music is not looped and leaves a
// silent tail.
func (m *Mixer) Mix(ctx context.Context, path string, gainDB, target float64) (*Track, error) {
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "music %s", path)
	}

	tr := &Track{
		Path:     path,
		GainDB:   gainDB,
		Gain:     GainMultiplier(gainDB),
		Duration: target,
		Target:   target,
	}

	probe := m.Probe
	if probe == nil {
		probe = ProbeDuration
	}
	src, err := probe(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "probe music %s", path)
	}
	tr.SourceDuration = src
	if src > 0 && src < target {
		tr.Duration = src
		tr.SilenceTail = target - src
	}
	return tr, nil
}

type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// ProbeDuration asks ffprobe for the container duration of path.
func ProbeDuration(ctx context.Context, path string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	out, err := ffmpeg.Probe(path)
	if err != nil {
		return 0, errors.Wrap(err, "ffprobe")
	}
	return parseProbe(out)
}

func parseProbe(out string) (float64, error) {
	var p probeOutput
	if err := json.Unmarshal([]byte(out), &p); err != nil {
		return 0, errors.WithStack(err)
	}
	if p.Format.Duration == "" {
		return 0, errors.New("ffprobe reported no duration")
	}
	d, err := strconv.ParseFloat(p.Format.Duration, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parse duration %q", p.Format.Duration)
	}
	return d, nil
}
