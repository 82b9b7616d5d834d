// Package timeline lays scenes end to end with crossfade overlaps and renders
// the resulting frame sequence in presentation order.
package timeline

import (
	"context"
	"image"
	"math"

	"github.com/ivlev/reel2video/internal/failure"
	"github.com/ivlev/reel2video/internal/renderer"
	"github.com/ivlev/reel2video/internal/system"
)

// ClampRatio is the share of the shortest scene a too-long crossfade is cut to.
const ClampRatio = 0.99

// Clip is anything with a duration that can draw itself at a local time.
type Clip interface {
	Duration() float64
	Open() (Frame, error)
}

// Frame is an opened clip.
type Frame interface {
	// Draw renders the clip at local time t into a canvas-sized dst.
	Draw(dst *image.RGBA, t float64)
	Close() error
}

// Sink receives composited frames in order. It must not keep the buffer after
// WriteFrame returns.
type Sink interface {
	WriteFrame(frame *image.RGBA) error
}

// Entry is a clip placed on the timeline.
type Entry struct {
	Clip  Clip
	Start float64
	End   float64
}

// Timeline is the ordered list of placed clips.
type Timeline struct {
	Entries []Entry

	// Crossfade is the overlap actually used between neighbours.
	Crossfade float64
	// Requested is the overlap asked for; it differs from Crossfade when Clamped.
	Requested float64
	Clamped   bool
}

// Assemble places clips so that each one starts crossfade seconds before its
// predecessor ends. A crossfade that is not shorter than every clip is reduced
// to ClampRatio of the shortest one.
func Assemble(clips []Clip, crossfade float64) (*Timeline, error) {
	if len(clips) == 0 {
		return nil, failure.New(failure.InvalidSpec, failure.NoScene, "timeline needs at least one scene")
	}
	if crossfade < 0 || math.IsNaN(crossfade) {
		return nil, failure.New(failure.InvalidSpec, failure.NoScene, "crossfade must be >= 0, got %v", crossfade)
	}

	shortest := math.Inf(1)
	for i, c := range clips {
		d := c.Duration()
		if !(d > 0) {
			return nil, failure.New(failure.InvalidScene, i, "duration must be > 0, got %v", d)
		}
		shortest = math.Min(shortest, d)
	}

	tl := &Timeline{Requested: crossfade, Crossfade: crossfade}
	if len(clips) == 1 {
		tl.Crossfade = 0
	} else if crossfade >= shortest {
		tl.Crossfade = ClampRatio * shortest
		tl.Clamped = true
	}

	start := 0.0
	for _, c := range clips {
		end := start + c.Duration()
		tl.Entries = append(tl.Entries, Entry{Clip: c, Start: start, End: end})
		start = end - tl.Crossfade
	}
	return tl, nil
}

// Duration is the sum of clip durations minus one crossfade per transition.
func (tl *Timeline) Duration() float64 {
	return tl.Entries[len(tl.Entries)-1].End
}

// FrameCount is the number of frames at fps; frame k shows time k/fps.
func (tl *Timeline) FrameCount(fps int) int {
	return int(math.Round(tl.Duration() * float64(fps)))
}

// Alpha is the opacity of entry i at global time t. The first entry is always
// opaque; later ones fade in over the crossfade.
func (tl *Timeline) Alpha(i int, t float64) float64 {
	if i == 0 || tl.Crossfade <= 0 {
		return 1
	}
	a := (t - tl.Entries[i].Start) / tl.Crossfade
	return math.Max(0, math.Min(1, a))
}

// Active returns the index range [lo, hi] of entries visible at t. Times past
// the end resolve to the last entry.
func (tl *Timeline) Active(t float64) (lo, hi int) {
	last := len(tl.Entries) - 1
	lo, hi = -1, -1
	for i, e := range tl.Entries {
		if t >= e.Start && (t < e.End || i == last) {
			if lo < 0 {
				lo = i
			}
			hi = i
		}
	}
	if lo < 0 {
		return last, last
	}
	// Entries fully covered by a later opaque one contribute nothing.
	for i := hi; i > lo; i-- {
		if tl.Alpha(i, t) >= 1 {
			lo = i
			break
		}
	}
	return lo, hi
}

// Render composites every frame at width×height and hands them to sink in
// strictly increasing time order. Each clip is opened when it first becomes
// visible and closed once playback has passed it.
func (tl *Timeline) Render(ctx context.Context, fps, width, height int, pool *system.CanvasPool, sink Sink) error {
	if fps <= 0 {
		return failure.New(failure.InvalidSpec, failure.NoScene, "fps must be > 0, got %d", fps)
	}
	if pool == nil {
		pool = system.NewCanvasPool()
	}

	open := make(map[int]Frame)
	defer func() {
		for _, f := range open {
			f.Close()
		}
	}()

	rect := image.Rect(0, 0, width, height)
	total := tl.FrameCount(fps)
	for k := 0; k < total; k++ {
		if err := ctx.Err(); err != nil {
			return failure.Wrap(failure.Canceled, failure.NoScene, err)
		}

		t := float64(k) / float64(fps)
		lo, hi := tl.Active(t)

		for i, f := range open {
			if tl.Entries[i].End <= t && i < lo {
				f.Close()
				delete(open, i)
			}
		}

		dst := pool.Get(rect)
		for i := lo; i <= hi; i++ {
			f, ok := open[i]
			if !ok {
				var err error
				f, err = tl.Entries[i].Clip.Open()
				if err != nil {
					pool.Put(dst)
					return err
				}
				open[i] = f
			}

			local := t - tl.Entries[i].Start
			if i == lo {
				f.Draw(dst, local)
				continue
			}
			layer := pool.Get(rect)
			f.Draw(layer, local)
			renderer.Blend(dst, layer, tl.Alpha(i, t))
			pool.Put(layer)
		}

		err := sink.WriteFrame(dst)
		pool.Put(dst)
		if err != nil {
			return err
		}
	}
	return nil
}
