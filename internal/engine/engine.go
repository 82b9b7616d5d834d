package engine

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/reel2video/internal/audio"
	"github.com/ivlev/reel2video/internal/config"
	"github.com/ivlev/reel2video/internal/effects"
	"github.com/ivlev/reel2video/internal/failure"
	"github.com/ivlev/reel2video/internal/logging"
	"github.com/ivlev/reel2video/internal/scenario"
	"github.com/ivlev/reel2video/internal/scene"
	"github.com/ivlev/reel2video/internal/source"
	"github.com/ivlev/reel2video/internal/system"
	"github.com/ivlev/reel2video/internal/textpanel"
	"github.com/ivlev/reel2video/internal/timeline"
	"github.com/ivlev/reel2video/internal/video"
)

// Publisher uploads a finished video and returns where it went.
type Publisher interface {
	Publish(ctx context.Context, path string) (string, error)
}

// VideoProject renders one RenderSpec to one output file.
type VideoProject struct {
	Config    *config.Config
	Spec      *scenario.RenderSpec
	Meta      scenario.Meta
	Loader    source.Loader
	Encoder   video.VideoEncoder
	Effect    effects.Effect
	Mixer     *audio.Mixer
	Publisher Publisher
	Log       *logging.Logger

	// Fonts searched after Config.FontPath.
	FontCandidates []string
	// ArenaParent is where the per-render scratch dir is created; "" is the system temp dir.
	ArenaParent string
}

func NewVideoProject(cfg *config.Config, spec *scenario.RenderSpec, log *logging.Logger) *VideoProject {
	if log == nil {
		log = logging.Discard()
	}
	return &VideoProject{
		Config:         cfg,
		Spec:           spec,
		Loader:         source.FileLoader{},
		Encoder:        &video.FFmpegEncoder{},
		Effect:         effects.NewKenBurns(),
		Mixer:          audio.NewMixer(),
		Log:            log,
		FontCandidates: system.FontCandidates,
	}
}

// Run builds every scene, assembles the timeline, mixes the music and encodes.
// On failure no output file is left behind and the scratch arena is removed.
func (p *VideoProject) Run(ctx context.Context) (*Result, error) {
	startTime := time.Now()
	spec := p.Spec
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	p.Log.Info("Scenes: %d (%.2fs before overlap) | %dx%d @ %d FPS | xfade %.2fs | bitrate %s",
		len(spec.Scenes), spec.TotalSceneDuration(), spec.Width, spec.Height, spec.FPS, spec.Crossfade, spec.Bitrate)

	fonts, err := textpanel.Resolve(p.Config.FontPath, p.FontCandidates)
	if fonts == nil {
		return nil, err
	}
	if err != nil {
		p.Log.Warn("Font %s unusable, falling back: %v", p.Config.FontPath, err)
	}
	if fonts.Path != "" {
		p.Log.Debug("Font: %s", fonts.Path)
	} else {
		p.Log.Debug("Font: built-in")
	}

	arena, err := scene.NewArena(p.ArenaParent)
	if err != nil {
		return nil, err
	}
	defer arena.Close()
	p.Log.Debug("Arena: %s", arena.Dir)

	builder := &scene.Builder{
		Width:  spec.Width,
		Height: spec.Height,
		Style:  scene.DefaultStyle(),
		Loader: p.Loader,
		Fonts:  fonts,
		Effect: p.Effect,
		Arena:  arena,
	}

	renderStart := time.Now()
	stacks, err := p.buildScenes(ctx, builder)
	if err != nil {
		return nil, err
	}
	defer func() {
		for _, st := range stacks {
			st.Release()
		}
	}()
	renderTime := time.Since(renderStart)

	clips := make([]timeline.Clip, len(stacks))
	for i, st := range stacks {
		clips[i] = stackClip{st}
	}
	tl, err := timeline.Assemble(clips, spec.Crossfade)
	if err != nil {
		return nil, err
	}
	if tl.Clamped {
		p.Log.Warn("Crossfade reduced to %.2fs because of a short scene (asked %.2fs)", tl.Crossfade, tl.Requested)
	}
	duration := tl.Duration()

	var track *audio.Track
	if m := spec.Music; m != nil {
		track, err = p.Mixer.Mix(ctx, m.Path, m.GainDB, duration)
		if err != nil {
			return nil, failure.Wrap(failure.EncodingFailure, failure.NoScene, err)
		}
		switch {
		case track == nil:
			p.Log.Warn("Music %s not found, rendering without audio", m.Path)
		case track.SilenceTail > 0:
			p.Log.Info("Music is %.2fs shorter than the video; the tail stays silent", track.SilenceTail)
		}
	}

	encoderName := p.Config.VideoEncoder
	if encoderName == "" {
		encoderName = system.BestH264Encoder()
	}
	p.Log.Info("Encoder: %s | %d frames", encoderName, tl.FrameCount(spec.FPS))

	job := video.Job{
		OutPath:  p.Config.OutputPath,
		Width:    spec.Width,
		Height:   spec.Height,
		FPS:      spec.FPS,
		Bitrate:  spec.Bitrate,
		Encoder:  encoderName,
		Duration: duration,
		Audio:    track,
	}

	encodeStart := time.Now()
	pool := system.NewCanvasPool()
	err = p.Encoder.Encode(ctx, job, func(ctx context.Context, sink timeline.Sink) error {
		return tl.Render(ctx, spec.FPS, spec.Width, spec.Height, pool, &progressSink{
			next:  sink,
			fps:   spec.FPS,
			total: tl.FrameCount(spec.FPS),
			log:   p.Log,
		})
	})
	if err != nil {
		return nil, err
	}
	encodeTime := time.Since(encodeStart)

	res := &Result{
		OutputPath: p.Config.OutputPath,
		Duration:   duration,
		Resolution: fmt.Sprintf("%dx%d", spec.Width, spec.Height),
		FPS:        spec.FPS,
		Bitrate:    spec.Bitrate,
		SceneCount: len(spec.Scenes),
		Encoder:    encoderName,
		Crossfade:  tl.Crossfade,
		Meta:       p.Meta,
	}
	if track != nil {
		res.Music = track.Path
		res.AudioTailSilence = track.SilenceTail
	}

	if p.Publisher != nil {
		url, err := p.Publisher.Publish(ctx, p.Config.OutputPath)
		if err != nil {
			p.Log.Warn("Publish failed, output kept locally: %v", err)
		} else {
			res.PublishedURL = url
			p.Log.Success("Published: %s", url)
		}
	}

	if p.Config.ShowStats {
		p.writeStats(res, time.Since(startTime), renderTime, encodeTime)
	}

	p.Log.Success("Done: %s (%.2fs, %d scenes)", res.OutputPath, res.Duration, res.SceneCount)
	return res, nil
}

// buildScenes builds all stacks on a bounded pool. The result keeps scene order
// regardless of completion order.
func (p *VideoProject) buildScenes(ctx context.Context, b *scene.Builder) ([]*scene.Stack, error) {
	n := len(p.Spec.Scenes)
	stacks := make([]*scene.Stack, n)

	workers := p.Config.Workers
	if workers <= 0 {
		workers = system.WorkerCount()
	}
	if workers > n {
		workers = n
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var ready int32
	for i, sc := range p.Spec.Scenes {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			st, err := b.Build(gctx, i, sc)
			if err != nil {
				return err
			}
			stacks[i] = st
			p.Log.Debug("Scene %d: %s, %d text panels", i, sc.Asset, st.Panels())
			p.Log.Step("Ready: %d/%d", atomic.AddInt32(&ready, 1), n)
			return nil
		})
	}

	err := g.Wait()
	if err == nil && ctx.Err() != nil {
		err = failure.Wrap(failure.Canceled, failure.NoScene, ctx.Err())
	}
	if err != nil {
		for _, st := range stacks {
			if st != nil {
				st.Release()
			}
		}
		if ctx.Err() != nil && !failure.Is(err, failure.Canceled) {
			return nil, failure.Wrap(failure.Canceled, failure.SceneOf(err), ctx.Err())
		}
		return nil, err
	}
	return stacks, nil
}

func (p *VideoProject) writeStats(res *Result, total, render, encode time.Duration) {
	fps := 0.0
	if total > 0 {
		fps = res.Duration * float64(res.FPS) / total.Seconds()
	}

	report := fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Total Time: %.2fs\n"+
			"Scene build (CPU): %.2fs\n"+
			"Compose + encode: %.2fs\n"+
			"Effective FPS: %.2f\n"+
			"----------------------------\n",
		p.Config.BuildVersion, total.Seconds(), render.Seconds(), encode.Seconds(), fps,
	)
	fmt.Print(report)

	logEntry := fmt.Sprintf("[%s] Build: %s | Output: %s | Scenes: %d | Total: %.2fs | Build: %.2fs | Encode: %.2fs | FPS: %.2f\n",
		time.Now().Format("2006-01-02 15:04:05"),
		p.Config.BuildVersion,
		filepath.Base(res.OutputPath),
		res.SceneCount,
		total.Seconds(),
		render.Seconds(),
		encode.Seconds(),
		fps,
	)

	f, err := os.OpenFile("benchmark.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		p.Log.Warn("Could not write benchmark.log: %v", err)
		return
	}
	defer f.Close()
	if _, err := f.WriteString(logEntry); err != nil {
		p.Log.Warn("Could not write benchmark.log: %v", errors.WithStack(err))
	}
}

// stackClip lets a scene stack play on the timeline.
type stackClip struct {
	*scene.Stack
}

var _ timeline.Clip = stackClip{}

func (c stackClip) Open() (timeline.Frame, error) {
	plate, err := c.Stack.Open()
	if err != nil {
		return nil, err
	}
	return plate, nil
}

// progressSink reports encode progress once per second of video in verbose mode.
type progressSink struct {
	next    timeline.Sink
	fps     int
	total   int
	written int
	log     *logging.Logger
}

func (s *progressSink) WriteFrame(frame *image.RGBA) error {
	if err := s.next.WriteFrame(frame); err != nil {
		return err
	}
	s.written++
	if s.written%s.fps == 0 || s.written == s.total {
		s.log.Debug("Frames: %d/%d", s.written, s.total)
	}
	return nil
}
