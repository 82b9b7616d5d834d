package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/ivlev/reel2video/internal/audio"
	"github.com/ivlev/reel2video/internal/failure"
	"github.com/ivlev/reel2video/internal/timeline"
)

// Job describes one encode.
type Job struct {
	OutPath  string
	Width    int
	Height   int
	FPS      int
	Bitrate  string
	Encoder  string // ffmpeg video codec name
	Duration float64
	Audio    *audio.Track
}

// RenderFunc pushes every frame of the video into sink, in order.
type RenderFunc func(ctx context.Context, sink timeline.Sink) error

type VideoEncoder interface {
	Encode(ctx context.Context, job Job, render RenderFunc) error
}

// FFmpegEncoder pipes raw RGBA frames into an ffmpeg process.
type FFmpegEncoder struct {
	// Binary is the ffmpeg executable, "ffmpeg" when empty.
	Binary string
}

// Encode runs render against ffmpeg's stdin. On any failure the partially
// written output is removed, so a failed encode leaves no file behind.
func (e *FFmpegEncoder) Encode(ctx context.Context, job Job, render RenderFunc) error {
	if err := ctx.Err(); err != nil {
		return failure.Wrap(failure.Canceled, failure.NoScene, err)
	}
	if dir := filepath.Dir(job.OutPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return failure.Wrap(failure.EncodingFailure, failure.NoScene, errors.Wrap(err, "output dir"))
		}
	}

	bin := e.Binary
	if bin == "" {
		bin = "ffmpeg"
	}
	cmd := exec.CommandContext(ctx, bin, BuildArgs(job)...)

	stderr := &tailBuffer{max: 4096}
	cmd.Stderr = stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return failure.Wrap(failure.EncodingFailure, failure.NoScene, errors.Wrap(err, "stdin pipe"))
	}
	if err := cmd.Start(); err != nil {
		return failure.Wrap(failure.EncodingFailure, failure.NoScene, errors.Wrapf(err, "start %s", bin))
	}

	renderErr := render(ctx, &rawSink{w: stdin, width: job.Width, height: job.Height})
	if renderErr != nil {
		cmd.Process.Kill()
	}
	closeErr := stdin.Close()
	waitErr := cmd.Wait()

	if renderErr == nil && waitErr == nil && closeErr == nil {
		return nil
	}
	os.Remove(job.OutPath)

	switch {
	case ctx.Err() != nil:
		return failure.Wrap(failure.Canceled, failure.NoScene, ctx.Err())
	case failure.KindOf(renderErr) != failure.Unknown:
		return renderErr
	case waitErr != nil:
		return failure.Wrap(failure.EncodingFailure, failure.NoScene,
			errors.Wrapf(waitErr, "ffmpeg: %s", stderr.String()))
	case renderErr != nil:
		return failure.Wrap(failure.EncodingFailure, failure.NoScene, errors.Wrap(renderErr, "write frames"))
	default:
		return failure.Wrap(failure.EncodingFailure, failure.NoScene, errors.Wrap(closeErr, "close ffmpeg stdin"))
	}
}

// BuildArgs assembles the ffmpeg command line: raw RGBA on stdin, the optional
// music track trimmed, attenuated and padded to the video length, and an H.264
// yuv420p output at the requested bitrate.
func BuildArgs(job Job) []string {
	frames := ffmpeg.Input("pipe:", ffmpeg.KwArgs{
		"f":       "rawvideo",
		"pix_fmt": "rgba",
		"s":       fmt.Sprintf("%dx%d", job.Width, job.Height),
		"r":       job.FPS,
	})
	streams := []*ffmpeg.Stream{frames}

	out := ffmpeg.KwArgs{
		"c:v":      job.Encoder,
		"b:v":      job.Bitrate,
		"pix_fmt":  "yuv420p",
		"r":        job.FPS,
		"t":        seconds(job.Duration),
		"movflags": "+faststart",
	}

	// Encoder specific tuning
	switch job.Encoder {
	case "libx264":
		out["preset"] = "medium"
	case "h264_nvenc":
		out["preset"] = "p5"
	}

	if tr := job.Audio; tr != nil {
		music := ffmpeg.Input(tr.Path).Audio().
			Filter("atrim", ffmpeg.Args{}, ffmpeg.KwArgs{"duration": seconds(tr.Duration)}).
			Filter("volume", ffmpeg.Args{strconv.FormatFloat(tr.Gain, 'f', 6, 64)}).
			Filter("apad", ffmpeg.Args{}, ffmpeg.KwArgs{"whole_dur": seconds(tr.Target)})
		streams = append(streams, music)
		out["c:a"] = "aac"
		out["b:a"] = "192k"
	}

	return ffmpeg.Output(streams, job.OutPath, out).OverWriteOutput().GetArgs()
}

func seconds(d float64) string {
	return strconv.FormatFloat(d, 'f', 3, 64)
}

// rawSink writes frames to ffmpeg as tightly packed RGBA.
type rawSink struct {
	w      io.Writer
	width  int
	height int
	frames int
}

func (s *rawSink) WriteFrame(frame *image.RGBA) error {
	if frame.Bounds().Dx() != s.width || frame.Bounds().Dy() != s.height {
		return errors.Errorf("frame %d is %v, want %dx%d", s.frames, frame.Bounds().Size(), s.width, s.height)
	}
	if err := writeRawRGBA(s.w, frame); err != nil {
		return errors.Wrapf(err, "frame %d", s.frames)
	}
	s.frames++
	return nil
}

func writeRawRGBA(w io.Writer, img image.Image) error {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 || rgba.Rect.Min.X != 0 || rgba.Rect.Min.Y != 0 {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}
	_, err := w.Write(rgba.Pix)
	return err
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	max int
	buf bytes.Buffer
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Write(p)
	if over := b.buf.Len() - b.max; over > 0 {
		b.buf.Next(over)
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(bytes.TrimSpace(b.buf.Bytes()))
}
