package video

import (
	"bytes"
	"context"
	"image"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/ivlev/reel2video/internal/audio"
	"github.com/ivlev/reel2video/internal/failure"
	"github.com/ivlev/reel2video/internal/timeline"
)

func TestBuildArgs(t *testing.T) {
	job := Job{
		OutPath:  "/tmp/out.mp4",
		Width:    1080,
		Height:   1920,
		FPS:      30,
		Bitrate:  "10M",
		Encoder:  "libx264",
		Duration: 7,
	}

	args := strings.Join(BuildArgs(job), " ")
	t.Logf("silent: %s", args)
	for _, want := range []string{"rawvideo", "-pix_fmt rgba", "1080x1920", "pipe:", "-c:v libx264", "-b:v 10M", "-pix_fmt yuv420p", "-t 7.000", "/tmp/out.mp4"} {
		if !strings.Contains(args, want) {
			t.Errorf("args missing %q", want)
		}
	}
	if strings.Contains(args, "volume") {
		t.Error("silent job should not carry an audio filter")
	}

	job.Audio = &audio.Track{Path: "/tmp/music.mp3", Gain: audio.GainMultiplier(-8), Duration: 2, Target: 7}
	args = strings.Join(BuildArgs(job), " ")
	t.Logf("music: %s", args)
	for _, want := range []string{"/tmp/music.mp3", "atrim", "volume=0.398107", "apad", "-c:a aac"} {
		if !strings.Contains(args, want) {
			t.Errorf("args missing %q", want)
		}
	}
	if strings.Contains(args, "stream_loop") {
		t.Error("music must not be looped")
	}
}

func TestWriteRawRGBA(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	for i := range img.Pix {
		img.Pix[i] = byte(i)
	}
	var buf bytes.Buffer
	if err := writeRawRGBA(&buf, img); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf.Bytes(), img.Pix) {
		t.Error("packed image should be written as is")
	}

	sub := img.SubImage(image.Rect(1, 0, 3, 2))
	buf.Reset()
	if err := writeRawRGBA(&buf, sub); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 2*2*4 {
		t.Errorf("sub-image wrote %d bytes, want 16", buf.Len())
	}
}

func TestRawSinkRejectsWrongSize(t *testing.T) {
	s := &rawSink{w: &bytes.Buffer{}, width: 4, height: 4}
	if err := s.WriteFrame(image.NewRGBA(image.Rect(0, 0, 2, 2))); err == nil {
		t.Error("expected size mismatch error")
	}
}

func TestTailBuffer(t *testing.T) {
	b := &tailBuffer{max: 5}
	b.Write([]byte("hello "))
	b.Write([]byte("world"))
	if b.String() != "world" {
		t.Errorf("got %q", b.String())
	}
}

func TestEncodeMissingBinary(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.mp4")
	enc := &FFmpegEncoder{Binary: filepath.Join(t.TempDir(), "no-such-ffmpeg")}
	err := enc.Encode(context.Background(), Job{OutPath: out, Width: 2, Height: 2, FPS: 1, Duration: 1},
		func(ctx context.Context, sink timeline.Sink) error { return nil })
	if !failure.Is(err, failure.EncodingFailure) {
		t.Fatalf("expected EncodingFailure, got %v", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("output file should not exist")
	}
}

func TestEncodeCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := (&FFmpegEncoder{}).Encode(ctx, Job{OutPath: filepath.Join(t.TempDir(), "o.mp4")}, nil)
	if !failure.Is(err, failure.Canceled) {
		t.Fatalf("expected Canceled, got %v", err)
	}
}

// fakeFFmpeg writes a partial output file, drains the frames and fails.
const fakeFFmpeg = `#!/bin/sh
for a; do case "$a" in *.mp4) out="$a";; esac; done
echo partial > "$out"
cat > /dev/null
exit 1
`

func TestEncodeFailureRemovesPartialOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs /bin/sh")
	}
	dir := t.TempDir()
	bin := filepath.Join(dir, "ffmpeg")
	if err := os.WriteFile(bin, []byte(fakeFFmpeg), 0755); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out.mp4")

	enc := &FFmpegEncoder{Binary: bin}
	job := Job{OutPath: out, Width: 2, Height: 2, FPS: 1, Bitrate: "1M", Encoder: "libx264", Duration: 2}
	err := enc.Encode(context.Background(), job, func(ctx context.Context, sink timeline.Sink) error {
		for i := 0; i < 2; i++ {
			if err := sink.WriteFrame(image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
				return err
			}
		}
		return nil
	})
	t.Logf("err: %v", err)
	if !failure.Is(err, failure.EncodingFailure) {
		t.Fatalf("expected EncodingFailure, got %v", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("partial output should be removed")
	}
}
