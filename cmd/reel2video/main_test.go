package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/ivlev/reel2video/internal/config"
	"github.com/ivlev/reel2video/internal/failure"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{failure.New(failure.InvalidSpec, failure.NoScene, "x"), 2},
		{failure.New(failure.InvalidScene, 1, "x"), 2},
		{errors.Wrap(failure.New(failure.AssetNotFound, 0, "x"), "run"), 3},
		{failure.New(failure.EncodingFailure, failure.NoScene, "x"), 4},
		{failure.New(failure.Canceled, failure.NoScene, "x"), 130},
		{errors.New("plain"), 1},
	}
	for _, tt := range tests {
		if got := exitCode(tt.err); got != tt.want {
			t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestFlagsOverrideDefaults(t *testing.T) {
	cfg := config.Defaults()
	cmd := newRootCmd(cfg)
	err := cmd.ParseFlags([]string{
		"--json", "reel.json", "--out", "reel.mp4", "--fps", "24", "--xfade", "0.25",
		"--bitrate", "6M", "--music", "bg.mp3", "--music-gain", "-12", "--encoder", "libx264",
	})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SpecPath != "reel.json" || cfg.OutputPath != "reel.mp4" || cfg.FPS != 24 || cfg.Crossfade != 0.25 {
		t.Errorf("flags not applied: %+v", cfg)
	}
	if cfg.Bitrate != "6M" || cfg.MusicPath != "bg.mp3" || cfg.MusicGainDB != -12 || cfg.VideoEncoder != "libx264" {
		t.Errorf("flags not applied: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("valid flags rejected: %v", err)
	}
}

func TestBadFlagReported(t *testing.T) {
	cmd := newRootCmd(config.Defaults())
	var stderr bytes.Buffer
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"--fps", "abc"})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected a flag error")
	}
	t.Logf("stderr: %s", stderr.String())
	if got := exitCode(err); got != 2 {
		t.Errorf("exitCode = %d, want 2", got)
	}
	if !strings.HasPrefix(stderr.String(), "[-] ") || !strings.Contains(stderr.String(), "--fps") {
		t.Errorf("flag error not printed: %q", stderr.String())
	}
}
