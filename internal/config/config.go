// Package config holds the knobs of a render and their defaults.
package config

import (
	"os"
	"regexp"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/ivlev/reel2video/internal/failure"
	"github.com/ivlev/reel2video/internal/scenario"
	"github.com/ivlev/reel2video/internal/system"
)

// Environment variables that seed flag defaults.
const (
	EnvFont      = "REEL_FONT"
	EnvMusic     = "REEL_MUSIC"
	EnvMusicGain = "REEL_MUSIC_GAIN"
	EnvBitrate   = "REEL_BITRATE"
	EnvFPS       = "REEL_FPS"
)

type Config struct {
	SpecPath   string // scene list, JSON or YAML
	MetaPath   string // story meta.json, alternative to SpecPath
	ImagesDir  string
	OutputPath string

	Width     int
	Height    int
	FPS       int
	Crossfade float64
	Bitrate   string

	FontPath    string
	MusicPath   string
	MusicGainDB float64

	Workers      int
	VideoEncoder string // empty means probe for the best H.264 encoder

	DumpSpec   string
	ReportPath string
	Publish    string // s3://bucket/prefix

	Verbose      bool
	ShowStats    bool
	LogFile      string
	BuildVersion string
}

// Defaults returns the standard reel settings.
func Defaults() *Config {
	return &Config{
		Width:       scenario.Width,
		Height:      scenario.Height,
		FPS:         30,
		Crossfade:   0.5,
		Bitrate:     "10M",
		MusicGainDB: -8.0,
		Workers:     system.WorkerCount(),
	}
}

// LoadEnv reads .env from the working directory, if present, and applies the
// REEL_* variables on top of cfg. Unparsable numbers are ignored.
func LoadEnv(cfg *Config) {
	_ = godotenv.Load()
	ApplyEnv(cfg, os.Getenv)
}

// ApplyEnv overrides cfg with the REEL_* values returned by getenv.
func ApplyEnv(cfg *Config, getenv func(string) string) {
	if v := getenv(EnvFont); v != "" {
		cfg.FontPath = v
	}
	if v := getenv(EnvMusic); v != "" {
		cfg.MusicPath = v
	}
	if v := getenv(EnvBitrate); v != "" {
		cfg.Bitrate = v
	}
	if v := getenv(EnvMusicGain); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.MusicGainDB = f
		}
	}
	if v := getenv(EnvFPS); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.FPS = n
		}
	}
}

var bitratePattern = regexp.MustCompile(`^\d+(\.\d+)?[kKmM]?$`)

// Validate rejects settings no render can start with.
func (c *Config) Validate() error {
	switch {
	case c.SpecPath == "" && c.MetaPath == "":
		return invalid("a scene list (--json) or story meta (--meta) is required")
	case c.OutputPath == "":
		return invalid("output path is required")
	case c.FPS <= 0:
		return invalid("fps must be > 0, got %d", c.FPS)
	case c.Crossfade < 0:
		return invalid("xfade must be >= 0, got %v", c.Crossfade)
	case !bitratePattern.MatchString(c.Bitrate):
		return invalid("bitrate %q is not a number with an optional k/M suffix", c.Bitrate)
	case c.Workers < 0:
		return invalid("workers must be >= 0, got %d", c.Workers)
	}
	return nil
}

func invalid(format string, args ...interface{}) error {
	return failure.New(failure.InvalidSpec, failure.NoScene, format, args...)
}

// Music returns the music settings, or nil when no track is configured.
func (c *Config) Music() *scenario.Music {
	if c.MusicPath == "" {
		return nil
	}
	return &scenario.Music{Path: c.MusicPath, GainDB: c.MusicGainDB}
}
