package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ivlev/reel2video/internal/config"
	"github.com/ivlev/reel2video/internal/engine"
	"github.com/ivlev/reel2video/internal/failure"
	"github.com/ivlev/reel2video/internal/logging"
	"github.com/ivlev/reel2video/internal/publish"
	"github.com/ivlev/reel2video/internal/scenario"
	"github.com/ivlev/reel2video/internal/system"
)

var version = "dev"

func main() {
	cfg := config.Defaults()
	cfg.BuildVersion = version
	config.LoadEnv(cfg)

	cmd := newRootCmd(cfg)
	if err := cmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reel2video",
		Short: "Render a scene list into a vertical 1080x1920 video",
		Long: `reel2video turns a list of scenes (still image, duration, optional subtitle
and caption) into one H.264 video with a blurred backdrop, a slow zoom,
text panels, crossfades between scenes and optional background music.

Examples:
  reel2video --json reel.json --out out/reel.mp4
  reel2video --json reel.yaml --out reel.mp4 --music bg.mp3 --music-gain -12
  reel2video --meta story/meta.json --images story/images --out reel.mp4 --report reel.yaml`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg)
		},
	}

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		fmt.Fprintf(c.ErrOrStderr(), "[-] %v\n", err)
		return failure.Wrap(failure.InvalidSpec, failure.NoScene, err)
	})

	f := cmd.Flags()
	f.StringVar(&cfg.SpecPath, "json", cfg.SpecPath, "scene list (JSON, or YAML by extension)")
	f.StringVar(&cfg.MetaPath, "meta", cfg.MetaPath, "story meta.json to convert instead of --json")
	f.StringVar(&cfg.ImagesDir, "images", cfg.ImagesDir, "images directory for --meta (default: <meta dir>/images)")
	f.StringVar(&cfg.OutputPath, "out", cfg.OutputPath, "output video path")
	f.IntVar(&cfg.FPS, "fps", cfg.FPS, "frames per second")
	f.Float64Var(&cfg.Crossfade, "xfade", cfg.Crossfade, "crossfade between scenes, seconds")
	f.StringVar(&cfg.Bitrate, "bitrate", cfg.Bitrate, "target video bitrate, e.g. 10M or 8500k")
	f.StringVar(&cfg.FontPath, "font", cfg.FontPath, "TTF/OTF font for text panels")
	f.StringVar(&cfg.MusicPath, "music", cfg.MusicPath, "background music file")
	f.Float64Var(&cfg.MusicGainDB, "music-gain", cfg.MusicGainDB, "music gain in dB")
	f.StringVar(&cfg.VideoEncoder, "encoder", cfg.VideoEncoder, "ffmpeg video encoder (default: best available H.264)")
	f.IntVar(&cfg.Workers, "workers", cfg.Workers, "parallel scene builds")
	f.StringVar(&cfg.DumpSpec, "dump-spec", cfg.DumpSpec, "write the resolved scene list here (JSON or YAML)")
	f.StringVar(&cfg.ReportPath, "report", cfg.ReportPath, "write render metadata here (YAML, or JSON by extension)")
	f.StringVar(&cfg.Publish, "publish", cfg.Publish, "upload the result to s3://bucket/prefix")
	f.BoolVar(&cfg.ShowStats, "stats", cfg.ShowStats, "print a performance report and append it to benchmark.log")
	f.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "debug output")
	f.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "also append log lines to this file")

	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	log, err := logging.New(logging.Options{Verbose: cfg.Verbose, LogFile: cfg.LogFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "[-] %v\n", err)
		return err
	}
	defer log.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := render(ctx, cfg, log); err != nil {
		log.Error("%v", err)
		return err
	}
	return nil
}

func render(ctx context.Context, cfg *config.Config, log *logging.Logger) error {
	if cfg.SpecPath == "" && cfg.MetaPath == "" {
		return failure.New(failure.InvalidSpec, failure.NoScene, "--json or --meta is required")
	}

	doc, err := engine.LoadDocument(cfg)
	if err != nil {
		return err
	}

	if cfg.DumpSpec != "" {
		if err := scenario.Write(doc, cfg.DumpSpec); err != nil {
			return err
		}
		log.Success("Scene list saved: %s", cfg.DumpSpec)
		if cfg.OutputPath == "" {
			return nil
		}
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if !system.HaveFFmpeg() {
		return failure.New(failure.EncodingFailure, failure.NoScene, "ffmpeg not found on PATH")
	}

	project := engine.NewVideoProject(cfg, engine.NewRenderSpec(doc, cfg), log)
	project.Meta = doc.Meta

	if cfg.Publish != "" {
		target, err := publish.ParseTarget(cfg.Publish)
		if err != nil {
			return failure.Wrap(failure.InvalidSpec, failure.NoScene, err)
		}
		pub, err := publish.NewS3Publisher(ctx, target, "")
		if err != nil {
			return err
		}
		project.Publisher = pub
	}

	res, err := project.Run(ctx)
	if err != nil {
		return err
	}

	if cfg.ReportPath != "" {
		if err := engine.WriteReport(res, cfg.ReportPath); err != nil {
			log.Warn("Could not write report: %v", err)
		} else {
			log.Info("Report: %s", cfg.ReportPath)
		}
	}
	return nil
}

func exitCode(err error) int {
	switch failure.KindOf(err) {
	case failure.InvalidSpec, failure.InvalidScene:
		return 2
	case failure.AssetNotFound:
		return 3
	case failure.EncodingFailure:
		return 4
	case failure.Canceled:
		return 130
	default:
		return 1
	}
}
