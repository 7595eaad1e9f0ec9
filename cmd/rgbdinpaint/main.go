package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"rgbdinpaint/internal/models"
	"rgbdinpaint/pkg/config"
	"rgbdinpaint/pkg/cvbackend"
	"rgbdinpaint/pkg/imageio"
	"rgbdinpaint/pkg/imgproc"
	"rgbdinpaint/pkg/inpainting"
	"rgbdinpaint/pkg/linsolve"
	"rgbdinpaint/pkg/reconstruction"
	"rgbdinpaint/pkg/visualization"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	colorPath := flag.String("color", "", "Color image to inpaint")
	depthPath := flag.String("depth", "", "Depth map to reconstruct (optional)")
	maskPath := flag.String("mask", "", "Mask image, white = known pixel")
	configPath := flag.String("config", "rgbdinpaint.yaml", "Config file")
	writeConfig := flag.Bool("write-config", false, "Write the default config to -config and exit")
	outDir := flag.String("out", "", "Output directory (overrides output.dir)")
	scale := flag.Float64("scale", 0, "Resize inputs by this factor (overrides input.scale)")
	maxIter := flag.Int("max-iter", -1, "Cap on fill rounds, 0 for none (overrides inpainting.maxIterations)")
	solver := flag.String("solver", "", "Depth solver: auto, cholesky or cg (overrides depth.solver)")
	guided := flag.Bool("guided", false, "Guide the depth fill with the inpainted image")
	snapshots := flag.Bool("snapshots", false, "Save a snapshot of every fill round")
	verbose := flag.Bool("v", false, "Debug logging level")
	flag.Parse()

	if *writeConfig {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			log.Fatal().Err(err).Msg("failed to write config")
		}
		log.Info().Str("config", *configPath).Msg("default config written")
		return
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Explicit flags win over the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "out":
			cfg.Output.Dir = *outDir
		case "scale":
			cfg.Input.Scale = *scale
		case "max-iter":
			cfg.Inpainting.MaxIterations = *maxIter
		case "solver":
			cfg.Depth.Solver = *solver
		case "guided":
			cfg.Depth.Guided = *guided
		case "snapshots":
			cfg.Output.SaveIntermediaryResults = *snapshots
		case "v":
			cfg.Output.Verbose = *verbose
		}
	})

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.Output.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	if cfg.Output.Human {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	if *colorPath == "" || *maskPath == "" {
		flag.Usage()
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Str("config", *configPath).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	summary, err := run(ctx, cfg, *colorPath, *depthPath, *maskPath)
	if err != nil {
		log.Error().Err(err).Msg("inpainting failed")
		stop()
		os.Exit(1)
	}
	log.Info().EmbedObject(summary).Str("out", cfg.Output.Dir).Msg("done")
}

func run(ctx context.Context, cfg *config.Config, colorPath, depthPath, maskPath string) (models.RunSummary, error) {
	var summary models.RunSummary

	start := time.Now()
	frame, err := loadFrame(cfg, colorPath, depthPath, maskPath)
	if err != nil {
		return summary, err
	}
	summary.LoadTime = time.Since(start)
	summary.Width, summary.Height = frame.Color.W, frame.Color.H
	summary.Unknown = frame.FillRegion().CountNonZero()
	log.Debug().
		Int("width", summary.Width).
		Int("height", summary.Height).
		Int("unknown", summary.Unknown).
		Int64("duration(ms)", summary.LoadTime.Milliseconds()).
		Msg("inputs loaded")

	if err := os.MkdirAll(cfg.Output.Dir, 0755); err != nil {
		return summary, fmt.Errorf("failed to create output directory: %w", err)
	}

	// Texture
	start = time.Now()
	logger := log.Logger.With().Str("stage", "texture").Logger()
	params := &inpainting.Params{
		PatchRadius:   cfg.Inpainting.PatchRadius,
		BorderRadius:  cfg.Inpainting.BorderRadius,
		MaxIterations: cfg.Inpainting.MaxIterations,
		Logger:        &logger,
	}
	if cvbackend.Configure(params) {
		log.Debug().Msg("using OpenCV collaborators")
	}
	var snaps *visualization.SnapshotWriter
	if cfg.Output.SaveIntermediaryResults {
		snaps = visualization.NewSnapshotWriter(
			filepath.Join(cfg.Output.Dir, cfg.Output.SnapshotsDir), cfg.Output.SnapshotEvery, &logger)
		params.Observer = snaps.Observe
	}

	inp, err := inpainting.NewInpainter(frame.Color, frame.Known, params)
	if err != nil {
		return summary, fmt.Errorf("failed to prepare texture inpainting: %w", err)
	}
	filled, err := inp.Run(ctx)
	summary.Rounds = inp.Iterations()
	if err != nil {
		return summary, fmt.Errorf("texture inpainting: %w", err)
	}
	if snaps != nil {
		summary.Snapshots = snaps.Written()
		if err := snaps.Err(); err != nil {
			log.Warn().Err(err).Msg("some snapshots were not written")
		}
	}
	summary.TextureTime = time.Since(start)
	log.Info().
		Int("rounds", summary.Rounds).
		Int64("duration(ms)", summary.TextureTime.Milliseconds()).
		Msg("texture filled")

	// Depth
	var depth *reconstruction.Report
	var filledDepth = frame.Depth
	if frame.Depth != nil {
		start = time.Now()
		s, err := linsolve.ByName(cfg.Depth.Solver, cfg.Depth.Tolerance, cfg.Depth.MaxIterations)
		if err != nil {
			return summary, err
		}
		dlog := log.Logger.With().Str("stage", "depth").Logger()
		rec := reconstruction.NewReconstructor(&reconstruction.Params{
			Solver:     s,
			Guided:     cfg.Depth.Guided,
			GuideScale: cfg.Depth.GuideScale,
			Logger:     &dlog,
		})
		filledDepth, err = rec.Process(frame.Depth, frame.FillRegion(), imgproc.Luminance(filled))
		if err != nil {
			return summary, fmt.Errorf("depth reconstruction: %w", err)
		}
		report := rec.GetReport()
		depth = &report
		summary.DepthTime = time.Since(start)
		summary.DepthUnknowns = report.Unknowns
		summary.DepthResidual = report.Residual
	}

	// Save
	start = time.Now()
	colorOut := filepath.Join(cfg.Output.Dir, "color.png")
	if err := imageio.Save(colorOut, imageio.ColorImage(filled)); err != nil {
		return summary, err
	}
	if depth != nil {
		depthOut := filepath.Join(cfg.Output.Dir, "depth.tif")
		if err := imageio.Save(depthOut, imageio.DepthImage(filledDepth)); err != nil {
			return summary, err
		}
	}
	summary.SaveTime = time.Since(start)
	return summary, nil
}

// loadFrame reads and scales the inputs and converts them to fields.
func loadFrame(cfg *config.Config, colorPath, depthPath, maskPath string) (*models.Frame, error) {
	frame := &models.Frame{ColorPath: colorPath, DepthPath: depthPath, MaskPath: maskPath}

	img, err := imageio.Load(colorPath)
	if err != nil {
		return nil, err
	}
	frame.Color = imageio.ToColorField(imageio.Scale(img, cfg.Input.Scale, false))

	img, err = imageio.Load(maskPath)
	if err != nil {
		return nil, err
	}
	frame.Known = imageio.ToMask(imageio.Scale(img, cfg.Input.Scale, true), cfg.Input.MaskThreshold)
	if cfg.Input.MaskMarksHole {
		frame.Known = frame.Known.Invert()
	}

	if depthPath != "" {
		img, err = imageio.Load(depthPath)
		if err != nil {
			return nil, err
		}
		frame.Depth = imageio.ToDepthField(imageio.Scale(img, cfg.Input.Scale, true))
	}

	if err := frame.Validate(); err != nil {
		return nil, err
	}
	if frame.Known.CountNonZero() == 0 {
		return nil, errors.New("mask marks no known pixel")
	}
	return frame, nil
}
