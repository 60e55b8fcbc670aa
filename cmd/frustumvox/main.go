// frustumvox resamples voxelized shapes into camera-frustum-aligned grids.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/frustumvox/internal/config"
	"github.com/Faultbox/frustumvox/internal/logger"
	"github.com/Faultbox/frustumvox/internal/preview"
	"github.com/Faultbox/frustumvox/internal/resample"
	"github.com/Faultbox/frustumvox/pkg/formats"
)

func main() {
	flag.Usage = printUsage
	config.ParseFlags()

	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	logger.Sugar.Debugf("Config: %+v", cfg)

	command := flag.Arg(0)
	args := flag.Args()[1:]

	switch command {
	case "generate", "gen":
		err = cmdGenerate(cfg, args)
	case "coords":
		err = cmdCoords(cfg, args)
	case "info":
		err = cmdInfo(args)
	case "preview":
		err = cmdPreview(args)
	case "init-config":
		err = cmdInitConfig(cfg, args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		logger.Error("command failed", zap.String("command", command), zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `frustumvox - frustum-aligned voxel resampling

Usage:
  frustumvox [global options] <command> [options]

Commands:
  generate [-category c] [-overwrite] [ids...]   Resample examples for every configured view
  coords [-view N]                               Show the camera and grid coverage of a view
  info <file.binvox>                             Show binvox header and occupancy
  preview [-axis z] <file.binvox> <out.png>      Render an occupancy projection
  init-config [path]                             Write the current config as YAML

Global options:
  -config <file>     Config file (default ./frustumvox.yaml, then user config dir)
  -data-dir <dir>    Data root directory
  -shape nx-ny-nz    Output grid shape
  -workers N         Concurrent examples per view
  -log-file <file>   Also log to file
  -debug             Enable debug logging

Examples:
  frustumvox -data-dir ./data generate -category 03001627
  frustumvox coords -view 3
  frustumvox preview data/rotated/b32_r0_32-32-32/v00/chairs/c1.binvox c1.png`)
}

func cmdGenerate(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	category := fs.String("category", "", "Comma-separated categories (default: all)")
	overwrite := fs.Bool("overwrite", cfg.Batch.Overwrite, "Recompute existing outputs")
	fs.Parse(args)

	if err := cfg.Validate(); err != nil {
		return err
	}
	base, err := cfg.BaseDataset()
	if err != nil {
		return err
	}
	render, err := cfg.RenderDataset()
	if err != nil {
		return err
	}

	var categories []string
	if *category != "" {
		categories = strings.Split(*category, ",")
	} else if categories, err = base.Categories(); err != nil {
		return err
	}

	var ids []string
	if fs.NArg() > 0 {
		ids = fs.Args()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	for _, view := range cfg.ViewIndices(render.Views()) {
		vc, err := resample.NewConfig(base, render, view, cfg.Shape(), cfg.Data.Dir)
		if err != nil {
			return err
		}
		for _, cat := range categories {
			log := logger.L().With(zap.Int("view", view))
			stats, err := vc.CreateVoxelData(ctx, cat, ids, resample.Options{
				Overwrite: *overwrite,
				Workers:   cfg.Batch.Workers,
				Progress:  resample.NewLogProgress(log, cfg.Batch.ProgressEvery),
				Logger:    log,
			})
			if err != nil {
				if errors.Is(err, context.Canceled) {
					logger.Warn("interrupted", zap.String("run_id", stats.RunID))
				}
				return fmt.Errorf("view %d category %s: %w", view, cat, err)
			}
			logger.Info("category done",
				zap.String("run_id", stats.RunID),
				zap.String("voxel_id", vc.VoxelID()),
				zap.String("category", cat),
				zap.Int("written", stats.Written),
				zap.Int("skipped", stats.Skipped))
		}
	}
	return nil
}

func cmdCoords(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("coords", flag.ExitOnError)
	view := fs.Int("view", 0, "View index")
	fs.Parse(args)

	base, err := cfg.BaseDataset()
	if err != nil {
		return err
	}
	render, err := cfg.RenderDataset()
	if err != nil {
		return err
	}
	vc, err := resample.NewConfig(base, render, *view, cfg.Shape(), cfg.Data.Dir)
	if err != nil {
		return err
	}
	t, err := vc.Transformer()
	if err != nil {
		return err
	}

	p := vc.Params()
	pose := p.Pose()
	fmt.Printf("Voxel ID:  %s\n", vc.VoxelID())
	fmt.Printf("Output:    %s\n", vc.RootDir())
	fmt.Printf("Theta:     %.4f rad\n", p.Theta)
	fmt.Printf("Eye:       (%.4f, %.4f, %.4f)\n", pose.Eye.X, pose.Eye.Y, pose.Eye.Z)
	fmt.Printf("Near/Far:  %.4f / %.4f\n", p.Near, p.Far)
	fmt.Printf("FX/FY:     %.4f / %.4f\n", p.FX, p.FY)
	fmt.Printf("Inside:    %d of %d cells (%.1f%%)\n",
		t.InsideCount(), t.Shape().Len(), 100*float64(t.InsideCount())/float64(t.Shape().Len()))
	return nil
}

func cmdInfo(args []string) error {
	if len(args) < 1 {
		return errors.New("usage: frustumvox info <file.binvox>")
	}

	bv, err := formats.ParseBinvoxFile(args[0])
	if err != nil {
		return err
	}
	dims := bv.Grid.Dims()
	occupied := bv.Grid.Count()

	fmt.Printf("File:      %s\n", args[0])
	fmt.Printf("Dims:      %d x %d x %d\n", dims[0], dims[1], dims[2])
	fmt.Printf("Translate: (%g, %g, %g)\n", bv.Translate[0], bv.Translate[1], bv.Translate[2])
	fmt.Printf("Scale:     %g\n", bv.Scale)
	fmt.Printf("Occupied:  %d of %d (%.2f%%)\n", occupied, dims.Len(), 100*float64(occupied)/float64(dims.Len()))
	return nil
}

func cmdPreview(args []string) error {
	fs := flag.NewFlagSet("preview", flag.ExitOnError)
	axisName := fs.String("axis", "z", "Projection axis: x, y or z")
	fs.Parse(args)

	if fs.NArg() < 2 {
		return errors.New("usage: frustumvox preview [-axis z] <file.binvox> <out.png>")
	}
	axis := strings.Index("xyz", strings.ToLower(*axisName))
	if len(*axisName) != 1 || axis < 0 {
		return fmt.Errorf("%w: %q", preview.ErrInvalidAxis, *axisName)
	}

	bv, err := formats.ParseBinvoxFile(fs.Arg(0))
	if err != nil {
		return err
	}
	if err := preview.SavePNG(bv.Grid, axis, fs.Arg(0), fs.Arg(1)); err != nil {
		return err
	}
	logger.Info("preview written", zap.String("path", fs.Arg(1)))
	return nil
}

func cmdInitConfig(cfg *config.Config, args []string) error {
	if len(args) > 0 {
		return cfg.SaveTo(args[0])
	}
	return cfg.Save()
}
