package resample

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/frustumvox/pkg/formats"
)

// Options controls a CreateVoxelData batch.
type Options struct {
	// Overwrite deletes and recomputes outputs that already exist.
	Overwrite bool
	// Workers bounds concurrent examples. Zero or one runs sequentially.
	Workers int

	Progress Progress
	Logger   *zap.Logger
}

// Stats summarizes a batch.
type Stats struct {
	RunID   string
	Total   int
	Written int
	Skipped int
}

// CreateVoxelData resamples the examples of a category into this view and
// writes one binvox file per example. A nil exampleIDs processes every
// example of the category. Existing outputs are kept unless
// opts.Overwrite is set.
func (c *Config) CreateVoxelData(ctx context.Context, category string, exampleIDs []string, opts Options) (Stats, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	progress := opts.Progress
	if progress == nil {
		progress = NopProgress
	}

	stats := Stats{RunID: uuid.NewString()}
	log = log.With(
		zap.String("run_id", stats.RunID),
		zap.String("voxel_id", c.VoxelID()),
		zap.String("category", category))

	src, err := c.base.Open(category)
	if err != nil {
		return stats, err
	}
	defer src.Close()

	if exampleIDs == nil {
		exampleIDs = src.Keys()
	}
	stats.Total = len(exampleIDs)

	t, err := c.Transformer()
	if err != nil {
		return stats, err
	}
	log.Debug("transformer ready", zap.Int("inside", t.InsideCount()), zap.Int("cells", t.Shape().Len()))

	var mu sync.Mutex
	step := func(id string, skipped bool) {
		mu.Lock()
		defer mu.Unlock()
		if skipped {
			stats.Skipped++
		} else {
			stats.Written++
		}
		progress.Step(id, skipped)
	}

	process := func(id string) error {
		path := c.BinvoxPath(category, id)
		if _, err := os.Stat(path); err == nil {
			if !opts.Overwrite {
				log.Debug("output exists, skipping", zap.String("example_id", id))
				step(id, true)
				return nil
			}
			if err := os.Remove(path); err != nil {
				return fmt.Errorf("removing %s: %w", path, err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}

		g, err := src.Load(id)
		if err != nil {
			return err
		}
		out, err := t.Apply(g)
		if err != nil {
			return fmt.Errorf("resampling %s: %w", id, err)
		}
		if err := formats.SaveBinvoxFile(path, formats.NewBinvox(out)); err != nil {
			return err
		}
		log.Debug("wrote voxels", zap.String("example_id", id), zap.Int("occupied", out.Count()))
		step(id, false)
		return nil
	}

	progress.Start(stats.Total)
	defer progress.Finish()

	if opts.Workers <= 1 {
		for _, id := range exampleIDs {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
			if err := process(id); err != nil {
				return stats, err
			}
		}
		return stats, nil
	}

	eg, ectx := errgroup.WithContext(ctx)
	eg.SetLimit(opts.Workers)
	for _, id := range exampleIDs {
		id := id
		if ectx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if err := ectx.Err(); err != nil {
				return err
			}
			return process(id)
		})
	}
	err = eg.Wait()
	if err == nil {
		err = ctx.Err()
	}
	return stats, err
}
