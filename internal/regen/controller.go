// Package regen regenerates the thumbnails of every stored original
// referenced by a dataset. Runs are idempotent: thumbnails already in
// storage are not rebuilt unless forced, so an interrupted run can
// simply be started again.
package regen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/giobyte8/thumbvariants/internal/codec"
	"github.com/giobyte8/thumbvariants/internal/models"
	"github.com/giobyte8/thumbvariants/internal/storage"
	"github.com/giobyte8/thumbvariants/internal/telemetry"
	"github.com/giobyte8/thumbvariants/internal/telemetry/metrics"
	thumbsgen "github.com/giobyte8/thumbvariants/internal/thumbs_gen"
)

// Item is one instance holding a file reference. File is empty when the
// instance has no file.
type Item struct {
	ID   string
	File string
}

// Dataset is a finite, restartable sequence of items.
type Dataset interface {
	Count(ctx context.Context) (int, error)

	// Each calls fn for every item in order and stops at the first
	// error returned by fn.
	Each(ctx context.Context, fn func(Item) error) error
}

type Options struct {
	Force   bool
	Workers int
}

type Controller struct {
	storage   storage.Storage
	generator thumbsgen.ThumbsGenerator
	field     models.FieldConfig
	opts      Options
	telemetry *telemetry.TelemetrySvc
}

func NewController(
	s storage.Storage,
	generator thumbsgen.ThumbsGenerator,
	field models.FieldConfig,
	opts Options,
	telemetry *telemetry.TelemetrySvc,
) *Controller {
	if opts.Workers < 1 {
		opts.Workers = 1
	}

	return &Controller{
		storage:   s,
		generator: generator,
		field:     field,
		opts:      opts,
		telemetry: telemetry,
	}
}

// Run visits every item of ds and returns the aggregated summary.
//
// Per item problems (missing source, corrupt image) are counted and
// never stop the run. Any other error is fatal: no new item is started,
// items in flight complete, and the error is returned together with the
// partial summary.
func (c *Controller) Run(ctx context.Context, ds Dataset) (Summary, error) {
	if err := c.field.Validate(); err != nil {
		return Summary{}, fmt.Errorf("invalid thumbnails config: %w", err)
	}

	total, err := ds.Count(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to count dataset items: %w", err)
	}

	summary := newSummary(total, c.opts.Force)
	var summaryMu sync.Mutex

	slog.Info(
		"Regen - Starting run",
		"run", summary.RunID,
		"items", total,
		"force", c.opts.Force,
		"workers", c.opts.Workers,
	)

	ledger := NewLedger()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Workers)

	seq := 0
	iterErr := ds.Each(gctx, func(item Item) error {
		// A fatal error elsewhere stops dispatching
		if err := gctx.Err(); err != nil {
			return err
		}

		seq++
		progress := fmt.Sprintf("%d/%d", seq, total)

		g.Go(func() error {
			// Queued while a worker was busy, the run failed meanwhile
			if gctx.Err() != nil {
				return nil
			}

			// Items run on the parent context: once started an item
			// is never interrupted by a sibling's failure.
			outcome, err := c.processItem(ctx, item, ledger, progress)
			if err != nil {
				slog.Error(
					"Regen - Fatal error",
					"progress", progress,
					"id", item.ID,
					"file", item.File,
					"error", err,
				)
				return err
			}

			summaryMu.Lock()
			summary.Counts[outcome]++
			summaryMu.Unlock()

			c.telemetry.Metrics().Increment(
				metrics.RegenItem,
				map[string]string{"outcome": string(outcome)},
			)
			return nil
		})
		return nil
	})

	// Wait first so every started item is accounted for
	fatalErr := g.Wait()

	summaryMu.Lock()
	defer summaryMu.Unlock()

	if fatalErr != nil {
		return summary, fmt.Errorf("regeneration run aborted: %w", fatalErr)
	}
	if iterErr != nil {
		return summary, fmt.Errorf("failed to iterate dataset: %w", iterErr)
	}

	slog.Info(
		"Regen - Run completed",
		"run", summary.RunID,
		"visited", summary.Visited(),
		"errors", summary.Errors(),
	)
	return summary, nil
}

func (c *Controller) processItem(
	ctx context.Context,
	item Item,
	ledger *Ledger,
	progress string,
) (Outcome, error) {
	log := slog.With("progress", progress, "id", item.ID)

	if item.File == "" {
		log.Info("Regen - Skipped, no file")
		return SkippedNoFile, nil
	}

	fileName := path.Base(item.File)
	if !ledger.Claim(fileName) {
		log.Info("Regen - Skipped, already processed", "file", fileName)
		return SkippedAlreadyProcessed, nil
	}

	if !c.opts.Force {
		missing, err := c.missingThumbs(ctx, item.File)
		if err != nil {
			ledger.Release(fileName)
			return "", err
		}

		if len(missing) == 0 {
			log.Info("Regen - Skipped, all thumbnails exist", "file", fileName)
			return SkippedExists, nil
		}
		log.Info("Regen - Processing", "file", fileName, "missing", missing)
	} else {
		log.Info("Regen - Force regenerating", "file", fileName)
	}

	data, err := c.storage.Read(ctx, item.File)
	if err != nil {
		ledger.Release(fileName)
		log.Warn("Regen - Error, cannot read original from storage", "file", item.File, "error", err)
		return ErrorMissingSource, nil
	}

	if len(data) == 0 {
		ledger.Release(fileName)
		log.Info("Regen - Skipped, no file content", "file", item.File)
		return SkippedNoFile, nil
	}

	_, err = c.generator.Generate(ctx, item.File, data, c.field)
	if err != nil {
		ledger.Release(fileName)
		if errors.Is(err, codec.ErrUnreadableImage) {
			log.Warn("Regen - Error, image may be corrupt", "file", item.File, "error", err)
			return ErrorCorruptImage, nil
		}
		return "", fmt.Errorf("failed to regenerate %s (id %s): %w", item.File, item.ID, err)
	}

	return Processed, nil
}

// Returns the names of the configured thumbnails missing in storage.
func (c *Controller) missingThumbs(ctx context.Context, file string) ([]string, error) {
	filenames := thumbsgen.Filenames(file, c.field)

	var missing []string
	for i, filename := range filenames {
		ok, err := c.storage.Exists(ctx, filename)
		if err != nil {
			return nil, fmt.Errorf("failed to check thumbnail %s: %w", filename, err)
		}

		slog.Debug("Regen - Checked thumbnail", "file", filename, "exists", ok)
		if !ok {
			missing = append(missing, c.field.Thumbs[i].Name)
		}
	}

	return missing, nil
}
