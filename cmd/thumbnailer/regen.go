package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/giobyte8/thumbvariants/internal/dataset"
	"github.com/giobyte8/thumbvariants/internal/regen"
	"github.com/giobyte8/thumbvariants/internal/workers"
)

// Upper bound for the regeneration pool, image decoding is memory heavy
const maxRegenWorkers = 16

var regenCmd = &cobra.Command{
	Use:   "regen <app.model> <field>",
	Short: "Regenerate the thumbnails of an image field",
	Long: `Regenerate the thumbnails of every instance of a model's image field.

Only missing thumbnails are built unless --force is given, so an
interrupted run can simply be started again.

Instances are read from the SQLite database at DATABASE_PATH, or taken
from --file flags when given.

Examples:
  thumbnailer regen gallery.photo image
  thumbnailer regen gallery.photo image --force --workers 4
  thumbnailer regen gallery.photo image --file photos/a.png --file photos/b.png`,
	Args: cobra.ExactArgs(2),
	RunE: runRegen,
}

func init() {
	regenCmd.Flags().Bool("force", false, "regenerate all thumbnails, even existing ones")
	regenCmd.Flags().Int("workers", 0, "parallel workers (default: REGEN_WORKERS or one per CPU)")
	regenCmd.Flags().StringSlice("file", nil, "regenerate only these stored originals")
}

func runRegen(cmd *cobra.Command, args []string) error {
	model, field := args[0], args[1]
	force, _ := cmd.Flags().GetBool("force")
	workersFlag, _ := cmd.Flags().GetInt("workers")
	files, _ := cmd.Flags().GetStringSlice("file")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d, err := prepareDeps(ctx)
	if err != nil {
		return err
	}
	defer d.shutdown(context.WithoutCancel(ctx))

	fieldCfg, err := d.registry.Field(model, field)
	if err != nil {
		return err
	}

	var ds regen.Dataset
	if len(files) > 0 {
		ds = dataset.FromFiles(files)
	} else {
		if d.settings.DatabasePath == "" {
			return fmt.Errorf("DATABASE_PATH is required unless --file is given")
		}

		db, err := dataset.OpenSQLite(ctx, d.settings.DatabasePath)
		if err != nil {
			return err
		}
		defer db.Close()

		if ds, err = db.Field(model, field); err != nil {
			return err
		}
	}

	override := workersFlag
	if override <= 0 {
		override = d.settings.RegenWorkers
	}

	controller := regen.NewController(
		d.storage,
		d.generator,
		fieldCfg,
		regen.Options{
			Force:   force,
			Workers: workers.Count(override, maxRegenWorkers),
		},
		d.telemetry,
	)

	slog.Info("Regenerating thumbnails", "model", model, "field", field, "force", force)
	summary, runErr := controller.Run(ctx, ds)

	if err := summary.Write(os.Stdout); err != nil {
		slog.Error("Failed to print summary", "error", err)
	}
	return runErr
}
