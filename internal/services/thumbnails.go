package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/giobyte8/thumbvariants/internal/models"
	"github.com/giobyte8/thumbvariants/internal/storage"
	thumbsgen "github.com/giobyte8/thumbvariants/internal/thumbs_gen"
)

// FieldLookup resolves the thumbnail configuration of a model field.
type FieldLookup interface {
	Field(model, field string) (models.FieldConfig, error)
}

type ThumbnailsService struct {
	fields         FieldLookup
	storage        storage.Storage
	thumbGenerator thumbsgen.ThumbsGenerator
}

func NewThumbnailsService(
	fields FieldLookup,
	storage storage.Storage,
	thumbGenerator thumbsgen.ThumbsGenerator,
) *ThumbnailsService {
	return &ThumbnailsService{
		fields:         fields,
		storage:        storage,
		thumbGenerator: thumbGenerator,
	}
}

// ProcessSaved generates every thumbnail of a freshly stored original.
func (s *ThumbnailsService) ProcessSaved(
	ctx context.Context,
	evt models.OriginalEvent,
) error {
	slog.Debug(
		"Processing original saved event",
		"requestId", evt.RequestID,
		"model", evt.Model,
		"field", evt.Field,
		"filePath", evt.FilePath,
	)

	cfg, err := s.fields.Field(evt.Model, evt.Field)
	if err != nil {
		return err
	}

	data, err := s.storage.Read(ctx, evt.FilePath)
	if err != nil {
		return fmt.Errorf("failed to read original %s: %w", evt.FilePath, err)
	}

	results, err := s.thumbGenerator.Generate(ctx, evt.FilePath, data, cfg)
	if err != nil {
		return err
	}

	slog.Info(
		"Thumbnails generated",
		"requestId", evt.RequestID,
		"filePath", evt.FilePath,
		"count", len(results),
	)
	return nil
}

// ProcessDeleted removes the thumbnails of a deleted original.
func (s *ThumbnailsService) ProcessDeleted(
	ctx context.Context,
	evt models.OriginalEvent,
) error {
	slog.Debug(
		"Processing original deleted event",
		"requestId", evt.RequestID,
		"model", evt.Model,
		"field", evt.Field,
		"filePath", evt.FilePath,
	)

	cfg, err := s.fields.Field(evt.Model, evt.Field)
	if err != nil {
		return err
	}

	s.thumbGenerator.DeleteAll(ctx, evt.FilePath, cfg)
	return nil
}
