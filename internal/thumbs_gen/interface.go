package thumbsgen

import (
	"context"

	"github.com/giobyte8/thumbvariants/internal/geometry"
	"github.com/giobyte8/thumbvariants/internal/models"
	"github.com/giobyte8/thumbvariants/internal/storage"
)

// Result reports the outcome of one configured variant.
type Result struct {
	Spec     string
	Filename string
	Format   string

	// Final dimensions of the stored thumbnail
	Size   geometry.Size
	Stored storage.WriteResult

	// Non nil when this variant could not be generated or stored
	Err error
}

type ThumbsGenerator interface {

	// Generate renders and stores every variant configured in cfg for
	// the original image 'data' stored as 'originalFilename'.
	//
	// Configuration and decode errors are returned before any variant
	// is attempted. Otherwise every variant is attempted, the returned
	// error joins the failed ones and each Result carries its own.
	Generate(
		ctx context.Context,
		originalFilename string,
		data []byte,
		cfg models.FieldConfig,
	) ([]Result, error)

	// DeleteAll removes every configured variant of the original.
	// Failures are ignored.
	DeleteAll(ctx context.Context, originalFilename string, cfg models.FieldConfig)
}
