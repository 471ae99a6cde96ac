package dataset

import (
	"context"
	"strconv"

	"github.com/giobyte8/thumbvariants/internal/regen"
)

// Slice is an in-memory dataset.
type Slice []regen.Item

// FromFiles builds a dataset with one item per file, numbered from 1.
func FromFiles(files []string) Slice {
	items := make(Slice, 0, len(files))
	for i, f := range files {
		items = append(items, regen.Item{ID: strconv.Itoa(i + 1), File: f})
	}
	return items
}

func (s Slice) Count(ctx context.Context) (int, error) {
	return len(s), nil
}

func (s Slice) Each(ctx context.Context, fn func(regen.Item) error) error {
	for _, item := range s {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(item); err != nil {
			return err
		}
	}
	return nil
}
