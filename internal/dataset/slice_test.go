package dataset

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giobyte8/thumbvariants/internal/regen"
)

func TestFromFiles(t *testing.T) {
	ds := FromFiles([]string{"a.png", "b/c.jpg"})

	n, err := ds.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var items []regen.Item
	require.NoError(t, ds.Each(context.Background(), func(item regen.Item) error {
		items = append(items, item)
		return nil
	}))
	assert.Equal(t, []regen.Item{{ID: "1", File: "a.png"}, {ID: "2", File: "b/c.jpg"}}, items)
}

func TestSliceStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := FromFiles([]string{"a.png"}).Each(ctx, func(regen.Item) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
