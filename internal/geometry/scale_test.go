package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeScale(t *testing.T) {
	tests := []struct {
		name    string
		img     Size
		target  Size
		crop    bool
		upscale bool
		want    Size
	}{
		{
			name:   "fit portrait into square",
			img:    Size{Width: 200, Height: 400},
			target: Size{Width: 100, Height: 100},
			want:   Size{Width: 50, Height: 100},
		},
		{
			name:   "cover portrait for square crop",
			img:    Size{Width: 200, Height: 400},
			target: Size{Width: 50, Height: 50},
			crop:   true,
			want:   Size{Width: 50, Height: 100},
		},
		{
			name:   "fit landscape",
			img:    Size{Width: 640, Height: 480},
			target: Size{Width: 320, Height: 320},
			want:   Size{Width: 320, Height: 240},
		},
		{
			name:   "rounds half away from zero",
			img:    Size{Width: 100, Height: 10},
			target: Size{Width: 25, Height: 100},
			want:   Size{Width: 25, Height: 3},
		},
		{
			name:    "upscale allowed",
			img:     Size{Width: 50, Height: 25},
			target:  Size{Width: 100, Height: 100},
			upscale: true,
			want:    Size{Width: 100, Height: 50},
		},
		{
			name:   "smaller image without upscale is unchanged",
			img:    Size{Width: 50, Height: 25},
			target: Size{Width: 100, Height: 100},
			want:   Size{Width: 50, Height: 25},
		},
		{
			name:   "exact size without upscale is unchanged",
			img:    Size{Width: 100, Height: 100},
			target: Size{Width: 100, Height: 100},
			crop:   true,
			want:   Size{Width: 100, Height: 100},
		},
		{
			name:   "never collapses to zero",
			img:    Size{Width: 10000, Height: 10},
			target: Size{Width: 100, Height: 100},
			want:   Size{Width: 100, Height: 1},
		},
		{
			name:   "degenerate input returned as is",
			img:    Size{Width: 0, Height: 10},
			target: Size{Width: 100, Height: 100},
			want:   Size{Width: 0, Height: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeScale(tt.img, tt.target, tt.crop, tt.upscale)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeScaleIsIdempotentWithoutUpscale(t *testing.T) {
	target := Size{Width: 300, Height: 300}
	for _, img := range []Size{{10, 10}, {300, 120}, {299, 300}, {1, 1}} {
		once := ComputeScale(img, target, false, false)
		assert.Equal(t, img, once)
		assert.Equal(t, once, ComputeScale(once, target, false, false))
	}
}

func TestComputeScaleFitNeverExceedsTarget(t *testing.T) {
	target := Size{Width: 120, Height: 90}
	for _, img := range []Size{{1000, 1}, {1, 1000}, {333, 777}, {1920, 1080}, {4000, 3000}} {
		got := ComputeScale(img, target, false, true)
		assert.LessOrEqual(t, got.Width, target.Width, "img %s", img)
		assert.LessOrEqual(t, got.Height, target.Height, "img %s", img)
	}
}

func TestComputeScaleCoverFillsTarget(t *testing.T) {
	target := Size{Width: 120, Height: 90}
	for _, img := range []Size{{333, 777}, {1920, 1080}, {4000, 3000}} {
		got := ComputeScale(img, target, true, true)
		assert.GreaterOrEqual(t, got.Width, target.Width, "img %s", img)
		assert.GreaterOrEqual(t, got.Height, target.Height, "img %s", img)
	}
}
