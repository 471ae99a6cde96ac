package fields

import (
	"bytes"
	"context"
	"image/color"
	"image/png"
	"sort"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giobyte8/thumbvariants/internal/cache"
	"github.com/giobyte8/thumbvariants/internal/codec"
	"github.com/giobyte8/thumbvariants/internal/geometry"
	"github.com/giobyte8/thumbvariants/internal/models"
	"github.com/giobyte8/thumbvariants/internal/storage"
	"github.com/giobyte8/thumbvariants/internal/telemetry"
	thumbsgen "github.com/giobyte8/thumbvariants/internal/thumbs_gen"
	"github.com/giobyte8/thumbvariants/internal/urls"
)

// countingStorage counts URL lookups.
type countingStorage struct {
	*storage.MemoryStorage
	urlCalls int
}

func (s *countingStorage) URL(name string) string {
	s.urlCalls++
	return s.MemoryStorage.URL(name)
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, imaging.New(w, h, color.NRGBA{B: 120, A: 255})))
	return buf.Bytes()
}

func newField(t *testing.T) (*Field, *countingStorage) {
	t.Helper()
	s := &countingStorage{MemoryStorage: storage.NewMemoryStorage("http://cdn.example.com/media")}
	mem, err := cache.NewMemoryCache(16)
	require.NoError(t, err)

	return &Field{
		Config: models.FieldConfig{
			Thumbs: []models.ThumbnailSpec{
				{Name: "small", Size: geometry.Size{Width: 20, Height: 20}, Upscale: true},
				{Name: "square", Size: geometry.Size{Width: 10, Height: 10}, Crop: "center", Upscale: true},
			},
			MaxFilenameLength: 40,
		},
		Storage:   s,
		Generator: thumbsgen.NewCodecThumbsGenerator(codec.NewImagingCodec(0), s, telemetry.Noop()),
		URLs:      urls.NewResolver(mem, urls.Config{CacheBuster: "7"}, telemetry.Noop()),
	}, s
}

func TestSaveGeneratesThumbnails(t *testing.T) {
	ctx := context.Background()
	f, s := newField(t)

	ff, err := f.Save(ctx, "photos/cat.png", pngBytes(t, 60, 30))
	require.NoError(t, err)
	assert.Equal(t, "photos/cat.png", ff.Name)

	names := s.Names()
	sort.Strings(names)
	assert.Equal(t, []string{"photos/cat.png", "photos/cat_small.png", "photos/cat_square.png"}, names)
}

func TestSaveRejectsInvalidUploads(t *testing.T) {
	ctx := context.Background()
	f, s := newField(t)

	_, err := f.Save(ctx, "photos/"+strings.Repeat("x", 40)+".png", pngBytes(t, 4, 4))
	assert.ErrorIs(t, err, ErrFilenameTooLong)

	_, err = f.Save(ctx, "photos/cat.exe", pngBytes(t, 4, 4))
	assert.ErrorIs(t, err, ErrExtensionRefused)

	_, err = f.Save(ctx, "photos/cat.png", []byte("GIF? no, plain text"))
	var unreadable *UnreadableUploadError
	require.ErrorAs(t, err, &unreadable)
	assert.ErrorIs(t, err, codec.ErrUnreadableImage)
	assert.Contains(t, err.Error(), "We were unable to read the uploaded image.")

	assert.Empty(t, s.Names())
}

func TestSaveTruncatedImageIsUnreadable(t *testing.T) {
	ctx := context.Background()
	f, _ := newField(t)

	// Passes the signature sniff but cannot be decoded
	data := pngBytes(t, 60, 30)[:60]

	ff, err := f.Save(ctx, "photos/cat.png", data)
	var unreadable *UnreadableUploadError
	assert.ErrorAs(t, err, &unreadable)
	require.NotNil(t, ff)
	assert.Equal(t, "photos/cat.png", ff.Name)
}

func TestThumbnailURL(t *testing.T) {
	ctx := context.Background()
	f, s := newField(t)

	ff := f.File("photos/cat.png")
	assert.Equal(
		t,
		"http://cdn.example.com/media/photos/cat_small.png?cbust=7",
		ff.ThumbnailURL(ctx, "small", urls.DefaultOptions()),
	)
	assert.Equal(
		t,
		"https://cdn.example.com/media/photos/cat_square.png",
		ff.ThumbnailURL(ctx, "square", urls.Options{SSL: true}),
	)
	assert.Equal(t, 1, s.urlCalls)

	// Second lookup of the same thumbnail never touches storage
	before := s.urlCalls
	ff.ThumbnailURL(ctx, "small", urls.DefaultOptions())
	assert.Equal(t, before, s.urlCalls)
}

func TestThumbnailURLUsesFormatOverride(t *testing.T) {
	f, _ := newField(t)
	f.Config.ThumbnailFormat = "JPEG"

	assert.Equal(
		t,
		"http://cdn.example.com/media/photos/cat_small.jpeg",
		f.File("photos/cat.png").ThumbnailURL(context.Background(), "small", urls.Options{}),
	)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	f, s := newField(t)

	ff, err := f.Save(ctx, "photos/cat.png", pngBytes(t, 60, 30))
	require.NoError(t, err)

	// A missing variant does not prevent deleting the rest
	require.NoError(t, s.Delete(ctx, "photos/cat_small.png"))

	require.NoError(t, ff.Delete(ctx))
	assert.Empty(t, s.Names())

	assert.ErrorIs(t, ff.Delete(ctx), storage.ErrNotFound)
}
