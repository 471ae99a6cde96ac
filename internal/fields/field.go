// Package fields ties a stored original image to its thumbnails: saving
// an upload generates every configured variant, deleting it removes
// them, and thumbnail URLs are derived from the original's URL.
package fields

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"sync"

	"github.com/h2non/filetype"

	"github.com/giobyte8/thumbvariants/internal/codec"
	"github.com/giobyte8/thumbvariants/internal/models"
	"github.com/giobyte8/thumbvariants/internal/storage"
	thumbsgen "github.com/giobyte8/thumbvariants/internal/thumbs_gen"
	"github.com/giobyte8/thumbvariants/internal/urls"
)

var (
	ErrFilenameTooLong  = errors.New("filename is too long")
	ErrExtensionRefused = errors.New("file extension is not allowed")
)

var allowedExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"gif":  true,
	"bmp":  true,
	"tif":  true,
	"tiff": true,
	"webp": true,
}

// UnreadableUploadError is returned when an upload is not an image the
// codec can read. Its message is meant for the uploading user.
type UnreadableUploadError struct {
	Name string
	Err  error
}

func (e *UnreadableUploadError) Error() string {
	return "We were unable to read the uploaded image. " +
		"Please make sure you are uploading a valid image file."
}

func (e *UnreadableUploadError) Unwrap() error {
	return e.Err
}

// Field is one image field: where its originals live, how their
// thumbnails are built and how their URLs are resolved.
type Field struct {
	Config    models.FieldConfig
	Storage   storage.Storage
	Generator thumbsgen.ThumbsGenerator
	URLs      *urls.Resolver
}

// File returns a handle on an already stored original.
func (f *Field) File(name string) *FieldFile {
	return &FieldFile{field: f, Name: name}
}

// Save validates and stores the upload, then generates its thumbnails
// synchronously.
func (f *Field) Save(ctx context.Context, name string, data []byte) (*FieldFile, error) {
	if err := f.validate(name, data); err != nil {
		return nil, err
	}

	stored, err := f.Storage.Save(ctx, name, data)
	if err != nil {
		return nil, fmt.Errorf("failed to save original %s: %w", name, err)
	}

	ff := f.File(stored.Name)
	if _, err := f.Generator.Generate(ctx, ff.Name, data, f.Config); err != nil {
		if errors.Is(err, codec.ErrUnreadableImage) {
			return ff, &UnreadableUploadError{Name: name, Err: err}
		}
		return ff, fmt.Errorf("failed to generate thumbnails of %s: %w", name, err)
	}

	slog.Info(
		"Original saved",
		"file", ff.Name,
		"bytes", stored.Size,
		"thumbs", len(f.Config.Thumbs),
	)
	return ff, nil
}

func (f *Field) validate(name string, data []byte) error {
	maxLen := f.Config.MaxFilenameLength
	if maxLen <= 0 {
		maxLen = models.DefaultMaxFilenameLength
	}
	if len(name) > maxLen {
		return fmt.Errorf("%w: %d characters, at most %d", ErrFilenameTooLong, len(name), maxLen)
	}

	ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
	if !allowedExtensions[ext] {
		return fmt.Errorf("%w: %q", ErrExtensionRefused, ext)
	}

	if !filetype.IsImage(data) {
		return &UnreadableUploadError{
			Name: name,
			Err:  fmt.Errorf("%w: not an image", codec.ErrUnreadableImage),
		}
	}

	return nil
}

// FieldFile is one stored original of a Field.
type FieldFile struct {
	Name string

	field   *Field
	urlOnce sync.Once
	url     string
}

// URL of the original. Storage is asked once per FieldFile.
func (ff *FieldFile) URL() string {
	ff.urlOnce.Do(func() {
		ff.url = ff.field.Storage.URL(ff.Name)
	})
	return ff.url
}

// ThumbnailURL returns the URL of the variant named thumbName.
func (ff *FieldFile) ThumbnailURL(ctx context.Context, thumbName string, opts urls.Options) string {
	return ff.field.URLs.Resolve(
		ctx,
		ff.URL(),
		thumbName,
		ff.field.Config.ThumbnailFormat,
		opts,
	)
}

// Delete removes every variant, ignoring failures, then the original.
func (ff *FieldFile) Delete(ctx context.Context) error {
	ff.field.Generator.DeleteAll(ctx, ff.Name, ff.field.Config)

	if err := ff.field.Storage.Delete(ctx, ff.Name); err != nil {
		return fmt.Errorf("failed to delete original %s: %w", ff.Name, err)
	}
	return nil
}
