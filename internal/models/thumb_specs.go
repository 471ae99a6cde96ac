package models

import (
	"fmt"

	"github.com/giobyte8/thumbvariants/internal/geometry"
)

const (
	DefaultThumbnailFormat   = "JPEG"
	DefaultMaxFilenameLength = 255
)

// ThumbnailSpec describes one derived variant of an original image.
type ThumbnailSpec struct {
	Name string
	Size geometry.Size

	// Crop directive such as 'center' or '50% 20%'.
	// Empty means the image is only scaled to fit.
	Crop string

	Upscale   bool
	Grayscale bool
}

// Cropped reports whether the variant is cropped to its exact size.
func (s ThumbnailSpec) Cropped() bool {
	return s.Crop != ""
}

// Validate checks the spec can be rendered. Errors here are
// configuration errors.
func (s ThumbnailSpec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("thumbnail spec name cannot be empty")
	}
	if !s.Size.Valid() {
		return fmt.Errorf(
			"invalid size %s for thumbnail spec %s",
			s.Size,
			s.Name,
		)
	}
	if s.Cropped() {
		if _, err := geometry.ParseCrop(s.Crop); err != nil {
			return fmt.Errorf("thumbnail spec %s: %w", s.Name, err)
		}
	}

	return nil
}

// FieldConfig holds the thumbnail settings of one image field.
// It is read-only once built.
type FieldConfig struct {
	Thumbs []ThumbnailSpec

	// Output format override. Empty keeps the original's extension.
	ThumbnailFormat string

	MaxFilenameLength int
}

// Validate checks every spec and that spec names are unique.
func (c FieldConfig) Validate() error {
	names := make(map[string]bool, len(c.Thumbs))
	for _, spec := range c.Thumbs {
		if err := spec.Validate(); err != nil {
			return err
		}
		if names[spec.Name] {
			return fmt.Errorf("duplicated thumbnail spec name %s", spec.Name)
		}
		names[spec.Name] = true
	}

	return nil
}

// Spec returns the spec with the given name.
func (c FieldConfig) Spec(name string) (ThumbnailSpec, bool) {
	for _, spec := range c.Thumbs {
		if spec.Name == name {
			return spec, true
		}
	}
	return ThumbnailSpec{}, false
}
