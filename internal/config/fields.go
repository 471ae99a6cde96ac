package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/giobyte8/thumbvariants/internal/geometry"
	"github.com/giobyte8/thumbvariants/internal/models"
)

type fieldsFile struct {
	Models map[string]map[string]fieldEntry `yaml:"models"`
}

type fieldEntry struct {
	// nil selects the default format, "" keeps the uploaded extension
	ThumbnailFormat *string      `yaml:"thumbnail_format"`
	MaxLength       int          `yaml:"max_length"`
	Thumbs          []thumbEntry `yaml:"thumbs"`
}

type thumbEntry struct {
	Name      string `yaml:"name"`
	Size      []int  `yaml:"size"`
	Crop      string `yaml:"crop"`
	Upscale   *bool  `yaml:"upscale"`
	Grayscale bool   `yaml:"grayscale"`
}

// FieldRegistry maps '<app>.<model>' and field name to the thumbnail
// configuration of that field.
type FieldRegistry struct {
	fields map[string]map[string]models.FieldConfig
}

func LoadFieldRegistry(path string) (*FieldRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fields config %s: %w", path, err)
	}

	reg, err := ParseFieldRegistry(data)
	if err != nil {
		return nil, fmt.Errorf("invalid fields config %s: %w", path, err)
	}
	return reg, nil
}

func ParseFieldRegistry(data []byte) (*FieldRegistry, error) {
	var file fieldsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	reg := &FieldRegistry{fields: make(map[string]map[string]models.FieldConfig)}
	for model, fields := range file.Models {
		key, err := NormalizeModel(model)
		if err != nil {
			return nil, err
		}

		reg.fields[key] = make(map[string]models.FieldConfig, len(fields))
		for name, entry := range fields {
			cfg, err := entry.fieldConfig()
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", model, name, err)
			}
			reg.fields[key][name] = cfg
		}
	}

	return reg, nil
}

// Field returns the configuration of field in model.
func (r *FieldRegistry) Field(model, field string) (models.FieldConfig, error) {
	key, err := NormalizeModel(model)
	if err != nil {
		return models.FieldConfig{}, err
	}

	fields, ok := r.fields[key]
	if !ok {
		return models.FieldConfig{}, fmt.Errorf("there is no app/model combination: %s", model)
	}

	cfg, ok := fields[field]
	if !ok {
		return models.FieldConfig{}, fmt.Errorf("model %s has no thumbnail field %s", model, field)
	}

	return cfg, nil
}

// NormalizeModel validates an '<app>.<model>' identifier and lower-cases
// the model part.
func NormalizeModel(model string) (string, error) {
	app, name, ok := strings.Cut(model, ".")
	if !ok || app == "" || name == "" || strings.Contains(name, ".") {
		return "", fmt.Errorf(
			"model must be in the format of app.model, got %q",
			model,
		)
	}

	return app + "." + strings.ToLower(name), nil
}

func (e fieldEntry) fieldConfig() (models.FieldConfig, error) {
	cfg := models.FieldConfig{
		ThumbnailFormat:   models.DefaultThumbnailFormat,
		MaxFilenameLength: models.DefaultMaxFilenameLength,
	}
	if e.ThumbnailFormat != nil {
		cfg.ThumbnailFormat = *e.ThumbnailFormat
	}
	if e.MaxLength > 0 {
		cfg.MaxFilenameLength = e.MaxLength
	}

	for _, t := range e.Thumbs {
		if len(t.Size) != 2 {
			return models.FieldConfig{}, fmt.Errorf(
				"thumbnail %s: size must be [width, height]",
				t.Name,
			)
		}

		spec := models.ThumbnailSpec{
			Name:      t.Name,
			Size:      geometry.Size{Width: t.Size[0], Height: t.Size[1]},
			Crop:      t.Crop,
			Upscale:   true,
			Grayscale: t.Grayscale,
		}
		if t.Upscale != nil {
			spec.Upscale = *t.Upscale
		}
		cfg.Thumbs = append(cfg.Thumbs, spec)
	}

	if err := cfg.Validate(); err != nil {
		return models.FieldConfig{}, err
	}
	return cfg, nil
}
