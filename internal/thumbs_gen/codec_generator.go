package thumbsgen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/giobyte8/thumbvariants/internal/codec"
	"github.com/giobyte8/thumbvariants/internal/geometry"
	"github.com/giobyte8/thumbvariants/internal/models"
	"github.com/giobyte8/thumbvariants/internal/naming"
	"github.com/giobyte8/thumbvariants/internal/storage"
	"github.com/giobyte8/thumbvariants/internal/telemetry"
	"github.com/giobyte8/thumbvariants/internal/telemetry/metrics"
)

type CodecThumbsGenerator struct {
	codec     codec.Codec
	storage   storage.Storage
	telemetry *telemetry.TelemetrySvc
}

func NewCodecThumbsGenerator(
	c codec.Codec,
	s storage.Storage,
	telemetry *telemetry.TelemetrySvc,
) *CodecThumbsGenerator {

	return &CodecThumbsGenerator{
		codec:     c,
		storage:   s,
		telemetry: telemetry,
	}
}

func (g *CodecThumbsGenerator) Generate(
	ctx context.Context,
	originalFilename string,
	data []byte,
	cfg models.FieldConfig,
) ([]Result, error) {
	slog.Debug(
		"Generating thumbnails",
		"origFile", originalFilename,
		"variants", len(cfg.Thumbs),
	)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf(
			"invalid thumbnails config for %s: %w",
			originalFilename,
			err,
		)
	}

	// Decoded once, every variant works on its own copy
	orig, err := g.codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", originalFilename, err)
	}

	format := naming.ResolveOutputFormat(cfg.ThumbnailFormat, originalFilename)
	results := make([]Result, 0, len(cfg.Thumbs))
	var errs []error

	for _, spec := range cfg.Thumbs {
		res := g.generateOne(ctx, originalFilename, orig, spec, format)
		results = append(results, res)

		attrs := map[string]string{
			"spec":   spec.Name,
			"format": format,
		}
		if res.Err != nil {
			slog.Error(
				"Failed to generate thumbnail",
				"origFile", originalFilename,
				"spec", spec.Name,
				"error", res.Err,
			)
			errs = append(errs, res.Err)
			g.telemetry.Metrics().Increment(metrics.ThumbFailed, attrs)
			continue
		}

		attrs["thumbSize"] = fmt.Sprintf("%d", res.Stored.Size)
		attrs["thumbWidth"] = fmt.Sprintf("%d", res.Size.Width)
		g.telemetry.Metrics().Increment(metrics.ThumbCreated, attrs)
	}

	return results, errors.Join(errs...)
}

func (g *CodecThumbsGenerator) generateOne(
	ctx context.Context,
	originalFilename string,
	orig *codec.Image,
	spec models.ThumbnailSpec,
	format string,
) Result {
	res := Result{
		Spec:     spec.Name,
		Filename: naming.ThumbFilename(originalFilename, spec.Name, format),
		Format:   format,
	}

	img, err := g.render(orig, spec)
	if err != nil {
		res.Err = fmt.Errorf("thumbnail %s: %w", spec.Name, err)
		return res
	}
	res.Size = img.Size()

	encoded, err := g.codec.Encode(img, format)
	if err != nil {
		res.Err = fmt.Errorf("thumbnail %s: %w", spec.Name, err)
		return res
	}

	res.Stored, err = g.storage.Save(ctx, res.Filename, encoded)
	if err != nil {
		res.Err = fmt.Errorf(
			"thumbnail %s: failed to save %s: %w",
			spec.Name,
			res.Filename,
			err,
		)
		return res
	}

	slog.Debug(
		"Thumbnail stored",
		"file", res.Filename,
		"size", res.Size.String(),
		"bytes", res.Stored.Size,
	)
	return res
}

// Applies colorspace normalization, scaling and the optional crop.
func (g *CodecThumbsGenerator) render(
	orig *codec.Image,
	spec models.ThumbnailSpec,
) (*codec.Image, error) {
	mode := codec.ModeRGB
	if spec.Grayscale {
		mode = codec.ModeGray
	}
	img := g.codec.ConvertColorspace(orig, mode)

	target := geometry.ComputeScale(
		img.Size(),
		spec.Size,
		spec.Cropped(),
		spec.Upscale,
	)
	if target != img.Size() {
		img = g.codec.Resize(img, target)
	}

	if !spec.Cropped() {
		return img, nil
	}

	x, y, err := geometry.ResolveCrop(spec.Crop, img.Size(), spec.Size)
	if err != nil {
		return nil, err
	}

	return g.codec.Crop(img, geometry.Window(x, y, spec.Size)), nil
}

func (g *CodecThumbsGenerator) DeleteAll(
	ctx context.Context,
	originalFilename string,
	cfg models.FieldConfig,
) {
	for _, filename := range Filenames(originalFilename, cfg) {
		if err := g.storage.Delete(ctx, filename); err != nil {
			slog.Debug(
				"Ignoring thumbnail deletion failure",
				"file", filename,
				"error", err,
			)
		}
	}
}

// Filenames returns the artifact filename of every configured variant,
// in declared order.
func Filenames(originalFilename string, cfg models.FieldConfig) []string {
	format := naming.ResolveOutputFormat(cfg.ThumbnailFormat, originalFilename)

	names := make([]string, 0, len(cfg.Thumbs))
	for _, spec := range cfg.Thumbs {
		names = append(
			names,
			naming.ThumbFilename(originalFilename, spec.Name, format),
		)
	}
	return names
}
