package codec

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"  // Register GIF format
	_ "image/jpeg" // Register JPEG format
	_ "image/png"  // Register PNG format
	"log/slog"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"  // Register BMP format
	_ "golang.org/x/image/tiff" // Register TIFF format
	_ "golang.org/x/image/webp" // Register WEBP format (decode only)

	"github.com/giobyte8/thumbvariants/internal/geometry"
)

const DefaultJPEGQuality = 85

// ImagingCodec implements Codec with disintegration/imaging.
type ImagingCodec struct {
	jpegQuality int
}

func NewImagingCodec(jpegQuality int) *ImagingCodec {
	if jpegQuality <= 0 || jpegQuality > 100 {
		jpegQuality = DefaultJPEGQuality
	}

	return &ImagingCodec{jpegQuality: jpegQuality}
}

func (c *ImagingCodec) Decode(data []byte) (*Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty content", ErrUnreadableImage)
	}

	kind, err := filetype.Image(data)
	if err != nil || kind == filetype.Unknown {
		return nil, fmt.Errorf("%w: cannot identify image file", ErrUnreadableImage)
	}

	pixels, err := imaging.Decode(
		bytes.NewReader(data),
		imaging.AutoOrientation(true),
	)
	if err != nil {
		return nil, fmt.Errorf(
			"%w: failed to decode %s content: %v",
			ErrUnreadableImage,
			kind.Extension,
			err,
		)
	}

	img := &Image{
		Pixels: pixels,
		Mode:   colorModeOf(pixels),
		Format: kind.Extension,
	}
	if p, ok := pixels.(*image.Paletted); ok {
		img.transparent = hasTransparency(p)
	}

	slog.Debug(
		"Image decoded",
		"format", img.Format,
		"mode", img.Mode,
		"size", img.Size().String(),
	)
	return img, nil
}

func (c *ImagingCodec) Encode(img *Image, format string) ([]byte, error) {
	f, err := imaging.FormatFromExtension(format)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	pixels := img.Pixels
	switch {
	case img.Mode == ModeGray:
		pixels = toGray(pixels)
	case f == imaging.JPEG && hasAlpha(img):
		// JPEG has no alpha channel
		pixels = flatten(pixels, color.White)
	}

	var buf bytes.Buffer
	err = imaging.Encode(&buf, pixels, f, imaging.JPEGQuality(c.jpegQuality))
	if err != nil {
		return nil, fmt.Errorf("failed to encode image as %s: %w", format, err)
	}

	return buf.Bytes(), nil
}

func (c *ImagingCodec) Resize(img *Image, size geometry.Size) *Image {
	return &Image{
		Pixels: imaging.Resize(img.Pixels, size.Width, size.Height, imaging.Lanczos),
		Mode:   img.Mode,
	}
}

// Crop cuts rect, given relative to the image origin. The result is
// always rect sized: areas outside the image are filled with opaque
// black, or left transparent for RGBA images.
func (c *ImagingCodec) Crop(img *Image, rect image.Rectangle) *Image {
	fill := color.NRGBA{A: 0xff}
	if img.Mode == ModeRGBA {
		fill = color.NRGBA{}
	}

	dst := imaging.New(rect.Dx(), rect.Dy(), fill)
	return &Image{
		Pixels: imaging.Paste(dst, img.Pixels, image.Pt(-rect.Min.X, -rect.Min.Y)),
		Mode:   img.Mode,
	}
}

// ConvertColorspace returns a copy of img in the requested mode.
//
// ModeRGB keeps RGBA images as they are and promotes palette images
// with a transparent color to RGBA, everything else becomes opaque RGB.
// ModeGray yields a single channel image.
func (c *ImagingCodec) ConvertColorspace(img *Image, mode ColorMode) *Image {
	switch mode {
	case ModeGray:
		return &Image{Pixels: toGray(img.Pixels), Mode: ModeGray}
	case ModeRGB:
		out := &Image{Pixels: imaging.Clone(img.Pixels), Mode: ModeRGB}
		if img.Mode == ModeRGBA || (img.Mode == ModePalette && img.transparent) {
			out.Mode = ModeRGBA
		}
		return out
	default:
		return &Image{
			Pixels:      imaging.Clone(img.Pixels),
			Mode:        img.Mode,
			transparent: img.transparent,
		}
	}
}

func colorModeOf(pixels image.Image) ColorMode {
	switch p := pixels.(type) {
	case *image.Gray, *image.Gray16:
		return ModeGray
	case *image.Paletted:
		return ModePalette
	case *image.CMYK:
		return ModeCMYK
	case *image.YCbCr:
		return ModeRGB
	case interface{ Opaque() bool }:
		if !p.Opaque() {
			return ModeRGBA
		}
	}

	return ModeRGB
}

func hasTransparency(p *image.Paletted) bool {
	for _, c := range p.Palette {
		if _, _, _, a := c.RGBA(); a < 0xffff {
			return true
		}
	}
	return false
}

func hasAlpha(img *Image) bool {
	if img.Mode == ModeRGBA {
		return true
	}
	return img.Mode == ModePalette && img.transparent
}

// Composites src over an opaque background.
func flatten(src image.Image, bg color.Color) *image.NRGBA {
	b := src.Bounds()
	dst := imaging.New(b.Dx(), b.Dy(), bg)
	return imaging.Overlay(dst, src, image.Pt(0, 0), 1.0)
}

// Always allocates, so the result never aliases src.
func toGray(src image.Image) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}
