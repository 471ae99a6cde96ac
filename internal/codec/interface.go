package codec

import (
	"errors"
	"image"

	"github.com/giobyte8/thumbvariants/internal/geometry"
)

// ErrUnreadableImage marks bytes that could not be identified or
// decoded as an image. It is a per-file problem, never a system one.
var ErrUnreadableImage = errors.New("unreadable image")

// ErrUnsupportedFormat is returned when encoding to a format the codec
// cannot write.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// ColorMode tags the colorspace of a decoded image.
type ColorMode string

const (
	ModeRGB     ColorMode = "RGB"
	ModeRGBA    ColorMode = "RGBA"
	ModePalette ColorMode = "P"
	ModeGray    ColorMode = "L"
	ModeCMYK    ColorMode = "CMYK"
)

// Image is a decoded image plus its colorspace tag.
// Codec operations never modify an Image in place.
type Image struct {
	Pixels image.Image
	Mode   ColorMode

	// Source format as detected on decode, empty for derived images
	Format string

	// Palette images carrying a transparent color
	transparent bool
}

func (i *Image) Size() geometry.Size {
	b := i.Pixels.Bounds()
	return geometry.Size{Width: b.Dx(), Height: b.Dy()}
}

type Codec interface {
	Decode(data []byte) (*Image, error)
	Encode(img *Image, format string) ([]byte, error)
	Resize(img *Image, size geometry.Size) *Image
	Crop(img *Image, rect image.Rectangle) *Image
	ConvertColorspace(img *Image, mode ColorMode) *Image
}
