package geometry

import (
	"fmt"
	"image"
	"regexp"
	"strconv"
	"strings"
)

var cropTokenPattern = regexp.MustCompile(`^(\d+)(%|px)$`)

// Named positions for each axis, expressed as percentages.
// For example, 'center' crops at 50% on its axis.
var (
	xAliasPercent = map[string]string{
		"left":   "0%",
		"center": "50%",
		"right":  "100%",
	}
	yAliasPercent = map[string]string{
		"top":    "0%",
		"center": "50%",
		"bottom": "100%",
	}
)

// ParseError reports a crop option that cannot be understood.
// It always indicates a configuration problem.
type ParseError struct {
	Option string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unrecognized crop option: %q", e.Option)
}

// Crop holds the resolved per-axis crop tokens, each in the
// form 'N%' or 'Npx'.
type Crop struct {
	X string
	Y string
}

// ParseCrop resolves a crop directive into independent X and Y tokens.
//
// A single value applies to both axes unless it is an axis alias, in
// which case the other axis defaults to 50%. Two values set X and Y
// separately: 'left top', '20px 80%'.
func ParseCrop(directive string) (Crop, error) {
	var c Crop

	parts := strings.Split(directive, " ")
	switch len(parts) {
	case 1:
		if pct, ok := xAliasPercent[directive]; ok {
			c = Crop{X: pct, Y: "50%"}
		} else if pct, ok := yAliasPercent[directive]; ok {
			c = Crop{X: "50%", Y: pct}
		} else {
			c = Crop{X: directive, Y: directive}
		}
	case 2:
		c = Crop{X: parts[0], Y: parts[1]}
		if pct, ok := xAliasPercent[c.X]; ok {
			c.X = pct
		}
		if pct, ok := yAliasPercent[c.Y]; ok {
			c.Y = pct
		}
	default:
		return Crop{}, &ParseError{Option: directive}
	}

	for _, token := range []string{c.X, c.Y} {
		if !cropTokenPattern.MatchString(token) {
			return Crop{}, &ParseError{Option: directive}
		}
	}

	return c, nil
}

// ResolveCropOffset computes the offset along one axis. slack is the
// difference between the image dimension and the crop window on that
// axis. The result always lies in [0, slack], so out of range requests
// degrade to an edge crop and a negative slack yields 0.
func ResolveCropOffset(token string, slack int) (int, error) {
	m := cropTokenPattern.FindStringSubmatch(token)
	if m == nil {
		return 0, &ParseError{Option: token}
	}

	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, &ParseError{Option: token}
	}

	value := float64(n)
	if m[2] == "%" {
		value = float64(slack) * value / 100.0
	}

	value = min(value, float64(slack))
	value = max(value, 0)
	return int(value), nil
}

// ResolveCrop returns the (x, y) offsets of a window of size 'window'
// inside an image of size 'img' for the given crop directive.
func ResolveCrop(directive string, img, window Size) (int, int, error) {
	c, err := ParseCrop(directive)
	if err != nil {
		return 0, 0, err
	}

	x, err := ResolveCropOffset(c.X, img.Width-window.Width)
	if err != nil {
		return 0, 0, err
	}
	y, err := ResolveCropOffset(c.Y, img.Height-window.Height)
	if err != nil {
		return 0, 0, err
	}

	return x, y, nil
}

// Window returns the crop rectangle anchored at (x, y).
func Window(x, y int, size Size) image.Rectangle {
	return image.Rect(x, y, x+size.Width, y+size.Height)
}
