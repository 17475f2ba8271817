// Package color classifies highlight colors against configured theme colors.
package color

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultThreshold is the maximum Euclidean RGB distance (0-255 space) at which
// an observed color still counts as the theme color.
const DefaultThreshold = 50.0

// ErrFormat is returned for color strings that are not "#rrggbb".
var ErrFormat = errors.New("malformed color")

// RGB is a color with channels in [0, 1], as stored in PDF annotation dictionaries.
type RGB struct {
	R, G, B float64
}

// RGB8 is a color with integer channels in [0, 255].
type RGB8 struct {
	R, G, B int
}

// To8 scales each channel by 255 and truncates.
func (c RGB) To8() RGB8 {
	return RGB8{R: int(c.R * 255), G: int(c.G * 255), B: int(c.B * 255)}
}

// Hex returns the "#rrggbb" form of c.
func (c RGB) Hex() string {
	return ToHex(c)
}

// Hex returns the lowercase "#rrggbb" form of c.
func (c RGB8) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// String formats c as "(r, g, b)".
func (c RGB8) String() string {
	return fmt.Sprintf("(%d, %d, %d)", c.R, c.G, c.B)
}

// MarshalText encodes c in its "(r, g, b)" form.
func (c RGB8) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// ToHex converts a [0,1] RGB triplet to "#rrggbb". Channels are truncated,
// not rounded, so 0.5 becomes 0x7f.
func ToHex(c RGB) string {
	return c.To8().Hex()
}

// ParseHex parses "#rrggbb" (either case) into integer channels.
func ParseHex(s string) (RGB8, error) {
	if len(s) != 7 || s[0] != '#' {
		return RGB8{}, fmt.Errorf("%w: %q is not #rrggbb", ErrFormat, s)
	}
	var ch [3]int
	for i := range ch {
		v, err := strconv.ParseUint(s[1+2*i:3+2*i], 16, 8)
		if err != nil {
			return RGB8{}, fmt.Errorf("%w: %q has non-hex digits", ErrFormat, s)
		}
		ch[i] = int(v)
	}
	return RGB8{R: ch[0], G: ch[1], B: ch[2]}, nil
}

// NormalizeHex returns the lowercase form of a valid hex color.
func NormalizeHex(s string) (string, error) {
	if _, err := ParseHex(s); err != nil {
		return "", err
	}
	return strings.ToLower(s), nil
}

// Distance is the Euclidean distance between two colors in 0-255 space.
func Distance(a, b RGB8) float64 {
	dr := float64(a.R - b.R)
	dg := float64(a.G - b.G)
	db := float64(a.B - b.B)
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

// IsClose reports whether observed lies within threshold of the color themeHex.
func IsClose(observed RGB, themeHex string, threshold float64) (bool, error) {
	want, err := ParseHex(themeHex)
	if err != nil {
		return false, err
	}
	return Distance(observed.To8(), want) <= threshold, nil
}

// FromComponents converts a PDF /C color array to RGB. Gray (1 component),
// RGB (3) and CMYK (4) arrays are accepted; any other length is an error.
func FromComponents(c []float64) (RGB, error) {
	switch len(c) {
	case 1:
		return RGB{R: c[0], G: c[0], B: c[0]}, nil
	case 3:
		return RGB{R: c[0], G: c[1], B: c[2]}, nil
	case 4:
		k := 1 - c[3]
		return RGB{R: (1 - c[0]) * k, G: (1 - c[1]) * k, B: (1 - c[2]) * k}, nil
	default:
		return RGB{}, fmt.Errorf("%w: %d color components", ErrFormat, len(c))
	}
}
