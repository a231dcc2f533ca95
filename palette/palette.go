// Package palette contains what the quantizer engines share: request
// validation, the transparent placeholder and helpers to assemble a result.
package palette

import (
	"errors"
	"fmt"
	"image/color"
)

const (
	// MinColors is the smallest palette an engine can be asked for
	MinColors = 2
	// MaxColors is the largest palette an engine can be asked for
	MaxColors = 65536
	// MaxBitLevel is the largest precision override, in bits per channel
	MaxBitLevel = 8
)

var (
	ErrColorCount = errors.New("requested color count out of range")
	ErrBitLevel   = errors.New("bit level out of range")
	ErrSize       = errors.New("invalid image size")
)

// Transparent is the placeholder appended as the last palette entry when a
// transparent pixel was seen
var Transparent = color.RGBA{}

// Validate checks the arguments of an engine's Initialize. A bitLevel of 0
// means no override
func Validate(requestedColors int, bitLevel int, width int, height int) error {
	if requestedColors < MinColors || requestedColors > MaxColors {
		return fmt.Errorf("%w: %d (must be %d..%d)", ErrColorCount, requestedColors, MinColors, MaxColors)
	}
	if bitLevel < 0 || bitLevel > MaxBitLevel {
		return fmt.Errorf("%w: %d (must be 1..%d)", ErrBitLevel, bitLevel, MaxBitLevel)
	}
	if width < 0 || height < 0 {
		return fmt.Errorf("%w: %dx%d", ErrSize, width, height)
	}
	return nil
}

// Target is the number of colors an engine may produce, leaving room for
// the transparent placeholder
func Target(requestedColors int, hasTransparency bool) int {
	if hasTransparency {
		return requestedColors - 1
	}
	return requestedColors
}

// Bits returns the number of bits needed to index n colors, ceil(log2(n))
func Bits(n int) int {
	bits := 0
	for 1<<bits < n {
		bits++
	}
	return bits
}

// Opaque returns the fully opaque color of r, g and b
func Opaque(r, g, b uint8) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: 0xFF}
}

// Brightness is the perceived brightness of c in the 0..255 range, using
// the Rec. 601 luma weights
func Brightness(c color.RGBA) int {
	return (int(c.R)*299 + int(c.G)*587 + int(c.B)*114) / 1000
}

// Build converts the colors an engine produced to a palette, appending the
// transparent placeholder when needed
func Build(colors []color.RGBA, hasTransparency bool) color.Palette {
	n := len(colors)
	if hasTransparency {
		n++
	}
	p := make(color.Palette, 0, n)
	for _, c := range colors {
		p = append(p, c)
	}
	if hasTransparency {
		p = append(p, Transparent)
	}
	return p
}

// IsTransparent reports whether c is the transparent input sentinel
func IsTransparent(c color.NRGBA) bool {
	return c.A == 0
}
