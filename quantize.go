// Package quantize generates palettes for images. Three engines are
// available: an octree, median cut and Xiaolin Wu's method. Each engine is
// fed the colors of an image one by one and produces a palette of up to the
// requested number of colors, with a transparent entry at the end if any
// transparent pixel was seen.
package quantize

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"strings"

	"github.com/koszeggy/KGySoft.Drawing-sub016/mediancut"
	"github.com/koszeggy/KGySoft.Drawing-sub016/octreequant"
	"github.com/koszeggy/KGySoft.Drawing-sub016/wu"
)

// Engine is the lifecycle shared by the palette generators. An Engine is
// used exactly once: Initialize, AddColor for every pixel, GeneratePalette
// and finally Dispose. Engines are not safe for concurrent use
type Engine interface {
	// Initialize prepares the engine for an image of width x height
	// pixels. requestedColors must be in 2..65536, bitLevel is 0 or a
	// precision override in 1..8
	Initialize(requestedColors int, bitLevel int, width int, height int) error
	// AddColor adds a pixel. A zero alpha marks a transparent pixel, any
	// other alpha is treated as opaque
	AddColor(c color.NRGBA)
	// GeneratePalette returns the palette, or nil and ctx.Err() if ctx
	// is canceled
	GeneratePalette(ctx context.Context) (color.Palette, error)
	// Dispose releases the buffers of the engine
	Dispose()
}

var (
	_ Engine = (*octreequant.Quantizer)(nil)
	_ Engine = (*mediancut.Quantizer)(nil)
	_ Engine = (*wu.Quantizer)(nil)
)

// Algorithm selects an Engine
type Algorithm int

const (
	Octree Algorithm = iota
	MedianCut
	Wu
)

var ErrUnknownAlgorithm = errors.New("unknown algorithm")

func (a Algorithm) String() string {
	switch a {
	case Octree:
		return "octree"
	case MedianCut:
		return "mediancut"
	case Wu:
		return "wu"
	default:
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
}

// ParseAlgorithm returns the Algorithm called s
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "octree":
		return Octree, nil
	case "mediancut", "median-cut", "median":
		return MedianCut, nil
	case "wu":
		return Wu, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
	}
}

// NewEngine returns a new, uninitialized Engine of the algorithm
func NewEngine(alg Algorithm) (Engine, error) {
	switch alg {
	case Octree:
		return octreequant.New(), nil
	case MedianCut:
		return mediancut.New(), nil
	case Wu:
		return wu.New(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, alg)
	}
}
