// Package quanttest holds input generators and palette checks shared by the
// engine tests.
package quanttest

import (
	"context"
	"image/color"
	"math/rand"

	"github.com/koszeggy/KGySoft.Drawing-sub016/progress"
)

// Engine is the lifecycle every palette engine implements
type Engine interface {
	Initialize(requestedColors int, bitLevel int, width int, height int) error
	AddColor(c color.NRGBA)
	GeneratePalette(ctx context.Context) (color.Palette, error)
	Dispose()
}

// Opaque returns an opaque input color
func Opaque(r, g, b uint8) color.NRGBA {
	return color.NRGBA{R: r, G: g, B: b, A: 0xFF}
}

// Transparent is a fully transparent input pixel
var Transparent = color.NRGBA{R: 10, G: 20, B: 30}

// Cube returns steps^3 colors evenly covering the RGB cube
func Cube(steps int) []color.NRGBA {
	colors := make([]color.NRGBA, 0, steps*steps*steps)
	for r := 0; r < steps; r++ {
		for g := 0; g < steps; g++ {
			for b := 0; b < steps; b++ {
				colors = append(colors, Opaque(level(r, steps), level(g, steps), level(b, steps)))
			}
		}
	}
	return colors
}

func level(i int, steps int) uint8 {
	if steps == 1 {
		return 0
	}
	return uint8(i * 255 / (steps - 1))
}

// Random returns n random opaque colors
func Random(seed int64, n int) []color.NRGBA {
	rnd := rand.New(rand.NewSource(seed))
	colors := make([]color.NRGBA, n)
	for i := range colors {
		colors[i] = Opaque(uint8(rnd.Intn(256)), uint8(rnd.Intn(256)), uint8(rnd.Intn(256)))
	}
	return colors
}

// Repeat returns c n times
func Repeat(c color.NRGBA, n int) []color.NRGBA {
	colors := make([]color.NRGBA, n)
	for i := range colors {
		colors[i] = c
	}
	return colors
}

// Run feeds colors to e, initialized for a len(colors)x1 image, and returns
// the generated palette
func Run(ctx context.Context, e Engine, requestedColors int, bitLevel int, colors []color.NRGBA) (color.Palette, error) {
	if err := e.Initialize(requestedColors, bitLevel, len(colors), 1); err != nil {
		return nil, err
	}
	defer e.Dispose()
	for _, c := range colors {
		e.AddColor(c)
	}
	return e.GeneratePalette(ctx)
}

// Duplicates returns the colors which appear more than once in p
func Duplicates(p color.Palette) []color.Color {
	seen := make(map[color.Color]bool, len(p))
	var dups []color.Color
	for _, c := range p {
		if seen[c] {
			dups = append(dups, c)
		}
		seen[c] = true
	}
	return dups
}

// Set returns the colors of p as RGBA values
func Set(p color.Palette) map[color.RGBA]bool {
	set := make(map[color.RGBA]bool, len(p))
	for _, c := range p {
		set[color.RGBAModel.Convert(c).(color.RGBA)] = true
	}
	return set
}

// RGBA converts an opaque input color to the palette representation
func RGBA(c color.NRGBA) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xFF}
}

// CancelAfter is a progress.Reporter which calls Cancel once Op has
// reported Ticks steps
type CancelAfter struct {
	Cancel context.CancelFunc
	Op     progress.Operation
	Ticks  int

	cur progress.Operation
	n   int
}

func (c *CancelAfter) New(op progress.Operation, _ int) {
	c.cur = op
	c.n = 0
}

func (c *CancelAfter) Increment() {
	c.n++
	if c.cur == c.Op && c.n == c.Ticks {
		c.Cancel()
	}
}
