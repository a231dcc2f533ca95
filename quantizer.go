package quantize

import (
	"context"
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/koszeggy/KGySoft.Drawing-sub016/log"
	"github.com/koszeggy/KGySoft.Drawing-sub016/palette"
)

// Palette generates a palette for img
func Palette(ctx context.Context, img image.Image, opts Options) (color.Palette, error) {
	opts.apply()
	e, err := NewEngine(opts.Algorithm)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	err = e.Initialize(opts.colors(), opts.BitLevel, b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}
	defer e.Dispose()

	log.Debug("quantizing %dx%d image with %s to %d colors", b.Dx(), b.Dy(), opts.Algorithm, opts.colors())
	threshold := opts.alphaThreshold()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			e.AddColor(pixel(img, x, y, threshold))
		}
	}
	return e.GeneratePalette(ctx)
}

// Paletted quantizes img and returns a paletted image, with a palette up to
// the configured color count. Pixels are mapped to their closest palette
// entry
func Paletted(ctx context.Context, img image.Image, opts Options) (*image.Paletted, error) {
	p, err := Palette(ctx, img, opts)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	out := image.NewPaletted(b, p)
	if len(p) == 0 {
		return out, nil
	}
	draw.Draw(out, b, img, b.Min, draw.Src)
	return out, nil
}

// pixel returns the pixel at x, y as the engines expect it: transparent
// below the threshold, otherwise un-premultiplied and opaque
func pixel(img image.Image, x int, y int, threshold uint8) color.NRGBA {
	var c color.NRGBA
	switch img := img.(type) {
	case *image.NRGBA:
		c = img.NRGBAAt(x, y)
	default:
		c = color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
	}
	if c.A < threshold {
		return color.NRGBA{}
	}
	c.A = 0xFF
	return c
}

// Quantizer implements draw.Quantizer, for example to be used as the
// Quantizer of gif.Options
type Quantizer struct {
	Options
}

var _ draw.Quantizer = Quantizer{}

// Quantize appends up to cap(p)-len(p) colors to p. If p has no spare
// capacity, Options.Colors are appended. Colors already in p are not taken
// into account
func (q Quantizer) Quantize(p color.Palette, m image.Image) color.Palette {
	opts := q.Options
	if n := cap(p) - len(p); n > 0 {
		opts.Colors = n
	}
	if opts.colors() < palette.MinColors {
		return p
	}
	generated, err := Palette(context.Background(), m, opts)
	if err != nil {
		log.Error("couldn't generate palette: %v", err)
		return p
	}
	return append(p, generated...)
}
