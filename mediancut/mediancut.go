// Package mediancut implements a median cut palette generator. Every
// accepted color is kept in one buffer, and buckets, which are ranges of
// that buffer, are repeatedly cut in half at the median of their widest
// channel.
package mediancut

import (
	"context"
	"image/color"

	"github.com/koszeggy/KGySoft.Drawing-sub016/log"
	"github.com/koszeggy/KGySoft.Drawing-sub016/palette"
	"github.com/koszeggy/KGySoft.Drawing-sub016/pool"
	"github.com/koszeggy/KGySoft.Drawing-sub016/progress"
)

var buffers = pool.NewSlices[rgb]()

// Quantizer generates a palette using the median cut method. It must be
// initialized before use and must not be reused
type Quantizer struct {
	colors []rgb
	n      int
	root   bucket
	size   int
	a0     bool // true if any color is transparent
}

// New returns an uninitialized Quantizer
func New() *Quantizer {
	return &Quantizer{}
}

// Initialize reserves room for width*height colors. The bitLevel is
// validated but not used, every color is kept at full precision
func (q *Quantizer) Initialize(requestedColors int, bitLevel int, width int, height int) error {
	if err := palette.Validate(requestedColors, bitLevel, width, height); err != nil {
		return err
	}
	q.size = requestedColors
	q.colors = buffers.Get(width * height)
	q.root = emptyBucket(0)
	return nil
}

// AddColor stores an opaque color. Transparent colors are only remembered
// to reserve the transparent palette entry. Adding more than width*height
// colors panics
func (q *Quantizer) AddColor(c color.NRGBA) {
	if palette.IsTransparent(c) {
		q.a0 = true
		return
	}
	v := rgb{c.R, c.G, c.B}
	q.colors[q.n] = v
	q.n++
	q.root.update(v)
}

// GeneratePalette splits the buckets and returns the palette. If ctx is
// canceled a nil palette and ctx.Err() are returned
func (q *Quantizer) GeneratePalette(ctx context.Context) (color.Palette, error) {
	if progress.Canceled(ctx) {
		return nil, ctx.Err()
	}
	if q.n == 0 {
		log.Debug("median cut: no opaque colors")
		return palette.Build(nil, q.a0), nil
	}
	q.root.end = q.n
	if q.root.uniform() {
		log.Debug("median cut: single color")
		return palette.Build([]color.RGBA{q.root.min.color()}, q.a0), nil
	}

	target := palette.Target(q.size, q.a0)
	r := progress.FromContext(ctx)
	r.New(progress.OperationGeneratingPalette, target)

	bc := newCollection(q.colors[:q.n], q.root, target, r)
	if err := bc.splitBuckets(ctx); err != nil {
		log.Debug("median cut: canceled while splitting")
		return nil, err
	}
	log.Trace("median cut: %d colors and %d buckets after splitting", len(bc.finalized), len(bc.active))
	if err := bc.finalizeBuckets(ctx); err != nil {
		log.Debug("median cut: canceled while finalizing")
		return nil, err
	}
	log.Debug("median cut: generated %d colors from %d pixels", len(bc.finalized), q.n)
	return palette.Build(bc.finalized, q.a0), nil
}

// Dispose returns the color buffer to the pool. It is safe to call more
// than once
func (q *Quantizer) Dispose() {
	if q.colors != nil {
		buffers.Put(q.colors)
		q.colors = nil
	}
}
