// Package wu implements Xiaolin Wu's palette generator. Colors are counted
// in a reduced resolution 3D histogram, which is turned into cumulative
// moments so the statistics of any box are available in constant time. The
// color space is then greedily cut into boxes, always cutting the box with
// the largest spread.
package wu

import (
	"context"
	"image/color"

	"github.com/koszeggy/KGySoft.Drawing-sub016/log"
	"github.com/koszeggy/KGySoft.Drawing-sub016/palette"
	"github.com/koszeggy/KGySoft.Drawing-sub016/progress"
)

const (
	defaultBits = 5
	// histogram resolution used for more than 256 colors
	largeBits = 6
)

// Quantizer generates a palette using Wu's algorithm. It must be
// initialized before use and must not be reused
type Quantizer struct {
	hist *histogram
	size int
	a0   bool // true if any color is transparent
}

// New returns an uninitialized Quantizer
func New() *Quantizer {
	return &Quantizer{}
}

// Initialize takes a histogram from the pool. A bitLevel of 0 picks 5 bits
// per channel, or 6 for more than 256 colors
func (q *Quantizer) Initialize(requestedColors int, bitLevel int, width int, height int) error {
	if err := palette.Validate(requestedColors, bitLevel, width, height); err != nil {
		return err
	}
	bits := bitLevel
	if bits == 0 {
		bits = defaultBits
		if requestedColors > 256 {
			bits = largeBits
		}
	}
	q.size = requestedColors
	q.hist = getHistogram(bits)
	log.Trace("wu: %d bit histogram for %d colors", bits, requestedColors)
	return nil
}

// AddColor counts an opaque color. Transparent colors are only remembered
// to reserve the transparent palette entry
func (q *Quantizer) AddColor(c color.NRGBA) {
	if palette.IsTransparent(c) {
		q.a0 = true
		return
	}
	q.hist.add(c.R, c.G, c.B)
}

// GeneratePalette cuts the histogram into boxes and returns their mean
// colors. If ctx is canceled a nil palette and ctx.Err() are returned
func (q *Quantizer) GeneratePalette(ctx context.Context) (color.Palette, error) {
	if progress.Canceled(ctx) {
		return nil, ctx.Err()
	}
	h := q.hist
	r := progress.FromContext(ctx)
	r.New(progress.OperationInitializing, h.side-1)
	if err := h.moments(ctx, r); err != nil {
		log.Debug("wu: canceled while building moments")
		return nil, err
	}

	target := palette.Target(q.size, q.a0)
	r.New(progress.OperationGeneratingPalette, target-1)
	boxes, err := q.partition(ctx, target, r)
	if err != nil {
		log.Debug("wu: canceled while cutting boxes")
		return nil, err
	}

	colors := make([]color.RGBA, 0, len(boxes))
	for i := range boxes {
		if c, ok := h.color(&boxes[i]); ok {
			colors = append(colors, c)
		}
	}
	log.Debug("wu: generated %d colors from %d boxes", len(colors), len(boxes))
	return palette.Build(colors, q.a0), nil
}

// partition cuts the whole histogram into at most target boxes
func (q *Quantizer) partition(ctx context.Context, target int, r progress.Reporter) ([]box, error) {
	h := q.hist
	boxes := make([]box, target)
	scores := make([]float64, target)
	last := h.side - 1
	boxes[0] = box{r1: last, g1: last, b1: last}
	boxes[0].vol = boxes[0].volume()

	n := 1
	next := 0
	for n < target {
		if progress.Canceled(ctx) {
			return nil, ctx.Err()
		}
		if h.cut(&boxes[next], &boxes[n]) {
			scores[next] = h.score(&boxes[next])
			scores[n] = h.score(&boxes[n])
			n++
			r.Increment()
		} else {
			// not counted, the next best box is tried instead
			scores[next] = 0
		}

		next = 0
		best := scores[0]
		for i := 1; i < n; i++ {
			if scores[i] > best {
				best = scores[i]
				next = i
			}
		}
		if best <= 0 {
			log.Trace("wu: no more boxes to cut after %d", n)
			break
		}
	}
	return boxes[:n], nil
}

// Dispose returns the histogram to the pool. It is safe to call more than
// once
func (q *Quantizer) Dispose() {
	if q.hist != nil {
		putHistogram(q.hist)
		q.hist = nil
	}
}
