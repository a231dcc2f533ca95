package wu

import (
	"context"

	"github.com/koszeggy/KGySoft.Drawing-sub016/palette"
	"github.com/koszeggy/KGySoft.Drawing-sub016/pool"
	"github.com/koszeggy/KGySoft.Drawing-sub016/progress"
)

// moment is the element type of the histogram tables
type moment interface {
	int64 | float64
}

// histogram holds the color statistics on a (1<<bits)+1 cube per table.
// Index 0 on every axis is padding which stays 0, so a lower bound of -1 in
// the color space needs no special case
type histogram struct {
	bits int
	side int
	wt   []int64   // pixel count
	mr   []int64   // sum of red
	mg   []int64   // sum of green
	mb   []int64   // sum of blue
	m2   []float64 // sum of r²+g²+b²
}

// histograms pools the tables per resolution
var histograms [palette.MaxBitLevel + 1]*pool.Pool[*histogram]

func init() {
	for bits := 1; bits <= palette.MaxBitLevel; bits++ {
		bits := bits
		histograms[bits] = pool.New(func() *histogram {
			return newHistogram(bits)
		})
	}
}

func newHistogram(bits int) *histogram {
	side := 1<<bits + 1
	n := side * side * side
	return &histogram{
		bits: bits,
		side: side,
		wt:   make([]int64, n),
		mr:   make([]int64, n),
		mg:   make([]int64, n),
		mb:   make([]int64, n),
		m2:   make([]float64, n),
	}
}

// getHistogram returns a zeroed histogram from the pool
func getHistogram(bits int) *histogram {
	h := histograms[bits].Get()
	h.reset()
	return h
}

func putHistogram(h *histogram) {
	histograms[h.bits].Put(h)
}

func (h *histogram) reset() {
	for i := range h.wt {
		h.wt[i] = 0
	}
	for i := range h.mr {
		h.mr[i] = 0
	}
	for i := range h.mg {
		h.mg[i] = 0
	}
	for i := range h.mb {
		h.mb[i] = 0
	}
	for i := range h.m2 {
		h.m2[i] = 0
	}
}

func (h *histogram) index(r, g, b int) int {
	return (r*h.side+g)*h.side + b
}

func (h *histogram) add(r, g, b uint8) {
	shift := 8 - h.bits
	i := h.index(int(r>>shift)+1, int(g>>shift)+1, int(b>>shift)+1)
	h.wt[i]++
	h.mr[i] += int64(r)
	h.mg[i] += int64(g)
	h.mb[i] += int64(b)
	h.m2[i] += float64(int(r)*int(r) + int(g)*int(g) + int(b)*int(b))
}

// moments turns the histogram into cumulative moments: afterwards every
// cell holds the sum of all cells at or below it on each axis. One progress
// step is reported per red plane
func (h *histogram) moments(ctx context.Context, r progress.Reporter) error {
	side := h.side
	plane := side * side
	area := make([]int64, side)
	areaR := make([]int64, side)
	areaG := make([]int64, side)
	areaB := make([]int64, side)
	area2 := make([]float64, side)
	for red := 1; red < side; red++ {
		if progress.Canceled(ctx) {
			return ctx.Err()
		}
		for i := range area {
			area[i], areaR[i], areaG[i], areaB[i], area2[i] = 0, 0, 0, 0, 0
		}
		for green := 1; green < side; green++ {
			var line, lineR, lineG, lineB int64
			var line2 float64
			for blue := 1; blue < side; blue++ {
				i := h.index(red, green, blue)
				line += h.wt[i]
				lineR += h.mr[i]
				lineG += h.mg[i]
				lineB += h.mb[i]
				line2 += h.m2[i]

				area[blue] += line
				areaR[blue] += lineR
				areaG[blue] += lineG
				areaB[blue] += lineB
				area2[blue] += line2

				prev := i - plane
				h.wt[i] = h.wt[prev] + area[blue]
				h.mr[i] = h.mr[prev] + areaR[blue]
				h.mg[i] = h.mg[prev] + areaG[blue]
				h.mb[i] = h.mb[prev] + areaB[blue]
				h.m2[i] = h.m2[prev] + area2[blue]
			}
		}
		r.Increment()
	}
	return nil
}

// volume is the sum of m over the box, by inclusion-exclusion of the eight
// corners of the cumulative table
func volume[T moment](h *histogram, b *box, m []T) T {
	return m[h.index(b.r1, b.g1, b.b1)] -
		m[h.index(b.r1, b.g1, b.b0)] -
		m[h.index(b.r1, b.g0, b.b1)] +
		m[h.index(b.r1, b.g0, b.b0)] -
		m[h.index(b.r0, b.g1, b.b1)] +
		m[h.index(b.r0, b.g1, b.b0)] +
		m[h.index(b.r0, b.g0, b.b1)] -
		m[h.index(b.r0, b.g0, b.b0)]
}

// bottom is the part of the volume of b which does not depend on the upper
// bound along axis a
func bottom(h *histogram, b *box, a colorAxis, m []int64) int64 {
	switch a {
	case red:
		return -m[h.index(b.r0, b.g1, b.b1)] +
			m[h.index(b.r0, b.g1, b.b0)] +
			m[h.index(b.r0, b.g0, b.b1)] -
			m[h.index(b.r0, b.g0, b.b0)]
	case green:
		return -m[h.index(b.r1, b.g0, b.b1)] +
			m[h.index(b.r1, b.g0, b.b0)] +
			m[h.index(b.r0, b.g0, b.b1)] -
			m[h.index(b.r0, b.g0, b.b0)]
	default:
		return -m[h.index(b.r1, b.g1, b.b0)] +
			m[h.index(b.r1, b.g0, b.b0)] +
			m[h.index(b.r0, b.g1, b.b0)] -
			m[h.index(b.r0, b.g0, b.b0)]
	}
}

// top is the rest of the volume of b with its upper bound along axis a
// moved to pos
func top(h *histogram, b *box, a colorAxis, pos int, m []int64) int64 {
	switch a {
	case red:
		return m[h.index(pos, b.g1, b.b1)] -
			m[h.index(pos, b.g1, b.b0)] -
			m[h.index(pos, b.g0, b.b1)] +
			m[h.index(pos, b.g0, b.b0)]
	case green:
		return m[h.index(b.r1, pos, b.b1)] -
			m[h.index(b.r1, pos, b.b0)] -
			m[h.index(b.r0, pos, b.b1)] +
			m[h.index(b.r0, pos, b.b0)]
	default:
		return m[h.index(b.r1, b.g1, pos)] -
			m[h.index(b.r1, b.g0, pos)] -
			m[h.index(b.r0, b.g1, pos)] +
			m[h.index(b.r0, b.g0, pos)]
	}
}
