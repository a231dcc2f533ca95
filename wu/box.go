package wu

import (
	"image/color"

	"github.com/koszeggy/KGySoft.Drawing-sub016/palette"
)

type colorAxis int

// Color axis constants
const (
	red colorAxis = iota
	green
	blue
)

// box is a region of the histogram. Lower bounds are exclusive, upper
// bounds inclusive
type box struct {
	r0, r1 int
	g0, g1 int
	b0, b1 int
	vol    int
}

func (b *box) volume() int {
	return (b.r1 - b.r0) * (b.g1 - b.g0) * (b.b1 - b.b0)
}

// score ranks boxes for cutting: the sum of squares minus the squared sums
// divided by the weight. Boxes of a single cell are never cut
func (h *histogram) score(b *box) float64 {
	if b.vol <= 1 {
		return 0
	}
	w := volume(h, b, h.wt)
	if w == 0 {
		return 0
	}
	dr := float64(volume(h, b, h.mr))
	dg := float64(volume(h, b, h.mg))
	db := float64(volume(h, b, h.mb))
	return volume(h, b, h.m2) - (dr*dr+dg*dg+db*db)/float64(w)
}

type totals struct {
	r, g, b, w int64
}

// maximize finds the cut along axis a in [first, last) which maximizes the
// sum of the squared sums of both halves divided by their weights. cut is -1
// if no position leaves both halves non-empty
func (h *histogram) maximize(b *box, a colorAxis, first int, last int, whole totals) (best float64, cut int) {
	baseR := bottom(h, b, a, h.mr)
	baseG := bottom(h, b, a, h.mg)
	baseB := bottom(h, b, a, h.mb)
	baseW := bottom(h, b, a, h.wt)
	cut = -1
	for i := first; i < last; i++ {
		half := totals{
			r: baseR + top(h, b, a, i, h.mr),
			g: baseG + top(h, b, a, i, h.mg),
			b: baseB + top(h, b, a, i, h.mb),
			w: baseW + top(h, b, a, i, h.wt),
		}
		if half.w == 0 {
			continue
		}
		temp := half.separation()
		half = totals{
			r: whole.r - half.r,
			g: whole.g - half.g,
			b: whole.b - half.b,
			w: whole.w - half.w,
		}
		if half.w == 0 {
			continue
		}
		temp += half.separation()
		if temp > best {
			best = temp
			cut = i
		}
	}
	return best, cut
}

func (t totals) separation() float64 {
	r, g, b := float64(t.r), float64(t.g), float64(t.b)
	return (r*r + g*g + b*b) / float64(t.w)
}

// cut splits b1 along its best axis, keeping the lower half in b1 and
// storing the upper half in b2. Ties prefer red, then green. It returns
// false if b1 cannot be cut
func (h *histogram) cut(b1 *box, b2 *box) bool {
	whole := totals{
		r: volume(h, b1, h.mr),
		g: volume(h, b1, h.mg),
		b: volume(h, b1, h.mb),
		w: volume(h, b1, h.wt),
	}
	maxR, cutR := h.maximize(b1, red, b1.r0+1, b1.r1, whole)
	maxG, cutG := h.maximize(b1, green, b1.g0+1, b1.g1, whole)
	maxB, cutB := h.maximize(b1, blue, b1.b0+1, b1.b1, whole)

	var axis colorAxis
	switch {
	case maxR >= maxG && maxR >= maxB:
		axis = red
		if cutR < 0 {
			return false
		}
	case maxG >= maxR && maxG >= maxB:
		axis = green
	default:
		axis = blue
	}

	b2.r1, b2.g1, b2.b1 = b1.r1, b1.g1, b1.b1
	switch axis {
	case red:
		b2.r0 = cutR
		b1.r1 = cutR
		b2.g0 = b1.g0
		b2.b0 = b1.b0
	case green:
		b2.g0 = cutG
		b1.g1 = cutG
		b2.r0 = b1.r0
		b2.b0 = b1.b0
	case blue:
		b2.b0 = cutB
		b1.b1 = cutB
		b2.r0 = b1.r0
		b2.g0 = b1.g0
	}
	b1.vol = b1.volume()
	b2.vol = b2.volume()
	return true
}

// color is the mean color of b, ok is false for an empty box
func (h *histogram) color(b *box) (c color.RGBA, ok bool) {
	w := volume(h, b, h.wt)
	if w == 0 {
		return c, false
	}
	return palette.Opaque(
		uint8(volume(h, b, h.mr)/w),
		uint8(volume(h, b, h.mg)/w),
		uint8(volume(h, b, h.mb)/w),
	), true
}
