package mediancut

import (
	"context"
	"image/color"

	"github.com/koszeggy/KGySoft.Drawing-sub016/palette"
	"github.com/koszeggy/KGySoft.Drawing-sub016/progress"
	"github.com/koszeggy/KGySoft.Drawing-sub016/psort"
)

type rgb struct {
	r, g, b uint8
}

func (c rgb) color() color.RGBA {
	return palette.Opaque(c.r, c.g, c.b)
}

type colorAxis uint8

// Color axis constants
const (
	red colorAxis = iota
	green
	blue
)

func (a colorAxis) value(c rgb) uint8 {
	switch a {
	case red:
		return c.r
	case green:
		return c.g
	default:
		return c.b
	}
}

func lessRed(a, b rgb) bool   { return a.r < b.r }
func lessGreen(a, b rgb) bool { return a.g < b.g }
func lessBlue(a, b rgb) bool  { return a.b < b.b }

func (a colorAxis) less() func(a, b rgb) bool {
	switch a {
	case red:
		return lessRed
	case green:
		return lessGreen
	default:
		return lessBlue
	}
}

// bucket is a view of colors[start:end] of the shared color buffer, with
// the per channel bounds of the colors in it
type bucket struct {
	start int
	end   int
	min   rgb
	max   rgb
}

func emptyBucket(start int) bucket {
	return bucket{
		start: start,
		end:   start,
		min:   rgb{255, 255, 255},
	}
}

// newBucket creates a bucket of colors[start:end] and calculates its bounds
func newBucket(colors []rgb, start int, end int) bucket {
	b := emptyBucket(start)
	for _, c := range colors[start:end] {
		b.update(c)
	}
	b.end = end
	return b
}

func (b *bucket) update(c rgb) {
	if c.r < b.min.r {
		b.min.r = c.r
	}
	if c.g < b.min.g {
		b.min.g = c.g
	}
	if c.b < b.min.b {
		b.min.b = c.b
	}
	if c.r > b.max.r {
		b.max.r = c.r
	}
	if c.g > b.max.g {
		b.max.g = c.g
	}
	if c.b > b.max.b {
		b.max.b = c.b
	}
}

func (b *bucket) len() int {
	return b.end - b.start
}

// uniform reports whether every color of the bucket is the same
func (b *bucket) uniform() bool {
	return b.min == b.max
}

// axis returns the channel with the largest range. Ties prefer green, then
// red
func (b *bucket) axis() colorAxis {
	r := int(b.max.r) - int(b.min.r)
	g := int(b.max.g) - int(b.min.g)
	bl := int(b.max.b) - int(b.min.b)
	switch {
	case g >= r && g >= bl:
		return green
	case r >= bl:
		return red
	default:
		return blue
	}
}

func (b *bucket) mean(colors []rgb) color.RGBA {
	var r, g, bl int
	for _, c := range colors[b.start:b.end] {
		r += int(c.r)
		g += int(c.g)
		bl += int(c.b)
	}
	n := b.len()
	return palette.Opaque(uint8(r/n), uint8(g/n), uint8(bl/n))
}

// median returns the split position of s, sorted along a. The position is
// moved off the median to the closest boundary between two distinct axis
// values, so the halves never share a color
func median(s []rgb, a colorAxis) int {
	m := len(s) / 2
	if a.value(s[m-1]) != a.value(s[m]) {
		return m
	}
	m1 := m - 1
	for m1 > 0 && a.value(s[m1-1]) == a.value(s[m1]) {
		m1--
	}
	m2 := m + 1
	for m2 < len(s) && a.value(s[m2-1]) == a.value(s[m2]) {
		m2++
	}
	// the more equitable cut
	if m1 > len(s)-m2 {
		return m1
	}
	return m2
}

// collection holds the buckets still to be split or averaged and the
// colors already in the palette
type collection struct {
	colors    []rgb
	active    []bucket
	finalized []color.RGBA
	seen      map[color.RGBA]struct{}
	size      int
	progress  progress.Reporter
}

func newCollection(colors []rgb, root bucket, size int, r progress.Reporter) *collection {
	return &collection{
		colors:    colors,
		active:    []bucket{root},
		finalized: make([]color.RGBA, 0, size),
		seen:      make(map[color.RGBA]struct{}, size),
		size:      size,
		progress:  r,
	}
}

func (bc *collection) full() bool {
	return len(bc.finalized) >= bc.size
}

func (bc *collection) total() int {
	return len(bc.finalized) + len(bc.active)
}

// add adds c to the palette. It fails if the palette is full or already
// contains c
func (bc *collection) add(c color.RGBA) bool {
	if bc.full() {
		return false
	}
	if _, ok := bc.seen[c]; ok {
		return false
	}
	bc.seen[c] = struct{}{}
	bc.finalized = append(bc.finalized, c)
	bc.progress.Increment()
	return true
}

// split cuts a non-uniform bucket at the median of its widest channel.
// Single colored halves go to the palette, the others are returned. The
// cut is moved to a value boundary by median, so the halves never share a
// color
func (bc *collection) split(ctx context.Context, b bucket) ([]bucket, error) {
	axis := b.axis()
	s := bc.colors[b.start:b.end]
	if err := psort.Sort(ctx, s, axis.less()); err != nil {
		return nil, err
	}
	m := b.start + median(s, axis)
	halves := make([]bucket, 0, 2)
	for _, half := range [2]bucket{
		newBucket(bc.colors, b.start, m),
		newBucket(bc.colors, m, b.end),
	} {
		if half.uniform() {
			bc.add(half.min.color())
			continue
		}
		halves = append(halves, half)
	}
	return halves, nil
}

// splitBuckets sweeps the active buckets, splitting each once, until the
// palette and the buckets together reach the requested size. Buckets
// created during a sweep are not visited by the same sweep
func (bc *collection) splitBuckets(ctx context.Context) error {
	for bc.total() < bc.size && len(bc.active) > 0 {
		if progress.Canceled(ctx) {
			return ctx.Err()
		}
		splits := 0
		end := len(bc.active)
		for i := 0; i < end && bc.total() < bc.size; {
			halves, err := bc.split(ctx, bc.active[i])
			if err != nil {
				return err
			}
			splits++
			switch len(halves) {
			case 0:
				bc.active = append(bc.active[:i], bc.active[i+1:]...)
				end--
			case 1:
				bc.active[i] = halves[0]
				i++
			default:
				bc.active[i] = halves[0]
				bc.active = append(bc.active, halves[1])
				i++
			}
		}
		if splits == 0 {
			break
		}
	}
	return nil
}

// finalizeBuckets averages the remaining buckets in order. A bucket whose
// mean is already in the palette is split again instead of being dropped
func (bc *collection) finalizeBuckets(ctx context.Context) error {
	for !bc.full() && len(bc.active) > 0 {
		if progress.Canceled(ctx) {
			return ctx.Err()
		}
		b := bc.active[0]
		bc.active = bc.active[1:]
		if bc.add(b.mean(bc.colors)) {
			continue
		}
		halves, err := bc.split(ctx, b)
		if err != nil {
			return err
		}
		bc.active = append(halves, bc.active...)
	}
	return nil
}
