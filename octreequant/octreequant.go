// Package octreequant implements an octree palette generator. Colors are
// sorted into an 8-ary tree over the RGB cube, one bit plane per level, and
// the tree is reduced bottom up until it has no more leaves than the
// requested palette size.
package octreequant

import (
	"context"
	"image/color"

	"github.com/koszeggy/KGySoft.Drawing-sub016/log"
	"github.com/koszeggy/KGySoft.Drawing-sub016/palette"
	"github.com/koszeggy/KGySoft.Drawing-sub016/progress"
)

const maxDepth = 8

// node is an octree node. Children are handles into the arena, 0 meaning no
// child (the root is handle 0 and is never a child)
type node struct {
	children [8]int32
	n        int
	r        int
	g        int
	b        int
}

func (n *node) color() color.RGBA {
	if n.n == 1 {
		return palette.Opaque(uint8(n.r), uint8(n.g), uint8(n.b))
	}
	return palette.Opaque(uint8(n.r/n.n), uint8(n.g/n.n), uint8(n.b/n.n))
}

// Quantizer generates a palette using an octree. The zero value must be
// initialized before use, and a Quantizer must not be reused
type Quantizer struct {
	nodes []node
	// levels[i] holds the nodes created at depth i+1. It drives the
	// reduction, the nodes are owned by their parents
	levels     [][]int32
	levelCount int

	size   int  // requested palette size
	leaves int  // nodes with a nonzero pixel count
	pixels int  // opaque pixels added
	a0     bool // true if any color is transparent
}

// New returns an uninitialized Quantizer
func New() *Quantizer {
	return &Quantizer{}
}

// Initialize prepares the tree for up to width*height colors. A bitLevel
// of 0 derives the tree depth from requestedColors
func (q *Quantizer) Initialize(requestedColors int, bitLevel int, width int, height int) error {
	if err := palette.Validate(requestedColors, bitLevel, width, height); err != nil {
		return err
	}
	q.size = requestedColors
	q.levelCount = bitLevel
	if q.levelCount == 0 {
		q.levelCount = palette.Bits(requestedColors)
		if q.levelCount > maxDepth {
			q.levelCount = maxDepth
		}
	}
	q.levels = make([][]int32, q.levelCount-1)
	q.nodes = make([]node, 1, 256)
	log.Trace("octree: %d levels for %d colors", q.levelCount, requestedColors)
	return nil
}

// AddColor adds an opaque color to the tree. Transparent colors are only
// remembered to reserve the transparent palette entry
func (q *Quantizer) AddColor(c color.NRGBA) {
	if palette.IsTransparent(c) {
		q.a0 = true
		return
	}
	q.pixels++
	if q.addColor(c) {
		q.leaves++
	}
}

// addColor descends to the leaf of c and reports whether the leaf is new
func (q *Quantizer) addColor(c color.NRGBA) bool {
	var h int32
	for level := 0; level < q.levelCount; level++ {
		i := colorIndex(c, level)
		child := q.nodes[h].children[i]
		if child == 0 {
			child = q.newNode(level + 1)
			q.nodes[h].children[i] = child
		}
		h = child
	}
	leaf := &q.nodes[h]
	leaf.r += int(c.R)
	leaf.g += int(c.G)
	leaf.b += int(c.B)
	leaf.n++
	return leaf.n == 1
}

func (q *Quantizer) newNode(depth int) int32 {
	h := int32(len(q.nodes))
	q.nodes = append(q.nodes, node{})
	if depth < q.levelCount {
		q.levels[depth-1] = append(q.levels[depth-1], h)
	}
	return h
}

func colorIndex(c color.NRGBA, level int) int {
	i := 0
	mask := uint8(0x80 >> level)
	if c.R&mask != 0 {
		i |= 4
	}
	if c.G&mask != 0 {
		i |= 2
	}
	if c.B&mask != 0 {
		i |= 1
	}
	return i
}

// GeneratePalette reduces the tree and returns the palette. If ctx is
// canceled a nil palette and ctx.Err() are returned
func (q *Quantizer) GeneratePalette(ctx context.Context) (color.Palette, error) {
	if progress.Canceled(ctx) {
		return nil, ctx.Err()
	}
	target := palette.Target(q.size, q.a0)
	count := q.leaves
	if count > target {
		count = target
	}
	// every merge detaches one node, and a node is detached at most once
	merges := 0
	if q.leaves > target {
		merges = len(q.nodes) - 1
	}
	r := progress.FromContext(ctx)
	r.New(progress.OperationGeneratingPalette, merges+count)

	if merges > 0 {
		log.Debug("octree: reducing %d leaves to %d", q.leaves, target)
		if !q.reduce(ctx, target, r) {
			log.Debug("octree: canceled while reducing")
			return nil, ctx.Err()
		}
	}

	colors := make([]color.RGBA, 0, count)
	var walk func(h int32) bool
	walk = func(h int32) bool {
		n := &q.nodes[h]
		if n.n > 0 {
			colors = append(colors, n.color())
			r.Increment()
			if len(colors) >= target {
				return true
			}
		}
		for _, c := range n.children {
			if c != 0 && walk(c) {
				return true
			}
		}
		return false
	}
	walk(0)
	log.Debug("octree: generated %d colors", len(colors))
	return palette.Build(colors, q.a0), nil
}

// reduce merges nodes from the deepest branching level up until the leaf
// count fits target. It returns false if ctx was canceled
func (q *Quantizer) reduce(ctx context.Context, target int, r progress.Reporter) bool {
	for level := q.levelCount - 2; level >= 0; level-- {
		for _, h := range q.levels[level] {
			if progress.Canceled(ctx) {
				return false
			}
			if q.mergeNodes(h, target, r) {
				return true
			}
		}
		log.Trace("octree: level %d merged, %d leaves left", level+1, q.leaves)
	}
	if progress.Canceled(ctx) {
		return false
	}
	q.mergeNodes(0, target, r)
	return true
}

// Dispose releases the tree. It is safe to call more than once
func (q *Quantizer) Dispose() {
	q.nodes = nil
	q.levels = nil
}
