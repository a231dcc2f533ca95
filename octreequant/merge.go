package octreequant

import (
	"golang.org/x/exp/slices"

	"github.com/koszeggy/KGySoft.Drawing-sub016/palette"
	"github.com/koszeggy/KGySoft.Drawing-sub016/progress"
)

// below this many remaining removals, children are merged by visual
// significance instead of pixel count
const brightnessThreshold = 8

type mergeCandidate struct {
	index int
	key   float64
}

// deepStats sums a node with its direct children. Reduction never goes more
// than two levels below the scanned depth, so deeper nodes are ignored
func (q *Quantizer) deepStats(h int32) (n, r, g, b int) {
	nd := &q.nodes[h]
	n, r, g, b = nd.n, nd.r, nd.g, nd.b
	for _, c := range nd.children {
		if c == 0 {
			continue
		}
		cn := &q.nodes[c]
		n += cn.n
		r += cn.r
		g += cn.g
		b += cn.b
	}
	return n, r, g, b
}

// mergeNodes merges the children of h into h, the least significant first,
// until the leaf count fits target. It reports whether target was reached
func (q *Quantizer) mergeNodes(h int32, target int, r progress.Reporter) bool {
	if q.leaves <= target {
		return true
	}
	byBrightness := q.leaves-target < brightnessThreshold
	candidates := make([]mergeCandidate, 0, 8)
	for i, c := range q.nodes[h].children {
		if c == 0 {
			continue
		}
		n, sr, sg, sb := q.deepStats(c)
		key := float64(n)
		if byBrightness {
			var brightness int
			if n > 0 {
				brightness = palette.Brightness(palette.Opaque(uint8(sr/n), uint8(sg/n), uint8(sb/n)))
			}
			key = float64(brightness)
			if target > 2 && q.pixels > 0 {
				key = key * float64(n) / float64(q.pixels)
			}
		}
		candidates = append(candidates, mergeCandidate{index: i, key: key})
	}
	slices.SortStableFunc(candidates, func(a, b mergeCandidate) bool {
		return a.key < b.key
	})
	for _, c := range candidates {
		q.absorb(h, c.index)
		r.Increment()
		if q.leaves <= target {
			return true
		}
	}
	return false
}

// absorb merges the subtree of the child at index i into h and drops the
// child
func (q *Quantizer) absorb(h int32, i int) {
	c := q.nodes[h].children[i]
	q.nodes[h].children[i] = 0
	var sum node
	removed := q.collect(c, &sum)
	parent := &q.nodes[h]
	if parent.n == 0 && sum.n > 0 {
		q.leaves++
	}
	parent.n += sum.n
	parent.r += sum.r
	parent.g += sum.g
	parent.b += sum.b
	q.leaves -= removed
}

// collect adds the counts and sums of the subtree of h to sum and returns
// how many colored nodes it contained
func (q *Quantizer) collect(h int32, sum *node) int {
	nd := &q.nodes[h]
	removed := 0
	if nd.n > 0 {
		removed = 1
		sum.n += nd.n
		sum.r += nd.r
		sum.g += nd.g
		sum.b += nd.b
	}
	for _, c := range nd.children {
		if c != 0 {
			removed += q.collect(c, sum)
		}
	}
	return removed
}
