package wu

import (
	"context"
	"errors"
	"image/color"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koszeggy/KGySoft.Drawing-sub016/internal/quanttest"
	"github.com/koszeggy/KGySoft.Drawing-sub016/palette"
	"github.com/koszeggy/KGySoft.Drawing-sub016/progress"
)

func TestMomentsVolume(t *testing.T) {
	h := newHistogram(3)
	for _, c := range quanttest.Random(3, 2000) {
		h.add(c.R, c.G, c.B)
	}
	raw := append([]int64(nil), h.wt...)
	rawR := append([]int64(nil), h.mr...)
	rawSq := append([]float64(nil), h.m2...)
	require.NoError(t, h.moments(context.Background(), progress.FromContext(context.Background())))

	rnd := rand.New(rand.NewSource(1))
	last := h.side - 1
	for i := 0; i < 200; i++ {
		r0, g0, b0 := rnd.Intn(last), rnd.Intn(last), rnd.Intn(last)
		b := box{
			r0: r0, r1: r0 + 1 + rnd.Intn(last-r0),
			g0: g0, g1: g0 + 1 + rnd.Intn(last-g0),
			b0: b0, b1: b0 + 1 + rnd.Intn(last-b0),
		}
		var w, sr int64
		var sq float64
		for r := b.r0 + 1; r <= b.r1; r++ {
			for g := b.g0 + 1; g <= b.g1; g++ {
				for bl := b.b0 + 1; bl <= b.b1; bl++ {
					w += raw[h.index(r, g, bl)]
					sr += rawR[h.index(r, g, bl)]
					sq += rawSq[h.index(r, g, bl)]
				}
			}
		}
		assert.Equal(t, w, volume(h, &b, h.wt))
		assert.Equal(t, sr, volume(h, &b, h.mr))
		assert.InDelta(t, sq, volume(h, &b, h.m2), 1e-6)
	}
}

func TestWholeVolume(t *testing.T) {
	h := newHistogram(5)
	colors := quanttest.Random(4, 500)
	for _, c := range colors {
		h.add(c.R, c.G, c.B)
	}
	require.NoError(t, h.moments(context.Background(), progress.FromContext(context.Background())))
	last := h.side - 1
	whole := box{r1: last, g1: last, b1: last}
	assert.Equal(t, int64(len(colors)), volume(h, &whole, h.wt))
}

func TestInitialize(t *testing.T) {
	tests := []struct {
		name     string
		colors   int
		bitLevel int
		bits     int
		err      error
	}{
		{name: "default", colors: 256, bits: 5},
		{name: "small palette", colors: 2, bits: 5},
		{name: "large palette", colors: 257, bits: 6},
		{name: "override", colors: 16, bitLevel: 3, bits: 3},
		{name: "finer override", colors: 16, bitLevel: 6, bits: 6},
		{name: "too many colors", colors: 65537, err: palette.ErrColorCount},
		{name: "bad bit level", colors: 16, bitLevel: 9, err: palette.ErrBitLevel},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			q := New()
			defer q.Dispose()
			err := q.Initialize(test.colors, test.bitLevel, 1, 1)
			if test.err != nil {
				assert.True(t, errors.Is(err, test.err), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.bits, q.hist.bits)
			assert.Equal(t, 1<<test.bits+1, q.hist.side)
		})
	}
}

func TestSingleColor(t *testing.T) {
	c := quanttest.Opaque(12, 200, 99)
	for _, n := range []int{1, 2, 1000} {
		p, err := quanttest.Run(context.Background(), New(), 256, 0, quanttest.Repeat(c, n))
		require.NoError(t, err)
		assert.Equal(t, color.Palette{quanttest.RGBA(c)}, p, "n=%d", n)
	}
}

func TestSingleTransparentPixel(t *testing.T) {
	p, err := quanttest.Run(context.Background(), New(), 4, 0, []color.NRGBA{quanttest.Transparent})
	require.NoError(t, err)
	assert.Equal(t, color.Palette{palette.Transparent}, p)
}

func TestBlackAndWhite(t *testing.T) {
	colors := append(quanttest.Repeat(quanttest.Opaque(0, 0, 0), 100), quanttest.Repeat(quanttest.Opaque(255, 255, 255), 100)...)
	p, err := quanttest.Run(context.Background(), New(), 2, 0, colors)
	require.NoError(t, err)
	assert.ElementsMatch(t, color.Palette{palette.Opaque(0, 0, 0), palette.Opaque(255, 255, 255)}, p)
}

func TestCube(t *testing.T) {
	p, err := quanttest.Run(context.Background(), New(), 256, 0, quanttest.Cube(16))
	require.NoError(t, err)
	assert.Len(t, p, 256)
	assert.Empty(t, quanttest.Duplicates(p))
}

func TestExactColors(t *testing.T) {
	// multiples of 32 never share a 5 bit histogram cell
	rnd := rand.New(rand.NewSource(5))
	want := make(map[color.RGBA]bool)
	var colors []color.NRGBA
	for len(want) < 40 {
		c := quanttest.Opaque(uint8(rnd.Intn(8)*32), uint8(rnd.Intn(8)*32), uint8(rnd.Intn(8)*32))
		want[quanttest.RGBA(c)] = true
		colors = append(colors, quanttest.Repeat(c, 1+rnd.Intn(4))...)
	}
	p, err := quanttest.Run(context.Background(), New(), 64, 0, colors)
	require.NoError(t, err)
	assert.Len(t, p, len(want))
	assert.Equal(t, want, quanttest.Set(p))
}

func TestPaletteSize(t *testing.T) {
	tests := []struct {
		name        string
		colors      []color.NRGBA
		requested   int
		transparent bool
	}{
		{name: "random to 16", colors: quanttest.Random(1, 5000), requested: 16},
		{name: "random to 2", colors: quanttest.Random(2, 5000), requested: 2},
		{name: "random to 2 with transparency", colors: quanttest.Random(3, 5000), requested: 2, transparent: true},
		{name: "random to 256 with transparency", colors: quanttest.Random(4, 5000), requested: 256, transparent: true},
		{name: "random to 1024", colors: quanttest.Random(5, 20000), requested: 1024},
		{name: "random to 65536", colors: quanttest.Random(6, 200_000), requested: palette.MaxColors},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			colors := test.colors
			if test.transparent {
				colors = append(colors[:len(colors):len(colors)], quanttest.Transparent)
			}
			p, err := quanttest.Run(context.Background(), New(), test.requested, 0, colors)
			require.NoError(t, err)
			require.NotEmpty(t, p)
			assert.LessOrEqual(t, len(p), test.requested)
			if test.transparent {
				assert.Equal(t, palette.Transparent, p[len(p)-1])
				assert.LessOrEqual(t, len(p)-1, palette.Target(test.requested, true))
			}
		})
	}
}

func TestProgress(t *testing.T) {
	c := &progress.Counter{}
	ctx := progress.WithReporter(context.Background(), c)
	p, err := quanttest.Run(ctx, New(), 16, 0, quanttest.Random(11, 2000))
	require.NoError(t, err)
	assert.Equal(t, 32, c.Ticks[progress.OperationInitializing])
	assert.Equal(t, len(p)-1, c.Ticks[progress.OperationGeneratingPalette])
}

func TestCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	q := New()
	require.NoError(t, q.Initialize(16, 0, 100, 1))
	defer q.Dispose()
	for _, c := range quanttest.Random(9, 100) {
		q.AddColor(c)
	}
	before := append([]int64(nil), q.hist.wt...)
	p, err := q.GeneratePalette(ctx)
	assert.Nil(t, p)
	assert.True(t, errors.Is(err, context.Canceled))
	// the histogram was not turned into moments
	assert.Equal(t, before, q.hist.wt)
}

func TestCanceledDuringPartition(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := &quanttest.CancelAfter{Cancel: cancel, Op: progress.OperationGeneratingPalette, Ticks: 3}
	ctx = progress.WithReporter(ctx, r)
	p, err := quanttest.Run(ctx, New(), 64, 0, quanttest.Random(12, 3000))
	assert.Nil(t, p)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestDispose(t *testing.T) {
	q := New()
	require.NoError(t, q.Initialize(16, 0, 1, 1))
	q.AddColor(quanttest.Opaque(1, 1, 1))
	q.Dispose()
	q.Dispose()
	assert.Nil(t, q.hist)

	// a pooled histogram comes back cleared
	h := getHistogram(5)
	defer putHistogram(h)
	for _, v := range h.wt {
		if v != 0 {
			t.Fatal("histogram from pool is not cleared")
		}
	}
}
