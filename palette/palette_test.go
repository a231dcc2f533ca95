package palette

import (
	"errors"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		colors   int
		bitLevel int
		width    int
		height   int
		err      error
	}{
		{name: "minimum", colors: 2},
		{name: "maximum", colors: 65536, bitLevel: 8, width: 10, height: 10},
		{name: "too few", colors: 1, err: ErrColorCount},
		{name: "too many", colors: 65537, err: ErrColorCount},
		{name: "negative bits", colors: 16, bitLevel: -1, err: ErrBitLevel},
		{name: "too many bits", colors: 16, bitLevel: 9, err: ErrBitLevel},
		{name: "negative width", colors: 16, width: -1, err: ErrSize},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := Validate(test.colors, test.bitLevel, test.width, test.height)
			if test.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, test.err), "got %v", err)
		})
	}
}

func TestBits(t *testing.T) {
	tests := []struct {
		n    int
		bits int
	}{
		{2, 1},
		{3, 2},
		{4, 2},
		{16, 4},
		{17, 5},
		{256, 8},
		{65536, 16},
	}
	for _, test := range tests {
		assert.Equal(t, test.bits, Bits(test.n), "n=%d", test.n)
	}
}

func TestBrightness(t *testing.T) {
	assert.Equal(t, 0, Brightness(Opaque(0, 0, 0)))
	assert.Equal(t, 255, Brightness(Opaque(255, 255, 255)))
	// green is perceived brighter than red, red brighter than blue
	assert.Greater(t, Brightness(Opaque(0, 255, 0)), Brightness(Opaque(255, 0, 0)))
	assert.Greater(t, Brightness(Opaque(255, 0, 0)), Brightness(Opaque(0, 0, 255)))
}

func TestBuild(t *testing.T) {
	colors := []color.RGBA{Opaque(1, 2, 3), Opaque(4, 5, 6)}

	p := Build(colors, false)
	assert.Equal(t, color.Palette{Opaque(1, 2, 3), Opaque(4, 5, 6)}, p)

	p = Build(colors, true)
	assert.Len(t, p, 3)
	assert.Equal(t, Transparent, p[2])

	p = Build(nil, true)
	assert.Equal(t, color.Palette{Transparent}, p)
}

func TestTarget(t *testing.T) {
	assert.Equal(t, 256, Target(256, false))
	assert.Equal(t, 255, Target(256, true))
}
