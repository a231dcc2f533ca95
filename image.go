package quantize

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/mattn/go-sixel"
	"golang.org/x/image/draw"

	"github.com/koszeggy/KGySoft.Drawing-sub016/log"
)

// Alpha value that we consider to be transparent enough to leave a half
// block cell empty
const transparentEnough = 50

// sixelColors is the maximum palette size the sixel encoder takes as is.
// Index 0 is reserved for the transparent key color
const sixelColors = 254

// Resize scales img to fit within w x h pixels. The image will not be
// upscaled, nor will its aspect ratio be changed. A w or h of 0 or less
// leaves that dimension unbounded
func Resize(img image.Image, w int, h int) image.Image {
	wPix := img.Bounds().Dx()
	hPix := img.Bounds().Dy()
	if w <= 0 {
		w = wPix
	}
	if h <= 0 {
		h = hPix
	}
	if wPix <= w && hPix <= h {
		return img
	}
	log.Debug("resizing image from (%d x %d) to fit (%d x %d)", wPix, hPix, w, h)
	// calculate scale factors
	sfX := float64(w) / float64(wPix)
	sfY := float64(h) / float64(hPix)
	sf := sfX
	if sfY < sfX {
		sf = sfY
	}
	newW := int(sf * float64(wPix))
	newH := int(sf * float64(hPix))
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}
	dst := image.NewNRGBA(image.Rect(0, 0, newW, newH))
	draw.NearestNeighbor.Scale(dst, dst.Rect, img, img.Bounds(), draw.Src, nil)
	return dst
}

// EncodeSixel writes img to w as a sixel image. Paletted images with few
// enough colors are passed through, anything else is quantized with opts
// first
func EncodeSixel(ctx context.Context, w io.Writer, img image.Image, opts Options) error {
	var paletted image.Image
	if p, ok := img.(*image.Paletted); ok && len(p.Palette) <= sixelColors {
		// fast-path for paletted images: pass through to sixel
		paletted = p
	} else {
		if opts.Colors == 0 || opts.Colors > sixelColors {
			opts.Colors = sixelColors
		}
		p, err := Paletted(ctx, img, opts)
		if err != nil {
			return err
		}
		paletted = p
	}
	buf := bytes.NewBuffer(nil)
	err := sixel.NewEncoder(buf).Encode(paletted)
	if err != nil {
		return fmt.Errorf("couldn't encode sixel: %w", err)
	}

	// Foot requires that we set the P2 parameter = 1 in order to enable
	// transparency. This doesn't seem to affect other sixel based
	// terminals
	b := buf.Bytes()
	if len(b) > 4 {
		b[4] = 0x31
	}
	_, err = w.Write(b)
	return err
}

// EncodeHalfBlock writes img to w as rows of half block characters, each
// cell capturing 1x2 pixels, colored with RGB SGR sequences. The image is
// quantized with opts first
func EncodeHalfBlock(ctx context.Context, w io.Writer, img image.Image, opts Options) error {
	paletted, err := Paletted(ctx, img, opts)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	b := paletted.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		for x := b.Min.X; x < b.Max.X; x++ {
			top := halfBlockPixel(paletted, x, y)
			bottom := halfBlockPixel(paletted, x, y+1)
			switch {
			case top.A < transparentEnough && bottom.A < transparentEnough:
				bw.WriteString("\x1b[0m ")
			case top.A < transparentEnough:
				// Top is transparent. Use a lower block
				fmt.Fprintf(bw, "\x1b[0;38;2;%d;%d;%dm▄", bottom.R, bottom.G, bottom.B)
			case bottom.A < transparentEnough:
				// Bottom is transparent. Use an upper block
				fmt.Fprintf(bw, "\x1b[0;38;2;%d;%d;%dm▀", top.R, top.G, top.B)
			default:
				fmt.Fprintf(bw, "\x1b[38;2;%d;%d;%d;48;2;%d;%d;%dm▀",
					top.R, top.G, top.B, bottom.R, bottom.G, bottom.B)
			}
		}
		bw.WriteString("\x1b[0m\n")
	}
	return bw.Flush()
}

// halfBlockPixel returns the palette color at x, y. Pixels outside of img
// are transparent
func halfBlockPixel(img *image.Paletted, x int, y int) color.RGBA {
	if !image.Pt(x, y).In(img.Rect) || len(img.Palette) == 0 {
		return color.RGBA{}
	}
	return color.RGBAModel.Convert(img.Palette[img.ColorIndexAt(x, y)]).(color.RGBA)
}
