package quantize_test

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"os"

	quantize "github.com/koszeggy/KGySoft.Drawing-sub016"
	"github.com/koszeggy/KGySoft.Drawing-sub016/log"
	"github.com/koszeggy/KGySoft.Drawing-sub016/progress"
)

func ExamplePalette() {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(2, 0, color.NRGBA{B: 255, A: 255})
	// The last pixel stays fully transparent

	p, err := quantize.Palette(context.Background(), img, quantize.Options{
		Algorithm: quantize.MedianCut,
		Colors:    16,
	})
	if err != nil {
		panic(err)
	}
	// The transparent entry is always the last one
	fmt.Println(len(p), p[len(p)-1])
	// Output: 3 {0 0 0 0}
}

func ExampleNewEngine() {
	e, err := quantize.NewEngine(quantize.Wu)
	if err != nil {
		panic(err)
	}
	defer e.Dispose()
	if err := e.Initialize(2, 0, 2, 1); err != nil {
		panic(err)
	}
	e.AddColor(color.NRGBA{R: 40, G: 40, B: 40, A: 255})
	e.AddColor(color.NRGBA{R: 200, G: 200, B: 200, A: 255})
	p, err := e.GeneratePalette(context.Background())
	if err != nil {
		panic(err)
	}
	fmt.Println(len(p))
	// Output: 2
}

func ExampleOptions_logging() {
	// Send engine logs to stderr
	log.SetOutput(os.Stderr)
	log.SetLevel(log.LevelDebug)
	defer log.SetHandler(nil)
	defer log.SetLevel(log.LevelError)

	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	_, _ = quantize.Palette(context.Background(), img, quantize.Options{Algorithm: quantize.Octree})
	fmt.Println("done")
	// Output: done
}

func ExampleQuantizer() {
	// Quantizer plugs into image/gif and anything else taking a
	// draw.Quantizer
	q := quantize.Quantizer{Options: quantize.Options{Algorithm: quantize.Wu}}
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	p := q.Quantize(make(color.Palette, 0, 4), img)
	fmt.Println(len(p))
	// Output: 1
}

func Example_progress() {
	// Progress events are delivered on a channel while the palette is
	// generated
	q := progress.NewQueue()
	ctx := progress.WithReporter(context.Background(), q)
	stop := make(chan struct{})
	go func() {
		for {
			select {
			case ev := <-q.Chan():
				_ = ev.Value
			case <-stop:
				return
			}
		}
	}()
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	_, err := quantize.Palette(ctx, img, quantize.Options{Algorithm: quantize.Wu})
	close(stop)
	q.Close()
	fmt.Println(err)
	// Output: <nil>
}
