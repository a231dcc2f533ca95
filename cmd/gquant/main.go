// gquant reduces the colors of an image. The result is written as a PNG,
// GIF or BMP file, or drawn to the terminal with sixels or half blocks.
//
//	gquant -a wu -n 16 -o out.png in.jpg
//	gquant -sixel -w 640 in.png
//	gquant -print -n 8 in.png
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
	"golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/term"

	quantize "github.com/koszeggy/KGySoft.Drawing-sub016"
	"github.com/koszeggy/KGySoft.Drawing-sub016/log"
	"github.com/koszeggy/KGySoft.Drawing-sub016/progress"
)

var errUsage = errors.New("usage: gquant [flags] <image|->")

type config struct {
	opts    quantize.Options
	output  string
	sixel   bool
	preview bool
	print   bool
	width   int
	height  int
	timeout time.Duration
	verbose bool
	trace   bool
	input   string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (config, error) {
	var (
		cfg  config
		alg  string
		alph uint
	)
	fs := flag.NewFlagSet("gquant", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&alg, "a", "octree", "algorithm: octree, mediancut or wu")
	fs.IntVar(&cfg.opts.Colors, "n", quantize.DefaultColors, "maximum number of palette entries")
	fs.IntVar(&cfg.opts.BitLevel, "bits", 0, "bits per channel used by the engine, 1..8. 0 picks a default")
	fs.UintVar(&alph, "alpha", 1, "pixels with an alpha below this value are transparent")
	fs.StringVar(&cfg.output, "o", "", "output file, the format is chosen by the extension (.png, .gif or .bmp)")
	fs.BoolVar(&cfg.sixel, "sixel", false, "draw the result to stdout as sixels")
	fs.BoolVar(&cfg.preview, "preview", false, "draw the result to stdout with half blocks")
	fs.BoolVar(&cfg.print, "print", false, "print the palette")
	fs.IntVar(&cfg.width, "w", 0, "fit the image within this width before quantizing")
	fs.IntVar(&cfg.height, "h", 0, "fit the image within this height before quantizing")
	fs.DurationVar(&cfg.timeout, "timeout", 0, "give up after this long")
	fs.BoolVar(&cfg.verbose, "v", false, "log to stderr")
	fs.BoolVar(&cfg.trace, "trace", false, "log to stderr, including trace messages")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if fs.NArg() != 1 {
		return cfg, errUsage
	}
	cfg.input = fs.Arg(0)

	var err error
	cfg.opts.Algorithm, err = quantize.ParseAlgorithm(alg)
	if err != nil {
		return cfg, err
	}
	if alph > 255 {
		return cfg, fmt.Errorf("alpha must be 0..255, got %d", alph)
	}
	cfg.opts.AlphaThreshold = uint8(alph)
	if cfg.output == "" && !cfg.sixel && !cfg.preview {
		cfg.print = true
	}
	return cfg, nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer, stderr io.Writer) error {
	cfg, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	switch {
	case cfg.trace:
		log.SetOutput(stderr)
		log.SetLevel(log.LevelTrace)
	case cfg.verbose:
		log.SetOutput(stderr)
		log.SetLevel(log.LevelDebug)
	}

	if cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.timeout)
		defer cancel()
	}

	img, err := decode(cfg.input, stdin)
	if err != nil {
		return err
	}
	if cfg.width > 0 || cfg.height > 0 {
		img = quantize.Resize(img, cfg.width, cfg.height)
	}

	if f, ok := stderr.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		line := showProgress(f)
		defer line.Stop()
		ctx = progress.WithReporter(ctx, line.queue)
	}

	paletted, err := quantize.Paletted(ctx, img, cfg.opts)
	if err != nil {
		return err
	}
	log.Info("generated %d colors", len(paletted.Palette))

	if cfg.output != "" {
		if err := write(cfg.output, paletted); err != nil {
			return err
		}
	}
	switch {
	case cfg.sixel:
		if err := quantize.EncodeSixel(ctx, stdout, paletted, cfg.opts); err != nil {
			return err
		}
	case cfg.preview:
		if err := quantize.EncodeHalfBlock(ctx, stdout, paletted, cfg.opts); err != nil {
			return err
		}
	}
	if cfg.print {
		for _, c := range paletted.Palette {
			r, g, b, a := c.RGBA()
			fmt.Fprintf(stdout, "#%02x%02x%02x%02x\n", r>>8, g>>8, b>>8, a>>8)
		}
	}
	return nil
}

func decode(name string, stdin io.Reader) (image.Image, error) {
	var r io.Reader = stdin
	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("couldn't decode %s: %w", name, err)
	}
	log.Debug("decoded %s image %s", format, img.Bounds())
	return img, nil
}

func write(name string, img *image.Paletted) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		err = png.Encode(f, img)
	case ".gif":
		err = gif.Encode(f, img, &gif.Options{NumColors: len(img.Palette)})
	case ".bmp":
		err = bmp.Encode(f, img)
	default:
		err = fmt.Errorf("unsupported output format: %s", name)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

type progressLine struct {
	queue *progress.Queue
	stop  chan struct{}
	done  chan struct{}
}

// showProgress draws progress events on a single, rewritten line of f
func showProgress(f *os.File) *progressLine {
	p := &progressLine{
		queue: progress.NewQueue(),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		width = 80
	}
	go func() {
		defer close(p.done)
		for {
			select {
			case ev := <-p.queue.Chan():
				fmt.Fprintf(f, "\r\x1b[K%s", runewidth.Truncate(formatEvent(ev, width), width-1, "…"))
			case <-p.stop:
				fmt.Fprint(f, "\r\x1b[K")
				return
			}
		}
	}()
	return p
}

func (p *progressLine) Stop() {
	close(p.stop)
	p.queue.Close()
	<-p.done
}

// formatEvent renders ev as a label, a bar and a percentage
func formatEvent(ev progress.Event, width int) string {
	label := ev.Op.String()
	if ev.Max <= 0 {
		return label
	}
	value := ev.Value
	if value > ev.Max {
		value = ev.Max
	}
	pct := value * 100 / ev.Max
	barWidth := width - uniseg.StringWidth(label) - 10
	if barWidth < 10 {
		return fmt.Sprintf("%s %3d%%", label, pct)
	}
	filled := barWidth * value / ev.Max
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	return fmt.Sprintf("%s %s %3d%%", label, bar, pct)
}
