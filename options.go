package quantize

import (
	"golang.org/x/exp/slog"

	"github.com/koszeggy/KGySoft.Drawing-sub016/log"
)

// DefaultColors is the palette size used when Options.Colors is 0
const DefaultColors = 256

// Options configure how an image is quantized
type Options struct {
	// The engine generating the palette
	Algorithm Algorithm

	// Maximum number of palette entries, including the transparent one.
	// 0 means DefaultColors
	Colors int

	// Precision override of the engine in bits per channel, 1..8. 0 lets
	// the engine decide
	BitLevel int

	// Pixels with an alpha below AlphaThreshold are fed as transparent. 0
	// means 1, so only fully transparent pixels are excluded
	AlphaThreshold uint8

	// A slog.Handler to receive logs. Logs are discarded if nil. The handler
	// is installed process wide with log.SetHandler and stays in place
	// after the call, so concurrent calls with different handlers replace
	// each other. The log level is raised to the most verbose level the
	// handler accepts, never lowered
	LogHandler slog.Handler
}

func (o Options) colors() int {
	if o.Colors == 0 {
		return DefaultColors
	}
	return o.Colors
}

func (o Options) alphaThreshold() uint8 {
	if o.AlphaThreshold == 0 {
		return 1
	}
	return o.AlphaThreshold
}

func (o Options) apply() {
	if o.LogHandler != nil {
		log.SetHandler(o.LogHandler)
		log.RaiseLevel(log.EnabledLevel(o.LogHandler))
	}
}
