// Package progress carries progress reporting of long running palette
// operations in a context.Context. Cancellation uses the context itself.
package progress

import "context"

// Operation identifies the step that is currently reported
type Operation int

const (
	OperationNone Operation = iota
	// OperationInitializing is reported while an engine builds its
	// accumulator, such as Wu's moment tables
	OperationInitializing
	// OperationGeneratingPalette is reported while colors are produced
	OperationGeneratingPalette
)

func (o Operation) String() string {
	switch o {
	case OperationInitializing:
		return "initializing"
	case OperationGeneratingPalette:
		return "generating palette"
	default:
		return "none"
	}
}

// Reporter receives progress of an operation. Implementations must be safe
// to call from the goroutine running the operation
type Reporter interface {
	// New starts a new operation with max expected steps
	New(op Operation, max int)
	// Increment advances the current operation by one step
	Increment()
}

type ctxKey struct{}

// WithReporter returns a copy of ctx which reports progress to r
func WithReporter(ctx context.Context, r Reporter) context.Context {
	return context.WithValue(ctx, ctxKey{}, r)
}

// FromContext returns the Reporter stored in ctx, or one which discards
// every report
func FromContext(ctx context.Context) Reporter {
	if r, ok := ctx.Value(ctxKey{}).(Reporter); ok && r != nil {
		return r
	}
	return discard{}
}

type discard struct{}

func (discard) New(Operation, int) {}
func (discard) Increment()         {}

// Canceled reports whether ctx is done. It is polled at the coarse steps of
// the engines
func Canceled(ctx context.Context) bool {
	return ctx.Err() != nil
}

// Counter is a Reporter which only counts. It is not safe for concurrent use
type Counter struct {
	Op    Operation
	Max   int
	Value int
	// Ticks holds the number of increments per operation
	Ticks map[Operation]int
}

func (c *Counter) New(op Operation, max int) {
	c.Op = op
	c.Max = max
	c.Value = 0
}

func (c *Counter) Increment() {
	c.Value += 1
	if c.Ticks == nil {
		c.Ticks = make(map[Operation]int)
	}
	c.Ticks[c.Op] += 1
}
