// Package callguard bounds the nesting depth of re-entrant external
// calls. It protects a single call chain: the recorded trace is cleared
// once the outermost call returns, whatever the outcome.
package callguard

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	defaultMaxDepth     = 50
	defaultSafetyMargin = 0.9
)

// ErrDepthExceeded is returned when a call would push the chain past
// maxDepth scaled by the safety margin. The wrapped call is not run.
var ErrDepthExceeded = errors.New("call depth threshold exceeded")

// Frame records one entry on the guarded call chain.
type Frame struct {
	Event     string
	Detail    string
	Timestamp time.Time
}

// Guard caps nested-call depth and keeps the frame trace for diagnosis.
type Guard struct {
	mu           sync.Mutex
	maxDepth     int
	safetyMargin float64
	logger       *zap.Logger
	frames       []Frame
}

// Option configures a Guard.
type Option func(*Guard)

// WithMaxDepth sets the hard depth cap.
func WithMaxDepth(n int) Option {
	return func(g *Guard) {
		if n > 0 {
			g.maxDepth = n
		}
	}
}

// WithSafetyMargin sets the fraction of maxDepth at which calls are
// refused, in (0, 1].
func WithSafetyMargin(m float64) Option {
	return func(g *Guard) {
		if m > 0 && m <= 1 {
			g.safetyMargin = m
		}
	}
}

// New creates a call-depth guard.
func New(logger *zap.Logger, opts ...Option) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Guard{
		maxDepth:     defaultMaxDepth,
		safetyMargin: defaultSafetyMargin,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// threshold is the effective depth limit after applying the margin.
func (g *Guard) threshold() int {
	return int(float64(g.maxDepth) * g.safetyMargin)
}

// Do runs fn under the guard. If the chain is already at the threshold
// the trace is dumped and ErrDepthExceeded returned without running fn.
// Errors from fn are logged with trace context and returned unchanged;
// the guard never swallows them. When the outermost call exits, the
// trace is cleared regardless of outcome.
func (g *Guard) Do(ctx context.Context, event, detail string, fn func(ctx context.Context) error) error {
	depth, err := g.enter(event, detail)
	if err != nil {
		return err
	}
	defer g.exit(depth)

	if err := fn(ctx); err != nil {
		g.logger.Error("guarded call failed",
			zap.String("event", event),
			zap.Int("depth", depth),
			zap.Error(err))
		return err
	}
	return nil
}

// DoWithData runs fn under the guard and returns its value.
func DoWithData[T any](g *Guard, ctx context.Context, event, detail string, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := g.Do(ctx, event, detail, func(ctx context.Context) error {
		var e error
		result, e = fn(ctx)
		return e
	})
	return result, err
}

// enter pushes a frame, refusing once the threshold is reached.
// It returns the depth of the pushed frame (1-based).
func (g *Guard) enter(event, detail string) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.frames) >= g.threshold() {
		g.dumpLocked(event)
		return 0, errors.Wrapf(ErrDepthExceeded, "event %q at depth %d (max %d, margin %.2f)",
			event, len(g.frames), g.maxDepth, g.safetyMargin)
	}

	g.frames = append(g.frames, Frame{
		Event:     event,
		Detail:    detail,
		Timestamp: time.Now(),
	})
	return len(g.frames), nil
}

// exit pops back to above the given frame. The outermost exit clears
// the whole trace so independent invocations never accumulate depth.
func (g *Guard) exit(depth int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if depth <= 1 {
		g.frames = nil
		return
	}
	if len(g.frames) >= depth {
		g.frames = g.frames[:depth-1]
	}
}

// Depth returns the current chain depth.
func (g *Guard) Depth() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.frames)
}

// Trace returns a copy of the current frame trace.
func (g *Guard) Trace() []Frame {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Frame, len(g.frames))
	copy(out, g.frames)
	return out
}

// dumpLocked logs the full trace for post-mortem diagnosis.
func (g *Guard) dumpLocked(event string) {
	events := make([]string, 0, len(g.frames))
	for _, f := range g.frames {
		events = append(events, f.Event)
	}
	g.logger.Error("call depth threshold exceeded, dumping trace",
		zap.String("refused_event", event),
		zap.Int("depth", len(g.frames)),
		zap.Int("max_depth", g.maxDepth),
		zap.Float64("safety_margin", g.safetyMargin),
		zap.Strings("trace", events))
}
