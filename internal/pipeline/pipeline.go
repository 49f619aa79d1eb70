// Package pipeline composes preservation and dispatch into the single entry
// point used by every surface: preserve, transform, restore.
//
// Usage:
//
//	p := pipeline.New(dispatcher, engine,
//	    pipeline.WithLimits(100*1024, 5*1024*1024),
//	    pipeline.WithLogger(logger),
//	)
//
//	res, err := p.Run(ctx, pipeline.Request{
//	    Text:         "Contact me at a@b.com NOW",
//	    Key:          "upper-case",
//	    Preservation: preserve.Config{Emails: true},
//	})
//	if err != nil {
//	    // res.Text still holds the untouched input
//	}
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/bimmerbailey/recase/internal/dispatch"
	"github.com/bimmerbailey/recase/internal/preserve"
)

const (
	// DefaultLargeBytes is the size above which input is treated as large.
	DefaultLargeBytes = 100 * 1024

	// DefaultMaxBytes is the hard ceiling; larger input is rejected.
	DefaultMaxBytes = 5 * 1024 * 1024
)

var (
	// ErrEncoding indicates the input is not valid UTF-8.
	ErrEncoding = errors.New("input is not valid UTF-8")

	// ErrInputTooLarge indicates the input exceeds the hard ceiling.
	ErrInputTooLarge = errors.New("input too large")
)

// TooLargeError reports the rejected size and the ceiling it exceeded.
type TooLargeError struct {
	Size int
	Max  int
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("input too large: %d bytes exceeds the %d byte limit", e.Size, e.Max)
}

// Is reports whether target is ErrInputTooLarge.
func (e *TooLargeError) Is(target error) bool {
	return target == ErrInputTooLarge
}

// Tier classifies input by size.
type Tier string

const (
	TierNormal Tier = "normal"
	TierLarge  Tier = "large"
)

// Stage names a step of Run, reported through ProgressFunc.
type Stage string

const (
	StagePreserve  Stage = "preserve"
	StageTransform Stage = "transform"
	StageRestore   Stage = "restore"
	StageDone      Stage = "done"
)

// ProgressFunc is called at the start of each stage for large input.
type ProgressFunc func(stage Stage, size int)

// Request is one transformation invocation.
type Request struct {
	Text         string
	Key          string
	Preservation preserve.Config

	// Highlight, when set, renders each restored span instead of its
	// plain original text.
	Highlight func(preserve.Span) string
}

// Result is the outcome of Run. On failure Text holds the original input.
type Result struct {
	Text     string                               `json:"result"`
	Warnings []preserve.MissingPlaceholderWarning `json:"warnings,omitempty"`
	Tier     Tier                                 `json:"tier"`
	Spans    []preserve.Span                      `json:"spans,omitempty"`
	Duration time.Duration                        `json:"duration"`
}

// Pipeline runs transformations with preservation and a size policy. It
// holds no per-call state and is safe for concurrent use.
type Pipeline struct {
	dispatcher *dispatch.Dispatcher
	engine     *preserve.Engine
	largeBytes int
	maxBytes   int
	progress   ProgressFunc
	metrics    *Metrics
	logger     *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLimits sets the large-tier threshold and the hard ceiling in bytes.
// Non-positive values keep the defaults.
func WithLimits(largeBytes, maxBytes int) Option {
	return func(p *Pipeline) {
		if largeBytes > 0 {
			p.largeBytes = largeBytes
		}
		if maxBytes > 0 {
			p.maxBytes = maxBytes
		}
	}
}

// WithProgress sets the callback used to signal stages for large input.
func WithProgress(fn ProgressFunc) Option {
	return func(p *Pipeline) {
		p.progress = fn
	}
}

// WithMetrics records run outcomes into m.
func WithMetrics(m *Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a Pipeline.
func New(d *dispatch.Dispatcher, e *preserve.Engine, opts ...Option) *Pipeline {
	p := &Pipeline{
		dispatcher: d,
		engine:     e,
		largeBytes: DefaultLargeBytes,
		maxBytes:   DefaultMaxBytes,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// MaxBytes returns the configured hard ceiling.
func (p *Pipeline) MaxBytes() int {
	return p.maxBytes
}

// LargeBytes returns the configured large-tier threshold.
func (p *Pipeline) LargeBytes() int {
	return p.largeBytes
}

// TierFor classifies an input of n bytes.
func (p *Pipeline) TierFor(n int) Tier {
	if n > p.largeBytes {
		return TierLarge
	}
	return TierNormal
}

// Run preserves protected substrings, applies the transformation and
// restores the substrings. The returned Result is never nil; when err is
// non-nil its Text is the original input.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	size := len(req.Text)
	res := &Result{Text: req.Text, Tier: p.TierFor(size)}

	out, err := p.run(ctx, req, res)
	res.Duration = time.Since(start)
	p.metrics.observe(req.Key, res, err)

	if err != nil {
		res.Text = req.Text
		res.Warnings = nil
		res.Spans = nil
		return res, err
	}
	res.Text = out
	return res, nil
}

func (p *Pipeline) run(ctx context.Context, req Request, res *Result) (string, error) {
	size := len(req.Text)

	if !utf8.ValidString(req.Text) {
		return "", ErrEncoding
	}
	if size > p.maxBytes {
		return "", &TooLargeError{Size: size, Max: p.maxBytes}
	}

	desc, err := p.dispatcher.Resolve(req.Key)
	if err != nil {
		return "", err
	}

	if res.Tier == TierLarge {
		p.logger.Info("processing large input", "key", req.Key, "bytes", size)
	}

	protected := req.Text
	preserving := req.Preservation.Any()
	if preserving && !desc.Preserves() {
		p.logger.Debug("preservation skipped for category", "key", req.Key, "category", desc.Category)
		preserving = false
	}
	if preserving {
		p.signal(res.Tier, StagePreserve, size)
		protected, res.Spans, err = p.engine.Preserve(req.Text, req.Preservation)
		if err != nil {
			return "", fmt.Errorf("preserve: %w", err)
		}
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	p.signal(res.Tier, StageTransform, size)
	out, err := p.dispatcher.Transform(ctx, protected, req.Key)
	if err != nil {
		return "", err
	}

	if len(res.Spans) > 0 {
		p.signal(res.Tier, StageRestore, size)
		if req.Highlight != nil {
			out, res.Warnings = p.engine.RestoreWith(out, res.Spans, req.Highlight)
		} else {
			out, res.Warnings = p.engine.Restore(out, res.Spans)
		}
		for _, w := range res.Warnings {
			p.logger.Warn("placeholder lost during transformation", "key", req.Key, "category", w.Category, "index", w.Index)
		}
	}

	p.signal(res.Tier, StageDone, size)
	return out, nil
}

func (p *Pipeline) signal(tier Tier, stage Stage, size int) {
	if tier != TierLarge || p.progress == nil {
		return
	}
	p.progress(stage, size)
}
