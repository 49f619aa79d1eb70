// Package dispatch resolves a transform key against the registry and runs
// the implementation inside an error boundary. Callers only ever see the
// error types declared here, never a raw implementation failure.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bimmerbailey/recase/internal/registry"
)

var (
	// ErrUnknownTransform indicates the requested key is not registered.
	ErrUnknownTransform = errors.New("unknown transformation")

	// ErrTransformExecution indicates the implementation failed or panicked.
	ErrTransformExecution = errors.New("transformation failed")
)

// UnknownTransformError carries the key that could not be resolved.
type UnknownTransformError struct {
	Key string
}

func (e *UnknownTransformError) Error() string {
	return fmt.Sprintf("unknown transformation %q", e.Key)
}

// Is reports whether target is ErrUnknownTransform.
func (e *UnknownTransformError) Is(target error) bool {
	return target == ErrUnknownTransform
}

// ExecutionError is returned when an implementation fails. Error() is
// deliberately generic; the underlying cause is available through
// errors.Unwrap for in-process logging only.
type ExecutionError struct {
	Key   string
	cause error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("transformation %q failed", e.Key)
}

// Unwrap returns the underlying failure.
func (e *ExecutionError) Unwrap() error {
	return e.cause
}

// Is reports whether target is ErrTransformExecution.
func (e *ExecutionError) Is(target error) bool {
	return target == ErrTransformExecution
}

// Lookuper resolves keys to descriptors. *registry.Registry satisfies it.
type Lookuper interface {
	Lookup(key string) (registry.Descriptor, bool)
}

// Dispatcher runs registered transformations.
type Dispatcher struct {
	reg    Lookuper
	logger *slog.Logger
}

// New creates a Dispatcher over reg. A nil logger falls back to
// slog.Default().
func New(reg Lookuper, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{reg: reg, logger: logger}
}

// Resolve returns the descriptor for key or an *UnknownTransformError.
func (d *Dispatcher) Resolve(key string) (registry.Descriptor, error) {
	desc, ok := d.reg.Lookup(key)
	if !ok {
		return registry.Descriptor{}, &UnknownTransformError{Key: key}
	}
	return desc, nil
}

// Transform applies the transformation registered under key to text.
//
// Empty text is returned as is without invoking the implementation. Unknown
// keys are rejected even for empty text.
func (d *Dispatcher) Transform(ctx context.Context, text, key string) (string, error) {
	desc, err := d.Resolve(key)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", nil
	}
	return d.run(ctx, desc, text)
}

func (d *Dispatcher) run(ctx context.Context, desc registry.Descriptor, text string) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = d.fail(desc.Key, text, fmt.Errorf("panic: %v", r))
			out = ""
		}
	}()

	out, err = desc.Apply(ctx, text)
	if err != nil {
		return "", d.fail(desc.Key, text, err)
	}
	return out, nil
}

func (d *Dispatcher) fail(key, text string, cause error) error {
	d.logger.Error("transformation failed",
		"key", key,
		"input_length", len(text),
		"error", cause,
	)
	return &ExecutionError{Key: key, cause: cause}
}
