// Package registry holds the canonical table of named text transformations.
//
// The table is populated once at startup through an explicit list of
// (key, function) pairs and is read-only afterwards:
//
//	r := registry.New()
//	_ = r.Register("upper-case", registry.Pure(strings.ToUpper), registry.WithCategory(registry.CategoryCase))
//	r.Freeze()
//
//	d, ok := r.Lookup("upper-case")
//	for key := range r.Keys() {
//	    fmt.Println(key)
//	}
package registry

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync"
)

// Func is the contract every transformation implements. Implementations
// must be pure with respect to shared state and must return a string for
// any valid UTF-8 input, including degenerate ones.
type Func func(ctx context.Context, text string) (string, error)

// Pure adapts an infallible string function to Func.
func Pure(fn func(string) string) Func {
	return func(_ context.Context, text string) (string, error) {
		return fn(text), nil
	}
}

// Fallible adapts a string function that may reject its input to Func.
func Fallible(fn func(string) (string, error)) Func {
	return func(_ context.Context, text string) (string, error) {
		return fn(text)
	}
}

// Category groups transformations for listing and decides whether
// placeholder preservation may be applied around them.
type Category string

const (
	CategoryCase      Category = "case"
	CategoryStyle     Category = "style"
	CategoryEncoding  Category = "encoding"
	CategoryHash      Category = "hash"
	CategoryEffect    Category = "effect"
	CategoryCleanup   Category = "cleanup"
	CategoryLines     Category = "lines"
	CategoryGenerator Category = "generator"
	CategoryDeveloper Category = "developer"
)

// Categories lists every known category in display order.
func Categories() []Category {
	return []Category{
		CategoryCase,
		CategoryStyle,
		CategoryEncoding,
		CategoryHash,
		CategoryEffect,
		CategoryCleanup,
		CategoryLines,
		CategoryGenerator,
		CategoryDeveloper,
	}
}

// Preserves reports whether placeholder tokens survive transformations in
// this category. Encodings and hashes rewrite the underlying bytes, so a
// token would never come back out intact.
func (c Category) Preserves() bool {
	switch c {
	case CategoryEncoding, CategoryHash:
		return false
	default:
		return true
	}
}

// ParseCategory converts a string to a Category. The boolean is false for
// unknown names.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories() {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Descriptor is one registered transformation.
type Descriptor struct {
	Key         string
	Category    Category
	Description string
	Apply       Func

	// NoPreserve marks transformations whose output depends on every input
	// rune, such as counters and escapers, even though their category would
	// otherwise allow preservation.
	NoPreserve bool
}

// Preserves reports whether placeholder preservation may wrap this
// transformation.
func (d Descriptor) Preserves() bool {
	return !d.NoPreserve && d.Category.Preserves()
}

// Option configures a Descriptor at registration time.
type Option func(*Descriptor)

// WithCategory sets the descriptor category. The default is CategoryCase.
func WithCategory(c Category) Option {
	return func(d *Descriptor) {
		d.Category = c
	}
}

// WithoutPreservation opts a single transformation out of preservation.
func WithoutPreservation() Option {
	return func(d *Descriptor) {
		d.NoPreserve = true
	}
}

// WithDescription sets a short human-readable description used by listings.
func WithDescription(s string) Option {
	return func(d *Descriptor) {
		d.Description = s
	}
}

var (
	// ErrDuplicateKey is returned when a key is registered twice.
	ErrDuplicateKey = errors.New("transform key already registered")

	// ErrFrozen is returned when registering after Freeze.
	ErrFrozen = errors.New("registry is frozen")

	// ErrInvalidDescriptor is returned for empty keys or nil functions.
	ErrInvalidDescriptor = errors.New("invalid transform descriptor")
)

// Registry maps stable string keys to transformations. Lookups are safe for
// concurrent use; registration is expected to finish before the first
// lookup.
type Registry struct {
	mu     sync.RWMutex
	byKey  map[string]Descriptor
	order  []string
	frozen bool
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		byKey: make(map[string]Descriptor),
	}
}

// Register adds a transformation under key.
func (r *Registry) Register(key string, apply Func, opts ...Option) error {
	if key == "" || apply == nil {
		return fmt.Errorf("%w: key %q", ErrInvalidDescriptor, key)
	}

	d := Descriptor{
		Key:      key,
		Category: CategoryCase,
		Apply:    apply,
	}
	for _, opt := range opts {
		opt(&d)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return fmt.Errorf("%w: cannot register %q", ErrFrozen, key)
	}
	if _, exists := r.byKey[key]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateKey, key)
	}

	r.byKey[key] = d
	r.order = append(r.order, key)
	return nil
}

// MustRegister is like Register but panics on error. It is meant for the
// static catalog built at startup.
func (r *Registry) MustRegister(key string, apply Func, opts ...Option) {
	if err := r.Register(key, apply, opts...); err != nil {
		panic(err)
	}
}

// Freeze rejects all further registrations.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Lookup returns the descriptor registered under key.
func (r *Registry) Lookup(key string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.byKey[key]
	return d, ok
}

// Len returns the number of registered transformations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Keys enumerates every registered key in registration order. The sequence
// can be ranged over any number of times.
func (r *Registry) Keys() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, key := range r.snapshot() {
			if !yield(key) {
				return
			}
		}
	}
}

// KeysIn enumerates the keys registered under category c.
func (r *Registry) KeysIn(c Category) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, key := range r.snapshot() {
			d, _ := r.Lookup(key)
			if d.Category != c {
				continue
			}
			if !yield(key) {
				return
			}
		}
	}
}

// Descriptors enumerates registered descriptors in registration order.
func (r *Registry) Descriptors() iter.Seq[Descriptor] {
	return func(yield func(Descriptor) bool) {
		for _, key := range r.snapshot() {
			d, _ := r.Lookup(key)
			if !yield(d) {
				return
			}
		}
	}
}

func (r *Registry) snapshot() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, len(r.order))
	copy(keys, r.order)
	return keys
}
