// Package transforms populates a registry with the built-in catalog of
// text transformations.
//
// Every transformation is a plain function from string to string (or to
// string and error for decoders and parsers). They are grouped per category
// in explicit tables so the full catalog can be read top to bottom:
//
//	r, err := transforms.Default(style.NewBuiltin())
//	if err != nil {
//	    return err
//	}
//	d, _ := r.Lookup("snake-case")
//	out, _ := d.Apply(ctx, "Hello World")
package transforms

import (
	"context"
	"fmt"

	"github.com/bimmerbailey/recase/internal/registry"
	"github.com/bimmerbailey/recase/internal/style"
)

type entry struct {
	key  string
	desc string
	fn   registry.Func
	opts []registry.Option
}

func pure(key, desc string, fn func(string) string, opts ...registry.Option) entry {
	return entry{key: key, desc: desc, fn: registry.Pure(fn), opts: opts}
}

func fallible(key, desc string, fn func(string) (string, error), opts ...registry.Option) entry {
	return entry{key: key, desc: desc, fn: registry.Fallible(fn), opts: opts}
}

// Register adds the whole catalog to r. Style guide keys are served by
// guides.
func Register(r *registry.Registry, guides style.Provider) error {
	if guides == nil {
		return fmt.Errorf("transforms: style provider cannot be nil")
	}

	groups := []struct {
		category registry.Category
		entries  []entry
	}{
		{registry.CategoryCase, caseEntries()},
		{registry.CategoryStyle, styleEntries(guides)},
		{registry.CategoryEncoding, encodingEntries()},
		{registry.CategoryHash, hashEntries()},
		{registry.CategoryEffect, effectEntries()},
		{registry.CategoryCleanup, cleanupEntries()},
		{registry.CategoryLines, lineEntries()},
		{registry.CategoryGenerator, generatorEntries()},
		{registry.CategoryDeveloper, developerEntries()},
	}

	for _, g := range groups {
		for _, e := range g.entries {
			opts := append([]registry.Option{
				registry.WithCategory(g.category),
				registry.WithDescription(e.desc),
			}, e.opts...)
			if err := r.Register(e.key, e.fn, opts...); err != nil {
				return fmt.Errorf("transforms: %w", err)
			}
		}
	}
	return nil
}

// Default returns a frozen registry holding the full catalog.
func Default(guides style.Provider) (*registry.Registry, error) {
	r := registry.New()
	if err := Register(r, guides); err != nil {
		return nil, err
	}
	r.Freeze()
	return r, nil
}

func styleEntries(guides style.Provider) []entry {
	out := make([]entry, 0, len(style.Guides))
	for _, g := range style.Guides {
		key := g.Key
		out = append(out, entry{
			key:  key,
			desc: g.Name + ": " + g.Description,
			fn: func(ctx context.Context, text string) (string, error) {
				return guides.Apply(ctx, text, key)
			},
		})
	}
	return out
}
