// Package style applies publication style guides to headings and prose.
//
// Style guides are reached through the Provider interface so the rule-based
// Builtin implementation can be swapped for an LLM-backed one without the
// transformation catalog noticing.
package style

import (
	"context"
	"errors"
	"fmt"
)

// Provider rewrites text according to the style guide named by key.
// Implementations must leave private-use code points untouched.
type Provider interface {
	Apply(ctx context.Context, text, key string) (string, error)
}

// ErrUnknownGuide is returned for keys that name no style guide.
var ErrUnknownGuide = errors.New("unknown style guide")

// Guide describes one style guide.
type Guide struct {
	Key         string
	Name        string
	Description string
}

// Guides lists every supported guide in display order.
var Guides = []Guide{
	{Key: "ap-style", Name: "AP Stylebook", Description: "Headline case; lowercase articles, conjunctions and prepositions of three letters or fewer"},
	{Key: "apa-style", Name: "APA", Description: "Title case; lowercase minor words of three letters or fewer, capitalize after a colon"},
	{Key: "chicago-style", Name: "Chicago Manual of Style", Description: "Title case; lowercase articles, prepositions, coordinating conjunctions, to and as"},
	{Key: "mla-style", Name: "MLA", Description: "Title case; lowercase articles, prepositions, coordinating conjunctions and to"},
	{Key: "bluebook-style", Name: "Bluebook", Description: "Legal citation headings; lowercase articles, conjunctions and prepositions of four letters or fewer"},
	{Key: "ama-style", Name: "AMA Manual of Style", Description: "Medical title case; lowercase articles, conjunctions and prepositions of three letters or fewer"},
	{Key: "nyt-style", Name: "New York Times", Description: "Newspaper headline case with the Times list of lowercase words"},
	{Key: "wikipedia-style", Name: "Wikipedia", Description: "Sentence case headings; only the first word and proper nouns capitalized"},
	{Key: "ieee-style", Name: "IEEE", Description: "Technical title case; lowercase articles, coordinating conjunctions and short prepositions"},
	{Key: "asa-style", Name: "ASA", Description: "Sociology title case; lowercase articles, prepositions and conjunctions"},
	{Key: "sentence-style", Name: "Sentence style", Description: "Sentence case for running prose"},
}

// Lookup returns the guide registered under key.
func Lookup(key string) (Guide, bool) {
	for _, g := range Guides {
		if g.Key == key {
			return g, true
		}
	}
	return Guide{}, false
}

func unknownGuide(key string) error {
	return fmt.Errorf("%w: %q", ErrUnknownGuide, key)
}
