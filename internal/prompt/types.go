package prompt

import (
	"errors"
	"fmt"
)

// PromptType identifies the rewrite a prompt asks for.
type PromptType string

const (
	// TypeTitleCase asks for headline capitalization under a named guide.
	TypeTitleCase PromptType = "title_case"

	// TypeSentenceCase asks for sentence capitalization. Only the first
	// word of each sentence and proper nouns keep a capital letter.
	TypeSentenceCase PromptType = "sentence_case"
)

// BuildOptions holds the inputs for one prompt.
type BuildOptions struct {
	// Text is the (placeholder-bearing) text to rewrite. Required.
	Text string

	// GuideName is the human-readable name of the style guide. Required.
	GuideName string

	// GuideRule summarises how the guide treats minor words. Optional.
	GuideRule string

	// Placeholders is the number of private-use placeholders in Text.
	// Optional: when positive a reminder is appended to the user message.
	Placeholders int
}

// ErrMissingField is returned by [Build] when a required field is absent.
var ErrMissingField = errors.New("prompt: missing required field")

func missingField(field string) error {
	return fmt.Errorf("%w: %s", ErrMissingField, field)
}
