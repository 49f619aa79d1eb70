package prompt

import (
	"fmt"
	"strings"

	"github.com/bimmerbailey/recase/internal/llm"
)

// Build constructs a []llm.Message slice ready to be sent to any llm.Provider.
//
// The returned slice always holds a system message chosen by pt followed by
// one user message carrying the guide and the text.
//
// Returns ErrMissingField if Text or GuideName is empty.
func Build(pt PromptType, opts BuildOptions) ([]llm.Message, error) {
	if opts.Text == "" {
		return nil, missingField("Text")
	}
	if opts.GuideName == "" {
		return nil, missingField("GuideName")
	}

	return []llm.Message{
		{Role: "system", Content: systemPrompt(pt)},
		{Role: "user", Content: buildUserMessage(pt, opts)},
	}, nil
}

func buildUserMessage(pt PromptType, opts BuildOptions) string {
	var sb strings.Builder

	switch pt {
	case TypeSentenceCase:
		sb.WriteString(fmt.Sprintf("Convert the following text to sentence case as the %s guide requires.\n", opts.GuideName))
	default:
		sb.WriteString(fmt.Sprintf("Apply %s title capitalization to the following text.\n", opts.GuideName))
	}
	if opts.GuideRule != "" {
		sb.WriteString(fmt.Sprintf("Guide rule: %s.\n", opts.GuideRule))
	}
	if opts.Placeholders > 0 {
		sb.WriteString(fmt.Sprintf("The text contains %d placeholder character(s); the output must contain the same ones.\n", opts.Placeholders))
	}

	sb.WriteString("\nText:\n")
	sb.WriteString(opts.Text)
	return sb.String()
}
