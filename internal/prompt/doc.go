// Package prompt builds the chat messages used when a style guide is applied
// by a language model instead of the rule-based engine.
//
// # Prompt types
//
//   - [TypeTitleCase]    headline capitalization following a named guide
//   - [TypeSentenceCase] sentence capitalization for headings or prose
//
// # Basic usage
//
//	messages, err := prompt.Build(prompt.TypeTitleCase, prompt.BuildOptions{
//	    Text:      protected,
//	    GuideName: "Chicago Manual of Style",
//	    GuideRule: "lowercase articles, prepositions and coordinating conjunctions",
//	})
//	if err != nil {
//	    return err
//	}
//	resp, err := provider.Chat(ctx, messages, chatOpts)
//
// # Placeholders
//
// Text handed to the model may contain private-use code points standing in
// for URLs, emails and similar spans. Every system prompt instructs the model
// to copy them through unchanged, and [BuildOptions.Placeholders] adds an
// explicit count so the instruction is harder to ignore.
package prompt
