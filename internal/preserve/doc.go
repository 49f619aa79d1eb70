// Package preserve shields substrings such as URLs, email addresses and code
// from a text transformation and puts them back afterwards.
//
// Each protected substring is replaced by a single private-use code point
// that does not occur anywhere in the input. A lone private-use rune has no
// case, no decomposition and no internal structure, so case mapping,
// reversal and word reordering move it around intact.
//
// Usage:
//
//	eng, err := preserve.NewEngine()
//	if err != nil {
//	    return err
//	}
//
//	protected, spans, err := eng.Preserve(text, preserve.Config{Emails: true})
//	if err != nil {
//	    return err
//	}
//	out, warnings := eng.Restore(strings.ToUpper(protected), spans)
//
// Restore never fails. Tokens that a transformation deleted are reported as
// MissingPlaceholderWarning values alongside the best-effort result.
package preserve
