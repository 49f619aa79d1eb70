package transforms

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

func cleanupEntries() []entry {
	return []entry{
		pure("trim", "Remove leading and trailing whitespace", strings.TrimSpace),
		pure("remove-extra-spaces", "Collapse runs of spaces and tabs to one space", removeExtraSpaces),
		pure("remove-line-breaks", "Join lines into one, separated by spaces", removeLineBreaks),
		pure("remove-empty-lines", "Drop blank lines", removeEmptyLines),
		pure("remove-duplicate-lines", "Keep the first copy of each line", removeDuplicateLines),
		pure("remove-punctuation", "Delete punctuation", removeRunes(runes.In(unicode.P))),
		pure("remove-numbers", "Delete digits and other numerals", removeRunes(runes.In(unicode.N))),
		pure("remove-letters", "Delete letters", removeRunes(runes.In(unicode.L))),
		pure("remove-accents", "Strip diacritics (é to e)", removeAccents),
		pure("remove-emoji", "Delete emoji and their modifiers", removeRunes(runes.In(emojiTable))),
		pure("remove-html-tags", "Delete HTML tags and comments", removeHTMLTags),
		pure("remove-special-characters", "Keep only letters, digits and whitespace", removeRunes(runes.Predicate(isSpecial))),
		pure("normalize-whitespace", "Unicode spaces to plain spaces, collapsed and trimmed per line", normalizeWhitespace),
		pure("tabs-to-spaces", "Expand tabs to four-column stops", tabsToSpaces),
		pure("spaces-to-tabs", "Indent with tabs instead of four spaces", spacesToTabs),
		pure("normalize-line-endings", "Convert CRLF and CR to LF", normalizeLineEndings),
		pure("smart-quotes", "Straight quotes to typographic quotes", smartQuotes),
		pure("straight-quotes", "Typographic quotes to straight quotes", straightQuotes.Replace),
		pure("nfc", "Unicode normalization form C", norm.NFC.String),
		pure("nfd", "Unicode normalization form D", norm.NFD.String),
		pure("nfkc", "Unicode normalization form KC", norm.NFKC.String),
		pure("nfkd", "Unicode normalization form KD", norm.NFKD.String),
		pure("strip-non-ascii", "Delete runes outside ASCII", removeRunes(runes.Predicate(func(r rune) bool {
			return r > unicode.MaxASCII && !unicode.Is(unicode.Co, r)
		}))),
		pure("collapse-blank-lines", "Squeeze runs of blank lines to one", collapseBlankLines),
		pure("trim-trailing-whitespace", "Remove whitespace at the end of each line", func(s string) string {
			return perLine(s, func(l string) string { return strings.TrimRightFunc(l, unicode.IsSpace) })
		}),
		pure("strip-ansi", "Delete ANSI terminal escape sequences", func(s string) string {
			return ansiRe.ReplaceAllString(s, "")
		}),
		pure("remove-zero-width", "Delete zero-width spaces, joiners and BOMs", removeRunes(runes.In(zeroWidthTable))),
	}
}

// removeRunes deletes every rune in set. Private-use runes are never in a
// set built from letter, number or punctuation classes.
func removeRunes(set runes.Set) func(string) string {
	return func(s string) string {
		out, _, err := transform.String(runes.Remove(set), s)
		if err != nil {
			return s
		}
		return out
	}
}

func isSpecial(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsSpace(r) && !unicode.In(r, unicode.Mn, unicode.Co)
}

func removeAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

var (
	hSpaceRe    = regexp.MustCompile(`[ \t]+`)
	lineBreakRe = regexp.MustCompile(`[ \t]*(?:\r\n|\r|\n)+[ \t]*`)
	htmlTagRe   = regexp.MustCompile(`(?s)<!--.*?-->|</?[a-zA-Z][^<>]*>|<![a-zA-Z][^<>]*>`)
	ansiRe      = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]|\x1b\][^\x07\x1b]*(?:\x07|\x1b\\)|\x1b[@-Z\\-_]`)
)

func removeExtraSpaces(s string) string {
	return hSpaceRe.ReplaceAllString(s, " ")
}

func removeLineBreaks(s string) string {
	return strings.TrimSpace(lineBreakRe.ReplaceAllString(s, " "))
}

func removeEmptyLines(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, "\n")
}

func removeDuplicateLines(s string) string {
	lines := strings.Split(s, "\n")
	seen := make(map[string]bool, len(lines))
	kept := lines[:0]
	for _, l := range lines {
		key := strings.TrimSuffix(l, "\r")
		if seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, l)
	}
	return strings.Join(kept, "\n")
}

func removeHTMLTags(s string) string {
	return htmlTagRe.ReplaceAllString(s, "")
}

func normalizeWhitespace(s string) string {
	s = normalizeLineEndings(s)
	return perLine(s, func(l string) string {
		return strings.Join(strings.FieldsFunc(l, unicode.IsSpace), " ")
	})
}

const tabWidth = 4

func tabsToSpaces(s string) string {
	return perLine(s, func(l string) string {
		if !strings.Contains(l, "\t") {
			return l
		}
		var b strings.Builder
		col := 0
		for _, r := range l {
			if r == '\t' {
				n := tabWidth - col%tabWidth
				b.WriteString(strings.Repeat(" ", n))
				col += n
				continue
			}
			b.WriteRune(r)
			col++
		}
		return b.String()
	})
}

func spacesToTabs(s string) string {
	indent := strings.Repeat(" ", tabWidth)
	return perLine(s, func(l string) string {
		n := 0
		for strings.HasPrefix(l[n*tabWidth:], indent) {
			n++
		}
		if n == 0 {
			return l
		}
		return strings.Repeat("\t", n) + l[n*tabWidth:]
	})
}

func normalizeLineEndings(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\r\n", "\n"), "\r", "\n")
}

// smartQuotes curls straight quotes. A quote opens when it starts the text
// or follows whitespace or an opening bracket; otherwise it closes, which
// also turns apostrophes into ’.
func smartQuotes(s string) string {
	rs := []rune(s)
	for i, r := range rs {
		if r != '"' && r != '\'' {
			continue
		}
		opening := i == 0 || unicode.IsSpace(rs[i-1]) || strings.ContainsRune("([{<\u201c\u2018\u2014\u2013", rs[i-1])
		switch {
		case r == '"' && opening:
			rs[i] = '“'
		case r == '"':
			rs[i] = '”'
		case opening:
			rs[i] = '‘'
		default:
			rs[i] = '’'
		}
	}
	return string(rs)
}

var straightQuotes = strings.NewReplacer(
	"“", `"`, "”", `"`, "„", `"`, "‟", `"`, "″", `"`, "«", `"`, "»", `"`,
	"‘", "'", "’", "'", "‚", "'", "‛", "'", "′", "'", "‹", "'", "›", "'",
)

func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	blank := false
	for _, l := range lines {
		isBlank := strings.TrimSpace(l) == ""
		if isBlank && blank {
			continue
		}
		blank = isBlank
		kept = append(kept, l)
	}
	return strings.Join(kept, "\n")
}

var zeroWidthTable = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x180E, Hi: 0x180E, Stride: 1},
		{Lo: 0x200B, Hi: 0x200D, Stride: 1},
		{Lo: 0x2060, Hi: 0x2060, Stride: 1},
		{Lo: 0xFEFF, Hi: 0xFEFF, Stride: 1},
	},
}

// emojiTable covers pictographic emoji, their presentation selector, skin
// tone modifiers, tags and regional indicators. The joiner U+200D is
// included so removed sequences leave nothing behind.
var emojiTable = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x200D, Hi: 0x200D, Stride: 1},
		{Lo: 0x203C, Hi: 0x203C, Stride: 1},
		{Lo: 0x2049, Hi: 0x2049, Stride: 1},
		{Lo: 0x20E3, Hi: 0x20E3, Stride: 1},
		{Lo: 0x2194, Hi: 0x21AA, Stride: 1},
		{Lo: 0x231A, Hi: 0x23FF, Stride: 1},
		{Lo: 0x25AA, Hi: 0x25FE, Stride: 1},
		{Lo: 0x2600, Hi: 0x27BF, Stride: 1},
		{Lo: 0x2934, Hi: 0x2935, Stride: 1},
		{Lo: 0x2B05, Hi: 0x2B55, Stride: 1},
		{Lo: 0x3030, Hi: 0x3030, Stride: 1},
		{Lo: 0x303D, Hi: 0x303D, Stride: 1},
		{Lo: 0x3297, Hi: 0x3299, Stride: 1},
		{Lo: 0xFE0F, Hi: 0xFE0F, Stride: 1},
	},
	R32: []unicode.Range32{
		{Lo: 0x1F000, Hi: 0x1FAFF, Stride: 1},
		{Lo: 0xE0020, Hi: 0xE007F, Stride: 1},
	},
}
