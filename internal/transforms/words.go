package transforms

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// isWordRune reports whether r belongs to a word. Private-use runes count as
// word runes so placeholder tokens move through case conversions intact.
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Co, r)
}

// splitWords breaks s into words for case-style conversion. Words end at
// any rune that is not a word rune and at case boundaries: "fooBar" gives
// foo and Bar, "XMLHttp" gives XML and Http. Digits stay attached to the
// word they follow.
func splitWords(s string) []string {
	var words []string
	runes := []rune(s)
	start := -1
	for i, r := range runes {
		if !isWordRune(r) {
			if start >= 0 {
				words = append(words, string(runes[start:i]))
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
			continue
		}
		if caseBoundary(runes, i) {
			words = append(words, string(runes[start:i]))
			start = i
		}
	}
	if start >= 0 {
		words = append(words, string(runes[start:]))
	}
	return words
}

func caseBoundary(runes []rune, i int) bool {
	prev, cur := runes[i-1], runes[i]
	if !unicode.IsUpper(cur) {
		return false
	}
	if unicode.IsLower(prev) || unicode.IsDigit(prev) {
		return true
	}
	// Acronym followed by a capitalised word: the last capital starts the
	// next word.
	if unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
		return true
	}
	return false
}

func upperFirst(w string) string {
	r, size := utf8.DecodeRuneInString(w)
	if r == utf8.RuneError && size <= 1 {
		return w
	}
	return string(unicode.ToTitle(r)) + w[size:]
}

func lowerFirst(w string) string {
	r, size := utf8.DecodeRuneInString(w)
	if r == utf8.RuneError && size <= 1 {
		return w
	}
	return string(unicode.ToLower(r)) + w[size:]
}

// capital returns w with the first rune in title case and the rest lower.
func capital(w string) string {
	return upperFirst(strings.ToLower(w))
}

// joinWords applies fn to each word and joins the results with sep.
func joinWords(s, sep string, fn func(i int, w string) string) string {
	words := splitWords(s)
	for i, w := range words {
		words[i] = fn(i, w)
	}
	return strings.Join(words, sep)
}

// perLine applies fn to every line of s, keeping the line breaks.
func perLine(s string, fn func(string) string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		cr := strings.HasSuffix(l, "\r")
		l = fn(strings.TrimSuffix(l, "\r"))
		if cr {
			l += "\r"
		}
		lines[i] = l
	}
	return strings.Join(lines, "\n")
}
