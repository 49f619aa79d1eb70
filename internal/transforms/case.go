package transforms

import (
	"math/rand/v2"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Casers keep state between calls, so each conversion builds its own.
func upperText(s string) string { return cases.Upper(language.Und).String(s) }
func lowerText(s string) string { return cases.Lower(language.Und).String(s) }
func titleText(s string) string { return cases.Title(language.Und).String(s) }

func caseEntries() []entry {
	return []entry{
		pure("upper-case", "UPPER CASE", upperText),
		pure("lower-case", "lower case", lowerText),
		pure("title-case", "Title Case Every Word", titleText),
		pure("sentence-case", "Sentence case. Capital after each full stop", sentenceCase),
		pure("capitalize-words", "Capitalize the first letter of each word, leave the rest", capitalizeWords),
		pure("camel-case", "camelCase", wordCase("", func(i int, w string) string {
			if i == 0 {
				return strings.ToLower(w)
			}
			return capital(w)
		})),
		pure("pascal-case", "PascalCase", wordCase("", func(_ int, w string) string { return capital(w) })),
		pure("snake-case", "snake_case", wordCase("_", lowerWord)),
		pure("screaming-snake-case", "SCREAMING_SNAKE_CASE", wordCase("_", upperWord)),
		pure("kebab-case", "kebab-case", wordCase("-", lowerWord)),
		pure("cobol-case", "COBOL-CASE", wordCase("-", upperWord)),
		pure("train-case", "Train-Case", wordCase("-", capitalWord)),
		pure("dot-case", "dot.case", wordCase(".", lowerWord)),
		pure("path-case", "path/case", wordCase("/", lowerWord)),
		pure("backslash-path-case", `backslash\path\case`, wordCase(`\`, lowerWord)),
		pure("ada-case", "Ada_Case", wordCase("_", capitalWord)),
		pure("flat-case", "flatcase", wordCase("", lowerWord)),
		pure("upper-flat-case", "UPPERFLATCASE", wordCase("", upperWord)),
		pure("no-case", "no case, words separated by spaces", wordCase(" ", lowerWord)),
		pure("header-case", "Header Case, capitalised words separated by spaces", wordCase(" ", capitalWord)),
		pure("swap-case", "sWAP cASE", swapCase),
		pure("alternating-case", "aLtErNaTiNg case", alternatingCase),
		pure("random-case", "rAnDOm caSE", randomCase),
		pure("sponge-case", "mocking sPonGEbOb case, never three letters of the same case in a row", spongeCase),
		pure("capitalize-first", "Capitalize the first letter of the text", capitalizeFirst),
		pure("lower-first", "lowercase the first letter of the text", lowerFirstLetter),
		pure("inverse-first-letter", "iNVERSE fIRST lETTER of each word", inverseFirstLetter),
	}
}

func lowerWord(_ int, w string) string   { return strings.ToLower(w) }
func upperWord(_ int, w string) string   { return strings.ToUpper(w) }
func capitalWord(_ int, w string) string { return capital(w) }

func wordCase(sep string, fn func(int, string) string) func(string) string {
	return func(s string) string {
		return perLine(s, func(line string) string {
			return joinWords(line, sep, fn)
		})
	}
}

func sentenceCase(s string) string {
	runes := []rune(lowerText(s))
	start := true
	for i, r := range runes {
		switch {
		case unicode.IsLetter(r):
			if start {
				runes[i] = unicode.ToTitle(r)
				start = false
			} else if r == 'i' && standaloneI(runes, i) {
				runes[i] = 'I'
			}
		case unicode.IsDigit(r):
			start = false
		case r == '.' || r == '!' || r == '?':
			start = true
		}
	}
	return string(runes)
}

func standaloneI(runes []rune, i int) bool {
	before := i == 0 || !unicode.IsLetter(runes[i-1])
	after := i+1 == len(runes) || !unicode.IsLetter(runes[i+1])
	return before && after
}

func capitalizeWords(s string) string {
	runes := []rune(s)
	inWord := false
	for i, r := range runes {
		word := isWordRune(r) || r == '\''
		if word && !inWord && unicode.IsLetter(r) {
			runes[i] = unicode.ToTitle(r)
		}
		inWord = word
	}
	return string(runes)
}

func swapCase(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsUpper(r):
			return unicode.ToLower(r)
		case unicode.IsLower(r):
			return unicode.ToUpper(r)
		}
		return r
	}, s)
}

func alternatingCase(s string) string {
	n := 0
	return strings.Map(func(r rune) rune {
		if !unicode.IsLetter(r) {
			return r
		}
		n++
		if n%2 == 0 {
			return unicode.ToUpper(r)
		}
		return unicode.ToLower(r)
	}, s)
}

func randomCase(s string) string {
	return strings.Map(func(r rune) rune {
		if !unicode.IsLetter(r) {
			return r
		}
		if rand.IntN(2) == 0 {
			return unicode.ToUpper(r)
		}
		return unicode.ToLower(r)
	}, s)
}

func spongeCase(s string) string {
	var last bool
	run := 0
	return strings.Map(func(r rune) rune {
		if !unicode.IsLetter(r) {
			return r
		}
		upper := rand.IntN(2) == 0
		if run == 2 && upper == last {
			upper = !upper
		}
		if upper == last {
			run++
		} else {
			run = 1
		}
		last = upper
		if upper {
			return unicode.ToUpper(r)
		}
		return unicode.ToLower(r)
	}, s)
}

func mapFirstLetter(s string, fn func(rune) rune) string {
	for i, r := range s {
		if unicode.IsLetter(r) {
			return s[:i] + string(fn(r)) + s[i+len(string(r)):]
		}
	}
	return s
}

func capitalizeFirst(s string) string  { return mapFirstLetter(s, unicode.ToTitle) }
func lowerFirstLetter(s string) string { return mapFirstLetter(s, unicode.ToLower) }

func inverseFirstLetter(s string) string {
	runes := []rune(s)
	inWord := false
	for i, r := range runes {
		if !isWordRune(r) {
			inWord = false
			continue
		}
		if !inWord {
			runes[i] = unicode.ToLower(r)
		} else {
			runes[i] = unicode.ToUpper(r)
		}
		inWord = true
	}
	return string(runes)
}
