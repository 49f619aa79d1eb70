package style

import (
	"context"
	"regexp"
	"strings"
	"unicode"
)

var (
	articles     = []string{"a", "an", "the"}
	coordinating = []string{"and", "but", "or", "nor", "for", "so", "yet"}
	prepositions = []string{
		"about", "above", "across", "after", "against", "along", "among", "around", "at",
		"before", "behind", "below", "beneath", "beside", "between", "beyond", "by",
		"despite", "down", "during", "except", "for", "from", "in", "inside", "into",
		"like", "near", "of", "off", "on", "onto", "out", "outside", "over", "past",
		"per", "since", "than", "through", "throughout", "to", "toward", "under",
		"underneath", "until", "up", "upon", "via", "with", "within", "without",
	}
)

type mode int

const (
	modeTitle mode = iota
	modeHeading
	modeSentence
)

type rules struct {
	mode  mode
	minor map[string]bool
}

func wordSet(groups ...[]string) map[string]bool {
	m := make(map[string]bool)
	for _, g := range groups {
		for _, w := range g {
			m[w] = true
		}
	}
	return m
}

func upTo(n int, words ...[]string) []string {
	var out []string
	for _, g := range words {
		for _, w := range g {
			if len(w) <= n {
				out = append(out, w)
			}
		}
	}
	return out
}

var guideRules = map[string]rules{
	"ap-style":       {minor: wordSet(articles, upTo(3, coordinating, prepositions))},
	"apa-style":      {minor: wordSet(articles, upTo(3, coordinating, prepositions, []string{"as", "if"}))},
	"chicago-style":  {minor: wordSet(articles, prepositions, []string{"and", "but", "or", "nor", "for", "to", "as"})},
	"mla-style":      {minor: wordSet(articles, prepositions, coordinating, []string{"to"})},
	"bluebook-style": {minor: wordSet(articles, upTo(4, coordinating, prepositions))},
	"ama-style":      {minor: wordSet(articles, upTo(3, coordinating, prepositions))},
	"nyt-style": {minor: wordSet([]string{
		"a", "and", "as", "at", "but", "by", "en", "for", "if", "in",
		"of", "on", "or", "the", "to", "v.", "via", "vs.",
	})},
	"ieee-style":      {minor: wordSet(articles, coordinating, upTo(3, prepositions))},
	"asa-style":       {minor: wordSet(articles, prepositions, coordinating)},
	"wikipedia-style": {mode: modeHeading},
	"sentence-style":  {mode: modeSentence},
}

// Builtin applies style guides with deterministic capitalization rules. It
// does not recognise proper nouns; words with mixed case and acronyms are
// left as written.
type Builtin struct{}

// NewBuiltin returns the rule-based provider.
func NewBuiltin() *Builtin {
	return &Builtin{}
}

// Apply implements Provider.
func (b *Builtin) Apply(_ context.Context, text, key string) (string, error) {
	r, ok := guideRules[key]
	if !ok {
		return "", unknownGuide(key)
	}

	lines := strings.Split(text, "\n")
	sentenceStart := true
	for i, line := range lines {
		switch r.mode {
		case modeTitle:
			lines[i] = titleLine(line, r.minor)
		case modeHeading:
			start := true
			lines[i] = sentenceLine(line, &start)
		case modeSentence:
			if strings.TrimSpace(line) == "" {
				sentenceStart = true
			}
			lines[i] = sentenceLine(line, &sentenceStart)
		}
	}
	return strings.Join(lines, "\n"), nil
}

var wordRe = regexp.MustCompile(`\S+`)

func titleLine(line string, minor map[string]bool) string {
	locs := wordRe.FindAllStringIndex(line, -1)
	if len(locs) == 0 {
		return line
	}
	shout := allUpper(line)

	var b strings.Builder
	b.Grow(len(line))
	prev := 0
	for i, loc := range locs {
		b.WriteString(line[prev:loc[0]])
		word := line[loc[0]:loc[1]]

		force := i == 0 || i == len(locs)-1
		if i > 0 {
			before := line[locs[i-1][0]:locs[i-1][1]]
			force = force || strings.HasSuffix(before, ":") || strings.HasSuffix(before, "?") || strings.HasSuffix(before, "!")
		}
		b.WriteString(titleWord(word, minor, force, shout))
		prev = loc[1]
	}
	b.WriteString(line[prev:])
	return b.String()
}

func titleWord(word string, minor map[string]bool, force, shout bool) string {
	if strings.Contains(word, "-") {
		parts := strings.Split(word, "-")
		for i, p := range parts {
			parts[i] = titleWord(p, minor, force && i == 0, shout)
			if i > 0 && !isMinor(p, minor) {
				parts[i] = capitalize(p, shout)
			}
		}
		return strings.Join(parts, "-")
	}

	if !force && isMinor(word, minor) {
		if keepCase(word, shout) {
			return word
		}
		return strings.ToLower(word)
	}
	return capitalize(word, shout)
}

func sentenceLine(line string, start *bool) string {
	locs := wordRe.FindAllStringIndex(line, -1)
	if len(locs) == 0 {
		return line
	}
	shout := allUpper(line)

	var b strings.Builder
	b.Grow(len(line))
	prev := 0
	for _, loc := range locs {
		b.WriteString(line[prev:loc[0]])
		word := line[loc[0]:loc[1]]

		switch {
		case *start:
			b.WriteString(capitalize(word, shout))
		case keepCase(word, shout):
			b.WriteString(word)
		case isPronounI(word):
			b.WriteString(capitalize(word, shout))
		default:
			b.WriteString(strings.ToLower(word))
		}
		*start = endsSentence(word)
		prev = loc[1]
	}
	b.WriteString(line[prev:])
	return b.String()
}

// core strips surrounding punctuation so "(the" and "end." compare as words.
func core(word string) string {
	return strings.TrimFunc(word, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '.'
	})
}

func isMinor(word string, minor map[string]bool) bool {
	c := strings.ToLower(core(word))
	if minor[c] {
		return true
	}
	return minor[strings.TrimSuffix(c, ".")]
}

func isPronounI(word string) bool {
	c := strings.ToLower(core(word))
	return c == "i" || strings.HasPrefix(strings.ToLower(strings.TrimLeft(word, `"'(`)), "i'")
}

func endsSentence(word string) bool {
	w := strings.TrimRight(word, `"')]`+"”’")
	return strings.HasSuffix(w, ".") || strings.HasSuffix(w, "!") || strings.HasSuffix(w, "?")
}

// keepCase reports whether word carries deliberate casing: inner capitals
// ("iPhone", "McDonald") or an acronym in a line that is not all capitals.
func keepCase(word string, shout bool) bool {
	var upper, lower, letters int
	innerUpper := false
	for i, r := range []rune(word) {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		switch {
		case unicode.IsUpper(r):
			upper++
			if i > 0 && letters > 1 {
				innerUpper = true
			}
		case unicode.IsLower(r):
			lower++
		}
	}
	if innerUpper && lower > 0 {
		return true
	}
	return !shout && letters > 1 && upper == letters
}

func capitalize(word string, shout bool) string {
	if keepCase(word, shout) {
		return word
	}
	runes := []rune(strings.ToLower(word))
	for i, r := range runes {
		if unicode.IsLetter(r) {
			runes[i] = unicode.ToTitle(r)
			break
		}
		if unicode.IsDigit(r) {
			break
		}
	}
	return string(runes)
}

func allUpper(s string) bool {
	letters := 0
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return letters > 1
}
