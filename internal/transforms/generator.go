package transforms

import (
	"cmp"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/bimmerbailey/recase/internal/registry"
)

// Generators derive new text from the input. Most read every rune, so they
// run on the original text rather than around placeholders.
func generatorEntries() []entry {
	raw := registry.WithoutPreservation()
	return []entry{
		pure("slugify", "url-friendly-slug", slugify, raw),
		pure("acronym", "First letter of each word, upper case", acronym, raw),
		pure("initials", "Initials with full stops (J.R.T.)", initials, raw),
		pure("hashtags", "Each word as a #hashtag", hashtags, raw),
		pure("username", "lower_case_username, at most 32 characters", username, raw),
		pure("filename-safe", "Replace characters not allowed in file names", filenameSafe, raw),
		pure("lorem-ipsum", "Lorem ipsum with the same number of words", loremIpsum, raw),
		pure("word-count", "Number of words", func(s string) string { return strconv.Itoa(len(strings.Fields(s))) }, raw),
		pure("character-count", "Number of characters", func(s string) string { return strconv.Itoa(utf8.RuneCountInString(s)) }, raw),
		pure("line-count", "Number of lines", func(s string) string { return strconv.Itoa(lineCount(s)) }, raw),
		pure("sentence-count", "Number of sentences", func(s string) string { return strconv.Itoa(sentenceCount(s)) }, raw),
		pure("word-frequency", "Words by number of occurrences", wordFrequency, raw),
		pure("reading-time", "Estimated reading time at 200 words per minute", func(s string) string {
			return fmt.Sprintf("%d min read", readingMinutes(len(strings.Fields(s))))
		}, raw),
		pure("text-statistics", "Counts of characters, words, lines and more", textStatistics, raw),
	}
}

var nonSlugRe = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(s string) string {
	s = strings.ToLower(removeAccents(s))
	return strings.Trim(nonSlugRe.ReplaceAllString(s, "-"), "-")
}

func acronym(s string) string {
	var b strings.Builder
	for _, w := range strings.FieldsFunc(s, func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\'' }) {
		r, _ := utf8.DecodeRuneInString(w)
		if unicode.IsLetter(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}

func initials(s string) string {
	var b strings.Builder
	for _, w := range strings.Fields(s) {
		for _, r := range w {
			if unicode.IsLetter(r) {
				b.WriteRune(unicode.ToUpper(r))
				b.WriteByte('.')
				break
			}
		}
	}
	return b.String()
}

func hashtags(s string) string {
	var tags []string
	seen := make(map[string]bool)
	for _, w := range splitWords(removeAccents(s)) {
		tag := "#" + strings.ToLower(w)
		if !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}
	return strings.Join(tags, " ")
}

var nonUsernameRe = regexp.MustCompile(`[^a-z0-9_]+`)

const maxUsername = 32

func username(s string) string {
	u := joinWords(strings.ToLower(removeAccents(s)), "_", lowerWord)
	u = strings.Trim(nonUsernameRe.ReplaceAllString(u, ""), "_")
	if len(u) > maxUsername {
		u = strings.TrimRight(u[:maxUsername], "_")
	}
	return u
}

var (
	badFilenameRe = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]+`)
	underscoresRe = regexp.MustCompile(`_{2,}`)
)

func filenameSafe(s string) string {
	f := badFilenameRe.ReplaceAllString(strings.TrimSpace(s), "_")
	f = underscoresRe.ReplaceAllString(f, "_")
	f = strings.TrimRight(f, ". ")
	if f == "" {
		return "_"
	}
	return f
}

var loremWords = strings.Fields(`lorem ipsum dolor sit amet consectetur adipiscing elit sed do
eiusmod tempor incididunt ut labore et dolore magna aliqua ut enim ad minim veniam quis
nostrud exercitation ullamco laboris nisi ut aliquip ex ea commodo consequat duis aute irure
dolor in reprehenderit in voluptate velit esse cillum dolore eu fugiat nulla pariatur
excepteur sint occaecat cupidatat non proident sunt in culpa qui officia deserunt mollit
anim id est laborum`)

// loremIpsum replaces the input with the classic passage, cycled to the
// same word count. Sentences are ten words long.
func loremIpsum(s string) string {
	n := max(len(strings.Fields(s)), 1)
	var b strings.Builder
	for i := range n {
		w := loremWords[i%len(loremWords)]
		switch {
		case i%10 == 0:
			if i > 0 {
				b.WriteByte(' ')
			}
			w = upperFirst(w)
		default:
			b.WriteByte(' ')
		}
		b.WriteString(w)
		if i%10 == 9 || i == n-1 {
			b.WriteByte('.')
		}
	}
	return b.String()
}

func lineCount(s string) int {
	if s == "" {
		return 0
	}
	s = strings.TrimSuffix(normalizeLineEndings(s), "\n")
	return strings.Count(s, "\n") + 1
}

var (
	sentenceRe  = regexp.MustCompile(`[^.!?…]*[\p{L}\p{N}][^.!?…]*(?:[.!?…]+|$)`)
	paragraphRe = regexp.MustCompile(`\n\s*\n`)
)

func sentenceCount(s string) int {
	return len(sentenceRe.FindAllString(s, -1))
}

func paragraphCount(s string) int {
	n := 0
	for _, p := range paragraphRe.Split(normalizeLineEndings(s), -1) {
		if strings.TrimSpace(p) != "" {
			n++
		}
	}
	return n
}

const wordsPerMinute = 200

func readingMinutes(words int) int {
	if words == 0 {
		return 0
	}
	return int(math.Ceil(float64(words) / wordsPerMinute))
}

type wordCount struct {
	word  string
	count int
}

// countWords returns lower-cased words ordered by count, then alphabetically.
func countWords(s string) []wordCount {
	counts := make(map[string]int)
	for _, w := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	}) {
		w = strings.Trim(w, "'")
		if w != "" {
			counts[w]++
		}
	}
	out := make([]wordCount, 0, len(counts))
	for w, c := range counts {
		out = append(out, wordCount{w, c})
	}
	slices.SortFunc(out, func(a, b wordCount) int {
		if c := cmp.Compare(b.count, a.count); c != 0 {
			return c
		}
		return strings.Compare(a.word, b.word)
	})
	return out
}

func wordFrequency(s string) string {
	counts := countWords(s)
	lines := make([]string, len(counts))
	for i, wc := range counts {
		lines[i] = fmt.Sprintf("%s: %d", wc.word, wc.count)
	}
	return strings.Join(lines, "\n")
}

func textStatistics(s string) string {
	words := len(strings.Fields(s))
	noSpace := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			noSpace++
		}
	}
	unique := len(countWords(s))

	var avg float64
	if words > 0 {
		letters := 0
		for _, f := range strings.Fields(s) {
			letters += utf8.RuneCountInString(strings.TrimFunc(f, unicode.IsPunct))
		}
		avg = float64(letters) / float64(words)
	}

	rows := []struct {
		label string
		value string
	}{
		{"Characters", strconv.Itoa(utf8.RuneCountInString(s))},
		{"Characters (no spaces)", strconv.Itoa(noSpace)},
		{"Words", strconv.Itoa(words)},
		{"Unique words", strconv.Itoa(unique)},
		{"Average word length", strconv.FormatFloat(avg, 'f', 1, 64)},
		{"Sentences", strconv.Itoa(sentenceCount(s))},
		{"Lines", strconv.Itoa(lineCount(s))},
		{"Paragraphs", strconv.Itoa(paragraphCount(s))},
		{"Reading time", fmt.Sprintf("%d min", readingMinutes(words))},
	}
	var b strings.Builder
	for i, r := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%-24s%s", r.label+":", r.value)
	}
	return b.String()
}
