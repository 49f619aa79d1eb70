package transforms

import (
	"bytes"
	"cmp"
	"encoding/csv"
	"fmt"
	"math/rand/v2"
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

func lineEntries() []entry {
	return []entry{
		pure("sort-lines", "Sort lines A to Z", eachLines(func(ls []string) []string { slices.Sort(ls); return ls })),
		pure("sort-lines-desc", "Sort lines Z to A", eachLines(func(ls []string) []string {
			slices.SortFunc(ls, func(a, b string) int { return strings.Compare(b, a) })
			return ls
		})),
		pure("sort-lines-natural", "Sort lines case-insensitively with numbers in numeric order", eachLines(func(ls []string) []string {
			slices.SortStableFunc(ls, naturalCompare)
			return ls
		})),
		pure("sort-lines-by-length", "Sort lines shortest first", eachLines(func(ls []string) []string {
			slices.SortStableFunc(ls, func(a, b string) int {
				return cmp.Compare(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
			})
			return ls
		})),
		pure("reverse-lines", "Reverse the order of lines", eachLines(func(ls []string) []string { slices.Reverse(ls); return ls })),
		pure("shuffle-lines", "Shuffle lines randomly", eachLines(func(ls []string) []string {
			rand.Shuffle(len(ls), func(i, j int) { ls[i], ls[j] = ls[j], ls[i] })
			return ls
		})),
		pure("number-lines", "Prefix each line with its number", eachLines(numberLines)),
		pure("add-bullets", "Prefix non-empty lines with a bullet", eachLines(func(ls []string) []string {
			for i, l := range ls {
				if strings.TrimSpace(l) != "" {
					ls[i] = "• " + l
				}
			}
			return ls
		})),
		pure("remove-bullets", "Strip bullet and number markers", eachLines(func(ls []string) []string {
			for i, l := range ls {
				ls[i] = bulletRe.ReplaceAllString(l, "$1")
			}
			return ls
		})),
		pure("join-lines", "Join non-empty lines with a space", joinLines),
		pure("lines-to-csv", "Lines as the fields of one CSV record", linesToCSV),
		fallible("csv-to-lines", "Each CSV field on its own line", csvToLines),
		pure("wrap-80", "Word-wrap at 80 columns", func(s string) string { return wrap(s, 80) }),
		pure("indent", "Indent every non-empty line by four spaces", eachLines(func(ls []string) []string {
			for i, l := range ls {
				if strings.TrimSpace(l) != "" {
					ls[i] = "    " + l
				}
			}
			return ls
		})),
		pure("dedent", "Remove indentation common to all lines", dedent),
		pure("quote-lines", "Prefix each line with > ", eachLines(func(ls []string) []string {
			for i, l := range ls {
				if l == "" {
					ls[i] = ">"
				} else {
					ls[i] = "> " + l
				}
			}
			return ls
		})),
		pure("sort-words", "Sort words case-insensitively", eachWords(func(ws []string) []string {
			slices.SortStableFunc(ws, func(a, b string) int { return strings.Compare(strings.ToLower(a), strings.ToLower(b)) })
			return ws
		})),
		pure("unique-words", "Drop repeated words, ignoring case", eachWords(func(ws []string) []string {
			seen := make(map[string]bool, len(ws))
			kept := ws[:0]
			for _, w := range ws {
				k := strings.ToLower(w)
				if !seen[k] {
					seen[k] = true
					kept = append(kept, w)
				}
			}
			return kept
		})),
		pure("shuffle-words", "Shuffle words randomly", eachWords(func(ws []string) []string {
			rand.Shuffle(len(ws), func(i, j int) { ws[i], ws[j] = ws[j], ws[i] })
			return ws
		})),
		pure("words-to-lines", "One word per line", func(s string) string { return strings.Join(strings.Fields(s), "\n") }),
		pure("lines-to-words", "All words on one line", func(s string) string { return strings.Join(strings.Fields(s), " ") }),
		pure("sentences-to-lines", "One sentence per line", sentencesToLines),
	}
}

// eachLines applies fn to the lines of s. A trailing newline is kept out of
// the line list and restored afterwards.
func eachLines(fn func([]string) []string) func(string) string {
	return func(s string) string {
		body, nl := strings.CutSuffix(s, "\n")
		lines := fn(strings.Split(body, "\n"))
		out := strings.Join(lines, "\n")
		if nl {
			out += "\n"
		}
		return out
	}
}

// eachWords applies fn to the whitespace separated words of s and joins the
// result with single spaces.
func eachWords(fn func([]string) []string) func(string) string {
	return func(s string) string {
		return strings.Join(fn(strings.Fields(s)), " ")
	}
}

func numberLines(ls []string) []string {
	w := len(fmt.Sprint(len(ls)))
	for i, l := range ls {
		ls[i] = fmt.Sprintf("%*d. %s", w, i+1, l)
	}
	return ls
}

var bulletRe = regexp.MustCompile(`^(\s*)(?:[-*+•‣◦▪▫–]|\d+[.)]|[a-zA-Z][.)])\s+`)

func joinLines(s string) string {
	var kept []string
	for _, l := range strings.Split(normalizeLineEndings(s), "\n") {
		if t := strings.TrimSpace(l); t != "" {
			kept = append(kept, t)
		}
	}
	return strings.Join(kept, " ")
}

func linesToCSV(s string) string {
	body, _ := strings.CutSuffix(normalizeLineEndings(s), "\n")
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(strings.Split(body, "\n"))
	w.Flush()
	return strings.TrimSuffix(buf.String(), "\n")
}

func csvToLines(s string) (string, error) {
	r := csv.NewReader(strings.NewReader(s))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	records, err := r.ReadAll()
	if err != nil {
		return "", fmt.Errorf("csv: %w", err)
	}
	var fields []string
	for _, rec := range records {
		fields = append(fields, rec...)
	}
	return strings.Join(fields, "\n"), nil
}

// wrap breaks each line at word boundaries so no line exceeds width runes
// unless a single word is longer.
func wrap(s string, width int) string {
	return perLine(s, func(line string) string {
		if utf8.RuneCountInString(line) <= width {
			return line
		}
		lead := line[:len(line)-len(strings.TrimLeftFunc(line, unicode.IsSpace))]
		var out []string
		cur := lead
		curLen := utf8.RuneCountInString(lead)
		empty := true
		for _, w := range strings.Fields(line) {
			wl := utf8.RuneCountInString(w)
			if !empty && curLen+1+wl > width {
				out = append(out, cur)
				cur, curLen, empty = lead, utf8.RuneCountInString(lead), true
			}
			if !empty {
				cur += " "
				curLen++
			}
			cur += w
			curLen += wl
			empty = false
		}
		out = append(out, cur)
		return strings.Join(out, "\n")
	})
}

func dedent(s string) string {
	lines := strings.Split(s, "\n")
	prefix := ""
	first := true
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		indent := l[:len(l)-len(strings.TrimLeft(l, " \t"))]
		if first {
			prefix, first = indent, false
			continue
		}
		prefix = commonPrefix(prefix, indent)
	}
	if prefix == "" {
		return s
	}
	for i, l := range lines {
		lines[i] = strings.TrimPrefix(l, prefix)
	}
	return strings.Join(lines, "\n")
}

func commonPrefix(a, b string) string {
	n := min(len(a), len(b))
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return a[:i]
}

var sentenceEndRe = regexp.MustCompile(`([.!?…]+["'”’)\]]*)\s+`)

func sentencesToLines(s string) string {
	s = strings.TrimSpace(lineBreakRe.ReplaceAllString(s, " "))
	return sentenceEndRe.ReplaceAllString(s, "$1\n")
}

// naturalCompare orders strings case-insensitively, comparing runs of
// digits by numeric value.
func naturalCompare(a, b string) int {
	a, b = strings.ToLower(a), strings.ToLower(b)
	for a != "" && b != "" {
		da, db := digitRun(a), digitRun(b)
		if da > 0 && db > 0 {
			na := strings.TrimLeft(a[:da], "0")
			nb := strings.TrimLeft(b[:db], "0")
			if c := cmp.Compare(len(na), len(nb)); c != 0 {
				return c
			}
			if c := strings.Compare(na, nb); c != 0 {
				return c
			}
			a, b = a[da:], b[db:]
			continue
		}
		ra, sa := utf8.DecodeRuneInString(a)
		rb, sb := utf8.DecodeRuneInString(b)
		if ra != rb {
			return cmp.Compare(ra, rb)
		}
		a, b = a[sa:], b[sb:]
	}
	return cmp.Compare(len(a), len(b))
}

func digitRun(s string) int {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return i
}
