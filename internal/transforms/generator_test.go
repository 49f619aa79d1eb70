package transforms

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

func TestGeneratorTransforms(t *testing.T) {
	runCases(t, []transformCase{
		{"slugify", "Héllo, World! 2024", "hello-world-2024"},
		{"acronym", "portable network graphics", "PNG"},
		{"initials", "john ronald tolkien", "J.R.T."},
		{"hashtags", "Hello world hello", "#hello #world"},
		{"username", "John Doe-Smith", "john_doe_smith"},
		{"username", strings.Repeat("abcdefghij ", 5), "abcdefghij_abcdefghij_abcdefghij"},
		{"filename-safe", `a/b:c?.txt`, "a_b_c_.txt"},
		{"filename-safe", "???", "_"},
		{"lorem-ipsum", "a b c", "Lorem ipsum dolor."},
		{"word-count", "one two  three", "3"},
		{"character-count", "héllo", "5"},
		{"line-count", "a\nb\n", "2"},
		{"line-count", "", "0"},
		{"sentence-count", "Hi. There! Ok", "3"},
		{"word-frequency", "b a b", "b: 2\na: 1"},
		{"reading-time", strings.Repeat("word ", 450), "3 min read"},
	})
}

func TestGeneratorTransforms_Statistics(t *testing.T) {
	r := newTestRegistry(t)
	got := apply(t, r, "text-statistics", "One two. Three!\n\nFour")

	for _, row := range [][2]string{
		{"Words:", "4"},
		{"Sentences:", "3"},
		{"Lines:", "3"},
		{"Paragraphs:", "2"},
	} {
		want := fmt.Sprintf("%-24s%s", row[0], row[1])
		if !strings.Contains(got, want) {
			t.Errorf("text-statistics missing %q in\n%s", want, got)
		}
	}
}

func TestDeveloperTransforms(t *testing.T) {
	runCases(t, []transformCase{
		{"escape-regex", "a.b*c", `a\.b\*c`},
		{"sql-escape", "O'Brien", "O''Brien"},
		{"shell-escape", "safe-file.txt", "safe-file.txt"},
		{"shell-escape", "it's here", `'it'\''s here'`},
		{"json-escape", "a\"b\n<", `a\"b\n<`},
		{"json-unescape", `a\"b\n`, "a\"b\n"},
		{"json-pretty", `{"a":1}`, "{\n  \"a\": 1\n}"},
		{"json-minify", "{\n  \"a\": [1, 2]\n}", `{"a":[1,2]}`},
		{"xml-escape", `<a & 'b'>`, "&lt;a &amp; &apos;b&apos;&gt;"},
		{"csv-escape", "plain", "plain"},
		{"csv-escape", `a,"b"`, `"a,""b"""`},
		{"escape-newlines", "a\nb\\", `a\nb\\`},
		{"unescape-newlines", `a\nb\\`, "a\nb\\"},
		{"go-string", `a"b`, `"a\"b"`},
		{"sql-in-list", "1\n2\n3", "(1, 2, 3)"},
		{"sql-in-list", "a\nb'c\n", "('a', 'b''c')"},
		{"json-array", "a\n<b>", `["a","<b>"]`},
		{"json-array", "", "[]"},
	})
}

func TestDeveloperTransforms_InvalidJSON(t *testing.T) {
	r := newTestRegistry(t)
	tests := []struct {
		key string
		in  string
	}{
		{"json-pretty", `{"a":`},
		{"json-minify", `{"a":`},
		{"json-unescape", `bad \q escape`},
	}

	for _, tt := range tests {
		d, _ := r.Lookup(tt.key)
		if _, err := d.Apply(context.Background(), tt.in); err == nil {
			t.Errorf("%s(%q) error = nil, want error", tt.key, tt.in)
		}
	}
}
