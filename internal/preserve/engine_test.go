package preserve

import (
	"errors"
	"regexp"
	"slices"
	"strings"
	"testing"
	"unicode/utf8"
)

func newTestEngine(t *testing.T, opts ...EngineOption) *Engine {
	t.Helper()
	e, err := NewEngine(opts...)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return e
}

func TestPreserve_RoundTrip(t *testing.T) {
	e := newTestEngine(t)

	inputs := []string{
		"",
		"   ",
		"plain prose with nothing to protect",
		"Contact me at a@b.com NOW",
		"see https://example.com/a?b=c, then mail ops@example.org.",
		"ping @alice and @bob.smith about #release_2 and #日本",
		"run `go test ./...` or\n```\nmake build\n```\n",
		"# Heading\n- item **bold** [link](https://x.io)\n> quote\n---",
		"I love my iPhone and GitHub, but not iPhones.",
		"edit ./cmd/root.go and C:\\Users\\me\\file.txt or ~/notes",
		"collision \uE000 \uE001 already here a@b.com",
		"emoji 🎉 and accents café naïve #tag",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			protected, spans, err := e.Preserve(in, All())
			if err != nil {
				t.Fatalf("Preserve() error = %v", err)
			}
			got, warnings := e.Restore(protected, spans)
			if got != in {
				t.Errorf("round trip = %q, want %q", got, in)
			}
			if len(warnings) != 0 {
				t.Errorf("unexpected warnings: %v", warnings)
			}
		})
	}
}

func TestPreserve_Categories(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name string
		text string
		cfg  Config
		want []string
	}{
		{
			name: "email",
			text: "Contact me at a@b.com NOW",
			cfg:  Config{Emails: true},
			want: []string{"a@b.com"},
		},
		{
			name: "url strips trailing punctuation",
			text: "Visit https://example.com/docs.",
			cfg:  Config{URLs: true},
			want: []string{"https://example.com/docs"},
		},
		{
			name: "hashtag but not csharp",
			text: "I write C# and post #golang",
			cfg:  Config{Hashtags: true},
			want: []string{"#golang"},
		},
		{
			name: "mention but not email local part",
			text: "cc @dev_team, mail x@y.io",
			cfg:  Config{Mentions: true},
			want: []string{"@dev_team"},
		},
		{
			name: "inline code",
			text: "call `strings.ToUpper` here",
			cfg:  Config{CodeBlocks: true},
			want: []string{"`strings.ToUpper`"},
		},
		{
			name: "adjacent brands",
			text: "iPhone iPad",
			cfg:  Config{Brands: true},
			want: []string{"iPhone", "iPad"},
		},
		{
			name: "brand needs a word end",
			text: "iPhones are not iPhone",
			cfg:  Config{Brands: true},
			want: []string{"iPhone"},
		},
		{
			name: "file path",
			text: "open /etc/hosts now",
			cfg:  Config{FilePaths: true},
			want: []string{"/etc/hosts"},
		},
		{
			name: "disabled category",
			text: "Contact me at a@b.com NOW",
			cfg:  Config{URLs: true},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, spans, err := e.Preserve(tt.text, tt.cfg)
			if err != nil {
				t.Fatalf("Preserve() error = %v", err)
			}
			var got []string
			for _, s := range spans {
				got = append(got, s.Original)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("spans = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPreserve_PriorityOrder(t *testing.T) {
	e := newTestEngine(t)

	// The URL is claimed first; the email pattern never sees the
	// user@host part again.
	text := "fetch https://user@example.com/path"
	_, spans, err := e.Preserve(text, All())
	if err != nil {
		t.Fatalf("Preserve() error = %v", err)
	}
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1: %+v", len(spans), spans)
	}
	if spans[0].Category != CategoryURL {
		t.Errorf("category = %s, want %s", spans[0].Category, CategoryURL)
	}
}

func TestPreserve_ContextBesideClaimedRegion(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name string
		text string
		cfg  Config
		want []string
	}{
		{
			name: "hashtag glued to a word",
			text: "x#tag",
			cfg:  All(),
			want: nil,
		},
		{
			name: "hashtag glued to an email",
			text: "a@b.com#tag",
			cfg:  All(),
			want: []string{"a@b.com"},
		},
		{
			name: "mention after an email",
			text: "a@b.com @bob",
			cfg:  All(),
			want: []string{"a@b.com", "@bob"},
		},
		{
			name: "list marker only at line start",
			text: "see https://x.io - item",
			cfg:  Config{URLs: true, Markdown: true},
			want: []string{"https://x.io"},
		},
		{
			name: "list marker on the next line",
			text: "see https://x.io\n- item",
			cfg:  Config{URLs: true, Markdown: true},
			want: []string{"https://x.io", "- "},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, spans, err := e.Preserve(tt.text, tt.cfg)
			if err != nil {
				t.Fatalf("Preserve() error = %v", err)
			}
			var got []string
			for _, s := range spans {
				got = append(got, s.Original)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("spans = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPreserve_SpansSortedByStart(t *testing.T) {
	e := newTestEngine(t)

	text := "@zed wrote to a@b.com about https://x.io"
	_, spans, err := e.Preserve(text, All())
	if err != nil {
		t.Fatalf("Preserve() error = %v", err)
	}
	for i := 1; i < len(spans); i++ {
		if spans[i-1].Start >= spans[i].Start {
			t.Errorf("spans not sorted: %+v", spans)
		}
	}
	for i, s := range spans {
		if s.Index != i {
			t.Errorf("span %d has index %d", i, s.Index)
		}
		if text[s.Start:s.End()] != s.Original {
			t.Errorf("span %d offset mismatch: %q vs %q", i, text[s.Start:s.End()], s.Original)
		}
	}
}

func TestPreserve_TokensAreSingleRunes(t *testing.T) {
	e := newTestEngine(t)

	_, spans, err := e.Preserve("a@b.com c@d.org", Config{Emails: true})
	if err != nil {
		t.Fatalf("Preserve() error = %v", err)
	}
	seen := map[string]bool{}
	for _, s := range spans {
		if utf8.RuneCountInString(s.Token) != 1 {
			t.Errorf("token %q is not a single rune", s.Token)
		}
		if seen[s.Token] {
			t.Errorf("token %q reused", s.Token)
		}
		seen[s.Token] = true
	}
}

func TestPreserve_TokenCollision(t *testing.T) {
	e := newTestEngine(t)

	// The input already contains the first two candidate code points.
	text := "\uE000\uE001 contact a@b.com"
	protected, spans, err := e.Preserve(text, Config{Emails: true})
	if err != nil {
		t.Fatalf("Preserve() error = %v", err)
	}
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if strings.Contains(text, spans[0].Token) {
		t.Errorf("token %q collides with input", spans[0].Token)
	}

	got, _ := e.Restore(strings.ToUpper(protected), spans)
	want := "\uE000\uE001 CONTACT a@b.com"
	if got != want {
		t.Errorf("Restore() = %q, want %q", got, want)
	}
}

func TestPreserve_TokenSpaceExhausted(t *testing.T) {
	e := newTestEngine(t)
	e.ranges = []tokenRange{{0xE000, 0xE001}}

	_, _, err := e.Preserve("\uE000 a@b.com c@d.com", Config{Emails: true})
	if !errors.Is(err, ErrTokenSpaceExhausted) {
		t.Errorf("Preserve() error = %v, want ErrTokenSpaceExhausted", err)
	}
}

func TestPreserve_SurvivesCaseAndReversal(t *testing.T) {
	e := newTestEngine(t)

	text := "Contact me at a@b.com NOW"
	protected, spans, err := e.Preserve(text, Config{Emails: true})
	if err != nil {
		t.Fatalf("Preserve() error = %v", err)
	}

	upper, warnings := e.Restore(strings.ToUpper(protected), spans)
	if upper != "CONTACT ME AT a@b.com NOW" {
		t.Errorf("upper = %q", upper)
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %v", warnings)
	}

	runes := []rune(protected)
	slices.Reverse(runes)
	reversed, _ := e.Restore(string(runes), spans)
	if reversed != "WON a@b.com ta em tcatnoC" {
		t.Errorf("reversed = %q", reversed)
	}
}

func TestRestore_MissingToken(t *testing.T) {
	e := newTestEngine(t)

	protected, spans, err := e.Preserve("mail a@b.com or c@d.com", Config{Emails: true})
	if err != nil {
		t.Fatalf("Preserve() error = %v", err)
	}

	damaged := strings.Replace(protected, spans[0].Token, "", 1)
	got, warnings := e.Restore(damaged, spans)

	if got != "mail  or c@d.com" {
		t.Errorf("Restore() = %q", got)
	}
	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want 1", len(warnings))
	}
	if warnings[0].Original != "a@b.com" || warnings[0].Category != CategoryEmail {
		t.Errorf("warning = %+v", warnings[0])
	}
	if !strings.Contains(warnings[0].String(), "a@b.com") {
		t.Errorf("warning text %q should name the original", warnings[0].String())
	}
}

func TestRestore_DuplicatedToken(t *testing.T) {
	e := newTestEngine(t)

	protected, spans, err := e.Preserve("#go", Config{Hashtags: true})
	if err != nil {
		t.Fatalf("Preserve() error = %v", err)
	}
	got, warnings := e.Restore(protected+" "+protected, spans)
	if got != "#go #go" {
		t.Errorf("Restore() = %q, want %q", got, "#go #go")
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %v", warnings)
	}
}

func TestRestoreWith(t *testing.T) {
	e := newTestEngine(t)

	protected, spans, err := e.Preserve("hi @ann", Config{Mentions: true})
	if err != nil {
		t.Fatalf("Preserve() error = %v", err)
	}
	got, _ := e.RestoreWith(protected, spans, func(s Span) string {
		return "[" + s.Original + "]"
	})
	if got != "hi [@ann]" {
		t.Errorf("RestoreWith() = %q", got)
	}
}

func TestWithBrands(t *testing.T) {
	e := newTestEngine(t, WithBrands([]string{"recase", "Node.js"}))

	_, spans, err := e.Preserve("recase runs on Node.js, not on iPhone", Config{Brands: true})
	if err != nil {
		t.Fatalf("Preserve() error = %v", err)
	}
	var got []string
	for _, s := range spans {
		got = append(got, s.Original)
	}
	want := []string{"recase", "Node.js"}
	if !slices.Equal(got, want) {
		t.Errorf("brands = %q, want %q", got, want)
	}

	none := newTestEngine(t, WithBrands(nil))
	_, spans, _ = none.Preserve("iPhone", Config{Brands: true})
	if len(spans) != 0 {
		t.Errorf("empty brand list still matched: %+v", spans)
	}
}

func TestNewPattern_RejectsNullable(t *testing.T) {
	_, err := NewPattern(CategoryURL, `a*`, "nullable")
	if !errors.Is(err, ErrNullablePattern) {
		t.Errorf("NewPattern() error = %v, want ErrNullablePattern", err)
	}

	_, err = NewPattern(CategoryURL, `(`, "broken")
	if err == nil {
		t.Error("NewPattern() accepted an invalid expression")
	}
}

func TestWithPattern(t *testing.T) {
	p, err := NewPattern(CategoryMention, `(?:^|\s)(@@[a-z]+)`, "double mentions")
	if err != nil {
		t.Fatalf("NewPattern() error = %v", err)
	}
	e := newTestEngine(t, WithPattern(p))

	_, spans, err := e.Preserve("hello @@team and @solo", Config{Mentions: true})
	if err != nil {
		t.Fatalf("Preserve() error = %v", err)
	}
	if len(spans) != 1 || spans[0].Original != "@@team" {
		t.Errorf("spans = %+v", spans)
	}
}

func TestNewEngine_RejectsNilRegex(t *testing.T) {
	_, err := NewEngine(WithPattern(Pattern{Category: CategoryURL}))
	if err == nil {
		t.Error("NewEngine() accepted a pattern without a regex")
	}
}

func TestNewEngine_RejectsNullablePattern(t *testing.T) {
	_, err := NewEngine(WithPattern(Pattern{Category: CategoryEmail, Regex: regexp.MustCompile(`z*`)}))
	if !errors.Is(err, ErrNullablePattern) {
		t.Errorf("NewEngine() error = %v, want ErrNullablePattern", err)
	}
}

func TestBuiltInPatternsNonNullable(t *testing.T) {
	for c, p := range BuiltInPatterns() {
		if p.Regex.MatchString("") {
			t.Errorf("%s pattern matches the empty string", c)
		}
	}
	if _, err := regexp.Compile(urlPattern.Regex.String()); err != nil {
		t.Errorf("url pattern does not recompile: %v", err)
	}
}

func TestConfig(t *testing.T) {
	if (Config{}).Any() {
		t.Error("zero Config reports Any() = true")
	}
	all := All()
	for _, c := range Order {
		if !all.Enabled(c) {
			t.Errorf("All() does not enable %s", c)
		}
	}
	if (Config{Emails: true}).Enabled(CategoryURL) {
		t.Error("Emails-only config enables URLs")
	}
}

func TestParseCategories(t *testing.T) {
	tests := []struct {
		names []string
		want  Config
	}{
		{nil, Config{}},
		{[]string{"url", "Email"}, Config{URLs: true, Emails: true}},
		{[]string{"code-block", " file_path "}, Config{CodeBlocks: true, FilePaths: true}},
		{[]string{"all"}, All()},
		{[]string{"all", "none", "brand"}, Config{Brands: true}},
	}
	for _, tt := range tests {
		got, err := ParseCategories(tt.names)
		if err != nil {
			t.Errorf("ParseCategories(%q) error = %v", tt.names, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseCategories(%q) = %+v, want %+v", tt.names, got, tt.want)
		}
	}

	if _, err := ParseCategories([]string{"url", "phone"}); !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("ParseCategories(phone) error = %v, want ErrUnknownCategory", err)
	}
}

func TestConfigWith(t *testing.T) {
	for _, cat := range Order {
		c := Config{}.With(cat, true)
		if !c.Enabled(cat) {
			t.Errorf("With(%s, true) did not enable it", cat)
		}
		if All().With(cat, false).Enabled(cat) {
			t.Errorf("With(%s, false) did not disable it", cat)
		}
	}
}
