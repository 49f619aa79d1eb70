package preserve

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Config selects which categories are protected for one invocation.
type Config struct {
	URLs       bool `mapstructure:"urls" json:"urls" yaml:"urls"`
	Emails     bool `mapstructure:"emails" json:"emails" yaml:"emails"`
	Hashtags   bool `mapstructure:"hashtags" json:"hashtags" yaml:"hashtags"`
	Mentions   bool `mapstructure:"mentions" json:"mentions" yaml:"mentions"`
	CodeBlocks bool `mapstructure:"code_blocks" json:"code_blocks" yaml:"code_blocks"`
	Markdown   bool `mapstructure:"markdown" json:"markdown" yaml:"markdown"`
	Brands     bool `mapstructure:"brands" json:"brands" yaml:"brands"`
	FilePaths  bool `mapstructure:"file_paths" json:"file_paths" yaml:"file_paths"`
}

// All returns a Config with every category enabled.
func All() Config {
	return Config{
		URLs:       true,
		Emails:     true,
		Hashtags:   true,
		Mentions:   true,
		CodeBlocks: true,
		Markdown:   true,
		Brands:     true,
		FilePaths:  true,
	}
}

// Enabled reports whether category c is protected.
func (c Config) Enabled(cat Category) bool {
	switch cat {
	case CategoryURL:
		return c.URLs
	case CategoryEmail:
		return c.Emails
	case CategoryHashtag:
		return c.Hashtags
	case CategoryMention:
		return c.Mentions
	case CategoryCodeBlock:
		return c.CodeBlocks
	case CategoryMarkdown:
		return c.Markdown
	case CategoryBrand:
		return c.Brands
	case CategoryFilePath:
		return c.FilePaths
	}
	return false
}

// Any reports whether at least one category is enabled.
func (c Config) Any() bool {
	return c != Config{}
}

// With returns a copy of c with category cat switched on or off.
func (c Config) With(cat Category, on bool) Config {
	switch cat {
	case CategoryURL:
		c.URLs = on
	case CategoryEmail:
		c.Emails = on
	case CategoryHashtag:
		c.Hashtags = on
	case CategoryMention:
		c.Mentions = on
	case CategoryCodeBlock:
		c.CodeBlocks = on
	case CategoryMarkdown:
		c.Markdown = on
	case CategoryBrand:
		c.Brands = on
	case CategoryFilePath:
		c.FilePaths = on
	}
	return c
}

// ErrUnknownCategory is returned by ParseCategories for unrecognised names.
var ErrUnknownCategory = errors.New("unknown preservation category")

// ParseCategories builds a Config enabling exactly the named categories.
// Names are Category values, case-insensitive, with "-" accepted for "_".
// "all" enables every category and "none" clears the set.
func ParseCategories(names []string) (Config, error) {
	var c Config
	for _, raw := range names {
		name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "-", "_")
		switch name {
		case "":
			continue
		case "all":
			c = All()
			continue
		case "none":
			c = Config{}
			continue
		}
		cat := Category(name)
		if !slices.Contains(Order, cat) {
			return Config{}, fmt.Errorf("%w: %q", ErrUnknownCategory, raw)
		}
		c = c.With(cat, true)
	}
	return c, nil
}

// Span records one protected substring. Spans belong to the Preserve call
// that produced them and must only be passed to Restore for that call's
// output.
type Span struct {
	Original string   `json:"original" yaml:"original"`
	Token    string   `json:"-" yaml:"-"`
	Category Category `json:"category" yaml:"category"`
	Start    int      `json:"start" yaml:"start"`
	Index    int      `json:"index" yaml:"index"`
}

// End is the byte offset just past the span in the original text.
func (s Span) End() int {
	return s.Start + len(s.Original)
}

// MissingPlaceholderWarning reports a token that no longer appears in the
// transformed text. Its original substring could not be put back.
type MissingPlaceholderWarning struct {
	Category Category `json:"category" yaml:"category"`
	Original string   `json:"original" yaml:"original"`
	Index    int      `json:"index" yaml:"index"`
}

func (w MissingPlaceholderWarning) String() string {
	return fmt.Sprintf("preserved %s #%d (%q) was removed by the transformation", w.Category, w.Index, w.Original)
}

// Engine finds protected substrings, swaps them for placeholder tokens and
// swaps them back. An Engine is immutable after construction and safe for
// concurrent use.
type Engine struct {
	patterns map[Category]Pattern
	brands   []string
	ranges   []tokenRange
	logger   *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithBrands replaces the brand list. An empty list disables brand
// detection entirely.
func WithBrands(brands []string) EngineOption {
	return func(e *Engine) {
		e.brands = append([]string(nil), brands...)
	}
}

// WithPattern overrides the built-in pattern for p.Category.
func WithPattern(p Pattern) EngineOption {
	return func(e *Engine) {
		e.patterns[p.Category] = p
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an Engine with the built-in patterns and DefaultBrands.
func NewEngine(opts ...EngineOption) (*Engine, error) {
	e := &Engine{
		patterns: BuiltInPatterns(),
		brands:   DefaultBrands,
		ranges:   defaultTokenRanges,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if _, custom := e.patterns[CategoryBrand]; !custom {
		p, ok, err := brandPattern(e.brands)
		if err != nil {
			return nil, fmt.Errorf("brand pattern: %w", err)
		}
		if ok {
			e.patterns[CategoryBrand] = p
		}
	}

	for c, p := range e.patterns {
		if p.Regex == nil {
			return nil, fmt.Errorf("pattern for %s has no regex", c)
		}
		if p.Regex.MatchString("") {
			return nil, fmt.Errorf("%w: %s", ErrNullablePattern, c)
		}
	}
	return e, nil
}

type interval struct {
	start, end int
}

// Preserve replaces every protected substring in text with a placeholder
// token. Categories claim text in Order; a later category drops any match
// that overlaps a region claimed earlier. Spans are returned sorted by
// start offset.
func (e *Engine) Preserve(text string, cfg Config) (string, []Span, error) {
	if text == "" || !cfg.Any() {
		return text, nil, nil
	}

	var (
		spans   []Span
		claimed []interval
	)
	for _, c := range Order {
		if !cfg.Enabled(c) {
			continue
		}
		p, ok := e.patterns[c]
		if !ok {
			continue
		}

		found := scanUnclaimed(text, p, claimed)
		for _, iv := range found {
			spans = append(spans, Span{
				Original: text[iv.start:iv.end],
				Category: c,
				Start:    iv.start,
			})
		}
		if len(found) > 0 {
			e.logger.Debug("preserve: category matched", "category", c, "count", len(found))
			claimed = mergeIntervals(claimed, found)
		}
	}

	if len(spans) == 0 {
		return text, nil, nil
	}

	sort.Slice(spans, func(i, j int) bool {
		return spans[i].Start < spans[j].Start
	})

	alloc := newAllocator(text, e.ranges)
	var b strings.Builder
	b.Grow(len(text))
	pos := 0
	for i := range spans {
		tok, err := alloc.token()
		if err != nil {
			return text, nil, err
		}
		spans[i].Token = tok
		spans[i].Index = i

		b.WriteString(text[pos:spans[i].Start])
		b.WriteString(tok)
		pos = spans[i].End()
	}
	b.WriteString(text[pos:])

	return b.String(), spans, nil
}

// Restore puts every span's original substring back in place of its token.
// A token the transformation duplicated is restored at every occurrence. A
// token that disappeared yields a warning; the rest of the text is still
// restored.
func (e *Engine) Restore(text string, spans []Span) (string, []MissingPlaceholderWarning) {
	return e.RestoreWith(text, spans, func(s Span) string { return s.Original })
}

// RestoreWith is like Restore but lets render choose the replacement for
// each span, for example to highlight preserved regions in a terminal.
func (e *Engine) RestoreWith(text string, spans []Span, render func(Span) string) (string, []MissingPlaceholderWarning) {
	if len(spans) == 0 {
		return text, nil
	}

	var warnings []MissingPlaceholderWarning
	pairs := make([]string, 0, 2*len(spans))
	for _, s := range spans {
		if s.Token == "" || !strings.Contains(text, s.Token) {
			warnings = append(warnings, MissingPlaceholderWarning{
				Category: s.Category,
				Original: s.Original,
				Index:    s.Index,
			})
			continue
		}
		pairs = append(pairs, s.Token, render(s))
	}

	if len(warnings) > 0 {
		e.logger.Debug("restore: placeholders missing", "missing", len(warnings), "spans", len(spans))
	}
	if len(pairs) == 0 {
		return text, warnings
	}
	return strings.NewReplacer(pairs...).Replace(text), warnings
}

// scanUnclaimed runs p over the whole text and keeps the matches that do not
// overlap a claimed interval. Matching the whole text keeps anchors and
// left-context groups honest at the edges of claimed regions. claimed must
// be sorted and non-overlapping.
func scanUnclaimed(text string, p Pattern, claimed []interval) []interval {
	var out []interval
	for _, m := range p.Regex.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[0], m[1]
		if len(m) >= 4 && m[2] >= 0 {
			start, end = m[2], m[3]
		}
		if start == end {
			continue
		}
		if p.WordEnd && end < len(text) {
			r, _ := utf8.DecodeRuneInString(text[end:])
			if isWordRune(r) {
				continue
			}
		}
		if overlaps(claimed, start, end) {
			continue
		}
		out = append(out, interval{start: start, end: end})
	}
	return out
}

func overlaps(claimed []interval, start, end int) bool {
	i := sort.Search(len(claimed), func(i int) bool {
		return claimed[i].end > start
	})
	return i < len(claimed) && claimed[i].start < end
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func mergeIntervals(a, b []interval) []interval {
	out := make([]interval, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	sort.Slice(out, func(i, j int) bool {
		return out[i].start < out[j].start
	})
	return out
}
