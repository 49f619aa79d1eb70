package preserve

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Category identifies a class of protected substring.
type Category string

const (
	CategoryURL       Category = "url"
	CategoryEmail     Category = "email"
	CategoryHashtag   Category = "hashtag"
	CategoryMention   Category = "mention"
	CategoryCodeBlock Category = "code_block"
	CategoryMarkdown  Category = "markdown"
	CategoryBrand     Category = "brand"
	CategoryFilePath  Category = "file_path"
)

// Order is the fixed priority in which categories claim text. A region
// claimed by an earlier category is never re-matched by a later one.
var Order = []Category{
	CategoryURL,
	CategoryEmail,
	CategoryHashtag,
	CategoryMention,
	CategoryCodeBlock,
	CategoryMarkdown,
	CategoryBrand,
	CategoryFilePath,
}

// ErrNullablePattern is returned for patterns that can match the empty string.
var ErrNullablePattern = errors.New("pattern matches the empty string")

// Pattern detects one category of protected substring. When the regex has a
// capture group, group 1 is the protected region and the rest of the match
// is context only (Go's regexp has no lookbehind).
type Pattern struct {
	Category    Category
	Regex       *regexp.Regexp
	Description string

	// WordEnd rejects matches followed directly by a letter, digit or
	// underscore. It stands in for a trailing lookahead.
	WordEnd bool
}

// NewPattern compiles expr for category c and rejects expressions that can
// match the empty string.
func NewPattern(c Category, expr, description string) (Pattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return Pattern{}, fmt.Errorf("compile %s pattern: %w", c, err)
	}
	if re.MatchString("") {
		return Pattern{}, fmt.Errorf("%w: %s", ErrNullablePattern, c)
	}
	return Pattern{Category: c, Regex: re, Description: description}, nil
}

func mustPattern(c Category, expr, description string) Pattern {
	p, err := NewPattern(c, expr, description)
	if err != nil {
		panic(err)
	}
	return p
}

// Built-in patterns. Each one is non-nullable by construction.
var (
	// https://example.com/path?q=1, ftp://host/file, www.example.org
	// Trailing sentence punctuation is left outside the match.
	urlPattern = mustPattern(CategoryURL,
		`(?i)\b(?:(?:https?|ftp)://|www\.)[^\s<>"'\x60\x00]*[^\s<>"'\x60\x00.,;:!?)\]}]`,
		"URLs")

	// user@example.com
	emailPattern = mustPattern(CategoryEmail,
		`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`,
		"Email addresses")

	// #golang, #日本 but not C# or &#123;
	hashtagPattern = mustPattern(CategoryHashtag,
		`(?:^|[^\p{L}\p{N}_&#/])(#[\p{L}_][\p{L}\p{N}_]*)`,
		"Hashtags")

	// @someone, @some.one but not the local part of an email
	mentionPattern = mustPattern(CategoryMention,
		`(?:^|[^\p{L}\p{N}_.@])(@[A-Za-z0-9_](?:[A-Za-z0-9_.]*[A-Za-z0-9_])?)`,
		"Mentions")

	// ```fenced```, ~~~fenced~~~ and `inline` code
	codeBlockPattern = mustPattern(CategoryCodeBlock,
		"(?s)```.*?```|~~~.*?~~~|`[^`\\n]+`",
		"Code blocks")

	// [links](target), ![images](src), heading/list/quote markers, emphasis
	// markers and horizontal rules.
	markdownPattern = mustPattern(CategoryMarkdown,
		`(?m)!?\[[^\]\n]*\]\([^)\s]+\)|^#{1,6}[ \t]|^[ \t]*(?:[-*+]|\d+\.)[ \t]|^>[ \t]?|^(?:-{3,}|\*{3,}|_{3,})$|\*\*|__|~~`,
		"Markdown syntax")

	// /usr/local/bin, ./run.sh, ~/notes, C:\Windows\System32, src/main.go
	filePathPattern = mustPattern(CategoryFilePath,
		`(?m)(?:^|[\s(\[{"'=\x00])((?:~|\.{1,2})?/[\w.\-]+(?:/[\w.\-]+)*/?|[A-Za-z]:\\[^\s<>:"|?*\x00]+|[\w.\-]+(?:/[\w.\-]+)*/[\w\-]+\.[A-Za-z0-9]{1,8})`,
		"File paths")
)

// DefaultBrands are product and company names whose exact casing must
// survive case transformations.
var DefaultBrands = []string{
	"iPhone", "iPad", "iPod", "iOS", "iPadOS", "macOS", "iCloud", "iMac", "AirPods",
	"GitHub", "GitLab", "Bitbucket", "JavaScript", "TypeScript", "CoffeeScript",
	"YouTube", "LinkedIn", "PayPal", "WordPress", "WooCommerce", "PostgreSQL",
	"MySQL", "SQLite", "MongoDB", "Redis", "OpenAI", "ChatGPT", "eBay", "PlayStation",
	"Xbox", "WhatsApp", "TikTok", "FedEx", "Wi-Fi", "Bluetooth", "Node.js", "Next.js",
	"Vue.js", "React", "jQuery", "npm", "Kubernetes", "Docker", "DevOps", "HubSpot",
	"Salesforce", "McDonald's", "IKEA", "NASA", "AWS", "IBM", "SaaS", "API", "SQL",
	"HTML", "CSS", "JSON", "YAML", "GraphQL", "OAuth", "DuckDuckGo", "SpaceX",
}

// brandPattern builds a pattern matching the given names as whole words.
// Longer names are tried first so "Next.js" wins over a shorter prefix.
func brandPattern(brands []string) (Pattern, bool, error) {
	names := make([]string, 0, len(brands))
	seen := make(map[string]struct{}, len(brands))
	for _, b := range brands {
		b = strings.TrimSpace(b)
		if b == "" {
			continue
		}
		if _, dup := seen[b]; dup {
			continue
		}
		seen[b] = struct{}{}
		names = append(names, b)
	}
	if len(names) == 0 {
		return Pattern{}, false, nil
	}

	sort.SliceStable(names, func(i, j int) bool {
		return len(names[i]) > len(names[j])
	})

	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = regexp.QuoteMeta(n)
	}

	// Boundaries are checked around the group rather than with \b so names
	// that end in punctuation ("Node.js", "McDonald's") still match.
	expr := `(?:^|[^\p{L}\p{N}_])(` + strings.Join(quoted, "|") + `)`
	p, err := NewPattern(CategoryBrand, expr, "Brand names")
	if err != nil {
		return Pattern{}, false, err
	}
	p.WordEnd = true
	return p, true, nil
}

// BuiltInPatterns returns the default pattern for every category except
// brands, which depend on configuration.
func BuiltInPatterns() map[Category]Pattern {
	return map[Category]Pattern{
		CategoryURL:       urlPattern,
		CategoryEmail:     emailPattern,
		CategoryHashtag:   hashtagPattern,
		CategoryMention:   mentionPattern,
		CategoryCodeBlock: codeBlockPattern,
		CategoryMarkdown:  markdownPattern,
		CategoryFilePath:  filePathPattern,
	}
}
