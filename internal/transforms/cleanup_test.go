package transforms

import "testing"

func TestCleanupTransforms(t *testing.T) {
	runCases(t, []transformCase{
		{"trim", "  a b \n", "a b"},
		{"remove-extra-spaces", "a   b\t\tc", "a b c"},
		{"remove-line-breaks", "a\n  b\r\nc", "a b c"},
		{"remove-empty-lines", "a\n\n  \nb", "a\nb"},
		{"remove-duplicate-lines", "a\nb\na", "a\nb"},
		{"remove-punctuation", "Hi, there!", "Hi there"},
		{"remove-numbers", "a1b2", "ab"},
		{"remove-letters", "a1b2", "12"},
		{"remove-accents", "Crème brûlée", "Creme brulee"},
		{"remove-emoji", "hi 😀👍🏽", "hi "},
		{"remove-html-tags", "<p>Hi <b>there</b></p><!-- c -->", "Hi there"},
		{"remove-special-characters", "a@b#c d", "abc d"},
		{"normalize-whitespace", "  a  b  \n c ", "a b\nc"},
		{"tabs-to-spaces", "a\tb", "a   b"},
		{"spaces-to-tabs", "        x\n      y", "\t\tx\n\t  y"},
		{"normalize-line-endings", "a\r\nb\rc", "a\nb\nc"},
		{"smart-quotes", `"Hi," she said. It's 'ok'`, "“Hi,” she said. It’s ‘ok’"},
		{"straight-quotes", "“Hi,” it’s", `"Hi," it's`},
		{"nfd", "é", "e\u0301"},
		{"nfc", "e\u0301", "é"},
		{"nfkc", "ﬁ", "fi"},
		{"strip-non-ascii", "café \uE000", "caf \uE000"},
		{"collapse-blank-lines", "a\n\n\n\nb", "a\n\nb"},
		{"trim-trailing-whitespace", "a  \r\nb\t", "a\r\nb"},
		{"strip-ansi", "\x1b[31mred\x1b[0m", "red"},
		{"remove-zero-width", "a\u200Bb\uFEFF", "ab"},
	})
}

func TestCleanupTransforms_KeepPlaceholders(t *testing.T) {
	runCases(t, []transformCase{
		{"remove-punctuation", "see \uE000, now!", "see \uE000 now"},
		{"remove-special-characters", "#\uE000#", "\uE000"},
		{"remove-letters", "ab\uE000", "\uE000"},
	})
}
