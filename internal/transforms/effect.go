package transforms

import (
	"math/rand/v2"
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

func effectEntries() []entry {
	return []entry{
		pure("reverse", "Reverse the text, keeping combining marks on their letters", reverseText),
		pure("reverse-words", "Reverse the order of words on each line", reverseWords),
		pure("upside-down", "Flip the text upside down", upsideDown),
		pure("strikethrough", "Strike through each character", combine('\u0336')),
		pure("underline", "Underline each character", combine('\u0332')),
		pure("double-underline", "Double underline each character", combine('\u0333')),
		pure("slash-through", "Slash through each character", combine('\u0338')),
		pure("dotted-text", "Diaeresis over each character", combine('\u0308')),
		pure("bubble-text", "Ⓒⓘⓡⓒⓛⓔⓓ letters and digits", bubbleText),
		pure("square-text", "Squared capital letters", squareText),
		pure("bold", "Mathematical bold", mathAlpha(bold)),
		pure("italic", "Mathematical italic", mathAlpha(italic)),
		pure("bold-italic", "Mathematical bold italic", mathAlpha(boldItalic)),
		pure("script", "Mathematical script", mathAlpha(script)),
		pure("bold-script", "Mathematical bold script", mathAlpha(boldScript)),
		pure("fraktur", "Mathematical fraktur", mathAlpha(fraktur)),
		pure("double-struck", "Double-struck letters and digits", mathAlpha(doubleStruck)),
		pure("monospace", "Mathematical monospace", mathAlpha(monospace)),
		pure("sans-serif", "Mathematical sans-serif", mathAlpha(sansSerif)),
		pure("sans-bold", "Mathematical sans-serif bold", mathAlpha(sansBold)),
		pure("sans-italic", "Mathematical sans-serif italic", mathAlpha(sansItalic)),
		pure("small-caps", "Sᴍᴀʟʟ ᴄᴀᴘɪᴛᴀʟs", mapRunes(smallCaps, true)),
		pure("superscript", "Superscript where a glyph exists", mapRunes(superscripts, false)),
		pure("subscript", "Subscript where a glyph exists", mapRunes(subscripts, false)),
		pure("full-width", "Ｆｕｌｌ－ｗｉｄｔｈ forms", width.Widen.String),
		pure("half-width", "Half-width forms", width.Narrow.String),
		pure("wide-text", "S p a c e d  o u t", wideText),
		pure("leet-speak", "1337 5p34k", mapRunes(leet, true)),
		pure("pig-latin", "Pig Latin", pigLatin),
		pure("clap-text", "Clap 👏 between 👏 words", clapText),
		pure("nato-phonetic", "Spell letters with the NATO alphabet", natoPhonetic),
		pure("zalgo", "Pile random combining marks on each letter", zalgo),
		pure("regional-indicators", "Regional indicator letters", regionalIndicators),
		pure("mirror-text", "Mirror the text horizontally", mirrorText),
	}
}

// cluster returns s split into user-perceived characters: a base rune with
// its combining marks, joined by zero-width joiners where present.
func cluster(s string) []string {
	var out []string
	var cur []rune
	joined := false
	for _, r := range s {
		attach := len(cur) > 0 && (unicode.In(r, unicode.Mn, unicode.Me) || r == '\u200D' || r == '\uFE0F' || joined || isSkinTone(r))
		if !attach && len(cur) > 0 {
			out = append(out, string(cur))
			cur = cur[:0]
		}
		cur = append(cur, r)
		joined = r == '\u200D'
	}
	if len(cur) > 0 {
		out = append(out, string(cur))
	}
	return out
}

func isSkinTone(r rune) bool { return r >= 0x1F3FB && r <= 0x1F3FF }

func reverseText(s string) string {
	cs := cluster(s)
	for i, j := 0, len(cs)-1; i < j; i, j = i+1, j-1 {
		cs[i], cs[j] = cs[j], cs[i]
	}
	return strings.Join(cs, "")
}

func reverseWords(s string) string {
	return perLine(s, func(line string) string {
		words := strings.Fields(line)
		for i, j := 0, len(words)-1; i < j; i, j = i+1, j-1 {
			words[i], words[j] = words[j], words[i]
		}
		lead := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		return lead + strings.Join(words, " ")
	})
}

var upsideDownTable = pairs(
	"abcdefghijklmnopqrstuvwxyz",
	"ɐqɔpǝɟƃɥᴉɾʞlɯuodbɹsʇnʌʍxʎz",
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ",
	"∀ᗺƆᗡƎℲ⅁HIſꓘ˥WNOԀΌᴚS⊥∩ΛMX⅄Z",
	"0123456789.,!?'\"()[]{}<>&_;",
	"0ƖᄅƐㄣϛ9ㄥ86˙'¡¿,„)(][}{><⅋‾؛",
)

func upsideDown(s string) string {
	return reverseText(mapRunes(upsideDownTable, false)(s))
}

var mirrorTable = pairs(
	"abcdefgjklpqrsyzBCDEFGJKLNPQRSZ()[]{}<>/\\?",
	"ɒdɔbɘʇǫįʞlqpɿƨγzᙠƆᗡƎᖷᎮႱꓘ⅃ИꟼϘЯƧZ)(][}{><\\/⸮",
)

func mirrorText(s string) string {
	return reverseText(mapRunes(mirrorTable, false)(s))
}

// combine appends mark after every visible rune. Whitespace and private-use
// runes are left bare.
func combine(mark rune) func(string) string {
	return func(s string) string {
		var b strings.Builder
		b.Grow(len(s) * 3)
		for _, r := range s {
			b.WriteRune(r)
			if !unicode.IsSpace(r) && !unicode.Is(unicode.Co, r) && !unicode.In(r, unicode.Mn, unicode.Me, unicode.Cc, unicode.Cf) {
				b.WriteRune(mark)
			}
		}
		return b.String()
	}
}

func bubbleText(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'A' && r <= 'Z':
			return 0x24B6 + (r - 'A')
		case r >= 'a' && r <= 'z':
			return 0x24D0 + (r - 'a')
		case r == '0':
			return 0x24EA
		case r >= '1' && r <= '9':
			return 0x2460 + (r - '1')
		}
		return r
	}, s)
}

func squareText(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'A' && r <= 'Z':
			return 0x1F130 + (r - 'A')
		case r >= 'a' && r <= 'z':
			return 0x1F130 + (r - 'a')
		}
		return r
	}, s)
}

// alphabet describes one Mathematical Alphanumeric Symbols style. Zero
// digit means the style has no digits. Holes are letters that were encoded
// earlier in the Letterlike Symbols block.
type alphabet struct {
	upper, lower, digit rune
	holes               map[rune]rune
}

var (
	bold       = alphabet{upper: 0x1D400, lower: 0x1D41A, digit: 0x1D7CE}
	italic     = alphabet{upper: 0x1D434, lower: 0x1D44E, holes: map[rune]rune{'h': 0x210E}}
	boldItalic = alphabet{upper: 0x1D468, lower: 0x1D482}
	script     = alphabet{upper: 0x1D49C, lower: 0x1D4B6, holes: map[rune]rune{
		'B': 0x212C, 'E': 0x2130, 'F': 0x2131, 'H': 0x210B, 'I': 0x2110, 'L': 0x2112,
		'M': 0x2133, 'R': 0x211B, 'e': 0x212F, 'g': 0x210A, 'o': 0x2134,
	}}
	boldScript = alphabet{upper: 0x1D4D0, lower: 0x1D4EA}
	fraktur    = alphabet{upper: 0x1D504, lower: 0x1D51E, holes: map[rune]rune{
		'C': 0x212D, 'H': 0x210C, 'I': 0x2111, 'R': 0x211C, 'Z': 0x2128,
	}}
	doubleStruck = alphabet{upper: 0x1D538, lower: 0x1D552, digit: 0x1D7D8, holes: map[rune]rune{
		'C': 0x2102, 'H': 0x210D, 'N': 0x2115, 'P': 0x2119, 'Q': 0x211A, 'R': 0x211D, 'Z': 0x2124,
	}}
	sansSerif  = alphabet{upper: 0x1D5A0, lower: 0x1D5BA, digit: 0x1D7E2}
	sansBold   = alphabet{upper: 0x1D5D4, lower: 0x1D5EE, digit: 0x1D7EC}
	sansItalic = alphabet{upper: 0x1D608, lower: 0x1D622}
	monospace  = alphabet{upper: 0x1D670, lower: 0x1D68A, digit: 0x1D7F6}
)

func mathAlpha(a alphabet) func(string) string {
	return func(s string) string {
		return strings.Map(func(r rune) rune {
			if h, ok := a.holes[r]; ok {
				return h
			}
			switch {
			case r >= 'A' && r <= 'Z':
				return a.upper + (r - 'A')
			case r >= 'a' && r <= 'z':
				return a.lower + (r - 'a')
			case r >= '0' && r <= '9' && a.digit != 0:
				return a.digit + (r - '0')
			}
			return r
		}, s)
	}
}

// pairs builds a rune map from alternating from/to strings of equal rune
// length.
func pairs(tables ...string) map[rune]rune {
	m := make(map[rune]rune)
	for i := 0; i+1 < len(tables); i += 2 {
		from, to := []rune(tables[i]), []rune(tables[i+1])
		for j := range from {
			if j < len(to) {
				m[from[j]] = to[j]
			}
		}
	}
	return m
}

// mapRunes returns a function replacing each rune found in table. With fold
// set, upper-case letters are looked up by their lower-case form.
func mapRunes(table map[rune]rune, fold bool) func(string) string {
	return func(s string) string {
		return strings.Map(func(r rune) rune {
			if m, ok := table[r]; ok {
				return m
			}
			if fold {
				if m, ok := table[unicode.ToLower(r)]; ok {
					return m
				}
			}
			return r
		}, s)
	}
}

var smallCaps = pairs(
	"abcdefghijklmnopqrstuvwxyz",
	"ᴀʙᴄᴅᴇꜰɢʜɪᴊᴋʟᴍɴᴏᴘǫʀsᴛᴜᴠᴡxʏᴢ",
)

var superscripts = pairs(
	"0123456789+-=()",
	"⁰¹²³⁴⁵⁶⁷⁸⁹⁺⁻⁼⁽⁾",
	"abcdefghijklmnoprstuvwxyz",
	"ᵃᵇᶜᵈᵉᶠᵍʰⁱʲᵏˡᵐⁿᵒᵖʳˢᵗᵘᵛʷˣʸᶻ",
	"ABDEGHIJKLMNOPRTUVW",
	"ᴬᴮᴰᴱᴳᴴᴵᴶᴷᴸᴹᴺᴼᴾᴿᵀᵁⱽᵂ",
)

var subscripts = pairs(
	"0123456789+-=()",
	"₀₁₂₃₄₅₆₇₈₉₊₋₌₍₎",
	"aehijklmnoprstuvx",
	"ₐₑₕᵢⱼₖₗₘₙₒₚᵣₛₜᵤᵥₓ",
)

var leet = pairs(
	"abegilost",
	"483611057",
)

func wideText(s string) string {
	return perLine(s, func(line string) string {
		return strings.Join(cluster(line), " ")
	})
}

var vowels = "aeiouAEIOU"

// pigLatin moves a word's leading consonants to the end and adds "ay";
// words starting with a vowel get "way". Case of the first letter is kept.
func pigLatin(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); {
		if !unicode.IsLetter(runes[i]) {
			b.WriteRune(runes[i])
			i++
			continue
		}
		j := i
		for j < len(runes) && (unicode.IsLetter(runes[j]) || runes[j] == '\'') {
			j++
		}
		b.WriteString(pigWord(string(runes[i:j])))
		i = j
	}
	return b.String()
}

func pigWord(w string) string {
	rs := []rune(w)
	if strings.ContainsRune(vowels, rs[0]) {
		return w + "way"
	}
	k := 0
	for k < len(rs) {
		c := unicode.ToLower(rs[k])
		if c == 'u' && k > 0 && unicode.ToLower(rs[k-1]) == 'q' {
			k++
			continue
		}
		if strings.ContainsRune(vowels, c) || (c == 'y' && k > 0) {
			break
		}
		k++
	}
	if k == len(rs) {
		return w + "ay"
	}
	head, tail := string(rs[:k]), string(rs[k:])
	if unicode.IsUpper(rs[0]) {
		head = strings.ToLower(head)
		tail = upperFirst(tail)
	}
	return tail + head + "ay"
}

func clapText(s string) string {
	return perLine(s, func(line string) string {
		return strings.Join(strings.Fields(line), " 👏 ")
	})
}

var natoAlphabet = map[rune]string{
	'a': "Alfa", 'b': "Bravo", 'c': "Charlie", 'd': "Delta", 'e': "Echo",
	'f': "Foxtrot", 'g': "Golf", 'h': "Hotel", 'i': "India", 'j': "Juliett",
	'k': "Kilo", 'l': "Lima", 'm': "Mike", 'n': "November", 'o': "Oscar",
	'p': "Papa", 'q': "Quebec", 'r': "Romeo", 's': "Sierra", 't': "Tango",
	'u': "Uniform", 'v': "Victor", 'w': "Whiskey", 'x': "X-ray", 'y': "Yankee",
	'z': "Zulu",
	'0': "Zero", '1': "One", '2': "Two", '3': "Three", '4': "Four",
	'5': "Five", '6': "Six", '7': "Seven", '8': "Eight", '9': "Niner",
}

// natoPhonetic spells each word; spelled words are separated by " / ".
// Runes without a code word are kept as they are.
func natoPhonetic(s string) string {
	return perLine(s, func(line string) string {
		words := strings.Fields(line)
		for i, w := range words {
			var parts []string
			for _, r := range w {
				if code, ok := natoAlphabet[unicode.ToLower(r)]; ok {
					parts = append(parts, code)
				} else {
					parts = append(parts, string(r))
				}
			}
			words[i] = strings.Join(parts, " ")
		}
		return strings.Join(words, " / ")
	})
}

var (
	zalgoUp   = []rune("\u030D\u030E\u0304\u0305\u033F\u0311\u0306\u0310\u0352\u0357\u0351\u0307\u0308\u030A\u0342\u0343\u0344\u034A\u034B\u034C\u0303\u0302\u030C\u0350\u0300\u0301\u030B\u030F\u0312\u0313\u0314\u033D\u0309\u0363\u0364\u0365\u0366\u0367\u0368\u0369\u036A\u036B\u036C\u036D\u036E\u036F\u033E\u035B")
	zalgoMid  = []rune("\u0315\u031B\u0340\u0341\u0358\u0321\u0322\u0327\u0328\u0334\u0335\u0336\u034F\u035C\u035D\u035E\u035F\u0360\u0362\u0338\u0337\u0361")
	zalgoDown = []rune("\u0316\u0317\u0318\u0319\u031C\u031D\u031E\u031F\u0320\u0324\u0325\u0326\u0329\u032A\u032B\u032C\u032D\u032E\u032F\u0330\u0331\u0332\u0333\u0339\u033A\u033B\u033C\u0345\u0347\u0348\u0349\u034D\u034E\u0353\u0354\u0355\u0356\u0359\u035A\u0323")
)

func zalgo(s string) string {
	var b strings.Builder
	for _, r := range s {
		b.WriteRune(r)
		if unicode.IsSpace(r) || unicode.Is(unicode.Co, r) || unicode.In(r, unicode.Mn, unicode.Cc) {
			continue
		}
		for _, marks := range [][]rune{zalgoUp, zalgoMid, zalgoDown} {
			for n := rand.IntN(3); n > 0; n-- {
				b.WriteRune(marks[rand.IntN(len(marks))])
			}
		}
	}
	return b.String()
}

// regionalIndicators maps ASCII letters to regional indicator symbols. A
// zero-width space separates neighbours so pairs do not render as flags.
func regionalIndicators(s string) string {
	var b strings.Builder
	prev := false
	for _, r := range s {
		l := unicode.ToLower(r)
		if l >= 'a' && l <= 'z' {
			if prev {
				b.WriteRune('\u200B')
			}
			b.WriteRune(0x1F1E6 + (l - 'a'))
			prev = true
			continue
		}
		b.WriteRune(r)
		prev = false
	}
	return b.String()
}
