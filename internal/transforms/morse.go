package transforms

import (
	"fmt"
	"strings"
	"unicode"
)

var morseTable = map[rune]string{
	'A': ".-", 'B': "-...", 'C': "-.-.", 'D': "-..", 'E': ".", 'F': "..-.",
	'G': "--.", 'H': "....", 'I': "..", 'J': ".---", 'K': "-.-", 'L': ".-..",
	'M': "--", 'N': "-.", 'O': "---", 'P': ".--.", 'Q': "--.-", 'R': ".-.",
	'S': "...", 'T': "-", 'U': "..-", 'V': "...-", 'W': ".--", 'X': "-..-",
	'Y': "-.--", 'Z': "--..",
	'0': "-----", '1': ".----", '2': "..---", '3': "...--", '4': "....-",
	'5': ".....", '6': "-....", '7': "--...", '8': "---..", '9': "----.",
	'.': ".-.-.-", ',': "--..--", '?': "..--..", '\'': ".----.", '!': "-.-.--",
	'/': "-..-.", '(': "-.--.", ')': "-.--.-", '&': ".-...", ':': "---...",
	';': "-.-.-.", '=': "-...-", '+': ".-.-.", '-': "-....-", '_': "..--.-",
	'"': ".-..-.", '$': "...-..-", '@': ".--.-.",
}

var morseReverse = func() map[string]rune {
	m := make(map[string]rune, len(morseTable))
	for r, code := range morseTable {
		m[code] = r
	}
	return m
}()

// morseEncode writes letters separated by spaces and words by " / ".
// Runes with no Morse code are dropped.
func morseEncode(s string) string {
	var words []string
	for _, w := range strings.Fields(s) {
		var codes []string
		for _, r := range w {
			if code, ok := morseTable[unicode.ToUpper(r)]; ok {
				codes = append(codes, code)
			}
		}
		if len(codes) > 0 {
			words = append(words, strings.Join(codes, " "))
		}
	}
	return strings.Join(words, " / ")
}

func morseDecode(s string) (string, error) {
	var words []string
	for _, w := range strings.Split(s, "/") {
		codes := strings.Fields(w)
		if len(codes) == 0 {
			continue
		}
		var b strings.Builder
		for _, code := range codes {
			r, ok := morseReverse[code]
			if !ok {
				return "", fmt.Errorf("morse: unknown code %q", code)
			}
			b.WriteRune(r)
		}
		words = append(words, b.String())
	}
	return strings.Join(words, " "), nil
}
