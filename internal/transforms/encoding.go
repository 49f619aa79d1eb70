package transforms

import (
	"bytes"
	"encoding/ascii85"
	"encoding/base32"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"html"
	"io"
	"mime/quotedprintable"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"
)

// ErrNotText is returned when decoded bytes are not valid UTF-8.
var ErrNotText = errors.New("decoded bytes are not valid UTF-8 text")

func encodingEntries() []entry {
	return []entry{
		pure("base64-encode", "Base64 (standard alphabet, padded)", func(s string) string {
			return base64.StdEncoding.EncodeToString([]byte(s))
		}),
		fallible("base64-decode", "Decode Base64; padding and whitespace optional", func(s string) (string, error) {
			return decodeBase64(s, base64.RawStdEncoding)
		}),
		pure("base64url-encode", "URL-safe Base64 without padding", func(s string) string {
			return base64.RawURLEncoding.EncodeToString([]byte(s))
		}),
		fallible("base64url-decode", "Decode URL-safe Base64", func(s string) (string, error) {
			return decodeBase64(s, base64.RawURLEncoding)
		}),
		pure("base32-encode", "Base32 (RFC 4648)", func(s string) string {
			return base32.StdEncoding.EncodeToString([]byte(s))
		}),
		fallible("base32-decode", "Decode Base32", decodeBase32),
		pure("hex-encode", "Lowercase hexadecimal bytes", func(s string) string {
			return hex.EncodeToString([]byte(s))
		}),
		fallible("hex-decode", "Decode hexadecimal bytes; whitespace and 0x prefix ignored", decodeHex),
		pure("url-encode", "Percent-encode for a query string", url.QueryEscape),
		fallible("url-decode", "Decode a percent-encoded query string", url.QueryUnescape),
		pure("html-encode", "Escape <, >, &, ' and \"", html.EscapeString),
		pure("html-decode", "Unescape HTML entities", html.UnescapeString),
		pure("binary-encode", "Each byte as eight binary digits", func(s string) string {
			return formatBytes(s, "%08b")
		}),
		fallible("binary-decode", "Decode binary byte groups", func(s string) (string, error) {
			return parseBytes(s, 2, 8)
		}),
		pure("octal-encode", "Each byte as three octal digits", func(s string) string {
			return formatBytes(s, "%03o")
		}),
		pure("decimal-encode", "Each byte as a decimal number", func(s string) string {
			return formatBytes(s, "%d")
		}),
		pure("ascii85-encode", "Ascii85 wrapped in <~ ~>", encodeASCII85),
		fallible("ascii85-decode", "Decode Ascii85; <~ ~> delimiters optional", decodeASCII85),
		fallible("quoted-printable-encode", "Quoted-printable (RFC 2045)", encodeQuotedPrintable),
		fallible("quoted-printable-decode", "Decode quoted-printable", decodeQuotedPrintable),
		pure("unicode-escape", `Escape non-ASCII as \uXXXX or \UXXXXXXXX`, unicodeEscape),
		pure("unicode-unescape", `Resolve \uXXXX, \UXXXXXXXX and \xXX escapes`, unicodeUnescape),
		pure("morse-encode", "International Morse code; words separated by /", morseEncode),
		fallible("morse-decode", "Decode Morse code", morseDecode),
		pure("rot13", "Rotate letters by 13", func(s string) string { return rotate(s, 13) }),
		pure("rot47", "Rotate printable ASCII by 47", rot47),
		pure("caesar-cipher", "Shift letters by 3", func(s string) string { return rotate(s, 3) }),
		pure("atbash", "Mirror the alphabet (a=z)", atbash),
	}
}

func text(b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", ErrNotText
	}
	return string(b), nil
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func decodeBase64(s string, enc *base64.Encoding) (string, error) {
	s = strings.TrimRight(stripSpace(s), "=")
	b, err := enc.DecodeString(s)
	if err != nil {
		return "", fmt.Errorf("base64: %w", err)
	}
	return text(b)
}

func decodeBase32(s string) (string, error) {
	s = strings.ToUpper(strings.TrimRight(stripSpace(s), "="))
	b, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(s)
	if err != nil {
		return "", fmt.Errorf("base32: %w", err)
	}
	return text(b)
}

func decodeHex(s string) (string, error) {
	s = stripSpace(s)
	s = strings.ReplaceAll(strings.ReplaceAll(s, "0x", ""), "0X", "")
	b, err := hex.DecodeString(s)
	if err != nil {
		return "", fmt.Errorf("hex: %w", err)
	}
	return text(b)
}

func formatBytes(s, format string) string {
	parts := make([]string, len(s))
	for i := 0; i < len(s); i++ {
		parts[i] = fmt.Sprintf(format, s[i])
	}
	return strings.Join(parts, " ")
}

// parseBytes reads whitespace separated byte values in base. A single
// unbroken run is split into groups of width digits.
func parseBytes(s string, base, width int) (string, error) {
	fields := strings.Fields(s)
	if len(fields) == 1 && len(fields[0]) > width {
		run := fields[0]
		if len(run)%width != 0 {
			return "", fmt.Errorf("binary: length %d is not a multiple of %d", len(run), width)
		}
		fields = fields[:0]
		for i := 0; i < len(run); i += width {
			fields = append(fields, run[i:i+width])
		}
	}
	b := make([]byte, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseUint(f, base, 8)
		if err != nil {
			return "", fmt.Errorf("binary: %q: %w", f, err)
		}
		b = append(b, byte(v))
	}
	return text(b)
}

func encodeASCII85(s string) string {
	buf := make([]byte, ascii85.MaxEncodedLen(len(s)))
	n := ascii85.Encode(buf, []byte(s))
	return "<~" + string(buf[:n]) + "~>"
}

func decodeASCII85(s string) (string, error) {
	s = stripSpace(s)
	s = strings.TrimSuffix(strings.TrimPrefix(s, "<~"), "~>")
	dst := make([]byte, 4*len(s)+4)
	n, _, err := ascii85.Decode(dst, []byte(s), true)
	if err != nil {
		return "", fmt.Errorf("ascii85: %w", err)
	}
	return text(dst[:n])
}

func encodeQuotedPrintable(s string) (string, error) {
	var buf bytes.Buffer
	w := quotedprintable.NewWriter(&buf)
	if _, err := w.Write([]byte(s)); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func decodeQuotedPrintable(s string) (string, error) {
	b, err := io.ReadAll(quotedprintable.NewReader(strings.NewReader(s)))
	if err != nil {
		return "", fmt.Errorf("quoted-printable: %w", err)
	}
	return text(b)
}

func unicodeEscape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r < utf8.RuneSelf:
			b.WriteRune(r)
		case r <= 0xFFFF:
			fmt.Fprintf(&b, `\u%04X`, r)
		default:
			fmt.Fprintf(&b, `\U%08X`, r)
		}
	}
	return b.String()
}

var escapeRe = regexp.MustCompile(`\\u[0-9a-fA-F]{4}|\\U[0-9a-fA-F]{8}|\\x[0-9a-fA-F]{2}|\\u\{[0-9a-fA-F]{1,6}\}`)

// unicodeUnescape resolves escapes one by one. A high surrogate followed by
// a low surrogate is combined; anything that is not a valid scalar value is
// left as written.
func unicodeUnescape(s string) string {
	locs := escapeRe.FindAllStringIndex(s, -1)
	if len(locs) == 0 {
		return s
	}
	var b strings.Builder
	prev := 0
	for i := 0; i < len(locs); i++ {
		start, end := locs[i][0], locs[i][1]
		b.WriteString(s[prev:start])
		prev = end

		r := escapeValue(s[start:end])
		if utf16.IsSurrogate(r) && i+1 < len(locs) && locs[i+1][0] == end {
			lo := escapeValue(s[locs[i+1][0]:locs[i+1][1]])
			if c := utf16.DecodeRune(r, lo); c != unicode.ReplacementChar {
				b.WriteRune(c)
				prev = locs[i+1][1]
				i++
				continue
			}
		}
		if !utf8.ValidRune(r) {
			b.WriteString(s[start:end])
			continue
		}
		b.WriteRune(r)
	}
	b.WriteString(s[prev:])
	return b.String()
}

func escapeValue(esc string) rune {
	digits := strings.Trim(esc[2:], "{}")
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return unicode.ReplacementChar
	}
	return rune(v)
}

func rotate(s string, n int) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return 'a' + (r-'a'+rune(n))%26
		case r >= 'A' && r <= 'Z':
			return 'A' + (r-'A'+rune(n))%26
		}
		return r
	}, s)
}

func rot47(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '!' && r <= '~' {
			return '!' + (r-'!'+47)%94
		}
		return r
	}, s)
}

func atbash(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return 'z' - (r - 'a')
		case r >= 'A' && r <= 'Z':
			return 'Z' - (r - 'A')
		}
		return r
	}, s)
}
