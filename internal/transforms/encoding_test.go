package transforms

import (
	"context"
	"errors"
	"regexp"
	"testing"
)

func TestEncodingTransforms(t *testing.T) {
	runCases(t, []transformCase{
		{"base64-encode", "hello", "aGVsbG8="},
		{"base64-decode", "aGVsbG8", "hello"},
		{"base64-decode", "aGVs\nbG8=", "hello"},
		{"base64url-encode", "hi?>", "aGk_Pg"},
		{"base64url-decode", "aGk_Pg==", "hi?>"},
		{"base32-encode", "hi", "NBUQ===="},
		{"base32-decode", "nbuq", "hi"},
		{"hex-encode", "hi", "6869"},
		{"hex-decode", "0x68 0x69", "hi"},
		{"url-encode", "a b&c", "a+b%26c"},
		{"url-decode", "a+b%26c", "a b&c"},
		{"html-encode", `<a href="x">`, "&lt;a href=&#34;x&#34;&gt;"},
		{"html-decode", "&lt;p&gt; &amp; &eacute;", "<p> & é"},
		{"binary-encode", "A", "01000001"},
		{"binary-decode", "01000001 01000010", "AB"},
		{"octal-encode", "A", "101"},
		{"decimal-encode", "AB", "65 66"},
		{"quoted-printable-encode", "café", "caf=C3=A9"},
		{"unicode-escape", "é😀", `\u00E9\U0001F600`},
		{"unicode-unescape", `\u00e9\ud83d\ude00\x41`, "é😀A"},
		{"morse-encode", "SOS hi", "... --- ... / .... .."},
		{"morse-decode", "... --- ... / .... ..", "SOS HI"},
		{"rot13", "Hello", "Uryyb"},
		{"rot47", "Hello", "w6==@"},
		{"caesar-cipher", "abc xyz", "def abc"},
		{"atbash", "abc", "zyx"},
	})
}

func TestEncodingTransforms_RoundTrip(t *testing.T) {
	r := newTestRegistry(t)
	pairs := [][2]string{
		{"base64-encode", "base64-decode"},
		{"base64url-encode", "base64url-decode"},
		{"base32-encode", "base32-decode"},
		{"hex-encode", "hex-decode"},
		{"url-encode", "url-decode"},
		{"html-encode", "html-decode"},
		{"binary-encode", "binary-decode"},
		{"ascii85-encode", "ascii85-decode"},
		{"quoted-printable-encode", "quoted-printable-decode"},
		{"unicode-escape", "unicode-unescape"},
	}
	inputs := []string{"hello world", "héllo wörld 你好 😀", "a=b&c<d>\"e\""}

	for _, p := range pairs {
		for _, in := range inputs {
			enc := apply(t, r, p[0], in)
			if got := apply(t, r, p[1], enc); got != in {
				t.Errorf("%s(%s(%q)) = %q, want input back", p[1], p[0], in, got)
			}
		}
	}
}

func TestEncodingTransforms_RejectInvalid(t *testing.T) {
	r := newTestRegistry(t)
	tests := []struct {
		key string
		in  string
	}{
		{"base64-decode", "not base64!"},
		{"base32-decode", "189"},
		{"hex-decode", "zz"},
		{"binary-decode", "0102"},
		{"url-decode", "%zz"},
		{"morse-decode", "...---...---"},
		{"ascii85-decode", "<~\x7f~>"},
	}

	for _, tt := range tests {
		d, _ := r.Lookup(tt.key)
		if _, err := d.Apply(context.Background(), tt.in); err == nil {
			t.Errorf("%s(%q) error = nil, want error", tt.key, tt.in)
		}
	}
}

func TestEncodingTransforms_DecodedBinary(t *testing.T) {
	r := newTestRegistry(t)
	d, _ := r.Lookup("base64-decode")

	// 0xff 0xfe is not UTF-8.
	_, err := d.Apply(context.Background(), "//4=")
	if !errors.Is(err, ErrNotText) {
		t.Fatalf("base64-decode of binary error = %v, want ErrNotText", err)
	}
}

func TestHashTransforms(t *testing.T) {
	runCases(t, []transformCase{
		{"md5", "abc", "900150983cd24fb0d6963f7d28e17f72"},
		{"sha1", "abc", "a9993e364706816aba3e25717850c26c9cd0d89d"},
		{"sha256", "abc", "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
		{"crc32", "abc", "352441c2"},
		{"adler32", "abc", "024d0127"},
		{"fnv1a-64", "a", "af63dc4c8601ec8c"},
	})
}

func TestHashTransforms_Digests(t *testing.T) {
	r := newTestRegistry(t)
	lengths := map[string]int{
		"sha224":      56,
		"sha384":      96,
		"sha512":      128,
		"sha3-256":    64,
		"sha3-512":    128,
		"blake2b-256": 64,
		"blake2s-256": 64,
	}
	hexRe := regexp.MustCompile(`^[0-9a-f]+$`)

	for key, n := range lengths {
		got := apply(t, r, key, "abc")
		if len(got) != n || !hexRe.MatchString(got) {
			t.Errorf("%s(abc) = %q, want %d lowercase hex digits", key, got, n)
		}
		if again := apply(t, r, key, "abc"); again != got {
			t.Errorf("%s is not deterministic: %q then %q", key, got, again)
		}
	}

	uuidRe := regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-5[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)
	if got := apply(t, r, "uuid-v5", "https://example.com"); !uuidRe.MatchString(got) {
		t.Errorf("uuid-v5 = %q, want a version 5 UUID", got)
	}
}
