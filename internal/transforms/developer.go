package transforms

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/bimmerbailey/recase/internal/registry"
)

// Escapers must see URLs and addresses as they are, so none of them run
// around placeholders.
func developerEntries() []entry {
	raw := registry.WithoutPreservation()
	return []entry{
		pure("escape-regex", "Quote regular expression metacharacters", regexp.QuoteMeta, raw),
		pure("sql-escape", "Double single quotes for a SQL string literal", func(s string) string {
			return strings.ReplaceAll(s, "'", "''")
		}, raw),
		pure("shell-escape", "Quote for a POSIX shell", shellEscape, raw),
		pure("json-escape", "Escape as the body of a JSON string", jsonEscape, raw),
		fallible("json-unescape", "Resolve JSON string escapes", jsonUnescape, raw),
		fallible("json-pretty", "Indent JSON with two spaces", jsonPretty, raw),
		fallible("json-minify", "Remove insignificant JSON whitespace", jsonMinify, raw),
		pure("xml-escape", "Escape the five XML special characters", xmlEscaper.Replace, raw),
		pure("csv-escape", "Quote as a single CSV field when needed", csvEscape, raw),
		pure("escape-newlines", `Write line breaks and tabs as \n, \r and \t`, newlineEscaper.Replace, raw),
		pure("unescape-newlines", `Turn \n, \r and \t back into line breaks and tabs`, newlineUnescaper.Replace, raw),
		pure("go-string", "Double-quoted Go string literal", strconv.Quote, raw),
		pure("sql-in-list", "Lines as a SQL IN (...) list", sqlInList, raw),
		pure("json-array", "Lines as a JSON array of strings", jsonArray, raw),
	}
}

var shellSafeRe = regexp.MustCompile(`^[A-Za-z0-9@%+=:,./_-]+$`)

func shellEscape(s string) string {
	if shellSafeRe.MatchString(s) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func marshalNoHTML(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return ""
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

func jsonEscape(s string) string {
	q := marshalNoHTML(s)
	return q[1 : len(q)-1]
}

func jsonUnescape(s string) (string, error) {
	quoted := s
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		quoted = `"` + s + `"`
	}
	var out string
	if err := json.Unmarshal([]byte(quoted), &out); err != nil {
		return "", fmt.Errorf("json: %w", err)
	}
	return out, nil
}

func jsonPretty(s string) (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(s), "", "  "); err != nil {
		return "", fmt.Errorf("json: %w", err)
	}
	return buf.String(), nil
}

func jsonMinify(s string) (string, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(s)); err != nil {
		return "", fmt.Errorf("json: %w", err)
	}
	return buf.String(), nil
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func csvEscape(s string) string {
	if s == "" || (!strings.ContainsAny(s, ",\"\r\n") && strings.TrimSpace(s) == s) {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

var (
	newlineEscaper   = strings.NewReplacer(`\`, `\\`, "\r", `\r`, "\n", `\n`, "\t", `\t`)
	newlineUnescaper = strings.NewReplacer(`\\`, `\`, `\r`, "\r", `\n`, "\n", `\t`, "\t")
)

func nonEmptyLines(s string) []string {
	var out []string
	for _, l := range strings.Split(normalizeLineEndings(s), "\n") {
		if t := strings.TrimSpace(l); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// sqlInList quotes every value unless all of them are integers.
func sqlInList(s string) string {
	values := nonEmptyLines(s)
	numeric := len(values) > 0
	for _, v := range values {
		if _, err := strconv.ParseInt(v, 10, 64); err != nil {
			numeric = false
			break
		}
	}
	for i, v := range values {
		if !numeric {
			values[i] = "'" + strings.ReplaceAll(v, "'", "''") + "'"
		}
	}
	return "(" + strings.Join(values, ", ") + ")"
}

func jsonArray(s string) string {
	values := nonEmptyLines(s)
	if values == nil {
		values = []string{}
	}
	return marshalNoHTML(values)
}
