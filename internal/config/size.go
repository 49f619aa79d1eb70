package config

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var byteSizeRe = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*([kmg]i?)?b?$`)

// ParseByteSize parses a byte count with an optional unit.
// Units are powers of 1024 and case-insensitive; the trailing "b" and the
// "i" of IEC spellings are optional.
// Examples: "512", "100KB", "5MB", "1.5mb", "2GiB"
func ParseByteSize(s string) (int, error) {
	input := strings.ToLower(strings.TrimSpace(s))
	if input == "" {
		return 0, fmt.Errorf("byte size is empty")
	}

	match := byteSizeRe.FindStringSubmatch(input)
	if match == nil {
		return 0, fmt.Errorf("invalid byte size: %s", s)
	}

	value, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size: %s", s)
	}

	multiplier := float64(1)
	switch strings.TrimSuffix(match[2], "i") {
	case "k":
		multiplier = 1 << 10
	case "m":
		multiplier = 1 << 20
	case "g":
		multiplier = 1 << 30
	}

	total := value * multiplier
	if total > math.MaxInt32 {
		return 0, fmt.Errorf("byte size too large: %s", s)
	}
	return int(total), nil
}

// FormatByteSize renders n with the largest unit that keeps it readable.
func FormatByteSize(n int) string {
	switch {
	case n >= 1<<20 && n%(1<<20) == 0:
		return fmt.Sprintf("%dMB", n>>20)
	case n >= 1<<10 && n%(1<<10) == 0:
		return fmt.Sprintf("%dKB", n>>10)
	case n >= 1<<20:
		return fmt.Sprintf("%.1fMB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1fKB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%dB", n)
	}
}
