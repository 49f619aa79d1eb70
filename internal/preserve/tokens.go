package preserve

import (
	"errors"
	"unicode"
)

// ErrTokenSpaceExhausted is returned when every private-use code point is
// either already present in the input or already assigned.
var ErrTokenSpaceExhausted = errors.New("placeholder token space exhausted")

type tokenRange struct {
	lo, hi rune
}

// Private-use areas, tried in order: the BMP block first, then the
// supplementary planes 15 and 16.
var defaultTokenRanges = []tokenRange{
	{0xE000, 0xF8FF},
	{0xF0000, 0xFFFFD},
	{0x100000, 0x10FFFD},
}

// allocator hands out single-rune placeholder tokens that never occur in
// the text it was created for.
type allocator struct {
	ranges []tokenRange
	taken  map[rune]struct{}
	ri     int
	next   rune
}

func newAllocator(text string, ranges []tokenRange) *allocator {
	a := &allocator{
		ranges: ranges,
		taken:  make(map[rune]struct{}),
	}
	for _, r := range text {
		if unicode.Is(unicode.Co, r) {
			a.taken[r] = struct{}{}
		}
	}
	if len(ranges) > 0 {
		a.next = ranges[0].lo
	}
	return a
}

func (a *allocator) token() (string, error) {
	for a.ri < len(a.ranges) {
		rg := a.ranges[a.ri]
		for a.next <= rg.hi {
			r := a.next
			a.next++
			if _, collides := a.taken[r]; collides {
				continue
			}
			return string(r), nil
		}
		a.ri++
		if a.ri < len(a.ranges) {
			a.next = a.ranges[a.ri].lo
		}
	}
	return "", ErrTokenSpaceExhausted
}
