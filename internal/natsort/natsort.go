package natsort

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Token is one run of a natural sort key: either a lowercased text run or
// the digits of a numeric run with leading zeros removed.
type Token struct {
	Text    string
	Digits  string
	Numeric bool
}

// Key is the token sequence for a name. Even positions are always text
// tokens (possibly empty) and odd positions are numeric tokens.
type Key []Token

// NewKey splits name on runs of decimal digits. Any Unicode decimal digit
// counts, so "img٢" and "img2" have equal keys.
func NewKey(name string) Key {
	key := make(Key, 0, 4)
	start := 0
	inDigits := false
	var digits []byte

	flush := func(end int) {
		if inDigits {
			key = append(key, Token{Digits: trimZeros(string(digits)), Numeric: true})
			digits = digits[:0]
		} else {
			key = append(key, Token{Text: strings.ToLower(name[start:end])})
		}
		start = end
	}

	for i, r := range name {
		d, digit := digitValue(r)
		if digit != inDigits {
			flush(i)
			inDigits = digit
		}
		if digit {
			digits = append(digits, '0'+d)
		}
	}
	flush(len(name))

	// A trailing digit run is followed by an empty text token, matching
	// the shape of a split that keeps its separators.
	if inDigits {
		key = append(key, Token{})
	}

	return key
}

// Compare orders two keys token by token. A shorter key that is a prefix
// of a longer one sorts first.
func (k Key) Compare(other Key) int {
	for i := 0; i < len(k) && i < len(other); i++ {
		if c := compareToken(k[i], other[i]); c != 0 {
			return c
		}
	}
	return len(k) - len(other)
}

func compareToken(a, b Token) int {
	if a.Numeric != b.Numeric {
		// Never produced by NewKey; ordering is undefined, not an error.
		if a.Numeric {
			return -1
		}
		return 1
	}
	if !a.Numeric {
		return strings.Compare(a.Text, b.Text)
	}
	if len(a.Digits) != len(b.Digits) {
		return len(a.Digits) - len(b.Digits)
	}
	return strings.Compare(a.Digits, b.Digits)
}

// Compare returns a negative number when a sorts before b, zero when the
// names have equal keys, and a positive number otherwise.
func Compare(a, b string) int {
	return NewKey(a).Compare(NewKey(b))
}

// Less reports whether a sorts before b in natural order.
func Less(a, b string) bool {
	return Compare(a, b) < 0
}

// Sort sorts names in place in natural order. Names with equal keys keep
// their relative order.
func Sort(names []string) {
	keys := make(map[string]Key, len(names))
	for _, n := range names {
		if _, ok := keys[n]; !ok {
			keys[n] = NewKey(n)
		}
	}
	slices.SortStableFunc(names, func(a, b string) int {
		return keys[a].Compare(keys[b])
	})
}

// Sorted returns a naturally sorted copy of names.
func Sorted(names []string) []string {
	out := slices.Clone(names)
	Sort(out)
	return out
}

// digitValue returns the value of a decimal digit rune. Every script's
// digits occupy consecutive code points starting at zero.
func digitValue(r rune) (byte, bool) {
	if r >= '0' && r <= '9' {
		return byte(r - '0'), true
	}
	if r < utf8.RuneSelf || !unicode.IsDigit(r) {
		return 0, false
	}
	for _, rng := range unicode.Digit.R16 {
		if lo := rune(rng.Lo); r >= lo && r <= rune(rng.Hi) {
			return byte((r - lo) / rune(rng.Stride) % 10), true
		}
	}
	for _, rng := range unicode.Digit.R32 {
		if lo := rune(rng.Lo); r >= lo && r <= rune(rng.Hi) {
			return byte((r - lo) / rune(rng.Stride) % 10), true
		}
	}
	return 0, false
}

func trimZeros(digits string) string {
	trimmed := strings.TrimLeft(digits, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}
