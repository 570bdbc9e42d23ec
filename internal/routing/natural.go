package routing

import (
	"strconv"
	"strings"
	"unicode"
)

// keySegment is one piece of a decomposed alphanumeric label: either a
// digit run compared numerically or a text run compared lexicographically.
type keySegment struct {
	text     string
	num      int64
	numeric  bool
	inverted bool
}

// NaturalKey is the comparison key for a positional label such as "A10".
// Digit runs compare as numbers, so "A2" sorts before "A10".
type NaturalKey []keySegment

// NewNaturalKey decomposes a label into its natural sort key. Text segments
// are lower-cased so the ordering is case-insensitive.
func NewNaturalKey(s string) NaturalKey {
	if s == "" {
		return nil
	}

	key := make(NaturalKey, 0, 4)
	runes := []rune(s)
	start := 0
	digits := unicode.IsDigit(runes[0])

	flush := func(end int) {
		seg := string(runes[start:end])
		if digits {
			n, err := strconv.ParseInt(seg, 10, 64)
			if err != nil {
				// Digit run too long for int64: fall back to text
				key = append(key, keySegment{text: seg})
				return
			}
			key = append(key, keySegment{num: n, numeric: true})
		} else {
			key = append(key, keySegment{text: strings.ToLower(seg)})
		}
	}

	for i := 1; i < len(runes); i++ {
		if unicode.IsDigit(runes[i]) != digits {
			flush(i)
			start = i
			digits = !digits
		}
	}
	flush(len(runes))

	return key
}

// Invert returns a key that sorts in the opposite direction, used to
// alternate rack traversal per aisle. Numeric segments negate their value;
// text segments flip their comparison.
func (k NaturalKey) Invert() NaturalKey {
	inverted := make(NaturalKey, len(k))
	for i, seg := range k {
		if seg.numeric {
			inverted[i] = keySegment{num: -seg.num, numeric: true}
		} else {
			inverted[i] = keySegment{text: seg.text, inverted: true}
		}
	}
	return inverted
}

// Compare orders two natural keys element-wise: numbers numerically, text
// lexicographically, and a shorter key before its extension. Numeric
// segments order before text segments when the shapes differ.
func (k NaturalKey) Compare(other NaturalKey) int {
	n := len(k)
	if len(other) < n {
		n = len(other)
	}

	for i := 0; i < n; i++ {
		if c := compareSegments(k[i], other[i]); c != 0 {
			return c
		}
	}

	switch {
	case len(k) < len(other):
		return -1
	case len(k) > len(other):
		return 1
	default:
		return 0
	}
}

func compareSegments(a, b keySegment) int {
	if a.numeric != b.numeric {
		if a.numeric {
			return -1
		}
		return 1
	}

	if a.numeric {
		switch {
		case a.num < b.num:
			return -1
		case a.num > b.num:
			return 1
		default:
			return 0
		}
	}

	if a.inverted && b.inverted {
		return compareInvertedText(a.text, b.text)
	}
	return strings.Compare(a.text, b.text)
}

// compareInvertedText compares text as if every character code were negated:
// higher characters sort first, but a shared prefix still sorts before its
// extension.
func compareInvertedText(a, b string) int {
	ar, br := []rune(a), []rune(b)
	n := len(ar)
	if len(br) < n {
		n = len(br)
	}

	for i := 0; i < n; i++ {
		if ar[i] != br[i] {
			if ar[i] > br[i] {
				return -1
			}
			return 1
		}
	}

	switch {
	case len(ar) < len(br):
		return -1
	case len(ar) > len(br):
		return 1
	default:
		return 0
	}
}
