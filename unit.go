package richtext

import (
	"fmt"
	"unicode/utf16"
	"unicode/utf8"
)

// Unit is the unit in which text offsets and lengths are counted.
type Unit uint8

// Offset units
const (
	Runes Unit = iota // Unicode code points
	UTF16             // UTF-16 code units, as used by JavaScript strings
	Bytes             // UTF-8 bytes, as used by Go strings
)

func (u Unit) String() string {
	switch u {
	case Runes:
		return "runes"
	case UTF16:
		return "utf16"
	case Bytes:
		return "bytes"
	}
	return fmt.Sprintf("Unit(%d)", u)
}

// UnitFromString returns the unit for one of "runes", "utf16" or "bytes".
func UnitFromString(name string) (Unit, error) {
	for u := Runes; u <= Bytes; u++ {
		if u.String() == name {
			return u, nil
		}
	}
	return Runes, fmt.Errorf("%w: unknown offset unit %q", ErrIllegalArguments, name)
}

// Count returns the length of s in unit u.
func (u Unit) Count(s string) uint64 {
	switch u {
	case Bytes:
		return uint64(len(s))
	case UTF16:
		var n uint64
		for _, r := range s {
			n += uint64(utf16.RuneLen(r))
		}
		return n
	}
	return uint64(utf8.RuneCountInString(s))
}

// byteIndex converts offset k (in unit u) within s to a byte index.
// It returns false if k exceeds s or does not fall on a code point boundary.
func (u Unit) byteIndex(s string, k uint64) (int, bool) {
	switch u {
	case Bytes:
		if k > uint64(len(s)) {
			return 0, false
		}
		if k < uint64(len(s)) && !utf8.RuneStart(s[k]) {
			return 0, false
		}
		return int(k), true
	case UTF16:
		var n uint64
		for i, r := range s {
			if n == k {
				return i, true
			} else if n > k {
				return 0, false // k points between a surrogate pair
			}
			n += uint64(utf16.RuneLen(r))
		}
		return len(s), n == k
	}
	var n uint64
	for i := range s {
		if n == k {
			return i, true
		}
		n++
	}
	return len(s), n == k
}

// cut splits s at offsets [from, to) into prefix, middle and suffix.
func (u Unit) cut(s string, from, to uint64) (string, string, string, bool) {
	l, ok := u.byteIndex(s, from)
	if !ok {
		return "", "", "", false
	}
	r, ok := u.byteIndex(s, to)
	if !ok {
		return "", "", "", false
	}
	return s[:l], s[l:r], s[r:], true
}
