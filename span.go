package richtext

import "fmt"

// Range is a half-open interval [Start, End) of text offsets.
//
// Ranges are used to denote selections of text. A range with Start == End
// denotes a collapsed selection (a cursor position).
type Range struct {
	Start uint64
	End   uint64
}

// Selection creates a range from two selection boundaries. Presentation layers
// report selections as anchor and focus, which may come in either order.
func Selection(anchor, focus uint64) Range {
	if anchor > focus {
		anchor, focus = focus, anchor
	}
	return Range{anchor, focus}
}

// Empty is true for a collapsed range.
func (r Range) Empty() bool {
	return r.End <= r.Start
}

// Len returns the number of offsets covered by r.
func (r Range) Len() uint64 {
	if r.Empty() {
		return 0
	}
	return r.End - r.Start
}

// Contains reports whether offset k is covered by r.
func (r Range) Contains(k uint64) bool {
	return k >= r.Start && k < r.End
}

// intersect returns the part of r covered by [from, to), and whether it is
// non-empty.
func (r Range) intersect(from, to uint64) (Range, bool) {
	x := Range{max(r.Start, from), min(r.End, to)}
	return x, !x.Empty()
}

func (r Range) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End)
}

// check validates r against a text of length n.
func (r Range) check(n uint64) error {
	if r.Start > r.End {
		return fmt.Errorf("%w: %d > %d", ErrInvalidRange, r.Start, r.End)
	}
	if r.End > n {
		return fmt.Errorf("%w: %s exceeds text length %d", ErrInvalidRange, r, n)
	}
	return nil
}
