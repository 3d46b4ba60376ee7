package richtext

import (
	"fmt"
	"iter"
	"strings"
	"unicode/utf8"
)

// Run is a span of text sharing one style.
type Run struct {
	ID    ID
	Text  string
	Style Style
}

func (r Run) String() string {
	return fmt.Sprintf("%s%q%s", r.ID, r.Text, r.Style)
}

// --- Sequence --------------------------------------------------------------

// Sequence is an ordered list of style runs. The concatenation of the run texts
// is the logical text of a field.
//
// A Sequence is a value and never changes after it has been created. The
// zero value is a valid sequence without any runs; it behaves like the empty
// text, but operations on it will produce sequences holding at least one run.
type Sequence struct {
	runs []Run
}

// NewSequence creates the sequence for an empty field: a single empty run with
// the default style.
func NewSequence() Sequence {
	return NewSequenceWithIDs(defaultIDs)
}

// NewSequenceWithIDs creates the sequence for an empty field, drawing the id
// of its run from ids.
func NewSequenceWithIDs(ids IDSource) Sequence {
	return Sequence{runs: []Run{{ID: ids.NextID()}}}
}

// FromRuns creates a sequence from a slice of runs, checking the invariants
// of a styled text: ids have to be non-empty and unique, texts have to be valid
// UTF-8, and the only zero-length run allowed is the single run of an empty field.
//
// FromRuns copies runs.
func FromRuns(runs []Run) (Sequence, error) {
	seen := make(map[ID]struct{}, len(runs))
	for i, r := range runs {
		if r.ID == "" {
			return Sequence{}, fmt.Errorf("%w: run #%d has no id", ErrInvalidSequence, i)
		}
		if _, dup := seen[r.ID]; dup {
			return Sequence{}, fmt.Errorf("%w: duplicate run id %q", ErrInvalidSequence, r.ID)
		}
		seen[r.ID] = struct{}{}
		if !utf8.ValidString(r.Text) {
			return Sequence{}, fmt.Errorf("%w: run %q is not valid UTF-8", ErrInvalidSequence, r.ID)
		}
		if r.Text == "" && len(runs) > 1 {
			return Sequence{}, fmt.Errorf("%w: empty run %q in non-empty field", ErrInvalidSequence, r.ID)
		}
		if err := r.Style.validate(); err != nil {
			return Sequence{}, fmt.Errorf("%w: run %q: %v", ErrInvalidSequence, r.ID, err)
		}
	}
	seq := Sequence{runs: make([]Run, len(runs))}
	copy(seq.runs, runs)
	return seq, nil
}

// RunCount returns the number of runs.
func (seq Sequence) RunCount() int {
	return len(seq.runs)
}

// Run returns run #i.
func (seq Sequence) Run(i int) Run {
	return seq.runs[i]
}

// Runs returns a copy of the runs of seq.
func (seq Sequence) Runs() []Run {
	r := make([]Run, len(seq.runs))
	copy(r, seq.runs)
	return r
}

// All returns an iterator over all runs, in text order.
func (seq Sequence) All() iter.Seq2[int, Run] {
	return func(yield func(int, Run) bool) {
		for i, r := range seq.runs {
			if !yield(i, r) {
				return
			}
		}
	}
}

// Text returns the concatenated text of all runs.
func (seq Sequence) Text() string {
	var sb strings.Builder
	for _, r := range seq.runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// IsVoid is true if seq holds no text.
func (seq Sequence) IsVoid() bool {
	for _, r := range seq.runs {
		if r.Text != "" {
			return false
		}
	}
	return true
}

// Equivalent reports whether seq and other have the same runs, disregarding
// run ids.
func (seq Sequence) Equivalent(other Sequence) bool {
	if len(seq.runs) != len(other.runs) {
		return false
	}
	for i, r := range seq.runs {
		if r.Text != other.runs[i].Text || !r.Style.Equals(other.runs[i].Style) {
			return false
		}
	}
	return true
}

// String returns an informational string for a sequence. Clients must not rely
// on the format of the string.
func (seq Sequence) String() string {
	var sb strings.Builder
	for i, r := range seq.runs {
		if i > 0 {
			sb.WriteByte('|')
		}
		fmt.Fprintf(&sb, "%q%s", r.Text, r.Style)
	}
	return sb.String()
}

// same reports whether seq and other share their runs, i.e. other is seq
// returned unchanged by an operation.
func (seq Sequence) same(other Sequence) bool {
	if len(seq.runs) != len(other.runs) {
		return false
	}
	return len(seq.runs) == 0 || &seq.runs[0] == &other.runs[0]
}

func (seq Sequence) ids() map[ID]struct{} {
	m := make(map[ID]struct{}, len(seq.runs))
	for _, r := range seq.runs {
		m[r.ID] = struct{}{}
	}
	return m
}

// --- Builder ---------------------------------------------------------------

// Builder is for building sequences from pieces of styled text, e.g. during
// import of text from other formats.
//
// Builder does not coalesce adjacent pieces with equal styles, except if
// created with merging enabled.
type Builder struct {
	runs  []Run
	ids   IDSource
	merge bool
	done  bool
}

// NewBuilder creates a new and empty builder, drawing run ids from ids. If ids
// is nil, a process-wide counter is used.
func NewBuilder(ids IDSource, merge bool) *Builder {
	if ids == nil {
		ids = defaultIDs
	}
	return &Builder{ids: ids, merge: merge}
}

// Append appends a piece of text with a given style. Empty pieces are ignored.
func (b *Builder) Append(text string, style Style) error {
	if b.done {
		return fmt.Errorf("%w: builder has been completed", ErrIllegalArguments)
	}
	if !utf8.ValidString(text) {
		return fmt.Errorf("%w: text is not valid UTF-8", ErrIllegalArguments)
	}
	if err := style.validate(); err != nil {
		return err
	}
	if text == "" {
		return nil
	}
	if n := len(b.runs); b.merge && n > 0 && b.runs[n-1].Style.Equals(style) {
		b.runs[n-1].Text += text
		return nil
	}
	b.runs = append(b.runs, Run{ID: b.ids.NextID(), Text: text, Style: style})
	return nil
}

// Sequence returns the sequence built so far. It is illegal to continue
// adding pieces after Sequence has been called, but Sequence may be called
// multiple times.
//
// If no text has been appended, the result is the sequence of an empty field.
func (b *Builder) Sequence() Sequence {
	b.done = true
	if len(b.runs) == 0 {
		b.runs = []Run{{ID: b.ids.NextID()}}
	}
	seq := Sequence{runs: make([]Run, len(b.runs))}
	copy(seq.runs, b.runs)
	return seq
}
