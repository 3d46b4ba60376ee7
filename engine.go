package richtext

import (
	"fmt"
	"iter"
	"strings"
)

// Engine performs operations on sequences of style runs. An engine is
// configured with an offset unit, a source for run ids and a merging policy.
// Engines do not hold any sequence; all operations are functions from
// sequences to sequences and may be called concurrently.
type Engine struct {
	unit  Unit
	ids   IDSource
	merge bool
}

// Option configures an engine.
type Option func(*Engine)

// WithUnit sets the unit in which offsets are counted. The default is Runes.
func WithUnit(u Unit) Option {
	return func(e *Engine) {
		e.unit = u
	}
}

// WithIDSource sets the source for fresh run ids. The default is a process-wide
// counter.
func WithIDSource(ids IDSource) Option {
	return func(e *Engine) {
		if ids != nil {
			e.ids = ids
		}
	}
}

// WithMerging lets the engine coalesce adjacent runs of equal style after
// applying a style. Only restyled pieces are merged with their neighbors;
// runs the operation did not touch keep their ids, even if they are equally
// styled. A merged run keeps the id of its leftmost part.
func WithMerging(merge bool) Option {
	return func(e *Engine) {
		e.merge = merge
	}
}

// New creates an engine.
func New(opts ...Option) *Engine {
	e := &Engine{unit: Runes, ids: defaultIDs}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Unit returns the offset unit of e.
func (e *Engine) Unit() Unit {
	return e.unit
}

// IDs returns the source e draws fresh run ids from.
func (e *Engine) IDs() IDSource {
	return e.ids
}

// NewSequence creates the sequence for an empty field.
func (e *Engine) NewSequence() Sequence {
	return NewSequenceWithIDs(e.ids)
}

// NewBuilder creates a sequence builder drawing ids from e's id source and
// following e's merging policy.
func (e *Engine) NewBuilder() *Builder {
	return NewBuilder(e.ids, e.merge)
}

// Len returns the length of the text of seq, in units of e.
func (e *Engine) Len(seq Sequence) uint64 {
	var n uint64
	for _, r := range seq.runs {
		n += e.unit.Count(r.Text)
	}
	return n
}

// RangeRuns returns an iterator over all runs of seq, together with the start
// offset of each run.
func (e *Engine) RangeRuns(seq Sequence) iter.Seq2[uint64, Run] {
	return func(yield func(uint64, Run) bool) {
		var pos uint64
		for _, r := range seq.runs {
			if !yield(pos, r) {
				return
			}
			pos += e.unit.Count(r.Text)
		}
	}
}

// ApplyStyle applies a style change to the range rng of seq.
//
// Runs intersecting rng are split into up to three pieces: the part before
// rng, the part within rng, which receives the change, and the part after
// rng. Pieces of zero length are dropped. Split pieces receive fresh ids;
// runs outside of rng, and runs for which the change has no effect, are
// carried over unchanged.
//
// A collapsed range (a cursor) is never an error and leaves seq unchanged,
// whatever its position and the change. A reversed range or a range exceeding
// the text results in ErrInvalidRange, an invalid change in
// ErrIllegalArguments. In case of an error, seq is returned unchanged. If the
// change has no effect on any run, seq itself is returned.
func (e *Engine) ApplyStyle(seq Sequence, rng Range, change Change) (Sequence, error) {
	if rng.Start == rng.End {
		return seq, nil
	}
	if err := change.validate(); err != nil {
		tracer().Errorf("richtext: cannot apply style: %v", err)
		return seq, err
	}
	if err := rng.check(e.Len(seq)); err != nil {
		tracer().Errorf("richtext: cannot apply style: %v", err)
		return seq, err
	}
	tracer().Debugf("apply %s to %s", change, rng)
	out := make([]Run, 0, len(seq.runs)+2)
	var touched []bool // parallel to out: restyled pieces
	var used map[ID]struct{}
	var pos uint64
	for _, run := range seq.runs {
		from, to := pos, pos+e.unit.Count(run.Text)
		pos = to
		x, ok := rng.intersect(from, to)
		if !ok {
			out = append(out, run)
			touched = append(touched, false)
			continue
		}
		pre, mid, post, ok := e.unit.cut(run.Text, x.Start-from, x.End-from)
		if !ok {
			err := fmt.Errorf("%w: %s splits a character (unit %s)", ErrInvalidRange, rng, e.unit)
			tracer().Errorf("richtext: cannot apply style: %v", err)
			return seq, err
		}
		assert(mid != "", "intersection of run and range is empty")
		restyled := run.Style.With(change)
		if restyled.Equals(run.Style) {
			out = append(out, run)
			touched = append(touched, false)
			continue
		}
		if used == nil {
			used = seq.ids()
		}
		tracer().Debugf("split run %s into %q|%q|%q", run.ID, pre, mid, post)
		if pre != "" {
			out = append(out, Run{ID: e.fresh(used), Text: pre, Style: run.Style})
			touched = append(touched, false)
		}
		out = append(out, Run{ID: e.fresh(used), Text: mid, Style: restyled})
		touched = append(touched, true)
		if post != "" {
			out = append(out, Run{ID: e.fresh(used), Text: post, Style: run.Style})
			touched = append(touched, false)
		}
	}
	if used == nil { // no run changed
		return seq, nil
	}
	if e.merge {
		out = coalesce(out, touched)
	}
	return Sequence{runs: out}, nil
}

// fresh draws an id from e's id source which is not yet in use.
func (e *Engine) fresh(used map[ID]struct{}) ID {
	for {
		id := e.ids.NextID()
		if _, taken := used[id]; !taken {
			used[id] = struct{}{}
			return id
		}
		tracer().Infof("richtext: id %q already in use, drawing again", id)
	}
}

// coalesce merges restyled runs with adjacent runs of equal style. The merged
// run keeps the id of the leftmost run.
func coalesce(runs []Run, touched []bool) []Run {
	if len(runs) < 2 {
		return runs
	}
	out := runs[:1]
	lastTouched := touched[0]
	for i, r := range runs[1:] {
		last := &out[len(out)-1]
		if (lastTouched || touched[i+1]) && last.Style.Equals(r.Style) {
			last.Text += r.Text
			lastTouched = true
			continue
		}
		out = append(out, r)
		lastTouched = touched[i+1]
	}
	return out
}

// StyleAt returns the style at offset k of seq, i.e. the style of the run
// containing k. An offset at a run boundary belongs to the run starting there;
// the offset at the end of the text reports the style of the last run.
// Offsets beyond the end of the text result in ErrInvalidRange.
func (e *Engine) StyleAt(seq Sequence, k uint64) (Style, error) {
	var pos uint64
	for _, run := range seq.runs {
		pos += e.unit.Count(run.Text)
		if k < pos {
			return run.Style, nil
		}
	}
	if k > pos {
		return Style{}, fmt.Errorf("%w: offset %d exceeds text length %d", ErrInvalidRange, k, pos)
	}
	if len(seq.runs) == 0 {
		return Style{}, nil
	}
	return seq.runs[len(seq.runs)-1].Style, nil
}

// FirstStyle returns the style of the first run of seq, or the default style
// for a sequence without runs. This is the style an editor reports when it has
// no information about the current selection.
func FirstStyle(seq Sequence) Style {
	if len(seq.runs) == 0 {
		return Style{}
	}
	return seq.runs[0].Style
}

// SelectionStyle returns the style facets which are set uniformly for all the
// text within rng. Facets differing between runs in rng are unset in the result.
// For an empty range this is the style at rng.Start.
func (e *Engine) SelectionStyle(seq Sequence, rng Range) (Style, error) {
	if err := rng.check(e.Len(seq)); err != nil {
		return Style{}, err
	}
	if rng.Empty() {
		return e.StyleAt(seq, rng.Start)
	}
	var sty Style
	first := true
	for from, run := range e.RangeRuns(seq) {
		to := from + e.unit.Count(run.Text)
		if _, ok := rng.intersect(from, to); !ok {
			continue
		}
		if first {
			sty, first = run.Style, false
		} else {
			sty = sty.Common(run.Style)
		}
	}
	return sty, nil
}

// ReplaceAll replaces the complete text of seq. The result is a single run
// holding text, which inherits style and id from the first run of seq. Any
// other styling of seq is dropped. Invalid UTF-8 in text is replaced by U+FFFD.
func (e *Engine) ReplaceAll(seq Sequence, text string) Sequence {
	text = strings.ToValidUTF8(text, "\uFFFD")
	run := Run{Text: text}
	if len(seq.runs) > 0 {
		run.ID = seq.runs[0].ID
		run.Style = seq.runs[0].Style
	} else {
		run.ID = e.ids.NextID()
	}
	return Sequence{runs: []Run{run}}
}

// --- Default engine --------------------------------------------------------

// std counts offsets in runes, draws ids from a process-wide counter and does
// not merge runs.
var std = New()

// ApplyStyle applies a style change to a range of seq, counting offsets in
// runes. See Engine.ApplyStyle.
func ApplyStyle(seq Sequence, rng Range, change Change) (Sequence, error) {
	return std.ApplyStyle(seq, rng, change)
}

// StyleAt returns the style at rune offset k of seq. See Engine.StyleAt.
func StyleAt(seq Sequence, k uint64) (Style, error) {
	return std.StyleAt(seq, k)
}

// SelectionStyle returns the style uniformly set within a range of rune offsets.
// See Engine.SelectionStyle.
func SelectionStyle(seq Sequence, rng Range) (Style, error) {
	return std.SelectionStyle(seq, rng)
}

// ReplaceAll replaces the complete text of seq. See Engine.ReplaceAll.
func ReplaceAll(seq Sequence, text string) Sequence {
	return std.ReplaceAll(seq, text)
}

// Len returns the length of the text of seq in runes.
func Len(seq Sequence) uint64 {
	return std.Len(seq)
}
