/*
Package richtext implements styled text as a sequence of style runs.

Runs

Rich text is stored as an ordered sequence of disjoint runs. Each run carries
a piece of text and a set of style attributes, and all characters of a run
share the same style. The concatenation of all run texts is the logical text
of a text field. A sequence is total and non-overlapping: every character
offset of the text belongs to exactly one run.

	seq := richtext.NewSequence()
	seq = richtext.ReplaceAll(seq, "Hello World")
	seq, err := richtext.ApplyStyle(seq, richtext.Range{Start: 2, End: 5}, richtext.Bold(true))

results in three runs "He", "llo" (bold) and " World".

Sequences are values. No operation modifies a sequence in place; each
operation either returns a new sequence satisfying all invariants or returns
its input unchanged together with an error. Clients holding the text of an
editable field will usually wrap a sequence in a Field, which keeps the
current sequence together with paragraph-level metadata and publishes
changes to subscribers.

Offsets

Offsets are counted in logical units over the concatenated run texts. The
unit is a property of an Engine and defaults to Unicode code points. Clients
talking to a browser may select UTF-16 code units instead, as this is what
JavaScript reports for string lengths and selection offsets. The engine does
not do grapheme segmentation or bidi reordering; offsets are taken as
supplied by the caller.

_________________________________________________________________________

BSD 3-Clause License

Copyright (c) 2020–21, Norbert Pillmayer

All rights reserved.

Redistribution and use in source and binary forms, with or without
modification, are permitted provided that the following conditions are met:

1. Redistributions of source code must retain the above copyright notice, this
list of conditions and the following disclaimer.

2. Redistributions in binary form must reproduce the above copyright notice,
this list of conditions and the following disclaimer in the documentation
and/or other materials provided with the distribution.

3. Neither the name of the copyright holder nor the names of its
contributors may be used to endorse or promote products derived from
this software without specific prior written permission.

THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE LIABLE
FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR CONSEQUENTIAL
DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER
CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY,
OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE.

*/
package richtext

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'richtext'
func tracer() tracing.Trace {
	return tracing.Select("richtext")
}

// SegmentError is an error type for the richtext module.
type SegmentError string

func (e SegmentError) Error() string {
	return string(e)
}

// ErrInvalidRange is flagged whenever a range is reversed, exceeds the length
// of a text, or has a boundary inside a single code point.
const ErrInvalidRange = SegmentError("invalid range")

// ErrIllegalArguments is flagged whenever function parameters are invalid.
const ErrIllegalArguments = SegmentError("illegal arguments")

// ErrInvalidSequence is flagged for run sequences violating the invariants
// of a styled text, usually during import or loading.
const ErrInvalidSequence = SegmentError("invalid run sequence")

// ErrFieldClosed is flagged when subscribing to a field which has been closed.
const ErrFieldClosed = SegmentError("field has been closed")

func assert(condition bool, msg string) {
	if !condition {
		panic(msg)
	}
}
