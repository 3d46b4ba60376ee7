package richtext

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/guiguan/caster"
)

// Alignment is the paragraph alignment of a text field.
type Alignment uint8

// Paragraph alignments
const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
	AlignJustify
)

var alignNames = [...]string{"left", "center", "right", "justify"}

func (a Alignment) String() string {
	if int(a) < len(alignNames) {
		return alignNames[a]
	}
	return fmt.Sprintf("Alignment(%d)", a)
}

// ParseAlignment returns the alignment for one of "left", "center", "right"
// and "justify". The empty string denotes AlignLeft.
func ParseAlignment(s string) (Alignment, error) {
	if s == "" {
		return AlignLeft, nil
	}
	for i, n := range alignNames {
		if n == s {
			return Alignment(i), nil
		}
	}
	return AlignLeft, fmt.Errorf("%w: unknown alignment %q", ErrIllegalArguments, s)
}

// BlockType is the kind of block a text field represents.
type BlockType uint8

// Block types
const (
	PlainText BlockType = iota
	BulletList
	NumberedList
)

var blockNames = [...]string{"text", "bullet-list", "numbered-list"}

func (b BlockType) String() string {
	if int(b) < len(blockNames) {
		return blockNames[b]
	}
	return fmt.Sprintf("BlockType(%d)", b)
}

// ParseBlockType returns the block type for one of "text", "bullet-list" and
// "numbered-list". The empty string denotes PlainText.
func ParseBlockType(s string) (BlockType, error) {
	if s == "" {
		return PlainText, nil
	}
	for i, n := range blockNames {
		if n == s {
			return BlockType(i), nil
		}
	}
	return PlainText, fmt.Errorf("%w: unknown block type %q", ErrIllegalArguments, s)
}

// --- Field -----------------------------------------------------------------

// Field is an editable text field. It exclusively owns a sequence of style runs,
// together with paragraph-level metadata which is not affected by styling
// operations.
//
// Every successful modification is published to subscribers of the field.
// A field does not synchronize modifications; clients have to apply edits to
// a single field from one goroutine at a time (e.g., one UI event at a time).
type Field struct {
	ID     string
	engine *Engine
	seq    Sequence
	align  Alignment
	block  BlockType
	cast   *caster.Caster // broadcaster for updates, created on first subscription
	closed bool
}

// Update is published to subscribers of a field after each modification.
type Update struct {
	FieldID  string
	Sequence Sequence
	Align    Alignment
	Block    BlockType
}

// NewField creates a field holding seq. Operations on the field will use engine;
// if engine is nil, the default engine is used.
func NewField(id string, seq Sequence, engine *Engine) *Field {
	if engine == nil {
		engine = std
	}
	if seq.RunCount() == 0 {
		seq = engine.NewSequence()
	}
	return &Field{
		ID:     id,
		engine: engine,
		seq:    seq,
	}
}

// Sequence returns the current sequence of style runs.
func (f *Field) Sequence() Sequence {
	return f.seq
}

// Text returns the plain text of the field.
func (f *Field) Text() string {
	return f.seq.Text()
}

// Align returns the paragraph alignment.
func (f *Field) Align() Alignment {
	return f.align
}

// BlockType returns the kind of block the field represents.
func (f *Field) BlockType() BlockType {
	return f.block
}

// ApplyStyle applies a style change to a range of the field's text.
// If an error occurs, the field remains unchanged. Changes without effect,
// e.g. styling an empty range, do not publish an update.
func (f *Field) ApplyStyle(rng Range, change Change) error {
	seq, err := f.engine.ApplyStyle(f.seq, rng, change)
	if err != nil || seq.same(f.seq) {
		return err
	}
	f.seq = seq
	f.publish()
	return nil
}

// StyleAt returns the style at offset k. See Engine.StyleAt.
func (f *Field) StyleAt(k uint64) (Style, error) {
	return f.engine.StyleAt(f.seq, k)
}

// SelectionStyle returns the style uniformly set within rng.
// See Engine.SelectionStyle.
func (f *Field) SelectionStyle(rng Range) (Style, error) {
	return f.engine.SelectionStyle(f.seq, rng)
}

// ReplaceAll replaces the text of the field, collapsing it to a single run.
// See Engine.ReplaceAll.
func (f *Field) ReplaceAll(text string) {
	f.seq = f.engine.ReplaceAll(f.seq, text)
	f.publish()
}

// SetAlign sets the paragraph alignment.
func (f *Field) SetAlign(a Alignment) {
	if a == f.align {
		return
	}
	f.align = a
	f.publish()
}

// SetBlockType sets the kind of block the field represents.
func (f *Field) SetBlockType(b BlockType) {
	if b == f.block {
		return
	}
	f.block = b
	f.publish()
}

func (f *Field) publish() {
	if f.closed || f.cast == nil {
		return
	}
	f.cast.Pub(Update{
		FieldID:  f.ID,
		Sequence: f.seq,
		Align:    f.align,
		Block:    f.block,
	})
}

// Subscribe returns a channel receiving an Update for every modification of
// the field. The channel is closed when ctx is done or the field is closed.
//
// Publishing never waits for subscribers. If a subscriber's buffer is full,
// further updates are coalesced and the subscriber will receive the most
// recent one as soon as there is room. As every update carries the complete
// state of the field, a slow subscriber misses intermediate states only.
func (f *Field) Subscribe(ctx context.Context, capacity uint) (<-chan Update, error) {
	if f.closed {
		return nil, ErrFieldClosed
	}
	if f.cast == nil {
		f.cast = caster.New(nil)
	}
	ch, ok := f.cast.Sub(ctx, capacity)
	if !ok {
		return nil, ErrFieldClosed
	}
	updates := make(chan Update, capacity)
	go forward(ctx, ch, updates)
	return updates, nil
}

// forward moves updates from a caster subscription to a subscriber. It keeps
// reading from the subscription while the subscriber lags behind, holding on
// to the latest update only.
func forward(ctx context.Context, ch <-chan interface{}, updates chan<- Update) {
	defer close(updates)
	defer func() {
		for range ch { // the caster closes ch after unsubscribing
		}
	}()
	var pending *Update
	for {
		var out chan<- Update // nil unless an update is pending
		var next Update
		if pending != nil {
			out, next = updates, *pending
		}
		select {
		case msg, ok := <-ch:
			if !ok {
				if pending != nil {
					select {
					case updates <- *pending:
					default:
					}
				}
				return
			}
			if u, ok := msg.(Update); ok {
				pending = &u
			}
		case out <- next:
			pending = nil
		case <-ctx.Done():
			return
		}
	}
}

// Close ends all subscriptions. The field remains usable, but will not publish
// any further updates.
func (f *Field) Close() {
	if f.closed {
		return
	}
	f.closed = true
	if f.cast != nil {
		f.cast.Close()
	}
}

// --- JSON ------------------------------------------------------------------

type fieldRecord struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Align    string   `json:"align,omitempty"`
	Segments Sequence `json:"segments"`
}

// MarshalJSON is part of interface json.Marshaler.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(fieldRecord{
		ID:       f.ID,
		Type:     f.block.String(),
		Align:    f.align.String(),
		Segments: f.seq,
	})
}

// UnmarshalJSON is part of interface json.Unmarshaler. Decoding replaces the
// field's content without publishing an update. A field decoded into a zero
// Field uses the default engine.
func (f *Field) UnmarshalJSON(data []byte) error {
	var rec fieldRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	align, err := ParseAlignment(rec.Align)
	if err != nil {
		return err
	}
	block, err := ParseBlockType(rec.Type)
	if err != nil {
		return err
	}
	if f.engine == nil {
		f.engine = std
	}
	if rec.Segments.RunCount() == 0 {
		rec.Segments = f.engine.NewSequence()
	}
	f.ID, f.seq, f.align, f.block = rec.ID, rec.Segments, align, block
	return nil
}
