package richtext

import (
	"encoding/json"
	"fmt"
)

// JSON encoding follows the records of the résumé editor:
//
//	{"id":"seg-1","text":"Hello","style":{"bold":true,"fontSize":12}}
//
// Unset facets are omitted, facets explicitly set to false are kept.

type styleRecord struct {
	FontFamily *string  `json:"fontFamily,omitempty"`
	FontSize   *float64 `json:"fontSize,omitempty"`
	Color      *string  `json:"color,omitempty"`
	Bold       *bool    `json:"bold,omitempty"`
	Italic     *bool    `json:"italic,omitempty"`
	Code       *bool    `json:"code,omitempty"`
}

// MarshalJSON is part of interface json.Marshaler.
func (s Style) MarshalJSON() ([]byte, error) {
	var rec styleRecord
	if v, ok := s.FontFamily(); ok {
		rec.FontFamily = &v
	}
	if v, ok := s.FontSize(); ok {
		rec.FontSize = &v
	}
	if v, ok := s.Color(); ok {
		rec.Color = &v
	}
	if v, ok := s.Bold(); ok {
		rec.Bold = &v
	}
	if v, ok := s.Italic(); ok {
		rec.Italic = &v
	}
	if v, ok := s.Code(); ok {
		rec.Code = &v
	}
	return json.Marshal(rec)
}

// UnmarshalJSON is part of interface json.Unmarshaler.
func (s *Style) UnmarshalJSON(data []byte) error {
	var rec styleRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	var sty Style
	if rec.FontFamily != nil {
		sty = sty.With(FontFamily(*rec.FontFamily))
	}
	if rec.FontSize != nil {
		c := FontSize(*rec.FontSize)
		if err := c.validate(); err != nil {
			return err
		}
		sty = sty.With(c)
	}
	if rec.Color != nil {
		sty = sty.With(Color(*rec.Color))
	}
	if rec.Bold != nil {
		sty = sty.With(Bold(*rec.Bold))
	}
	if rec.Italic != nil {
		sty = sty.With(Italic(*rec.Italic))
	}
	if rec.Code != nil {
		sty = sty.With(Code(*rec.Code))
	}
	*s = sty
	return nil
}

type runRecord struct {
	ID    ID     `json:"id"`
	Text  string `json:"text"`
	Style Style  `json:"style"`
}

// MarshalJSON is part of interface json.Marshaler.
func (seq Sequence) MarshalJSON() ([]byte, error) {
	recs := make([]runRecord, len(seq.runs))
	for i, r := range seq.runs {
		recs[i] = runRecord(r)
	}
	return json.Marshal(recs)
}

// UnmarshalJSON is part of interface json.Unmarshaler. The decoded runs have to
// satisfy the invariants checked by FromRuns.
func (seq *Sequence) UnmarshalJSON(data []byte) error {
	var recs []runRecord
	if err := json.Unmarshal(data, &recs); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSequence, err)
	}
	runs := make([]Run, len(recs))
	for i, r := range recs {
		runs[i] = Run(r)
	}
	s, err := FromRuns(runs)
	if err != nil {
		return err
	}
	*seq = s
	return nil
}
