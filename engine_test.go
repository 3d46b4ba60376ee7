package richtext

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestBoundaryExactness(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "richtext")
	defer teardown()
	//
	e := testEngine()
	seq := mkseq(t, piece{"Hello World", Style{}})
	styled, err := e.ApplyStyle(seq, Range{2, 5}, Bold(true))
	if err != nil {
		t.Fatal(err)
	}
	t.Logf("styled = %s", styled)
	want := []piece{
		{"He", Style{}},
		{"llo", sty(Bold(true))},
		{" World", Style{}},
	}
	if diff := cmp.Diff(want, pieces(styled), styleComparer); diff != "" {
		t.Errorf("unexpected runs (-want +got):\n%s", diff)
	}
	if styled.Text() != "Hello World" {
		t.Errorf("expected text to be unchanged, is %q", styled.Text())
	}
	for _, r := range styled.Runs() {
		if r.ID == seq.Run(0).ID {
			t.Errorf("expected split pieces to receive fresh ids, %q has been reused", r.ID)
		}
	}
	checkInvariants(t, styled)
}

func TestFullRange(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "richtext")
	defer teardown()
	//
	e := testEngine()
	seq := mkseq(t, piece{"Hello World", sty(Italic(true))})
	styled, err := e.ApplyStyle(seq, Range{0, e.Len(seq)}, FontSize(14))
	if err != nil {
		t.Fatal(err)
	}
	if styled.RunCount() != 1 {
		t.Fatalf("expected styling of complete text to result in 1 run, have %d", styled.RunCount())
	}
	if !styled.Run(0).Style.Equals(sty(Italic(true), FontSize(14))) {
		t.Errorf("expected run to be italic at 14pt, is %s", styled.Run(0).Style)
	}
}

func TestMultiRunIntersection(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "richtext")
	defer teardown()
	//
	e := testEngine()
	a, b := sty(Italic(true)), sty(Color("#d73a49"))
	seq := mkseq(t, piece{"abc", a}, piece{"def", b})
	styled, err := e.ApplyStyle(seq, Range{1, 4}, Bold(true))
	if err != nil {
		t.Fatal(err)
	}
	want := []piece{
		{"a", a},
		{"bc", a.With(Bold(true))},
		{"d", b.With(Bold(true))},
		{"ef", b},
	}
	if diff := cmp.Diff(want, pieces(styled), styleComparer); diff != "" {
		t.Errorf("unexpected runs (-want +got):\n%s", diff)
	}
	checkInvariants(t, styled)
}

func TestUntouchedRunsKeepIdentity(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "richtext")
	defer teardown()
	//
	e := testEngine()
	seq := mkseq(t, piece{"The ", Style{}}, piece{"quick", sty(Bold(true))}, piece{" fox", Style{}})
	styled, err := e.ApplyStyle(seq, Range{4, 9}, Italic(true))
	if err != nil {
		t.Fatal(err)
	}
	if styled.RunCount() != 3 {
		t.Fatalf("expected 3 runs, have %d: %s", styled.RunCount(), styled)
	}
	if styled.Run(0) != seq.Run(0) || styled.Run(2) != seq.Run(2) {
		t.Errorf("expected runs outside of range to be carried over unchanged")
	}
	if styled.Run(1).ID == seq.Run(1).ID {
		t.Errorf("expected restyled run to receive a fresh id")
	}
}

func TestEmptyRangeIsNoOp(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "richtext")
	defer teardown()
	//
	e := testEngine()
	seq := mkseq(t, piece{"abc", Style{}}, piece{"def", sty(Bold(true))})
	for k := uint64(0); k <= e.Len(seq); k++ {
		styled, err := e.ApplyStyle(seq, Range{k, k}, Code(true))
		if err != nil {
			t.Fatalf("expected empty range [%d,%d) not to be an error, got %v", k, k, err)
		}
		if diff := cmp.Diff(seq.Runs(), styled.Runs(), styleComparer); diff != "" {
			t.Errorf("expected empty range [%d,%d) to leave text unchanged:\n%s", k, k, diff)
		}
	}
}

func TestInvalidRange(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "richtext")
	defer teardown()
	//
	e := testEngine()
	seq := mkseq(t, piece{"Hello", Style{}})
	for _, rng := range []Range{{3, 2}, {0, 6}, {10, 12}} {
		styled, err := e.ApplyStyle(seq, rng, Bold(true))
		if !errors.Is(err, ErrInvalidRange) {
			t.Errorf("expected range %s to be invalid, got error %v", rng, err)
		}
		if diff := cmp.Diff(seq.Runs(), styled.Runs(), styleComparer); diff != "" {
			t.Errorf("expected invalid range %s to leave text unchanged:\n%s", rng, diff)
		}
	}
}

func TestCollapsedRangeNeverFails(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "richtext")
	defer teardown()
	//
	e := testEngine()
	seq := mkseq(t, piece{"Hello", Style{}})
	for _, k := range []uint64{0, 5, 6, 100} {
		for _, c := range []Change{FontSize(0), Bold(true)} {
			styled, err := e.ApplyStyle(seq, Range{k, k}, c)
			if err != nil {
				t.Errorf("expected cursor at %d with %s not to fail, got %v", k, c, err)
			}
			if !styled.same(seq) {
				t.Errorf("expected cursor at %d to leave text unchanged, is %s", k, styled)
			}
		}
	}
}

func TestChangeWithoutEffectReturnsInput(t *testing.T) {
	e := testEngine()
	seq := mkseq(t, piece{"ab", sty(Bold(true))}, piece{"cd", Style{}})
	for _, c := range []Change{Unset(ItalicFacet), Bold(true)} {
		styled, err := e.ApplyStyle(seq, Range{0, 2}, c)
		if err != nil {
			t.Fatal(err)
		}
		if !styled.same(seq) {
			t.Errorf("expected %s without effect to return the input sequence", c)
		}
	}
	styled, _ := e.ApplyStyle(seq, Range{0, 3}, Bold(true))
	if styled.same(seq) {
		t.Errorf("expected restyled sequence to be a new sequence")
	}
}

func TestInvalidChange(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "richtext")
	defer teardown()
	//
	seq := mkseq(t, piece{"Hello", Style{}})
	for _, pt := range []float64{0, -3} {
		_, err := ApplyStyle(seq, Range{0, 2}, FontSize(pt))
		if !errors.Is(err, ErrIllegalArguments) {
			t.Errorf("expected font size %v to be rejected, got %v", pt, err)
		}
	}
}

func TestCoverageAndIdempotence(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "richtext")
	defer teardown()
	//
	e := testEngine()
	seq := mkseq(t,
		piece{"Résumé ", Style{}},
		piece{"of", sty(Bold(true))},
		piece{" Jane Doe", sty(Color("#0066cc"))},
	)
	n := e.Len(seq)
	for _, c := range []Change{Bold(true), Bold(false), Unset(ColorFacet), FontFamily("SimSun")} {
		for from := uint64(0); from < n; from++ {
			for to := from + 1; to <= n; to++ {
				rng := Range{from, to}
				once, err := e.ApplyStyle(seq, rng, c)
				if err != nil {
					t.Fatalf("%s on %s: %v", c, rng, err)
				}
				if once.Text() != seq.Text() {
					t.Fatalf("%s on %s changed text to %q", c, rng, once.Text())
				}
				checkInvariants(t, once)
				twice, err := e.ApplyStyle(once, rng, c)
				if err != nil {
					t.Fatalf("%s on %s, second time: %v", c, rng, err)
				}
				if diff := cmp.Diff(once.Runs(), twice.Runs(), styleComparer); diff != "" {
					t.Fatalf("applying %s on %s twice is not idempotent:\n%s", c, rng, diff)
				}
				for k := from; k < to; k++ {
					s, _ := e.StyleAt(once, k)
					if !s.Equals(s.With(c)) {
						t.Fatalf("%s on %s: offset %d has style %s", c, rng, k, s)
					}
				}
			}
		}
	}
}

func TestFreshIDsAvoidExistingOnes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "richtext")
	defer teardown()
	//
	e := New(WithIDSource(&Counter{Prefix: "r"}))
	seq, err := FromRuns([]Run{{ID: "r1", Text: "abc"}, {ID: "r2", Text: "def"}})
	if err != nil {
		t.Fatal(err)
	}
	styled, err := e.ApplyStyle(seq, Range{1, 5}, Bold(true))
	if err != nil {
		t.Fatal(err)
	}
	checkInvariants(t, styled)
}

func TestReplaceAll(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "richtext")
	defer teardown()
	//
	e := testEngine()
	single := mkseq(t, piece{"Jane Doe", sty(FontSize(18), Bold(true))})
	again := e.ReplaceAll(single, single.Text())
	if again.Text() != single.Text() || again.RunCount() != 1 {
		t.Errorf("expected round trip to result in a single run %q, is %s", single.Text(), again)
	}
	if !again.Run(0).Style.Equals(FirstStyle(single)) {
		t.Errorf("expected style %s, is %s", FirstStyle(single), again.Run(0).Style)
	}
	//
	multi := mkseq(t, piece{"abc", sty(Italic(true))}, piece{"def", sty(Bold(true))})
	plain := e.ReplaceAll(multi, "retyped")
	if plain.RunCount() != 1 || plain.Text() != "retyped" {
		t.Fatalf("expected a single run for retyped text, is %s", plain)
	}
	if !plain.Run(0).Style.Equals(sty(Italic(true))) {
		t.Errorf("expected retyped text to inherit the first style, is %s", plain.Run(0).Style)
	}
	if plain.Run(0).ID != multi.Run(0).ID {
		t.Errorf("expected retyped text to keep the id of the first run")
	}
	//
	empty := e.ReplaceAll(Sequence{}, "")
	if empty.RunCount() != 1 || !empty.IsVoid() {
		t.Errorf("expected empty text to be a single empty run, is %s", empty)
	}
}

func TestEmptyField(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "richtext")
	defer teardown()
	//
	e := testEngine()
	seq := e.NewSequence()
	if e.Len(seq) != 0 || seq.RunCount() != 1 {
		t.Fatalf("expected empty field to hold one empty run, is %s", seq)
	}
	if _, err := e.ApplyStyle(seq, Range{0, 0}, Bold(true)); err != nil {
		t.Errorf("expected collapsed selection in empty field to be ok, got %v", err)
	}
	if _, err := e.ApplyStyle(seq, Range{0, 1}, Bold(true)); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("expected range [0,1) to be invalid for empty field, got %v", err)
	}
	if s, err := e.StyleAt(seq, 0); err != nil || !s.IsDefault() {
		t.Errorf("expected default style at 0, got %s, %v", s, err)
	}
}

func TestStyleAt(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "richtext")
	defer teardown()
	//
	e := testEngine()
	bold, italic := sty(Bold(true)), sty(Italic(true))
	seq := mkseq(t, piece{"ab", Style{}}, piece{"cd", bold}, piece{"ef", italic})
	for k, want := range []Style{{}, {}, bold, bold, italic, italic, italic} {
		s, err := e.StyleAt(seq, uint64(k))
		if err != nil {
			t.Fatal(err)
		}
		if !s.Equals(want) {
			t.Errorf("expected style at %d to be %s, is %s", k, want, s)
		}
	}
	if _, err := e.StyleAt(seq, 7); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("expected offset 7 to be out of range, got %v", err)
	}
}

func TestSelectionStyle(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "richtext")
	defer teardown()
	//
	e := testEngine()
	seq := mkseq(t,
		piece{"ab", sty(Bold(true), FontSize(12))},
		piece{"cd", sty(Bold(true), FontSize(14))},
		piece{"ef", sty(Italic(true))},
	)
	s, err := e.SelectionStyle(seq, Selection(3, 1))
	if err != nil {
		t.Fatal(err)
	}
	if !s.Equals(sty(Bold(true))) {
		t.Errorf("expected selection style to be bold only, is %s", s)
	}
	s, _ = e.SelectionStyle(seq, Range{0, 2})
	if !s.Equals(sty(Bold(true), FontSize(12))) {
		t.Errorf("expected selection within first run to report its style, is %s", s)
	}
	s, _ = e.SelectionStyle(seq, Range{2, 2})
	if !s.Equals(sty(Bold(true), FontSize(14))) {
		t.Errorf("expected cursor at 2 to report style of second run, is %s", s)
	}
	s, _ = e.SelectionStyle(seq, Range{1, 6})
	if !s.IsDefault() {
		t.Errorf("expected no common facets, have %s", s)
	}
}

func TestMerging(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "richtext")
	defer teardown()
	//
	e := New(WithIDSource(&Counter{Prefix: "m"}), WithMerging(true))
	seq := mkseq(t, piece{"Hello World", Style{}})
	seq, err := e.ApplyStyle(seq, Range{0, 2}, Bold(true))
	if err != nil {
		t.Fatal(err)
	}
	leftID := seq.Run(0).ID
	seq, err = e.ApplyStyle(seq, Range{2, 5}, Bold(true))
	if err != nil {
		t.Fatal(err)
	}
	want := []piece{{"Hello", sty(Bold(true))}, {" World", Style{}}}
	if diff := cmp.Diff(want, pieces(seq), styleComparer); diff != "" {
		t.Errorf("unexpected runs (-want +got):\n%s", diff)
	}
	if seq.Run(0).ID != leftID {
		t.Errorf("expected merged run to keep id %q, has %q", leftID, seq.Run(0).ID)
	}
	seq, _ = e.ApplyStyle(seq, Range{0, 5}, Unset(BoldFacet))
	if seq.RunCount() != 1 {
		t.Errorf("expected unstyled text to merge into a single run, is %s", seq)
	}
}

func TestMergingKeepsUntouchedRuns(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "richtext")
	defer teardown()
	//
	e := New(WithIDSource(&Counter{Prefix: "m"}), WithMerging(true))
	seq, err := FromRuns([]Run{
		{ID: "a", Text: "ab"},
		{ID: "b", Text: "cd"},
		{ID: "c", Text: "ef", Style: sty(Italic(true))},
		{ID: "d", Text: "gh"},
	})
	if err != nil {
		t.Fatal(err)
	}
	styled, err := e.ApplyStyle(seq, Range{4, 6}, Unset(ItalicFacet))
	if err != nil {
		t.Fatal(err)
	}
	var ids []ID
	for _, r := range styled.All() {
		ids = append(ids, r.ID)
	}
	if diff := cmp.Diff([]ID{"a", "b"}, ids); diff != "" {
		t.Errorf("expected equal runs outside of range to keep their ids (-want +got):\n%s", diff)
	}
	if styled.Run(1).Text != "cdefgh" {
		t.Errorf("expected restyled piece to merge with its neighbors, is %s", styled)
	}
}

func TestRangeRuns(t *testing.T) {
	e := testEngine()
	seq := mkseq(t, piece{"ab", Style{}}, piece{"cde", sty(Bold(true))}, piece{"f", Style{}})
	var starts []uint64
	for pos := range e.RangeRuns(seq) {
		starts = append(starts, pos)
	}
	if diff := cmp.Diff([]uint64{0, 2, 5}, starts); diff != "" {
		t.Errorf("unexpected run offsets (-want +got):\n%s", diff)
	}
}

// --- Test Helpers ----------------------------------------------------------

type piece struct {
	Text  string
	Style Style
}

var styleComparer = cmp.Comparer(func(a, b Style) bool {
	return a.Equals(b)
})

func testEngine() *Engine {
	return New(WithIDSource(&Counter{Prefix: "t"}))
}

func sty(changes ...Change) Style {
	var s Style
	for _, c := range changes {
		s = s.With(c)
	}
	return s
}

func mkseq(t *testing.T, pcs ...piece) Sequence {
	t.Helper()
	b := NewBuilder(&Counter{Prefix: "p"}, false)
	for _, p := range pcs {
		if err := b.Append(p.Text, p.Style); err != nil {
			t.Fatal(err)
		}
	}
	return b.Sequence()
}

func pieces(seq Sequence) []piece {
	var pcs []piece
	for _, r := range seq.All() {
		pcs = append(pcs, piece{r.Text, r.Style})
	}
	return pcs
}

func checkInvariants(t *testing.T, seq Sequence) {
	t.Helper()
	if _, err := FromRuns(seq.Runs()); err != nil {
		t.Errorf("sequence %s violates invariants: %v", seq, err)
	}
}
