package table

import (
	"testing"

	"github.com/alkim0/disjunct-opt/internal/atom"
	"github.com/alkim0/disjunct-opt/internal/bitmap"
)

func buildTable(t *testing.T) *Table {
	t.Helper()
	tbl := NewTable(5)
	if err := tbl.AddColumn(NewFloatColumn("a", []float64{0.1, 0.5, 0.9, 0.2, 0.6})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tbl.AddColumn(NewStringColumn("name", []string{"foo", "bar", "foobar", "baz", "barfoo"})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return tbl
}

func TestTableColumnNotFound(t *testing.T) {
	tbl := buildTable(t)
	if _, err := tbl.Column("missing"); err == nil {
		t.Fatal("expected error for missing column")
	}
}

func TestTableAddColumnRejectsLengthMismatch(t *testing.T) {
	tbl := NewTable(3)
	err := tbl.AddColumn(NewFloatColumn("a", []float64{1, 2}))
	if err == nil {
		t.Fatal("expected error for mismatched column length")
	}
}

func TestComparisonAtomLessThan(t *testing.T) {
	tbl := buildTable(t)
	col, _ := tbl.Column("a")
	a := NewComparisonAtom(col, OpLt, 0.55)

	got := a.Eval(tbl.AllCandidates(), atom.NoopStats)
	want := bitmap.FromSlice([]uint32{0, 1, 3})
	if !got.Equals(want) {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestComparisonAtomLikePattern(t *testing.T) {
	tbl := buildTable(t)
	col, _ := tbl.Column("name")
	a := NewStringComparisonAtom(col, OpLike, "foo%")

	got := a.Eval(tbl.AllCandidates(), atom.NoopStats)
	want := bitmap.FromSlice([]uint32{0, 2})
	if !got.Equals(want) {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestComparisonAtomFingerprint(t *testing.T) {
	tbl := buildTable(t)
	col, _ := tbl.Column("a")
	a := NewComparisonAtom(col, OpLt, 0.82)

	want := `a < 0.82`
	if got := a.Fingerprint(); got != want {
		t.Errorf("expected fingerprint %q, got %q", want, got)
	}
}
