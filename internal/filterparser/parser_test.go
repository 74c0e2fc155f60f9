package filterparser

import (
	"testing"

	"github.com/alkim0/disjunct-opt/internal/atom"
	"github.com/alkim0/disjunct-opt/internal/table"
)

func buildTestTable(t *testing.T) *table.Table {
	t.Helper()
	tbl := table.NewTable(4)
	for _, name := range []string{"a", "b", "c", "d"} {
		if err := tbl.AddColumn(table.NewFloatColumn(name, []float64{0, 0, 0, 0})); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if err := tbl.AddColumn(table.NewStringColumn("name", []string{"", "", "", ""})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return tbl
}

func TestParseSingleComparison(t *testing.T) {
	tbl := buildTestTable(t)
	node, err := Parse("a < 0.82", tbl)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	leaf, ok := node.(*atom.Leaf)
	if !ok {
		t.Fatalf("expected *atom.Leaf, got %T", node)
	}
	if leaf.Atom.Fingerprint() != "a < 0.82" {
		t.Errorf("unexpected fingerprint %q", leaf.Atom.Fingerprint())
	}
}

func TestParseFlattensChainedAnd(t *testing.T) {
	tbl := buildTestTable(t)
	node, err := Parse("a < 0.1 and b < 0.2 and c < 0.3", tbl)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	and, ok := node.(*atom.And)
	if !ok {
		t.Fatalf("expected *atom.And, got %T", node)
	}
	if len(and.Children) != 3 {
		t.Fatalf("expected 3 flattened children, got %d", len(and.Children))
	}
}

func TestParseNestedQuery(t *testing.T) {
	tbl := buildTestTable(t)
	node, err := Parse("(a < 0.82) and (b < 0.313 or (c < 0.469 and d < 0.984))", tbl)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	root, ok := node.(*atom.And)
	if !ok {
		t.Fatalf("expected *atom.And root, got %T", node)
	}
	if len(root.Children) != 2 {
		t.Fatalf("expected 2 children at root, got %d", len(root.Children))
	}
	or, ok := root.Children[1].(*atom.Or)
	if !ok {
		t.Fatalf("expected *atom.Or as second child, got %T", root.Children[1])
	}
	if len(or.Children) != 2 {
		t.Fatalf("expected 2 children in OR, got %d", len(or.Children))
	}

	fps := atom.SortedFingerprints(node)
	want := []string{"a < 0.82", "b < 0.313", "c < 0.469", "d < 0.984"}
	for i := range want {
		if fps[i] != want[i] {
			t.Errorf("fingerprint %d: expected %q, got %q", i, want[i], fps[i])
		}
	}
}

func TestParseUnknownColumnIsError(t *testing.T) {
	tbl := buildTestTable(t)
	if _, err := Parse("nope < 1", tbl); err == nil {
		t.Fatal("expected error for unknown column")
	}
}

func TestParseLikeOnStringColumn(t *testing.T) {
	tbl := buildTestTable(t)
	node, err := Parse("name like 'foo%'", tbl)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	leaf := node.(*atom.Leaf)
	if leaf.Atom.Fingerprint() != `name LIKE "foo%"` {
		t.Errorf("unexpected fingerprint %q", leaf.Atom.Fingerprint())
	}
}

func TestParseTrailingTokenIsError(t *testing.T) {
	tbl := buildTestTable(t)
	if _, err := Parse("a < 0.1)", tbl); err == nil {
		t.Fatal("expected error for unmatched trailing paren")
	}
}
