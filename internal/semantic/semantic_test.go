package semantic

import (
	"testing"

	"github.com/alkim0/disjunct-opt/internal/atom"
	"github.com/alkim0/disjunct-opt/internal/bitmap"
)

type stubAtom struct{ fp string }

func (s stubAtom) Fingerprint() string { return s.fp }
func (s stubAtom) Eval(candidate bitmap.Bitmap, stats atom.StatsSink) bitmap.Bitmap {
	return candidate
}

func leaf(fp string) *atom.Leaf { return atom.NewLeaf(stubAtom{fp: fp}) }

func TestValidatorAcceptsWellFormedTree(t *testing.T) {
	inner, err := atom.NewOr(leaf("b"), leaf("c"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	root, err := atom.NewAnd(leaf("a"), inner)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	info := NewValidator().Analyze(root)
	if !info.Valid {
		t.Fatalf("expected valid tree, got errors: %v", info.Errors)
	}
	if len(info.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", info.Warnings)
	}
}

func TestValidatorWarnsOnDuplicateAtom(t *testing.T) {
	root, err := atom.NewAnd(leaf("a"), leaf("a"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	info := NewValidator().Analyze(root)
	if !info.Valid {
		t.Fatalf("duplicate atoms should not be fatal, got errors: %v", info.Errors)
	}
	if len(info.Warnings) != 1 {
		t.Fatalf("expected exactly one duplicate warning, got %d", len(info.Warnings))
	}
}

// handBuiltAnd is not referenced by the tests below: they simulate a tree
// that bypassed atom.NewAnd's validation by mutating the Children of a
// constructor-built node, so the Validator's own shape checks are
// exercised independently.
type handBuiltAnd struct{ children []atom.Node }

func (handBuiltAnd) Fingerprint() string { return "" }

func TestShapeRuleCatchesEmptyChildrenBypassingConstructors(t *testing.T) {
	// Build via reflection-free trick: construct a valid 2-child And, then
	// mutate it to simulate a malformed tree reaching the validator.
	root, err := atom.NewAnd(leaf("a"), leaf("b"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	root.Children = root.Children[:0]

	info := NewValidator().Analyze(root)
	if info.Valid {
		t.Fatal("expected empty-children AND to be rejected")
	}
}

func TestShapeRuleCatchesNestedSameOperatorBypassingConstructors(t *testing.T) {
	inner, err := atom.NewAnd(leaf("a"), leaf("b"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	outer, err := atom.NewAnd(leaf("c"), leaf("d"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	outer.Children[0] = inner

	info := NewValidator().Analyze(outer)
	if info.Valid {
		t.Fatal("expected nested-AND tree to be rejected")
	}
}
