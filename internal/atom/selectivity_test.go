package atom

import "testing"

func TestSelLeafLookupDefaultsToHalf(t *testing.T) {
	leaf := NewLeaf(newFakeAtom("a"))
	got := Sel(leaf, SelectivityMap{})
	if got != DefaultSelectivity {
		t.Errorf("expected default selectivity %.2f, got %.2f", DefaultSelectivity, got)
	}
}

func TestSelAndIsProductOfChildren(t *testing.T) {
	a := NewLeaf(newFakeAtom("a"))
	b := NewLeaf(newFakeAtom("b"))
	root, err := NewAnd(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sel := SelectivityMap{"a": 0.5, "b": 0.2}
	got := Sel(root, sel)
	want := 0.5 * 0.2
	if got != want {
		t.Errorf("expected %.4f, got %.4f", want, got)
	}
}

func TestSelOrIsComplementOfProductOfComplements(t *testing.T) {
	a := NewLeaf(newFakeAtom("a"))
	b := NewLeaf(newFakeAtom("b"))
	root, err := NewOr(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sel := SelectivityMap{"a": 0.5, "b": 0.2}
	got := Sel(root, sel)
	want := 1 - (1-0.5)*(1-0.2)
	if got != want {
		t.Errorf("expected %.4f, got %.4f", want, got)
	}
}

func TestEstimateSelectivitiesFillsOnlyMissingEntries(t *testing.T) {
	a := NewLeaf(newFakeAtom("a"))
	b := NewLeaf(newFakeAtom("b"))
	root, err := NewAnd(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m := SelectivityMap{"a": 0.9}
	EstimateSelectivities(root, m)

	if m["a"] != 0.9 {
		t.Errorf("expected measured entry for a to survive, got %.2f", m["a"])
	}
	if m["b"] != DefaultSelectivity {
		t.Errorf("expected structural default for b, got %.2f", m["b"])
	}
}

func TestCostMapLookupDefault(t *testing.T) {
	var m CostMap
	got := m.Lookup(newFakeAtom("a"))
	if got != DefaultCost {
		t.Errorf("expected default cost %.2f, got %.2f", DefaultCost, got)
	}
}
