package atom

import "sort"

// Node is a predicate tree node: a Leaf wrapping a single Atom, or an And/Or
// internal node with two or more children. The zero value of no Node
// implementation is meaningful; always go through NewLeaf/NewAnd/NewOr.
type Node interface {
	node()
}

// Leaf wraps a single Atom as a tree node.
type Leaf struct {
	Atom Atom
}

func (*Leaf) node() {}

// NewLeaf wraps a as a predicate tree leaf.
func NewLeaf(a Atom) *Leaf {
	return &Leaf{Atom: a}
}

// And is a conjunction of two or more children, none of which is itself an
// And node (the parser is expected to flatten nested ANDs).
type And struct {
	Children []Node
}

func (*And) node() {}

// NewAnd builds an And node, enforcing the MalformedTree invariants:
// at least two children, and no child that is itself an And.
func NewAnd(children ...Node) (*And, error) {
	if len(children) == 0 {
		return nil, newTreeError(ErrEmptyChildren, "AND", "AND requires at least two children, got 0")
	}
	if len(children) == 1 {
		return nil, newTreeError(ErrSingletonChildren, "AND", "AND requires at least two children, got 1")
	}
	for _, c := range children {
		if _, ok := c.(*And); ok {
			return nil, newTreeError(ErrNestedSameOperator, "AND", "AND directly nests an AND child; flatten before constructing")
		}
	}
	return &And{Children: children}, nil
}

// Or is a disjunction of two or more children, none of which is itself an
// Or node (the parser is expected to flatten nested ORs).
type Or struct {
	Children []Node
}

func (*Or) node() {}

// NewOr builds an Or node, enforcing the same invariants as NewAnd.
func NewOr(children ...Node) (*Or, error) {
	if len(children) == 0 {
		return nil, newTreeError(ErrEmptyChildren, "OR", "OR requires at least two children, got 0")
	}
	if len(children) == 1 {
		return nil, newTreeError(ErrSingletonChildren, "OR", "OR requires at least two children, got 1")
	}
	for _, c := range children {
		if _, ok := c.(*Or); ok {
			return nil, newTreeError(ErrNestedSameOperator, "OR", "OR directly nests an OR child; flatten before constructing")
		}
	}
	return &Or{Children: children}, nil
}

// Atoms returns every leaf atom in node, in-order. Input atom ordering has
// no semantic effect but callers (e.g. tie-breaking) may rely on the
// lexicographic fingerprint order of the returned slice, which this
// function does not itself impose — sort the result if that's required.
func Atoms(n Node) []Atom {
	var out []Atom
	collectAtoms(n, &out)
	return out
}

func collectAtoms(n Node, out *[]Atom) {
	switch v := n.(type) {
	case *Leaf:
		*out = append(*out, v.Atom)
	case *And:
		for _, c := range v.Children {
			collectAtoms(c, out)
		}
	case *Or:
		for _, c := range v.Children {
			collectAtoms(c, out)
		}
	}
}

// SortedFingerprints returns the fingerprints of every atom in n, sorted
// lexicographically — the tie-break order spec §4.2 and §9 mandate.
func SortedFingerprints(n Node) []string {
	atoms := Atoms(n)
	fps := make([]string, len(atoms))
	for i, a := range atoms {
		fps[i] = a.Fingerprint()
	}
	sort.Strings(fps)
	return fps
}
