package semantic

import (
	"fmt"

	"github.com/alkim0/disjunct-opt/internal/atom"
)

// ShapeRule enforces the MalformedTree invariants of spec §7: no empty or
// singleton AND/OR, and no AND/OR directly nesting a same-operator child.
// atom.NewAnd/NewOr already reject these at construction time; this rule
// re-checks the tree regardless of how it was assembled, since the And/Or
// Children slices are exported and a tree can be built or mutated without
// going through the constructors.
type ShapeRule struct{}

// Name returns the rule name.
func (ShapeRule) Name() string { return "Shape" }

// Validate walks n and returns the first MalformedTree violation found.
func (ShapeRule) Validate(n atom.Node, ctx *Context) error {
	return validateShape(n, "")
}

func validateShape(n atom.Node, path string) error {
	switch v := n.(type) {
	case *atom.Leaf:
		return nil
	case *atom.And:
		if err := checkChildren(v.Children, "AND", path); err != nil {
			return err
		}
		for _, c := range v.Children {
			if _, ok := c.(*atom.And); ok {
				return newShapeError(ErrNestedSameOperator, "AND directly nests an AND child", path)
			}
		}
		return validateChildren(v.Children, path)
	case *atom.Or:
		if err := checkChildren(v.Children, "OR", path); err != nil {
			return err
		}
		for _, c := range v.Children {
			if _, ok := c.(*atom.Or); ok {
				return newShapeError(ErrNestedSameOperator, "OR directly nests an OR child", path)
			}
		}
		return validateChildren(v.Children, path)
	default:
		return nil
	}
}

func checkChildren(children []atom.Node, operator, path string) error {
	switch len(children) {
	case 0:
		return newShapeError(ErrEmptyChildren, fmt.Sprintf("%s requires at least two children, got 0", operator), path)
	case 1:
		return newShapeError(ErrSingletonChildren, fmt.Sprintf("%s requires at least two children, got 1", operator), path)
	default:
		return nil
	}
}

func validateChildren(children []atom.Node, path string) error {
	for i, c := range children {
		childPath := fmt.Sprintf("%d", i)
		if path != "" {
			childPath = path + "." + childPath
		}
		if err := validateShape(c, childPath); err != nil {
			return err
		}
	}
	return nil
}

// DuplicateAtomRule warns (non-fatally) when the same atom fingerprint
// appears more than once in the tree — legal, but means the planner will
// schedule the same predicate's evaluation cost twice.
type DuplicateAtomRule struct{}

// Name returns the rule name.
func (DuplicateAtomRule) Name() string { return "DuplicateAtom" }

// Validate never fails; it only appends warnings to ctx.
func (DuplicateAtomRule) Validate(n atom.Node, ctx *Context) error {
	seen := make(map[string]int)
	for _, a := range atom.Atoms(n) {
		seen[a.Fingerprint()]++
	}
	for fp, count := range seen {
		if count > 1 {
			ctx.Warnings = append(ctx.Warnings, SemanticWarning{
				Message: fmt.Sprintf("atom %q appears %d times in the predicate tree", fp, count),
			})
		}
	}
	return nil
}
