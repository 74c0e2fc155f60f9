package optimizer

import (
	"fmt"
	"strings"

	"github.com/alkim0/disjunct-opt/internal/atom"
)

// Plan is an ordered, executable form of a predicate tree: an AND/OR node
// annotated with the evaluation order the chosen planner picked for its
// children. internal/executor.RunFilter walks a Plan directly; it never
// looks at the original atom.Node.
type Plan interface {
	plan()
	// String returns an indented, human-readable rendering of the plan,
	// in the same shape as a database's EXPLAIN output.
	String() string
}

// EvalAtomPlan evaluates a single atom against the candidate set.
type EvalAtomPlan struct {
	Atom atom.Atom
}

func (*EvalAtomPlan) plan() {}

func (p *EvalAtomPlan) String() string {
	return p.toString(0)
}

func (p *EvalAtomPlan) toString(indent int) string {
	return fmt.Sprintf("%sEvalAtom(%s)", strings.Repeat("  ", indent), p.Atom.Fingerprint())
}

// SeqAndPlan evaluates Children in order against the shrinking candidate
// set, short-circuiting as soon as the candidate set empties (spec §5's
// SeqAnd).
type SeqAndPlan struct {
	Children []Plan
}

func (*SeqAndPlan) plan() {}

func (p *SeqAndPlan) String() string {
	return p.toString(0)
}

func (p *SeqAndPlan) toString(indent int) string {
	prefix := strings.Repeat("  ", indent)
	result := prefix + "SeqAnd"
	for _, c := range p.Children {
		result += "\n" + toStringIndented(c, indent+1)
	}
	return result
}

// SeqOrPlan evaluates Children in order, narrowing the remaining-candidate
// set and accumulating the union of matches, short-circuiting once no
// candidates remain unresolved (spec §5's SeqOr). When NaiveOr is set
// (ExecParams.DisableOrOpt), the executor instead evaluates every child
// against the full incoming candidate with no narrowing or short-circuit.
type SeqOrPlan struct {
	Children []Plan
	NaiveOr  bool
}

func (*SeqOrPlan) plan() {}

func (p *SeqOrPlan) String() string {
	return p.toString(0)
}

func (p *SeqOrPlan) toString(indent int) string {
	prefix := strings.Repeat("  ", indent)
	label := "SeqOr"
	if p.NaiveOr {
		label = "SeqOr(naive)"
	}
	result := prefix + label
	for _, c := range p.Children {
		result += "\n" + toStringIndented(c, indent+1)
	}
	return result
}

// toStringIndented renders any Plan at the given indent level, dispatching
// on its concrete type since the Plan interface itself only exposes the
// unindented String().
func toStringIndented(p Plan, indent int) string {
	switch v := p.(type) {
	case *EvalAtomPlan:
		return v.toString(indent)
	case *SeqAndPlan:
		return v.toString(indent)
	case *SeqOrPlan:
		return v.toString(indent)
	default:
		return strings.Repeat("  ", indent) + p.String()
	}
}
