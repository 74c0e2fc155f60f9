package optimizer

// PlannerType selects which planning strategy Build uses to order a
// predicate tree's AND/OR children.
type PlannerType int

const (
	// EvalPred orders children by the exact Selinger/Krishnamurthy-Boral
	// rank at every node: cheapest-to-reject first under AND, cheapest-
	// to-accept first under OR. Optimal under the independence
	// assumption, O(n log n) per node.
	EvalPred PlannerType = iota
	// Tdacb searches, at every AND/OR node within MaxDepth levels, the
	// restructurings reachable by distributivity (pushing an AND factor
	// into an OR child) and factoring (pulling a shared conjunct out of
	// an OR), scoring each against the unrestructured shape and recursing
	// into the cheapest, falling back to left-to-right ordering below
	// MaxDepth. A depth-bounded branch-and-bound search over equivalent
	// tree shapes.
	Tdacb
	// BDCWithBestD batches an OR node's children bottom-up by repeatedly
	// choosing the highest selectivity-gain-per-cost subset of size at
	// most BestD from what's left, evaluating each subset as a single
	// nested SeqOr — trading exact per-child ordering for fewer top-level
	// branch evaluations.
	BDCWithBestD
	// OnePredLookahead greedily orders children one atom at a time using
	// a 2-ply lookahead score instead of a full reordering.
	OnePredLookahead
)

// String returns the planner type's name, as it appears in ch-exp-style
// benchmark output and error messages.
func (pt PlannerType) String() string {
	switch pt {
	case EvalPred:
		return "EvalPred"
	case Tdacb:
		return "Tdacb"
	case BDCWithBestD:
		return "BDCWithBestD"
	case OnePredLookahead:
		return "OnePredLookahead"
	default:
		return "Unknown"
	}
}

// ExecParams configures plan construction.
type ExecParams struct {
	Planner PlannerType
	// MaxDepth bounds Tdacb's restructuring search; nodes deeper than
	// MaxDepth are ordered left-to-right without reranking.
	MaxDepth int
	// BestD is the largest subset size BDCWithBestD will batch an OR
	// node's children into.
	BestD int
	// DisableOrOpt, when true, disables the dual-rank ordering of OR
	// children and the executor's remaining-candidate narrowing: every OR
	// child is evaluated against the full incoming candidate and the
	// results unioned, regardless of which planner produced the plan.
	// Exists to quantify the benefit of OR optimization in experiments.
	DisableOrOpt bool
}

// DefaultExecParams returns the parameters ch-exp's trials use absent an
// explicit override: EvalPred, depth 3, batches of at most 3, OR
// optimization on.
func DefaultExecParams() ExecParams {
	return ExecParams{Planner: EvalPred, MaxDepth: 3, BestD: 3}
}
