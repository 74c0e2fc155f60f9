// Package optimizer turns a predicate tree (internal/atom.Node) into an
// ordered, executable Plan, choosing the evaluation order of each AND/OR
// node's children according to one of four planning strategies.
package optimizer

import (
	"math"
	"sort"
	"strings"

	"github.com/alkim0/disjunct-opt/internal/atom"
)

// Build constructs a Plan from n using the strategy named in params, along
// with the number of candidate (sub)plans the strategy scored while doing
// so. EvalPred and OnePredLookahead compute a single deterministic
// ordering per node rather than scoring alternatives, so their count is
// the filter's atom count; Tdacb and BDCWithBestD genuinely search, and
// report the true number of restructurings/subsets scored.
func Build(n atom.Node, sel atom.SelectivityMap, cost atom.CostMap, params ExecParams) (Plan, int, error) {
	r := ranker{sel: sel, cost: cost, disableOrOpt: params.DisableOrOpt}

	switch params.Planner {
	case EvalPred:
		return buildEvalPred(n, r), len(atom.Atoms(n)), nil
	case Tdacb:
		cm := NewCostModel(sel, cost)
		considered := 0
		plan := buildTdacb(n, r, cm, 0, params.MaxDepth, &considered)
		return plan, considered, nil
	case BDCWithBestD:
		cm := NewCostModel(sel, cost)
		considered := 0
		plan := buildBDC(n, r, cm, params.BestD, &considered)
		return plan, considered, nil
	case OnePredLookahead:
		return buildOnePredLookahead(n, r), len(atom.Atoms(n)), nil
	default:
		return nil, 0, newPlanError(ErrUnknownPlannerType, "unknown planner type %d", int(params.Planner))
	}
}

// buildEvalPred implements the exact Selinger/Krishnamurthy-Boral
// ordering: at every AND/OR node, sort children by rank and recurse.
// Optimal under the independence assumption.
func buildEvalPred(n atom.Node, r ranker) Plan {
	switch v := n.(type) {
	case *atom.Leaf:
		return &EvalAtomPlan{Atom: v.Atom}
	case *atom.And:
		children := sortedChildren(v.Children, r.andRank)
		return &SeqAndPlan{Children: buildAll(children, r, buildEvalPred)}
	case *atom.Or:
		children := orChildren(v.Children, r)
		return &SeqOrPlan{Children: buildAll(children, r, buildEvalPred), NaiveOr: r.disableOrOpt}
	default:
		return nil
	}
}

// orChildren returns an OR node's children in the order the planner should
// evaluate them: rank-sorted normally, or left as the parser produced them
// when OR optimization is disabled (spec §4.2.e) since disabling it also
// disables the dual-rank ordering.
func orChildren(children []atom.Node, r ranker) []atom.Node {
	if r.disableOrOpt {
		out := make([]atom.Node, len(children))
		copy(out, children)
		return out
	}
	return sortedChildren(children, r.orRank)
}

// buildTdacb implements bounded top-down branch-and-bound restructuring
// search: within maxDepth levels, every AND/OR node enumerates its own
// rank-ordered shape plus every distributivity/factoring rewrite reachable
// in one step (restructureCandidates), scores each with cm, and recurses
// into whichever candidate's plan has the lowest estimated cost. Below
// maxDepth it stops searching and falls back to the tree's original
// left-to-right child order, trading optimality for bounded planning cost
// on deep trees. considered is incremented once per candidate scored.
func buildTdacb(n atom.Node, r ranker, cm *CostModel, depth, maxDepth int, considered *int) Plan {
	switch v := n.(type) {
	case *atom.Leaf:
		return &EvalAtomPlan{Atom: v.Atom}
	case *atom.And, *atom.Or:
		if depth >= maxDepth {
			return buildTdacbFlat(n, r, cm, depth, maxDepth, considered)
		}
		var best *tdacbCandidate
		for _, cand := range restructureCandidates(n) {
			*considered++
			plan := buildTdacbShape(cand, r, cm, depth, maxDepth, considered)
			sc := &tdacbCandidate{node: cand, plan: plan, cost: cm.EstimateCost(plan)}
			if best == nil || betterCandidate(sc, best) {
				best = sc
			}
		}
		return best.plan
	default:
		return nil
	}
}

// tdacbCandidate is one restructured tree shape scored during the search,
// kept alongside its built Plan and estimated cost so the winner can be
// picked by cost, then child count, then fingerprint order (spec §4.2.b's
// tie-break rule).
type tdacbCandidate struct {
	node atom.Node
	plan Plan
	cost float64
}

func betterCandidate(a, b *tdacbCandidate) bool {
	if a.cost != b.cost {
		return a.cost < b.cost
	}
	ac, bc := planChildCount(a.plan), planChildCount(b.plan)
	if ac != bc {
		return ac < bc
	}
	return tieBreakLess(a.node, b.node)
}

func planChildCount(p Plan) int {
	switch v := p.(type) {
	case *SeqAndPlan:
		return len(v.Children)
	case *SeqOrPlan:
		return len(v.Children)
	default:
		return 0
	}
}

// buildTdacbShape builds the Plan for one candidate tree shape: rank-sorts
// its own children (exactly like buildEvalPred) and recurses into each via
// buildTdacb at depth+1, so the restructuring search continues below every
// chosen candidate.
func buildTdacbShape(n atom.Node, r ranker, cm *CostModel, depth, maxDepth int, considered *int) Plan {
	switch v := n.(type) {
	case *atom.Leaf:
		return &EvalAtomPlan{Atom: v.Atom}
	case *atom.And:
		children := sortedChildren(v.Children, r.andRank)
		out := make([]Plan, len(children))
		for i, c := range children {
			out[i] = buildTdacb(c, r, cm, depth+1, maxDepth, considered)
		}
		return &SeqAndPlan{Children: out}
	case *atom.Or:
		children := orChildren(v.Children, r)
		out := make([]Plan, len(children))
		for i, c := range children {
			out[i] = buildTdacb(c, r, cm, depth+1, maxDepth, considered)
		}
		return &SeqOrPlan{Children: out, NaiveOr: r.disableOrOpt}
	default:
		return nil
	}
}

// buildTdacbFlat orders children left to right, as the parser produced
// them, with no reranking or restructuring — used once depth reaches
// maxDepth, bounding the search's runtime on deep trees.
func buildTdacbFlat(n atom.Node, r ranker, cm *CostModel, depth, maxDepth int, considered *int) Plan {
	switch v := n.(type) {
	case *atom.Leaf:
		return &EvalAtomPlan{Atom: v.Atom}
	case *atom.And:
		out := make([]Plan, len(v.Children))
		for i, c := range v.Children {
			out[i] = buildTdacb(c, r, cm, depth+1, maxDepth, considered)
		}
		return &SeqAndPlan{Children: out}
	case *atom.Or:
		out := make([]Plan, len(v.Children))
		for i, c := range v.Children {
			out[i] = buildTdacb(c, r, cm, depth+1, maxDepth, considered)
		}
		return &SeqOrPlan{Children: out, NaiveOr: r.disableOrOpt}
	default:
		return nil
	}
}

// restructureCandidates returns n itself (the unrestructured shape) plus
// every tree obtainable by one distributivity or factoring rewrite, per
// spec §4.2.b's search space. Associative re-grouping is the search
// space's third named rewrite; under this executor's flat SeqAnd/SeqOr
// evaluation a nested grouping of the same operator behaves identically
// to the flattened form (CostModel scores them the same), so it never
// changes which plan wins and isn't enumerated separately here.
func restructureCandidates(n atom.Node) []atom.Node {
	candidates := []atom.Node{n}
	switch v := n.(type) {
	case *atom.And:
		candidates = append(candidates, distributeAndCandidates(v)...)
	case *atom.Or:
		if factored, ok := factorOrCandidate(v); ok {
			candidates = append(candidates, factored)
		}
	}
	return candidates
}

// distributeAndCandidates returns one restructured tree per OR child of a,
// pushing a's other children into every branch of that OR
// (A ∧ (B ∨ C) ≡ (A ∧ B) ∨ (A ∧ C)).
func distributeAndCandidates(a *atom.And) []atom.Node {
	var out []atom.Node
	for i, c := range a.Children {
		orChild, ok := c.(*atom.Or)
		if !ok {
			continue
		}
		rest := restChildren(a.Children, i)

		newOrChildren := make([]atom.Node, len(orChild.Children))
		valid := true
		for j, branch := range orChild.Children {
			merged, err := conjoin(rest, branch)
			if err != nil {
				valid = false
				break
			}
			newOrChildren[j] = merged
		}
		if !valid {
			continue
		}
		newOr, err := atom.NewOr(newOrChildren...)
		if err != nil {
			continue
		}
		out = append(out, newOr)
	}
	return out
}

// factorOrCandidate factors a conjunct shared by every branch of o out of
// the OR ((x∧a) ∨ (x∧b) ≡ x∧(a∨b)), returning ok=false when o's branches
// aren't all conjunctions or share no common conjunct.
func factorOrCandidate(o *atom.Or) (atom.Node, bool) {
	ands := make([]*atom.And, len(o.Children))
	for i, c := range o.Children {
		a, ok := c.(*atom.And)
		if !ok {
			return nil, false
		}
		ands[i] = a
	}

	shared := commonConjunct(ands)
	if shared == nil {
		return nil, false
	}

	remainders := make([]atom.Node, len(ands))
	for i, a := range ands {
		rem, ok := removeChild(a, shared)
		if !ok {
			return nil, false
		}
		remainders[i] = rem
	}

	remOr, err := atom.NewOr(remainders...)
	if err != nil {
		return nil, false
	}
	factored, err := atom.NewAnd(shared, remOr)
	if err != nil {
		return nil, false
	}
	return factored, true
}

// commonConjunct returns a child node structurally present in every And in
// ands, or nil if no such child exists.
func commonConjunct(ands []*atom.And) atom.Node {
	if len(ands) == 0 {
		return nil
	}
	for _, candidate := range ands[0].Children {
		key := nodeKey(candidate)
		sharedByAll := true
		for _, a := range ands[1:] {
			if !containsKey(a.Children, key) {
				sharedByAll = false
				break
			}
		}
		if sharedByAll {
			return candidate
		}
	}
	return nil
}

func containsKey(children []atom.Node, key string) bool {
	for _, c := range children {
		if nodeKey(c) == key {
			return true
		}
	}
	return false
}

// removeChild returns a's children with the first structural match for
// shared removed, collapsing back to a bare node when only one child
// remains (since atom.And requires at least two).
func removeChild(a *atom.And, shared atom.Node) (atom.Node, bool) {
	key := nodeKey(shared)
	var remaining []atom.Node
	removed := false
	for _, c := range a.Children {
		if !removed && nodeKey(c) == key {
			removed = true
			continue
		}
		remaining = append(remaining, c)
	}
	if !removed {
		return nil, false
	}
	if len(remaining) == 1 {
		return remaining[0], true
	}
	n, err := atom.NewAnd(remaining...)
	if err != nil {
		return nil, false
	}
	return n, true
}

// nodeKey returns a structural fingerprint for n, used to detect shared
// conjuncts across OR branches regardless of child order.
func nodeKey(n atom.Node) string {
	switch v := n.(type) {
	case *atom.Leaf:
		return v.Atom.Fingerprint()
	case *atom.And:
		return "AND(" + joinedKeys(v.Children) + ")"
	case *atom.Or:
		return "OR(" + joinedKeys(v.Children) + ")"
	default:
		return ""
	}
}

func joinedKeys(children []atom.Node) string {
	keys := make([]string, len(children))
	for i, c := range children {
		keys[i] = nodeKey(c)
	}
	sort.Strings(keys)
	return strings.Join(keys, ",")
}

// restChildren returns children with the element at skip removed.
func restChildren(children []atom.Node, skip int) []atom.Node {
	out := make([]atom.Node, 0, len(children)-1)
	for i, c := range children {
		if i != skip {
			out = append(out, c)
		}
	}
	return out
}

// conjoin builds a single node representing the conjunction of rest and
// extra, flattening into one And when extra is itself an And (preserving
// the no-nested-AND invariant) and skipping the allocation entirely when
// rest is empty.
func conjoin(rest []atom.Node, extra atom.Node) (atom.Node, error) {
	if len(rest) == 0 {
		return extra, nil
	}
	children := make([]atom.Node, 0, len(rest)+1)
	children = append(children, rest...)
	if extraAnd, ok := extra.(*atom.And); ok {
		children = append(children, extraAnd.Children...)
	} else {
		children = append(children, extra)
	}
	return atom.NewAnd(children...)
}

// buildBDC implements bottom-up subset-scoring batching (spec §4.2.c): at
// each OR node, it repeatedly chooses the highest gain-per-cost subset of
// at most bestD remaining children (scoreSubset), evaluates that subset as
// a single nested SeqOr so its members share one pass over the candidate
// bitmap, and repeats until every child has been placed into some batch.
// AND children are ordered exactly as buildEvalPred orders them — for AND
// nodes BDC reduces to strategy (a), per spec. considered is incremented
// once per subset scored.
func buildBDC(n atom.Node, r ranker, cm *CostModel, bestD int, considered *int) Plan {
	if bestD < 1 {
		bestD = 1
	}
	switch v := n.(type) {
	case *atom.Leaf:
		return &EvalAtomPlan{Atom: v.Atom}
	case *atom.And:
		children := sortedChildren(v.Children, r.andRank)
		out := make([]Plan, len(children))
		for i, c := range children {
			out[i] = buildBDC(c, r, cm, bestD, considered)
		}
		return &SeqAndPlan{Children: out}
	case *atom.Or:
		childPlans := make(map[atom.Node]Plan, len(v.Children))
		for _, c := range v.Children {
			childPlans[c] = buildBDC(c, r, cm, bestD, considered)
		}
		if r.disableOrOpt {
			// Naive OR evaluation is incompatible with batching (a batch is
			// a nested SeqOr that would still narrow its own candidate);
			// with OR optimization disabled, BDC degenerates to a single
			// flat, unbatched SeqOr.
			ordered := orChildren(v.Children, r)
			plans := make([]Plan, len(ordered))
			for i, c := range ordered {
				plans[i] = childPlans[c]
			}
			return &SeqOrPlan{Children: plans, NaiveOr: true}
		}
		return &SeqOrPlan{Children: batchBySubsetScoring(v.Children, childPlans, r, bestD, considered)}
	default:
		return nil
	}
}

// batchBySubsetScoring greedily selects, from the children not yet
// batched, the subset of size at most bestD with the highest selectivity
// gain per cost, wraps subsets larger than one child in a nested SeqOr,
// and repeats until every child has been placed into some batch.
func batchBySubsetScoring(children []atom.Node, childPlans map[atom.Node]Plan, r ranker, bestD int, considered *int) []Plan {
	remaining := make([]atom.Node, len(children))
	copy(remaining, children)

	var out []Plan
	for len(remaining) > 0 {
		subset := bestSubset(remaining, r, bestD, considered)
		out = append(out, batchPlan(subset, childPlans, r))
		remaining = removeAll(remaining, subset)
	}
	return out
}

// bestSubset scores every non-empty subset of remaining up to size bestD
// and returns the one with the highest gain-per-cost score, breaking ties
// by fewer members, then lexicographic fingerprint order.
func bestSubset(remaining []atom.Node, r ranker, bestD int, considered *int) []atom.Node {
	maxSize := bestD
	if maxSize > len(remaining) {
		maxSize = len(remaining)
	}

	indices := make([]int, len(remaining))
	for i := range remaining {
		indices[i] = i
	}

	var best []atom.Node
	var bestNode atom.Node
	bestScore := math.Inf(-1)

	for size := 1; size <= maxSize; size++ {
		combinations(indices, size, func(idxs []int) {
			subset := make([]atom.Node, len(idxs))
			for i, idx := range idxs {
				subset[i] = remaining[idx]
			}
			*considered++
			score, node := scoreSubset(subset, r)
			// Sizes are enumerated in ascending order, so an equal-score
			// subset only replaces the current best when it has the same
			// number of members; a larger subset never wins a tie.
			if best == nil || score > bestScore || (score == bestScore && len(subset) == len(best) && tieBreakLess(node, bestNode)) {
				best = subset
				bestNode = node
				bestScore = score
			}
		})
	}
	return best
}

// scoreSubset scores a candidate disjunctive batch by the selectivity gain
// of evaluating its members together, 1 − ∏(1 − selᵢ), per unit cost. Cost
// is estimated as the subset's mean per-atom cost rather than the sum,
// reflecting that every member of a batch shares one pass over the same
// candidate bitmap (spec's "sharing candidate bitmap work") instead of
// each paying its own evaluation cost independently.
func scoreSubset(subset []atom.Node, r ranker) (float64, atom.Node) {
	complement := 1.0
	totalCost := 0.0
	for _, c := range subset {
		complement *= 1 - r.nodeSel(c)
		totalCost += r.nodeCost(c)
	}
	gain := 1 - complement
	cost := totalCost / float64(len(subset))
	if cost == 0 {
		cost = atom.DefaultCost
	}

	var node atom.Node
	switch {
	case len(subset) == 1:
		node = subset[0]
	default:
		if or, err := atom.NewOr(subset...); err == nil {
			node = or
		} else {
			node = subset[0]
		}
	}
	return gain / cost, node
}

// batchPlan returns subset's single child Plan unwrapped when len(subset)
// is 1, or a nested SeqOrPlan (its own members ordered by orRank) when
// subset batches more than one child.
func batchPlan(subset []atom.Node, childPlans map[atom.Node]Plan, r ranker) Plan {
	if len(subset) == 1 {
		return childPlans[subset[0]]
	}
	ordered := sortedChildren(subset, r.orRank)
	plans := make([]Plan, len(ordered))
	for i, c := range ordered {
		plans[i] = childPlans[c]
	}
	return &SeqOrPlan{Children: plans}
}

// combinations calls fn once for every size-length combination of indices,
// each delivered in ascending order.
func combinations(indices []int, size int, fn func([]int)) {
	if size == 0 || size > len(indices) {
		return
	}
	combo := make([]int, size)
	var rec func(start, depth int)
	rec = func(start, depth int) {
		if depth == size {
			out := make([]int, size)
			copy(out, combo)
			fn(out)
			return
		}
		for i := start; i <= len(indices)-(size-depth); i++ {
			combo[depth] = indices[i]
			rec(i+1, depth+1)
		}
	}
	rec(0, 0)
}

// removeAll returns remaining with every node present in toRemove
// excluded, comparing by interface identity (pointer equality of the
// underlying *Leaf/*And/*Or).
func removeAll(remaining, toRemove []atom.Node) []atom.Node {
	remove := make(map[atom.Node]bool, len(toRemove))
	for _, n := range toRemove {
		remove[n] = true
	}
	out := make([]atom.Node, 0, len(remaining)-len(toRemove))
	for _, n := range remaining {
		if !remove[n] {
			out = append(out, n)
		}
	}
	return out
}

// buildOnePredLookahead orders children one at a time: at each step it
// scores every remaining child by its own rank plus the best rank among
// the children that would remain after it (a 2-ply lookahead), and
// greedily picks the child maximizing that score, rather than computing a
// single global sort as buildEvalPred does.
func buildOnePredLookahead(n atom.Node, r ranker) Plan {
	switch v := n.(type) {
	case *atom.Leaf:
		return &EvalAtomPlan{Atom: v.Atom}
	case *atom.And:
		ordered := lookaheadOrder(v.Children, r.andRank)
		return &SeqAndPlan{Children: buildAll(ordered, r, buildOnePredLookahead)}
	case *atom.Or:
		ordered := v.Children
		if !r.disableOrOpt {
			ordered = lookaheadOrder(v.Children, r.orRank)
		}
		return &SeqOrPlan{Children: buildAll(ordered, r, buildOnePredLookahead), NaiveOr: r.disableOrOpt}
	default:
		return nil
	}
}

// lookaheadOrder greedily selects the next child via a 2-ply lookahead:
// pick the remaining child c maximizing rank(c) + max(rank(other
// remaining children)), i.e. the child that leaves the best possible
// follow-up available (higher rank always means "evaluate sooner", per
// andRank/orRank). With one child left it degenerates to picking by rank
// alone.
func lookaheadOrder(children []atom.Node, rank func(atom.Node) float64) []atom.Node {
	remaining := make([]atom.Node, len(children))
	copy(remaining, children)

	ordered := make([]atom.Node, 0, len(children))
	for len(remaining) > 0 {
		bestIdx := 0
		bestScore := lookaheadScore(remaining, 0, rank)
		for i := 1; i < len(remaining); i++ {
			score := lookaheadScore(remaining, i, rank)
			if score > bestScore || (score == bestScore && tieBreakLess(remaining[i], remaining[bestIdx])) {
				bestScore = score
				bestIdx = i
			}
		}
		ordered = append(ordered, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}
	return ordered
}

func lookaheadScore(remaining []atom.Node, candidate int, rank func(atom.Node) float64) float64 {
	score := rank(remaining[candidate])
	bestNext := -1.0
	for i, c := range remaining {
		if i == candidate {
			continue
		}
		r := rank(c)
		if r > bestNext {
			bestNext = r
		}
	}
	if bestNext >= 0 {
		score += bestNext
	}
	return score
}

func sortedChildren(children []atom.Node, rank func(atom.Node) float64) []atom.Node {
	out := make([]atom.Node, len(children))
	copy(out, children)
	sortByRank(out, rank)
	return out
}

func buildAll(children []atom.Node, r ranker, build func(atom.Node, ranker) Plan) []Plan {
	out := make([]Plan, len(children))
	for i, c := range children {
		out[i] = build(c, r)
	}
	return out
}
