package optimizer

import (
	"sort"

	"github.com/alkim0/disjunct-opt/internal/atom"
)

// ranker computes the ranking statistics (selectivity, cost) a planner
// sorts AND/OR children by, wrapping a single SelectivityMap/CostMap pair
// so rank functions don't need to thread both through every call site.
type ranker struct {
	sel          atom.SelectivityMap
	cost         atom.CostMap
	disableOrOpt bool
}

// nodeSel is atom.Sel with this ranker's selectivity map bound in.
func (r ranker) nodeSel(n atom.Node) float64 {
	return atom.Sel(n, r.sel)
}

// nodeCost estimates a subtree's total evaluation cost as the sum of its
// atoms' costs — a coarse but standard approximation that ignores
// short-circuiting within the subtree itself (only the top-level ordering
// accounts for that).
func (r ranker) nodeCost(n atom.Node) float64 {
	total := 0.0
	for _, a := range atom.Atoms(n) {
		total += r.cost.Lookup(a)
	}
	if total == 0 {
		return atom.DefaultCost
	}
	return total
}

// andRank is the Krishnamurthy-Boral-style rank used to order AND
// children: higher rank means "cheaper to evaluate and more likely to
// reject", and evaluating those children first minimizes the expected
// number of atom evaluations before the AND short-circuits to empty.
func (r ranker) andRank(n atom.Node) float64 {
	return (1 - r.nodeSel(n)) / r.nodeCost(n)
}

// orRank orders OR children: higher rank means "cheaper to evaluate and
// more likely to accept", minimizing the expected number of atom
// evaluations before the OR short-circuits to fully resolved.
func (r ranker) orRank(n atom.Node) float64 {
	return r.nodeSel(n) / r.nodeCost(n)
}

// sortByRank sorts nodes descending by rank, using lexicographic
// fingerprint order as the tie-break so that equal-rank children always
// order the same way regardless of input order (spec §4.2, §9).
func sortByRank(nodes []atom.Node, rank func(atom.Node) float64) {
	sort.SliceStable(nodes, func(i, j int) bool {
		ri, rj := rank(nodes[i]), rank(nodes[j])
		if ri != rj {
			return ri > rj
		}
		return tieBreakLess(nodes[i], nodes[j])
	})
}

func tieBreakLess(a, b atom.Node) bool {
	fa, fb := atom.SortedFingerprints(a), atom.SortedFingerprints(b)
	for i := 0; i < len(fa) && i < len(fb); i++ {
		if fa[i] != fb[i] {
			return fa[i] < fb[i]
		}
	}
	return len(fa) < len(fb)
}
