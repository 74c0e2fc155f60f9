package optimizer

import "github.com/alkim0/disjunct-opt/internal/atom"

// CostModel estimates the expected number of atom evaluations a Plan will
// perform, accounting for short-circuiting: under SeqAnd, a child is only
// reached if every earlier child passed; under SeqOr, a child is only
// reached if every earlier child failed.
type CostModel struct {
	sel  atom.SelectivityMap
	cost atom.CostMap
}

// NewCostModel returns a CostModel backed by sel and cost.
func NewCostModel(sel atom.SelectivityMap, cost atom.CostMap) *CostModel {
	return &CostModel{sel: sel, cost: cost}
}

// EstimateCost returns the expected total evaluation cost of p.
func (cm *CostModel) EstimateCost(p Plan) float64 {
	switch v := p.(type) {
	case *EvalAtomPlan:
		return cm.cost.Lookup(v.Atom)
	case *SeqAndPlan:
		return cm.estimateSeqAnd(v)
	case *SeqOrPlan:
		return cm.estimateSeqOr(v)
	default:
		return 0
	}
}

// estimateSeqAnd sums each child's cost weighted by the probability every
// earlier child passed (survivalProb), since a later AND child is only
// evaluated when nothing before it has already emptied the candidate set.
func (cm *CostModel) estimateSeqAnd(p *SeqAndPlan) float64 {
	total := 0.0
	survivalProb := 1.0
	for _, child := range p.Children {
		total += survivalProb * cm.EstimateCost(child)
		survivalProb *= cm.selectivity(child)
	}
	return total
}

// estimateSeqOr sums each child's cost weighted by the probability every
// earlier child failed (remainingProb), since a later OR child is only
// evaluated when nothing before it has already resolved its candidates.
func (cm *CostModel) estimateSeqOr(p *SeqOrPlan) float64 {
	total := 0.0
	remainingProb := 1.0
	for _, child := range p.Children {
		total += remainingProb * cm.EstimateCost(child)
		remainingProb *= 1 - cm.selectivity(child)
	}
	return total
}

// selectivity returns the estimated pass-through fraction of a Plan
// subtree, used to weight later siblings' reachability probability.
func (cm *CostModel) selectivity(p Plan) float64 {
	switch v := p.(type) {
	case *EvalAtomPlan:
		return cm.sel.Lookup(v.Atom)
	case *SeqAndPlan:
		product := 1.0
		for _, c := range v.Children {
			product *= cm.selectivity(c)
		}
		return product
	case *SeqOrPlan:
		complement := 1.0
		for _, c := range v.Children {
			complement *= 1 - cm.selectivity(c)
		}
		return 1 - complement
	default:
		return atom.DefaultSelectivity
	}
}
