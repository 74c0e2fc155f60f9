package atom

const (
	// DefaultSelectivity is used for any atom with no entry in the
	// selectivity map (spec §3).
	DefaultSelectivity = 0.5
	// DefaultCost is used for any atom with no entry in the cost map
	// (spec §3).
	DefaultCost = 1.0
)

// SelectivityMap maps an atom's fingerprint to its measured or estimated
// selectivity in [0,1]. Missing entries default to DefaultSelectivity.
type SelectivityMap map[string]float64

// CostMap maps an atom's fingerprint to its measured or estimated
// per-row evaluation cost. Missing entries default to DefaultCost.
type CostMap map[string]float64

// Lookup returns the selectivity for a, falling back to DefaultSelectivity.
func (m SelectivityMap) Lookup(a Atom) float64 {
	if m == nil {
		return DefaultSelectivity
	}
	if v, ok := m[a.Fingerprint()]; ok {
		return v
	}
	return DefaultSelectivity
}

// Lookup returns the cost for a, falling back to DefaultCost.
func (m CostMap) Lookup(a Atom) float64 {
	if m == nil {
		return DefaultCost
	}
	if v, ok := m[a.Fingerprint()]; ok {
		return v
	}
	return DefaultCost
}

// EstimateSelectivities fills in a structural default (DefaultSelectivity)
// for every atom in n that m does not already measure. It never overwrites
// an existing entry — the engine keeps the measured fast path (stats
// pre-computed over the real table) strictly separate from this
// structural fallback used in tests (spec §4.1).
func EstimateSelectivities(n Node, m SelectivityMap) {
	for _, a := range Atoms(n) {
		fp := a.Fingerprint()
		if _, ok := m[fp]; !ok {
			m[fp] = DefaultSelectivity
		}
	}
}

// Sel computes the selectivity of a predicate tree node using the
// composition rules of spec §4.1: independence-assumption product for
// AND, inclusion-exclusion complement for OR, direct lookup for a leaf.
func Sel(n Node, m SelectivityMap) float64 {
	switch v := n.(type) {
	case *Leaf:
		return m.Lookup(v.Atom)
	case *And:
		product := 1.0
		for _, c := range v.Children {
			product *= Sel(c, m)
		}
		return product
	case *Or:
		complement := 1.0
		for _, c := range v.Children {
			complement *= 1 - Sel(c, m)
		}
		return 1 - complement
	default:
		return DefaultSelectivity
	}
}
