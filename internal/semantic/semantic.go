package semantic

import "github.com/alkim0/disjunct-opt/internal/atom"

// Rule validates some aspect of a predicate tree. Validate returns a fatal
// *SemanticError, or nil; it may additionally append non-fatal
// SemanticWarnings to ctx.
type Rule interface {
	Name() string
	Validate(n atom.Node, ctx *Context) error
}

// Context carries accumulated non-fatal warnings across a single Analyze
// call. Rules append to it; they never read another rule's warnings.
type Context struct {
	Warnings []SemanticWarning
}

// Validator runs a configurable set of Rules over a predicate tree.
type Validator struct {
	rules []Rule
}

// NewValidator returns a Validator with the default rule set registered.
func NewValidator() *Validator {
	v := &Validator{}
	v.RegisterDefaultRules()
	return v
}

// RegisterDefaultRules wires the shape check and the duplicate-atom
// advisory check — the two rules every tree should run through regardless
// of caller.
func (v *Validator) RegisterDefaultRules() {
	v.AddRule(ShapeRule{})
	v.AddRule(DuplicateAtomRule{})
}

// AddRule appends a rule to the validator's pipeline.
func (v *Validator) AddRule(r Rule) {
	v.rules = append(v.rules, r)
}

// Info is the result of validating a predicate tree.
type Info struct {
	Valid    bool
	Errors   []error
	Warnings []SemanticWarning
}

// Analyze runs every registered rule against n. All rules run regardless
// of earlier failures, so a caller sees one error from each failing rule
// in one pass; ShapeRule reports only the first shape violation it finds.
func (v *Validator) Analyze(n atom.Node) *Info {
	ctx := &Context{}
	info := &Info{Valid: true}

	for _, rule := range v.rules {
		if err := rule.Validate(n, ctx); err != nil {
			info.Valid = false
			info.Errors = append(info.Errors, err)
		}
	}
	info.Warnings = ctx.Warnings
	return info
}
