package table

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/alkim0/disjunct-opt/internal/atom"
	"github.com/alkim0/disjunct-opt/internal/bitmap"
)

// Operator is a comparison operator a ComparisonAtom evaluates a column
// against.
type Operator int

const (
	OpEq Operator = iota
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte
	OpLike
)

// String returns the operator's surface syntax, used when building an
// atom's fingerprint.
func (op Operator) String() string {
	switch op {
	case OpEq:
		return "="
	case OpNeq:
		return "!="
	case OpLt:
		return "<"
	case OpLte:
		return "<="
	case OpGt:
		return ">"
	case OpGte:
		return ">="
	case OpLike:
		return "LIKE"
	default:
		return "?"
	}
}

// ComparisonAtom is a concrete atom.Atom: it evaluates "column OP literal"
// against a Column's real data, narrowing a candidate bitmap to the
// ordinals whose value satisfies the comparison.
type ComparisonAtom struct {
	column      *Column
	Op          Operator
	FloatValue  float64
	StringValue string
	like        *regexp.Regexp // compiled once, only set when Op == OpLike
}

// NewComparisonAtom builds a ComparisonAtom comparing col against a
// numeric literal. Op must not be OpLike.
func NewComparisonAtom(col *Column, op Operator, value float64) *ComparisonAtom {
	return &ComparisonAtom{column: col, Op: op, FloatValue: value}
}

// NewStringComparisonAtom builds a ComparisonAtom comparing col against a
// string literal. For OpLike, value is a SQL LIKE pattern ('%' and '_'
// wildcards); it is compiled to a regular expression immediately, since no
// third-party library in the dependency pack offers SQL LIKE matching and
// compiling once at construction keeps Eval itself allocation-free per
// pattern.
func NewStringComparisonAtom(col *Column, op Operator, value string) *ComparisonAtom {
	a := &ComparisonAtom{column: col, Op: op, StringValue: value}
	if op == OpLike {
		a.like = regexp.MustCompile(likePatternToRegexp(value))
	}
	return a
}

func likePatternToRegexp(pattern string) string {
	var b strings.Builder
	b.WriteString("^")
	for _, r := range pattern {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return b.String()
}

// Fingerprint returns a stable string identifying this exact comparison,
// used both for tie-breaking among atoms of equal rank and as the key into
// SelectivityMap/CostMap and the persisted atom stats file.
func (a *ComparisonAtom) Fingerprint() string {
	if a.column.Type == ColumnString {
		return fmt.Sprintf("%s %s %q", a.column.Name, a.Op, a.StringValue)
	}
	return fmt.Sprintf("%s %s %g", a.column.Name, a.Op, a.FloatValue)
}

// Eval narrows candidate to the ordinals whose column value satisfies the
// comparison, recording the wall-clock cost of the scan into stats.
func (a *ComparisonAtom) Eval(candidate bitmap.Bitmap, stats atom.StatsSink) bitmap.Bitmap {
	start := time.Now()
	var kept []uint32
	candidate.Iterate(func(ordinal uint32) bool {
		if a.matches(ordinal) {
			kept = append(kept, ordinal)
		}
		return true
	})
	if stats != nil {
		stats.RecordAtomEval(time.Since(start))
	}
	return bitmap.FromSlice(kept)
}

func (a *ComparisonAtom) matches(ordinal uint32) bool {
	if a.column.Type == ColumnString {
		return a.matchesString(a.column.Strings[ordinal])
	}
	return a.matchesFloat(a.column.Floats[ordinal])
}

func (a *ComparisonAtom) matchesFloat(v float64) bool {
	switch a.Op {
	case OpEq:
		return v == a.FloatValue
	case OpNeq:
		return v != a.FloatValue
	case OpLt:
		return v < a.FloatValue
	case OpLte:
		return v <= a.FloatValue
	case OpGt:
		return v > a.FloatValue
	case OpGte:
		return v >= a.FloatValue
	default:
		return false
	}
}

func (a *ComparisonAtom) matchesString(v string) bool {
	switch a.Op {
	case OpEq:
		return v == a.StringValue
	case OpNeq:
		return v != a.StringValue
	case OpLike:
		return a.like.MatchString(v)
	default:
		return false
	}
}
