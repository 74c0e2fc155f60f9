// Package atom implements the predicate tree: atoms (leaf predicates),
// AND/OR internal nodes, and the selectivity composition rules the
// planner relies on. It has no knowledge of planning or execution
// strategy; see internal/optimizer and internal/executor for those.
package atom

import (
	"time"

	"github.com/alkim0/disjunct-opt/internal/bitmap"
)

// StatsSink receives one observation per atom evaluation. executor.ExecStats
// implements this; kept as a narrow interface here so this package never
// has to import internal/executor.
type StatsSink interface {
	RecordAtomEval(elapsed time.Duration)
}

// Atom is an opaque predicate over one or more table columns. Fingerprint
// is its canonical textual identity, stable across identical atoms and
// used as the key into selectivity/cost maps. Eval must return a subset of
// candidate; implementations that violate this invariant produce an
// AtomEvalFailure at the executor boundary, not here.
type Atom interface {
	Fingerprint() string
	Eval(candidate bitmap.Bitmap, stats StatsSink) bitmap.Bitmap
}

// noopStats is used by callers (mostly tests) that don't care about
// counters but still need a StatsSink to satisfy Eval.
type noopStats struct{}

func (noopStats) RecordAtomEval(time.Duration) {}

// NoopStats is a StatsSink that discards every observation.
var NoopStats StatsSink = noopStats{}
