// Package executor runs an optimizer.Plan against a candidate bitmap,
// narrowing it down via the SeqAnd/SeqOr evaluation rules: AND short-
// circuits as soon as the candidate set empties, OR short-circuits as
// soon as every candidate has matched some earlier child.
package executor

import (
	"fmt"
	"time"

	"github.com/alkim0/disjunct-opt/internal/atom"
	"github.com/alkim0/disjunct-opt/internal/bitmap"
	"github.com/alkim0/disjunct-opt/internal/config"
	"github.com/alkim0/disjunct-opt/internal/optimizer"
)

// Executor runs Plans against candidate bitmaps.
type Executor struct {
	config *config.Config
}

// NewExecutor returns an Executor configured by cfg.
func NewExecutor(cfg *config.Config) *Executor {
	return &Executor{config: cfg}
}

// RunFilter walks plan, narrowing candidate according to its SeqAnd/SeqOr/
// EvalAtom structure, and returns the bitmap of ordinals that satisfy the
// whole predicate tree. stats may be nil.
func (e *Executor) RunFilter(ec *ExecutionContext, plan optimizer.Plan, candidate bitmap.Bitmap, stats *ExecStats) (bitmap.Bitmap, error) {
	if err := ec.checkAbort(); err != nil {
		return bitmap.Bitmap{}, NewExecutionError("RunFilter", "aborted before evaluating plan", err)
	}

	switch p := plan.(type) {
	case *optimizer.EvalAtomPlan:
		return e.evalAtom(ec, p, candidate, stats)
	case *optimizer.SeqAndPlan:
		return e.seqAnd(ec, p, candidate, stats)
	case *optimizer.SeqOrPlan:
		return e.seqOr(ec, p, candidate, stats)
	default:
		return bitmap.Bitmap{}, NewExecutionError("RunFilter", "unrecognized plan node type", nil)
	}
}

func (e *Executor) evalAtom(ec *ExecutionContext, p *optimizer.EvalAtomPlan, candidate bitmap.Bitmap, stats *ExecStats) (bitmap.Bitmap, error) {
	if candidate.IsEmpty() {
		return candidate, nil
	}
	var sink atom.StatsSink = atom.NoopStats
	if stats != nil {
		sink = stats.forAtom(p.Atom.Fingerprint())
	}
	result := p.Atom.Eval(candidate, sink)
	if !result.IsSubsetOf(candidate) {
		return bitmap.Bitmap{}, NewExecutionError("EvalAtom",
			fmt.Sprintf("atom %q returned a result not a subset of its candidate", p.Atom.Fingerprint()), nil)
	}
	return result, nil
}

// seqAnd evaluates children left to right against the shrinking candidate
// set, stopping as soon as the candidate set empties — every later child
// is guaranteed to contribute nothing once that happens.
func (e *Executor) seqAnd(ec *ExecutionContext, p *optimizer.SeqAndPlan, candidate bitmap.Bitmap, stats *ExecStats) (bitmap.Bitmap, error) {
	remaining := candidate
	for _, child := range p.Children {
		if remaining.IsEmpty() {
			break
		}
		if err := ec.checkAbort(); err != nil {
			return bitmap.Bitmap{}, NewExecutionError("SeqAnd", "aborted mid-evaluation", err)
		}
		next, err := e.RunFilter(ec, child, remaining, stats)
		if err != nil {
			return bitmap.Bitmap{}, err
		}
		remaining = next
	}
	return remaining, nil
}

// seqOr evaluates children left to right, narrowing the set of candidates
// still awaiting resolution and accumulating the union of ordinals that
// have matched so far. It stops once no candidate remains unresolved —
// every later child is guaranteed to contribute nothing once that happens.
//
// When p.NaiveOr is set (ExecParams.DisableOrOpt), this discipline is
// disabled entirely: every child is evaluated against the full incoming
// candidate and the results unioned, with no early termination.
func (e *Executor) seqOr(ec *ExecutionContext, p *optimizer.SeqOrPlan, candidate bitmap.Bitmap, stats *ExecStats) (bitmap.Bitmap, error) {
	if p.NaiveOr {
		return e.seqOrNaive(ec, p, candidate, stats)
	}

	matched := bitmap.New()
	unresolved := candidate

	for _, child := range p.Children {
		if unresolved.IsEmpty() {
			break
		}
		if err := ec.checkAbort(); err != nil {
			return bitmap.Bitmap{}, NewExecutionError("SeqOr", "aborted mid-evaluation", err)
		}
		hits, err := e.RunFilter(ec, child, unresolved, stats)
		if err != nil {
			return bitmap.Bitmap{}, err
		}
		matched = matched.Union(hits)
		unresolved = unresolved.Difference(hits)
	}
	return matched, nil
}

func (e *Executor) seqOrNaive(ec *ExecutionContext, p *optimizer.SeqOrPlan, candidate bitmap.Bitmap, stats *ExecStats) (bitmap.Bitmap, error) {
	matched := bitmap.New()
	for _, child := range p.Children {
		if err := ec.checkAbort(); err != nil {
			return bitmap.Bitmap{}, NewExecutionError("SeqOr", "aborted mid-evaluation", err)
		}
		hits, err := e.RunFilter(ec, child, candidate, stats)
		if err != nil {
			return bitmap.Bitmap{}, err
		}
		matched = matched.Union(hits)
	}
	return matched, nil
}

// ExecStats accumulates per-atom and total evaluation statistics across a
// RunFilter call. It implements atom.StatsSink once bound to a specific
// atom fingerprint via forAtom.
type ExecStats struct {
	TotalAtomEvals int
	TotalDuration  time.Duration
	byFingerprint  map[string]*atomStat
}

type atomStat struct {
	Count    int
	Duration time.Duration
}

// NewExecStats returns a zeroed ExecStats ready to accumulate.
func NewExecStats() *ExecStats {
	return &ExecStats{byFingerprint: make(map[string]*atomStat)}
}

// forAtom returns an atom.StatsSink that records into this ExecStats under
// fingerprint.
func (s *ExecStats) forAtom(fingerprint string) atom.StatsSink {
	return &boundStats{stats: s, fingerprint: fingerprint}
}

// PerAtom returns the accumulated count and total duration for fingerprint.
func (s *ExecStats) PerAtom(fingerprint string) (count int, duration time.Duration) {
	stat, ok := s.byFingerprint[fingerprint]
	if !ok {
		return 0, 0
	}
	return stat.Count, stat.Duration
}

// boundStats adapts a single fingerprint's recording calls into the shared
// ExecStats accumulator.
type boundStats struct {
	stats       *ExecStats
	fingerprint string
}

// RecordAtomEval implements atom.StatsSink.
func (b *boundStats) RecordAtomEval(elapsed time.Duration) {
	b.stats.TotalAtomEvals++
	b.stats.TotalDuration += elapsed

	stat, ok := b.stats.byFingerprint[b.fingerprint]
	if !ok {
		stat = &atomStat{}
		b.stats.byFingerprint[b.fingerprint] = stat
	}
	stat.Count++
	stat.Duration += elapsed
}
