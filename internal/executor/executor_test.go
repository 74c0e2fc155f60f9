package executor

import (
	"context"
	"testing"
	"time"

	"github.com/alkim0/disjunct-opt/internal/atom"
	"github.com/alkim0/disjunct-opt/internal/bitmap"
	"github.com/alkim0/disjunct-opt/internal/config"
	"github.com/alkim0/disjunct-opt/internal/optimizer"
)

type stubAtom struct {
	fp      string
	matches map[uint32]bool
	evals   *int
}

func newStubAtom(fp string, matching ...uint32) *stubAtom {
	m := make(map[uint32]bool, len(matching))
	for _, o := range matching {
		m[o] = true
	}
	return &stubAtom{fp: fp, matches: m}
}

func (s *stubAtom) Fingerprint() string { return s.fp }

func (s *stubAtom) Eval(candidate bitmap.Bitmap, stats atom.StatsSink) bitmap.Bitmap {
	if s.evals != nil {
		*s.evals++
	}
	start := time.Now()
	var kept []uint32
	candidate.Iterate(func(ordinal uint32) bool {
		if s.matches[ordinal] {
			kept = append(kept, ordinal)
		}
		return true
	})
	if stats != nil {
		stats.RecordAtomEval(time.Since(start))
	}
	return bitmap.FromSlice(kept)
}

// brokenAtom always returns ordinals outside whatever candidate it's
// given, violating the Eval contract.
type brokenAtom struct{ fp string }

func (b brokenAtom) Fingerprint() string { return b.fp }

func (b brokenAtom) Eval(candidate bitmap.Bitmap, stats atom.StatsSink) bitmap.Bitmap {
	return bitmap.FromSlice([]uint32{999999})
}

func testExecutionContext() *ExecutionContext {
	return NewExecutionContext(context.Background(), config.Default())
}

func TestRunFilterEvalAtom(t *testing.T) {
	e := NewExecutor(config.Default())
	plan := &optimizer.EvalAtomPlan{Atom: newStubAtom("a", 1, 2, 3)}
	candidate := bitmap.FromRange(5)

	got, err := e.RunFilter(testExecutionContext(), plan, candidate, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := bitmap.FromSlice([]uint32{1, 2, 3})
	if !got.Equals(want) {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestRunFilterSeqAndIntersects(t *testing.T) {
	e := NewExecutor(config.Default())
	plan := &optimizer.SeqAndPlan{Children: []optimizer.Plan{
		&optimizer.EvalAtomPlan{Atom: newStubAtom("a", 1, 2, 3, 4)},
		&optimizer.EvalAtomPlan{Atom: newStubAtom("b", 2, 3, 4, 5)},
	}}
	candidate := bitmap.FromRange(10)

	got, err := e.RunFilter(testExecutionContext(), plan, candidate, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := bitmap.FromSlice([]uint32{2, 3, 4})
	if !got.Equals(want) {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestRunFilterSeqOrUnions(t *testing.T) {
	e := NewExecutor(config.Default())
	plan := &optimizer.SeqOrPlan{Children: []optimizer.Plan{
		&optimizer.EvalAtomPlan{Atom: newStubAtom("a", 1, 2)},
		&optimizer.EvalAtomPlan{Atom: newStubAtom("b", 3, 4)},
	}}
	candidate := bitmap.FromRange(10)

	got, err := e.RunFilter(testExecutionContext(), plan, candidate, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := bitmap.FromSlice([]uint32{1, 2, 3, 4})
	if !got.Equals(want) {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestRunFilterSeqAndShortCircuitsOnEmpty(t *testing.T) {
	evalsB := 0
	atomA := newStubAtom("a") // matches nothing
	atomB := newStubAtom("b", 1, 2, 3)
	atomB.evals = &evalsB

	e := NewExecutor(config.Default())
	plan := &optimizer.SeqAndPlan{Children: []optimizer.Plan{
		&optimizer.EvalAtomPlan{Atom: atomA},
		&optimizer.EvalAtomPlan{Atom: atomB},
	}}
	candidate := bitmap.FromRange(5)

	got, err := e.RunFilter(testExecutionContext(), plan, candidate, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.IsEmpty() {
		t.Errorf("expected empty result, got %s", got)
	}
	if evalsB != 0 {
		t.Errorf("expected second AND child to be short-circuited, got %d evals", evalsB)
	}
}

func TestRunFilterSeqOrShortCircuitsWhenFullyResolved(t *testing.T) {
	evalsB := 0
	atomA := newStubAtom("a", 0, 1, 2, 3, 4) // matches everything in a 5-row candidate
	atomB := newStubAtom("b")
	atomB.evals = &evalsB

	e := NewExecutor(config.Default())
	plan := &optimizer.SeqOrPlan{Children: []optimizer.Plan{
		&optimizer.EvalAtomPlan{Atom: atomA},
		&optimizer.EvalAtomPlan{Atom: atomB},
	}}
	candidate := bitmap.FromRange(5)

	got, err := e.RunFilter(testExecutionContext(), plan, candidate, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Cardinality() != 5 {
		t.Errorf("expected all 5 ordinals matched, got %s", got)
	}
	if evalsB != 0 {
		t.Errorf("expected second OR child to be short-circuited, got %d evals", evalsB)
	}
}

func TestRunFilterSeqOrNaiveEvaluatesEveryChildAgainstFullCandidate(t *testing.T) {
	evalsB := 0
	atomA := newStubAtom("a", 0, 1, 2, 3, 4) // matches everything in a 5-row candidate
	atomB := newStubAtom("b", 0)
	atomB.evals = &evalsB

	e := NewExecutor(config.Default())
	plan := &optimizer.SeqOrPlan{
		NaiveOr: true,
		Children: []optimizer.Plan{
			&optimizer.EvalAtomPlan{Atom: atomA},
			&optimizer.EvalAtomPlan{Atom: atomB},
		},
	}
	candidate := bitmap.FromRange(5)

	got, err := e.RunFilter(testExecutionContext(), plan, candidate, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Cardinality() != 5 {
		t.Errorf("expected all 5 ordinals matched via union, got %s", got)
	}
	if evalsB != 1 {
		t.Errorf("expected naive OR to evaluate every child regardless of prior matches, got %d evals", evalsB)
	}
}

func TestRunFilterRecordsExecStats(t *testing.T) {
	e := NewExecutor(config.Default())
	plan := &optimizer.SeqAndPlan{Children: []optimizer.Plan{
		&optimizer.EvalAtomPlan{Atom: newStubAtom("a", 1, 2, 3)},
		&optimizer.EvalAtomPlan{Atom: newStubAtom("b", 1, 2)},
	}}
	candidate := bitmap.FromRange(5)
	stats := NewExecStats()

	if _, err := e.RunFilter(testExecutionContext(), plan, candidate, stats); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalAtomEvals != 2 {
		t.Errorf("expected 2 recorded atom evals, got %d", stats.TotalAtomEvals)
	}
	count, _ := stats.PerAtom("a")
	if count != 1 {
		t.Errorf("expected 1 recorded eval for 'a', got %d", count)
	}
}

func TestRunFilterAbortsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := NewExecutor(config.Default())
	plan := &optimizer.EvalAtomPlan{Atom: newStubAtom("a", 1)}
	candidate := bitmap.FromRange(5)

	_, err := e.RunFilter(NewExecutionContext(ctx, config.Default()), plan, candidate, nil)
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestRunFilterRejectsAtomResultNotSubsetOfCandidate(t *testing.T) {
	e := NewExecutor(config.Default())
	plan := &optimizer.EvalAtomPlan{Atom: brokenAtom{fp: "broken"}}
	candidate := bitmap.FromRange(5)

	_, err := e.RunFilter(testExecutionContext(), plan, candidate, nil)
	if err == nil {
		t.Fatal("expected an error for an atom result outside its candidate")
	}
}

func TestRunFilterNilCandidateOnEmptyIsNoop(t *testing.T) {
	e := NewExecutor(config.Default())
	plan := &optimizer.EvalAtomPlan{Atom: newStubAtom("a", 1, 2)}

	got, err := e.RunFilter(testExecutionContext(), plan, bitmap.New(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.IsEmpty() {
		t.Errorf("expected empty result for empty candidate, got %s", got)
	}
}
