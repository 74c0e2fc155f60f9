package chameleon

import (
	"context"
	"time"

	"github.com/alkim0/disjunct-opt/internal/atom"
	"github.com/alkim0/disjunct-opt/internal/bitmap"
	"github.com/alkim0/disjunct-opt/internal/config"
	"github.com/alkim0/disjunct-opt/internal/executor"
	"github.com/alkim0/disjunct-opt/internal/optimizer"
)

// ExecStats reports one Run call's timing and evaluation-count counters,
// mirroring the original benchmark harness's Record fields
// (plan_time_ms/total_time_ms/pred_only_time_ms/num_preds_evaled/
// num_plans_considered).
type ExecStats struct {
	PlanTimeMs         int64
	TotalTimeMs        int64
	PredOnlyTimeMs     int64
	NumPredsEvaled     int64
	NumPlansConsidered int64
}

// Executor plans and runs Queries. A single Executor may be reused across
// many Run calls against the same DB; it carries no per-run state itself.
type Executor struct {
	db   *DB
	exec *executor.Executor
	cfg  *config.Config
	sel  atom.SelectivityMap
	cost atom.CostMap
}

// NewExecutor returns an Executor bound to db, using sel/cost as the
// planner's selectivity and cost maps (either may be nil, in which case
// every atom falls back to the structural defaults atom.DefaultSelectivity
// / atom.DefaultCost). cfg may be nil, in which case config.Default() is
// used.
func NewExecutor(db *DB, cfg *config.Config, sel atom.SelectivityMap, cost atom.CostMap) *Executor {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Executor{
		db:   db,
		exec: executor.NewExecutor(cfg),
		cfg:  cfg,
		sel:  sel,
		cost: cost,
	}
}

// Run plans q.Filter (if any) under params and evaluates it against q's
// table, returning the bitmap of matching row ordinals.
func (e *Executor) Run(ctx context.Context, q *Query, params optimizer.ExecParams) (bitmap.Bitmap, *ExecStats, error) {
	start := time.Now()
	candidate := q.Table.AllCandidates()

	if q.Filter == nil {
		return candidate, &ExecStats{TotalTimeMs: time.Since(start).Milliseconds()}, nil
	}

	planStart := time.Now()
	plan, plansConsidered, err := optimizer.Build(q.Filter, e.sel, e.cost, params)
	if err != nil {
		return bitmap.Bitmap{}, nil, err
	}
	planTime := time.Since(planStart)

	ec := executor.NewExecutionContext(ctx, e.cfg)
	execStats := executor.NewExecStats()
	result, err := e.exec.RunFilter(ec, plan, candidate, execStats)
	if err != nil {
		return bitmap.Bitmap{}, nil, err
	}

	return result, &ExecStats{
		PlanTimeMs:         planTime.Milliseconds(),
		TotalTimeMs:        time.Since(start).Milliseconds(),
		PredOnlyTimeMs:     execStats.TotalDuration.Milliseconds(),
		NumPredsEvaled:     int64(execStats.TotalAtomEvals),
		NumPlansConsidered: int64(plansConsidered),
	}, nil
}
