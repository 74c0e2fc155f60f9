// Command chexp runs a fixed filter expression through every requested
// planner strategy for a number of trials, asserting that every planner
// agrees on the matching row set, and writes one CSV record per
// (trial, planner) with the measured planning and execution timings.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alkim0/disjunct-opt/internal/atom"
	"github.com/alkim0/disjunct-opt/internal/bitmap"
	"github.com/alkim0/disjunct-opt/internal/optimizer"
	"github.com/alkim0/disjunct-opt/pkg/chameleon"
	"github.com/spf13/cobra"
)

type args struct {
	numTrials    int
	outputPrefix string
	output       string
	dbPath       string
	noOutput     bool
	statsDir     string
	debug        bool
	plannerType  string
	table        string
	filter       string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &args{}

	cmd := &cobra.Command{
		Use:   "chexp",
		Short: "Run a filter expression under every planner strategy and report timings",
		RunE: func(cmd *cobra.Command, cmdArgs []string) error {
			return run(cmd.Context(), a)
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&a.numTrials, "num-trials", "t", 3, "number of trials to run")
	flags.StringVar(&a.outputPrefix, "output-prefix", "ch-exp", "prefix for the generated output filename")
	flags.StringVarP(&a.output, "output", "o", "", "output CSV path (default: output/<prefix>-<host>-<timestamp>.csv)")
	flags.StringVar(&a.dbPath, "db-path", "data", "directory of per-table CSV files to load")
	flags.BoolVar(&a.noOutput, "no-output", false, "skip writing the results CSV")
	flags.StringVar(&a.statsDir, "stats-dir", "stats", "directory holding persisted per-atom selectivity/cost stats")
	flags.BoolVar(&a.debug, "debug", false, "print each trial's record as it's measured")
	flags.StringVar(&a.plannerType, "planner-type", "eval_pred,no_opt,tdacb,bdc,greedy_d3", "comma-separated list of planner types to run")
	flags.StringVar(&a.table, "table", defaultTable, "table to query")
	flags.StringVar(&a.filter, "filter", defaultQuery, "filter expression to run")

	return cmd
}

func run(ctx context.Context, a *args) error {
	plannerTypes := parseCommaList(a.plannerType)
	if len(plannerTypes) == 0 {
		plannerTypes = defaultPlannerTypes
	}

	db, err := chameleon.NewDB(a.dbPath)
	if err != nil {
		return fmt.Errorf("loading database: %w", err)
	}
	parser := chameleon.NewParser(db)

	query, err := parser.Parse(a.table, a.filter)
	if err != nil {
		return fmt.Errorf("parsing filter: %w", err)
	}

	sel, cost, err := loadOrMeasureStats(a, query)
	if err != nil {
		return err
	}

	exec := chameleon.NewExecutor(db, nil, sel, cost)

	var records []record
	for trial := 0; trial < a.numTrials; trial++ {
		var firstResult bitmap.Bitmap
		haveFirst := false

		for _, plannerType := range plannerTypes {
			if a.debug {
				fmt.Printf("running trial %d planner type %q\n", trial, plannerType)
			}
			dropCaches()

			params, err := buildExecParams(plannerType)
			if err != nil {
				return err
			}

			result, stats, err := exec.Run(ctx, query, params)
			if err != nil {
				return fmt.Errorf("trial %d planner %q: %w", trial, plannerType, err)
			}

			card := result.Cardinality()
			if !haveFirst {
				firstResult, haveFirst = result, true
			} else if !result.Equals(firstResult) {
				return fmt.Errorf("trial %d: planner %q disagreed with %q: %d rows vs %d rows",
					trial, plannerType, plannerTypes[0], card, firstResult.Cardinality())
			}

			rec := record{
				PlannerType:    plannerType,
				Trial:          trial,
				PlanTimeMs:     stats.PlanTimeMs,
				ExecTimeMs:     stats.TotalTimeMs,
				PredEvalTimeMs: stats.PredOnlyTimeMs,
				NumPredEval:    stats.NumPredsEvaled,
			}
			if a.debug {
				fmt.Printf("%+v\n", rec)
			}
			records = append(records, rec)
		}
	}

	if a.noOutput {
		return nil
	}

	output := a.output
	if output == "" {
		output = defaultOutputPath(filepath.Join(a.dbPath, "..", "output"), a.outputPrefix)
	}
	if err := writeRecords(output, records); err != nil {
		return fmt.Errorf("writing records: %w", err)
	}
	fmt.Println("wrote", output)
	return nil
}

// loadOrMeasureStats loads persisted atom stats from a.statsDir and
// measures (and persists) any atom in query's filter that's missing from
// them, mirroring the original harness's get_stats.
func loadOrMeasureStats(a *args, query *chameleon.Query) (atom.SelectivityMap, atom.CostMap, error) {
	if err := os.MkdirAll(a.statsDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating stats dir: %w", err)
	}
	statsPath := filepath.Join(a.statsDir, a.table+".yaml")

	sel, cost, err := optimizer.LoadAtomStats(statsPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading atom stats: %w", err)
	}

	if query.Filter == nil {
		return sel, cost, nil
	}

	fresh := measureAtomStats(query.Table, atom.Atoms(query.Filter), sel, cost)
	if len(fresh) > 0 {
		if err := mergeAndSaveStats(statsPath, sel, cost, fresh); err != nil {
			return nil, nil, fmt.Errorf("saving atom stats: %w", err)
		}
	}
	return sel, cost, nil
}
