package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/alkim0/disjunct-opt/internal/atom"
	"github.com/alkim0/disjunct-opt/internal/optimizer"
	"github.com/alkim0/disjunct-opt/internal/table"
)

// defaultQuery is the filter this harness exercises unless --filter
// overrides it: a flattened,
// single-table rendering of the original TPC-style join predicate
// (BETWEEN and IN have no place in this grammar, so they're expanded into
// their range/disjunction equivalents; the join itself is out of scope, so
// the two joined tables are treated as already denormalized into one).
const defaultQuery = `ol_quantity >= 1 and ol_quantity <= 10 and i_price >= 1 and i_price <= 400000 and (
	(i_data like "%a" and (ol_w_id = 1 or ol_w_id = 2 or ol_w_id = 3))
	or (i_data like "%b" and (ol_w_id = 1 or ol_w_id = 2 or ol_w_id = 4))
	or (i_data like "%c" and (ol_w_id = 1 or ol_w_id = 5 or ol_w_id = 3))
)`

const defaultTable = "orderline"

var defaultPlannerTypes = []string{"eval_pred", "no_opt", "tdacb", "bdc", "greedy_d3"}

// record is one (trial, planner) measurement, written as a CSV row.
type record struct {
	PlannerType    string
	Trial          int
	PlanTimeMs     int64
	ExecTimeMs     int64
	PredEvalTimeMs int64
	NumPredEval    int64
}

// buildExecParams translates one of the harness's planner-type names into
// the ExecParams the optimizer understands.
func buildExecParams(plannerType string) (optimizer.ExecParams, error) {
	params := optimizer.DefaultExecParams()
	switch plannerType {
	case "eval_pred":
	case "tdacb":
		params.Planner = optimizer.Tdacb
	case "no_opt":
		params.DisableOrOpt = true
	case "bdc":
		params.Planner = optimizer.BDCWithBestD
	case "greedy_d3":
		params.Planner = optimizer.OnePredLookahead
	default:
		return params, fmt.Errorf("unknown planner type %q", plannerType)
	}
	return params, nil
}

// parseCommaList splits a comma-separated flag value into trimmed,
// non-empty entries.
func parseCommaList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// measureAtomStats fills in sel/cost for every fingerprint in atoms that
// isn't already present, by evaluating the atom once against the table's
// full candidate set. Mirrors the original harness's get_stats: a fresh
// measurement's cost is the wall-clock time of that one pass over the
// table, in milliseconds, and its selectivity is the fraction of rows the
// atom alone passes.
func measureAtomStats(tbl *table.Table, atoms []atom.Atom, sel atom.SelectivityMap, cost atom.CostMap) []optimizer.PredAtomStat {
	var fresh []optimizer.PredAtomStat
	candidate := tbl.AllCandidates()
	tableLen := float64(tbl.RowCount)

	for _, a := range atoms {
		fp := a.Fingerprint()
		if _, ok := sel[fp]; ok {
			continue
		}
		start := time.Now()
		result := a.Eval(candidate, atom.NoopStats)
		elapsed := time.Since(start)

		s := optimizer.PredAtomStat{
			Fingerprint: fp,
			Selectivity: float64(result.Cardinality()) / tableLen,
			AvgCostMs:   elapsed.Seconds() * 1000,
			Samples:     1,
			MeasuredAt:  time.Now(),
		}
		sel[fp] = s.Selectivity
		cost[fp] = s.AvgCostMs
		fresh = append(fresh, s)
	}
	return fresh
}

// mergeAndSaveStats combines freshly measured stats with whatever was
// already loaded from path and writes the union back out, sorted by
// fingerprint for a stable diff across runs.
func mergeAndSaveStats(path string, existingSel atom.SelectivityMap, existingCost atom.CostMap, fresh []optimizer.PredAtomStat) error {
	if path == "" {
		return nil
	}
	byFingerprint := make(map[string]optimizer.PredAtomStat)
	for fp, s := range existingSel {
		byFingerprint[fp] = optimizer.PredAtomStat{Fingerprint: fp, Selectivity: s, AvgCostMs: existingCost[fp]}
	}
	for _, s := range fresh {
		byFingerprint[s.Fingerprint] = s
	}

	all := make([]optimizer.PredAtomStat, 0, len(byFingerprint))
	for _, s := range byFingerprint {
		all = append(all, s)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Fingerprint < all[j].Fingerprint })

	return optimizer.SaveAtomStats(path, all)
}

// writeRecords writes records as a CSV file at path, creating path's
// parent directory if it doesn't already exist.
func writeRecords(path string, records []record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"planner_type", "trial", "plan_time_ms", "exec_time_ms", "pred_eval_time_ms", "num_pred_eval"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.PlannerType,
			strconv.Itoa(r.Trial),
			strconv.FormatInt(r.PlanTimeMs, 10),
			strconv.FormatInt(r.ExecTimeMs, 10),
			strconv.FormatInt(r.PredEvalTimeMs, 10),
			strconv.FormatInt(r.NumPredEval, 10),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// dropCaches best-effort shells out to a "drop_caches" command so each
// trial starts from a cold page cache. Its absence only degrades timing
// accuracy, so a failure here is reported and otherwise ignored.
func dropCaches() {
	if err := exec.Command("sh", "-c", "drop_caches").Run(); err != nil {
		fmt.Fprintln(os.Stderr, "warning: failed to drop caches, timings may be compromised:", err)
	}
}

// defaultOutputPath builds an output CSV path the way the original
// harness does: a prefix, hostname, and timestamp, under outputDir.
func defaultOutputPath(outputDir, prefix string) string {
	if prefix == "" {
		prefix = "ch-exp"
	}
	host, err := os.Hostname()
	if err != nil {
		host = "unknown-host"
	}
	timestamp := time.Now().Format("2006-01-02T150405")
	return filepath.Join(outputDir, fmt.Sprintf("%s-%s-%s.csv", prefix, host, timestamp))
}
