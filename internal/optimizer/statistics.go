package optimizer

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/alkim0/disjunct-opt/internal/atom"
)

// PredAtomStat is one atom's persisted selectivity/cost measurement, keyed
// by fingerprint in an AtomStatsFile. Grounded in the per-fingerprint
// stat files the benchmark harness writes after a real scan pass.
type PredAtomStat struct {
	Fingerprint string    `yaml:"fingerprint"`
	Selectivity float64   `yaml:"selectivity"`
	AvgCostMs   float64   `yaml:"avg_cost_ms"`
	Samples     int       `yaml:"samples"`
	MeasuredAt  time.Time `yaml:"measured_at"`
}

// AtomStatsFile is the top-level shape of a persisted stats file: one
// entry per distinct atom fingerprint observed during a benchmark run.
type AtomStatsFile struct {
	Atoms []PredAtomStat `yaml:"atoms"`
}

// LoadAtomStats reads a YAML stats file and returns the SelectivityMap and
// CostMap the optimizer's rankers consume. A missing file is not an
// error — it simply yields empty maps, so every atom falls back to
// atom.DefaultSelectivity/atom.DefaultCost.
func LoadAtomStats(path string) (atom.SelectivityMap, atom.CostMap, error) {
	sel := make(atom.SelectivityMap)
	cost := make(atom.CostMap)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return sel, cost, nil
	}
	if err != nil {
		return nil, nil, newPlanError(ErrInvalidParams, "reading atom stats file %s: %v", path, err)
	}

	var file AtomStatsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, nil, newPlanError(ErrInvalidParams, "parsing atom stats file %s: %v", path, err)
	}

	for _, s := range file.Atoms {
		sel[s.Fingerprint] = s.Selectivity
		cost[s.Fingerprint] = s.AvgCostMs
	}
	return sel, cost, nil
}

// SaveAtomStats writes stats to path as YAML, overwriting any existing
// file. Entries are expected to be sorted by fingerprint by the caller
// (the benchmark harness sorts them by Fingerprint before saving) so
// repeated runs produce a stable diff.
func SaveAtomStats(path string, stats []PredAtomStat) error {
	data, err := yaml.Marshal(AtomStatsFile{Atoms: stats})
	if err != nil {
		return newPlanError(ErrInvalidParams, "marshaling atom stats: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return newPlanError(ErrInvalidParams, "writing atom stats file %s: %v", path, err)
	}
	return nil
}
