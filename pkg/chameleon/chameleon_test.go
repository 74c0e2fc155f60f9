package chameleon

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alkim0/disjunct-opt/internal/atom"
	"github.com/alkim0/disjunct-opt/internal/optimizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func testDB(t *testing.T) *DB {
	t.Helper()
	dir := t.TempDir()
	writeCSV(t, dir, "widgets.csv", "a,b,name\n0.1,0.9,foo\n0.5,0.2,bar\n0.9,0.05,baz\n")
	db, err := NewDB(dir)
	require.NoError(t, err)
	return db
}

func TestNewDBLoadsCSVTablesByFilename(t *testing.T) {
	db := testDB(t)
	assert.Equal(t, []string{"widgets"}, db.TableNames())

	tbl, err := db.Table("widgets")
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.RowCount)
}

func TestNewDBUnknownTableIsError(t *testing.T) {
	db := testDB(t)
	_, err := db.Table("missing")
	assert.Error(t, err)
}

func TestParserParsesFilterExpressionAgainstTable(t *testing.T) {
	db := testDB(t)
	parser := NewParser(db)

	q, err := parser.Parse("widgets", "a < 0.6 and b > 0.1")
	require.NoError(t, err)
	assert.NotNil(t, q.Filter)
	assert.Equal(t, []string{"a < 0.6", "b > 0.1"}, atom.SortedFingerprints(q.Filter))
}

func TestParserEmptyFilterMatchesWholeTable(t *testing.T) {
	db := testDB(t)
	parser := NewParser(db)

	q, err := parser.Parse("widgets", "")
	require.NoError(t, err)
	assert.Nil(t, q.Filter)
}

func TestExecutorRunFiltersRows(t *testing.T) {
	db := testDB(t)
	parser := NewParser(db)
	q, err := parser.Parse("widgets", "a < 0.6")
	require.NoError(t, err)

	exec := NewExecutor(db, nil, nil, nil)
	result, stats, err := exec.Run(context.Background(), q, optimizer.DefaultExecParams())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Cardinality())
	assert.EqualValues(t, 1, stats.NumPredsEvaled)
}

func TestExecutorRunWithNoFilterReturnsAllRows(t *testing.T) {
	db := testDB(t)
	parser := NewParser(db)
	q, err := parser.Parse("widgets", "")
	require.NoError(t, err)

	exec := NewExecutor(db, nil, nil, nil)
	result, _, err := exec.Run(context.Background(), q, optimizer.DefaultExecParams())
	require.NoError(t, err)
	assert.Equal(t, 3, result.Cardinality())
}

// TestTdacbAgreesAcrossCNFAndDNFForms checks that Tdacb's depth-bounded
// restructuring search doesn't depend on which logically-equivalent shape a filter
// arrives in: a conjunction of disjunctions and its fully distributed
// disjunction-of-conjunctions form must produce the same matching rows.
func TestTdacbAgreesAcrossCNFAndDNFForms(t *testing.T) {
	db := testDB(t)
	parser := NewParser(db)

	cnf, err := parser.Parse("widgets", `(a < 0.6 or b < 0.5) and (a > 0.05 or b > 0.9)`)
	require.NoError(t, err)
	dnf, err := parser.Parse("widgets",
		`(a < 0.6 and a > 0.05) or (a < 0.6 and b > 0.9) or (b < 0.5 and a > 0.05) or (b < 0.5 and b > 0.9)`)
	require.NoError(t, err)

	exec := NewExecutor(db, nil, nil, nil)
	params := optimizer.DefaultExecParams()
	params.Planner = optimizer.Tdacb

	cnfResult, _, err := exec.Run(context.Background(), cnf, params)
	require.NoError(t, err)
	dnfResult, _, err := exec.Run(context.Background(), dnf, params)
	require.NoError(t, err)

	assert.Equal(t, cnfResult.Cardinality(), dnfResult.Cardinality())
	assert.True(t, cnfResult.Equals(dnfResult), "CNF and DNF forms disagreed on matching rows")
}

func TestExecutorRunAcrossPlannersAgree(t *testing.T) {
	db := testDB(t)
	parser := NewParser(db)
	q, err := parser.Parse("widgets", "a < 0.6 and b > 0.1")
	require.NoError(t, err)

	exec := NewExecutor(db, nil, nil, nil)
	var first int
	for i, pt := range []optimizer.PlannerType{optimizer.EvalPred, optimizer.Tdacb, optimizer.BDCWithBestD, optimizer.OnePredLookahead} {
		params := optimizer.DefaultExecParams()
		params.Planner = pt
		result, _, err := exec.Run(context.Background(), q, params)
		require.NoError(t, err)
		if i == 0 {
			first = result.Cardinality()
		} else {
			assert.Equal(t, first, result.Cardinality(), "planner %s disagreed with EvalPred", pt)
		}
	}
}
