package chameleon

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/alkim0/disjunct-opt/internal/table"
)

// DB is a fixed set of named, column-typed tables loaded once from a
// directory of CSV files — one file per table, named "<table>.csv", first
// row a column-name header. There is no write path, transaction log, or
// multi-user concurrency control; tables are immutable for the process
// lifetime (spec Non-goals: persistent storage, transactions).
type DB struct {
	tables map[string]*table.Table
}

// NewDB loads every "*.csv" file in dir as a table named after its
// filename (minus the extension).
func NewDB(dir string) (*DB, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, newDBError(ErrDBDirNotReadable, dir, "could not list table directory", err)
	}

	db := &DB{tables: make(map[string]*table.Table)}
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		tbl, err := loadCSVTable(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, newDBError(ErrTableLoadFailed, name, "failed to load table", err)
		}
		db.tables[name] = tbl
	}
	return db, nil
}

// Table returns the named table.
func (db *DB) Table(name string) (*table.Table, error) {
	tbl, ok := db.tables[name]
	if !ok {
		return nil, newDBError(ErrTableNotFound, name, "no such table", nil)
	}
	return tbl, nil
}

// TableNames returns every loaded table's name, sorted.
func (db *DB) TableNames() []string {
	names := make([]string, 0, len(db.tables))
	for name := range db.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// loadCSVTable reads path as a header row plus data rows, inferring each
// column's type from whether every one of its values parses as a float64.
func loadCSVTable(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}

	tbl := table.NewTable(len(rows))
	for colIdx, name := range header {
		col := inferColumn(name, colIdx, rows)
		if err := tbl.AddColumn(col); err != nil {
			return nil, err
		}
	}
	return tbl, nil
}

func inferColumn(name string, colIdx int, rows [][]string) *table.Column {
	floats := make([]float64, len(rows))
	strs := make([]string, len(rows))
	allFloat := true
	for rowIdx, row := range rows {
		v := strings.TrimSpace(row[colIdx])
		strs[rowIdx] = v
		if !allFloat {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			allFloat = false
			continue
		}
		floats[rowIdx] = f
	}
	if allFloat {
		return table.NewFloatColumn(name, floats)
	}
	return table.NewStringColumn(name, strs)
}
