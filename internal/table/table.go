package table

import "github.com/alkim0/disjunct-opt/internal/bitmap"

// Table is an in-memory columnar row set addressed by row ordinal — the
// minimal storage layer the optimizer and executor run against. It carries
// no transaction, durability, or multi-user concurrency control; those are
// explicitly out of scope.
type Table struct {
	RowCount int
	columns  map[string]*Column
	order    []string // column names in insertion order, for ColumnNames
}

// NewTable returns an empty table with the given row count. Columns are
// attached with AddColumn; each must report the same row count.
func NewTable(rowCount int) *Table {
	return &Table{
		RowCount: rowCount,
		columns:  make(map[string]*Column),
	}
}

// AddColumn attaches col to the table.
func (t *Table) AddColumn(col *Column) error {
	if col.Len() != t.RowCount {
		return newTableError(ErrColumnTypeMismatch, col.Name,
			"column length does not match table row count")
	}
	if _, exists := t.columns[col.Name]; !exists {
		t.order = append(t.order, col.Name)
	}
	t.columns[col.Name] = col
	return nil
}

// Column returns the named column, or an error if it isn't present.
func (t *Table) Column(name string) (*Column, error) {
	col, ok := t.columns[name]
	if !ok {
		return nil, newTableError(ErrColumnNotFound, name, "no such column")
	}
	return col, nil
}

// ColumnNames returns every column name in insertion order.
func (t *Table) ColumnNames() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// AllCandidates returns a bitmap containing every row ordinal in the
// table — the full-table candidate set a fresh query plan starts from.
func (t *Table) AllCandidates() bitmap.Bitmap {
	return bitmap.FromRange(uint32(t.RowCount))
}
