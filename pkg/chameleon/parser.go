package chameleon

import (
	"strings"

	"github.com/alkim0/disjunct-opt/internal/atom"
	"github.com/alkim0/disjunct-opt/internal/filterparser"
	"github.com/alkim0/disjunct-opt/internal/semantic"
	"github.com/alkim0/disjunct-opt/internal/table"
)

// Query is a parsed request: a table and an optional predicate tree over
// it. A nil Filter means every row matches. Warnings carries any non-fatal
// advisories (e.g. a redundant duplicate atom) the semantic validator
// raised while accepting the tree.
type Query struct {
	TableName string
	Table     *table.Table
	Filter    atom.Node
	Warnings  []semantic.SemanticWarning
}

// Parser resolves a filter expression against one of db's tables into a
// predicate tree, validated for well-formedness before it's handed to the
// optimizer.
type Parser struct {
	db        *DB
	validator *semantic.Validator
}

// NewParser returns a Parser bound to db.
func NewParser(db *DB) *Parser {
	return &Parser{db: db, validator: semantic.NewValidator()}
}

// Parse resolves tableName against the Parser's DB and, if filterExpr is
// non-blank, parses it as a boolean comparison expression over that
// table's columns and runs it through semantic validation. A fatal
// validation error (malformed tree shape) is returned as the parse error;
// non-fatal advisories are attached to the Query as Warnings.
func (p *Parser) Parse(tableName, filterExpr string) (*Query, error) {
	tbl, err := p.db.Table(tableName)
	if err != nil {
		return nil, err
	}

	q := &Query{TableName: tableName, Table: tbl}
	if strings.TrimSpace(filterExpr) == "" {
		return q, nil
	}

	node, err := filterparser.Parse(filterExpr, tbl)
	if err != nil {
		return nil, err
	}

	info := p.validator.Analyze(node)
	if !info.Valid {
		return nil, newDBError(ErrFilterInvalid, tableName, info.Errors[0].Error(), info.Errors[0])
	}

	q.Filter = node
	q.Warnings = info.Warnings
	return q, nil
}
