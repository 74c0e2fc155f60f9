// Package filterparser parses a SQL-WHERE-like filter expression — e.g.
// "(a < 0.82) and (b < 0.313 or (c < 0.469 and d < 0.984))" — into the
// atom.Node predicate tree the optimizer plans over. Column references are
// resolved against a table.Table at parse time, so a malformed column
// reference is a parse error rather than a deferred execution failure.
package filterparser

import (
	"strconv"

	"github.com/alkim0/disjunct-opt/internal/atom"
	"github.com/alkim0/disjunct-opt/internal/table"
)

// Parser recursive-descends over a filter expression's token stream,
// building a left-associative, flattened-by-operator atom.Node tree.
type Parser struct {
	lex  *Lexer
	tbl  *table.Table
	cur  Token
	peek Token
}

// Parse parses input as a filter expression over tbl's columns.
func Parse(input string, tbl *table.Table) (atom.Node, error) {
	p := &Parser{lex: NewLexer(input), tbl: tbl}
	p.advance()
	p.advance()

	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.cur.Type != EOF {
		return nil, newParseError(p.cur.Position, "unexpected trailing token %s", p.cur.Type)
	}
	return node, nil
}

func (p *Parser) advance() {
	p.cur = p.peek
	p.peek = p.lex.NextToken()
}

// parseOr parses a chain of AND-expressions joined by OR, flattening same-
// level OR operands into a single Or node (spec §3's no-nested-OR shape).
func (p *Parser) parseOr() (atom.Node, error) {
	first, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	children := []atom.Node{first}
	for p.cur.Type == OR {
		p.advance()
		next, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		children = append(children, next)
	}
	if len(children) == 1 {
		return children[0], nil
	}
	return atom.NewOr(children...)
}

// parseAnd parses a chain of primary expressions joined by AND, flattening
// same-level AND operands into a single And node.
func (p *Parser) parseAnd() (atom.Node, error) {
	first, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	children := []atom.Node{first}
	for p.cur.Type == AND {
		p.advance()
		next, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		children = append(children, next)
	}
	if len(children) == 1 {
		return children[0], nil
	}
	return atom.NewAnd(children...)
}

// parsePrimary parses a parenthesized sub-expression or a single
// comparison atom.
func (p *Parser) parsePrimary() (atom.Node, error) {
	if p.cur.Type == LPAREN {
		p.advance()
		node, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.cur.Type != RPAREN {
			return nil, newParseError(p.cur.Position, "expected ')', got %s", p.cur.Type)
		}
		p.advance()
		return node, nil
	}
	return p.parseComparison()
}

func (p *Parser) parseComparison() (atom.Node, error) {
	if p.cur.Type != IDENTIFIER {
		return nil, newParseError(p.cur.Position, "expected column identifier, got %s", p.cur.Type)
	}
	colName := p.cur.Value
	p.advance()

	op, err := p.parseOperator()
	if err != nil {
		return nil, err
	}

	col, terr := p.tbl.Column(colName)
	if terr != nil {
		return nil, newParseError(p.cur.Position, "%v", terr)
	}

	var a atom.Atom
	switch p.cur.Type {
	case NUMBER:
		v, convErr := strconv.ParseFloat(p.cur.Value, 64)
		if convErr != nil {
			return nil, newParseError(p.cur.Position, "invalid numeric literal %q", p.cur.Value)
		}
		a = table.NewComparisonAtom(col, op, v)
	case STRING:
		a = table.NewStringComparisonAtom(col, op, p.cur.Value)
	default:
		return nil, newParseError(p.cur.Position, "expected literal, got %s", p.cur.Type)
	}
	p.advance()

	return atom.NewLeaf(a), nil
}

func (p *Parser) parseOperator() (table.Operator, error) {
	defer p.advance()
	switch p.cur.Type {
	case EQUALS:
		return table.OpEq, nil
	case NOT_EQUALS:
		return table.OpNeq, nil
	case LESS_THAN:
		return table.OpLt, nil
	case LESS_EQUAL:
		return table.OpLte, nil
	case GREATER_THAN:
		return table.OpGt, nil
	case GREATER_EQUAL:
		return table.OpGte, nil
	case LIKE:
		return table.OpLike, nil
	default:
		return 0, newParseError(p.cur.Position, "expected comparison operator, got %s", p.cur.Type)
	}
}
