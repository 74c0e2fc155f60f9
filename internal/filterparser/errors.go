package filterparser

import "fmt"

// ParseError reports a syntax error encountered while parsing a filter
// expression.
type ParseError struct {
	Position int
	Message  string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("filterparser: %s (at position %d)", e.Message, e.Position)
}

func newParseError(pos int, format string, args ...interface{}) *ParseError {
	return &ParseError{Position: pos, Message: fmt.Sprintf(format, args...)}
}
