package optimizer

import "fmt"

// ErrorCode identifies a specific optimizer failure.
type ErrorCode int

const (
	// Planning errors (9000-9099)
	ErrUnknownPlannerType ErrorCode = 9001 + iota
	ErrInvalidParams
)

// PlanError reports a failure building a Plan from a predicate tree.
type PlanError struct {
	Code    ErrorCode
	Message string
}

// Error implements the error interface.
func (e *PlanError) Error() string {
	return fmt.Sprintf("optimizer: %s", e.Message)
}

func newPlanError(code ErrorCode, format string, args ...interface{}) *PlanError {
	return &PlanError{Code: code, Message: fmt.Sprintf(format, args...)}
}
