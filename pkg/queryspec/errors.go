package queryspec

import (
	"errors"
	"fmt"
)

var (
	// ErrNoQueryConfigured is returned by Apply and every terminal operation
	// when no base query has been set.
	ErrNoQueryConfigured = errors.New("no query configured: call SetQuery or For first")

	// ErrInvalidPageNumber is reserved for callers that validate page input
	// themselves. The pipeline coerces bad page numbers to 1 and never returns it.
	ErrInvalidPageNumber = errors.New("invalid page number")
)

// PipelineError reports which operation failed and the pipeline state it ran
// with. It unwraps to the underlying cause.
type PipelineError struct {
	Op     string
	Entity string
	State  string
	Err    error
}

func (e *PipelineError) Error() string {
	entity := e.Entity
	if entity == "" {
		entity = "<no query>"
	}
	if e.State == "" {
		return fmt.Sprintf("queryspec: %s %s: %v", e.Op, entity, e.Err)
	}
	return fmt.Sprintf("queryspec: %s %s [%s]: %v", e.Op, entity, e.State, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}
