package fst

import (
	"errors"
	"fmt"
)

// LimitError reports that an operation exceeded the engine's state budget.
type LimitError struct {
	Op     string
	States int
	Limit  int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%s: automaton exceeded %d states (limit %d)", e.Op, e.States, e.Limit)
}

// CanceledError reports that the engine's context was done mid-operation.
type CanceledError struct {
	Op  string
	Err error
}

func (e *CanceledError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CanceledError) Unwrap() error {
	return e.Err
}

// IsLimitError returns true if err is or wraps a *LimitError.
func IsLimitError(err error) bool {
	var le *LimitError
	return errors.As(err, &le)
}

// Catch converts an engine panic into an error. It must be deferred
// directly:
//
//	defer fst.Catch(&err)
//
// Panics that did not come from the engine are re-raised.
func Catch(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	switch v := r.(type) {
	case *LimitError:
		*errp = v
	case *CanceledError:
		*errp = v
	default:
		panic(r)
	}
}
