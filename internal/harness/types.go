package harness

import (
	"github.com/roach88/twolc/internal/ir"
)

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all expectations match.
	Pass bool `json:"pass"`

	// Errors contains failed expectations.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Report is the compile report of the scenario's rules.
	Report ir.CompileReport `json:"report"`

	// Check is the result of testing the whole rule set against the
	// examples.
	Check ir.CheckReport `json:"check"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a failed expectation and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
