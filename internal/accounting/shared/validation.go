package shared

import (
	"errors"
	"fmt"
	"strings"
)

// Gate identifies the pre-commit check that produced a violation.
type Gate int

const (
	GateInput         Gate = 0
	GateFiscalYear    Gate = 1
	GateDateInYear    Gate = 2
	GatePeriodOpen    Gate = 3
	GateAccountExists Gate = 4
	GateBalanced      Gate = 5
	GatePostable      Gate = 6
	GateBackdating    Gate = 7
)

// Violation is a single failed gate. Line is 1-based; zero means entry level.
type Violation struct {
	Gate    Gate   `json:"gate"`
	Line    int    `json:"line,omitempty"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	if v.Line > 0 {
		return fmt.Sprintf("line %d: %s", v.Line, v.Message)
	}
	return v.Message
}

// ValidationError carries every violated gate for a rejected entry.
type ValidationError struct {
	Violations []Violation
}

// NewValidationError returns nil when there is nothing to report.
func NewValidationError(violations []Violation) error {
	if len(violations) == 0 {
		return nil
	}
	out := make([]Violation, len(violations))
	copy(out, violations)
	return &ValidationError{Violations: out}
}

func (e *ValidationError) Error() string {
	return ErrValidation.Error() + ": " + strings.Join(e.Messages(), "; ")
}

// Messages returns the human readable form of each violation.
func (e *ValidationError) Messages() []string {
	out := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		out = append(out, v.String())
	}
	return out
}

// Has reports whether any violation came from one of the gates.
func (e *ValidationError) Has(gates ...Gate) bool {
	for _, v := range e.Violations {
		for _, g := range gates {
			if v.Gate == g {
				return true
			}
		}
	}
	return false
}

// Is lets callers match the aggregated error against the finer sentinels.
func (e *ValidationError) Is(target error) bool {
	switch target {
	case ErrValidation:
		return true
	case ErrFiscalPeriodClosed:
		return e.Has(GateFiscalYear, GateDateInYear, GatePeriodOpen)
	case ErrAccountNotFound:
		return e.Has(GateAccountExists)
	case ErrImbalanced:
		return e.Has(GateBalanced)
	case ErrAccountNotPostable:
		return e.Has(GatePostable)
	}
	return false
}

// AsValidation unwraps a ValidationError from err.
func AsValidation(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
