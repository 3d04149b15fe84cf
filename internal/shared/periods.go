package shared

import "errors"

// Fiscal year statuses reused outside the periods module.
const (
	PeriodStatusOpen    = "open"
	PeriodStatusPartial = "partial"
	PeriodStatusClosed  = "closed"
	PeriodStatusLocked  = "locked"
)

// ErrInvalidPeriodTransition indicates status change not allowed.
var ErrInvalidPeriodTransition = errors.New("period transition invalid")

// ValidatePeriodTransition checks transitions according to policy. Leaving a
// locked year requires an override.
func ValidatePeriodTransition(current, target string, hasOverride bool) error {
	if current == target {
		if current == PeriodStatusPartial {
			return nil
		}
		return ErrInvalidPeriodTransition
	}
	switch current {
	case PeriodStatusOpen:
		if target == PeriodStatusPartial || target == PeriodStatusClosed || target == PeriodStatusLocked {
			return nil
		}
	case PeriodStatusPartial:
		if target == PeriodStatusClosed || target == PeriodStatusLocked || target == PeriodStatusOpen {
			return nil
		}
	case PeriodStatusClosed:
		if target == PeriodStatusOpen || target == PeriodStatusLocked {
			return nil
		}
	case PeriodStatusLocked:
		if (target == PeriodStatusClosed || target == PeriodStatusOpen) && hasOverride {
			return nil
		}
	}
	return ErrInvalidPeriodTransition
}
