package shared

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/odyssey-erp/gl-engine/internal/platform/httpx"
)

// RespondError writes the problem response for accounting errors and falls
// back to the generic httpx mapping.
func RespondError(w http.ResponseWriter, err error) {
	if verr, ok := AsValidation(err); ok {
		httpx.ValidationProblem(w, ErrValidation.Error(), verr.Violations)
		return
	}
	switch {
	case errors.Is(err, ErrJournalNotFound),
		errors.Is(err, ErrFiscalYearNotFound),
		errors.Is(err, ErrExceptionalPeriodNotFound):
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrNotFound, err))
	case errors.Is(err, ErrAccountNotFound):
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrNotFound, err))
	case errors.Is(err, ErrAlreadyPosted),
		errors.Is(err, ErrNotPosted),
		errors.Is(err, ErrReversalExists),
		errors.Is(err, ErrCannotDeletePosted),
		errors.Is(err, ErrSourceAlreadyLinked),
		errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrFiscalYearOverlap):
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrConflict, err))
	case errors.Is(err, ErrFiscalPeriodClosed),
		errors.Is(err, ErrImbalanced),
		errors.Is(err, ErrAccountNotPostable),
		errors.Is(err, ErrRoleNotMapped),
		errors.Is(err, ErrReasonRequired),
		errors.Is(err, ErrCriticalFindings),
		errors.Is(err, ErrInvalidDateRange),
		errors.Is(err, ErrInvalidLinkage):
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
	default:
		httpx.RespondError(w, err)
	}
}
