package shared

import "errors"

var (
	// ErrValidation indicates the candidate entry failed one or more gates.
	ErrValidation = errors.New("accounting: journal failed validation")
	// ErrAlreadyPosted indicates the entry is already posted.
	ErrAlreadyPosted = errors.New("accounting: journal already posted")
	// ErrNotPosted indicates the entry is not in posted state.
	ErrNotPosted = errors.New("accounting: journal is not posted")
	// ErrImbalanced indicates debit != credit or a zero total.
	ErrImbalanced = errors.New("accounting: journal lines do not balance")
	// ErrReversalExists indicates the entry already has a reversal.
	ErrReversalExists = errors.New("accounting: journal already reversed")
	// ErrCannotDeletePosted indicates a hard delete of a posted entry.
	ErrCannotDeletePosted = errors.New("accounting: posted journal cannot be deleted")
	// ErrFiscalPeriodClosed indicates the date is not open for posting.
	ErrFiscalPeriodClosed = errors.New("accounting: fiscal period closed")
	// ErrAccountNotFound indicates the account code does not exist.
	ErrAccountNotFound = errors.New("accounting: account not found")
	// ErrAccountNotPostable indicates a control or non-posting account.
	ErrAccountNotPostable = errors.New("accounting: account does not allow posting")
	// ErrRoleNotMapped indicates an account role without a code.
	ErrRoleNotMapped = errors.New("accounting: account role not mapped")
	// ErrJournalNotFound indicates missing entry.
	ErrJournalNotFound = errors.New("accounting: journal entry not found")
	// ErrSourceAlreadyLinked indicates idempotency conflict.
	ErrSourceAlreadyLinked = errors.New("accounting: source already linked")
	// ErrInvalidLinkage indicates more than one linkage kind was supplied.
	ErrInvalidLinkage = errors.New("accounting: journal linkage invalid")
	// ErrNumberExhausted indicates no free entry number was found.
	ErrNumberExhausted = errors.New("accounting: entry number space exhausted")
	// ErrFiscalYearNotFound indicates missing fiscal year.
	ErrFiscalYearNotFound = errors.New("accounting: fiscal year not found")
	// ErrFiscalYearOverlap indicates the range intersects another year.
	ErrFiscalYearOverlap = errors.New("accounting: fiscal year overlaps an existing year")
	// ErrInvalidDateRange indicates start is not before end or falls outside the year.
	ErrInvalidDateRange = errors.New("accounting: invalid date range")
	// ErrInvalidStatus indicates action can't proceed.
	ErrInvalidStatus = errors.New("accounting: invalid status transition")
	// ErrReasonRequired indicates a missing or too short justification.
	ErrReasonRequired = errors.New("accounting: reason of at least 20 characters required")
	// ErrCriticalFindings indicates an integrity snapshot blocks the close.
	ErrCriticalFindings = errors.New("accounting: critical integrity findings present")
	// ErrExceptionalPeriodNotFound indicates missing exceptional period.
	ErrExceptionalPeriodNotFound = errors.New("accounting: exceptional period not found")
)
