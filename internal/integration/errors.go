package integration

import "errors"

var (
	// ErrInvalidDocument marks a business document missing a required field.
	ErrInvalidDocument = errors.New("integration: invalid document")
	// ErrNothingToPost is returned for documents whose amounts are all zero.
	ErrNothingToPost = errors.New("integration: document has nothing to post")
	// ErrInvoiceNotBooked is returned when a settlement references an invoice without an entry.
	ErrInvoiceNotBooked = errors.New("integration: original invoice has no journal entry")
	// ErrSettlementAccount is returned when the original entry carries no receivable or payable line.
	ErrSettlementAccount = errors.New("integration: original entry has no receivable or payable line")
)
