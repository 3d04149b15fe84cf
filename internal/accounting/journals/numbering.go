package journals

import (
	"fmt"
	"strings"
	"time"

	"github.com/odyssey-erp/gl-engine/internal/accounting/shared"
)

// BaseNumber builds JE-<KIND>-<ref>, falling back to the entry date when ref is empty.
func BaseNumber(kind Kind, ref string, date time.Time) string {
	if kind == "" {
		kind = KindManual
	}
	ref = strings.TrimSpace(ref)
	if ref == "" {
		ref = shared.DateOnly(date).Format("20060102")
	}
	return fmt.Sprintf("JE-%s-%s", kind, ref)
}

// CandidateNumber returns the base for the first attempt and base-N afterwards.
func CandidateNumber(base string, attempt int) string {
	if attempt <= 1 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, attempt)
}

// ReversalNumber is the reserved number of the reversal of original.
func ReversalNumber(original string) string {
	return reversalPrefix + original
}
