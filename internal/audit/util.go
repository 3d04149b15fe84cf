package audit

import (
	"strconv"
	"time"
)

func itoa(i int) string { return strconv.Itoa(i) }

func nullJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return raw
}

func nullTime(rec *Record) *time.Time {
	if rec.CreatedAt.IsZero() {
		return nil
	}
	return &rec.CreatedAt
}
