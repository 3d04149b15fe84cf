package memstore

import (
	"context"
	"slices"
	"strings"

	"github.com/odyssey-erp/gl-engine/internal/audit"
)

type auditRepo struct{ s *Store }

func (r auditRepo) ListForJournal(ctx context.Context, journalID int64) ([]audit.Record, error) {
	var out []audit.Record
	r.s.read(func(st *state) {
		for _, rec := range st.audit {
			if rec.JournalID == journalID {
				out = append(out, rec)
			}
		}
	})
	return out, nil
}

func (r auditRepo) TimelineWindow(ctx context.Context, filters audit.TimelineFilters, offset, limit int) ([]audit.TimelineRow, error) {
	rows := r.timeline(filters)
	if offset >= len(rows) {
		return nil, nil
	}
	rows = rows[offset:]
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (r auditRepo) TimelineAll(ctx context.Context, filters audit.TimelineFilters) ([]audit.TimelineRow, error) {
	return r.timeline(filters), nil
}

// timeline mirrors the SQL filter: To is inclusive of the whole day.
func (r auditRepo) timeline(f audit.TimelineFilters) []audit.TimelineRow {
	var out []audit.TimelineRow
	r.s.read(func(st *state) {
		for i := len(st.audit) - 1; i >= 0; i-- {
			rec := st.audit[i]
			if !f.From.IsZero() && rec.CreatedAt.Before(f.From) {
				continue
			}
			if !f.To.IsZero() && !rec.CreatedAt.Before(f.To.AddDate(0, 0, 1)) {
				continue
			}
			if f.JournalID > 0 && rec.JournalID != f.JournalID {
				continue
			}
			if f.UserID > 0 && (rec.UserID == nil || *rec.UserID != f.UserID) {
				continue
			}
			if a := strings.TrimSpace(f.Action); a != "" && string(rec.Action) != a {
				continue
			}
			row := audit.TimelineRow{At: rec.CreatedAt, UserID: rec.UserID, Action: rec.Action, JournalID: rec.JournalID}
			if e, ok := st.entries[rec.JournalID]; ok {
				row.EntryNumber = e.Number
			}
			out = append(out, row)
		}
	})
	slices.SortStableFunc(out, func(a, b audit.TimelineRow) int { return b.At.Compare(a.At) })
	return out
}
