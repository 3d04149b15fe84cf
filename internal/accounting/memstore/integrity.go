package memstore

import (
	"context"
	"slices"
	"time"

	"github.com/odyssey-erp/gl-engine/internal/accounting/integrity"
	"github.com/odyssey-erp/gl-engine/internal/accounting/journals"
	"github.com/odyssey-erp/gl-engine/internal/accounting/shared"
)

func (s *Store) Integrity() integrity.Repository { return integrityRepo{s} }

// RewriteEntry edits a stored entry in place, bypassing validation and the
// projection. It reports false when the entry does not exist.
func (s *Store) RewriteEntry(id int64, fn func(*journals.Entry)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.data.entries[id]
	if !ok {
		return false
	}
	e.Lines = slices.Clone(e.Lines)
	fn(&e)
	s.data.entries[id] = e
	return true
}

type integrityRepo struct{ s *Store }

func (r integrityRepo) PostedEntries(ctx context.Context, from, to time.Time) ([]journals.Entry, error) {
	var out []journals.Entry
	r.s.read(func(st *state) {
		for _, e := range st.sortedEntries() {
			if e.Status == journals.StatusPosted && shared.Within(e.Date, from, to) {
				e.Lines = slices.Clone(e.Lines)
				out = append(out, e)
			}
		}
	})
	return out, nil
}
