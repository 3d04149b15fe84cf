// Package memstore keeps the whole ledger in process memory. It backs tests
// and the single-node demo mode; every WithTx call is all-or-nothing.
package memstore

import (
	"cmp"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/odyssey-erp/gl-engine/internal/accounting/accounts"
	"github.com/odyssey-erp/gl-engine/internal/accounting/journals"
	"github.com/odyssey-erp/gl-engine/internal/accounting/ledger"
	"github.com/odyssey-erp/gl-engine/internal/accounting/periods"
	"github.com/odyssey-erp/gl-engine/internal/audit"
	platformshared "github.com/odyssey-erp/gl-engine/internal/shared"
)

// Store is safe for concurrent use. Transactions hold the store lock until
// they finish, so they are fully serialised.
type Store struct {
	mu       sync.Mutex
	now      func() time.Time
	syncFail error
	data     *state
}

type state struct {
	seq         int64
	accounts    map[string]accounts.Account
	years       map[int64]periods.FiscalYear
	exceptional map[int64]periods.ExceptionalPeriod
	entries     map[int64]journals.Entry
	ledger      []ledger.LegacyRow
	audit       []audit.Record
	auditLogs   []platformshared.AuditLog
}

func New() *Store {
	return &Store{
		now: time.Now,
		data: &state{
			accounts:    make(map[string]accounts.Account),
			years:       make(map[int64]periods.FiscalYear),
			exceptional: make(map[int64]periods.ExceptionalPeriod),
			entries:     make(map[int64]journals.Entry),
		},
	}
}

// WithNow fixes the clock used for created_at stamps.
func (s *Store) WithNow(now func() time.Time) *Store {
	if now != nil {
		s.now = now
	}
	return s
}

// FailLedgerSync makes every projection insert return err until cleared with nil.
func (s *Store) FailLedgerSync(err error) {
	s.mu.Lock()
	s.syncFail = err
	s.mu.Unlock()
}

func (s *Store) Accounts() accounts.Repository { return accountRepo{s} }
func (s *Store) Periods() periods.Repository   { return periodRepo{s} }
func (s *Store) Journals() journals.Repository { return journalRepo{s} }
func (s *Store) Ledger() ledger.Repository     { return ledgerRepo{s} }
func (s *Store) Audit() audit.Repository       { return auditRepo{s} }

// LedgerRows returns a copy of the projection.
func (s *Store) LedgerRows() []ledger.LegacyRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.data.ledger)
}

// AuditRecords returns a copy of the journal audit trail in insertion order.
func (s *Store) AuditRecords() []audit.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.data.audit)
}

// AuditLogs returns the administrative audit log.
func (s *Store) AuditLogs() []platformshared.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.data.auditLogs)
}

// EntryCount returns the number of stored journal entries.
func (s *Store) EntryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.entries)
}

func (s *Store) read(fn func(*state)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.data)
}

// tx runs fn against the live state and restores a snapshot when it fails.
func (s *Store) tx(fn func(*state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.data.clone()
	if err := fn(s.data); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

func (st *state) nextID() int64 {
	st.seq++
	return st.seq
}

func (st *state) clone() *state {
	out := &state{
		seq:         st.seq,
		accounts:    maps.Clone(st.accounts),
		years:       maps.Clone(st.years),
		exceptional: maps.Clone(st.exceptional),
		entries:     make(map[int64]journals.Entry, len(st.entries)),
		ledger:      slices.Clone(st.ledger),
		audit:       slices.Clone(st.audit),
		auditLogs:   slices.Clone(st.auditLogs),
	}
	for id, e := range st.entries {
		e.Lines = slices.Clone(e.Lines)
		out.entries[id] = e
	}
	return out
}

func (st *state) calendar() periods.Calendar {
	cal := periods.Calendar{}
	for _, fy := range st.years {
		cal.Years = append(cal.Years, fy)
	}
	for _, p := range st.exceptional {
		cal.Exceptional = append(cal.Exceptional, p)
	}
	slices.SortFunc(cal.Years, func(a, b periods.FiscalYear) int { return b.StartDate.Compare(a.StartDate) })
	slices.SortFunc(cal.Exceptional, func(a, b periods.ExceptionalPeriod) int { return a.StartDate.Compare(b.StartDate) })
	return cal
}

func (st *state) accountList() []accounts.Account {
	out := slices.Collect(maps.Values(st.accounts))
	slices.SortFunc(out, func(a, b accounts.Account) int { return cmp.Compare(a.Code, b.Code) })
	return out
}

func (st *state) accountByID(id int64) (accounts.Account, bool) {
	for _, a := range st.accounts {
		if a.ID == id {
			return a, true
		}
	}
	return accounts.Account{}, false
}

func (st *state) sortedEntries() []journals.Entry {
	out := slices.Collect(maps.Values(st.entries))
	slices.SortFunc(out, func(a, b journals.Entry) int { return cmp.Compare(a.ID, b.ID) })
	return out
}
