package memstore

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/odyssey-erp/gl-engine/internal/accounting/accounts"
	"github.com/odyssey-erp/gl-engine/internal/accounting/journals"
	"github.com/odyssey-erp/gl-engine/internal/accounting/ledger"
	"github.com/odyssey-erp/gl-engine/internal/accounting/periods"
	"github.com/odyssey-erp/gl-engine/internal/accounting/shared"
	"github.com/odyssey-erp/gl-engine/internal/audit"
	"github.com/odyssey-erp/gl-engine/internal/platform/db"
)

type journalRepo struct{ s *Store }

func (r journalRepo) Get(ctx context.Context, id int64) (journals.Entry, error) {
	var (
		e  journals.Entry
		ok bool
	)
	r.s.read(func(st *state) { e, ok = st.entry(id) })
	if !ok {
		return journals.Entry{}, shared.ErrJournalNotFound
	}
	return e, nil
}

func (r journalRepo) List(ctx context.Context, f journals.ListFilter) ([]journals.Entry, error) {
	var out []journals.Entry
	r.s.read(func(st *state) {
		all := st.sortedEntries()
		slices.Reverse(all)
		slices.SortStableFunc(all, func(a, b journals.Entry) int { return b.Date.Compare(a.Date) })
		for _, e := range all {
			if f.Status != "" && e.Status != f.Status {
				continue
			}
			if !f.From.IsZero() && e.Date.Before(f.From) {
				continue
			}
			if !f.To.IsZero() && e.Date.After(f.To) {
				continue
			}
			if f.BranchCode != "" && e.BranchCode != f.BranchCode {
				continue
			}
			e.Lines = nil
			out = append(out, e)
		}
	})
	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := max(f.Offset, 0)
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r journalRepo) FindByLinkage(ctx context.Context, link journals.Linkage) (journals.Entry, bool, error) {
	var (
		e     journals.Entry
		found bool
	)
	r.s.read(func(st *state) { e, found = st.byLinkage(link) })
	return e, found, nil
}

// WithSerializableTx is WithTx: store transactions are already serial.
func (r journalRepo) WithSerializableTx(ctx context.Context, fn func(context.Context, journals.TxRepository) error) error {
	return r.WithTx(ctx, fn)
}

func (r journalRepo) WithTx(ctx context.Context, fn func(context.Context, journals.TxRepository) error) error {
	return r.s.tx(func(st *state) error {
		return fn(ctx, journalTx{s: r.s, st: st})
	})
}

type journalTx struct {
	s  *Store
	st *state
}

func (t journalTx) Calendar(ctx context.Context) (periods.Calendar, error) {
	return t.st.calendar(), nil
}

func (t journalTx) Accounts(ctx context.Context) ([]accounts.Account, error) {
	return t.st.accountList(), nil
}

func (t journalTx) NumberExists(ctx context.Context, number string) (bool, error) {
	_, ok := t.st.byNumber(number)
	return ok, nil
}

// LockLinkage is a no-op; the store lock already serialises transactions.
func (t journalTx) LockLinkage(ctx context.Context, key string) error {
	return nil
}

func (t journalTx) FindByLinkage(ctx context.Context, link journals.Linkage) (journals.Entry, bool, error) {
	e, ok := t.st.byLinkage(link)
	return e, ok, nil
}

func (t journalTx) FindByNumber(ctx context.Context, number string) (journals.Entry, bool, error) {
	e, ok := t.st.byNumber(number)
	return e, ok, nil
}

func (t journalTx) GetForUpdate(ctx context.Context, id int64) (journals.Entry, error) {
	e, ok := t.st.entry(id)
	if !ok {
		return journals.Entry{}, shared.ErrJournalNotFound
	}
	return e, nil
}

func (t journalTx) InsertEntry(ctx context.Context, entry *journals.Entry) error {
	if _, taken := t.st.byNumber(entry.Number); taken {
		return fmt.Errorf("%w: entry number %s taken", db.ErrRetryable, entry.Number)
	}
	now := t.s.now()
	entry.ID = t.st.nextID()
	entry.CreatedAt, entry.UpdatedAt = now, now
	if err := t.assignLines(entry.ID, entry.Lines); err != nil {
		return err
	}
	stored := *entry
	stored.Lines = slices.Clone(entry.Lines)
	t.st.entries[entry.ID] = stored
	return nil
}

func (t journalTx) UpdateEntry(ctx context.Context, entry journals.Entry) error {
	current, ok := t.st.entries[entry.ID]
	if !ok {
		return shared.ErrJournalNotFound
	}
	current.Date = entry.Date
	current.BranchCode = entry.BranchCode
	current.Description = entry.Description
	current.Status = entry.Status
	current.TotalDebit = entry.TotalDebit
	current.TotalCredit = entry.TotalCredit
	current.UpdatedAt = t.s.now()
	t.st.entries[entry.ID] = current
	return nil
}

func (t journalTx) ReplaceLines(ctx context.Context, journalID int64, lines []journals.Line) error {
	current, ok := t.st.entries[journalID]
	if !ok {
		return shared.ErrJournalNotFound
	}
	if err := t.assignLines(journalID, lines); err != nil {
		return err
	}
	current.Lines = slices.Clone(lines)
	t.st.entries[journalID] = current
	return nil
}

// assignLines stamps ids and enforces the account foreign key.
func (t journalTx) assignLines(journalID int64, lines []journals.Line) error {
	for i := range lines {
		acc, ok := t.st.accountByID(lines[i].AccountID)
		if !ok {
			return fmt.Errorf("%w: account id %d", shared.ErrAccountNotFound, lines[i].AccountID)
		}
		lines[i].ID = t.st.nextID()
		lines[i].JournalID = journalID
		lines[i].AccountCode = acc.Code
	}
	return nil
}

func (t journalTx) DeleteEntry(ctx context.Context, id int64) error {
	if _, ok := t.st.entries[id]; !ok {
		return shared.ErrJournalNotFound
	}
	delete(t.st.entries, id)
	return nil
}

func (t journalTx) InsertLedgerRows(ctx context.Context, rows []ledger.LegacyRow) error {
	if t.s.syncFail != nil {
		return t.s.syncFail
	}
	t.st.ledger = append(t.st.ledger, rows...)
	return nil
}

func (t journalTx) DeleteLedgerRows(ctx context.Context, entryNumber string) (int64, error) {
	return t.st.deleteLedgerRows(entryNumber), nil
}

func (t journalTx) InsertAudit(ctx context.Context, rec *audit.Record) error {
	rec.ID = t.st.nextID()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = t.s.now()
	}
	t.st.audit = append(t.st.audit, *rec)
	return nil
}

func (st *state) entry(id int64) (journals.Entry, bool) {
	e, ok := st.entries[id]
	if !ok {
		return journals.Entry{}, false
	}
	e.Lines = slices.Clone(e.Lines)
	return e, true
}

func (st *state) byNumber(number string) (journals.Entry, bool) {
	for _, e := range st.entries {
		if e.Number == number {
			e.Lines = slices.Clone(e.Lines)
			return e, true
		}
	}
	return journals.Entry{}, false
}

func (st *state) byLinkage(link journals.Linkage) (journals.Entry, bool) {
	if link.IsZero() {
		return journals.Entry{}, false
	}
	for _, e := range st.sortedEntries() {
		if e.ReversalOf != nil {
			continue
		}
		switch {
		case link.SalaryID != nil:
			if e.SalaryID != nil && *e.SalaryID == *link.SalaryID {
				return e, true
			}
		case link.InvoiceID != nil:
			if e.InvoiceID != nil && *e.InvoiceID == *link.InvoiceID && e.InvoiceType == link.InvoiceType {
				return e, true
			}
		}
	}
	return journals.Entry{}, false
}

func (st *state) deleteLedgerRows(entryNumber string) int64 {
	prefix := ledger.LegacyDescriptionPrefix(entryNumber)
	kept := st.ledger[:0:0]
	var deleted int64
	for _, row := range st.ledger {
		if strings.HasPrefix(row.Description, prefix) {
			deleted++
			continue
		}
		kept = append(kept, row)
	}
	st.ledger = kept
	return deleted
}
