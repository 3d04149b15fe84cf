package journals

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/odyssey-erp/gl-engine/internal/accounting/accounts"
	"github.com/odyssey-erp/gl-engine/internal/accounting/ledger"
	"github.com/odyssey-erp/gl-engine/internal/accounting/periods"
	"github.com/odyssey-erp/gl-engine/internal/accounting/shared"
	"github.com/odyssey-erp/gl-engine/internal/audit"
	"github.com/odyssey-erp/gl-engine/internal/observability"
)

// Service is the only writer of journal entries. Each mutation commits the
// entry, its lines, the ledger projection and one audit row together or not at all.
type Service struct {
	repo    Repository
	logger  *slog.Logger
	metrics *observability.LedgerMetrics
	monitor *ledger.SyncMonitor
	now     func() time.Time
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *Service) WithMetrics(m *observability.LedgerMetrics) {
	s.metrics = m
}

func (s *Service) WithSyncMonitor(m *ledger.SyncMonitor) {
	s.monitor = m
}

// SyncStatus reports the projection failure streak.
func (s *Service) SyncStatus() ledger.SyncStatus {
	return s.monitor.Snapshot()
}

func (s *Service) Get(ctx context.Context, id int64) (Entry, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Entry, error) {
	return s.repo.List(ctx, filter)
}

// FindByLinkage returns the non-reversal entry linked to the document.
func (s *Service) FindByLinkage(ctx context.Context, link Linkage) (Entry, bool, error) {
	if err := link.Validate(); err != nil {
		return Entry{}, false, err
	}
	return s.repo.FindByLinkage(ctx, link)
}

// Create validates and writes a new entry, posted unless AsDraft is set.
func (s *Service) Create(ctx context.Context, in CreateInput) (Entry, error) {
	if err := in.Linkage.Validate(); err != nil {
		return Entry{}, err
	}
	var entry Entry
	withTx := s.repo.WithTx
	if in.UniqueLinkage && !in.Linkage.IsZero() {
		withTx = s.repo.WithSerializableTx
	}
	err := withTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if in.UniqueLinkage && !in.Linkage.IsZero() {
			if err := tx.LockLinkage(ctx, in.Linkage.LockKey()); err != nil {
				return err
			}
			existing, found, err := tx.FindByLinkage(ctx, in.Linkage)
			if err != nil {
				return err
			}
			if found {
				return fmt.Errorf("%w: %s already booked as %s", shared.ErrSourceAlreadyLinked, in.Linkage.LockKey(), existing.Number)
			}
		}
		created, err := s.insert(ctx, tx, in, "", nil)
		if err != nil {
			return err
		}
		entry = created
		return nil
	})
	s.metrics.ObserveMutation("create", err)
	if err != nil {
		return Entry{}, err
	}
	s.logger.Info("journal created", slog.String("number", entry.Number), slog.String("status", string(entry.Status)),
		slog.String("debit", entry.TotalDebit.StringFixed(2)))
	return entry, nil
}

// Edit replaces the header and lines of a draft.
func (s *Service) Edit(ctx context.Context, id int64, in EditInput) (Entry, error) {
	var entry Entry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if current.Status != StatusDraft {
			return fmt.Errorf("%w: %s", shared.ErrAlreadyPosted, current.Number)
		}
		reg, cal, err := s.load(ctx, tx)
		if err != nil {
			return err
		}
		gate := GateInput{Date: in.Date, FiscalYear: in.FiscalYear, Lines: gateLines(in.Lines)}
		if err := s.check(gate, cal, reg); err != nil {
			return err
		}
		updated := current
		updated.Date = shared.DateOnly(in.Date)
		updated.BranchCode = strings.TrimSpace(in.BranchCode)
		updated.Description = strings.TrimSpace(in.Description)
		updated.Lines = buildLines(in.Lines, updated.Date, current.Linkage, reg)
		updated.TotalDebit, updated.TotalCredit = updated.LineTotals()
		if err := tx.ReplaceLines(ctx, id, updated.Lines); err != nil {
			return err
		}
		if err := tx.UpdateEntry(ctx, updated); err != nil {
			return err
		}
		if err := s.audit(ctx, tx, updated.ID, audit.ActionEdit, in.ActorID, current, updated); err != nil {
			return err
		}
		entry = updated
		return nil
	})
	s.metrics.ObserveMutation("edit", err)
	if err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// Post moves a balanced draft into the ledger.
func (s *Service) Post(ctx context.Context, id, actorID int64) (Entry, error) {
	var entry Entry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if current.Status == StatusPosted {
			return fmt.Errorf("%w: %s", shared.ErrAlreadyPosted, current.Number)
		}
		if !current.Postable() {
			debit, credit := current.LineTotals()
			return fmt.Errorf("%w: debit=%s credit=%s", shared.ErrImbalanced, debit.StringFixed(2), credit.StringFixed(2))
		}
		if err := s.ensureOpen(ctx, tx, current.Date); err != nil {
			return err
		}
		posted := current
		posted.Status = StatusPosted
		posted.TotalDebit, posted.TotalCredit = posted.LineTotals()
		if err := tx.UpdateEntry(ctx, posted); err != nil {
			return err
		}
		if err := s.syncLedger(ctx, tx, posted); err != nil {
			return err
		}
		if err := s.audit(ctx, tx, posted.ID, audit.ActionPost, actorID, current, posted); err != nil {
			return err
		}
		entry = posted
		return nil
	})
	s.metrics.ObserveMutation("post", err)
	if err != nil {
		return Entry{}, err
	}
	s.logger.Info("journal posted", slog.String("number", entry.Number))
	return entry, nil
}

// RevertToDraft takes a posted entry out of the ledger.
func (s *Service) RevertToDraft(ctx context.Context, id, actorID int64) (Entry, error) {
	var entry Entry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if current.Status != StatusPosted {
			return fmt.Errorf("%w: %s", shared.ErrNotPosted, current.Number)
		}
		if err := s.ensureOpen(ctx, tx, current.Date); err != nil {
			return err
		}
		if _, err := tx.DeleteLedgerRows(ctx, current.Number); err != nil {
			return err
		}
		draft := current
		draft.Status = StatusDraft
		if err := tx.UpdateEntry(ctx, draft); err != nil {
			return err
		}
		if err := s.audit(ctx, tx, draft.ID, audit.ActionRevertToDraft, actorID, current, draft); err != nil {
			return err
		}
		entry = draft
		return nil
	})
	s.metrics.ObserveMutation("revert", err)
	if err != nil {
		return Entry{}, err
	}
	s.logger.Info("journal reverted to draft", slog.String("number", entry.Number))
	return entry, nil
}

// Reverse posts the mirror image of a posted entry under JE-REV-<number>.
func (s *Service) Reverse(ctx context.Context, id, actorID int64) (Entry, error) {
	var entry Entry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		original, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if original.Status != StatusPosted {
			return fmt.Errorf("%w: %s", shared.ErrNotPosted, original.Number)
		}
		number := ReversalNumber(original.Number)
		if _, exists, err := tx.FindByNumber(ctx, number); err != nil {
			return err
		} else if exists {
			return fmt.Errorf("%w: %s", shared.ErrReversalExists, number)
		}
		in := CreateInput{
			Date:        original.Date,
			BranchCode:  original.BranchCode,
			Description: reversalDescription + " " + original.Number,
			Lines:       reversedLines(original.Lines),
			Kind:        KindReversal,
			ActorID:     actorID,
		}
		reversal, err := s.insert(ctx, tx, in, number, &original.ID)
		if err != nil {
			return err
		}
		entry = reversal
		return nil
	})
	s.metrics.ObserveMutation("reverse", err)
	if err != nil {
		return Entry{}, err
	}
	s.logger.Info("journal reversed", slog.String("number", entry.Number))
	return entry, nil
}

// Delete removes a draft. Posted entries must be reverted or reversed first.
func (s *Service) Delete(ctx context.Context, id, actorID int64) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if current.Status == StatusPosted {
			return fmt.Errorf("%w: %s", shared.ErrCannotDeletePosted, current.Number)
		}
		if err := s.ensureOpen(ctx, tx, current.Date); err != nil {
			return err
		}
		if _, err := tx.DeleteLedgerRows(ctx, current.Number); err != nil {
			return err
		}
		if err := tx.DeleteEntry(ctx, current.ID); err != nil {
			return err
		}
		return s.audit(ctx, tx, current.ID, audit.ActionDelete, actorID, current, nil)
	})
	s.metrics.ObserveMutation("delete", err)
	return err
}

// MarkPrinted records that the entry was printed.
func (s *Service) MarkPrinted(ctx context.Context, id, actorID int64) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		return s.audit(ctx, tx, current.ID, audit.ActionPrint, actorID, nil, map[string]string{"entry_number": current.Number})
	})
	s.metrics.ObserveMutation("print", err)
	return err
}

func (s *Service) insert(ctx context.Context, tx TxRepository, in CreateInput, number string, reversalOf *int64) (Entry, error) {
	reg, cal, err := s.load(ctx, tx)
	if err != nil {
		return Entry{}, err
	}
	gate := GateInput{Date: in.Date, FiscalYear: in.FiscalYear, Lines: gateLines(in.Lines), AllowNoFiscalYear: in.AllowNoFiscalYear}
	if err := s.check(gate, cal, reg); err != nil {
		return Entry{}, err
	}
	date := shared.DateOnly(in.Date)
	entry := Entry{
		Date:        date,
		BranchCode:  strings.TrimSpace(in.BranchCode),
		Description: strings.TrimSpace(in.Description),
		Status:      StatusPosted,
		Linkage:     in.Linkage,
		ReversalOf:  reversalOf,
		CreatedBy:   actorRef(in.ActorID),
		Lines:       buildLines(in.Lines, date, in.Linkage, reg),
	}
	if in.AsDraft {
		entry.Status = StatusDraft
	}
	entry.TotalDebit, entry.TotalCredit = entry.LineTotals()
	if entry.Status == StatusPosted && shared.Round2(entry.TotalDebit).IsZero() {
		return Entry{}, fmt.Errorf("%w: posted entry has zero total", shared.ErrImbalanced)
	}
	if number == "" {
		number, err = allocateNumber(ctx, tx, BaseNumber(in.Kind, in.SourceRef, date))
		if err != nil {
			return Entry{}, err
		}
	}
	entry.Number = number
	if err := tx.InsertEntry(ctx, &entry); err != nil {
		return Entry{}, err
	}
	if entry.Status == StatusPosted {
		if err := s.syncLedger(ctx, tx, entry); err != nil {
			return Entry{}, err
		}
	}
	if err := s.audit(ctx, tx, entry.ID, audit.ActionCreate, in.ActorID, nil, entry); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

func (s *Service) load(ctx context.Context, tx TxRepository) (*accounts.Registry, periods.Calendar, error) {
	cal, err := tx.Calendar(ctx)
	if err != nil {
		return nil, periods.Calendar{}, err
	}
	accs, err := tx.Accounts(ctx)
	if err != nil {
		return nil, periods.Calendar{}, err
	}
	return accounts.NewRegistry(accs, nil), cal, nil
}

func (s *Service) check(in GateInput, cal periods.Calendar, src AccountSource) error {
	violations := ValidateGates(in, cal, src)
	if len(violations) == 0 {
		return nil
	}
	s.metrics.ObserveViolations(gateCodes(violations))
	verr := shared.NewValidationError(violations)
	s.logger.Warn("journal rejected", slog.String("date", shared.DateOnly(in.Date).Format(shared.DateLayout)),
		slog.Int("violations", len(violations)), slog.Any("error", verr))
	return verr
}

func (s *Service) ensureOpen(ctx context.Context, tx TxRepository, date time.Time) error {
	cal, err := tx.Calendar(ctx)
	if err != nil {
		return err
	}
	if open, reason := cal.IsPeriodOpenForDate(date); !open {
		return fmt.Errorf("%w: %s", shared.ErrFiscalPeriodClosed, reason)
	}
	return nil
}

// syncLedger writes the projection rows of a posted entry. A failure aborts
// the surrounding transaction.
func (s *Service) syncLedger(ctx context.Context, tx TxRepository, entry Entry) error {
	rows := ledger.LegacyRows(postedLines(entry))
	if err := tx.InsertLedgerRows(ctx, rows); err != nil {
		alert := s.monitor.RecordFailure(s.now(), err)
		s.metrics.ObserveSyncFailure(alert)
		level := slog.LevelWarn
		if alert {
			level = slog.LevelError
		}
		s.logger.Log(ctx, level, "ledger sync failed", slog.String("number", entry.Number),
			slog.Bool("alert", alert), slog.Any("error", err))
		return fmt.Errorf("accounting: ledger sync for %s: %w", entry.Number, err)
	}
	s.monitor.RecordSuccess()
	return nil
}

func (s *Service) audit(ctx context.Context, tx TxRepository, journalID int64, action audit.Action, actorID int64, before, after any) error {
	rec, err := audit.NewRecord(journalID, action, actorRef(actorID), before, after, s.now())
	if err != nil {
		return err
	}
	return tx.InsertAudit(ctx, &rec)
}

func allocateNumber(ctx context.Context, tx TxRepository, base string) (string, error) {
	for attempt := 1; attempt <= maxNumberAttempts; attempt++ {
		candidate := CandidateNumber(base, attempt)
		exists, err := tx.NumberExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %s", shared.ErrNumberExhausted, base)
}

func buildLines(inputs []LineInput, date time.Time, link Linkage, reg *accounts.Registry) []Line {
	lines := make([]Line, 0, len(inputs))
	for i, in := range inputs {
		code := strings.TrimSpace(in.AccountCode)
		acc, _ := reg.Lookup(code)
		line := Line{
			LineNo:         i + 1,
			AccountID:      acc.ID,
			AccountCode:    code,
			Debit:          in.Debit,
			Credit:         in.Credit,
			Description:    strings.TrimSpace(in.Description),
			LineDate:       date,
			EmployeeID:     in.EmployeeID,
			CostCenter:     in.CostCenter,
			InvoiceID:      link.InvoiceID,
			InvoiceType:    link.InvoiceType,
			AttachmentPath: in.AttachmentPath,
		}
		if in.LineDate != nil {
			line.LineDate = shared.DateOnly(*in.LineDate)
		}
		lines = append(lines, line)
	}
	return lines
}

func reversedLines(lines []Line) []LineInput {
	out := make([]LineInput, 0, len(lines))
	for _, l := range lines {
		lineDate := l.LineDate
		out = append(out, LineInput{
			AccountCode:    l.AccountCode,
			Debit:          l.Credit,
			Credit:         l.Debit,
			Description:    strings.TrimSpace(reversalDescription + " " + l.Description),
			LineDate:       &lineDate,
			EmployeeID:     l.EmployeeID,
			CostCenter:     l.CostCenter,
			AttachmentPath: l.AttachmentPath,
		})
	}
	return out
}

func postedLines(entry Entry) []ledger.PostedLine {
	out := make([]ledger.PostedLine, 0, len(entry.Lines))
	for _, l := range entry.Lines {
		out = append(out, ledger.PostedLine{
			JournalID:   entry.ID,
			EntryNumber: entry.Number,
			LineNo:      l.LineNo,
			AccountID:   l.AccountID,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Description: l.Description,
			LineDate:    l.LineDate,
		})
	}
	return out
}

func actorRef(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}
