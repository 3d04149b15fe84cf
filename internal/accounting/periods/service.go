package periods

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/odyssey-erp/gl-engine/internal/accounting/shared"
	platformshared "github.com/odyssey-erp/gl-engine/internal/shared"
)

// MinReasonLength is the shortest accepted override or reopen reason.
const MinReasonLength = 20

const auditEntity = "fiscal_year"

// ClosureAuditor produces the integrity snapshot consulted before closing a range.
type ClosureAuditor interface {
	ClosureSnapshot(ctx context.Context, fy FiscalYear, from, to time.Time) (AuditSnapshot, error)
}

// Service administers fiscal years and answers calendar queries.
type Service struct {
	repo    Repository
	auditor ClosureAuditor
	logger  *slog.Logger
	now     func() time.Time
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// WithAuditor sets the integrity snapshot source used by closes.
func (s *Service) WithAuditor(a ClosureAuditor) {
	s.auditor = a
}

// WithNow overrides the clock.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// CreateYearInput describes a new fiscal year.
type CreateYearInput struct {
	Year      int
	StartDate time.Time
	EndDate   time.Time
	ActorID   int64
}

// CloseInput carries the actor and the optional override reason.
type CloseInput struct {
	Reason  string
	ActorID int64
}

// ExceptionalInput describes a whitelisted posting window.
type ExceptionalInput struct {
	StartDate time.Time
	EndDate   time.Time
	Reason    string
	ActorID   int64
}

func (s *Service) ListYears(ctx context.Context) ([]FiscalYear, error) {
	return s.repo.ListYears(ctx)
}

func (s *Service) GetYear(ctx context.Context, id int64) (FiscalYear, error) {
	return s.repo.GetYear(ctx, id)
}

// Calendar loads the current calendar snapshot.
func (s *Service) Calendar(ctx context.Context) (Calendar, error) {
	return s.repo.Calendar(ctx)
}

// IsPeriodOpenForDate loads the calendar and evaluates d.
func (s *Service) IsPeriodOpenForDate(ctx context.Context, d time.Time) (bool, string, error) {
	cal, err := s.repo.Calendar(ctx)
	if err != nil {
		return false, "", err
	}
	ok, reason := cal.IsPeriodOpenForDate(d)
	return ok, reason, nil
}

// CreateYear registers a new open fiscal year.
func (s *Service) CreateYear(ctx context.Context, in CreateYearInput) (FiscalYear, error) {
	start, end := shared.DateOnly(in.StartDate), shared.DateOnly(in.EndDate)
	if in.Year <= 0 || !start.Before(end) {
		return FiscalYear{}, shared.ErrInvalidDateRange
	}
	fy := FiscalYear{Year: in.Year, StartDate: start, EndDate: end, Status: StatusOpen}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		existing, err := tx.ListYears(ctx)
		if err != nil {
			return err
		}
		for _, other := range existing {
			if other.Year == in.Year || other.Overlaps(start, end) {
				return fmt.Errorf("%w: conflicts with %d", shared.ErrFiscalYearOverlap, other.Year)
			}
		}
		if err := tx.InsertYear(ctx, &fy); err != nil {
			return err
		}
		return tx.RecordAudit(ctx, s.auditLog(in.ActorID, "create", fy, map[string]any{
			"start_date": start.Format(shared.DateLayout),
			"end_date":   end.Format(shared.DateLayout),
		}))
	})
	if err != nil {
		return FiscalYear{}, err
	}
	s.logger.Info("fiscal year created", slog.Int("fiscal_year", fy.Year))
	return fy, nil
}

// Close fully closes a fiscal year after consulting an integrity snapshot.
func (s *Service) Close(ctx context.Context, id int64, in CloseInput) (FiscalYear, error) {
	return s.close(ctx, id, nil, in)
}

// PartialClose blocks postings up to and including until.
func (s *Service) PartialClose(ctx context.Context, id int64, until time.Time, in CloseInput) (FiscalYear, error) {
	until = shared.DateOnly(until)
	return s.close(ctx, id, &until, in)
}

func (s *Service) close(ctx context.Context, id int64, until *time.Time, in CloseInput) (FiscalYear, error) {
	if s.auditor == nil {
		return FiscalYear{}, errors.New("periods: closure auditor not configured")
	}
	current, err := s.repo.GetYear(ctx, id)
	if err != nil {
		return FiscalYear{}, err
	}
	target := StatusClosed
	to := current.EndDate
	if until != nil {
		if !current.Contains(*until) {
			return FiscalYear{}, fmt.Errorf("%w: closed_until outside fiscal year", shared.ErrInvalidDateRange)
		}
		target, to = StatusPartial, *until
	}
	if err := platformshared.ValidatePeriodTransition(string(current.Status), string(target), validReason(in.Reason)); err != nil {
		return FiscalYear{}, fmt.Errorf("%w: %s -> %s", shared.ErrInvalidStatus, current.Status, target)
	}
	// The scan runs outside the transaction and the status is re-checked under the row lock.
	snapshot, err := s.auditor.ClosureSnapshot(ctx, current, current.StartDate, to)
	if err != nil {
		return FiscalYear{}, fmt.Errorf("periods: integrity snapshot: %w", err)
	}
	var result FiscalYear
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		fy, err := tx.LockYear(ctx, id)
		if err != nil {
			return err
		}
		if fy.Status != current.Status {
			return fmt.Errorf("%w: fiscal year %d changed to %s", shared.ErrInvalidStatus, fy.Year, fy.Status)
		}
		action := "close"
		if snapshot.Summary.High > 0 {
			if !validReason(in.Reason) {
				return fmt.Errorf("%w: %d high severity findings", shared.ErrCriticalFindings, snapshot.Summary.High)
			}
			action = "close_override"
		}
		now := s.now()
		fy.Status = target
		fy.ClosedUntil = until
		fy.ClosedAt = &now
		fy.ClosedBy = actorPtr(in.ActorID)
		if err := tx.UpdateYear(ctx, fy); err != nil {
			return err
		}
		meta := map[string]any{
			"run_id":   snapshot.RunID,
			"findings": snapshot.Summary,
			"status":   string(target),
		}
		if until != nil {
			meta["closed_until"] = until.Format(shared.DateLayout)
		}
		if action == "close_override" {
			meta["reason"] = strings.TrimSpace(in.Reason)
		}
		result = fy
		return tx.RecordAudit(ctx, s.auditLog(in.ActorID, action, fy, meta))
	})
	if err != nil {
		return FiscalYear{}, err
	}
	s.logger.Info("fiscal year closed", slog.Int("fiscal_year", result.Year), slog.String("status", string(result.Status)))
	return result, nil
}

// Lock freezes a fiscal year.
func (s *Service) Lock(ctx context.Context, id int64, actorID int64) (FiscalYear, error) {
	var result FiscalYear
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		fy, err := tx.LockYear(ctx, id)
		if err != nil {
			return err
		}
		if err := platformshared.ValidatePeriodTransition(string(fy.Status), string(StatusLocked), false); err != nil {
			return fmt.Errorf("%w: %s -> %s", shared.ErrInvalidStatus, fy.Status, StatusLocked)
		}
		fy.Status = StatusLocked
		if err := tx.UpdateYear(ctx, fy); err != nil {
			return err
		}
		result = fy
		return tx.RecordAudit(ctx, s.auditLog(actorID, "lock", fy, nil))
	})
	if err != nil {
		return FiscalYear{}, err
	}
	s.logger.Info("fiscal year locked", slog.Int("fiscal_year", result.Year))
	return result, nil
}

// Reopen returns a closed, partial or locked year to open.
func (s *Service) Reopen(ctx context.Context, id int64, in CloseInput) (FiscalYear, error) {
	if !validReason(in.Reason) {
		return FiscalYear{}, fmt.Errorf("%w: at least %d characters", shared.ErrReasonRequired, MinReasonLength)
	}
	var result FiscalYear
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		fy, err := tx.LockYear(ctx, id)
		if err != nil {
			return err
		}
		if fy.Status == StatusOpen {
			return fmt.Errorf("%w: fiscal year %d is already open", shared.ErrInvalidStatus, fy.Year)
		}
		if err := platformshared.ValidatePeriodTransition(string(fy.Status), string(StatusOpen), true); err != nil {
			return fmt.Errorf("%w: %s -> %s", shared.ErrInvalidStatus, fy.Status, StatusOpen)
		}
		previous := fy.Status
		now := s.now()
		fy.Status = StatusOpen
		fy.ClosedUntil = nil
		fy.ReopenedAt = &now
		fy.ReopenedBy = actorPtr(in.ActorID)
		if err := tx.UpdateYear(ctx, fy); err != nil {
			return err
		}
		result = fy
		return tx.RecordAudit(ctx, s.auditLog(in.ActorID, "reopen", fy, map[string]any{
			"previous_status": string(previous),
			"reason":          strings.TrimSpace(in.Reason),
		}))
	})
	if err != nil {
		return FiscalYear{}, err
	}
	s.logger.Info("fiscal year reopened", slog.Int("fiscal_year", result.Year))
	if s.auditor != nil {
		if _, err := s.auditor.ClosureSnapshot(ctx, result, result.StartDate, result.EndDate); err != nil {
			s.logger.Warn("post-reopen snapshot failed", slog.Int("fiscal_year", result.Year), slog.Any("error", err))
		}
	}
	return result, nil
}

// AddExceptionalPeriod whitelists a window inside the fiscal year.
func (s *Service) AddExceptionalPeriod(ctx context.Context, fiscalYearID int64, in ExceptionalInput) (ExceptionalPeriod, error) {
	start, end := shared.DateOnly(in.StartDate), shared.DateOnly(in.EndDate)
	if end.Before(start) {
		return ExceptionalPeriod{}, shared.ErrInvalidDateRange
	}
	if strings.TrimSpace(in.Reason) == "" {
		return ExceptionalPeriod{}, shared.ErrReasonRequired
	}
	p := ExceptionalPeriod{
		FiscalYearID: fiscalYearID,
		StartDate:    start,
		EndDate:      end,
		Reason:       strings.TrimSpace(in.Reason),
		CreatedBy:    actorPtr(in.ActorID),
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		fy, err := tx.LockYear(ctx, fiscalYearID)
		if err != nil {
			return err
		}
		if !fy.Contains(start) || !fy.Contains(end) {
			return fmt.Errorf("%w: exceptional period outside fiscal year", shared.ErrInvalidDateRange)
		}
		if err := tx.InsertExceptional(ctx, &p); err != nil {
			return err
		}
		return tx.RecordAudit(ctx, s.auditLog(in.ActorID, "exceptional_period_add", fy, map[string]any{
			"period_id":  p.ID,
			"start_date": start.Format(shared.DateLayout),
			"end_date":   end.Format(shared.DateLayout),
			"reason":     p.Reason,
		}))
	})
	if err != nil {
		return ExceptionalPeriod{}, err
	}
	s.logger.Info("exceptional period added", slog.Int64("fiscal_year_id", fiscalYearID), slog.Int64("period_id", p.ID))
	return p, nil
}

// RemoveExceptionalPeriod deletes a whitelisted window.
func (s *Service) RemoveExceptionalPeriod(ctx context.Context, id int64, actorID int64) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		p, err := tx.DeleteExceptional(ctx, id)
		if err != nil {
			return err
		}
		return tx.RecordAudit(ctx, platformshared.AuditLog{
			ActorID:  actorID,
			Action:   "exceptional_period_remove",
			Entity:   auditEntity,
			EntityID: strconv.FormatInt(p.FiscalYearID, 10),
			Meta:     map[string]any{"period_id": p.ID},
			At:       s.now(),
		})
	})
}

func (s *Service) auditLog(actorID int64, action string, fy FiscalYear, meta map[string]any) platformshared.AuditLog {
	if meta == nil {
		meta = map[string]any{}
	}
	meta["year"] = fy.Year
	return platformshared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   auditEntity,
		EntityID: strconv.FormatInt(fy.ID, 10),
		Meta:     meta,
		At:       s.now(),
	}
}

func validReason(reason string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(reason)) >= MinReasonLength
}

func actorPtr(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}
