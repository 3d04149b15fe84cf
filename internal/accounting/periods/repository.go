package periods

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/gl-engine/internal/accounting/shared"
	"github.com/odyssey-erp/gl-engine/internal/platform/db"
	platformshared "github.com/odyssey-erp/gl-engine/internal/shared"
)

// Repository exposes fiscal calendar persistence.
type Repository interface {
	ListYears(ctx context.Context) ([]FiscalYear, error)
	GetYear(ctx context.Context, id int64) (FiscalYear, error)
	Calendar(ctx context.Context) (Calendar, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes the administrative writes available within a transaction.
type TxRepository interface {
	ListYears(ctx context.Context) ([]FiscalYear, error)
	LockYear(ctx context.Context, id int64) (FiscalYear, error)
	InsertYear(ctx context.Context, fy *FiscalYear) error
	UpdateYear(ctx context.Context, fy FiscalYear) error
	InsertExceptional(ctx context.Context, p *ExceptionalPeriod) error
	DeleteExceptional(ctx context.Context, id int64) (ExceptionalPeriod, error)
	RecordAudit(ctx context.Context, log platformshared.AuditLog) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const yearColumns = `id, year, start_date, end_date, status, closed_until, closed_at, closed_by, reopened_at, reopened_by, created_at, updated_at`

func (r *repository) ListYears(ctx context.Context) ([]FiscalYear, error) {
	return listYears(ctx, r.db)
}

func (r *repository) GetYear(ctx context.Context, id int64) (FiscalYear, error) {
	return getYear(ctx, r.db, id, false)
}

func (r *repository) Calendar(ctx context.Context) (Calendar, error) {
	return LoadCalendar(ctx, r.db)
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx, audit: platformshared.NewAuditLogger(tx)})
	})
}

// LoadCalendar reads every fiscal year and exceptional period through q, which
// may be a pool or an open transaction.
func LoadCalendar(ctx context.Context, q db.Querier) (Calendar, error) {
	years, err := listYears(ctx, q)
	if err != nil {
		return Calendar{}, err
	}
	rows, err := q.Query(ctx, `SELECT id, fiscal_year_id, start_date, end_date, reason, created_by, created_at
FROM fiscal_year_exceptional_periods ORDER BY start_date`)
	if err != nil {
		return Calendar{}, err
	}
	defer rows.Close()
	var exceptional []ExceptionalPeriod
	for rows.Next() {
		var p ExceptionalPeriod
		if err := rows.Scan(&p.ID, &p.FiscalYearID, &p.StartDate, &p.EndDate, &p.Reason, &p.CreatedBy, &p.CreatedAt); err != nil {
			return Calendar{}, err
		}
		exceptional = append(exceptional, p)
	}
	if err := rows.Err(); err != nil {
		return Calendar{}, err
	}
	return Calendar{Years: years, Exceptional: exceptional}, nil
}

func listYears(ctx context.Context, q db.Querier) ([]FiscalYear, error) {
	rows, err := q.Query(ctx, `SELECT `+yearColumns+` FROM fiscal_years ORDER BY start_date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var years []FiscalYear
	for rows.Next() {
		fy, err := scanYear(rows)
		if err != nil {
			return nil, err
		}
		years = append(years, fy)
	}
	return years, rows.Err()
}

func getYear(ctx context.Context, q db.Querier, id int64, forUpdate bool) (FiscalYear, error) {
	query := `SELECT ` + yearColumns + ` FROM fiscal_years WHERE id=$1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	fy, err := scanYear(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return FiscalYear{}, fmt.Errorf("%w: %d", shared.ErrFiscalYearNotFound, id)
		}
		return FiscalYear{}, err
	}
	return fy, nil
}

func scanYear(row pgx.Row) (FiscalYear, error) {
	var fy FiscalYear
	var status string
	if err := row.Scan(&fy.ID, &fy.Year, &fy.StartDate, &fy.EndDate, &status, &fy.ClosedUntil, &fy.ClosedAt, &fy.ClosedBy, &fy.ReopenedAt, &fy.ReopenedBy, &fy.CreatedAt, &fy.UpdatedAt); err != nil {
		return FiscalYear{}, err
	}
	fy.Status = Status(status)
	return fy, nil
}

type txRepository struct {
	tx    pgx.Tx
	audit *platformshared.AuditLogger
}

func (r *txRepository) ListYears(ctx context.Context) ([]FiscalYear, error) {
	return listYears(ctx, r.tx)
}

func (r *txRepository) LockYear(ctx context.Context, id int64) (FiscalYear, error) {
	return getYear(ctx, r.tx, id, true)
}

func (r *txRepository) InsertYear(ctx context.Context, fy *FiscalYear) error {
	err := r.tx.QueryRow(ctx, `INSERT INTO fiscal_years (year, start_date, end_date, status)
VALUES ($1,$2,$3,$4) RETURNING id, created_at, updated_at`, fy.Year, fy.StartDate, fy.EndDate, string(fy.Status)).
		Scan(&fy.ID, &fy.CreatedAt, &fy.UpdatedAt)
	if db.IsUniqueViolation(err) {
		return fmt.Errorf("%w: year %d", shared.ErrFiscalYearOverlap, fy.Year)
	}
	return err
}

func (r *txRepository) UpdateYear(ctx context.Context, fy FiscalYear) error {
	_, err := r.tx.Exec(ctx, `UPDATE fiscal_years SET status=$2, closed_until=$3, closed_at=$4, closed_by=$5,
reopened_at=$6, reopened_by=$7, updated_at=$8 WHERE id=$1`,
		fy.ID, string(fy.Status), fy.ClosedUntil, fy.ClosedAt, fy.ClosedBy, fy.ReopenedAt, fy.ReopenedBy, time.Now())
	return err
}

func (r *txRepository) InsertExceptional(ctx context.Context, p *ExceptionalPeriod) error {
	return r.tx.QueryRow(ctx, `INSERT INTO fiscal_year_exceptional_periods (fiscal_year_id, start_date, end_date, reason, created_by)
VALUES ($1,$2,$3,$4,$5) RETURNING id, created_at`, p.FiscalYearID, p.StartDate, p.EndDate, p.Reason, p.CreatedBy).
		Scan(&p.ID, &p.CreatedAt)
}

func (r *txRepository) DeleteExceptional(ctx context.Context, id int64) (ExceptionalPeriod, error) {
	var p ExceptionalPeriod
	err := r.tx.QueryRow(ctx, `DELETE FROM fiscal_year_exceptional_periods WHERE id=$1
RETURNING id, fiscal_year_id, start_date, end_date, reason, created_by, created_at`, id).
		Scan(&p.ID, &p.FiscalYearID, &p.StartDate, &p.EndDate, &p.Reason, &p.CreatedBy, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ExceptionalPeriod{}, fmt.Errorf("%w: %d", shared.ErrExceptionalPeriodNotFound, id)
		}
		return ExceptionalPeriod{}, err
	}
	return p, nil
}

func (r *txRepository) RecordAudit(ctx context.Context, log platformshared.AuditLog) error {
	return r.audit.Record(ctx, log)
}
