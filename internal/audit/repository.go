package audit

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/gl-engine/internal/platform/db"
)

// Repository menyediakan akses baca ke journal_audit.
type Repository interface {
	ListForJournal(ctx context.Context, journalID int64) ([]Record, error)
	TimelineWindow(ctx context.Context, filters TimelineFilters, offset, limit int) ([]TimelineRow, error)
	TimelineAll(ctx context.Context, filters TimelineFilters) ([]TimelineRow, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

// Insert appends rec through q, normally the transaction of the mutation it describes.
func Insert(ctx context.Context, q db.Querier, rec *Record) error {
	return q.QueryRow(ctx, `INSERT INTO journal_audit (journal_id, action, user_id, before_json, after_json, created_at)
VALUES ($1,$2,$3,$4,$5,COALESCE($6, NOW())) RETURNING id, created_at`,
		rec.JournalID, string(rec.Action), rec.UserID, nullJSON(rec.Before), nullJSON(rec.After), nullTime(rec)).
		Scan(&rec.ID, &rec.CreatedAt)
}

func (r *repository) ListForJournal(ctx context.Context, journalID int64) ([]Record, error) {
	rows, err := r.db.Query(ctx, `SELECT id, journal_id, action, user_id, before_json, after_json, created_at
FROM journal_audit WHERE journal_id=$1 ORDER BY created_at, id`, journalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Record
	for rows.Next() {
		var rec Record
		var action string
		var before, after []byte
		if err := rows.Scan(&rec.ID, &rec.JournalID, &action, &rec.UserID, &before, &after, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Action = Action(action)
		rec.Before, rec.After = before, after
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *repository) TimelineWindow(ctx context.Context, filters TimelineFilters, offset, limit int) ([]TimelineRow, error) {
	query, args := timelineQuery(filters)
	args = append(args, offset, limit)
	query += ` OFFSET $` + itoa(len(args)-1) + ` LIMIT $` + itoa(len(args))
	return r.scanTimeline(ctx, query, args...)
}

func (r *repository) TimelineAll(ctx context.Context, filters TimelineFilters) ([]TimelineRow, error) {
	query, args := timelineQuery(filters)
	return r.scanTimeline(ctx, query, args...)
}

func (r *repository) scanTimeline(ctx context.Context, query string, args ...any) ([]TimelineRow, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []TimelineRow
	for rows.Next() {
		var row TimelineRow
		var action string
		if err := rows.Scan(&row.At, &row.UserID, &action, &row.JournalID, &row.EntryNumber); err != nil {
			return nil, err
		}
		row.Action = Action(action)
		out = append(out, row)
	}
	return out, rows.Err()
}

func timelineQuery(f TimelineFilters) (string, []any) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, strings.ReplaceAll(cond, "?", "$"+itoa(len(args))))
	}
	if !f.From.IsZero() {
		add("a.created_at >= ?", f.From)
	}
	if !f.To.IsZero() {
		add("a.created_at < ? + INTERVAL '1 day'", f.To)
	}
	if f.JournalID > 0 {
		add("a.journal_id = ?", f.JournalID)
	}
	if f.UserID > 0 {
		add("a.user_id = ?", f.UserID)
	}
	if a := strings.TrimSpace(f.Action); a != "" {
		add("a.action = ?", a)
	}
	query := `SELECT a.created_at, a.user_id, a.action, a.journal_id, COALESCE(j.entry_number, '')
FROM journal_audit a LEFT JOIN journal_entries j ON j.id = a.journal_id`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	return query + " ORDER BY a.created_at DESC, a.id DESC", args
}
