package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/gl-engine/internal/accounting/accounts"
	"github.com/odyssey-erp/gl-engine/internal/accounting/shared"
	"github.com/odyssey-erp/gl-engine/internal/platform/db"
)

// Repository aggregates posted journal lines. Every query filters on posted
// entries and line_date.
type Repository interface {
	DebitCredit(ctx context.Context, accountID int64, asOf time.Time) (Totals, error)
	AccountByCode(ctx context.Context, code string) (accounts.Account, error)
	SumByCodes(ctx context.Context, codes []string, start, end time.Time) (Totals, error)
	TrialBalance(ctx context.Context, asOf time.Time) ([]TrialBalanceRow, error)
	PeriodActivity(ctx context.Context, start, end time.Time) ([]TrialBalanceRow, error)
	ProjectionTotals(ctx context.Context) (map[int64]Totals, error)
	JournalTotals(ctx context.Context) (map[int64]Totals, error)
	WithTx(ctx context.Context, fn func(context.Context, ProjectionTx) error) error
}

// ProjectionTx rewrites the ledger_entries projection inside one transaction.
type ProjectionTx interface {
	ClearProjection(ctx context.Context) (int64, error)
	PostedLines(ctx context.Context) ([]PostedLine, error)
	InsertLegacyRows(ctx context.Context, rows []LegacyRow) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const postedLines = `journal_lines l JOIN journal_entries e ON e.id = l.journal_id AND e.status = 'posted'`

func (r *repository) DebitCredit(ctx context.Context, accountID int64, asOf time.Time) (Totals, error) {
	var t Totals
	err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(l.debit),0), COALESCE(SUM(l.credit),0)
FROM `+postedLines+` WHERE l.account_id=$1 AND l.line_date <= $2`, accountID, asOf).Scan(&t.Debit, &t.Credit)
	return t, err
}

func (r *repository) AccountByCode(ctx context.Context, code string) (accounts.Account, error) {
	var a accounts.Account
	var typ string
	err := r.db.QueryRow(ctx, `SELECT id, code, name, type FROM accounts WHERE code=$1`, code).Scan(&a.ID, &a.Code, &a.Name, &typ)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return accounts.Account{}, fmt.Errorf("%w: %s", shared.ErrAccountNotFound, code)
		}
		return accounts.Account{}, err
	}
	a.Type = accounts.AccountType(typ)
	return a, nil
}

func (r *repository) SumByCodes(ctx context.Context, codes []string, start, end time.Time) (Totals, error) {
	var t Totals
	err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(l.debit),0), COALESCE(SUM(l.credit),0)
FROM `+postedLines+` JOIN accounts a ON a.id = l.account_id
WHERE a.code = ANY($1) AND l.line_date BETWEEN $2 AND $3`, codes, start, end).Scan(&t.Debit, &t.Credit)
	return t, err
}

func (r *repository) TrialBalance(ctx context.Context, asOf time.Time) ([]TrialBalanceRow, error) {
	return r.accountTotals(ctx, `l.line_date <= $1`, asOf)
}

func (r *repository) PeriodActivity(ctx context.Context, start, end time.Time) ([]TrialBalanceRow, error) {
	return r.accountTotals(ctx, `l.line_date BETWEEN $1 AND $2`, start, end)
}

func (r *repository) accountTotals(ctx context.Context, cond string, args ...any) ([]TrialBalanceRow, error) {
	rows, err := r.db.Query(ctx, `SELECT a.id, a.code, a.name, a.type, COALESCE(t.debit,0), COALESCE(t.credit,0)
FROM accounts a LEFT JOIN (
	SELECT l.account_id, SUM(l.debit) AS debit, SUM(l.credit) AS credit
	FROM `+postedLines+` WHERE `+cond+` GROUP BY l.account_id
) t ON t.account_id = a.id
ORDER BY a.code`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []TrialBalanceRow
	for rows.Next() {
		var row TrialBalanceRow
		var typ string
		if err := rows.Scan(&row.AccountID, &row.Code, &row.Name, &typ, &row.Debit, &row.Credit); err != nil {
			return nil, err
		}
		row.Type = accounts.AccountType(typ)
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *repository) ProjectionTotals(ctx context.Context) (map[int64]Totals, error) {
	return groupTotals(ctx, r.db, `SELECT account_id, SUM(debit), SUM(credit) FROM ledger_entries GROUP BY account_id`)
}

func (r *repository) JournalTotals(ctx context.Context) (map[int64]Totals, error) {
	return groupTotals(ctx, r.db, `SELECT l.account_id, SUM(l.debit), SUM(l.credit) FROM `+postedLines+` GROUP BY l.account_id`)
}

func groupTotals(ctx context.Context, q db.Querier, query string) (map[int64]Totals, error) {
	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[int64]Totals)
	for rows.Next() {
		var id int64
		var t Totals
		if err := rows.Scan(&id, &t.Debit, &t.Credit); err != nil {
			return nil, err
		}
		out[id] = t
	}
	return out, rows.Err()
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, ProjectionTx) error) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, &projectionTx{tx: tx})
	})
}

type projectionTx struct {
	tx pgx.Tx
}

func (p *projectionTx) ClearProjection(ctx context.Context) (int64, error) {
	tag, err := p.tx.Exec(ctx, `DELETE FROM ledger_entries`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (p *projectionTx) PostedLines(ctx context.Context) ([]PostedLine, error) {
	rows, err := p.tx.Query(ctx, `SELECT e.id, e.entry_number, l.line_no, l.account_id, l.debit, l.credit, COALESCE(l.description,''), l.line_date
FROM `+postedLines+` ORDER BY e.id, l.line_no`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []PostedLine
	for rows.Next() {
		var l PostedLine
		if err := rows.Scan(&l.JournalID, &l.EntryNumber, &l.LineNo, &l.AccountID, &l.Debit, &l.Credit, &l.Description, &l.LineDate); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (p *projectionTx) InsertLegacyRows(ctx context.Context, rows []LegacyRow) error {
	return InsertLegacyRows(ctx, p.tx, rows)
}

// InsertLegacyRows writes projection rows through tx in one batch.
func InsertLegacyRows(ctx context.Context, tx pgx.Tx, rows []LegacyRow) error {
	if len(rows) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(`INSERT INTO ledger_entries (date, account_id, debit, credit, description) VALUES ($1,$2,$3,$4,$5)`,
			row.Date, row.AccountID, row.Debit, row.Credit, row.Description)
	}
	return tx.SendBatch(ctx, batch).Close()
}

// DeleteLegacyRows removes the projection rows of one entry.
func DeleteLegacyRows(ctx context.Context, q db.Querier, entryNumber string) (int64, error) {
	prefix := LegacyDescriptionPrefix(entryNumber)
	tag, err := q.Exec(ctx, `DELETE FROM ledger_entries WHERE left(description, $2) = $1`, prefix, len([]rune(prefix)))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

