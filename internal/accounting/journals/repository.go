package journals

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/gl-engine/internal/accounting/accounts"
	"github.com/odyssey-erp/gl-engine/internal/accounting/ledger"
	"github.com/odyssey-erp/gl-engine/internal/accounting/periods"
	"github.com/odyssey-erp/gl-engine/internal/accounting/shared"
	"github.com/odyssey-erp/gl-engine/internal/audit"
	"github.com/odyssey-erp/gl-engine/internal/platform/db"
)

// Repository exposes journal persistence.
type Repository interface {
	Get(ctx context.Context, id int64) (Entry, error)
	List(ctx context.Context, filter ListFilter) ([]Entry, error)
	FindByLinkage(ctx context.Context, link Linkage) (Entry, bool, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	// WithSerializableTx runs fn in a transaction whose reads cannot miss rows
	// committed by a concurrent writer of the same source document.
	WithSerializableTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes the reads and writes of one journal mutation. Every
// call shares the same transaction.
type TxRepository interface {
	Calendar(ctx context.Context) (periods.Calendar, error)
	Accounts(ctx context.Context) ([]accounts.Account, error)
	NumberExists(ctx context.Context, number string) (bool, error)
	LockLinkage(ctx context.Context, key string) error
	FindByLinkage(ctx context.Context, link Linkage) (Entry, bool, error)
	FindByNumber(ctx context.Context, number string) (Entry, bool, error)
	GetForUpdate(ctx context.Context, id int64) (Entry, error)
	InsertEntry(ctx context.Context, entry *Entry) error
	UpdateEntry(ctx context.Context, entry Entry) error
	ReplaceLines(ctx context.Context, journalID int64, lines []Line) error
	DeleteEntry(ctx context.Context, id int64) error
	InsertLedgerRows(ctx context.Context, rows []ledger.LegacyRow) error
	DeleteLedgerRows(ctx context.Context, entryNumber string) (int64, error)
	InsertAudit(ctx context.Context, rec *audit.Record) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const entryColumns = `e.id, e.entry_number, e.date, COALESCE(e.branch_code,''), COALESCE(e.description,''), e.status,
e.total_debit, e.total_credit, e.invoice_id, COALESCE(e.invoice_type,''), e.salary_id, e.reversal_of, e.created_by,
e.created_at, e.updated_at`

const lineColumns = `l.id, l.journal_id, l.line_no, l.account_id, a.code, l.debit, l.credit, COALESCE(l.description,''),
l.line_date, l.employee_id, COALESCE(l.cost_center,''), l.invoice_id, COALESCE(l.invoice_type,''), COALESCE(l.attachment_path,'')`

func (r *repository) Get(ctx context.Context, id int64) (Entry, error) {
	return getEntry(ctx, r.db, `e.id=$1`, false, id)
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Entry, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if filter.Status != "" {
		where = append(where, "e.status = "+arg(string(filter.Status)))
	}
	if !filter.From.IsZero() {
		where = append(where, "e.date >= "+arg(filter.From))
	}
	if !filter.To.IsZero() {
		where = append(where, "e.date <= "+arg(filter.To))
	}
	if filter.BranchCode != "" {
		where = append(where, "e.branch_code = "+arg(filter.BranchCode))
	}
	query := `SELECT ` + entryColumns + ` FROM journal_entries e`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY e.date DESC, e.id DESC`
	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query += ` LIMIT ` + arg(limit) + ` OFFSET ` + arg(max(filter.Offset, 0))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *repository) FindByLinkage(ctx context.Context, link Linkage) (Entry, bool, error) {
	return findByLinkage(ctx, r.db, link)
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

// WithSerializableTx runs at SERIALIZABLE. The snapshot is taken before the
// linkage lock is granted, so a repeatable-read recheck could miss the row a
// concurrent writer just committed; serializable aborts that transaction with
// 40001 instead and the retry sees the committed entry.
func (r *repository) WithSerializableTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTxIsolation(ctx, r.db, pgx.Serializable, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

func (t *txRepository) Calendar(ctx context.Context) (periods.Calendar, error) {
	return periods.LoadCalendar(ctx, t.tx)
}

func (t *txRepository) Accounts(ctx context.Context) ([]accounts.Account, error) {
	return accounts.ListAll(ctx, t.tx)
}

func (t *txRepository) NumberExists(ctx context.Context, number string) (bool, error) {
	var exists bool
	err := t.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM journal_entries WHERE entry_number=$1)`, number).Scan(&exists)
	return exists, err
}

// LockLinkage queues writers of the same source document behind each other
// until commit. It does not refresh the transaction snapshot.
func (t *txRepository) LockLinkage(ctx context.Context, key string) error {
	_, err := t.tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key)
	return err
}

func (t *txRepository) FindByLinkage(ctx context.Context, link Linkage) (Entry, bool, error) {
	return findByLinkage(ctx, t.tx, link)
}

func (t *txRepository) FindByNumber(ctx context.Context, number string) (Entry, bool, error) {
	e, err := getEntry(ctx, t.tx, `e.entry_number=$1`, false, number)
	if err != nil {
		if errors.Is(err, shared.ErrJournalNotFound) {
			return Entry{}, false, nil
		}
		return Entry{}, false, err
	}
	return e, true, nil
}

func (t *txRepository) GetForUpdate(ctx context.Context, id int64) (Entry, error) {
	return getEntry(ctx, t.tx, `e.id=$1`, true, id)
}

func (t *txRepository) InsertEntry(ctx context.Context, entry *Entry) error {
	err := t.tx.QueryRow(ctx, `INSERT INTO journal_entries (entry_number, date, branch_code, description, status,
total_debit, total_credit, invoice_id, invoice_type, salary_id, reversal_of, created_by)
VALUES ($1,$2,NULLIF($3,''),$4,$5,$6,$7,$8,NULLIF($9,''),$10,$11,$12) RETURNING id, created_at, updated_at`,
		entry.Number, entry.Date, entry.BranchCode, entry.Description, string(entry.Status),
		entry.TotalDebit, entry.TotalCredit, entry.InvoiceID, string(entry.InvoiceType), entry.SalaryID,
		entry.ReversalOf, entry.CreatedBy).Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return fmt.Errorf("%w: entry number %s taken", db.ErrRetryable, entry.Number)
		}
		return err
	}
	for i := range entry.Lines {
		entry.Lines[i].JournalID = entry.ID
	}
	return t.insertLines(ctx, entry.Lines)
}

func (t *txRepository) UpdateEntry(ctx context.Context, entry Entry) error {
	tag, err := t.tx.Exec(ctx, `UPDATE journal_entries SET date=$2, branch_code=NULLIF($3,''), description=$4, status=$5,
total_debit=$6, total_credit=$7, updated_at=NOW() WHERE id=$1`,
		entry.ID, entry.Date, entry.BranchCode, entry.Description, string(entry.Status), entry.TotalDebit, entry.TotalCredit)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrJournalNotFound
	}
	return nil
}

func (t *txRepository) ReplaceLines(ctx context.Context, journalID int64, lines []Line) error {
	if _, err := t.tx.Exec(ctx, `DELETE FROM journal_lines WHERE journal_id=$1`, journalID); err != nil {
		return err
	}
	for i := range lines {
		lines[i].JournalID = journalID
	}
	return t.insertLines(ctx, lines)
}

func (t *txRepository) insertLines(ctx context.Context, lines []Line) error {
	if len(lines) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for i := range lines {
		l := &lines[i]
		batch.Queue(`INSERT INTO journal_lines (journal_id, line_no, account_id, debit, credit, description, line_date,
employee_id, cost_center, invoice_id, invoice_type, attachment_path)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NULLIF($9,''),$10,NULLIF($11,''),NULLIF($12,'')) RETURNING id`,
			l.JournalID, l.LineNo, l.AccountID, l.Debit, l.Credit, l.Description, l.LineDate,
			l.EmployeeID, l.CostCenter, l.InvoiceID, string(l.InvoiceType), l.AttachmentPath).
			QueryRow(func(row pgx.Row) error {
				return row.Scan(&l.ID)
			})
	}
	return t.tx.SendBatch(ctx, batch).Close()
}

func (t *txRepository) DeleteEntry(ctx context.Context, id int64) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM journal_entries WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrJournalNotFound
	}
	return nil
}

func (t *txRepository) InsertLedgerRows(ctx context.Context, rows []ledger.LegacyRow) error {
	return ledger.InsertLegacyRows(ctx, t.tx, rows)
}

func (t *txRepository) DeleteLedgerRows(ctx context.Context, entryNumber string) (int64, error) {
	return ledger.DeleteLegacyRows(ctx, t.tx, entryNumber)
}

func (t *txRepository) InsertAudit(ctx context.Context, rec *audit.Record) error {
	return audit.Insert(ctx, t.tx, rec)
}

func findByLinkage(ctx context.Context, q db.Querier, link Linkage) (Entry, bool, error) {
	var (
		e   Entry
		err error
	)
	switch {
	case link.SalaryID != nil:
		e, err = getEntry(ctx, q, `e.salary_id=$1 AND e.reversal_of IS NULL`, false, *link.SalaryID)
	case link.InvoiceID != nil:
		e, err = getEntry(ctx, q, `e.invoice_id=$1 AND e.invoice_type=$2 AND e.reversal_of IS NULL`, false, *link.InvoiceID, string(link.InvoiceType))
	default:
		return Entry{}, false, nil
	}
	if err != nil {
		if errors.Is(err, shared.ErrJournalNotFound) {
			return Entry{}, false, nil
		}
		return Entry{}, false, err
	}
	return e, true, nil
}

func getEntry(ctx context.Context, q db.Querier, cond string, forUpdate bool, args ...any) (Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries e WHERE ` + cond + ` ORDER BY e.id LIMIT 1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	e, err := scanEntry(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, shared.ErrJournalNotFound
		}
		return Entry{}, err
	}
	e.Lines, err = loadLines(ctx, q, e.ID)
	if err != nil {
		return Entry{}, err
	}
	return e, nil
}

func loadLines(ctx context.Context, q db.Querier, journalID int64) ([]Line, error) {
	rows, err := q.Query(ctx, `SELECT `+lineColumns+`
FROM journal_lines l JOIN accounts a ON a.id = l.account_id
WHERE l.journal_id=$1 ORDER BY l.line_no`, journalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var lines []Line
	for rows.Next() {
		var l Line
		var invType string
		if err := rows.Scan(&l.ID, &l.JournalID, &l.LineNo, &l.AccountID, &l.AccountCode, &l.Debit, &l.Credit,
			&l.Description, &l.LineDate, &l.EmployeeID, &l.CostCenter, &l.InvoiceID, &invType, &l.AttachmentPath); err != nil {
			return nil, err
		}
		l.InvoiceType = InvoiceType(invType)
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func scanEntry(row pgx.Row) (Entry, error) {
	var e Entry
	var status, invType string
	if err := row.Scan(&e.ID, &e.Number, &e.Date, &e.BranchCode, &e.Description, &status,
		&e.TotalDebit, &e.TotalCredit, &e.InvoiceID, &invType, &e.SalaryID, &e.ReversalOf, &e.CreatedBy,
		&e.CreatedAt, &e.UpdatedAt); err != nil {
		return Entry{}, err
	}
	e.Status = Status(status)
	e.InvoiceType = InvoiceType(invType)
	return e, nil
}

// ListPosted loads posted entries dated inside the inclusive range, lines included.
func ListPosted(ctx context.Context, q db.Querier, from, to time.Time) ([]Entry, error) {
	rows, err := q.Query(ctx, `SELECT `+entryColumns+` FROM journal_entries e
WHERE e.status='posted' AND e.date BETWEEN $1 AND $2 ORDER BY e.date, e.id`, from, to)
	if err != nil {
		return nil, err
	}
	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].Lines, err = loadLines(ctx, q, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}
