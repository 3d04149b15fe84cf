package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/gl-engine/internal/accounting/shared"
	"github.com/odyssey-erp/gl-engine/internal/platform/db"
)

type Repository interface {
	List(ctx context.Context) ([]Account, error)
	FindByCode(ctx context.Context, code string) (Account, error)
	InsertMissing(ctx context.Context, accounts []Account) (int, error)
	SetActive(ctx context.Context, code string, active bool) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const accountColumns = `id, code, name, type, COALESCE(parent_code, ''), allow_posting, is_control, is_active, created_at, updated_at`

func (r *repository) List(ctx context.Context) ([]Account, error) {
	return ListAll(ctx, r.db)
}

// ListAll reads every account through q ordered by code.
func ListAll(ctx context.Context, q db.Querier) ([]Account, error) {
	rows, err := q.Query(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var accounts []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *repository) FindByCode(ctx context.Context, code string) (Account, error) {
	a, err := scanAccount(r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE code=$1`, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, fmt.Errorf("%w: %s", shared.ErrAccountNotFound, code)
		}
		return Account{}, err
	}
	return a, nil
}

// InsertMissing inserts accounts whose code is not present yet.
func (r *repository) InsertMissing(ctx context.Context, accounts []Account) (int, error) {
	batch := &pgx.Batch{}
	for _, a := range accounts {
		batch.Queue(`INSERT INTO accounts (code, name, type, parent_code, allow_posting, is_control, is_active)
VALUES ($1,$2,$3,NULLIF($4,''),$5,$6,$7) ON CONFLICT (code) DO NOTHING`,
			a.Code, a.Name, string(a.Type), a.ParentCode, a.AllowPosting, a.IsControl, a.IsActive)
	}
	results := r.db.SendBatch(ctx, batch)
	defer results.Close()
	inserted := 0
	for range accounts {
		tag, err := results.Exec()
		if err != nil {
			return inserted, err
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

func (r *repository) SetActive(ctx context.Context, code string, active bool) error {
	tag, err := r.db.Exec(ctx, `UPDATE accounts SET is_active=$2, updated_at=NOW() WHERE code=$1`, code, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", shared.ErrAccountNotFound, code)
	}
	return nil
}

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	var typ string
	if err := row.Scan(&a.ID, &a.Code, &a.Name, &typ, &a.ParentCode, &a.AllowPosting, &a.IsControl, &a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return Account{}, err
	}
	a.Type = AccountType(typ)
	return a, nil
}
