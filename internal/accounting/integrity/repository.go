package integrity

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/gl-engine/internal/accounting/journals"
)

// Repository loads the posted entries an integrity run inspects.
type Repository interface {
	PostedEntries(ctx context.Context, from, to time.Time) ([]journals.Entry, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) PostedEntries(ctx context.Context, from, to time.Time) ([]journals.Entry, error) {
	return journals.ListPosted(ctx, r.db, from, to)
}
