package repository

import (
	"context"
	"database/sql"

	"github.com/carelink-staffing/shift-core/backend/internal/config"
	"github.com/carelink-staffing/shift-core/backend/internal/store"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Repository struct {
	cfg    *config.Config
	dbpool *sql.DB
}

func NewRepository(cfg *config.Config, dbpool *sql.DB) *Repository {
	return &Repository{
		cfg:    cfg,
		dbpool: dbpool,
	}
}

// InTx runs fn inside a single database transaction. The transaction commits
// only if fn returns nil.
func (r *Repository) InTx(ctx context.Context, fn func(tx store.Tx) error) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.TransactionTimeout())
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(&txRepository{tx: tx}); err != nil {
		return err
	}

	return tx.Commit()
}

type txRepository struct {
	tx *sql.Tx
}

var (
	_ store.Store             = (*Repository)(nil)
	_ store.Tx                = (*txRepository)(nil)
	_ store.TimesheetCreator  = (*Repository)(nil)
	_ store.NotificationQueue = (*Repository)(nil)
)
