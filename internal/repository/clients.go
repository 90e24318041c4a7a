package repository

import (
	"context"

	"github.com/carelink-staffing/shift-core/backend/internal/domain"
)

func getClient(ctx context.Context, q querier, id int64) (*domain.Client, error) {
	query := `
		SELECT agency_id, name, email, address, created_at, version
		FROM clients WHERE id = $1
	`

	client := &domain.Client{ID: id}
	dst := []any{&client.AgencyID, &client.Name, &client.Email, &client.Address, &client.CreatedAt, &client.Version}
	if err := q.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return client, nil
}

func (r *Repository) GetClient(ctx context.Context, id int64) (*domain.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.QueryTimeout())
	defer cancel()

	return getClient(ctx, r.dbpool, id)
}

func (t *txRepository) GetClient(ctx context.Context, id int64) (*domain.Client, error) {
	return getClient(ctx, t.tx, id)
}

func (r *Repository) CreateClient(ctx context.Context, c *domain.Client) error {
	query := `
		INSERT INTO clients (agency_id, name, email, address)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, version
	`

	ctx, cancel := context.WithTimeout(ctx, r.cfg.QueryTimeout())
	defer cancel()

	if err := r.dbpool.QueryRowContext(ctx, query, c.AgencyID, c.Name, c.Email, c.Address).Scan(&c.ID, &c.CreatedAt, &c.Version); err != nil {
		return err
	}

	return nil
}
