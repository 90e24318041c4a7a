package repository

import (
	"context"

	"github.com/carelink-staffing/shift-core/backend/internal/domain"
)

const staffColumns = `id, agency_id, user_id, first_name, last_name, email, phone, role, status, created_at, version`

func staffDst(s *domain.Staff) []any {
	return []any{&s.ID, &s.AgencyID, &s.UserID, &s.FirstName, &s.LastName, &s.Email, &s.Phone, &s.Role, &s.Status, &s.CreatedAt, &s.Version}
}

func getStaff(ctx context.Context, q querier, id int64) (*domain.Staff, error) {
	query := `SELECT ` + staffColumns + ` FROM staff WHERE id = $1`

	staff := &domain.Staff{}
	if err := q.QueryRowContext(ctx, query, id).Scan(staffDst(staff)...); err != nil {
		return nil, err
	}

	return staff, nil
}

func (r *Repository) GetStaff(ctx context.Context, id int64) (*domain.Staff, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.QueryTimeout())
	defer cancel()

	return getStaff(ctx, r.dbpool, id)
}

func (t *txRepository) GetStaff(ctx context.Context, id int64) (*domain.Staff, error) {
	return getStaff(ctx, t.tx, id)
}

// GetStaffByUserID maps an authenticated user to their staff record.
func (r *Repository) GetStaffByUserID(ctx context.Context, userID int64) (*domain.Staff, error) {
	query := `SELECT ` + staffColumns + ` FROM staff WHERE user_id = $1`

	ctx, cancel := context.WithTimeout(ctx, r.cfg.QueryTimeout())
	defer cancel()

	staff := &domain.Staff{}
	if err := r.dbpool.QueryRowContext(ctx, query, userID).Scan(staffDst(staff)...); err != nil {
		return nil, err
	}

	return staff, nil
}

// ListEligibleStaff returns active staff of the agency holding role.
func (r *Repository) ListEligibleStaff(ctx context.Context, agencyID int64, role domain.StaffRole) ([]*domain.Staff, error) {
	query := `
		SELECT ` + staffColumns + `
		FROM staff
		WHERE agency_id = $1 AND role = $2 AND status = 'active'
		ORDER BY id
	`

	ctx, cancel := context.WithTimeout(ctx, r.cfg.QueryTimeout())
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, agencyID, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	staff := []*domain.Staff{}
	for rows.Next() {
		s := &domain.Staff{}
		if err := rows.Scan(staffDst(s)...); err != nil {
			return nil, err
		}
		staff = append(staff, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return staff, nil
}

func (r *Repository) CreateStaff(ctx context.Context, s *domain.Staff) error {
	query := `
		INSERT INTO staff (agency_id, user_id, first_name, last_name, email, phone, role, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, version
	`

	ctx, cancel := context.WithTimeout(ctx, r.cfg.QueryTimeout())
	defer cancel()

	params := []any{s.AgencyID, s.UserID, s.FirstName, s.LastName, s.Email, s.Phone, s.Role, s.Status}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(&s.ID, &s.CreatedAt, &s.Version); err != nil {
		return err
	}

	return nil
}
