package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/carelink-staffing/shift-core/backend/internal/domain"
)

func getActiveBookingByShift(ctx context.Context, q querier, shiftID int64) (*domain.Booking, error) {
	query := `
		SELECT
			id,
			agency_id,
			staff_id,
			client_id,
			status,
			confirmation_method,
			booking_date,
			shift_date,
			start_time,
			end_time,
			confirmed_by_staff_at,
			created_at,
			version
		FROM bookings
		WHERE shift_id = $1 AND status <> 'cancelled'
	`

	b := &domain.Booking{ShiftID: shiftID}
	dst := []any{
		&b.ID,
		&b.AgencyID,
		&b.StaffID,
		&b.ClientID,
		&b.Status,
		&b.ConfirmationMethod,
		&b.BookingDate,
		&b.ShiftDate,
		&b.StartTime,
		&b.EndTime,
		&b.ConfirmedByStaffAt,
		&b.CreatedAt,
		&b.Version,
	}
	if err := q.QueryRowContext(ctx, query, shiftID).Scan(dst...); err != nil {
		return nil, err
	}

	return b, nil
}

func (r *Repository) GetActiveBookingByShift(ctx context.Context, shiftID int64) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.QueryTimeout())
	defer cancel()

	return getActiveBookingByShift(ctx, r.dbpool, shiftID)
}

func (t *txRepository) GetActiveBookingByShift(ctx context.Context, shiftID int64) (*domain.Booking, error) {
	return getActiveBookingByShift(ctx, t.tx, shiftID)
}

// CreateBooking inserts a booking. At most one non-cancelled booking may exist
// per shift (bookings_one_active_per_shift).
func (t *txRepository) CreateBooking(ctx context.Context, b *domain.Booking) error {
	query := `
		INSERT INTO bookings (
			agency_id,
			shift_id,
			staff_id,
			client_id,
			status,
			confirmation_method,
			booking_date,
			shift_date,
			start_time,
			end_time,
			confirmed_by_staff_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, version
	`

	params := []any{
		b.AgencyID,
		b.ShiftID,
		b.StaffID,
		b.ClientID,
		b.Status,
		b.ConfirmationMethod,
		b.BookingDate,
		b.ShiftDate,
		b.StartTime,
		b.EndTime,
		b.ConfirmedByStaffAt,
	}
	if err := t.tx.QueryRowContext(ctx, query, params...).Scan(&b.ID, &b.CreatedAt, &b.Version); err != nil {
		return err
	}

	return nil
}

func (t *txRepository) UpdateBooking(ctx context.Context, b *domain.Booking) error {
	query := `
		UPDATE bookings
		SET
			status = $1,
			confirmation_method = $2,
			confirmed_by_staff_at = $3,
			version = version + 1
		WHERE id = $4 AND version = $5
		RETURNING version
	`

	params := []any{b.Status, b.ConfirmationMethod, b.ConfirmedByStaffAt, b.ID, b.Version}
	if err := t.tx.QueryRowContext(ctx, query, params...).Scan(&b.Version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrConcurrentUpdate
		}
		return err
	}

	return nil
}
