package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/carelink-staffing/shift-core/backend/internal/domain"
)

const timesheetColumns = `
	id,
	agency_id,
	booking_id,
	shift_id,
	staff_id,
	client_id,
	scheduled_start,
	scheduled_end,
	actual_start,
	actual_end,
	total_hours,
	pay_rate,
	charge_rate,
	staff_pay_amount,
	client_charge_amount,
	status,
	notes,
	created_at,
	version
`

func timesheetDst(ts *domain.Timesheet) []any {
	return []any{
		&ts.ID,
		&ts.AgencyID,
		&ts.BookingID,
		&ts.ShiftID,
		&ts.StaffID,
		&ts.ClientID,
		&ts.ScheduledStart,
		&ts.ScheduledEnd,
		&ts.ActualStart,
		&ts.ActualEnd,
		&ts.TotalHours,
		&ts.PayRate,
		&ts.ChargeRate,
		&ts.StaffPayAmount,
		&ts.ClientChargeAmount,
		&ts.Status,
		&ts.Notes,
		&ts.CreatedAt,
		&ts.Version,
	}
}

func getTimesheetByShift(ctx context.Context, q querier, shiftID int64, forUpdate bool) (*domain.Timesheet, error) {
	query := `SELECT ` + timesheetColumns + ` FROM timesheets WHERE shift_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	ts := &domain.Timesheet{}
	if err := q.QueryRowContext(ctx, query, shiftID).Scan(timesheetDst(ts)...); err != nil {
		return nil, err
	}

	return ts, nil
}

func (r *Repository) GetTimesheetByShift(ctx context.Context, shiftID int64) (*domain.Timesheet, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.QueryTimeout())
	defer cancel()

	return getTimesheetByShift(ctx, r.dbpool, shiftID, false)
}

func (t *txRepository) GetTimesheetByShift(ctx context.Context, shiftID int64) (*domain.Timesheet, error) {
	return getTimesheetByShift(ctx, t.tx, shiftID, false)
}

func (t *txRepository) GetTimesheetByShiftForUpdate(ctx context.Context, shiftID int64) (*domain.Timesheet, error) {
	return getTimesheetByShift(ctx, t.tx, shiftID, true)
}

// CreateDraftTimesheet creates the draft timesheet for a booking and links it
// to the shift. If the shift already has one, its id is returned.
func (r *Repository) CreateDraftTimesheet(ctx context.Context, booking *domain.Booking, shift *domain.Shift) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.TransactionTimeout())
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO timesheets (
			agency_id,
			booking_id,
			shift_id,
			staff_id,
			client_id,
			scheduled_start,
			scheduled_end,
			pay_rate,
			charge_rate
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (shift_id) DO NOTHING
		RETURNING id
	`

	// A shift closed without a booking on record still gets a timesheet.
	var bookingID *int64
	if booking.ID != 0 {
		bookingID = &booking.ID
	}

	params := []any{
		shift.AgencyID,
		bookingID,
		shift.ID,
		booking.StaffID,
		shift.ClientID,
		shift.StartTime,
		shift.EndTime,
		shift.PayRate,
		shift.ChargeRate,
	}

	var id int64
	err = tx.QueryRowContext(ctx, query, params...).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if err := tx.QueryRowContext(ctx, `SELECT id FROM timesheets WHERE shift_id = $1`, shift.ID).Scan(&id); err != nil {
			return 0, err
		}
	case err != nil:
		return 0, err
	}

	query = `UPDATE shifts SET timesheet_id = $1, version = version + 1 WHERE id = $2 AND timesheet_id IS DISTINCT FROM $1`
	if _, err := tx.ExecContext(ctx, query, id, shift.ID); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return id, nil
}

func (t *txRepository) UpdateTimesheet(ctx context.Context, ts *domain.Timesheet) error {
	query := `
		UPDATE timesheets
		SET
			booking_id = $1,
			staff_id = $2,
			actual_start = $3,
			actual_end = $4,
			total_hours = $5,
			staff_pay_amount = $6,
			client_charge_amount = $7,
			status = $8,
			notes = $9,
			version = version + 1
		WHERE id = $10 AND version = $11
		RETURNING version
	`

	params := []any{
		ts.BookingID,
		ts.StaffID,
		ts.ActualStart,
		ts.ActualEnd,
		ts.TotalHours,
		ts.StaffPayAmount,
		ts.ClientChargeAmount,
		ts.Status,
		ts.Notes,
		ts.ID,
		ts.Version,
	}
	if err := t.tx.QueryRowContext(ctx, query, params...).Scan(&ts.Version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrConcurrentUpdate
		}
		return err
	}

	return nil
}
