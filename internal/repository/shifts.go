package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/carelink-staffing/shift-core/backend/internal/domain"
	"github.com/lib/pq"
)

const shiftColumns = `
	id,
	agency_id,
	client_id,
	role_required,
	date,
	start_time,
	end_time,
	duration_hours,
	break_duration_minutes,
	pay_rate,
	charge_rate,
	status,
	assigned_staff_id,
	urgency,
	work_location_within_site,
	notes,
	financial_locked,
	financial_locked_at,
	financial_locked_by,
	broadcast_sent_at,
	staff_confirmed_at,
	shift_started_at,
	shift_ended_at,
	admin_closed_at,
	admin_closed_by,
	admin_closure_outcome,
	timesheet_id,
	created_at,
	version
`

func shiftDst(s *domain.Shift) []any {
	return []any{
		&s.ID,
		&s.AgencyID,
		&s.ClientID,
		&s.RoleRequired,
		&s.Date,
		&s.StartTime,
		&s.EndTime,
		&s.DurationHours,
		&s.BreakMinutes,
		&s.PayRate,
		&s.ChargeRate,
		&s.Status,
		&s.AssignedStaffID,
		&s.Urgency,
		&s.WorkLocation,
		&s.Notes,
		&s.FinancialLocked,
		&s.FinancialLockedAt,
		&s.FinancialLockedBy,
		&s.BroadcastSentAt,
		&s.StaffConfirmedAt,
		&s.ShiftStartedAt,
		&s.ShiftEndedAt,
		&s.AdminClosedAt,
		&s.AdminClosedBy,
		&s.ClosureOutcome,
		&s.TimesheetID,
		&s.CreatedAt,
		&s.Version,
	}
}

func statusArray(statuses []domain.ShiftStatus) any {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return pq.Array(out)
}

func getShift(ctx context.Context, q querier, id int64, forUpdate bool) (*domain.Shift, error) {
	query := `SELECT ` + shiftColumns + ` FROM shifts WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	shift := &domain.Shift{}
	if err := q.QueryRowContext(ctx, query, id).Scan(shiftDst(shift)...); err != nil {
		return nil, err
	}

	return shift, nil
}

func scanShifts(rows *sql.Rows) ([]*domain.Shift, error) {
	defer rows.Close()

	shifts := []*domain.Shift{}
	for rows.Next() {
		shift := &domain.Shift{}
		if err := rows.Scan(shiftDst(shift)...); err != nil {
			return nil, err
		}
		shifts = append(shifts, shift)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return shifts, nil
}

func (r *Repository) GetShift(ctx context.Context, id int64) (*domain.Shift, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.QueryTimeout())
	defer cancel()

	return getShift(ctx, r.dbpool, id, false)
}

func (r *Repository) CreateShift(ctx context.Context, shift *domain.Shift) error {
	query := `
		INSERT INTO shifts (
			agency_id,
			client_id,
			role_required,
			date,
			start_time,
			end_time,
			duration_hours,
			break_duration_minutes,
			pay_rate,
			charge_rate,
			urgency,
			work_location_within_site,
			notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, status, created_at, version
	`

	ctx, cancel := context.WithTimeout(ctx, r.cfg.QueryTimeout())
	defer cancel()

	params := []any{
		shift.AgencyID,
		shift.ClientID,
		shift.RoleRequired,
		shift.Date,
		shift.StartTime,
		shift.EndTime,
		shift.DurationHours,
		shift.BreakMinutes,
		shift.PayRate,
		shift.ChargeRate,
		shift.Urgency,
		shift.WorkLocation,
		shift.Notes,
	}
	dst := []any{&shift.ID, &shift.Status, &shift.CreatedAt, &shift.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

// ListShiftsByStatus returns shifts in any of statuses dated on or before the
// given day, oldest first.
func (r *Repository) ListShiftsByStatus(ctx context.Context, statuses []domain.ShiftStatus, onOrBefore time.Time) ([]*domain.Shift, error) {
	query := `
		SELECT ` + shiftColumns + `
		FROM shifts
		WHERE status = ANY($1::text[]) AND date <= $2
		ORDER BY date, start_time
	`

	ctx, cancel := context.WithTimeout(ctx, r.cfg.QueryTimeout())
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, statusArray(statuses), onOrBefore)
	if err != nil {
		return nil, err
	}

	return scanShifts(rows)
}

func (r *Repository) MarkBroadcastSent(ctx context.Context, shiftID int64, at time.Time) error {
	query := `
		UPDATE shifts
		SET broadcast_sent_at = $1, version = version + 1
		WHERE id = $2
	`

	ctx, cancel := context.WithTimeout(ctx, r.cfg.QueryTimeout())
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, at, shiftID); err != nil {
		return err
	}

	return nil
}

// LockShiftFinancials is called by timesheet approval. Once locked a shift
// never unlocks.
func (r *Repository) LockShiftFinancials(ctx context.Context, shiftID int64, actorID int64, at time.Time) error {
	query := `
		UPDATE shifts
		SET financial_locked = TRUE, financial_locked_at = $1, financial_locked_by = $2, version = version + 1
		WHERE id = $3 AND financial_locked = FALSE
	`

	ctx, cancel := context.WithTimeout(ctx, r.cfg.QueryTimeout())
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, at, actorID, shiftID); err != nil {
		return err
	}

	return nil
}

func (t *txRepository) GetShift(ctx context.Context, id int64) (*domain.Shift, error) {
	return getShift(ctx, t.tx, id, false)
}

func (t *txRepository) GetShiftForUpdate(ctx context.Context, id int64) (*domain.Shift, error) {
	return getShift(ctx, t.tx, id, true)
}

func (t *txRepository) LockStaffSchedule(ctx context.Context, staffID int64) error {
	_, err := t.tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, staffID)
	return err
}

func (t *txRepository) ListStaffShifts(ctx context.Context, staffID int64, from, to time.Time, statuses []domain.ShiftStatus) ([]*domain.Shift, error) {
	query := `
		SELECT ` + shiftColumns + `
		FROM shifts
		WHERE assigned_staff_id = $1 AND date BETWEEN $2 AND $3 AND status = ANY($4::text[])
		ORDER BY date, start_time
	`

	rows, err := t.tx.QueryContext(ctx, query, staffID, from, to, statusArray(statuses))
	if err != nil {
		return nil, err
	}

	return scanShifts(rows)
}

func (t *txRepository) UpdateShift(ctx context.Context, shift *domain.Shift) error {
	query := `
		UPDATE shifts
		SET
			date = $1,
			start_time = $2,
			end_time = $3,
			duration_hours = $4,
			break_duration_minutes = $5,
			pay_rate = $6,
			charge_rate = $7,
			status = $8,
			assigned_staff_id = $9,
			urgency = $10,
			work_location_within_site = $11,
			notes = $12,
			staff_confirmed_at = $13,
			shift_started_at = $14,
			shift_ended_at = $15,
			admin_closed_at = $16,
			admin_closed_by = $17,
			admin_closure_outcome = $18,
			timesheet_id = $19,
			version = version + 1
		WHERE id = $20 AND version = $21
		RETURNING version
	`

	params := []any{
		shift.Date,
		shift.StartTime,
		shift.EndTime,
		shift.DurationHours,
		shift.BreakMinutes,
		shift.PayRate,
		shift.ChargeRate,
		shift.Status,
		shift.AssignedStaffID,
		shift.Urgency,
		shift.WorkLocation,
		shift.Notes,
		shift.StaffConfirmedAt,
		shift.ShiftStartedAt,
		shift.ShiftEndedAt,
		shift.AdminClosedAt,
		shift.AdminClosedBy,
		shift.ClosureOutcome,
		shift.TimesheetID,
		shift.ID,
		shift.Version,
	}

	if err := t.tx.QueryRowContext(ctx, query, params...).Scan(&shift.Version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrConcurrentUpdate
		}
		return err
	}

	return nil
}
