package repository

import (
	"context"

	"github.com/carelink-staffing/shift-core/backend/internal/domain"
)

func listJourney(ctx context.Context, q querier, shiftID int64) ([]*domain.JourneyEntry, error) {
	query := `
		SELECT seq, state, recorded_at, actor_id, staff_id, method, notes
		FROM shift_journey
		WHERE shift_id = $1
		ORDER BY seq
	`

	rows, err := q.QueryContext(ctx, query, shiftID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*domain.JourneyEntry{}
	for rows.Next() {
		entry := &domain.JourneyEntry{ShiftID: shiftID}
		dst := []any{&entry.Seq, &entry.State, &entry.RecordedAt, &entry.ActorID, &entry.StaffID, &entry.Method, &entry.Notes}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *Repository) ListJourney(ctx context.Context, shiftID int64) ([]*domain.JourneyEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.QueryTimeout())
	defer cancel()

	return listJourney(ctx, r.dbpool, shiftID)
}

func (t *txRepository) ListJourney(ctx context.Context, shiftID int64) ([]*domain.JourneyEntry, error) {
	return listJourney(ctx, t.tx, shiftID)
}

// AppendJourney inserts the next entry for the shift. The caller holds the
// shift row lock, so MAX(seq)+1 cannot race; the unique (shift_id, seq)
// constraint backs that up. recorded_at never goes backwards within a shift.
func (t *txRepository) AppendJourney(ctx context.Context, entry *domain.JourneyEntry) error {
	query := `
		INSERT INTO shift_journey (shift_id, seq, state, recorded_at, actor_id, staff_id, method, notes)
		SELECT
			$1,
			COALESCE(MAX(seq), 0) + 1,
			$2,
			GREATEST(NOW(), COALESCE(MAX(recorded_at), NOW())),
			$3,
			$4,
			$5,
			$6
		FROM shift_journey
		WHERE shift_id = $1
		RETURNING seq, recorded_at
	`

	params := []any{entry.ShiftID, entry.State, entry.ActorID, entry.StaffID, entry.Method, entry.Notes}
	if err := t.tx.QueryRowContext(ctx, query, params...).Scan(&entry.Seq, &entry.RecordedAt); err != nil {
		return err
	}

	return nil
}
