package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/carelink-staffing/shift-core/backend/internal/domain"
)

// EnqueueNotification appends item to the recipient's pending entry for kind,
// creating the entry if none is pending. The partial unique index
// notification_queue_one_pending makes this a single atomic statement, so
// concurrent enqueues for the same recipient never produce two pending rows.
func (r *Repository) EnqueueNotification(ctx context.Context, agencyID int64, to domain.Recipient, kind domain.NotificationKind, item domain.NotificationItem, sendAt time.Time) (*domain.NotificationQueueEntry, error) {
	query := `
		INSERT INTO notification_queue (
			agency_id,
			recipient_email,
			recipient_type,
			recipient_first_name,
			notification_type,
			pending_items,
			item_count,
			status,
			scheduled_send_at
		) VALUES ($1, $2, $3, $4, $5, jsonb_build_array($6::jsonb), 1, 'pending', $7)
		ON CONFLICT (recipient_email, notification_type) WHERE status = 'pending'
		DO UPDATE SET
			pending_items = notification_queue.pending_items || EXCLUDED.pending_items,
			item_count = notification_queue.item_count + 1
		RETURNING id, item_count, scheduled_send_at, created_at
	`

	itemJSON, err := json.Marshal(item)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.QueryTimeout())
	defer cancel()

	entry := &domain.NotificationQueueEntry{
		AgencyID:           agencyID,
		RecipientEmail:     to.Email,
		RecipientType:      to.Type,
		RecipientFirstName: to.FirstName,
		Kind:               kind,
		Status:             domain.QueueStatusPending,
	}

	params := []any{agencyID, to.Email, to.Type, to.FirstName, kind, string(itemJSON), sendAt}
	dst := []any{&entry.ID, &entry.ItemCount, &entry.ScheduledSendAt, &entry.CreatedAt}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(dst...); err != nil {
		return nil, err
	}

	return entry, nil
}

// ClaimDueNotifications moves up to limit due pending entries to processing
// and returns them. Rows locked by another flusher are skipped. Items enqueued
// after the claim start a fresh pending entry.
func (r *Repository) ClaimDueNotifications(ctx context.Context, now time.Time, limit int) ([]*domain.NotificationQueueEntry, error) {
	query := `
		UPDATE notification_queue
		SET status = 'processing'
		WHERE id IN (
			SELECT id FROM notification_queue
			WHERE status = 'pending' AND scheduled_send_at <= $1
			ORDER BY scheduled_send_at
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		RETURNING
			id,
			agency_id,
			recipient_email,
			recipient_type,
			recipient_first_name,
			notification_type,
			pending_items,
			item_count,
			scheduled_send_at,
			created_at
	`

	ctx, cancel := context.WithTimeout(ctx, r.cfg.QueryTimeout())
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*domain.NotificationQueueEntry{}
	for rows.Next() {
		entry := &domain.NotificationQueueEntry{Status: domain.QueueStatusProcessing}
		var items []byte
		dst := []any{
			&entry.ID,
			&entry.AgencyID,
			&entry.RecipientEmail,
			&entry.RecipientType,
			&entry.RecipientFirstName,
			&entry.Kind,
			&items,
			&entry.ItemCount,
			&entry.ScheduledSendAt,
			&entry.CreatedAt,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(items, &entry.PendingItems); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *Repository) MarkNotificationSent(ctx context.Context, id int64, at time.Time) error {
	query := `UPDATE notification_queue SET status = 'sent', sent_at = $1 WHERE id = $2`

	ctx, cancel := context.WithTimeout(ctx, r.cfg.QueryTimeout())
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, at, id); err != nil {
		return err
	}

	return nil
}

func (r *Repository) MarkNotificationFailed(ctx context.Context, id int64, reason string) error {
	query := `UPDATE notification_queue SET status = 'failed', error_message = $1 WHERE id = $2`

	ctx, cancel := context.WithTimeout(ctx, r.cfg.QueryTimeout())
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, reason, id); err != nil {
		return err
	}

	return nil
}
