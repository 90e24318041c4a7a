package mailer

import (
	"context"
	"log/slog"
	"time"

	"github.com/carelink-staffing/shift-core/backend/internal/domain"
	"github.com/carelink-staffing/shift-core/backend/internal/metrics"
	"github.com/carelink-staffing/shift-core/backend/internal/store"
)

// Publisher is satisfied by *broker.Publisher.
type Publisher interface {
	PublishJSON(ctx context.Context, queue string, v any) error
}

// Flusher sends batched notifications whose window has closed as one digest
// mail per entry.
type Flusher struct {
	queue      store.NotificationQueue
	pub        Publisher
	emailQueue string
	batchSize  int
	now        func() time.Time
}

func NewFlusher(queue store.NotificationQueue, pub Publisher, emailQueue string, batchSize int) *Flusher {
	return &Flusher{
		queue:      queue,
		pub:        pub,
		emailQueue: emailQueue,
		batchSize:  batchSize,
		now:        time.Now,
	}
}

type FlushResult struct {
	Sent   int
	Failed int
}

// Flush claims due entries and publishes a digest for each. A failed publish
// marks only that entry failed.
func (f *Flusher) Flush(ctx context.Context) (FlushResult, error) {
	var res FlushResult

	entries, err := f.queue.ClaimDueNotifications(ctx, f.now(), f.batchSize)
	if err != nil {
		return res, err
	}

	for _, entry := range entries {
		msg := domain.MailMessage{
			Type: TypeDigest,
			To:   entry.RecipientEmail,
			Data: domain.DigestMailData{
				FirstName: entry.RecipientFirstName,
				Kind:      entry.Kind,
				Items:     entry.PendingItems,
			},
		}

		err := f.pub.PublishJSON(ctx, f.emailQueue, msg)
		metrics.ObserveDigest(err)
		if err != nil {
			res.Failed++
			slog.Warn("failed to publish digest", "entry_id", entry.ID, "kind", entry.Kind, "error", err)
			if err := f.queue.MarkNotificationFailed(ctx, entry.ID, err.Error()); err != nil {
				slog.Error("failed to mark digest failed", "entry_id", entry.ID, "error", err)
			}
			continue
		}

		if err := f.queue.MarkNotificationSent(ctx, entry.ID, f.now()); err != nil {
			slog.Error("failed to mark digest sent", "entry_id", entry.ID, "error", err)
		}
		res.Sent++
	}

	return res, nil
}

// Run flushes every interval until ctx is done.
func (f *Flusher) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			res, err := f.Flush(ctx)
			if err != nil {
				slog.Error("digest flush failed", "error", err)
				continue
			}
			if res.Sent+res.Failed > 0 {
				slog.Info("digests flushed", "sent", res.Sent, "failed", res.Failed)
			}
		}
	}
}
