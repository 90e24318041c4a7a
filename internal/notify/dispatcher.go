// Package notify fans shift events out to staff and clients over email, SMS
// and WhatsApp. Delivery failures are reported in the outcome and never
// returned as errors: by the time a notification is sent the state change it
// describes has already been committed.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/carelink-staffing/shift-core/backend/internal/domain"
	"github.com/carelink-staffing/shift-core/backend/internal/metrics"
	"github.com/carelink-staffing/shift-core/backend/internal/store"
	"golang.org/x/sync/errgroup"
)

type Dispatcher struct {
	email       Sender
	sms         Sender
	whatsapp    Sender
	queue       store.NotificationQueue
	batchWindow time.Duration
	now         func() time.Time
}

func NewDispatcher(email, sms, whatsapp Sender, queue store.NotificationQueue, batchWindow time.Duration) *Dispatcher {
	return &Dispatcher{
		email:       email,
		sms:         sms,
		whatsapp:    whatsapp,
		queue:       queue,
		batchWindow: batchWindow,
		now:         time.Now,
	}
}

func (d *Dispatcher) sender(ch domain.Channel) Sender {
	switch ch {
	case domain.ChannelSMS:
		return d.sms
	case domain.ChannelWhatsApp:
		return d.whatsapp
	default:
		return d.email
	}
}

func (d *Dispatcher) send(ctx context.Context, ch domain.Channel, to domain.Recipient, msg Message) domain.ChannelResult {
	res := domain.ChannelResult{Channel: ch, Status: domain.DeliverySent}

	if err := d.sender(ch).Send(ctx, to, msg); err != nil {
		if errors.Is(err, ErrNoAddress) {
			res.Status = domain.DeliverySkipped
		} else {
			res.Status = domain.DeliveryFailed
			res.Error = err.Error()
			slog.Warn("notification delivery failed", "channel", ch, "kind", msg.Kind, "shift_id", msg.Item.ShiftID, "error", err)
		}
	}

	metrics.ObserveNotification(string(ch), string(msg.Kind), string(res.Status))
	return res
}

// sendInstant sends SMS and WhatsApp in parallel and waits for both to
// settle. One channel failing does not stop the other.
func (d *Dispatcher) sendInstant(ctx context.Context, to domain.Recipient, msg Message) []domain.ChannelResult {
	channels := []domain.Channel{domain.ChannelSMS, domain.ChannelWhatsApp}
	results := make([]domain.ChannelResult, len(channels))

	var g errgroup.Group
	for i, ch := range channels {
		g.Go(func() error {
			results[i] = d.send(ctx, ch, to, msg)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// enqueue adds item to the recipient's batched email for kind.
func (d *Dispatcher) enqueue(ctx context.Context, agencyID int64, to domain.Recipient, kind domain.NotificationKind, item domain.NotificationItem) domain.ChannelResult {
	res := domain.ChannelResult{Channel: domain.ChannelEmail, Status: domain.DeliveryQueued}

	switch {
	case to.Email == "":
		res.Status = domain.DeliverySkipped
	default:
		if _, err := d.queue.EnqueueNotification(ctx, agencyID, to, kind, item, d.now().Add(d.batchWindow)); err != nil {
			res.Status = domain.DeliveryFailed
			res.Error = err.Error()
			slog.Warn("failed to queue batched email", "kind", kind, "shift_id", item.ShiftID, "error", err)
		}
	}

	metrics.ObserveNotification(string(domain.ChannelEmail), string(kind), string(res.Status))
	return res
}

func (d *Dispatcher) message(kind domain.NotificationKind, item domain.NotificationItem, reason string) Message {
	return Message{Kind: kind, Text: textFor(kind, item, reason), Item: item, Reason: reason}
}

// NotifyAssignment tells staff about a new assignment: instant channels now,
// email batched with their other assignments.
func (d *Dispatcher) NotifyAssignment(ctx context.Context, staff *domain.Staff, shift *domain.Shift, client *domain.Client) domain.NotificationOutcome {
	to := domain.StaffRecipient(staff)
	item := itemFor(shift, client, nil)
	msg := d.message(domain.NotificationShiftAssignment, item, "")

	results := d.sendInstant(ctx, to, msg)
	results = append(results, d.enqueue(ctx, shift.AgencyID, to, msg.Kind, item))
	return domain.NotificationOutcome{Results: results}
}

func (d *Dispatcher) NotifyStaffConfirmed(ctx context.Context, staff *domain.Staff, shift *domain.Shift, client *domain.Client) domain.NotificationOutcome {
	item := itemFor(shift, client, nil)
	msg := d.message(domain.NotificationShiftConfirmedStaff, item, "")

	return domain.NotificationOutcome{Results: d.sendInstant(ctx, domain.StaffRecipient(staff), msg)}
}

// NotifyClientConfirmed queues a batched email to the client naming the
// confirmed staff member.
func (d *Dispatcher) NotifyClientConfirmed(ctx context.Context, client *domain.Client, staff *domain.Staff, shift *domain.Shift) domain.NotificationOutcome {
	item := itemFor(shift, client, staff)
	res := d.enqueue(ctx, shift.AgencyID, domain.ClientRecipient(client), domain.NotificationShiftConfirmedClient, item)
	return domain.NotificationOutcome{Results: []domain.ChannelResult{res}}
}

// NotifyReassigned tells the previous assignee they lost the shift. The email
// goes out immediately; a removal should not wait for a digest.
func (d *Dispatcher) NotifyReassigned(ctx context.Context, staff *domain.Staff, shift *domain.Shift, client *domain.Client) domain.NotificationOutcome {
	return d.notifyNow(ctx, domain.NotificationShiftReassigned, staff, shift, client, "")
}

func (d *Dispatcher) NotifyUnassigned(ctx context.Context, staff *domain.Staff, shift *domain.Shift, client *domain.Client, reason string) domain.NotificationOutcome {
	return d.notifyNow(ctx, domain.NotificationShiftUnassigned, staff, shift, client, reason)
}

func (d *Dispatcher) NotifyCancelled(ctx context.Context, staff *domain.Staff, shift *domain.Shift, client *domain.Client, reason string) domain.NotificationOutcome {
	return d.notifyNow(ctx, domain.NotificationShiftCancelled, staff, shift, client, reason)
}

// NotifyUrgent is the per-recipient step of a broadcast. It uses the instant
// channels only.
func (d *Dispatcher) NotifyUrgent(ctx context.Context, staff *domain.Staff, shift *domain.Shift, client *domain.Client) domain.NotificationOutcome {
	item := itemFor(shift, client, nil)
	msg := d.message(domain.NotificationUrgentShift, item, "")

	return domain.NotificationOutcome{Results: d.sendInstant(ctx, domain.StaffRecipient(staff), msg)}
}

func (d *Dispatcher) notifyNow(ctx context.Context, kind domain.NotificationKind, staff *domain.Staff, shift *domain.Shift, client *domain.Client, reason string) domain.NotificationOutcome {
	to := domain.StaffRecipient(staff)
	msg := d.message(kind, itemFor(shift, client, nil), reason)

	var (
		mu      sync.Mutex
		results []domain.ChannelResult
		g       errgroup.Group
	)
	g.Go(func() error {
		r := d.sendInstant(ctx, to, msg)
		mu.Lock()
		results = append(results, r...)
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		r := d.send(ctx, domain.ChannelEmail, to, msg)
		mu.Lock()
		results = append(results, r)
		mu.Unlock()
		return nil
	})
	_ = g.Wait()

	return domain.NotificationOutcome{Results: results}
}
