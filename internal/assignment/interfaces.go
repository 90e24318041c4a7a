package assignment

import (
	"context"

	"github.com/carelink-staffing/shift-core/backend/internal/domain"
)

// Notifier delivers the messages that follow a committed change. It never
// fails; delivery problems are reported in the outcome.
type Notifier interface {
	NotifyAssignment(ctx context.Context, staff *domain.Staff, shift *domain.Shift, client *domain.Client) domain.NotificationOutcome
	NotifyStaffConfirmed(ctx context.Context, staff *domain.Staff, shift *domain.Shift, client *domain.Client) domain.NotificationOutcome
	NotifyClientConfirmed(ctx context.Context, client *domain.Client, staff *domain.Staff, shift *domain.Shift) domain.NotificationOutcome
	NotifyReassigned(ctx context.Context, staff *domain.Staff, shift *domain.Shift, client *domain.Client) domain.NotificationOutcome
	NotifyUnassigned(ctx context.Context, staff *domain.Staff, shift *domain.Shift, client *domain.Client, reason string) domain.NotificationOutcome
	NotifyCancelled(ctx context.Context, staff *domain.Staff, shift *domain.Shift, client *domain.Client, reason string) domain.NotificationOutcome
}
