// Package store declares the persistence contracts the services depend on.
// The Postgres implementation lives in internal/repository.
package store

import (
	"context"
	"time"

	"github.com/carelink-staffing/shift-core/backend/internal/domain"
)

// Reader covers lookups that are safe both inside and outside a transaction.
type Reader interface {
	GetShift(ctx context.Context, id int64) (*domain.Shift, error)
	GetStaff(ctx context.Context, id int64) (*domain.Staff, error)
	GetClient(ctx context.Context, id int64) (*domain.Client, error)
	ListJourney(ctx context.Context, shiftID int64) ([]*domain.JourneyEntry, error)
	GetActiveBookingByShift(ctx context.Context, shiftID int64) (*domain.Booking, error)
	GetTimesheetByShift(ctx context.Context, shiftID int64) (*domain.Timesheet, error)
}

// Tx is a unit of work. Writes on Tx become visible only when the function
// passed to Store.InTx returns nil.
type Tx interface {
	Reader

	// GetShiftForUpdate reads the shift and holds its row lock until commit.
	GetShiftForUpdate(ctx context.Context, id int64) (*domain.Shift, error)
	// LockStaffSchedule serialises schedule checks for one staff member.
	LockStaffSchedule(ctx context.Context, staffID int64) error
	ListStaffShifts(ctx context.Context, staffID int64, from, to time.Time, statuses []domain.ShiftStatus) ([]*domain.Shift, error)
	// UpdateShift writes the shift conditionally on its version and returns
	// domain.ErrConcurrentUpdate when the version is stale.
	UpdateShift(ctx context.Context, shift *domain.Shift) error
	AppendJourney(ctx context.Context, entry *domain.JourneyEntry) error

	CreateBooking(ctx context.Context, booking *domain.Booking) error
	UpdateBooking(ctx context.Context, booking *domain.Booking) error

	GetTimesheetByShiftForUpdate(ctx context.Context, shiftID int64) (*domain.Timesheet, error)
	UpdateTimesheet(ctx context.Context, ts *domain.Timesheet) error
}

type Store interface {
	Reader

	InTx(ctx context.Context, fn func(tx Tx) error) error
	ListEligibleStaff(ctx context.Context, agencyID int64, role domain.StaffRole) ([]*domain.Staff, error)
	MarkBroadcastSent(ctx context.Context, shiftID int64, at time.Time) error
	ListShiftsByStatus(ctx context.Context, statuses []domain.ShiftStatus, onOrBefore time.Time) ([]*domain.Shift, error)
}

// TimesheetCreator produces the draft timesheet for a booking and returns its id.
type TimesheetCreator interface {
	CreateDraftTimesheet(ctx context.Context, booking *domain.Booking, shift *domain.Shift) (int64, error)
}

// NotificationQueue is the batching table for digest emails.
type NotificationQueue interface {
	// EnqueueNotification appends item to the pending entry for
	// (recipient email, kind) or creates one due at sendAt.
	EnqueueNotification(ctx context.Context, agencyID int64, to domain.Recipient, kind domain.NotificationKind, item domain.NotificationItem, sendAt time.Time) (*domain.NotificationQueueEntry, error)
	ClaimDueNotifications(ctx context.Context, now time.Time, limit int) ([]*domain.NotificationQueueEntry, error)
	MarkNotificationSent(ctx context.Context, id int64, at time.Time) error
	MarkNotificationFailed(ctx context.Context, id int64, reason string) error
}
