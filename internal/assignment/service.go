// Package assignment orchestrates every operator and staff action that changes
// who holds a shift or where it sits in its lifecycle. Each action runs in one
// transaction that re-reads and re-validates under lock; notifications follow
// the commit and never undo it.
package assignment

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/carelink-staffing/shift-core/backend/internal/availability"
	"github.com/carelink-staffing/shift-core/backend/internal/domain"
	"github.com/carelink-staffing/shift-core/backend/internal/lifecycle"
	"github.com/carelink-staffing/shift-core/backend/internal/metrics"
	"github.com/carelink-staffing/shift-core/backend/internal/store"
)

type Service struct {
	store      store.Store
	validator  *availability.Validator
	timesheets store.TimesheetCreator
	notifier   Notifier
	notifyWait time.Duration
	now        func() time.Time
}

func NewService(st store.Store, validator *availability.Validator, timesheets store.TimesheetCreator, notifier Notifier, notifyWait time.Duration) *Service {
	return &Service{
		store:      st,
		validator:  validator,
		timesheets: timesheets,
		notifier:   notifier,
		notifyWait: notifyWait,
		now:        time.Now,
	}
}

// Result describes the outcome of a committed action.
type Result struct {
	ShiftID          int64                      `json:"shiftID"`
	StaffName        string                     `json:"staffName,omitempty"`
	NewStatus        domain.ShiftStatus         `json:"newStatus"`
	TimesheetCreated bool                       `json:"timesheetCreated"`
	TimesheetID      *int64                     `json:"timesheetID,omitempty"`
	Notification     domain.NotificationOutcome `json:"notification"`
	NoOp             bool                       `json:"noOp"`
}

// checkAvailability loads the staff member's surrounding schedule inside tx
// and validates candidate against it. The caller must hold the staff lock.
func (s *Service) checkAvailability(ctx context.Context, tx store.Tx, candidate *domain.Shift, staffID int64) (*availability.Result, error) {
	days := s.validator.LookbackDays()
	from := candidate.Date.AddDate(0, 0, -days)
	to := candidate.Date.AddDate(0, 0, days)

	existing, err := tx.ListStaffShifts(ctx, staffID, from, to, domain.ActiveShiftStatuses)
	if err != nil {
		return nil, err
	}

	res := s.validator.Validate(candidate, staffID, existing)
	return &res, nil
}

// record persists the shift and appends the journey entry for its new state.
func (s *Service) record(ctx context.Context, tx store.Tx, shift *domain.Shift, method domain.JourneyMethod, actorID int64, staffID *int64, notes string) error {
	if err := tx.UpdateShift(ctx, shift); err != nil {
		return err
	}

	return tx.AppendJourney(ctx, &domain.JourneyEntry{
		ShiftID: shift.ID,
		State:   shift.Status,
		ActorID: &actorID,
		StaffID: staffID,
		Method:  method,
		Notes:   notes,
	})
}

// activeBooking returns the shift's non-cancelled booking, or nil.
func activeBooking(ctx context.Context, tx store.Tx, shiftID int64) (*domain.Booking, error) {
	b, err := tx.GetActiveBookingByShift(ctx, shiftID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, err
	}
	return b, nil
}

// book makes staffID's booking for shift the active one. A booking already
// held by staffID is updated in place; one held by anybody else is cancelled.
func (s *Service) book(ctx context.Context, tx store.Tx, shift *domain.Shift, staffID int64, confirmed bool, method domain.ConfirmationMethod) (*domain.Booking, error) {
	current, err := activeBooking(ctx, tx, shift.ID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	status := domain.BookingStatusPending
	var confirmedAt *time.Time
	if confirmed {
		status = domain.BookingStatusConfirmed
		confirmedAt = &now
	}

	if current != nil && current.StaffID == staffID {
		current.Status = status
		current.ConfirmationMethod = method
		current.ConfirmedByStaffAt = confirmedAt
		if err := tx.UpdateBooking(ctx, current); err != nil {
			return nil, err
		}
		return current, nil
	}

	if current != nil {
		if err := cancelBooking(ctx, tx, current); err != nil {
			return nil, err
		}
	}

	b := &domain.Booking{
		AgencyID:           shift.AgencyID,
		ShiftID:            shift.ID,
		StaffID:            staffID,
		ClientID:           shift.ClientID,
		Status:             status,
		ConfirmationMethod: method,
		BookingDate:        now,
		ShiftDate:          shift.Date,
		StartTime:          shift.StartTime,
		EndTime:            shift.EndTime,
		ConfirmedByStaffAt: confirmedAt,
	}
	if err := tx.CreateBooking(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func cancelBooking(ctx context.Context, tx store.Tx, b *domain.Booking) error {
	b.Status = domain.BookingStatusCancelled
	return tx.UpdateBooking(ctx, b)
}

// createTimesheet asks the timesheet collaborator for a draft. Failure is
// logged and reported in the result; the assignment stands regardless.
func (s *Service) createTimesheet(ctx context.Context, booking *domain.Booking, shift *domain.Shift, res *Result) {
	if booking == nil {
		return
	}

	id, err := s.timesheets.CreateDraftTimesheet(context.WithoutCancel(ctx), booking, shift)
	if err != nil {
		slog.Warn("failed to create draft timesheet", "shift_id", shift.ID, "booking_id", booking.ID, "error", err)
		return
	}

	shift.TimesheetID = &id
	res.TimesheetCreated = true
	res.TimesheetID = &id
}

// dispatch runs send detached from the request so it survives the caller
// going away, and waits at most notifyWait for it. Past that the outcome is
// reported as pending and delivery carries on in the background.
func (s *Service) dispatch(ctx context.Context, send func(ctx context.Context) domain.NotificationOutcome) domain.NotificationOutcome {
	done := make(chan domain.NotificationOutcome, 1)
	go func() {
		done <- send(context.WithoutCancel(ctx))
	}()

	timer := time.NewTimer(s.notifyWait)
	defer timer.Stop()

	select {
	case out := <-done:
		return out
	case <-timer.C:
		return domain.NotificationOutcome{Pending: true}
	}
}

// client loads the shift's client for a notification. A failed lookup only
// degrades the message, so it is logged and nil is returned.
func (s *Service) client(ctx context.Context, shift *domain.Shift) *domain.Client {
	c, err := s.store.GetClient(ctx, shift.ClientID)
	if err != nil {
		slog.Warn("failed to load client for notification", "shift_id", shift.ID, "client_id", shift.ClientID, "error", err)
		return nil
	}
	return c
}

func observe(event lifecycle.Event, err error) {
	metrics.ObserveTransition(string(event), err)
}
