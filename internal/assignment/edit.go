package assignment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"github.com/carelink-staffing/shift-core/backend/internal/domain"
	"github.com/carelink-staffing/shift-core/backend/internal/finlock"
	"github.com/carelink-staffing/shift-core/backend/internal/lifecycle"
	"github.com/carelink-staffing/shift-core/backend/internal/store"
)

type UpdateResult struct {
	Shift           *domain.Shift              `json:"shift"`
	Reassigned      bool                       `json:"reassigned"`
	PreviousStaffID *int64                     `json:"previousStaffID,omitempty"`
	Notification    domain.NotificationOutcome `json:"notification"`
}

// UpdateShift applies a partial edit. The financial lock is checked first
// against the freshly locked row. Changing the assignee of an assigned or
// confirmed shift is a reassignment: the new staff member is validated like an
// assignment and both staff members are notified.
func (s *Service) UpdateShift(ctx context.Context, shiftID int64, upd *domain.ShiftUpdate, actorID int64) (*UpdateResult, error) {
	var (
		shift           *domain.Shift
		oldStaff, staff *domain.Staff
		res             = &UpdateResult{}
	)

	err := s.store.InTx(ctx, func(tx store.Tx) error {
		var err error

		shift, err = tx.GetShiftForUpdate(ctx, shiftID)
		if err != nil {
			return err
		}
		if err := finlock.CheckUpdate(shift, upd); err != nil {
			return err
		}
		if shift.Status.IsTerminal() {
			return &domain.TransitionError{From: shift.Status, Event: "update"}
		}

		next := *shift
		timesChanged, err := applyUpdate(&next, upd)
		if err != nil {
			return err
		}

		reassigning := upd.AssignedStaffID != nil && !shift.IsAssignedTo(*upd.AssignedStaffID)
		switch {
		case reassigning:
			if !slices.Contains([]domain.ShiftStatus{domain.ShiftStatusAssigned, domain.ShiftStatusConfirmed}, shift.Status) {
				return &domain.TransitionError{From: shift.Status, Event: "reassign"}
			}

			newID := *upd.AssignedStaffID
			staff, err = tx.GetStaff(ctx, newID)
			if err != nil {
				return err
			}
			oldStaff, err = tx.GetStaff(ctx, *shift.AssignedStaffID)
			if err != nil {
				return err
			}
			if err := tx.LockStaffSchedule(ctx, newID); err != nil {
				return err
			}
			available, err := s.checkAvailability(ctx, tx, &next, newID)
			if err != nil {
				return err
			}
			if err := lifecycle.CheckAssignee(&next, staff, available); err != nil {
				return err
			}

			next.AssignedStaffID = &newID
			if next.Status == domain.ShiftStatusConfirmed {
				now := s.now()
				next.StaffConfirmedAt = &now
			}

		case timesChanged && shift.AssignedStaffID != nil:
			staffID := *shift.AssignedStaffID
			holder, err := tx.GetStaff(ctx, staffID)
			if err != nil {
				return err
			}
			if err := tx.LockStaffSchedule(ctx, staffID); err != nil {
				return err
			}
			available, err := s.checkAvailability(ctx, tx, &next, staffID)
			if err != nil {
				return err
			}
			if err := lifecycle.CheckAssignee(&next, holder, available); err != nil {
				return err
			}
		}

		if !reassigning {
			if err := tx.UpdateShift(ctx, &next); err != nil {
				return err
			}
			shift = &next
			return nil
		}

		notes := fmt.Sprintf("Reassigned from %s to %s", oldStaff.FullName(), staff.FullName())
		if err := s.record(ctx, tx, &next, domain.MethodAdminReassigned, actorID, next.AssignedStaffID, notes); err != nil {
			return err
		}

		confirmed := next.Status == domain.ShiftStatusConfirmed
		method := domain.ConfirmationApp
		if confirmed {
			method = domain.ConfirmationAdminBypass
		}
		booking, err := s.book(ctx, tx, &next, *next.AssignedStaffID, confirmed, method)
		if err != nil {
			return err
		}
		if err := retargetTimesheet(ctx, tx, &next, booking); err != nil {
			return err
		}

		res.Reassigned = true
		res.PreviousStaffID = shift.AssignedStaffID
		shift = &next
		return nil
	})
	if res.Reassigned || err != nil {
		observe("reassign", err)
	}
	if err != nil {
		return nil, err
	}

	res.Shift = shift
	if !res.Reassigned {
		return res, nil
	}

	client := s.client(ctx, shift)
	res.Notification = s.dispatch(ctx, func(ctx context.Context) domain.NotificationOutcome {
		out := s.notifier.NotifyReassigned(ctx, oldStaff, shift, client)
		out.Merge(s.notifier.NotifyAssignment(ctx, staff, shift, client))
		return out
	})

	return res, nil
}

// applyUpdate copies the set fields of upd onto shift and reports whether the
// schedule moved. A time change without an explicit duration recomputes it.
func applyUpdate(shift *domain.Shift, upd *domain.ShiftUpdate) (bool, error) {
	moved := false

	if upd.Date != nil && !upd.Date.Equal(shift.Date) {
		shift.Date = *upd.Date
		moved = true
	}
	if upd.StartTime != nil && *upd.StartTime != shift.StartTime {
		shift.StartTime = *upd.StartTime
		moved = true
	}
	if upd.EndTime != nil && *upd.EndTime != shift.EndTime {
		shift.EndTime = *upd.EndTime
		moved = true
	}

	switch {
	case upd.DurationHours != nil:
		shift.DurationHours = domain.Round2(*upd.DurationHours)
		moved = true
	case upd.StartTime != nil || upd.EndTime != nil:
		hours, err := domain.SpanHours(shift.StartTime, shift.EndTime)
		if err != nil {
			return false, &domain.ValidationError{Reason: domain.ReasonMissingField, Field: "start_time", Message: err.Error()}
		}
		shift.DurationHours = hours
	}

	if upd.BreakMinutes != nil {
		shift.BreakMinutes = *upd.BreakMinutes
	}
	if upd.PayRate != nil {
		shift.PayRate = *upd.PayRate
	}
	if upd.ChargeRate != nil {
		shift.ChargeRate = *upd.ChargeRate
	}
	if upd.WorkLocation != nil {
		shift.WorkLocation = upd.WorkLocation
	}
	if upd.Urgency != nil {
		shift.Urgency = *upd.Urgency
	}
	if upd.Notes != nil {
		shift.Notes = *upd.Notes
	}

	return moved, nil
}

// retargetTimesheet moves a draft timesheet to the new booking. Timesheets
// past draft belong to the staff member who worked them and are left alone.
func retargetTimesheet(ctx context.Context, tx store.Tx, shift *domain.Shift, booking *domain.Booking) error {
	ts, err := tx.GetTimesheetByShiftForUpdate(ctx, shift.ID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil
	case err != nil:
		return err
	}
	if ts.Status != domain.TimesheetStatusDraft {
		return nil
	}

	ts.StaffID = booking.StaffID
	ts.BookingID = &booking.ID
	return tx.UpdateTimesheet(ctx, ts)
}
