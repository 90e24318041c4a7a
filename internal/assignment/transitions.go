package assignment

import (
	"context"
	"slices"

	"github.com/carelink-staffing/shift-core/backend/internal/domain"
	"github.com/carelink-staffing/shift-core/backend/internal/lifecycle"
	"github.com/carelink-staffing/shift-core/backend/internal/store"
)

// Unassign returns an assigned shift to open and cancels its booking.
func (s *Service) Unassign(ctx context.Context, shiftID int64, reason string, actorID int64) (*Result, error) {
	var (
		shift *domain.Shift
		staff *domain.Staff
		res   = &Result{ShiftID: shiftID}
	)

	err := s.store.InTx(ctx, func(tx store.Tx) error {
		var err error

		shift, err = tx.GetShiftForUpdate(ctx, shiftID)
		if err != nil {
			return err
		}
		if shift.Status == domain.ShiftStatusOpen && shift.AssignedStaffID == nil {
			res.NoOp = true
			res.NewStatus = shift.Status
			return nil
		}

		next, err := lifecycle.Fire(ctx, shift, lifecycle.EventUnassign, lifecycle.Input{})
		if err != nil {
			return err
		}

		staffID := *shift.AssignedStaffID
		staff, err = tx.GetStaff(ctx, staffID)
		if err != nil {
			return err
		}
		res.StaffName = staff.FullName()

		shift.Status = next
		shift.AssignedStaffID = nil
		shift.StaffConfirmedAt = nil
		if err := s.record(ctx, tx, shift, domain.MethodAdminUnassigned, actorID, &staffID, reason); err != nil {
			return err
		}

		booking, err := activeBooking(ctx, tx, shift.ID)
		if err != nil {
			return err
		}
		if booking != nil {
			if err := cancelBooking(ctx, tx, booking); err != nil {
				return err
			}
		}

		res.NewStatus = next
		return nil
	})
	if !res.NoOp {
		observe(lifecycle.EventUnassign, err)
	}
	if err != nil {
		return nil, err
	}
	if res.NoOp {
		return res, nil
	}

	client := s.client(ctx, shift)
	res.Notification = s.dispatch(ctx, func(ctx context.Context) domain.NotificationOutcome {
		return s.notifier.NotifyUnassigned(ctx, staff, shift, client, reason)
	})

	return res, nil
}

// Cancel cancels the shift and any booking on it. The assignee, if any, stays
// on the record for the audit trail and is told about the cancellation.
func (s *Service) Cancel(ctx context.Context, shiftID int64, reason string, actorID int64) (*Result, error) {
	var (
		shift *domain.Shift
		staff *domain.Staff
		res   = &Result{ShiftID: shiftID}
	)

	err := s.store.InTx(ctx, func(tx store.Tx) error {
		var err error

		shift, err = tx.GetShiftForUpdate(ctx, shiftID)
		if err != nil {
			return err
		}
		if shift.Status == domain.ShiftStatusCancelled {
			res.NoOp = true
			res.NewStatus = shift.Status
			return nil
		}

		next, err := lifecycle.Fire(ctx, shift, lifecycle.EventCancel, lifecycle.Input{})
		if err != nil {
			return err
		}

		if shift.AssignedStaffID != nil {
			staff, err = tx.GetStaff(ctx, *shift.AssignedStaffID)
			if err != nil {
				return err
			}
			res.StaffName = staff.FullName()
		}

		shift.Status = next
		if err := s.record(ctx, tx, shift, domain.MethodAdminCancelled, actorID, shift.AssignedStaffID, reason); err != nil {
			return err
		}

		booking, err := activeBooking(ctx, tx, shift.ID)
		if err != nil {
			return err
		}
		if booking != nil {
			if err := cancelBooking(ctx, tx, booking); err != nil {
				return err
			}
		}

		res.NewStatus = next
		return nil
	})
	if !res.NoOp {
		observe(lifecycle.EventCancel, err)
	}
	if err != nil {
		return nil, err
	}
	if res.NoOp || staff == nil {
		return res, nil
	}

	client := s.client(ctx, shift)
	res.Notification = s.dispatch(ctx, func(ctx context.Context) domain.NotificationOutcome {
		return s.notifier.NotifyCancelled(ctx, staff, shift, client, reason)
	})

	return res, nil
}

// MarkNoShow records that the assignee did not attend.
func (s *Service) MarkNoShow(ctx context.Context, shiftID int64, notes string, actorID int64) (*Result, error) {
	return s.simple(ctx, shiftID, lifecycle.EventNoShow, domain.MethodAdminNoShow, lifecycle.Input{}, notes, actorID)
}

// Dispute parks the shift for investigation. A reason is required.
func (s *Service) Dispute(ctx context.Context, shiftID int64, reason string, actorID int64) (*Result, error) {
	return s.simple(ctx, shiftID, lifecycle.EventDispute, domain.MethodAdminDisputed, lifecycle.Input{Reason: reason}, reason, actorID)
}

// simple fires an event that only changes the status and journals it.
func (s *Service) simple(ctx context.Context, shiftID int64, event lifecycle.Event, method domain.JourneyMethod, in lifecycle.Input, notes string, actorID int64) (*Result, error) {
	res := &Result{ShiftID: shiftID}

	err := s.store.InTx(ctx, func(tx store.Tx) error {
		shift, err := tx.GetShiftForUpdate(ctx, shiftID)
		if err != nil {
			return err
		}

		next, err := lifecycle.Fire(ctx, shift, event, in)
		if err != nil {
			return err
		}

		shift.Status = next
		if err := s.record(ctx, tx, shift, method, actorID, shift.AssignedStaffID, notes); err != nil {
			return err
		}

		res.NewStatus = next
		return nil
	})
	observe(event, err)
	if err != nil {
		return nil, err
	}

	return res, nil
}

// RevertDispute restores a disputed shift to the status it held before the
// most recent dispute.
func (s *Service) RevertDispute(ctx context.Context, shiftID int64, notes string, actorID int64) (*Result, error) {
	res := &Result{ShiftID: shiftID}

	err := s.store.InTx(ctx, func(tx store.Tx) error {
		shift, err := tx.GetShiftForUpdate(ctx, shiftID)
		if err != nil {
			return err
		}
		if shift.Status != domain.ShiftStatusDisputed {
			return &domain.TransitionError{From: shift.Status, Event: "revert_dispute"}
		}

		entries, err := tx.ListJourney(ctx, shift.ID)
		if err != nil {
			return err
		}
		restored := statusBeforeDispute(entries)
		if restored != domain.ShiftStatusOpen && shift.AssignedStaffID == nil {
			return &domain.ValidationError{
				Reason:  domain.ReasonMissingField,
				Field:   "assigned_staff_id",
				Message: "cannot restore " + string(restored) + " without an assigned staff member",
			}
		}

		// The assignee may have been booked elsewhere while the shift was
		// disputed.
		if slices.Contains(domain.ActiveShiftStatuses, restored) {
			staffID := *shift.AssignedStaffID
			if err := tx.LockStaffSchedule(ctx, staffID); err != nil {
				return err
			}
			staff, err := tx.GetStaff(ctx, staffID)
			if err != nil {
				return err
			}
			available, err := s.checkAvailability(ctx, tx, shift, staffID)
			if err != nil {
				return err
			}
			if err := lifecycle.CheckAssignee(shift, staff, available); err != nil {
				return err
			}
		}

		shift.Status = restored
		if err := s.record(ctx, tx, shift, domain.MethodAdminDisputeReverted, actorID, shift.AssignedStaffID, notes); err != nil {
			return err
		}

		res.NewStatus = restored
		return nil
	})
	observe("revert_dispute", err)
	if err != nil {
		return nil, err
	}

	return res, nil
}

// statusBeforeDispute walks the journey backwards to the latest disputed entry
// and returns the state recorded just before it. A journey without one falls
// back to open.
func statusBeforeDispute(entries []*domain.JourneyEntry) domain.ShiftStatus {
	ordered := slices.Clone(entries)
	slices.SortFunc(ordered, func(a, b *domain.JourneyEntry) int {
		return int(a.Seq - b.Seq)
	})

	for i := len(ordered) - 1; i > 0; i-- {
		if ordered[i].State != domain.ShiftStatusDisputed {
			continue
		}
		if prev := ordered[i-1].State; prev != domain.ShiftStatusDisputed {
			return prev
		}
	}
	return domain.ShiftStatusOpen
}
