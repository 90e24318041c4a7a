package assignment

import (
	"context"

	"github.com/carelink-staffing/shift-core/backend/internal/domain"
	"github.com/carelink-staffing/shift-core/backend/internal/lifecycle"
	"github.com/carelink-staffing/shift-core/backend/internal/store"
)

type AssignOptions struct {
	// BypassConfirmation moves the shift straight to confirmed on the
	// operator's authority.
	BypassConfirmation bool
	Method             domain.JourneyMethod
}

// Assign gives the shift to staffID. Re-assigning the same staff member to the
// state they already hold is a no-op.
func (s *Service) Assign(ctx context.Context, shiftID, staffID int64, opts AssignOptions, actorID int64) (*Result, error) {
	event := lifecycle.EventAssign
	target := domain.ShiftStatusAssigned
	if opts.BypassConfirmation {
		event = lifecycle.EventAssignConfirmed
		target = domain.ShiftStatusConfirmed
	}
	if opts.Method == "" {
		opts.Method = domain.MethodAdminAssigned
		if opts.BypassConfirmation {
			opts.Method = domain.MethodAdminConfirmed
		}
	}

	var (
		shift   *domain.Shift
		staff   *domain.Staff
		booking *domain.Booking
		res     = &Result{ShiftID: shiftID}
	)

	err := s.store.InTx(ctx, func(tx store.Tx) error {
		var err error

		// Step 1: re-read the shift and staff under lock
		shift, err = tx.GetShiftForUpdate(ctx, shiftID)
		if err != nil {
			return err
		}
		staff, err = tx.GetStaff(ctx, staffID)
		if err != nil {
			return err
		}
		res.StaffName = staff.FullName()

		// Step 2: somebody else holds it
		if shift.AssignedStaffID != nil && *shift.AssignedStaffID != staffID {
			conflict := &domain.ConflictError{ShiftID: shift.ID, AssignedStaffID: *shift.AssignedStaffID}
			if holder, err := tx.GetStaff(ctx, *shift.AssignedStaffID); err == nil {
				conflict.AssignedStaffName = holder.FullName()
			}
			return conflict
		}

		// Step 3: already done
		if shift.IsAssignedTo(staffID) && shift.Status == target {
			res.NoOp = true
			res.NewStatus = shift.Status
			return nil
		}

		// Step 4: validate against the staff member's schedule
		if err := tx.LockStaffSchedule(ctx, staffID); err != nil {
			return err
		}
		available, err := s.checkAvailability(ctx, tx, shift, staffID)
		if err != nil {
			return err
		}

		next, err := lifecycle.Fire(ctx, shift, event, lifecycle.Input{
			Staff:              staff,
			Availability:       available,
			BypassConfirmation: opts.BypassConfirmation,
		})
		if err != nil {
			return err
		}

		// Step 5: write shift, journey and booking
		shift.Status = next
		shift.AssignedStaffID = &staffID
		if next == domain.ShiftStatusConfirmed {
			now := s.now()
			shift.StaffConfirmedAt = &now
		}
		if err := s.record(ctx, tx, shift, opts.Method, actorID, &staffID, ""); err != nil {
			return err
		}

		method := domain.ConfirmationApp
		if opts.BypassConfirmation {
			method = domain.ConfirmationAdminBypass
		}
		booking, err = s.book(ctx, tx, shift, staffID, opts.BypassConfirmation, method)
		if err != nil {
			return err
		}

		res.NewStatus = next
		return nil
	})
	if !res.NoOp {
		observe(event, err)
	}
	if err != nil {
		return nil, err
	}
	if res.NoOp {
		return res, nil
	}

	// Step 6: side effects after commit
	s.createTimesheet(ctx, booking, shift, res)

	client := s.client(ctx, shift)
	res.Notification = s.dispatch(ctx, func(ctx context.Context) domain.NotificationOutcome {
		out := s.notifier.NotifyAssignment(ctx, staff, shift, client)
		if opts.BypassConfirmation && client != nil {
			out.Merge(s.notifier.NotifyClientConfirmed(ctx, client, staff, shift))
		}
		return out
	})

	return res, nil
}

type ConfirmOptions struct {
	Method domain.JourneyMethod
	// StaffID, when set, must be the assignee. It is set when staff confirm
	// their own shift.
	StaffID *int64
}

// Confirm moves an assigned shift to confirmed and confirms its booking.
func (s *Service) Confirm(ctx context.Context, shiftID int64, opts ConfirmOptions, actorID int64) (*Result, error) {
	if opts.Method == "" {
		opts.Method = domain.MethodAdminConfirmed
		if opts.StaffID != nil {
			opts.Method = domain.MethodStaffConfirmed
		}
	}

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
		if opts.StaffID != nil && !shift.IsAssignedTo(*opts.StaffID) {
			conflict := &domain.ConflictError{ShiftID: shift.ID}
			if shift.AssignedStaffID != nil {
				conflict.AssignedStaffID = *shift.AssignedStaffID
			}
			return conflict
		}
		if shift.Status == domain.ShiftStatusConfirmed {
			res.NoOp = true
			res.NewStatus = shift.Status
			return nil
		}

		next, err := lifecycle.Fire(ctx, shift, lifecycle.EventConfirm, lifecycle.Input{})
		if err != nil {
			return err
		}

		staffID := *shift.AssignedStaffID
		staff, err = tx.GetStaff(ctx, staffID)
		if err != nil {
			return err
		}
		res.StaffName = staff.FullName()

		now := s.now()
		shift.Status = next
		shift.StaffConfirmedAt = &now
		if err := s.record(ctx, tx, shift, opts.Method, actorID, &staffID, ""); err != nil {
			return err
		}

		method := domain.ConfirmationAdminBypass
		if opts.Method == domain.MethodStaffConfirmed {
			method = domain.ConfirmationApp
		}
		if _, err := s.book(ctx, tx, shift, staffID, true, method); err != nil {
			return err
		}

		res.NewStatus = next
		return nil
	})
	if !res.NoOp {
		observe(lifecycle.EventConfirm, err)
	}
	if err != nil {
		return nil, err
	}
	if res.NoOp {
		return res, nil
	}

	client := s.client(ctx, shift)
	res.Notification = s.dispatch(ctx, func(ctx context.Context) domain.NotificationOutcome {
		out := s.notifier.NotifyStaffConfirmed(ctx, staff, shift, client)
		if client != nil {
			out.Merge(s.notifier.NotifyClientConfirmed(ctx, client, staff, shift))
		}
		return out
	})

	return res, nil
}
