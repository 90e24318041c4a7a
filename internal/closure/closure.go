// Package closure reconciles a finished shift against what was actually
// worked and moves shifts along their timeline as the clock passes.
package closure

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/carelink-staffing/shift-core/backend/internal/domain"
	"github.com/carelink-staffing/shift-core/backend/internal/lifecycle"
	"github.com/carelink-staffing/shift-core/backend/internal/metrics"
	"github.com/carelink-staffing/shift-core/backend/internal/store"
)

const defaultCompletionNote = "Shift completed as planned"

type Service struct {
	store      store.Store
	timesheets store.TimesheetCreator
	threshold  float64
	now        func() time.Time
}

// NewService returns a closure service. Completions whose actual hours differ
// from the schedule by more than threshold hours must carry notes.
func NewService(st store.Store, timesheets store.TimesheetCreator, threshold float64) *Service {
	return &Service{
		store:      st,
		timesheets: timesheets,
		threshold:  threshold,
		now:        time.Now,
	}
}

type CompletionInput struct {
	ActualStart string `json:"actualStartTime" validate:"required"`
	ActualEnd   string `json:"actualEndTime" validate:"required"`
	Notes       string `json:"notes"`
}

type Result struct {
	ShiftID            int64                 `json:"shiftID"`
	StaffName          string                `json:"staffName"`
	Outcome            domain.ClosureOutcome `json:"outcome"`
	ScheduledHours     float64               `json:"scheduledHours"`
	ActualHours        float64               `json:"actualHours"`
	DifferenceHours    float64               `json:"differenceHours"`
	TimesheetID        int64                 `json:"timesheetID"`
	StaffPayAmount     float64               `json:"staffPayAmount"`
	ClientChargeAmount float64               `json:"clientChargeAmount"`
}

// Complete closes a shift awaiting admin closure with the actual times worked
// and writes the resulting hours and amounts onto its timesheet.
func (s *Service) Complete(ctx context.Context, shiftID int64, in CompletionInput, actorID int64) (*Result, error) {
	if _, err := domain.ParseClock(in.ActualStart); err != nil {
		return nil, &domain.ValidationError{Reason: domain.ReasonMissingField, Field: "actual_start_time", Message: err.Error()}
	}
	if _, err := domain.ParseClock(in.ActualEnd); err != nil {
		return nil, &domain.ValidationError{Reason: domain.ReasonMissingField, Field: "actual_end_time", Message: err.Error()}
	}
	actual, err := domain.SpanHours(in.ActualStart, in.ActualEnd)
	if err != nil {
		return nil, err
	}
	notes := strings.TrimSpace(in.Notes)

	if err := s.ensureTimesheet(ctx, shiftID); err != nil {
		return nil, err
	}

	res := &Result{ShiftID: shiftID, ActualHours: actual}

	err = s.store.InTx(ctx, func(tx store.Tx) error {
		shift, err := tx.GetShiftForUpdate(ctx, shiftID)
		if err != nil {
			return err
		}

		next, err := lifecycle.Fire(ctx, shift, lifecycle.EventComplete, lifecycle.Input{})
		if err != nil {
			return err
		}

		res.ScheduledHours = shift.DurationHours
		res.DifferenceHours = domain.Round2(actual - shift.DurationHours)
		if math.Abs(res.DifferenceHours) > s.threshold && notes == "" {
			return &domain.ValidationError{
				Reason:  domain.ReasonNotesRequired,
				Field:   "notes",
				Message: fmt.Sprintf("actual hours differ from scheduled by %.2fh; notes are required", res.DifferenceHours),
			}
		}

		ts, err := tx.GetTimesheetByShiftForUpdate(ctx, shift.ID)
		if err != nil {
			return err
		}
		if ts.Status == domain.TimesheetStatusApproved {
			return &domain.FinancialLockViolation{
				ShiftID: shift.ID,
				Fields:  []string{"total_hours", "staff_pay_amount", "client_charge_amount"},
			}
		}

		outcome := domain.ClosureCompletedAsPlanned
		if res.DifferenceHours != 0 {
			outcome = domain.ClosureCompletedWithAdjustment
		}

		now := s.now()
		shift.Status = next
		shift.AdminClosedAt = &now
		shift.AdminClosedBy = &actorID
		shift.ClosureOutcome = &outcome
		shift.TimesheetID = &ts.ID
		if err := tx.UpdateShift(ctx, shift); err != nil {
			return err
		}

		if err := tx.AppendJourney(ctx, &domain.JourneyEntry{
			ShiftID: shift.ID,
			State:   next,
			ActorID: &actorID,
			StaffID: shift.AssignedStaffID,
			Method:  domain.MethodAdminClosure,
			Notes:   journeyNotes(in, actual, notes),
		}); err != nil {
			return err
		}

		start, end := in.ActualStart, in.ActualEnd
		ts.ActualStart = &start
		ts.ActualEnd = &end
		ts.TotalHours = actual
		ts.StaffPayAmount = domain.Round2(actual * ts.PayRate)
		ts.ClientChargeAmount = domain.Round2(actual * ts.ChargeRate)
		ts.Notes = appendNote(ts.Notes, notes)
		if err := tx.UpdateTimesheet(ctx, ts); err != nil {
			return err
		}

		if shift.AssignedStaffID != nil {
			if staff, err := tx.GetStaff(ctx, *shift.AssignedStaffID); err == nil {
				res.StaffName = staff.FullName()
			}
		}

		res.Outcome = outcome
		res.TimesheetID = ts.ID
		res.StaffPayAmount = ts.StaffPayAmount
		res.ClientChargeAmount = ts.ClientChargeAmount
		return nil
	})
	metrics.ObserveTransition(string(lifecycle.EventComplete), err)
	if err != nil {
		return nil, err
	}

	return res, nil
}

// ensureTimesheet creates the draft timesheet a closable shift should already
// have. It runs ahead of the closure transaction because the creator commits
// on its own.
func (s *Service) ensureTimesheet(ctx context.Context, shiftID int64) error {
	shift, err := s.store.GetShift(ctx, shiftID)
	if err != nil {
		return err
	}
	if shift.Status != domain.ShiftStatusAwaitingAdminClosure {
		return nil
	}

	_, err = s.store.GetTimesheetByShift(ctx, shiftID)
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, sql.ErrNoRows):
		return err
	}

	if shift.AssignedStaffID == nil {
		return &domain.ValidationError{Reason: domain.ReasonMissingField, Field: "assigned_staff_id"}
	}

	booking, err := s.store.GetActiveBookingByShift(ctx, shiftID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		booking = &domain.Booking{StaffID: *shift.AssignedStaffID}
	case err != nil:
		return err
	}

	id, err := s.timesheets.CreateDraftTimesheet(ctx, booking, shift)
	if err != nil {
		return err
	}

	slog.Info("created missing timesheet at closure", "shift_id", shiftID, "timesheet_id", id)
	return nil
}

func journeyNotes(in CompletionInput, actual float64, notes string) string {
	text := fmt.Sprintf("Shift completed. Actual times: %s - %s (%sh)",
		in.ActualStart, in.ActualEnd, strconv.FormatFloat(actual, 'f', -1, 64))
	if notes != "" {
		text += ". " + notes
	}
	return text
}

func appendNote(existing, notes string) string {
	if notes == "" {
		notes = defaultCompletionNote
	}
	line := "[Admin Completion] " + notes
	if existing == "" {
		return line
	}
	return existing + "\n" + line
}
