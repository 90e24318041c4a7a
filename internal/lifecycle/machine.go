// Package lifecycle holds the shift state machine. Every status change in the
// system goes through Fire so the transition table is the single authority on
// which moves are legal.
package lifecycle

import (
	"context"
	"errors"

	"github.com/carelink-staffing/shift-core/backend/internal/availability"
	"github.com/carelink-staffing/shift-core/backend/internal/domain"
	"github.com/carelink-staffing/shift-core/backend/internal/finlock"
	"github.com/looplab/fsm"
)

type Event string

const (
	EventAssign          Event = "assign"
	EventAssignConfirmed Event = "assign_confirmed"
	EventConfirm         Event = "confirm"
	EventUnassign        Event = "unassign"
	EventStart           Event = "start"
	EventFinish          Event = "finish"
	EventComplete        Event = "complete"
	EventCancel          Event = "cancel"
	EventNoShow          Event = "no_show"
	EventDispute         Event = "dispute"
)

func states(ss ...domain.ShiftStatus) []string {
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		out = append(out, string(s))
	}
	return out
}

var transitions = fsm.Events{
	{Name: string(EventAssign), Src: states(domain.ShiftStatusOpen), Dst: string(domain.ShiftStatusAssigned)},
	{Name: string(EventAssignConfirmed), Src: states(domain.ShiftStatusOpen, domain.ShiftStatusAssigned), Dst: string(domain.ShiftStatusConfirmed)},
	{Name: string(EventConfirm), Src: states(domain.ShiftStatusAssigned), Dst: string(domain.ShiftStatusConfirmed)},
	{Name: string(EventUnassign), Src: states(domain.ShiftStatusAssigned), Dst: string(domain.ShiftStatusOpen)},
	{Name: string(EventStart), Src: states(domain.ShiftStatusConfirmed), Dst: string(domain.ShiftStatusInProgress)},
	{Name: string(EventFinish), Src: states(domain.ShiftStatusInProgress), Dst: string(domain.ShiftStatusAwaitingAdminClosure)},
	{Name: string(EventComplete), Src: states(domain.ShiftStatusAwaitingAdminClosure), Dst: string(domain.ShiftStatusCompleted)},
	{Name: string(EventCancel), Src: states(domain.ShiftStatusOpen, domain.ShiftStatusAssigned, domain.ShiftStatusConfirmed), Dst: string(domain.ShiftStatusCancelled)},
	{Name: string(EventNoShow), Src: states(domain.ShiftStatusConfirmed, domain.ShiftStatusAwaitingAdminClosure), Dst: string(domain.ShiftStatusNoShow)},
	{
		Name: string(EventDispute),
		Src: states(
			domain.ShiftStatusOpen,
			domain.ShiftStatusAssigned,
			domain.ShiftStatusConfirmed,
			domain.ShiftStatusInProgress,
			domain.ShiftStatusAwaitingAdminClosure,
		),
		Dst: string(domain.ShiftStatusDisputed),
	},
}

// Input carries what the guards need to judge a transition. Only the fields
// relevant to the fired event are consulted.
type Input struct {
	Staff              *domain.Staff
	Availability       *availability.Result
	BypassConfirmation bool
	Reason             string
}

// Fire applies event to shift and returns the resulting status. The shift is
// not modified; persisting the new status is the caller's job.
func Fire(ctx context.Context, shift *domain.Shift, event Event, in Input) (domain.ShiftStatus, error) {
	var guardErr error
	machine := fsm.NewFSM(
		string(shift.Status),
		transitions,
		fsm.Callbacks{
			"before_event": func(_ context.Context, e *fsm.Event) {
				if err := guard(shift, Event(e.Event), in); err != nil {
					guardErr = err
					e.Cancel(err)
				}
			},
		},
	)

	if err := machine.Event(ctx, string(event)); err != nil {
		if guardErr != nil {
			return shift.Status, guardErr
		}

		var invalid fsm.InvalidEventError
		var unknown fsm.UnknownEventError
		switch {
		case errors.As(err, &invalid), errors.As(err, &unknown):
			return shift.Status, &domain.TransitionError{From: shift.Status, Event: string(event)}
		default:
			return shift.Status, err
		}
	}

	return domain.ShiftStatus(machine.Current()), nil
}

// Can reports whether event is legal from the shift's current status,
// ignoring guards.
func Can(shift *domain.Shift, event Event) bool {
	machine := fsm.NewFSM(string(shift.Status), transitions, fsm.Callbacks{})
	return machine.Can(string(event))
}

func guard(shift *domain.Shift, event Event, in Input) error {
	switch event {
	case EventAssign, EventAssignConfirmed:
		if event == EventAssignConfirmed && !in.BypassConfirmation {
			return &domain.ValidationError{Reason: domain.ReasonBypassRequired, Message: "direct confirmation requires bypassing staff confirmation"}
		}
		return CheckAssignee(shift, in.Staff, in.Availability)
	case EventConfirm, EventStart:
		if shift.AssignedStaffID == nil {
			return &domain.ValidationError{Reason: domain.ReasonMissingField, Field: "assigned_staff_id"}
		}
	case EventComplete:
		return finlock.CheckClosure(shift)
	case EventDispute:
		if in.Reason == "" {
			return &domain.ValidationError{Reason: domain.ReasonMissingField, Field: "reason"}
		}
	}
	return nil
}

// CheckAssignee runs the staff guards shared by assignment and reassignment.
func CheckAssignee(shift *domain.Shift, staff *domain.Staff, res *availability.Result) error {
	if staff == nil {
		return &domain.ValidationError{Reason: domain.ReasonMissingField, Field: "staff_id"}
	}
	// Staff of another agency are reported as unknown.
	if staff.AgencyID != shift.AgencyID {
		return &domain.ValidationError{Reason: domain.ReasonMissingField, Field: "staff_id", Message: "staff member not found"}
	}
	if !staff.IsActive() {
		return &domain.ValidationError{Reason: domain.ReasonStaffInactive, Message: staff.FullName() + " is not active"}
	}
	if staff.Role != shift.RoleRequired {
		return &domain.ValidationError{
			Reason:  domain.ReasonRoleMismatch,
			Message: "shift requires " + string(shift.RoleRequired) + ", staff is " + string(staff.Role),
		}
	}
	if res == nil {
		return &domain.ValidationError{Reason: domain.ReasonMissingField, Field: "availability"}
	}
	return res.Err()
}
