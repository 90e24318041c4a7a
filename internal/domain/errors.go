package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrConcurrentUpdate is returned when a conditional write lost a race.
var ErrConcurrentUpdate = errors.New("record was modified concurrently")

type ValidationReason string

const (
	ReasonOverlap           ValidationReason = "overlap"
	Reason24hLimit          ValidationReason = "24h_limit"
	ReasonRoleMismatch      ValidationReason = "role_mismatch"
	ReasonStaffInactive     ValidationReason = "staff_inactive"
	ReasonMissingField      ValidationReason = "missing_field"
	ReasonNotesRequired     ValidationReason = "notes_required"
	ReasonInvalidTransition ValidationReason = "invalid_transition"
	ReasonBypassRequired    ValidationReason = "bypass_required"
)

// ConflictInterval describes an existing shift that collides with a candidate.
type ConflictInterval struct {
	ShiftID   int64  `json:"shiftID"`
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	ClientID  int64  `json:"clientID"`
}

type ValidationError struct {
	Reason     ValidationReason   `json:"reason"`
	Field      string             `json:"field,omitempty"`
	Message    string             `json:"message,omitempty"`
	Conflicts  []ConflictInterval `json:"conflicts,omitempty"`
	TotalHours float64            `json:"totalHours,omitempty"`
}

func (e *ValidationError) Error() string {
	switch e.Reason {
	case ReasonOverlap:
		return fmt.Sprintf("staff already booked on %d overlapping shift(s)", len(e.Conflicts))
	case Reason24hLimit:
		return fmt.Sprintf("assignment would bring staff to %.2f hours within 24 hours", e.TotalHours)
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Reason, e.Field)
	}
	return string(e.Reason)
}

// ConflictError is returned when another staff member already holds the shift.
type ConflictError struct {
	ShiftID           int64  `json:"shiftID"`
	AssignedStaffID   int64  `json:"assignedStaffID"`
	AssignedStaffName string `json:"assignedStaffName"`
}

func (e *ConflictError) Error() string {
	if e.AssignedStaffName != "" {
		return fmt.Sprintf("shift %d is already assigned to %s", e.ShiftID, e.AssignedStaffName)
	}
	return fmt.Sprintf("shift %d is already assigned to staff %d", e.ShiftID, e.AssignedStaffID)
}

type FinancialLockViolation struct {
	ShiftID int64    `json:"shiftID"`
	Fields  []string `json:"fields"`
}

func (e *FinancialLockViolation) Error() string {
	return fmt.Sprintf("shift %d is financially locked; cannot modify %s", e.ShiftID, strings.Join(e.Fields, ", "))
}

type TransitionError struct {
	From  ShiftStatus `json:"from"`
	Event string      `json:"event"`
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s a shift in status %s", e.Event, e.From)
}

type RebroadcastConfirmationRequired struct {
	ShiftID int64     `json:"shiftID"`
	SentAt  time.Time `json:"sentAt"`
}

func (e *RebroadcastConfirmationRequired) Error() string {
	return fmt.Sprintf("shift %d was already broadcast at %s", e.ShiftID, e.SentAt.Format(time.RFC3339))
}
