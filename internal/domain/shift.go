package domain

import (
	"fmt"
	"math"
	"time"
)

type ShiftStatus string

const (
	ShiftStatusOpen                 ShiftStatus = "open"
	ShiftStatusAssigned             ShiftStatus = "assigned"
	ShiftStatusConfirmed            ShiftStatus = "confirmed"
	ShiftStatusInProgress           ShiftStatus = "in_progress"
	ShiftStatusAwaitingAdminClosure ShiftStatus = "awaiting_admin_closure"
	ShiftStatusCompleted            ShiftStatus = "completed"
	ShiftStatusCancelled            ShiftStatus = "cancelled"
	ShiftStatusNoShow               ShiftStatus = "no_show"
	ShiftStatusDisputed             ShiftStatus = "disputed"
)

// ActiveShiftStatuses are the statuses that occupy a staff member's schedule.
var ActiveShiftStatuses = []ShiftStatus{
	ShiftStatusAssigned,
	ShiftStatusConfirmed,
	ShiftStatusInProgress,
}

func (s ShiftStatus) IsTerminal() bool {
	switch s {
	case ShiftStatusCompleted, ShiftStatusCancelled, ShiftStatusNoShow:
		return true
	}
	return false
}

type Urgency string

const (
	UrgencyNormal   Urgency = "normal"
	UrgencyUrgent   Urgency = "urgent"
	UrgencyCritical Urgency = "critical"
)

type ClosureOutcome string

const (
	ClosureCompletedAsPlanned      ClosureOutcome = "completed_as_planned"
	ClosureCompletedWithAdjustment ClosureOutcome = "completed_with_adjustment"
)

type Shift struct {
	ID                int64           `json:"id"`
	AgencyID          int64           `json:"agencyID"`
	ClientID          int64           `json:"clientID"`
	RoleRequired      StaffRole       `json:"roleRequired"`
	Date              time.Time       `json:"date"`
	StartTime         string          `json:"startTime"`
	EndTime           string          `json:"endTime"`
	DurationHours     float64         `json:"durationHours"`
	BreakMinutes      int32           `json:"breakDurationMinutes"`
	PayRate           float64         `json:"payRate"`
	ChargeRate        float64         `json:"chargeRate"`
	Status            ShiftStatus     `json:"status"`
	AssignedStaffID   *int64          `json:"assignedStaffID"`
	Urgency           Urgency         `json:"urgency"`
	WorkLocation      *string         `json:"workLocationWithinSite"`
	Notes             string          `json:"notes"`
	FinancialLocked   bool            `json:"financialLocked"`
	FinancialLockedAt *time.Time      `json:"financialLockedAt"`
	FinancialLockedBy *int64          `json:"financialLockedBy"`
	BroadcastSentAt   *time.Time      `json:"broadcastSentAt"`
	StaffConfirmedAt  *time.Time      `json:"staffConfirmedAt"`
	ShiftStartedAt    *time.Time      `json:"shiftStartedAt"`
	ShiftEndedAt      *time.Time      `json:"shiftEndedAt"`
	AdminClosedAt     *time.Time      `json:"adminClosedAt"`
	AdminClosedBy     *int64          `json:"adminClosedBy"`
	ClosureOutcome    *ClosureOutcome `json:"adminClosureOutcome"`
	TimesheetID       *int64          `json:"timesheetID"`
	CreatedAt         time.Time       `json:"createdAt"`
	Version           int32           `json:"-"`
}

// IsAssignedTo reports whether staffID currently holds the shift.
func (s *Shift) IsAssignedTo(staffID int64) bool {
	return s.AssignedStaffID != nil && *s.AssignedStaffID == staffID
}

// Window returns the absolute start and end of the shift in loc. An end time
// at or before the start time rolls over to the next day.
func (s *Shift) Window(loc *time.Location) (time.Time, time.Time, error) {
	start, err := ParseClock(s.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := ParseClock(s.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end <= start {
		end += 24 * time.Hour
	}

	day := time.Date(s.Date.Year(), s.Date.Month(), s.Date.Day(), 0, 0, 0, 0, loc)
	return day.Add(start), day.Add(end), nil
}

// ShiftUpdate is a partial edit of a shift. Nil fields are left untouched.
type ShiftUpdate struct {
	Date            *time.Time
	StartTime       *string
	EndTime         *string
	DurationHours   *float64
	BreakMinutes    *int32
	PayRate         *float64
	ChargeRate      *float64
	WorkLocation    *string
	Urgency         *Urgency
	Notes           *string
	AssignedStaffID *int64
}

// ParseClock parses "15:04" or "15:04:05" into an offset from midnight.
func ParseClock(s string) (time.Duration, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		t, err := time.Parse(layout, s)
		if err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, nil
		}
	}
	return 0, fmt.Errorf("invalid time of day %q", s)
}

// SpanHours returns the hours between two clock times, treating an end at or
// before the start as overnight. The result is rounded to two decimals.
func SpanHours(startClock, endClock string) (float64, error) {
	start, err := ParseClock(startClock)
	if err != nil {
		return 0, err
	}
	end, err := ParseClock(endClock)
	if err != nil {
		return 0, err
	}
	if end <= start {
		end += 24 * time.Hour
	}
	return Round2((end - start).Hours()), nil
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
