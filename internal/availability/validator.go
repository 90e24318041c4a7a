// Package availability decides whether a staff member can take a shift given
// the shifts they already hold.
package availability

import (
	"math"
	"slices"
	"time"

	"github.com/carelink-staffing/shift-core/backend/internal/domain"
)

type Result struct {
	Valid      bool                      `json:"valid"`
	Reason     domain.ValidationReason   `json:"reason,omitempty"`
	Conflicts  []domain.ConflictInterval `json:"conflicts,omitempty"`
	TotalHours float64                   `json:"totalHours"`
}

// Err converts an invalid result into a *domain.ValidationError.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return &domain.ValidationError{
		Reason:     r.Reason,
		Conflicts:  r.Conflicts,
		TotalHours: r.TotalHours,
	}
}

type Validator struct {
	maxHours float64
	window   time.Duration
}

func NewValidator(maxHours float64, windowHours int) *Validator {
	return &Validator{
		maxHours: maxHours,
		window:   time.Duration(windowHours) * time.Hour,
	}
}

// LookbackDays is how many calendar days either side of a shift date the
// caller must load to give Validate a complete picture.
func (v *Validator) LookbackDays() int {
	return int(math.Ceil(v.window.Hours()/24)) + 1
}

// Validate checks candidate against existing, the shifts already held by
// staffID. It has no side effects.
func (v *Validator) Validate(candidate *domain.Shift, staffID int64, existing []*domain.Shift) Result {
	cStart, cEnd, err := candidate.Window(time.UTC)
	if err != nil {
		return Result{Reason: domain.ReasonMissingField}
	}

	others := make([]*domain.Shift, 0, len(existing))
	for _, s := range existing {
		if s.ID == candidate.ID {
			continue
		}
		if !s.IsAssignedTo(staffID) || !slices.Contains(domain.ActiveShiftStatuses, s.Status) {
			continue
		}
		others = append(others, s)
	}

	conflicts := []domain.ConflictInterval{}
	for _, s := range others {
		start, end, err := s.Window(time.UTC)
		if err != nil {
			continue
		}
		if cStart.Before(end) && start.Before(cEnd) {
			conflicts = append(conflicts, domain.ConflictInterval{
				ShiftID:   s.ID,
				Date:      s.Date.Format(time.DateOnly),
				StartTime: s.StartTime,
				EndTime:   s.EndTime,
				ClientID:  s.ClientID,
			})
		}
	}
	if len(conflicts) > 0 {
		return Result{Reason: domain.ReasonOverlap, Conflicts: conflicts}
	}

	// Calendar-date proxy: every shift whose date is within the window of the
	// candidate's date counts toward the cap, regardless of its clock times.
	total := candidate.DurationHours
	cDay := dayOf(candidate.Date)
	for _, s := range others {
		diff := dayOf(s.Date).Sub(cDay)
		if diff < 0 {
			diff = -diff
		}
		if diff <= v.window {
			total += s.DurationHours
		}
	}
	total = domain.Round2(total)

	if total > v.maxHours {
		return Result{Reason: domain.Reason24hLimit, TotalHours: total}
	}

	return Result{Valid: true, TotalHours: total}
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
