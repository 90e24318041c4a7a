// Package finlock enforces the financial lock on shifts whose timesheet has
// been approved.
package finlock

import (
	"github.com/carelink-staffing/shift-core/backend/internal/domain"
)

const (
	FieldPayRate       = "pay_rate"
	FieldChargeRate    = "charge_rate"
	FieldDurationHours = "duration_hours"
	FieldWorkLocation  = "work_location_within_site"
)

var LockedFields = []string{FieldPayRate, FieldChargeRate, FieldDurationHours, FieldWorkLocation}

// CheckUpdate rejects the whole update if the shift is locked and the update
// names any locked field, regardless of whether the value would change. Time
// edits that move the span of a locked shift count as a duration write.
func CheckUpdate(shift *domain.Shift, upd *domain.ShiftUpdate) error {
	if !shift.FinancialLocked {
		return nil
	}

	fields := []string{}
	if upd.PayRate != nil {
		fields = append(fields, FieldPayRate)
	}
	if upd.ChargeRate != nil {
		fields = append(fields, FieldChargeRate)
	}
	if upd.DurationHours != nil || changesSpan(shift, upd) {
		fields = append(fields, FieldDurationHours)
	}
	if upd.WorkLocation != nil {
		fields = append(fields, FieldWorkLocation)
	}

	if len(fields) > 0 {
		return &domain.FinancialLockViolation{ShiftID: shift.ID, Fields: fields}
	}
	return nil
}

// CheckClosure rejects closing a locked shift, since closure rewrites hours
// and amounts.
func CheckClosure(shift *domain.Shift) error {
	if !shift.FinancialLocked {
		return nil
	}
	return &domain.FinancialLockViolation{
		ShiftID: shift.ID,
		Fields:  []string{FieldDurationHours, FieldPayRate, FieldChargeRate},
	}
}

func changesSpan(shift *domain.Shift, upd *domain.ShiftUpdate) bool {
	if upd.StartTime == nil && upd.EndTime == nil {
		return false
	}

	start, end := shift.StartTime, shift.EndTime
	if upd.StartTime != nil {
		start = *upd.StartTime
	}
	if upd.EndTime != nil {
		end = *upd.EndTime
	}

	before, err := domain.SpanHours(shift.StartTime, shift.EndTime)
	if err != nil {
		return true
	}
	after, err := domain.SpanHours(start, end)
	if err != nil {
		return true
	}
	return before != after
}
