package utils

import (
	"errors"
	"fmt"

	"github.com/carelink-staffing/shift-core/backend/internal/domain"
)

// ValidateShiftTimes checks the clock times of a new or edited shift. An end
// time before the start time is an overnight shift, an equal one is not.
func ValidateShiftTimes(shift *domain.Shift) error {
	start, err := domain.ParseClock(shift.StartTime)
	if err != nil {
		return fmt.Errorf("invalid start time %q", shift.StartTime)
	}
	end, err := domain.ParseClock(shift.EndTime)
	if err != nil {
		return fmt.Errorf("invalid end time %q", shift.EndTime)
	}
	if start == end {
		return errors.New("start and end time must differ")
	}

	span, _ := domain.SpanHours(shift.StartTime, shift.EndTime)
	if shift.BreakMinutes < 0 || float64(shift.BreakMinutes)/60 >= span {
		return errors.New("break must be shorter than the shift")
	}

	return nil
}

// ValidateRates rejects negative rates and a charge rate below the pay rate.
func ValidateRates(payRate, chargeRate float64) error {
	if payRate < 0 || chargeRate < 0 {
		return errors.New("rates cannot be negative")
	}

	if chargeRate < payRate {
		return errors.New("charge rate cannot be lower than pay rate")
	}

	return nil
}
