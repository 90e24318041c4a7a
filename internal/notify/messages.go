package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/carelink-staffing/shift-core/backend/internal/domain"
)

func itemFor(shift *domain.Shift, client *domain.Client, staff *domain.Staff) domain.NotificationItem {
	item := domain.NotificationItem{
		ShiftID:       shift.ID,
		Date:          shift.Date.Format(time.DateOnly),
		StartTime:     clock(shift.StartTime),
		EndTime:       clock(shift.EndTime),
		DurationHours: shift.DurationHours,
		Role:          strings.ReplaceAll(string(shift.RoleRequired), "_", " "),
		PayRate:       shift.PayRate,
		Notes:         shift.Notes,
	}
	if client != nil {
		item.ClientName = client.Name
		item.Location = client.Address
	}
	if shift.WorkLocation != nil && *shift.WorkLocation != "" {
		if item.Location != "" {
			item.Location += ", "
		}
		item.Location += *shift.WorkLocation
	}
	if staff != nil {
		item.StaffName = staff.FullName()
	}
	return item
}

// clock trims seconds from a database time of day.
func clock(s string) string {
	if len(s) == len("15:04:05") {
		return s[:5]
	}
	return s
}

func textFor(kind domain.NotificationKind, item domain.NotificationItem, reason string) string {
	when := fmt.Sprintf("%s %s-%s", item.Date, item.StartTime, item.EndTime)

	switch kind {
	case domain.NotificationShiftAssignment:
		return fmt.Sprintf("New shift: %s at %s, %s (%.2fh, £%.2f/h). Open the app to confirm.", item.Role, item.ClientName, when, item.DurationHours, item.PayRate)
	case domain.NotificationShiftConfirmedStaff:
		return fmt.Sprintf("Confirmed: %s at %s, %s. See you there.", item.Role, item.ClientName, when)
	case domain.NotificationShiftReassigned:
		return fmt.Sprintf("Your shift at %s on %s has been reassigned to another colleague. You are no longer booked.", item.ClientName, when)
	case domain.NotificationShiftUnassigned:
		return withReason(fmt.Sprintf("You have been removed from the shift at %s on %s.", item.ClientName, when), reason)
	case domain.NotificationShiftCancelled:
		return withReason(fmt.Sprintf("Cancelled: your shift at %s on %s.", item.ClientName, when), reason)
	case domain.NotificationUrgentShift:
		return fmt.Sprintf("URGENT cover needed: %s at %s, %s (£%.2f/h). Reply or open the app to accept.", item.Role, item.ClientName, when, item.PayRate)
	default:
		return fmt.Sprintf("Shift update for %s on %s.", item.ClientName, when)
	}
}

func withReason(text, reason string) string {
	if reason == "" {
		return text
	}
	return text + " Reason: " + reason
}
