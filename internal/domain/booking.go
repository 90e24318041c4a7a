package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

type ConfirmationMethod string

const (
	ConfirmationAdminBypass ConfirmationMethod = "admin_bypass"
	ConfirmationApp         ConfirmationMethod = "app"
)

type Booking struct {
	ID                 int64              `json:"id"`
	AgencyID           int64              `json:"agencyID"`
	ShiftID            int64              `json:"shiftID"`
	StaffID            int64              `json:"staffID"`
	ClientID           int64              `json:"clientID"`
	Status             BookingStatus      `json:"status"`
	ConfirmationMethod ConfirmationMethod `json:"confirmationMethod"`
	BookingDate        time.Time          `json:"bookingDate"`
	ShiftDate          time.Time          `json:"shiftDate"`
	StartTime          string             `json:"startTime"`
	EndTime            string             `json:"endTime"`
	ConfirmedByStaffAt *time.Time         `json:"confirmedByStaffAt"`
	CreatedAt          time.Time          `json:"createdAt"`
	Version            int32              `json:"-"`
}

type TimesheetStatus string

const (
	TimesheetStatusDraft     TimesheetStatus = "draft"
	TimesheetStatusSubmitted TimesheetStatus = "submitted"
	TimesheetStatusApproved  TimesheetStatus = "approved"
	TimesheetStatusRejected  TimesheetStatus = "rejected"
)

type Timesheet struct {
	ID                 int64           `json:"id"`
	AgencyID           int64           `json:"agencyID"`
	BookingID          *int64          `json:"bookingID"`
	ShiftID            int64           `json:"shiftID"`
	StaffID            int64           `json:"staffID"`
	ClientID           int64           `json:"clientID"`
	ScheduledStart     string          `json:"scheduledStart"`
	ScheduledEnd       string          `json:"scheduledEnd"`
	ActualStart        *string         `json:"actualStart"`
	ActualEnd          *string         `json:"actualEnd"`
	TotalHours         float64         `json:"totalHours"`
	PayRate            float64         `json:"payRate"`
	ChargeRate         float64         `json:"chargeRate"`
	StaffPayAmount     float64         `json:"staffPayAmount"`
	ClientChargeAmount float64         `json:"clientChargeAmount"`
	Status             TimesheetStatus `json:"status"`
	Notes              string          `json:"notes"`
	CreatedAt          time.Time       `json:"createdAt"`
	Version            int32           `json:"-"`
}
