package domain

import (
	"encoding/json"
	"time"
)

type NotificationKind string

const (
	NotificationShiftAssignment      NotificationKind = "shift_assignment"
	NotificationShiftConfirmedStaff  NotificationKind = "shift_confirmed_staff"
	NotificationShiftConfirmedClient NotificationKind = "shift_confirmed_client"
	NotificationShiftReassigned      NotificationKind = "shift_reassigned"
	NotificationShiftUnassigned      NotificationKind = "shift_unassigned"
	NotificationShiftCancelled       NotificationKind = "shift_cancelled"
	NotificationUrgentShift          NotificationKind = "urgent_shift"
)

type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelSMS      Channel = "sms"
	ChannelWhatsApp Channel = "whatsapp"
)

type RecipientType string

const (
	RecipientStaff  RecipientType = "staff"
	RecipientClient RecipientType = "client"
)

type Recipient struct {
	Type      RecipientType `json:"type"`
	FirstName string        `json:"firstName"`
	Email     string        `json:"email"`
	Phone     string        `json:"phone"`
}

func StaffRecipient(s *Staff) Recipient {
	return Recipient{Type: RecipientStaff, FirstName: s.FirstName, Email: s.Email, Phone: s.Phone}
}

func ClientRecipient(c *Client) Recipient {
	return Recipient{Type: RecipientClient, FirstName: c.Name, Email: c.Email}
}

// NotificationItem is one shift summary inside a batched email.
type NotificationItem struct {
	ShiftID       int64   `json:"shiftID"`
	ClientName    string  `json:"clientName"`
	Location      string  `json:"location"`
	Date          string  `json:"date"`
	StartTime     string  `json:"startTime"`
	EndTime       string  `json:"endTime"`
	DurationHours float64 `json:"durationHours"`
	Role          string  `json:"role"`
	PayRate       float64 `json:"payRate"`
	StaffName     string  `json:"staffName,omitempty"`
	Notes         string  `json:"notes,omitempty"`
}

type QueueStatus string

const (
	QueueStatusPending    QueueStatus = "pending"
	QueueStatusProcessing QueueStatus = "processing"
	QueueStatusSent       QueueStatus = "sent"
	QueueStatusFailed     QueueStatus = "failed"
)

type NotificationQueueEntry struct {
	ID                 int64              `json:"id"`
	AgencyID           int64              `json:"agencyID"`
	RecipientEmail     string             `json:"recipientEmail"`
	RecipientType      RecipientType      `json:"recipientType"`
	RecipientFirstName string             `json:"recipientFirstName"`
	Kind               NotificationKind   `json:"notificationType"`
	PendingItems       []NotificationItem `json:"pendingItems"`
	ItemCount          int32              `json:"itemCount"`
	Status             QueueStatus        `json:"status"`
	ScheduledSendAt    time.Time          `json:"scheduledSendAt"`
	SentAt             *time.Time         `json:"sentAt"`
	ErrorMessage       *string            `json:"errorMessage"`
	CreatedAt          time.Time          `json:"createdAt"`
}

func (e *NotificationQueueEntry) ItemsJSON() ([]byte, error) {
	return json.Marshal(e.PendingItems)
}

type DeliveryStatus string

const (
	DeliverySent    DeliveryStatus = "sent"
	DeliveryQueued  DeliveryStatus = "queued"
	DeliverySkipped DeliveryStatus = "skipped"
	DeliveryFailed  DeliveryStatus = "failed"
)

type ChannelResult struct {
	Channel Channel        `json:"channel"`
	Status  DeliveryStatus `json:"status"`
	Error   string         `json:"error,omitempty"`
}

// NotificationOutcome aggregates per-channel delivery for one event. Pending is
// set when the dispatch was still running when the caller stopped waiting.
type NotificationOutcome struct {
	Results []ChannelResult `json:"results"`
	Pending bool            `json:"pending"`
}

func (o NotificationOutcome) Delivered() bool {
	for _, r := range o.Results {
		if r.Status == DeliverySent || r.Status == DeliveryQueued {
			return true
		}
	}
	return false
}

// Partial reports whether at least one channel failed.
func (o NotificationOutcome) Partial() bool {
	for _, r := range o.Results {
		if r.Status == DeliveryFailed {
			return true
		}
	}
	return false
}

func (o *NotificationOutcome) Merge(other NotificationOutcome) {
	o.Results = append(o.Results, other.Results...)
	o.Pending = o.Pending || other.Pending
}
