package domain

// MailMessage is the payload published to the email queue.
type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

// TextMessage is the payload published to the SMS and WhatsApp queues.
type TextMessage struct {
	Kind NotificationKind `json:"kind"`
	To   string           `json:"to"`
	Body string           `json:"body"`
}

type ShiftMailData struct {
	FirstName string           `json:"firstName"`
	Item      NotificationItem `json:"item"`
	Reason    string           `json:"reason,omitempty"`
}

type DigestMailData struct {
	FirstName string             `json:"firstName"`
	Kind      NotificationKind   `json:"kind"`
	Items     []NotificationItem `json:"items"`
}
