package notify

import (
	"context"
	"errors"

	"github.com/carelink-staffing/shift-core/backend/internal/domain"
)

// ErrNoAddress means the recipient has no address for the channel. The
// dispatcher reports it as skipped rather than failed.
var ErrNoAddress = errors.New("recipient has no address for channel")

type Message struct {
	Kind   domain.NotificationKind
	Text   string
	Item   domain.NotificationItem
	Reason string
}

// Sender delivers one message on one channel.
type Sender interface {
	Send(ctx context.Context, to domain.Recipient, msg Message) error
}

// Publisher is satisfied by *broker.Publisher.
type Publisher interface {
	PublishJSON(ctx context.Context, queue string, v any) error
}

// EmailSender hands a rendered-on-consume mail message to the email worker.
type EmailSender struct {
	pub   Publisher
	queue string
}

func NewEmailSender(pub Publisher, queue string) *EmailSender {
	return &EmailSender{pub: pub, queue: queue}
}

func (s *EmailSender) Send(ctx context.Context, to domain.Recipient, msg Message) error {
	if to.Email == "" {
		return ErrNoAddress
	}
	return s.pub.PublishJSON(ctx, s.queue, domain.MailMessage{
		Type: string(msg.Kind),
		To:   to.Email,
		Data: domain.ShiftMailData{FirstName: to.FirstName, Item: msg.Item, Reason: msg.Reason},
	})
}

// TextSender publishes SMS or WhatsApp text to the gateway queue.
type TextSender struct {
	pub   Publisher
	queue string
}

func NewTextSender(pub Publisher, queue string) *TextSender {
	return &TextSender{pub: pub, queue: queue}
}

func (s *TextSender) Send(ctx context.Context, to domain.Recipient, msg Message) error {
	if to.Phone == "" {
		return ErrNoAddress
	}
	return s.pub.PublishJSON(ctx, s.queue, domain.TextMessage{Kind: msg.Kind, To: to.Phone, Body: msg.Text})
}
