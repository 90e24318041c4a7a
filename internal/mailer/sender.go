package mailer

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/wneessen/go-mail"
)

// Client is the part of *mail.Client the sender uses.
type Client interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// Sender delivers mail over SMTP, retrying transient failures with
// exponential backoff.
type Sender struct {
	client          Client
	maxRetries      uint64
	initialInterval time.Duration
}

func NewSender(client Client, maxRetries int) *Sender {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Sender{client: client, maxRetries: uint64(maxRetries), initialInterval: time.Second}
}

func (s *Sender) Send(ctx context.Context, m *mail.Msg) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.initialInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(b, s.maxRetries), ctx)

	return backoff.RetryNotify(
		func() error {
			return s.client.DialAndSendWithContext(ctx, m)
		},
		policy,
		func(err error, wait time.Duration) {
			slog.Warn("smtp send failed, retrying", "to", m.GetToString(), "wait", wait, "error", err)
		},
	)
}
