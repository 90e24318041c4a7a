package mailer

import (
	"context"
	"errors"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Worker consumes the email queue.
type Worker struct {
	composer *Composer
	sender   *Sender
}

func NewWorker(composer *Composer, sender *Sender) *Worker {
	return &Worker{composer: composer, sender: sender}
}

// Handle composes and sends one message. requeue reports whether a failed
// message is worth delivering again later.
func (w *Worker) Handle(ctx context.Context, body []byte) (requeue bool, err error) {
	m, err := w.composer.Compose(body)
	if err != nil {
		return !errors.Is(err, ErrMalformed), err
	}

	if err := w.sender.Send(ctx, m); err != nil {
		return ctx.Err() == nil, err
	}

	return false, nil
}

// Run handles deliveries until ctx is done or the channel closes. Every
// delivery is acked or nacked exactly once.
func (w *Worker) Run(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}

			requeue, err := w.Handle(ctx, d.Body)
			if err != nil {
				slog.Error("failed to deliver mail", "message_id", d.MessageId, "requeue", requeue, "error", err)
				_ = d.Nack(false, requeue)
				continue
			}

			_ = d.Ack(false)
		}
	}
}
