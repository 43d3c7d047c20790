package services

import (
	"context"
	"log/slog"
	"time"
)

// Notifier dispatches fire-and-forget notifications. Dispatch returns
// immediately; delivery runs on a detached unit of work whose outcome
// is never observable to the caller. Failures are logged and dropped,
// never retried.
type Notifier struct {
	sender  EmailSender
	timeout time.Duration
	logger  *slog.Logger
}

func NewNotifier(sender EmailSender, logger *slog.Logger) *Notifier {
	return &Notifier{
		sender:  sender,
		timeout: 30 * time.Second,
		logger:  logger,
	}
}

// Dispatch queues one message. The delivery context is detached from
// the triggering request so an early client disconnect cannot cancel
// the send.
func (n *Notifier) Dispatch(to, subject, body string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()

		if err := n.sender.Send(ctx, to, subject, body); err != nil {
			n.logger.Error("notification delivery failed",
				slog.String("to", to),
				slog.Any("error", err))
		}
	}()
}
