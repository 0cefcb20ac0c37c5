package notifications

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strconv"
	"time"
)

var ErrProviderDown = errors.New("provider down (simulated)")

// LogMailer is the notification service's delivery channel: it writes the
// message to the log. Delay and Fail simulate a slow or broken provider.
type LogMailer struct {
	Delay time.Duration
	Fail  bool
}

// NewLogMailerFromEnv reads NOTIFIER_SLEEP_MS and NOTIFIER_FAIL=1.
func NewLogMailerFromEnv() *LogMailer {
	m := &LogMailer{Fail: os.Getenv("NOTIFIER_FAIL") == "1"}

	if ms, err := strconv.Atoi(os.Getenv("NOTIFIER_SLEEP_MS")); err == nil && ms > 0 {
		m.Delay = time.Duration(ms) * time.Millisecond
	}

	return m
}

func (m *LogMailer) SendEmail(ctx context.Context, msg Email) error {
	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if m.Fail {
		return ErrProviderDown
	}

	slog.InfoContext(ctx, "notification.email",
		"to", msg.To,
		"subject", msg.Subject,
		"body_len", len(msg.Body),
	)
	return nil
}
