package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

type EventType string

const PaymentCompleted EventType = "payment.completed"

// Event is a completed domain operation worth telling someone about. The
// record behind it is already persisted when Notify runs.
type Event struct {
	Type         EventType
	Recipient    string
	PaymentID    string
	EnrollmentID string
	Amount       float64
}

// Recorder counts dispatch outcomes; *observability.Prom satisfies it.
type Recorder interface {
	IncNotification(result string)
}

type Dispatcher struct {
	notifier Notifier
	timeout  time.Duration
	metrics  Recorder
}

func NewDispatcher(notifier Notifier, timeout time.Duration, metrics Recorder) *Dispatcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Dispatcher{notifier: notifier, timeout: timeout, metrics: metrics}
}

// Notify makes one bounded delivery attempt. It never reports failure to
// the caller: errors are logged and counted, nothing is retried.
func (d *Dispatcher) Notify(ctx context.Context, ev Event) {
	msg, ok := messageFor(ev)
	if !ok {
		d.record("skipped")
		slog.DebugContext(ctx, "notification skipped", "event", ev.Type)
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if err := d.notifier.SendEmail(sendCtx, msg); err != nil {
		d.record("failed")
		slog.WarnContext(ctx, "notification dispatch failed",
			"event", ev.Type,
			"to", msg.To,
			"err", err,
		)
		return
	}

	d.record("sent")
}

func (d *Dispatcher) record(result string) {
	if d.metrics != nil {
		d.metrics.IncNotification(result)
	}
}

func messageFor(ev Event) (Email, bool) {
	if ev.Recipient == "" {
		return Email{}, false
	}

	switch ev.Type {
	case PaymentCompleted:
		return Email{
			To:      ev.Recipient,
			Subject: "Payment Confirmation",
			Body: fmt.Sprintf("Your payment of %.2f for enrollment %s was successful. Payment ID: %s",
				ev.Amount, ev.EnrollmentID, ev.PaymentID),
		}, true
	default:
		return Email{}, false
	}
}
