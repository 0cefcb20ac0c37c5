package notifications

import "context"

type Email struct {
	To      string
	Subject string
	Body    string
}

type Notifier interface {
	SendEmail(ctx context.Context, msg Email) error
}
