package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const emailPath = "/notify/email"

// HTTPNotifier delivers through the notification service's POST /notify/email.
type HTTPNotifier struct {
	client *resty.Client
}

func NewHTTPNotifier(baseURL string, timeout time.Duration) *HTTPNotifier {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	return &HTTPNotifier{client: client}
}

func (n *HTTPNotifier) SendEmail(ctx context.Context, msg Email) error {
	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"user_email": msg.To,
			"subject":    msg.Subject,
			"body":       msg.Body,
		}).
		Post(emailPath)
	if err != nil {
		return fmt.Errorf("notification-service unreachable: %w", err)
	}

	if resp.IsError() {
		return fmt.Errorf("notification-service returned %d: %s", resp.StatusCode(), resp.String())
	}

	return nil
}
