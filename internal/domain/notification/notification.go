package notification

import (
	"time"
)

type Status string

const (
	StatusSent   Status = "sent"
	StatusFailed Status = "failed"
)

type Notification struct {
	ID        string    `json:"id"`
	Recipient string    `json:"user_email"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Status    Status    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type SendEmailRequest struct {
	UserEmail string `json:"user_email" binding:"required,email"`
	Subject   string `json:"subject" binding:"required,max=200"`
	Body      string `json:"body" binding:"required"`
}

func NewFromSendEmailRequest(id string, req SendEmailRequest, status Status) Notification {
	return Notification{
		ID:        id,
		Recipient: req.UserEmail,
		Subject:   req.Subject,
		Body:      req.Body,
		Status:    status,
		Timestamp: time.Now().UTC(),
	}
}
