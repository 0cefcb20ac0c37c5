package payment

import (
	"time"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

const DefaultMethod = "card"

type Payment struct {
	ID           string    `json:"id"`
	EnrollmentID string    `json:"enrollment_id"`
	Amount       float64   `json:"amount"`
	Method       string    `json:"method"`
	Status       Status    `json:"status"`
	UserEmail    string    `json:"user_email,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type InitiateRequest struct {
	EnrollmentID string  `json:"enrollment_id" binding:"required"`
	Amount       float64 `json:"amount" binding:"required,gt=0"`
	Method       string  `json:"method" binding:"omitempty,max=40"`
	UserEmail    string  `json:"user_email" binding:"omitempty,email"`
}

// NewFromInitiateRequest records a settled payment; there is no gateway
// behind it, so every initiation succeeds.
func NewFromInitiateRequest(id string, req InitiateRequest) Payment {
	method := req.Method
	if method == "" {
		method = DefaultMethod
	}

	return Payment{
		ID:           id,
		EnrollmentID: req.EnrollmentID,
		Amount:       req.Amount,
		Method:       method,
		Status:       StatusSuccess,
		UserEmail:    req.UserEmail,
		CreatedAt:    time.Now().UTC(),
	}
}
