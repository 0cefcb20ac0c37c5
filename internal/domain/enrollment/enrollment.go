package enrollment

import (
	"time"
)

type Status string

const (
	StatusPendingPayment Status = "pending_payment"
	StatusPaid           Status = "paid"
	StatusCancelled      Status = "cancelled"
)

// UserID and CourseID are not checked against their owning services.
type Enrollment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CourseID  string    `json:"course_id"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type EnrollRequest struct {
	UserID   string `json:"user_id" binding:"required"`
	CourseID string `json:"course_id" binding:"required"`
}

func NewFromEnrollRequest(id string, req EnrollRequest) Enrollment {
	return Enrollment{
		ID:        id,
		UserID:    req.UserID,
		CourseID:  req.CourseID,
		Status:    StatusPendingPayment,
		CreatedAt: time.Now().UTC(),
	}
}
