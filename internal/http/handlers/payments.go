package handlers

import (
	"context"
	"net/http"

	"github.com/geocoder89/learnhub/internal/domain/payment"
	"github.com/geocoder89/learnhub/internal/notifications"
	"github.com/gin-gonic/gin"
)

type PaymentStore interface {
	Put(ctx context.Context, build func(id string) payment.Payment) (payment.Payment, error)
	Get(ctx context.Context, id string) (payment.Payment, error)
	List(ctx context.Context) ([]payment.Payment, error)
}

// EventNotifier never fails; *notifications.Dispatcher satisfies it.
type EventNotifier interface {
	Notify(ctx context.Context, ev notifications.Event)
}

type PaymentsHandler struct {
	repo     PaymentStore
	notifier EventNotifier
}

func NewPaymentsHandler(repo PaymentStore, notifier EventNotifier) *PaymentsHandler {
	return &PaymentsHandler{repo: repo, notifier: notifier}
}

func (h *PaymentsHandler) Initiate(ctx *gin.Context) {
	var req payment.InitiateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	p, err := h.repo.Put(ctx.Request.Context(), func(id string) payment.Payment {
		return payment.NewFromInitiateRequest(id, req)
	})
	if err != nil {
		RespondStoreError(ctx, err, "Payment not found")
		return
	}

	// the payment is persisted; whatever happens to the notification, the
	// answer below stands
	if p.UserEmail != "" && h.notifier != nil {
		h.notifier.Notify(ctx.Request.Context(), notifications.Event{
			Type:         notifications.PaymentCompleted,
			Recipient:    p.UserEmail,
			PaymentID:    p.ID,
			EnrollmentID: p.EnrollmentID,
			Amount:       p.Amount,
		})
	}

	ctx.JSON(http.StatusOK, gin.H{
		"payment_id":    p.ID,
		"status":        p.Status,
		"amount":        p.Amount,
		"enrollment_id": p.EnrollmentID,
		"method":        p.Method,
	})
}

func (h *PaymentsHandler) Status(ctx *gin.Context) {
	p, err := h.repo.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		RespondStoreError(ctx, err, "Payment not found")
		return
	}

	ctx.JSON(http.StatusOK, p)
}

func (h *PaymentsHandler) List(ctx *gin.Context) {
	all, err := h.repo.List(ctx.Request.Context())
	if err != nil {
		RespondStoreError(ctx, err, "Payments not found")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"total":    len(all),
		"payments": all,
	})
}
