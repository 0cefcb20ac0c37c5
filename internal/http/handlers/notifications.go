package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/geocoder89/learnhub/internal/domain/notification"
	"github.com/geocoder89/learnhub/internal/notifications"
	"github.com/gin-gonic/gin"
)

type NotificationStore interface {
	Put(ctx context.Context, build func(id string) notification.Notification) (notification.Notification, error)
	List(ctx context.Context) ([]notification.Notification, error)
}

type NotificationsHandler struct {
	repo   NotificationStore
	mailer notifications.Notifier
}

func NewNotificationsHandler(repo NotificationStore, mailer notifications.Notifier) *NotificationsHandler {
	return &NotificationsHandler{repo: repo, mailer: mailer}
}

// SendEmail delivers first and records the outcome either way. A failed
// delivery is still stored, with status "failed", and answered with 502.
func (h *NotificationsHandler) SendEmail(ctx *gin.Context) {
	var req notification.SendEmailRequest

	if !BindJSON(ctx, &req) {
		return
	}

	status := notification.StatusSent
	sendErr := h.mailer.SendEmail(ctx.Request.Context(), notifications.Email{
		To:      req.UserEmail,
		Subject: req.Subject,
		Body:    req.Body,
	})
	if sendErr != nil {
		status = notification.StatusFailed
		slog.WarnContext(ctx.Request.Context(), "email delivery failed", "to", req.UserEmail, "err", sendErr)
	}

	n, err := h.repo.Put(ctx.Request.Context(), func(id string) notification.Notification {
		return notification.NewFromSendEmailRequest(id, req, status)
	})
	if err != nil {
		RespondStoreError(ctx, err, "Notification not found")
		return
	}

	if sendErr != nil {
		RespondError(ctx, http.StatusBadGateway, "delivery_failed", "Email delivery failed", gin.H{
			"notification_id": n.ID,
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"notification_id": n.ID,
		"status":          n.Status,
	})
}

func (h *NotificationsHandler) List(ctx *gin.Context) {
	all, err := h.repo.List(ctx.Request.Context())
	if err != nil {
		RespondStoreError(ctx, err, "Notifications not found")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"total":         len(all),
		"notifications": all,
	})
}
