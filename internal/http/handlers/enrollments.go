package handlers

import (
	"context"
	"net/http"

	"github.com/geocoder89/learnhub/internal/domain/enrollment"
	"github.com/gin-gonic/gin"
)

type EnrollmentStore interface {
	Put(ctx context.Context, build func(id string) enrollment.Enrollment) (enrollment.Enrollment, error)
	List(ctx context.Context) ([]enrollment.Enrollment, error)
	QueryByField(ctx context.Context, field, value string) ([]enrollment.Enrollment, error)
}

type EnrollmentsHandler struct {
	repo EnrollmentStore
}

func NewEnrollmentsHandler(repo EnrollmentStore) *EnrollmentsHandler {
	return &EnrollmentsHandler{repo: repo}
}

// Enroll does not check that the user or course exist.
func (h *EnrollmentsHandler) Enroll(ctx *gin.Context) {
	var req enrollment.EnrollRequest

	if !BindJSON(ctx, &req) {
		return
	}

	e, err := h.repo.Put(ctx.Request.Context(), func(id string) enrollment.Enrollment {
		return enrollment.NewFromEnrollRequest(id, req)
	})
	if err != nil {
		RespondStoreError(ctx, err, "Enrollment not found")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"enrollment_id": e.ID,
		"status":        e.Status,
		"user_id":       e.UserID,
		"course_id":     e.CourseID,
	})
}

func (h *EnrollmentsHandler) List(ctx *gin.Context) {
	all, err := h.repo.List(ctx.Request.Context())
	if err != nil {
		RespondStoreError(ctx, err, "Enrollments not found")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"total":       len(all),
		"enrollments": all,
	})
}

// ListByUser answers an empty list, not 404, for a user with no enrollments.
func (h *EnrollmentsHandler) ListByUser(ctx *gin.Context) {
	userID := ctx.Param("user_id")

	mine, err := h.repo.QueryByField(ctx.Request.Context(), "user_id", userID)
	if err != nil {
		RespondStoreError(ctx, err, "Enrollments not found")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"user_id":     userID,
		"total":       len(mine),
		"enrollments": mine,
	})
}
