package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/geocoder89/learnhub/internal/credentials"
	"github.com/geocoder89/learnhub/internal/domain/user"
	"github.com/geocoder89/learnhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type Accounts interface {
	Register(ctx context.Context, req user.RegisterRequest) (user.User, error)
	Authenticate(ctx context.Context, email, password string) (credentials.Session, error)
}

type UserReader interface {
	Get(ctx context.Context, id string) (user.User, error)
	List(ctx context.Context) ([]user.User, error)
}

type UsersHandler struct {
	accounts Accounts
	users    UserReader
}

func NewUsersHandler(accounts Accounts, users UserReader) *UsersHandler {
	return &UsersHandler{accounts: accounts, users: users}
}

func (h *UsersHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	u, err := h.accounts.Register(ctx.Request.Context(), req)
	if errors.Is(err, credentials.ErrDuplicateEmail) {
		RespondBadRequest(ctx, "email_taken", "Email already registered")
		return
	}
	if err != nil {
		RespondStoreError(ctx, err, "User not found")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"user_id": u.ID,
		"status":  "registered",
		"name":    u.Name,
		"email":   u.Email,
		"role":    u.Role,
	})
}

func (h *UsersHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	sess, err := h.accounts.Authenticate(ctx.Request.Context(), req.Email, req.Password)
	if errors.Is(err, credentials.ErrInvalidCredentials) {
		RespondUnauthorized(ctx, "Invalid email or password")
		return
	}
	if err != nil {
		RespondStoreError(ctx, err, "Invalid email or password")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"token":   sess.Token,
		"user_id": sess.User.ID,
		"role":    sess.User.Role,
		"status":  "logged_in",
	})
}

func (h *UsersHandler) List(ctx *gin.Context) {
	users, err := h.users.List(ctx.Request.Context())
	if err != nil {
		RespondStoreError(ctx, err, "Users not found")
		return
	}

	profiles := make([]user.Profile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, u.Profile())
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"total": len(profiles),
		"users": profiles,
	})
}

// Me requires middlewares.RequireAuth in front of it.
func (h *UsersHandler) Me(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "Missing identity context")
		return
	}

	u, err := h.users.Get(ctx.Request.Context(), userID)
	if err != nil {
		RespondStoreError(ctx, err, "User not found")
		return
	}

	ctx.JSON(http.StatusOK, u.Profile())
}
