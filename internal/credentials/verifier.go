package credentials

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/geocoder89/learnhub/internal/auth"
	"github.com/geocoder89/learnhub/internal/cache"
	"github.com/geocoder89/learnhub/internal/domain/user"
	"github.com/geocoder89/learnhub/internal/idgen"
	"github.com/geocoder89/learnhub/internal/security"
	"github.com/geocoder89/learnhub/internal/store"
)

var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or unknown token")
)

const resolveCacheTTL = time.Minute

type Session struct {
	Token string
	User  user.User
}

// tokenRecord is one entry of the token map, keyed by the token's HMAC.
type tokenRecord struct {
	ID       string    `json:"id"`
	UserID   string    `json:"user_id"`
	IssuedAt time.Time `json:"issued_at"`
}

type Verifier struct {
	users    *store.Table[user.User]
	tokens   *store.Table[tokenRecord]
	signer   *auth.Manager
	resolved *cache.Cache[string]

	// serializes the email uniqueness check with the insert that follows it
	registerMu sync.Mutex
}

func NewVerifier(backend store.Backend, signer *auth.Manager) *Verifier {
	return &Verifier{
		users:    store.NewTable[user.User](backend, store.KindUsers, idgen.User),
		tokens:   store.NewTable[tokenRecord](backend, store.KindTokens, ""),
		signer:   signer,
		resolved: cache.New[string](resolveCacheTTL),
	}
}

// Users exposes the user table for read-only endpoints.
func (v *Verifier) Users() *store.Table[user.User] {
	return v.users
}

func (v *Verifier) Register(ctx context.Context, req user.RegisterRequest) (user.User, error) {
	email := user.NormalizeEmail(req.Email)

	digest, err := security.HashPassword(req.Password)
	if err != nil {
		return user.User{}, fmt.Errorf("hash password: %w", err)
	}

	v.registerMu.Lock()
	defer v.registerMu.Unlock()

	existing, err := v.users.QueryByField(ctx, "email", email)
	if err != nil {
		return user.User{}, err
	}
	if len(existing) > 0 {
		return user.User{}, ErrDuplicateEmail
	}

	// registerMu only orders callers in this process; the backend's unique
	// email check catches another replica that got there first
	u, err := v.users.Put(ctx, func(id string) user.User {
		return user.New(id, req.Name, email, digest, req.Role)
	})
	if errors.Is(err, store.ErrConflict) {
		return user.User{}, ErrDuplicateEmail
	}
	return u, err
}

// Authenticate returns ErrInvalidCredentials for an unknown email and for a
// wrong password alike.
func (v *Verifier) Authenticate(ctx context.Context, email, password string) (Session, error) {
	matches, err := v.users.QueryByField(ctx, "email", user.NormalizeEmail(email))
	if err != nil {
		return Session{}, err
	}
	if len(matches) == 0 {
		return Session{}, ErrInvalidCredentials
	}

	u := matches[0]
	if err := security.CheckPassword(u.PasswordHash, password); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	token, err := v.signer.Mint(u.ID, u.Role)
	if err != nil {
		return Session{}, fmt.Errorf("mint token: %w", err)
	}

	err = v.tokens.Insert(ctx, tokenRecord{
		ID:       v.signer.HashToken(token),
		UserID:   u.ID,
		IssuedAt: time.Now().UTC(),
	})
	if err != nil {
		return Session{}, fmt.Errorf("record token: %w", err)
	}

	return Session{Token: token, User: u}, nil
}

// Resolve maps a token previously issued by Authenticate to its user id.
func (v *Verifier) Resolve(ctx context.Context, token string) (string, error) {
	key := v.signer.HashToken(token)

	if userID, ok := v.resolved.Get(key); ok {
		return userID, nil
	}

	claims, err := v.signer.Parse(token)
	if err != nil {
		return "", ErrInvalidToken
	}

	rec, err := v.tokens.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrInvalidToken
	}
	if err != nil {
		return "", err
	}

	if rec.UserID != claims.Subject {
		return "", ErrInvalidToken
	}

	v.resolved.Set(key, rec.UserID)
	return rec.UserID, nil
}

// EnsureAdmin registers an admin account unless one with that email
// exists. A blank email or password disables seeding.
func (v *Verifier) EnsureAdmin(ctx context.Context, email, password, name string) error {
	if email == "" || password == "" {
		slog.Info("admin seeding skipped: ADMIN_EMAIL or ADMIN_PASSWORD not set")
		return nil
	}

	_, err := v.Register(ctx, user.RegisterRequest{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     user.RoleAdmin,
	})
	switch {
	case errors.Is(err, ErrDuplicateEmail):
		slog.Info("admin already present", "email", user.NormalizeEmail(email))
		return nil
	case err != nil:
		return fmt.Errorf("seed admin: %w", err)
	}

	slog.Info("seeded admin user", "email", user.NormalizeEmail(email))
	return nil
}

// IsRejected reports whether err is a token problem (401) as opposed to a
// store failure.
func IsRejected(err error) bool {
	return errors.Is(err, ErrInvalidToken)
}
