package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/geocoder89/agenda/internal/apperr"
	"github.com/geocoder89/agenda/internal/domain/user"
	"github.com/geocoder89/agenda/internal/policy"
)

type TokenIssuer interface {
	Issue(userID, role string, unitID *string) (string, time.Time, error)
}

// Revoker records logged-out token ids until they would have expired anyway.
type Revoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      user.User `json:"user"`
}

type Auth struct {
	users   UserStore
	hasher  PasswordHasher
	tokens  TokenIssuer
	revoker Revoker

	// OnLogin, when set, receives "success", "invalid_credentials" or "error".
	OnLogin func(outcome string)
}

func NewAuth(users UserStore, hasher PasswordHasher, tokens TokenIssuer, revoker Revoker) *Auth {
	return &Auth{users: users, hasher: hasher, tokens: tokens, revoker: revoker}
}

var errBadCredentials = apperr.Unauthenticated("invalid_credentials", "Invalid email or password")

func (s *Auth) Login(ctx context.Context, req LoginRequest) (LoginResult, error) {
	email := user.NormalizeEmail(req.Email)
	if email == "" || strings.TrimSpace(req.Password) == "" {
		return LoginResult{}, apperr.Validation("validation_error", "Email and password are required")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			s.observe("invalid_credentials")
			return LoginResult{}, errBadCredentials
		}
		s.observe("error")
		return LoginResult{}, apperr.Internal("Failed to login", err)
	}

	if err := s.hasher.Check(u.PasswordHash, req.Password); err != nil {
		s.observe("invalid_credentials")
		return LoginResult{}, errBadCredentials
	}

	token, exp, err := s.tokens.Issue(u.ID, string(u.Role), u.UnitID)
	if err != nil {
		s.observe("error")
		return LoginResult{}, apperr.Internal("Failed to issue token", err)
	}

	s.observe("success")
	return LoginResult{Token: token, ExpiresAt: exp, User: u}, nil
}

// Me re-reads the account so the response carries the current unit name.
func (s *Auth) Me(ctx context.Context, a policy.Actor) (user.User, error) {
	u, err := s.users.GetByID(ctx, a.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, apperr.Unauthenticated("account_not_found", "Account no longer exists")
		}
		return user.User{}, apperr.Internal("Failed to load account", err)
	}
	return u, nil
}

// Logout denylists the token id when a revoker is configured. Without one
// the client simply discards the token.
func (s *Auth) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.revoker == nil || jti == "" {
		return nil
	}

	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}

	if err := s.revoker.Revoke(ctx, jti, ttl); err != nil {
		return apperr.Internal("Failed to logout", err)
	}
	return nil
}

func (s *Auth) observe(outcome string) {
	if s.OnLogin != nil {
		s.OnLogin(outcome)
	}
}
