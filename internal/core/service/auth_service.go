package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/synergia/erp-api/internal/core/domain"
	"github.com/synergia/erp-api/internal/core/ports"
)

// AuthService implements login, logout, the current-user lookup and the
// token-to-principal resolution used by the auth gate.
type AuthService struct {
	users ports.UserRepository
	idp   ports.IdentityProvider
	log   zerolog.Logger
}

func NewAuthService(users ports.UserRepository, idp ports.IdentityProvider, log zerolog.Logger) *AuthService {
	return &AuthService{users: users, idp: idp, log: log}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.Validationf("email and password are required")
	}

	session, err := s.idp.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		// The provider knows the account but the directory does not.
		if errors.Is(err, domain.ErrUserNotFound) {
			s.log.Warn().Str("email", email).Msg("login for account missing from user directory")
		}
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Msg("user logged in")
	return &ports.LoginResult{User: user, Session: session}, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.idp.SignOut(ctx, token); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (s *AuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.FindByID(ctx, userID)
}

// Authenticate verifies token with the identity provider, resolves the
// verified email in the user directory and requires an ACTIVE account.
//
// An unknown account is reported as unauthenticated (401), not not-found.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.Principal, error) {
	if strings.TrimSpace(token) == "" {
		return nil, domain.ErrMissingToken
	}

	ident, err := s.idp.Verify(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) {
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}
	if ident == nil || ident.Email == "" {
		return nil, domain.ErrInvalidToken
	}

	user, err := s.users.FindByEmail(ctx, normalizeEmail(ident.Email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnknownAccount
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if user.Status != domain.UserActive {
		return nil, domain.ErrAccountInactive
	}

	return &domain.Principal{ID: user.ID, Email: user.Email, Role: user.Role}, nil
}
