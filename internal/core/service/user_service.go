package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/synergia/erp-api/internal/core/domain"
	"github.com/synergia/erp-api/internal/core/ports"
)

const minPasswordLength = 8

// UserService manages application accounts. Invite and Delete span the user
// directory and the identity provider; both run the provider call inside the
// directory transaction so a provider failure rolls the row back.
type UserService struct {
	tx    ports.Transactor
	users ports.UserRepository
	idp   ports.IdentityProvider
	log   zerolog.Logger
}

func NewUserService(tx ports.Transactor, users ports.UserRepository, idp ports.IdentityProvider, log zerolog.Logger) *UserService {
	return &UserService{tx: tx, users: users, idp: idp, log: log}
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

// Invite creates a PENDING user and its external account as one unit.
//
// The row is inserted first, then the external account is created inside the
// same transaction. If the provider fails, the row is rolled back. If the
// transaction fails after the provider succeeded, the external account is
// deleted again; a failed compensation is logged with the orphaned subject.
func (s *UserService) Invite(ctx context.Context, in ports.InviteUserInput) (*ports.InviteResult, error) {
	email := normalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	if err := checkEmail("email", email); err != nil {
		return nil, err
	}
	if err := checkRequired("name", name); err != nil {
		return nil, err
	}
	role := in.Role
	if role == "" {
		role = domain.RoleEmployee
	}
	if !role.Valid() {
		return nil, domain.Validationf("role must be one of: ADMIN MANAGER EMPLOYEE")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	result := &ports.InviteResult{}
	password := in.Password
	if password == "" {
		generated, err := temporaryPassword()
		if err != nil {
			return nil, err
		}
		password = generated
		result.TemporaryPassword = generated
	} else if len(password) < minPasswordLength {
		return nil, domain.Validationf("password must be at least %d characters", minPasswordLength)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:        newID(),
		Email:     email,
		Name:      name,
		Role:      role,
		Status:    domain.UserPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	var ident *domain.Identity
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.users.Create(ctx, user); err != nil {
			return err
		}
		created, err := s.idp.CreateAccount(ctx, email, password)
		if err != nil {
			return err
		}
		ident = created
		return s.users.SetExternalID(ctx, user.ID, created.Subject)
	})
	if err != nil {
		if ident != nil {
			s.compensateInvite(ctx, ident.Subject)
		}
		return nil, err
	}

	user.ExternalID = ident.Subject
	result.User = user
	s.log.Info().Str("user_id", user.ID).Str("role", string(role)).Msg("user invited")
	return result, nil
}

func (s *UserService) compensateInvite(ctx context.Context, subject string) {
	if err := s.idp.DeleteAccount(context.WithoutCancel(ctx), subject); err != nil {
		s.log.Error().Err(err).Str("external_id", subject).Msg("orphaned external account after failed invite")
		return
	}
	s.log.Warn().Str("external_id", subject).Msg("external account removed after failed invite")
}

func (s *UserService) Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	if err := requiredPatch("name", patch.Name); err != nil {
		return nil, err
	}
	if patch.Role.Set && (patch.Role.Null || !patch.Role.Value.Valid()) {
		return nil, domain.Validationf("role must be one of: ADMIN MANAGER EMPLOYEE")
	}
	if patch.Status.Set && (patch.Status.Null || !patch.Status.Value.Valid()) {
		return nil, domain.Validationf("status must be one of: ACTIVE INACTIVE PENDING")
	}
	patch.Name.Value = strings.TrimSpace(patch.Name.Value)

	if !patch.Empty() {
		if err := s.users.Update(ctx, id, patch, time.Now().UTC()); err != nil {
			return nil, err
		}
	}
	return s.users.FindByID(ctx, id)
}

// Delete removes a user and revokes its external account. A principal can
// never delete itself, whatever its role. If the revocation fails, the row is
// kept.
func (s *UserService) Delete(ctx context.Context, actorID, id string) error {
	if id == actorID {
		return domain.ErrSelfDeletion
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.users.Delete(ctx, id); err != nil {
			return err
		}
		if user.ExternalID == "" {
			s.log.Warn().Str("user_id", id).Msg("user has no external account to revoke")
			return nil
		}
		return s.idp.DeleteAccount(ctx, user.ExternalID)
	})
	if err != nil {
		return err
	}

	s.log.Info().Str("user_id", id).Str("actor_id", actorID).Msg("user deleted")
	return nil
}
