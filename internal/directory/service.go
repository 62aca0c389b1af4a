// Package directory exposes role, activation and provisioning operations
// over the profile set. Every operation requires an active admin.
package directory

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"inventory/api/internal/auth"
	"inventory/api/internal/fault"
	"inventory/api/internal/feed"
	"inventory/api/internal/models"
	"inventory/api/internal/provision"
	"inventory/api/internal/repository"
)

// ProfileStore is the slice of the profile store the directory needs.
type ProfileStore interface {
	List(ctx context.Context) ([]models.Profile, error)
	SetActive(ctx context.Context, id string, active bool) error
	SetRole(ctx context.Context, id string, role models.Role) error
	Delete(ctx context.Context, id string) error
}

// Provisioner is the external invite function boundary.
type Provisioner interface {
	Invite(ctx context.Context, email string) (provision.Result, error)
}

type Notifier interface {
	Notify(ctx context.Context, entity feed.Entity)
}

type Service struct {
	profiles    ProfileStore
	resolver    *auth.Resolver
	provisioner Provisioner
	notify      Notifier
	log         zerolog.Logger
}

func NewService(profiles ProfileStore, resolver *auth.Resolver, provisioner Provisioner, notify Notifier, log zerolog.Logger) *Service {
	return &Service{
		profiles:    profiles,
		resolver:    resolver,
		provisioner: provisioner,
		notify:      notify,
		log:         log,
	}
}

func (s *Service) requireAdmin(ctx context.Context, session *models.Session) error {
	if !auth.IsAdmin(s.resolver.Resolve(ctx, session)) {
		return fault.Authorization("admin access required")
	}
	return nil
}

// ListProfiles returns every profile ordered by email.
func (s *Service) ListProfiles(ctx context.Context, session *models.Session) ([]models.Profile, error) {
	if err := s.requireAdmin(ctx, session); err != nil {
		return nil, err
	}
	profiles, err := s.profiles.List(ctx)
	if err != nil {
		return nil, fault.RemoteIO("list profiles", err)
	}
	return profiles, nil
}

func (s *Service) SetActive(ctx context.Context, session *models.Session, profileID string, active bool) error {
	if err := s.requireAdmin(ctx, session); err != nil {
		return err
	}
	if err := s.profiles.SetActive(ctx, profileID, active); err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return fault.Validation("profile not found")
		}
		return fault.RemoteIO("set active", err)
	}
	if s.notify != nil {
		s.notify.Notify(ctx, feed.EntityProfiles)
	}
	return nil
}

func (s *Service) SetRole(ctx context.Context, session *models.Session, profileID string, role models.Role) error {
	if err := s.requireAdmin(ctx, session); err != nil {
		return err
	}
	switch role {
	case models.RoleVisitor, models.RoleMember, models.RoleAdmin:
	default:
		return fault.Validation("unknown role")
	}
	if err := s.profiles.SetRole(ctx, profileID, role); err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return fault.Validation("profile not found")
		}
		return fault.RemoteIO("set role", err)
	}
	if s.notify != nil {
		s.notify.Notify(ctx, feed.EntityProfiles)
	}
	return nil
}

// RemoveProfile destroys a profile. Irreversible, so it demands an
// explicit confirmation checkpoint before executing.
func (s *Service) RemoveProfile(ctx context.Context, session *models.Session, profileID string, confirm bool) error {
	if err := s.requireAdmin(ctx, session); err != nil {
		return err
	}
	if !confirm {
		return fault.Conflict("removing a profile is irreversible and must be confirmed", nil)
	}
	if err := s.profiles.Delete(ctx, profileID); err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return fault.Validation("profile not found")
		}
		return fault.RemoteIO("remove profile", err)
	}
	if s.notify != nil {
		s.notify.Notify(ctx, feed.EntityProfiles)
	}
	return nil
}

// Invite delegates to the external provisioning function. The three
// outcome classes stay distinct for the caller: transport failure,
// "user must log in once first", and success.
func (s *Service) Invite(ctx context.Context, session *models.Session, email string) (provision.Result, error) {
	if err := s.requireAdmin(ctx, session); err != nil {
		return provision.Result{}, err
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(email, "@") {
		return provision.Result{}, fault.Validation("invalid email")
	}

	result, err := s.provisioner.Invite(ctx, email)
	if err != nil {
		return provision.Result{}, err
	}

	s.log.Info().Str("email", email).Msg("user provisioned")
	if s.notify != nil {
		s.notify.Notify(ctx, feed.EntityProfiles)
	}
	return result, nil
}
