package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"inventory/api/internal/models"
	"inventory/api/internal/repository"
)

type stubProfiles struct {
	profiles map[string]models.Profile
	err      error
}

func (s *stubProfiles) GetByID(_ context.Context, id string) (models.Profile, error) {
	if s.err != nil {
		return models.Profile{}, s.err
	}
	profile, ok := s.profiles[id]
	if !ok {
		return models.Profile{}, repository.ErrProfileNotFound
	}
	return profile, nil
}

func TestResolveWithoutSession(t *testing.T) {
	r := NewResolver(&stubProfiles{}, zerolog.Nop())

	id := r.Resolve(context.Background(), nil)
	if id.IsLogged {
		t.Error("no session should not be logged")
	}
	if id.Role != models.RoleVisitor || id.Active {
		t.Errorf("expected visitor default, got role=%s active=%v", id.Role, id.Active)
	}
}

func TestResolveMissingProfileDegradesToVisitor(t *testing.T) {
	r := NewResolver(&stubProfiles{}, zerolog.Nop())

	id := r.Resolve(context.Background(), &models.Session{UserID: "u1", Email: "u1@x.com"})
	if !id.IsLogged {
		t.Error("session present, should be logged")
	}
	if id.Role != models.RoleVisitor || id.Active {
		t.Errorf("missing profile must deny capability, got role=%s active=%v", id.Role, id.Active)
	}
	if id.Email != "u1@x.com" {
		t.Errorf("email should carry over from session, got %q", id.Email)
	}
}

func TestResolveLookupErrorDegradesToVisitor(t *testing.T) {
	r := NewResolver(&stubProfiles{err: errors.New("connection reset")}, zerolog.Nop())

	id := r.Resolve(context.Background(), &models.Session{UserID: "u1"})
	if id.Role != models.RoleVisitor || id.Active {
		t.Errorf("lookup failure must degrade, got role=%s active=%v", id.Role, id.Active)
	}
}

func TestResolveActiveMember(t *testing.T) {
	r := NewResolver(&stubProfiles{profiles: map[string]models.Profile{
		"u1": {ID: "u1", Email: "u1@x.com", Role: models.RoleMember, Active: true},
	}}, zerolog.Nop())

	id := r.Resolve(context.Background(), &models.Session{UserID: "u1", Email: "u1@x.com", AvatarURL: "http://a/p.png"})
	if id.Role != models.RoleMember || !id.Active {
		t.Errorf("got role=%s active=%v", id.Role, id.Active)
	}
	if id.AvatarURL != "http://a/p.png" {
		t.Errorf("avatar should come from the session, got %q", id.AvatarURL)
	}
}
