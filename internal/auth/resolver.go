package auth

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"inventory/api/internal/models"
	"inventory/api/internal/repository"
)

// ProfileSource is the slice of the profile store the resolver needs.
type ProfileSource interface {
	GetByID(ctx context.Context, id string) (models.Profile, error)
}

// Resolver turns an authenticated session into a capability pair by
// looking up the caller's profile. It holds no cache: every call reads
// the current remote state, so a profile change picked up by the change
// feed is visible on the very next resolve.
type Resolver struct {
	profiles ProfileSource
	log      zerolog.Logger
}

func NewResolver(profiles ProfileSource, log zerolog.Logger) *Resolver {
	return &Resolver{profiles: profiles, log: log}
}

// Resolve maps a session to an identity. No session yields the visitor
// default. A missing or unreadable profile degrades to visitor rather
// than failing the caller: absence of a profile silently denies elevated
// capability, it never breaks a read path.
func (r *Resolver) Resolve(ctx context.Context, session *models.Session) models.Identity {
	if session == nil || session.UserID == "" {
		return models.Visitor()
	}

	id := models.Identity{
		IsLogged:  true,
		UserID:    session.UserID,
		Email:     session.Email,
		AvatarURL: session.AvatarURL,
		Role:      models.RoleVisitor,
		Active:    false,
	}

	profile, err := r.profiles.GetByID(ctx, session.UserID)
	if err != nil {
		if !errors.Is(err, repository.ErrProfileNotFound) {
			r.log.Debug().Err(err).Str("user_id", session.UserID).Msg("profile lookup failed, degrading to visitor")
		}
		return id
	}

	id.Role = profile.Role
	id.Active = profile.Active
	if session.Email == "" {
		id.Email = profile.Email
	}
	return id
}
