package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/campusmatch/internal/client/apperr"
	"github.com/dmitrijs2005/campusmatch/internal/client/client"
	"github.com/dmitrijs2005/campusmatch/internal/client/models"
	"github.com/dmitrijs2005/campusmatch/internal/logging"
)

const (
	msgNotSignedIn     = "Not signed in"
	msgUpdateMalformed = "Failed to update profile"
)

// ProfileService reads and edits the signed-in user's profile.
type ProfileService interface {
	// Current re-fetches the identity. A rejected credential ends the session.
	Current(ctx context.Context) (*models.Identity, error)
	// Update saves edits and installs the server's canonical identity in the
	// session without another fetch.
	Update(ctx context.Context, update models.ProfileUpdate) (*models.Identity, error)
}

type profileService struct {
	client   client.Client
	sessions Sessions
	logger   logging.Logger
}

func NewProfileService(c client.Client, sessions Sessions, logger logging.Logger) ProfileService {
	if logger == nil {
		logger = logging.Nop()
	}
	return &profileService{client: c, sessions: sessions, logger: logger}
}

func (p *profileService) Current(ctx context.Context) (*models.Identity, error) {
	return p.sessions.Refresh(ctx)
}

func (p *profileService) Update(ctx context.Context, update models.ProfileUpdate) (*models.Identity, error) {
	if !p.sessions.Snapshot().Authenticated() {
		return nil, apperr.New(apperr.KindUnauthorized, msgNotSignedIn)
	}

	identity, err := p.client.UpdateProfile(ctx, update)
	if err != nil {
		if errors.Is(err, apperr.ErrUnauthorized) {
			// Let the session confirm the rejection and purge if it holds.
			if _, rerr := p.sessions.Refresh(ctx); rerr != nil {
				p.logger.Warn(ctx, "session check after rejected update failed", "kind", apperr.KindOf(rerr))
			}
		}
		return nil, err
	}
	if !identity.Resolved() {
		p.logger.Warn(ctx, "profile update returned no identity")
		return nil, apperr.New(apperr.KindServerError, msgUpdateMalformed)
	}

	if !p.sessions.ApplyIdentity(identity) {
		p.logger.Info(ctx, "profile saved after session ended; identity not applied")
	}
	return identity.Clone(), nil
}
