package client

import (
	"context"

	"github.com/dmitrijs2005/campusmatch/internal/client/gateway"
	"github.com/dmitrijs2005/campusmatch/internal/client/models"
)

// Client is the set of backend endpoints the client core consumes.
type Client interface {
	// CurrentIdentity fetches the identity owning the credential selected by auth.
	CurrentIdentity(ctx context.Context, auth gateway.Auth) (*models.Identity, error)
	// Login exchanges identifier/secret for an access credential.
	Login(ctx context.Context, identifier, secret string) (string, error)
	// CreateAccount runs registration phase 1 and returns the provisional credential.
	CreateAccount(ctx context.Context, email, password string) (string, error)
	// CompleteProfile runs registration phase 2 authorized by the provisional
	// credential and returns the issued access credential.
	CompleteProfile(ctx context.Context, provisional string, fields models.ProfileFields) (string, error)
	// UpdateProfile saves profile edits with the current access credential
	// and returns the canonical identity.
	UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.Identity, error)
	// VerifyEmail confirms an email verification token.
	VerifyEmail(ctx context.Context, token string) (string, error)
	// Ping checks server liveness.
	Ping(ctx context.Context) error
}
