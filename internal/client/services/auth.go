// Package services contains the application services behind the terminal
// views. This file defines the authentication service: login, logout,
// registration flows, email verification and the liveness probe.
package services

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/campusmatch/internal/client/apperr"
	"github.com/dmitrijs2005/campusmatch/internal/client/client"
	"github.com/dmitrijs2005/campusmatch/internal/client/models"
	"github.com/dmitrijs2005/campusmatch/internal/client/registration"
	"github.com/dmitrijs2005/campusmatch/internal/client/session"
	"github.com/dmitrijs2005/campusmatch/internal/logging"
)

const (
	msgCredentialsRequired = "Email and password are required"
	msgNoVerifyToken       = "No verification token provided"
	msgVerifyFailed        = "Verification failed"
	msgVerified            = "Email verified successfully! You can now login."
)

// Sessions is the part of the session manager the services depend on.
// *session.Manager satisfies it.
type Sessions interface {
	Snapshot() session.Snapshot
	Login(ctx context.Context, identifier, secret string) (*models.Identity, error)
	Adopt(ctx context.Context, credential string) (*models.Identity, error)
	Refresh(ctx context.Context) (*models.Identity, error)
	ApplyIdentity(identity *models.Identity) bool
	Logout()
}

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login: exchange email/password for a session; the caller wipes password.
//   - Logout: drop the session and the stored credential; never fails.
//   - NewRegistration: start a fresh two-phase registration flow.
//   - VerifyEmail: confirm an emailed verification token.
//   - Ping: check server liveness.
//   - Session: read the current session snapshot.
//
// Every error is an *apperr.Error (or a session sentinel) ready for
// apperr.UserMessage.
type AuthService interface {
	Login(ctx context.Context, email string, password []byte) (*models.Identity, error)
	Logout(ctx context.Context)
	NewRegistration() *registration.Flow
	VerifyEmail(ctx context.Context, token string) (string, error)
	Ping(ctx context.Context) error
	Session() session.Snapshot
}

// authService is the concrete AuthService backed by the endpoint client and
// the session manager.
type authService struct {
	client   client.Client
	sessions Sessions
	domain   string
	logger   logging.Logger
}

// NewAuthService constructs an AuthService. domain is the accepted
// institutional email domain for registration.
func NewAuthService(c client.Client, sessions Sessions, domain string, logger logging.Logger) AuthService {
	if logger == nil {
		logger = logging.Nop()
	}
	return &authService{client: c, sessions: sessions, domain: domain, logger: logger}
}

func (a *authService) Login(ctx context.Context, email string, password []byte) (*models.Identity, error) {
	email = strings.TrimSpace(email)
	if email == "" || len(password) == 0 {
		return nil, apperr.Validation(msgCredentialsRequired)
	}
	return a.sessions.Login(ctx, email, string(password))
}

func (a *authService) Logout(ctx context.Context) {
	a.sessions.Logout()
	a.logger.Debug(ctx, "logout requested")
}

func (a *authService) NewRegistration() *registration.Flow {
	return registration.NewFlow(a.client, a.sessions,
		registration.WithDomain(a.domain),
		registration.WithLogger(a.logger))
}

// VerifyEmail confirms token and returns the message to show.
func (a *authService) VerifyEmail(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", apperr.Validation(msgNoVerifyToken)
	}
	if _, err := a.client.VerifyEmail(ctx, token); err != nil {
		if apperr.KindOf(err) == apperr.KindUnknown {
			return "", apperr.New(apperr.KindServerError, msgVerifyFailed)
		}
		return "", err
	}
	return msgVerified, nil
}

// Ping proxies a liveness check to the underlying client.
func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

func (a *authService) Session() session.Snapshot {
	return a.sessions.Snapshot()
}
