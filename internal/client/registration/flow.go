// Package registration implements the two-phase account creation flow.
//
// Phase 1 creates the account and yields a provisional credential that is
// only good for phase 2. Phase 2 sends the profile authorized by that
// provisional credential, receives a full access credential and hands it to
// the session for adoption. The provisional credential lives only in the
// Flow; it is never stored and never reused after success.
package registration

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/dmitrijs2005/campusmatch/internal/client/apperr"
	"github.com/dmitrijs2005/campusmatch/internal/client/models"
	"github.com/dmitrijs2005/campusmatch/internal/logging"
)

// State is a Flow state.
type State int

const (
	StateCollectingAccount State = iota
	StateCollectingProfile
	StateComplete
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateCollectingAccount:
		return "collecting_account"
	case StateCollectingProfile:
		return "collecting_profile"
	case StateComplete:
		return "complete"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

const (
	msgSessionExpired = "Registration session expired. Please start over."
	msgCreateFailed   = "Failed to create account"
	msgCompleteFailed = "Failed to complete registration"
)

// ErrWrongState is returned when a submit does not match the current state.
var ErrWrongState = errors.New("registration step not available in current state")

// Registrar is the backend side of both phases.
type Registrar interface {
	CreateAccount(ctx context.Context, email, password string) (string, error)
	CompleteProfile(ctx context.Context, provisional string, fields models.ProfileFields) (string, error)
}

// Adopter installs an access credential as the current session.
// *session.Manager satisfies it.
type Adopter interface {
	Adopt(ctx context.Context, credential string) (*models.Identity, error)
}

// Option configures a Flow.
type Option func(*Flow)

// WithDomain sets the accepted institutional email domain.
func WithDomain(domain string) Option {
	return func(f *Flow) { f.validator.Domain = domain }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(f *Flow) { f.logger = l }
}

// Flow is one registration attempt.
type Flow struct {
	api       Registrar
	sessions  Adopter
	validator Validator
	logger    logging.Logger

	// submitMu serializes submits; mu guards the fields below.
	submitMu sync.Mutex

	mu          sync.Mutex
	state       State
	email       string
	provisional string
	issued      string // phase 2 access credential, held until adopted
	profile     models.ProfileFields
	identity    *models.Identity
	lastErr     error
}

// NewFlow returns a Flow in StateCollectingAccount.
func NewFlow(api Registrar, sessions Adopter, opts ...Option) *Flow {
	f := &Flow{
		api:       api,
		sessions:  sessions,
		validator: Validator{Domain: "edu"},
		logger:    logging.Nop(),
	}
	for _, o := range opts {
		o(f)
	}
	f.logger = f.logger.With("component", "registration")
	return f
}

// SubmitAccount validates and runs phase 1. Validation and network failures
// keep the flow in StateCollectingAccount with LastError set.
func (f *Flow) SubmitAccount(ctx context.Context, email, password, confirm string) error {
	f.submitMu.Lock()
	defer f.submitMu.Unlock()

	if s := f.State(); s != StateCollectingAccount {
		return ErrWrongState
	}

	email = strings.TrimSpace(email)
	if err := f.validator.Validate(email, password, confirm); err != nil {
		return f.fail(StateCollectingAccount, err)
	}

	provisional, err := f.api.CreateAccount(ctx, email, password)
	if err != nil {
		f.logger.Info(ctx, "account creation failed", "kind", apperr.KindOf(err))
		return f.fail(StateCollectingAccount, withFallback(err, msgCreateFailed))
	}

	f.mu.Lock()
	f.email = email
	f.provisional = provisional
	if school := SchoolFor(email); school != "" {
		f.profile.School = school
	}
	f.state = StateCollectingProfile
	f.lastErr = nil
	f.mu.Unlock()

	f.logger.Info(ctx, "account created, awaiting profile")
	return nil
}

// SubmitProfile runs phase 2 and adopts the issued access credential.
// Without a provisional or issued credential the flow fails without a network call.
// Network and adoption failures keep StateCollectingProfile with the entered
// fields preserved, so the user can retry. The provisional credential is
// spent once phase 2 succeeds; a retry after a failed adoption only retries
// the adoption of the already issued access credential.
func (f *Flow) SubmitProfile(ctx context.Context, fields models.ProfileFields) error {
	f.submitMu.Lock()
	defer f.submitMu.Unlock()

	f.mu.Lock()
	state, provisional, access := f.state, f.provisional, f.issued
	if state == StateCollectingProfile {
		f.profile = fields.Clone()
	}
	f.mu.Unlock()

	if state == StateComplete {
		return ErrWrongState
	}
	if provisional == "" && access == "" {
		return f.fail(StateFailed, apperr.Validation(msgSessionExpired))
	}
	if state != StateCollectingProfile {
		return ErrWrongState
	}

	if access == "" {
		var err error
		access, err = f.api.CompleteProfile(ctx, provisional, fields)
		if err != nil {
			f.logger.Info(ctx, "profile completion failed", "kind", apperr.KindOf(err))
			return f.fail(StateCollectingProfile, withFallback(err, msgCompleteFailed))
		}
		f.mu.Lock()
		f.provisional = ""
		f.issued = access
		f.mu.Unlock()
	}

	identity, err := f.sessions.Adopt(ctx, access)
	if err != nil {
		f.logger.Warn(ctx, "issued credential could not be adopted", "error", err)
		return f.fail(StateCollectingProfile, err)
	}

	f.mu.Lock()
	f.issued = ""
	f.identity = identity
	f.state = StateComplete
	f.lastErr = nil
	f.mu.Unlock()

	f.logger.Info(ctx, "registration complete", "user_id", identity.ID)
	return nil
}

// Restart discards all progress and returns to StateCollectingAccount.
func (f *Flow) Restart() {
	f.submitMu.Lock()
	defer f.submitMu.Unlock()

	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = StateCollectingAccount
	f.email = ""
	f.provisional = ""
	f.issued = ""
	f.profile = models.ProfileFields{}
	f.identity = nil
	f.lastErr = nil
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// LastError is the error of the last failed submit, or nil.
func (f *Flow) LastError() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

// Profile returns a copy of the profile draft, including pre-filled fields.
func (f *Flow) Profile() models.ProfileFields {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.profile.Clone()
}

func (f *Flow) Email() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.email
}

// Identity is the session identity once the flow is complete.
func (f *Flow) Identity() *models.Identity {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.identity.Clone()
}

func (f *Flow) fail(next State, err error) error {
	f.mu.Lock()
	f.state = next
	f.lastErr = err
	f.mu.Unlock()
	return err
}

// withFallback gives errors without a displayable message a generic one.
func withFallback(err error, msg string) error {
	var e *apperr.Error
	if errors.As(err, &e) && e.Message != "" {
		return err
	}
	kind := apperr.KindOf(err)
	if kind == apperr.KindUnknown {
		kind = apperr.KindServerError
	}
	return &apperr.Error{Kind: kind, Status: statusOf(e), Message: msg}
}

func statusOf(e *apperr.Error) int {
	if e == nil {
		return 0
	}
	return e.Status
}
