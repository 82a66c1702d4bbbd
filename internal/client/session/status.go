package session

import "github.com/dmitrijs2005/campusmatch/internal/client/models"

// Status is the authentication status of the process-wide session.
type Status int

const (
	// StatusBootstrapping is the initial status until Bootstrap resolves.
	StatusBootstrapping Status = iota
	// StatusUnauthenticated means no usable credential is held.
	StatusUnauthenticated
	// StatusAuthenticated means a credential resolved to an identity.
	StatusAuthenticated
	// StatusInvalidating is the short window in which a credential is being
	// purged or replaced; the previous identity is already gone.
	StatusInvalidating
)

func (s Status) String() string {
	switch s {
	case StatusBootstrapping:
		return "bootstrapping"
	case StatusUnauthenticated:
		return "unauthenticated"
	case StatusAuthenticated:
		return "authenticated"
	case StatusInvalidating:
		return "invalidating"
	default:
		return "unknown"
	}
}

// Snapshot is a read-only view of the session. Identity is a private copy,
// non-nil exactly when Status is StatusAuthenticated. Version increases on
// every state change.
type Snapshot struct {
	Status   Status
	Identity *models.Identity
	Version  uint64
}

// Authenticated reports whether the snapshot holds a resolved identity.
func (s Snapshot) Authenticated() bool {
	return s.Status == StatusAuthenticated
}
