// Package session owns the client's authentication state.
//
// Manager is the only writer of the session state and of the credential
// store. Other components read Snapshots and call the narrow set of
// operations below; none of them mutate state directly.
//
// Bootstrap, Login and Adopt are serialized: a second call waits until the
// first one finishes, so two credential writes never interleave. Logout does
// not wait; it bumps an epoch instead, and any in-flight operation started
// under an older epoch discards its result with ErrSuperseded rather than
// resurrecting the cleared session.
package session

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/campusmatch/internal/client/apperr"
	"github.com/dmitrijs2005/campusmatch/internal/client/client"
	"github.com/dmitrijs2005/campusmatch/internal/client/gateway"
	"github.com/dmitrijs2005/campusmatch/internal/client/models"
	"github.com/dmitrijs2005/campusmatch/internal/client/tokens"
	"github.com/dmitrijs2005/campusmatch/internal/common"
	"github.com/dmitrijs2005/campusmatch/internal/logging"
)

var (
	// ErrSuperseded is returned when a logout overtook the operation.
	ErrSuperseded = errors.New("session operation superseded")
	// ErrProvisionalCredential is returned when a registration-scoped token
	// is offered as a session credential.
	ErrProvisionalCredential = errors.New("provisional credential cannot open a session")
)

const msgMalformedIdentity = "malformed identity response"

// CredentialStore is the durable home of the access credential.
// credstore.Store satisfies it.
type CredentialStore interface {
	Get() (string, bool)
	Set(credential string)
	Clear()
}

// Manager owns the session state.
type Manager struct {
	api    client.Client
	store  CredentialStore
	logger logging.Logger
	now    func() time.Time

	// opMu serializes Bootstrap, Login and Adopt.
	opMu sync.Mutex

	mu         sync.RWMutex
	status     Status
	identity   *models.Identity
	credential string
	epoch      uint64
	version    uint64

	// notifyMu orders deliveries; subMu guards the listener set.
	notifyMu  sync.Mutex
	subMu     sync.Mutex
	listeners map[int]func(Snapshot)
	nextID    int
}

// NewManager returns a Manager in StatusBootstrapping.
func NewManager(api client.Client, store CredentialStore, logger logging.Logger) *Manager {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Manager{
		api:       api,
		store:     store,
		logger:    logger.With("component", "session"),
		now:       time.Now,
		status:    StatusBootstrapping,
		listeners: map[int]func(Snapshot){},
	}
}

// Snapshot returns the current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

// AccessCredential returns the credential of an authenticated session.
func (m *Manager) AccessCredential() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.status != StatusAuthenticated {
		return "", false
	}
	return m.credential, true
}

// Subscribe registers fn to be called synchronously after every state
// change with the latest snapshot. fn must not call Manager methods that
// change state; it may subscribe or unsubscribe. The returned func removes
// the subscription and is safe to call from fn itself.
func (m *Manager) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	m.subMu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.subMu.Unlock()

	return func() {
		m.subMu.Lock()
		delete(m.listeners, id)
		m.subMu.Unlock()
	}
}

// Bootstrap resumes a session from the credential store. It runs once: later
// calls, or calls after Login/Logout already resolved the session, return the
// current snapshot. It always leaves StatusBootstrapping and never blocks
// longer than one gateway timeout.
func (m *Manager) Bootstrap(ctx context.Context) Snapshot {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.mu.RLock()
	status, epoch := m.status, m.epoch
	m.mu.RUnlock()
	if status != StatusBootstrapping {
		return m.Snapshot()
	}

	credential, ok := m.store.Get()
	if !ok {
		m.logger.Debug(ctx, "no stored credential")
		m.setUnauthenticated(epoch)
		return m.Snapshot()
	}

	info := tokens.Inspect(credential)
	switch {
	case info.IsProvisional():
		m.logger.Warn(ctx, "stored credential is provisional, purging")
		m.purge(epoch)
		return m.Snapshot()
	case info.Expired(m.now()):
		m.logger.Info(ctx, "stored credential expired, purging", "expired_at", info.ExpiresAt)
		m.purge(epoch)
		return m.Snapshot()
	}

	identity, err := m.fetchIdentity(ctx, credential)
	if err != nil {
		m.logger.Warn(ctx, "stored credential not usable, purging", "kind", apperr.KindOf(err), "error", err)
		m.purge(epoch)
		return m.Snapshot()
	}

	if m.commit(epoch, credential, identity) {
		m.logger.Info(ctx, "session restored", "user_id", identity.ID)
	}
	return m.Snapshot()
}

// Login exchanges identifier/secret for an access credential and adopts it.
// On failure the error is an *apperr.Error (or ErrSuperseded) and the session
// holds no credential that failed to resolve an identity.
func (m *Manager) Login(ctx context.Context, identifier, secret string) (*models.Identity, error) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	epoch := m.currentEpoch()

	credential, err := m.api.Login(ctx, identifier, secret)
	if err != nil {
		m.logger.Info(ctx, "login rejected", "kind", apperr.KindOf(err))
		return nil, err
	}
	return m.adopt(ctx, epoch, credential)
}

// Adopt makes credential the current access credential: it is persisted
// first, then resolved to an identity. Used by registration phase 2.
func (m *Manager) Adopt(ctx context.Context, credential string) (*models.Identity, error) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	return m.adopt(ctx, m.currentEpoch(), credential)
}

// Refresh re-fetches the identity behind the current credential. An
// Unauthorized answer purges the session; other failures leave it intact.
func (m *Manager) Refresh(ctx context.Context) (*models.Identity, error) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.mu.RLock()
	status, credential, epoch := m.status, m.credential, m.epoch
	m.mu.RUnlock()
	if status != StatusAuthenticated {
		return nil, apperr.New(apperr.KindUnauthorized, "Not signed in")
	}

	identity, err := m.fetchIdentity(ctx, credential)
	if err != nil {
		if errors.Is(err, apperr.ErrUnauthorized) {
			m.logger.Warn(ctx, "credential rejected on refresh, purging")
			m.purge(epoch)
		}
		return nil, err
	}
	if !m.commit(epoch, credential, identity) {
		return nil, ErrSuperseded
	}
	return identity.Clone(), nil
}

// Logout drops the session and the stored credential. It is idempotent and
// supersedes any in-flight Bootstrap, Login or Adopt.
func (m *Manager) Logout() {
	m.mu.Lock()
	m.epoch++
	m.store.Clear()
	changed := m.status != StatusUnauthenticated
	m.status = StatusUnauthenticated
	m.identity = nil
	m.credential = ""
	if changed {
		m.version++
	}
	m.mu.Unlock()

	if changed {
		m.logger.Info(context.Background(), "logged out")
		m.notify()
	}
}

// ApplyIdentity replaces the cached identity with a canonical server value,
// e.g. after a profile edit. It is a no-op unless the session is
// authenticated and identity is resolved, and reports whether it applied.
func (m *Manager) ApplyIdentity(identity *models.Identity) bool {
	if !identity.Resolved() {
		return false
	}
	m.mu.Lock()
	if m.status != StatusAuthenticated {
		m.mu.Unlock()
		return false
	}
	m.identity = identity.Clone()
	m.version++
	m.mu.Unlock()

	m.notify()
	return true
}

func (m *Manager) adopt(ctx context.Context, epoch uint64, credential string) (*models.Identity, error) {
	if tokens.Inspect(credential).IsProvisional() {
		return nil, ErrProvisionalCredential
	}

	// Persist before the identity fetch so no reader sees the old credential.
	m.mu.Lock()
	if m.epoch != epoch {
		m.mu.Unlock()
		return nil, ErrSuperseded
	}
	m.store.Set(credential)
	replaced := m.status == StatusAuthenticated
	if replaced {
		m.status = StatusInvalidating
		m.identity = nil
		m.credential = ""
		m.version++
	}
	m.mu.Unlock()
	if replaced {
		m.notify()
	}

	identity, err := m.fetchIdentity(ctx, credential)
	if err != nil {
		m.logger.Warn(ctx, "credential did not resolve an identity, purging", "kind", apperr.KindOf(err))
		if !m.purge(epoch) {
			return nil, ErrSuperseded
		}
		return nil, err
	}

	if !m.commit(epoch, credential, identity) {
		return nil, ErrSuperseded
	}
	m.logger.Info(ctx, "session established", "user_id", identity.ID, "credential", common.Fingerprint(credential))
	return identity.Clone(), nil
}

func (m *Manager) fetchIdentity(ctx context.Context, credential string) (*models.Identity, error) {
	identity, err := m.api.CurrentIdentity(ctx, gateway.BearerAuth(credential))
	if err != nil {
		return nil, err
	}
	if !identity.Resolved() {
		return nil, apperr.New(apperr.KindServerError, msgMalformedIdentity)
	}
	return identity, nil
}

// commit installs an authenticated session unless epoch went stale.
func (m *Manager) commit(epoch uint64, credential string, identity *models.Identity) bool {
	m.mu.Lock()
	if m.epoch != epoch {
		m.mu.Unlock()
		return false
	}
	m.status = StatusAuthenticated
	m.identity = identity.Clone()
	m.credential = credential
	m.version++
	m.mu.Unlock()

	m.notify()
	return true
}

// purge clears memory and store together, passing through
// StatusInvalidating, unless epoch went stale.
func (m *Manager) purge(epoch uint64) bool {
	m.mu.Lock()
	if m.epoch != epoch {
		m.mu.Unlock()
		return false
	}
	m.status = StatusInvalidating
	m.identity = nil
	m.credential = ""
	m.store.Clear()
	m.version++
	m.mu.Unlock()
	m.notify()

	m.setUnauthenticated(epoch)
	return true
}

func (m *Manager) setUnauthenticated(epoch uint64) {
	m.mu.Lock()
	if m.epoch != epoch || m.status == StatusUnauthenticated {
		m.mu.Unlock()
		return
	}
	m.status = StatusUnauthenticated
	m.identity = nil
	m.credential = ""
	m.version++
	m.mu.Unlock()

	m.notify()
}

func (m *Manager) currentEpoch() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.epoch
}

func (m *Manager) snapshotLocked() Snapshot {
	return Snapshot{Status: m.status, Identity: m.identity.Clone(), Version: m.version}
}

// notify delivers the latest snapshot to the listeners registered when it
// starts, in subscription order. Holding notifyMu while reading the snapshot
// keeps deliveries in state order.
func (m *Manager) notify() {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()

	m.subMu.Lock()
	ids := slices.Sorted(maps.Keys(m.listeners))
	fns := make([]func(Snapshot), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, m.listeners[id])
	}
	m.subMu.Unlock()

	snap := m.Snapshot()
	for _, fn := range fns {
		fn(snap)
	}
}
