package credstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/campusmatch/internal/client/config"
	"github.com/dmitrijs2005/campusmatch/internal/common"
	"github.com/dmitrijs2005/campusmatch/internal/filex"
	"github.com/dmitrijs2005/campusmatch/internal/logging"
)

// backendTimeout bounds every durable operation so Store methods never block
// indefinitely on a wedged file lock.
const backendTimeout = 2 * time.Second

// Store is the total credential store: Get/Set/Clear never fail.
//
// The value is mirrored in memory; durable failures are logged and the
// mirror stays authoritative for the rest of the process lifetime.
type Store struct {
	mu      sync.Mutex
	backend Backend
	logger  logging.Logger
	value   string
}

// NewStore loads the persisted credential (if any) from backend.
func NewStore(backend Backend, logger logging.Logger) *Store {
	if logger == nil {
		logger = logging.Nop()
	}
	s := &Store{backend: backend, logger: logger.With("component", "credstore")}

	ctx, cancel := context.WithTimeout(context.Background(), backendTimeout)
	defer cancel()
	v, err := backend.Load(ctx)
	if err != nil {
		s.logger.Error(ctx, "load credential failed", "error", err)
		return s
	}
	s.value = v
	return s
}

// Open builds the Backend selected by driver. File-backed drivers get their
// parent directory created first.
func Open(ctx context.Context, driver, path string) (Backend, error) {
	switch driver {
	case config.StoreSQLite, config.StoreBolt:
		abs, err := filex.EnsureParentDir(path)
		if err != nil {
			return nil, fmt.Errorf("prepare store path: %w", err)
		}
		if driver == config.StoreBolt {
			return OpenBolt(abs)
		}
		return OpenSQLite(ctx, abs)
	case config.StoreMemory:
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

// Get returns the stored credential and whether one is present.
func (s *Store) Get() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, s.value != ""
}

// Set replaces the stored credential. An empty credential clears the store.
func (s *Store) Set(credential string) {
	if credential == "" {
		s.Clear()
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.value = credential
	ctx, cancel := context.WithTimeout(context.Background(), backendTimeout)
	defer cancel()
	if err := s.backend.Save(ctx, credential); err != nil {
		s.logger.Error(ctx, "persist credential failed", "error", err)
		return
	}
	s.logger.Debug(ctx, "credential stored", "fingerprint", common.Fingerprint(credential))
}

// Clear removes the stored credential. Clearing an empty store is a no-op.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.value = ""
	ctx, cancel := context.WithTimeout(context.Background(), backendTimeout)
	defer cancel()
	if err := s.backend.Delete(ctx); err != nil {
		s.logger.Error(ctx, "delete credential failed", "error", err)
	}
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}
