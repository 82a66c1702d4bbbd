package credstore

import (
	"context"
	"sync"
)

// MemoryBackend keeps the credential in process memory only.
type MemoryBackend struct {
	mu    sync.Mutex
	value string
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (m *MemoryBackend) Load(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value, nil
}

func (m *MemoryBackend) Save(_ context.Context, credential string) error {
	m.mu.Lock()
	m.value = credential
	m.mu.Unlock()
	return nil
}

func (m *MemoryBackend) Delete(context.Context) error {
	m.mu.Lock()
	m.value = ""
	m.mu.Unlock()
	return nil
}

func (m *MemoryBackend) Close() error { return nil }
