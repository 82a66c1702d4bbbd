package credstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/campusmatch/internal/logging"
)

type failingBackend struct {
	loadErr, saveErr, deleteErr error
	saved                       []string
	deletes                     int
}

func (f *failingBackend) Load(context.Context) (string, error) { return "", f.loadErr }
func (f *failingBackend) Save(_ context.Context, v string) error {
	f.saved = append(f.saved, v)
	return f.saveErr
}
func (f *failingBackend) Delete(context.Context) error { f.deletes++; return f.deleteErr }
func (f *failingBackend) Close() error                 { return nil }

func TestStore_SetGetClear(t *testing.T) {
	s := NewStore(NewMemoryBackend(), logging.Nop())

	_, ok := s.Get()
	assert.False(t, ok)

	s.Set("tok")
	v, ok := s.Get()
	assert.True(t, ok)
	assert.Equal(t, "tok", v)

	s.Clear()
	_, ok = s.Get()
	assert.False(t, ok)

	s.Clear()
}

func TestStore_LoadsPersistedValue(t *testing.T) {
	mem := NewMemoryBackend()
	require.NoError(t, mem.Save(context.Background(), "persisted"))

	s := NewStore(mem, nil)

	v, ok := s.Get()
	assert.True(t, ok)
	assert.Equal(t, "persisted", v)
}

func TestStore_SetEmptyClears(t *testing.T) {
	fb := &failingBackend{}
	s := NewStore(fb, logging.Nop())

	s.Set("a")
	s.Set("")

	_, ok := s.Get()
	assert.False(t, ok)
	assert.Equal(t, []string{"a"}, fb.saved)
	assert.Equal(t, 1, fb.deletes)
}

func TestStore_BackendFailuresAreAbsorbed(t *testing.T) {
	boom := errors.New("disk full")
	fb := &failingBackend{loadErr: boom, saveErr: boom, deleteErr: boom}

	s := NewStore(fb, logging.Nop())

	_, ok := s.Get()
	assert.False(t, ok)

	s.Set("tok")
	v, ok := s.Get()
	assert.True(t, ok, "mirror keeps the value even when persistence fails")
	assert.Equal(t, "tok", v)

	s.Clear()
	_, ok = s.Get()
	assert.False(t, ok)
}

func TestOpen_Drivers(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	for _, driver := range []string{"sqlite", "bolt", "memory"} {
		t.Run(driver, func(t *testing.T) {
			b, err := Open(ctx, driver, filepath.Join(dir, "nested", driver+".db"))
			require.NoError(t, err)
			defer b.Close()

			s := NewStore(b, logging.Nop())
			s.Set("tok-" + driver)
			v, err := b.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, "tok-"+driver, v)
		})
	}

	_, err := Open(ctx, "redis", "")
	require.ErrorIs(t, err, ErrUnknownDriver)
}
