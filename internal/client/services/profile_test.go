package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/campusmatch/internal/client/apperr"
	"github.com/dmitrijs2005/campusmatch/internal/client/client"
	"github.com/dmitrijs2005/campusmatch/internal/client/models"
	"github.com/dmitrijs2005/campusmatch/internal/client/session"
)

func strPtr(s string) *string { return &s }

func TestProfileService_UpdateAppliesCanonicalIdentity(t *testing.T) {
	h := setup(t)
	h.srv.AddUser("a@uni.edu", "validpass1", models.Identity{Name: "A"})
	h.login(t, "a@uni.edu", "validpass1")
	svc := NewProfileService(h.api, h.sessions, nil)
	fetches := h.srv.Calls("GET " + client.PathCurrentUser)

	identity, err := svc.Update(context.Background(), models.ProfileUpdate{
		Name:      strPtr("Alice"),
		Interests: models.ParseInterests("chess, jazz"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Alice", identity.Name)
	snap := h.sessions.Snapshot()
	assert.Equal(t, "Alice", snap.Identity.Name)
	assert.Equal(t, []string{"chess", "jazz"}, snap.Identity.Interests)
	assert.Equal(t, fetches, h.srv.Calls("GET "+client.PathCurrentUser), "no re-fetch after update")

	cred, _ := h.sessions.AccessCredential()
	assert.Equal(t, "Bearer "+cred, h.srv.LastAuthorization("PUT "+client.PathCurrentUser))
}

// emptyUpdate answers profile updates with an empty 2xx body.
type emptyUpdate struct{ client.Client }

func (emptyUpdate) UpdateProfile(context.Context, models.ProfileUpdate) (*models.Identity, error) {
	return &models.Identity{}, nil
}

func TestProfileService_UpdateRejectsEmptyIdentity(t *testing.T) {
	h := setup(t)
	h.srv.AddUser("a@uni.edu", "validpass1", models.Identity{Name: "A"})
	h.login(t, "a@uni.edu", "validpass1")
	before := h.sessions.Snapshot()
	svc := NewProfileService(emptyUpdate{h.api}, h.sessions, nil)

	_, err := svc.Update(context.Background(), models.ProfileUpdate{Name: strPtr("x")})

	require.ErrorIs(t, err, apperr.ErrServerError)
	assert.Equal(t, "Failed to update profile", apperr.UserMessage(err))
	after := h.sessions.Snapshot()
	assert.Equal(t, before, after, "cached identity is untouched")
}

func TestProfileService_UpdateRequiresSession(t *testing.T) {
	h := setup(t)
	svc := NewProfileService(h.api, h.sessions, nil)

	_, err := svc.Update(context.Background(), models.ProfileUpdate{Name: strPtr("x")})

	require.ErrorIs(t, err, apperr.ErrUnauthorized)
	assert.Zero(t, h.srv.TotalCalls())
}

func TestProfileService_RejectedCredentialEndsSession(t *testing.T) {
	h := setup(t)
	h.srv.AddUser("a@uni.edu", "validpass1", models.Identity{Name: "A"})
	h.login(t, "a@uni.edu", "validpass1")
	cred, _ := h.sessions.AccessCredential()
	h.srv.Revoke(cred)
	svc := NewProfileService(h.api, h.sessions, nil)

	_, err := svc.Update(context.Background(), models.ProfileUpdate{Name: strPtr("x")})

	require.ErrorIs(t, err, apperr.ErrUnauthorized)
	assert.Equal(t, session.StatusUnauthenticated, h.sessions.Snapshot().Status)
	_, ok := h.store.Get()
	assert.False(t, ok)
}

func TestProfileService_ServerErrorKeepsSession(t *testing.T) {
	h := setup(t)
	h.srv.AddUser("a@uni.edu", "validpass1", models.Identity{Name: "A"})
	h.login(t, "a@uni.edu", "validpass1")
	h.srv.Fail("PUT "+client.PathCurrentUser, http.StatusInternalServerError, "boom")
	svc := NewProfileService(h.api, h.sessions, nil)

	_, err := svc.Update(context.Background(), models.ProfileUpdate{Name: strPtr("x")})

	require.ErrorIs(t, err, apperr.ErrServerError)
	snap := h.sessions.Snapshot()
	assert.True(t, snap.Authenticated())
	assert.Equal(t, "A", snap.Identity.Name)
}

func TestProfileService_Current(t *testing.T) {
	h := setup(t)
	h.srv.AddUser("a@uni.edu", "validpass1", models.Identity{Name: "A"})
	svc := NewProfileService(h.api, h.sessions, nil)

	_, err := svc.Current(context.Background())
	require.ErrorIs(t, err, apperr.ErrUnauthorized)

	h.login(t, "a@uni.edu", "validpass1")
	identity, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a@uni.edu", identity.Email)
}
