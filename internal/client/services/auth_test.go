package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/campusmatch/internal/client/apperr"
	"github.com/dmitrijs2005/campusmatch/internal/client/client"
	"github.com/dmitrijs2005/campusmatch/internal/client/credstore"
	"github.com/dmitrijs2005/campusmatch/internal/client/fakeserver"
	"github.com/dmitrijs2005/campusmatch/internal/client/gateway"
	"github.com/dmitrijs2005/campusmatch/internal/client/models"
	"github.com/dmitrijs2005/campusmatch/internal/client/registration"
	"github.com/dmitrijs2005/campusmatch/internal/client/session"
)

// ---- helpers ----

type harness struct {
	srv      *fakeserver.Server
	store    *credstore.Store
	api      client.Client
	sessions *session.Manager
}

func setup(t *testing.T) *harness {
	t.Helper()
	srv := fakeserver.New()
	t.Cleanup(srv.Close)

	store := credstore.NewStore(credstore.NewMemoryBackend(), nil)
	var sessions *session.Manager
	api := client.NewHTTPClient(gateway.New(srv.URL, gateway.TokenSourceFunc(func() (string, bool) {
		return sessions.AccessCredential()
	})))
	sessions = session.NewManager(api, store, nil)
	sessions.Bootstrap(context.Background())
	return &harness{srv: srv, store: store, api: api, sessions: sessions}
}

func (h *harness) login(t *testing.T, email, password string) {
	t.Helper()
	_, err := h.sessions.Login(context.Background(), email, password)
	require.NoError(t, err)
}

// ---- AuthService ----

func TestAuthService_Login(t *testing.T) {
	h := setup(t)
	h.srv.AddUser("a@uni.edu", "validpass1", models.Identity{Name: "A"})
	svc := NewAuthService(h.api, h.sessions, "edu", nil)

	identity, err := svc.Login(context.Background(), "  a@uni.edu ", []byte("validpass1"))
	require.NoError(t, err)
	assert.Equal(t, "A", identity.Name)
	assert.True(t, svc.Session().Authenticated())
}

func TestAuthService_LoginRequiresBothFields(t *testing.T) {
	h := setup(t)
	svc := NewAuthService(h.api, h.sessions, "edu", nil)

	_, err := svc.Login(context.Background(), "", []byte("validpass1"))
	require.ErrorIs(t, err, apperr.ErrValidation)
	_, err = svc.Login(context.Background(), "a@uni.edu", nil)
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Zero(t, h.srv.TotalCalls())
}

func TestAuthService_Logout(t *testing.T) {
	h := setup(t)
	h.srv.AddUser("a@uni.edu", "validpass1", models.Identity{Name: "A"})
	h.login(t, "a@uni.edu", "validpass1")
	svc := NewAuthService(h.api, h.sessions, "edu", nil)

	svc.Logout(context.Background())

	assert.Equal(t, session.StatusUnauthenticated, svc.Session().Status)
	_, ok := h.store.Get()
	assert.False(t, ok)
}

func TestAuthService_NewRegistrationUsesDomain(t *testing.T) {
	h := setup(t)
	svc := NewAuthService(h.api, h.sessions, "ac.uk", nil)

	flow := svc.NewRegistration()
	err := flow.SubmitAccount(context.Background(), "a@usc.edu", "validpass1", "validpass1")

	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, "Only university email addresses (.ac.uk domain) are allowed", apperr.UserMessage(err))
	assert.Equal(t, registration.StateCollectingAccount, flow.State())
}

func TestAuthService_VerifyEmail(t *testing.T) {
	h := setup(t)
	h.srv.AddUser("a@uni.edu", "validpass1", models.Identity{Name: "A"})
	svc := NewAuthService(h.api, h.sessions, "edu", nil)

	_, err := svc.VerifyEmail(context.Background(), " ")
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, "No verification token provided", apperr.UserMessage(err))

	msg, err := svc.VerifyEmail(context.Background(), h.srv.VerificationToken("a@uni.edu"))
	require.NoError(t, err)
	assert.Equal(t, "Email verified successfully! You can now login.", msg)

	_, err = svc.VerifyEmail(context.Background(), "bogus")
	require.ErrorIs(t, err, apperr.ErrServerRejected)
	assert.Equal(t, "Invalid verification token", apperr.UserMessage(err))
}

func TestAuthService_Ping(t *testing.T) {
	h := setup(t)
	svc := NewAuthService(h.api, h.sessions, "edu", nil)

	require.NoError(t, svc.Ping(context.Background()))

	h.srv.Fail("GET "+client.PathHealth, http.StatusServiceUnavailable, "maintenance")
	require.ErrorIs(t, svc.Ping(context.Background()), apperr.ErrServerError)
}
