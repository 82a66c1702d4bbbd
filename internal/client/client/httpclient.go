package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/campusmatch/internal/client/apperr"
	"github.com/dmitrijs2005/campusmatch/internal/client/gateway"
	"github.com/dmitrijs2005/campusmatch/internal/client/models"
)

// Backend routes.
const (
	PathCurrentUser   = "/api/users/me"
	PathLogin         = "/api/auth/login"
	PathRegisterStep1 = "/api/auth/register-step1"
	PathRegisterStep2 = "/api/auth/register-step2"
	PathVerifyEmail   = "/api/auth/verify-email"
	PathHealth        = "/api/health"
)

// HTTPClient implements Client over a gateway.
type HTTPClient struct {
	gw *gateway.Gateway
}

func NewHTTPClient(gw *gateway.Gateway) *HTTPClient {
	return &HTTPClient{gw: gw}
}

func (c *HTTPClient) CurrentIdentity(ctx context.Context, auth gateway.Auth) (*models.Identity, error) {
	var identity models.Identity
	req := gateway.Request{Method: http.MethodGet, Path: PathCurrentUser, Auth: auth}
	if err := c.gw.Do(ctx, req, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

// Login posts the OAuth2 password form (username/password).
func (c *HTTPClient) Login(ctx context.Context, identifier, secret string) (string, error) {
	form := url.Values{}
	form.Set("username", identifier)
	form.Set("password", secret)

	var resp models.TokenResponse
	req := gateway.Request{Method: http.MethodPost, Path: PathLogin, Auth: gateway.NoAuth(), Form: form}
	if err := c.gw.Do(ctx, req, &resp); err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", apperr.New(apperr.KindServerError, "No access token received from server")
	}
	return resp.AccessToken, nil
}

func (c *HTTPClient) CreateAccount(ctx context.Context, email, password string) (string, error) {
	var resp models.ProvisionalGrant
	req := gateway.Request{
		Method: http.MethodPost,
		Path:   PathRegisterStep1,
		Auth:   gateway.NoAuth(),
		JSON:   models.AccountRequest{Email: email, Password: password},
	}
	if err := c.gw.Do(ctx, req, &resp); err != nil {
		return "", err
	}
	if resp.TempToken == "" {
		return "", apperr.New(apperr.KindServerError, "No temp token received from server")
	}
	return resp.TempToken, nil
}

func (c *HTTPClient) CompleteProfile(ctx context.Context, provisional string, fields models.ProfileFields) (string, error) {
	if fields.Interests == nil {
		fields.Interests = []string{}
	}
	if fields.Photos == nil {
		fields.Photos = []string{}
	}

	var resp models.TokenResponse
	req := gateway.Request{
		Method: http.MethodPost,
		Path:   PathRegisterStep2,
		Auth:   gateway.BearerAuth(provisional),
		JSON:   fields,
	}
	if err := c.gw.Do(ctx, req, &resp); err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", apperr.New(apperr.KindServerError, "No access token received from server")
	}
	return resp.AccessToken, nil
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.Identity, error) {
	var identity models.Identity
	req := gateway.Request{Method: http.MethodPut, Path: PathCurrentUser, Auth: gateway.SessionAuth(), JSON: update}
	if err := c.gw.Do(ctx, req, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

func (c *HTTPClient) VerifyEmail(ctx context.Context, token string) (string, error) {
	var resp models.MessageResponse
	req := gateway.Request{
		Method: http.MethodPost,
		Path:   PathVerifyEmail,
		Auth:   gateway.NoAuth(),
		JSON:   models.VerificationRequest{Token: token},
	}
	if err := c.gw.Do(ctx, req, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	var resp struct {
		Status string `json:"status"`
	}
	req := gateway.Request{Method: http.MethodGet, Path: PathHealth, Auth: gateway.NoAuth()}
	if err := c.gw.Do(ctx, req, &resp); err != nil {
		return err
	}
	if resp.Status != "healthy" && resp.Status != "ok" && resp.Status != "OK" {
		return apperr.New(apperr.KindServerError, "server reported status %q", resp.Status)
	}
	return nil
}
