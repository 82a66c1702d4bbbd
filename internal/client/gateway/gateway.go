// Package gateway wraps every outbound HTTP call of the client.
//
// Each call carries an explicit Auth parameter: the current access credential
// (read from a TokenSource), an override bearer token such as the provisional
// registration credential, or no authorization at all. Every failure is
// normalized into an *apperr.Error; raw transport errors never escape.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/campusmatch/internal/client/apperr"
	"github.com/dmitrijs2005/campusmatch/internal/logging"
	"github.com/google/uuid"
)

const (
	DefaultTimeout = 10 * time.Second

	// RequestIDHeader correlates client and server logs.
	RequestIDHeader = "X-Request-ID"

	maxBodySize = 1 << 20
)

// TokenSource yields the current access credential.
type TokenSource interface {
	Get() (string, bool)
}

// TokenSourceFunc adapts a func such as session.Manager.AccessCredential to TokenSource.
type TokenSourceFunc func() (string, bool)

func (f TokenSourceFunc) Get() (string, bool) { return f() }

type authMode int

const (
	authSession authMode = iota
	authBearer
	authNone
)

// Auth selects the Authorization header of one call.
type Auth struct {
	mode  authMode
	token string
}

// SessionAuth attaches the current access credential, if any.
func SessionAuth() Auth { return Auth{mode: authSession} }

// BearerAuth attaches token instead of the current access credential.
func BearerAuth(token string) Auth { return Auth{mode: authBearer, token: token} }

// NoAuth sends no Authorization header.
func NoAuth() Auth { return Auth{mode: authNone} }

// Request describes one call. At most one of JSON and Form is set.
type Request struct {
	Method string
	Path   string
	Auth   Auth
	JSON   any
	Form   url.Values
}

// Gateway performs HTTP calls against one backend.
type Gateway struct {
	baseURL   string
	client    *http.Client
	timeout   time.Duration
	tokens    TokenSource
	logger    logging.Logger
	requestID func() string
}

// Option customizes a Gateway.
type Option func(*Gateway)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(c *http.Client) Option { return func(g *Gateway) { g.client = c } }

// WithTimeout sets the per-call deadline.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option { return func(g *Gateway) { g.logger = l } }

// New returns a Gateway for baseURL reading session credentials from tokens.
func New(baseURL string, tokens TokenSource, opts ...Option) *Gateway {
	g := &Gateway{
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    &http.Client{},
		timeout:   DefaultTimeout,
		tokens:    tokens,
		logger:    logging.Nop(),
		requestID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With("component", "gateway")
	return g
}

// BaseURL returns the backend base URL.
func (g *Gateway) BaseURL() string { return g.baseURL }

// Do sends req and decodes a successful JSON response into out (which may be nil).
func (g *Gateway) Do(ctx context.Context, req Request, out any) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	httpReq, err := g.newHTTPRequest(ctx, req)
	if err != nil {
		return err
	}

	reqID := httpReq.Header.Get(RequestIDHeader)
	started := time.Now()

	resp, err := g.client.Do(httpReq)
	if err != nil {
		mapped := g.mapTransportError(ctx, err)
		g.logger.Warn(ctx, "request failed",
			"method", req.Method, "path", req.Path, "request_id", reqID, "kind", mapped.Kind, "error", err)
		return mapped
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return g.mapTransportError(ctx, err)
	}

	g.logger.Debug(ctx, "request done",
		"method", req.Method, "path", req.Path, "status", resp.StatusCode,
		"request_id", reqID, "duration", time.Since(started))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return mapStatus(resp.StatusCode, body)
	}

	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return &apperr.Error{Kind: apperr.KindServerError, Status: resp.StatusCode, Message: "empty response from server"}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &apperr.Error{Kind: apperr.KindServerError, Status: resp.StatusCode, Message: "malformed response from server"}
	}
	return nil
}

func (g *Gateway) newHTTPRequest(ctx context.Context, req Request) (*http.Request, error) {
	var (
		body        io.Reader
		contentType string
	)
	switch {
	case req.Form != nil:
		body = strings.NewReader(req.Form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case req.JSON != nil:
		b, err := json.Marshal(req.JSON)
		if err != nil {
			return nil, apperr.New(apperr.KindValidation, "cannot encode request: %v", err)
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, g.baseURL+req.Path, body)
	if err != nil {
		return nil, apperr.New(apperr.KindNetworkUnavailable, "invalid backend address %q: %v", g.baseURL, err)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(RequestIDHeader, g.requestID())

	if token := g.resolveToken(req.Auth); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	return httpReq, nil
}

func (g *Gateway) resolveToken(a Auth) string {
	switch a.mode {
	case authBearer:
		return a.token
	case authSession:
		if g.tokens == nil {
			return ""
		}
		token, _ := g.tokens.Get()
		return token
	default:
		return ""
	}
}

func (g *Gateway) mapTransportError(ctx context.Context, err error) *apperr.Error {
	var netErr interface{ Timeout() bool }
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return apperr.New(apperr.KindTimeout,
			"Request timeout. Please check if the backend server is running on %s", g.baseURL)
	case errors.Is(err, context.Canceled):
		return apperr.New(apperr.KindTimeout, "request cancelled")
	case errors.As(err, &netErr) && netErr.Timeout():
		return apperr.New(apperr.KindTimeout,
			"Request timeout. Please check if the backend server is running on %s", g.baseURL)
	default:
		return apperr.New(apperr.KindNetworkUnavailable,
			"Network Error: Cannot connect to backend server. Please make sure the backend is running on %s", g.baseURL)
	}
}

func mapStatus(status int, body []byte) *apperr.Error {
	msg := detailMessage(body)
	if msg == "" {
		msg = http.StatusText(status)
	}
	e := &apperr.Error{Status: status, Message: msg}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		e.Kind = apperr.KindUnauthorized
	case status >= 400 && status < 500:
		e.Kind = apperr.KindServerRejected
	default:
		e.Kind = apperr.KindServerError
	}
	return e
}

// detailMessage extracts the server message from {"detail": "..."} or the
// validation form {"detail": [{"msg": "..."}]}.
func detailMessage(body []byte) string {
	var env struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &env); err != nil || len(env.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(env.Detail, &s); err == nil {
		return s
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(env.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return string(env.Detail)
}
