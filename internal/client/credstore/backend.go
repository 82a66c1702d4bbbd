// Package credstore persists the single access credential of the client.
//
// A Backend is the fallible durable layer (SQLite, BoltDB or memory). Store
// wraps one Backend and exposes the total Get/Set/Clear contract the session
// manager relies on: backend failures are logged and absorbed, and an
// in-memory mirror keeps Get consistent with the last Set/Clear.
package credstore

import (
	"context"
	"errors"
)

// AccessTokenKey is the well-known key the credential lives under.
const AccessTokenKey = "access_token"

// ErrUnknownDriver is returned by Open for an unsupported driver name.
var ErrUnknownDriver = errors.New("unknown credential store driver")

// Backend is durable key/value storage for exactly one credential.
// Load returns "" with a nil error when nothing is stored.
type Backend interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, credential string) error
	Delete(ctx context.Context) error
	Close() error
}
