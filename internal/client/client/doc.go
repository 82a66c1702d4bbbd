// Package client is the typed view of the campus REST backend.
//
// # Overview
//
// The package provides:
//  1. The Client interface: the endpoints the session core consumes
//     (current identity, login, two-phase registration, profile update,
//     email verification, health).
//  2. HTTPClient, which implements Client on top of gateway.Gateway. Every
//     method states its authorization explicitly: no credential, the current
//     access credential, or an override bearer token.
//
// # Error Handling
//
// All errors are *apperr.Error values produced by the gateway; match them with
// errors.Is against apperr.ErrUnauthorized, apperr.ErrTimeout, etc. A 2xx
// response missing the expected token is reported as apperr.KindServerError.
//
// Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept
// context.Context and honor cancellation; the gateway adds its own deadline.
package client
