// Package cli provides the interactive campus client.
//
// It wires configuration, the credential store, the HTTP gateway, the
// session manager and the application services behind a small REPL. On
// start the stored session is resumed (if any), a background watcher tracks
// server reachability, and commands map onto the application views:
//
//   - register, login, logout, verify
//   - profile, edit (protected; gated on the session)
//   - go <path> to open any known view, status, help, exit
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
