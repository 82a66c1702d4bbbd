// Package routegate decides whether a view may render for a session state.
package routegate

import (
	"strings"

	"github.com/dmitrijs2005/campusmatch/internal/client/session"
)

// Action is what the caller should do with the requested view.
type Action int

const (
	// ActionWait renders a neutral placeholder until the session resolves.
	ActionWait Action = iota
	ActionRender
	ActionRedirect
)

func (a Action) String() string {
	switch a {
	case ActionWait:
		return "wait"
	case ActionRender:
		return "render"
	case ActionRedirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Paths of the application views.
const (
	PathHome         = "/"
	PathLogin        = "/login"
	PathRegister     = "/register"
	PathVerifyEmail  = "/verify-email"
	PathApp          = "/app"
	PathProfile      = "/app/profile"
	PathMatches      = "/app/matches"
	PathDateRequests = "/app/date-requests"
	PathEvents       = "/app/events"
	PathMessages     = "/app/messages"
)

// Decision is the outcome of the gate. Target is set for ActionRedirect.
type Decision struct {
	Action Action
	Target string
}

var (
	wait   = Decision{Action: ActionWait}
	render = Decision{Action: ActionRender}
	toLog  = Decision{Action: ActionRedirect, Target: PathLogin}
)

// Decide maps a session state to a decision for a protected view.
func Decide(s session.Snapshot) Decision {
	switch s.Status {
	case session.StatusBootstrapping:
		return wait
	case session.StatusAuthenticated:
		return render
	default:
		// Unauthenticated, Invalidating and any unknown status.
		return toLog
	}
}

type route struct {
	protected bool
	// index redirects a rendered route to a child view.
	index string
}

var routes = map[string]route{
	PathHome:         {},
	PathLogin:        {},
	PathRegister:     {},
	PathVerifyEmail:  {},
	PathApp:          {protected: true, index: PathProfile},
	PathProfile:      {protected: true},
	PathMatches:      {protected: true},
	PathDateRequests: {protected: true},
	PathEvents:       {protected: true},
	PathMessages:     {protected: true},
}

// Protected reports whether path requires an authenticated session.
func Protected(path string) bool {
	return routes[normalize(path)].protected
}

// Resolve decides for a concrete path. found is false for unknown paths.
func Resolve(path string, s session.Snapshot) (d Decision, found bool) {
	r, ok := routes[normalize(path)]
	if !ok {
		return Decision{}, false
	}
	if r.protected {
		if d := Decide(s); d.Action != ActionRender {
			return d, true
		}
	}
	if r.index != "" {
		return Decision{Action: ActionRedirect, Target: r.index}, true
	}
	return render, true
}

func normalize(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return PathHome
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return strings.ToLower(path)
}
