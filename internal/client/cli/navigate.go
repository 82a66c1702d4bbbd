package cli

import (
	"errors"
	"sync/atomic"

	"github.com/dmitrijs2005/campusmatch/internal/client/routegate"
)

const msgSessionEnded = "Your session has ended. Please log in again."

// errNotRendered is returned by gated commands when the gate did not render.
var errNotRendered = errors.New("view not available")

// navigate moves to path if the route gate allows it, following redirects.
// It reports whether path itself was rendered.
func (a *App) navigate(path string) bool {
	for hops := 0; hops < 4; hops++ {
		d, ok := routegate.Resolve(path, a.sessions.Snapshot())
		if !ok {
			a.println("Unknown page:", path)
			return false
		}
		switch d.Action {
		case routegate.ActionWait:
			a.println("Loading...")
			return false
		case routegate.ActionRedirect:
			if d.Target == routegate.PathLogin {
				a.println("Please log in to continue.")
				a.setLocation(d.Target)
				return false
			}
			path = d.Target
		case routegate.ActionRender:
			a.setLocation(path)
			return true
		}
	}
	return false
}

// setLocation records the current view. Protected views are watched so a
// session that ends underneath them sends the user to the login view.
func (a *App) setLocation(path string) {
	a.mu.Lock()
	stop := a.stopWatch
	a.stopWatch = nil
	a.location = path
	a.mu.Unlock()
	if stop != nil {
		stop()
	}

	if !routegate.Protected(path) {
		return
	}

	var armed atomic.Bool
	stop = routegate.Watch(a.sessions, path, func(d routegate.Decision) {
		if !armed.Load() || d.Action != routegate.ActionRedirect || d.Target != routegate.PathLogin {
			return
		}
		a.mu.Lock()
		moved := a.location == path
		if moved {
			a.location = d.Target
		}
		a.mu.Unlock()
		if moved {
			a.println(msgSessionEnded)
		}
	})
	armed.Store(true)

	a.mu.Lock()
	a.stopWatch = stop
	a.mu.Unlock()
}

func (a *App) currentLocation() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.location
}
