package routegate

import "github.com/dmitrijs2005/campusmatch/internal/client/session"

// Source is the read side of the session manager.
type Source interface {
	Snapshot() session.Snapshot
	Subscribe(fn func(session.Snapshot)) (unsubscribe func())
}

// Watch evaluates path now and again on every session change, calling fn
// with each decision. Call the returned func to stop.
func Watch(src Source, path string, fn func(Decision)) (stop func()) {
	unsubscribe := src.Subscribe(func(s session.Snapshot) {
		if d, ok := Resolve(path, s); ok {
			fn(d)
		}
	})
	if d, ok := Resolve(path, src.Snapshot()); ok {
		fn(d)
	}
	return unsubscribe
}
