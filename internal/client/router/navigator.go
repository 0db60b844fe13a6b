package router

import (
	"context"
	"sync"

	"github.com/guia-app/guia/internal/client/auth"
	"github.com/guia-app/guia/internal/logging"
)

// SessionSource is the part of auth.Manager the navigator watches.
type SessionSource interface {
	Session() auth.Session
	Subscribe(fn auth.Listener) (unsubscribe func())
}

// maxRedirects bounds redirect chains.
const maxRedirects = 4

// Navigator tracks the current location and moves it when the session
// changes. Moving is always explicit: the auth manager never navigates.
type Navigator struct {
	src    SessionSource
	logger logging.Logger

	mu      sync.Mutex
	current Match
	pending string
	onMove  func(Match)

	unsubscribe func()
}

// NewNavigator starts at the home location, which renders once a session
// exists and otherwise redirects to login.
func NewNavigator(src SessionSource, logger logging.Logger) *Navigator {
	if logger == nil {
		logger = logging.Discard()
	}
	n := &Navigator{src: src, logger: logger, current: notFound(PathNotFound)}
	n.unsubscribe = src.Subscribe(n.onSession)
	n.Navigate(PathHome)
	return n
}

// OnMove registers fn to be told about every location change.
func (n *Navigator) OnMove(fn func(Match)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.onMove = fn
}

// Current returns the location being shown.
func (n *Navigator) Current() Match {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Navigate tries to move to location and returns the guard's final
// decision. Redirects are followed. On Wait the location is remembered and
// retried once the session settles. On Forbidden the current location is
// kept.
func (n *Navigator) Navigate(location string) (Match, Decision) {
	n.mu.Lock()
	m, d, moved := n.navigateLocked(location)
	fn := n.onMove
	n.mu.Unlock()

	if moved && fn != nil {
		fn(m)
	}
	return m, d
}

func (n *Navigator) navigateLocked(location string) (Match, Decision, bool) {
	s := n.src.Session()
	m := Resolve(location)
	d := Decide(s, m.Route)
	for hops := 0; d.Action == Redirect && hops < maxRedirects; hops++ {
		m = Resolve(d.Target)
		d = Decide(s, m.Route)
	}

	switch d.Action {
	case Render:
		n.pending = ""
		moved := n.current.Path != m.Path
		n.current = m
		return m, d, moved
	case Wait:
		n.pending = location
	case Redirect:
		n.logger.Warn(context.Background(), "redirect loop", "location", location)
	}
	return m, d, false
}

func (n *Navigator) onSession(s auth.Session, reason auth.Reason) {
	n.mu.Lock()
	var target string
	switch reason {
	case auth.ReasonExpired, auth.ReasonLogout:
		if n.current.Route.Name != RouteLogin {
			target = PathLogin
		}
	case auth.ReasonLogin, auth.ReasonRegister:
		if n.current.Route.Access == AccessPublicOnly {
			target = PathHome
		}
	case auth.ReasonBootstrap:
		target = n.pending
		if target == "" {
			target = n.current.Path
		}
	}
	n.mu.Unlock()

	if target != "" {
		n.Navigate(target)
	}
}

// Close stops following the session.
func (n *Navigator) Close() {
	n.unsubscribe()
}
