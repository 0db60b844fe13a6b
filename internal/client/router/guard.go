package router

import (
	"github.com/guia-app/guia/internal/client/auth"
)

// Action is what the caller should do with a route.
type Action int

const (
	Render Action = iota
	// Wait means the session is still settling.
	Wait
	Redirect
	Forbidden
)

func (a Action) String() string {
	switch a {
	case Render:
		return "render"
	case Wait:
		return "wait"
	case Redirect:
		return "redirect"
	case Forbidden:
		return "forbidden"
	}
	return "unknown"
}

// Decision is the guard's verdict. Target is set for Redirect.
type Decision struct {
	Action Action
	Target string
}

// Decide applies the route's guard to the session.
func Decide(s auth.Session, r Route) Decision {
	if r.Access == AccessAny {
		return Decision{Action: Render}
	}
	if s.IsLoading {
		return Decision{Action: Wait}
	}

	switch r.Access {
	case AccessPublicOnly:
		if s.IsAuthenticated {
			return Decision{Action: Redirect, Target: PathHome}
		}
	case AccessProtected:
		if !s.IsAuthenticated {
			return Decision{Action: Redirect, Target: PathLogin}
		}
		for _, c := range r.Requires {
			if s.User == nil || !s.User.Type.Grants(c) {
				return Decision{Action: Forbidden}
			}
		}
	}
	return Decision{Action: Render}
}
