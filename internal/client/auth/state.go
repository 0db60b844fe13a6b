package auth

import (
	"errors"

	"github.com/guia-app/guia/internal/client/models"
	"github.com/guia-app/guia/internal/client/validate"
)

// Status is the coarse authentication state.
type Status int

const (
	StatusUnknown Status = iota
	StatusAuthenticated
	StatusUnauthenticated
)

func (s Status) String() string {
	switch s {
	case StatusAuthenticated:
		return "authenticated"
	case StatusUnauthenticated:
		return "unauthenticated"
	}
	return "unknown"
}

// Reason tells subscribers why the session changed.
type Reason string

const (
	ReasonBootstrap Reason = "bootstrap"
	ReasonLogin     Reason = "login"
	ReasonRegister  Reason = "register"
	ReasonLogout    Reason = "logout"
	ReasonExpired   Reason = "expired"
	ReasonProfile   Reason = "profile"
	ReasonRefresh   Reason = "refresh"
	ReasonError     Reason = "error"
)

// Session is a point-in-time copy of the manager's state. An empty string
// means "none" for AccessToken and Error.
type Session struct {
	User            *models.User
	AccessToken     string
	IsAuthenticated bool
	IsLoading       bool
	Error           string
	Status          Status
}

func (s Session) clone() Session {
	s.User = s.User.Clone()
	return s
}

// Result is the outcome of a Manager operation.
type Result struct {
	Success bool
	User    *models.User
	// Error is the message to show; empty on success.
	Error string
	// Fields holds per-field validation problems. No request was sent when
	// it is non-empty.
	Fields validate.Errors
	// Err is the underlying cause, for errors.Is checks.
	Err error
}

func ok(u *models.User) Result {
	return Result{Success: true, User: u.Clone()}
}

func failed(err error, msg string) Result {
	return Result{Error: msg, Err: err}
}

func invalid(fields validate.Errors) Result {
	return Result{Error: fields.Error(), Fields: fields, Err: fields}
}

var (
	ErrAlreadyAuthenticated = errors.New("already signed in")
	ErrNotAuthenticated     = errors.New("not signed in")
	ErrBootstrapPending     = errors.New("session is still being restored")
	ErrSuperseded           = errors.New("session changed while the request was in flight")
	ErrInvalidResponse      = errors.New("server returned an incomplete session")
	ErrNoRefreshToken       = errors.New("no refresh token")
)

// User-facing fallbacks, used when the API gives no message of its own.
const (
	msgLogin     = "sign in failed"
	msgRegister  = "could not create account"
	msgProfile   = "could not update profile"
	msgPassword  = "could not change password"
	msgRefresh   = "could not refresh session"
	msgExpired   = "your session has expired, please sign in again"
	msgPersist   = "could not save session"
	msgSignedIn  = "already signed in, sign out first"
	msgBooting   = "still restoring your session, try again"
	msgSignedOut = "you are not signed in"
)
