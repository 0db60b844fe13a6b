package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/guia-app/guia/internal/client/api"
	"github.com/guia-app/guia/internal/client/models"
	"github.com/guia-app/guia/internal/client/session"
	"github.com/guia-app/guia/internal/client/validate"
	"github.com/guia-app/guia/internal/logging"
)

// API is the part of the HTTP client the manager talks to.
type API interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	Logout(ctx context.Context) error
	Refresh(ctx context.Context, refreshToken string) (*models.AuthResponse, error)
	Validate(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.User, error)
	ChangePassword(ctx context.Context, change models.PasswordChange) error
}

// Binder is implemented by the HTTP client so the manager can supply the
// bearer token and receive 401 notifications.
type Binder interface {
	SetTokenSource(fn func() string)
	SetUnauthorizedHandler(fn func(ctx context.Context))
}

const (
	DefaultBootstrapTimeout = 10 * time.Second
	DefaultLogoutTimeout    = 5 * time.Second
)

// Options tunes a Manager. Zero values fall back to the defaults.
type Options struct {
	BootstrapTimeout time.Duration
	LogoutTimeout    time.Duration
	Logger           logging.Logger
}

// Listener receives a copy of the session after every transition.
type Listener func(Session, Reason)

// Manager is the single owner of the client session.
type Manager struct {
	api    API
	store  session.Store
	logger logging.Logger

	bootstrapTimeout time.Duration
	logoutTimeout    time.Duration

	bootOnce sync.Once

	mu         sync.Mutex
	status     Status
	creds      models.Credentials
	user       *models.User
	errMsg     string
	booting    bool
	settled    bool
	pending    int
	loggingOut int
	// gen changes whenever the signed-in identity does.
	gen       uint64
	listeners map[int]Listener
	nextID    int
}

// NewManager returns a manager in the Unknown state. Call Bootstrap to
// restore a stored session.
func NewManager(client API, store session.Store, opts Options) *Manager {
	m := &Manager{
		api:              client,
		store:            store,
		logger:           opts.Logger,
		bootstrapTimeout: opts.BootstrapTimeout,
		logoutTimeout:    opts.LogoutTimeout,
		status:           StatusUnknown,
		listeners:        make(map[int]Listener),
	}
	if m.logger == nil {
		m.logger = logging.Discard()
	}
	if m.bootstrapTimeout <= 0 {
		m.bootstrapTimeout = DefaultBootstrapTimeout
	}
	if m.logoutTimeout <= 0 {
		m.logoutTimeout = DefaultLogoutTimeout
	}
	return m
}

// Bind makes the manager the token source and 401 handler of b.
func (m *Manager) Bind(b Binder) {
	b.SetTokenSource(m.AccessToken)
	b.SetUnauthorizedHandler(m.HandleUnauthorized)
}

// Session returns a copy of the current state.
func (m *Manager) Session() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// AccessToken returns the bearer token, or "" when signed out.
func (m *Manager) AccessToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.creds.AccessToken
}

// HasCapability reports whether the signed-in user holds c.
func (m *Manager) HasCapability(c models.Capability) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status == StatusAuthenticated && m.user != nil && m.user.Type.Grants(c)
}

// IsOwn reports whether id is the signed-in user.
func (m *Manager) IsOwn(id models.ID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status == StatusAuthenticated && m.user != nil && !id.IsZero() && m.user.ID == id
}

// ClearError drops the last error message.
func (m *Manager) ClearError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errMsg = ""
}

// Subscribe registers fn for transition notifications. The returned func
// removes it.
func (m *Manager) Subscribe(fn Listener) (unsubscribe func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			delete(m.listeners, id)
		})
	}
}

// Bootstrap restores the stored session once. Later calls wait for the
// first to finish and report the settled session.
func (m *Manager) Bootstrap(ctx context.Context) Result {
	m.bootOnce.Do(func() { m.bootstrap(ctx) })

	s := m.Session()
	if s.IsAuthenticated {
		return ok(s.User)
	}
	return Result{Error: s.Error}
}

func (m *Manager) bootstrap(ctx context.Context) {
	m.mu.Lock()
	if m.status != StatusUnknown {
		m.mu.Unlock()
		return
	}
	m.booting = true
	gen := m.gen

	snap, err := m.store.Load(ctx)
	if err != nil {
		m.logger.Warn(ctx, "failed to load stored session", "error", err)
	}
	if snap == nil {
		m.purgeLocked(ctx)
		m.settleLocked(StatusUnauthenticated)
		m.booting = false
		m.unlockAndNotify(ReasonBootstrap)
		return
	}
	// the token must be visible to the API client while validating
	m.creds = snap.Credentials
	m.mu.Unlock()

	vctx, cancel := context.WithTimeout(ctx, m.bootstrapTimeout)
	user, err := m.api.Validate(vctx)
	cancel()

	m.mu.Lock()
	m.booting = false
	if m.gen != gen {
		m.mu.Unlock()
		return
	}
	if err == nil {
		if user == nil || user.ID.IsZero() {
			user = snap.User
		}
		err = checkClaims(snap.Credentials.AccessToken, user)
	}
	if err == nil {
		err = m.store.SaveUser(ctx, user)
	}
	if err != nil {
		m.logger.Info(ctx, "stored session rejected", "error", err)
		m.purgeLocked(ctx)
		m.settleLocked(StatusUnauthenticated)
		m.unlockAndNotify(ReasonBootstrap)
		return
	}

	m.gen++
	m.user = user.Clone()
	m.settleLocked(StatusAuthenticated)
	m.logger.Info(ctx, "session restored", "user_id", user.ID)
	m.unlockAndNotify(ReasonBootstrap)
}

// Login validates the form and signs in.
func (m *Manager) Login(ctx context.Context, identifier, password string) Result {
	form, fields := validate.Login(identifier, password)
	if len(fields) > 0 {
		return invalid(fields)
	}

	gen, res, started := m.begin()
	if !started {
		return res
	}
	resp, err := m.api.Login(ctx, form.Request())
	return m.establish(ctx, gen, resp, err, ReasonLogin, msgLogin)
}

// Register validates the form and creates an account, signing in on
// success.
func (m *Manager) Register(ctx context.Context, form validate.RegisterForm) Result {
	if fields := validate.Register(&form); len(fields) > 0 {
		return invalid(fields)
	}

	gen, res, started := m.begin()
	if !started {
		return res
	}
	resp, err := m.api.Register(ctx, form.Request())
	return m.establish(ctx, gen, resp, err, ReasonRegister, msgRegister)
}

// begin marks a sign-in as pending.
func (m *Manager) begin() (gen uint64, res Result, started bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case m.booting:
		return 0, failed(ErrBootstrapPending, msgBooting), false
	case m.status == StatusAuthenticated:
		return 0, failed(ErrAlreadyAuthenticated, msgSignedIn), false
	}
	m.pending++
	m.errMsg = ""
	return m.gen, Result{}, true
}

// establish applies a sign-in response against the current state.
func (m *Manager) establish(ctx context.Context, gen uint64, resp *models.AuthResponse, err error, reason Reason, fallback string) Result {
	if err == nil {
		switch {
		case resp == nil || !resp.Credentials().Complete() || resp.User == nil:
			err = ErrInvalidResponse
		default:
			err = checkClaims(resp.Token, resp.User)
		}
	}

	m.mu.Lock()
	m.pending--
	if m.gen != gen || m.status == StatusAuthenticated {
		m.mu.Unlock()
		if err == nil {
			err = ErrSuperseded
		}
		return failed(err, api.Message(err, fallback))
	}

	if err != nil {
		m.errMsg = api.Message(err, fallback)
		m.settleLocked(StatusUnauthenticated)
		res := failed(err, m.errMsg)
		m.unlockAndNotify(ReasonError)
		return res
	}

	creds := resp.Credentials()
	if err := m.store.Save(ctx, creds, resp.User); err != nil {
		m.logger.Error(ctx, "failed to persist session", "error", err)
		m.errMsg = msgPersist
		m.settleLocked(StatusUnauthenticated)
		m.unlockAndNotify(ReasonError)
		return failed(err, msgPersist)
	}

	m.gen++
	m.creds = creds
	m.user = resp.User.Clone()
	m.errMsg = ""
	m.settleLocked(StatusAuthenticated)
	m.logger.Info(ctx, "signed in", "user_id", resp.User.ID, "reason", reason)
	res := ok(m.user)
	m.unlockAndNotify(reason)
	return res
}

// Logout ends the session. The server is told first; its failure does not
// stop the local session from being cleared.
func (m *Manager) Logout(ctx context.Context) Result {
	m.mu.Lock()
	m.loggingOut++
	hasToken := m.creds.AccessToken != ""
	m.mu.Unlock()

	if hasToken {
		lctx, cancel := context.WithTimeout(ctx, m.logoutTimeout)
		if err := m.api.Logout(lctx); err != nil {
			m.logger.Warn(ctx, "remote logout failed", "error", err)
		}
		cancel()
	}

	m.mu.Lock()
	m.loggingOut--
	m.gen++
	m.purgeLocked(ctx)
	m.errMsg = ""
	m.settleLocked(StatusUnauthenticated)
	m.unlockAndNotify(ReasonLogout)
	return Result{Success: true}
}

// HandleUnauthorized drops the session after the API rejected its token.
// It does nothing unless a session is active.
func (m *Manager) HandleUnauthorized(ctx context.Context) {
	m.mu.Lock()
	if m.loggingOut > 0 || m.status != StatusAuthenticated {
		m.mu.Unlock()
		return
	}
	m.logger.Info(ctx, "session expired", "user_id", m.user.ID)
	m.expireLocked(ctx)
	m.unlockAndNotify(ReasonExpired)
}

// UpdateProfile validates and saves profile changes. The result is applied
// only if the same user is still signed in when the server answers.
func (m *Manager) UpdateProfile(ctx context.Context, update models.ProfileUpdate) Result {
	if fields := validate.Profile(update); len(fields) > 0 {
		return invalid(fields)
	}
	gen, res, isAuth := m.current()
	if !isAuth {
		return res
	}

	server, err := m.api.UpdateProfile(ctx, update)

	m.mu.Lock()
	if m.gen != gen || m.status != StatusAuthenticated {
		m.mu.Unlock()
		if err == nil {
			err = ErrSuperseded
		}
		return failed(err, api.Message(err, msgProfile))
	}
	if err != nil {
		m.errMsg = api.Message(err, msgProfile)
		res := failed(err, m.errMsg)
		m.unlockAndNotify(ReasonError)
		return res
	}

	u := m.user.Clone()
	update.Apply(u)
	u.Merge(server)
	if err := m.store.SaveUser(ctx, u); err != nil {
		m.logger.Warn(ctx, "failed to cache updated profile", "error", err)
	}
	m.user = u
	m.errMsg = ""
	res = ok(u)
	m.unlockAndNotify(ReasonProfile)
	return res
}

// ChangePassword validates and submits a password change.
func (m *Manager) ChangePassword(ctx context.Context, change models.PasswordChange) Result {
	if fields := validate.Password(change); len(fields) > 0 {
		return invalid(fields)
	}
	gen, res, isAuth := m.current()
	if !isAuth {
		return res
	}

	err := m.api.ChangePassword(ctx, change)

	m.mu.Lock()
	if m.gen != gen || m.status != StatusAuthenticated {
		m.mu.Unlock()
		if err == nil {
			err = ErrSuperseded
		}
		return failed(err, api.Message(err, msgPassword))
	}
	if err != nil {
		m.errMsg = api.Message(err, msgPassword)
		res := failed(err, m.errMsg)
		m.unlockAndNotify(ReasonError)
		return res
	}
	res = ok(m.user)
	m.mu.Unlock()
	return res
}

// Refresh exchanges the refresh token for new credentials. A rejected
// refresh token ends the session; a network failure changes nothing.
func (m *Manager) Refresh(ctx context.Context) Result {
	gen, res, isAuth := m.current()
	if !isAuth {
		return res
	}
	m.mu.Lock()
	refresh := m.creds.RefreshToken
	m.mu.Unlock()
	if refresh == "" {
		return failed(ErrNoRefreshToken, msgRefresh)
	}

	resp, err := m.api.Refresh(ctx, refresh)
	if err == nil && (resp == nil || resp.Token == "") {
		err = ErrInvalidResponse
	}

	m.mu.Lock()
	// another refresh may have rotated the token meanwhile
	if m.gen != gen || m.status != StatusAuthenticated || m.creds.RefreshToken != refresh {
		m.mu.Unlock()
		if err == nil {
			err = ErrSuperseded
		}
		return failed(err, api.Message(err, msgRefresh))
	}

	if errors.Is(err, api.ErrUnauthorized) {
		m.logger.Info(ctx, "refresh token rejected", "user_id", m.user.ID)
		m.expireLocked(ctx)
		m.unlockAndNotify(ReasonExpired)
		return failed(err, msgExpired)
	}
	if err != nil {
		m.mu.Unlock()
		m.logger.Warn(ctx, "token refresh failed", "error", err)
		return failed(err, api.Message(err, msgRefresh))
	}

	creds := resp.Credentials()
	if creds.RefreshToken == "" {
		creds.RefreshToken = refresh
	}
	user := m.user.Clone()
	user.Merge(resp.User)
	if err := checkClaims(creds.AccessToken, user); err != nil {
		m.mu.Unlock()
		m.logger.Warn(ctx, "refreshed token rejected", "error", err)
		return failed(err, msgRefresh)
	}
	if err := m.store.Save(ctx, creds, user); err != nil {
		m.mu.Unlock()
		m.logger.Error(ctx, "failed to persist refreshed session", "error", err)
		return failed(err, msgPersist)
	}

	m.creds = creds
	m.user = user
	res = ok(user)
	m.unlockAndNotify(ReasonRefresh)
	return res
}

// current returns the generation of the active session, or a failed result
// when no one is signed in.
func (m *Manager) current() (gen uint64, res Result, isAuth bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status != StatusAuthenticated {
		return 0, failed(ErrNotAuthenticated, msgSignedOut), false
	}
	return m.gen, Result{}, true
}

func (m *Manager) expireLocked(ctx context.Context) {
	m.gen++
	m.purgeLocked(ctx)
	m.errMsg = msgExpired
	m.settleLocked(StatusUnauthenticated)
}

// purgeLocked forgets the session in memory and in the store.
func (m *Manager) purgeLocked(ctx context.Context) {
	m.creds = models.Credentials{}
	m.user = nil
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Error(ctx, "failed to clear stored session", "error", err)
	}
}

func (m *Manager) settleLocked(s Status) {
	m.status = s
	m.settled = true
}

func (m *Manager) snapshotLocked() Session {
	return Session{
		User:            m.user.Clone(),
		AccessToken:     m.creds.AccessToken,
		IsAuthenticated: m.status == StatusAuthenticated,
		IsLoading:       !m.settled || m.booting || m.pending > 0,
		Error:           m.errMsg,
		Status:          m.status,
	}
}

// unlockAndNotify releases m.mu and then calls every listener with the
// state as it was at release time.
func (m *Manager) unlockAndNotify(reason Reason) {
	s := m.snapshotLocked()
	listeners := make([]Listener, 0, len(m.listeners))
	for _, fn := range m.listeners {
		listeners = append(listeners, fn)
	}
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(s.clone(), reason)
	}
}
