package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guia-app/guia/internal/client/api"
	"github.com/guia-app/guia/internal/client/models"
	"github.com/guia-app/guia/internal/client/session"
	"github.com/guia-app/guia/internal/client/validate"
	"github.com/guia-app/guia/internal/logging"
)

type fakeAPI struct {
	register       func(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	login          func(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	logout         func(ctx context.Context) error
	refresh        func(ctx context.Context, token string) (*models.AuthResponse, error)
	validate       func(ctx context.Context) (*models.User, error)
	updateProfile  func(ctx context.Context, u models.ProfileUpdate) (*models.User, error)
	changePassword func(ctx context.Context, c models.PasswordChange) error

	calls atomic.Int32
}

func (f *fakeAPI) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	f.calls.Add(1)
	return f.register(ctx, req)
}

func (f *fakeAPI) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	f.calls.Add(1)
	return f.login(ctx, req)
}

func (f *fakeAPI) Logout(ctx context.Context) error {
	f.calls.Add(1)
	if f.logout == nil {
		return nil
	}
	return f.logout(ctx)
}

func (f *fakeAPI) Refresh(ctx context.Context, token string) (*models.AuthResponse, error) {
	f.calls.Add(1)
	return f.refresh(ctx, token)
}

func (f *fakeAPI) Validate(ctx context.Context) (*models.User, error) {
	f.calls.Add(1)
	return f.validate(ctx)
}

func (f *fakeAPI) UpdateProfile(ctx context.Context, u models.ProfileUpdate) (*models.User, error) {
	f.calls.Add(1)
	return f.updateProfile(ctx, u)
}

func (f *fakeAPI) ChangePassword(ctx context.Context, c models.PasswordChange) error {
	f.calls.Add(1)
	return f.changePassword(ctx, c)
}

// failingStore wraps a store and fails selected operations.
type failingStore struct {
	session.Store
	loadErr, saveErr error
}

func (s *failingStore) Load(ctx context.Context) (*session.Snapshot, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.Store.Load(ctx)
}

func (s *failingStore) Save(ctx context.Context, c models.Credentials, u *models.User) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	return s.Store.Save(ctx, c, u)
}

func alice() *models.User {
	return &models.User{ID: "1", Username: "alice", Email: "alice@example.com", FirstName: "Alice", Type: models.AccountPersonal}
}

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func loginOK(token string) func(context.Context, models.LoginRequest) (*models.AuthResponse, error) {
	return func(context.Context, models.LoginRequest) (*models.AuthResponse, error) {
		return &models.AuthResponse{Token: token, RefreshToken: "r1", User: alice()}, nil
	}
}

func newManager(t *testing.T, f *fakeAPI, store session.Store) *Manager {
	t.Helper()
	return NewManager(f, store, Options{Logger: logging.Discard()})
}

// signIn returns a manager with alice signed in.
func signIn(t *testing.T, f *fakeAPI, store session.Store) *Manager {
	t.Helper()
	if f.login == nil {
		f.login = loginOK("t1")
	}
	m := newManager(t, f, store)
	res := m.Login(context.Background(), "alice@example.com", "secret")
	require.True(t, res.Success, res.Error)
	return m
}

func recordReasons(m *Manager) func() []Reason {
	var mu sync.Mutex
	var got []Reason
	m.Subscribe(func(_ Session, r Reason) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, r)
	})
	return func() []Reason {
		mu.Lock()
		defer mu.Unlock()
		return append([]Reason(nil), got...)
	}
}

func TestManager_InitialState(t *testing.T) {
	m := newManager(t, &fakeAPI{}, session.NewMemoryStore())

	s := m.Session()
	assert.Equal(t, StatusUnknown, s.Status)
	assert.True(t, s.IsLoading)
	assert.False(t, s.IsAuthenticated)
	assert.Nil(t, s.User)
	assert.Empty(t, s.AccessToken)
}

func TestBootstrap(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		stored   bool
		loadErr  error
		validate func(context.Context) (*models.User, error)
		wantAuth bool
		wantUser string
	}{
		{
			name:     "nothing stored",
			wantAuth: false,
		},
		{
			name:   "stored and accepted uses server user",
			stored: true,
			validate: func(context.Context) (*models.User, error) {
				u := alice()
				u.FirstName = "Alicia"
				return u, nil
			},
			wantAuth: true,
			wantUser: "Alicia",
		},
		{
			name:     "stored and accepted without body keeps cached user",
			stored:   true,
			validate: func(context.Context) (*models.User, error) { return nil, nil },
			wantAuth: true,
			wantUser: "Alice",
		},
		{
			name:   "stored but rejected",
			stored: true,
			validate: func(context.Context) (*models.User, error) {
				return nil, fmt.Errorf("validate: %w", api.ErrUnauthorized)
			},
		},
		{
			name:   "stored but server unreachable",
			stored: true,
			validate: func(context.Context) (*models.User, error) {
				return nil, fmt.Errorf("validate: %w", api.ErrUnavailable)
			},
		},
		{
			name:    "storage failure",
			loadErr: errors.New("disk on fire"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := session.NewMemoryStore()
			if tt.stored {
				require.NoError(t, mem.Save(ctx, models.Credentials{AccessToken: "t0", RefreshToken: "r0"}, alice()))
			}
			f := &fakeAPI{validate: tt.validate}
			m := newManager(t, f, &failingStore{Store: mem, loadErr: tt.loadErr})
			reasons := recordReasons(m)

			res := m.Bootstrap(ctx)

			s := m.Session()
			assert.False(t, s.IsLoading, "bootstrap must settle")
			assert.Equal(t, tt.wantAuth, s.IsAuthenticated)
			assert.Equal(t, tt.wantAuth, res.Success)
			assert.Equal(t, []Reason{ReasonBootstrap}, reasons())

			snap, err := mem.Load(ctx)
			require.NoError(t, err)
			if !tt.wantAuth {
				assert.Equal(t, StatusUnauthenticated, s.Status)
				assert.Empty(t, s.AccessToken)
				assert.Nil(t, snap, "failed bootstrap must purge the store")
				return
			}
			assert.Equal(t, StatusAuthenticated, s.Status)
			assert.Equal(t, "t0", s.AccessToken)
			assert.Equal(t, tt.wantUser, s.User.FirstName)
			require.NotNil(t, snap)
			assert.Equal(t, tt.wantUser, snap.User.FirstName, "cache refreshed")
		})
	}
}

func TestBootstrap_RunsOnce(t *testing.T) {
	ctx := context.Background()
	mem := session.NewMemoryStore()
	require.NoError(t, mem.Save(ctx, models.Credentials{AccessToken: "t0", RefreshToken: "r0"}, alice()))

	release := make(chan struct{})
	f := &fakeAPI{validate: func(context.Context) (*models.User, error) {
		<-release
		return alice(), nil
	}}
	m := newManager(t, f, mem)

	var wg sync.WaitGroup
	results := make([]Result, 3)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = m.Bootstrap(ctx)
		}(i)
	}
	require.Eventually(t, func() bool { return f.calls.Load() == 1 }, time.Second, time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, f.calls.Load())
	for _, r := range results {
		assert.True(t, r.Success)
	}
}

func TestBootstrap_TimesOut(t *testing.T) {
	ctx := context.Background()
	mem := session.NewMemoryStore()
	require.NoError(t, mem.Save(ctx, models.Credentials{AccessToken: "t0", RefreshToken: "r0"}, alice()))

	f := &fakeAPI{validate: func(ctx context.Context) (*models.User, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	m := NewManager(f, mem, Options{BootstrapTimeout: 20 * time.Millisecond})

	res := m.Bootstrap(ctx)
	assert.False(t, res.Success)
	assert.Equal(t, StatusUnauthenticated, m.Session().Status)
	assert.False(t, m.Session().IsLoading)
}

func TestBootstrap_LoginRefusedWhileValidating(t *testing.T) {
	ctx := context.Background()
	mem := session.NewMemoryStore()
	require.NoError(t, mem.Save(ctx, models.Credentials{AccessToken: "t0", RefreshToken: "r0"}, alice()))

	release := make(chan struct{})
	f := &fakeAPI{
		validate: func(context.Context) (*models.User, error) {
			<-release
			return alice(), nil
		},
		login: loginOK("t1"),
	}
	m := newManager(t, f, mem)

	done := make(chan Result)
	go func() { done <- m.Bootstrap(ctx) }()
	require.Eventually(t, func() bool { return f.calls.Load() == 1 }, time.Second, time.Millisecond)

	assert.Equal(t, "t0", m.AccessToken(), "stored token is used for validation")
	res := m.Login(ctx, "alice@example.com", "secret")
	assert.ErrorIs(t, res.Err, ErrBootstrapPending)

	close(release)
	assert.True(t, (<-done).Success)
}

func TestLogin_Success(t *testing.T) {
	ctx := context.Background()
	store, err := session.Open(ctx, filepath.Join(t.TempDir(), "session.db"), logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	var got models.LoginRequest
	f := &fakeAPI{login: func(_ context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
		got = req
		return &models.AuthResponse{Token: "t1", RefreshToken: "r1", User: alice()}, nil
	}}
	m := newManager(t, f, store)
	reasons := recordReasons(m)

	res := m.Login(ctx, "  alice@example.com ", "secret")

	require.True(t, res.Success, res.Error)
	assert.Equal(t, "alice@example.com", got.Identifier, "identifier is trimmed")
	assert.Equal(t, "alice", res.User.Username)

	s := m.Session()
	assert.Equal(t, StatusAuthenticated, s.Status)
	assert.True(t, s.IsAuthenticated)
	assert.False(t, s.IsLoading)
	assert.Equal(t, "t1", s.AccessToken)
	assert.Empty(t, s.Error)
	assert.Equal(t, []Reason{ReasonLogin}, reasons())

	snap, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, models.Credentials{AccessToken: "t1", RefreshToken: "r1"}, snap.Credentials)
	assert.Equal(t, "alice", snap.User.Username)
}

func TestLogin_PersistsAllKeys(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.db")
	store, err := session.Open(ctx, path, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	m := signIn(t, &fakeAPI{}, store)
	require.True(t, m.Session().IsAuthenticated)

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM kv WHERE key IN (?, ?, ?)`,
		session.KeyToken, session.KeyRefreshToken, session.KeyUser).Scan(&n))
	assert.Equal(t, 3, n)
}

func TestLogin_ValidationSkipsNetwork(t *testing.T) {
	f := &fakeAPI{login: loginOK("t1")}
	m := newManager(t, f, session.NewMemoryStore())
	reasons := recordReasons(m)

	res := m.Login(context.Background(), "al", "secret")

	assert.False(t, res.Success)
	assert.Contains(t, res.Fields, "identifier")
	assert.EqualValues(t, 0, f.calls.Load())
	assert.Empty(t, reasons())
	assert.Equal(t, StatusUnknown, m.Session().Status, "validation does not touch state")
}

func TestLogin_Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"invalid credentials"}`))
	}))
	defer srv.Close()

	client, err := api.New(srv.URL)
	require.NoError(t, err)
	m := NewManager(client, session.NewMemoryStore(), Options{})
	m.Bind(client)
	reasons := recordReasons(m)

	res := m.Login(context.Background(), "alice", "wrong")

	assert.False(t, res.Success)
	assert.Equal(t, "invalid credentials", res.Error)
	assert.ErrorIs(t, res.Err, api.ErrUnauthorized)
	s := m.Session()
	assert.Equal(t, StatusUnauthenticated, s.Status)
	assert.Equal(t, "invalid credentials", s.Error)
	assert.Equal(t, []Reason{ReasonError}, reasons(), "a rejected login is not a session expiry")

	m.ClearError()
	assert.Empty(t, m.Session().Error)
}

func TestLogin_RefusedWhenAuthenticated(t *testing.T) {
	f := &fakeAPI{}
	m := signIn(t, f, session.NewMemoryStore())
	before := f.calls.Load()

	res := m.Login(context.Background(), "bob@example.com", "secret")

	assert.ErrorIs(t, res.Err, ErrAlreadyAuthenticated)
	assert.Equal(t, before, f.calls.Load())
	assert.Equal(t, "alice", m.Session().User.Username)
}

func TestLogin_PersistFailureStaysSignedOut(t *testing.T) {
	mem := session.NewMemoryStore()
	m := newManager(t, &fakeAPI{login: loginOK("t1")}, &failingStore{Store: mem, saveErr: errors.New("read-only")})

	res := m.Login(context.Background(), "alice", "secret")

	assert.False(t, res.Success)
	assert.Equal(t, StatusUnauthenticated, m.Session().Status)
	assert.Empty(t, m.AccessToken())
}

func TestLogin_IncompleteResponse(t *testing.T) {
	f := &fakeAPI{login: func(context.Context, models.LoginRequest) (*models.AuthResponse, error) {
		return &models.AuthResponse{Token: "t1"}, nil
	}}
	m := newManager(t, f, session.NewMemoryStore())

	res := m.Login(context.Background(), "alice", "secret")
	assert.ErrorIs(t, res.Err, ErrInvalidResponse)
	assert.False(t, m.Session().IsAuthenticated)
}

func TestLogin_ResponseWithoutRefreshToken(t *testing.T) {
	mem := session.NewMemoryStore()
	f := &fakeAPI{login: func(context.Context, models.LoginRequest) (*models.AuthResponse, error) {
		return &models.AuthResponse{Token: "t1", User: alice()}, nil
	}}
	m := newManager(t, f, mem)

	res := m.Login(context.Background(), "alice", "secret")
	assert.ErrorIs(t, res.Err, ErrInvalidResponse)
	assert.False(t, m.Session().IsAuthenticated)

	snap, err := mem.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestLogin_TokenClaimsMustMatchUser(t *testing.T) {
	tests := []struct {
		name   string
		claims jwt.MapClaims
		wantOK bool
	}{
		{"matching numeric id", jwt.MapClaims{"user_id": 1}, true},
		{"matching sub", jwt.MapClaims{"sub": "1"}, true},
		{"no user claim", jwt.MapClaims{"role": "x"}, true},
		{"other user", jwt.MapClaims{"user_id": 2}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newManager(t, &fakeAPI{login: loginOK(signed(t, tt.claims))}, session.NewMemoryStore())

			res := m.Login(context.Background(), "alice", "secret")

			assert.Equal(t, tt.wantOK, res.Success)
			if !tt.wantOK {
				assert.ErrorIs(t, res.Err, ErrTokenMismatch)
				assert.Empty(t, m.AccessToken())
			}
		})
	}
}

func TestLogin_StaleResponseDiscarded(t *testing.T) {
	release := make(chan struct{})
	f := &fakeAPI{login: func(context.Context, models.LoginRequest) (*models.AuthResponse, error) {
		<-release
		return &models.AuthResponse{Token: "t1", RefreshToken: "r1", User: alice()}, nil
	}}
	mem := session.NewMemoryStore()
	m := newManager(t, f, mem)

	done := make(chan Result)
	go func() { done <- m.Login(context.Background(), "alice", "secret") }()
	require.Eventually(t, func() bool { return f.calls.Load() == 1 }, time.Second, time.Millisecond)
	assert.True(t, m.Session().IsLoading)

	m.Logout(context.Background())
	close(release)

	res := <-done
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, ErrSuperseded)
	assert.False(t, m.Session().IsAuthenticated)
	snap, err := mem.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestRegister(t *testing.T) {
	var got models.RegisterRequest
	f := &fakeAPI{register: func(_ context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
		got = req
		u := alice()
		u.Type = req.Type
		return &models.AuthResponse{Token: "t1", RefreshToken: "r1", User: u}, nil
	}}
	m := newManager(t, f, session.NewMemoryStore())
	reasons := recordReasons(m)

	form := validate.RegisterForm{
		Username:        "acme_travel",
		Email:           "ops@acme.test",
		Password:        "longenough",
		ConfirmPassword: "longenough",
		FirstName:       "Ann",
		LastName:        "Smith",
		Type:            models.AccountCompany,
		CompanyName:     "Acme",
	}
	res := m.Register(context.Background(), form)

	require.True(t, res.Success, res.Error)
	assert.Equal(t, "Acme", got.CompanyName)
	assert.Equal(t, []Reason{ReasonRegister}, reasons())
	assert.True(t, m.HasCapability(models.CapCompany))
	assert.False(t, m.HasCapability(models.CapAdmin))
}

func TestRegister_Invalid(t *testing.T) {
	f := &fakeAPI{}
	m := newManager(t, f, session.NewMemoryStore())

	res := m.Register(context.Background(), validate.RegisterForm{
		Username: "a b", Email: "x", Password: "short", ConfirmPassword: "other",
		FirstName: "A", LastName: "B", Type: models.AccountCompany,
	})

	assert.False(t, res.Success)
	for _, field := range []string{"username", "email", "password", "confirm_password", "first_name", "last_name", "company_name"} {
		assert.Contains(t, res.Fields, field)
	}
	assert.EqualValues(t, 0, f.calls.Load())
}

func TestLogout(t *testing.T) {
	tests := []struct {
		name      string
		remoteErr error
	}{
		{"remote ok", nil},
		{"remote fails", fmt.Errorf("logout: %w", api.ErrUnavailable)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			mem := session.NewMemoryStore()
			f := &fakeAPI{logout: func(context.Context) error { return tt.remoteErr }}
			m := signIn(t, f, mem)
			reasons := recordReasons(m)

			res := m.Logout(ctx)

			assert.True(t, res.Success)
			s := m.Session()
			assert.Equal(t, StatusUnauthenticated, s.Status)
			assert.Nil(t, s.User)
			assert.Empty(t, s.AccessToken)
			assert.Equal(t, []Reason{ReasonLogout}, reasons())
			snap, err := mem.Load(ctx)
			require.NoError(t, err)
			assert.Nil(t, snap)
		})
	}
}

func TestLogout_RemoteIsBounded(t *testing.T) {
	f := &fakeAPI{logout: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}}
	f.login = loginOK("t1")
	m := NewManager(f, session.NewMemoryStore(), Options{LogoutTimeout: 10 * time.Millisecond})
	require.True(t, m.Login(context.Background(), "alice", "secret").Success)

	m.Logout(context.Background())
	assert.False(t, m.Session().IsAuthenticated)
}

func TestLogout_IgnoresUnauthorizedFromLogoutCall(t *testing.T) {
	var m *Manager
	f := &fakeAPI{}
	f.logout = func(ctx context.Context) error {
		m.HandleUnauthorized(ctx)
		return fmt.Errorf("logout: %w", api.ErrUnauthorized)
	}
	m = signIn(t, f, session.NewMemoryStore())
	reasons := recordReasons(m)

	m.Logout(context.Background())
	assert.Equal(t, []Reason{ReasonLogout}, reasons())
}

func TestHandleUnauthorized(t *testing.T) {
	ctx := context.Background()
	mem := session.NewMemoryStore()
	m := signIn(t, &fakeAPI{}, mem)
	reasons := recordReasons(m)

	m.HandleUnauthorized(ctx)
	m.HandleUnauthorized(ctx)

	s := m.Session()
	assert.Equal(t, StatusUnauthenticated, s.Status)
	assert.Equal(t, msgExpired, s.Error)
	assert.Equal(t, []Reason{ReasonExpired}, reasons(), "only the first 401 counts")
	snap, err := mem.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestHandleUnauthorized_NoopWhenSignedOut(t *testing.T) {
	m := newManager(t, &fakeAPI{}, session.NewMemoryStore())
	reasons := recordReasons(m)

	m.HandleUnauthorized(context.Background())

	assert.Empty(t, reasons())
	assert.Equal(t, StatusUnknown, m.Session().Status)
}

func TestBind_RoutesTokenAnd401(t *testing.T) {
	var seen atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.Store(r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"token expired"}`))
	}))
	defer srv.Close()

	client, err := api.New(srv.URL)
	require.NoError(t, err)

	f := &fakeAPI{login: loginOK("t1")}
	m := signIn(t, f, session.NewMemoryStore())
	m.Bind(client)
	reasons := recordReasons(m)

	_, err = client.Feed(context.Background(), models.Page{})
	require.ErrorIs(t, err, api.ErrUnauthorized)

	assert.Equal(t, "Bearer t1", seen.Load())
	assert.Equal(t, []Reason{ReasonExpired}, reasons())
	assert.False(t, m.Session().IsAuthenticated)
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	mem := session.NewMemoryStore()
	f := &fakeAPI{updateProfile: func(_ context.Context, u models.ProfileUpdate) (*models.User, error) {
		srv := alice()
		srv.Bio = *u.Bio
		srv.FollowersCount = 7
		return srv, nil
	}}
	m := signIn(t, f, mem)
	reasons := recordReasons(m)

	bio := "travels a lot"
	res := m.UpdateProfile(ctx, models.ProfileUpdate{Bio: &bio})

	require.True(t, res.Success, res.Error)
	assert.Equal(t, bio, m.Session().User.Bio)
	assert.EqualValues(t, 7, m.Session().User.FollowersCount)
	assert.Equal(t, []Reason{ReasonProfile}, reasons())
	snap, err := mem.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, bio, snap.User.Bio)
	assert.Equal(t, "t1", snap.Credentials.AccessToken, "credentials untouched")
}

func TestUpdateProfile_Failure(t *testing.T) {
	f := &fakeAPI{updateProfile: func(context.Context, models.ProfileUpdate) (*models.User, error) {
		return nil, errors.New("boom")
	}}
	m := signIn(t, f, session.NewMemoryStore())

	bio := "x"
	res := m.UpdateProfile(context.Background(), models.ProfileUpdate{Bio: &bio})

	assert.False(t, res.Success)
	s := m.Session()
	assert.Equal(t, msgProfile, s.Error)
	assert.True(t, s.IsAuthenticated, "only the error changes")
	assert.Empty(t, s.User.Bio)
}

func TestUpdateProfile_RequiresSession(t *testing.T) {
	f := &fakeAPI{}
	m := newManager(t, f, session.NewMemoryStore())
	bio := "x"

	res := m.UpdateProfile(context.Background(), models.ProfileUpdate{Bio: &bio})
	assert.ErrorIs(t, res.Err, ErrNotAuthenticated)
	assert.EqualValues(t, 0, f.calls.Load())
}

func TestUpdateProfile_DiscardedAfterLogout(t *testing.T) {
	ctx := context.Background()
	release := make(chan struct{})
	f := &fakeAPI{updateProfile: func(context.Context, models.ProfileUpdate) (*models.User, error) {
		<-release
		return alice(), nil
	}}
	mem := session.NewMemoryStore()
	m := signIn(t, f, mem)
	before := f.calls.Load()

	bio := "late"
	done := make(chan Result)
	go func() { done <- m.UpdateProfile(ctx, models.ProfileUpdate{Bio: &bio}) }()
	require.Eventually(t, func() bool { return f.calls.Load() == before+1 }, time.Second, time.Millisecond)

	m.Logout(ctx)
	close(release)

	res := <-done
	assert.ErrorIs(t, res.Err, ErrSuperseded)
	assert.Nil(t, m.Session().User)
	snap, err := mem.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, snap, "stale response must not resurrect the session")
}

func TestChangePassword(t *testing.T) {
	var got models.PasswordChange
	f := &fakeAPI{changePassword: func(_ context.Context, c models.PasswordChange) error {
		got = c
		return nil
	}}
	m := signIn(t, f, session.NewMemoryStore())

	res := m.ChangePassword(context.Background(), models.PasswordChange{Current: "old", New: "newpassword", Confirm: "newpassword"})
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "newpassword", got.New)

	res = m.ChangePassword(context.Background(), models.PasswordChange{Current: "old", New: "newpassword", Confirm: "different"})
	assert.Contains(t, res.Fields, "confirm_password")
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	mem := session.NewMemoryStore()
	var sent string
	f := &fakeAPI{refresh: func(_ context.Context, token string) (*models.AuthResponse, error) {
		sent = token
		return &models.AuthResponse{Token: "t2"}, nil
	}}
	m := signIn(t, f, mem)
	reasons := recordReasons(m)

	res := m.Refresh(ctx)

	require.True(t, res.Success, res.Error)
	assert.Equal(t, "r1", sent)
	assert.Equal(t, "t2", m.AccessToken())
	assert.Equal(t, []Reason{ReasonRefresh}, reasons())
	snap, err := mem.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Credentials{AccessToken: "t2", RefreshToken: "r1"}, snap.Credentials, "refresh token kept when not rotated")
}

func TestRefresh_Rejected(t *testing.T) {
	f := &fakeAPI{refresh: func(context.Context, string) (*models.AuthResponse, error) {
		return nil, fmt.Errorf("refresh: %w", api.ErrUnauthorized)
	}}
	m := signIn(t, f, session.NewMemoryStore())
	reasons := recordReasons(m)

	res := m.Refresh(context.Background())

	assert.False(t, res.Success)
	assert.False(t, m.Session().IsAuthenticated)
	assert.Equal(t, []Reason{ReasonExpired}, reasons())
}

func TestRefresh_NetworkFailureKeepsSession(t *testing.T) {
	f := &fakeAPI{refresh: func(context.Context, string) (*models.AuthResponse, error) {
		return nil, fmt.Errorf("refresh: %w", api.ErrUnavailable)
	}}
	m := signIn(t, f, session.NewMemoryStore())
	reasons := recordReasons(m)

	res := m.Refresh(context.Background())

	assert.False(t, res.Success)
	assert.True(t, m.Session().IsAuthenticated)
	assert.Equal(t, "t1", m.AccessToken())
	assert.Empty(t, reasons())
}

func TestSubscribe_Unsubscribe(t *testing.T) {
	m := newManager(t, &fakeAPI{login: loginOK("t1")}, session.NewMemoryStore())

	var calls int
	var last Session
	unsubscribe := m.Subscribe(func(s Session, _ Reason) {
		calls++
		last = s
		// listeners run outside the lock
		_ = m.Session()
	})

	require.True(t, m.Login(context.Background(), "alice", "secret").Success)
	assert.Equal(t, 1, calls)
	assert.True(t, last.IsAuthenticated)

	unsubscribe()
	unsubscribe()
	m.Logout(context.Background())
	assert.Equal(t, 1, calls)
}

func TestIsOwn(t *testing.T) {
	m := signIn(t, &fakeAPI{}, session.NewMemoryStore())
	assert.True(t, m.IsOwn("1"))
	assert.False(t, m.IsOwn("2"))
	assert.False(t, m.IsOwn(""))
	assert.True(t, m.HasCapability(models.CapBasic))
}
