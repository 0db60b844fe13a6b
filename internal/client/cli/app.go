package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/guia-app/guia/internal/client/api"
	"github.com/guia-app/guia/internal/client/auth"
	"github.com/guia-app/guia/internal/client/config"
	"github.com/guia-app/guia/internal/client/media"
	"github.com/guia-app/guia/internal/client/router"
	"github.com/guia-app/guia/internal/client/services"
	"github.com/guia-app/guia/internal/client/session"
	"github.com/guia-app/guia/internal/client/toast"
	"github.com/guia-app/guia/internal/logging"
)

// App is the interactive guIA client.
type App struct {
	config *config.Config
	logger logging.Logger

	closeStore  func() error
	auth        *auth.Manager
	toasts      *toast.Queue
	posts       services.PostService
	itineraries services.ItineraryService
	users       services.UserService
	media       services.MediaService
	nav         *router.Navigator
	watcher     *auth.RefreshWatcher

	in  *bufio.Reader
	out io.Writer

	mu          sync.Mutex
	shown       map[string]bool
	unsubscribe func()
}

// NewApp opens the session database, builds the API client and wires the
// services around a single auth manager.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stderr, c.LogLevel)

	var store session.Store = session.NewMemoryStore()
	closeStore := func() error { return nil }
	if c.SessionDB != "" {
		db, err := session.Open(ctx, c.SessionDB, logger)
		if err != nil {
			logger.Error(ctx, "error initializing session database", "path", c.SessionDB, "error", err)
			return nil, err
		}
		store, closeStore = db, db.Close
	}

	client, err := api.New(c.APIBaseURL, api.WithTimeout(c.RequestTimeout), api.WithLogger(logger))
	if err != nil {
		_ = closeStore()
		return nil, err
	}

	var uploader media.Uploader
	if c.S3.Enabled() {
		s3u, err := media.NewS3Uploader(ctx, c.S3, logger)
		if err != nil {
			_ = closeStore()
			return nil, err
		}
		uploader = s3u
	}

	a := newApp(c, logger, store, client, uploader, bufio.NewReader(os.Stdin), os.Stdout)
	a.closeStore = closeStore
	return a, nil
}

// backend is everything the app needs from the API.
type backend interface {
	auth.API
	auth.Binder
	api.Posts
	api.Itineraries
	api.Users
	api.Media
}

func newApp(c *config.Config, logger logging.Logger, store session.Store, client backend,
	uploader media.Uploader, in *bufio.Reader, out io.Writer) *App {

	manager := auth.NewManager(client, store, auth.Options{
		BootstrapTimeout: c.BootstrapTimeout,
		LogoutTimeout:    c.LogoutTimeout,
		Logger:           logger.With("component", "auth"),
	})
	manager.Bind(client)

	toasts := toast.New(toast.Options{MaxVisible: c.ToastMaxVisible})
	mediaSvc := services.NewMediaService(client, uploader, toasts, logger)

	a := &App{
		config:      c,
		logger:      logger,
		closeStore:  func() error { return nil },
		auth:        manager,
		toasts:      toasts,
		media:       mediaSvc,
		posts:       services.NewPostService(client, mediaSvc, toasts, logger),
		itineraries: services.NewItineraryService(client, toasts, logger),
		users:       services.NewUserService(client, toasts, logger, manager.IsOwn),
		nav:         router.NewNavigator(manager, logger),
		watcher:     auth.NewRefreshWatcher(manager, c.RefreshCheckInterval, c.RefreshLeeway),
		in:          in,
		out:         out,
		shown:       make(map[string]bool),
	}
	a.unsubscribe = manager.Subscribe(a.onSession)
	toasts.OnChange(a.forget)
	a.nav.OnMove(func(m router.Match) {
		logger.Debug(context.Background(), "location changed", "path", m.Path, "route", m.Route.Name)
	})
	return a
}

// Run restores the stored session, starts the token refresh watcher and
// serves the REPL until the user exits or ctx is done.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fmt.Fprintln(a.out, "Welcome to guIA (type 'help' for commands)")

	if res := a.auth.Bootstrap(ctx); res.Success {
		fmt.Fprintf(a.out, "Signed in as %s\n", res.User.DisplayName())
	} else {
		fmt.Fprintln(a.out, "You are not signed in. Use 'login' or 'register'.")
	}

	if a.config.RefreshCheckInterval > 0 {
		go a.watcher.Run(ctx)
	}

	runREPL(ctx, a, a.status, a.in)
}

// Close releases the services and the session database.
func (a *App) Close() {
	a.unsubscribe()
	a.nav.Close()
	a.posts.Close()
	a.itineraries.Close()
	a.users.Close()
	a.toasts.Clear()
	if err := a.closeStore(); err != nil {
		a.logger.Warn(context.Background(), "failed to close session database", "error", err)
	}
}

func (a *App) isLoggedIn() bool {
	return a.auth.Session().IsAuthenticated
}

func (a *App) status() string {
	s := a.auth.Session()
	path := a.nav.Current().Path
	if s.IsAuthenticated && s.User != nil {
		return fmt.Sprintf("(%s %s)", s.User.Username, path)
	}
	return fmt.Sprintf("(%s)", path)
}

// onSession drops per-user engagement state whenever the signed-in
// identity changes.
func (a *App) onSession(s auth.Session, reason auth.Reason) {
	switch reason {
	case auth.ReasonLogin, auth.ReasonRegister, auth.ReasonLogout, auth.ReasonExpired:
		a.posts.Reset()
		a.itineraries.Reset()
		a.users.Reset()
	}
	if reason == auth.ReasonExpired {
		a.toasts.Warning(s.Error, "Session expired")
	}
}

// flushToasts prints toasts that have not been printed yet.
func (a *App) flushToasts() {
	list := a.toasts.List()

	a.mu.Lock()
	var fresh []toast.Toast
	for _, t := range list {
		if !a.shown[t.ID] {
			a.shown[t.ID] = true
			fresh = append(fresh, t)
		}
	}
	a.mu.Unlock()

	for _, t := range fresh {
		fmt.Fprintln(a.out, formatToast(t))
	}
}

// forget drops printed ids of toasts that left the queue.
func (a *App) forget(list []toast.Toast) {
	live := make(map[string]bool, len(list))
	for _, t := range list {
		live[t.ID] = true
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for id := range a.shown {
		if !live[id] {
			delete(a.shown, id)
		}
	}
}
