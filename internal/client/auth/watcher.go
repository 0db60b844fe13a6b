package auth

import (
	"context"
	"time"
)

// RefreshWatcher refreshes the access token shortly before it expires.
type RefreshWatcher struct {
	m        *Manager
	interval time.Duration
	leeway   time.Duration
	now      func() time.Time
}

// NewRefreshWatcher checks the token every interval and refreshes it once
// its exp claim is less than leeway away.
func NewRefreshWatcher(m *Manager, interval, leeway time.Duration) *RefreshWatcher {
	return &RefreshWatcher{m: m, interval: interval, leeway: leeway, now: time.Now}
}

// Run blocks until ctx is done.
func (w *RefreshWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.Check(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Check refreshes the session if its token is due. It reports whether a
// refresh was attempted.
func (w *RefreshWatcher) Check(ctx context.Context) bool {
	if !w.due() {
		return false
	}
	if res := w.m.Refresh(ctx); !res.Success {
		w.m.logger.Debug(ctx, "scheduled refresh did not complete", "error", res.Err)
	}
	return true
}

func (w *RefreshWatcher) due() bool {
	s := w.m.Session()
	if !s.IsAuthenticated {
		return false
	}
	c, isJWT := ParseClaims(s.AccessToken)
	if !isJWT || !c.HasExpiry() {
		return false
	}
	return !w.now().Add(w.leeway).Before(c.ExpiresAt)
}
