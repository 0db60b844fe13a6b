package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"

	"github.com/guia-app/guia/internal/client/models"
	"github.com/guia-app/guia/internal/client/router"
)

// errBlocked is returned by commands the route guard turned away.
var errBlocked = errors.New("not available")

func (a *App) output() io.Writer { return a.out }

func (a *App) say(format string, args ...any) {
	fmt.Fprintf(a.out, format+"\n", args...)
}

// open moves to location and reports whether its route renders.
func (a *App) open(location string) (router.Match, error) {
	want := router.Resolve(location)
	m, d := a.nav.Navigate(location)
	return m, a.explain(want.Route, m, d)
}

// allow applies the guard of location without moving there.
func (a *App) allow(location string) error {
	want := router.Resolve(location)
	return a.explain(want.Route, want, router.Decide(a.auth.Session(), want.Route))
}

func (a *App) explain(want router.Route, got router.Match, d router.Decision) error {
	var target string
	switch d.Action {
	case router.Wait:
		a.say("Your session is still being restored, try again in a moment.")
		return fmt.Errorf("%w: session loading", errBlocked)
	case router.Forbidden:
		a.say("Your account type cannot open %s.", got.Path)
		return fmt.Errorf("%w: forbidden", errBlocked)
	case router.Redirect:
		target = d.Target
	case router.Render:
		if got.Route.Name == want.Name {
			return nil
		}
		target = got.Path
	}

	if target == router.PathLogin {
		a.say("Please sign in first.")
	} else {
		a.say("You are already signed in.")
	}
	return fmt.Errorf("%w: redirected to %s", errBlocked, target)
}

// Go opens a location such as "/itinerary/7" or "/search?q=rio" and
// renders it.
func (a *App) Go(ctx context.Context, location string) error {
	m, err := a.open(location)
	if err != nil {
		return err
	}
	return a.render(ctx, m)
}

func (a *App) render(ctx context.Context, m router.Match) error {
	id := models.ID(m.Params["id"])
	switch m.Route.Name {
	case router.RouteLogin:
		return a.login(ctx)
	case router.RouteRegister:
		return a.register(ctx)
	case router.RouteHome:
		return a.showFeed(ctx)
	case router.RoutePosts:
		return a.showTrending(ctx)
	case router.RoutePost:
		return a.showPost(ctx, id)
	case router.RouteItineraries:
		return a.showItineraries(ctx, filterFrom(m.Query))
	case router.RouteItinerary:
		return a.showItinerary(ctx, id)
	case router.RouteCreateItinerary:
		return a.createItinerary(ctx)
	case router.RouteSearch:
		return a.search(ctx, m.Query.Get("q"))
	case router.RouteProfile:
		return a.showProfile(ctx)
	case router.RouteUser:
		return a.showUser(ctx, id)
	case router.RouteFollowers:
		return a.showFollows(ctx, id, false)
	case router.RouteFollowing:
		return a.showFollows(ctx, id, true)
	case router.RouteSettings:
		return a.showSettings(ctx)
	}
	a.say("Page not found: %s", m.Path)
	return nil
}

func filterFrom(q url.Values) models.ItineraryFilter {
	return models.ItineraryFilter{
		Category: models.Category(q.Get("category")),
		City:     q.Get("city"),
		Country:  q.Get("country"),
		OrderBy:  q.Get("order_by"),
		Featured: q.Get("featured") == "true",
	}
}

func (a *App) showSettings(context.Context) error {
	a.say("API:     %s", a.config.APIBaseURL)
	session := a.config.SessionDB
	if session == "" {
		session = "(memory)"
	}
	a.say("Session: %s", session)
	if a.config.S3.Enabled() {
		a.say("Uploads: s3://%s", a.config.S3.Bucket)
	} else {
		a.say("Uploads: api")
	}
	a.say("Use 'profile' to edit your profile, 'passwd' to change your password or 'logout'.")
	return nil
}

// Toasts lists the notifications still in the queue.
func (a *App) Toasts(context.Context) error {
	list := a.toasts.List()
	if len(list) == 0 {
		a.say("No notifications.")
		return nil
	}
	for _, t := range list {
		a.say("%s  %s", formatToast(t), relativeTime(t.CreatedAt))
	}
	return nil
}
