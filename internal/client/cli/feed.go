package cli

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/guia-app/guia/internal/client/models"
	"github.com/guia-app/guia/internal/client/optimistic"
	"github.com/guia-app/guia/internal/client/router"
	"github.com/guia-app/guia/internal/client/services"
)

// Feed opens the home feed.
func (a *App) Feed(ctx context.Context) error {
	return a.Go(ctx, router.PathHome)
}

// Search opens the search page for q.
func (a *App) Search(ctx context.Context, q string) error {
	return a.Go(ctx, router.Build(router.RouteSearch)+"?q="+url.QueryEscape(q))
}

func (a *App) showFeed(ctx context.Context) error {
	posts, err := a.posts.Feed(ctx, models.Page{})
	if err != nil {
		return err
	}
	a.printPosts(posts, "Your feed is empty. Follow someone or write a post.")
	return nil
}

func (a *App) showTrending(ctx context.Context) error {
	posts, err := a.posts.Trending(ctx, models.Page{})
	if err != nil {
		return err
	}
	a.printPosts(posts, "Nothing is trending right now.")
	return nil
}

func (a *App) showPost(ctx context.Context, id models.ID) error {
	p, err := a.posts.Get(ctx, id)
	if err != nil {
		a.say("Post %s not found.", id)
		return err
	}
	a.say("%s", formatPost(*p))
	return nil
}

func (a *App) printPosts(posts []models.Post, empty string) {
	if len(posts) == 0 {
		a.say("%s", empty)
		return
	}
	for _, p := range posts {
		a.say("%s", formatPost(p))
	}
}

// Like toggles the like on a post. The counter moves at once and is put
// back if the server refuses.
func (a *App) Like(ctx context.Context, postID string) error {
	id := models.ID(postID)
	if err := a.allow(router.Build(router.RoutePost, postID)); err != nil {
		return err
	}
	e, err := a.posts.ToggleLike(ctx, id)
	switch {
	case errors.Is(err, optimistic.ErrInFlight):
		a.say("Still saving your last change to this post.")
		return err
	case err != nil:
		return err
	}
	verb := "Unliked"
	if e.Active {
		verb = "Liked"
	}
	a.say("%s post %s (%s likes).", verb, id, formatCount(e.Count))
	return nil
}

// Post composes a new post with optional media attachments.
func (a *App) Post(ctx context.Context) error {
	if err := a.allow(router.PathHome); err != nil {
		return err
	}

	content, err := GetMultiline(a.in, "What's on your mind?", a.out)
	if err != nil {
		return err
	}
	location, err := getSimpleText(a.in, "Location (optional)", a.out)
	if err != nil {
		return err
	}
	paths, err := getSimpleText(a.in, "Media files, separated by commas (optional)", a.out)
	if err != nil {
		return err
	}

	in := services.PostInput{Content: content, Location: location}
	if list := splitList(paths); len(list) > 0 {
		if in.Files, err = a.media.Prepare(list); err != nil {
			return err
		}
	}

	p, err := a.posts.Create(ctx, in)
	if err != nil {
		return err
	}
	a.say("%s", formatPost(*p))
	return nil
}

// Delete removes one of the user's posts after confirmation.
func (a *App) Delete(ctx context.Context, postID string) error {
	if err := a.allow(router.Build(router.RoutePost, postID)); err != nil {
		return err
	}
	ok, err := getConfirm(a.in, "Delete post "+postID+"?", a.out)
	if err != nil || !ok {
		return err
	}
	return a.posts.Delete(ctx, models.ID(postID))
}

func (a *App) search(ctx context.Context, q string) error {
	q = strings.TrimSpace(q)
	if q == "" {
		var err error
		if q, err = getSimpleText(a.in, "Search for", a.out); err != nil {
			return err
		}
		if q == "" {
			return nil
		}
	}

	page := models.Page{Limit: 10}
	var errs []error

	users, err := a.users.Search(ctx, q, page)
	errs = append(errs, err)
	if len(users) > 0 {
		a.say("People:")
		for _, u := range users {
			a.say("%s", formatUser(u))
		}
	}

	its, err := a.itineraries.Search(ctx, q, page)
	errs = append(errs, err)
	if len(its) > 0 {
		a.say("Itineraries:")
		for _, it := range its {
			a.say("%s", formatItinerary(it))
		}
	}

	posts, err := a.posts.Search(ctx, q, page)
	errs = append(errs, err)
	if len(posts) > 0 {
		a.say("Posts:")
		for _, p := range posts {
			a.say("%s", formatPost(p))
		}
	}

	if err := errors.Join(errs...); err != nil {
		a.say("Some results could not be loaded.")
		return err
	}
	if len(users)+len(its)+len(posts) == 0 {
		a.say("No results for %q.", q)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
