package cli

import (
	"context"
	"errors"

	"github.com/guia-app/guia/internal/client/models"
	"github.com/guia-app/guia/internal/client/optimistic"
	"github.com/guia-app/guia/internal/client/router"
)

// Follow follows or unfollows a user.
func (a *App) Follow(ctx context.Context, userID string) error {
	if err := a.allow(router.Build(router.RouteUser, userID)); err != nil {
		return err
	}
	e, err := a.users.ToggleFollow(ctx, models.ID(userID))
	switch {
	case errors.Is(err, optimistic.ErrInFlight):
		a.say("Still saving your last change for this user.")
		return err
	case err != nil:
		return err
	}
	verb := "No longer following"
	if e.Active {
		verb = "Following"
	}
	a.say("%s %s (%s followers).", verb, userID, formatCount(e.Count))
	return nil
}

func (a *App) showUser(ctx context.Context, id models.ID) error {
	u, err := a.users.Get(ctx, id)
	if err != nil {
		a.say("User %s not found.", id)
		return err
	}
	a.say("%s", formatUser(*u))

	posts, err := a.posts.ByAuthor(ctx, id, models.Page{Limit: 5})
	if err != nil {
		a.logger.Debug(ctx, "posts of user unavailable", "id", id, "error", err)
	} else if len(posts) > 0 {
		a.say("Recent posts:")
		for _, p := range posts {
			a.say("%s", formatPost(p))
		}
	}

	its, err := a.itineraries.ByAuthor(ctx, id, models.Page{Limit: 5})
	if err != nil {
		a.logger.Debug(ctx, "itineraries of user unavailable", "id", id, "error", err)
	} else if len(its) > 0 {
		a.say("Itineraries:")
		for _, it := range its {
			a.say("%s", formatItinerary(it))
		}
	}
	return nil
}

func (a *App) showFollows(ctx context.Context, id models.ID, following bool) error {
	list := a.users.Followers
	empty := "No followers yet."
	if following {
		list = a.users.Following
		empty = "Not following anyone yet."
	}

	users, err := list(ctx, id, models.Page{})
	if err != nil {
		return err
	}
	if len(users) == 0 {
		a.say("%s", empty)
		return nil
	}
	for _, u := range users {
		a.say("%s", formatUser(u))
	}
	return nil
}
