package optimistic

import (
	"context"
	"errors"

	"github.com/guia-app/guia/internal/client/models"
)

// Engagement is an on/off relation with a public counter, such as a like
// or a follow.
type Engagement struct {
	Active bool
	Count  int64
}

// Toggled flips Active and moves Count with it. Count never goes below
// zero.
func (e Engagement) Toggled() Engagement {
	if e.Active {
		e.Active = false
		if e.Count > 0 {
			e.Count--
		}
		return e
	}
	e.Active = true
	e.Count++
	return e
}

// Toggle flips the engagement for key. unset is called when it was active
// before, set otherwise.
func Toggle(ctx context.Context, c *Controller[Engagement], key models.ID, set, unset func(context.Context) error) (Engagement, error) {
	return c.Mutate(ctx, key, Engagement.Toggled, func(ctx context.Context, prev Engagement) error {
		if prev.Active {
			return unset(ctx)
		}
		return set(ctx)
	})
}

// ErrNotRated is returned by Unrate when there is no rating to remove.
var ErrNotRated = errors.New("you have not rated this yet")

// Rating is the signed-in user's rating of an item plus the item's
// aggregate. Mine is 0 when the user has not rated.
type Rating struct {
	Mine    int
	Count   int64
	Average float64
}

func (r Rating) with(stars int) Rating {
	total := r.Average * float64(r.Count)
	if r.Mine == 0 {
		r.Count++
	} else {
		total -= float64(r.Mine)
	}
	r.Mine = stars
	r.Average = (total + float64(stars)) / float64(r.Count)
	return r
}

func (r Rating) without() Rating {
	if r.Mine == 0 {
		return r
	}
	total := r.Average*float64(r.Count) - float64(r.Mine)
	r.Mine = 0
	r.Count--
	if r.Count <= 0 {
		r.Count, r.Average = 0, 0
		return r
	}
	r.Average = total / float64(r.Count)
	return r
}

// Rate records stars for key. create is called for a first rating, update
// when replacing one.
func Rate(ctx context.Context, c *Controller[Rating], key models.ID, stars int, create, update func(context.Context, int) error) (Rating, error) {
	apply := func(r Rating) Rating { return r.with(stars) }
	return c.Mutate(ctx, key, apply, func(ctx context.Context, prev Rating) error {
		if prev.Mine == 0 {
			return create(ctx, stars)
		}
		return update(ctx, stars)
	})
}

// Unrate removes the user's rating for key.
func Unrate(ctx context.Context, c *Controller[Rating], key models.ID, remove func(context.Context) error) (Rating, error) {
	return c.Mutate(ctx, key, Rating.without, func(ctx context.Context, prev Rating) error {
		if prev.Mine == 0 {
			return ErrNotRated
		}
		return remove(ctx)
	})
}
