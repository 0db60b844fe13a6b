package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/guia-app/guia/internal/client/models"
	"github.com/guia-app/guia/internal/client/optimistic"
	"github.com/guia-app/guia/internal/client/router"
)

// Itineraries lists published itineraries.
func (a *App) Itineraries(ctx context.Context) error {
	return a.Go(ctx, router.Build(router.RouteItineraries))
}

// Itinerary shows one itinerary with similar ones.
func (a *App) Itinerary(ctx context.Context, id string) error {
	return a.Go(ctx, router.Build(router.RouteItinerary, id))
}

// Create opens the itinerary editor.
func (a *App) Create(ctx context.Context) error {
	return a.Go(ctx, router.Build(router.RouteCreateItinerary))
}

func (a *App) showItineraries(ctx context.Context, filter models.ItineraryFilter) error {
	its, err := a.itineraries.List(ctx, filter)
	if err != nil {
		return err
	}
	if len(its) == 0 {
		a.say("No itineraries found.")
		return nil
	}
	for _, it := range its {
		a.say("%s", formatItinerary(it))
	}
	return nil
}

func (a *App) showItinerary(ctx context.Context, id models.ID) error {
	it, err := a.itineraries.Get(ctx, id)
	if err != nil {
		a.say("Itinerary %s not found.", id)
		return err
	}
	a.say("%s", formatItinerary(*it))
	if it.Author != nil {
		a.say("  by %s (@%s)", it.Author.DisplayName(), it.Author.Username)
	}
	if it.Description != "" {
		a.say("\n%s\n", it.Description)
	}

	similar, err := a.itineraries.Similar(ctx, id)
	if err != nil {
		a.logger.Debug(ctx, "similar itineraries unavailable", "id", id, "error", err)
		return nil
	}
	if len(similar) > 0 {
		a.say("Similar itineraries:")
		for _, s := range similar {
			a.say("  [%s] %s (%s, %s)", s.ID, s.Title, s.City, s.Country)
		}
	}
	return nil
}

func (a *App) createItinerary(ctx context.Context) error {
	var in models.NewItinerary
	text := []struct {
		label string
		dst   *string
	}{
		{"Title", &in.Title},
		{"City", &in.City},
		{"Country", &in.Country},
	}
	for _, t := range text {
		v, err := getSimpleText(a.in, t.label, a.out)
		if err != nil {
			return err
		}
		*t.dst = v
	}

	names := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		names[i] = string(c)
	}
	category, err := getSimpleText(a.in, "Category ("+strings.Join(names, ", ")+")", a.out)
	if err != nil {
		return err
	}
	in.Category = models.Category(strings.ToLower(category))

	if in.Duration, err = a.askInt("Duration in days", 1); err != nil {
		return err
	}
	if in.Difficulty, err = a.askInt("Difficulty 1-5 (optional)", 0); err != nil {
		return err
	}
	cost, err := getSimpleText(a.in, "Estimated cost (optional)", a.out)
	if err != nil {
		return err
	}
	if cost != "" {
		if in.EstimatedCost, err = strconv.ParseFloat(cost, 64); err != nil {
			a.say("Estimated cost must be a number.")
			return err
		}
		if in.Currency, err = getSimpleText(a.in, "Currency (e.g. BRL)", a.out); err != nil {
			return err
		}
	}
	if in.Description, err = GetMultiline(a.in, "Description", a.out); err != nil {
		return err
	}

	it, err := a.itineraries.Create(ctx, in)
	if err != nil {
		return err
	}
	a.say("%s", formatItinerary(*it))
	return nil
}

func (a *App) askInt(label string, def int) (int, error) {
	v, err := getSimpleText(a.in, label, a.out)
	if err != nil || v == "" {
		return def, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		a.say("%s must be a whole number.", label)
		return 0, err
	}
	return n, nil
}

// Rate gives an itinerary 1 to 5 stars. The average moves at once and is
// put back if the server refuses.
func (a *App) Rate(ctx context.Context, id, value string) error {
	if err := a.allow(router.Build(router.RouteItinerary, id)); err != nil {
		return err
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		a.say("Rating must be a number from %d to %d.", models.MinRating, models.MaxRating)
		return err
	}
	r, err := a.itineraries.Rate(ctx, models.ID(id), n)
	if err != nil {
		if errors.Is(err, optimistic.ErrInFlight) {
			a.say("Still saving your last rating of this itinerary.")
		}
		return err
	}
	a.say("%s", formatRating(models.ID(id), r))
	return nil
}

// Unrate removes the user's rating of an itinerary.
func (a *App) Unrate(ctx context.Context, id string) error {
	if err := a.allow(router.Build(router.RouteItinerary, id)); err != nil {
		return err
	}
	r, err := a.itineraries.Unrate(ctx, models.ID(id))
	if err != nil {
		if errors.Is(err, optimistic.ErrInFlight) {
			a.say("Still saving your last rating of this itinerary.")
		}
		return err
	}
	a.say("%s", formatRating(models.ID(id), r))
	return nil
}

func formatRating(id models.ID, r optimistic.Rating) string {
	s := fmt.Sprintf("Itinerary %s: %s %.1f (%s ratings)", id, stars(r.Average), r.Average, formatCount(r.Count))
	if r.Mine > 0 {
		s += fmt.Sprintf(", yours %d", r.Mine)
	}
	return s
}
