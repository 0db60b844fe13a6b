package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/guia-app/guia/internal/client/models"
	"github.com/guia-app/guia/internal/client/toast"
)

// now is a test seam for relative times.
var now = time.Now

const previewLen = 100

func relativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	n := now()
	if n.Sub(t) < time.Minute && n.Sub(t) > -time.Minute {
		return "just now"
	}
	return humanize.RelTime(t, n, "ago", "from now")
}

// formatCount shortens large counters: 999, 1.5K, 2.3M, 1.0B.
func formatCount(n int64) string {
	switch {
	case n < 1_000:
		return strconv.FormatInt(n, 10)
	case n < 1_000_000:
		return fmt.Sprintf("%.1fK", float64(n)/1e3)
	case n < 1_000_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1e6)
	}
	return fmt.Sprintf("%.1fB", float64(n)/1e9)
}

func formatPrice(amount float64, currency string) string {
	if currency == "" {
		currency = "BRL"
	}
	return currency + " " + humanize.CommafWithDigits(amount, 2)
}

// formatDays renders a trip length as weeks and days.
func formatDays(days int) string {
	if days <= 0 {
		return ""
	}
	plural := func(n int, unit string) string {
		if n == 1 {
			return "1 " + unit
		}
		return fmt.Sprintf("%d %ss", n, unit)
	}
	if days < 7 {
		return plural(days, "day")
	}
	out := plural(days/7, "week")
	if rest := days % 7; rest > 0 {
		out += " and " + plural(rest, "day")
	}
	return out
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return strings.TrimSpace(string(r[:max])) + "..."
}

func stars(avg float64) string {
	full := int(avg + 0.5)
	full = max(0, min(full, models.MaxRating))
	return strings.Repeat("*", full) + strings.Repeat(".", models.MaxRating-full)
}

func formatPost(p models.Post) string {
	var b strings.Builder
	author := p.AuthorID.String()
	if p.Author != nil {
		author = "@" + p.Author.Username
	}
	fmt.Fprintf(&b, "[%s] %s  %s", p.ID, author, relativeTime(p.CreatedAt))
	if p.Location != "" {
		fmt.Fprintf(&b, "  @ %s", p.Location)
	}
	b.WriteString("\n  ")
	b.WriteString(truncate(p.Content, previewLen*2))
	for _, u := range p.MediaURLs {
		fmt.Fprintf(&b, "\n  %s: %s", p.Type, u)
	}
	liked := ""
	if p.IsLiked {
		liked = " (liked)"
	}
	fmt.Fprintf(&b, "\n  likes %s%s  comments %s", formatCount(p.LikesCount), liked, formatCount(p.CommentsCount))
	return b.String()
}

func formatItinerary(it models.Itinerary) string {
	var b strings.Builder
	featured := ""
	if it.IsFeatured {
		featured = " [featured]"
	}
	fmt.Fprintf(&b, "[%s] %s%s\n  %s, %s  %s  %s", it.ID, it.Title, featured,
		it.City, it.Country, it.Category, formatDays(it.Duration))
	if it.EstimatedCost > 0 {
		fmt.Fprintf(&b, "  %s", formatPrice(it.EstimatedCost, it.Currency))
	}
	fmt.Fprintf(&b, "\n  rating %s %.1f (%s)", stars(it.AverageRating), it.AverageRating, formatCount(it.RatingsCount))
	if it.UserRating > 0 {
		fmt.Fprintf(&b, "  yours %d", it.UserRating)
	}
	if it.Description != "" {
		b.WriteString("\n  ")
		b.WriteString(truncate(it.Description, previewLen))
	}
	return b.String()
}

func formatUser(u models.User) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s (@%s)", u.ID, u.DisplayName(), u.Username)
	if u.IsVerified {
		b.WriteString(" [verified]")
	}
	if u.IsFollowing {
		b.WriteString(" [following]")
	}
	fmt.Fprintf(&b, "\n  followers %s  following %s  posts %s  itineraries %s",
		formatCount(u.FollowersCount), formatCount(u.FollowingCount),
		formatCount(u.PostsCount), formatCount(u.ItinerariesCount))
	if u.Bio != "" {
		b.WriteString("\n  ")
		b.WriteString(truncate(u.Bio, previewLen))
	}
	return b.String()
}

func formatToast(t toast.Toast) string {
	if t.Title != "" {
		return fmt.Sprintf("[%s] %s: %s", t.Kind, t.Title, t.Message)
	}
	return fmt.Sprintf("[%s] %s", t.Kind, t.Message)
}
