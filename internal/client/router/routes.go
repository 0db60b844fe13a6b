package router

import (
	"net/url"
	"strings"

	"github.com/guia-app/guia/internal/client/models"
)

// Name identifies a route.
type Name string

const (
	RouteLogin           Name = "login"
	RouteRegister        Name = "register"
	RouteHome            Name = "home"
	RouteProfile         Name = "profile"
	RouteUser            Name = "user"
	RoutePosts           Name = "posts"
	RoutePost            Name = "post"
	RouteItineraries     Name = "itineraries"
	RouteItinerary       Name = "itinerary"
	RouteCreateItinerary Name = "create-itinerary"
	RouteSearch          Name = "search"
	RouteSettings        Name = "settings"
	RouteFollowers       Name = "followers"
	RouteFollowing       Name = "following"
	RouteNotFound        Name = "not-found"
)

// Access says who may open a route.
type Access int

const (
	// AccessAny routes are open to everyone.
	AccessAny Access = iota
	// AccessPublicOnly routes are for signed-out users.
	AccessPublicOnly
	// AccessProtected routes need a session.
	AccessProtected
)

// Route is one entry of the route table.
type Route struct {
	Name    Name
	Pattern string
	Access  Access
	// Requires lists capabilities the user must hold on top of a session.
	Requires []models.Capability
}

const (
	PathLogin    = "/login"
	PathHome     = "/"
	PathNotFound = "/404"
)

var table = []Route{
	{Name: RouteLogin, Pattern: PathLogin, Access: AccessPublicOnly},
	{Name: RouteRegister, Pattern: "/register", Access: AccessPublicOnly},
	{Name: RouteHome, Pattern: PathHome, Access: AccessProtected},
	{Name: RouteProfile, Pattern: "/profile", Access: AccessProtected},
	{Name: RouteUser, Pattern: "/user/:id", Access: AccessProtected},
	{Name: RoutePosts, Pattern: "/posts", Access: AccessProtected},
	{Name: RoutePost, Pattern: "/post/:id", Access: AccessProtected},
	{Name: RouteItineraries, Pattern: "/itineraries", Access: AccessProtected},
	{Name: RouteItinerary, Pattern: "/itinerary/:id", Access: AccessProtected},
	{Name: RouteCreateItinerary, Pattern: "/create-itinerary", Access: AccessProtected, Requires: []models.Capability{models.CapBasic}},
	{Name: RouteSearch, Pattern: "/search", Access: AccessProtected},
	{Name: RouteSettings, Pattern: "/settings", Access: AccessProtected},
	{Name: RouteFollowers, Pattern: "/followers/:id", Access: AccessProtected},
	{Name: RouteFollowing, Pattern: "/following/:id", Access: AccessProtected},
	{Name: RouteNotFound, Pattern: PathNotFound, Access: AccessAny},
}

// Routes returns a copy of the route table.
func Routes() []Route {
	return append([]Route(nil), table...)
}

// Lookup returns the route called name.
func Lookup(name Name) (Route, bool) {
	for _, r := range table {
		if r.Name == name {
			return r, true
		}
	}
	return Route{}, false
}

// Match is a resolved location.
type Match struct {
	Route  Route
	Path   string
	Params map[string]string
	Query  url.Values
}

// Resolve matches a location such as "/user/42?tab=posts" against the
// table. Unknown paths resolve to the not-found route.
func Resolve(location string) Match {
	u, err := url.Parse(strings.TrimSpace(location))
	if err != nil {
		return notFound(location)
	}
	path := u.Path
	if path == "" {
		path = PathHome
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}

	for _, r := range table {
		if params, ok := match(r.Pattern, path); ok {
			return Match{Route: r, Path: path, Params: params, Query: u.Query()}
		}
	}
	return notFound(path)
}

func notFound(path string) Match {
	r, _ := Lookup(RouteNotFound)
	return Match{Route: r, Path: path}
}

func match(pattern, path string) (map[string]string, bool) {
	want := strings.Split(pattern, "/")
	got := strings.Split(path, "/")
	if len(want) != len(got) {
		return nil, false
	}
	var params map[string]string
	for i, seg := range want {
		if name, ok := strings.CutPrefix(seg, ":"); ok {
			if got[i] == "" {
				return nil, false
			}
			if params == nil {
				params = make(map[string]string)
			}
			params[name] = got[i]
			continue
		}
		if seg != got[i] {
			return nil, false
		}
	}
	return params, true
}

// Build fills the parameters of a route pattern in order, e.g.
// Build(RouteUser, "42") is "/user/42".
func Build(name Name, params ...string) string {
	r, ok := Lookup(name)
	if !ok {
		return PathNotFound
	}
	segs := strings.Split(r.Pattern, "/")
	for i, seg := range segs {
		if strings.HasPrefix(seg, ":") && len(params) > 0 {
			segs[i] = url.PathEscape(params[0])
			params = params[1:]
		}
	}
	return strings.Join(segs, "/")
}
