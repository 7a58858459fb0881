// Package router maps panel screens to paths and decides, on every
// navigation, whether the current session may see them.
package router

import (
	"fmt"
	"net/url"
	"sync"
)

// Requirement is what a route demands of the session.
type Requirement int

const (
	RequiresNone Requirement = iota
	RequiresAuth
	RequiresGuest
)

// Route names.
const (
	Login    = "login"
	Clients  = "clients"
	Settings = "settings"
	About    = "about"
)

// Landing is where authenticated users go by default.
const Landing = Clients

// Route is one screen of the panel.
type Route struct {
	Name        string
	Path        string
	Requirement Requirement
}

var routes = []Route{
	{Name: Login, Path: "/login", Requirement: RequiresGuest},
	{Name: Clients, Path: "/", Requirement: RequiresAuth},
	{Name: Settings, Path: "/settings", Requirement: RequiresAuth},
	{Name: About, Path: "/about", Requirement: RequiresAuth},
}

// Routes returns the route table.
func Routes() []Route {
	out := make([]Route, len(routes))
	copy(out, routes)
	return out
}

// Lookup finds a route by name.
func Lookup(name string) (Route, bool) {
	for _, r := range routes {
		if r.Name == name {
			return r, true
		}
	}
	return Route{}, false
}

// ByPath finds a route by path.
func ByPath(path string) (Route, bool) {
	for _, r := range routes {
		if r.Path == path {
			return r, true
		}
	}
	return Route{}, false
}

// Location is a resolved navigation target.
type Location struct {
	Name     string
	Path     string
	Redirect string // return target carried by the login route
}

// To returns the location of the named route.
func To(name string) Location {
	r, _ := Lookup(name)
	return Location{Name: r.Name, Path: r.Path}
}

// FullPath renders the location with its query.
func (l Location) FullPath() string {
	if l.Redirect == "" {
		return l.Path
	}
	return l.Path + "?" + url.Values{"redirect": {l.Redirect}}.Encode()
}

// Parse resolves a full path such as "/login?redirect=%2Fsettings".
func Parse(fullPath string) (Location, error) {
	u, err := url.Parse(fullPath)
	if err != nil {
		return Location{}, fmt.Errorf("parse path %q: %w", fullPath, err)
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	r, ok := ByPath(path)
	if !ok {
		return Location{}, fmt.Errorf("no route for %q", path)
	}
	return Location{Name: r.Name, Path: r.Path, Redirect: u.Query().Get("redirect")}, nil
}

// Decision is the outcome of Guard.
type Decision struct {
	Allowed  bool
	Redirect Location
}

// Guard decides whether a navigation to route (requested as fullPath) may
// proceed for the given session state.
func Guard(route Route, fullPath string, authenticated bool) Decision {
	switch {
	case route.Requirement == RequiresAuth && !authenticated:
		login := To(Login)
		login.Redirect = fullPath
		return Decision{Redirect: login}
	case route.Requirement == RequiresGuest && authenticated:
		return Decision{Redirect: To(Landing)}
	default:
		return Decision{Allowed: true}
	}
}

// AuthSource reports the live session state.
type AuthSource interface {
	Authenticated() bool
}

// Router holds the current location. Every Push consults the guard against
// the session state at that moment.
type Router struct {
	auth AuthSource

	mu       sync.Mutex
	current  Location
	listener func(Location)
}

// New returns a router with no current location.
func New(auth AuthSource) *Router {
	return &Router{auth: auth}
}

// OnChange registers fn to be called after every navigation.
func (r *Router) OnChange(fn func(Location)) {
	r.mu.Lock()
	r.listener = fn
	r.mu.Unlock()
}

// Current returns the current location.
func (r *Router) Current() Location {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Push navigates to the target, following at most one guard redirect, and
// returns where the router ended up.
func (r *Router) Push(to Location) (Location, error) {
	route, ok := Lookup(to.Name)
	if !ok {
		route, ok = ByPath(to.Path)
	}
	if !ok {
		return Location{}, fmt.Errorf("unknown route %q", to.Name)
	}
	to.Name, to.Path = route.Name, route.Path

	dest := to
	if d := Guard(route, to.FullPath(), r.auth.Authenticated()); !d.Allowed {
		dest = d.Redirect
	}

	r.mu.Lock()
	r.current = dest
	fn := r.listener
	r.mu.Unlock()

	if fn != nil {
		fn(dest)
	}
	return dest, nil
}

// Navigate is Push without the result.
func (r *Router) Navigate(to Location) {
	_, _ = r.Push(to)
}

// Reevaluate runs the guard again for the current location, for use after
// the session changed underneath it.
func (r *Router) Reevaluate() Location {
	cur := r.Current()
	if cur.Name == "" {
		cur = To(Landing)
	}
	dest, _ := r.Push(cur)
	return dest
}

// AfterLogin returns where a successful login on loc should lead.
func AfterLogin(loc Location) Location {
	if loc.Redirect != "" {
		if dest, err := Parse(loc.Redirect); err == nil && dest.Name != Login {
			return dest
		}
	}
	return To(Landing)
}
