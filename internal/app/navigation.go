package app

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"

	"github.com/gorilla/mux"

	"fieldsync/internal/domain"
)

const maxRedirects = 5

// ErrRedirectLoop is returned when guard redirects do not settle.
var ErrRedirectLoop = errors.New("navigation: too many redirects")

// Route is one entry of the route table. Children inherit RequiresAuth
// from their parent and may declare their own RequiresRole.
type Route struct {
	Name     string
	Path     string
	Policy   domain.RoutePolicy
	Redirect string
	Children []Route
}

// DefaultRoutes is the dashboard's route configuration.
func DefaultRoutes() []Route {
	return []Route{
		{Name: "Login", Path: domain.LoginPath},
		{
			Path:   domain.DashboardPath,
			Policy: domain.RoutePolicy{RequiresAuth: true},
			Children: []Route{
				{Name: "Dashboard", Path: ""},
				{Name: "Incidents", Path: "incidents"},
				{Name: "Analytics", Path: "analytics"},
				{Name: "Users", Path: "users", Policy: domain.RoutePolicy{RequiresRole: domain.RoleSuperUser}},
			},
		},
		{Name: "NotFound", Path: "/{rest:.*}", Redirect: domain.DashboardPath},
	}
}

// RouteTable resolves navigation paths to routes.
type RouteTable struct {
	matcher *mux.Router
	routes  map[string]Route
}

// NewRouteTable flattens routes into a matcher. Earlier routes win.
func NewRouteTable(routes []Route) *RouteTable {
	t := &RouteTable{matcher: mux.NewRouter(), routes: make(map[string]Route)}
	for _, r := range routes {
		t.add(r, domain.RoutePolicy{})
	}
	return t
}

func (t *RouteTable) add(r Route, parent domain.RoutePolicy) {
	r.Policy.RequiresAuth = r.Policy.RequiresAuth || parent.RequiresAuth
	if r.Policy.RequiresRole == "" {
		r.Policy.RequiresRole = parent.RequiresRole
	}
	if r.Name != "" {
		t.routes[r.Name] = r
		t.matcher.Path(r.Path).Name(r.Name)
	}
	for _, c := range r.Children {
		c.Path = joinPath(r.Path, c.Path)
		t.add(c, r.Policy)
	}
}

// Resolve returns the route matching p.
func (t *RouteTable) Resolve(p string) (Route, bool) {
	req := &http.Request{Method: http.MethodGet, URL: &url.URL{Path: cleanPath(p)}}
	var m mux.RouteMatch
	if !t.matcher.Match(req, &m) || m.Route == nil {
		return Route{}, false
	}
	r, ok := t.routes[m.Route.GetName()]
	return r, ok
}

func joinPath(parent, child string) string {
	if child == "" {
		return parent
	}
	return path.Join(parent, child)
}

func cleanPath(p string) string {
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

// Decision is the outcome of Guard.
type Decision struct {
	Allow    bool
	Redirect string
}

// Guard decides whether a transition to target may proceed for session s.
// It never mutates anything.
func Guard(target Route, s domain.Session) Decision {
	authed := s.Authenticated()
	switch {
	case target.Policy.RequiresAuth && !authed:
		return Decision{Redirect: domain.LoginPath}
	case target.Path == domain.LoginPath && authed:
		return Decision{Redirect: domain.DashboardPath}
	case target.Policy.RequiresRole != "" && (s.User == nil || s.User.Role != target.Policy.RequiresRole):
		return Decision{Redirect: domain.DashboardPath}
	default:
		return Decision{Allow: true}
	}
}

// sessionReader is the part of SessionManager the Router needs.
type sessionReader interface {
	Current() domain.Session
}

// Router tracks the current location and runs Guard on every transition.
// It implements domain.Navigator.
type Router struct {
	table   *RouteTable
	session sessionReader

	mu      sync.Mutex
	current string

	observers notifier
}

var _ domain.Navigator = (*Router)(nil)

// NewRouter creates a Router with no current location.
func NewRouter(table *RouteTable, session sessionReader) *Router {
	return &Router{table: table, session: session}
}

// Navigate moves to p, following route and guard redirects, and returns the
// location actually reached.
func (r *Router) Navigate(p string) (string, error) {
	target := cleanPath(p)
	for i := 0; i <= maxRedirects; i++ {
		route, ok := r.table.Resolve(target)
		if !ok {
			return "", fmt.Errorf("navigation: no route for %q", target)
		}
		if route.Redirect != "" {
			target = route.Redirect
			continue
		}
		d := Guard(route, r.session.Current())
		if !d.Allow {
			target = d.Redirect
			continue
		}
		r.mu.Lock()
		r.current = target
		r.mu.Unlock()
		r.observers.notify()
		return target, nil
	}
	return "", ErrRedirectLoop
}

// Current returns the current location, or "" before the first navigation.
func (r *Router) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Redirect navigates to p, logging instead of returning failures.
func (r *Router) Redirect(p string) {
	if _, err := r.Navigate(p); err != nil {
		log.Printf("navigation: redirect to %s: %v", p, err)
	}
}

// Subscribe registers fn to be called after every completed navigation.
func (r *Router) Subscribe(fn func()) (unsubscribe func()) {
	return r.observers.subscribe(fn)
}
