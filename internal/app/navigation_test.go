package app_test

import (
	"errors"
	"testing"

	"fieldsync/internal/app"
	"fieldsync/internal/domain"
)

type staticSession struct{ s domain.Session }

func (f *staticSession) Current() domain.Session { return f.s }

func signedIn(role domain.Role) *staticSession {
	return &staticSession{s: domain.Session{Token: "t", User: &domain.SessionUser{ID: 9, Username: "x", Role: role}}}
}

func TestRouteTable_Resolve(t *testing.T) {
	table := app.NewRouteTable(app.DefaultRoutes())

	tests := []struct {
		path     string
		name     string
		auth     bool
		role     domain.Role
		redirect string
	}{
		{"/login", "Login", false, "", ""},
		{"/", "Dashboard", true, "", ""},
		{"/incidents", "Incidents", true, "", ""},
		{"analytics/", "Analytics", true, "", ""},
		{"/users", "Users", true, domain.RoleSuperUser, ""},
		{"/does/not/exist", "NotFound", false, "", "/"},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			r, ok := table.Resolve(tc.path)
			if !ok {
				t.Fatalf("no route for %q", tc.path)
			}
			if r.Name != tc.name {
				t.Errorf("expected %s, got %s", tc.name, r.Name)
			}
			if r.Policy.RequiresAuth != tc.auth || r.Policy.RequiresRole != tc.role {
				t.Errorf("unexpected policy %+v", r.Policy)
			}
			if r.Redirect != tc.redirect {
				t.Errorf("expected redirect %q, got %q", tc.redirect, r.Redirect)
			}
		})
	}
}

func TestGuard(t *testing.T) {
	table := app.NewRouteTable(app.DefaultRoutes())
	users, _ := table.Resolve("/users")
	login, _ := table.Resolve("/login")
	dash, _ := table.Resolve("/")

	tests := []struct {
		name    string
		target  app.Route
		session domain.Session
		want    app.Decision
	}{
		{"anonymous to protected", dash, domain.Session{}, app.Decision{Redirect: "/login"}},
		{"anonymous to login", login, domain.Session{}, app.Decision{Allow: true}},
		{"signed in to login", login, signedIn(domain.RoleOfficer).s, app.Decision{Redirect: "/"}},
		{"field agent to users", users, signedIn(domain.RoleFieldAgent).s, app.Decision{Redirect: "/"}},
		{"super user to users", users, signedIn(domain.RoleSuperUser).s, app.Decision{Allow: true}},
		{"anonymous to users", users, domain.Session{}, app.Decision{Redirect: "/login"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := app.Guard(tc.target, tc.session); got != tc.want {
				t.Errorf("expected %+v, got %+v", tc.want, got)
			}
		})
	}
}

func TestRouter_Navigate(t *testing.T) {
	table := app.NewRouteTable(app.DefaultRoutes())

	tests := []struct {
		name    string
		session *staticSession
		path    string
		want    string
	}{
		{"field agent blocked from users", signedIn(domain.RoleFieldAgent), "/users", "/"},
		{"super user reaches users", signedIn(domain.RoleSuperUser), "/users", "/users"},
		{"anonymous sent to login", &staticSession{}, "/incidents", "/login"},
		{"signed in bounced from login", signedIn(domain.RoleOfficer), "/login", "/"},
		{"unknown path while anonymous", &staticSession{}, "/nowhere", "/login"},
		{"unknown path while signed in", signedIn(domain.RoleOfficer), "/nowhere", "/"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := app.NewRouter(table, tc.session)
			got, err := r.Navigate(tc.path)
			if err != nil {
				t.Fatalf("Navigate: %v", err)
			}
			if got != tc.want || r.Current() != tc.want {
				t.Errorf("expected %s, got %s (current %s)", tc.want, got, r.Current())
			}
		})
	}
}

func TestRouter_RedirectLoop(t *testing.T) {
	table := app.NewRouteTable([]app.Route{
		{Name: "A", Path: "/a", Redirect: "/b"},
		{Name: "B", Path: "/b", Redirect: "/a"},
	})
	r := app.NewRouter(table, &staticSession{})

	if _, err := r.Navigate("/a"); !errors.Is(err, app.ErrRedirectLoop) {
		t.Fatalf("expected ErrRedirectLoop, got %v", err)
	}
	if r.Current() != "" {
		t.Errorf("expected no location, got %q", r.Current())
	}
}

func TestRouter_NotifiesOnNavigation(t *testing.T) {
	r := app.NewRouter(app.NewRouteTable(app.DefaultRoutes()), signedIn(domain.RoleOfficer))
	count := 0
	r.Subscribe(func() { count++ })

	r.Redirect("/incidents")
	r.Redirect("/analytics")

	if count != 2 {
		t.Errorf("expected 2 notifications, got %d", count)
	}
}
