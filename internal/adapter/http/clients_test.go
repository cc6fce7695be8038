package adapthttp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"fieldsync/internal/domain"
)

func TestAuthClient_Login(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/auth/login" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body loginRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
			return
		}
		if body.Username != "admin" || body.Password != "admin123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"jwt":"abc.def.ghi","id":1,"username":"admin","role":"SUPER_USER"}`))
	})
	gw := newTestGateway(t, h, &fakeSession{}, &fakeNavigator{current: domain.LoginPath}, nil)
	c := NewAuthClient(gw)

	res, err := c.Login(context.Background(), "admin", "admin123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Token != "abc.def.ghi" || res.User.ID != 1 || res.User.Role != domain.RoleSuperUser {
		t.Errorf("unexpected result %+v", res)
	}

	_, err = c.Login(context.Background(), "admin", "wrong")
	if !errors.Is(err, domain.ErrAuthenticationRejected) {
		t.Errorf("expected ErrAuthenticationRejected, got %v", err)
	}
	if domain.KindOf(err) == domain.KindAuthorizationExpired {
		t.Error("login 401 must not surface as an expired session")
	}
}

func TestAuthClient_DisabledAccount(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	c := NewAuthClient(newTestGateway(t, h, nil, nil, nil))

	if _, err := c.Login(context.Background(), "u", "p"); !errors.Is(err, domain.ErrAccountDisabled) {
		t.Errorf("expected ErrAccountDisabled, got %v", err)
	}
}

func TestResourceClient_Paths(t *testing.T) {
	type call struct{ method, path string }
	var calls []call
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, call{r.Method, r.URL.Path})
		switch r.Method {
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		case http.MethodGet:
			if r.URL.Path == "/api/users" {
				w.Write([]byte(`[{"id":4,"username":"a","email":"a@x","role":"OFFICER","active":true}]`))
				return
			}
			w.Write([]byte(`{"id":4,"username":"a","email":"a@x","role":"OFFICER","active":true}`))
		default:
			w.Write([]byte(`{"id":4,"username":"a","email":"a@x","role":"OFFICER","active":true}`))
		}
	})
	c := NewUserClient(newTestGateway(t, h, nil, nil, nil))
	ctx := context.Background()
	in := domain.UserInput{Username: "a", Email: "a@x", Role: domain.RoleOfficer}

	users, err := c.List(ctx)
	if err != nil || len(users) != 1 || !users[0].Active {
		t.Fatalf("List: %v %+v", err, users)
	}
	if _, err := c.Get(ctx, 4); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if _, err := c.Create(ctx, in); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := c.Update(ctx, 4, in); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := c.Delete(ctx, 4); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	want := []call{
		{"GET", "/api/users"},
		{"GET", "/api/users/4"},
		{"POST", "/api/users"},
		{"PUT", "/api/users/4"},
		{"DELETE", "/api/users/4"},
	}
	if len(calls) != len(want) {
		t.Fatalf("expected %d calls, got %v", len(want), calls)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("call %d: got %v, want %v", i, calls[i], want[i])
		}
	}
}

func TestGeoClient_BoundaryFor(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/geo/boundary/7" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"id":7,"boundary":{"type":"Polygon","coordinates":[[[0,0],[10,0],[10,10],[0,10],[0,0]]]}}`))
	})
	c := NewGeoClient(newTestGateway(t, h, nil, nil, nil))

	b, err := c.BoundaryFor(context.Background(), 7)
	if err != nil {
		t.Fatalf("BoundaryFor: %v", err)
	}
	if b.UserID != 7 || b.Geometry == nil || len(b.Geometry.Coordinates[0]) != 5 {
		t.Fatalf("unexpected boundary %+v", b)
	}
	if !b.Contains(domain.RoleOfficer, 5, 5) {
		t.Error("expected centre point inside")
	}

	if _, err := c.BoundaryFor(context.Background(), 8); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAnalyticsClient(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/analytics/incidents/count-by-type":
			w.Write([]byte(`[{"name":"FIRE","count":2}]`))
		case "/api/analytics/incidents/count-by-priority":
			w.Write([]byte(`[{"name":"HIGH","count":1},{"name":"LOW","count":1}]`))
		case "/api/analytics/incidents/locations":
			w.Write([]byte(`[{"latitude":6.5,"longitude":3.3}]`))
		default:
			http.NotFound(w, r)
		}
	})
	c := NewAnalyticsClient(newTestGateway(t, h, nil, nil, nil))
	ctx := context.Background()

	byType, err := c.CountByType(ctx)
	if err != nil || len(byType) != 1 || byType[0].Count != 2 {
		t.Errorf("CountByType: %v %+v", err, byType)
	}
	byPriority, err := c.CountByPriority(ctx)
	if err != nil || len(byPriority) != 2 {
		t.Errorf("CountByPriority: %v %+v", err, byPriority)
	}
	locs, err := c.Locations(ctx)
	if err != nil || len(locs) != 1 || locs[0].Latitude != 6.5 {
		t.Errorf("Locations: %v %+v", err, locs)
	}
}
