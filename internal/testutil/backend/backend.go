// Package backend is an in-process stand-in for the dashboard's API gateway.
// It implements the login, incident, user, geo and analytics endpoints with
// the same status codes so client code can be exercised end to end.
package backend

import (
	"context"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"fieldsync/internal/adapter/jwtclaims"
	"fieldsync/internal/domain"
)

type account struct {
	domain.UserAccount
	passwordHash []byte
}

type failure struct {
	status int
	left   int
}

// Server holds the backend state. The zero value is not usable; call New.
type Server struct {
	mu         sync.Mutex
	secret     string
	tokens     *jwtclaims.TokenManager
	accounts   map[int64]*account
	nextUserID int64
	incidents  []domain.Incident
	nextIncID  int64
	boundaries map[int64]domain.Geometry
	failures   map[string]*failure
	seen       []http.Header
}

// New creates an empty backend signing tokens with secret.
func New(secret string) *Server {
	return &Server{
		secret:     secret,
		tokens:     jwtclaims.NewTokenManager(secret, time.Hour),
		accounts:   make(map[int64]*account),
		boundaries: make(map[int64]domain.Geometry),
		failures:   make(map[string]*failure),
	}
}

// AddUser creates an account. Passwords are hashed with bcrypt.
func (s *Server) AddUser(in domain.UserInput, active bool) domain.UserAccount {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(in, hash, active, nil)
}

func (s *Server) addLocked(in domain.UserInput, hash []byte, active bool, createdBy *int64) domain.UserAccount {
	s.nextUserID++
	a := &account{
		UserAccount: domain.UserAccount{
			ID:          s.nextUserID,
			Username:    in.Username,
			Email:       in.Email,
			Role:        in.Role,
			FirstName:   in.FirstName,
			LastName:    in.LastName,
			Phone:       in.Phone,
			BadgeNumber: in.BadgeNumber,
			CreatedBy:   createdBy,
			Active:      active,
		},
		passwordHash: hash,
	}
	s.accounts[a.ID] = a
	return a.UserAccount
}

// SetBoundary assigns a patrol polygon to userID.
func (s *Server) SetBoundary(userID int64, g domain.Geometry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.boundaries[userID] = g
}

// FailNext makes the next n requests matching method and path answer with
// status before any other processing.
func (s *Server) FailNext(method, path string, status, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = &failure{status: status, left: n}
}

// RevokeTokens rotates the signing secret so every issued token is rejected.
func (s *Server) RevokeTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.secret += "-rotated"
	s.tokens = jwtclaims.NewTokenManager(s.secret, time.Hour)
}

// Headers returns the request headers received so far, oldest first.
func (s *Server) Headers() []http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]http.Header, len(s.seen))
	copy(out, s.seen)
	return out
}

// Handler returns the API mounted under /api.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.recordAndInject)
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)

	authed := api.NewRoute().Subrouter()
	authed.Use(s.requireToken)

	authed.HandleFunc("/incidents", s.handleListIncidents).Methods(http.MethodGet)
	authed.HandleFunc("/incidents", s.handleCreateIncident).Methods(http.MethodPost)
	authed.HandleFunc("/incidents/{id:[0-9]+}", s.handleGetIncident).Methods(http.MethodGet)
	authed.HandleFunc("/incidents/{id:[0-9]+}", s.handleUpdateIncident).Methods(http.MethodPut)
	authed.HandleFunc("/incidents/{id:[0-9]+}", s.handleDeleteIncident).Methods(http.MethodDelete)

	users := authed.PathPrefix("/users").Subrouter()
	users.Use(requireRole(domain.RoleSuperUser))
	users.HandleFunc("", s.handleListUsers).Methods(http.MethodGet)
	users.HandleFunc("", s.handleCreateUser).Methods(http.MethodPost)
	users.HandleFunc("/{id:[0-9]+}", s.handleGetUser).Methods(http.MethodGet)
	users.HandleFunc("/{id:[0-9]+}", s.handleUpdateUser).Methods(http.MethodPut)
	users.HandleFunc("/{id:[0-9]+}", s.handleDeleteUser).Methods(http.MethodDelete)

	authed.HandleFunc("/geo/boundary/{id:[0-9]+}", s.handleBoundary).Methods(http.MethodGet)

	authed.HandleFunc("/analytics/incidents/count-by-type", s.handleCountByType).Methods(http.MethodGet)
	authed.HandleFunc("/analytics/incidents/count-by-priority", s.handleCountByPriority).Methods(http.MethodGet)
	authed.HandleFunc("/analytics/incidents/locations", s.handleLocations).Methods(http.MethodGet)

	return r
}

func (s *Server) recordAndInject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.seen = append(s.seen, r.Header.Clone())
		f := s.failures[r.Method+" "+r.URL.Path]
		status := 0
		if f != nil && f.left > 0 {
			f.left--
			status = f.status
		}
		s.mu.Unlock()

		if status != 0 {
			log.Printf("backend: injected %d for %s %s", status, r.Method, r.URL.Path)
			writeError(w, status, http.StatusText(status))
			return
		}
		next.ServeHTTP(w, r)
	})
}

type contextKey string

const claimsContextKey contextKey = "claims"

// requireToken validates the bearer token and the identity headers.
func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			writeError(w, http.StatusUnauthorized, "missing token")
			return
		}
		s.mu.Lock()
		tm := s.tokens
		s.mu.Unlock()
		claims, err := tm.Verify(raw)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		if r.Header.Get(domain.HeaderUserID) != strconv.FormatInt(claims.UserID, 10) ||
			r.Header.Get(domain.HeaderUserRole) != string(claims.Role) {
			writeError(w, http.StatusUnauthorized, "identity headers do not match token")
			return
		}
		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requireRole(role domain.Role) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if claimsFrom(r).Role != role {
				writeError(w, http.StatusForbidden, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func claimsFrom(r *http.Request) jwtclaims.Claims {
	c, _ := r.Context().Value(claimsContextKey).(jwtclaims.Claims)
	return c
}

func sortedCounts(m map[string]int) []domain.CategoryCount {
	out := make([]domain.CategoryCount, 0, len(m))
	for k, v := range m {
		out = append(out, domain.CategoryCount{Name: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
