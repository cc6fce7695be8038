// Package app holds the client-side use cases: the session lifecycle, the
// local mirrors of remote collections and navigation policy.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"fieldsync/internal/domain"
)

// ErrNoAuthenticator is returned by Login when no authentication endpoint
// has been wired.
var ErrNoAuthenticator = errors.New("session: no authenticator configured")

// SessionManager owns the authenticated/unauthenticated state and is the
// single source of truth for the request pipeline and the navigation guard.
type SessionManager struct {
	creds domain.CredentialStore

	mu    sync.Mutex
	auth  domain.Authenticator
	token string
	user  *domain.SessionUser

	observers notifier
}

// NewSessionManager creates an unauthenticated SessionManager. auth may be
// nil and supplied later with SetAuthenticator.
func NewSessionManager(creds domain.CredentialStore, auth domain.Authenticator) *SessionManager {
	return &SessionManager{creds: creds, auth: auth}
}

// SetAuthenticator wires the authentication endpoint. The endpoint client
// usually sits behind the request pipeline, which itself needs the
// SessionManager, so it is attached after construction.
func (m *SessionManager) SetAuthenticator(auth domain.Authenticator) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.auth = auth
}

// Initialize restores a previously saved session, or drops the in-memory one
// when nothing is stored. The token is trusted as stored; it is not checked
// against the backend.
func (m *SessionManager) Initialize(ctx context.Context) error {
	token, user, ok, err := m.creds.Load(ctx)
	if err != nil {
		log.Printf("session: load credential: %v", err)
		return fmt.Errorf("load credential: %w", err)
	}
	if !ok || token == "" {
		if m.clearMemory() {
			m.observers.notify()
		}
		return nil
	}

	m.mu.Lock()
	m.token = token
	m.user = &user
	m.mu.Unlock()

	log.Printf("session: restored session for user %d", user.ID)
	m.observers.notify()
	return nil
}

// Login authenticates against the backend and, on success, persists and
// activates the session. On any failure both the in-memory and the stored
// credential are cleared.
func (m *SessionManager) Login(ctx context.Context, username, password string) (domain.SessionUser, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return domain.SessionUser{}, domain.Invalid("login", "username and password are required")
	}

	m.mu.Lock()
	auth := m.auth
	m.mu.Unlock()
	if auth == nil {
		return domain.SessionUser{}, ErrNoAuthenticator
	}

	res, err := auth.Login(ctx, username, password)
	if err == nil && (res.Token == "" || res.User.ID == 0) {
		err = &domain.Error{Kind: domain.KindServiceUnavailable, Op: "login", Detail: "incomplete login response"}
	}
	if err != nil {
		m.reset(ctx)
		if domain.KindOf(err) == domain.KindUnknown {
			err = &domain.Error{Kind: domain.KindConnectivityFailure, Op: "login", Err: err}
		}
		return domain.SessionUser{}, err
	}

	if err := m.creds.Save(ctx, res.Token, res.User); err != nil {
		m.reset(ctx)
		return domain.SessionUser{}, fmt.Errorf("persist session: %w", err)
	}

	m.mu.Lock()
	m.token = res.Token
	user := res.User
	m.user = &user
	m.mu.Unlock()

	log.Printf("session: user %d (%s) signed in", user.ID, user.Role)
	m.observers.notify()
	return user, nil
}

// Logout ends the session. It is safe to call when already signed out.
func (m *SessionManager) Logout(ctx context.Context) error {
	changed := m.clearMemory()
	err := m.creds.Clear(ctx)
	if changed {
		log.Printf("session: signed out")
		m.observers.notify()
	}
	if err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}

// IsAuthenticated reports whether a token is present.
func (m *SessionManager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token != ""
}

// Current returns a copy of the session.
func (m *SessionManager) Current() domain.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == "" || m.user == nil {
		return domain.Session{}
	}
	u := *m.user
	return domain.Session{Token: m.token, User: &u}
}

// User returns the signed-in user, if any.
func (m *SessionManager) User() (domain.SessionUser, bool) {
	s := m.Current()
	if s.User == nil {
		return domain.SessionUser{}, false
	}
	return *s.User, true
}

// Subscribe registers fn to be called after every session transition.
func (m *SessionManager) Subscribe(fn func()) (unsubscribe func()) {
	return m.observers.subscribe(fn)
}

func (m *SessionManager) reset(ctx context.Context) {
	changed := m.clearMemory()
	if err := m.creds.Clear(ctx); err != nil {
		log.Printf("session: clear credential: %v", err)
	}
	if changed {
		m.observers.notify()
	}
}

func (m *SessionManager) clearMemory() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	changed := m.token != "" || m.user != nil
	m.token = ""
	m.user = nil
	return changed
}
