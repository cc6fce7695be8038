package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"fieldsync/internal/app"
	"fieldsync/internal/domain"
)

type mockAuthenticator struct {
	loginFn func(ctx context.Context, username, password string) (domain.LoginResult, error)
	calls   int
}

func (m *mockAuthenticator) Login(ctx context.Context, username, password string) (domain.LoginResult, error) {
	m.calls++
	if m.loginFn != nil {
		return m.loginFn(ctx, username, password)
	}
	return domain.LoginResult{Token: "tok-1", User: domain.SessionUser{ID: 1, Username: username, Role: domain.RoleOfficer}}, nil
}

// fakeCredentialStore keeps the two slots in memory and lets tests inject
// failures.
type fakeCredentialStore struct {
	mu      sync.Mutex
	token   string
	user    *domain.SessionUser
	saveErr error
	loadErr error
}

func (f *fakeCredentialStore) Save(ctx context.Context, token string, user domain.SessionUser) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.token = token
	f.user = &user
	return nil
}

func (f *fakeCredentialStore) Load(ctx context.Context) (string, domain.SessionUser, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return "", domain.SessionUser{}, false, f.loadErr
	}
	if f.token == "" || f.user == nil {
		return "", domain.SessionUser{}, false, nil
	}
	return f.token, *f.user, true, nil
}

func (f *fakeCredentialStore) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = ""
	f.user = nil
	return nil
}

func (f *fakeCredentialStore) empty() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token == "" && f.user == nil
}

func TestSessionManager_LoginPersistsAndRehydrates(t *testing.T) {
	store := &fakeCredentialStore{}
	auth := &mockAuthenticator{
		loginFn: func(ctx context.Context, username, password string) (domain.LoginResult, error) {
			return domain.LoginResult{
				Token: "jwt-abc",
				User:  domain.SessionUser{ID: 7, Username: username, Role: domain.RoleSuperUser},
			}, nil
		},
	}
	m := app.NewSessionManager(store, auth)
	ctx := context.Background()

	if m.IsAuthenticated() {
		t.Fatal("expected new manager to be unauthenticated")
	}

	user, err := m.Login(ctx, "admin", "admin123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.ID != 7 || user.Role != domain.RoleSuperUser {
		t.Errorf("unexpected user %+v", user)
	}
	if !m.IsAuthenticated() {
		t.Error("expected authenticated after login")
	}
	if store.token != "jwt-abc" || store.user == nil || store.user.ID != 7 {
		t.Errorf("store not updated: token=%q user=%+v", store.token, store.user)
	}

	// Simulate a reload.
	reloaded := app.NewSessionManager(store, nil)
	if err := reloaded.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	got := reloaded.Current()
	want := m.Current()
	if got.Token != want.Token || *got.User != *want.User {
		t.Errorf("rehydrated session %+v, want %+v", got, want)
	}
}

func TestSessionManager_LoginRejected(t *testing.T) {
	store := &fakeCredentialStore{}
	_ = store.Save(context.Background(), "stale", domain.SessionUser{ID: 2})
	auth := &mockAuthenticator{
		loginFn: func(ctx context.Context, username, password string) (domain.LoginResult, error) {
			return domain.LoginResult{}, &domain.Error{Kind: domain.KindAuthenticationRejected, Status: 401}
		},
	}
	m := app.NewSessionManager(store, auth)
	if err := m.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	_, err := m.Login(context.Background(), "admin", "wrong")
	if !errors.Is(err, domain.ErrAuthenticationRejected) {
		t.Fatalf("expected ErrAuthenticationRejected, got %v", err)
	}
	if m.IsAuthenticated() {
		t.Error("expected unauthenticated after rejected login")
	}
	if !store.empty() {
		t.Error("expected credential store to be cleared")
	}
}

func TestSessionManager_LoginSaveFailureLeavesNothing(t *testing.T) {
	store := &fakeCredentialStore{saveErr: errors.New("disk full")}
	m := app.NewSessionManager(store, &mockAuthenticator{})

	if _, err := m.Login(context.Background(), "officer_001", "pw"); err == nil {
		t.Fatal("expected error when the credential cannot be saved")
	}
	if m.IsAuthenticated() {
		t.Error("expected no in-memory session after save failure")
	}
}

func TestSessionManager_LoginRequiresCredentials(t *testing.T) {
	auth := &mockAuthenticator{}
	m := app.NewSessionManager(&fakeCredentialStore{}, auth)

	_, err := m.Login(context.Background(), " ", "")
	if !errors.Is(err, domain.ErrValidationFailed) {
		t.Errorf("expected ErrValidationFailed, got %v", err)
	}
	if auth.calls != 0 {
		t.Errorf("expected no backend call, got %d", auth.calls)
	}
}

func TestSessionManager_UncategorizedLoginErrorIsClassified(t *testing.T) {
	auth := &mockAuthenticator{
		loginFn: func(ctx context.Context, username, password string) (domain.LoginResult, error) {
			return domain.LoginResult{}, context.DeadlineExceeded
		},
	}
	m := app.NewSessionManager(&fakeCredentialStore{}, auth)

	_, err := m.Login(context.Background(), "u", "p")
	if domain.KindOf(err) != domain.KindConnectivityFailure {
		t.Errorf("expected connectivity failure, got %v", err)
	}
}

func TestSessionManager_LogoutIsIdempotent(t *testing.T) {
	store := &fakeCredentialStore{}
	m := app.NewSessionManager(store, &mockAuthenticator{})
	ctx := context.Background()

	notifications := 0
	m.Subscribe(func() { notifications++ })

	if err := m.Logout(ctx); err != nil {
		t.Fatalf("Logout while signed out: %v", err)
	}
	if notifications != 0 {
		t.Errorf("expected no notification for a no-op logout, got %d", notifications)
	}

	if _, err := m.Login(ctx, "u", "p"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := m.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if err := m.Logout(ctx); err != nil {
		t.Fatalf("second Logout: %v", err)
	}
	if m.IsAuthenticated() || !store.empty() {
		t.Error("expected session and store to be empty after logout")
	}
	if notifications != 2 {
		t.Errorf("expected 2 notifications (login, logout), got %d", notifications)
	}
}

func TestSessionManager_InitializeWithoutCredential(t *testing.T) {
	m := app.NewSessionManager(&fakeCredentialStore{}, nil)
	if err := m.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if m.IsAuthenticated() {
		t.Error("expected unauthenticated")
	}
	if _, ok := m.User(); ok {
		t.Error("expected no user")
	}
}

func TestSessionManager_InitializeDropsSessionClearedElsewhere(t *testing.T) {
	store := &fakeCredentialStore{}
	m := app.NewSessionManager(store, &mockAuthenticator{})
	ctx := context.Background()
	if _, err := m.Login(ctx, "admin", "admin123"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	notifications := 0
	m.Subscribe(func() { notifications++ })

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if err := m.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if m.IsAuthenticated() {
		t.Error("expected session dropped once the store is empty")
	}
	if notifications != 1 {
		t.Errorf("expected 1 notification, got %d", notifications)
	}

	if err := m.Initialize(ctx); err != nil {
		t.Fatalf("second Initialize: %v", err)
	}
	if notifications != 1 {
		t.Errorf("expected no notification when nothing changed, got %d", notifications)
	}
}

func TestSessionManager_NoAuthenticator(t *testing.T) {
	m := app.NewSessionManager(&fakeCredentialStore{}, nil)
	if _, err := m.Login(context.Background(), "u", "p"); !errors.Is(err, app.ErrNoAuthenticator) {
		t.Errorf("expected ErrNoAuthenticator, got %v", err)
	}
}

func TestSessionManager_CurrentIsACopy(t *testing.T) {
	m := app.NewSessionManager(&fakeCredentialStore{}, &mockAuthenticator{})
	if _, err := m.Login(context.Background(), "u", "p"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	s := m.Current()
	s.User.Role = domain.RoleSuperUser
	if u, _ := m.User(); u.Role == domain.RoleSuperUser {
		t.Error("mutating Current() leaked into the manager")
	}
}
