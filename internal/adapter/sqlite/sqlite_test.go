package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"fieldsync/internal/domain"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "creds.db")
	s, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestStore_SurvivesReopen(t *testing.T) {
	s, path := openTemp(t)
	ctx := context.Background()
	user := domain.SessionUser{ID: 1, Username: "admin", Role: domain.RoleSuperUser}

	if err := s.Save(ctx, "jwt-1", user); err != nil {
		t.Fatalf("Save: %v", err)
	}
	// Overwrite keeps a single row per slot.
	if err := s.Save(ctx, "jwt-2", user); err != nil {
		t.Fatalf("second Save: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	token, got, ok, err := reopened.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if token != "jwt-2" || got != user {
		t.Errorf("got %q %+v", token, got)
	}

	var rows int
	if err := reopened.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM credentials`).Scan(&rows); err != nil {
		t.Fatalf("count: %v", err)
	}
	if rows != 2 {
		t.Errorf("expected 2 rows, got %d", rows)
	}
}

func TestStore_ClearAndCorruption(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()

	if _, _, ok, err := s.Load(ctx); ok || err != nil {
		t.Fatalf("expected empty store, got ok=%v err=%v", ok, err)
	}

	if err := s.Save(ctx, "tok", domain.SessionUser{ID: 2, Role: domain.RoleOfficer}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE credentials SET payload = ? WHERE slot = ?`, []byte("{broken"), domain.SlotUser); err != nil {
		t.Fatalf("corrupt: %v", err)
	}
	if _, _, ok, err := s.Load(ctx); ok || err != nil {
		t.Errorf("expected corrupt profile to read as absent, got ok=%v err=%v", ok, err)
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("second Clear: %v", err)
	}
}
