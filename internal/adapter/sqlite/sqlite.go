// Package sqlite persists the credential in a local SQLite file so a session
// survives restarts of the CLI.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"fieldsync/internal/domain"
)

// Store is a CredentialStore backed by a single SQLite table.
type Store struct {
	db   *sql.DB
	path string
}

var _ domain.CredentialStore = (*Store)(nil)

// Open opens or creates the database at path and ensures the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		path = "fieldsync.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS credentials (
		slot TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create credentials table: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Save writes both slots in one transaction.
func (s *Store) Save(ctx context.Context, token string, user domain.SessionUser) (retErr error) {
	data, err := domain.EncodeUser(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	const upsert = `INSERT INTO credentials(slot,payload) VALUES(?,?) ON CONFLICT(slot) DO UPDATE SET payload=excluded.payload`
	if _, err := tx.ExecContext(ctx, upsert, domain.SlotToken, []byte(token)); err != nil {
		return fmt.Errorf("upsert %s: %w", domain.SlotToken, err)
	}
	if _, err := tx.ExecContext(ctx, upsert, domain.SlotUser, data); err != nil {
		return fmt.Errorf("upsert %s: %w", domain.SlotUser, err)
	}
	return tx.Commit()
}

// Load reads both slots. Missing or malformed data is reported as absent.
func (s *Store) Load(ctx context.Context) (string, domain.SessionUser, bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT slot, payload FROM credentials WHERE slot IN (?, ?)`, domain.SlotToken, domain.SlotUser)
	if err != nil {
		return "", domain.SessionUser{}, false, fmt.Errorf("select credentials: %w", err)
	}
	defer func() { _ = rows.Close() }()

	slots := make(map[string][]byte, 2)
	for rows.Next() {
		var slot string
		var payload []byte
		if err := rows.Scan(&slot, &payload); err != nil {
			return "", domain.SessionUser{}, false, fmt.Errorf("scan: %w", err)
		}
		slots[slot] = payload
	}
	if err := rows.Err(); err != nil {
		return "", domain.SessionUser{}, false, err
	}

	token := string(slots[domain.SlotToken])
	user, ok := domain.DecodeUser(slots[domain.SlotUser])
	if token == "" || !ok {
		return "", domain.SessionUser{}, false, nil
	}
	return token, user, true, nil
}

// Clear deletes both slots.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM credentials WHERE slot IN (?, ?)`, domain.SlotToken, domain.SlotUser); err != nil {
		return fmt.Errorf("delete credentials: %w", err)
	}
	return nil
}
