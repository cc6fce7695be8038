// Package postgres persists the credential in PostgreSQL for deployments
// where several terminals share one database.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"fieldsync/internal/domain"
)

// DB wraps a *sql.DB and implements domain.CredentialStore. Rows are keyed
// by owner so terminals sharing a database keep separate sessions.
type DB struct {
	sql   *sql.DB
	owner string
}

var _ domain.CredentialStore = (*DB)(nil)

// Open connects to PostgreSQL, pings, and runs migrations. owner names the
// terminal whose credential this store holds; empty means "default".
func Open(connStr, owner string) (*DB, error) {
	s, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	s.SetMaxOpenConns(4)
	s.SetMaxIdleConns(2)
	s.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	if strings.TrimSpace(owner) == "" {
		owner = "default"
	}
	d := &DB{sql: s, owner: owner}
	if err := d.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS credentials (
			owner TEXT NOT NULL,
			slot TEXT NOT NULL CHECK(slot IN ('token','user')),
			payload BYTEA NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (owner, slot)
		);`,
	}
	for _, stmt := range stmts {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Save upserts both slots in one transaction.
func (d *DB) Save(ctx context.Context, token string, user domain.SessionUser) error {
	data, err := domain.EncodeUser(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	const upsert = `INSERT INTO credentials(owner, slot, payload, updated_at) VALUES($1, $2, $3, $4)
		ON CONFLICT (owner, slot) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`
	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, upsert, d.owner, domain.SlotToken, []byte(token), now); err != nil {
		return fmt.Errorf("upsert %s: %w", domain.SlotToken, err)
	}
	if _, err := tx.ExecContext(ctx, upsert, d.owner, domain.SlotUser, data, now); err != nil {
		return fmt.Errorf("upsert %s: %w", domain.SlotUser, err)
	}
	return tx.Commit()
}

// Load reads both slots. Missing or malformed data is reported as absent.
func (d *DB) Load(ctx context.Context) (string, domain.SessionUser, bool, error) {
	rows, err := d.sql.QueryContext(ctx, `SELECT slot, payload FROM credentials WHERE owner = $1`, d.owner)
	if err != nil {
		return "", domain.SessionUser{}, false, fmt.Errorf("select credentials: %w", err)
	}
	defer rows.Close()

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

// Clear deletes this owner's slots.
func (d *DB) Clear(ctx context.Context) error {
	if _, err := d.sql.ExecContext(ctx, `DELETE FROM credentials WHERE owner = $1`, d.owner); err != nil {
		return fmt.Errorf("delete credentials: %w", err)
	}
	return nil
}
