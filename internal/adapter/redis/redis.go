// Package redis persists the credential in Redis under a key prefix.
package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"fieldsync/internal/domain"
)

// DefaultPrefix is used when no prefix is configured.
const DefaultPrefix = "fieldsync:session:"

// Store is a CredentialStore holding the two slots as Redis string keys.
type Store struct {
	rdb    goredis.UniversalClient
	prefix string
}

var _ domain.CredentialStore = (*Store)(nil)

// New wraps rdb. The client is owned by the caller.
func New(rdb goredis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{rdb: rdb, prefix: prefix}
}

// Dial connects to addr and checks the connection.
func Dial(ctx context.Context, addr, prefix string) (*Store, error) {
	rdb := goredis.NewClient(&goredis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return New(rdb, prefix), nil
}

// Close closes the underlying client.
func (s *Store) Close() error { return s.rdb.Close() }

func (s *Store) key(slot string) string { return s.prefix + slot }

// Save writes both keys in a single MULTI/EXEC.
func (s *Store) Save(ctx context.Context, token string, user domain.SessionUser) error {
	data, err := domain.EncodeUser(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	_, err = s.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, s.key(domain.SlotToken), token, 0)
		pipe.Set(ctx, s.key(domain.SlotUser), data, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save: %w", err)
	}
	return nil
}

// Load reads both keys. Missing or malformed data is reported as absent.
func (s *Store) Load(ctx context.Context) (string, domain.SessionUser, bool, error) {
	vals, err := s.rdb.MGet(ctx, s.key(domain.SlotToken), s.key(domain.SlotUser)).Result()
	if err != nil && !errors.Is(err, goredis.Nil) {
		return "", domain.SessionUser{}, false, fmt.Errorf("redis load: %w", err)
	}
	if len(vals) != 2 {
		return "", domain.SessionUser{}, false, nil
	}
	token, _ := vals[0].(string)
	raw, _ := vals[1].(string)
	user, ok := domain.DecodeUser([]byte(raw))
	if token == "" || !ok {
		return "", domain.SessionUser{}, false, nil
	}
	return token, user, true, nil
}

// Clear deletes both keys.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.rdb.Del(ctx, s.key(domain.SlotToken), s.key(domain.SlotUser)).Err(); err != nil {
		return fmt.Errorf("redis clear: %w", err)
	}
	return nil
}
