package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/pkg/database"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

const (
	getSQL = `SELECT value FROM kv_store
WHERE key = $1 AND (expires_at IS NULL OR expires_at > NOW())`

	setSQL = `INSERT INTO kv_store (key, value, updated_at, expires_at)
VALUES ($1, $2, NOW(), $3)
ON CONFLICT (key) DO UPDATE
SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at, expires_at = EXCLUDED.expires_at`

	deleteSQL = `DELETE FROM kv_store WHERE key = $1`

	purgeSQL = `DELETE FROM kv_store WHERE expires_at IS NOT NULL AND expires_at <= NOW()`
)

// KVStore implements repository.KVStore on a PostgreSQL table. Expired rows
// are hidden from Get and removed by PurgeExpired.
type KVStore struct {
	db  database.DBTX
	ttl time.Duration
	now func() time.Time
}

var (
	_ repository.KVStore = (*KVStore)(nil)
	_ repository.Purger  = (*KVStore)(nil)
)

// NewKVStore creates a Postgres-backed store. A zero ttl keeps rows forever.
func NewKVStore(db database.DBTX, ttl time.Duration) *KVStore {
	return &KVStore{db: db, ttl: ttl, now: time.Now}
}

func (s *KVStore) Get(ctx context.Context, key string) (_ json.RawMessage, err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "Get", getSQL)
	defer func() { end(err) }()

	var value []byte
	if err := s.db.QueryRow(ctx, getSQL, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("key", key)
		}
		return nil, fmt.Errorf("select %s: %w", key, err)
	}
	return value, nil
}

func (s *KVStore) Set(ctx context.Context, key string, value json.RawMessage) (err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "Set", setSQL)
	defer func() { end(err) }()

	if _, err := s.db.Exec(ctx, setSQL, key, []byte(value), s.expiresAt()); err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

func (s *KVStore) Delete(ctx context.Context, key string) (err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "Delete", deleteSQL)
	defer func() { end(err) }()

	if _, err := s.db.Exec(ctx, deleteSQL, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *KVStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// PurgeExpired deletes rows whose TTL has passed and returns how many went.
func (s *KVStore) PurgeExpired(ctx context.Context) (_ int64, err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "PurgeExpired", purgeSQL)
	defer func() { end(err) }()

	tag, err := s.db.Exec(ctx, purgeSQL)
	if err != nil {
		return 0, fmt.Errorf("purge expired state: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *KVStore) expiresAt() *time.Time {
	if s.ttl <= 0 {
		return nil
	}
	t := s.now().UTC().Add(s.ttl)
	return &t
}
