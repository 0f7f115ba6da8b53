package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const pgSchema = `CREATE TABLE IF NOT EXISTS session_kv (
	k TEXT PRIMARY KEY,
	v TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Postgres implements Store on a single Postgres table. Writes are
// last-writer-wins upserts, matching the "write is the last word" model.
type Postgres struct {
	db *sqlx.DB
}

// NewPostgres connects with the given DSN and ensures the table exists.
func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres open: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, pgSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres schema: %w", err)
	}

	return &Postgres{db: db}, nil
}

func (s *Postgres) Get(ctx context.Context, key string) (string, error) {
	var v string
	err := s.db.GetContext(ctx, &v, "SELECT v FROM session_kv WHERE k = $1", key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return v, nil
}

func (s *Postgres) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO session_kv (k, v, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (k) DO UPDATE SET v = EXCLUDED.v, updated_at = now()`,
		key, value,
	)
	return err
}

func (s *Postgres) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	query, args, err := sqlx.In("DELETE FROM session_kv WHERE k IN (?)", keys)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	return err
}

func (s *Postgres) KeysWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := s.db.SelectContext(ctx, &keys,
		"SELECT k FROM session_kv WHERE k LIKE $1", likePrefix(prefix))
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func (s *Postgres) Close() error {
	return s.db.Close()
}

// likePrefix escapes LIKE metacharacters in the prefix.
func likePrefix(prefix string) string {
	out := make([]byte, 0, len(prefix)+4)
	for i := 0; i < len(prefix); i++ {
		switch prefix[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, prefix[i])
	}
	return string(out) + "%"
}
