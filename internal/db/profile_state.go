package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

// DefaultNamespace is used when no namespace is configured.
const DefaultNamespace = "default"

// StateStore is the profile_state rows of one namespace, one row per key.
type StateStore struct {
	db        *DB
	namespace string
}

// StateRow is one stored key with its last write time.
type StateRow struct {
	Key       string
	Value     []byte
	UpdatedAt time.Time
}

// State returns the store for namespace.
func (db *DB) State(namespace string) *StateStore {
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &StateStore{db: db, namespace: namespace}
}

// Namespace returns the namespace rows are scoped to.
func (s *StateStore) Namespace() string {
	return s.namespace
}

// Load retrieves the value stored for key
func (s *StateStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.pool.QueryRow(ctx,
		`SELECT value FROM profile_state WHERE namespace = $1 AND key = $2`,
		s.namespace, key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to load %s: %w", key, err)
	}
	return value, true, nil
}

// Save upserts the value for key
func (s *StateStore) Save(ctx context.Context, key string, value []byte) error {
	_, err := s.db.pool.Exec(ctx,
		`INSERT INTO profile_state (namespace, key, value)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (namespace, key) DO UPDATE SET value = $3, updated_at = NOW()`,
		s.namespace, key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

// Clear deletes the value for key
func (s *StateStore) Clear(ctx context.Context, key string) error {
	_, err := s.db.pool.Exec(ctx,
		`DELETE FROM profile_state WHERE namespace = $1 AND key = $2`,
		s.namespace, key,
	)
	if err != nil {
		return fmt.Errorf("failed to clear %s: %w", key, err)
	}
	return nil
}

// List returns every row in the namespace ordered by key
func (s *StateStore) List(ctx context.Context) ([]StateRow, error) {
	rows, err := s.db.pool.Query(ctx,
		`SELECT key, value, updated_at FROM profile_state WHERE namespace = $1 ORDER BY key`,
		s.namespace,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list state: %w", err)
	}
	defer rows.Close()

	var out []StateRow
	for rows.Next() {
		var r StateRow
		if err := rows.Scan(&r.Key, &r.Value, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan state row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
