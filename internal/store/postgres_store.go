package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"
)

// PostgresStore maps each table to a relation with a text primary key and a
// JSONB attribute bag.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureTables creates the relations backing the given tables if they are missing.
func (s *PostgresStore) EnsureTables(ctx context.Context, tables ...string) error {
	for _, table := range tables {
		query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (name TEXT PRIMARY KEY, attrs JSONB NOT NULL DEFAULT '{}'::jsonb)`,
			pq.QuoteIdentifier(table))
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table, err)
		}
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, table, key string) (Item, error) {
	query := fmt.Sprintf(`SELECT attrs FROM %s WHERE name = $1`, pq.QuoteIdentifier(table))
	var raw []byte
	err := s.db.QueryRowContext(ctx, query, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrap("get", table, key, err)
	}
	item := Item{}
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, wrap("get", table, key, fmt.Errorf("failed to decode attributes: %w", err))
	}
	item[KeyField] = key
	return item, nil
}

func (s *PostgresStore) Put(ctx context.Context, table string, item Item) (Outcome, error) {
	key := item.Key()
	if key == "" {
		return OutcomeNotApplied, wrap("put", table, key, errMissingKey)
	}
	attrs := make(Item, len(item))
	for k, v := range item {
		if k != KeyField {
			attrs[k] = v
		}
	}
	raw, err := json.Marshal(attrs)
	if err != nil {
		return OutcomeNotApplied, wrap("put", table, key, err)
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (name, attrs) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET attrs = EXCLUDED.attrs
	`, pq.QuoteIdentifier(table))
	if _, err := s.db.ExecContext(ctx, query, key, raw); err != nil {
		return OutcomeNotApplied, wrap("put", table, key, err)
	}
	return OutcomeInserted, nil
}

func (s *PostgresStore) Delete(ctx context.Context, table, key string) (Outcome, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE name = $1`, pq.QuoteIdentifier(table))
	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		return OutcomeNotApplied, wrap("delete", table, key, err)
	}
	return OutcomeDeleted, nil
}

func (s *PostgresStore) UpdateField(ctx context.Context, table, key, field, value string) (Outcome, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET attrs = jsonb_set(attrs, ARRAY[$2::text], to_jsonb($3::text), true)
		WHERE name = $1
	`, pq.QuoteIdentifier(table))
	result, err := s.db.ExecContext(ctx, query, key, field, value)
	if err != nil {
		return OutcomeNotApplied, wrap("update", table, key, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return OutcomeNotApplied, wrap("update", table, key, fmt.Errorf("failed to check rows affected: %w", err))
	}
	if rows == 0 {
		return OutcomeNotApplied, nil
	}
	return OutcomeUpdated, nil
}
