// Package store defines the key-value contract the ledger is built on and
// ships the Redis, PostgreSQL and in-memory backends that satisfy it.
package store

import (
	"context"
	"errors"
	"fmt"
)

// KeyField is the primary key attribute of every item.
const KeyField = "name"

// ErrNotFound is returned by Get when no row exists for the key.
var ErrNotFound = errors.New("item not found")

var errMissingKey = errors.New("missing name attribute")

// Item is a single row. The KeyField attribute carries the primary key.
type Item map[string]string

// Key returns the primary key of the item.
func (i Item) Key() string {
	return i[KeyField]
}

// Outcome is the tagged result of a write.
type Outcome int

const (
	OutcomeNotApplied Outcome = iota
	OutcomeInserted
	OutcomeUpdated
	OutcomeDeleted
)

// String returns the marker rendered in API responses.
func (o Outcome) String() string {
	switch o {
	case OutcomeInserted:
		return "insert item success"
	case OutcomeUpdated:
		return "update item success"
	case OutcomeDeleted:
		return "delete item success"
	default:
		return "update item failed"
	}
}

// Applied reports whether the write changed the store.
func (o Outcome) Applied() bool {
	return o != OutcomeNotApplied
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// KeyValueStore is a per-table store keyed by the "name" attribute.
//
// Put overwrites any existing row. Delete does not check that the row exists.
// UpdateField only touches existing rows and reports OutcomeNotApplied otherwise.
type KeyValueStore interface {
	Get(ctx context.Context, table, key string) (Item, error)
	Put(ctx context.Context, table string, item Item) (Outcome, error)
	Delete(ctx context.Context, table, key string) (Outcome, error)
	UpdateField(ctx context.Context, table, key, field, value string) (Outcome, error)
}

// Error is a backend failure. It is always surfaced to the caller.
type Error struct {
	Op    string
	Table string
	Key   string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("store error: %s %s/%s: %v", e.Op, e.Table, e.Key, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrap(op, table, key string, err error) error {
	return &Error{Op: op, Table: table, Key: key, Err: err}
}
