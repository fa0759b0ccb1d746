// Package sqlbase holds the SQL shared by the SQLite and PostgreSQL providers.
// Queries are written with "?" placeholders and rebound per dialect.
package sqlbase

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/habitrack/internal/migration"
	"github.com/julianstephens/habitrack/internal/storage"
)

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

type Store struct {
	db      *sql.DB
	conn    querier
	dialect migration.Dialect
}

func New(db *sql.DB, dialect migration.Dialect) *Store {
	return &Store{db: db, conn: db, dialect: dialect}
}

func (s *Store) q(query string) string {
	return s.dialect.Rebind(query)
}

func (s *Store) exec(query string, args ...any) (sql.Result, error) {
	return s.conn.Exec(s.q(query), args...)
}

func (s *Store) query(query string, args ...any) (*sql.Rows, error) {
	return s.conn.Query(s.q(query), args...)
}

func (s *Store) queryRow(query string, args ...any) *sql.Row {
	return s.conn.QueryRow(s.q(query), args...)
}

// withTx runs fn in a transaction, committing only when fn succeeds
func (s *Store) withTx(fn func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// WithHabitTx runs fn against a Store bound to one transaction. SQLite
// connections begin transactions IMMEDIATE, which takes the database write
// lock up front; PostgreSQL locks the habit row.
func (s *Store) WithHabitTx(habitID string, fn func(storage.HabitTx) error) error {
	return s.withTx(func(tx *sql.Tx) error {
		if s.dialect == migration.DialectPostgres {
			var id string
			err := tx.QueryRow(s.q("SELECT id FROM habits WHERE id = ? FOR UPDATE"), habitID).Scan(&id)
			if err != nil {
				return notFound(err, "habit "+habitID)
			}
		}
		return fn(&Store{db: s.db, conn: tx, dialect: s.dialect})
	})
}

func (s *Store) txExec(tx *sql.Tx, query string, args ...any) (sql.Result, error) {
	return tx.Exec(s.q(query), args...)
}

func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, storage.ErrNotFound)
	}
	return err
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(field, value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", field, err)
	}
	return t, nil
}

func requireAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, storage.ErrNotFound)
	}
	return nil
}
