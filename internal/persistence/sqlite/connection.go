package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/example/court-reservations/internal/persistence"
	"github.com/example/court-reservations/internal/persistence/sqlite/migration"
)

// database is the shared handle the repositories query through.
type database struct {
	*sql.DB
}

func openDatabase(config migration.SQLiteConfig) (*database, error) {
	db, err := migration.Open(config)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database %s: %w", config.Path, err)
	}
	return &database{DB: db}, nil
}

// inTx runs fn inside a transaction, rolling back on error or panic.
func (d *database) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

var constraintKinds = []struct {
	markers  []string
	sentinel error
}{
	{markers: []string{"UNIQUE constraint failed", "PRIMARY KEY constraint failed"}, sentinel: persistence.ErrDuplicate},
	{markers: []string{"FOREIGN KEY constraint failed"}, sentinel: persistence.ErrForeignKeyViolation},
	{markers: []string{"CHECK constraint failed", "NOT NULL constraint failed"}, sentinel: persistence.ErrConstraintViolation},
}

// mapError attaches the persistence sentinel matching a driver error.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return persistence.ErrNotFound
	}

	msg := err.Error()
	for _, kind := range constraintKinds {
		for _, marker := range kind.markers {
			if strings.Contains(msg, marker) {
				return fmt.Errorf("%w: %v", kind.sentinel, err)
			}
		}
	}
	return err
}
