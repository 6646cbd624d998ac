package sqlite

import (
	"context"
	"embed"
	"log/slog"

	"github.com/example/court-reservations/internal/persistence/sqlite/migration"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Storage bundles the SQLite repositories that share one database handle.
type Storage struct {
	*MemberRepository
	*SlotRepository
	*SessionRepository

	db *database
}

// Open connects to the database described by config.
func Open(config migration.SQLiteConfig) (*Storage, error) {
	db, err := openDatabase(config)
	if err != nil {
		return nil, err
	}
	return &Storage{
		MemberRepository:  newMemberRepository(db),
		SlotRepository:    newSlotRepository(db),
		SessionRepository: newSessionRepository(db),
		db:                db,
	}, nil
}

// Migrate applies the embedded schema migrations.
func (s *Storage) Migrate(ctx context.Context, logger *slog.Logger) error {
	manager := migration.NewManager(
		migration.NewFileScanner(),
		migration.NewSQLiteExecutor(s.db.DB),
		schemaFS,
		"schema",
		logger,
	)
	return manager.RunMigrations(ctx)
}

// Ping reports whether the database is reachable.
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Storage) Close() error {
	return s.db.Close()
}
