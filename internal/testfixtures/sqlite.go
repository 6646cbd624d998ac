package testfixtures

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/example/court-reservations/internal/persistence"
	"github.com/example/court-reservations/internal/persistence/sqlite"
	"github.com/example/court-reservations/internal/persistence/sqlite/migration"
)

// SQLiteHarness wraps a migrated SQLite storage in a temporary file.
type SQLiteHarness struct {
	Storage *sqlite.Storage
}

// NewSQLiteHarness opens and migrates a fresh database under tb.TempDir. The
// storage is closed through tb.Cleanup.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "courtbot.db")
	storage, err := sqlite.Open(migration.TempFileTestSQLiteConfig(path))
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}
	tb.Cleanup(func() { _ = storage.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := storage.Migrate(context.Background(), logger); err != nil {
		tb.Fatalf("failed to migrate storage: %v", err)
	}
	return &SQLiteHarness{Storage: storage}
}

// SeedMembers stores the given members.
func (h *SQLiteHarness) SeedMembers(tb testing.TB, members ...persistence.Member) {
	tb.Helper()
	for _, member := range members {
		if err := h.Storage.UpsertMember(context.Background(), member); err != nil {
			tb.Fatalf("failed to seed member %s: %v", member.ID, err)
		}
	}
}

// SeedSlots stores the given open slots.
func (h *SQLiteHarness) SeedSlots(tb testing.TB, slots ...persistence.Slot) {
	tb.Helper()
	if err := h.Storage.CreateSlots(context.Background(), slots); err != nil {
		tb.Fatalf("failed to seed slots: %v", err)
	}
}
