package migration

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"time"
)

// Manager applies pending migrations found in a file system directory.
type Manager struct {
	scanner  FileScanner
	executor Executor
	fsys     fs.FS
	dir      string
	logger   *slog.Logger
}

// NewManager creates a Manager. A nil logger falls back to slog.Default.
func NewManager(scanner FileScanner, executor Executor, fsys fs.FS, dir string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		scanner:  scanner,
		executor: executor,
		fsys:     fsys,
		dir:      dir,
		logger:   logger.With("component", "migration"),
	}
}

// RunMigrations executes all pending migrations in version order
func (m *Manager) RunMigrations(ctx context.Context) error {
	started := time.Now()

	status, err := m.Status(ctx)
	if err != nil {
		return err
	}
	m.logger.InfoContext(ctx, "checked database schema version",
		"current_version", status.CurrentVersion,
		"pending_count", status.PendingCount,
	)
	if status.PendingCount == 0 {
		return nil
	}

	for i, migration := range status.PendingMigrations {
		m.logger.InfoContext(ctx, "executing migration",
			"version", migration.Version,
			"description", migration.Description,
			"position", fmt.Sprintf("%d/%d", i+1, status.PendingCount),
		)
		if err := m.executor.ExecuteMigration(ctx, migration); err != nil {
			m.logger.ErrorContext(ctx, "migration failed", "version", migration.Version, "error", err)
			return fileError(migration.Version, migration.FilePath,
				"execute migration", fmt.Errorf("%w: %v", ErrMigrationFailed, err))
		}
	}

	m.logger.InfoContext(ctx, "database migrations completed",
		"applied", status.PendingCount,
		"duration", time.Since(started),
	)
	return nil
}

// Status compares the migrations on disk with the schema_migrations table.
func (m *Manager) Status(ctx context.Context) (*Status, error) {
	if err := m.executor.InitializeVersionTable(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize version table: %w", err)
	}

	available, err := m.scanner.ScanMigrations(m.fsys, m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan migrations: %w", err)
	}
	applied, err := m.executor.GetAppliedVersions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get applied versions: %w", err)
	}

	appliedByVersion := make(map[string]AppliedMigration, len(applied))
	for _, a := range applied {
		appliedByVersion[a.Version] = a
	}

	status := &Status{AppliedMigrations: applied}
	if len(applied) > 0 {
		status.CurrentVersion = applied[len(applied)-1].Version
	}
	for _, migration := range available {
		record, ok := appliedByVersion[migration.Version]
		if !ok {
			status.PendingMigrations = append(status.PendingMigrations, migration)
			continue
		}
		if record.Checksum != "" && record.Checksum != migration.Checksum {
			return nil, fileError(migration.Version, migration.FilePath, "verify checksum", ErrChecksumMismatch)
		}
	}
	status.PendingCount = len(status.PendingMigrations)
	return status, nil
}
