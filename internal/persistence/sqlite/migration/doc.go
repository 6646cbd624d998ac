// Package migration applies versioned SQL schema changes to a SQLite database.
//
// Migrations are read from an fs.FS (normally an embedded directory) and must
// follow the naming convention {version}_{description}.sql, for example
// "001_slots.sql". Each migration runs in its own transaction and is recorded
// in the schema_migrations table so that it is applied exactly once.
//
// Example usage:
//
//	manager := migration.NewManager(migration.NewFileScanner(), migration.NewSQLiteExecutor(db), schemaFS, "schema", logger)
//	if err := manager.RunMigrations(ctx); err != nil {
//		return err
//	}
package migration
