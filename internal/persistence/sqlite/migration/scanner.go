package migration

import (
	"crypto/sha256"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// fileScannerImpl implements the FileScanner interface
type fileScannerImpl struct {
	// migrationFilePattern matches {version}_{description}.sql
	migrationFilePattern *regexp.Regexp
}

// NewFileScanner creates a new FileScanner implementation
func NewFileScanner() FileScanner {
	return &fileScannerImpl{
		migrationFilePattern: regexp.MustCompile(`^(\d+)_([a-zA-Z0-9_-]+)\.sql$`),
	}
}

// ScanMigrations reads every *.sql file in dir and returns them sorted by version
func (s *fileScannerImpl) ScanMigrations(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fileError("", dir, "read directory", err)
	}

	var migrations []Migration
	versionMap := make(map[string]string)

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		if err := s.ValidateFileName(entry.Name()); err != nil {
			return nil, fileError("", entry.Name(), "validate filename", err)
		}

		filePath := path.Join(dir, entry.Name())
		migration, err := s.parseMigrationFile(fsys, filePath)
		if err != nil {
			return nil, err
		}

		if existing, exists := versionMap[migration.Version]; exists {
			return nil, fileError(migration.Version, entry.Name(), "check duplicates",
				fmt.Errorf("%w: version %s found in both %s and %s",
					ErrDuplicateVersion, migration.Version, existing, entry.Name()))
		}
		versionMap[migration.Version] = entry.Name()
		migrations = append(migrations, migration)
	}

	sort.Slice(migrations, func(i, j int) bool {
		vi, _ := strconv.Atoi(migrations[i].Version)
		vj, _ := strconv.Atoi(migrations[j].Version)
		return vi < vj
	})
	return migrations, nil
}

// ValidateFileName checks if migration file follows naming convention
func (s *fileScannerImpl) ValidateFileName(filename string) error {
	matches := s.migrationFilePattern.FindStringSubmatch(filename)
	if len(matches) != 3 {
		return fmt.Errorf("%w: filename '%s' does not match pattern '{version}_{description}.sql'",
			ErrInvalidMigrationFile, filename)
	}
	if _, err := strconv.Atoi(matches[1]); err != nil {
		return fmt.Errorf("%w: version '%s' in filename '%s' is not a valid number",
			ErrInvalidVersion, matches[1], filename)
	}
	return nil
}

func (s *fileScannerImpl) parseMigrationFile(fsys fs.FS, filePath string) (Migration, error) {
	matches := s.migrationFilePattern.FindStringSubmatch(path.Base(filePath))
	version := matches[1]

	content, err := fs.ReadFile(fsys, filePath)
	if err != nil {
		return Migration{}, fileError(version, filePath, "read file", err)
	}
	sqlContent := string(content)
	if strings.TrimSpace(sqlContent) == "" {
		return Migration{}, fileError(version, filePath, "validate content",
			fmt.Errorf("%w: migration file is empty", ErrInvalidMigrationFile))
	}

	description := extractDescription(sqlContent)
	if description == "" {
		description = strings.ReplaceAll(matches[2], "_", " ")
	}

	return Migration{
		Version:     version,
		Description: description,
		SQL:         sqlContent,
		FilePath:    filePath,
		Checksum:    fmt.Sprintf("%x", sha256.Sum256(content)),
	}, nil
}

// extractDescription returns the value of a leading "-- Description:" comment.
func extractDescription(sql string) string {
	for _, line := range strings.Split(sql, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "--") {
			continue
		}
		comment := strings.TrimSpace(strings.TrimPrefix(line, "--"))
		if rest, ok := strings.CutPrefix(comment, "Description:"); ok {
			return strings.TrimSpace(rest)
		}
	}
	return ""
}
