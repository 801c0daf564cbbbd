package migrate

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/pressly/goose/v3"

	"github.com/angelmondragon/mycrew-backend/pkg/config"
)

//go:embed migrations/*.sql
var embedded embed.FS

const (
	// Embedded selects the migrations compiled into the binary.
	Embedded = "embedded"
	// SourceDir is where new migrations are written and validated, relative
	// to the repository root.
	SourceDir = "pkg/migrate/migrations"
)

// Dialect maps a configured driver to the goose dialect name.
func Dialect(driver string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case config.DriverSQLite, "sqlite3":
		return "sqlite3", nil
	case config.DriverPostgres:
		return "postgres", nil
	}
	return "", fmt.Errorf("unsupported db driver %q", driver)
}

// prepare points goose at the right dialect and file system and returns the
// directory goose should read.
func prepare(driver, dir string) (string, error) {
	dialect, err := Dialect(driver)
	if err != nil {
		return "", err
	}
	if err := goose.SetDialect(dialect); err != nil {
		return "", fmt.Errorf("set goose dialect: %w", err)
	}
	switch dir {
	case "":
		return "", errors.New("migrations dir is required")
	case Embedded:
		goose.SetBaseFS(embedded)
		return "migrations", nil
	}
	goose.SetBaseFS(nil)
	return dir, nil
}

// Run executes a goose command (up, down, status, reset, ...).
func Run(ctx context.Context, db *sql.DB, driver, dir, command string, args ...string) error {
	if db == nil {
		return errors.New("db is required")
	}
	path, err := prepare(driver, dir)
	if err != nil {
		return err
	}
	if err := goose.RunContext(ctx, command, db, path, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// Current returns the schema version recorded in db.
func Current(db *sql.DB, driver string) (int64, error) {
	if _, err := prepare(driver, Embedded); err != nil {
		return 0, err
	}
	v, err := goose.GetDBVersion(db)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}

// MigrateToVersion moves the schema up or down to target (YYYYMMDDHHMMSS).
func MigrateToVersion(ctx context.Context, db *sql.DB, driver, dir, target string) error {
	version, err := strconv.ParseInt(strings.TrimSpace(target), 10, 64)
	if err != nil || version <= 0 {
		return fmt.Errorf("invalid target version %q (expected YYYYMMDDHHMMSS)", target)
	}
	current, err := Current(db, driver)
	if err != nil {
		return err
	}
	path, err := prepare(driver, dir)
	if err != nil {
		return err
	}

	switch {
	case version > current:
		err = goose.UpToContext(ctx, db, path, version)
	case version < current:
		err = goose.DownToContext(ctx, db, path, version)
	}
	if err != nil {
		return fmt.Errorf("migrate %d -> %d: %w", current, version, err)
	}
	return nil
}
