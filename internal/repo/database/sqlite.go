// Package database owns the SQLite connection shared by the repositories and
// keeps its schema up to date.
package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/mkrupp/homecase-anime/internal/infra/logging"
)

// SQLiteConfig holds configuration for the SQLite database.
type SQLiteConfig struct {
	// DatabasePath is the filesystem path to the SQLite database file
	DatabasePath string `env:"DATABASE_PATH" default:"var/storage/animesvc.db"`

	// BusyTimeout is how long a connection waits for a lock held by another one
	BusyTimeout time.Duration `env:"BUSY_TIMEOUT" default:"5s"`

	// ConnMaxLifetime bounds how long a pooled connection is reused
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" default:"5m"`
}

// DB is the database handle shared by all repositories.
type DB struct {
	*sql.DB

	log       logging.Logger
	writeLock *sync.Mutex // sqlite allows a single writer at a time
}

//go:embed migrations/*.sql
var migrationsFS embed.FS

var migrationFileRe = regexp.MustCompile(`^(\d{4})_.+\.up\.sql$`)

// OpenSQLite opens (or creates) the database described by cfg and applies
// pending migrations.
func OpenSQLite(ctx context.Context, cfg SQLiteConfig) (*DB, error) {
	log := logging.GetLogger("repo.database.sqlite").With(
		logging.Group("db", "path", cfg.DatabasePath),
	)

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("ping db: %w", err)
	}

	wrapped := &DB{
		DB:        db,
		log:       log,
		writeLock: new(sync.Mutex),
	}

	if err := wrapped.migrate(ctx); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("migrate db: %w", err)
	}

	log.DebugContext(ctx, "database ready")

	return wrapped, nil
}

func dsn(cfg SQLiteConfig) string {
	pragmas := []string{
		"_pragma=busy_timeout(" + strconv.FormatInt(cfg.BusyTimeout.Milliseconds(), 10) + ")",
		"_pragma=foreign_keys(1)",
		"_pragma=journal_mode(WAL)",
	}

	sep := "?"
	if strings.Contains(cfg.DatabasePath, "?") {
		sep = "&"
	}

	return cfg.DatabasePath + sep + strings.Join(pragmas, "&")
}

// WithTx runs fn inside a write transaction. The transaction is committed
// when fn returns nil and rolled back otherwise.
func (db *DB) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	db.writeLock.Lock()
	defer db.writeLock.Unlock()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
			}
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

func (db *DB) migrate(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			applied_at INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}

	type migration struct {
		version int
		file    string
	}

	var migrations []migration

	for _, entry := range entries {
		m := migrationFileRe.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}

		version, _ := strconv.Atoi(m[1])
		migrations = append(migrations, migration{version: version, file: "migrations/" + entry.Name()})
	}

	sort.Slice(migrations, func(i, j int) bool { return migrations[i].version < migrations[j].version })

	for _, m := range migrations {
		script, err := migrationsFS.ReadFile(m.file)
		if err != nil {
			return fmt.Errorf("read %s: %w", m.file, err)
		}

		err = db.WithTx(ctx, func(tx *sql.Tx) error {
			var applied int
			if err := tx.QueryRowContext(ctx,
				"SELECT COUNT(*) FROM schema_migrations WHERE version = ?", m.version,
			).Scan(&applied); err != nil {
				return fmt.Errorf("query version: %w", err)
			}

			if applied > 0 {
				return nil
			}

			if _, err := tx.ExecContext(ctx, string(script)); err != nil {
				return fmt.Errorf("apply %s: %w", m.file, err)
			}

			if _, err := tx.ExecContext(ctx,
				"INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)", m.version, time.Now().Unix(),
			); err != nil {
				return fmt.Errorf("record version: %w", err)
			}

			db.log.InfoContext(ctx, "migration applied", "version", m.version)

			return nil
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// Close releases the database connection pool.
func (db *DB) Close() error {
	if err := db.DB.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}

	return nil
}
