package data

import (
	"context"
	"database/sql"
	"embed"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

const (
	DataFileName string = "data.db"

	driverSQLite   = "sqlite"
	driverPostgres = "postgres"

	createSchemaVersionSQL = `CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL
		)
	`

	selectSchemaVersionSQL = `SELECT COALESCE(MAX(version), 0) FROM schema_version`
	insertSchemaVersionSQL = `INSERT INTO schema_version (version, applied_at) VALUES (?, ?)`
)

var (
	//go:embed sql/*
	f embed.FS

	errDBNotInitialized = errors.New("database not initialized")

	// ErrNotFound is returned when a decision with the requested id does not exist.
	ErrNotFound = errors.New("decision not found")
)

type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

func (d Dialect) String() string {
	if d == Postgres {
		return driverPostgres
	}
	return driverSQLite
}

// ParseDialect derives the dialect from a DSN: postgres URLs select
// Postgres, anything else is treated as a sqlite file path.
func ParseDialect(dsn string) Dialect {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return Postgres
	}
	return SQLite
}

func dialectOf(db *sql.DB) Dialect {
	if _, ok := db.Driver().(*pq.Driver); ok {
		return Postgres
	}
	return SQLite
}

// Init opens the database and applies any pending schema migrations.
func Init(dsn string) error {
	if dsn == "" {
		return errors.New("dsn not specified")
	}

	db, err := GetDB(dsn)
	if err != nil {
		return errors.Wrapf(err, "error opening database: %s", redact(dsn))
	}
	defer db.Close()

	if err := migrate(context.Background(), db); err != nil {
		return errors.Wrapf(err, "failed to migrate database: %s", redact(dsn))
	}

	return nil
}

func GetDB(dsn string) (*sql.DB, error) {
	d := ParseDialect(dsn)
	conn, err := sql.Open(d.String(), dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database: %s", redact(dsn))
	}
	return conn, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	d := dialectOf(db)

	if _, err := db.ExecContext(ctx, createSchemaVersionSQL); err != nil {
		return errors.Wrap(err, "failed to create schema_version table")
	}

	var current int
	if err := db.QueryRowContext(ctx, selectSchemaVersionSQL).Scan(&current); err != nil {
		return errors.Wrap(err, "failed to read schema version")
	}

	dir := path.Join("sql", d.String())
	entries, err := fs.ReadDir(f, dir)
	if err != nil {
		return errors.Wrapf(err, "failed to list migrations in: %s", dir)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, e := range entries {
		v, err := migrationVersion(e.Name())
		if err != nil {
			return err
		}
		if v <= current {
			continue
		}

		b, err := f.ReadFile(path.Join(dir, e.Name()))
		if err != nil {
			return errors.Wrapf(err, "failed to read migration: %s", e.Name())
		}

		slog.Debug("applying migration", "dialect", d, "version", v)
		if err := applyMigration(ctx, db, v, string(b)); err != nil {
			return errors.Wrapf(err, "failed to apply migration: %s", e.Name())
		}
	}

	return nil
}

func applyMigration(ctx context.Context, db *sql.DB, version int, ddl string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}

	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Wrap(rbErr, "failed to rollback transaction")
		}
		return errors.Wrap(err, "failed to execute migration")
	}

	if _, err := tx.ExecContext(ctx, rebind(db, insertSchemaVersionSQL), version, formatTime(now())); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Wrap(rbErr, "failed to rollback transaction")
		}
		return errors.Wrap(err, "failed to record schema version")
	}

	return errors.Wrap(tx.Commit(), "failed to commit transaction")
}

// migrationVersion parses the numeric prefix of a migration file name (001_init.sql).
func migrationVersion(name string) (int, error) {
	prefix, _, ok := strings.Cut(name, "_")
	if !ok {
		return 0, errors.Errorf("invalid migration file name: %s", name)
	}
	v, err := strconv.Atoi(prefix)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid migration version: %s", name)
	}
	return v, nil
}

// rebind rewrites ? placeholders to $n for Postgres.
func rebind(db *sql.DB, query string) string {
	if dialectOf(db) != Postgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$")
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func redact(dsn string) string {
	if ParseDialect(dsn) != Postgres {
		return dsn
	}
	if at := strings.LastIndex(dsn, "@"); at > 0 {
		scheme, _, _ := strings.Cut(dsn, "://")
		return scheme + "://***" + dsn[at:]
	}
	return dsn
}

// Contains checks for val in list
func Contains[T comparable](list []T, val T) bool {
	if list == nil {
		return false
	}
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}
