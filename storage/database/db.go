package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"

	"github.com/semsync/semsync/core"
	"github.com/semsync/semsync/storage/database/migrations"
)

const driverName = "postgres"

func open(dbName string, admin bool, conf *core.Config) (*sqlx.DB, error) {
	user := url.UserPassword(conf.Database.User, conf.Database.Password)
	if admin && conf.Database.AdminUser != "" {
		user = url.UserPassword(conf.Database.AdminUser, conf.Database.AdminPassword)
	}

	sslMode := "require"
	if conf.Database.DisableTLS {
		sslMode = "disable"
	}
	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   driverName,
		User:     user,
		Host:     conf.Database.Address(),
		Path:     dbName,
		RawQuery: q.Encode(),
	}
	return sqlx.Open(driverName, u.String())
}

func Open(conf *core.Config) (*sqlx.DB, error) {
	return open(conf.Database.Name, false, conf)
}

// OpenURL opens a database from a full postgres URL (eg. TEST_DATABASE_URL).
func OpenURL(dsn string) (*sqlx.DB, error) {
	return sqlx.Open(driverName, dsn)
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(ctx context.Context, db *sqlx.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "DB ping")
		case <-time.After(time.Duration(attempts) * 100 * time.Millisecond):
		}
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

// exists runs a `SELECT true ...` query and reports whether it returned a row.
func exists(ctx context.Context, db *sqlx.DB, query string, args ...interface{}) (bool, error) {
	var found bool
	if err := db.QueryRowContext(ctx, query, args...).Scan(&found); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return found, nil
}

func createAppUser(ctx context.Context, db *sqlx.DB, conf *core.Config) error {
	if conf.Database.User == "" {
		return nil
	}

	found, err := exists(ctx, db, "SELECT true FROM pg_roles WHERE rolname = $1", conf.Database.User)
	if err != nil {
		return errors.Wrap(err, "checking app user")
	}
	if found {
		return nil
	}

	// identifiers & passwords cannot be bound as query params
	q := fmt.Sprintf(
		"CREATE USER %s CREATEDB ENCRYPTED PASSWORD %s",
		pq.QuoteIdentifier(conf.Database.User), pq.QuoteLiteral(conf.Database.Password),
	)
	if _, err = db.ExecContext(ctx, q); err != nil {
		return errors.Wrap(err, "creating app user")
	}
	return nil
}

func createDB(ctx context.Context, db *sqlx.DB, conf *core.Config) error {
	found, err := exists(ctx, db, "SELECT true FROM pg_database WHERE datname = $1", conf.Database.Name)
	if err != nil {
		return errors.Wrap(err, "checking DB")
	}
	if found {
		return nil
	}
	if _, err = db.ExecContext(ctx, "CREATE DATABASE "+pq.QuoteIdentifier(conf.Database.Name)); err != nil {
		return errors.Wrap(err, "creating database")
	}
	return nil
}

// CreateIfNotExist creates the app user (as admin) & the app database (as the app user).
func CreateIfNotExist(ctx context.Context, conf *core.Config) error {
	// connect as admin
	adminDB, err := open("postgres", true, conf)
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer func() { _ = adminDB.Close() }()

	if err = ping(ctx, adminDB); err != nil {
		return errors.Wrap(err, "pinging database")
	}
	if err = createAppUser(ctx, adminDB, conf); err != nil {
		return err
	}

	// create DB as app user
	db, err := open("postgres", false, conf)
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer func() { _ = db.Close() }()
	return createDB(ctx, db, conf)
}

func init() {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect(driverName); err != nil {
		panic(err)
	}
}

// Migrate applies all pending migrations.
func Migrate(db *sql.DB) error {
	return RunMigration(context.Background(), "up", db)
}

// RunMigration runs a goose command (up, down, status, redo, ...) against the embedded migrations.
func RunMigration(ctx context.Context, command string, db *sql.DB, args ...string) error {
	if err := goose.RunContext(ctx, command, db, ".", args...); err != nil {
		return errors.Wrapf(err, "running migration %q", command)
	}
	return nil
}

// Store adapts a *sqlx.DB to core.Store.
type Store struct {
	db *sqlx.DB
}

var _ core.Store = (*Store)(nil)

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) DB() *sqlx.DB { return s.db }

func (s *Store) Ping(ctx context.Context) error { return ping(ctx, s.db) }

func (s *Store) Close(context.Context) error { return s.db.Close() }
