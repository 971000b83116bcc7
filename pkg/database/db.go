package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	migrate "github.com/rubenv/sql-migrate"
	"github.com/samber/lo"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
)

const (
	DriverPG  = "pg"
	DriverPGX = "pgx"

	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 25
	defaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type Config struct {
	URL      string `env:"DATABASE_URL"`
	Driver   string `env:"DB_DRIVER" envDefault:"pg"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     int    `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD"`
	Name     string `env:"DB_NAME" envDefault:"studybot"`
	SSL      bool   `env:"DB_SSL" envDefault:"false"`
}

// DSN returns URL when set, otherwise a postgres URL built from the
// discrete fields. SSL means TLS without certificate verification.
func (c Config) DSN() string {
	if c.URL != "" {
		return c.URL
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Name,
		RawQuery: url.Values{"sslmode": {lo.Ternary(c.SSL, "require", "disable")}}.Encode(),
	}
	return u.String()
}

func NewDB(cfg Config) (*bun.DB, error) {
	dsn := cfg.DSN()
	slog.Info("postgres connection configured", "host", cfg.Host, "port", cfg.Port, "database", cfg.Name, "driver", cfg.Driver, "ssl", cfg.SSL)

	var sqlDB *sql.DB
	switch cfg.Driver {
	case "", DriverPG:
		sqlDB = sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	case DriverPGX:
		connConfig, err := pgx.ParseConfig(dsn)
		if err != nil {
			return nil, fmt.Errorf("parsing pgx config: %w", err)
		}
		sqlDB = stdlib.OpenDB(*connConfig)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	sqlDB.SetMaxOpenConns(defaultMaxOpenConns)
	sqlDB.SetMaxIdleConns(defaultMaxIdleConns)
	sqlDB.SetConnMaxLifetime(defaultConnMaxLifetime)

	bunDB := bun.NewDB(sqlDB, pgdialect.New())
	bunDB.AddQueryHook(bundebug.NewQueryHook(
		bundebug.WithVerbose(true),
		bundebug.FromEnv("BUNDEBUG"),
	))

	return bunDB, nil
}

// Ping makes a single connectivity attempt.
func Ping(ctx context.Context, db *bun.DB) error {
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	slog.InfoContext(ctx, "database connection has been established")
	return nil
}

// Migrate creates missing tables. Applied migrations are skipped, so it is
// safe to run on every start.
func Migrate(db *bun.DB) (int, error) {
	source := &migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrationsFS,
		Root:       "migrations",
	}
	n, err := migrate.Exec(db.DB, "postgres", source, migrate.Up)
	if err != nil {
		return 0, fmt.Errorf("running migrations: %w", err)
	}
	return n, nil
}
