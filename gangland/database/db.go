package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/gangland/server/gangland/config"
	"github.com/gangland/server/internal/gateways/database/models"
)

const (
	defaultRetryInterval = time.Second
	schemaVersion        = 1 // bump when tables or indexes change
)

type DBConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	Database     string `toml:"database"`
	SSLMode      string `toml:"ssl_mode"`
	PoolSize     int    `toml:"pool_size"`
	MaxIdleConns int    `toml:"max_idle_conns"`
	MaxLifetime  int    `toml:"max_lifetime"`
}

// DB pairs a pgx pool for raw statements with a bun handle for the
// repositories.
type DB struct {
	pool  *pgxpool.Pool
	bunDB *bun.DB
}

func New(ctx context.Context, cfg DBConfig) (*DB, error) {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	var (
		conn net.Conn
		err  error
	)
	for i := 0; i < config.DialRetries; i++ {
		if conn, err = dial(addr); err == nil {
			break
		}
		slog.Warn("Database not reachable, retrying",
			slog.String("type", "db"),
			slog.String("addr", addr),
			slog.Int("attempt", i+1))
		time.Sleep(defaultRetryInterval)
	}
	if err != nil {
		return nil, fmt.Errorf("database server unreachable after %d attempts: %w", config.DialRetries, err)
	}
	conn.Close()

	poolConfig, err := pgxpool.ParseConfig(buildConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	if cfg.PoolSize > 0 {
		poolConfig.MaxConns = int32(cfg.PoolSize)
	}
	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = int32(cfg.MaxIdleConns)
	}
	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = time.Duration(cfg.MaxLifetime) * time.Second
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	return &DB{pool: pool, bunDB: newBunDB(cfg)}, nil
}

// dial prefers IPv4 and falls back to IPv6 unless DB_DIAL_FORCE_IPV4 or
// DB_DIAL_FORCE_IPV6 pins one.
func dial(addr string) (net.Conn, error) {
	switch {
	case os.Getenv("DB_DIAL_FORCE_IPV4") == "1":
		return net.DialTimeout("tcp4", addr, config.NetworkDialTimeout)
	case os.Getenv("DB_DIAL_FORCE_IPV6") == "1":
		return net.DialTimeout("tcp6", addr, config.NetworkDialTimeout)
	}
	if c, err := net.DialTimeout("tcp4", addr, config.NetworkDialTimeout); err == nil {
		return c, nil
	}
	return net.DialTimeout("tcp6", addr, config.NetworkDialTimeout)
}

func sslMode(cfg DBConfig) string {
	if cfg.SSLMode != "" {
		return cfg.SSLMode
	}
	if env := os.Getenv("PG_SSLMODE"); env != "" {
		return env
	}
	return "disable"
}

func buildConnString(cfg DBConfig) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?connect_timeout=5&sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, sslMode(cfg),
	)
}

func newBunDB(cfg DBConfig) *bun.DB {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, sslMode(cfg))
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	if cfg.PoolSize > 0 {
		sqldb.SetMaxOpenConns(cfg.PoolSize)
	}
	return bun.NewDB(sqldb, pgdialect.New())
}

func (db *DB) BunDB() *bun.DB {
	return db.bunDB
}

func (db *DB) ExecWithLog(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	start := time.Now()
	result, err := db.pool.Exec(ctx, sql, args...)
	took := time.Since(start)

	if err != nil {
		slog.Error("Query failed",
			slog.String("type", "db"),
			slog.String("operation", "exec"),
			slog.String("query", sql),
			slog.Duration("took", took),
			slog.String("error", err.Error()))
		return result, err
	}
	slog.Debug("Query executed",
		slog.String("type", "db"),
		slog.String("operation", "exec"),
		slog.String("query", sql),
		slog.Duration("took", took),
		slog.Int64("affected_rows", result.RowsAffected()))
	return result, nil
}

// Ping verifies both connections are working
func (db *DB) Ping(ctx context.Context) error {
	if err := db.pool.Ping(ctx); err != nil {
		return fmt.Errorf("pgxpool ping failed: %w", err)
	}
	if err := db.bunDB.PingContext(ctx); err != nil {
		return fmt.Errorf("bun ping failed: %w", err)
	}
	return nil
}

func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
	if db.bunDB != nil {
		db.bunDB.Close()
	}
}

var gameTables = []any{
	(*models.Player)(nil),
	(*models.BulletFactory)(nil),
	(*models.CarListing)(nil),
	(*models.PlayerCooldown)(nil),
	(*models.CrimeAttempt)(nil),
}

var gameIndexes = []string{
	"CREATE UNIQUE INDEX IF NOT EXISTS idx_players_username_lower ON players(lower(username));",
	"CREATE UNIQUE INDEX IF NOT EXISTS idx_car_listings_active_car ON car_listings(car_id) WHERE active;",
	"CREATE INDEX IF NOT EXISTS idx_car_listings_browse ON car_listings(created_at DESC) WHERE active;",
	"CREATE INDEX IF NOT EXISTS idx_car_listings_seller ON car_listings(seller_id) WHERE active;",
	"CREATE INDEX IF NOT EXISTS idx_crime_attempts_player ON crime_attempts(player_id, at DESC);",
	"CREATE UNIQUE INDEX IF NOT EXISTS idx_players_factory ON players(bullet_factory_id) WHERE bullet_factory_id IS NOT NULL;",
}

// InitializeSchema creates the game tables and indexes. With DB_FAST_INIT=1 it
// returns early when the recorded schema version is current.
func (db *DB) InitializeSchema(ctx context.Context) error {
	if os.Getenv("DB_FAST_INIT") == "1" {
		if v, err := db.schemaVersion(ctx); err == nil && v == schemaVersion {
			slog.Info("Schema up to date, skipping initialization",
				slog.String("type", "db"),
				slog.Int("schema_version", schemaVersion))
			return nil
		}
	}

	for _, model := range gameTables {
		if _, err := db.bunDB.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	for _, idx := range gameIndexes {
		if _, err := db.ExecWithLog(ctx, idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	if _, err := db.ExecWithLog(ctx, `CREATE TABLE IF NOT EXISTS app_meta (key TEXT PRIMARY KEY, value TEXT)`); err != nil {
		return fmt.Errorf("failed to create app_meta: %w", err)
	}
	_, err := db.pool.Exec(ctx, `INSERT INTO app_meta(key, value) VALUES('schema_version', $1)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, strconv.Itoa(schemaVersion))
	return err
}

func (db *DB) schemaVersion(ctx context.Context) (int, error) {
	var v string
	if err := db.pool.QueryRow(ctx, `SELECT value FROM app_meta WHERE key = 'schema_version'`).Scan(&v); err != nil {
		return 0, err
	}
	return strconv.Atoi(v)
}

// ResetGameTables truncates every game table. Used before a full legacy import.
func (db *DB) ResetGameTables(ctx context.Context) error {
	names := []string{"crime_attempts", "player_cooldowns", "car_listings", "bullet_factories", "players"}
	stmt := "TRUNCATE TABLE " + joinIdentifiers(names) + " RESTART IDENTITY CASCADE;"
	if _, err := db.ExecWithLog(ctx, stmt); err != nil {
		return fmt.Errorf("failed to truncate tables: %w", err)
	}
	slog.Info("Game tables truncated", slog.String("type", "db"), slog.Any("tables", names))
	return nil
}

func joinIdentifiers(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = `"` + n + `"`
	}
	return strings.Join(quoted, ", ")
}
