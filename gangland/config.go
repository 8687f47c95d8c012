package gangland

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/pelletier/go-toml/v2"

	"github.com/gangland/server/gangland/config"
	"github.com/gangland/server/gangland/database"
	"github.com/gangland/server/gangland/services"
)

// LoadConfig reads a TOML file over the built-in defaults.
func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	cfg := DefaultConfig()
	dec := toml.NewDecoder(file)
	dec.DisallowUnknownFields()
	if err = dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{Level: slog.LevelInfo},
		DB: database.DBConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "postgres",
			Database: "gangland",
			PoolSize: 10,
		},
		API: APIConfig{
			Addr:            ":8080",
			RateLimit:       config.GlobalRateLimit,
			ActionRateLimit: config.ActionRateLimit,
			SessionTTL:      Duration{config.SessionTimeout},
		},
		Game: GameConfig{
			CrimePolicy:  "fixed",
			HospitalGate: true,
		},
		Cache: CacheConfig{
			Size:      config.CacheSize,
			TablesTTL: Duration{config.TablesCacheExpiration},
		},
		Mongo: MongoConfig{
			Database:   "gangland",
			Collection: "players",
		},
	}
}

type Config struct {
	Log    LogConfig             `toml:"log"`
	DB     database.DBConfig     `toml:"db"`
	API    APIConfig             `toml:"api"`
	Spaces services.SpacesConfig `toml:"spaces"`
	Feed   FeedConfig            `toml:"feed"`
	Stats  services.StatsConfig  `toml:"stats"`
	Mongo  MongoConfig           `toml:"mongo"`
	Game   GameConfig            `toml:"game"`
	Cache  CacheConfig           `toml:"cache"`
}

func (c *Config) Validate() error {
	if c.API.SessionSecret == "" {
		return fmt.Errorf("api.session_secret is required")
	}
	if len(c.API.SessionSecret) < 32 {
		return fmt.Errorf("api.session_secret must be at least 32 bytes")
	}
	switch c.Game.CrimePolicy {
	case "", "fixed", "augmented":
	default:
		return fmt.Errorf("game.crime_policy %q is not one of fixed, augmented", c.Game.CrimePolicy)
	}
	if c.Feed.Enabled() && c.Feed.Token == "" {
		return fmt.Errorf("feed.token is required when feed.channel_id is set")
	}
	if c.Stats.Enabled() && (c.Stats.Org == "" || c.Stats.Bucket == "") {
		return fmt.Errorf("stats.org and stats.bucket are required when stats.url is set")
	}
	return nil
}

type LogConfig struct {
	Level   slog.Level `toml:"level"`
	NoColor bool       `toml:"no_color"`
}

type APIConfig struct {
	Addr            string   `toml:"addr"`
	SessionSecret   string   `toml:"session_secret"`
	SessionTTL      Duration `toml:"session_ttl"`
	AllowOrigins    string   `toml:"allow_origins"`
	RateLimit       int      `toml:"rate_limit"`
	ActionRateLimit int      `toml:"action_rate_limit"`
}

// FeedConfig points the kill feed at a Discord channel. An empty channel
// disables it.
type FeedConfig struct {
	Token     string       `toml:"token"`
	ChannelID snowflake.ID `toml:"channel_id"`
}

func (c FeedConfig) Enabled() bool {
	return c.ChannelID != 0
}

type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

type GameConfig struct {
	CrimePolicy  string `toml:"crime_policy"`
	HospitalGate bool   `toml:"hospital_gate"`
	// Seed fixes the RNG for replays. Zero means random.
	Seed uint64 `toml:"seed"`
}

type CacheConfig struct {
	Size      int      `toml:"size"`
	TablesTTL Duration `toml:"tables_ttl"`
}

// Duration decodes TOML strings such as "30s" or "5m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}
