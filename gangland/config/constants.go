package config

import "time"

// Database and performance
const (
	DefaultQueryTimeout = 30 * time.Second
	ApplyTimeout        = 10 * time.Second
	BatchQueryTimeout   = 30 * time.Second
	NetworkDialTimeout  = 5 * time.Second
	DialRetries         = 3
	ImportBatchSize     = 200
)

// Background jobs
const (
	CooldownPruneInterval = 10 * time.Minute
	CooldownPruneGrace    = 1 * time.Hour
	BackgroundStopTimeout = 5 * time.Second
)

// Cache
const (
	TablesCacheExpiration = 5 * time.Minute
	CacheSize             = 1024
)

// API and rate limiting
const (
	GlobalRateLimit  = 50
	ActionRateLimit  = 10
	RateLimitWindow  = 1 * time.Minute
	RequestTimeout   = 15 * time.Second
	ShutdownTimeout  = 10 * time.Second
	SessionTimeout   = 24 * time.Hour
	DefaultPageSize  = 20
	MaxLookupResults = 10
)

// Log types
const (
	LogTypeCmd  = "cmd"
	LogTypeDB   = "db"
	LogTypeAPI  = "api"
	LogTypeGame = "game"
	LogTypeSys  = "sys"
)
