package config

import (
	"time"

	"github.com/maxviazov/equalplay-service/internal/logger"
)

type Config struct {
	App      AppConfig           `mapstructure:"app"`
	Logger   logger.LoggerConfig `mapstructure:"logger" validate:"-"`
	Store    StoreConfig         `mapstructure:"store"`
	Postgres PostgresConfig      `mapstructure:"postgres"`
	Redis    RedisConfig         `mapstructure:"redis"`
	Match    MatchConfig         `mapstructure:"match"`
}

type AppConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
	Env     string `mapstructure:"env" validate:"oneof=dev test staging prod"`
	Port    int    `mapstructure:"port" validate:"min=1,max=65535"`
	// MatchID keys the persisted session; one process serves one match.
	MatchID string `mapstructure:"match_id" validate:"required"`
}

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

type StoreConfig struct {
	Driver string `mapstructure:"driver" validate:"oneof=memory postgres redis"`
}

type PostgresConfig struct {
	Host              string `mapstructure:"host"`
	Port              int    `mapstructure:"port"`
	User              string `mapstructure:"user"`
	Password          string `mapstructure:"password"`
	DBName            string `mapstructure:"db"`
	SSLMode           string `mapstructure:"sslmode"`
	MaxConns          int32  `mapstructure:"max_conns"`
	MinConns          int32  `mapstructure:"min_conns"`
	MaxConnLifetime   int    `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   int    `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod int    `mapstructure:"health_check_period"`
}

type RedisConfig struct {
	Addr      string        `mapstructure:"addr"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db" validate:"min=0"`
	KeyPrefix string        `mapstructure:"key_prefix"`
	TTL       time.Duration `mapstructure:"ttl"`
}

// MatchConfig seeds the session settings the first time a match is created.
// Out-of-range values are clamped, not rejected.
type MatchConfig struct {
	FieldTarget    int           `mapstructure:"field_target"`
	HalfMinutes    int           `mapstructure:"half_minutes"`
	MaxSuggestions int           `mapstructure:"max_suggestions"`
	PositionAware  bool          `mapstructure:"position_aware"`
	TickInterval   time.Duration `mapstructure:"tick_interval"`
	PersistEvery   int           `mapstructure:"persist_every"`
}
