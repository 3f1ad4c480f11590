package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/maxviazov/equalplay-service/internal/model"
	"github.com/spf13/viper"
)

// Load reads the YAML file at path and applies APP_* environment overrides
// (APP_POSTGRES_USER overrides postgres.user, and so on).
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	setDefaults(v)

	// secrets usually live only in the environment, so Unmarshal must know about them
	secrets := map[string][]string{
		"postgres.user":     {"APP_POSTGRES_USER", "POSTGRES_USER"},
		"postgres.password": {"APP_POSTGRES_PASSWORD", "POSTGRES_PASSWORD"},
		"postgres.db":       {"APP_POSTGRES_DB", "POSTGRES_DB"},
		"redis.password":    {"APP_REDIS_PASSWORD", "REDIS_PASSWORD"},
	}
	for key, envs := range secrets {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	var config Config
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config file not found: %w", err)
	}
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.Match = config.Match.normalize()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "equalplay-service")
	v.SetDefault("app.version", "0.1.0")
	v.SetDefault("app.env", "prod")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.match_id", "default")
	v.SetDefault("store.driver", DriverMemory)
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("match.field_target", model.DefaultFieldTarget)
	v.SetDefault("match.half_minutes", model.DefaultHalfMinutes)
	v.SetDefault("match.max_suggestions", model.DefaultMaxSuggestions)
	v.SetDefault("match.tick_interval", time.Second)
	v.SetDefault("match.persist_every", 5)
}

// Validate checks structural rules; driver-specific requirements are only enforced
// for the driver actually selected.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("config validation error: %w", err)
	}
	switch c.Store.Driver {
	case DriverPostgres:
		var missing []string
		if c.Postgres.User == "" {
			missing = append(missing, "postgres.user")
		}
		if c.Postgres.Password == "" {
			missing = append(missing, "postgres.password")
		}
		if c.Postgres.DBName == "" {
			missing = append(missing, "postgres.db")
		}
		if len(missing) > 0 {
			return fmt.Errorf("missing required postgres settings: %s", strings.Join(missing, ", "))
		}
	case DriverRedis:
		if c.Redis.Addr == "" {
			return errors.New("missing required redis setting: redis.addr")
		}
	}
	return nil
}

// Settings converts the seed values into clamped session settings.
func (m MatchConfig) Settings() model.Settings {
	return model.Settings{
		FieldTarget:    m.FieldTarget,
		HalfMinutes:    m.HalfMinutes,
		MaxSuggestions: m.MaxSuggestions,
		PositionAware:  m.PositionAware,
	}.Normalize()
}

func (m MatchConfig) normalize() MatchConfig {
	s := m.Settings()
	m.FieldTarget, m.HalfMinutes, m.MaxSuggestions = s.FieldTarget, s.HalfMinutes, s.MaxSuggestions
	if m.TickInterval < 0 {
		m.TickInterval = 0
	}
	if m.PersistEvery < 1 {
		m.PersistEvery = 1
	}
	return m
}
