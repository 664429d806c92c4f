package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	EnvConfigPath = "TICKETHUB_CONFIG_PATH"

	defaultDevSecret = "tickethub-dev-secret"
)

func Default() *Config {
	return &Config{
		Env: "development",
		HTTP: HTTPConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: 5 * time.Second,
			ShutdownTimeout:   15 * time.Second,
			MaxRequestBytes:   1 << 20,
		},
		DB: DBConfig{
			Driver:             DriverPostgres,
			Host:               "localhost",
			Port:               "5432",
			User:               "postgres",
			Name:               "tickethub",
			SSLMode:            "disable",
			SQLitePath:         "tickethub.db",
			MaxOpenConns:       20,
			SlowQueryThreshold: time.Second,
		},
		Auth: AuthConfig{
			JWTSecretKey: defaultDevSecret,
			DevTokenTTL:  24 * time.Hour,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://127.0.0.1:3000",
				"http://localhost:5173",
				"http://127.0.0.1:5173",
			},
		},
		Redis: RedisConfig{Channel: "tickethub:sse"},
		Analytics: AnalyticsConfig{
			Timezone: "UTC",
		},
		Otel: OtelConfig{
			ServiceName: "tickethub",
			SampleRatio: 0.1,
		},
		Metrics: MetricsConfig{ScrapeInterval: 10 * time.Second},
	}
}

// Load reads the process environment and the optional YAML file it points to.
func Load() (*Config, error) {
	return LoadFrom(env.ToMap(os.Environ()))
}

// LoadFrom is Load with an explicit environment.
func LoadFrom(environ map[string]string) (*Config, error) {
	cfg := Default()

	path := strings.TrimSpace(environ[EnvConfigPath])
	if path == "" {
		if wd, err := os.Getwd(); err == nil {
			p := filepath.Join(wd, "config", "tickethub.yaml")
			if _, err := os.Stat(p); err == nil {
				path = p
			}
		}
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() error {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	if c.Env == "" {
		c.Env = "development"
	}
	if strings.TrimSpace(c.HTTP.Addr) == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.HTTP.MaxRequestBytes <= 0 {
		c.HTTP.MaxRequestBytes = 1 << 20
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		c.HTTP.ShutdownTimeout = 15 * time.Second
	}

	c.DB.Driver = strings.ToLower(strings.TrimSpace(c.DB.Driver))
	switch c.DB.Driver {
	case DriverPostgres, DriverSQLite:
	case "":
		c.DB.Driver = DriverPostgres
	default:
		return fmt.Errorf("unsupported db driver %q", c.DB.Driver)
	}
	if c.DB.Driver == DriverSQLite && strings.TrimSpace(c.DB.SQLitePath) == "" {
		return errors.New("sqlite driver requires sqlite_path")
	}

	c.Auth.JWTSecretKey = strings.TrimSpace(c.Auth.JWTSecretKey)
	if c.Auth.JWTSecretKey == "" {
		return errors.New("jwt secret key is required")
	}
	if c.IsProduction() && c.Auth.JWTSecretKey == defaultDevSecret {
		return errors.New("JWT_SECRET_KEY must be set in production")
	}

	origins := c.CORS.AllowedOrigins[:0]
	for _, o := range c.CORS.AllowedOrigins {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			origins = append(origins, o)
		}
	}
	c.CORS.AllowedOrigins = origins

	if strings.TrimSpace(c.Redis.Channel) == "" {
		c.Redis.Channel = "tickethub:sse"
	}

	tz := strings.TrimSpace(c.Analytics.Timezone)
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("analytics timezone %q: %w", tz, err)
	}
	c.Analytics.Timezone = tz
	c.Analytics.location = loc

	if c.Otel.SampleRatio < 0 {
		c.Otel.SampleRatio = 0
	}
	if c.Otel.SampleRatio > 1 {
		c.Otel.SampleRatio = 1
	}
	if strings.TrimSpace(c.Otel.ServiceName) == "" {
		c.Otel.ServiceName = "tickethub"
	}
	if c.Otel.Environment == "" {
		c.Otel.Environment = c.Env
	}
	if c.Metrics.ScrapeInterval <= 0 {
		c.Metrics.ScrapeInterval = 10 * time.Second
	}
	return nil
}

// PostgresDSN renders the connection string for the postgres driver.
func (d DBConfig) PostgresDSN() string {
	if dsn := strings.TrimSpace(d.DSN); dsn != "" {
		return dsn
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Name,
		d.SSLMode,
	)
}
