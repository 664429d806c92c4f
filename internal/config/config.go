package config

import "time"

// Config is the full service configuration. Values come from defaults, then
// an optional YAML file, then environment variables.
type Config struct {
	Env       string          `yaml:"env" env:"LOG_MODE"`
	HTTP      HTTPConfig      `yaml:"http"`
	DB        DBConfig        `yaml:"db"`
	Auth      AuthConfig      `yaml:"auth"`
	CORS      CORSConfig      `yaml:"cors"`
	Redis     RedisConfig     `yaml:"redis"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	Otel      OtelConfig      `yaml:"otel"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

type HTTPConfig struct {
	Addr              string        `yaml:"addr" env:"HTTP_ADDR"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" env:"HTTP_READ_HEADER_TIMEOUT"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT"`
	MaxRequestBytes   int64         `yaml:"max_request_bytes" env:"HTTP_MAX_REQUEST_BYTES"`
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type DBConfig struct {
	Driver string `yaml:"driver" env:"DB_DRIVER"`

	// DSN wins over the discrete postgres fields when set.
	DSN      string `yaml:"dsn" env:"POSTGRES_DSN"`
	Host     string `yaml:"host" env:"POSTGRES_HOST"`
	Port     string `yaml:"port" env:"POSTGRES_PORT"`
	User     string `yaml:"user" env:"POSTGRES_USER"`
	Password string `yaml:"password" env:"POSTGRES_PASSWORD"`
	Name     string `yaml:"name" env:"POSTGRES_NAME"`
	SSLMode  string `yaml:"sslmode" env:"POSTGRES_SSLMODE"`

	SQLitePath string `yaml:"sqlite_path" env:"SQLITE_PATH"`

	MaxOpenConns       int           `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
	SlowQueryThreshold time.Duration `yaml:"slow_query_threshold" env:"DB_SLOW_QUERY_THRESHOLD"`
}

type AuthConfig struct {
	JWTSecretKey string `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	// Issuer is checked against the "iss" claim when non-empty.
	Issuer      string        `yaml:"issuer" env:"JWT_ISSUER"`
	DevTokenTTL time.Duration `yaml:"dev_token_ttl" env:"JWT_DEV_TOKEN_TTL"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
}

type RedisConfig struct {
	Addr    string `yaml:"addr" env:"REDIS_ADDR"`
	Channel string `yaml:"channel" env:"REDIS_CHANNEL"`
}

type AnalyticsConfig struct {
	Timezone string `yaml:"timezone" env:"ANALYTICS_TIMEZONE"`

	location *time.Location
}

// Location is the zone used for day/week/month buckets.
func (a AnalyticsConfig) Location() *time.Location {
	if a.location == nil {
		return time.UTC
	}
	return a.location
}

type OtelConfig struct {
	Enabled     bool              `yaml:"enabled" env:"OTEL_ENABLED"`
	ServiceName string            `yaml:"service_name" env:"OTEL_SERVICE_NAME"`
	Environment string            `yaml:"environment" env:"OTEL_ENVIRONMENT"`
	Version     string            `yaml:"version" env:"OTEL_SERVICE_VERSION"`
	Endpoint    string            `yaml:"endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Headers     map[string]string `yaml:"headers" env:"OTEL_EXPORTER_OTLP_HEADERS" envSeparator:"," envKeyValSeparator:"="`
	Insecure    bool              `yaml:"insecure" env:"OTEL_EXPORTER_OTLP_INSECURE"`
	SampleRatio float64           `yaml:"sample_ratio" env:"OTEL_SAMPLER_RATIO"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled" env:"METRICS_ENABLED"`
	// ScrapeInterval is how often pool and redis gauges refresh.
	ScrapeInterval time.Duration `yaml:"scrape_interval" env:"METRICS_SCRAPE_INTERVAL"`
}

func (c *Config) IsProduction() bool {
	return c.Env == "prod" || c.Env == "production"
}
