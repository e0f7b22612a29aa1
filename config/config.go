package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v2"
)

// Config holds all application configuration. Values come from the built-in
// defaults, then an optional YAML file, then environment variables (a .env
// file is loaded into the environment first).
type Config struct {
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
	Workers  int    `yaml:"workers"`

	GeocoderURL         string `yaml:"geocoder_url"`
	GeocoderUserAgent   string `yaml:"geocoder_user_agent"`
	GeocoderTimeoutMs   int    `yaml:"geocoder_timeout_ms"`
	GeocoderMaxRetries  int    `yaml:"geocoder_max_retries"`
	GeocoderMinDelayMs  int    `yaml:"geocoder_min_delay_ms"`
	GeocoderErrorWaitMs int    `yaml:"geocoder_error_wait_ms"`
	GeocoderMaxPerHour  int    `yaml:"geocoder_max_per_hour"`

	PriceFromText bool `yaml:"price_from_text"`

	PostgresEnabled  bool   `yaml:"postgres_enabled"`
	PostgresHost     string `yaml:"postgres_host"`
	PostgresPort     string `yaml:"postgres_port"`
	PostgresUser     string `yaml:"postgres_user"`
	PostgresPassword string `yaml:"postgres_password"`
	PostgresDB       string `yaml:"postgres_db"`
	PostgresSSLMode  string `yaml:"postgres_sslmode"`

	SQLitePath string `yaml:"sqlite_path"`

	// EnvFileLoaded reports whether a .env file was found.
	EnvFileLoaded bool `yaml:"-"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Workers:  4,

		GeocoderUserAgent:   "kijiji-rentals",
		GeocoderTimeoutMs:   3000,
		GeocoderMaxRetries:  3,
		GeocoderMinDelayMs:  1000,
		GeocoderErrorWaitMs: 2000,

		PriceFromText: true,

		PostgresHost:    "localhost",
		PostgresPort:    "5432",
		PostgresUser:    "rentals",
		PostgresDB:      "rental_db",
		PostgresSSLMode: "disable",
	}
}

// Load reads the .env file, the optional YAML file at path and the
// environment, and returns the merged Config.
func Load(path string) (*Config, error) {
	cfg := Default()
	cfg.EnvFileLoaded = godotenv.Load() == nil

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrapf(err, "config: read %q", path)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, eris.Wrapf(err, "config: parse %q", path)
		}
	}

	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFile = getEnv("LOG_FILE", cfg.LogFile)
	cfg.Workers = getEnvInt("WORKERS", cfg.Workers)

	cfg.GeocoderURL = getEnv("GEOCODER_URL", cfg.GeocoderURL)
	cfg.GeocoderUserAgent = getEnv("GEOCODER_USER_AGENT", cfg.GeocoderUserAgent)
	cfg.GeocoderTimeoutMs = getEnvInt("GEOCODER_TIMEOUT_MS", cfg.GeocoderTimeoutMs)
	cfg.GeocoderMaxRetries = getEnvInt("GEOCODER_MAX_RETRIES", cfg.GeocoderMaxRetries)
	cfg.GeocoderMinDelayMs = getEnvInt("GEOCODER_MIN_DELAY_MS", cfg.GeocoderMinDelayMs)
	cfg.GeocoderErrorWaitMs = getEnvInt("GEOCODER_ERROR_WAIT_MS", cfg.GeocoderErrorWaitMs)
	cfg.GeocoderMaxPerHour = getEnvInt("GEOCODER_MAX_PER_HOUR", cfg.GeocoderMaxPerHour)

	cfg.PriceFromText = getEnvBool("PRICE_FROM_TEXT", cfg.PriceFromText)

	cfg.PostgresEnabled = getEnvBool("POSTGRES_ENABLED", cfg.PostgresEnabled)
	cfg.PostgresHost = getEnv("POSTGRES_HOST", cfg.PostgresHost)
	cfg.PostgresPort = getEnv("POSTGRES_PORT", cfg.PostgresPort)
	cfg.PostgresUser = getEnv("POSTGRES_USER", cfg.PostgresUser)
	cfg.PostgresPassword = getEnv("POSTGRES_PASSWORD", cfg.PostgresPassword)
	cfg.PostgresDB = getEnv("POSTGRES_DB", cfg.PostgresDB)
	cfg.PostgresSSLMode = getEnv("POSTGRES_SSLMODE", cfg.PostgresSSLMode)

	cfg.SQLitePath = getEnv("SQLITE_PATH", cfg.SQLitePath)

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func (c *Config) GeocoderTimeout() time.Duration {
	return time.Duration(c.GeocoderTimeoutMs) * time.Millisecond
}

func (c *Config) GeocoderMinDelay() time.Duration {
	return time.Duration(c.GeocoderMinDelayMs) * time.Millisecond
}

func (c *Config) GeocoderErrorWait() time.Duration {
	return time.Duration(c.GeocoderErrorWaitMs) * time.Millisecond
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(val))
		if err == nil {
			return b
		}
	}
	return fallback
}
