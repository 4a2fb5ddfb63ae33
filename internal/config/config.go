package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Source      SourceConfig      `mapstructure:"source"`
	Destination DestinationConfig `mapstructure:"destination"`
	Reports     ReportsConfig     `mapstructure:"reports"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Log         LogConfig         `mapstructure:"log"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            int    `mapstructure:"port"`
	Host            string `mapstructure:"host"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SourceConfig describes the store catalog data is read from (Basic auth)
type SourceConfig struct {
	URL                  string   `mapstructure:"url"`
	Key                  string   `mapstructure:"key"`
	Secret               string   `mapstructure:"secret"`
	Timeout              int      `mapstructure:"timeout"`
	PerPage              int      `mapstructure:"per_page"`
	MaxRequestsPerSecond int      `mapstructure:"max_requests_per_second"`
	Proxies              []string `mapstructure:"proxies"`
}

// DestinationConfig describes the store catalog data is written to (OAuth1)
type DestinationConfig struct {
	URL            string `mapstructure:"url"`
	BaseURL        string `mapstructure:"base_url"`
	ConsumerKey    string `mapstructure:"consumer_key"`
	ConsumerSecret string `mapstructure:"consumer_secret"`
	Timeout        int    `mapstructure:"timeout"`

	// Source attribute id -> destination attribute id. Empty means both stores are
	// assumed to share attribute ids.
	AttributeIDMap map[string]int64 `mapstructure:"attribute_id_map"`
}

// StoreURL is the destination root; WC_BASE_URL is accepted when
// DESTINATION_WC_URL is not set.
func (d DestinationConfig) StoreURL() string {
	if d.URL != "" {
		return d.URL
	}
	return d.BaseURL
}

// ReportsConfig selects where run reports are kept: memory, redis or postgres
type ReportsConfig struct {
	Backend string `mapstructure:"backend"`
	Limit   int    `mapstructure:"limit"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.Name)
}

// RedisConfig holds Redis connection details
type RedisConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Password  string `mapstructure:"password"`
	Database  int    `mapstructure:"database"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Environment names used by existing deployments of the migrator.
var envBindings = map[string][]string{
	"source.url":                  {"SOURCE_WC_URL"},
	"source.key":                  {"SOURCE_WC_KEY"},
	"source.secret":               {"SOURCE_WC_SECRET"},
	"destination.url":             {"DESTINATION_WC_URL"},
	"destination.base_url":        {"WC_BASE_URL"},
	"destination.consumer_key":    {"WC_CONSUMER_KEY"},
	"destination.consumer_secret": {"WC_CONSUMER_SECRET"},
}

// Load reads .env, an optional config.yaml in the working directory and the
// environment, in increasing priority.
func Load() (*Config, error) {
	return LoadFrom(".")
}

func LoadFrom(dir string) (*Config, error) {
	// .env is optional; real environment variables win over it
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for key, names := range envBindings {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	config.Source.URL = strings.TrimRight(config.Source.URL, "/")
	config.Destination.URL = strings.TrimRight(config.Destination.URL, "/")
	config.Destination.BaseURL = strings.TrimRight(config.Destination.BaseURL, "/")

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the settings without which no migration can run.
func (c *Config) Validate() error {
	var errs []error
	if c.Source.URL == "" {
		errs = append(errs, errors.New("source.url (SOURCE_WC_URL) is required"))
	}
	if c.Destination.StoreURL() == "" {
		errs = append(errs, errors.New("destination.url (DESTINATION_WC_URL) is required"))
	}
	switch c.Reports.Backend {
	case "memory", "redis", "postgres":
	default:
		errs = append(errs, fmt.Errorf("reports.backend %q is not one of memory, redis, postgres", c.Reports.Backend))
	}
	return errors.Join(errs...)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.shutdown_timeout", 10)

	v.SetDefault("source.url", "")
	v.SetDefault("source.key", "")
	v.SetDefault("source.secret", "")
	v.SetDefault("source.timeout", 30)
	v.SetDefault("source.per_page", 0)
	v.SetDefault("source.max_requests_per_second", 0)
	v.SetDefault("source.proxies", []string{})

	v.SetDefault("destination.url", "")
	v.SetDefault("destination.base_url", "")
	v.SetDefault("destination.consumer_key", "")
	v.SetDefault("destination.consumer_secret", "")
	v.SetDefault("destination.timeout", 30)

	v.SetDefault("reports.backend", "memory")
	v.SetDefault("reports.limit", 100)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "wcmigrate")
	v.SetDefault("database.user", "wcmigrate")
	v.SetDefault("database.password", "wcmigrate")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.database", 0)
	v.SetDefault("redis.key_prefix", "wcmigrate:")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}
