// Package config loads server configuration from defaults, an optional YAML
// file, STOREFRONT_* environment variables and command-line flags, in that order.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Config holds process configuration.
type Config struct {
	Addr      string        `yaml:"addr"`
	Dev       bool          `yaml:"dev"`
	LogLevel  string        `yaml:"log_level"`
	JWTKey    string        `yaml:"jwt_key"`
	AccessTTL time.Duration `yaml:"access_ttl"`
	Storage   Storage       `yaml:"storage"`
}

// Storage selects the persistence backend.
type Storage struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`    // file path, postgres DSN or redis:// URL
	Prefix string `yaml:"prefix"` // key prefix (redis only)
}

// Default returns the development defaults.
func Default() Config {
	return Config{
		Addr:      ":8080",
		LogLevel:  "info",
		AccessTTL: 12 * time.Hour,
		Storage: Storage{
			Driver: DriverMemory,
			Prefix: "reiner_lojas_",
		},
	}
}

// Load builds the configuration for args (without the program name).
func Load(args []string) (Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := Default()

	fs := flag.NewFlagSet("storefront", flag.ContinueOnError)
	path := fs.String("config", os.Getenv("STOREFRONT_CONFIG"), "YAML config file")
	addr := fs.String("addr", cfg.Addr, "listen address")
	dev := fs.Bool("dev", cfg.Dev, "development mode")
	logLevel := fs.String("log-level", cfg.LogLevel, "log level")
	jwtKey := fs.String("jwt-key", "", "HS256 signing key")
	ttl := fs.Duration("access-ttl", cfg.AccessTTL, "access token TTL")
	driver := fs.String("storage", cfg.Storage.Driver, "storage driver: memory|sqlite|postgres|redis")
	dsn := fs.String("dsn", "", "storage DSN")
	prefix := fs.String("prefix", cfg.Storage.Prefix, "storage key prefix")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if *path != "" {
		if err := loadFile(*path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Addr = *addr
		case "dev":
			cfg.Dev = *dev
		case "log-level":
			cfg.LogLevel = *logLevel
		case "jwt-key":
			cfg.JWTKey = *jwtKey
		case "access-ttl":
			cfg.AccessTTL = *ttl
		case "storage":
			cfg.Storage.Driver = *driver
		case "dsn":
			cfg.Storage.DSN = *dsn
		case "prefix":
			cfg.Storage.Prefix = *prefix
		}
	})

	return cfg, cfg.Validate()
}

func loadFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	str := map[string]*string{
		"STOREFRONT_ADDR":           &cfg.Addr,
		"STOREFRONT_LOG_LEVEL":      &cfg.LogLevel,
		"STOREFRONT_JWT_KEY":        &cfg.JWTKey,
		"STOREFRONT_STORAGE_DRIVER": &cfg.Storage.Driver,
		"STOREFRONT_STORAGE_DSN":    &cfg.Storage.DSN,
		"STOREFRONT_STORAGE_PREFIX": &cfg.Storage.Prefix,
	}
	for k, dst := range str {
		if v, ok := os.LookupEnv(k); ok {
			*dst = v
		}
	}
	if v, ok := os.LookupEnv("STOREFRONT_DEV"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("STOREFRONT_DEV: %w", err)
		}
		cfg.Dev = b
	}
	if v, ok := os.LookupEnv("STOREFRONT_ACCESS_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("STOREFRONT_ACCESS_TTL: %w", err)
		}
		cfg.AccessTTL = d
	}
	return nil
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMemory:
	case DriverSQLite, DriverPostgres, DriverRedis:
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage %s requires a dsn", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.AccessTTL <= 0 {
		return errors.New("access ttl must be positive")
	}
	if c.JWTKey == "" && !c.Dev {
		return errors.New("missing jwt signing key (--jwt-key)")
	}
	return nil
}
