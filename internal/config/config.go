// Package config loads service configuration from defaults, an optional
// YAML file, a .env file, and AISCHOOL_* environment variables, in that
// order of increasing priority.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the variable pointing at a YAML config file.
const EnvConfigPath = "AISCHOOL_CONFIG"

type Config struct {
	Env      string         `yaml:"env"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Cache    CacheConfig    `yaml:"cache"`
	Session  SessionConfig  `yaml:"session"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins     []string      `yaml:"cors_origins"`
}

type DatabaseConfig struct {
	// Path to the SQLite file. Empty means the default data-dir location.
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Addr        string        `yaml:"addr"`
	Password    string        `yaml:"password"`
	DB          int           `yaml:"db"`
	DialTimeout time.Duration `yaml:"dial_timeout"`
}

// Enabled reports whether a redis address was configured.
func (r RedisConfig) Enabled() bool { return r.Addr != "" }

type CacheConfig struct {
	// Backend is "auto", "memory" or "redis".
	Backend string `yaml:"backend"`
}

type SessionConfig struct {
	IdleTimeout   time.Duration `yaml:"idle_timeout"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Env: "development",
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"http://localhost:3000"},
		},
		Redis: RedisConfig{
			DialTimeout: 2 * time.Second,
		},
		Cache: CacheConfig{
			Backend: "auto",
		},
		Session: SessionConfig{
			IdleTimeout:   30 * time.Minute,
			SweepInterval: time.Minute,
		},
	}
}

// Load builds the configuration. path may be empty, in which case
// AISCHOOL_CONFIG is consulted; a missing file is only an error when a
// path was given explicitly.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	explicit := path != ""
	if path == "" {
		path = os.Getenv(EnvConfigPath)
		explicit = path != ""
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			if explicit || !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Env = getEnv("AISCHOOL_ENV", c.Env)
	c.Server.Addr = getEnv("AISCHOOL_ADDR", c.Server.Addr)
	if v := os.Getenv("AISCHOOL_CORS_ORIGINS"); v != "" {
		c.Server.CORSOrigins = splitList(v)
	}
	c.Database.Path = getEnv("AISCHOOL_DB", c.Database.Path)
	c.Redis.Addr = getEnv("AISCHOOL_REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("AISCHOOL_REDIS_PASSWORD", c.Redis.Password)
	c.Cache.Backend = getEnv("AISCHOOL_CACHE_BACKEND", c.Cache.Backend)

	var err error
	if c.Redis.DB, err = getEnvInt("AISCHOOL_REDIS_DB", c.Redis.DB); err != nil {
		return err
	}
	if c.Session.IdleTimeout, err = getEnvDuration("AISCHOOL_SESSION_IDLE_TIMEOUT", c.Session.IdleTimeout); err != nil {
		return err
	}
	if c.Session.SweepInterval, err = getEnvDuration("AISCHOOL_SESSION_SWEEP_INTERVAL", c.Session.SweepInterval); err != nil {
		return err
	}
	return nil
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case "auto", "memory":
	case "redis":
		if !c.Redis.Enabled() {
			return fmt.Errorf("cache backend redis requires AISCHOOL_REDIS_ADDR")
		}
	default:
		return fmt.Errorf("unknown cache backend %q (expected auto, memory or redis)", c.Cache.Backend)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server address is required")
	}
	if c.Session.IdleTimeout <= 0 {
		return fmt.Errorf("session idle timeout must be positive, got %s", c.Session.IdleTimeout)
	}
	if c.Session.SweepInterval <= 0 {
		return fmt.Errorf("session sweep interval must be positive, got %s", c.Session.SweepInterval)
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("redis db must be >= 0, got %d", c.Redis.DB)
	}
	return nil
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	e := strings.ToLower(c.Env)
	return e == "prod" || e == "production"
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, v)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
