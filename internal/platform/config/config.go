package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Apurer/pawmatch/internal/clients/http/fetchapi"
)

// Config carries environment-driven settings shared by the portal and the CLI.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Portal  PortalConfig  `yaml:"portal"`
	Breaker BreakerConfig `yaml:"breaker"`
}

type APIConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type PortalConfig struct {
	Port            string `yaml:"port"`
	PostgresDSN     string `yaml:"postgres_dsn"`
	SessionTTLHours int    `yaml:"session_ttl_hours"`
	// CookieHashKey signs the portal session cookie. Empty generates a per-process key.
	CookieHashKey string `yaml:"cookie_hash_key"`
	// CookieBlockKey optionally encrypts it (16, 24 or 32 bytes).
	CookieBlockKey string `yaml:"cookie_block_key"`
	SecureCookie   bool   `yaml:"secure_cookie"`
}

type BreakerConfig struct {
	MaxRequests     uint32  `yaml:"max_requests"`
	IntervalSeconds int     `yaml:"interval_seconds"`
	TimeoutSeconds  int     `yaml:"timeout_seconds"`
	MinRequests     uint32  `yaml:"min_requests"`
	FailureRatio    float64 `yaml:"failure_ratio"`
}

// Default returns the built-in settings.
func Default() Config {
	breaker := fetchapi.DefaultBreakerSettings()
	return Config{
		API: APIConfig{
			BaseURL:        fetchapi.DefaultBaseURL,
			TimeoutSeconds: int(fetchapi.DefaultTimeout / time.Second),
		},
		Portal: PortalConfig{
			Port:            "8080",
			SessionTTLHours: 24,
		},
		Breaker: BreakerConfig{
			MaxRequests:     breaker.MaxRequests,
			IntervalSeconds: int(breaker.Interval / time.Second),
			TimeoutSeconds:  int(breaker.Timeout / time.Second),
			MinRequests:     breaker.MinRequests,
			FailureRatio:    breaker.FailureRatio,
		},
	}
}

// Load reads the YAML file named by PAWMATCH_CONFIG, if any, then applies
// environment variables on top and validates the result.
func Load() (Config, error) {
	return LoadFrom(os.Getenv, os.ReadFile)
}

// LoadFrom is Load with injectable lookups.
func LoadFrom(getenv func(string) string, readFile func(string) ([]byte, error)) (Config, error) {
	cfg := Default()
	if path := strings.TrimSpace(getenv("PAWMATCH_CONFIG")); path != "" {
		raw, err := readFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := applyEnv(&cfg, getenv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	lookup := func(key string) string { return strings.TrimSpace(getenv(key)) }

	if v := lookup("FETCH_API_BASE_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := lookup("PORT"); v != "" {
		cfg.Portal.Port = v
	}
	if v := lookup("POSTGRES_DSN"); v != "" {
		cfg.Portal.PostgresDSN = v
	}
	if v := lookup("SESSION_COOKIE_HASH_KEY"); v != "" {
		cfg.Portal.CookieHashKey = v
	}
	if v := lookup("SESSION_COOKIE_BLOCK_KEY"); v != "" {
		cfg.Portal.CookieBlockKey = v
	}
	if v := lookup("SESSION_COOKIE_SECURE"); v != "" {
		cfg.Portal.SecureCookie = isTruthy(v)
	}

	var errs []error
	setInt := func(key string, dst *int) {
		if v := lookup(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s must be an integer", key))
				return
			}
			*dst = n
		}
	}
	setUint := func(key string, dst *uint32) {
		if v := lookup(key); v != "" {
			n, err := strconv.ParseUint(v, 10, 32)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s must be a non-negative integer", key))
				return
			}
			*dst = uint32(n)
		}
	}
	setInt("FETCH_API_TIMEOUT_SECONDS", &cfg.API.TimeoutSeconds)
	setInt("SESSION_TTL_HOURS", &cfg.Portal.SessionTTLHours)
	setUint("BREAKER_MAX_REQUESTS", &cfg.Breaker.MaxRequests)
	setInt("BREAKER_INTERVAL_SECONDS", &cfg.Breaker.IntervalSeconds)
	setInt("BREAKER_TIMEOUT_SECONDS", &cfg.Breaker.TimeoutSeconds)
	setUint("BREAKER_MIN_REQUESTS", &cfg.Breaker.MinRequests)
	if v := lookup("BREAKER_FAILURE_RATIO"); v != "" {
		ratio, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, errors.New("BREAKER_FAILURE_RATIO must be a number"))
		} else {
			cfg.Breaker.FailureRatio = ratio
		}
	}
	return errors.Join(errs...)
}

// Validate checks basic constraints.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.API.BaseURL) == "" {
		errs = append(errs, errors.New("api base url is required"))
	}
	if c.API.TimeoutSeconds <= 0 {
		errs = append(errs, errors.New("FETCH_API_TIMEOUT_SECONDS must be a positive integer"))
	}
	if c.Portal.SessionTTLHours <= 0 {
		errs = append(errs, errors.New("SESSION_TTL_HOURS must be a positive integer"))
	}
	if c.Breaker.FailureRatio <= 0 || c.Breaker.FailureRatio > 1 {
		errs = append(errs, errors.New("BREAKER_FAILURE_RATIO must be in (0, 1]"))
	}
	if c.Breaker.IntervalSeconds < 0 || c.Breaker.TimeoutSeconds < 0 {
		errs = append(errs, errors.New("breaker durations must not be negative"))
	}
	switch len(c.Portal.CookieBlockKey) {
	case 0, 16, 24, 32:
	default:
		errs = append(errs, errors.New("SESSION_COOKIE_BLOCK_KEY must be 16, 24 or 32 bytes"))
	}
	return errors.Join(errs...)
}

func (c Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.Portal.SessionTTLHours) * time.Hour
}

// Addr is the portal listen address.
func (c Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Portal.Port, ":")
}

// BreakerSettings converts the breaker section for the remote client.
func (c Config) BreakerSettings() fetchapi.BreakerSettings {
	s := fetchapi.DefaultBreakerSettings()
	s.MaxRequests = c.Breaker.MaxRequests
	s.Interval = time.Duration(c.Breaker.IntervalSeconds) * time.Second
	s.Timeout = time.Duration(c.Breaker.TimeoutSeconds) * time.Second
	s.MinRequests = c.Breaker.MinRequests
	s.FailureRatio = c.Breaker.FailureRatio
	return s
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
