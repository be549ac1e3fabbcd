package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const minSecretLength = 25

type Config struct {
	Env           string `mapstructure:"APP_ENV"`
	Port          string `mapstructure:"PORT"`
	MongoURI      string `mapstructure:"MONGODB_URI"`
	DBName        string `mapstructure:"DB_NAME"`
	JWTSecret     string `mapstructure:"JWT_SECRET"`
	JWTExpiresIn  string `mapstructure:"JWT_EXPIRES_IN"`
	CORSOrigins   string `mapstructure:"CORS_ORIGINS"`
	RedisAddress  string `mapstructure:"REDIS_ADDRESS"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	UserCacheTTL  string `mapstructure:"USER_CACHE_TTL"`
	LogLevel      string `mapstructure:"LOG_LEVEL"`

	// TokenTTL and CacheTTL are parsed from JWTExpiresIn and UserCacheTTL.
	TokenTTL time.Duration `mapstructure:"-"`
	CacheTTL time.Duration `mapstructure:"-"`
}

var keys = []string{
	"APP_ENV", "PORT", "MONGODB_URI", "DB_NAME", "JWT_SECRET", "JWT_EXPIRES_IN",
	"CORS_ORIGINS", "REDIS_ADDRESS", "REDIS_PASSWORD", "USER_CACHE_TTL", "LOG_LEVEL",
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	// a missing .env is fine, the environment may already be populated
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "3000")
	v.SetDefault("JWT_EXPIRES_IN", "7d")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("USER_CACHE_TTL", "15m")
	v.SetDefault("LOG_LEVEL", "info")

	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("bind %s: %w", k, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required values and parses the durations.
func (c *Config) Validate() error {
	switch c.Env {
	case "development", "production", "test":
	default:
		return fmt.Errorf("APP_ENV must be development, production or test, got %q", c.Env)
	}
	if c.MongoURI == "" {
		return fmt.Errorf("MONGODB_URI is required")
	}
	if c.DBName == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if len(c.JWTSecret) < minSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", minSecretLength)
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("PORT must be a number, got %q", c.Port)
	}

	ttl, err := ParseDuration(c.JWTExpiresIn)
	if err != nil {
		return fmt.Errorf("JWT_EXPIRES_IN: %w", err)
	}
	c.TokenTTL = ttl

	cacheTTL, err := ParseDuration(c.UserCacheTTL)
	if err != nil {
		return fmt.Errorf("USER_CACHE_TTL: %w", err)
	}
	c.CacheTTL = cacheTTL
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Origins splits CORS_ORIGINS on commas.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// ParseDuration accepts Go durations ("36h"), a day suffix ("7d") or bare
// seconds ("3600"). The result must be positive.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	var d time.Duration
	switch {
	case s == "":
		return 0, fmt.Errorf("empty duration")
	case strings.HasSuffix(s, "d"):
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		d = time.Duration(days) * 24 * time.Hour
	default:
		if secs, err := strconv.Atoi(s); err == nil {
			d = time.Duration(secs) * time.Second
		} else if d, err = time.ParseDuration(s); err != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration %q must be positive", s)
	}
	return d, nil
}
