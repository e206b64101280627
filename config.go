package verify

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the process-level configuration, loaded from the environment.
// Defaults mirror a local development setup; the signing secret MUST be
// overridden in production.
type Config struct {
	Port      int    `env:"PORT" envDefault:"3000"`
	JWTSecret string `env:"JWT_SECRET" envDefault:"your-super-secret-jwt-key-change-in-production"`
	DBPath    string `env:"DB_PATH" envDefault:"verification.db"`

	AdminUsername string `env:"ADMIN_USERNAME" envDefault:"admin"`
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:"admin123"`

	TokenExpirationHours int `env:"TOKEN_EXPIRATION_HOURS" envDefault:"24"`

	RateLimitMax    int           `env:"RATE_LIMIT_MAX" envDefault:"100"`
	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"15m"`

	StaticDir string `env:"STATIC_DIR" envDefault:"./public"`
}

// LoadConfig parses the environment into a Config.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Addr is the listen address derived from Port.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
