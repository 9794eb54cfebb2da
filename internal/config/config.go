package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/robalobadob/battleship/apps/go-server/internal/game"
)

// Config is the process configuration, read once at startup.
type Config struct {
	Port     string `env:"PORT"      envDefault:"5175"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	DBPath   string `env:"DB_PATH"   envDefault:"./data/app.db"`
	NodeEnv  string `env:"NODE_ENV"`

	BoardSize  int `env:"BOARD_SIZE"  envDefault:"7"`
	NumShips   int `env:"NUM_SHIPS"   envDefault:"3"`
	ShipLength int `env:"SHIP_LENGTH" envDefault:"3"`

	ClientOrigin   string `env:"CLIENT_ORIGIN"    envDefault:"http://localhost:5173"`
	JWTSecret      string `env:"JWT_SECRET"       envDefault:"dev_secret_change_me"`
	JWTExpiresDays int    `env:"JWT_EXPIRES_DAYS" envDefault:"14"`
	CookieName     string `env:"COOKIE_NAME"      envDefault:"battleship_token"`
	DailySalt      string `env:"DAILY_SALT"       envDefault:"local_dev_salt"`

	RateLimitRPS   int           `env:"RATE_LIMIT_RPS"   envDefault:"5"`
	RateLimitBurst int           `env:"RATE_LIMIT_BURST" envDefault:"10"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"  envDefault:"10s"`

	SessionTTL    time.Duration `env:"SESSION_TTL"    envDefault:"24h"`
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"5m"`
}

// Load parses the environment and checks the default game dimensions.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Game().Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Game is the default board configuration for new sessions.
func (c Config) Game() game.Config {
	return game.Config{
		BoardSize:  c.BoardSize,
		NumShips:   c.NumShips,
		ShipLength: c.ShipLength,
	}
}

// Production reports whether cookies should be marked Secure.
func (c Config) Production() bool { return c.NodeEnv == "production" }

// JWTTTL is the auth token lifetime.
func (c Config) JWTTTL() time.Duration {
	return time.Duration(c.JWTExpiresDays) * 24 * time.Hour
}
