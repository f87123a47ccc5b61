package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the server's environment-driven configuration.
type Config struct {
	Addr             string        `env:"ADDR" envDefault:":8000"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"info"`
	HandshakeTimeout time.Duration `env:"HANDSHAKE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout  time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

// Load reads the configuration from the environment, honoring a local
// .env file when present.
func Load() (Config, error) {
	// Missing .env is fine; the environment wins either way.
	_ = godotenv.Load()
	return env.ParseAs[Config]()
}
