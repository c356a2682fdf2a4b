package config

import (
	"time"

	"meme-hunter/internal/chain"

	"github.com/caarlos0/env/v11"
)

type CLIConfig struct {
	PostgresDSN    string        `env:"POSTGRES_DSN"`
	ProgramID      chain.Address `env:"PROGRAM_ID" envDefault:"6d656d652d68756e7465722d70726f6772616d2d69642d76312d2d2d2d2d2d2d"`
	AdminJWTSecret string        `env:"ADMIN_JWT_SECRET"`
	TokenTTL       time.Duration `env:"ADMIN_TOKEN_TTL" envDefault:"1h"`

	RedisAddr        string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword    string `env:"REDIS_PASSWORD"`
	RedisDB          int    `env:"REDIS_DB" envDefault:"0"`
	RedisHuntChannel string `env:"REDIS_HUNT_CHANNEL" envDefault:"hunt:results"`
}

func LoadCLI() (CLIConfig, error) {
	var cfg CLIConfig
	err := env.Parse(&cfg)
	return cfg, err
}
