package config

import "github.com/caarlos0/env/v11"

// GameDefaults seed Initialize when the caller does not override them.
type GameDefaults struct {
	ConcurrentThreshold uint8 `env:"CONCURRENT_THRESHOLD" envDefault:"3"`
	OwnerFeePercent     uint8 `env:"OWNER_FEE_PERCENT" envDefault:"10"`
}

func LoadGame() (GameDefaults, error) {
	var cfg GameDefaults
	err := env.Parse(&cfg)
	return cfg, err
}
