package config

import (
	"time"

	"meme-hunter/internal/chain"

	"github.com/caarlos0/env/v11"
)

// DefaultProgramID is used when PROGRAM_ID is unset.
const DefaultProgramID = "6d656d652d68756e7465722d70726f6772616d2d69642d76312d2d2d2d2d2d2d"

type ServerConfig struct {
	// PostgresDSN selects the Postgres backend; empty runs in memory.
	PostgresDSN    string `env:"POSTGRES_DSN"`
	MigrateOnStart bool   `env:"MIGRATE_ON_START" envDefault:"false"`
	HTTPAddr       string `env:"HTTP_ADDR" envDefault:":8080"`

	ProgramID      chain.Address `env:"PROGRAM_ID" envDefault:"6d656d652d68756e7465722d70726f6772616d2d69642d76312d2d2d2d2d2d2d"`
	RelayerAddress chain.Address `env:"RELAYER_ADDRESS,required,notEmpty"`

	AdminJWTSecret   string        `env:"ADMIN_JWT_SECRET"`
	SignatureMaxSkew time.Duration `env:"SIGNATURE_MAX_SKEW" envDefault:"5m"`

	RedisAddr        string `env:"REDIS_ADDR"`
	RedisPassword    string `env:"REDIS_PASSWORD"`
	RedisDB          int    `env:"REDIS_DB" envDefault:"0"`
	RedisHuntChannel string `env:"REDIS_HUNT_CHANNEL" envDefault:"hunt:results"`

	// NotifyTargetsPath wins over NotifyTargetsJSON when both are set.
	NotifyEnabled     bool          `env:"NOTIFY_ENABLED" envDefault:"false"`
	NotifyTargetsJSON string        `env:"NOTIFY_TARGETS_JSON"`
	NotifyTargetsPath string        `env:"NOTIFY_TARGETS_PATH"`
	NotifyWorkers     int           `env:"NOTIFY_WORKERS" envDefault:"2"`
	NotifyRetryMax    int           `env:"NOTIFY_RETRY_MAX" envDefault:"3"`
	NotifyRetryBase   time.Duration `env:"NOTIFY_RETRY_BASE" envDefault:"500ms"`
	NotifyBigWinMin   uint64        `env:"NOTIFY_BIG_WIN_MIN" envDefault:"150000000"`

	SlotDuration time.Duration `env:"SLOT_DURATION" envDefault:"400ms"`
	// GenesisUnix anchors slot 0; zero means process start.
	GenesisUnix int64 `env:"GENESIS_UNIX" envDefault:"0"`

	WindowRetentionSlots  uint64        `env:"WINDOW_RETENTION_SLOTS" envDefault:"0"`
	WindowJanitorInterval time.Duration `env:"WINDOW_JANITOR_INTERVAL" envDefault:"1m"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	err := env.Parse(&cfg)
	return cfg, err
}
