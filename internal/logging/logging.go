package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"meme-hunter/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	mu      sync.RWMutex
	out     io.Writer = os.Stdout
	fileOut *rollingWriter
)

// Init configures the global zerolog logger. With cfg.File set, output is
// teed to stdout and a size-capped file.
func Init(cfg config.LogConfig) error {
	level := zerolog.InfoLevel
	if v := strings.TrimSpace(cfg.Level); v != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(v)); err == nil {
			level = parsed
		}
	}

	var w io.Writer = os.Stdout
	var fw *rollingWriter
	if cfg.File != "" {
		var err error
		fw, err = newRollingWriter(cfg.File, cfg.MaxMB)
		if err != nil {
			return err
		}
		w = io.MultiWriter(os.Stdout, fw)
	}

	mu.Lock()
	if fileOut != nil {
		_ = fileOut.Close()
	}
	out, fileOut = w, fw
	mu.Unlock()

	var console io.Writer = w
	if cfg.Pretty {
		console = zerolog.ConsoleWriter{Out: w}
	}
	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(console).With().Timestamp().Logger()
	if cfg.SampleEvery > 1 {
		logger = logger.Sample(&zerolog.BasicSampler{N: uint32(cfg.SampleEvery)})
	}
	log.Logger = logger
	return nil
}

// Writer is the raw destination shared with non-zerolog loggers such as the
// request logger.
func Writer() io.Writer {
	mu.RLock()
	defer mu.RUnlock()
	return out
}

func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if fileOut == nil {
		return nil
	}
	err := fileOut.Close()
	fileOut = nil
	out = os.Stdout
	return err
}
