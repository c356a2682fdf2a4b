package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"meme-hunter/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestInitWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hunt.log")
	if err := Init(config.LogConfig{Level: "debug", File: path, MaxMB: 1}); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() {
		_ = Close()
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	})

	if zerolog.GlobalLevel() != zerolog.DebugLevel {
		t.Fatalf("level = %s, want debug", zerolog.GlobalLevel())
	}
	log.Debug().Str("player", "p1").Msg("hunt resolved")
	if _, err := Writer().Write([]byte("{\"route\":\"/healthz\"}\n")); err != nil {
		t.Fatalf("raw write: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(b), "hunt resolved") || !strings.Contains(string(b), "/healthz") {
		t.Fatalf("log file missing entries: %s", b)
	}
}

func TestInitIgnoresUnknownLevel(t *testing.T) {
	if err := Init(config.LogConfig{Level: "loud"}); err != nil {
		t.Fatalf("init: %v", err)
	}
	if zerolog.GlobalLevel() != zerolog.InfoLevel {
		t.Fatalf("level = %s, want info", zerolog.GlobalLevel())
	}
	if Writer() != os.Stdout {
		t.Fatal("writer should default to stdout")
	}
}
