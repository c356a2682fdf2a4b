package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestRollingWriterRollsOver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hunt.log")
	w, err := newRollingWriter(path, 1)
	if err != nil {
		t.Fatalf("create writer: %v", err)
	}
	defer w.Close()

	first := bytes.Repeat([]byte("a"), 700*1024)
	second := bytes.Repeat([]byte("b"), 700*1024)
	if _, err := w.Write(first); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := w.Write(second); err != nil {
		t.Fatalf("write: %v", err)
	}

	cur, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read current: %v", err)
	}
	if !bytes.Equal(cur, second) {
		t.Fatalf("current log has %d bytes, want only the second chunk", len(cur))
	}
	prev, err := os.ReadFile(path + ".1")
	if err != nil {
		t.Fatalf("read previous: %v", err)
	}
	if !bytes.Equal(prev, first) {
		t.Fatalf("previous log has %d bytes, want the first chunk", len(prev))
	}
}

func TestRollingWriterOversizedWriteOnEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hunt.log")
	w, err := newRollingWriter(path, 1)
	if err != nil {
		t.Fatalf("create writer: %v", err)
	}
	defer w.Close()

	big := make([]byte, 2<<20)
	if n, err := w.Write(big); err != nil || n != len(big) {
		t.Fatalf("write = %d, %v", n, err)
	}
	if _, err := os.Stat(path + ".1"); !os.IsNotExist(err) {
		t.Fatalf("no roll expected for a single write, stat err = %v", err)
	}
}
