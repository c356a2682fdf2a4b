package store

import (
	"context"
	"errors"

	"meme-hunter/internal/chain"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrOutOfRange = errors.New("value out of range")
	ErrReadOnly   = errors.New("read only transaction")
)

// Tx is the account view of one indivisible transaction. Reads inside a
// writable transaction lock what they read until commit.
type Tx interface {
	GetGameConfig(ctx context.Context, addr chain.Address) (*GameConfig, error)
	InsertGameConfig(ctx context.Context, cfg GameConfig) error

	GetSession(ctx context.Context, addr chain.Address) (*SessionInfo, error)
	PutSession(ctx context.Context, s SessionInfo) error
	DeleteSession(ctx context.Context, addr chain.Address) error
	// GetSessionEpoch never returns ErrNotFound; an absent record reads as
	// epoch zero.
	GetSessionEpoch(ctx context.Context, addr chain.Address) (*SessionEpoch, error)
	PutSessionEpoch(ctx context.Context, e SessionEpoch) error

	// GetWindowStats never returns ErrNotFound; an absent record reads as
	// zeroed.
	GetWindowStats(ctx context.Context, addr chain.Address) (*WindowStats, error)
	PutWindowStats(ctx context.Context, w WindowStats) error

	// GetBalance reads an absent balance as zero.
	GetBalance(ctx context.Context, addr chain.Address) (uint64, error)
	SetBalance(ctx context.Context, addr chain.Address, amount uint64) error

	GetTokenAccount(ctx context.Context, addr chain.Address) (*TokenAccount, error)
	InsertTokenAccount(ctx context.Context, ta TokenAccount) error
	SetTokenAmount(ctx context.Context, addr chain.Address, amount uint64) error

	GetRoom(ctx context.Context, addr chain.Address) (*Room, error)
	InsertRoom(ctx context.Context, r Room) error
	UpdateRoom(ctx context.Context, r Room) error

	InsertLedgerEntry(ctx context.Context, e LedgerEntry) error
	InsertHuntRecord(ctx context.Context, r HuntRecord) error
}

// Backend is implemented by Store (Postgres) and Memory.
type Backend interface {
	// InTx runs fn in one transaction; any error from fn discards every
	// write it made.
	InTx(ctx context.Context, fn func(Tx) error) error
	View(ctx context.Context, fn func(Tx) error) error
	ListLedgerEntries(ctx context.Context, f LedgerFilter, limit, offset int) ([]LedgerEntry, error)
	ListHuntRecords(ctx context.Context, player chain.Address, limit, offset int) ([]HuntRecord, error)
	PruneWindowStats(ctx context.Context, beforeSlot uint64) (int64, error)
	Ping(ctx context.Context) error
	Close()
}

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 500
)

// PageBounds clamps a list request to the window the backends actually
// serve.
func PageBounds(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
