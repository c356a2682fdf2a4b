package store

import (
	"time"

	"meme-hunter/internal/chain"
)

type GameConfig struct {
	Address             chain.Address
	Authority           chain.Address
	Relayer             chain.Address
	PoolBump            uint8
	ConcurrentThreshold uint8
	OwnerFeePercent     uint8
	IsInitialized       bool
	Bump                uint8
}

type SessionInfo struct {
	Address    chain.Address
	Owner      chain.Address
	SessionKey chain.Address
	CreatedAt  int64
	ExpiresAt  int64
	Epoch      uint64
	Nonce      uint64
	Bump       uint8
}

// SessionEpoch numbers an owner's authorizations. It survives revoke, so a
// new session never reuses an earlier epoch or accepts an older issued_at.
type SessionEpoch struct {
	Address      chain.Address
	Epoch        uint64
	LastIssuedAt int64
}

// WindowStats counts hunts recorded in one confirmation window. A zero Slot
// with zero TxCount is an untouched record.
type WindowStats struct {
	Address chain.Address
	Slot    uint64
	TxCount uint32
	Bump    uint8
}

type TokenAccount struct {
	Address chain.Address
	Mint    chain.Address
	Owner   chain.Address
	Amount  uint64
}

type Room struct {
	Address         chain.Address
	Creator         chain.Address
	TokenMint       chain.Address
	TokenVault      chain.Address
	TotalDeposited  uint64
	RemainingAmount uint64
	IsActive        bool
	Bump            uint8
	RoomNonce       uint64
}

// LedgerEntry records one value movement. Mint is zero for native value.
type LedgerEntry struct {
	ID        string
	Kind      string
	From      chain.Address
	To        chain.Address
	Authority chain.Address
	Mint      chain.Address
	Amount    uint64
	RefType   string
	RefID     string
	CreatedAt time.Time
}

type HuntRecord struct {
	ID               string
	Player           chain.Address
	Nonce            uint64
	Slot             uint64
	MemeID           uint8
	NetSize          uint8
	Success          bool
	Reward           uint64
	Cost             uint64
	AirdropTriggered bool
	AirdropReward    uint64
	CreatedAt        time.Time
}

type LedgerFilter struct {
	// Address matches either side of the movement.
	Address chain.Address
	Kind    string
	RefType string
	RefID   string
}
