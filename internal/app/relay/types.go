package relay

import (
	"time"

	"meme-hunter/internal/chain"
)

type ConfigResponse struct {
	Address             chain.Address `json:"address"`
	Authority           chain.Address `json:"authority"`
	Relayer             chain.Address `json:"relayer"`
	PoolAddress         chain.Address `json:"pool_address"`
	ConcurrentThreshold uint8         `json:"concurrent_threshold"`
	OwnerFeePercent     uint8         `json:"owner_fee_percent"`
}

type PoolResponse struct {
	Address chain.Address `json:"address"`
	Balance uint64        `json:"balance"`
}

type SessionResponse struct {
	Address    chain.Address `json:"address"`
	Owner      chain.Address `json:"owner"`
	SessionKey chain.Address `json:"session_key"`
	CreatedAt  int64         `json:"created_at"`
	ExpiresAt  int64         `json:"expires_at"`
	Epoch      uint64        `json:"epoch"`
	Nonce      uint64        `json:"nonce"`
	Live       bool          `json:"live"`
}

type WindowResponse struct {
	Address chain.Address `json:"address"`
	Slot    uint64        `json:"slot"`
	TxCount uint32        `json:"tx_count"`
}

type RoomResponse struct {
	Address         chain.Address `json:"address"`
	Creator         chain.Address `json:"creator"`
	TokenMint       chain.Address `json:"token_mint"`
	TokenVault      chain.Address `json:"token_vault"`
	TotalDeposited  uint64        `json:"total_deposited"`
	RemainingAmount uint64        `json:"remaining_amount"`
	IsActive        bool          `json:"is_active"`
	RoomNonce       uint64        `json:"room_nonce"`
}

type HuntResponse struct {
	ID               string        `json:"id"`
	Player           chain.Address `json:"player"`
	MemeID           uint8         `json:"meme_id"`
	NetSize          uint8         `json:"net_size"`
	Success          bool          `json:"success"`
	Reward           uint64        `json:"reward"`
	Cost             uint64        `json:"cost"`
	AirdropTriggered bool          `json:"airdrop_triggered"`
	AirdropReward    uint64        `json:"airdrop_reward"`
	Nonce            uint64        `json:"nonce"`
	Slot             uint64        `json:"slot"`
	WindowCount      uint32        `json:"window_count,omitempty"`
	CreatedAt        *time.Time    `json:"created_at,omitempty"`
}

type HuntHistoryResponse struct {
	Items  []HuntResponse `json:"items"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

type LedgerEntryItem struct {
	ID        string        `json:"id"`
	Kind      string        `json:"kind"`
	From      chain.Address `json:"from"`
	To        chain.Address `json:"to"`
	Authority chain.Address `json:"authority"`
	Mint      chain.Address `json:"mint"`
	Amount    uint64        `json:"amount"`
	RefType   string        `json:"ref_type"`
	RefID     string        `json:"ref_id"`
	CreatedAt time.Time     `json:"created_at"`
}

type LedgerResponse struct {
	Items  []LedgerEntryItem `json:"items"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

type AuthorizeSessionInput struct {
	Owner        chain.Address `json:"owner"`
	SessionKey   chain.Address `json:"session_key"`
	DurationSecs int64         `json:"duration_secs"`
	IssuedAt     int64         `json:"issued_at"`
	Signature    []byte        `json:"signature"`
}

type RevokeSessionInput struct {
	Owner     chain.Address `json:"owner"`
	IssuedAt  int64         `json:"issued_at"`
	Signature []byte        `json:"signature"`
}

type HuntInput struct {
	Player     chain.Address `json:"player"`
	SessionKey chain.Address `json:"session_key"`
	MemeID     uint8         `json:"meme_id"`
	NetSize    uint8         `json:"net_size"`
	Signature  []byte        `json:"signature"`
}

type CreateRoomInput struct {
	Creator   chain.Address `json:"creator"`
	Mint      chain.Address `json:"mint"`
	Source    chain.Address `json:"source"`
	Amount    uint64        `json:"amount"`
	RoomNonce uint64        `json:"room_nonce"`
	IssuedAt  int64         `json:"issued_at"`
	Signature []byte        `json:"signature"`
}

type SettleRoomInput struct {
	Creator     chain.Address `json:"creator"`
	Room        chain.Address `json:"room"`
	Destination chain.Address `json:"destination"`
	IssuedAt    int64         `json:"issued_at"`
	Signature   []byte        `json:"signature"`
}

type InitializeInput struct {
	Relayer             chain.Address `json:"relayer"`
	ConcurrentThreshold *uint8        `json:"concurrent_threshold,omitempty"`
	OwnerFeePercent     *uint8        `json:"owner_fee_percent,omitempty"`
}

type ClaimInput struct {
	Recipient chain.Address `json:"recipient"`
	Amount    uint64        `json:"amount"`
}

// FundInput credits native value, or tokens of Mint when Mint is set.
type FundInput struct {
	To     chain.Address  `json:"to"`
	Mint   *chain.Address `json:"mint,omitempty"`
	Amount uint64         `json:"amount"`
}

type FundResponse struct {
	Account chain.Address `json:"account"`
	Amount  uint64        `json:"amount"`
}
