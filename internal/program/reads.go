package program

import (
	"context"
	"errors"

	"meme-hunter/internal/chain"
	"meme-hunter/internal/ledger"
	"meme-hunter/internal/store"
)

func (p *Program) Config(ctx context.Context) (*store.GameConfig, error) {
	var out *store.GameConfig
	err := p.backend.View(ctx, func(tx store.Tx) error {
		var err error
		out, err = p.loadConfig(ctx, tx)
		return err
	})
	return out, err
}

func (p *Program) Session(ctx context.Context, owner chain.Address) (*store.SessionInfo, error) {
	var out *store.SessionInfo
	err := p.backend.View(ctx, func(tx store.Tx) error {
		var err error
		out, err = tx.GetSession(ctx, p.SessionAddress(owner))
		if errors.Is(err, store.ErrNotFound) {
			return ErrSessionNotFound
		}
		return err
	})
	return out, err
}

func (p *Program) PoolBalance(ctx context.Context) (uint64, error) {
	return p.Balance(ctx, p.poolAddr)
}

func (p *Program) Balance(ctx context.Context, addr chain.Address) (uint64, error) {
	var out uint64
	err := p.backend.View(ctx, func(tx store.Tx) error {
		var err error
		out, err = tx.GetBalance(ctx, addr)
		return err
	})
	return out, err
}

// WindowStats returns the record for slot. A record that was reused for a
// later slot, or never written, reads as empty for slot.
func (p *Program) WindowStats(ctx context.Context, slot uint64) (*store.WindowStats, error) {
	var out *store.WindowStats
	addr := p.WindowAddress(slot)
	err := p.backend.View(ctx, func(tx store.Tx) error {
		w, err := tx.GetWindowStats(ctx, addr)
		if err != nil {
			return err
		}
		if w.Slot != slot {
			w = &store.WindowStats{Address: addr, Slot: slot}
		}
		out = w
		return nil
	})
	return out, err
}

func (p *Program) Room(ctx context.Context, addr chain.Address) (*store.Room, error) {
	var out *store.Room
	err := p.backend.View(ctx, func(tx store.Tx) error {
		var err error
		out, err = tx.GetRoom(ctx, addr)
		if errors.Is(err, store.ErrNotFound) {
			return ErrRoomNotFound
		}
		return err
	})
	return out, err
}

func (p *Program) TokenAccount(ctx context.Context, addr chain.Address) (*store.TokenAccount, error) {
	var out *store.TokenAccount
	err := p.backend.View(ctx, func(tx store.Tx) error {
		var err error
		out, err = tx.GetTokenAccount(ctx, addr)
		if errors.Is(err, store.ErrNotFound) {
			return ledger.ErrAccountNotFound
		}
		return err
	})
	return out, err
}

// Fund credits native value to addr. It stands in for the ledger's own
// issuance in development deployments.
func (p *Program) Fund(ctx context.Context, to chain.Address, amount uint64) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	return p.backend.InTx(ctx, func(tx store.Tx) error {
		return p.ledger.Fund(ctx, tx, to, amount, ledger.Ref{Kind: "fund", Type: "faucet", ID: store.NewID()})
	})
}

// MintTo issues tokens into owner's associated account for mint.
func (p *Program) MintTo(ctx context.Context, owner, mint chain.Address, amount uint64) (chain.Address, error) {
	if amount == 0 {
		return chain.Address{}, ErrInvalidAmount
	}
	var out chain.Address
	err := p.backend.InTx(ctx, func(tx store.Tx) error {
		var err error
		out, err = p.ledger.MintTo(ctx, tx, owner, mint, amount, ledger.Ref{Kind: "mint", Type: "faucet", ID: store.NewID()})
		return err
	})
	return out, err
}
