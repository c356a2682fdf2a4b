package program

import (
	"context"
	"errors"

	"meme-hunter/internal/chain"
	"meme-hunter/internal/ledger"
	"meme-hunter/internal/store"
)

// Program resolves hunts, sessions, and room payouts against a store
// backend. Every exported mutation runs as one store transaction.
type Program struct {
	ID      chain.Address
	backend store.Backend
	clock   chain.ClockSource
	ledger  *ledger.Ledger

	configAddr chain.Address
	configBump uint8
	poolAddr   chain.Address
	poolBump   uint8
}

func New(id chain.Address, backend store.Backend, clock chain.ClockSource) *Program {
	p := &Program{ID: id, backend: backend, clock: clock, ledger: ledger.New()}
	p.configAddr, p.configBump = chain.MustDeriveAddress(id, chain.GameConfigSeeds()...)
	p.poolAddr, p.poolBump = chain.MustDeriveAddress(id, chain.PoolSeeds()...)
	return p
}

// Options override game defaults at Initialize.
type Options struct {
	ConcurrentThreshold uint8
	OwnerFeePercent     uint8
}

func DefaultOptions() Options {
	return Options{ConcurrentThreshold: DefaultConcurrentThreshold, OwnerFeePercent: DefaultOwnerFeePercent}
}

// Initialize creates the game config singleton.
func (p *Program) Initialize(ctx context.Context, admin, relayer chain.Address, opts Options) (*store.GameConfig, error) {
	if admin.IsZero() || relayer.IsZero() {
		return nil, ErrInvalidConfig
	}
	if opts.ConcurrentThreshold < 1 || opts.OwnerFeePercent > maxPercentValue {
		return nil, ErrInvalidConfig
	}
	cfg := store.GameConfig{
		Address:             p.configAddr,
		Authority:           admin,
		Relayer:             relayer,
		PoolBump:            p.poolBump,
		ConcurrentThreshold: opts.ConcurrentThreshold,
		OwnerFeePercent:     opts.OwnerFeePercent,
		IsInitialized:       true,
		Bump:                p.configBump,
	}
	err := p.backend.InTx(ctx, func(tx store.Tx) error {
		if _, err := tx.GetGameConfig(ctx, p.configAddr); err == nil {
			return ErrAlreadyInitialized
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		if err := tx.InsertGameConfig(ctx, cfg); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return ErrAlreadyInitialized
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DepositToPool moves amount from the config authority into the pool.
func (p *Program) DepositToPool(ctx context.Context, authority chain.Address, amount uint64) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	return p.backend.InTx(ctx, func(tx store.Tx) error {
		cfg, err := p.loadConfig(ctx, tx)
		if err != nil {
			return err
		}
		if authority != cfg.Authority {
			return ErrUnauthorizedAdmin
		}
		return p.ledger.Transfer(ctx, tx, authority, p.poolAddr, ledger.Signer(authority), amount,
			ledger.Ref{Kind: "pool_deposit", Type: "pool", ID: p.poolAddr.String()})
	})
}

func (p *Program) loadConfig(ctx context.Context, tx store.Tx) (*store.GameConfig, error) {
	cfg, err := tx.GetGameConfig(ctx, p.configAddr)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotInitialized
	}
	if err != nil {
		return nil, err
	}
	if !cfg.IsInitialized {
		return nil, ErrNotInitialized
	}
	return cfg, nil
}

// poolSigner is the only authority that can debit the pool.
func (p *Program) poolSigner(cfg *store.GameConfig) ledger.Authority {
	return ledger.ProgramSigner(p.ID, cfg.PoolBump, chain.PoolSeeds()...)
}

func (p *Program) ConfigAddress() chain.Address { return p.configAddr }

func (p *Program) PoolAddress() chain.Address { return p.poolAddr }

func (p *Program) SessionAddress(owner chain.Address) chain.Address {
	addr, _ := chain.MustDeriveAddress(p.ID, chain.SessionSeeds(owner)...)
	return addr
}

func (p *Program) WindowAddress(slot uint64) chain.Address {
	addr, _ := chain.MustDeriveAddress(p.ID, chain.WindowSeeds(slot)...)
	return addr
}

func (p *Program) RoomAddress(creator, mint chain.Address, nonce uint64) chain.Address {
	addr, _ := chain.MustDeriveAddress(p.ID, chain.RoomSeeds(creator, mint, nonce)...)
	return addr
}

func (p *Program) VaultAddress(room chain.Address) chain.Address {
	addr, _ := chain.MustDeriveAddress(p.ID, chain.VaultSeeds(room)...)
	return addr
}

// Now is the program's view of the current window and time.
func (p *Program) Now() chain.Clock {
	return p.clock.Now()
}
