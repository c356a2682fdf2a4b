package program

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"meme-hunter/internal/chain"
	"meme-hunter/internal/ledger"
	"meme-hunter/internal/store"
	"meme-hunter/internal/testutil"
)

func TestInitialize(t *testing.T) {
	f := newFixture(t)
	cfg, err := f.p.Config(f.ctx)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if cfg.Authority != f.admin.Addr || cfg.Relayer != f.relayer.Addr {
		t.Fatalf("unexpected identities: %+v", cfg)
	}
	if cfg.ConcurrentThreshold != 3 || cfg.OwnerFeePercent != 10 || !cfg.IsInitialized {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Address != f.p.ConfigAddress() {
		t.Fatal("config not at derived address")
	}
	if _, err := chain.CreateAddress(testProgramID, cfg.PoolBump, chain.PoolSeeds()...); err != nil {
		t.Fatalf("stored pool bump does not re-derive: %v", err)
	}

	if _, err := f.p.Initialize(f.ctx, f.admin.Addr, f.relayer.Addr, DefaultOptions()); !errors.Is(err, ErrAlreadyInitialized) {
		t.Fatalf("second initialize: err = %v", err)
	}
}

func TestInitializeRejectsBadOptions(t *testing.T) {
	admin := testutil.NewKey(t, "admin")
	tests := []struct {
		name    string
		relayer chain.Address
		opts    Options
	}{
		{"fee above 100", admin.Addr, Options{ConcurrentThreshold: 3, OwnerFeePercent: 101}},
		{"zero threshold", admin.Addr, Options{ConcurrentThreshold: 0, OwnerFeePercent: 10}},
		{"null relayer", chain.Address{}, DefaultOptions()},
	}
	for _, tt := range tests {
		p := New(testProgramID, store.NewMemory(), &chain.FixedClock{})
		if _, err := p.Initialize(context.Background(), admin.Addr, tt.relayer, tt.opts); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("%s: err = %v, want %v", tt.name, err, ErrInvalidConfig)
		}
	}
}

func TestDepositToPool(t *testing.T) {
	f := newFixture(t)
	f.deposit(t, 700)
	if got := f.balance(t, f.p.PoolAddress()); got != 700 {
		t.Fatalf("pool = %d, want 700", got)
	}
	if got, _ := f.p.PoolBalance(f.ctx); got != 700 {
		t.Fatalf("PoolBalance = %d, want 700", got)
	}

	if err := f.p.DepositToPool(f.ctx, f.relayer.Addr, 1); !errors.Is(err, ErrUnauthorizedAdmin) {
		t.Fatalf("relayer deposit: err = %v", err)
	}
	if err := f.p.DepositToPool(f.ctx, f.admin.Addr, 0); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("zero deposit: err = %v", err)
	}
	if err := f.p.DepositToPool(f.ctx, f.admin.Addr, adminFunds); !errors.Is(err, ledger.ErrInsufficientFunds) {
		t.Fatalf("overdraw deposit: err = %v", err)
	}
	if got := f.balance(t, f.p.PoolAddress()); got != 700 {
		t.Fatalf("pool changed by rejected deposits: %d", got)
	}
}

func TestPoolOnlyPaysThroughProgram(t *testing.T) {
	f := newFixture(t)
	f.deposit(t, 1_000)
	l := ledger.New()
	err := f.db.InTx(f.ctx, func(tx store.Tx) error {
		return l.Transfer(f.ctx, tx, f.p.PoolAddress(), f.player.Addr, ledger.Signer(f.admin.Addr), 10, ledger.Ref{Kind: "theft"})
	})
	if !errors.Is(err, ledger.ErrUnauthorized) {
		t.Fatalf("admin-signed pool debit: err = %v", err)
	}
}

func TestPoolNeverNegative(t *testing.T) {
	f := newFixture(t)
	f.authorize(t, f.player, f.session)
	f.deposit(t, 25_000_000)

	for i := 0; i < 40; i++ {
		f.clock.Set(startSlot+uint64(i), startUnix)
		_, err := f.p.Hunt(f.ctx, f.request(t, f.player, f.session, 5, NetSmall))
		if err != nil && !errors.Is(err, ErrInsufficientPoolFunds) {
			t.Fatalf("hunt %d: %v", i, err)
		}
		entries, _ := f.db.ListLedgerEntries(f.ctx, store.LedgerFilter{Address: f.p.PoolAddress()}, 500, 0)
		var in, out uint64
		for _, e := range entries {
			if e.To == f.p.PoolAddress() {
				in += e.Amount
			}
			if e.From == f.p.PoolAddress() {
				out += e.Amount
			}
		}
		if out > in || f.balance(t, f.p.PoolAddress()) != in-out {
			t.Fatalf("pool ledger inconsistent after hunt %d: in=%d out=%d", i, in, out)
		}
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{ErrUnauthorizedRelayer, KindAuthorization},
		{ErrNotSessionOwner, KindAuthorization},
		{ErrUnauthorizedCreator, KindAuthorization},
		{chain.ErrInvalidSignature, KindAuthorization},
		{chain.ErrStaleSignature, KindValidityWindow},
		{ErrSessionExpired, KindValidityWindow},
		{ErrAuthorizationReplayed, KindValidityWindow},
		{ErrInvalidSessionDuration, KindValidityWindow},
		{ErrInvalidMemeID, KindInputDomain},
		{ErrInvalidNetSize, KindInputDomain},
		{ErrInsufficientPoolFunds, KindResourceSufficiency},
		{ErrInsufficientPoolBalance, KindResourceSufficiency},
		{ErrInsufficientPayment, KindResourceSufficiency},
		{fmt.Errorf("wrapped: %w", ledger.ErrInsufficientFunds), KindResourceSufficiency},
		{ErrOverflow, KindArithmetic},
		{store.ErrOutOfRange, KindArithmetic},
		{ErrInvalidVault, KindStateConsistency},
		{ErrRoomNotActive, KindStateConsistency},
		{ErrRoomAlreadySettled, KindStateConsistency},
		{ErrInvalidTokenAccount, KindStateConsistency},
		{ErrRoomNotFound, KindNotFound},
		{errors.New("connection reset"), KindInternal},
	}
	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.want {
			t.Fatalf("KindOf(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}
