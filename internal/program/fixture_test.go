package program

import (
	"context"
	"testing"

	"meme-hunter/internal/chain"
	"meme-hunter/internal/store"
	"meme-hunter/internal/testutil"
)

var testProgramID = chain.MustParseAddress("9f1c2b3a4d5e6f708192a3b4c5d6e7f8091a2b3c4d5e6f708192a3b4c5d6e7f8")

const (
	startSlot    = 100
	startUnix    = 1000
	relayerFunds = 1_000_000_000
	adminFunds   = 10_000_000_000
)

type fixture struct {
	ctx     context.Context
	p       *Program
	db      store.Backend
	clock   *chain.FixedClock
	admin   testutil.Key
	relayer testutil.Key
	player  testutil.Key
	session testutil.Key
	issued  int64
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWith(t, DefaultOptions())
}

func newFixtureWith(t *testing.T, opts Options) *fixture {
	t.Helper()
	return newFixtureOn(t, store.NewMemory(), opts)
}

func newFixtureOn(t *testing.T, db store.Backend, opts Options) *fixture {
	t.Helper()
	f := &fixture{
		ctx:     context.Background(),
		db:      db,
		clock:   &chain.FixedClock{},
		admin:   testutil.NewKey(t, "admin"),
		relayer: testutil.NewKey(t, "relayer"),
		player:  testutil.NewKey(t, "player"),
		session: testutil.NewKey(t, "session"),
	}
	f.clock.Set(startSlot, startUnix)
	f.p = New(testProgramID, f.db, f.clock)
	if _, err := f.p.Initialize(f.ctx, f.admin.Addr, f.relayer.Addr, opts); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := f.p.Fund(f.ctx, f.relayer.Addr, relayerFunds); err != nil {
		t.Fatalf("fund relayer: %v", err)
	}
	if err := f.p.Fund(f.ctx, f.admin.Addr, adminFunds); err != nil {
		t.Fatalf("fund admin: %v", err)
	}
	return f
}

// issuedAt returns a fresh, strictly increasing signing time.
func (f *fixture) issuedAt() int64 {
	f.issued++
	return startUnix + f.issued
}

func (f *fixture) authorize(t *testing.T, player, key testutil.Key) {
	t.Helper()
	if _, err := f.p.AuthorizeSession(f.ctx, player.Addr, key.Addr, MaxSessionDuration, f.issuedAt()); err != nil {
		t.Fatalf("authorize session: %v", err)
	}
}

func (f *fixture) deposit(t *testing.T, amount uint64) {
	t.Helper()
	if err := f.p.DepositToPool(f.ctx, f.admin.Addr, amount); err != nil {
		t.Fatalf("deposit: %v", err)
	}
}

// request builds a correctly signed hunt for the player's current session.
func (f *fixture) request(t *testing.T, player, key testutil.Key, memeID, netSize uint8) HuntRequest {
	t.Helper()
	var epoch, nonce uint64
	if s, err := f.p.Session(f.ctx, player.Addr); err == nil {
		epoch, nonce = s.Epoch, s.Nonce
	}
	return HuntRequest{
		Relayer:    f.relayer.Addr,
		Player:     player.Addr,
		SessionKey: key.Addr,
		Signature:  key.Sign(chain.HuntMessage(player.Addr, memeID, netSize, epoch, nonce)),
		MemeID:     memeID,
		NetSize:    netSize,
	}
}

func (f *fixture) balance(t *testing.T, addr chain.Address) uint64 {
	t.Helper()
	bal, err := f.p.Balance(f.ctx, addr)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	return bal
}

func (f *fixture) nonce(t *testing.T, player chain.Address) uint64 {
	t.Helper()
	s, err := f.p.Session(f.ctx, player)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	return s.Nonce
}

// findSlot returns the first slot at or after from where pred holds.
func findSlot(t *testing.T, from uint64, pred func(slot uint64) bool) uint64 {
	t.Helper()
	for s := from; s < from+200_000; s++ {
		if pred(s) {
			return s
		}
	}
	t.Fatal("no slot satisfies predicate")
	return 0
}
