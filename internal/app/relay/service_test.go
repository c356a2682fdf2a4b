package relay

import (
	"context"
	"errors"
	"testing"
	"time"

	"meme-hunter/internal/chain"
	"meme-hunter/internal/events"
	"meme-hunter/internal/program"
	"meme-hunter/internal/store"
	"meme-hunter/internal/testutil"
)

var testProgramID = chain.MustParseAddress("0b0c0d0e0f101112131415161718191a1b1c1d1e1f202122232425262728292a")

type harness struct {
	ctx     context.Context
	svc     *Service
	prog    *program.Program
	rec     *events.Recorder
	now     time.Time
	admin   testutil.Key
	relayer testutil.Key
	player  testutil.Key
	session testutil.Key
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		ctx:     context.Background(),
		rec:     &events.Recorder{},
		now:     time.Unix(1_700_000_000, 0),
		admin:   testutil.NewKey(t, "admin"),
		relayer: testutil.NewKey(t, "relayer"),
		player:  testutil.NewKey(t, "player"),
		session: testutil.NewKey(t, "session"),
	}
	mem := store.NewMemory()
	clock := &chain.FixedClock{}
	clock.Set(500, h.now.Unix())
	h.prog = program.New(testProgramID, mem, clock)
	h.svc = NewService(h.prog, mem, Options{
		Relayer:          h.relayer.Addr,
		SignatureMaxSkew: time.Minute,
		Publisher:        h.rec,
	})
	h.svc.now = func() time.Time { return h.now }

	if _, err := h.svc.Initialize(h.ctx, h.admin.Addr, InitializeInput{}, program.DefaultOptions()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	for _, addr := range []chain.Address{h.admin.Addr, h.relayer.Addr} {
		if _, err := h.svc.Fund(h.ctx, FundInput{To: addr, Amount: 5_000_000_000}); err != nil {
			t.Fatalf("fund: %v", err)
		}
	}
	if _, err := h.svc.Deposit(h.ctx, h.admin.Addr, 2_000_000_000); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	return h
}

func (h *harness) authorizeInput(duration int64) AuthorizeSessionInput {
	issuedAt := h.now.Unix()
	msg := chain.AuthorizeSessionMessage(h.player.Addr, h.session.Addr, duration, issuedAt)
	return AuthorizeSessionInput{
		Owner:        h.player.Addr,
		SessionKey:   h.session.Addr,
		DurationSecs: duration,
		IssuedAt:     issuedAt,
		Signature:    h.player.Sign(msg),
	}
}

func (h *harness) huntInput(t *testing.T, memeID, netSize uint8) HuntInput {
	t.Helper()
	sess, err := h.svc.Session(h.ctx, h.player.Addr)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	return HuntInput{
		Player:     h.player.Addr,
		SessionKey: h.session.Addr,
		MemeID:     memeID,
		NetSize:    netSize,
		Signature:  h.session.Sign(chain.HuntMessage(h.player.Addr, memeID, netSize, sess.Epoch, sess.Nonce)),
	}
}

func TestServiceInitializeDefaultsRelayer(t *testing.T) {
	h := newHarness(t)
	cfg, err := h.svc.Config(h.ctx)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if cfg.Relayer != h.relayer.Addr || cfg.Authority != h.admin.Addr {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.ConcurrentThreshold != program.DefaultConcurrentThreshold {
		t.Fatalf("threshold = %d", cfg.ConcurrentThreshold)
	}
	pool, err := h.svc.Pool(h.ctx)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	if pool.Balance != 2_000_000_000 {
		t.Fatalf("pool balance = %d", pool.Balance)
	}
}

func TestServiceAuthorizeSession(t *testing.T) {
	h := newHarness(t)
	resp, err := h.svc.AuthorizeSession(h.ctx, h.authorizeInput(3600))
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if !resp.Live || resp.Nonce != 0 || resp.SessionKey != h.session.Addr {
		t.Fatalf("unexpected session: %+v", resp)
	}
	if resp.ExpiresAt != h.now.Unix()+3600 {
		t.Fatalf("expires_at = %d", resp.ExpiresAt)
	}
}

func TestServiceAuthorizeSessionRejectsReplay(t *testing.T) {
	h := newHarness(t)
	in := h.authorizeInput(3600)
	first, err := h.svc.AuthorizeSession(h.ctx, in)
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if _, err := h.svc.Hunt(h.ctx, h.huntInput(t, 1, program.NetSmall)); err != nil {
		t.Fatalf("hunt: %v", err)
	}
	h.now = h.now.Add(10 * time.Second)
	if _, err := h.svc.AuthorizeSession(h.ctx, in); !errors.Is(err, program.ErrAuthorizationReplayed) {
		t.Fatalf("replayed authorize: got %v, want %v", err, program.ErrAuthorizationReplayed)
	}
	sess, err := h.svc.Session(h.ctx, h.player.Addr)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if sess.Nonce != 1 || sess.Epoch != first.Epoch {
		t.Fatalf("replay changed the session: %+v", sess)
	}
}

func TestServiceAuthorizeSessionRejectsBadSignatures(t *testing.T) {
	h := newHarness(t)

	in := h.authorizeInput(3600)
	in.DurationSecs = 7200
	if _, err := h.svc.AuthorizeSession(h.ctx, in); !errors.Is(err, chain.ErrInvalidSignature) {
		t.Fatalf("tampered duration: got %v", err)
	}

	in = h.authorizeInput(3600)
	in.Signature = h.session.Sign(chain.AuthorizeSessionMessage(in.Owner, in.SessionKey, in.DurationSecs, in.IssuedAt))
	if _, err := h.svc.AuthorizeSession(h.ctx, in); !errors.Is(err, chain.ErrInvalidSignature) {
		t.Fatalf("wrong signer: got %v", err)
	}

	in = h.authorizeInput(3600)
	h.now = h.now.Add(2 * time.Minute)
	if _, err := h.svc.AuthorizeSession(h.ctx, in); !errors.Is(err, chain.ErrStaleSignature) {
		t.Fatalf("stale: got %v", err)
	}

	if _, err := h.svc.Session(h.ctx, h.player.Addr); !errors.Is(err, program.ErrSessionNotFound) {
		t.Fatalf("session should not exist, got %v", err)
	}
}

func TestServiceHuntPublishesAfterCommit(t *testing.T) {
	h := newHarness(t)
	if _, err := h.svc.AuthorizeSession(h.ctx, h.authorizeInput(3600)); err != nil {
		t.Fatalf("authorize: %v", err)
	}

	resp, err := h.svc.Hunt(h.ctx, h.huntInput(t, 1, program.NetSmall))
	if err != nil {
		t.Fatalf("hunt: %v", err)
	}
	if resp.Nonce != 1 || resp.Cost != 5_000_000 || resp.Slot != 500 {
		t.Fatalf("unexpected hunt: %+v", resp)
	}

	evs := h.rec.Events()
	if len(evs) != 1 {
		t.Fatalf("events = %d, want 1", len(evs))
	}
	if evs[0].ID != resp.ID || evs[0].Player != h.player.Addr.String() || evs[0].Success != resp.Success {
		t.Fatalf("event mismatch: %+v vs %+v", evs[0], resp)
	}

	hist, err := h.svc.HuntHistory(h.ctx, h.player.Addr, 10, 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist.Items) != 1 || hist.Items[0].ID != resp.ID || hist.Items[0].CreatedAt == nil {
		t.Fatalf("unexpected history: %+v", hist)
	}
}

func TestServiceRejectedHuntPublishesNothing(t *testing.T) {
	h := newHarness(t)
	if _, err := h.svc.AuthorizeSession(h.ctx, h.authorizeInput(3600)); err != nil {
		t.Fatalf("authorize: %v", err)
	}

	in := h.huntInput(t, 0, program.NetSmall)
	in.MemeID = 9
	if _, err := h.svc.Hunt(h.ctx, in); !errors.Is(err, program.ErrInvalidMemeID) {
		t.Fatalf("got %v, want invalid meme", err)
	}
	in = h.huntInput(t, 1, program.NetSmall)
	in.Signature[0] ^= 0xff
	if _, err := h.svc.Hunt(h.ctx, in); !errors.Is(err, program.ErrInvalidSessionKey) {
		t.Fatalf("got %v, want invalid session key", err)
	}
	if n := len(h.rec.Events()); n != 0 {
		t.Fatalf("events = %d, want 0", n)
	}
	sess, err := h.svc.Session(h.ctx, h.player.Addr)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if sess.Nonce != 0 {
		t.Fatalf("nonce = %d, want 0", sess.Nonce)
	}
}

func TestServiceRevokeSession(t *testing.T) {
	h := newHarness(t)
	if _, err := h.svc.AuthorizeSession(h.ctx, h.authorizeInput(3600)); err != nil {
		t.Fatalf("authorize: %v", err)
	}
	h.now = h.now.Add(time.Second)
	issuedAt := h.now.Unix()
	in := RevokeSessionInput{
		Owner:     h.player.Addr,
		IssuedAt:  issuedAt,
		Signature: h.session.Sign(chain.RevokeSessionMessage(h.player.Addr, issuedAt)),
	}
	if err := h.svc.RevokeSession(h.ctx, in); !errors.Is(err, chain.ErrInvalidSignature) {
		t.Fatalf("session key must not revoke, got %v", err)
	}
	in.Signature = h.player.Sign(chain.RevokeSessionMessage(h.player.Addr, issuedAt))
	if err := h.svc.RevokeSession(h.ctx, in); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := h.svc.Session(h.ctx, h.player.Addr); !errors.Is(err, program.ErrSessionNotFound) {
		t.Fatalf("got %v, want session not found", err)
	}
}

func TestServiceRoomLifecycle(t *testing.T) {
	h := newHarness(t)
	creator := testutil.NewKey(t, "creator")
	winner := testutil.NewKey(t, "winner")
	mint := testutil.NewKey(t, "mint").Addr

	funded, err := h.svc.Fund(h.ctx, FundInput{To: creator.Addr, Mint: &mint, Amount: 1_000})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if funded.Amount != 1_000 {
		t.Fatalf("minted amount = %d", funded.Amount)
	}
	winnerAcct, err := h.svc.Fund(h.ctx, FundInput{To: winner.Addr, Mint: &mint, Amount: 1})
	if err != nil {
		t.Fatalf("mint winner: %v", err)
	}

	issuedAt := h.now.Unix()
	create := CreateRoomInput{
		Creator:   creator.Addr,
		Mint:      mint,
		Source:    funded.Account,
		Amount:    600,
		RoomNonce: 1,
		IssuedAt:  issuedAt,
	}
	create.Signature = creator.Sign(chain.CreateRoomMessage(create.Creator, create.Mint, create.Source, create.Amount, create.RoomNonce, create.IssuedAt))
	room, err := h.svc.CreateRoom(h.ctx, create)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	if !room.IsActive || room.RemainingAmount != 600 {
		t.Fatalf("unexpected room: %+v", room)
	}

	if _, err := h.svc.ClaimReward(h.ctx, h.admin.Addr, room.Address, ClaimInput{Recipient: winnerAcct.Account, Amount: 100}); !errors.Is(err, program.ErrUnauthorizedRelayer) {
		t.Fatalf("got %v, want unauthorized relayer", err)
	}
	room, err = h.svc.ClaimReward(h.ctx, h.relayer.Addr, room.Address, ClaimInput{Recipient: winnerAcct.Account, Amount: 100})
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if room.RemainingAmount != 500 {
		t.Fatalf("remaining = %d", room.RemainingAmount)
	}

	settle := SettleRoomInput{Creator: creator.Addr, Room: room.Address, Destination: funded.Account, IssuedAt: issuedAt}
	settle.Signature = creator.Sign(chain.SettleRoomMessage(settle.Creator, settle.Room, settle.Destination, settle.IssuedAt))
	room, err = h.svc.SettleRoom(h.ctx, settle)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if room.IsActive || room.RemainingAmount != 0 {
		t.Fatalf("unexpected settled room: %+v", room)
	}

	acct, err := h.prog.TokenAccount(h.ctx, funded.Account)
	if err != nil {
		t.Fatalf("token account: %v", err)
	}
	if acct.Amount != 900 {
		t.Fatalf("creator tokens = %d, want 900", acct.Amount)
	}
}

func TestServiceLedgerFilters(t *testing.T) {
	h := newHarness(t)
	resp, err := h.svc.Ledger(h.ctx, store.LedgerFilter{Address: h.prog.PoolAddress()}, 50, 0)
	if err != nil {
		t.Fatalf("ledger: %v", err)
	}
	if len(resp.Items) != 1 || resp.Items[0].Amount != 2_000_000_000 {
		t.Fatalf("unexpected pool ledger: %+v", resp.Items)
	}
	resp, err = h.svc.Ledger(h.ctx, store.LedgerFilter{Kind: "fund"}, 50, 0)
	if err != nil {
		t.Fatalf("ledger: %v", err)
	}
	if len(resp.Items) != 2 {
		t.Fatalf("fund entries = %d, want 2", len(resp.Items))
	}
}

func TestServiceListsEchoClampedPaging(t *testing.T) {
	h := newHarness(t)
	if _, err := h.svc.AuthorizeSession(h.ctx, h.authorizeInput(3600)); err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if _, err := h.svc.Hunt(h.ctx, h.huntInput(t, 1, program.NetSmall)); err != nil {
		t.Fatalf("hunt: %v", err)
	}

	tests := []struct {
		name                  string
		limit, offset         int
		wantLimit, wantOffset int
	}{
		{"defaults", 0, 0, store.DefaultPageLimit, 0},
		{"over max", 1000, -5, store.MaxPageLimit, 0},
		{"negative limit", -1, 3, store.DefaultPageLimit, 3},
		{"in range", 10, 2, 10, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hist, err := h.svc.HuntHistory(h.ctx, h.player.Addr, tt.limit, tt.offset)
			if err != nil {
				t.Fatalf("history: %v", err)
			}
			if hist.Limit != tt.wantLimit || hist.Offset != tt.wantOffset {
				t.Fatalf("history paging = %d/%d, want %d/%d", hist.Limit, hist.Offset, tt.wantLimit, tt.wantOffset)
			}
			led, err := h.svc.Ledger(h.ctx, store.LedgerFilter{}, tt.limit, tt.offset)
			if err != nil {
				t.Fatalf("ledger: %v", err)
			}
			if led.Limit != tt.wantLimit || led.Offset != tt.wantOffset {
				t.Fatalf("ledger paging = %d/%d, want %d/%d", led.Limit, led.Offset, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}
