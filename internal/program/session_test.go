package program

import (
	"errors"
	"testing"

	"meme-hunter/internal/chain"
	"meme-hunter/internal/store"
)

func TestAuthorizeSessionDurationBounds(t *testing.T) {
	tests := []struct {
		duration int64
		ok       bool
	}{
		{-1, false},
		{0, false},
		{1, true},
		{3600, true},
		{MaxSessionDuration, true},
		{MaxSessionDuration + 1, false},
	}
	for _, tt := range tests {
		f := newFixture(t)
		s, err := f.p.AuthorizeSession(f.ctx, f.player.Addr, f.session.Addr, tt.duration, f.issuedAt())
		if !tt.ok {
			if !errors.Is(err, ErrInvalidSessionDuration) {
				t.Fatalf("duration %d: err = %v, want %v", tt.duration, err, ErrInvalidSessionDuration)
			}
			continue
		}
		if err != nil {
			t.Fatalf("duration %d: %v", tt.duration, err)
		}
		if !IsLive(s, startUnix) {
			t.Fatalf("duration %d: session not live right after authorize", tt.duration)
		}
		if IsLive(s, s.ExpiresAt) {
			t.Fatalf("duration %d: session live at expires_at", tt.duration)
		}
	}
}

func TestSessionExpiryBoundary(t *testing.T) {
	f := newFixture(t)
	f.clock.Set(startSlot, 1000)
	s, err := f.p.AuthorizeSession(f.ctx, f.player.Addr, f.session.Addr, 86400, f.issuedAt())
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if s.ExpiresAt != 87400 || s.CreatedAt != 1000 {
		t.Fatalf("created/expires = %d/%d, want 1000/87400", s.CreatedAt, s.ExpiresAt)
	}
	if !IsLive(s, 87399) {
		t.Fatal("session not live at 87399")
	}
	if IsLive(s, 87400) {
		t.Fatal("session live at 87400")
	}
	if s.Address != f.p.SessionAddress(f.player.Addr) {
		t.Fatal("session stored away from its derived address")
	}
}

func TestIsLiveRejectsNullKey(t *testing.T) {
	s := &store.SessionInfo{ExpiresAt: 100}
	if IsLive(s, 1) {
		t.Fatal("null session key reported live")
	}
	if IsLive(nil, 1) {
		t.Fatal("nil session reported live")
	}
}

func TestAuthorizeSessionRejectsNullKey(t *testing.T) {
	f := newFixture(t)
	_, err := f.p.AuthorizeSession(f.ctx, f.player.Addr, chain.Address{}, 60, f.issuedAt())
	if !errors.Is(err, ErrInvalidSessionKey) {
		t.Fatalf("err = %v, want %v", err, ErrInvalidSessionKey)
	}
}

func TestAuthorizeSessionReplacesPrior(t *testing.T) {
	f := newFixture(t)
	f.authorize(t, f.player, f.session)
	f.deposit(t, 1_000_000_000)
	if _, err := f.p.Hunt(f.ctx, f.request(t, f.player, f.session, 1, NetSmall)); err != nil {
		t.Fatalf("hunt: %v", err)
	}

	f.clock.Set(startSlot+1, startUnix+10)
	s, err := f.p.AuthorizeSession(f.ctx, f.player.Addr, f.relayer.Addr, 60, f.issuedAt())
	if err != nil {
		t.Fatalf("re-authorize: %v", err)
	}
	if s.Nonce != 0 || s.SessionKey != f.relayer.Addr || s.ExpiresAt != startUnix+70 {
		t.Fatalf("unexpected replacement: %+v", s)
	}
	// The old key no longer authorizes hunts.
	if _, err := f.p.Hunt(f.ctx, f.request(t, f.player, f.session, 1, NetSmall)); !errors.Is(err, ErrInvalidSessionKey) {
		t.Fatalf("old key: err = %v, want %v", err, ErrInvalidSessionKey)
	}
}

func TestRevokeSession(t *testing.T) {
	f := newFixture(t)

	if err := f.p.RevokeSession(f.ctx, f.player.Addr, f.player.Addr, f.issuedAt()); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("revoke missing: err = %v", err)
	}

	f.authorize(t, f.player, f.session)
	if err := f.p.RevokeSession(f.ctx, f.session.Addr, f.player.Addr, f.issuedAt()); !errors.Is(err, ErrNotSessionOwner) {
		t.Fatalf("revoke by session key: err = %v, want %v", err, ErrNotSessionOwner)
	}
	if err := f.p.RevokeSession(f.ctx, f.player.Addr, f.player.Addr, f.issuedAt()); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := f.p.Session(f.ctx, f.player.Addr); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("session after revoke: err = %v", err)
	}
	if _, err := f.p.Hunt(f.ctx, f.request(t, f.player, f.session, 1, NetSmall)); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("hunt after revoke: err = %v", err)
	}
}

func TestReauthorizeInvalidatesOldHuntSignatures(t *testing.T) {
	f := newFixture(t)
	f.deposit(t, 1_000_000_000)
	f.authorize(t, f.player, f.session)

	first := f.request(t, f.player, f.session, 1, NetSmall)
	if _, err := f.p.Hunt(f.ctx, first); err != nil {
		t.Fatalf("hunt: %v", err)
	}
	// Same key, fresh authorization: the nonce starts over at zero.
	f.authorize(t, f.player, f.session)
	if got := f.nonce(t, f.player.Addr); got != 0 {
		t.Fatalf("nonce after re-authorize = %d, want 0", got)
	}
	if _, err := f.p.Hunt(f.ctx, first); !errors.Is(err, ErrInvalidSessionKey) {
		t.Fatalf("replayed hunt: err = %v, want %v", err, ErrInvalidSessionKey)
	}
	if _, err := f.p.Hunt(f.ctx, f.request(t, f.player, f.session, 1, NetSmall)); err != nil {
		t.Fatalf("hunt under new epoch: %v", err)
	}
}

func TestSessionEpochSurvivesRevoke(t *testing.T) {
	f := newFixture(t)
	f.authorize(t, f.player, f.session)
	before, err := f.p.Session(f.ctx, f.player.Addr)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if err := f.p.RevokeSession(f.ctx, f.player.Addr, f.player.Addr, f.issuedAt()); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	f.authorize(t, f.player, f.session)
	after, err := f.p.Session(f.ctx, f.player.Addr)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if after.Epoch <= before.Epoch {
		t.Fatalf("epoch after revoke = %d, want > %d", after.Epoch, before.Epoch)
	}
}

func TestAuthorizationIssuedAtMustAdvance(t *testing.T) {
	tests := []struct {
		name  string
		delta int64
		err   error
	}{
		{"same", 0, ErrAuthorizationReplayed},
		{"older", -1, ErrAuthorizationReplayed},
		{"newer", 1, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			const issued = startUnix + 50
			if _, err := f.p.AuthorizeSession(f.ctx, f.player.Addr, f.session.Addr, 60, issued); err != nil {
				t.Fatalf("authorize: %v", err)
			}
			_, err := f.p.AuthorizeSession(f.ctx, f.player.Addr, f.session.Addr, 60, issued+tt.delta)
			if !errors.Is(err, tt.err) {
				t.Fatalf("authorize again: err = %v, want %v", err, tt.err)
			}
			err = f.p.RevokeSession(f.ctx, f.player.Addr, f.player.Addr, issued+tt.delta)
			if tt.err == nil {
				// The revoke reuses the re-authorization's issued_at.
				if !errors.Is(err, ErrAuthorizationReplayed) {
					t.Fatalf("revoke: err = %v, want %v", err, ErrAuthorizationReplayed)
				}
				return
			}
			if !errors.Is(err, tt.err) {
				t.Fatalf("revoke: err = %v, want %v", err, tt.err)
			}
		})
	}
}
