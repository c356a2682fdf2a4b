package program

import (
	"context"
	"errors"

	"meme-hunter/internal/chain"
	"meme-hunter/internal/store"
)

// IsLive reports whether s can authorize a hunt at unix time now.
func IsLive(s *store.SessionInfo, now int64) bool {
	return s != nil && !s.SessionKey.IsZero() && now < s.ExpiresAt
}

// AuthorizeSession creates or replaces principal's session under a new epoch
// and resets the nonce. issuedAt must be later than that of every earlier
// authorization or revocation by principal.
func (p *Program) AuthorizeSession(ctx context.Context, principal, sessionKey chain.Address, duration, issuedAt int64) (*store.SessionInfo, error) {
	if duration <= 0 || duration > MaxSessionDuration {
		return nil, ErrInvalidSessionDuration
	}
	if sessionKey.IsZero() || principal.IsZero() {
		return nil, ErrInvalidSessionKey
	}
	addr, bump := chain.MustDeriveAddress(p.ID, chain.SessionSeeds(principal)...)
	now := p.clock.Now().UnixTimestamp
	s := store.SessionInfo{
		Address:    addr,
		Owner:      principal,
		SessionKey: sessionKey,
		CreatedAt:  now,
		ExpiresAt:  now + duration,
		Nonce:      0,
		Bump:       bump,
	}
	err := p.backend.InTx(ctx, func(tx store.Tx) error {
		ep, err := p.advanceEpoch(ctx, tx, principal, issuedAt)
		if err != nil {
			return err
		}
		if ep.Epoch == ^uint64(0) {
			return ErrOverflow
		}
		ep.Epoch++
		if err := tx.PutSessionEpoch(ctx, *ep); err != nil {
			return err
		}
		s.Epoch = ep.Epoch
		return tx.PutSession(ctx, s)
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// RevokeSession deletes principal's session. Only the owner may revoke, and
// issuedAt follows the same ordering rule as AuthorizeSession.
func (p *Program) RevokeSession(ctx context.Context, signer, principal chain.Address, issuedAt int64) error {
	addr := p.SessionAddress(principal)
	return p.backend.InTx(ctx, func(tx store.Tx) error {
		s, err := tx.GetSession(ctx, addr)
		if errors.Is(err, store.ErrNotFound) {
			return ErrSessionNotFound
		}
		if err != nil {
			return err
		}
		if s.Owner != signer {
			return ErrNotSessionOwner
		}
		ep, err := p.advanceEpoch(ctx, tx, principal, issuedAt)
		if err != nil {
			return err
		}
		if err := tx.PutSessionEpoch(ctx, *ep); err != nil {
			return err
		}
		return tx.DeleteSession(ctx, addr)
	})
}

// advanceEpoch loads principal's epoch record and moves its issued_at mark
// forward, rejecting anything not strictly newer.
func (p *Program) advanceEpoch(ctx context.Context, tx store.Tx, principal chain.Address, issuedAt int64) (*store.SessionEpoch, error) {
	ep, err := tx.GetSessionEpoch(ctx, p.SessionAddress(principal))
	if err != nil {
		return nil, err
	}
	if issuedAt <= ep.LastIssuedAt {
		return nil, ErrAuthorizationReplayed
	}
	ep.LastIssuedAt = issuedAt
	return ep, nil
}
