package program

import (
	"context"
	"errors"

	"meme-hunter/internal/chain"
	"meme-hunter/internal/ledger"
	"meme-hunter/internal/store"
)

// HuntRequest is one relayed play action. Signature is the session key's
// signature over chain.HuntMessage with the session's epoch and current nonce.
type HuntRequest struct {
	Relayer    chain.Address
	Player     chain.Address
	SessionKey chain.Address
	Signature  []byte
	MemeID     uint8
	NetSize    uint8
}

type HuntResult struct {
	ID               string
	Player           chain.Address
	MemeID           uint8
	NetSize          uint8
	Success          bool
	Reward           uint64
	Cost             uint64
	AirdropTriggered bool
	AirdropReward    uint64
	Nonce            uint64
	Slot             uint64
	WindowCount      uint32
}

// Hunt resolves one play action. Any error leaves every account as it was.
func (p *Program) Hunt(ctx context.Context, req HuntRequest) (*HuntResult, error) {
	var res *HuntResult
	err := p.backend.InTx(ctx, func(tx store.Tx) error {
		var err error
		res, err = p.resolve(ctx, tx, req, p.clock.Now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (p *Program) resolve(ctx context.Context, tx store.Tx, req HuntRequest, now chain.Clock) (*HuntResult, error) {
	cfg, err := p.loadConfig(ctx, tx)
	if err != nil {
		return nil, err
	}
	if req.Relayer != cfg.Relayer {
		return nil, ErrUnauthorizedRelayer
	}

	reward, err := RewardFor(req.MemeID)
	if err != nil {
		return nil, err
	}
	cost, err := CostFor(req.NetSize)
	if err != nil {
		return nil, err
	}

	session, err := tx.GetSession(ctx, p.SessionAddress(req.Player))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	if req.SessionKey != session.SessionKey {
		return nil, ErrInvalidSessionKey
	}
	msg := chain.HuntMessage(req.Player, req.MemeID, req.NetSize, session.Epoch, session.Nonce)
	if err := chain.Verify(req.SessionKey, msg, req.Signature); err != nil {
		return nil, ErrInvalidSessionKey
	}
	if !IsLive(session, now.UnixTimestamp) {
		return nil, ErrSessionExpired
	}
	if req.Player != session.Owner {
		return nil, ErrInvalidSessionKey
	}

	if session.Nonce == ^uint64(0) {
		return nil, ErrOverflow
	}
	session.Nonce++

	ownerFee, poolAmount, err := FeeSplit(cost, cfg.OwnerFeePercent)
	if err != nil {
		return nil, err
	}

	res := &HuntResult{
		ID:      store.NewID(),
		Player:  req.Player,
		MemeID:  req.MemeID,
		NetSize: req.NetSize,
		Cost:    cost,
		Nonce:   session.Nonce,
		Slot:    now.Slot,
	}
	ref := func(kind string) ledger.Ref {
		return ledger.Ref{Kind: kind, Type: "hunt", ID: res.ID}
	}

	relayer := ledger.Signer(req.Relayer)
	if poolAmount > 0 {
		if err := p.ledger.Transfer(ctx, tx, req.Relayer, p.poolAddr, relayer, poolAmount, ref("hunt_pool_payment")); err != nil {
			return nil, paymentErr(err)
		}
	}
	if ownerFee > 0 {
		if err := p.ledger.Transfer(ctx, tx, req.Relayer, cfg.Authority, relayer, ownerFee, ref("hunt_owner_fee")); err != nil {
			return nil, paymentErr(err)
		}
	}

	windowAddr, windowBump := chain.MustDeriveAddress(p.ID, chain.WindowSeeds(now.Slot)...)
	window, err := tx.GetWindowStats(ctx, windowAddr)
	if err != nil {
		return nil, err
	}
	if err := recordWindow(window, now.Slot, windowBump); err != nil {
		return nil, err
	}
	res.WindowCount = window.TxCount

	pool := p.poolSigner(cfg)
	if HuntSucceeds(req.Player, session.Nonce, now.Slot, req.NetSize, req.MemeID) {
		bal, err := tx.GetBalance(ctx, p.poolAddr)
		if err != nil {
			return nil, err
		}
		if bal < reward {
			return nil, ErrInsufficientPoolFunds
		}
		if err := p.ledger.Transfer(ctx, tx, p.poolAddr, req.Player, pool, reward, ref("hunt_reward")); err != nil {
			return nil, err
		}
		res.Success = true
		res.Reward = reward
	}

	if window.TxCount >= uint32(cfg.ConcurrentThreshold) && AirdropTriggers(req.Player, session.Nonce, now.Slot) {
		bal, err := tx.GetBalance(ctx, p.poolAddr)
		if err != nil {
			return nil, err
		}
		amount := PercentOf(bal, AirdropPercent(req.Player, session.Nonce, now.Slot))
		if amount > 0 && bal >= amount {
			if err := p.ledger.Transfer(ctx, tx, p.poolAddr, req.Player, pool, amount, ref("hunt_airdrop")); err != nil {
				return nil, err
			}
			res.AirdropTriggered = true
			res.AirdropReward = amount
		}
	}

	if err := tx.PutSession(ctx, *session); err != nil {
		return nil, err
	}
	if err := tx.PutWindowStats(ctx, *window); err != nil {
		return nil, err
	}
	err = tx.InsertHuntRecord(ctx, store.HuntRecord{
		ID:               res.ID,
		Player:           res.Player,
		Nonce:            res.Nonce,
		Slot:             res.Slot,
		MemeID:           res.MemeID,
		NetSize:          res.NetSize,
		Success:          res.Success,
		Reward:           res.Reward,
		Cost:             res.Cost,
		AirdropTriggered: res.AirdropTriggered,
		AirdropReward:    res.AirdropReward,
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func paymentErr(err error) error {
	if errors.Is(err, ledger.ErrInsufficientFunds) {
		return ErrInsufficientPayment
	}
	return err
}
