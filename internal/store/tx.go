package store

import (
	"context"
	"errors"

	"meme-hunter/internal/chain"

	"github.com/jackc/pgx/v5"
)

type pgTx struct {
	tx       pgx.Tx
	readOnly bool
}

func (t *pgTx) lockClause() string {
	if t.readOnly {
		return ""
	}
	return " FOR UPDATE"
}

// shareClause takes a shared lock on rows that writers read but never change.
func (t *pgTx) shareClause() string {
	if t.readOnly {
		return ""
	}
	return " FOR SHARE"
}

func (t *pgTx) writable() error {
	if t.readOnly {
		return ErrReadOnly
	}
	return nil
}

func (t *pgTx) GetGameConfig(ctx context.Context, addr chain.Address) (*GameConfig, error) {
	var (
		authority, relayer           string
		poolBump, threshold, fee, bp int16
		cfg                          = GameConfig{Address: addr}
	)
	err := t.tx.QueryRow(ctx, `
SELECT authority, relayer, pool_bump, concurrent_threshold, owner_fee_percent, is_initialized, bump
FROM game_config WHERE address = $1`+t.shareClause(), addr.String()).
		Scan(&authority, &relayer, &poolBump, &threshold, &fee, &cfg.IsInitialized, &bp)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if err := addrVals([]*chain.Address{&cfg.Authority, &cfg.Relayer}, authority, relayer); err != nil {
		return nil, err
	}
	cfg.PoolBump, cfg.ConcurrentThreshold = uint8(poolBump), uint8(threshold)
	cfg.OwnerFeePercent, cfg.Bump = uint8(fee), uint8(bp)
	return &cfg, nil
}

func (t *pgTx) InsertGameConfig(ctx context.Context, cfg GameConfig) error {
	if err := t.writable(); err != nil {
		return err
	}
	_, err := t.tx.Exec(ctx, `
INSERT INTO game_config (address, authority, relayer, pool_bump, concurrent_threshold, owner_fee_percent, is_initialized, bump)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		cfg.Address.String(), addrParam(cfg.Authority), addrParam(cfg.Relayer), int16(cfg.PoolBump),
		int16(cfg.ConcurrentThreshold), int16(cfg.OwnerFeePercent), cfg.IsInitialized, int16(cfg.Bump))
	return mapWriteErr(err)
}

func (t *pgTx) GetSession(ctx context.Context, addr chain.Address) (*SessionInfo, error) {
	var (
		owner, key   string
		epoch, nonce int64
		bump         int16
		s            = SessionInfo{Address: addr}
	)
	err := t.tx.QueryRow(ctx, `
SELECT owner, session_key, created_at, expires_at, epoch, nonce, bump
FROM sessions WHERE address = $1`+t.lockClause(), addr.String()).
		Scan(&owner, &key, &s.CreatedAt, &s.ExpiresAt, &epoch, &nonce, &bump)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if err := addrVals([]*chain.Address{&s.Owner, &s.SessionKey}, owner, key); err != nil {
		return nil, err
	}
	s.Epoch, s.Nonce, s.Bump = uint64(epoch), uint64(nonce), uint8(bump)
	return &s, nil
}

func (t *pgTx) PutSession(ctx context.Context, s SessionInfo) error {
	if err := t.writable(); err != nil {
		return err
	}
	nonce, err := int8Param(s.Nonce)
	if err != nil {
		return err
	}
	epoch, err := int8Param(s.Epoch)
	if err != nil {
		return err
	}
	_, err = t.tx.Exec(ctx, `
INSERT INTO sessions (address, owner, session_key, created_at, expires_at, epoch, nonce, bump)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (address) DO UPDATE SET
  owner = EXCLUDED.owner,
  session_key = EXCLUDED.session_key,
  created_at = EXCLUDED.created_at,
  expires_at = EXCLUDED.expires_at,
  epoch = EXCLUDED.epoch,
  nonce = EXCLUDED.nonce,
  bump = EXCLUDED.bump,
  updated_at = now()`,
		s.Address.String(), addrParam(s.Owner), addrParam(s.SessionKey), s.CreatedAt, s.ExpiresAt, epoch, nonce, int16(s.Bump))
	return mapWriteErr(err)
}

func (t *pgTx) DeleteSession(ctx context.Context, addr chain.Address) error {
	if err := t.writable(); err != nil {
		return err
	}
	tag, err := t.tx.Exec(ctx, `DELETE FROM sessions WHERE address = $1`, addr.String())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *pgTx) GetSessionEpoch(ctx context.Context, addr chain.Address) (*SessionEpoch, error) {
	if !t.readOnly {
		if _, err := t.tx.Exec(ctx, `INSERT INTO session_epochs (address) VALUES ($1) ON CONFLICT (address) DO NOTHING`, addr.String()); err != nil {
			return nil, err
		}
	}
	var epoch, issuedAt int64
	err := t.tx.QueryRow(ctx, `SELECT epoch, last_issued_at FROM session_epochs WHERE address = $1`+t.lockClause(), addr.String()).
		Scan(&epoch, &issuedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &SessionEpoch{Address: addr}, nil
		}
		return nil, err
	}
	return &SessionEpoch{Address: addr, Epoch: uint64(epoch), LastIssuedAt: issuedAt}, nil
}

func (t *pgTx) PutSessionEpoch(ctx context.Context, e SessionEpoch) error {
	if err := t.writable(); err != nil {
		return err
	}
	epoch, err := int8Param(e.Epoch)
	if err != nil {
		return err
	}
	_, err = t.tx.Exec(ctx, `
INSERT INTO session_epochs (address, epoch, last_issued_at) VALUES ($1, $2, $3)
ON CONFLICT (address) DO UPDATE SET epoch = EXCLUDED.epoch, last_issued_at = EXCLUDED.last_issued_at, updated_at = now()`,
		e.Address.String(), epoch, e.LastIssuedAt)
	return err
}

func (t *pgTx) GetWindowStats(ctx context.Context, addr chain.Address) (*WindowStats, error) {
	if !t.readOnly {
		if _, err := t.tx.Exec(ctx, `INSERT INTO window_stats (address) VALUES ($1) ON CONFLICT (address) DO NOTHING`, addr.String()); err != nil {
			return nil, err
		}
	}
	var (
		slot, count int64
		bump        int16
	)
	err := t.tx.QueryRow(ctx, `SELECT slot, tx_count, bump FROM window_stats WHERE address = $1`+t.lockClause(), addr.String()).
		Scan(&slot, &count, &bump)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &WindowStats{Address: addr}, nil
		}
		return nil, err
	}
	return &WindowStats{Address: addr, Slot: uint64(slot), TxCount: uint32(count), Bump: uint8(bump)}, nil
}

func (t *pgTx) PutWindowStats(ctx context.Context, w WindowStats) error {
	if err := t.writable(); err != nil {
		return err
	}
	slot, err := int8Param(w.Slot)
	if err != nil {
		return err
	}
	_, err = t.tx.Exec(ctx, `
INSERT INTO window_stats (address, slot, tx_count, bump) VALUES ($1, $2, $3, $4)
ON CONFLICT (address) DO UPDATE SET slot = EXCLUDED.slot, tx_count = EXCLUDED.tx_count, bump = EXCLUDED.bump`,
		w.Address.String(), slot, int64(w.TxCount), int16(w.Bump))
	return err
}

func (t *pgTx) GetBalance(ctx context.Context, addr chain.Address) (uint64, error) {
	if !t.readOnly {
		if _, err := t.tx.Exec(ctx, `INSERT INTO balances (address) VALUES ($1) ON CONFLICT (address) DO NOTHING`, addr.String()); err != nil {
			return 0, err
		}
	}
	var v int64
	err := t.tx.QueryRow(ctx, `SELECT lamports FROM balances WHERE address = $1`+t.lockClause(), addr.String()).Scan(&v)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return uint64(v), nil
}

func (t *pgTx) SetBalance(ctx context.Context, addr chain.Address, amount uint64) error {
	if err := t.writable(); err != nil {
		return err
	}
	v, err := int8Param(amount)
	if err != nil {
		return err
	}
	_, err = t.tx.Exec(ctx, `
INSERT INTO balances (address, lamports) VALUES ($1, $2)
ON CONFLICT (address) DO UPDATE SET lamports = EXCLUDED.lamports, updated_at = now()`, addr.String(), v)
	return err
}

func (t *pgTx) GetTokenAccount(ctx context.Context, addr chain.Address) (*TokenAccount, error) {
	var (
		mint, owner string
		amount      int64
	)
	err := t.tx.QueryRow(ctx, `SELECT mint, owner, amount FROM token_accounts WHERE address = $1`+t.lockClause(), addr.String()).
		Scan(&mint, &owner, &amount)
	if err != nil {
		return nil, mapNotFound(err)
	}
	ta := TokenAccount{Address: addr, Amount: uint64(amount)}
	if err := addrVals([]*chain.Address{&ta.Mint, &ta.Owner}, mint, owner); err != nil {
		return nil, err
	}
	return &ta, nil
}

func (t *pgTx) InsertTokenAccount(ctx context.Context, ta TokenAccount) error {
	if err := t.writable(); err != nil {
		return err
	}
	amount, err := int8Param(ta.Amount)
	if err != nil {
		return err
	}
	_, err = t.tx.Exec(ctx, `INSERT INTO token_accounts (address, mint, owner, amount) VALUES ($1, $2, $3, $4)`,
		ta.Address.String(), addrParam(ta.Mint), addrParam(ta.Owner), amount)
	return mapWriteErr(err)
}

func (t *pgTx) SetTokenAmount(ctx context.Context, addr chain.Address, amount uint64) error {
	if err := t.writable(); err != nil {
		return err
	}
	v, err := int8Param(amount)
	if err != nil {
		return err
	}
	tag, err := t.tx.Exec(ctx, `UPDATE token_accounts SET amount = $2, updated_at = now() WHERE address = $1`, addr.String(), v)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *pgTx) GetRoom(ctx context.Context, addr chain.Address) (*Room, error) {
	var (
		creator, mint, vault    string
		total, remaining, nonce int64
		bump                    int16
		r                       = Room{Address: addr}
	)
	err := t.tx.QueryRow(ctx, `
SELECT creator, token_mint, token_vault, total_deposited, remaining_amount, is_active, bump, room_nonce
FROM rooms WHERE address = $1`+t.lockClause(), addr.String()).
		Scan(&creator, &mint, &vault, &total, &remaining, &r.IsActive, &bump, &nonce)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if err := addrVals([]*chain.Address{&r.Creator, &r.TokenMint, &r.TokenVault}, creator, mint, vault); err != nil {
		return nil, err
	}
	r.TotalDeposited, r.RemainingAmount, r.RoomNonce = uint64(total), uint64(remaining), uint64(nonce)
	r.Bump = uint8(bump)
	return &r, nil
}

func (t *pgTx) InsertRoom(ctx context.Context, r Room) error {
	if err := t.writable(); err != nil {
		return err
	}
	vs, err := int8Params(r.TotalDeposited, r.RemainingAmount, r.RoomNonce)
	if err != nil {
		return err
	}
	_, err = t.tx.Exec(ctx, `
INSERT INTO rooms (address, creator, token_mint, token_vault, total_deposited, remaining_amount, is_active, bump, room_nonce)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		r.Address.String(), addrParam(r.Creator), addrParam(r.TokenMint), addrParam(r.TokenVault),
		vs[0], vs[1], r.IsActive, int16(r.Bump), vs[2])
	return mapWriteErr(err)
}

func (t *pgTx) UpdateRoom(ctx context.Context, r Room) error {
	if err := t.writable(); err != nil {
		return err
	}
	vs, err := int8Params(r.TotalDeposited, r.RemainingAmount)
	if err != nil {
		return err
	}
	tag, err := t.tx.Exec(ctx, `
UPDATE rooms SET total_deposited = $2, remaining_amount = $3, is_active = $4
WHERE address = $1`, r.Address.String(), vs[0], vs[1], r.IsActive)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *pgTx) InsertLedgerEntry(ctx context.Context, e LedgerEntry) error {
	if err := t.writable(); err != nil {
		return err
	}
	amount, err := int8Param(e.Amount)
	if err != nil {
		return err
	}
	if e.ID == "" {
		e.ID = NewID()
	}
	_, err = t.tx.Exec(ctx, `
INSERT INTO ledger_entries (id, kind, from_addr, to_addr, authority, mint, amount, ref_type, ref_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID, e.Kind, addrParam(e.From), addrParam(e.To), addrParam(e.Authority), addrParam(e.Mint),
		amount, e.RefType, e.RefID)
	return mapWriteErr(err)
}

func (t *pgTx) InsertHuntRecord(ctx context.Context, r HuntRecord) error {
	if err := t.writable(); err != nil {
		return err
	}
	vs, err := int8Params(r.Nonce, r.Slot, r.Reward, r.Cost, r.AirdropReward)
	if err != nil {
		return err
	}
	if r.ID == "" {
		r.ID = NewID()
	}
	_, err = t.tx.Exec(ctx, `
INSERT INTO hunt_records (id, player, nonce, slot, meme_id, net_size, success, reward, cost, airdrop_triggered, airdrop_reward)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		r.ID, addrParam(r.Player), vs[0], vs[1], int16(r.MemeID), int16(r.NetSize), r.Success,
		vs[2], vs[3], r.AirdropTriggered, vs[4])
	return mapWriteErr(err)
}
