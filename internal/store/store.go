package store

import (
	"context"
	"time"

	"meme-hunter/internal/chain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the Postgres backend.
type Store struct {
	Pool *pgxpool.Pool
}

func New(dsn string) (*Store, error) {
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	if s.Pool != nil {
		s.Pool.Close()
	}
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.Pool.Ping(ctx)
}

func (s *Store) InTx(ctx context.Context, fn func(Tx) error) error {
	return s.run(ctx, pgx.TxOptions{}, false, fn)
}

func (s *Store) View(ctx context.Context, fn func(Tx) error) error {
	return s.run(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly}, true, fn)
}

func (s *Store) run(ctx context.Context, opts pgx.TxOptions, readOnly bool, fn func(Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, opts)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()
	if err := fn(&pgTx{tx: tx, readOnly: readOnly}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) ListLedgerEntries(ctx context.Context, f LedgerFilter, limit, offset int) ([]LedgerEntry, error) {
	limit, offset = PageBounds(limit, offset)
	rows, err := s.Pool.Query(ctx, `
SELECT id, kind, from_addr, to_addr, authority, mint, amount, ref_type, ref_id, created_at
FROM ledger_entries
WHERE ($1::text = '' OR from_addr = $1 OR to_addr = $1)
  AND ($2::text = '' OR kind = $2)
  AND ($3::text = '' OR ref_type = $3)
  AND ($4::text = '' OR ref_id = $4)
ORDER BY id DESC
LIMIT $5 OFFSET $6`, addrParam(f.Address), f.Kind, f.RefType, f.RefID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]LedgerEntry, 0, limit)
	for rows.Next() {
		var (
			e                         LedgerEntry
			from, to, authority, mint string
			amount                    int64
		)
		if err := rows.Scan(&e.ID, &e.Kind, &from, &to, &authority, &mint, &amount, &e.RefType, &e.RefID, &e.CreatedAt); err != nil {
			return nil, err
		}
		if err := addrVals([]*chain.Address{&e.From, &e.To, &e.Authority, &e.Mint}, from, to, authority, mint); err != nil {
			return nil, err
		}
		e.Amount = uint64(amount)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) ListHuntRecords(ctx context.Context, player chain.Address, limit, offset int) ([]HuntRecord, error) {
	limit, offset = PageBounds(limit, offset)
	rows, err := s.Pool.Query(ctx, `
SELECT id, player, nonce, slot, meme_id, net_size, success, reward, cost, airdrop_triggered, airdrop_reward, created_at
FROM hunt_records
WHERE ($1::text = '' OR player = $1)
ORDER BY id DESC
LIMIT $2 OFFSET $3`, addrParam(player), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]HuntRecord, 0, limit)
	for rows.Next() {
		var (
			r                                  HuntRecord
			p                                  string
			nonce, slot, reward, cost, airdrop int64
			meme, net                          int16
		)
		if err := rows.Scan(&r.ID, &p, &nonce, &slot, &meme, &net, &r.Success, &reward, &cost, &r.AirdropTriggered, &airdrop, &r.CreatedAt); err != nil {
			return nil, err
		}
		pa, err := addrVal(p)
		if err != nil {
			return nil, err
		}
		r.Player = pa
		r.Nonce, r.Slot = uint64(nonce), uint64(slot)
		r.MemeID, r.NetSize = uint8(meme), uint8(net)
		r.Reward, r.Cost, r.AirdropReward = uint64(reward), uint64(cost), uint64(airdrop)
		out = append(out, r)
	}
	return out, rows.Err()
}

// PruneWindowStats deletes window records whose slot is before beforeSlot.
func (s *Store) PruneWindowStats(ctx context.Context, beforeSlot uint64) (int64, error) {
	before, err := int8Param(beforeSlot)
	if err != nil {
		return 0, err
	}
	tag, err := s.Pool.Exec(ctx, `DELETE FROM window_stats WHERE slot < $1`, before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
