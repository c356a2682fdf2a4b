package store

import (
	"context"
	"maps"
	"sync"
	"time"

	"meme-hunter/internal/chain"
)

// Memory is an in-process Backend. Transactions run one at a time against a
// copy of the state that replaces it only when fn succeeds.
type Memory struct {
	mu    sync.Mutex
	state memState
}

type memState struct {
	configs  map[chain.Address]GameConfig
	balances map[chain.Address]uint64
	sessions map[chain.Address]SessionInfo
	epochs   map[chain.Address]SessionEpoch
	windows  map[chain.Address]WindowStats
	tokens   map[chain.Address]TokenAccount
	rooms    map[chain.Address]Room
	ledger   []LedgerEntry
	hunts    []HuntRecord
}

func NewMemory() *Memory {
	return &Memory{state: memState{
		configs:  map[chain.Address]GameConfig{},
		balances: map[chain.Address]uint64{},
		sessions: map[chain.Address]SessionInfo{},
		epochs:   map[chain.Address]SessionEpoch{},
		windows:  map[chain.Address]WindowStats{},
		tokens:   map[chain.Address]TokenAccount{},
		rooms:    map[chain.Address]Room{},
	}}
}

func (s memState) clone() memState {
	return memState{
		configs:  maps.Clone(s.configs),
		balances: maps.Clone(s.balances),
		sessions: maps.Clone(s.sessions),
		epochs:   maps.Clone(s.epochs),
		windows:  maps.Clone(s.windows),
		tokens:   maps.Clone(s.tokens),
		rooms:    maps.Clone(s.rooms),
		ledger:   s.ledger[:len(s.ledger):len(s.ledger)],
		hunts:    s.hunts[:len(s.hunts):len(s.hunts)],
	}
}

func (m *Memory) InTx(ctx context.Context, fn func(Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	tx := &memTx{st: m.state.clone()}
	if err := fn(tx); err != nil {
		return err
	}
	m.state = tx.st
	return nil
}

func (m *Memory) View(ctx context.Context, fn func(Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(&memTx{st: m.state, readOnly: true})
}

func (m *Memory) ListLedgerEntries(_ context.Context, f LedgerFilter, limit, offset int) ([]LedgerEntry, error) {
	limit, offset = PageBounds(limit, offset)
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []LedgerEntry{}
	for i := len(m.state.ledger) - 1; i >= 0 && len(out) < limit; i-- {
		e := m.state.ledger[i]
		if !f.Address.IsZero() && e.From != f.Address && e.To != f.Address {
			continue
		}
		if (f.Kind != "" && e.Kind != f.Kind) || (f.RefType != "" && e.RefType != f.RefType) || (f.RefID != "" && e.RefID != f.RefID) {
			continue
		}
		if offset > 0 {
			offset--
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *Memory) ListHuntRecords(_ context.Context, player chain.Address, limit, offset int) ([]HuntRecord, error) {
	limit, offset = PageBounds(limit, offset)
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []HuntRecord{}
	for i := len(m.state.hunts) - 1; i >= 0 && len(out) < limit; i-- {
		r := m.state.hunts[i]
		if !player.IsZero() && r.Player != player {
			continue
		}
		if offset > 0 {
			offset--
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *Memory) PruneWindowStats(_ context.Context, beforeSlot uint64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for addr, w := range m.state.windows {
		if w.Slot < beforeSlot {
			delete(m.state.windows, addr)
			n++
		}
	}
	return n, nil
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Close() {}

type memTx struct {
	st       memState
	readOnly bool
}

func (t *memTx) writable() error {
	if t.readOnly {
		return ErrReadOnly
	}
	return nil
}

func (t *memTx) GetGameConfig(_ context.Context, addr chain.Address) (*GameConfig, error) {
	cfg, ok := t.st.configs[addr]
	if !ok {
		return nil, ErrNotFound
	}
	return &cfg, nil
}

func (t *memTx) InsertGameConfig(_ context.Context, cfg GameConfig) error {
	if err := t.writable(); err != nil {
		return err
	}
	if _, ok := t.st.configs[cfg.Address]; ok {
		return ErrConflict
	}
	t.st.configs[cfg.Address] = cfg
	return nil
}

func (t *memTx) GetSession(_ context.Context, addr chain.Address) (*SessionInfo, error) {
	s, ok := t.st.sessions[addr]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (t *memTx) PutSession(_ context.Context, s SessionInfo) error {
	if err := t.writable(); err != nil {
		return err
	}
	if s.Nonce > maxStored || s.Epoch > maxStored {
		return ErrOutOfRange
	}
	t.st.sessions[s.Address] = s
	return nil
}

func (t *memTx) DeleteSession(_ context.Context, addr chain.Address) error {
	if err := t.writable(); err != nil {
		return err
	}
	if _, ok := t.st.sessions[addr]; !ok {
		return ErrNotFound
	}
	delete(t.st.sessions, addr)
	return nil
}

func (t *memTx) GetSessionEpoch(_ context.Context, addr chain.Address) (*SessionEpoch, error) {
	e, ok := t.st.epochs[addr]
	if !ok {
		e = SessionEpoch{Address: addr}
	}
	return &e, nil
}

func (t *memTx) PutSessionEpoch(_ context.Context, e SessionEpoch) error {
	if err := t.writable(); err != nil {
		return err
	}
	if e.Epoch > maxStored {
		return ErrOutOfRange
	}
	t.st.epochs[e.Address] = e
	return nil
}

func (t *memTx) GetWindowStats(_ context.Context, addr chain.Address) (*WindowStats, error) {
	w, ok := t.st.windows[addr]
	if !ok {
		w = WindowStats{Address: addr}
	}
	return &w, nil
}

func (t *memTx) PutWindowStats(_ context.Context, w WindowStats) error {
	if err := t.writable(); err != nil {
		return err
	}
	if w.Slot > maxStored {
		return ErrOutOfRange
	}
	t.st.windows[w.Address] = w
	return nil
}

func (t *memTx) GetBalance(_ context.Context, addr chain.Address) (uint64, error) {
	return t.st.balances[addr], nil
}

func (t *memTx) SetBalance(_ context.Context, addr chain.Address, amount uint64) error {
	if err := t.writable(); err != nil {
		return err
	}
	if amount > maxStored {
		return ErrOutOfRange
	}
	t.st.balances[addr] = amount
	return nil
}

func (t *memTx) GetTokenAccount(_ context.Context, addr chain.Address) (*TokenAccount, error) {
	ta, ok := t.st.tokens[addr]
	if !ok {
		return nil, ErrNotFound
	}
	return &ta, nil
}

func (t *memTx) InsertTokenAccount(_ context.Context, ta TokenAccount) error {
	if err := t.writable(); err != nil {
		return err
	}
	if ta.Amount > maxStored {
		return ErrOutOfRange
	}
	if _, ok := t.st.tokens[ta.Address]; ok {
		return ErrConflict
	}
	t.st.tokens[ta.Address] = ta
	return nil
}

func (t *memTx) SetTokenAmount(_ context.Context, addr chain.Address, amount uint64) error {
	if err := t.writable(); err != nil {
		return err
	}
	if amount > maxStored {
		return ErrOutOfRange
	}
	ta, ok := t.st.tokens[addr]
	if !ok {
		return ErrNotFound
	}
	ta.Amount = amount
	t.st.tokens[addr] = ta
	return nil
}

func (t *memTx) GetRoom(_ context.Context, addr chain.Address) (*Room, error) {
	r, ok := t.st.rooms[addr]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (t *memTx) InsertRoom(_ context.Context, r Room) error {
	if err := t.writable(); err != nil {
		return err
	}
	if r.TotalDeposited > maxStored || r.RoomNonce > maxStored {
		return ErrOutOfRange
	}
	if _, ok := t.st.rooms[r.Address]; ok {
		return ErrConflict
	}
	t.st.rooms[r.Address] = r
	return nil
}

func (t *memTx) UpdateRoom(_ context.Context, r Room) error {
	if err := t.writable(); err != nil {
		return err
	}
	old, ok := t.st.rooms[r.Address]
	if !ok {
		return ErrNotFound
	}
	old.TotalDeposited, old.RemainingAmount, old.IsActive = r.TotalDeposited, r.RemainingAmount, r.IsActive
	t.st.rooms[r.Address] = old
	return nil
}

func (t *memTx) InsertLedgerEntry(_ context.Context, e LedgerEntry) error {
	if err := t.writable(); err != nil {
		return err
	}
	if e.Amount > maxStored {
		return ErrOutOfRange
	}
	if e.ID == "" {
		e.ID = NewID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	t.st.ledger = append(t.st.ledger, e)
	return nil
}

func (t *memTx) InsertHuntRecord(_ context.Context, r HuntRecord) error {
	if err := t.writable(); err != nil {
		return err
	}
	if r.ID == "" {
		r.ID = NewID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	t.st.hunts = append(t.st.hunts, r)
	return nil
}
