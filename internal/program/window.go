package program

import (
	"context"
	"math"
	"time"

	"meme-hunter/internal/store"

	"github.com/rs/zerolog/log"
)

// recordWindow counts one hunt in slot. A record still holding an older
// slot is reset rather than accumulated.
func recordWindow(w *store.WindowStats, slot uint64, bump uint8) error {
	if w.Slot != slot || w.TxCount == 0 {
		w.Slot = slot
		w.TxCount = 1
		w.Bump = bump
		return nil
	}
	if w.TxCount == math.MaxUint32 {
		return ErrOverflow
	}
	w.TxCount++
	return nil
}

// StartWindowJanitor prunes window records more than retention slots behind
// the current slot. A zero retention disables it.
func (p *Program) StartWindowJanitor(ctx context.Context, interval time.Duration, retention uint64) {
	if retention == 0 {
		return
	}
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_, _ = p.PruneWindows(ctx, retention)
			}
		}
	}()
}

// PruneWindows removes window records older than retention slots.
func (p *Program) PruneWindows(ctx context.Context, retention uint64) (int64, error) {
	slot := p.clock.Now().Slot
	if slot <= retention {
		return 0, nil
	}
	n, err := p.backend.PruneWindowStats(ctx, slot-retention)
	if err != nil {
		log.Warn().Err(err).Uint64("slot", slot).Msg("window prune failed")
		return 0, err
	}
	if n > 0 {
		log.Debug().Int64("pruned", n).Uint64("before_slot", slot-retention).Msg("window records pruned")
	}
	return n, nil
}
