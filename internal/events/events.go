package events

import (
	"context"
	"errors"
	"sync"
	"time"
)

// HuntEvent is broadcast for every committed hunt.
type HuntEvent struct {
	ID               string    `json:"id"`
	Player           string    `json:"player"`
	MemeID           uint8     `json:"meme_id"`
	NetSize          uint8     `json:"net_size"`
	Success          bool      `json:"success"`
	Reward           uint64    `json:"reward"`
	Cost             uint64    `json:"cost"`
	AirdropTriggered bool      `json:"airdrop_triggered"`
	AirdropReward    uint64    `json:"airdrop_reward"`
	Nonce            uint64    `json:"nonce"`
	Slot             uint64    `json:"slot"`
	WindowCount      uint32    `json:"window_count"`
	At               time.Time `json:"at"`
}

type Publisher interface {
	PublishHunt(ctx context.Context, ev HuntEvent) error
	Close() error
}

type Nop struct{}

func (Nop) PublishHunt(context.Context, HuntEvent) error { return nil }

func (Nop) Close() error { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []HuntEvent
}

func (r *Recorder) PublishHunt(_ context.Context, ev HuntEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Events() []HuntEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]HuntEvent, len(r.events))
	copy(out, r.events)
	return out
}

// Multi publishes to every publisher in order and joins their errors.
type Multi []Publisher

func (m Multi) PublishHunt(ctx context.Context, ev HuntEvent) error {
	var errs []error
	for _, p := range m {
		if err := p.PublishHunt(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, p := range m {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
