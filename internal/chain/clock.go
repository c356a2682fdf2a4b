package chain

import "time"

const DefaultSlotDuration = 400 * time.Millisecond

// Clock is the ledger's view of time for one transaction: the current
// confirmation window (slot) and the unix timestamp.
type Clock struct {
	Slot          uint64
	UnixTimestamp int64
}

func (c Clock) SlotBytes() []byte {
	return U64LE(c.Slot)
}

type ClockSource interface {
	Now() Clock
}

// SlotClock advances one slot per SlotDuration since Genesis.
type SlotClock struct {
	Genesis      time.Time
	SlotDuration time.Duration
	now          func() time.Time
}

func NewSlotClock(genesis time.Time, slotDuration time.Duration) *SlotClock {
	if slotDuration <= 0 {
		slotDuration = DefaultSlotDuration
	}
	return &SlotClock{Genesis: genesis, SlotDuration: slotDuration, now: time.Now}
}

func (c *SlotClock) Now() Clock {
	now := c.now()
	elapsed := now.Sub(c.Genesis)
	if elapsed < 0 {
		elapsed = 0
	}
	return Clock{
		Slot:          uint64(elapsed / c.SlotDuration),
		UnixTimestamp: now.Unix(),
	}
}

type FixedClock struct {
	Clock Clock
}

func (c *FixedClock) Now() Clock {
	return c.Clock
}

func (c *FixedClock) Set(slot uint64, unix int64) {
	c.Clock = Clock{Slot: slot, UnixTimestamp: unix}
}
