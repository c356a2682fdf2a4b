package notify

import "time"

// Alert kinds derived from committed hunts.
const (
	KindAirdrop = "airdrop"
	KindBigWin  = "big_win"
)

type Target struct {
	Platform string `json:"platform"`
	Endpoint string `json:"endpoint"`
	Secret   string `json:"secret"`
	// ScopeType is "all" or "player"; ScopeValue holds the player address.
	ScopeType      string   `json:"scope_type"`
	ScopeValue     string   `json:"scope_value"`
	EventAllowlist []string `json:"event_allowlist"`
	Enabled        bool     `json:"enabled"`
}

type Config struct {
	Enabled             bool
	Targets             []Target
	Workers             int
	RetryMax            int
	RetryBase           time.Duration
	FailureThreshold    int
	CircuitOpenDuration time.Duration
	RequestTimeout      time.Duration
	DispatchBuffer      int
	// BigWinMin is the smallest reward reported as a big win; zero disables.
	BigWinMin uint64
}

type Alert struct {
	Kind   string
	HuntID string
	Player string
	MemeID uint8
	Amount uint64
	Slot   uint64
	At     time.Time
}

type MessageField struct {
	Name   string
	Value  string
	Inline bool
}

type FormattedMessage struct {
	Title       string
	Content     string
	Description string
	Color       int
	Timestamp   string
	Footer      string
	Fields      []MessageField
}

type alertJob struct {
	Target    Target
	Alert     Alert
	Formatted FormattedMessage
	Attempt   int
}

func (j alertJob) key() string {
	return targetKey(j.Target)
}

func targetKey(t Target) string {
	return t.Platform + "|" + t.Endpoint + "|" + t.ScopeType + "|" + t.ScopeValue
}
