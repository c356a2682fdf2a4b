package notify

import (
	"fmt"
	"strconv"
	"time"

	"meme-hunter/internal/events"
)

const (
	colorAirdrop = 0xF1C40F
	colorBigWin  = 0x3BA55D

	shortIDLimit  = 10
	defaultFooter = "meme-hunter alerts"
)

// Classify returns the alerts a hunt should raise, airdrop first.
func Classify(ev events.HuntEvent, bigWinMin uint64) []Alert {
	var out []Alert
	base := Alert{HuntID: ev.ID, Player: ev.Player, MemeID: ev.MemeID, Slot: ev.Slot, At: ev.At}
	if ev.AirdropTriggered && ev.AirdropReward > 0 {
		a := base
		a.Kind = KindAirdrop
		a.Amount = ev.AirdropReward
		out = append(out, a)
	}
	if bigWinMin > 0 && ev.Success && ev.Reward >= bigWinMin {
		a := base
		a.Kind = KindBigWin
		a.Amount = ev.Reward
		out = append(out, a)
	}
	return out
}

func FormatMessage(a Alert) (FormattedMessage, bool) {
	player := shortID(fallback(a.Player, "unknown"), shortIDLimit)
	msg := FormattedMessage{
		Timestamp: alertTimestamp(a.At),
		Footer:    defaultFooter,
		Fields: []MessageField{
			{Name: "Player", Value: fallback(a.Player, "-"), Inline: false},
			{Name: "Meme", Value: strconv.Itoa(int(a.MemeID)), Inline: true},
			{Name: "Amount", Value: strconv.FormatUint(a.Amount, 10), Inline: true},
			{Name: "Slot", Value: strconv.FormatUint(a.Slot, 10), Inline: true},
			{Name: "Hunt", Value: fallback(a.HuntID, "-"), Inline: true},
		},
	}
	switch a.Kind {
	case KindAirdrop:
		msg.Title = fmt.Sprintf("Airdrop · P:%s", player)
		msg.Content = fmt.Sprintf("airdrop %d to %s", a.Amount, player)
		msg.Description = fmt.Sprintf("Concurrent window paid an airdrop of %d.", a.Amount)
		msg.Color = colorAirdrop
	case KindBigWin:
		msg.Title = fmt.Sprintf("Big Win · P:%s", player)
		msg.Content = fmt.Sprintf("meme %d caught for %d", a.MemeID, a.Amount)
		msg.Description = fmt.Sprintf("Meme %d caught for %d.", a.MemeID, a.Amount)
		msg.Color = colorBigWin
	default:
		return FormattedMessage{}, false
	}
	return msg, true
}

func shortID(v string, max int) string {
	if max <= 0 || len(v) <= max {
		return v
	}
	return v[:max]
}

func alertTimestamp(at time.Time) string {
	if at.IsZero() {
		return ""
	}
	return at.UTC().Format(time.RFC3339)
}

func fallback(v, d string) string {
	if v == "" {
		return d
	}
	return v
}
