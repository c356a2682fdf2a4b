package main

import (
	"fmt"

	"meme-hunter/internal/config"
	"meme-hunter/internal/events"

	"github.com/spf13/cobra"
)

func newWatchCmd(cfg config.CLIConfig) *cobra.Command {
	var player string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream hunt results published by the relayer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var filter string
			if player != "" {
				addr, err := parseAddressArg("player", player)
				if err != nil {
					return err
				}
				filter = addr.String()
			}
			client, err := events.DialRedis(cmd.Context(), cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
			if err != nil {
				return err
			}
			defer client.Close()
			out := cmd.OutOrStdout()
			return events.Subscribe(cmd.Context(), client, cfg.RedisHuntChannel, func(ev events.HuntEvent) {
				if filter != "" && ev.Player != filter {
					return
				}
				_, _ = fmt.Fprintf(out, "%s slot=%d player=%s meme=%d net=%d success=%t reward=%d airdrop=%d\n",
					ev.At.Format("15:04:05"), ev.Slot, ev.Player, ev.MemeID, ev.NetSize, ev.Success, ev.Reward, ev.AirdropReward)
			})
		},
	}
	cmd.Flags().StringVar(&player, "player", "", "only show hunts by this address")
	return cmd
}
