package main

import (
	"time"

	"meme-hunter/internal/app/relay"
	"meme-hunter/internal/chain"

	"github.com/spf13/cobra"
)

// newSignCmd builds request bodies for the relayer's signed endpoints.
func newSignCmd() *cobra.Command {
	var keyHex string
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign a request body for the relayer API",
	}
	cmd.PersistentFlags().StringVar(&keyHex, "key", "", "hex ed25519 seed of the signer (default $"+keyEnv+")")

	cmd.AddCommand(
		newSignSessionCmd(&keyHex),
		newSignRevokeCmd(&keyHex),
		newSignHuntCmd(&keyHex),
		newSignRoomCmd(&keyHex),
		newSignSettleCmd(&keyHex),
	)
	return cmd
}

func newSignSessionCmd(keyHex *string) *cobra.Command {
	var sessionKey string
	var duration time.Duration
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Authorize a session key for the signer (POST /api/sessions)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := loadKey(*keyHex)
			if err != nil {
				return err
			}
			sk, err := parseAddressArg("session-key", sessionKey)
			if err != nil {
				return err
			}
			owner := keyAddress(key)
			secs := int64(duration / time.Second)
			issuedAt := time.Now().Unix()
			return printJSON(cmd.OutOrStdout(), relay.AuthorizeSessionInput{
				Owner:        owner,
				SessionKey:   sk,
				DurationSecs: secs,
				IssuedAt:     issuedAt,
				Signature:    chain.Sign(key, chain.AuthorizeSessionMessage(owner, sk, secs, issuedAt)),
			})
		},
	}
	cmd.Flags().StringVar(&sessionKey, "session-key", "", "address of the delegated key")
	cmd.Flags().DurationVar(&duration, "duration", 24*time.Hour, "session lifetime")
	_ = cmd.MarkFlagRequired("session-key")
	return cmd
}

func newSignRevokeCmd(keyHex *string) *cobra.Command {
	return &cobra.Command{
		Use:   "revoke",
		Short: "Revoke the signer's session (DELETE /api/sessions/{owner})",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := loadKey(*keyHex)
			if err != nil {
				return err
			}
			owner := keyAddress(key)
			issuedAt := time.Now().Unix()
			return printJSON(cmd.OutOrStdout(), relay.RevokeSessionInput{
				Owner:     owner,
				IssuedAt:  issuedAt,
				Signature: chain.Sign(key, chain.RevokeSessionMessage(owner, issuedAt)),
			})
		},
	}
}

func newSignHuntCmd(keyHex *string) *cobra.Command {
	var player string
	var memeID, netSize uint8
	var epoch, nonce uint64
	cmd := &cobra.Command{
		Use:   "hunt",
		Short: "Sign a hunt with a session key (POST /api/hunt)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := loadKey(*keyHex)
			if err != nil {
				return err
			}
			p, err := parseAddressArg("player", player)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), relay.HuntInput{
				Player:     p,
				SessionKey: keyAddress(key),
				MemeID:     memeID,
				NetSize:    netSize,
				Signature:  chain.Sign(key, chain.HuntMessage(p, memeID, netSize, epoch, nonce)),
			})
		},
	}
	cmd.Flags().StringVar(&player, "player", "", "session owner address")
	cmd.Flags().Uint8Var(&memeID, "meme", 0, "meme id (1-5)")
	cmd.Flags().Uint8Var(&netSize, "net", 0, "net size (0 small, 1 medium, 2 large)")
	cmd.Flags().Uint64Var(&epoch, "epoch", 0, "session epoch from GET /api/sessions/{owner}")
	cmd.Flags().Uint64Var(&nonce, "nonce", 0, "current session nonce")
	_ = cmd.MarkFlagRequired("player")
	return cmd
}

func newSignRoomCmd(keyHex *string) *cobra.Command {
	var mint, source string
	var amount, roomNonce uint64
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Create a token reward room (POST /api/rooms)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := loadKey(*keyHex)
			if err != nil {
				return err
			}
			m, err := parseAddressArg("mint", mint)
			if err != nil {
				return err
			}
			src, err := parseAddressArg("source", source)
			if err != nil {
				return err
			}
			creator := keyAddress(key)
			issuedAt := time.Now().Unix()
			return printJSON(cmd.OutOrStdout(), relay.CreateRoomInput{
				Creator:   creator,
				Mint:      m,
				Source:    src,
				Amount:    amount,
				RoomNonce: roomNonce,
				IssuedAt:  issuedAt,
				Signature: chain.Sign(key, chain.CreateRoomMessage(creator, m, src, amount, roomNonce, issuedAt)),
			})
		},
	}
	cmd.Flags().StringVar(&mint, "mint", "", "token mint address")
	cmd.Flags().StringVar(&source, "source", "", "creator token account funding the vault")
	cmd.Flags().Uint64Var(&amount, "amount", 0, "tokens to deposit")
	cmd.Flags().Uint64Var(&roomNonce, "room-nonce", 0, "distinguishes rooms of the same creator and mint")
	_ = cmd.MarkFlagRequired("mint")
	_ = cmd.MarkFlagRequired("source")
	return cmd
}

func newSignSettleCmd(keyHex *string) *cobra.Command {
	var room, destination string
	cmd := &cobra.Command{
		Use:   "settle",
		Short: "Settle a room and drain it (POST /api/rooms/{room}/settle)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := loadKey(*keyHex)
			if err != nil {
				return err
			}
			r, err := parseAddressArg("room", room)
			if err != nil {
				return err
			}
			dst, err := parseAddressArg("destination", destination)
			if err != nil {
				return err
			}
			creator := keyAddress(key)
			issuedAt := time.Now().Unix()
			return printJSON(cmd.OutOrStdout(), relay.SettleRoomInput{
				Creator:     creator,
				Room:        r,
				Destination: dst,
				IssuedAt:    issuedAt,
				Signature:   chain.Sign(key, chain.SettleRoomMessage(creator, r, dst, issuedAt)),
			})
		},
	}
	cmd.Flags().StringVar(&room, "room", "", "room address")
	cmd.Flags().StringVar(&destination, "destination", "", "creator token account receiving the remainder")
	_ = cmd.MarkFlagRequired("room")
	_ = cmd.MarkFlagRequired("destination")
	return cmd
}
