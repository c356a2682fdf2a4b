package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"strconv"

	"meme-hunter/internal/chain"
	"meme-hunter/internal/config"
	"meme-hunter/internal/program"

	"github.com/spf13/cobra"
)

func newKeygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate an ed25519 key; prints the seed and its address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, priv, err := ed25519.GenerateKey(rand.Reader)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]string{
				"seed":    hex.EncodeToString(priv.Seed()),
				"address": keyAddress(priv).String(),
			})
		},
	}
}

func newDeriveCmd(cfg config.CLIConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "derive",
		Short: "Print program-derived account addresses",
	}
	prog := func() *program.Program { return program.New(cfg.ProgramID, nil, nil) }

	cmd.AddCommand(
		&cobra.Command{
			Use:  "config",
			Args: cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return printJSON(cmd.OutOrStdout(), map[string]chain.Address{"config": prog().ConfigAddress()})
			},
		},
		&cobra.Command{
			Use:  "pool",
			Args: cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return printJSON(cmd.OutOrStdout(), map[string]chain.Address{"pool": prog().PoolAddress()})
			},
		},
		&cobra.Command{
			Use:  "session <owner>",
			Args: cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				owner, err := parseAddressArg("owner", args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]chain.Address{"session": prog().SessionAddress(owner)})
			},
		},
		&cobra.Command{
			Use:  "window <slot>",
			Args: cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				slot, err := strconv.ParseUint(args[0], 10, 64)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]chain.Address{"window": prog().WindowAddress(slot)})
			},
		},
		&cobra.Command{
			Use:  "room <creator> <mint> <nonce>",
			Args: cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				creator, err := parseAddressArg("creator", args[0])
				if err != nil {
					return err
				}
				mint, err := parseAddressArg("mint", args[1])
				if err != nil {
					return err
				}
				nonce, err := strconv.ParseUint(args[2], 10, 64)
				if err != nil {
					return err
				}
				p := prog()
				room := p.RoomAddress(creator, mint, nonce)
				return printJSON(cmd.OutOrStdout(), map[string]chain.Address{"room": room, "vault": p.VaultAddress(room)})
			},
		},
	)
	return cmd
}
