package main

import (
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"meme-hunter/internal/chain"
	"meme-hunter/internal/config"

	"github.com/spf13/cobra"
)

const keyEnv = "HUNT_KEY"

var errNoKey = errors.New("no signing key: pass --key or set " + keyEnv)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "hunt-cli",
		Short:         "Operator and player tooling for the meme hunt relayer",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cfg, err := config.LoadCLI()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newKeygenCmd(),
		newDeriveCmd(cfg),
		newSignCmd(),
		newTokenCmd(cfg),
		newMigrateCmd(cfg),
		newInitCmd(cfg),
		newDepositCmd(cfg),
		newFundCmd(cfg),
		newWatchCmd(cfg),
	)
	return rootCmd
}

// loadKey reads a hex ed25519 seed from flag or environment.
func loadKey(flag string) (ed25519.PrivateKey, error) {
	raw := strings.TrimSpace(flag)
	if raw == "" {
		raw = strings.TrimSpace(os.Getenv(keyEnv))
	}
	if raw == "" {
		return nil, errNoKey
	}
	seed, err := hex.DecodeString(raw)
	if err != nil || len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("key must be %d hex-encoded bytes", ed25519.SeedSize)
	}
	return ed25519.NewKeyFromSeed(seed), nil
}

func keyAddress(k ed25519.PrivateKey) chain.Address {
	return chain.AddressFromPublicKey(k.Public().(ed25519.PublicKey))
}

func parseAddressArg(name, v string) (chain.Address, error) {
	addr, err := chain.ParseAddress(v)
	if err != nil {
		return chain.Address{}, fmt.Errorf("%s: %w", name, err)
	}
	return addr, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
