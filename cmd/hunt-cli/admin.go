package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"meme-hunter/internal/auth"
	"meme-hunter/internal/chain"
	"meme-hunter/internal/config"
	"meme-hunter/internal/program"
	"meme-hunter/internal/store"

	"github.com/spf13/cobra"
)

var errNoDSN = errors.New("POSTGRES_DSN is not set")

func newTokenCmd(cfg config.CLIConfig) *cobra.Command {
	var subject, role string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an operator token for the /api/admin endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sub, err := parseAddressArg("subject", subject)
			if err != nil {
				return err
			}
			if ttl <= 0 {
				ttl = cfg.TokenTTL
			}
			tok, err := auth.IssueToken([]byte(cfg.AdminJWTSecret), sub, role, ttl, time.Now())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "operator address (config authority or relayer)")
	cmd.Flags().StringVar(&role, "role", auth.RoleOperator, "admin or operator")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default $ADMIN_TOKEN_TTL)")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

func newMigrateCmd(cfg config.CLIConfig) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate up|down",
		Short:     "Apply or roll back the Postgres schema",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := store.Migrate(cfg.PostgresDSN, args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "migrate %s: ok\n", args[0])
			return nil
		},
	}
}

// withProgram runs fn against the Postgres ledger. Slots do not matter for
// the administrative operations, so the clock starts at now.
func withProgram(ctx context.Context, cfg config.CLIConfig, fn func(*program.Program) error) error {
	if cfg.PostgresDSN == "" {
		return errNoDSN
	}
	st, err := store.New(cfg.PostgresDSN)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(program.New(cfg.ProgramID, st, chain.NewSlotClock(time.Now(), 0)))
}

func newInitCmd(cfg config.CLIConfig) *cobra.Command {
	var admin, relayer string
	opts := program.DefaultOptions()
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the game config directly in the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := parseAddressArg("admin", admin)
			if err != nil {
				return err
			}
			r, err := parseAddressArg("relayer", relayer)
			if err != nil {
				return err
			}
			return withProgram(cmd.Context(), cfg, func(p *program.Program) error {
				gc, err := p.Initialize(cmd.Context(), a, r, opts)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"config":               gc.Address,
					"pool":                 p.PoolAddress(),
					"authority":            gc.Authority,
					"relayer":              gc.Relayer,
					"concurrent_threshold": gc.ConcurrentThreshold,
					"owner_fee_percent":    gc.OwnerFeePercent,
				})
			})
		},
	}
	cmd.Flags().StringVar(&admin, "admin", "", "config authority address")
	cmd.Flags().StringVar(&relayer, "relayer", "", "relayer address")
	cmd.Flags().Uint8Var(&opts.ConcurrentThreshold, "threshold", opts.ConcurrentThreshold, "hunts per window before airdrops")
	cmd.Flags().Uint8Var(&opts.OwnerFeePercent, "fee", opts.OwnerFeePercent, "owner fee percent of each cost")
	_ = cmd.MarkFlagRequired("admin")
	_ = cmd.MarkFlagRequired("relayer")
	return cmd
}

func newDepositCmd(cfg config.CLIConfig) *cobra.Command {
	var authority string
	var amount uint64
	cmd := &cobra.Command{
		Use:   "deposit",
		Short: "Move native value from the authority into the reward pool",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := parseAddressArg("authority", authority)
			if err != nil {
				return err
			}
			return withProgram(cmd.Context(), cfg, func(p *program.Program) error {
				if err := p.DepositToPool(cmd.Context(), a, amount); err != nil {
					return err
				}
				bal, err := p.PoolBalance(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]any{"pool": p.PoolAddress(), "balance": bal})
			})
		},
	}
	cmd.Flags().StringVar(&authority, "authority", "", "config authority address")
	cmd.Flags().Uint64Var(&amount, "amount", 0, "amount to deposit")
	_ = cmd.MarkFlagRequired("authority")
	return cmd
}

func newFundCmd(cfg config.CLIConfig) *cobra.Command {
	var to, mint string
	var amount uint64
	cmd := &cobra.Command{
		Use:   "fund",
		Short: "Credit native value, or tokens with --mint, to an address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dst, err := parseAddressArg("to", to)
			if err != nil {
				return err
			}
			return withProgram(cmd.Context(), cfg, func(p *program.Program) error {
				if mint == "" {
					if err := p.Fund(cmd.Context(), dst, amount); err != nil {
						return err
					}
					bal, err := p.Balance(cmd.Context(), dst)
					if err != nil {
						return err
					}
					return printJSON(cmd.OutOrStdout(), map[string]any{"account": dst, "amount": bal})
				}
				m, err := parseAddressArg("mint", mint)
				if err != nil {
					return err
				}
				acct, err := p.MintTo(cmd.Context(), dst, m, amount)
				if err != nil {
					return err
				}
				ta, err := p.TokenAccount(cmd.Context(), acct)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]any{"account": acct, "amount": ta.Amount})
			})
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "recipient address (token owner with --mint)")
	cmd.Flags().StringVar(&mint, "mint", "", "token mint; empty funds native value")
	cmd.Flags().Uint64Var(&amount, "amount", 0, "amount to credit")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
