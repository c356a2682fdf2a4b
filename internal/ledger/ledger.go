package ledger

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"

	"meme-hunter/internal/chain"
	"meme-hunter/internal/store"
)

var (
	ErrUnauthorized      = errors.New("unauthorized_transfer")
	ErrInsufficientFunds = errors.New("insufficient_funds")
	ErrMintMismatch      = errors.New("mint_mismatch")
	ErrOverflow          = errors.New("balance_overflow")
	ErrInvalidAmount     = errors.New("invalid_amount")
	ErrAccountNotFound   = errors.New("token_account_not_found")
)

// TokenProgramID owns associated token account derivations.
var TokenProgramID = chain.Address(sha256.Sum256([]byte("meme-hunter/token-program")))

// Ref describes why value moved; it is copied onto the ledger entry.
type Ref struct {
	Kind string
	Type string
	ID   string
}

// Ledger moves native value and tokens between accounts inside a store
// transaction, writing one ledger entry per movement.
type Ledger struct{}

func New() *Ledger {
	return &Ledger{}
}

func (l *Ledger) Transfer(ctx context.Context, tx store.Tx, from, to chain.Address, auth Authority, amount uint64, ref Ref) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	if !auth.Authorizes(from) {
		return ErrUnauthorized
	}
	fromBal, err := tx.GetBalance(ctx, from)
	if err != nil {
		return err
	}
	if fromBal < amount {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, fromBal, amount)
	}
	if from != to {
		toBal, err := tx.GetBalance(ctx, to)
		if err != nil {
			return err
		}
		if toBal > ^uint64(0)-amount {
			return ErrOverflow
		}
		if err := tx.SetBalance(ctx, from, fromBal-amount); err != nil {
			return err
		}
		if err := tx.SetBalance(ctx, to, toBal+amount); err != nil {
			return err
		}
	}
	return tx.InsertLedgerEntry(ctx, store.LedgerEntry{
		Kind: ref.Kind, From: from, To: to, Authority: auth.Address(),
		Amount: amount, RefType: ref.Type, RefID: ref.ID,
	})
}

func (l *Ledger) TransferToken(ctx context.Context, tx store.Tx, from, to chain.Address, auth Authority, amount uint64, ref Ref) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	src, err := tokenAccount(ctx, tx, from)
	if err != nil {
		return err
	}
	dst, err := tokenAccount(ctx, tx, to)
	if err != nil {
		return err
	}
	if !auth.Authorizes(src.Owner) {
		return ErrUnauthorized
	}
	if src.Mint != dst.Mint {
		return ErrMintMismatch
	}
	if src.Amount < amount {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, src.Amount, amount)
	}
	if from != to {
		if dst.Amount > ^uint64(0)-amount {
			return ErrOverflow
		}
		if err := tx.SetTokenAmount(ctx, from, src.Amount-amount); err != nil {
			return err
		}
		if err := tx.SetTokenAmount(ctx, to, dst.Amount+amount); err != nil {
			return err
		}
	}
	return tx.InsertLedgerEntry(ctx, store.LedgerEntry{
		Kind: ref.Kind, From: from, To: to, Authority: auth.Address(), Mint: src.Mint,
		Amount: amount, RefType: ref.Type, RefID: ref.ID,
	})
}

// Fund credits native value from outside the system.
func (l *Ledger) Fund(ctx context.Context, tx store.Tx, to chain.Address, amount uint64, ref Ref) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	bal, err := tx.GetBalance(ctx, to)
	if err != nil {
		return err
	}
	if bal > ^uint64(0)-amount {
		return ErrOverflow
	}
	if err := tx.SetBalance(ctx, to, bal+amount); err != nil {
		return err
	}
	return tx.InsertLedgerEntry(ctx, store.LedgerEntry{
		Kind: ref.Kind, To: to, Amount: amount, RefType: ref.Type, RefID: ref.ID,
	})
}

// MintTo issues tokens of mint into owner's associated token account,
// opening it first if needed, and returns the account address.
func (l *Ledger) MintTo(ctx context.Context, tx store.Tx, owner, mint chain.Address, amount uint64, ref Ref) (chain.Address, error) {
	if amount == 0 {
		return chain.Address{}, ErrInvalidAmount
	}
	acct, err := l.OpenTokenAccount(ctx, tx, owner, mint)
	if err != nil {
		return chain.Address{}, err
	}
	if acct.Amount > ^uint64(0)-amount {
		return chain.Address{}, ErrOverflow
	}
	if err := tx.SetTokenAmount(ctx, acct.Address, acct.Amount+amount); err != nil {
		return chain.Address{}, err
	}
	err = tx.InsertLedgerEntry(ctx, store.LedgerEntry{
		Kind: ref.Kind, To: acct.Address, Mint: mint, Amount: amount, RefType: ref.Type, RefID: ref.ID,
	})
	return acct.Address, err
}

// OpenTokenAccount returns owner's associated account for mint, creating an
// empty one when absent.
func (l *Ledger) OpenTokenAccount(ctx context.Context, tx store.Tx, owner, mint chain.Address) (*store.TokenAccount, error) {
	addr := AssociatedTokenAddress(owner, mint)
	acct, err := tx.GetTokenAccount(ctx, addr)
	if err == nil {
		return acct, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	acct = &store.TokenAccount{Address: addr, Mint: mint, Owner: owner}
	if err := tx.InsertTokenAccount(ctx, *acct); err != nil {
		return nil, err
	}
	return acct, nil
}

func AssociatedTokenAddress(owner, mint chain.Address) chain.Address {
	addr, _ := chain.MustDeriveAddress(TokenProgramID, owner.Bytes(), mint.Bytes())
	return addr
}

func tokenAccount(ctx context.Context, tx store.Tx, addr chain.Address) (*store.TokenAccount, error) {
	acct, err := tx.GetTokenAccount(ctx, addr)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, addr)
	}
	return acct, err
}
