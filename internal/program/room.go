package program

import (
	"context"
	"errors"

	"meme-hunter/internal/chain"
	"meme-hunter/internal/ledger"
	"meme-hunter/internal/store"
)

type CreateRoomRequest struct {
	Creator chain.Address
	Mint    chain.Address
	// Source is a creator-owned token account of Mint that funds the vault.
	Source chain.Address
	Amount uint64
	Nonce  uint64
}

// CreateRoom opens a room with its own token vault funded from the
// creator's source account.
func (p *Program) CreateRoom(ctx context.Context, req CreateRoomRequest) (*store.Room, error) {
	if req.Amount == 0 {
		return nil, ErrInvalidAmount
	}
	roomAddr, bump := chain.MustDeriveAddress(p.ID, chain.RoomSeeds(req.Creator, req.Mint, req.Nonce)...)
	vaultAddr := p.VaultAddress(roomAddr)
	room := store.Room{
		Address:         roomAddr,
		Creator:         req.Creator,
		TokenMint:       req.Mint,
		TokenVault:      vaultAddr,
		TotalDeposited:  req.Amount,
		RemainingAmount: req.Amount,
		IsActive:        true,
		Bump:            bump,
		RoomNonce:       req.Nonce,
	}
	err := p.backend.InTx(ctx, func(tx store.Tx) error {
		if _, err := p.loadConfig(ctx, tx); err != nil {
			return err
		}
		if _, err := tx.GetRoom(ctx, roomAddr); err == nil {
			return ErrRoomExists
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		src, err := tx.GetTokenAccount(ctx, req.Source)
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidTokenAccount
		}
		if err != nil {
			return err
		}
		if src.Owner != req.Creator || src.Mint != req.Mint {
			return ErrInvalidTokenAccount
		}
		if err := tx.InsertTokenAccount(ctx, store.TokenAccount{Address: vaultAddr, Mint: req.Mint, Owner: roomAddr}); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return ErrInvalidVault
			}
			return err
		}
		err = p.ledger.TransferToken(ctx, tx, req.Source, vaultAddr, ledger.Signer(req.Creator), req.Amount,
			ledger.Ref{Kind: "room_deposit", Type: "room", ID: roomAddr.String()})
		if err != nil {
			return err
		}
		if err := tx.InsertRoom(ctx, room); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return ErrRoomExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// ClaimReward pays amount from the room's vault to recipient. Only the
// configured relayer may claim.
func (p *Program) ClaimReward(ctx context.Context, relayer, roomAddr, recipient chain.Address, amount uint64) (*store.Room, error) {
	var out *store.Room
	err := p.backend.InTx(ctx, func(tx store.Tx) error {
		cfg, err := p.loadConfig(ctx, tx)
		if err != nil {
			return err
		}
		if relayer != cfg.Relayer {
			return ErrUnauthorizedRelayer
		}
		if amount == 0 {
			return ErrInvalidAmount
		}
		room, err := p.loadRoom(ctx, tx, roomAddr)
		if err != nil {
			return err
		}
		if !room.IsActive {
			return ErrRoomNotActive
		}
		if err := p.checkVault(ctx, tx, room); err != nil {
			return err
		}
		dst, err := tx.GetTokenAccount(ctx, recipient)
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidTokenAccount
		}
		if err != nil {
			return err
		}
		if dst.Mint != room.TokenMint {
			return ErrInvalidTokenAccount
		}
		if room.RemainingAmount < amount {
			return ErrInsufficientPoolBalance
		}
		room.RemainingAmount -= amount
		err = p.ledger.TransferToken(ctx, tx, room.TokenVault, recipient, p.roomSigner(room), amount,
			ledger.Ref{Kind: "room_claim", Type: "room", ID: room.Address.String()})
		if err != nil {
			return err
		}
		if err := tx.UpdateRoom(ctx, *room); err != nil {
			return err
		}
		out = room
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SettleRoom deactivates the room and drains what remains to the creator's
// destination account.
func (p *Program) SettleRoom(ctx context.Context, creator, roomAddr, destination chain.Address) (*store.Room, error) {
	var out *store.Room
	err := p.backend.InTx(ctx, func(tx store.Tx) error {
		room, err := p.loadRoom(ctx, tx, roomAddr)
		if err != nil {
			return err
		}
		if creator != room.Creator {
			return ErrUnauthorizedCreator
		}
		if !room.IsActive {
			return ErrRoomAlreadySettled
		}
		if err := p.checkVault(ctx, tx, room); err != nil {
			return err
		}
		dst, err := tx.GetTokenAccount(ctx, destination)
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidTokenAccount
		}
		if err != nil {
			return err
		}
		if dst.Mint != room.TokenMint || dst.Owner != creator {
			return ErrInvalidTokenAccount
		}
		remaining := room.RemainingAmount
		room.IsActive = false
		room.RemainingAmount = 0
		if remaining > 0 {
			err = p.ledger.TransferToken(ctx, tx, room.TokenVault, destination, p.roomSigner(room), remaining,
				ledger.Ref{Kind: "room_settle", Type: "room", ID: room.Address.String()})
			if err != nil {
				return err
			}
		}
		if err := tx.UpdateRoom(ctx, *room); err != nil {
			return err
		}
		out = room
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Program) loadRoom(ctx context.Context, tx store.Tx, addr chain.Address) (*store.Room, error) {
	room, err := tx.GetRoom(ctx, addr)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrRoomNotFound
	}
	return room, err
}

// checkVault confirms the room's vault is the derived, room-owned account.
func (p *Program) checkVault(ctx context.Context, tx store.Tx, room *store.Room) error {
	if room.TokenVault != p.VaultAddress(room.Address) {
		return ErrInvalidVault
	}
	vault, err := tx.GetTokenAccount(ctx, room.TokenVault)
	if errors.Is(err, store.ErrNotFound) {
		return ErrInvalidVault
	}
	if err != nil {
		return err
	}
	if vault.Owner != room.Address || vault.Mint != room.TokenMint {
		return ErrInvalidVault
	}
	return nil
}

func (p *Program) roomSigner(room *store.Room) ledger.Authority {
	return ledger.ProgramSigner(p.ID, room.Bump, chain.RoomSeeds(room.Creator, room.TokenMint, room.RoomNonce)...)
}
