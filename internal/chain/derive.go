package chain

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"

	"filippo.io/edwards25519"
)

const derivationMarker = "ProgramDerivedAddress"

var (
	ErrNoViableBump = errors.New("no_viable_bump")
	ErrOnCurve      = errors.New("derived_address_on_curve")
	ErrSeedTooLong  = errors.New("seed_too_long")
)

const MaxSeedLen = 32

const (
	seedGameConfig = "game_config"
	seedPool       = "pool"
	seedSession    = "session"
	seedSlotStats  = "slot_stats"
	seedRoom       = "room"
	seedVault      = "vault"
)

// DeriveAddress searches bumps from 255 down and returns the first derived
// address that lies off the ed25519 curve, so no private key exists for it.
func DeriveAddress(programID Address, seeds ...[]byte) (Address, uint8, error) {
	for bump := 255; bump >= 0; bump-- {
		addr, err := CreateAddress(programID, uint8(bump), seeds...)
		if err == nil {
			return addr, uint8(bump), nil
		}
		if !errors.Is(err, ErrOnCurve) {
			return Address{}, 0, err
		}
	}
	return Address{}, 0, ErrNoViableBump
}

// MustDeriveAddress is for fixed seed sets that are known to derive.
func MustDeriveAddress(programID Address, seeds ...[]byte) (Address, uint8) {
	addr, bump, err := DeriveAddress(programID, seeds...)
	if err != nil {
		panic(err)
	}
	return addr, bump
}

func CreateAddress(programID Address, bump uint8, seeds ...[]byte) (Address, error) {
	h := sha256.New()
	for _, s := range seeds {
		if len(s) > MaxSeedLen {
			return Address{}, ErrSeedTooLong
		}
		h.Write(s)
	}
	h.Write([]byte{bump})
	h.Write(programID[:])
	h.Write([]byte(derivationMarker))
	var out Address
	copy(out[:], h.Sum(nil))
	if isOnCurve(out) {
		return Address{}, ErrOnCurve
	}
	return out, nil
}

func isOnCurve(a Address) bool {
	_, err := new(edwards25519.Point).SetBytes(a[:])
	return err == nil
}

func GameConfigSeeds() [][]byte {
	return [][]byte{[]byte(seedGameConfig)}
}

func PoolSeeds() [][]byte {
	return [][]byte{[]byte(seedPool)}
}

func SessionSeeds(owner Address) [][]byte {
	return [][]byte{[]byte(seedSession), owner.Bytes()}
}

func WindowSeeds(slot uint64) [][]byte {
	return [][]byte{[]byte(seedSlotStats), U64LE(slot)}
}

func RoomSeeds(creator, mint Address, nonce uint64) [][]byte {
	return [][]byte{[]byte(seedRoom), creator.Bytes(), mint.Bytes(), U64LE(nonce)}
}

func VaultSeeds(room Address) [][]byte {
	return [][]byte{[]byte(seedVault), room.Bytes()}
}

func U64LE(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}
