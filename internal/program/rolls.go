package program

import (
	"crypto/sha256"
	"encoding/binary"
	"math/bits"

	"meme-hunter/internal/chain"
)

// roll returns the first byte of sha256(player || nonce || slot || tag).
// Every value is committed state, so any replica recomputes the same byte.
func roll(tag string, player chain.Address, nonce, slot uint64) byte {
	var buf [chain.AddressLen + 16]byte
	copy(buf[:], player[:])
	binary.LittleEndian.PutUint64(buf[chain.AddressLen:], nonce)
	binary.LittleEndian.PutUint64(buf[chain.AddressLen+8:], slot)
	h := sha256.New()
	h.Write(buf[:])
	h.Write([]byte(tag))
	return h.Sum(nil)[0]
}

// SuccessRate is the percent chance of catching memeID with netSize.
func SuccessRate(netSize, memeID uint8) uint64 {
	if int(netSize) >= len(netBaseRates) {
		return 0
	}
	base := netBaseRates[netSize]
	penalty := rarityPenalty * uint64(memeID)
	if penalty >= base || base-penalty < minSuccessRate {
		return minSuccessRate
	}
	return base - penalty
}

// HuntSucceeds is the primary outcome for one hunt.
func HuntSucceeds(player chain.Address, nonce, slot uint64, netSize, memeID uint8) bool {
	return uint64(roll(tagHunt, player, nonce, slot)%100) < SuccessRate(netSize, memeID)
}

func AirdropTriggers(player chain.Address, nonce, slot uint64) bool {
	return roll(tagAirdrop, player, nonce, slot)%100 < AirdropChance
}

// AirdropPercent is uniform over [MinAirdropPercent, MaxAirdropPercent].
func AirdropPercent(player chain.Address, nonce, slot uint64) uint64 {
	span := MaxAirdropPercent - MinAirdropPercent + 1
	return MinAirdropPercent + uint64(roll(tagAirdropAmount, player, nonce, slot))%uint64(span)
}

// PercentOf returns amount*pct/100 without intermediate overflow.
func PercentOf(amount, pct uint64) uint64 {
	hi, lo := bits.Mul64(amount, pct)
	if hi >= percentDivisor {
		return ^uint64(0)
	}
	q, _ := bits.Div64(hi, lo, percentDivisor)
	return q
}

// FeeSplit divides cost into the owner fee and the pool share.
func FeeSplit(cost uint64, feePercent uint8) (ownerFee, poolAmount uint64, err error) {
	if feePercent > maxPercentValue {
		return 0, 0, ErrInvalidConfig
	}
	ownerFee = PercentOf(cost, uint64(feePercent))
	if ownerFee > cost {
		return 0, 0, ErrOverflow
	}
	return ownerFee, cost - ownerFee, nil
}

func CostFor(netSize uint8) (uint64, error) {
	if int(netSize) >= len(netCosts) {
		return 0, ErrInvalidNetSize
	}
	return netCosts[netSize], nil
}

func RewardFor(memeID uint8) (uint64, error) {
	if memeID < MinMemeID || memeID > MaxMemeID {
		return 0, ErrInvalidMemeID
	}
	return memeRewards[memeID], nil
}
