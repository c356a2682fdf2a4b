package program

const (
	MaxSessionDuration         int64 = 86400
	DefaultConcurrentThreshold uint8 = 3
	DefaultOwnerFeePercent     uint8 = 10

	AirdropChance     = 20
	MinAirdropPercent = 5
	MaxAirdropPercent = 20

	MinMemeID = 1
	MaxMemeID = 5

	minSuccessRate  = 10
	rarityPenalty   = 5
	percentDivisor  = 100
	maxPercentValue = 100
)

const (
	NetSmall uint8 = iota
	NetMedium
	NetLarge
)

var netCosts = [...]uint64{
	NetSmall:  5_000_000,
	NetMedium: 10_000_000,
	NetLarge:  20_000_000,
}

var netBaseRates = [...]uint64{
	NetSmall:  60,
	NetMedium: 50,
	NetLarge:  40,
}

// memeRewards is indexed by meme id; index 0 is unused.
var memeRewards = [...]uint64{
	0,
	20_000_000,
	20_000_000,
	50_000_000,
	150_000_000,
	500_000_000,
}

// Roll domain tags.
const (
	tagHunt          = "hunt"
	tagAirdrop       = "airdrop"
	tagAirdropAmount = "airdrop_amount"
)
