package services

import "time"

// Store keys, one family per entity. Names follow the contract storage
// prefixes so a dump of either reads the same.
const (
	KeyStateVersion = "state:version"

	KeyNextUserID      = "nextUserId"
	KeyAccountUser     = "accUser:%s"
	KeyUserAccount     = "userAcc:%d"
	KeyUserUnlock      = "userUnlock:%d"
	KeyUserAccessories = "userAccessories:%d"
	KeyUserGameTokens  = "userGameTokens:%d"
	KeyUserPoints      = "userPoints:%d"

	KeyGlobalAccessories    = "gAccessories"
	KeyPremiumAccessories   = "pAccessories"
	KeyAccessoryPrice       = "accessoriesPrices:%d"
	KeyAccessoryPointsPrice = "accessoriesPointsPrices:%d"
	KeyGameToken            = "gameTokens:%d"
	KeyGameTokenCount       = "gameTokens:len"
	KeyLineLink             = "line:%d"
	KeyLineTurn             = "lineTurn:%d"
	KeyLineLength           = "lineLength"
	KeyLastTurn             = "lastTurn"
	KeyFirstInLine          = "firstInLine"
	KeyLastInLine           = "lastInLine"
	KeyMaxLineCapacity      = "maxLineCapacity"
	KeyMaxPointsReward      = "maxPointsReward"
	KeyPriceToUnlockUser    = "priceToUnlockUser"
	KeyBaseURI              = "_baseURI"
	KeyContractMetadata     = "nft_m"
	KeyRateLimit            = "ratelimit:%s:%s"

	DefaultLineCapacity    = 120
	DefaultMaxPointsReward = 1000

	MaxTxRetries = 16

	RateLimitWindow = time.Minute
)
