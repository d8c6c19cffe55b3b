package models

type AllocateUserRequest struct {
	Secret string `json:"secret"`
	// Digest is a hex encoded Keccak-256 of the secret. When set the secret
	// never reaches the backend.
	Digest string `json:"digest"`
}

type ClaimUserRequest struct {
	Secret string `json:"secret" binding:"required"`
}

type SetOwnershipRequest struct {
	Account string `json:"account" binding:"required"`
}

type RewardPointsRequest struct {
	Amount uint32 `json:"amount" binding:"required"`
}

type PremiumPricingRequest struct {
	Price       string `json:"price" binding:"required"`
	PointsPrice uint32 `json:"points_price" binding:"required"`
}

type EnqueueRequest struct {
	UserID uint32 `json:"user_id" binding:"required"`
}

type SetPriceRequest struct {
	Price string `json:"price" binding:"required"`
}

type SetUint32Request struct {
	Value uint32 `json:"value"`
}

type SetBaseURIRequest struct {
	BaseURI string `json:"base_uri"`
}
