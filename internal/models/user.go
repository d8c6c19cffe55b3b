package models

// GameUser is the read model of a user slot assembled from the per-user
// records in the store.
type GameUser struct {
	UserID       uint32        `json:"user_id"`
	Account      string        `json:"account,omitempty"`
	Claimed      bool          `json:"claimed"`
	UnlockDigest string        `json:"unlock_digest,omitempty"`
	Accessories  []AccessoryID `json:"accessories"`
	GameTokens   []uint32      `json:"game_tokens"`
	Points       uint32        `json:"points"`
	Turn         *uint32       `json:"turn,omitempty"`
}

// ClaimResult reports the outcome of binding an account to a user slot.
// When the account was already bound to another slot, that slot was merged
// into UserID and MergedFrom holds its id.
type ClaimResult struct {
	UserID     uint32 `json:"user_id"`
	Account    string `json:"account"`
	Merged     bool   `json:"merged"`
	MergedFrom uint32 `json:"merged_from,omitempty"`
}
