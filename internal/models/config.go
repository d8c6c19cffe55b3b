package models

// GameConfig is the admin controlled configuration. A nil field has never
// been set; operations that read it treat unset as zero.
type GameConfig struct {
	BaseURI           *string `json:"base_uri"`
	MaxLineCapacity   *uint32 `json:"max_line_capacity"`
	MaxPointsReward   *uint32 `json:"max_points_reward"`
	PriceToUnlockUser *string `json:"price_to_unlock_user"`
}

func (c GameConfig) LineCapacity() uint32 {
	if c.MaxLineCapacity == nil {
		return 0
	}
	return *c.MaxLineCapacity
}

func (c GameConfig) PointsRewardCap() uint32 {
	if c.MaxPointsReward == nil {
		return 0
	}
	return *c.MaxPointsReward
}
