package models

import (
	"strconv"
)

// PublicAccessoryMax is the highest id of the free, globally unlocked
// accessories. Everything above it is premium.
const PublicAccessoryMax = 125

// AccessoryID marshals as a JSON number so lists of ids do not collapse
// into base64 like a plain []uint8 would.
type AccessoryID uint8

func (a AccessoryID) IsPublic() bool {
	return a <= PublicAccessoryMax
}

func (a AccessoryID) MarshalJSON() ([]byte, error) {
	return strconv.AppendUint(nil, uint64(a), 10), nil
}

func (a *AccessoryID) UnmarshalJSON(data []byte) error {
	v, err := strconv.ParseUint(string(data), 10, 8)
	if err != nil {
		return err
	}
	*a = AccessoryID(v)
	return nil
}

// Accessory is the catalog view of a single accessory id.
type Accessory struct {
	ID          AccessoryID `json:"id"`
	IsPublic    bool        `json:"is_public"`
	Unlocked    bool        `json:"unlocked"`
	Price       string      `json:"price,omitempty"`
	PointsPrice uint32      `json:"points_price,omitempty"`
}

func ContainsAccessory(list []AccessoryID, id AccessoryID) bool {
	for _, a := range list {
		if a == id {
			return true
		}
	}
	return false
}
