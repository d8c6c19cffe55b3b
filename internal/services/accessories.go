package services

import (
	"context"
	"fmt"

	"mysteries-backend/internal/models"

	"github.com/holiman/uint256"
)

func requirePublic(id models.AccessoryID) error {
	if !id.IsPublic() {
		return fmt.Errorf("%w: ids greater than %d are reserved for premium accessories", ErrInvalidRange, models.PublicAccessoryMax)
	}
	return nil
}

func requirePremium(id models.AccessoryID) error {
	if id.IsPublic() {
		return fmt.Errorf("%w: ids from 0 to %d are reserved for free global accessories", ErrInvalidRange, models.PublicAccessoryMax)
	}
	return nil
}

// hasAccessory treats every public id as owned; per-user records only matter
// for premium ids.
func hasAccessory(tx Tx, userID uint32, id models.AccessoryID) (bool, error) {
	if id.IsPublic() {
		return true, nil
	}
	owned, err := loadUserAccessories(tx, userID)
	if err != nil {
		return false, err
	}
	return models.ContainsAccessory(owned, id), nil
}

func addAccessoryToUser(tx Tx, userID uint32, id models.AccessoryID) error {
	owned, err := loadUserAccessories(tx, userID)
	if err != nil {
		return err
	}
	return setJSON(tx, fmt.Sprintf(KeyUserAccessories, userID), append(owned, id))
}

func premiumPrice(tx Tx, id models.AccessoryID) (*uint256.Int, uint32, bool, error) {
	raw, found, err := getString(tx, fmt.Sprintf(KeyAccessoryPrice, id))
	if err != nil || !found {
		return nil, 0, found, err
	}
	price, err := models.ParseAmount(raw)
	if err != nil {
		return nil, 0, false, err
	}
	points, _, err := getU32(tx, fmt.Sprintf(KeyAccessoryPointsPrice, id))
	if err != nil {
		return nil, 0, false, err
	}
	return price, points, true, nil
}

func (g *GameState) UnlockPublicAccessory(ctx context.Context, call Call, id models.AccessoryID) error {
	if err := g.requireAuthority(call); err != nil {
		return err
	}
	if err := requirePublic(id); err != nil {
		return err
	}

	return g.transition(ctx, "unlock_public_accessory", call, func(tx Tx, em *emitter) error {
		catalog, err := loadAccessoryList(tx, KeyGlobalAccessories)
		if err != nil {
			return err
		}
		if models.ContainsAccessory(catalog, id) {
			return fmt.Errorf("%w: accessory %d already included", ErrAlreadyOwned, id)
		}
		if err := setJSON(tx, KeyGlobalAccessories, append(catalog, id)); err != nil {
			return err
		}
		em.emit(models.EventAccessoryUnlocked, map[string]string{
			"accessory": models.FormatUint32(uint32(id)),
		})
		return nil
	})
}

// RevokePublicAccessory removes id from the public catalog. The last entry
// takes its place, so catalog order is not preserved.
func (g *GameState) RevokePublicAccessory(ctx context.Context, call Call, id models.AccessoryID) error {
	if err := g.requireAuthority(call); err != nil {
		return err
	}
	if err := requirePublic(id); err != nil {
		return err
	}

	return g.transition(ctx, "revoke_public_accessory", call, func(tx Tx, em *emitter) error {
		catalog, err := loadAccessoryList(tx, KeyGlobalAccessories)
		if err != nil {
			return err
		}
		idx := -1
		for i, a := range catalog {
			if a == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("%w: accessory %d is not in the public catalog", ErrNotFound, id)
		}

		last := len(catalog) - 1
		catalog[idx] = catalog[last]
		if err := setJSON(tx, KeyGlobalAccessories, catalog[:last]); err != nil {
			return err
		}
		em.emit(models.EventAccessoryRevoked, map[string]string{
			"accessory": models.FormatUint32(uint32(id)),
		})
		return nil
	})
}

// SetPremiumPricing registers or re-prices a premium accessory. Re-pricing
// overwrites both prices; the catalog lists each id once.
func (g *GameState) SetPremiumPricing(ctx context.Context, call Call, id models.AccessoryID, price *uint256.Int, pointsPrice uint32) error {
	if err := g.requireAuthority(call); err != nil {
		return err
	}
	if err := requirePremium(id); err != nil {
		return err
	}
	if price == nil || price.IsZero() {
		return fmt.Errorf("%w: price must be greater than zero", ErrInvalidRange)
	}
	if pointsPrice == 0 {
		return fmt.Errorf("%w: price in points must be greater than zero", ErrInvalidRange)
	}

	return g.transition(ctx, "set_premium_pricing", call, func(tx Tx, em *emitter) error {
		setString(tx, fmt.Sprintf(KeyAccessoryPrice, id), price.Dec())
		setU32(tx, fmt.Sprintf(KeyAccessoryPointsPrice, id), pointsPrice)

		catalog, err := loadAccessoryList(tx, KeyPremiumAccessories)
		if err != nil {
			return err
		}
		if !models.ContainsAccessory(catalog, id) {
			if err := setJSON(tx, KeyPremiumAccessories, append(catalog, id)); err != nil {
				return err
			}
		}

		em.emit(models.EventAccessoryPriced, map[string]string{
			"accessory":    models.FormatUint32(uint32(id)),
			"price":        price.Dec(),
			"points_price": models.FormatUint32(pointsPrice),
		})
		return nil
	})
}

// GrantAccessory gives userID an accessory for free.
func (g *GameState) GrantAccessory(ctx context.Context, call Call, userID uint32, id models.AccessoryID) error {
	if err := g.requireAuthority(call); err != nil {
		return err
	}

	return g.transition(ctx, "grant_accessory", call, func(tx Tx, em *emitter) error {
		if err := requireAllocated(tx, userID); err != nil {
			return err
		}
		owned, err := hasAccessory(tx, userID, id)
		if err != nil {
			return err
		}
		if owned {
			return fmt.Errorf("%w: accessory %d is already registered for user %d", ErrAlreadyOwned, id, userID)
		}
		if err := addAccessoryToUser(tx, userID, id); err != nil {
			return err
		}
		em.emit(models.EventAccessoryGranted, map[string]string{
			"user_id":   models.FormatUint32(userID),
			"accessory": models.FormatUint32(uint32(id)),
		})
		return nil
	})
}

// PurchaseAccessory buys a premium accessory with the attached deposit,
// which must match the catalog price exactly.
func (g *GameState) PurchaseAccessory(ctx context.Context, call Call, id models.AccessoryID) (uint32, error) {
	if err := requirePremium(id); err != nil {
		return 0, err
	}

	var buyer uint32
	err := g.transition(ctx, "purchase_accessory", call, func(tx Tx, em *emitter) error {
		userID, price, _, err := g.loadPurchase(tx, call, id)
		if err != nil {
			return err
		}
		if !call.deposit().Eq(price) {
			return fmt.Errorf("%w: accessory %d costs %s", ErrWrongPrice, id, price.Dec())
		}
		if err := addAccessoryToUser(tx, userID, id); err != nil {
			return err
		}

		buyer = userID
		em.emit(models.EventAccessoryPurchased, map[string]string{
			"user_id":   models.FormatUint32(userID),
			"accessory": models.FormatUint32(uint32(id)),
			"paid":      price.Dec(),
		})
		return nil
	})
	if err != nil {
		return 0, err
	}
	return buyer, nil
}

// PurchaseAccessoryWithPoints buys a premium accessory by debiting its points
// price from the caller's balance. It returns the remaining balance.
func (g *GameState) PurchaseAccessoryWithPoints(ctx context.Context, call Call, id models.AccessoryID) (uint32, error) {
	if err := requirePremium(id); err != nil {
		return 0, err
	}

	var remaining uint32
	err := g.transition(ctx, "purchase_accessory_with_points", call, func(tx Tx, em *emitter) error {
		userID, _, pointsPrice, err := g.loadPurchase(tx, call, id)
		if err != nil {
			return err
		}
		balance, err := loadPoints(tx, userID)
		if err != nil {
			return err
		}
		if balance < pointsPrice {
			return fmt.Errorf("%w: accessory %d costs %d points, balance is %d", ErrInsufficientPoints, id, pointsPrice, balance)
		}

		remaining = balance - pointsPrice
		setU32(tx, fmt.Sprintf(KeyUserPoints, userID), remaining)
		if err := addAccessoryToUser(tx, userID, id); err != nil {
			return err
		}

		em.emit(models.EventAccessoryPurchased, map[string]string{
			"user_id":     models.FormatUint32(userID),
			"accessory":   models.FormatUint32(uint32(id)),
			"paid_points": models.FormatUint32(pointsPrice),
		})
		return nil
	})
	if err != nil {
		return 0, err
	}
	return remaining, nil
}

// loadPurchase runs the checks shared by both purchase paths.
func (g *GameState) loadPurchase(tx Tx, call Call, id models.AccessoryID) (uint32, *uint256.Int, uint32, error) {
	userID, bound, err := userOf(tx, call.Account)
	if err != nil {
		return 0, nil, 0, err
	}
	if call.Account == "" || !bound {
		return 0, nil, 0, fmt.Errorf("%w: account %q has no user", ErrNotClaimed, call.Account)
	}

	price, pointsPrice, listed, err := premiumPrice(tx, id)
	if err != nil {
		return 0, nil, 0, err
	}
	if !listed {
		return 0, nil, 0, fmt.Errorf("%w: accessory %d is not for sale", ErrNotFound, id)
	}

	owned, err := hasAccessory(tx, userID, id)
	if err != nil {
		return 0, nil, 0, err
	}
	if owned {
		return 0, nil, 0, fmt.Errorf("%w: accessory %d is already registered for user %d", ErrAlreadyOwned, id, userID)
	}
	return userID, price, pointsPrice, nil
}

func (g *GameState) HasAccessory(ctx context.Context, userID uint32, id models.AccessoryID) (bool, error) {
	var owned bool
	err := g.view(ctx, func(tx Tx) error {
		if err := requireAllocated(tx, userID); err != nil {
			return err
		}
		var err error
		owned, err = hasAccessory(tx, userID, id)
		return err
	})
	return owned, err
}

// GetAccessory describes an accessory id: whether it is public, whether it is
// currently available and, for premium ids, its prices.
func (g *GameState) GetAccessory(ctx context.Context, id models.AccessoryID) (*models.Accessory, error) {
	accessory := &models.Accessory{ID: id, IsPublic: id.IsPublic()}
	err := g.view(ctx, func(tx Tx) error {
		if accessory.IsPublic {
			catalog, err := loadAccessoryList(tx, KeyGlobalAccessories)
			if err != nil {
				return err
			}
			accessory.Unlocked = models.ContainsAccessory(catalog, id)
			return nil
		}

		price, pointsPrice, listed, err := premiumPrice(tx, id)
		if err != nil {
			return err
		}
		if listed {
			accessory.Unlocked = true
			accessory.Price = price.Dec()
			accessory.PointsPrice = pointsPrice
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return accessory, nil
}

func (g *GameState) UserAccessories(ctx context.Context, userID uint32) ([]models.AccessoryID, error) {
	var owned []models.AccessoryID
	err := g.view(ctx, func(tx Tx) error {
		if err := requireAllocated(tx, userID); err != nil {
			return err
		}
		var err error
		owned, err = loadUserAccessories(tx, userID)
		return err
	})
	return owned, err
}

func (g *GameState) GlobalAccessories(ctx context.Context) ([]models.AccessoryID, error) {
	return g.catalog(ctx, KeyGlobalAccessories)
}

func (g *GameState) PremiumAccessories(ctx context.Context) ([]models.AccessoryID, error) {
	return g.catalog(ctx, KeyPremiumAccessories)
}

func (g *GameState) catalog(ctx context.Context, key string) ([]models.AccessoryID, error) {
	var list []models.AccessoryID
	err := g.view(ctx, func(tx Tx) error {
		var err error
		list, err = loadAccessoryList(tx, key)
		return err
	})
	return list, err
}
