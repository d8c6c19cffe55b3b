package services_test

import (
	"context"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mysteries-backend/internal/models"
	"mysteries-backend/internal/services"
)

func TestPublicCatalog(t *testing.T) {
	g, recorder := newTestState(t)
	ctx := context.Background()

	for _, id := range []models.AccessoryID{1, 2, 3} {
		require.NoError(t, g.UnlockPublicAccessory(ctx, admin, id))
	}
	assert.ErrorIs(t, g.UnlockPublicAccessory(ctx, admin, 2), services.ErrAlreadyOwned)
	assert.ErrorIs(t, g.UnlockPublicAccessory(ctx, admin, 126), services.ErrInvalidRange)

	require.NoError(t, g.RevokePublicAccessory(ctx, admin, 1))
	catalog, err := g.GlobalAccessories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.AccessoryID{3, 2}, catalog)

	assert.ErrorIs(t, g.RevokePublicAccessory(ctx, admin, 1), services.ErrNotFound)
	assert.ErrorIs(t, g.RevokePublicAccessory(ctx, admin, 200), services.ErrInvalidRange)

	accessory, err := g.GetAccessory(ctx, 2)
	require.NoError(t, err)
	assert.True(t, accessory.IsPublic)
	assert.True(t, accessory.Unlocked)

	accessory, err = g.GetAccessory(ctx, 1)
	require.NoError(t, err)
	assert.False(t, accessory.Unlocked)

	assert.Len(t, recorder.OfType(models.EventAccessoryUnlocked), 3)
	assert.Len(t, recorder.OfType(models.EventAccessoryRevoked), 1)
}

func TestSetPremiumPricing(t *testing.T) {
	g, _ := newTestState(t)
	ctx := context.Background()

	assert.ErrorIs(t, g.SetPremiumPricing(ctx, admin, 125, uint256.NewInt(1), 1), services.ErrInvalidRange)
	assert.ErrorIs(t, g.SetPremiumPricing(ctx, admin, 200, uint256.NewInt(0), 1), services.ErrInvalidRange)
	assert.ErrorIs(t, g.SetPremiumPricing(ctx, admin, 200, uint256.NewInt(1), 0), services.ErrInvalidRange)

	require.NoError(t, g.SetPremiumPricing(ctx, admin, 200, uint256.NewInt(3), 30))
	require.NoError(t, g.SetPremiumPricing(ctx, admin, 210, uint256.NewInt(4), 40))
	require.NoError(t, g.SetPremiumPricing(ctx, admin, 200, uint256.NewInt(5), 50))

	premium, err := g.PremiumAccessories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.AccessoryID{200, 210}, premium)

	accessory, err := g.GetAccessory(ctx, 200)
	require.NoError(t, err)
	assert.False(t, accessory.IsPublic)
	assert.True(t, accessory.Unlocked)
	assert.Equal(t, "5", accessory.Price)
	assert.Equal(t, uint32(50), accessory.PointsPrice)

	accessory, err = g.GetAccessory(ctx, 250)
	require.NoError(t, err)
	assert.False(t, accessory.Unlocked)
	assert.Empty(t, accessory.Price)
}

func TestGrantAccessory(t *testing.T) {
	g, recorder := newTestState(t)
	ctx := context.Background()

	userID, err := g.AllocateUser(ctx, admin, "s1")
	require.NoError(t, err)

	assert.ErrorIs(t, g.GrantAccessory(ctx, admin, 42, 200), services.ErrNotFound)
	assert.ErrorIs(t, g.GrantAccessory(ctx, admin, userID, 10), services.ErrAlreadyOwned)

	require.NoError(t, g.GrantAccessory(ctx, admin, userID, 200))
	assert.ErrorIs(t, g.GrantAccessory(ctx, admin, userID, 200), services.ErrAlreadyOwned)

	owned, err := g.UserAccessories(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, []models.AccessoryID{200}, owned)

	has, err := g.HasAccessory(ctx, userID, 10)
	require.NoError(t, err)
	assert.True(t, has, "public accessories are owned by everyone")

	has, err = g.HasAccessory(ctx, userID, 201)
	require.NoError(t, err)
	assert.False(t, has)

	assert.Len(t, recorder.OfType(models.EventAccessoryGranted), 1)
}

func TestPurchaseAccessory(t *testing.T) {
	g, recorder := newTestState(t)
	ctx := context.Background()
	userID := claimedUser(t, g, "alice.near")
	require.NoError(t, g.SetPremiumPricing(ctx, admin, 200, uint256.NewInt(7), 70))

	_, err := g.PurchaseAccessory(ctx, paying("alice.near", 7), 20)
	assert.ErrorIs(t, err, services.ErrInvalidRange)

	_, err = g.PurchaseAccessory(ctx, paying("alice.near", 7), 201)
	assert.ErrorIs(t, err, services.ErrNotFound)

	_, err = g.PurchaseAccessory(ctx, paying("nobody.near", 7), 200)
	assert.ErrorIs(t, err, services.ErrNotClaimed)

	_, err = g.PurchaseAccessory(ctx, paying("alice.near", 6), 200)
	assert.ErrorIs(t, err, services.ErrWrongPrice)

	_, err = g.PurchaseAccessory(ctx, player("alice.near"), 200)
	assert.ErrorIs(t, err, services.ErrWrongPrice)

	buyer, err := g.PurchaseAccessory(ctx, paying("alice.near", 7), 200)
	require.NoError(t, err)
	assert.Equal(t, userID, buyer)

	_, err = g.PurchaseAccessory(ctx, paying("alice.near", 7), 200)
	assert.ErrorIs(t, err, services.ErrAlreadyOwned)

	purchases := recorder.OfType(models.EventAccessoryPurchased)
	require.Len(t, purchases, 1)
	assert.Equal(t, "7", purchases[0].Attributes["paid"])
}

func TestPurchaseAccessoryWithPoints(t *testing.T) {
	g, _ := newTestState(t)
	ctx := context.Background()
	initState(t, g)
	userID := claimedUser(t, g, "alice.near")
	require.NoError(t, g.SetPremiumPricing(ctx, admin, 200, uint256.NewInt(1), 20))

	_, err := g.RewardPoints(ctx, admin, userID, 19)
	require.NoError(t, err)

	_, err = g.PurchaseAccessoryWithPoints(ctx, player("alice.near"), 200)
	assert.ErrorIs(t, err, services.ErrInsufficientPoints)

	points, err := g.Points(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, uint32(19), points)

	_, err = g.RewardPoints(ctx, admin, userID, 1)
	require.NoError(t, err)

	remaining, err := g.PurchaseAccessoryWithPoints(ctx, player("alice.near"), 200)
	require.NoError(t, err)
	assert.Zero(t, remaining)

	_, err = g.PurchaseAccessoryWithPoints(ctx, player("bob.near"), 200)
	assert.ErrorIs(t, err, services.ErrNotClaimed)
}
