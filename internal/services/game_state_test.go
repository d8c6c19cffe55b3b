package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mysteries-backend/internal/models"
	"mysteries-backend/internal/services"
)

const authority = "admin.near"

var admin = services.Call{Account: authority}

func player(account string) services.Call {
	return services.Call{Account: account}
}

func paying(account string, deposit uint64) services.Call {
	return services.Call{Account: account, Deposit: uint256.NewInt(deposit)}
}

func newTestState(t *testing.T) (*services.GameState, *services.EventRecorder) {
	t.Helper()
	recorder := &services.EventRecorder{}
	return services.NewGameState(services.NewMemoryStore(), authority, recorder), recorder
}

// initState runs Init so the line capacity and reward cap hold their
// defaults.
func initState(t *testing.T, g *services.GameState) {
	t.Helper()
	err := g.Init(context.Background(), admin, models.ContractMetadata{
		Spec:   "nft-1.0.0",
		Name:   "Mysteries",
		Symbol: "MYS",
	})
	require.NoError(t, err)
}

// claimedUser allocates a user and claims it for account.
func claimedUser(t *testing.T, g *services.GameState, account string) uint32 {
	t.Helper()
	ctx := context.Background()
	userID, err := g.AllocateUser(ctx, admin, "secret-"+account)
	require.NoError(t, err)
	_, err = g.ClaimUser(ctx, player(account), userID, "secret-"+account)
	require.NoError(t, err)
	return userID
}

func TestAuthorityOnlyOperations(t *testing.T) {
	g, recorder := newTestState(t)
	ctx := context.Background()
	intruder := player("mallory.near")

	_, err := g.AllocateUser(ctx, intruder, "s")
	assert.ErrorIs(t, err, services.ErrUnauthorized)

	_, err = g.SetUserOwnership(ctx, intruder, 1, "mallory.near")
	assert.ErrorIs(t, err, services.ErrUnauthorized)

	assert.ErrorIs(t, g.UnlockPublicAccessory(ctx, intruder, 3), services.ErrUnauthorized)
	assert.ErrorIs(t, g.RevokePublicAccessory(ctx, intruder, 3), services.ErrUnauthorized)
	assert.ErrorIs(t, g.SetPremiumPricing(ctx, intruder, 200, uint256.NewInt(1), 1), services.ErrUnauthorized)
	assert.ErrorIs(t, g.GrantAccessory(ctx, intruder, 1, 200), services.ErrUnauthorized)

	_, err = g.RewardPoints(ctx, intruder, 1, 10)
	assert.ErrorIs(t, err, services.ErrUnauthorized)

	_, err = g.IssueToken(ctx, intruder, 1, models.TokenMetadata{Reference: "ref"})
	assert.ErrorIs(t, err, services.ErrUnauthorized)

	_, err = g.Enqueue(ctx, intruder, 1)
	assert.ErrorIs(t, err, services.ErrUnauthorized)

	_, _, err = g.Dequeue(ctx, intruder)
	assert.ErrorIs(t, err, services.ErrUnauthorized)

	assert.ErrorIs(t, g.SetPriceToUnlockUser(ctx, intruder, uint256.NewInt(1)), services.ErrUnauthorized)
	assert.ErrorIs(t, g.SetMaxPointsReward(ctx, intruder, 1), services.ErrUnauthorized)
	assert.ErrorIs(t, g.SetMaxLineCapacity(ctx, intruder, 1), services.ErrUnauthorized)
	assert.ErrorIs(t, g.SetBaseURI(ctx, intruder, "x"), services.ErrUnauthorized)
	assert.ErrorIs(t, g.Init(ctx, intruder, models.ContractMetadata{Spec: "a", Name: "b", Symbol: "c"}), services.ErrUnauthorized)

	assert.ErrorIs(t, g.SetBaseURI(ctx, services.Call{}, "x"), services.ErrUnauthorized)
	assert.Empty(t, recorder.Events)
}

func TestEventsCarryTransitionID(t *testing.T) {
	g, recorder := newTestState(t)
	ctx := context.Background()

	userID, err := g.AllocateUser(ctx, admin, "s1")
	require.NoError(t, err)
	_, err = g.ClaimUser(ctx, player("alice.near"), userID, "s1")
	require.NoError(t, err)

	require.Len(t, recorder.Events, 2)
	for _, e := range recorder.Events {
		assert.NotEmpty(t, e.TxID)
	}
	assert.NotEqual(t, recorder.Events[0].TxID, recorder.Events[1].TxID)
	assert.Equal(t, models.EventUserAllocated, recorder.Events[0].Type)
	assert.Equal(t, "1", recorder.Events[0].Attributes["user_id"])
}

func TestRejectedTransitionEmitsNothing(t *testing.T) {
	g, recorder := newTestState(t)
	ctx := context.Background()

	userID, err := g.AllocateUser(ctx, admin, "s1")
	require.NoError(t, err)
	recorder.Events = nil

	_, err = g.ClaimUser(ctx, player("alice.near"), userID, "wrong")
	require.True(t, errors.Is(err, services.ErrInvalidSecret))
	assert.Empty(t, recorder.Events)
}

func TestEndToEndEconomy(t *testing.T) {
	g, _ := newTestState(t)
	ctx := context.Background()
	initState(t, g)
	require.NoError(t, g.SetPriceToUnlockUser(ctx, admin, uint256.NewInt(5)))

	userID, err := g.AllocateUser(ctx, admin, "s1")
	require.NoError(t, err)
	assert.Equal(t, uint32(1), userID)

	_, err = g.ClaimUser(ctx, paying("alice.near", 5), userID, "s2")
	assert.ErrorIs(t, err, services.ErrInvalidSecret)

	result, err := g.ClaimUser(ctx, paying("alice.near", 5), userID, "s1")
	require.NoError(t, err)
	assert.False(t, result.Merged)

	owner, err := g.GetUserID(ctx, "alice.near")
	require.NoError(t, err)
	assert.Equal(t, userID, owner)

	balance, err := g.RewardPoints(ctx, admin, userID, 50)
	require.NoError(t, err)
	assert.Equal(t, uint32(50), balance)

	require.NoError(t, g.SetPremiumPricing(ctx, admin, 200, uint256.NewInt(1), 20))

	balance, err = g.PurchaseAccessoryWithPoints(ctx, player("alice.near"), 200)
	require.NoError(t, err)
	assert.Equal(t, uint32(30), balance)

	owned, err := g.HasAccessory(ctx, userID, 200)
	require.NoError(t, err)
	assert.True(t, owned)

	_, err = g.PurchaseAccessoryWithPoints(ctx, player("alice.near"), 200)
	assert.ErrorIs(t, err, services.ErrAlreadyOwned)

	points, err := g.Points(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, uint32(30), points)
}
