package services

import (
	"context"
	"fmt"
	"math"

	"mysteries-backend/internal/models"
)

// RewardPoints credits amount to userID and returns the new balance. A single
// reward is capped by the configured max points reward.
func (g *GameState) RewardPoints(ctx context.Context, call Call, userID uint32, amount uint32) (uint32, error) {
	if err := g.requireAuthority(call); err != nil {
		return 0, err
	}

	var total uint32
	err := g.transition(ctx, "reward_points", call, func(tx Tx, em *emitter) error {
		if err := requireAllocated(tx, userID); err != nil {
			return err
		}

		limit, err := getU32Or(tx, KeyMaxPointsReward, 0)
		if err != nil {
			return err
		}
		if amount == 0 || amount > limit {
			return fmt.Errorf("%w: reward must be between 1 and %d points", ErrInvalidRange, limit)
		}

		balance, err := loadPoints(tx, userID)
		if err != nil {
			return err
		}
		if balance > math.MaxUint32-amount {
			return fmt.Errorf("%w: points of user %d", ErrOverflow, userID)
		}

		total = balance + amount
		setU32(tx, fmt.Sprintf(KeyUserPoints, userID), total)

		em.emit(models.EventPointsRewarded, map[string]string{
			"user_id": models.FormatUint32(userID),
			"amount":  models.FormatUint32(amount),
			"total":   models.FormatUint32(total),
		})
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (g *GameState) Points(ctx context.Context, userID uint32) (uint32, error) {
	var balance uint32
	err := g.view(ctx, func(tx Tx) error {
		if err := requireAllocated(tx, userID); err != nil {
			return err
		}
		var err error
		balance, err = loadPoints(tx, userID)
		return err
	})
	return balance, err
}
