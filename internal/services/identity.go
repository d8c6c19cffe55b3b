package services

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"math"

	"mysteries-backend/internal/models"
)

// AllocateUser reserves the next user id and stores the Keccak-256 digest of
// secret as its unlock proof.
func (g *GameState) AllocateUser(ctx context.Context, call Call, secret string) (uint32, error) {
	return g.allocate(ctx, call, models.SecretDigest(secret))
}

// AllocateUserDigest is AllocateUser for callers that hash the secret
// themselves, so the secret is never sent to the backend.
func (g *GameState) AllocateUserDigest(ctx context.Context, call Call, hexDigest string) (uint32, error) {
	digest, err := models.ParseDigest(hexDigest)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}
	return g.allocate(ctx, call, digest)
}

func (g *GameState) allocate(ctx context.Context, call Call, digest []byte) (uint32, error) {
	if err := g.requireAuthority(call); err != nil {
		return 0, err
	}

	var userID uint32
	err := g.transition(ctx, "allocate_user", call, func(tx Tx, em *emitter) error {
		next, err := getU32Or(tx, KeyNextUserID, 1)
		if err != nil {
			return err
		}
		if next == math.MaxUint32 {
			return fmt.Errorf("%w: max number of users reached", ErrCapacityExceeded)
		}

		tx.Set(fmt.Sprintf(KeyUserUnlock, next), digest)
		setU32(tx, KeyNextUserID, next+1)
		userID = next

		em.emit(models.EventUserAllocated, map[string]string{
			"user_id": models.FormatUint32(next),
		})
		return nil
	})
	if err != nil {
		return 0, err
	}
	return userID, nil
}

// ClaimUser binds the caller's account to userID. The secret must hash to the
// stored unlock digest and the attached deposit must equal the unlock price.
// If the account already owned another user, that user is merged into userID.
func (g *GameState) ClaimUser(ctx context.Context, call Call, userID uint32, secret string) (*models.ClaimResult, error) {
	if call.Account == "" {
		return nil, fmt.Errorf("%w: caller account is required", ErrUnauthorized)
	}

	var result *models.ClaimResult
	err := g.transition(ctx, "claim_user", call, func(tx Tx, em *emitter) error {
		digest, found, err := tx.Get(fmt.Sprintf(KeyUserUnlock, userID))
		if err != nil {
			return err
		}
		if userID == 0 || !found {
			return fmt.Errorf("%w: user %d has no pending claim", ErrNotFound, userID)
		}
		if !bytes.Equal(models.SecretDigest(secret), digest) {
			return fmt.Errorf("%w: the secret word is not correct", ErrInvalidSecret)
		}

		price, err := unlockPrice(tx)
		if err != nil {
			return err
		}
		if !call.deposit().Eq(price) {
			return fmt.Errorf("%w: unlocking a user requires a deposit of %s", ErrWrongDeposit, price.Dec())
		}

		result, err = bindAccount(tx, em, userID, call.Account)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SetUserOwnership is the authority's account recovery path: it binds
// account to userID without secret or deposit checks.
func (g *GameState) SetUserOwnership(ctx context.Context, call Call, userID uint32, account string) (*models.ClaimResult, error) {
	if err := g.requireAuthority(call); err != nil {
		return nil, err
	}
	if account == "" {
		return nil, fmt.Errorf("%w: account is required", ErrInvalidRange)
	}

	var result *models.ClaimResult
	err := g.transition(ctx, "set_user_ownership", call, func(tx Tx, em *emitter) error {
		if err := requireAllocated(tx, userID); err != nil {
			return err
		}
		var err error
		result, err = bindAccount(tx, em, userID, account)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func bindAccount(tx Tx, em *emitter, userID uint32, account string) (*models.ClaimResult, error) {
	result := &models.ClaimResult{UserID: userID, Account: account}

	previous, bound, err := userOf(tx, account)
	if err != nil {
		return nil, err
	}
	if bound && previous != userID {
		if err := mergeUsers(tx, userID, previous); err != nil {
			return nil, err
		}
		result.Merged = true
		result.MergedFrom = previous
		em.emit(models.EventUsersMerged, map[string]string{
			"target": models.FormatUint32(userID),
			"source": models.FormatUint32(previous),
		})
	}

	// A slot rebound by the authority drops its old account.
	oldAccount, hadAccount, err := accountOf(tx, userID)
	if err != nil {
		return nil, err
	}
	if hadAccount && oldAccount != account {
		tx.Del(fmt.Sprintf(KeyAccountUser, oldAccount))
	}

	setU32(tx, fmt.Sprintf(KeyAccountUser, account), userID)
	setString(tx, fmt.Sprintf(KeyUserAccount, userID), account)
	tx.Del(fmt.Sprintf(KeyUserUnlock, userID))

	em.emit(models.EventUserClaimed, map[string]string{
		"user_id": models.FormatUint32(userID),
		"account": account,
	})
	return result, nil
}

// mergeUsers folds source into target: accessories are unioned, tokens move
// to target, points are summed. Source keeps its numeric id and any line
// position, everything else it owned is deleted.
func mergeUsers(tx Tx, target, source uint32) error {
	targetPoints, err := loadPoints(tx, target)
	if err != nil {
		return err
	}
	sourcePoints, err := loadPoints(tx, source)
	if err != nil {
		return err
	}
	if targetPoints > math.MaxUint32-sourcePoints {
		return fmt.Errorf("%w: merged points of users %d and %d", ErrOverflow, target, source)
	}

	targetAccessories, err := loadUserAccessories(tx, target)
	if err != nil {
		return err
	}
	sourceAccessories, err := loadUserAccessories(tx, source)
	if err != nil {
		return err
	}
	for _, a := range sourceAccessories {
		if !models.ContainsAccessory(targetAccessories, a) {
			targetAccessories = append(targetAccessories, a)
		}
	}

	targetTokens, err := loadTokenIDs(tx, target)
	if err != nil {
		return err
	}
	sourceTokens, err := loadTokenIDs(tx, source)
	if err != nil {
		return err
	}
	for _, tokenID := range sourceTokens {
		token, err := loadToken(tx, tokenID)
		if err != nil {
			return err
		}
		token.OwnerUserID = target
		if err := setJSON(tx, fmt.Sprintf(KeyGameToken, tokenID), token); err != nil {
			return err
		}
		targetTokens = append(targetTokens, tokenID)
	}

	if len(sourceAccessories) > 0 {
		if err := setJSON(tx, fmt.Sprintf(KeyUserAccessories, target), targetAccessories); err != nil {
			return err
		}
	}
	if len(sourceTokens) > 0 {
		if err := setJSON(tx, fmt.Sprintf(KeyUserGameTokens, target), targetTokens); err != nil {
			return err
		}
	}
	setU32(tx, fmt.Sprintf(KeyUserPoints, target), targetPoints+sourcePoints)

	tx.Del(fmt.Sprintf(KeyUserAccessories, source))
	tx.Del(fmt.Sprintf(KeyUserGameTokens, source))
	tx.Del(fmt.Sprintf(KeyUserPoints, source))
	tx.Del(fmt.Sprintf(KeyUserAccount, source))
	return nil
}

// GetUser assembles the full view of a user slot.
func (g *GameState) GetUser(ctx context.Context, userID uint32) (*models.GameUser, error) {
	var user *models.GameUser
	err := g.view(ctx, func(tx Tx) error {
		if err := requireAllocated(tx, userID); err != nil {
			return err
		}

		u := &models.GameUser{UserID: userID}

		account, _, err := accountOf(tx, userID)
		if err != nil {
			return err
		}
		u.Account = account

		digest, pending, err := tx.Get(fmt.Sprintf(KeyUserUnlock, userID))
		if err != nil {
			return err
		}
		u.Claimed = !pending
		if pending {
			u.UnlockDigest = hex.EncodeToString(digest)
		}

		if u.Accessories, err = loadUserAccessories(tx, userID); err != nil {
			return err
		}
		if u.GameTokens, err = loadTokenIDs(tx, userID); err != nil {
			return err
		}
		if u.Points, err = loadPoints(tx, userID); err != nil {
			return err
		}

		turn, queued, err := getU32(tx, fmt.Sprintf(KeyLineTurn, userID))
		if err != nil {
			return err
		}
		if queued {
			u.Turn = &turn
		}

		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserID returns the user bound to account, or 0 when there is none.
func (g *GameState) GetUserID(ctx context.Context, account string) (uint32, error) {
	var userID uint32
	err := g.view(ctx, func(tx Tx) error {
		id, _, err := userOf(tx, account)
		userID = id
		return err
	})
	return userID, err
}
