package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"mysteries-backend/internal/models"
)

const (
	nftStandard = "nep171"
	nftVersion  = "1.0.0"
)

func loadToken(tx Tx, tokenID uint32) (*models.GameToken, error) {
	token := &models.GameToken{}
	found, err := getJSON(tx, fmt.Sprintf(KeyGameToken, tokenID), token)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: token %d", ErrNotFound, tokenID)
	}
	return token, nil
}

// parseTokenID accepts the decimal string ids used on the NFT surface.
func parseTokenID(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: token %q", ErrNotFound, s)
	}
	return uint32(v), nil
}

func resolveToken(tx Tx, token *models.GameToken) (*models.Token, error) {
	owner, _, err := accountOf(tx, token.OwnerUserID)
	if err != nil {
		return nil, err
	}
	return &models.Token{
		ID:          models.FormatUint32(token.ID),
		OwnerID:     owner,
		OwnerUserID: token.OwnerUserID,
		Metadata:    token.Metadata,
	}, nil
}

// IssueToken appends a token to the ledger for userID and returns its id.
func (g *GameState) IssueToken(ctx context.Context, call Call, userID uint32, metadata models.TokenMetadata) (uint32, error) {
	if err := g.requireAuthority(call); err != nil {
		return 0, err
	}
	if metadata.Reference == "" {
		return 0, fmt.Errorf("%w: metadata reference is required", ErrInvalidRange)
	}

	var tokenID uint32
	err := g.transition(ctx, "issue_token", call, func(tx Tx, em *emitter) error {
		if err := requireAllocated(tx, userID); err != nil {
			return err
		}

		count, err := getU32Or(tx, KeyGameTokenCount, 0)
		if err != nil {
			return err
		}
		if count == math.MaxUint32 {
			return fmt.Errorf("%w: token ledger is full", ErrCapacityExceeded)
		}

		token := &models.GameToken{
			ID:          count,
			OwnerUserID: userID,
			MetadataRef: metadata.Reference,
			Metadata:    &metadata,
		}
		if err := setJSON(tx, fmt.Sprintf(KeyGameToken, count), token); err != nil {
			return err
		}
		setU32(tx, KeyGameTokenCount, count+1)

		owned, err := loadTokenIDs(tx, userID)
		if err != nil {
			return err
		}
		if err := setJSON(tx, fmt.Sprintf(KeyUserGameTokens, userID), append(owned, count)); err != nil {
			return err
		}

		owner, _, err := accountOf(tx, userID)
		if err != nil {
			return err
		}
		tokenIDs, _ := json.Marshal([]string{models.FormatUint32(count)})

		tokenID = count
		em.emit(models.EventNFTMint, map[string]string{
			"standard":  nftStandard,
			"version":   nftVersion,
			"owner_id":  owner,
			"user_id":   models.FormatUint32(userID),
			"token_ids": string(tokenIDs),
		})
		return nil
	})
	if err != nil {
		return 0, err
	}
	return tokenID, nil
}

// ListTokens returns the ledger entries owned by userID in issue order.
func (g *GameState) ListTokens(ctx context.Context, userID uint32) ([]models.GameToken, error) {
	var tokens []models.GameToken
	err := g.view(ctx, func(tx Tx) error {
		if err := requireAllocated(tx, userID); err != nil {
			return err
		}
		ids, err := loadTokenIDs(tx, userID)
		if err != nil {
			return err
		}
		tokens = make([]models.GameToken, 0, len(ids))
		for _, id := range ids {
			token, err := loadToken(tx, id)
			if err != nil {
				return err
			}
			tokens = append(tokens, *token)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

// ResolveToken looks a token up by its string id. OwnerID is empty while
// the owning user is unclaimed.
func (g *GameState) ResolveToken(ctx context.Context, tokenID string) (*models.Token, error) {
	id, err := parseTokenID(tokenID)
	if err != nil {
		return nil, err
	}

	var token *models.Token
	err = g.view(ctx, func(tx Tx) error {
		entry, err := loadToken(tx, id)
		if err != nil {
			return err
		}
		token, err = resolveToken(tx, entry)
		return err
	})
	if err != nil {
		return nil, err
	}
	return token, nil
}

func (g *GameState) TokenMetadata(ctx context.Context, tokenID string) (*models.TokenMetadata, error) {
	token, err := g.ResolveToken(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	if token.Metadata == nil {
		return nil, fmt.Errorf("%w: token %s has no metadata", ErrNotFound, tokenID)
	}
	return token.Metadata, nil
}

// TokensForOwner lists the tokens of the user bound to account.
func (g *GameState) TokensForOwner(ctx context.Context, account string) ([]models.Token, error) {
	var tokens []models.Token
	err := g.view(ctx, func(tx Tx) error {
		userID, bound, err := userOf(tx, account)
		if err != nil {
			return err
		}
		if !bound {
			return fmt.Errorf("%w: account %q has no user", ErrNotFound, account)
		}
		ids, err := loadTokenIDs(tx, userID)
		if err != nil {
			return err
		}
		tokens = make([]models.Token, 0, len(ids))
		for _, id := range ids {
			entry, err := loadToken(tx, id)
			if err != nil {
				return err
			}
			token, err := resolveToken(tx, entry)
			if err != nil {
				return err
			}
			tokens = append(tokens, *token)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

func (g *GameState) TokenIDsForOwner(ctx context.Context, account string) ([]string, error) {
	var ids []string
	err := g.view(ctx, func(tx Tx) error {
		userID, bound, err := userOf(tx, account)
		if err != nil {
			return err
		}
		if !bound {
			return fmt.Errorf("%w: account %q has no user", ErrNotFound, account)
		}
		owned, err := loadTokenIDs(tx, userID)
		if err != nil {
			return err
		}
		ids = make([]string, 0, len(owned))
		for _, id := range owned {
			ids = append(ids, models.FormatUint32(id))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// SupplyForOwner counts the tokens of the user bound to account, 0 when the
// account is unbound.
func (g *GameState) SupplyForOwner(ctx context.Context, account string) (uint32, error) {
	var supply uint32
	err := g.view(ctx, func(tx Tx) error {
		userID, bound, err := userOf(tx, account)
		if err != nil || !bound {
			return err
		}
		owned, err := loadTokenIDs(tx, userID)
		if err != nil {
			return err
		}
		supply = uint32(len(owned))
		return nil
	})
	return supply, err
}

func (g *GameState) ContractMetadata(ctx context.Context) (*models.ContractMetadata, error) {
	metadata := &models.ContractMetadata{}
	err := g.view(ctx, func(tx Tx) error {
		found, err := getJSON(tx, KeyContractMetadata, metadata)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%w: contract metadata is not initialized", ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return metadata, nil
}
