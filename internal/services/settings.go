package services

import (
	"context"
	"fmt"

	"mysteries-backend/internal/models"

	"github.com/holiman/uint256"
)

// unlockPrice is the deposit a claim must attach. Unset means free.
func unlockPrice(tx Tx) (*uint256.Int, error) {
	raw, _, err := getString(tx, KeyPriceToUnlockUser)
	if err != nil {
		return nil, err
	}
	return models.ParseAmount(raw)
}

func loadGameConfig(tx Tx) (*models.GameConfig, error) {
	cfg := &models.GameConfig{}

	if v, found, err := getString(tx, KeyBaseURI); err != nil {
		return nil, err
	} else if found {
		cfg.BaseURI = &v
	}
	if v, found, err := getU32(tx, KeyMaxLineCapacity); err != nil {
		return nil, err
	} else if found {
		cfg.MaxLineCapacity = &v
	}
	if v, found, err := getU32(tx, KeyMaxPointsReward); err != nil {
		return nil, err
	} else if found {
		cfg.MaxPointsReward = &v
	}
	if v, found, err := getString(tx, KeyPriceToUnlockUser); err != nil {
		return nil, err
	} else if found {
		cfg.PriceToUnlockUser = &v
	}
	return cfg, nil
}

func configUpdated(em *emitter, key, value string) {
	em.emit(models.EventConfigUpdated, map[string]string{
		"key":   key,
		"value": value,
	})
}

// SetPriceToUnlockUser changes the claim deposit. The new price must be
// positive and differ from the current one.
func (g *GameState) SetPriceToUnlockUser(ctx context.Context, call Call, price *uint256.Int) error {
	if err := g.requireAuthority(call); err != nil {
		return err
	}
	if price == nil || price.IsZero() {
		return fmt.Errorf("%w: price must be greater than zero", ErrInvalidRange)
	}

	return g.transition(ctx, "set_price_to_unlock_user", call, func(tx Tx, em *emitter) error {
		current, err := unlockPrice(tx)
		if err != nil {
			return err
		}
		if current.Eq(price) {
			return fmt.Errorf("%w: price is already %s", ErrInvalidRange, price.Dec())
		}
		setString(tx, KeyPriceToUnlockUser, price.Dec())
		configUpdated(em, "price_to_unlock_user", price.Dec())
		return nil
	})
}

func (g *GameState) SetMaxPointsReward(ctx context.Context, call Call, limit uint32) error {
	if err := g.requireAuthority(call); err != nil {
		return err
	}
	return g.transition(ctx, "set_max_points_reward", call, func(tx Tx, em *emitter) error {
		setU32(tx, KeyMaxPointsReward, limit)
		configUpdated(em, "max_points_reward", models.FormatUint32(limit))
		return nil
	})
}

// SetMaxLineCapacity bounds the waiting line. Lowering it below the current
// length only blocks further enqueues.
func (g *GameState) SetMaxLineCapacity(ctx context.Context, call Call, capacity uint32) error {
	if err := g.requireAuthority(call); err != nil {
		return err
	}
	return g.transition(ctx, "set_max_line_capacity", call, func(tx Tx, em *emitter) error {
		setU32(tx, KeyMaxLineCapacity, capacity)
		configUpdated(em, "max_line_capacity", models.FormatUint32(capacity))
		return nil
	})
}

func (g *GameState) SetBaseURI(ctx context.Context, call Call, baseURI string) error {
	if err := g.requireAuthority(call); err != nil {
		return err
	}
	return g.transition(ctx, "set_base_uri", call, func(tx Tx, em *emitter) error {
		setString(tx, KeyBaseURI, baseURI)
		configUpdated(em, "base_uri", baseURI)
		return nil
	})
}

// Init stores the NFT contract metadata and resets the line capacity and
// points reward cap to their defaults. Running it again overwrites both.
func (g *GameState) Init(ctx context.Context, call Call, metadata models.ContractMetadata) error {
	if err := g.requireAuthority(call); err != nil {
		return err
	}
	if metadata.Spec == "" || metadata.Name == "" || metadata.Symbol == "" {
		return fmt.Errorf("%w: spec, name and symbol are required", ErrInvalidRange)
	}

	return g.transition(ctx, "init", call, func(tx Tx, em *emitter) error {
		if err := setJSON(tx, KeyContractMetadata, metadata); err != nil {
			return err
		}
		setU32(tx, KeyMaxLineCapacity, DefaultLineCapacity)
		setU32(tx, KeyMaxPointsReward, DefaultMaxPointsReward)
		if metadata.BaseURI != "" {
			setString(tx, KeyBaseURI, metadata.BaseURI)
		}

		configUpdated(em, "max_line_capacity", models.FormatUint32(DefaultLineCapacity))
		configUpdated(em, "max_points_reward", models.FormatUint32(DefaultMaxPointsReward))
		return nil
	})
}

func (g *GameState) GetGameConfig(ctx context.Context) (*models.GameConfig, error) {
	var cfg *models.GameConfig
	err := g.view(ctx, func(tx Tx) error {
		var err error
		cfg, err = loadGameConfig(tx)
		return err
	})
	return cfg, err
}
