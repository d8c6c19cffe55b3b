package services

import (
	"context"
	"fmt"
	"log/slog"

	"mysteries-backend/internal/models"

	"github.com/holiman/uint256"
)

// Call carries what the host knows about the caller of an operation: the
// authenticated account and the currency attached to the call.
type Call struct {
	Account string
	Deposit *uint256.Int
}

func (c Call) deposit() *uint256.Int {
	if c.Deposit == nil {
		return uint256.NewInt(0)
	}
	return c.Deposit
}

// GameState is the state machine behind the game: identities, accessories,
// points, game tokens and the waiting line. Every mutating method is one
// Store.Update transition; events are broadcast only after it commits.
type GameState struct {
	store       Store
	authority   string
	broadcaster Broadcaster
}

func NewGameState(store Store, authority string, broadcaster Broadcaster) *GameState {
	if broadcaster == nil {
		broadcaster = nopBroadcaster{}
	}
	return &GameState{
		store:       store,
		authority:   authority,
		broadcaster: broadcaster,
	}
}

func (g *GameState) Authority() string {
	return g.authority
}

func (g *GameState) IsAuthority(account string) bool {
	return account != "" && account == g.authority
}

func (g *GameState) requireAuthority(call Call) error {
	if !g.IsAuthority(call.Account) {
		return fmt.Errorf("%w: %q is not allowed to run this operation", ErrUnauthorized, call.Account)
	}
	return nil
}

type emitter struct {
	events []models.Event
}

func (e *emitter) emit(t models.EventType, attrs map[string]string) {
	e.events = append(e.events, models.NewEvent(t, attrs))
}

func (g *GameState) transition(ctx context.Context, op string, call Call, fn func(tx Tx, em *emitter) error) error {
	txID := models.GenerateTxID()
	em := &emitter{}

	err := g.store.Update(ctx, func(tx Tx) error {
		em.events = em.events[:0]
		return fn(tx, em)
	})
	if err != nil {
		slog.Warn("transition rejected", "op", op, "tx_id", txID, "caller", call.Account, "error", err)
		return err
	}

	slog.Info("transition committed", "op", op, "tx_id", txID, "caller", call.Account, "events", len(em.events))
	for _, event := range em.events {
		event.TxID = txID
		g.broadcaster.Broadcast(event)
	}
	return nil
}

func (g *GameState) view(ctx context.Context, fn func(tx Tx) error) error {
	return g.store.View(ctx, fn)
}

// Ping reports whether the backing store is reachable.
func (g *GameState) Ping(ctx context.Context) error {
	return g.store.Ping(ctx)
}

func isAllocated(tx Tx, userID uint32) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	next, err := getU32Or(tx, KeyNextUserID, 1)
	if err != nil {
		return false, err
	}
	return userID < next, nil
}

func requireAllocated(tx Tx, userID uint32) error {
	ok, err := isAllocated(tx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: user %d is not allocated", ErrNotFound, userID)
	}
	return nil
}

func userOf(tx Tx, account string) (uint32, bool, error) {
	return getU32(tx, fmt.Sprintf(KeyAccountUser, account))
}

func accountOf(tx Tx, userID uint32) (string, bool, error) {
	return getString(tx, fmt.Sprintf(KeyUserAccount, userID))
}

func loadAccessoryList(tx Tx, key string) ([]models.AccessoryID, error) {
	list := []models.AccessoryID{}
	if _, err := getJSON(tx, key, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func loadUserAccessories(tx Tx, userID uint32) ([]models.AccessoryID, error) {
	return loadAccessoryList(tx, fmt.Sprintf(KeyUserAccessories, userID))
}

func loadTokenIDs(tx Tx, userID uint32) ([]uint32, error) {
	ids := []uint32{}
	if _, err := getJSON(tx, fmt.Sprintf(KeyUserGameTokens, userID), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func loadPoints(tx Tx, userID uint32) (uint32, error) {
	return getU32Or(tx, fmt.Sprintf(KeyUserPoints, userID), 0)
}
