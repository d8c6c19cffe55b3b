package models

import (
	"strconv"
)

type EventType string

const (
	EventUserAllocated      EventType = "user_allocated"
	EventUserClaimed        EventType = "user_claimed"
	EventUsersMerged        EventType = "users_merged"
	EventAccessoryUnlocked  EventType = "accessory_unlocked"
	EventAccessoryRevoked   EventType = "accessory_revoked"
	EventAccessoryPriced    EventType = "accessory_priced"
	EventAccessoryGranted   EventType = "accessory_granted"
	EventAccessoryPurchased EventType = "accessory_purchased"
	EventPointsRewarded     EventType = "points_rewarded"
	EventNFTMint            EventType = "nft_mint"
	EventLineEnqueued       EventType = "line_enqueued"
	EventLineDequeued       EventType = "line_dequeued"
	EventConfigUpdated      EventType = "config_updated"
)

// Event is emitted once per committed state change. TxID groups the events
// of a single transition.
type Event struct {
	Type       EventType         `json:"type"`
	TxID       string            `json:"tx_id"`
	Attributes map[string]string `json:"attributes"`
}

func NewEvent(t EventType, attrs map[string]string) Event {
	return Event{Type: t, Attributes: attrs}
}

func FormatUint32(v uint32) string {
	return strconv.FormatUint(uint64(v), 10)
}
