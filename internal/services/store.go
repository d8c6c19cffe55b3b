package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// Store is the key-value store every state transition runs against.
//
// Update runs fn as one all-or-nothing transition: writes made through the
// Tx become visible only if fn returns nil. Implementations may run fn more
// than once when a concurrent transition wins, so fn must not have side
// effects outside the Tx. View runs fn against a consistent read snapshot
// and discards any writes.
type Store interface {
	Update(ctx context.Context, fn func(tx Tx) error) error
	View(ctx context.Context, fn func(tx Tx) error) error
	Ping(ctx context.Context) error
	Close() error
}

// Tx is the read/write handle passed to a transition. Get reports found=false
// for a missing key.
type Tx interface {
	Get(key string) (value []byte, found bool, err error)
	Set(key string, value []byte)
	Del(key string)
}

func getU32(tx Tx, key string) (uint32, bool, error) {
	raw, found, err := tx.Get(key)
	if err != nil || !found {
		return 0, found, err
	}
	v, err := strconv.ParseUint(string(raw), 10, 32)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt value at %s: %v", key, err)
	}
	return uint32(v), true, nil
}

// getU32Or returns fallback when the key is missing.
func getU32Or(tx Tx, key string, fallback uint32) (uint32, error) {
	v, found, err := getU32(tx, key)
	if err != nil {
		return 0, err
	}
	if !found {
		return fallback, nil
	}
	return v, nil
}

func setU32(tx Tx, key string, v uint32) {
	tx.Set(key, []byte(strconv.FormatUint(uint64(v), 10)))
}

func getString(tx Tx, key string) (string, bool, error) {
	raw, found, err := tx.Get(key)
	if err != nil || !found {
		return "", found, err
	}
	return string(raw), true, nil
}

func setString(tx Tx, key, v string) {
	tx.Set(key, []byte(v))
}

func getJSON(tx Tx, key string, dst interface{}) (bool, error) {
	raw, found, err := tx.Get(key)
	if err != nil || !found {
		return found, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %v", key, err)
	}
	return true, nil
}

func setJSON(tx Tx, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %v", key, err)
	}
	tx.Set(key, data)
	return nil
}
