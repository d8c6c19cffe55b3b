package services

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore is an in-process Store. Transitions are serialised behind a
// mutex and their writes are applied only when fn succeeds.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	limitMu sync.Mutex
	limits  map[string]*rateWindow
}

type rateWindow struct {
	count   int
	expires time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:   make(map[string][]byte),
		limits: make(map[string]*rateWindow),
	}
}

type memTx struct {
	base   map[string][]byte
	writes map[string][]byte
}

func (t *memTx) Get(key string) ([]byte, bool, error) {
	if v, ok := t.writes[key]; ok {
		if v == nil {
			return nil, false, nil
		}
		return v, true, nil
	}
	v, ok := t.base[key]
	return v, ok, nil
}

func (t *memTx) Set(key string, value []byte) {
	t.writes[key] = append([]byte{}, value...)
}

func (t *memTx) Del(key string) {
	t.writes[key] = nil
}

func (s *MemoryStore) Update(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{base: s.data, writes: make(map[string][]byte)}
	if err := fn(tx); err != nil {
		return err
	}
	for k, v := range tx.writes {
		if v == nil {
			delete(s.data, k)
			continue
		}
		s.data[k] = v
	}
	return nil
}

func (s *MemoryStore) View(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	return fn(&memTx{base: s.data, writes: make(map[string][]byte)})
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemoryStore) Close() error {
	return nil
}

// Len reports the number of stored keys.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func (s *MemoryStore) CheckRateLimit(ctx context.Context, subject, action string, limit int, window time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.limitMu.Lock()
	defer s.limitMu.Unlock()

	key := fmt.Sprintf(KeyRateLimit, subject, action)
	now := time.Now()
	w, ok := s.limits[key]
	if !ok || now.After(w.expires) {
		w = &rateWindow{expires: now.Add(window)}
		s.limits[key] = w
	}
	w.count++

	return w.count <= limit, nil
}
