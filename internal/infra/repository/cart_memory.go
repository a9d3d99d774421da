package repository

import (
	"context"
	"sync"
	"time"

	repo "storefront/internal/repository"
)

// プロセス内だけで持つカート保存先（開発・テスト用）
// ttl > 0 なら最後の保存から ttl で消える。0 は無期限。
type CartMemoryStore struct {
	mu        sync.RWMutex
	ttl       time.Duration
	carts     map[string]memoryCart
	lastSweep time.Time
}

type memoryCart struct {
	payload   []byte
	expiresAt time.Time
}

func NewCartMemoryStore(ttl time.Duration) *CartMemoryStore {
	return &CartMemoryStore{
		ttl:       ttl,
		carts:     make(map[string]memoryCart),
		lastSweep: time.Now(),
	}
}

func (s *CartMemoryStore) Load(ctx context.Context, sessionID string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	entry, ok := s.carts[sessionID]
	s.mu.RUnlock()

	if !ok || s.expired(entry, time.Now()) {
		return nil, repo.ErrNotFound
	}

	out := make([]byte, len(entry.payload))
	copy(out, entry.payload)
	return out, nil
}

func (s *CartMemoryStore) Save(ctx context.Context, sessionID string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	stored := make([]byte, len(payload))
	copy(stored, payload)

	now := time.Now()
	entry := memoryCart{payload: stored}
	if s.ttl > 0 {
		entry.expiresAt = now.Add(s.ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.carts[sessionID] = entry
	s.sweepLocked(now)
	return nil
}

// Len は期限切れも含めて保持している件数
func (s *CartMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.carts)
}

func (s *CartMemoryStore) expired(entry memoryCart, now time.Time) bool {
	return !entry.expiresAt.IsZero() && !now.Before(entry.expiresAt)
}

// 掃除は ttl ごとに1回まで
func (s *CartMemoryStore) sweepLocked(now time.Time) {
	if s.ttl <= 0 || now.Sub(s.lastSweep) < s.ttl {
		return
	}
	for id, entry := range s.carts {
		if s.expired(entry, now) {
			delete(s.carts, id)
		}
	}
	s.lastSweep = now
}
