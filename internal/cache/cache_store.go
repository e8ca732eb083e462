// Package cache хранит значения с ограниченным сроком жизни.
package cache

import (
	"context"
	"sync"
	"time"
)

// CacheItem представляет кэшированное значение
type CacheItem[V any] struct {
	Data V
	// ExpiresAt — нулевое время означает бессрочное хранение.
	ExpiresAt time.Time
}

func (i *CacheItem[V]) expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && now.After(i.ExpiresAt)
}

// CacheStore управляет хранением и извлечением кэшированных значений
type CacheStore[K comparable, V any] struct {
	cache map[K]*CacheItem[V]
	mutex sync.RWMutex
	clock func() time.Time
}

// NewCacheStore создает новый экземпляр CacheStore
func NewCacheStore[K comparable, V any]() *CacheStore[K, V] {
	return &CacheStore[K, V]{
		cache: make(map[K]*CacheItem[V]),
		clock: time.Now,
	}
}

// Get извлекает значение по ключу
func (cs *CacheStore[K, V]) Get(key K) (V, bool) {
	cs.mutex.RLock()
	defer cs.mutex.RUnlock()

	item, exists := cs.cache[key]
	if !exists || item.expired(cs.clock()) {
		// Элемент не существует или срок его действия истек
		var zero V
		return zero, false
	}

	return item.Data, true
}

// Put сохраняет значение с указанным сроком действия.
// ttl == 0 — хранить до явного удаления.
func (cs *CacheStore[K, V]) Put(key K, data V, ttl time.Duration) {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	item := &CacheItem[V]{Data: data}
	if ttl != 0 {
		item.ExpiresAt = cs.clock().Add(ttl)
	}
	cs.cache[key] = item
}

// Len возвращает число элементов, включая еще не удаленные просроченные.
func (cs *CacheStore[K, V]) Len() int {
	cs.mutex.RLock()
	defer cs.mutex.RUnlock()
	return len(cs.cache)
}

// CleanupExpired удаляет просроченные элементы из кэша
func (cs *CacheStore[K, V]) CleanupExpired() {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	now := cs.clock()
	for key, item := range cs.cache {
		if item.expired(now) {
			delete(cs.cache, key)
		}
	}
}

// StartCleanupTicker запускает таймер для периодической очистки просроченных элементов
func (cs *CacheStore[K, V]) StartCleanupTicker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cs.CleanupExpired()
			}
		}
	}()
}
