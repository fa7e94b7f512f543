package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"go-bank-console/model"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/redis/go-redis/v9"
)

// NotificationTTL bounds how long an unread notification is kept.
const NotificationTTL = 5 * time.Minute

// NotificationStore keeps the one-shot message shown on a session's next
// page render.
type NotificationStore interface {
	Push(ctx context.Context, sessionID string, n model.Notification) error
	// Pop returns and removes the pending notification, or nil if none.
	Pop(ctx context.Context, sessionID string) (*model.Notification, error)
}

func notificationKey(sessionID string) string {
	return fmt.Sprintf("notifications:%s", sessionID)
}

// RedisNotificationStore keeps notifications in Redis as JSON values.
type RedisNotificationStore struct {
	client ICacheClient
}

func NewRedisNotificationStore(client ICacheClient) *RedisNotificationStore {
	return &RedisNotificationStore{client: client}
}

func (s *RedisNotificationStore) Push(ctx context.Context, sessionID string, n model.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, notificationKey(sessionID), data, NotificationTTL).Err()
}

// Pop reads and clears the key in one GETDEL so two renders of the same
// session never both show the message.
func (s *RedisNotificationStore) Pop(ctx context.Context, sessionID string) (*model.Notification, error) {
	raw, err := s.client.GetDel(ctx, notificationKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var n model.Notification
	if err := json.Unmarshal([]byte(raw), &n); err != nil {
		return nil, fmt.Errorf("decode notification: %w", err)
	}
	return &n, nil
}

// MemoryNotificationStore keeps notifications in process memory. Expired
// entries are swept by the cache's own cleanup loop until Close.
type MemoryNotificationStore struct {
	cache *ttlcache.Cache[string, model.Notification]
}

func NewMemoryNotificationStore() *MemoryNotificationStore {
	return newMemoryNotificationStore(NotificationTTL)
}

func newMemoryNotificationStore(ttl time.Duration) *MemoryNotificationStore {
	cache := ttlcache.New[string, model.Notification](
		ttlcache.WithTTL[string, model.Notification](ttl),
		ttlcache.WithDisableTouchOnHit[string, model.Notification](),
	)
	go cache.Start()
	return &MemoryNotificationStore{cache: cache}
}

func (s *MemoryNotificationStore) Push(_ context.Context, sessionID string, n model.Notification) error {
	s.cache.Set(sessionID, n, ttlcache.DefaultTTL)
	return nil
}

func (s *MemoryNotificationStore) Pop(_ context.Context, sessionID string) (*model.Notification, error) {
	item, ok := s.cache.GetAndDelete(sessionID)
	if !ok || item.IsExpired() {
		return nil, nil
	}
	n := item.Value()
	return &n, nil
}

// Close stops the cleanup loop.
func (s *MemoryNotificationStore) Close() {
	s.cache.Stop()
}
