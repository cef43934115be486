package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ErrLockNotAcquired is returned when another request holds the slot lock.
var ErrLockNotAcquired = errors.New("slot lock not acquired")

// SlotLocker guards the booking critical section per slot. The Mongo unique
// index is the authoritative constraint; the lock just keeps concurrent
// requests for the same slot from both paying for a create attempt.
type SlotLocker interface {
	WithSlotLock(ctx context.Context, doctorID, date, start string, fn func(ctx context.Context) error) error
}

type redisSlotLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSlotLocker creates a locker that uses a per-slot Redis key.
func NewRedisSlotLocker(client *redis.Client, ttl time.Duration) SlotLocker {
	return &redisSlotLocker{client: client, ttl: ttl}
}

func (l *redisSlotLocker) WithSlotLock(ctx context.Context, doctorID, date, start string, fn func(ctx context.Context) error) error {
	key := fmt.Sprintf("lock:slot:%s:%s:%s", doctorID, date, start)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire slot lock: %w", err)
	}
	if !ok {
		return ErrLockNotAcquired
	}
	defer func() {
		_ = l.release(ctx, key, token)
	}()

	lockCtx, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()
	return fn(lockCtx)
}

// unlockScript deletes the key only if this locker still owns it.
var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *redisSlotLocker) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release slot lock: %w", err)
	}
	return nil
}
