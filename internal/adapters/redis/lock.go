package redisad

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"guestreviews/internal/adapters/observability"
)

// unlockScript deletes the key only while it still holds our token, so an
// expired lock taken over by another caller is left alone.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

type Locker struct{ c *redis.Client }

func New(addr, pass string, db int) *Locker {
	return &Locker{c: redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})}
}

func NewFromClient(c *redis.Client) *Locker { return &Locker{c: c} }

func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	token := uuid.NewString()
	ok, err := l.c.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		observability.ObserveSyncLock("error")
		return nil, false, err
	}
	if !ok {
		observability.ObserveSyncLock("busy")
		return nil, false, nil
	}
	observability.ObserveSyncLock("acquired")

	release := func(ctx context.Context) error {
		n, err := unlockScript.Run(ctx, l.c, []string{key}, token).Int()
		if err != nil {
			return err
		}
		if n == 1 {
			observability.ObserveSyncLock("released")
		}
		return nil
	}
	return release, true, nil
}

func (l *Locker) Close() error { return l.c.Close() }
