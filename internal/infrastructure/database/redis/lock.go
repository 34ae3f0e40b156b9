package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/errors"
)

// ErrLockNotHeld is returned when releasing a lock owned by someone else.
var ErrLockNotHeld = errors.New(errors.CodeConflict, "lock not held by this owner")

// releaseScript deletes the key only if the caller still owns it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// Lock is a single-instance distributed lock used to keep periodic jobs,
// such as the outbreak scan, from running on more than one worker at once.
type Lock struct {
	client *redis.Client
	name   string
	ttl    time.Duration
	token  string
}

// NewLock builds a lock around a named key. The TTL bounds how long a
// crashed holder can block other workers.
func NewLock(client *redis.Client, name string, ttl time.Duration) *Lock {
	return &Lock{client: client, name: "lock:" + name, ttl: ttl}
}

// TryAcquire attempts to take the lock without blocking. It reports whether
// the caller now holds it.
func (l *Lock) TryAcquire(ctx context.Context) (bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.name, token, l.ttl).Result()
	if err != nil {
		return false, errors.Wrap(err, errors.CodeDatabaseError, "redis: acquiring lock")
	}
	if ok {
		l.token = token
	}
	return ok, nil
}

// Release gives the lock back. Only the acquiring owner can release it.
func (l *Lock) Release(ctx context.Context) error {
	if l.token == "" {
		return ErrLockNotHeld
	}
	n, err := releaseScript.Run(ctx, l.client, []string{l.name}, l.token).Int()
	if err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "redis: releasing lock")
	}
	l.token = ""
	if n == 0 {
		return ErrLockNotHeld
	}
	return nil
}
