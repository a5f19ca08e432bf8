package entitlement

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// DefaultLeaseTTL bounds how long a crashed process can hold an ICCID before
// the lease expires on its own.
const DefaultLeaseTTL = 2 * time.Minute

// Lease serializes mutating operations per ICCID. Acquire returns ErrConflict
// when another operation holds the lease; the returned release function is
// safe to call exactly once, normally via defer.
type Lease interface {
	Acquire(ctx context.Context, iccid string) (release func(), err error)
}

// releaseScript deletes the lease key only if it still carries our token, so
// a slow holder cannot release a lease that has expired and been re-acquired.
var releaseScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	end
	return 0
`)

// RedisLease implements Lease on Redis with SET NX PX, giving mutual
// exclusion across server replicas.
type RedisLease struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisLease creates a Redis-backed lease with the given TTL. A zero TTL
// falls back to DefaultLeaseTTL.
func NewRedisLease(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *RedisLease {
	if ttl <= 0 {
		ttl = DefaultLeaseTTL
	}
	return &RedisLease{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "lease").Logger(),
	}
}

func (l *RedisLease) Acquire(ctx context.Context, iccid string) (func(), error) {
	key := "entitlement:lease:" + iccid
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lease for %s: %w", iccid, err)
	}
	if !ok {
		return nil, fmt.Errorf("iccid %s: %w", iccid, ErrConflict)
	}

	release := func() {
		// Release on a fresh context so a cancelled request still frees the key.
		rctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(rctx, l.client, []string{key}, token).Err(); err != nil {
			l.logger.Warn().Err(err).Str("iccid", iccid).Msg("failed to release lease")
		}
	}
	return release, nil
}

// LocalLease implements Lease with an in-process map. Used in single-instance
// deployments and in tests where no Redis is configured.
type LocalLease struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewLocalLease creates an in-process lease.
func NewLocalLease() *LocalLease {
	return &LocalLease{held: make(map[string]struct{})}
}

func (l *LocalLease) Acquire(_ context.Context, iccid string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, taken := l.held[iccid]; taken {
		return nil, fmt.Errorf("iccid %s: %w", iccid, ErrConflict)
	}
	l.held[iccid] = struct{}{}

	var once sync.Once
	release := func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, iccid)
			l.mu.Unlock()
		})
	}
	return release, nil
}
