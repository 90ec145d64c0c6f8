package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const pending = "pending"

// DefaultPendingTTL bounds how long an unfinished claim blocks its key, so a
// lost Complete or Release frees the key soon instead of after the full TTL.
const DefaultPendingTTL = 30 * time.Second

// ErrInFlight means another request with the same key has not finished yet.
var ErrInFlight = errors.New("request with this idempotency key is in flight")

// Store remembers which order a client-supplied idempotency key produced.
// A key is claimed before the reservation runs, completed with the order id
// on commit, and released when no order was placed so the client may retry.
type Store struct {
	rdb        *redis.Client
	ttl        time.Duration
	pendingTTL time.Duration
}

// NewStore keeps completed keys for ttl and unfinished claims for
// DefaultPendingTTL, or ttl when that is shorter.
func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl, pendingTTL: min(ttl, DefaultPendingTTL)}
}

func (s *Store) WithPendingTTL(d time.Duration) *Store {
	s.pendingTTL = min(s.ttl, d)
	return s
}

func (s *Store) Key(scope, clientKey string) string {
	return fmt.Sprintf("idem:%s:%s", scope, clientKey)
}

// Claim returns ("", nil) when the caller now owns key, the recorded order id
// when the key was already completed, or ErrInFlight.
func (s *Store) Claim(ctx context.Context, key string) (string, error) {
	ok, err := s.rdb.SetNX(ctx, key, pending, s.pendingTTL).Result()
	if err != nil {
		return "", err
	}
	if ok {
		return "", nil
	}

	val, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		// expired between SetNX and Get
		return s.Claim(ctx, key)
	}
	if err != nil {
		return "", err
	}
	if val == pending {
		return "", ErrInFlight
	}
	return val, nil
}

func (s *Store) Complete(ctx context.Context, key, orderID string) error {
	return s.rdb.Set(ctx, key, orderID, s.ttl).Err()
}

func (s *Store) Release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}
