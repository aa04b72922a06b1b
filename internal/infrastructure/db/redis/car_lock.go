package redis

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bcr-rental/car-rental-api/internal/core/ports"
)

const (
	defaultLockTTL = 10 * time.Second
	retryInterval  = 25 * time.Millisecond
)

// releaseScript deletes the key only if it still holds our token, so an
// expired holder cannot release a lock someone else has since taken.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

var _ ports.CarLocker = (*CarLock)(nil)

// CarLock is a per-car lock shared by every API instance pointed at the
// same Redis. Key format: rental:lock:<car_id>
type CarLock struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCarLock creates a CarLock. The ttl bounds how long a crashed holder
// can block a car; a non-positive ttl uses defaultLockTTL.
func NewCarLock(client *redis.Client, ttl time.Duration) *CarLock {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &CarLock{client: client, ttl: ttl}
}

// Lock retries SET NX until it wins or ctx is done.
func (l *CarLock) Lock(ctx context.Context, carID string) (func(), error) {
	key := l.key(carID)
	token, err := newToken()
	if err != nil {
		return nil, err
	}

	ticker := time.NewTicker(retryInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("car lock %s: %w", carID, err)
		}
		if ok {
			return func() { l.release(key, token) }, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (l *CarLock) release(key, token string) {
	// The request context may already be cancelled; release regardless.
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	_ = releaseScript.Run(ctx, l.client, []string{key}, token).Err()
}

func (l *CarLock) key(carID string) string {
	return fmt.Sprintf("rental:lock:%s", carID)
}

func newToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("car lock token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
