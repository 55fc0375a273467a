// Package token tracks revoked session tokens in redis. Entries carry a TTL
// matching the remaining token lifetime, so the set prunes itself and is
// shared across server instances.
package token

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "revoked:"

type Blacklist struct {
	rdb *redis.Client
}

func NewBlacklist(rdb *redis.Client) *Blacklist { return &Blacklist{rdb: rdb} }

// Revoke marks a token rejected for ttl. A non-positive ttl still gets one
// second so a token revoked at the edge of expiry cannot slip through.
func (b *Blacklist) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl < time.Second {
		ttl = time.Second
	}
	return b.rdb.Set(ctx, keyPrefix+token, 1, ttl).Err()
}

func (b *Blacklist) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := b.rdb.Exists(ctx, keyPrefix+token).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
