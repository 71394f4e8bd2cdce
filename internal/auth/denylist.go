package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/inkwell-blog/apiserver/config"
)

const denylistKeyPrefix = "session:revoked:"

// Denylist records logged-out session tokens until their natural expiry.
// Tokens are otherwise stateless, so without it a cookie captured before
// logout verifies fine until it expires. Only a SHA-256 of the token is
// stored. A nil *Denylist is valid and revokes nothing.
type Denylist struct {
	client *redis.Client
}

// NewDenylist connects to redis, or returns nil when no address is
// configured.
func NewDenylist(cfg config.RedisConfig) *Denylist {
	if cfg.Addr == "" {
		return nil
	}
	return &Denylist{client: redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})}
}

// Revoke marks a raw token as logged out for ttl, which should be the
// token's remaining lifetime.
func (d *Denylist) Revoke(ctx context.Context, raw string, ttl time.Duration) error {
	if d == nil || ttl <= 0 {
		return nil
	}
	return d.client.Set(ctx, denylistKey(raw), 1, ttl).Err()
}

// Revoked reports whether a raw token has been logged out.
func (d *Denylist) Revoked(ctx context.Context, raw string) (bool, error) {
	if d == nil {
		return false, nil
	}
	n, err := d.client.Exists(ctx, denylistKey(raw)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Close releases the redis connection.
func (d *Denylist) Close() error {
	if d == nil {
		return nil
	}
	return d.client.Close()
}

func denylistKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return denylistKeyPrefix + hex.EncodeToString(sum[:])
}
