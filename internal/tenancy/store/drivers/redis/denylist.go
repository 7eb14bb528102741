// Package redis keeps the session denylist in Redis so revocations are
// shared by every replica.
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/store"
	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces revoked session ids.
const KeyPrefix = "tenancy:revoked:"

type Denylist struct {
	rdb *redis.Client
	now func() time.Time
}

var _ store.Denylist = (*Denylist)(nil)

// NewDenylist connects to the Redis instance at url (redis://...).
func NewDenylist(url string) (*Denylist, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return NewDenylistWithClient(redis.NewClient(opt)), nil
}

// NewDenylistWithClient wraps an existing client. Close closes it.
func NewDenylistWithClient(rdb *redis.Client) *Denylist {
	return &Denylist{rdb: rdb, now: time.Now}
}

// Revoke stores jti with a TTL running until until. Already expired
// tokens are not recorded.
func (d *Denylist) Revoke(ctx context.Context, jti string, until time.Time) error {
	if jti == "" {
		return errors.New("denylist: empty jti")
	}
	ttl := until.Sub(d.now())
	if ttl <= 0 {
		return nil
	}
	return d.rdb.Set(ctx, KeyPrefix+jti, "1", ttl).Err()
}

func (d *Denylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	n, err := d.rdb.Exists(ctx, KeyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (d *Denylist) Ping(ctx context.Context) error {
	return d.rdb.Ping(ctx).Err()
}

func (d *Denylist) Close() error { return d.rdb.Close() }
