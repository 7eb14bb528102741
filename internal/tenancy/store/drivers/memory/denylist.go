// Package memory provides a process-local session denylist for single
// instance deployments and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/store"
)

type Denylist struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

var _ store.Denylist = (*Denylist)(nil)

func NewDenylist() *Denylist {
	return &Denylist{entries: make(map[string]time.Time), now: time.Now}
}

// NewDenylistWithClock is NewDenylist with an injected clock.
func NewDenylistWithClock(now func() time.Time) *Denylist {
	d := NewDenylist()
	d.now = now
	return d
}

func (d *Denylist) Revoke(_ context.Context, jti string, until time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if jti == "" || !until.After(now) {
		return nil
	}
	d.entries[jti] = until
	d.prune(now)
	return nil
}

func (d *Denylist) IsRevoked(_ context.Context, jti string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	until, ok := d.entries[jti]
	if !ok {
		return false, nil
	}
	if !until.After(d.now()) {
		delete(d.entries, jti)
		return false, nil
	}
	return true, nil
}

// prune drops entries whose tokens have expired. Callers hold mu.
func (d *Denylist) prune(now time.Time) {
	for jti, until := range d.entries {
		if !until.After(now) {
			delete(d.entries, jti)
		}
	}
}

func (d *Denylist) Ping(context.Context) error { return nil }
func (d *Denylist) Close() error              { return nil }
