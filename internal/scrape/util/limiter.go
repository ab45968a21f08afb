package util

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// KeyLimiter rate-limits independently per key (client address, mailbox, host).
// Limiters idle longer than idleTTL are evicted on access.
type KeyLimiter struct {
	mu      sync.Mutex
	m       map[string]*keyEntry
	r       rate.Limit
	b       int
	idleTTL time.Duration
	now     func() time.Time
}

type keyEntry struct {
	lim  *rate.Limiter
	seen time.Time
}

// NewKeyLimiter allows perMinute events per key with the given burst. perMinute <= 0 disables limiting.
func NewKeyLimiter(perMinute float64, burst int) *KeyLimiter {
	r := rate.Inf
	if perMinute > 0 {
		r = rate.Limit(perMinute / 60)
	}
	if burst <= 0 {
		burst = 1
	}
	return &KeyLimiter{
		m:       make(map[string]*keyEntry),
		r:       r,
		b:       burst,
		idleTTL: 10 * time.Minute,
		now:     time.Now,
	}
}

func (kl *KeyLimiter) limiterFor(key string) *rate.Limiter {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	now := kl.now()
	for k, e := range kl.m {
		if now.Sub(e.seen) > kl.idleTTL {
			delete(kl.m, k)
		}
	}

	if key == "" {
		key = "_"
	}
	e, ok := kl.m[key]
	if !ok {
		e = &keyEntry{lim: rate.NewLimiter(kl.r, kl.b)}
		kl.m[key] = e
	}
	e.seen = now
	return e.lim
}

// Allow reports whether an event for key may happen now.
func (kl *KeyLimiter) Allow(key string) bool {
	return kl.limiterFor(key).Allow()
}

// Wait blocks until an event for key is permitted or ctx is done.
func (kl *KeyLimiter) Wait(ctx context.Context, key string) error {
	return kl.limiterFor(key).Wait(ctx)
}
