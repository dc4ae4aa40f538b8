package channel

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// KindLimiter applies a token bucket per notification kind. A misbehaving
// remote flooding one kind cannot starve the others; buckets idle past the
// TTL are swept out so pass-through kinds invented by the remote cannot grow
// the map without bound.
type KindLimiter struct {
	limit   rate.Limit
	burst   int
	idleTTL time.Duration

	mu        sync.Mutex
	byKind    map[string]*kindBucket
	lastSweep time.Time
}

type kindBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewKindLimiter creates a per-kind limiter; returns nil if args are invalid.
// A nil limiter allows everything.
func NewKindLimiter(rps float64, burst int, idleTTL time.Duration) *KindLimiter {
	if rps <= 0 || burst <= 0 {
		return nil
	}
	if idleTTL <= 0 {
		idleTTL = 10 * time.Minute
	}
	return &KindLimiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		idleTTL: idleTTL,
		byKind:  make(map[string]*kindBucket),
	}
}

// Allow reports whether one token can be consumed for the kind at now.
func (l *KindLimiter) Allow(kind string, now time.Time) bool {
	if l == nil {
		return true
	}
	kind = strings.TrimSpace(kind)
	if kind == "" {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.byKind[kind]
	if !ok {
		b = &kindBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.byKind[kind] = b
	}
	b.lastSeen = now
	allowed := b.limiter.AllowN(now, 1)

	l.sweepLocked(now)
	return allowed
}

// sweepLocked drops idle buckets, at most once per TTL window.
func (l *KindLimiter) sweepLocked(now time.Time) {
	if now.Sub(l.lastSweep) < l.idleTTL {
		return
	}
	l.lastSweep = now
	cutoff := now.Add(-l.idleTTL)
	for kind, b := range l.byKind {
		if b.lastSeen.Before(cutoff) {
			delete(l.byKind, kind)
		}
	}
}
