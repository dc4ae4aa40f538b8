package channel

import (
	"testing"
	"time"
)

func TestKindLimiterBurstThenDeny(t *testing.T) {
	limiter := NewKindLimiter(1, 2, time.Minute)
	now := time.Now()

	if !limiter.Allow("accountsChanged", now) {
		t.Fatal("first token denied")
	}
	if !limiter.Allow("accountsChanged", now) {
		t.Fatal("second token denied")
	}
	if limiter.Allow("accountsChanged", now) {
		t.Fatal("burst exceeded but allowed")
	}
	// Independent kinds do not share a bucket.
	if !limiter.Allow("chainChanged", now) {
		t.Fatal("separate kind throttled")
	}
}

func TestKindLimiterRefill(t *testing.T) {
	limiter := NewKindLimiter(10, 1, time.Minute)
	now := time.Now()

	if !limiter.Allow("k", now) {
		t.Fatal("first token denied")
	}
	if limiter.Allow("k", now) {
		t.Fatal("bucket should be empty")
	}
	if !limiter.Allow("k", now.Add(200*time.Millisecond)) {
		t.Fatal("token not refilled")
	}
}

func TestKindLimiterSweepsIdleKinds(t *testing.T) {
	limiter := NewKindLimiter(0.001, 2, time.Minute)
	now := time.Now()

	limiter.Allow("stale", now)
	limiter.Allow("stale", now)
	if limiter.Allow("stale", now) {
		t.Fatal("burst of two should be spent")
	}

	// Activity on another kind past the TTL sweeps the idle bucket; the
	// swept kind starts over with a full burst instead of the near-empty
	// bucket it left behind.
	later := now.Add(2 * time.Minute)
	limiter.Allow("fresh", later)
	if !limiter.Allow("stale", later) || !limiter.Allow("stale", later) {
		t.Fatal("swept kind did not regain its burst")
	}
}

func TestKindLimiterNilAndBlankAllow(t *testing.T) {
	var limiter *KindLimiter
	if !limiter.Allow("k", time.Now()) {
		t.Fatal("nil limiter must allow")
	}
	if l := NewKindLimiter(0, 0, 0); l != nil {
		t.Fatal("invalid args must yield nil limiter")
	}
	if !NewKindLimiter(1, 1, 0).Allow("  ", time.Now()) {
		t.Fatal("blank kind must bypass the limiter")
	}
}
