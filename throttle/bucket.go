package throttle

import (
	"sync"
	"time"
)

type Bucket[K comparable] struct {
	mu          sync.Mutex // protects access to bucket state
	tokens      int
	lastCheck   time.Time
	parentGroup *BucketGroup[K] // back-reference to its parentGroup group
}

// refill tokens
// Since this modifies the bucket's state, this should be wrapped by mutex lock/unlock
func (b *Bucket[K]) refill(now time.Time) {
	conf := b.parentGroup.conf
	elapsed := now.Sub(b.lastCheck)
	if elapsed >= conf.Period {
		times := int(elapsed / conf.Period)
		b.tokens = min(b.tokens+times*conf.Increment, conf.Burst)
		b.lastCheck = b.lastCheck.Add(time.Duration(times) * conf.Period)
	}
}

func (b *Bucket[K]) Allow(now time.Time) bool {
	ok, _ := b.Take(now)
	return ok
}

// Take consumes a token. When none is left, wait is the time until the next refill
func (b *Bucket[K]) Take(now time.Time) (ok bool, wait time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refill(now)
	if b.tokens <= 0 {
		return false, b.lastCheck.Add(b.parentGroup.conf.Period).Sub(now)
	}
	b.tokens--
	return true, 0
}
