package throttle

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// BucketStore holds named groups of token buckets, one bucket per caller key.
// Groups are set up before serving; buckets are created on first use
type BucketStore[K comparable] struct {
	mu     sync.RWMutex
	groups map[string]*BucketGroup[K]
	Logger *zap.SugaredLogger
}

func NewBucketStore[K comparable](logger *zap.SugaredLogger) *BucketStore[K] {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &BucketStore[K]{
		groups: make(map[string]*BucketGroup[K]),
		Logger: logger,
	}
}

func (s *BucketStore[K]) GetBucketGroup(id string) (*BucketGroup[K], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groups[id]
	return g, ok
}

func (s *BucketStore[K]) GetBucket(groupID string, userID K) (*Bucket[K], bool) {
	g, ok := s.GetBucketGroup(groupID)
	if !ok {
		return nil, false
	}
	return g.GetBucket(userID)
}

func (s *BucketStore[K]) SetBucketGroup(id string, conf *BucketConf) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups[id] = &BucketGroup[K]{
		conf:    conf,
		buckets: &sync.Map{},
	}
}

func (s *BucketStore[K]) Allow(groupID string, userID K, now time.Time) bool {
	ok, _ := s.Take(groupID, userID, now)
	return ok
}

// Take is Allow with the wait until the next token when blocked
func (s *BucketStore[K]) Take(groupID string, userID K, now time.Time) (bool, time.Duration) {
	g, ok := s.GetBucketGroup(groupID)
	if !ok {
		return false, 0 // Invalid groupID always Blocked
	}
	return g.getOrCreateBucket(userID, now).Take(now)
}

// Cleanup removes buckets untouched for longer than olderThan
func (s *BucketStore[K]) Cleanup(olderThan time.Duration, now time.Time) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	removed := 0
	for _, g := range s.groups {
		g.buckets.Range(func(key, value any) bool {
			b := value.(*Bucket[K])
			// lock per bucket while checking/removing
			b.mu.Lock()
			last := b.lastCheck
			b.mu.Unlock()
			if now.Sub(last) > olderThan {
				g.buckets.Delete(key)
				removed++
			}
			return true // continue iteration
		})
	}
	return removed
}

// RunCleanup cleans up every cycle until ctx is done
func (s *BucketStore[K]) RunCleanup(ctx context.Context, cycle time.Duration, olderThan time.Duration) {
	s.Logger.Debugw("throttle cleanup started", "cycle", cycle, "older_than", olderThan)
	ticker := time.NewTicker(cycle)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.Logger.Debug("throttle cleanup stopped")
			return
		case now := <-ticker.C:
			if n := s.Cleanup(olderThan, now); n > 0 {
				s.Logger.Debugw("throttle buckets removed", "count", n)
			}
		}
	}
}
