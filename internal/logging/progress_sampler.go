package logging

import "sync"

// ProgressSampler suppresses repetitive progress logs, emitting only when the
// completed fraction crosses a percentage bucket. It is safe for concurrent use.
type ProgressSampler struct {
	mu         sync.Mutex
	bucketSize float64
	total      int
	done       int
	lastBucket int
}

// NewProgressSampler tracks total units of work, emitting every bucketSize
// percent (default 10).
func NewProgressSampler(total int, bucketSize float64) *ProgressSampler {
	if bucketSize <= 0 {
		bucketSize = 10
	}
	return &ProgressSampler{bucketSize: bucketSize, total: total, lastBucket: -1}
}

// Advance records one finished unit and reports the running count, the
// percentage complete, and whether the caller should log it.
func (s *ProgressSampler) Advance() (done int, percent float64, emit bool) {
	if s == nil {
		return 0, 0, true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.done++
	if s.total <= 0 {
		return s.done, 100, true
	}
	percent = float64(s.done) * 100 / float64(s.total)
	bucket := int(percent / s.bucketSize)
	if s.done >= s.total {
		percent = 100
		bucket = int(100 / s.bucketSize)
	}
	if bucket > s.lastBucket {
		s.lastBucket = bucket
		emit = true
	}
	return s.done, percent, emit
}
