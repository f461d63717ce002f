package middleware

import (
	"sync"
	"time"
)

// RateLimiter enforces the per-user transcription quota: a sliding
// 24-hour window on submissions plus a cap on jobs running at once.
// State is in-process; a multi-node deployment would need a shared
// store behind the same interface.
type RateLimiter struct {
	mu sync.Mutex

	perDay        int
	maxConcurrent int
	window        time.Duration

	submissions map[uint][]time.Time
	running     map[uint]int

	now func() time.Time
}

// NewRateLimiter creates a limiter allowing perDay submissions per
// sliding 24-hour window and maxConcurrent jobs in flight per user.
func NewRateLimiter(perDay, maxConcurrent int) *RateLimiter {
	return &RateLimiter{
		perDay:        perDay,
		maxConcurrent: maxConcurrent,
		window:        24 * time.Hour,
		submissions:   make(map[uint][]time.Time),
		running:       make(map[uint]int),
		now:           time.Now,
	}
}

// TryReserveSubmission consumes one unit of the user's daily quota. The
// check and the reservation happen under one lock so two requests at the
// quota boundary cannot both pass. Returns false without side effects
// when the window is full.
func (r *RateLimiter) TryReserveSubmission(userID uint) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	window := r.prune(userID)
	if len(window) >= r.perDay {
		return false
	}
	r.submissions[userID] = append(window, r.now())
	return true
}

// ReleaseSubmission returns the most recent reservation, for submissions
// that fail before a job is actually created.
func (r *RateLimiter) ReleaseSubmission(userID uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	window := r.prune(userID)
	if len(window) == 0 {
		return
	}
	window = window[:len(window)-1]
	if len(window) == 0 {
		delete(r.submissions, userID)
		return
	}
	r.submissions[userID] = window
}

// TryAcquireJob reserves a concurrent job slot for the user. It returns
// false without side effects when the user is already at the cap.
func (r *RateLimiter) TryAcquireJob(userID uint) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running[userID] >= r.maxConcurrent {
		return false
	}
	r.running[userID]++
	return true
}

// ReleaseJob returns a previously acquired job slot.
func (r *RateLimiter) ReleaseJob(userID uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running[userID] > 0 {
		r.running[userID]--
	}
	if r.running[userID] == 0 {
		delete(r.running, userID)
	}
}

// Info returns the user's remaining daily quota and the time the oldest
// submission in the window expires (zero time when the window is empty).
func (r *RateLimiter) Info(userID uint) (remaining int, resetAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	window := r.prune(userID)
	remaining = r.perDay - len(window)
	if remaining < 0 {
		remaining = 0
	}
	if len(window) > 0 {
		resetAt = window[0].Add(r.window)
	}
	return remaining, resetAt
}

// prune drops submissions that have aged out of the window. Caller must
// hold the mutex.
func (r *RateLimiter) prune(userID uint) []time.Time {
	cutoff := r.now().Add(-r.window)
	kept := r.submissions[userID][:0]
	for _, t := range r.submissions[userID] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		delete(r.submissions, userID)
		return nil
	}
	r.submissions[userID] = kept
	return kept
}
