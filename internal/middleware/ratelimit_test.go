package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(perDay, maxConcurrent int) (*RateLimiter, *time.Time) {
	r := NewRateLimiter(perDay, maxConcurrent)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }
	return r, &now
}

func TestRateLimiter_DailyQuota(t *testing.T) {
	r, _ := newTestLimiter(3, 2)
	const user = uint(1)

	for i := 0; i < 3; i++ {
		assert.True(t, r.TryReserveSubmission(user), "submission %d should be allowed", i)
	}
	assert.False(t, r.TryReserveSubmission(user), "fourth submission should be rejected")

	remaining, resetAt := r.Info(user)
	assert.Equal(t, 0, remaining)
	assert.False(t, resetAt.IsZero())
}

// Reservation must be check-and-consume in one step: with one unit of
// quota left, back-to-back reservations cannot both succeed.
func TestRateLimiter_ReserveAtQuotaBoundary(t *testing.T) {
	r, _ := newTestLimiter(1, 2)
	const user = uint(1)

	first := r.TryReserveSubmission(user)
	second := r.TryReserveSubmission(user)
	assert.True(t, first)
	assert.False(t, second, "only one reservation may win the last unit")

	// A failed submission gives the unit back.
	r.ReleaseSubmission(user)
	assert.True(t, r.TryReserveSubmission(user))
}

func TestRateLimiter_ReleaseSubmissionWithoutReserve(t *testing.T) {
	r, _ := newTestLimiter(1, 1)

	r.ReleaseSubmission(42)
	assert.True(t, r.TryReserveSubmission(42))
	assert.False(t, r.TryReserveSubmission(42))
}

func TestRateLimiter_WindowSlides(t *testing.T) {
	r, now := newTestLimiter(2, 2)
	const user = uint(1)

	assert.True(t, r.TryReserveSubmission(user))
	*now = now.Add(1 * time.Hour)
	assert.True(t, r.TryReserveSubmission(user))
	assert.False(t, r.TryReserveSubmission(user))

	// First submission ages out after 24h; the second is still inside.
	*now = now.Add(23*time.Hour + time.Minute)
	assert.True(t, r.TryReserveSubmission(user))

	remaining, _ := r.Info(user)
	assert.Equal(t, 0, remaining)
}

func TestRateLimiter_ConcurrentJobCap(t *testing.T) {
	r, _ := newTestLimiter(10, 2)
	const user = uint(7)

	assert.True(t, r.TryAcquireJob(user))
	assert.True(t, r.TryAcquireJob(user))
	assert.False(t, r.TryAcquireJob(user), "third concurrent job should be rejected")

	r.ReleaseJob(user)
	assert.True(t, r.TryAcquireJob(user))
}

func TestRateLimiter_UsersIsolated(t *testing.T) {
	r, _ := newTestLimiter(1, 1)

	assert.True(t, r.TryReserveSubmission(1))
	assert.False(t, r.TryReserveSubmission(1))
	assert.True(t, r.TryReserveSubmission(2), "quota is tracked per user")

	assert.True(t, r.TryAcquireJob(1))
	assert.True(t, r.TryAcquireJob(2))
}

func TestRateLimiter_ReleaseJobWithoutAcquire(t *testing.T) {
	r, _ := newTestLimiter(1, 1)

	r.ReleaseJob(99)
	assert.True(t, r.TryAcquireJob(99))
	assert.False(t, r.TryAcquireJob(99))
}
