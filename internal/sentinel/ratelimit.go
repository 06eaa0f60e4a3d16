package sentinel

import (
	"context"
	"time"

	"github.com/sentinelauth/sentinel/internal/models"
)

// FlagRateLimitExceeded marks an attempt blocked by the sliding window
const FlagRateLimitExceeded = "rate_limit_exceeded"

// Rate limiter statuses
const (
	StatusBlocked      = "blocked"
	StatusWithinLimits = "within_limits"
)

// AttemptStore is the durable attempt log contract the rate limiter needs.
// CountAndRecordAttempt must count attempts for the attempt's (username, ip)
// pair with timestamp >= since and then insert the attempt, atomically per
// key, with finalize supplying the score and blocked flag for the new row.
type AttemptStore interface {
	CountAndRecordAttempt(ctx context.Context, attempt *models.LoginAttempt, since int64, finalize func(count int) (botScore int, blocked bool)) (int, error)
}

// RateLimiter applies a sliding-window attempt limit per (username, ip) pair
type RateLimiter struct {
	store       AttemptStore
	maxAttempts int
	window      time.Duration
}

// NewRateLimiter creates a new RateLimiter
func NewRateLimiter(store AttemptStore, maxAttempts int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		store:       store,
		maxAttempts: maxAttempts,
		window:      window,
	}
}

// CheckAndRecord counts recent attempts for the pair, decides the block, and
// records the current attempt in the same atomic store operation. The attempt
// is recorded after the decision, never before: the window therefore includes
// blocked attempts, and the current attempt is never part of its own count.
// finalize receives the limit decision and returns the final bot score and
// blocked flag to persist.
//
// Store failures fail closed: the error propagates and no verdict is issued.
func (rl *RateLimiter) CheckAndRecord(
	ctx context.Context,
	username, ipAddress, userAgent string,
	finalize func(limited bool) (botScore int, blocked bool),
) (bool, models.LayerDetail, error) {
	now := time.Now()
	attempt := &models.LoginAttempt{
		Username:  username,
		IPAddress: ipAddress,
		Timestamp: now.Unix(),
		UserAgent: userAgent,
	}

	var limited bool
	count, err := rl.store.CountAndRecordAttempt(ctx, attempt, now.Add(-rl.window).Unix(), func(count int) (int, bool) {
		limited = count >= rl.maxAttempts
		return finalize(limited)
	})

	detail := models.LayerDetail{
		Flags: []string{},
		Data: map[string]any{
			"attempts_count": count,
			"max_attempts":   rl.maxAttempts,
			"window_seconds": int(rl.window.Seconds()),
		},
	}

	if err != nil {
		return false, detail, err
	}

	if limited {
		detail.Score = rateLimitPenalty
		detail.Flags = append(detail.Flags, FlagRateLimitExceeded)
		detail.Status = StatusBlocked
	} else {
		detail.Status = StatusWithinLimits
	}

	return limited, detail, nil
}
