package guard

import (
	"context"
	"time"

	logger "github.com/sirupsen/logrus"

	"terminalfleet/src/repository"
)

// RateLimiter applies a sliding window per (user, action) over attempt
// rows in the store. When the limit store cannot be queried the action
// is allowed: availability over strictness.
type RateLimiter struct {
	records repository.RateLimitRepository
	max     int
	window  time.Duration
}

func NewRateLimiter(records repository.RateLimitRepository, config Config) *RateLimiter {
	return &RateLimiter{
		records: records,
		max:     config.RateLimitMax,
		window:  config.RateLimitWindow,
	}
}

// Allow checks the window and, when the action is admitted, records the
// attempt so it counts against subsequent calls.
func (l *RateLimiter) Allow(ctx context.Context, userID uint, action string) bool {
	since := time.Now().Add(-l.window)

	count, err := l.records.CountSince(ctx, userID, action, since)
	if err != nil {
		logger.WithError(err).WithFields(map[string]interface{}{
			"user_id": userID,
			"action":  action,
		}).Warn("Rate limit store unavailable, failing open")
		return true
	}

	if count >= int64(l.max) {
		logger.WithFields(map[string]interface{}{
			"user_id": userID,
			"action":  action,
			"count":   count,
		}).Warn("Rate limit exceeded")
		return false
	}

	if err := l.records.Record(ctx, userID, action); err != nil {
		logger.WithError(err).WithFields(map[string]interface{}{
			"user_id": userID,
			"action":  action,
		}).Warn("Failed to record rate limit attempt")
	}
	return true
}
