package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// AccountCleanup schedules a job on c that deletes accounts which weren't
// activated within window after registering. A window of 0 disables it.
func AccountCleanup(c *cron.Cron, every, window time.Duration, users *UserService) error {
	if window <= 0 {
		zap.L().Debug("Account cleanup disabled")
		return nil
	}

	_, err := c.AddFunc("@every "+every.String(), func() {
		n, err := users.PurgeInactive(context.Background(), time.Now().Add(-window))
		if err != nil {
			zap.L().Error("Failed to clean up inactive accounts", zap.Error(err))
			return
		}

		if n > 0 {
			zap.L().Debug("Account cleanup finished", zap.Int64("deleted", n))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule account cleanup, %w", err)
	}

	zap.L().Debug("Account cleanup attached", zap.Duration("tick_every", every))
	return nil
}
