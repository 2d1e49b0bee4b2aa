package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// TokenCleanup schedules a job on c that periodically deletes bearer tokens
// that weren't used within the retention window
func TokenCleanup(c *cron.Cron, every time.Duration, tokens *TokenService) error {
	_, err := c.AddFunc("@every "+every.String(), func() {
		n, err := tokens.Sweep(context.Background())
		if err != nil {
			zap.L().Error("Failed to clean up expired tokens", zap.Error(err))
			return
		}

		if n > 0 {
			zap.L().Debug("Cleaned up expired tokens", zap.Int64("count", n))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule token cleanup, %w", err)
	}

	zap.L().Debug("Token cleanup attached", zap.Duration("tick_every", every))
	return nil
}
