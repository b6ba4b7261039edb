package bot

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Quota checks run mid-morning and mid-afternoon, branch local time.
var quotaCheckSpecs = []string{"30 9 * * *", "0 15 * * *"}

// StartQuotaSchedule registers the twice-daily quota checks and starts
// the scheduler. The returned cron is stopped by the caller on shutdown.
func (b *Bot) StartQuotaSchedule(loc *time.Location) (*cron.Cron, error) {
	c := cron.New(cron.WithLocation(loc))
	for _, spec := range quotaCheckSpecs {
		if _, err := c.AddFunc(spec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if err := b.postQuotaReport(ctx); err != nil {
				b.logger.Warn("scheduled quota report failed", zap.Error(err))
			}
		}); err != nil {
			return nil, err
		}
	}
	c.Start()
	b.logger.Info("quota schedule started", zap.Strings("specs", quotaCheckSpecs), zap.String("tz", loc.String()))
	return c, nil
}
