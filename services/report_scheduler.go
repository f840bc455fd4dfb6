package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// StartReportScheduler snapshots the previous day's sales on the cron schedule.
// Stop the returned cron on shutdown.
func StartReportScheduler(schedule string, reports *ReportService, logger *slog.Logger) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		day := reports.Now().AddDate(0, 0, -1)
		if _, err := reports.SnapshotDaily(ctx, day); err != nil {
			logger.Error("daily sales snapshot failed", "day", day.Format("2006-01-02"), "error", err)
		}
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	logger.Info("report scheduler started", "schedule", schedule)
	return c, nil
}
