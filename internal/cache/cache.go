package cache

import (
	"context"
	"time"

	"stockflow/backend/internal/report"
)

type ReportCache interface {
	Get(ctx context.Context, key string) (*report.PeriodReport, bool, error)
	Set(ctx context.Context, key string, value *report.PeriodReport, ttl time.Duration) error
}

type NoopReportCache struct{}

func (NoopReportCache) Get(_ context.Context, _ string) (*report.PeriodReport, bool, error) {
	return nil, false, nil
}

func (NoopReportCache) Set(_ context.Context, _ string, _ *report.PeriodReport, _ time.Duration) error {
	return nil
}
