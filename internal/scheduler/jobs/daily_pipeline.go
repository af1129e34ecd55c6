// Package jobs holds the scheduled pipeline stages. Each job is thin:
// it resolves the run date and delegates to a service.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/yieldchaser/Daily-Manipulation-Tracker/internal/ingest"
	"github.com/yieldchaser/Daily-Manipulation-Tracker/internal/scoring"
	"github.com/yieldchaser/Daily-Manipulation-Tracker/pkg/logger"
)

// DailyPipelineJob runs ingest then scoring for the most recent
// trading day. Scheduled after the exchange publishes EOD files,
// which lands well after market close in practice.
type DailyPipelineJob struct {
	ingest *ingest.Service
	engine *scoring.Engine
	logger *logger.Logger

	schedule string
}

// NewDailyPipelineJob creates the nightly job. schedule is a cron
// expression with seconds; empty selects the default 19:30 IST run.
func NewDailyPipelineJob(ingestSvc *ingest.Service, engine *scoring.Engine, log *logger.Logger, schedule string) *DailyPipelineJob {
	if schedule == "" {
		schedule = "0 30 19 * * MON-FRI"
	}
	return &DailyPipelineJob{
		ingest:   ingestSvc,
		engine:   engine,
		logger:   log,
		schedule: schedule,
	}
}

func (j *DailyPipelineJob) Name() string     { return "daily_pipeline" }
func (j *DailyPipelineJob) Schedule() string { return j.schedule }

// Run ingests the latest trading day and scores it. The two stages
// communicate only through the store, so a scoring failure after a
// successful ingest leaves the data usable for a manual re-run.
func (j *DailyPipelineJob) Run(ctx context.Context) error {
	summary, err := j.ingest.IngestLatest(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("ingest stage: %w", err)
	}

	run, err := j.engine.ScoreDate(ctx, summary.Date)
	if err != nil {
		return fmt.Errorf("scoring stage: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"date":   summary.Date.Format("2006-01-02"),
		"bars":   summary.Bars,
		"scored": run.Scored,
	}).Info("Daily pipeline finished")

	return nil
}
