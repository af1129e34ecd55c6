package scoring

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/yieldchaser/Daily-Manipulation-Tracker/internal/contracts"
	"github.com/yieldchaser/Daily-Manipulation-Tracker/internal/rolling"
	"github.com/yieldchaser/Daily-Manipulation-Tracker/pkg/logger"
)

// historyFetch bounds how many bars a worker loads per security. Deep
// enough for the 252-day range plus slack for new listings mid-window.
const historyFetch = 300

// dealFeedLookbackDays is the store-wide window used to decide whether
// the bulk-deal feed is alive at all. Zero rows in this window means
// the feed is dark and the reversal signal is structurally off.
const dealFeedLookbackDays = 45

// eventLookbackDays is the calendar window of announcements loaded per
// security; the noise filter narrows it to trading days.
const eventLookbackDays = 15

// EngineConfig sizes a scoring run.
type EngineConfig struct {
	Workers        int
	BenchmarkIndex string
}

// Engine runs the full per-security pipeline for one evaluation date:
// rolling stats, noise filter, seven signals, composite, phase, then a
// keyed upsert into the score store. Securities are independent, so
// workers evaluate them in parallel; all evaluator inputs are made of
// read-only snapshots.
type Engine struct {
	cfg    EngineConfig
	policy *Policy
	logger *logger.Logger

	bars       contracts.BarRepository
	benchmarks contracts.BenchmarkRepository
	events     contracts.EventRepository
	deals      contracts.DealRepository
	scores     contracts.ScoreRepository
}

// NewEngine wires an engine over its stores.
func NewEngine(
	cfg EngineConfig,
	policy *Policy,
	log *logger.Logger,
	bars contracts.BarRepository,
	benchmarks contracts.BenchmarkRepository,
	events contracts.EventRepository,
	deals contracts.DealRepository,
	scores contracts.ScoreRepository,
) *Engine {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Engine{
		cfg:        cfg,
		policy:     policy,
		logger:     log,
		bars:       bars,
		benchmarks: benchmarks,
		events:     events,
		deals:      deals,
		scores:     scores,
	}
}

// RunSummary reports what a scoring run did.
type RunSummary struct {
	Date            time.Time
	Universe        int
	Scored          int
	Skipped         map[ExclusionReason]int
	Errors          int
	DealFeedMissing bool
}

// symbolResult is one worker's outcome for one security.
type symbolResult struct {
	symbol string
	record *contracts.ScoreRecord
	skip   ExclusionReason
	err    error
}

// ScoreDate evaluates every security with a bar on the given date.
// Per-security failures are logged and counted, never fatal; one
// malformed security must not abort the universe.
func (e *Engine) ScoreDate(ctx context.Context, date time.Time) (*RunSummary, error) {
	symbols, err := e.bars.SymbolsOn(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("load universe for %s: %w", date.Format("2006-01-02"), err)
	}
	if len(symbols) == 0 {
		return nil, fmt.Errorf("no bars ingested for %s", date.Format("2006-01-02"))
	}

	benchmark, err := e.benchmarks.History(ctx, e.cfg.BenchmarkIndex, date, 120)
	if err != nil {
		// Relative-strength signals degrade to 0 without it.
		e.logger.WithError(err).Warn("Benchmark history unavailable, price detachment disabled")
		benchmark = nil
	}

	dealFeedMissing := e.dealFeedDark(ctx, date)
	if dealFeedMissing {
		e.logger.Warn("Bulk deal feed dark, reversal signal is off and scores are understated")
	}

	e.logger.WithFields(map[string]interface{}{
		"date":     date.Format("2006-01-02"),
		"universe": len(symbols),
		"workers":  e.cfg.Workers,
	}).Info("Scoring run started")

	symbolCh := make(chan string, len(symbols))
	resultCh := make(chan symbolResult, len(symbols))

	var wg sync.WaitGroup
	for i := 0; i < e.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.worker(ctx, date, benchmark, dealFeedMissing, symbolCh, resultCh)
		}()
	}

	for _, symbol := range symbols {
		symbolCh <- symbol
	}
	close(symbolCh)

	wg.Wait()
	close(resultCh)

	summary := &RunSummary{
		Date:            date,
		Universe:        len(symbols),
		Skipped:         make(map[ExclusionReason]int),
		DealFeedMissing: dealFeedMissing,
	}
	for res := range resultCh {
		switch {
		case res.err != nil:
			summary.Errors++
			e.logger.WithError(res.err).WithField("symbol", res.symbol).Error("Scoring failed for security")
		case res.skip != ReasonNone:
			summary.Skipped[res.skip]++
		default:
			summary.Scored++
		}
	}

	e.logger.WithFields(map[string]interface{}{
		"date":    date.Format("2006-01-02"),
		"scored":  summary.Scored,
		"skipped": summary.Universe - summary.Scored - summary.Errors,
		"errors":  summary.Errors,
	}).Info("Scoring run finished")

	return summary, nil
}

// worker drains the symbol channel, running the sequential pipeline
// per security.
func (e *Engine) worker(
	ctx context.Context,
	date time.Time,
	benchmark []*contracts.BenchmarkBar,
	dealFeedMissing bool,
	symbolCh <-chan string,
	resultCh chan<- symbolResult,
) {
	for symbol := range symbolCh {
		record, skip, err := e.scoreSymbol(ctx, symbol, date, benchmark, dealFeedMissing)
		resultCh <- symbolResult{symbol: symbol, record: record, skip: skip, err: err}
	}
}

func (e *Engine) scoreSymbol(
	ctx context.Context,
	symbol string,
	date time.Time,
	benchmark []*contracts.BenchmarkBar,
	dealFeedMissing bool,
) (*contracts.ScoreRecord, ExclusionReason, error) {
	history, err := e.bars.History(ctx, symbol, date, historyFetch)
	if err != nil {
		return nil, ReasonNone, fmt.Errorf("load history: %w", err)
	}
	if len(history) == 0 {
		return nil, ReasonInsufficientHistory, nil
	}

	events, err := e.events.Recent(ctx, symbol, date.AddDate(0, 0, -eventLookbackDays), date)
	if err != nil {
		return nil, ReasonNone, fmt.Errorf("load events: %w", err)
	}

	filter := NewNoiseFilter(e.policy)
	eligible, reason := filter.Check(NoiseInput{
		Symbol:  symbol,
		History: history,
		Events:  events,
	})
	if !eligible {
		// Ineligible means no ScoreRecord at all, not a zero score.
		return nil, reason, nil
	}

	stats := rolling.Compute(history)

	evaluator := NewEvaluator(e.policy)
	signals := evaluator.Evaluate(SignalInput{
		History:           history,
		Stats:             stats,
		Benchmark:         benchmark,
		DealFeedAvailable: !dealFeedMissing,
	})

	total, triggered := Compose(signals)
	record := &contracts.ScoreRecord{
		Symbol:           symbol,
		EvalDate:         date,
		TotalScore:       total,
		Signals:          signals,
		Phase:            ClassifyPhase(total, signals[6] > 0),
		SignalsTriggered: triggered,
		DealFeedMissing:  dealFeedMissing,
	}

	if err := e.scores.Save(ctx, record); err != nil {
		return nil, ReasonNone, fmt.Errorf("save score: %w", err)
	}
	return record, ReasonNone, nil
}

// dealFeedDark checks whether any deal rows landed in the recent
// window. Errors count as dark; better to understate than to claim
// reversal evidence from a feed we cannot read.
func (e *Engine) dealFeedDark(ctx context.Context, date time.Time) bool {
	count, err := e.deals.CountSince(ctx, date.AddDate(0, 0, -dealFeedLookbackDays))
	if err != nil {
		e.logger.WithError(err).Warn("Deal feed liveness check failed")
		return true
	}
	return count == 0
}
