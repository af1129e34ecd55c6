package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/yieldchaser/Daily-Manipulation-Tracker/internal/external/nse"
	"github.com/yieldchaser/Daily-Manipulation-Tracker/internal/ingest"
	"github.com/yieldchaser/Daily-Manipulation-Tracker/internal/scoring"
	"github.com/yieldchaser/Daily-Manipulation-Tracker/internal/store"
	"github.com/yieldchaser/Daily-Manipulation-Tracker/pkg/config"
	"github.com/yieldchaser/Daily-Manipulation-Tracker/pkg/database"
	"github.com/yieldchaser/Daily-Manipulation-Tracker/pkg/httputil"
	"github.com/yieldchaser/Daily-Manipulation-Tracker/pkg/logger"
	"github.com/yieldchaser/Daily-Manipulation-Tracker/pkg/redis"
)

// app holds the shared wiring every command needs: config, logger,
// database pool, repositories and the exchange client.
type app struct {
	cfg *config.Config
	log *logger.Logger
	db  *database.DB
	rdb *redis.Client

	bars       *store.BarRepository
	benchmarks *store.BenchmarkRepository
	events     *store.EventRepository
	deals      *store.DealRepository
	stats      *store.RollingStatsRepository
	scores     *store.ScoreRepository

	nseClient *nse.Client
}

// newApp loads config and connects everything. Persistence being
// unreachable here is fatal; there is no per-row fallback.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	rdb, err := redis.New(cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	httpClient := httputil.New(log, cfg.NSE.RequestTimeout)
	if rdb.Enabled() {
		// Shared sliding-window limit across processes; the local
		// politeness limiter in the NSE client still applies.
		limiter := redis.NewRateLimiter(rdb, "tracker")
		httpClient = httpClient.WithRateLimiter(limiter, redis.RateLimitConfig{
			Key:    "nse",
			Limit:  30,
			Window: time.Minute,
		})
	}

	return &app{
		cfg:        cfg,
		log:        log,
		db:         db,
		rdb:        rdb,
		bars:       store.NewBarRepository(db.Pool),
		benchmarks: store.NewBenchmarkRepository(db.Pool),
		events:     store.NewEventRepository(db.Pool),
		deals:      store.NewDealRepository(db.Pool),
		stats:      store.NewRollingStatsRepository(db.Pool),
		scores:     store.NewScoreRepository(db.Pool),
		nseClient:  nse.NewClient(httpClient, cfg.NSE, log),
	}, nil
}

func (a *app) Close() {
	a.rdb.Close()
	a.db.Close()
}

// policy loads the YAML threshold policy, falling back to compiled
// defaults when the configured file does not exist.
func (a *app) policy() (*scoring.Policy, error) {
	path := a.cfg.Scoring.PolicyPath
	if path == "" {
		return scoring.DefaultPolicy(), nil
	}

	policy, err := scoring.LoadPolicy(path)
	if os.IsNotExist(err) {
		a.log.WithField("path", path).Warn("Policy file not found, using defaults")
		return scoring.DefaultPolicy(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load policy: %w", err)
	}
	return policy, nil
}

func (a *app) ingestService() *ingest.Service {
	return ingest.NewService(a.nseClient, a.log, a.bars, a.benchmarks, a.events, a.deals, a.stats)
}

func (a *app) engine(policy *scoring.Policy) *scoring.Engine {
	return scoring.NewEngine(
		scoring.EngineConfig{
			Workers:        a.cfg.Scoring.Workers,
			BenchmarkIndex: a.cfg.NSE.BenchmarkIndex,
		},
		policy, a.log,
		a.bars, a.benchmarks, a.events, a.deals, a.scores,
	)
}

// resolveRunDate parses a --date flag, defaulting to the most recent
// trading day.
func resolveRunDate(flag string) (time.Time, error) {
	if flag == "" {
		return ingest.MostRecentTradingDay(time.Now()), nil
	}
	date, err := time.Parse("2006-01-02", flag)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", flag)
	}
	return date, nil
}
