package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yieldchaser/Daily-Manipulation-Tracker/internal/api"
	"github.com/yieldchaser/Daily-Manipulation-Tracker/internal/api/handlers"
)

var apiPort string

// apiCmd starts the read-only HTTP API.
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the read-only query API",
	Long: `Serves the score, price and rolling-stats stores over HTTP for
the dashboard. Strictly read-only; ingestion and scoring run through
the CLI or the scheduler.

Endpoints:
  GET /health
  GET /api/scores/top?date=&limit=
  GET /api/scores/{symbol}?from=&to=
  GET /api/prices/{symbol}?date=&limit=
  GET /api/stats/{symbol}?date=

Example:
  go run ./cmd/tracker api --port 8085`,
	RunE: runAPI,
}

func init() {
	rootCmd.AddCommand(apiCmd)
	apiCmd.Flags().StringVar(&apiPort, "port", "", "listen port, overrides API_PORT")
}

func runAPI(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if apiPort != "" {
		app.cfg.APIPort = apiPort
	}

	scoreHandler := handlers.NewScoreHandler(app.scores, app.bars, app.log)
	priceHandler := handlers.NewPriceHandler(app.bars, app.stats, app.log)
	router := api.NewRouter(scoreHandler, priceHandler, app.log)

	server := api.New(app.cfg, app.log, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
