package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yieldchaser/Daily-Manipulation-Tracker/internal/scheduler"
	"github.com/yieldchaser/Daily-Manipulation-Tracker/internal/scheduler/jobs"
)

var scheduleExpr string

// schedulerCmd runs the nightly pipeline on a cron schedule.
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the nightly ingest+score pipeline on a schedule",
	Long: `Starts a long-running process that ingests and scores the most
recent trading day on a cron schedule (default weekday evenings, after
the exchange publishes its EOD files).

Example:
  go run ./cmd/tracker scheduler
  go run ./cmd/tracker scheduler --schedule "0 0 20 * * MON-FRI"`,
	RunE: runScheduler,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.Flags().StringVar(&scheduleExpr, "schedule", "", "cron expression with seconds")
}

func runScheduler(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	policy, err := app.policy()
	if err != nil {
		return err
	}

	sched := scheduler.New(app.log)
	job := jobs.NewDailyPipelineJob(app.ingestService(), app.engine(policy), app.log, scheduleExpr)
	if err := sched.AddJob(job); err != nil {
		return err
	}

	sched.Start()
	fmt.Printf("Scheduler running, %s on %q. Ctrl-C to stop.\n", job.Name(), job.Schedule())

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	sched.Stop()
	return nil
}
