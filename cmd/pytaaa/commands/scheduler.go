package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/DonaldPG/pytaaa-web/internal/ingest"
	"github.com/DonaldPG/pytaaa-web/internal/scheduler"
	"github.com/DonaldPG/pytaaa-web/internal/scheduler/jobs"
	"github.com/DonaldPG/pytaaa-web/internal/store"
	"github.com/DonaldPG/pytaaa-web/pkg/config"
	"github.com/DonaldPG/pytaaa-web/pkg/database"
	"github.com/DonaldPG/pytaaa-web/pkg/logger"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the periodic ingest scheduler",
	Long: `Run the periodic ingest scheduler.

Re-ingests every registered model from its data directory on the cron
schedule in INGEST_SCHEDULE (seconds field included, default
"0 30 22 * * MON-FRI"). With INGEST_REMOTE_BASE_URL set the files are
mirrored from the remote host first.

Example:
  go run ./cmd/pytaaa scheduler
  go run ./cmd/pytaaa scheduler --run-now`,
	RunE: runScheduler,
}

var schedulerRunNow bool

func init() {
	rootCmd.AddCommand(schedulerCmd)

	schedulerCmd.Flags().BoolVar(&schedulerRunNow, "run-now", false, "trigger the refresh immediately on start")
}

func runScheduler(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	models := store.NewModelRepository(db.Pool)
	service := ingest.NewService(
		models,
		store.NewPerformanceRepository(db.Pool),
		store.NewSnapshotRepository(db.Pool),
		store.NewBacktestRepository(db.Pool),
		store.NewRankRepository(db.Pool),
		log,
		nil,
	)

	var fetcher *ingest.Fetcher
	if cfg.Ingest.RemoteBaseURL != "" {
		fetcher = ingest.NewFetcher(log, cfg.Ingest.RequestsPerSecond)
	}

	sched := scheduler.New(log)
	job := jobs.NewIngestRefreshJob(models, service, fetcher, cfg, log)
	if err := sched.AddJob(job); err != nil {
		return fmt.Errorf("add job: %w", err)
	}

	sched.Start()
	defer sched.Stop()

	if schedulerRunNow {
		if err := sched.RunJob(job.Name()); err != nil {
			return err
		}
	}

	fmt.Printf("Scheduler running (%s: %q)\n", job.Name(), job.Schedule())
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	return nil
}
