// Package jobs holds the concrete scheduled jobs of the service.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/DonaldPG/pytaaa-web/internal/contracts"
	"github.com/DonaldPG/pytaaa-web/internal/ingest"
	"github.com/DonaldPG/pytaaa-web/pkg/config"
	"github.com/DonaldPG/pytaaa-web/pkg/logger"
)

// IngestRefreshJob re-ingests every registered model from its data
// directory on a cron schedule, so the dashboards pick up the files the
// trading models write after each session. When a remote base URL is
// configured the files are mirrored first.
type IngestRefreshJob struct {
	models  contracts.ModelRepository
	service *ingest.Service
	fetcher *ingest.Fetcher
	cfg     *config.Config
	log     *logger.Logger
}

// NewIngestRefreshJob creates the refresh job. fetcher may be nil when
// no remote base URL is configured.
func NewIngestRefreshJob(
	models contracts.ModelRepository,
	service *ingest.Service,
	fetcher *ingest.Fetcher,
	cfg *config.Config,
	log *logger.Logger,
) *IngestRefreshJob {
	return &IngestRefreshJob{models: models, service: service, fetcher: fetcher, cfg: cfg, log: log}
}

// Name returns the job name
func (j *IngestRefreshJob) Name() string {
	return "ingest_refresh"
}

// Schedule returns the configured cron expression
func (j *IngestRefreshJob) Schedule() string {
	return j.cfg.Ingest.Schedule
}

// Run refreshes every registered model. Models whose data directory is
// missing are skipped; individual failures do not stop the sweep.
func (j *IngestRefreshJob) Run(ctx context.Context) error {
	models, err := j.models.List(ctx)
	if err != nil {
		return fmt.Errorf("list models: %w", err)
	}

	var failures []error
	for _, m := range models {
		if err := j.refreshModel(ctx, m.TradingModel); err != nil {
			j.log.WithError(err).WithField("model", m.Name).Error("Model refresh failed")
			failures = append(failures, fmt.Errorf("%s: %w", m.Name, err))
		}
	}

	return errors.Join(failures...)
}

func (j *IngestRefreshJob) refreshModel(ctx context.Context, model contracts.TradingModel) error {
	dataDir := filepath.Join(j.cfg.Ingest.DataDir, model.Name)

	if j.fetcher != nil && j.cfg.Ingest.RemoteBaseURL != "" {
		remote := j.cfg.Ingest.RemoteBaseURL + "/" + model.Name
		if _, err := j.fetcher.FetchDataFiles(ctx, remote, dataDir); err != nil {
			return fmt.Errorf("fetch remote files: %w", err)
		}
	}

	if _, err := os.Stat(dataDir); err != nil {
		j.log.WithField("model", model.Name).Debug("No data directory, skipping")
		return nil
	}

	_, err := j.service.Run(ctx, ingest.Options{
		DataDir:     dataDir,
		ModelName:   model.Name,
		IndexType:   model.IndexType,
		Description: model.Description,
		IsMeta:      model.IsMeta,
	})
	return err
}
