package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nycTaxiExplorer/domain"
	"nycTaxiExplorer/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

var ErrValidationFailed = errors.New("processed data failed validation")

type RunRecorder interface {
	Create(ctx context.Context, run *domain.PipelineRun) error
	Update(ctx context.Context, run *domain.PipelineRun) error
}

type Source interface {
	VerifyFiles() error
	Load(ctx context.Context, sample int) ([]RawTrip, []ZoneRow, error)
}

type Runner struct {
	source  Source
	seeder  *Seeder
	runRepo RunRecorder
	now     func() time.Time
}

func NewRunner(source Source, seeder *Seeder, runRepo RunRecorder) *Runner {
	return &Runner{
		source:  source,
		seeder:  seeder,
		runRepo: runRepo,
		now:     time.Now,
	}
}

type RunOptions struct {
	Sample  int
	Replace bool
}

// Run loads, cleans, engineers, validates and seeds, recording the outcome
// as a pipeline run. The returned run is populated even when err != nil.
func (r *Runner) Run(ctx context.Context, opts RunOptions) (*domain.PipelineRun, error) {
	run := &domain.PipelineRun{
		ID:        uuid.New(),
		StartedAt: r.now().UTC(),
		Status:    domain.PipelineStatusRunning,
		Log:       datatypes.JSONMap{"sample": opts.Sample},
	}
	if err := r.runRepo.Create(ctx, run); err != nil {
		return run, err
	}

	err := r.execute(ctx, run, opts)

	finished := r.now().UTC()
	run.FinishedAt = &finished
	run.Status = domain.PipelineStatusSucceeded
	if err != nil {
		run.Status = domain.PipelineStatusFailed
		run.Log["error"] = err.Error()
	}

	if uerr := r.runRepo.Update(context.WithoutCancel(ctx), run); uerr != nil {
		logger.Error("Failed to record pipeline run", uerr)
		if err == nil {
			err = uerr
		}
	}

	return run, err
}

func (r *Runner) execute(ctx context.Context, run *domain.PipelineRun, opts RunOptions) error {
	logger.Info("[1/5] Loading data", "run_id", run.ID, "sample", opts.Sample)
	if err := r.source.VerifyFiles(); err != nil {
		return err
	}
	rawTrips, zoneRows, err := r.source.Load(ctx, opts.Sample)
	if err != nil {
		return err
	}

	logger.Info("[2/5] Cleaning data", "rows", len(rawTrips))
	cleaned, report := NewCleaner().Clean(rawTrips)
	run.OriginalCount = int64(report.OriginalCount)
	run.FinalCount = int64(report.FinalCount)
	run.RemovedCount = int64(report.RemovedCount)
	run.Log["cleaning"] = report.Log
	run.Log["removed_by_step"] = report.RemovedByStep

	logger.Info("[3/5] Engineering features")
	trips := Engineer(cleaned)

	logger.Info("[4/5] Validating data")
	result := Validate(trips)
	run.Log["validation_issues"] = result.Issues
	if !result.Valid {
		for _, issue := range result.Issues {
			logger.Warn("Validation issue", "issue", issue)
		}
		return fmt.Errorf("%w: %d issues", ErrValidationFailed, len(result.Issues))
	}
	run.Log["summary"] = Summarize(trips)

	logger.Info("[5/5] Seeding database", "trips", len(trips), "zones", len(zoneRows))
	return r.seeder.Seed(ctx, NormalizeZones(zoneRows), trips, opts.Replace)
}
