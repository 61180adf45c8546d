package postgres

import (
	"context"
	"fmt"

	"nycTaxiExplorer/domain"

	"gorm.io/gorm"
)

type PipelineRunRepository struct {
	DB *gorm.DB
}

func NewPipelineRunRepository(db *gorm.DB) *PipelineRunRepository {
	return &PipelineRunRepository{
		DB: db,
	}
}

func (r *PipelineRunRepository) Create(ctx context.Context, run *domain.PipelineRun) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("failed to create pipeline run: %w", err)
	}

	return nil
}

func (r *PipelineRunRepository) Update(ctx context.Context, run *domain.PipelineRun) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Save(run).Error; err != nil {
		return fmt.Errorf("failed to update pipeline run: %w", err)
	}

	return nil
}

func (r *PipelineRunRepository) FindAll(ctx context.Context, limit int) ([]domain.PipelineRun, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	runs := []domain.PipelineRun{}
	if err := r.DB.WithContext(ctx).Order("started_at DESC").Limit(limit).Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("failed to find pipeline runs: %w", err)
	}

	return runs, nil
}
