package repository

import (
	"context"
	"time"

	"movie-roi-pipeline/internal/database"
	"movie-roi-pipeline/internal/models"
)

type RunLogRepository interface {
	Create(ctx context.Context, log *models.RunLog) error
	Latest(ctx context.Context, limit int) ([]models.RunLog, error)
}

type runLogRepository struct {
	db      *database.Database
	timeout time.Duration
}

func NewRunLogRepository(db *database.Database) RunLogRepository {
	return &runLogRepository{
		db:      db,
		timeout: db.GetQueryTimeout(),
	}
}

func (r *runLogRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *runLogRepository) Create(ctx context.Context, log *models.RunLog) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return r.db.WithContext(ctx).Create(log).Error
}

func (r *runLogRepository) Latest(ctx context.Context, limit int) ([]models.RunLog, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var logs []models.RunLog
	err := r.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}
