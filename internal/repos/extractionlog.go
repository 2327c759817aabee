package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MarcusNeufeldt/never-cook-alone/internal/logger"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/types"
)

type ExtractionLogRepo interface {
	Create(ctx context.Context, tx *gorm.DB, entry *types.ExtractionLog) (*types.ExtractionLog, error)
	ListByAuthor(ctx context.Context, tx *gorm.DB, authorID uuid.UUID, limit int) ([]*types.ExtractionLog, error)
}

type extractionLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewExtractionLogRepo(db *gorm.DB, baseLog *logger.Logger) ExtractionLogRepo {
	repoLog := baseLog.With("repo", "ExtractionLogRepo")
	return &extractionLogRepo{db: db, log: repoLog}
}

func (er *extractionLogRepo) Create(ctx context.Context, tx *gorm.DB, entry *types.ExtractionLog) (*types.ExtractionLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	if err := transaction.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func (er *extractionLogRepo) ListByAuthor(ctx context.Context, tx *gorm.DB, authorID uuid.UUID, limit int) ([]*types.ExtractionLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	var results []*types.ExtractionLog
	if err := transaction.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
