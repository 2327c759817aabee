package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MarcusNeufeldt/never-cook-alone/internal/logger"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/types"
)

type RecipeStepRepo interface {
	BulkCreate(ctx context.Context, tx *gorm.DB, steps []*types.RecipeStep) ([]*types.RecipeStep, error)
	ListByRecipeID(ctx context.Context, tx *gorm.DB, recipeID uuid.UUID) ([]*types.RecipeStep, error)
	UpdateImageURL(ctx context.Context, tx *gorm.DB, recipeID uuid.UUID, stepNumber int, imageURL *string) error
	DeleteByRecipeID(ctx context.Context, tx *gorm.DB, recipeID uuid.UUID) error
}

type recipeStepRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRecipeStepRepo(db *gorm.DB, baseLog *logger.Logger) RecipeStepRepo {
	repoLog := baseLog.With("repo", "RecipeStepRepo")
	return &recipeStepRepo{db: db, log: repoLog}
}

func (rr *recipeStepRepo) BulkCreate(ctx context.Context, tx *gorm.DB, steps []*types.RecipeStep) ([]*types.RecipeStep, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	if len(steps) == 0 {
		return []*types.RecipeStep{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&steps).Error; err != nil {
		return nil, err
	}
	return steps, nil
}

func (rr *recipeStepRepo) ListByRecipeID(ctx context.Context, tx *gorm.DB, recipeID uuid.UUID) ([]*types.RecipeStep, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	var results []*types.RecipeStep
	if err := transaction.WithContext(ctx).
		Where("recipe_id = ?", recipeID).
		Order("step_number ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (rr *recipeStepRepo) UpdateImageURL(ctx context.Context, tx *gorm.DB, recipeID uuid.UUID, stepNumber int, imageURL *string) error {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.RecipeStep{}).
		Where("recipe_id = ? AND step_number = ?", recipeID, stepNumber).
		Update("image_url", imageURL).Error
}

func (rr *recipeStepRepo) DeleteByRecipeID(ctx context.Context, tx *gorm.DB, recipeID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	return transaction.WithContext(ctx).
		Where("recipe_id = ?", recipeID).
		Delete(&types.RecipeStep{}).Error
}
