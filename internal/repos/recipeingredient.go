package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MarcusNeufeldt/never-cook-alone/internal/logger"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/types"
)

type RecipeIngredientRepo interface {
	BulkCreate(ctx context.Context, tx *gorm.DB, links []*types.RecipeIngredient) ([]*types.RecipeIngredient, error)
	ListByRecipeID(ctx context.Context, tx *gorm.DB, recipeID uuid.UUID) ([]*types.RecipeIngredient, error)
	DeleteByRecipeID(ctx context.Context, tx *gorm.DB, recipeID uuid.UUID) error
}

type recipeIngredientRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRecipeIngredientRepo(db *gorm.DB, baseLog *logger.Logger) RecipeIngredientRepo {
	repoLog := baseLog.With("repo", "RecipeIngredientRepo")
	return &recipeIngredientRepo{db: db, log: repoLog}
}

func (rr *recipeIngredientRepo) BulkCreate(ctx context.Context, tx *gorm.DB, links []*types.RecipeIngredient) ([]*types.RecipeIngredient, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	if len(links) == 0 {
		return []*types.RecipeIngredient{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

func (rr *recipeIngredientRepo) ListByRecipeID(ctx context.Context, tx *gorm.DB, recipeID uuid.UUID) ([]*types.RecipeIngredient, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	var results []*types.RecipeIngredient
	if err := transaction.WithContext(ctx).
		Preload("Ingredient").
		Where("recipe_id = ?", recipeID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (rr *recipeIngredientRepo) DeleteByRecipeID(ctx context.Context, tx *gorm.DB, recipeID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	return transaction.WithContext(ctx).
		Where("recipe_id = ?", recipeID).
		Delete(&types.RecipeIngredient{}).Error
}
