package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MarcusNeufeldt/never-cook-alone/internal/logger"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/types"
)

type RecipeCommentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, comment *types.RecipeComment) (*types.RecipeComment, error)
	ListByRecipeID(ctx context.Context, tx *gorm.DB, recipeID uuid.UUID) ([]*types.RecipeComment, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.RecipeComment, error)
	Delete(ctx context.Context, tx *gorm.DB, id, authorID uuid.UUID) error
}

type recipeCommentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRecipeCommentRepo(db *gorm.DB, baseLog *logger.Logger) RecipeCommentRepo {
	repoLog := baseLog.With("repo", "RecipeCommentRepo")
	return &recipeCommentRepo{db: db, log: repoLog}
}

func (cr *recipeCommentRepo) Create(ctx context.Context, tx *gorm.DB, comment *types.RecipeComment) (*types.RecipeComment, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	if err := transaction.WithContext(ctx).
		Omit("Author").
		Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

func (cr *recipeCommentRepo) ListByRecipeID(ctx context.Context, tx *gorm.DB, recipeID uuid.UUID) ([]*types.RecipeComment, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var results []*types.RecipeComment
	if err := transaction.WithContext(ctx).
		Preload("Author").
		Where("recipe_id = ?", recipeID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cr *recipeCommentRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.RecipeComment, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var result types.RecipeComment
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (cr *recipeCommentRepo) Delete(ctx context.Context, tx *gorm.DB, id, authorID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	return transaction.WithContext(ctx).
		Where("id = ? AND author_id = ?", id, authorID).
		Delete(&types.RecipeComment{}).Error
}
