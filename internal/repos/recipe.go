package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MarcusNeufeldt/never-cook-alone/internal/logger"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/types"
)

type RecipeRepo interface {
	Create(ctx context.Context, tx *gorm.DB, recipe *types.Recipe) (*types.Recipe, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Recipe, error)
	ListRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Recipe, error)
	ListFeatured(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Recipe, error)
	ListByCategory(ctx context.Context, tx *gorm.DB, categoryID int64, limit int) ([]*types.Recipe, error)
	ListByAuthor(ctx context.Context, tx *gorm.DB, authorID uuid.UUID) ([]*types.Recipe, error)
	Search(ctx context.Context, tx *gorm.DB, query string, limit int) ([]*types.Recipe, error)
	Update(ctx context.Context, tx *gorm.DB, recipe *types.Recipe) error
	Delete(ctx context.Context, tx *gorm.DB, id, authorID uuid.UUID) error
}

type recipeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRecipeRepo(db *gorm.DB, baseLog *logger.Logger) RecipeRepo {
	repoLog := baseLog.With("repo", "RecipeRepo")
	return &recipeRepo{db: db, log: repoLog}
}

func (rr *recipeRepo) Create(ctx context.Context, tx *gorm.DB, recipe *types.Recipe) (*types.Recipe, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	if err := transaction.WithContext(ctx).
		Omit("Ingredients", "Steps", "Category").
		Create(recipe).Error; err != nil {
		return nil, err
	}
	return recipe, nil
}

func (rr *recipeRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Recipe, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	var result types.Recipe
	if err := transaction.WithContext(ctx).
		Preload("Category").
		Preload("Ingredients").
		Preload("Ingredients.Ingredient").
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("recipe_steps.step_number ASC")
		}).
		Where("id = ?", id).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (rr *recipeRepo) ListRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Recipe, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	var results []*types.Recipe
	if err := transaction.WithContext(ctx).
		Preload("Category").
		Order("created_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (rr *recipeRepo) ListFeatured(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Recipe, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	var results []*types.Recipe
	if err := transaction.WithContext(ctx).
		Preload("Category").
		Where("is_featured = ?", true).
		Order("created_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (rr *recipeRepo) ListByCategory(ctx context.Context, tx *gorm.DB, categoryID int64, limit int) ([]*types.Recipe, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	var results []*types.Recipe
	if err := transaction.WithContext(ctx).
		Where("category_id = ?", categoryID).
		Order("created_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (rr *recipeRepo) ListByAuthor(ctx context.Context, tx *gorm.DB, authorID uuid.UUID) ([]*types.Recipe, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	var results []*types.Recipe
	if err := transaction.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (rr *recipeRepo) Search(ctx context.Context, tx *gorm.DB, query string, limit int) ([]*types.Recipe, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	var results []*types.Recipe
	pattern := "%" + query + "%"
	if err := transaction.WithContext(ctx).
		Preload("Category").
		Where("name ILIKE ? OR description ILIKE ?", pattern, pattern).
		Order("created_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (rr *recipeRepo) Update(ctx context.Context, tx *gorm.DB, recipe *types.Recipe) error {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	return transaction.WithContext(ctx).
		Omit("Ingredients", "Steps", "Category").
		Save(recipe).Error
}

func (rr *recipeRepo) Delete(ctx context.Context, tx *gorm.DB, id, authorID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	return transaction.WithContext(ctx).
		Where("id = ? AND author_id = ?", id, authorID).
		Delete(&types.Recipe{}).Error
}
