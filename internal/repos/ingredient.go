package repos

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/MarcusNeufeldt/never-cook-alone/internal/logger"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/types"
)

type IngredientRepo interface {
	// FindOrCreate attempts the insert first and falls back to a
	// case-insensitive lookup only when the store reports a uniqueness
	// conflict. The insert-first order keeps the common case (new name) at
	// one round-trip and stays correct when two callers race to create the
	// same name: the loser's insert fails on the constraint and it resolves
	// to the winner's row.
	FindOrCreate(ctx context.Context, tx *gorm.DB, name string) (*types.Ingredient, bool, error)
	GetByNameInsensitive(ctx context.Context, tx *gorm.DB, name string) (*types.Ingredient, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []int64) ([]*types.Ingredient, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.Ingredient, error)
}

type ingredientRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewIngredientRepo(db *gorm.DB, baseLog *logger.Logger) IngredientRepo {
	repoLog := baseLog.With("repo", "IngredientRepo")
	return &ingredientRepo{db: db, log: repoLog}
}

func (ir *ingredientRepo) FindOrCreate(ctx context.Context, tx *gorm.DB, name string) (*types.Ingredient, bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}
	ingredient := &types.Ingredient{Name: name}
	err := transaction.WithContext(ctx).Create(ingredient).Error
	if err == nil {
		return ingredient, true, nil
	}
	if !IsUniqueViolation(err) {
		return nil, false, err
	}
	existing, lookupErr := ir.GetByNameInsensitive(ctx, tx, name)
	if lookupErr != nil {
		return nil, false, fmt.Errorf("lookup after uniqueness conflict on %q: %w", name, lookupErr)
	}
	return existing, false, nil
}

func (ir *ingredientRepo) GetByNameInsensitive(ctx context.Context, tx *gorm.DB, name string) (*types.Ingredient, error) {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}
	var result types.Ingredient
	if err := transaction.WithContext(ctx).
		Where("LOWER(name) = LOWER(?)", name).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (ir *ingredientRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []int64) ([]*types.Ingredient, error) {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}
	var results []*types.Ingredient
	if len(ids) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ir *ingredientRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Ingredient, error) {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}
	var results []*types.Ingredient
	if err := transaction.WithContext(ctx).
		Order("name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
