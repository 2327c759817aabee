package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/MarcusNeufeldt/never-cook-alone/internal/logger"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/types"
)

type RecipeViewRepo interface {
	// Track records a view. A repeat view of the same recipe by the same
	// user is a no-op, resolved by the store's composite key rather than a
	// read-before-write.
	Track(ctx context.Context, tx *gorm.DB, userID, recipeID uuid.UUID) error
	ListRecentByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.RecipeView, error)
}

type recipeViewRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRecipeViewRepo(db *gorm.DB, baseLog *logger.Logger) RecipeViewRepo {
	repoLog := baseLog.With("repo", "RecipeViewRepo")
	return &recipeViewRepo{db: db, log: repoLog}
}

func (rr *recipeViewRepo) Track(ctx context.Context, tx *gorm.DB, userID, recipeID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	view := &types.RecipeView{UserID: userID, RecipeID: recipeID}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(view).Error
}

func (rr *recipeViewRepo) ListRecentByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.RecipeView, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	var results []*types.RecipeView
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("viewed_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
