package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MarcusNeufeldt/never-cook-alone/internal/clients/redis"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/logger"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/repos"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/types"
)

const (
	recentlyViewedLimit = 20
	recentlyViewedTTL   = 10 * time.Minute
)

// ViewService records which recipes a user has opened and answers the
// "recently viewed" query, with a redis cache in front of the database. The
// cache is best-effort: redis being down degrades to database reads, never to
// request failures.
type ViewService interface {
	Track(ctx context.Context, userID, recipeID uuid.UUID) error
	RecentlyViewed(ctx context.Context, userID uuid.UUID) ([]*types.Recipe, error)
}

type viewService struct {
	db         *gorm.DB
	log        *logger.Logger
	viewRepo   repos.RecipeViewRepo
	recipeRepo repos.RecipeRepo
	cache      redis.Cache
}

func NewViewService(db *gorm.DB, log *logger.Logger, viewRepo repos.RecipeViewRepo, recipeRepo repos.RecipeRepo, cache redis.Cache) ViewService {
	serviceLog := log.With("service", "ViewService")
	return &viewService{
		db:         db,
		log:        serviceLog,
		viewRepo:   viewRepo,
		recipeRepo: recipeRepo,
		cache:      cache,
	}
}

func (vs *viewService) Track(ctx context.Context, userID, recipeID uuid.UUID) error {
	if err := vs.viewRepo.Track(ctx, nil, userID, recipeID); err != nil {
		return err
	}
	if vs.cache != nil {
		if err := vs.cache.Delete(ctx, recentlyViewedKey(userID)); err != nil {
			vs.log.Warn("Failed to invalidate recently-viewed cache", "user_id", userID, "error", err)
		}
	}
	return nil
}

func (vs *viewService) RecentlyViewed(ctx context.Context, userID uuid.UUID) ([]*types.Recipe, error) {
	key := recentlyViewedKey(userID)
	if vs.cache != nil {
		var cached []*types.Recipe
		found, err := vs.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			vs.log.Warn("Recently-viewed cache read failed", "user_id", userID, "error", err)
		} else if found {
			return cached, nil
		}
	}

	views, err := vs.viewRepo.ListRecentByUser(ctx, nil, userID, recentlyViewedLimit)
	if err != nil {
		return nil, err
	}
	recipes := make([]*types.Recipe, 0, len(views))
	for _, v := range views {
		recipe, err := vs.recipeRepo.GetByID(ctx, nil, v.RecipeID)
		if err != nil {
			// The recipe may have been deleted since it was viewed.
			vs.log.Debug("Skipping viewed recipe that no longer loads", "recipe_id", v.RecipeID, "error", err)
			continue
		}
		recipes = append(recipes, recipe)
	}

	if vs.cache != nil {
		if err := vs.cache.SetJSON(ctx, key, recipes, recentlyViewedTTL); err != nil {
			vs.log.Warn("Recently-viewed cache write failed", "user_id", userID, "error", err)
		}
	}
	return recipes, nil
}

func recentlyViewedKey(userID uuid.UUID) string {
	return fmt.Sprintf("recently-viewed:%s", userID.String())
}
