package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MarcusNeufeldt/never-cook-alone/internal/repos"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/types"
)

func persistTestRecipe(t *testing.T, db *gorm.DB, authorID uuid.UUID) *types.Recipe {
	t.Helper()
	rs, is := newRecipeServiceForTest(t, db)
	candidate := testCandidate()
	reconciled, err := is.Reconcile(context.Background(), candidate.Ingredients)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	recipe, err := rs.PersistCandidate(context.Background(), candidate, reconciled.Resolved, authorID, "")
	if err != nil {
		t.Fatalf("PersistCandidate: %v", err)
	}
	return recipe
}

func TestTrackIgnoresRepeatViews(t *testing.T) {
	db := openTestDB(t)
	log := testLogger(t)
	vs := NewViewService(db, log,
		repos.NewRecipeViewRepo(db, log),
		repos.NewRecipeRepo(db, log),
		nil)
	userID := uuid.New()
	recipe := persistTestRecipe(t, db, uuid.New())

	for i := 0; i < 3; i++ {
		if err := vs.Track(context.Background(), userID, recipe.ID); err != nil {
			t.Fatalf("Track call %d: %v", i+1, err)
		}
	}

	var viewCount int64
	db.Model(&types.RecipeView{}).Count(&viewCount)
	if viewCount != 1 {
		t.Fatalf("view rows: want=1 got=%d", viewCount)
	}
}

func TestRecentlyViewedSkipsDeletedRecipes(t *testing.T) {
	db := openTestDB(t)
	log := testLogger(t)
	vs := NewViewService(db, log,
		repos.NewRecipeViewRepo(db, log),
		repos.NewRecipeRepo(db, log),
		nil)
	userID := uuid.New()
	authorID := uuid.New()
	kept := persistTestRecipe(t, db, authorID)
	removed := persistTestRecipe(t, db, authorID)

	if err := vs.Track(context.Background(), userID, kept.ID); err != nil {
		t.Fatalf("Track kept: %v", err)
	}
	if err := vs.Track(context.Background(), userID, removed.ID); err != nil {
		t.Fatalf("Track removed: %v", err)
	}
	if err := db.Delete(&types.Recipe{}, "id = ?", removed.ID).Error; err != nil {
		t.Fatalf("delete recipe: %v", err)
	}

	recipes, err := vs.RecentlyViewed(context.Background(), userID)
	if err != nil {
		t.Fatalf("RecentlyViewed: %v", err)
	}
	if len(recipes) != 1 {
		t.Fatalf("recently viewed: want=1 got=%d", len(recipes))
	}
	if recipes[0].ID != kept.ID {
		t.Fatalf("recently viewed recipe: want=%s got=%s", kept.ID, recipes[0].ID)
	}
}
