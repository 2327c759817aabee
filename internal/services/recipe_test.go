package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MarcusNeufeldt/never-cook-alone/internal/repos"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/types"
)

func testCandidate() *types.CandidateRecipe {
	categoryID := int64(1)
	return &types.CandidateRecipe{
		Name:            "Tomato Soup",
		Description:     "Simple soup",
		CategoryID:      &categoryID,
		PrepTimeMinutes: 10,
		CookTimeMinutes: 25,
		Servings:        2,
		DifficultyLevel: types.DifficultyEasy,
		Ingredients: []types.CandidateIngredient{
			{Name: "Tomato", Quantity: 4, Unit: "pieces"},
			{Name: "Onion", Quantity: 1, Unit: "pieces"},
		},
		Steps: []types.CandidateStep{
			{StepNumber: 1, Instruction: "Chop everything."},
			{StepNumber: 2, Instruction: "Simmer for 25 minutes."},
			{StepNumber: 3, Instruction: "Blend and serve."},
		},
	}
}

func newRecipeServiceForTest(t *testing.T, db *gorm.DB) (RecipeService, IngredientService) {
	t.Helper()
	log := testLogger(t)
	rs := NewRecipeService(db, log,
		repos.NewRecipeRepo(db, log),
		repos.NewRecipeIngredientRepo(db, log),
		repos.NewRecipeStepRepo(db, log))
	is := NewIngredientService(db, log, repos.NewIngredientRepo(db, log))
	return rs, is
}

func TestPersistCandidateWritesAllStages(t *testing.T) {
	db := openTestDB(t)
	rs, is := newRecipeServiceForTest(t, db)
	authorID := uuid.New()

	candidate := testCandidate()
	reconciled, err := is.Reconcile(context.Background(), candidate.Ingredients)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	recipe, err := rs.PersistCandidate(context.Background(), candidate, reconciled.Resolved, authorID, "https://cdn.example/soup.jpg")
	if err != nil {
		t.Fatalf("PersistCandidate: %v", err)
	}
	if recipe.ID == uuid.Nil {
		t.Fatalf("recipe id not assigned")
	}
	if recipe.AuthorID != authorID {
		t.Fatalf("author: want=%s got=%s", authorID, recipe.AuthorID)
	}

	var recipeCount, linkCount, stepCount int64
	db.Model(&types.Recipe{}).Count(&recipeCount)
	db.Model(&types.RecipeIngredient{}).Count(&linkCount)
	db.Model(&types.RecipeStep{}).Count(&stepCount)
	if recipeCount != 1 || linkCount != 2 || stepCount != 3 {
		t.Fatalf("row counts: want=1/2/3 got=%d/%d/%d", recipeCount, linkCount, stepCount)
	}

	loaded, err := rs.GetByID(context.Background(), recipe.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(loaded.Ingredients) != 2 || len(loaded.Steps) != 3 {
		t.Fatalf("loaded children: want=2/3 got=%d/%d", len(loaded.Ingredients), len(loaded.Steps))
	}
	if loaded.Steps[0].StepNumber != 1 || loaded.Steps[2].StepNumber != 3 {
		t.Fatalf("steps not in order: %v", loaded.Steps)
	}
}

func TestPersistCandidateRequiresAuthor(t *testing.T) {
	db := openTestDB(t)
	rs, _ := newRecipeServiceForTest(t, db)

	_, err := rs.PersistCandidate(context.Background(), testCandidate(), nil, uuid.Nil, "")
	var perErr *PersistenceError
	if !errors.As(err, &perErr) {
		t.Fatalf("want PersistenceError, got %T: %v", err, err)
	}
	if perErr.Stage != PersistStageRecipe {
		t.Fatalf("stage: want=%s got=%s", PersistStageRecipe, perErr.Stage)
	}
}

// failingStepRepo refuses every bulk insert.
type failingStepRepo struct {
	repos.RecipeStepRepo
}

func (f *failingStepRepo) BulkCreate(ctx context.Context, tx *gorm.DB, steps []*types.RecipeStep) ([]*types.RecipeStep, error) {
	return nil, fmt.Errorf("simulated step write failure")
}

func TestPersistCandidateSurfacesPartialState(t *testing.T) {
	db := openTestDB(t)
	log := testLogger(t)
	rs := NewRecipeService(db, log,
		repos.NewRecipeRepo(db, log),
		repos.NewRecipeIngredientRepo(db, log),
		&failingStepRepo{RecipeStepRepo: repos.NewRecipeStepRepo(db, log)})
	is := NewIngredientService(db, log, repos.NewIngredientRepo(db, log))
	authorID := uuid.New()

	candidate := testCandidate()
	reconciled, err := is.Reconcile(context.Background(), candidate.Ingredients)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	recipe, err := rs.PersistCandidate(context.Background(), candidate, reconciled.Resolved, authorID, "")
	var perErr *PersistenceError
	if !errors.As(err, &perErr) {
		t.Fatalf("want PersistenceError, got %T: %v", err, err)
	}
	if perErr.Stage != PersistStageSteps {
		t.Fatalf("stage: want=%s got=%s", PersistStageSteps, perErr.Stage)
	}
	// The partial recipe stays queryable and is returned to the caller.
	if recipe == nil || recipe.ID == uuid.Nil {
		t.Fatalf("partial recipe should be returned")
	}
	var recipeCount, linkCount, stepCount int64
	db.Model(&types.Recipe{}).Count(&recipeCount)
	db.Model(&types.RecipeIngredient{}).Count(&linkCount)
	db.Model(&types.RecipeStep{}).Count(&stepCount)
	if recipeCount != 1 || linkCount != 2 || stepCount != 0 {
		t.Fatalf("row counts after step failure: want=1/2/0 got=%d/%d/%d", recipeCount, linkCount, stepCount)
	}
}

// failingLinkRepo refuses every bulk insert.
type failingLinkRepo struct {
	repos.RecipeIngredientRepo
}

func (f *failingLinkRepo) BulkCreate(ctx context.Context, tx *gorm.DB, links []*types.RecipeIngredient) ([]*types.RecipeIngredient, error) {
	return nil, fmt.Errorf("simulated link write failure")
}

func TestPersistCandidateStopsAtIngredientStage(t *testing.T) {
	db := openTestDB(t)
	log := testLogger(t)
	rs := NewRecipeService(db, log,
		repos.NewRecipeRepo(db, log),
		&failingLinkRepo{RecipeIngredientRepo: repos.NewRecipeIngredientRepo(db, log)},
		repos.NewRecipeStepRepo(db, log))
	is := NewIngredientService(db, log, repos.NewIngredientRepo(db, log))
	authorID := uuid.New()

	candidate := testCandidate()
	reconciled, err := is.Reconcile(context.Background(), candidate.Ingredients)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	recipe, err := rs.PersistCandidate(context.Background(), candidate, reconciled.Resolved, authorID, "")
	var perErr *PersistenceError
	if !errors.As(err, &perErr) {
		t.Fatalf("want PersistenceError, got %T: %v", err, err)
	}
	if perErr.Stage != PersistStageIngredients {
		t.Fatalf("stage: want=%s got=%s", PersistStageIngredients, perErr.Stage)
	}
	if recipe == nil || recipe.ID == uuid.Nil {
		t.Fatalf("partial recipe should be returned")
	}
	// Header survives, nothing after the failed stage is attempted.
	var recipeCount, linkCount, stepCount int64
	db.Model(&types.Recipe{}).Count(&recipeCount)
	db.Model(&types.RecipeIngredient{}).Count(&linkCount)
	db.Model(&types.RecipeStep{}).Count(&stepCount)
	if recipeCount != 1 || linkCount != 0 || stepCount != 0 {
		t.Fatalf("row counts after link failure: want=1/0/0 got=%d/%d/%d", recipeCount, linkCount, stepCount)
	}
}

func TestUpdateRejectsNonAuthor(t *testing.T) {
	db := openTestDB(t)
	rs, is := newRecipeServiceForTest(t, db)
	authorID := uuid.New()

	candidate := testCandidate()
	reconciled, err := is.Reconcile(context.Background(), candidate.Ingredients)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	recipe, err := rs.PersistCandidate(context.Background(), candidate, reconciled.Resolved, authorID, "")
	if err != nil {
		t.Fatalf("PersistCandidate: %v", err)
	}

	newName := "Stolen Soup"
	if _, err := rs.Update(context.Background(), recipe.ID, uuid.New(), RecipeUpdate{Name: &newName}); err == nil {
		t.Fatalf("non-author update should fail")
	}
	if _, err := rs.Update(context.Background(), recipe.ID, authorID, RecipeUpdate{Name: &newName}); err != nil {
		t.Fatalf("author update: %v", err)
	}
	loaded, err := rs.GetByID(context.Background(), recipe.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if loaded.Name != newName {
		t.Fatalf("name after update: want=%q got=%q", newName, loaded.Name)
	}
}
