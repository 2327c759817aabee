package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MarcusNeufeldt/never-cook-alone/internal/logger"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/repos"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/types"
)

type RecipeService interface {
	// PersistCandidate writes a reviewed candidate as three sequential
	// stages: recipe header, ingredient links, steps. The stages are
	// deliberately not one transaction. A failure partway leaves the
	// recipe in a reduced but editable state (header only, or header plus
	// ingredients), which the caller surfaces rather than hides. Steps are
	// only attempted after the ingredient links succeeded.
	PersistCandidate(ctx context.Context, candidate *types.CandidateRecipe, resolved []types.ResolvedIngredient, authorID uuid.UUID, imageURL string) (*types.Recipe, error)

	GetByID(ctx context.Context, id uuid.UUID) (*types.Recipe, error)
	ListRecent(ctx context.Context, limit int) ([]*types.Recipe, error)
	ListFeatured(ctx context.Context, limit int) ([]*types.Recipe, error)
	ListByCategory(ctx context.Context, categoryID int64, limit int) ([]*types.Recipe, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]*types.Recipe, error)
	Search(ctx context.Context, query string, limit int) ([]*types.Recipe, error)

	// Update rewrites the recipe header fields. Only the recipe's author may
	// update it; ingredient links and steps are managed separately.
	Update(ctx context.Context, id, authorID uuid.UUID, update RecipeUpdate) (*types.Recipe, error)
	Delete(ctx context.Context, id, authorID uuid.UUID) error
}

// RecipeUpdate carries the editable header fields. Nil pointers mean "leave
// unchanged".
type RecipeUpdate struct {
	Name            *string `json:"name"`
	Description     *string `json:"description"`
	CategoryID      *int64  `json:"category_id"`
	PrepTimeMinutes *int    `json:"prep_time_minutes"`
	CookTimeMinutes *int    `json:"cook_time_minutes"`
	Servings        *int    `json:"servings"`
	DifficultyLevel *string `json:"difficulty_level"`
	ImageURL        *string `json:"image_url"`
}

type recipeService struct {
	db                   *gorm.DB
	log                  *logger.Logger
	recipeRepo           repos.RecipeRepo
	recipeIngredientRepo repos.RecipeIngredientRepo
	recipeStepRepo       repos.RecipeStepRepo
}

func NewRecipeService(
	db *gorm.DB,
	log *logger.Logger,
	recipeRepo repos.RecipeRepo,
	recipeIngredientRepo repos.RecipeIngredientRepo,
	recipeStepRepo repos.RecipeStepRepo,
) RecipeService {
	serviceLog := log.With("service", "RecipeService")
	return &recipeService{
		db:                   db,
		log:                  serviceLog,
		recipeRepo:           recipeRepo,
		recipeIngredientRepo: recipeIngredientRepo,
		recipeStepRepo:       recipeStepRepo,
	}
}

func (rs *recipeService) PersistCandidate(ctx context.Context, candidate *types.CandidateRecipe, resolved []types.ResolvedIngredient, authorID uuid.UUID, imageURL string) (*types.Recipe, error) {
	if candidate == nil {
		return nil, &PersistenceError{Stage: PersistStageRecipe, Err: fmt.Errorf("no candidate to persist")}
	}
	if authorID == uuid.Nil {
		return nil, &PersistenceError{Stage: PersistStageRecipe, Err: fmt.Errorf("author required")}
	}

	recipe := &types.Recipe{
		ID:              uuid.New(),
		Name:            candidate.Name,
		Description:     candidate.Description,
		CategoryID:      candidate.CategoryID,
		PrepTimeMinutes: candidate.PrepTimeMinutes,
		CookTimeMinutes: candidate.CookTimeMinutes,
		Servings:        candidate.Servings,
		DifficultyLevel: candidate.DifficultyLevel,
		ImageURL:        imageURL,
		AuthorID:        authorID,
		IsFeatured:      false,
	}
	if _, err := rs.recipeRepo.Create(ctx, nil, recipe); err != nil {
		return nil, &PersistenceError{Stage: PersistStageRecipe, Err: err}
	}

	links := make([]*types.RecipeIngredient, 0, len(resolved))
	for _, ri := range resolved {
		links = append(links, &types.RecipeIngredient{
			RecipeID:     recipe.ID,
			IngredientID: ri.IngredientID,
			Quantity:     ri.Quantity,
			Unit:         ri.Unit,
		})
	}
	if _, err := rs.recipeIngredientRepo.BulkCreate(ctx, nil, links); err != nil {
		rs.log.Error("Recipe persisted without ingredient links", "recipe_id", recipe.ID, "error", err)
		return recipe, &PersistenceError{Stage: PersistStageIngredients, Err: err}
	}

	steps := make([]*types.RecipeStep, 0, len(candidate.Steps))
	for _, st := range candidate.Steps {
		steps = append(steps, &types.RecipeStep{
			RecipeID:    recipe.ID,
			StepNumber:  st.StepNumber,
			Instruction: st.Instruction,
		})
	}
	if _, err := rs.recipeStepRepo.BulkCreate(ctx, nil, steps); err != nil {
		rs.log.Error("Recipe persisted without steps", "recipe_id", recipe.ID, "error", err)
		return recipe, &PersistenceError{Stage: PersistStageSteps, Err: err}
	}

	return recipe, nil
}

func (rs *recipeService) GetByID(ctx context.Context, id uuid.UUID) (*types.Recipe, error) {
	return rs.recipeRepo.GetByID(ctx, nil, id)
}

func (rs *recipeService) ListRecent(ctx context.Context, limit int) ([]*types.Recipe, error) {
	if limit <= 0 {
		limit = 20
	}
	return rs.recipeRepo.ListRecent(ctx, nil, limit)
}

func (rs *recipeService) ListFeatured(ctx context.Context, limit int) ([]*types.Recipe, error) {
	if limit <= 0 {
		limit = 10
	}
	return rs.recipeRepo.ListFeatured(ctx, nil, limit)
}

func (rs *recipeService) ListByCategory(ctx context.Context, categoryID int64, limit int) ([]*types.Recipe, error) {
	if limit <= 0 {
		limit = 50
	}
	return rs.recipeRepo.ListByCategory(ctx, nil, categoryID, limit)
}

func (rs *recipeService) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]*types.Recipe, error) {
	return rs.recipeRepo.ListByAuthor(ctx, nil, authorID)
}

func (rs *recipeService) Search(ctx context.Context, query string, limit int) ([]*types.Recipe, error) {
	if limit <= 0 {
		limit = 50
	}
	return rs.recipeRepo.Search(ctx, nil, query, limit)
}

func (rs *recipeService) Update(ctx context.Context, id, authorID uuid.UUID, update RecipeUpdate) (*types.Recipe, error) {
	recipe, err := rs.recipeRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if recipe.AuthorID != authorID {
		return nil, fmt.Errorf("only the author can update this recipe")
	}
	if update.Name != nil {
		recipe.Name = *update.Name
	}
	if update.Description != nil {
		recipe.Description = *update.Description
	}
	if update.CategoryID != nil {
		recipe.CategoryID = update.CategoryID
	}
	if update.PrepTimeMinutes != nil {
		recipe.PrepTimeMinutes = *update.PrepTimeMinutes
	}
	if update.CookTimeMinutes != nil {
		recipe.CookTimeMinutes = *update.CookTimeMinutes
	}
	if update.Servings != nil {
		recipe.Servings = *update.Servings
	}
	if update.DifficultyLevel != nil {
		if !types.ValidDifficulty(*update.DifficultyLevel) {
			return nil, fmt.Errorf("difficulty must be one of easy, medium, hard")
		}
		recipe.DifficultyLevel = *update.DifficultyLevel
	}
	if update.ImageURL != nil {
		recipe.ImageURL = *update.ImageURL
	}
	if err := rs.recipeRepo.Update(ctx, nil, recipe); err != nil {
		return nil, err
	}
	return recipe, nil
}

func (rs *recipeService) Delete(ctx context.Context, id, authorID uuid.UUID) error {
	return rs.recipeRepo.Delete(ctx, nil, id, authorID)
}
