package services

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/MarcusNeufeldt/never-cook-alone/internal/logger"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/repos"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/types"
)

// IngestionResult is the full outcome of one photo ingestion run: the stored
// recipe, the candidate it came from (including any field-level issues) and
// the ingredients that were dropped during reconciliation.
type IngestionResult struct {
	Recipe    *types.Recipe          `json:"recipe"`
	Candidate *types.CandidateRecipe `json:"candidate"`
	Dropped   []ReconciliationError  `json:"-"`
}

type IngestionService interface {
	// Extract runs the read-only half of the pipeline: encode the photo,
	// call the model, validate the response into a candidate. Nothing is
	// written to the recipe tables; a candidate can be shown to the user
	// for review before Persist.
	Extract(ctx context.Context, image io.Reader, authorID uuid.UUID) (*types.CandidateRecipe, error)

	// Persist runs the write half: reconcile the candidate's ingredients
	// against the catalog, then store the recipe in three stages. On a
	// partial persistence failure the returned result still carries the
	// recipe that was written.
	Persist(ctx context.Context, candidate *types.CandidateRecipe, authorID uuid.UUID, imageURL string) (*IngestionResult, error)

	// ExtractAndPersist chains Extract and Persist for the one-shot
	// "photo in, recipe out" flow.
	ExtractAndPersist(ctx context.Context, image io.Reader, authorID uuid.UUID, imageURL string) (*IngestionResult, error)
}

type ingestionService struct {
	db                *gorm.DB
	log               *logger.Logger
	extractionService ExtractionService
	ingredientService IngredientService
	recipeService     RecipeService
	categoryRepo      repos.CategoryRepo
	extractionLogRepo repos.ExtractionLogRepo
	model             string
}

func NewIngestionService(
	db *gorm.DB,
	log *logger.Logger,
	extractionService ExtractionService,
	ingredientService IngredientService,
	recipeService RecipeService,
	categoryRepo repos.CategoryRepo,
	extractionLogRepo repos.ExtractionLogRepo,
	model string,
) IngestionService {
	serviceLog := log.With("service", "IngestionService")
	return &ingestionService{
		db:                db,
		log:               serviceLog,
		extractionService: extractionService,
		ingredientService: ingredientService,
		recipeService:     recipeService,
		categoryRepo:      categoryRepo,
		extractionLogRepo: extractionLogRepo,
		model:             model,
	}
}

func (igs *ingestionService) Extract(ctx context.Context, image io.Reader, authorID uuid.UUID) (*types.CandidateRecipe, error) {
	start := time.Now()
	encoded, err := igs.extractionService.EncodeImage(image)
	igs.stageEvent("encode", start, err)
	if err != nil {
		return nil, err
	}

	categories, err := igs.categoryRepo.List(ctx, nil)
	if err != nil {
		igs.log.Warn("Category list unavailable, extracting without category guide", "error", err)
		categories = nil
	}

	start = time.Now()
	candidate, raw, err := igs.extractionService.Extract(ctx, encoded, categories)
	igs.stageEvent("extract", start, err)
	igs.recordCall(ctx, authorID, time.Since(start), raw, err)
	if err != nil {
		return nil, err
	}

	// Any recipe implies some minimum effort; an extracted time below the
	// floor is treated as a model underestimate.
	if candidate.CookTimeMinutes < types.MinCookTimeMinutes {
		candidate.CookTimeMinutes = types.MinCookTimeMinutes
	}
	return candidate, nil
}

func (igs *ingestionService) Persist(ctx context.Context, candidate *types.CandidateRecipe, authorID uuid.UUID, imageURL string) (*IngestionResult, error) {
	start := time.Now()
	reconciled, err := igs.ingredientService.Reconcile(ctx, candidate.Ingredients)
	igs.stageEvent("reconcile", start, err)
	if err != nil {
		return nil, err
	}

	start = time.Now()
	recipe, err := igs.recipeService.PersistCandidate(ctx, candidate, reconciled.Resolved, authorID, imageURL)
	igs.stageEvent("persist", start, err)

	result := &IngestionResult{
		Recipe:    recipe,
		Candidate: candidate,
		Dropped:   reconciled.Dropped,
	}
	if err != nil {
		return result, err
	}
	return result, nil
}

func (igs *ingestionService) ExtractAndPersist(ctx context.Context, image io.Reader, authorID uuid.UUID, imageURL string) (*IngestionResult, error) {
	candidate, err := igs.Extract(ctx, image, authorID)
	if err != nil {
		return nil, err
	}
	return igs.Persist(ctx, candidate, authorID, imageURL)
}

func (igs *ingestionService) stageEvent(stage string, start time.Time, err error) {
	duration := time.Since(start).Milliseconds()
	if err != nil {
		igs.log.Warn("Ingestion stage failed", "stage", stage, "duration_ms", duration, "error", err)
		return
	}
	igs.log.Info("Ingestion stage completed", "stage", stage, "duration_ms", duration)
}

// recordCall writes one extraction_logs row per model call, success or not.
// Logging failures are not allowed to fail the pipeline.
func (igs *ingestionService) recordCall(ctx context.Context, authorID uuid.UUID, duration time.Duration, raw string, callErr error) {
	outcome := "success"
	if callErr != nil {
		outcome = "error"
	}
	var rawJSON datatypes.JSON
	if raw != "" {
		payload, err := json.Marshal(map[string]string{"text": raw})
		if err == nil {
			rawJSON = datatypes.JSON(payload)
		}
	}
	entry := &types.ExtractionLog{
		ID:          uuid.New(),
		AuthorID:    authorID,
		Model:       igs.model,
		DurationMS:  duration.Milliseconds(),
		Outcome:     outcome,
		RawResponse: rawJSON,
	}
	if _, err := igs.extractionLogRepo.Create(ctx, nil, entry); err != nil {
		igs.log.Warn("Failed to record extraction call", "error", err)
	}
}
