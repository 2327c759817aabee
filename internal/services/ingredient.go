package services

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/MarcusNeufeldt/never-cook-alone/internal/logger"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/normalization"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/repos"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/types"
)

// reconcileConcurrency bounds in-flight catalog writes so one extraction
// cannot drain the connection pool.
const reconcileConcurrency = 8

// ReconcileResult reports a reconciliation batch: resolved items in
// completion order, plus the candidates that could not be resolved.
type ReconcileResult struct {
	Resolved []types.ResolvedIngredient
	Dropped  []ReconciliationError
}

type IngredientService interface {
	// Reconcile resolves each candidate name to a canonical catalog row,
	// creating rows for names the catalog has not seen. Items are
	// independent and processed concurrently; one failing item is dropped
	// and reported without aborting the rest.
	Reconcile(ctx context.Context, candidates []types.CandidateIngredient) (*ReconcileResult, error)
	List(ctx context.Context) ([]*types.Ingredient, error)
}

type ingredientService struct {
	db             *gorm.DB
	log            *logger.Logger
	ingredientRepo repos.IngredientRepo
}

func NewIngredientService(db *gorm.DB, log *logger.Logger, ingredientRepo repos.IngredientRepo) IngredientService {
	serviceLog := log.With("service", "IngredientService")
	return &ingredientService{db: db, log: serviceLog, ingredientRepo: ingredientRepo}
}

func (is *ingredientService) Reconcile(ctx context.Context, candidates []types.CandidateIngredient) (*ReconcileResult, error) {
	result := &ReconcileResult{}
	if len(candidates) == 0 {
		return result, nil
	}

	// Duplicate names within one batch would race against themselves; keep
	// the first occurrence of each canonical name.
	seen := make(map[string]bool, len(candidates))
	unique := make([]types.CandidateIngredient, 0, len(candidates))
	for _, c := range candidates {
		key := normalization.CanonicalName(c.Name)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, c)
	}

	var mu sync.Mutex
	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(reconcileConcurrency)

	for _, candidate := range unique {
		candidate := candidate
		g.Go(func() error {
			ingredient, created, err := is.ingredientRepo.FindOrCreate(groupCtx, nil, candidate.Name)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				recErr := ReconciliationError{IngredientName: candidate.Name, Err: err}
				is.log.Warn("Dropping unresolvable ingredient", "name", candidate.Name, "error", err)
				result.Dropped = append(result.Dropped, recErr)
				return nil
			}
			if created {
				is.log.Debug("Created catalog ingredient", "name", ingredient.Name, "id", ingredient.ID)
			}
			result.Resolved = append(result.Resolved, types.ResolvedIngredient{
				IngredientID: ingredient.ID,
				Name:         ingredient.Name,
				Quantity:     candidate.Quantity,
				Unit:         candidate.Unit,
			})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if len(result.Dropped) > 0 {
		is.log.Warn("Reconciliation dropped ingredients", "dropped", len(result.Dropped), "resolved", len(result.Resolved))
	}
	return result, nil
}

func (is *ingredientService) List(ctx context.Context) ([]*types.Ingredient, error) {
	return is.ingredientRepo.List(ctx, nil)
}
