package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"gorm.io/gorm"

	"github.com/MarcusNeufeldt/never-cook-alone/internal/repos"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/types"
)

func TestReconcileResolvesAgainstExistingCatalog(t *testing.T) {
	db := openTestDB(t)
	log := testLogger(t)
	ingredientRepo := repos.NewIngredientRepo(db, log)
	svc := NewIngredientService(db, log, ingredientRepo)

	existing, created, err := ingredientRepo.FindOrCreate(context.Background(), nil, "Tomato")
	if err != nil || !created {
		t.Fatalf("seed tomato: created=%v err=%v", created, err)
	}

	result, err := svc.Reconcile(context.Background(), []types.CandidateIngredient{
		{Name: "tomato", Quantity: 2, Unit: "pieces"},
		{Name: "Basil", Quantity: 10, Unit: "g"},
	})
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(result.Resolved) != 2 {
		t.Fatalf("resolved count: want=2 got=%d", len(result.Resolved))
	}
	if len(result.Dropped) != 0 {
		t.Fatalf("dropped: want=0 got=%d", len(result.Dropped))
	}
	for _, ri := range result.Resolved {
		if ri.Name == "Tomato" && ri.IngredientID != existing.ID {
			t.Fatalf("tomato should resolve to existing row %d, got %d", existing.ID, ri.IngredientID)
		}
	}

	var count int64
	if err := db.Model(&types.Ingredient{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("catalog rows: want=2 got=%d", count)
	}
}

func TestReconcileDeduplicatesWithinBatch(t *testing.T) {
	db := openTestDB(t)
	log := testLogger(t)
	svc := NewIngredientService(db, log, repos.NewIngredientRepo(db, log))

	result, err := svc.Reconcile(context.Background(), []types.CandidateIngredient{
		{Name: "Egg", Quantity: 2},
		{Name: "egg ", Quantity: 3},
		{Name: "  EGG", Quantity: 4},
	})
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(result.Resolved) != 1 {
		t.Fatalf("resolved count: want=1 got=%d", len(result.Resolved))
	}
	var count int64
	if err := db.Model(&types.Ingredient{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("catalog rows: want=1 got=%d", count)
	}
}

func TestFindOrCreateFallsBackOnUniquenessConflict(t *testing.T) {
	db := openTestDB(t)
	log := testLogger(t)
	ingredientRepo := repos.NewIngredientRepo(db, log)

	first, created, err := ingredientRepo.FindOrCreate(context.Background(), nil, "Olive Oil")
	if err != nil || !created {
		t.Fatalf("first FindOrCreate: created=%v err=%v", created, err)
	}
	second, created, err := ingredientRepo.FindOrCreate(context.Background(), nil, "olive oil")
	if err != nil {
		t.Fatalf("second FindOrCreate: %v", err)
	}
	if created {
		t.Fatalf("second call should resolve, not create")
	}
	if second.ID != first.ID {
		t.Fatalf("ids should converge: want=%d got=%d", first.ID, second.ID)
	}
}

func TestFindOrCreateConvergesUnderConcurrency(t *testing.T) {
	db := openTestDB(t)
	log := testLogger(t)
	ingredientRepo := repos.NewIngredientRepo(db, log)

	const workers = 8
	ids := make([]int64, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ing, _, err := ingredientRepo.FindOrCreate(context.Background(), nil, "Paprika")
			if err != nil {
				errs[i] = err
				return
			}
			ids[i] = ing.ID
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("worker %d: %v", i, err)
		}
	}
	// Losers of the insert race must resolve to the winner's row.
	for i := 1; i < workers; i++ {
		if ids[i] != ids[0] {
			t.Fatalf("worker %d id diverged: want=%d got=%d", i, ids[0], ids[i])
		}
	}
	var count int64
	if err := db.Model(&types.Ingredient{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("catalog rows: want=1 got=%d", count)
	}
}

// flakyIngredientRepo fails every FindOrCreate for one specific name.
type flakyIngredientRepo struct {
	repos.IngredientRepo
	failName string
}

func (f *flakyIngredientRepo) FindOrCreate(ctx context.Context, tx *gorm.DB, name string) (*types.Ingredient, bool, error) {
	if name == f.failName {
		return nil, false, fmt.Errorf("simulated store failure")
	}
	return f.IngredientRepo.FindOrCreate(ctx, tx, name)
}

func TestReconcileDropsFailingItemWithoutAborting(t *testing.T) {
	db := openTestDB(t)
	log := testLogger(t)
	repo := &flakyIngredientRepo{
		IngredientRepo: repos.NewIngredientRepo(db, log),
		failName:       "Saffron",
	}
	svc := NewIngredientService(db, log, repo)

	result, err := svc.Reconcile(context.Background(), []types.CandidateIngredient{
		{Name: "Rice", Quantity: 200, Unit: "g"},
		{Name: "Saffron", Quantity: 1, Unit: "g"},
		{Name: "Chicken", Quantity: 500, Unit: "g"},
	})
	if err != nil {
		t.Fatalf("Reconcile should not abort: %v", err)
	}
	if len(result.Resolved) != 2 {
		t.Fatalf("resolved count: want=2 got=%d", len(result.Resolved))
	}
	if len(result.Dropped) != 1 {
		t.Fatalf("dropped count: want=1 got=%d", len(result.Dropped))
	}
	if result.Dropped[0].IngredientName != "Saffron" {
		t.Fatalf("dropped name: want=Saffron got=%q", result.Dropped[0].IngredientName)
	}
}
