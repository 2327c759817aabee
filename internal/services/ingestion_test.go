package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MarcusNeufeldt/never-cook-alone/internal/repos"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/types"
)

func newIngestionServiceForTest(t *testing.T, db *gorm.DB, client *fakeCompletionClient) IngestionService {
	t.Helper()
	log := testLogger(t)
	rs, is := newRecipeServiceForTest(t, db)
	return NewIngestionService(db, log,
		NewExtractionService(log, client),
		is,
		rs,
		repos.NewCategoryRepo(db, log),
		repos.NewExtractionLogRepo(db, log),
		client.Model())
}

func pngBytes() []byte {
	return []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}
}

func TestExtractAppliesCookTimeFloor(t *testing.T) {
	db := openTestDB(t)
	response := `{"name":"Toast","category_id":1,"ingredients":[{"name":"bread","quantity":2,"unit":"slices"}],"instructions":[{"stepNumber":1,"instruction":"toast it"}],"cook_time_minutes":2,"difficulty_level":"easy"}`
	svc := newIngestionServiceForTest(t, db, &fakeCompletionClient{response: response})

	candidate, err := svc.Extract(context.Background(), bytes.NewReader(pngBytes()), uuid.New())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if candidate.CookTimeMinutes != types.MinCookTimeMinutes {
		t.Fatalf("cook time floor: want=%d got=%d", types.MinCookTimeMinutes, candidate.CookTimeMinutes)
	}
}

func TestExtractAndPersistEndToEnd(t *testing.T) {
	db := openTestDB(t)
	svc := newIngestionServiceForTest(t, db, &fakeCompletionClient{response: "```json\n" + pancakesJSON + "\n```"})
	authorID := uuid.New()

	// Seed the category set the extraction prompt advertises.
	if err := db.Exec(`INSERT INTO categories (id, name, slug) VALUES (1, 'Breakfast', 'breakfast'), (2, 'Dinner', 'dinner')`).Error; err != nil {
		t.Fatalf("seed categories: %v", err)
	}

	result, err := svc.ExtractAndPersist(context.Background(), bytes.NewReader(pngBytes()), authorID, "https://cdn.example/p.jpg")
	if err != nil {
		t.Fatalf("ExtractAndPersist: %v", err)
	}
	if result.Recipe == nil || result.Recipe.ID == uuid.Nil {
		t.Fatalf("no recipe returned")
	}
	if result.Recipe.Name != "Fluffy Pancakes" {
		t.Fatalf("name: want=Fluffy Pancakes got=%q", result.Recipe.Name)
	}
	if result.Recipe.CategoryID == nil || *result.Recipe.CategoryID != 1 {
		t.Fatalf("category: want=1 got=%v", result.Recipe.CategoryID)
	}
	if len(result.Dropped) != 0 {
		t.Fatalf("dropped ingredients: want=0 got=%d", len(result.Dropped))
	}

	var ingredientCount, linkCount, stepCount, logCount int64
	db.Model(&types.Ingredient{}).Count(&ingredientCount)
	db.Model(&types.RecipeIngredient{}).Count(&linkCount)
	db.Model(&types.RecipeStep{}).Count(&stepCount)
	db.Model(&types.ExtractionLog{}).Count(&logCount)
	if ingredientCount != 3 || linkCount != 3 || stepCount != 3 {
		t.Fatalf("row counts: want=3/3/3 got=%d/%d/%d", ingredientCount, linkCount, stepCount)
	}
	if logCount != 1 {
		t.Fatalf("extraction log rows: want=1 got=%d", logCount)
	}

	var entry types.ExtractionLog
	if err := db.First(&entry).Error; err != nil {
		t.Fatalf("load log: %v", err)
	}
	if entry.Outcome != "success" {
		t.Fatalf("log outcome: want=success got=%q", entry.Outcome)
	}
	if entry.AuthorID != authorID {
		t.Fatalf("log author: want=%s got=%s", authorID, entry.AuthorID)
	}
	if entry.Model != "fake-model" {
		t.Fatalf("log model: want=fake-model got=%q", entry.Model)
	}
}

func TestFailedExtractionIsStillLogged(t *testing.T) {
	db := openTestDB(t)
	svc := newIngestionServiceForTest(t, db, &fakeCompletionClient{response: "not json at all"})

	_, err := svc.Extract(context.Background(), bytes.NewReader(pngBytes()), uuid.New())
	if err == nil {
		t.Fatalf("unparseable response should fail extraction")
	}

	var entry types.ExtractionLog
	if err := db.First(&entry).Error; err != nil {
		t.Fatalf("load log: %v", err)
	}
	if entry.Outcome != "error" {
		t.Fatalf("log outcome: want=error got=%q", entry.Outcome)
	}
}

func TestReusedIngredientsDoNotDuplicateCatalogRows(t *testing.T) {
	db := openTestDB(t)
	svc := newIngestionServiceForTest(t, db, &fakeCompletionClient{response: "```json\n" + pancakesJSON + "\n```"})

	if _, err := svc.ExtractAndPersist(context.Background(), bytes.NewReader(pngBytes()), uuid.New(), ""); err != nil {
		t.Fatalf("first ingestion: %v", err)
	}
	if _, err := svc.ExtractAndPersist(context.Background(), bytes.NewReader(pngBytes()), uuid.New(), ""); err != nil {
		t.Fatalf("second ingestion: %v", err)
	}

	var ingredientCount, recipeCount int64
	db.Model(&types.Ingredient{}).Count(&ingredientCount)
	db.Model(&types.Recipe{}).Count(&recipeCount)
	if recipeCount != 2 {
		t.Fatalf("recipes: want=2 got=%d", recipeCount)
	}
	// Both recipes reference the same three catalog rows.
	if ingredientCount != 3 {
		t.Fatalf("catalog rows: want=3 got=%d", ingredientCount)
	}
}
