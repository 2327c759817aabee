package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/MarcusNeufeldt/never-cook-alone/internal/clients/openai"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/types"
)

// fakeCompletionClient returns canned text, or an error, for every call.
type fakeCompletionClient struct {
	response string
	err      error
	calls    int
}

func (f *fakeCompletionClient) GenerateText(ctx context.Context, system, user string) (string, error) {
	f.calls++
	return f.response, f.err
}

func (f *fakeCompletionClient) GenerateTextWithImages(ctx context.Context, system, user string, images []openai.ImageInput) (string, error) {
	f.calls++
	return f.response, f.err
}

func (f *fakeCompletionClient) CreateConversation(ctx context.Context) (string, error) {
	return "conv_test", f.err
}

func (f *fakeCompletionClient) GenerateTextInConversation(ctx context.Context, conversationID, instructions, user string) (string, error) {
	f.calls++
	return f.response, f.err
}

func (f *fakeCompletionClient) Model() string { return "fake-model" }

func testCategories() []*types.Category {
	return []*types.Category{
		{ID: 1, Name: "Breakfast"},
		{ID: 2, Name: "Dinner"},
	}
}

const pancakesJSON = `{
  "name": "Fluffy Pancakes",
  "description": "Golden pancakes from scratch",
  "category_id": 1,
  "ingredients": [
    {"name": "Flour", "quantity": 200, "unit": "g"},
    {"name": "Milk", "quantity": 300, "unit": "ml"},
    {"name": "Eggs", "quantity": 2, "unit": "pieces"}
  ],
  "instructions": [
    {"stepNumber": 1, "instruction": "Whisk the dry ingredients."},
    {"stepNumber": 2, "instruction": "Add milk and eggs."},
    {"stepNumber": 3, "instruction": "Fry until golden."}
  ],
  "prep_time_minutes": 10,
  "cook_time_minutes": 15,
  "servings": 4,
  "difficulty_level": "easy"
}`

func testImage() *EncodedImage {
	return &EncodedImage{MimeType: "image/png", Data: []byte{0x89, 0x50, 0x4E, 0x47}}
}

func TestStripJSONFencesIsIdempotent(t *testing.T) {
	fenced := "```json\n{\"a\":1}\n```"
	once := StripJSONFences(fenced)
	if once != `{"a":1}` {
		t.Fatalf("strip fenced: want=%q got=%q", `{"a":1}`, once)
	}
	if twice := StripJSONFences(once); twice != once {
		t.Fatalf("strip unfenced changed text: want=%q got=%q", once, twice)
	}
}

func TestExtractParsesCompleteResponse(t *testing.T) {
	client := &fakeCompletionClient{response: "```json\n" + pancakesJSON + "\n```"}
	es := NewExtractionService(testLogger(t), client)

	candidate, _, err := es.Extract(context.Background(), testImage(), testCategories())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if candidate.Name != "Fluffy Pancakes" {
		t.Fatalf("name: want=%q got=%q", "Fluffy Pancakes", candidate.Name)
	}
	if candidate.CategoryID == nil || *candidate.CategoryID != 1 {
		t.Fatalf("category: want=1 got=%v", candidate.CategoryID)
	}
	if len(candidate.Ingredients) != 3 {
		t.Fatalf("ingredient count: want=3 got=%d", len(candidate.Ingredients))
	}
	if len(candidate.Steps) != 3 {
		t.Fatalf("step count: want=3 got=%d", len(candidate.Steps))
	}
	if candidate.DifficultyLevel != types.DifficultyEasy {
		t.Fatalf("difficulty: want=easy got=%q", candidate.DifficultyLevel)
	}
	if len(candidate.Issues) != 0 {
		t.Fatalf("issues on clean response: got=%v", candidate.Issues)
	}
	if client.calls != 1 {
		t.Fatalf("model calls: want=1 got=%d", client.calls)
	}
}

func TestExtractRejectsMalformedJSON(t *testing.T) {
	client := &fakeCompletionClient{response: "this dish looks delicious but I cannot describe it"}
	es := NewExtractionService(testLogger(t), client)

	_, raw, err := es.Extract(context.Background(), testImage(), testCategories())
	var parseErr *ExtractionParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("want ExtractionParseError, got %T: %v", err, err)
	}
	if raw == "" {
		t.Fatalf("raw response should survive a parse failure")
	}
}

func TestExtractRequiredKeys(t *testing.T) {
	cases := []struct {
		name string
		json string
	}{
		{"missing_name", `{"ingredients":[{"name":"salt"}],"instructions":[{"stepNumber":1,"instruction":"mix"}]}`},
		{"missing_ingredients", `{"name":"Soup","instructions":[{"stepNumber":1,"instruction":"mix"}]}`},
		{"empty_ingredients", `{"name":"Soup","ingredients":[],"instructions":[{"stepNumber":1,"instruction":"mix"}]}`},
		{"missing_instructions", `{"name":"Soup","ingredients":[{"name":"salt"}]}`},
		{"ingredient_without_name", `{"name":"Soup","ingredients":[{"quantity":1}],"instructions":[{"stepNumber":1,"instruction":"mix"}]}`},
		{"instruction_without_text", `{"name":"Soup","ingredients":[{"name":"salt"}],"instructions":[{"stepNumber":1}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := &fakeCompletionClient{response: tc.json}
			es := NewExtractionService(testLogger(t), client)
			_, _, err := es.Extract(context.Background(), testImage(), testCategories())
			var parseErr *ExtractionParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("want ExtractionParseError, got %T: %v", err, err)
			}
		})
	}
}

func TestExtractFlagsUnknownCategory(t *testing.T) {
	response := `{"name":"Soup","category_id":99,"ingredients":[{"name":"salt","quantity":1,"unit":"g"}],"instructions":[{"stepNumber":1,"instruction":"mix"}],"difficulty_level":"easy"}`
	client := &fakeCompletionClient{response: response}
	es := NewExtractionService(testLogger(t), client)

	candidate, _, err := es.Extract(context.Background(), testImage(), testCategories())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if candidate.CategoryID != nil {
		t.Fatalf("unknown category should not be set, got=%v", *candidate.CategoryID)
	}
	if len(candidate.Issues) == 0 {
		t.Fatalf("unknown category should be flagged")
	}
}

func TestExtractDefaultsUnknownDifficulty(t *testing.T) {
	response := `{"name":"Soup","category_id":1,"ingredients":[{"name":"salt","quantity":1,"unit":"g"}],"instructions":[{"stepNumber":1,"instruction":"mix"}],"difficulty_level":"impossible"}`
	client := &fakeCompletionClient{response: response}
	es := NewExtractionService(testLogger(t), client)

	candidate, _, err := es.Extract(context.Background(), testImage(), testCategories())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if candidate.DifficultyLevel != types.DifficultyMedium {
		t.Fatalf("difficulty: want=medium got=%q", candidate.DifficultyLevel)
	}
	found := false
	for _, issue := range candidate.Issues {
		if strings.Contains(issue, "difficulty") {
			found = true
		}
	}
	if !found {
		t.Fatalf("coerced difficulty should be flagged, issues=%v", candidate.Issues)
	}
}

func TestExtractRenumbersSteps(t *testing.T) {
	response := `{"name":"Soup","category_id":1,"ingredients":[{"name":"salt","quantity":1,"unit":"g"}],"instructions":[
		{"stepNumber":7,"instruction":"third"},
		{"stepNumber":2,"instruction":"first"},
		{"stepNumber":5,"instruction":"second"}
	],"difficulty_level":"easy"}`
	client := &fakeCompletionClient{response: response}
	es := NewExtractionService(testLogger(t), client)

	candidate, _, err := es.Extract(context.Background(), testImage(), testCategories())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	want := []string{"first", "second", "third"}
	for i, step := range candidate.Steps {
		if step.StepNumber != i+1 {
			t.Fatalf("step %d: number want=%d got=%d", i, i+1, step.StepNumber)
		}
		if step.Instruction != want[i] {
			t.Fatalf("step %d: instruction want=%q got=%q", i, want[i], step.Instruction)
		}
	}
}

func TestExtractWrapsClientFailure(t *testing.T) {
	client := &fakeCompletionClient{err: fmt.Errorf("upstream down")}
	es := NewExtractionService(testLogger(t), client)

	_, _, err := es.Extract(context.Background(), testImage(), testCategories())
	var svcErr *ExtractionServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("want ExtractionServiceError, got %T: %v", err, err)
	}
}

func TestEncodeImageRejectsNonImage(t *testing.T) {
	es := NewExtractionService(testLogger(t), &fakeCompletionClient{})

	_, err := es.EncodeImage(strings.NewReader("name,quantity\nflour,200\n"))
	var imgErr *ImageReadError
	if !errors.As(err, &imgErr) {
		t.Fatalf("want ImageReadError, got %T: %v", err, err)
	}
}

func TestEncodeImageDetectsPNG(t *testing.T) {
	es := NewExtractionService(testLogger(t), &fakeCompletionClient{})

	pngHeader := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}
	img, err := es.EncodeImage(bytes.NewReader(pngHeader))
	if err != nil {
		t.Fatalf("EncodeImage: %v", err)
	}
	if img.MimeType != "image/png" {
		t.Fatalf("mime: want=image/png got=%q", img.MimeType)
	}
	if !strings.HasPrefix(img.DataURL(), "data:image/png;base64,") {
		t.Fatalf("data url prefix wrong: %q", img.DataURL()[:40])
	}
}
