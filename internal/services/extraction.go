package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/MarcusNeufeldt/never-cook-alone/internal/clients/openai"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/logger"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/types"
)

// EncodedImage is the transmissible form of an uploaded photo: raw bytes
// held in memory plus the MIME type they were sniffed as. Encoding never
// touches the network.
type EncodedImage struct {
	MimeType string
	Data     []byte
}

// DataURL inlines the image for a multimodal request.
func (e EncodedImage) DataURL() string {
	return openai.DataURL(e.MimeType, e.Data)
}

type ExtractionService interface {
	// EncodeImage reads the uploaded blob into an EncodedImage. It fails
	// with an ImageReadError before any network call when the blob cannot
	// be read or is not an image.
	EncodeImage(r io.Reader) (*EncodedImage, error)

	// Extract sends one multimodal request and parses the response into a
	// CandidateRecipe. It either returns a complete candidate (possibly
	// carrying field-level Issues) or no candidate at all. The raw model
	// text is returned alongside for call logging. A single attempt per
	// call: retry is the user's re-trigger, not ours.
	Extract(ctx context.Context, img *EncodedImage, categories []*types.Category) (*types.CandidateRecipe, string, error)
}

type extractionService struct {
	log    *logger.Logger
	client openai.Client
}

func NewExtractionService(log *logger.Logger, client openai.Client) ExtractionService {
	serviceLog := log.With("service", "ExtractionService")
	return &extractionService{log: serviceLog, client: client}
}

func (es *extractionService) EncodeImage(r io.Reader) (*EncodedImage, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, &ImageReadError{Err: err}
	}
	if len(raw) == 0 {
		return nil, &ImageReadError{Err: fmt.Errorf("empty image payload")}
	}
	mimeType := http.DetectContentType(raw)
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, &ImageReadError{Err: fmt.Errorf("payload is %s, not an image", mimeType)}
	}
	return &EncodedImage{MimeType: mimeType, Data: raw}, nil
}

func (es *extractionService) Extract(ctx context.Context, img *EncodedImage, categories []*types.Category) (*types.CandidateRecipe, string, error) {
	if img == nil {
		return nil, "", &ImageReadError{Err: fmt.Errorf("no image provided")}
	}

	prompt := buildExtractionPrompt(categories)
	raw, err := es.client.GenerateTextWithImages(ctx, extractionSystemPrompt, prompt, []openai.ImageInput{
		{ImageURL: img.DataURL(), Detail: "high"},
	})
	if err != nil {
		return nil, "", &ExtractionServiceError{Err: err}
	}

	candidate, err := parseCandidateRecipe(raw, categories)
	if err != nil {
		es.log.Warn("Extraction response did not parse", "error", err, "raw_len", len(raw))
		return nil, raw, err
	}
	return candidate, raw, nil
}

const extractionSystemPrompt = "You are a culinary vision assistant. " +
	"You analyze food photographs and return structured recipes as JSON. " +
	"Respond with exactly one JSON object and nothing else."

func buildExtractionPrompt(categories []*types.Category) string {
	guide := make([]string, 0, len(categories))
	for _, cat := range categories {
		guide = append(guide, fmt.Sprintf("%d: %s", cat.ID, cat.Name))
	}
	categoryGuide := strings.Join(guide, ", ")

	var b strings.Builder
	b.WriteString("Analyze this food image and provide a structured recipe in the following JSON format:\n")
	b.WriteString(`{
  "name": "Recipe name",
  "description": "Brief description",
  "category_id": number,
  "ingredients": [
    {"name": "ingredient name", "quantity": estimated_quantity, "unit": "g/ml/pieces/etc"}
  ],
  "instructions": [
    {"stepNumber": 1, "instruction": "step description"}
  ],
  "prep_time_minutes": estimated_prep_time,
  "cook_time_minutes": estimated_cook_time,
  "servings": estimated_servings,
  "difficulty_level": "easy/medium/hard"
}`)
	b.WriteString("\n\nBe as accurate as possible in identifying ingredients and steps. ")
	b.WriteString("Provide reasonable estimates for quantities and times.\n")
	b.WriteString("Important: For category_id, ONLY use one of the provided category IDs: ")
	b.WriteString(categoryGuide)
	return b.String()
}

var jsonFenceRe = regexp.MustCompile("```json\n?|\n?```")

// StripJSONFences removes markdown code fences the model sometimes wraps its
// JSON in. Stripping is idempotent: unfenced text passes through unchanged.
func StripJSONFences(s string) string {
	return strings.TrimSpace(jsonFenceRe.ReplaceAllString(s, ""))
}

// parseCandidateRecipe validates the untrusted model output field by field.
// Shape problems (bad JSON, missing required keys) fail the whole parse;
// value problems on category and difficulty are flagged on the candidate and
// defaulted instead.
func parseCandidateRecipe(raw string, categories []*types.Category) (*types.CandidateRecipe, error) {
	clean := StripJSONFences(raw)
	if clean == "" {
		return nil, &ExtractionParseError{Reason: "empty response"}
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(clean), &payload); err != nil {
		return nil, &ExtractionParseError{Reason: "response is not a JSON object", Err: err}
	}

	candidate := &types.CandidateRecipe{}

	name, ok := stringField(payload, "name")
	if !ok || strings.TrimSpace(name) == "" {
		return nil, &ExtractionParseError{Reason: "missing required key \"name\""}
	}
	candidate.Name = strings.TrimSpace(name)

	if desc, ok := stringField(payload, "description"); ok {
		candidate.Description = strings.TrimSpace(desc)
	}

	rawIngredients, ok := payload["ingredients"].([]any)
	if !ok || len(rawIngredients) == 0 {
		return nil, &ExtractionParseError{Reason: "missing required key \"ingredients\""}
	}
	for i, entry := range rawIngredients {
		obj, ok := entry.(map[string]any)
		if !ok {
			return nil, &ExtractionParseError{Reason: fmt.Sprintf("ingredient %d is not an object", i)}
		}
		ingName, ok := stringField(obj, "name")
		if !ok || strings.TrimSpace(ingName) == "" {
			return nil, &ExtractionParseError{Reason: fmt.Sprintf("ingredient %d has no name", i)}
		}
		ing := types.CandidateIngredient{Name: strings.TrimSpace(ingName)}
		ing.Quantity, _ = numberField(obj, "quantity")
		if unit, ok := stringField(obj, "unit"); ok {
			ing.Unit = strings.TrimSpace(unit)
		}
		if ing.Quantity <= 0 {
			candidate.Issues = append(candidate.Issues,
				fmt.Sprintf("ingredient %q has non-positive quantity", ing.Name))
		}
		candidate.Ingredients = append(candidate.Ingredients, ing)
	}

	rawSteps, ok := payload["instructions"].([]any)
	if !ok || len(rawSteps) == 0 {
		return nil, &ExtractionParseError{Reason: "missing required key \"instructions\""}
	}
	for i, entry := range rawSteps {
		obj, ok := entry.(map[string]any)
		if !ok {
			return nil, &ExtractionParseError{Reason: fmt.Sprintf("instruction %d is not an object", i)}
		}
		text, ok := stringField(obj, "instruction")
		if !ok || strings.TrimSpace(text) == "" {
			return nil, &ExtractionParseError{Reason: fmt.Sprintf("instruction %d has no text", i)}
		}
		num, _ := numberField(obj, "stepNumber")
		candidate.Steps = append(candidate.Steps, types.CandidateStep{
			StepNumber:  int(num),
			Instruction: strings.TrimSpace(text),
		})
	}
	// Steps must be 1..N dense. Order by the model's numbering, then
	// renumber by position so gaps or repeats cannot leak downstream.
	sortStepsByNumber(candidate.Steps)
	for i := range candidate.Steps {
		candidate.Steps[i].StepNumber = i + 1
	}

	if catNum, ok := numberField(payload, "category_id"); ok {
		catID := int64(catNum)
		if categoryInSet(catID, categories) {
			candidate.CategoryID = &catID
		} else {
			candidate.Issues = append(candidate.Issues,
				fmt.Sprintf("category_id %d is not in the supplied category set", catID))
		}
	} else {
		candidate.Issues = append(candidate.Issues, "category_id missing from response")
	}

	if prep, ok := numberField(payload, "prep_time_minutes"); ok && prep >= 0 {
		candidate.PrepTimeMinutes = int(prep)
	}
	if cook, ok := numberField(payload, "cook_time_minutes"); ok && cook >= 0 {
		candidate.CookTimeMinutes = int(cook)
	}
	if servings, ok := numberField(payload, "servings"); ok && servings > 0 {
		candidate.Servings = int(servings)
	}

	difficulty, _ := stringField(payload, "difficulty_level")
	difficulty = strings.ToLower(strings.TrimSpace(difficulty))
	if types.ValidDifficulty(difficulty) {
		candidate.DifficultyLevel = difficulty
	} else {
		candidate.DifficultyLevel = types.DifficultyMedium
		candidate.Issues = append(candidate.Issues,
			fmt.Sprintf("difficulty_level %q not recognized, defaulted to %s", difficulty, types.DifficultyMedium))
	}

	return candidate, nil
}

func sortStepsByNumber(steps []types.CandidateStep) {
	for i := 1; i < len(steps); i++ {
		for j := i; j > 0 && steps[j].StepNumber < steps[j-1].StepNumber; j-- {
			steps[j], steps[j-1] = steps[j-1], steps[j]
		}
	}
}

func categoryInSet(id int64, categories []*types.Category) bool {
	for _, cat := range categories {
		if cat.ID == id {
			return true
		}
	}
	return false
}

func stringField(obj map[string]any, key string) (string, bool) {
	v, ok := obj[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func numberField(obj map[string]any, key string) (float64, bool) {
	v, ok := obj[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
