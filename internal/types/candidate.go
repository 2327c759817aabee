package types

// CandidateRecipe is the in-memory recipe structure produced by photo
// extraction. It is never persisted as-is: the caller may let the user review
// and edit it before it is reconciled and written, and it is discarded after
// persistence or on failure.
type CandidateRecipe struct {
	Name            string                `json:"name"`
	Description     string                `json:"description"`
	CategoryID      *int64                `json:"category_id"`
	Ingredients     []CandidateIngredient `json:"ingredients"`
	Steps           []CandidateStep       `json:"instructions"`
	PrepTimeMinutes int                   `json:"prep_time_minutes"`
	CookTimeMinutes int                   `json:"cook_time_minutes"`
	Servings        int                   `json:"servings"`
	DifficultyLevel string                `json:"difficulty_level"`

	// Issues holds field-level data-quality flags (out-of-set category,
	// coerced difficulty). They do not abort extraction.
	Issues []string `json:"issues,omitempty"`
}

type CandidateIngredient struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

type CandidateStep struct {
	StepNumber  int    `json:"stepNumber"`
	Instruction string `json:"instruction"`
}

// ResolvedIngredient is a candidate ingredient whose free-text name has been
// reconciled to a canonical catalog row.
type ResolvedIngredient struct {
	IngredientID int64   `json:"ingredient_id"`
	Name         string  `json:"name"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
}
