package types

import (
	"github.com/google/uuid"
)

// RecipeStep numbers are 1-based and dense per recipe. Renumbering after a
// removal is the caller's responsibility.
type RecipeStep struct {
	RecipeID    uuid.UUID `gorm:"primaryKey;type:uuid;column:recipe_id" json:"recipe_id"`
	StepNumber  int       `gorm:"primaryKey;column:step_number" json:"step_number"`
	Instruction string    `gorm:"not null;column:instruction" json:"instruction"`
	ImageURL    *string   `gorm:"column:image_url" json:"image_url,omitempty"`
}

func (RecipeStep) TableName() string {
	return "recipe_steps"
}
