package types

import (
	"github.com/google/uuid"
)

type RecipeIngredient struct {
	RecipeID     uuid.UUID   `gorm:"primaryKey;type:uuid;column:recipe_id" json:"recipe_id"`
	IngredientID int64       `gorm:"primaryKey;column:ingredient_id" json:"ingredient_id"`
	Ingredient   *Ingredient `gorm:"foreignKey:IngredientID;references:ID" json:"ingredient,omitempty"`
	Quantity     float64     `gorm:"not null;column:quantity" json:"quantity"`
	Unit         string      `gorm:"column:unit" json:"unit"`
	Notes        *string     `gorm:"column:notes" json:"notes,omitempty"`
}

func (RecipeIngredient) TableName() string {
	return "recipe_ingredients"
}
