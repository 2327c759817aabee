package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// MinCookTimeMinutes is the domain floor applied to model-estimated cook
// times after extraction.
const MinCookTimeMinutes = 5

func ValidDifficulty(level string) bool {
	switch level {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

type Recipe struct {
	ID              uuid.UUID          `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name            string             `gorm:"not null;column:name" json:"name"`
	Description     string             `gorm:"column:description" json:"description"`
	CategoryID      *int64             `gorm:"column:category_id" json:"category_id"`
	Category        *Category          `gorm:"foreignKey:CategoryID;references:ID" json:"category,omitempty"`
	PrepTimeMinutes int                `gorm:"column:prep_time_minutes" json:"prep_time_minutes"`
	CookTimeMinutes int                `gorm:"column:cook_time_minutes" json:"cook_time_minutes"`
	Servings        int                `gorm:"column:servings" json:"servings"`
	DifficultyLevel string             `gorm:"column:difficulty_level" json:"difficulty_level"`
	ImageURL        string             `gorm:"column:image_url" json:"image_url"`
	AuthorID        uuid.UUID          `gorm:"index;not null;column:author_id" json:"author_id"`
	IsFeatured      bool               `gorm:"not null;default:false;column:is_featured" json:"is_featured"`
	Ingredients     []RecipeIngredient `gorm:"foreignKey:RecipeID;references:ID" json:"ingredients,omitempty"`
	Steps           []RecipeStep       `gorm:"foreignKey:RecipeID;references:ID" json:"steps,omitempty"`
	CreatedAt       time.Time          `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt       time.Time          `gorm:"not null;default:now()" json:"updated_at"`
}

func (Recipe) TableName() string {
	return "recipes"
}
