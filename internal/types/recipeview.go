package types

import (
	"time"

	"github.com/google/uuid"
)

type RecipeView struct {
	UserID    uuid.UUID `gorm:"primaryKey;type:uuid;column:user_id" json:"user_id"`
	RecipeID  uuid.UUID `gorm:"primaryKey;type:uuid;column:recipe_id" json:"recipe_id"`
	ViewedAt  time.Time `gorm:"not null;default:now();column:viewed_at" json:"viewed_at"`
}

func (RecipeView) TableName() string {
	return "recipe_views"
}
