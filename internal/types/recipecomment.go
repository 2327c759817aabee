package types

import (
	"time"

	"github.com/google/uuid"
)

type RecipeComment struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	RecipeID  uuid.UUID `gorm:"index;not null;column:recipe_id" json:"recipe_id"`
	AuthorID  uuid.UUID `gorm:"index;not null;column:author_id" json:"author_id"`
	Author    *User     `gorm:"foreignKey:AuthorID;references:ID" json:"author,omitempty"`
	Content   string    `gorm:"not null;column:content" json:"content"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (RecipeComment) TableName() string {
	return "recipe_comments"
}
