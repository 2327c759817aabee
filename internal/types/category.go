package types

import (
	"time"
)

type Category struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"not null;column:name" json:"name"`
	Description *string   `gorm:"column:description" json:"description"`
	Slug        string    `gorm:"uniqueIndex;not null;column:slug" json:"slug"`
	CreatedAt   time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Category) TableName() string {
	return "categories"
}
