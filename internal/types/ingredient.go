package types

import (
	"time"
)

// Ingredient rows form the shared global catalog. They are created lazily on
// first reference and never updated or deleted by the ingestion pipeline.
// Uniqueness of name is enforced case-insensitively at the storage layer; the
// index is created in db.AutoMigrateAll because gorm tags cannot express a
// functional index.
type Ingredient struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"not null;column:name" json:"name"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Ingredient) TableName() string {
	return "ingredients"
}
