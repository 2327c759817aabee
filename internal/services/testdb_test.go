package services

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/MarcusNeufeldt/never-cook-alone/internal/logger"
)

// openTestDB gives each test an isolated in-memory store with the recipe
// schema. Tables are created by hand because the production column defaults
// are postgres expressions.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	// One connection serializes concurrent writers in tests.
	sqlDB.SetMaxOpenConns(1)

	ddl := []string{
		`CREATE TABLE users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			avatar_bucket_key TEXT,
			avatar_url TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE categories (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			description TEXT,
			slug TEXT NOT NULL UNIQUE,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE ingredients (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE UNIQUE INDEX idx_ingredients_name_lower ON ingredients (LOWER(name))`,
		`CREATE TABLE recipes (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			category_id INTEGER,
			prep_time_minutes INTEGER,
			cook_time_minutes INTEGER,
			servings INTEGER,
			difficulty_level TEXT,
			image_url TEXT,
			author_id TEXT NOT NULL,
			is_featured BOOLEAN NOT NULL DEFAULT FALSE,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE recipe_ingredients (
			recipe_id TEXT NOT NULL,
			ingredient_id INTEGER NOT NULL,
			quantity REAL,
			unit TEXT,
			notes TEXT,
			PRIMARY KEY (recipe_id, ingredient_id)
		)`,
		`CREATE TABLE recipe_steps (
			recipe_id TEXT NOT NULL,
			step_number INTEGER NOT NULL,
			instruction TEXT NOT NULL,
			image_url TEXT,
			PRIMARY KEY (recipe_id, step_number)
		)`,
		`CREATE TABLE user_tokens (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			access_token TEXT NOT NULL UNIQUE,
			refresh_token TEXT NOT NULL UNIQUE,
			expires_at DATETIME,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE recipe_views (
			user_id TEXT NOT NULL,
			recipe_id TEXT NOT NULL,
			viewed_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, recipe_id)
		)`,
		`CREATE TABLE recipe_comments (
			id TEXT PRIMARY KEY,
			recipe_id TEXT NOT NULL,
			author_id TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE extraction_logs (
			id TEXT PRIMARY KEY,
			author_id TEXT NOT NULL,
			model TEXT,
			duration_ms INTEGER,
			outcome TEXT NOT NULL,
			raw_response TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	for _, stmt := range ddl {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("schema: %v", err)
		}
	}
	return db
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}
