package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/MarcusNeufeldt/never-cook-alone/internal/logger"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/types"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := utils.GetEnv("POSTGRES_NAME", "nevercookalone", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	serviceLog.Info("Connecting to Postgres...")
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		serviceLog.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		serviceLog.Error("Failed to enable uuid-ossp extension", "error", err)
		return nil, fmt.Errorf("failed to enable uuid-ossp extension: %w", err)
	}

	return &PostgresService{db: db, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	err := s.db.AutoMigrate(
		&types.User{},
		&types.UserToken{},
		&types.Category{},
		&types.Ingredient{},
		&types.Recipe{},
		&types.RecipeIngredient{},
		&types.RecipeStep{},
		&types.RecipeView{},
		&types.RecipeComment{},
		&types.ExtractionLog{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}

	// The ingredient catalog's find-or-create protocol is only correct if the
	// store itself enforces name uniqueness atomically. The index is on
	// LOWER(name) so matching is case-insensitive by construction, not by
	// collation accident.
	if err := s.db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_ingredients_name_lower
		ON "ingredients" (LOWER("name"))
	`).Error; err != nil {
		return fmt.Errorf("failed to create unique index on ingredients.name: %w", err)
	}

	s.log.Info("Configuring foreign key relationships for postgres tables...")
	constraints := []struct {
		name string
		ddl  string
	}{
		{"fk_user_tokens_user_id", `
			ALTER TABLE "user_tokens"
			ADD CONSTRAINT "fk_user_tokens_user_id"
			FOREIGN KEY ("user_id") REFERENCES "users"("id")
			ON DELETE CASCADE`},
		{"fk_recipes_category_id", `
			ALTER TABLE "recipes"
			ADD CONSTRAINT "fk_recipes_category_id"
			FOREIGN KEY ("category_id") REFERENCES "categories"("id")
			ON DELETE SET NULL`},
		{"fk_recipe_ingredients_recipe_id", `
			ALTER TABLE "recipe_ingredients"
			ADD CONSTRAINT "fk_recipe_ingredients_recipe_id"
			FOREIGN KEY ("recipe_id") REFERENCES "recipes"("id")
			ON DELETE CASCADE`},
		{"fk_recipe_ingredients_ingredient_id", `
			ALTER TABLE "recipe_ingredients"
			ADD CONSTRAINT "fk_recipe_ingredients_ingredient_id"
			FOREIGN KEY ("ingredient_id") REFERENCES "ingredients"("id")`},
		{"fk_recipe_steps_recipe_id", `
			ALTER TABLE "recipe_steps"
			ADD CONSTRAINT "fk_recipe_steps_recipe_id"
			FOREIGN KEY ("recipe_id") REFERENCES "recipes"("id")
			ON DELETE CASCADE`},
		{"fk_recipe_views_recipe_id", `
			ALTER TABLE "recipe_views"
			ADD CONSTRAINT "fk_recipe_views_recipe_id"
			FOREIGN KEY ("recipe_id") REFERENCES "recipes"("id")
			ON DELETE CASCADE`},
		{"fk_recipe_comments_recipe_id", `
			ALTER TABLE "recipe_comments"
			ADD CONSTRAINT "fk_recipe_comments_recipe_id"
			FOREIGN KEY ("recipe_id") REFERENCES "recipes"("id")
			ON DELETE CASCADE`},
	}
	for _, c := range constraints {
		var exists bool
		if err := s.db.Raw(
			`SELECT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = ?)`, c.name,
		).Scan(&exists).Error; err != nil {
			return fmt.Errorf("failed to check constraint %s: %w", c.name, err)
		}
		if exists {
			continue
		}
		if err := s.db.Exec(c.ddl).Error; err != nil {
			return fmt.Errorf("failed to add %s: %w", c.name, err)
		}
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
