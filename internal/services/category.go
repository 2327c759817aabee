package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/MarcusNeufeldt/never-cook-alone/internal/logger"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/repos"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/types"
)

type CategoryService interface {
	List(ctx context.Context) ([]*types.Category, error)
	Create(ctx context.Context, name, description string) (*types.Category, error)

	// Seed inserts the default categories if the table is empty.
	Seed(ctx context.Context) error
}

type categoryService struct {
	db           *gorm.DB
	log          *logger.Logger
	categoryRepo repos.CategoryRepo
}

// Starter categories for a fresh install.
var defaultCategories = []string{
	"Breakfast",
	"Lunch",
	"Dinner",
	"Desserts",
	"Snacks",
	"Drinks",
	"Salads",
	"Soups",
}

func NewCategoryService(db *gorm.DB, log *logger.Logger, categoryRepo repos.CategoryRepo) CategoryService {
	serviceLog := log.With("service", "CategoryService")
	return &categoryService{db: db, log: serviceLog, categoryRepo: categoryRepo}
}

func (cs *categoryService) List(ctx context.Context) ([]*types.Category, error) {
	return cs.categoryRepo.List(ctx, nil)
}

func (cs *categoryService) Create(ctx context.Context, name, description string) (*types.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("category name required")
	}
	category := &types.Category{
		Name: name,
		Slug: slugify(name),
	}
	if desc := strings.TrimSpace(description); desc != "" {
		category.Description = &desc
	}
	created, err := cs.categoryRepo.Create(ctx, nil, []*types.Category{category})
	if err != nil {
		return nil, err
	}
	return created[0], nil
}

func (cs *categoryService) Seed(ctx context.Context) error {
	existing, err := cs.categoryRepo.List(ctx, nil)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	seed := make([]*types.Category, 0, len(defaultCategories))
	for _, name := range defaultCategories {
		seed = append(seed, &types.Category{Name: name, Slug: slugify(name)})
	}
	if _, err := cs.categoryRepo.Create(ctx, nil, seed); err != nil {
		return err
	}
	cs.log.Info("Seeded default categories", "count", len(seed))
	return nil
}

func slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.Join(strings.Fields(s), "-")
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
