package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MarcusNeufeldt/never-cook-alone/internal/logger"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/repos"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/types"
)

const maxCommentLength = 2000

type CommentService interface {
	Create(ctx context.Context, recipeID, authorID uuid.UUID, content string) (*types.RecipeComment, error)
	ListByRecipe(ctx context.Context, recipeID uuid.UUID) ([]*types.RecipeComment, error)
	Delete(ctx context.Context, id, authorID uuid.UUID) error
}

type commentService struct {
	db          *gorm.DB
	log         *logger.Logger
	commentRepo repos.RecipeCommentRepo
	recipeRepo  repos.RecipeRepo
}

func NewCommentService(db *gorm.DB, log *logger.Logger, commentRepo repos.RecipeCommentRepo, recipeRepo repos.RecipeRepo) CommentService {
	serviceLog := log.With("service", "CommentService")
	return &commentService{
		db:          db,
		log:         serviceLog,
		commentRepo: commentRepo,
		recipeRepo:  recipeRepo,
	}
}

func (cs *commentService) Create(ctx context.Context, recipeID, authorID uuid.UUID, content string) (*types.RecipeComment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("comment content required")
	}
	if len(content) > maxCommentLength {
		return nil, fmt.Errorf("comment exceeds %d characters", maxCommentLength)
	}
	if _, err := cs.recipeRepo.GetByID(ctx, nil, recipeID); err != nil {
		return nil, fmt.Errorf("recipe not found: %w", err)
	}
	comment := &types.RecipeComment{
		ID:       uuid.New(),
		RecipeID: recipeID,
		AuthorID: authorID,
		Content:  content,
	}
	return cs.commentRepo.Create(ctx, nil, comment)
}

func (cs *commentService) ListByRecipe(ctx context.Context, recipeID uuid.UUID) ([]*types.RecipeComment, error) {
	return cs.commentRepo.ListByRecipeID(ctx, nil, recipeID)
}

func (cs *commentService) Delete(ctx context.Context, id, authorID uuid.UUID) error {
	return cs.commentRepo.Delete(ctx, nil, id, authorID)
}
