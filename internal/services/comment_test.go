package services

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MarcusNeufeldt/never-cook-alone/internal/repos"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/types"
)

func newCommentServiceForTest(t *testing.T, db *gorm.DB) CommentService {
	t.Helper()
	log := testLogger(t)
	return NewCommentService(db, log,
		repos.NewRecipeCommentRepo(db, log),
		repos.NewRecipeRepo(db, log))
}

func TestCommentLifecycle(t *testing.T) {
	db := openTestDB(t)
	cs := newCommentServiceForTest(t, db)
	authorID := uuid.New()
	recipe := persistTestRecipe(t, db, uuid.New())

	comment, err := cs.Create(context.Background(), recipe.ID, authorID, "  Loved this one.  ")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if comment.Content != "Loved this one." {
		t.Fatalf("content not trimmed: %q", comment.Content)
	}

	listed, err := cs.ListByRecipe(context.Background(), recipe.ID)
	if err != nil {
		t.Fatalf("ListByRecipe: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != comment.ID {
		t.Fatalf("listed comments: want 1 with id %s, got %v", comment.ID, listed)
	}

	// Delete is author-scoped; another user's delete is a silent no-op.
	if err := cs.Delete(context.Background(), comment.ID, uuid.New()); err != nil {
		t.Fatalf("non-author Delete: %v", err)
	}
	var count int64
	db.Model(&types.RecipeComment{}).Count(&count)
	if count != 1 {
		t.Fatalf("comment rows after non-author delete: want=1 got=%d", count)
	}

	if err := cs.Delete(context.Background(), comment.ID, authorID); err != nil {
		t.Fatalf("author Delete: %v", err)
	}
	db.Model(&types.RecipeComment{}).Count(&count)
	if count != 0 {
		t.Fatalf("comment rows after author delete: want=0 got=%d", count)
	}
}

func TestCommentRejectsBadInput(t *testing.T) {
	db := openTestDB(t)
	cs := newCommentServiceForTest(t, db)
	recipe := persistTestRecipe(t, db, uuid.New())

	if _, err := cs.Create(context.Background(), recipe.ID, uuid.New(), "   "); err == nil {
		t.Fatalf("blank comment should be rejected")
	}
	if _, err := cs.Create(context.Background(), recipe.ID, uuid.New(), strings.Repeat("a", maxCommentLength+1)); err == nil {
		t.Fatalf("oversized comment should be rejected")
	}
	if _, err := cs.Create(context.Background(), uuid.New(), uuid.New(), "orphan"); err == nil {
		t.Fatalf("comment on missing recipe should be rejected")
	}
}
