package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/MarcusNeufeldt/never-cook-alone/internal/requestdata"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/services"
)

type CommentHandler struct {
	commentService services.CommentService
}

func NewCommentHandler(commentService services.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

func (ch *CommentHandler) Create(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	comment, err := ch.commentService.Create(c.Request.Context(), recipeID, rd.UserID, req.Content)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "comment_create_failed", err)
		return
	}
	RespondOK(c, comment)
}

func (ch *CommentHandler) ListByRecipe(c *gin.Context) {
	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	comments, err := ch.commentService.ListByRecipe(c.Request.Context(), recipeID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "comment_list_failed", err)
		return
	}
	RespondOK(c, comments)
}

func (ch *CommentHandler) Delete(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	commentID, err := uuid.Parse(c.Param("commentID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	if err := ch.commentService.Delete(c.Request.Context(), commentID, rd.UserID); err != nil {
		RespondError(c, http.StatusInternalServerError, "comment_delete_failed", err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}
