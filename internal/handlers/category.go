package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MarcusNeufeldt/never-cook-alone/internal/services"
)

type CategoryHandler struct {
	categoryService services.CategoryService
}

func NewCategoryHandler(categoryService services.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

func (ch *CategoryHandler) List(c *gin.Context) {
	categories, err := ch.categoryService.List(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "category_list_failed", err)
		return
	}
	RespondOK(c, categories)
}

func (ch *CategoryHandler) Create(c *gin.Context) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	category, err := ch.categoryService.Create(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "category_create_failed", err)
		return
	}
	RespondOK(c, category)
}
