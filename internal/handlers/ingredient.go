package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MarcusNeufeldt/never-cook-alone/internal/services"
)

type IngredientHandler struct {
	ingredientService services.IngredientService
}

func NewIngredientHandler(ingredientService services.IngredientService) *IngredientHandler {
	return &IngredientHandler{ingredientService: ingredientService}
}

func (ih *IngredientHandler) List(c *gin.Context) {
	ingredients, err := ih.ingredientService.List(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "ingredient_list_failed", err)
		return
	}
	RespondOK(c, ingredients)
}
