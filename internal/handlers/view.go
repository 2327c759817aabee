package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MarcusNeufeldt/never-cook-alone/internal/requestdata"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/services"
)

type ViewHandler struct {
	viewService services.ViewService
}

func NewViewHandler(viewService services.ViewService) *ViewHandler {
	return &ViewHandler{viewService: viewService}
}

func (vh *ViewHandler) RecentlyViewed(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	recipes, err := vh.viewService.RecentlyViewed(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "recently_viewed_failed", err)
		return
	}
	RespondOK(c, recipes)
}
