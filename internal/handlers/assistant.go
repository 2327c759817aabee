package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MarcusNeufeldt/never-cook-alone/internal/services"
)

type AssistantHandler struct {
	assistantService services.AssistantService
}

func NewAssistantHandler(assistantService services.AssistantService) *AssistantHandler {
	return &AssistantHandler{assistantService: assistantService}
}

func (ah *AssistantHandler) StartChat(c *gin.Context) {
	conversationID, err := ah.assistantService.StartChat(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusBadGateway, "assistant_unavailable", err)
		return
	}
	RespondOK(c, gin.H{"conversation_id": conversationID})
}

func (ah *AssistantHandler) SendMessage(c *gin.Context) {
	var req struct {
		ConversationID string `json:"conversation_id"`
		Message        string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	reply, err := ah.assistantService.SendMessage(c.Request.Context(), req.ConversationID, req.Message)
	if err != nil {
		RespondError(c, http.StatusBadGateway, "assistant_unavailable", err)
		return
	}
	RespondOK(c, gin.H{"reply": reply})
}

func (ah *AssistantHandler) RecipeDescription(c *gin.Context) {
	var req struct {
		Ingredients  []string `json:"ingredients"`
		Instructions string   `json:"instructions"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	description, err := ah.assistantService.GenerateRecipeDescription(c.Request.Context(), req.Ingredients, req.Instructions)
	if err != nil {
		RespondError(c, http.StatusBadGateway, "assistant_unavailable", err)
		return
	}
	RespondOK(c, gin.H{"description": description})
}

func (ah *AssistantHandler) RecipeImprovements(c *gin.Context) {
	var req struct {
		Recipe string `json:"recipe"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	suggestions, err := ah.assistantService.SuggestRecipeImprovements(c.Request.Context(), req.Recipe)
	if err != nil {
		RespondError(c, http.StatusBadGateway, "assistant_unavailable", err)
		return
	}
	RespondOK(c, gin.H{"suggestions": suggestions})
}

func (ah *AssistantHandler) CookingTips(c *gin.Context) {
	var req struct {
		Ingredients []string `json:"ingredients"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	tips, err := ah.assistantService.GenerateCookingTips(c.Request.Context(), req.Ingredients)
	if err != nil {
		RespondError(c, http.StatusBadGateway, "assistant_unavailable", err)
		return
	}
	RespondOK(c, gin.H{"tips": tips})
}
