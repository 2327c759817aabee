package server

import (
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/MarcusNeufeldt/never-cook-alone/internal/handlers"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/middleware"
)

type RouterConfig struct {
	AuthHandler       *handlers.AuthHandler
	AuthMiddleware    *middleware.AuthMiddleware
	UserHandler       *handlers.UserHandler
	RecipeHandler     *handlers.RecipeHandler
	CategoryHandler   *handlers.CategoryHandler
	IngredientHandler *handlers.IngredientHandler
	CommentHandler    *handlers.CommentHandler
	ViewHandler       *handlers.ViewHandler
	AssistantHandler  *handlers.AssistantHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware("never-cook-alone"))

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/register", cfg.AuthHandler.Register)
	router.POST("/login", cfg.AuthHandler.Login)

	// Browsing works without an account; a valid token adds view tracking.
	browse := router.Group("/")
	browse.Use(cfg.AuthMiddleware.OptionalAuth())
	browse.GET("/recipes", cfg.RecipeHandler.ListRecent)
	browse.GET("/recipes/featured", cfg.RecipeHandler.ListFeatured)
	browse.GET("/recipes/search", cfg.RecipeHandler.Search)
	browse.GET("/recipes/:id", cfg.RecipeHandler.GetByID)
	browse.GET("/recipes/:id/comments", cfg.CommentHandler.ListByRecipe)
	browse.GET("/categories", cfg.CategoryHandler.List)
	browse.GET("/categories/:categoryID/recipes", cfg.RecipeHandler.ListByCategory)
	browse.GET("/ingredients", cfg.IngredientHandler.List)

	// ===============
	// || Protected ||
	// ===============
	protected := router.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	// Auth
	protected.POST("/refresh", cfg.AuthHandler.Refresh)
	protected.POST("/logout", cfg.AuthHandler.Logout)
	// User
	protected.GET("/user", cfg.UserHandler.GetMe)
	protected.POST("/user/avatar", cfg.UserHandler.UploadAvatar)
	protected.GET("/user/recipes", cfg.RecipeHandler.ListMine)
	protected.GET("/user/recently-viewed", cfg.ViewHandler.RecentlyViewed)
	// Recipes
	protected.POST("/recipes/extract", cfg.RecipeHandler.ExtractFromPhoto)
	protected.POST("/recipes/from-photo", cfg.RecipeHandler.CreateFromPhoto)
	protected.POST("/recipes", cfg.RecipeHandler.CreateFromCandidate)
	protected.PATCH("/recipes/:id", cfg.RecipeHandler.Update)
	protected.DELETE("/recipes/:id", cfg.RecipeHandler.Delete)
	protected.POST("/recipes/:id/steps/:step/image", cfg.RecipeHandler.UploadStepImage)
	protected.DELETE("/recipes/:id/steps/:step/image", cfg.RecipeHandler.DeleteStepImage)
	// Comments
	protected.POST("/recipes/:id/comments", cfg.CommentHandler.Create)
	protected.DELETE("/comments/:commentID", cfg.CommentHandler.Delete)
	// Categories
	protected.POST("/categories", cfg.CategoryHandler.Create)
	// Assistant
	protected.POST("/assistant/chat", cfg.AssistantHandler.StartChat)
	protected.POST("/assistant/message", cfg.AssistantHandler.SendMessage)
	protected.POST("/assistant/description", cfg.AssistantHandler.RecipeDescription)
	protected.POST("/assistant/improvements", cfg.AssistantHandler.RecipeImprovements)
	protected.POST("/assistant/tips", cfg.AssistantHandler.CookingTips)

	return router
}

func allowedOrigins() []string {
	raw := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if raw == "" {
		return []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		}
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
