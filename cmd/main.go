package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/MarcusNeufeldt/never-cook-alone/internal/clients/openai"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/clients/redis"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/db"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/handlers"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/logger"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/middleware"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/observability"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/repos"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/server"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/services"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)

	// Tracing
	shutdownOtel := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "never-cook-alone",
		Environment: os.Getenv("APP_ENV"),
		Version:     os.Getenv("APP_VERSION"),
	})
	if shutdownOtel != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownOtel(ctx)
		}()
	}

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	userTokenRepo := repos.NewUserTokenRepo(thePG, log)
	categoryRepo := repos.NewCategoryRepo(thePG, log)
	ingredientRepo := repos.NewIngredientRepo(thePG, log)
	recipeRepo := repos.NewRecipeRepo(thePG, log)
	recipeIngredientRepo := repos.NewRecipeIngredientRepo(thePG, log)
	recipeStepRepo := repos.NewRecipeStepRepo(thePG, log)
	recipeViewRepo := repos.NewRecipeViewRepo(thePG, log)
	recipeCommentRepo := repos.NewRecipeCommentRepo(thePG, log)
	extractionLogRepo := repos.NewExtractionLogRepo(thePG, log)

	// Clients
	log.Info("Setting up clients from main...")
	openaiClient, err := openai.NewClient(log)
	if err != nil {
		log.Error("Could not init OpenAI client", "error", err)
		os.Exit(1)
	}
	cache, err := redis.NewCache(log)
	if err != nil {
		log.Warn("Could not init redis cache (recently-viewed falls back to DB)", "error", err)
		cache = nil
	}
	if cache != nil {
		defer cache.Close()
	}

	// Services
	log.Info("Setting up services from main...")
	bucketService, err := services.NewBucketService(log)
	if err != nil {
		log.Warn("Could not init BucketService (image uploads disabled)", "error", err)
		bucketService = nil
	}
	var avatarService services.AvatarService
	var imageService services.ImageService
	if bucketService != nil {
		avatarService, err = services.NewAvatarService(thePG, log, userRepo, bucketService)
		if err != nil {
			log.Warn("Could not init AvatarService (avatars disabled)", "error", err)
			avatarService = nil
		}
		imageService = services.NewImageService(thePG, log, bucketService, recipeStepRepo)
	}
	authService := services.NewAuthService(thePG, log, userRepo, avatarService, userTokenRepo, jwtSecretKey,
		time.Duration(accessTokenTTL)*time.Second, time.Duration(refreshTokenTTL)*time.Second)
	userService := services.NewUserService(thePG, log, userRepo, avatarService)
	categoryService := services.NewCategoryService(thePG, log, categoryRepo)
	if err := categoryService.Seed(context.Background()); err != nil {
		log.Warn("Category seeding failed", "error", err)
	}
	ingredientService := services.NewIngredientService(thePG, log, ingredientRepo)
	recipeService := services.NewRecipeService(thePG, log, recipeRepo, recipeIngredientRepo, recipeStepRepo)
	extractionService := services.NewExtractionService(log, openaiClient)
	ingestionService := services.NewIngestionService(thePG, log, extractionService, ingredientService,
		recipeService, categoryRepo, extractionLogRepo, openaiClient.Model())
	viewService := services.NewViewService(thePG, log, recipeViewRepo, recipeRepo, cache)
	commentService := services.NewCommentService(thePG, log, recipeCommentRepo, recipeRepo)
	assistantService := services.NewAssistantService(log, openaiClient)

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	recipeHandler := handlers.NewRecipeHandler(log, recipeService, ingestionService, extractionService, imageService, viewService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	ingredientHandler := handlers.NewIngredientHandler(ingredientService)
	commentHandler := handlers.NewCommentHandler(commentService)
	viewHandler := handlers.NewViewHandler(viewService)
	assistantHandler := handlers.NewAssistantHandler(assistantService)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AuthHandler:       authHandler,
		AuthMiddleware:    authMiddleware,
		UserHandler:       userHandler,
		RecipeHandler:     recipeHandler,
		CategoryHandler:   categoryHandler,
		IngredientHandler: ingredientHandler,
		CommentHandler:    commentHandler,
		ViewHandler:       viewHandler,
		AssistantHandler:  assistantHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	log.Info("Server listening", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
	}
}
