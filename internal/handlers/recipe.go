package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MarcusNeufeldt/never-cook-alone/internal/logger"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/requestdata"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/services"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/types"
)

type RecipeHandler struct {
	log               *logger.Logger
	recipeService     services.RecipeService
	ingestionService  services.IngestionService
	extractionService services.ExtractionService
	imageService      services.ImageService
	viewService       services.ViewService
}

func NewRecipeHandler(
	log *logger.Logger,
	recipeService services.RecipeService,
	ingestionService services.IngestionService,
	extractionService services.ExtractionService,
	imageService services.ImageService,
	viewService services.ViewService,
) *RecipeHandler {
	return &RecipeHandler{
		log:               log.With("handler", "RecipeHandler"),
		recipeService:     recipeService,
		ingestionService:  ingestionService,
		extractionService: extractionService,
		imageService:      imageService,
		viewService:       viewService,
	}
}

// ExtractFromPhoto takes a multipart photo and returns a candidate recipe for
// review. Nothing is stored except the extraction call log.
func (rh *RecipeHandler) ExtractFromPhoto(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	fileHeader, err := c.FormFile("image")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "missing_image", err)
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "unreadable_image", err)
		return
	}
	defer f.Close()

	candidate, err := rh.ingestionService.Extract(c.Request.Context(), f, rd.UserID)
	if err != nil {
		rh.respondPipelineError(c, err)
		return
	}
	RespondOK(c, gin.H{"candidate": candidate})
}

// CreateFromPhoto is the one-shot flow: photo in, stored recipe out. The
// photo itself is uploaded to the bucket so the recipe has an image.
func (rh *RecipeHandler) CreateFromPhoto(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	fileHeader, err := c.FormFile("image")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "missing_image", err)
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "unreadable_image", err)
		return
	}
	defer f.Close()

	encoded, err := rh.extractionService.EncodeImage(f)
	if err != nil {
		rh.respondPipelineError(c, err)
		return
	}

	var imageURL string
	if rh.imageService != nil {
		imageURL, err = rh.imageService.UploadRecipeImage(c.Request.Context(), encoded)
		if err != nil {
			rh.log.Warn("Recipe image upload failed (continuing without image)", "error", err)
			imageURL = ""
		}
	}

	candidate, err := rh.ingestionService.Extract(c.Request.Context(), bytes.NewReader(encoded.Data), rd.UserID)
	if err != nil {
		rh.respondPipelineError(c, err)
		return
	}
	result, err := rh.ingestionService.Persist(c.Request.Context(), candidate, rd.UserID, imageURL)
	if err != nil {
		rh.respondPersistOutcome(c, result, err)
		return
	}
	RespondOK(c, result)
}

// CreateFromCandidate stores a reviewed (or manually written) candidate.
func (rh *RecipeHandler) CreateFromCandidate(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	var req struct {
		Candidate *types.CandidateRecipe `json:"candidate"`
		ImageURL  string                 `json:"image_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if req.Candidate == nil || req.Candidate.Name == "" {
		RespondError(c, http.StatusBadRequest, "invalid_candidate", errors.New("candidate with a name is required"))
		return
	}
	result, err := rh.ingestionService.Persist(c.Request.Context(), req.Candidate, rd.UserID, req.ImageURL)
	if err != nil {
		rh.respondPersistOutcome(c, result, err)
		return
	}
	RespondOK(c, result)
}

func (rh *RecipeHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	recipe, err := rh.recipeService.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			RespondError(c, http.StatusNotFound, "recipe_not_found", err)
			return
		}
		RespondError(c, http.StatusInternalServerError, "recipe_load_failed", err)
		return
	}
	if rd := requestdata.GetRequestData(c.Request.Context()); rd != nil && rd.UserID != uuid.Nil {
		if err := rh.viewService.Track(c.Request.Context(), rd.UserID, id); err != nil {
			rh.log.Warn("Failed to track recipe view", "recipe_id", id, "error", err)
		}
	}
	RespondOK(c, recipe)
}

func (rh *RecipeHandler) ListRecent(c *gin.Context) {
	limit := intQuery(c, "limit", 20)
	recipes, err := rh.recipeService.ListRecent(c.Request.Context(), limit)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "recipe_list_failed", err)
		return
	}
	RespondOK(c, recipes)
}

func (rh *RecipeHandler) ListFeatured(c *gin.Context) {
	limit := intQuery(c, "limit", 10)
	recipes, err := rh.recipeService.ListFeatured(c.Request.Context(), limit)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "recipe_list_failed", err)
		return
	}
	RespondOK(c, recipes)
}

func (rh *RecipeHandler) ListByCategory(c *gin.Context) {
	categoryID, err := strconv.ParseInt(c.Param("categoryID"), 10, 64)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_category", err)
		return
	}
	limit := intQuery(c, "limit", 50)
	recipes, err := rh.recipeService.ListByCategory(c.Request.Context(), categoryID, limit)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "recipe_list_failed", err)
		return
	}
	RespondOK(c, recipes)
}

func (rh *RecipeHandler) ListMine(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	recipes, err := rh.recipeService.ListByAuthor(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "recipe_list_failed", err)
		return
	}
	RespondOK(c, recipes)
}

func (rh *RecipeHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		RespondError(c, http.StatusBadRequest, "missing_query", errors.New("query parameter q is required"))
		return
	}
	limit := intQuery(c, "limit", 50)
	recipes, err := rh.recipeService.Search(c.Request.Context(), query, limit)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "recipe_search_failed", err)
		return
	}
	RespondOK(c, recipes)
}

func (rh *RecipeHandler) Update(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var update services.RecipeUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	recipe, err := rh.recipeService.Update(c.Request.Context(), id, rd.UserID, update)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			RespondError(c, http.StatusNotFound, "recipe_not_found", err)
			return
		}
		RespondError(c, http.StatusBadRequest, "recipe_update_failed", err)
		return
	}
	RespondOK(c, recipe)
}

func (rh *RecipeHandler) Delete(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	if err := rh.recipeService.Delete(c.Request.Context(), id, rd.UserID); err != nil {
		RespondError(c, http.StatusInternalServerError, "recipe_delete_failed", err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}

func (rh *RecipeHandler) UploadStepImage(c *gin.Context) {
	if rh.imageService == nil {
		RespondError(c, http.StatusServiceUnavailable, "images_unconfigured", errors.New("image uploads are not configured"))
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	stepNumber, err := strconv.Atoi(c.Param("step"))
	if err != nil || stepNumber < 1 {
		RespondError(c, http.StatusBadRequest, "invalid_step", errors.New("step must be a positive integer"))
		return
	}
	fileHeader, err := c.FormFile("image")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "missing_image", err)
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "unreadable_image", err)
		return
	}
	defer f.Close()
	encoded, err := rh.extractionService.EncodeImage(f)
	if err != nil {
		rh.respondPipelineError(c, err)
		return
	}
	url, err := rh.imageService.UploadStepImage(c.Request.Context(), id, stepNumber, encoded)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "step_image_failed", err)
		return
	}
	RespondOK(c, gin.H{"image_url": url})
}

func (rh *RecipeHandler) DeleteStepImage(c *gin.Context) {
	if rh.imageService == nil {
		RespondError(c, http.StatusServiceUnavailable, "images_unconfigured", errors.New("image uploads are not configured"))
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	stepNumber, err := strconv.Atoi(c.Param("step"))
	if err != nil || stepNumber < 1 {
		RespondError(c, http.StatusBadRequest, "invalid_step", errors.New("step must be a positive integer"))
		return
	}
	if err := rh.imageService.DeleteStepImage(c.Request.Context(), id, stepNumber); err != nil {
		RespondError(c, http.StatusInternalServerError, "step_image_failed", err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}

func (rh *RecipeHandler) respondPipelineError(c *gin.Context, err error) {
	var imgErr *services.ImageReadError
	var svcErr *services.ExtractionServiceError
	var parseErr *services.ExtractionParseError
	switch {
	case errors.As(err, &imgErr):
		RespondError(c, http.StatusBadRequest, "image_read_failed", err)
	case errors.As(err, &svcErr):
		RespondError(c, http.StatusBadGateway, "extraction_unavailable", err)
	case errors.As(err, &parseErr):
		RespondError(c, http.StatusUnprocessableEntity, "extraction_unparseable", err)
	default:
		RespondError(c, http.StatusInternalServerError, "ingestion_failed", err)
	}
}

// respondPersistOutcome surfaces partial persistence: the recipe that was
// written is returned along with the stage that failed, so the client can
// offer the user an edit path instead of a silent loss.
func (rh *RecipeHandler) respondPersistOutcome(c *gin.Context, result *services.IngestionResult, err error) {
	var perErr *services.PersistenceError
	if errors.As(err, &perErr) && result != nil && result.Recipe != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":        gin.H{"message": err.Error(), "code": "persist_" + perErr.Stage + "_failed"},
			"recipe":       result.Recipe,
			"failed_stage": perErr.Stage,
		})
		return
	}
	RespondError(c, http.StatusInternalServerError, "persist_failed", err)
}

func intQuery(c *gin.Context, key string, fallback int) int {
	v := c.Query(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
