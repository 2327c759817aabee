package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MarcusNeufeldt/never-cook-alone/internal/logger"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/repos"
)

// ImageService stores recipe photos under unguessable object keys. Keys carry
// a fresh uuid so re-uploads never collide with or overwrite earlier objects.
type ImageService interface {
	UploadRecipeImage(ctx context.Context, img *EncodedImage) (string, error)
	UploadStepImage(ctx context.Context, recipeID uuid.UUID, stepNumber int, img *EncodedImage) (string, error)
	DeleteStepImage(ctx context.Context, recipeID uuid.UUID, stepNumber int) error
}

type imageService struct {
	db             *gorm.DB
	log            *logger.Logger
	bucketService  BucketService
	recipeStepRepo repos.RecipeStepRepo
}

func NewImageService(db *gorm.DB, log *logger.Logger, bucketService BucketService, recipeStepRepo repos.RecipeStepRepo) ImageService {
	serviceLog := log.With("service", "ImageService")
	return &imageService{
		db:             db,
		log:            serviceLog,
		bucketService:  bucketService,
		recipeStepRepo: recipeStepRepo,
	}
}

func (ims *imageService) UploadRecipeImage(ctx context.Context, img *EncodedImage) (string, error) {
	if img == nil {
		return "", fmt.Errorf("no image to upload")
	}
	key := fmt.Sprintf("recipe-images/%s.%s", uuid.New().String(), extensionFor(img.MimeType))
	if err := ims.bucketService.UploadFile(ctx, key, bytes.NewReader(img.Data), img.MimeType); err != nil {
		return "", err
	}
	return ims.bucketService.GetPublicURL(key), nil
}

func (ims *imageService) UploadStepImage(ctx context.Context, recipeID uuid.UUID, stepNumber int, img *EncodedImage) (string, error) {
	if img == nil {
		return "", fmt.Errorf("no image to upload")
	}
	key := fmt.Sprintf("recipe-steps/%s/%d-%s.%s", recipeID.String(), stepNumber, uuid.New().String(), extensionFor(img.MimeType))
	if err := ims.bucketService.UploadFile(ctx, key, bytes.NewReader(img.Data), img.MimeType); err != nil {
		return "", err
	}
	url := ims.bucketService.GetPublicURL(key)
	if err := ims.recipeStepRepo.UpdateImageURL(ctx, nil, recipeID, stepNumber, &url); err != nil {
		// The object exists but the row does not point at it; delete the
		// orphan rather than leak it.
		if delErr := ims.bucketService.DeleteFile(ctx, key); delErr != nil {
			ims.log.Warn("Failed to clean up orphaned step image", "key", key, "error", delErr)
		}
		return "", err
	}
	return url, nil
}

func (ims *imageService) DeleteStepImage(ctx context.Context, recipeID uuid.UUID, stepNumber int) error {
	steps, err := ims.recipeStepRepo.ListByRecipeID(ctx, nil, recipeID)
	if err != nil {
		return err
	}
	var imageURL string
	for _, st := range steps {
		if st.StepNumber == stepNumber && st.ImageURL != nil {
			imageURL = *st.ImageURL
			break
		}
	}
	if err := ims.recipeStepRepo.UpdateImageURL(ctx, nil, recipeID, stepNumber, nil); err != nil {
		return err
	}
	if key := objectKeyFromURL(imageURL); key != "" {
		if err := ims.bucketService.DeleteFile(ctx, key); err != nil {
			ims.log.Warn("Failed to delete step image object (ignored)", "key", key, "error", err)
		}
	}
	return nil
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	case "image/webp":
		return "webp"
	default:
		return "jpg"
	}
}

// objectKeyFromURL recovers the bucket key from a public URL produced by
// BucketService.GetPublicURL. Unknown URL shapes yield "".
func objectKeyFromURL(url string) string {
	for _, marker := range []string{"recipe-images/", "recipe-steps/", "user-avatars/"} {
		if idx := strings.Index(url, marker); idx >= 0 {
			return url[idx:]
		}
	}
	return ""
}
