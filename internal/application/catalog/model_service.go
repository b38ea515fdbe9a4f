package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/modelmart/backend/internal/domain/catalog"
	"github.com/modelmart/backend/internal/domain/identity"
	"github.com/modelmart/backend/internal/domain/shared"
)

// AllowedImageContentTypes is the whitelist for model cover images.
// SVG is excluded because it can carry scripts.
var AllowedImageContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

const uploadURLExpiry = 15 * time.Minute

// ObjectStorageService is implemented by the infrastructure layer (S3)
type ObjectStorageService interface {
	// GenerateUploadURL returns a presigned upload URL and its expiry
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)

	// PublicURL returns the URL an uploaded object is served from
	PublicURL(storageKey string) string

	// DeleteObject removes an object from storage
	DeleteObject(ctx context.Context, storageKey string) error
}

// ModelService handles catalog operations
type ModelService struct {
	modelRepo catalog.ModelRepository
	userRepo  identity.UserRepository
	storage   ObjectStorageService
	logger    *zap.Logger
}

// NewModelService creates a new ModelService
func NewModelService(
	modelRepo catalog.ModelRepository,
	userRepo identity.UserRepository,
	storage ObjectStorageService,
	logger *zap.Logger,
) *ModelService {
	return &ModelService{
		modelRepo: modelRepo,
		userRepo:  userRepo,
		storage:   storage,
		logger:    logger,
	}
}

// Create publishes a new model under the developer's account
func (s *ModelService) Create(ctx context.Context, input CreateModelInput) (*ModelResponse, error) {
	developer, err := s.userRepo.FindByID(ctx, input.DeveloperID)
	if err != nil {
		return nil, shared.NewDomainError("DEVELOPER_NOT_FOUND", "Developer account not found")
	}

	model, err := catalog.NewModel(
		developer.ID,
		developer.Email,
		input.Name,
		catalog.ModelCategory(input.Category),
		input.Price,
		input.Description,
		input.ImageURL,
	)
	if err != nil {
		return nil, err
	}

	if err := s.modelRepo.Create(ctx, model); err != nil {
		s.logger.Error("Failed to persist model", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to publish model")
	}

	s.logger.Info("Model published",
		zap.String("model_id", model.ID.String()),
		zap.String("developer_id", developer.ID.String()),
		zap.String("name", model.Name))

	return toModelResponse(model), nil
}

// Update modifies a published model. Only the publishing developer may
// update it.
func (s *ModelService) Update(ctx context.Context, input UpdateModelInput) (*ModelResponse, error) {
	model, err := s.modelRepo.FindByID(ctx, input.ModelID)
	if err != nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Model not found")
	}

	if !model.IsOwnedBy(input.DeveloperID) {
		return nil, shared.NewDomainError("FORBIDDEN", "Only the publishing developer can modify this model")
	}

	if err := model.Update(input.Name, catalog.ModelCategory(input.Category), input.Price, input.Description, input.ImageURL); err != nil {
		return nil, err
	}

	if err := s.modelRepo.Update(ctx, model); err != nil {
		s.logger.Error("Failed to update model", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update model")
	}

	return toModelResponse(model), nil
}

// Delete removes a published model. Only the publishing developer may
// delete it.
func (s *ModelService) Delete(ctx context.Context, modelID, developerID uuid.UUID) error {
	model, err := s.modelRepo.FindByID(ctx, modelID)
	if err != nil {
		return shared.NewDomainError("NOT_FOUND", "Model not found")
	}

	if !model.IsOwnedBy(developerID) {
		return shared.NewDomainError("FORBIDDEN", "Only the publishing developer can delete this model")
	}

	if err := s.modelRepo.Delete(ctx, modelID); err != nil {
		s.logger.Error("Failed to delete model", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to delete model")
	}

	s.logger.Info("Model deleted",
		zap.String("model_id", modelID.String()),
		zap.String("developer_id", developerID.String()))
	return nil
}

// Get returns a single model
func (s *ModelService) Get(ctx context.Context, modelID uuid.UUID) (*ModelResponse, error) {
	model, err := s.modelRepo.FindByID(ctx, modelID)
	if err != nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Model not found")
	}
	return toModelResponse(model), nil
}

// List returns a page of the catalog, optionally narrowed by category
func (s *ModelService) List(ctx context.Context, input ListModelsInput) (*shared.Paginated[ModelResponse], error) {
	filter := catalog.ModelFilter{Filter: input.Filter}
	if input.Category != "" {
		category := catalog.ModelCategory(input.Category)
		if !category.IsValid() {
			return nil, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Unknown category %q", input.Category))
		}
		filter.Category = category
	}

	models, total, err := s.modelRepo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list models", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list models")
	}

	return paginate(models, total, input.Filter), nil
}

// ListByDeveloper returns the developer's own published models
func (s *ModelService) ListByDeveloper(ctx context.Context, developerID uuid.UUID, filter shared.Filter) (*shared.Paginated[ModelResponse], error) {
	models, total, err := s.modelRepo.FindByDeveloper(ctx, developerID, filter)
	if err != nil {
		s.logger.Error("Failed to list developer models", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list models")
	}
	return paginate(models, total, filter), nil
}

// GenerateImageUploadURL returns a presigned URL for uploading a model
// cover image.
func (s *ModelService) GenerateImageUploadURL(ctx context.Context, input ImageUploadInput) (*ImageUploadResult, error) {
	contentType := strings.ToLower(strings.TrimSpace(input.ContentType))
	if !AllowedImageContentTypes[contentType] {
		return nil, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Content type %q is not allowed for images", input.ContentType))
	}

	ext := strings.ToLower(filepath.Ext(input.FileName))
	storageKey := fmt.Sprintf("models/%s/%s%s", input.DeveloperID, uuid.New(), ext)

	uploadURL, expiresAt, err := s.storage.GenerateUploadURL(ctx, storageKey, contentType, uploadURLExpiry)
	if err != nil {
		s.logger.Error("Failed to generate upload URL", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate upload URL")
	}

	return &ImageUploadResult{
		UploadURL:  uploadURL,
		PublicURL:  s.storage.PublicURL(storageKey),
		StorageKey: storageKey,
		ExpiresAt:  expiresAt,
	}, nil
}

func paginate(models []catalog.Model, total int64, filter shared.Filter) *shared.Paginated[ModelResponse] {
	items := make([]ModelResponse, 0, len(models))
	for i := range models {
		items = append(items, *toModelResponse(&models[i]))
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	result := shared.NewPaginated(items, total, page, filter.Limit())
	return &result
}
