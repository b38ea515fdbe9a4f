package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/modelmart/backend/internal/application/catalog"
	"github.com/modelmart/backend/internal/domain/shared"
)

// ModelHandler handles catalog model endpoints
type ModelHandler struct {
	BaseHandler
	modelService *catalog.ModelService
}

// NewModelHandler creates a new model handler
func NewModelHandler(modelService *catalog.ModelService) *ModelHandler {
	return &ModelHandler{modelService: modelService}
}

// List godoc
// @Summary Browse the model catalog
// @Description Returns a paginated page of published models, optionally filtered by category or search term
// @Tags models
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(20)
// @Param order_by query string false "Sort column" default(created_at)
// @Param order_dir query string false "Sort direction" Enums(asc, desc)
// @Param search query string false "Search by model name"
// @Param category query string false "Filter by category"
// @Success 200 {object} APIResponse[shared.Paginated[ModelResponse]]
// @Router /api/v1/models [get]
func (h *ModelHandler) List(c *gin.Context) {
	var query ListModelsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	filter := shared.DefaultFilter()
	if query.Page > 0 {
		filter.Page = query.Page
	}
	if query.PageSize > 0 {
		filter.PageSize = query.PageSize
	}
	if query.OrderBy != "" {
		filter.OrderBy = query.OrderBy
	}
	if query.OrderDir != "" {
		filter.OrderDir = query.OrderDir
	}
	filter.Search = query.Search

	result, err := h.modelService.List(c.Request.Context(), catalog.ListModelsInput{
		Filter:   filter,
		Category: query.Category,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]ModelResponse, 0, len(result.Items))
	for i := range result.Items {
		items = append(items, toModelAPIResponse(&result.Items[i]))
	}
	h.Success(c, shared.Paginated[ModelResponse]{
		Items:      items,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	})
}

// Get godoc
// @Summary Get a model
// @Description Returns a single published model by ID
// @Tags models
// @Produce json
// @Param id path string true "Model ID"
// @Success 200 {object} APIResponse[ModelResponse]
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/models/{id} [get]
func (h *ModelHandler) Get(c *gin.Context) {
	modelID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid model ID")
		return
	}

	result, err := h.modelService.Get(c.Request.Context(), modelID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toModelAPIResponse(result))
}

// ListMine godoc
// @Summary List the caller's models
// @Description Returns a paginated page of models published by the authenticated developer
// @Tags models
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} APIResponse[shared.Paginated[ModelResponse]]
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/models/mine [get]
func (h *ModelHandler) ListMine(c *gin.Context) {
	developerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var query ListModelsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	filter := shared.DefaultFilter()
	if query.Page > 0 {
		filter.Page = query.Page
	}
	if query.PageSize > 0 {
		filter.PageSize = query.PageSize
	}

	result, err := h.modelService.ListByDeveloper(c.Request.Context(), developerID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]ModelResponse, 0, len(result.Items))
	for i := range result.Items {
		items = append(items, toModelAPIResponse(&result.Items[i]))
	}
	h.Success(c, shared.Paginated[ModelResponse]{
		Items:      items,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	})
}

// Create godoc
// @Summary Publish a model
// @Description Publishes a new model under the authenticated developer's account
// @Tags models
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateModelRequest true "Model details"
// @Success 201 {object} APIResponse[ModelResponse]
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/models [post]
func (h *ModelHandler) Create(c *gin.Context) {
	developerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req CreateModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.modelService.Create(c.Request.Context(), catalog.CreateModelInput{
		DeveloperID: developerID,
		Name:        req.Name,
		Category:    req.Category,
		Price:       req.Price,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toModelAPIResponse(result))
}

// Update godoc
// @Summary Update a model
// @Description Updates a model owned by the authenticated developer
// @Tags models
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Model ID"
// @Param request body UpdateModelRequest true "Updated model details"
// @Success 200 {object} APIResponse[ModelResponse]
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/models/{id} [put]
func (h *ModelHandler) Update(c *gin.Context) {
	developerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	modelID, parseErr := uuid.Parse(c.Param("id"))
	if parseErr != nil {
		h.BadRequest(c, "Invalid model ID")
		return
	}

	var req UpdateModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.modelService.Update(c.Request.Context(), catalog.UpdateModelInput{
		ModelID:     modelID,
		DeveloperID: developerID,
		Name:        req.Name,
		Category:    req.Category,
		Price:       req.Price,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toModelAPIResponse(result))
}

// Delete godoc
// @Summary Unpublish a model
// @Description Removes a model owned by the authenticated developer from the catalog
// @Tags models
// @Produce json
// @Security BearerAuth
// @Param id path string true "Model ID"
// @Success 204 "No Content"
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/models/{id} [delete]
func (h *ModelHandler) Delete(c *gin.Context) {
	developerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	modelID, parseErr := uuid.Parse(c.Param("id"))
	if parseErr != nil {
		h.BadRequest(c, "Invalid model ID")
		return
	}

	if err := h.modelService.Delete(c.Request.Context(), modelID, developerID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ImageUploadURL godoc
// @Summary Request a model image upload URL
// @Description Returns a presigned URL the developer can upload a model image to
// @Tags models
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ImageUploadRequest true "File details"
// @Success 200 {object} APIResponse[ImageUploadResponse]
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/models/image-upload-url [post]
func (h *ModelHandler) ImageUploadURL(c *gin.Context) {
	developerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req ImageUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.modelService.GenerateImageUploadURL(c.Request.Context(), catalog.ImageUploadInput{
		DeveloperID: developerID,
		FileName:    req.FileName,
		ContentType: req.ContentType,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ImageUploadResponse{
		UploadURL:  result.UploadURL,
		PublicURL:  result.PublicURL,
		StorageKey: result.StorageKey,
		ExpiresAt:  result.ExpiresAt,
	})
}
