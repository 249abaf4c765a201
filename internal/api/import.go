package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rasoihub/backend/internal/models"
	"github.com/rasoihub/backend/internal/service"
)

// maxImageSize caps menu item photo uploads at 5 MB.
const maxImageSize = 5 << 20

type ImportHandler struct {
	importService *service.ImportService
	imageService  *service.ImageService
}

func NewImportHandler(importService *service.ImportService, imageService *service.ImageService) *ImportHandler {
	return &ImportHandler{
		importService: importService,
		imageService:  imageService,
	}
}

func (h *ImportHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/restaurants/:restaurant_id/preview-mapping/:dish_id", h.PreviewMapping)
	router.POST("/restaurants/:restaurant_id/menu-items/:id/image", h.UploadImage)
}

// RegisterImportRoute wires the mutating import endpoint separately so the
// router can attach role and rate-limit middleware to it alone.
func (h *ImportHandler) RegisterImportRoute(router *gin.RouterGroup) {
	router.POST("/restaurants/:restaurant_id/add-from-global/:dish_id", h.AddFromGlobal)
}

// restaurantScope parses the restaurant_id path param and verifies the caller
// may act on that restaurant. Admins may act on any restaurant.
func restaurantScope(c *gin.Context) (uuid.UUID, bool) {
	restaurantID, err := uuid.Parse(c.Param("restaurant_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid restaurant id"})
		return uuid.Nil, false
	}

	role, _ := c.Get("role")
	if role == models.RoleAdmin {
		return restaurantID, true
	}

	own, exists := c.Get("restaurant_id")
	if !exists || own != restaurantID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only manage your own restaurant"})
		return uuid.Nil, false
	}
	return restaurantID, true
}

func (h *ImportHandler) AddFromGlobal(c *gin.Context) {
	restaurantID, ok := restaurantScope(c)
	if !ok {
		return
	}
	dishID, err := uuid.Parse(c.Param("dish_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dish id"})
		return
	}

	// Request body is optional; an empty body means all defaults.
	var body AddDishFromGlobalRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	mappings := make(map[uuid.UUID]uuid.UUID, len(body.IngredientMappings))
	for globalID, restID := range body.IngredientMappings {
		gid, err := uuid.Parse(globalID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid global ingredient id in mappings"})
			return
		}
		rid, err := uuid.Parse(restID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid restaurant ingredient id in mappings"})
			return
		}
		mappings[gid] = rid
	}

	userIDValue, _ := c.Get("user_id")
	addedBy, _ := userIDValue.(uuid.UUID)

	result, err := h.importService.ImportDish(c.Request.Context(), service.ImportRequest{
		RestaurantID:       restaurantID,
		GlobalDishID:       dishID,
		AddedBy:            addedBy,
		PriceOverride:      body.PriceOverride,
		IngredientMappings: mappings,
		AutoCreateMissing:  body.AutoCreateMissing,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDishNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrDishInactive),
			errors.Is(err, service.ErrDuplicateMenuName),
			errors.Is(err, service.ErrNoIngredients),
			errors.Is(err, service.ErrIngredientNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add dish"})
		}
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *ImportHandler) PreviewMapping(c *gin.Context) {
	restaurantID, ok := restaurantScope(c)
	if !ok {
		return
	}
	dishID, err := uuid.Parse(c.Param("dish_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dish id"})
		return
	}

	preview, err := h.importService.PreviewImport(c.Request.Context(), restaurantID, dishID)
	if err != nil {
		if errors.Is(err, service.ErrDishNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to preview mapping"})
		return
	}

	c.JSON(http.StatusOK, preview)
}

func (h *ImportHandler) UploadImage(c *gin.Context) {
	restaurantID, ok := restaurantScope(c)
	if !ok {
		return
	}
	menuItemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid menu item id"})
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	defer file.Close()

	if header.Size > maxImageSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image exceeds 5MB limit"})
		return
	}

	imageData, err := io.ReadAll(io.LimitReader(file, maxImageSize+1))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read image"})
		return
	}

	url, err := h.imageService.UploadMenuItemImage(c.Request.Context(), restaurantID, menuItemID,
		imageData, header.Header.Get("Content-Type"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload image"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"image_url": url})
}
