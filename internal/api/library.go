package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rasoihub/backend/internal/service"
)

type LibraryHandler struct {
	libraryService *service.LibraryService
}

func NewLibraryHandler(libraryService *service.LibraryService) *LibraryHandler {
	return &LibraryHandler{libraryService: libraryService}
}

func (h *LibraryHandler) RegisterRoutes(router *gin.RouterGroup) {
	dishes := router.Group("/global-dishes")
	{
		dishes.GET("/search", h.SearchDishes)
		dishes.GET("/categories", h.ListCategories)
		dishes.GET("/cuisines", h.ListCuisines)
		dishes.GET("/trending", h.TrendingDishes)
		dishes.GET("/:id", h.GetDish)
	}
}

func (h *LibraryHandler) SearchDishes(c *gin.Context) {
	params := service.SearchParams{
		Query:    c.Query("q"),
		Category: c.Query("category"),
		Cuisine:  c.Query("cuisine"),
	}

	if v := c.Query("is_vegetarian"); v != "" {
		veg, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid is_vegetarian value"})
			return
		}
		params.IsVegetarian = &veg
	}
	if v := c.Query("max_price"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid max_price value"})
			return
		}
		params.MaxPrice = &price
	}
	if v := c.Query("spice_level_max"); v != "" {
		level, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid spice_level_max value"})
			return
		}
		params.SpiceLevelMax = &level
	}
	params.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	params.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	dishes, err := h.libraryService.SearchDishes(c.Request.Context(), params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search dishes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"dishes": dishes})
}

func (h *LibraryHandler) ListCategories(c *gin.Context) {
	categories, err := h.libraryService.ListCategories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *LibraryHandler) ListCuisines(c *gin.Context) {
	cuisines, err := h.libraryService.ListCuisines(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cuisines"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cuisines": cuisines})
}

func (h *LibraryHandler) TrendingDishes(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	dishes, err := h.libraryService.TrendingDishes(c.Request.Context(), limit, c.Query("category"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch trending dishes"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"dishes": dishes})
}

func (h *LibraryHandler) GetDish(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dish id"})
		return
	}

	dish, err := h.libraryService.GetDish(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrDishNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Dish not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch dish"})
		return
	}
	c.JSON(http.StatusOK, dish)
}
