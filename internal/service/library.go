package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/rasoihub/backend/internal/models"
)

const trendingCacheTTL = 5 * time.Minute

// SearchParams filters a global dish search. Zero values mean "no filter".
type SearchParams struct {
	Query         string
	Category      string
	Cuisine       string
	IsVegetarian  *bool
	MaxPrice      *float64
	SpiceLevelMax *int
	Limit         int
	Offset        int
}

// DishSummary is a search/trending row: the dish plus its requirement count.
type DishSummary struct {
	models.GlobalDish
	IngredientsCount int `json:"ingredients_count"`
}

// CategoryCount aggregates active dishes per category or cuisine.
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DishDetail is a dish with its full requirement list.
type DishDetail struct {
	models.GlobalDish
	Ingredients []RequirementDetail `json:"ingredients"`
}

type RequirementDetail struct {
	IngredientID       uuid.UUID `json:"ingredient_id"`
	IngredientName     string    `json:"ingredient_name"`
	QuantityPerServing float64   `json:"quantity_per_serving"`
	Unit               string    `json:"unit"`
	IsOptional         bool      `json:"is_optional"`
	Notes              string    `json:"notes,omitempty"`
}

// LibraryService serves browse/search over the global dish library. The redis
// client is optional; when nil (or unreachable) trending falls back to the
// database.
type LibraryService struct {
	db     *gorm.DB
	redis  *redis.Client
	logger *zap.Logger
}

func NewLibraryService(db *gorm.DB, redisClient *redis.Client, logger *zap.Logger) *LibraryService {
	return &LibraryService{
		db:     db,
		redis:  redisClient,
		logger: logger,
	}
}

// SearchDishes lists active dishes matching the params, most popular first.
func (s *LibraryService) SearchDishes(ctx context.Context, params SearchParams) ([]DishSummary, error) {
	query := s.db.WithContext(ctx).Model(&models.GlobalDish{}).Where("is_active = ?", true)

	if q := strings.TrimSpace(params.Query); len(q) >= 2 {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(category) LIKE ? OR LOWER(cuisine) LIKE ?",
			like, like, like, like)
	}
	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}
	if params.Cuisine != "" {
		query = query.Where("cuisine = ?", params.Cuisine)
	}
	if params.IsVegetarian != nil {
		query = query.Where("is_vegetarian = ?", *params.IsVegetarian)
	}
	if params.MaxPrice != nil {
		query = query.Where("default_price <= ?", *params.MaxPrice)
	}
	if params.SpiceLevelMax != nil {
		query = query.Where("spice_level <= ?", *params.SpiceLevelMax)
	}

	limit := params.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var dishes []models.GlobalDish
	if err := query.Order("popularity_score DESC, name ASC").
		Limit(limit).Offset(params.Offset).
		Find(&dishes).Error; err != nil {
		return nil, err
	}

	return s.withIngredientCounts(ctx, dishes)
}

// ListCategories returns active-dish counts per category, busiest first.
func (s *LibraryService) ListCategories(ctx context.Context) ([]CategoryCount, error) {
	var rows []CategoryCount
	err := s.db.WithContext(ctx).Model(&models.GlobalDish{}).
		Select("category AS name, COUNT(id) AS count").
		Where("is_active = ?", true).
		Group("category").
		Order("count DESC").
		Scan(&rows).Error
	return rows, err
}

// ListCuisines returns active-dish counts per cuisine, busiest first.
func (s *LibraryService) ListCuisines(ctx context.Context) ([]CategoryCount, error) {
	var rows []CategoryCount
	err := s.db.WithContext(ctx).Model(&models.GlobalDish{}).
		Select("cuisine AS name, COUNT(id) AS count").
		Where("is_active = ? AND cuisine <> ''", true).
		Group("cuisine").
		Order("count DESC").
		Scan(&rows).Error
	return rows, err
}

// TrendingDishes lists the most-imported dishes. Results are cached in redis
// for a short TTL; cache failures degrade to a direct query.
func (s *LibraryService) TrendingDishes(ctx context.Context, limit int, category string) ([]DishSummary, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	cacheKey := fmt.Sprintf("trending_dishes:%d:%s", limit, category)
	if s.redis != nil {
		if data, err := s.redis.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached []DishSummary
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
		}
	}

	query := s.db.WithContext(ctx).Model(&models.GlobalDish{}).Where("is_active = ?", true)
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var dishes []models.GlobalDish
	if err := query.Order("popularity_score DESC, created_at DESC").
		Limit(limit).Find(&dishes).Error; err != nil {
		return nil, err
	}

	summaries, err := s.withIngredientCounts(ctx, dishes)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if data, err := json.Marshal(summaries); err == nil {
			if err := s.redis.Set(ctx, cacheKey, data, trendingCacheTTL).Err(); err != nil {
				s.logger.Warn("failed to cache trending dishes", zap.Error(err))
			}
		}
	}

	return summaries, nil
}

// GetDish returns a dish with its full requirement list.
func (s *LibraryService) GetDish(ctx context.Context, id uuid.UUID) (*DishDetail, error) {
	db := s.db.WithContext(ctx)

	var dish models.GlobalDish
	if err := db.First(&dish, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDishNotFound
		}
		return nil, err
	}

	reqs, err := loadRequirements(db, dish.ID)
	if err != nil {
		return nil, err
	}

	detail := &DishDetail{GlobalDish: dish}
	for _, r := range reqs {
		detail.Ingredients = append(detail.Ingredients, RequirementDetail{
			IngredientID:       r.ingredient.ID,
			IngredientName:     r.ingredient.Name,
			QuantityPerServing: r.link.QuantityPerServing,
			Unit:               r.link.Unit,
			IsOptional:         r.link.IsOptional,
			Notes:              r.link.Notes,
		})
	}
	return detail, nil
}

func (s *LibraryService) withIngredientCounts(ctx context.Context, dishes []models.GlobalDish) ([]DishSummary, error) {
	summaries := make([]DishSummary, 0, len(dishes))
	for _, dish := range dishes {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.GlobalDishIngredient{}).
			Where("dish_id = ?", dish.ID).Count(&count).Error; err != nil {
			return nil, err
		}
		summaries = append(summaries, DishSummary{GlobalDish: dish, IngredientsCount: int(count)})
	}
	return summaries, nil
}
