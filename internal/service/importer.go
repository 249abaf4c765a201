package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/rasoihub/backend/internal/models"
)

// Import error taxonomy. All of these are detected before any mutation and
// surface to the caller with no side effects.
var (
	ErrDishNotFound       = errors.New("global dish not found")
	ErrDishInactive       = errors.New("this dish is no longer available")
	ErrDuplicateMenuName  = errors.New("dish already exists in your menu")
	ErrNoIngredients      = errors.New("this dish has no ingredients defined")
	ErrIngredientNotFound = errors.New("restaurant ingredient not found")
)

// Minimum-stock threshold seeded onto auto-created inventory rows.
const defaultMinQuantity = 10.0

// ImportRequest carries everything needed to add a global dish to a menu.
type ImportRequest struct {
	RestaurantID uuid.UUID
	GlobalDishID uuid.UUID
	AddedBy      uuid.UUID
	// PriceOverride replaces the dish's default price when set.
	PriceOverride *float64
	// IngredientMappings are caller-supplied manual overrides, global
	// ingredient id -> restaurant ingredient id. Targets must belong to the
	// importing restaurant.
	IngredientMappings map[uuid.UUID]uuid.UUID
	// AutoCreateMissing defaults to true when nil.
	AutoCreateMissing *bool
}

// MappingDetail reports how one dish requirement was resolved. Every
// requirement yields exactly one of these, matched or not.
type MappingDetail struct {
	GlobalIngredientID    uuid.UUID  `json:"global_ingredient_id"`
	GlobalIngredientName  string     `json:"global_ingredient_name"`
	QuantityNeeded        float64    `json:"quantity_needed"`
	Unit                  string     `json:"unit"`
	MatchedIngredientID   *uuid.UUID `json:"matched_restaurant_ingredient_id,omitempty"`
	MatchedIngredientName string     `json:"matched_restaurant_ingredient_name,omitempty"`
	MatchConfidence       float64    `json:"match_confidence"`
	MatchType             string     `json:"match_type,omitempty"`
	NeedsCreation         bool       `json:"needs_creation"`
}

// ImportResult is returned to the caller and persisted (in summary form) as a
// DishAdditionLog row.
type ImportResult struct {
	MenuItemID         uuid.UUID       `json:"menu_item_id"`
	DishName           string          `json:"dish_name"`
	FinalPrice         float64         `json:"final_price"`
	IngredientsMapped  int             `json:"ingredients_mapped"`
	IngredientsCreated int             `json:"ingredients_created"`
	MappingDetails     []MappingDetail `json:"mapping_details"`
	Warnings           []string        `json:"warnings"`
}

// RequirementPreview is the read-only mapping forecast for one requirement.
type RequirementPreview struct {
	GlobalIngredientID   uuid.UUID        `json:"global_ingredient_id"`
	GlobalIngredientName string           `json:"global_ingredient_name"`
	QuantityNeeded       float64          `json:"quantity_needed"`
	Unit                 string           `json:"unit"`
	Matches              []MatchCandidate `json:"matches"`
	BestMatch            *MatchCandidate  `json:"best_match"`
	NeedsCreation        bool             `json:"needs_creation"`
}

// ImportPreview reports what an import would do without touching anything.
type ImportPreview struct {
	DishID                  uuid.UUID            `json:"dish_id"`
	DishName                string               `json:"dish_name"`
	Description             string               `json:"description"`
	Category                string               `json:"category"`
	DefaultPrice            float64              `json:"default_price"`
	TotalIngredients        int                  `json:"total_ingredients"`
	Ingredients             []RequirementPreview `json:"ingredients"`
	EstimatedCostPerServing float64              `json:"estimated_cost_per_serving"`
	ProfitMargin            float64              `json:"profit_margin"`
	CanMakeServings         int                  `json:"can_make_servings"`
}

// ImportService orchestrates one-shot imports of global dishes into restaurant
// menus. The whole import runs in a single transaction: menu item, ingredient
// links, auto-created inventory rows, popularity bump and analytics log all
// commit together or not at all.
type ImportService struct {
	db      *gorm.DB
	matcher *IngredientMatcher
	logger  *zap.Logger
}

func NewImportService(db *gorm.DB, logger *zap.Logger) *ImportService {
	return &ImportService{
		db:      db,
		matcher: NewIngredientMatcher(),
		logger:  logger,
	}
}

// requirement pairs a dish requirement with its global ingredient.
type requirement struct {
	link       models.GlobalDishIngredient
	ingredient models.GlobalIngredient
}

// loadRequirements fetches the dish's ingredient requirements in stable
// (creation) order.
func loadRequirements(tx *gorm.DB, dishID uuid.UUID) ([]requirement, error) {
	var links []models.GlobalDishIngredient
	if err := tx.Where("dish_id = ?", dishID).Order("created_at asc").Find(&links).Error; err != nil {
		return nil, err
	}

	reqs := make([]requirement, 0, len(links))
	for _, link := range links {
		var ing models.GlobalIngredient
		if err := tx.First(&ing, "id = ?", link.IngredientID).Error; err != nil {
			return nil, fmt.Errorf("requirement references missing global ingredient %s: %w", link.IngredientID, err)
		}
		reqs = append(reqs, requirement{link: link, ingredient: ing})
	}
	return reqs, nil
}

// ImportDish adds a global dish to the restaurant menu, resolving every
// required ingredient against the restaurant's inventory.
func (s *ImportService) ImportDish(ctx context.Context, req ImportRequest) (*ImportResult, error) {
	var result *ImportResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var dish models.GlobalDish
		if err := tx.First(&dish, "id = ?", req.GlobalDishID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDishNotFound
			}
			return err
		}
		if !dish.IsActive {
			return ErrDishInactive
		}

		var existing int64
		if err := tx.Model(&models.MenuItem{}).
			Where("restaurant_id = ? AND name = ?", req.RestaurantID, dish.Name).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrDuplicateMenuName
		}

		reqs, err := loadRequirements(tx, dish.ID)
		if err != nil {
			return err
		}
		if len(reqs) == 0 {
			return ErrNoIngredients
		}

		// Manual override targets are validated up front so a bad mapping
		// aborts before anything is written.
		overrides := make(map[uuid.UUID]models.Ingredient, len(req.IngredientMappings))
		for globalID, restID := range req.IngredientMappings {
			var ing models.Ingredient
			if err := tx.First(&ing, "id = ? AND restaurant_id = ?", restID, req.RestaurantID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("manual mapping %s -> %s: %w", globalID, restID, ErrIngredientNotFound)
				}
				return err
			}
			overrides[globalID] = ing
		}

		// Snapshot for the matcher; extended in place as rows are created so
		// later requirements can match ingredients created earlier in the
		// same import.
		var inventory []models.Ingredient
		if err := tx.Where("restaurant_id = ?", req.RestaurantID).Find(&inventory).Error; err != nil {
			return err
		}

		finalPrice := dish.DefaultPrice
		if req.PriceOverride != nil {
			finalPrice = *req.PriceOverride
		}
		autoCreate := true
		if req.AutoCreateMissing != nil {
			autoCreate = *req.AutoCreateMissing
		}

		menuItem := models.MenuItem{
			RestaurantID:    req.RestaurantID,
			Name:            dish.Name,
			Description:     dish.Description,
			Category:        dish.Category,
			Price:           finalPrice,
			ImageURL:        dish.ImageURL,
			IsAvailable:     true,
			IsVegetarian:    dish.IsVegetarian,
			SpiceLevel:      dish.SpiceLevel,
			PrepTimeMinutes: dish.PrepTimeMinutes,
			Calories:        dish.Calories,
			Allergens:       dish.Allergens,
			Tags:            dish.Tags,
		}
		if err := tx.Create(&menuItem).Error; err != nil {
			// The unique index on (restaurant_id, name) closes the race two
			// concurrent imports can win past the count check above.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateMenuName
			}
			return err
		}

		details := make([]MappingDetail, 0, len(reqs))
		warnings := []string{}
		var (
			mapped  int
			created int
		)

		for _, r := range reqs {
			detail := MappingDetail{
				GlobalIngredientID:   r.ingredient.ID,
				GlobalIngredientName: r.ingredient.Name,
				QuantityNeeded:       r.link.QuantityPerServing,
				Unit:                 r.link.Unit,
			}

			var resolved *models.Ingredient

			if ing, ok := overrides[r.ingredient.ID]; ok {
				resolved = &ing
				detail.MatchConfidence = ExactConfidence
				detail.MatchType = MatchManual
				mapped++
			} else if best := s.matcher.BestMatch(&r.ingredient, inventory); best != nil {
				for i := range inventory {
					if inventory[i].ID == best.IngredientID {
						resolved = &inventory[i]
						break
					}
				}
				detail.MatchConfidence = best.Confidence
				detail.MatchType = best.MatchType
				mapped++
			} else if autoCreate {
				newIng := models.Ingredient{
					RestaurantID: req.RestaurantID,
					Name:         r.ingredient.Name,
					Category:     r.ingredient.Category,
					Unit:         r.ingredient.StandardUnit,
					Quantity:     0,
					MinQuantity:  defaultMinQuantity,
					CostPerUnit:  r.ingredient.AvgCostPerUnit,
				}
				if err := tx.Create(&newIng).Error; err != nil {
					return err
				}
				inventory = append(inventory, newIng)
				resolved = &newIng
				detail.MatchConfidence = ExactConfidence
				detail.NeedsCreation = true
				created++
				warnings = append(warnings, fmt.Sprintf("Created new ingredient: %s (0 stock)", newIng.Name))
			}

			if resolved != nil {
				detail.MatchedIngredientID = &resolved.ID
				detail.MatchedIngredientName = resolved.Name

				if resolved.Quantity < r.link.QuantityPerServing {
					warnings = append(warnings, fmt.Sprintf(
						"Low stock: %s (%g%s available, %g%s needed)",
						resolved.Name, resolved.Quantity, resolved.Unit,
						r.link.QuantityPerServing, resolved.Unit))
				}

				link := models.DishIngredient{
					MenuItemID:       menuItem.ID,
					IngredientID:     resolved.ID,
					RequiredQuantity: r.link.QuantityPerServing,
				}
				if err := tx.Create(&link).Error; err != nil {
					return err
				}
			}

			details = append(details, detail)
		}

		if mapped == 0 && created == 0 {
			warnings = append(warnings, "No ingredients could be resolved; menu item has no inventory links")
		}

		if err := tx.Model(&models.GlobalDish{}).
			Where("id = ?", dish.ID).
			Update("popularity_score", gorm.Expr("popularity_score + 1")).Error; err != nil {
			return err
		}

		log := models.DishAdditionLog{
			RestaurantID:       req.RestaurantID,
			GlobalDishID:       dish.ID,
			MenuItemID:         menuItem.ID,
			AddedBy:            req.AddedBy,
			PriceAdjustment:    finalPrice - dish.DefaultPrice,
			IngredientsMapped:  mapped,
			IngredientsCreated: created,
			MappingDetails: models.JSONBMap{
				"total_ingredients": len(reqs),
				"mapped":            mapped,
				"created":           created,
				"warnings":          warnings,
			},
		}
		if err := tx.Create(&log).Error; err != nil {
			return err
		}

		result = &ImportResult{
			MenuItemID:         menuItem.ID,
			DishName:           menuItem.Name,
			FinalPrice:         finalPrice,
			IngredientsMapped:  mapped,
			IngredientsCreated: created,
			MappingDetails:     details,
			Warnings:           warnings,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("dish imported from global library",
		zap.String("restaurant_id", req.RestaurantID.String()),
		zap.String("global_dish_id", req.GlobalDishID.String()),
		zap.String("menu_item_id", result.MenuItemID.String()),
		zap.Int("mapped", result.IngredientsMapped),
		zap.Int("created", result.IngredientsCreated))

	return result, nil
}

// PreviewImport reports how a dish's requirements would map onto the
// restaurant's inventory without writing anything.
func (s *ImportService) PreviewImport(ctx context.Context, restaurantID, dishID uuid.UUID) (*ImportPreview, error) {
	db := s.db.WithContext(ctx)

	var dish models.GlobalDish
	if err := db.First(&dish, "id = ?", dishID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDishNotFound
		}
		return nil, err
	}

	reqs, err := loadRequirements(db, dish.ID)
	if err != nil {
		return nil, err
	}

	var inventory []models.Ingredient
	if err := db.Where("restaurant_id = ?", restaurantID).Find(&inventory).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.Ingredient, len(inventory))
	for _, ing := range inventory {
		byID[ing.ID] = ing
	}

	previews := make([]RequirementPreview, 0, len(reqs))
	estimatedCost := 0.0
	minServings := math.MaxInt
	haveServings := false

	for _, r := range reqs {
		matches := s.matcher.FindMatches(&r.ingredient, inventory)
		if matches == nil {
			matches = []MatchCandidate{}
		}

		preview := RequirementPreview{
			GlobalIngredientID:   r.ingredient.ID,
			GlobalIngredientName: r.ingredient.Name,
			QuantityNeeded:       r.link.QuantityPerServing,
			Unit:                 r.link.Unit,
			Matches:              matches,
			NeedsCreation:        len(matches) == 0,
		}

		if len(matches) > 0 {
			best := matches[0]
			preview.BestMatch = &best

			if r.link.QuantityPerServing > 0 {
				servings := int(best.CurrentStock / r.link.QuantityPerServing)
				if servings < minServings {
					minServings = servings
				}
				haveServings = true

				if ing, ok := byID[best.IngredientID]; ok && ing.CostPerUnit > 0 {
					estimatedCost += r.link.QuantityPerServing * ing.CostPerUnit
				}
			}
		}

		previews = append(previews, preview)
	}

	if !haveServings {
		minServings = 0
	}
	estimatedCost = math.Round(estimatedCost*100) / 100

	return &ImportPreview{
		DishID:                  dish.ID,
		DishName:                dish.Name,
		Description:             dish.Description,
		Category:                dish.Category,
		DefaultPrice:            dish.DefaultPrice,
		TotalIngredients:        len(reqs),
		Ingredients:             previews,
		EstimatedCostPerServing: estimatedCost,
		ProfitMargin:            math.Round((dish.DefaultPrice-estimatedCost)*100) / 100,
		CanMakeServings:         minServings,
	}, nil
}
