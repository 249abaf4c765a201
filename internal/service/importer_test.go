package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/rasoihub/backend/internal/models"
	"github.com/rasoihub/backend/internal/service"
	"github.com/rasoihub/backend/internal/testhelpers"
)

type importFixture struct {
	db         *gorm.DB
	svc        *service.ImportService
	restaurant models.Restaurant
	manager    models.User
	dish       models.GlobalDish
}

func newImportFixture(t *testing.T) *importFixture {
	db := testhelpers.SetupSQLiteDatabase(t)

	f := &importFixture{
		db:  db,
		svc: service.NewImportService(db, zap.NewNop()),
	}

	f.restaurant = models.Restaurant{Name: "Test Kitchen"}
	require.NoError(t, db.Create(&f.restaurant).Error)

	f.manager = models.User{
		Name:         "Manager",
		Email:        "manager@test.local",
		PasswordHash: "x",
		Role:         models.RoleManager,
		RestaurantID: f.restaurant.ID,
	}
	require.NoError(t, db.Create(&f.manager).Error)

	f.dish = models.GlobalDish{
		Name:         "Paneer Butter Masala",
		Description:  "Rich tomato gravy",
		Category:     "Main Course",
		DefaultPrice: 280,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&f.dish).Error)

	return f
}

func (f *importFixture) addGlobalIngredient(t *testing.T, name string, alternates []string, quantity float64) models.GlobalIngredient {
	t.Helper()
	ing := models.GlobalIngredient{
		Name:           name,
		StandardUnit:   "kg",
		AlternateNames: models.JSONBStringArray(alternates),
		AvgCostPerUnit: 100,
	}
	require.NoError(t, f.db.Create(&ing).Error)
	require.NoError(t, f.db.Create(&models.GlobalDishIngredient{
		DishID:             f.dish.ID,
		IngredientID:       ing.ID,
		QuantityPerServing: quantity,
		Unit:               "kg",
	}).Error)
	return ing
}

func (f *importFixture) addInventory(t *testing.T, name string, quantity, costPerUnit float64) models.Ingredient {
	t.Helper()
	ing := models.Ingredient{
		RestaurantID: f.restaurant.ID,
		Name:         name,
		Unit:         "kg",
		Quantity:     quantity,
		CostPerUnit:  costPerUnit,
	}
	require.NoError(t, f.db.Create(&ing).Error)
	return ing
}

func (f *importFixture) importRequest() service.ImportRequest {
	return service.ImportRequest{
		RestaurantID: f.restaurant.ID,
		GlobalDishID: f.dish.ID,
		AddedBy:      f.manager.ID,
	}
}

func TestImportDishAllMatched(t *testing.T) {
	f := newImportFixture(t)
	f.addGlobalIngredient(t, "Paneer", nil, 0.2)
	f.addGlobalIngredient(t, "Tomato", nil, 0.15)
	paneer := f.addInventory(t, "Paneer", 5, 320)
	f.addInventory(t, "Tomato", 10, 40)

	result, err := f.svc.ImportDish(context.Background(), f.importRequest())
	require.NoError(t, err)

	assert.Equal(t, "Paneer Butter Masala", result.DishName)
	assert.Equal(t, 280.0, result.FinalPrice)
	assert.Equal(t, 2, result.IngredientsMapped)
	assert.Equal(t, 0, result.IngredientsCreated)
	require.Len(t, result.MappingDetails, 2)
	assert.Equal(t, paneer.ID, *result.MappingDetails[0].MatchedIngredientID)
	assert.Equal(t, service.MatchExact, result.MappingDetails[0].MatchType)

	var item models.MenuItem
	require.NoError(t, f.db.First(&item, "id = ?", result.MenuItemID).Error)
	assert.Equal(t, f.restaurant.ID, item.RestaurantID)
	assert.True(t, item.IsAvailable)

	var links int64
	f.db.Model(&models.DishIngredient{}).Where("menu_item_id = ?", item.ID).Count(&links)
	assert.EqualValues(t, 2, links)

	var dish models.GlobalDish
	require.NoError(t, f.db.First(&dish, "id = ?", f.dish.ID).Error)
	assert.Equal(t, 1.0, dish.PopularityScore)

	var logs []models.DishAdditionLog
	require.NoError(t, f.db.Where("restaurant_id = ?", f.restaurant.ID).Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, 2, logs[0].IngredientsMapped)
	assert.Equal(t, 0.0, logs[0].PriceAdjustment)
}

func TestImportDishAutoCreatesMissing(t *testing.T) {
	f := newImportFixture(t)
	f.addGlobalIngredient(t, "Paneer", nil, 0.2)
	f.addGlobalIngredient(t, "Kasuri Methi", nil, 0.01)
	f.addInventory(t, "Paneer", 5, 320)

	result, err := f.svc.ImportDish(context.Background(), f.importRequest())
	require.NoError(t, err)

	assert.Equal(t, 1, result.IngredientsMapped)
	assert.Equal(t, 1, result.IngredientsCreated)
	assert.Contains(t, result.Warnings, "Created new ingredient: Kasuri Methi (0 stock)")

	var created models.Ingredient
	require.NoError(t, f.db.First(&created, "restaurant_id = ? AND name = ?", f.restaurant.ID, "Kasuri Methi").Error)
	assert.Equal(t, 0.0, created.Quantity)
	assert.Equal(t, 10.0, created.MinQuantity)
	assert.Equal(t, "kg", created.Unit)
	assert.Equal(t, 100.0, created.CostPerUnit)

	var detail *service.MappingDetail
	for i := range result.MappingDetails {
		if result.MappingDetails[i].GlobalIngredientName == "Kasuri Methi" {
			detail = &result.MappingDetails[i]
		}
	}
	require.NotNil(t, detail)
	assert.True(t, detail.NeedsCreation)
	assert.Equal(t, service.ExactConfidence, detail.MatchConfidence)
	assert.Equal(t, created.ID, *detail.MatchedIngredientID)
}

func TestImportDishAutoCreateDisabled(t *testing.T) {
	f := newImportFixture(t)
	f.addGlobalIngredient(t, "Kasuri Methi", nil, 0.01)

	autoCreate := false
	req := f.importRequest()
	req.AutoCreateMissing = &autoCreate

	result, err := f.svc.ImportDish(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 0, result.IngredientsMapped)
	assert.Equal(t, 0, result.IngredientsCreated)
	assert.Contains(t, result.Warnings, "No ingredients could be resolved; menu item has no inventory links")

	require.Len(t, result.MappingDetails, 1)
	assert.Nil(t, result.MappingDetails[0].MatchedIngredientID)
	assert.Equal(t, 0.0, result.MappingDetails[0].MatchConfidence)

	// The menu item still exists, just without inventory links.
	var item models.MenuItem
	require.NoError(t, f.db.First(&item, "id = ?", result.MenuItemID).Error)
	var links int64
	f.db.Model(&models.DishIngredient{}).Where("menu_item_id = ?", item.ID).Count(&links)
	assert.EqualValues(t, 0, links)

	var inventoryCount int64
	f.db.Model(&models.Ingredient{}).Where("restaurant_id = ?", f.restaurant.ID).Count(&inventoryCount)
	assert.EqualValues(t, 0, inventoryCount)
}

func TestImportDishManualOverride(t *testing.T) {
	f := newImportFixture(t)
	paneerGlobal := f.addGlobalIngredient(t, "Paneer", nil, 0.2)
	target := f.addInventory(t, "House Cheese Block", 3, 250)
	f.addInventory(t, "Paneer", 5, 320)

	req := f.importRequest()
	req.IngredientMappings = map[uuid.UUID]uuid.UUID{paneerGlobal.ID: target.ID}

	result, err := f.svc.ImportDish(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, result.MappingDetails, 1)
	assert.Equal(t, target.ID, *result.MappingDetails[0].MatchedIngredientID)
	assert.Equal(t, service.MatchManual, result.MappingDetails[0].MatchType)
	assert.Equal(t, service.ExactConfidence, result.MappingDetails[0].MatchConfidence)
}

func TestImportDishManualOverrideWrongRestaurant(t *testing.T) {
	f := newImportFixture(t)
	paneerGlobal := f.addGlobalIngredient(t, "Paneer", nil, 0.2)

	other := models.Restaurant{Name: "Other Kitchen"}
	require.NoError(t, f.db.Create(&other).Error)
	foreign := models.Ingredient{RestaurantID: other.ID, Name: "Paneer", Unit: "kg"}
	require.NoError(t, f.db.Create(&foreign).Error)

	req := f.importRequest()
	req.IngredientMappings = map[uuid.UUID]uuid.UUID{paneerGlobal.ID: foreign.ID}

	_, err := f.svc.ImportDish(context.Background(), req)
	require.ErrorIs(t, err, service.ErrIngredientNotFound)

	// Nothing committed.
	var items int64
	f.db.Model(&models.MenuItem{}).Where("restaurant_id = ?", f.restaurant.ID).Count(&items)
	assert.EqualValues(t, 0, items)
	var logs int64
	f.db.Model(&models.DishAdditionLog{}).Count(&logs)
	assert.EqualValues(t, 0, logs)
}

func TestImportDishPriceOverride(t *testing.T) {
	f := newImportFixture(t)
	f.addGlobalIngredient(t, "Paneer", nil, 0.2)
	f.addInventory(t, "Paneer", 5, 320)

	price := 315.0
	req := f.importRequest()
	req.PriceOverride = &price

	result, err := f.svc.ImportDish(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 315.0, result.FinalPrice)

	var log models.DishAdditionLog
	require.NoError(t, f.db.First(&log, "menu_item_id = ?", result.MenuItemID).Error)
	assert.Equal(t, 35.0, log.PriceAdjustment)
}

func TestImportDishLowStockWarning(t *testing.T) {
	f := newImportFixture(t)
	f.addGlobalIngredient(t, "Paneer", nil, 0.5)
	f.addInventory(t, "Paneer", 0.2, 320)

	result, err := f.svc.ImportDish(context.Background(), f.importRequest())
	require.NoError(t, err)
	assert.Contains(t, result.Warnings, "Low stock: Paneer (0.2kg available, 0.5kg needed)")
}

func TestImportDishNotFound(t *testing.T) {
	f := newImportFixture(t)
	req := f.importRequest()
	req.GlobalDishID = uuid.New()

	_, err := f.svc.ImportDish(context.Background(), req)
	assert.ErrorIs(t, err, service.ErrDishNotFound)
}

func TestImportDishInactive(t *testing.T) {
	f := newImportFixture(t)
	f.addGlobalIngredient(t, "Paneer", nil, 0.2)
	require.NoError(t, f.db.Model(&models.GlobalDish{}).Where("id = ?", f.dish.ID).Update("is_active", false).Error)

	_, err := f.svc.ImportDish(context.Background(), f.importRequest())
	assert.ErrorIs(t, err, service.ErrDishInactive)
}

func TestImportDishDuplicateName(t *testing.T) {
	f := newImportFixture(t)
	f.addGlobalIngredient(t, "Paneer", nil, 0.2)
	f.addInventory(t, "Paneer", 5, 320)

	_, err := f.svc.ImportDish(context.Background(), f.importRequest())
	require.NoError(t, err)

	_, err = f.svc.ImportDish(context.Background(), f.importRequest())
	assert.ErrorIs(t, err, service.ErrDuplicateMenuName)

	// The popularity bump from the rejected attempt rolls back with it.
	var dish models.GlobalDish
	require.NoError(t, f.db.First(&dish, "id = ?", f.dish.ID).Error)
	assert.Equal(t, 1.0, dish.PopularityScore)
}

func TestImportDishDuplicateNameEnforcedByIndex(t *testing.T) {
	f := newImportFixture(t)
	f.addGlobalIngredient(t, "Paneer", nil, 0.2)
	f.addInventory(t, "Paneer", 5, 320)

	result, err := f.svc.ImportDish(context.Background(), f.importRequest())
	require.NoError(t, err)

	// Soft-delete the menu item: the count precondition no longer sees it,
	// but the unique index still holds the row, so the insert itself
	// collides and must surface the same error as the pre-check.
	require.NoError(t, f.db.Delete(&models.MenuItem{}, "id = ?", result.MenuItemID).Error)

	_, err = f.svc.ImportDish(context.Background(), f.importRequest())
	assert.ErrorIs(t, err, service.ErrDuplicateMenuName)
}

func TestImportDishRollsBackOnStorageFailure(t *testing.T) {
	f := newImportFixture(t)
	f.addGlobalIngredient(t, "Paneer", nil, 0.2)
	f.addGlobalIngredient(t, "Kasuri Methi", nil, 0.01)
	f.addInventory(t, "Paneer", 5, 320)

	// Fail the analytics insert, the last write of the transaction, so the
	// menu item, ingredient link, auto-created inventory row and popularity
	// bump have all happened before the error.
	forced := errors.New("storage unavailable")
	require.NoError(t, f.db.Callback().Create().Before("gorm:create").Register("fail_addition_log", func(tx *gorm.DB) {
		if _, ok := tx.Statement.Dest.(*models.DishAdditionLog); ok {
			tx.AddError(forced)
		}
	}))
	t.Cleanup(func() {
		_ = f.db.Callback().Create().Remove("fail_addition_log")
	})

	_, err := f.svc.ImportDish(context.Background(), f.importRequest())
	require.ErrorIs(t, err, forced)

	var items int64
	f.db.Model(&models.MenuItem{}).Where("restaurant_id = ?", f.restaurant.ID).Count(&items)
	assert.EqualValues(t, 0, items)

	var links int64
	f.db.Model(&models.DishIngredient{}).Count(&links)
	assert.EqualValues(t, 0, links)

	var created int64
	f.db.Model(&models.Ingredient{}).Where("restaurant_id = ? AND name = ?", f.restaurant.ID, "Kasuri Methi").Count(&created)
	assert.EqualValues(t, 0, created)

	var dish models.GlobalDish
	require.NoError(t, f.db.First(&dish, "id = ?", f.dish.ID).Error)
	assert.Equal(t, 0.0, dish.PopularityScore)

	var logs int64
	f.db.Model(&models.DishAdditionLog{}).Count(&logs)
	assert.EqualValues(t, 0, logs)
}

func TestImportDishNoIngredients(t *testing.T) {
	f := newImportFixture(t)

	_, err := f.svc.ImportDish(context.Background(), f.importRequest())
	assert.ErrorIs(t, err, service.ErrNoIngredients)
}

func TestImportDishAlternateNameMatch(t *testing.T) {
	f := newImportFixture(t)
	f.addGlobalIngredient(t, "Paneer", []string{"Cottage Cheese"}, 0.2)
	f.addInventory(t, "Cottage Cheese", 2, 300)

	result, err := f.svc.ImportDish(context.Background(), f.importRequest())
	require.NoError(t, err)

	require.Len(t, result.MappingDetails, 1)
	assert.Equal(t, service.MatchAlternateName, result.MappingDetails[0].MatchType)
	assert.Equal(t, service.AlternateNameConfidence, result.MappingDetails[0].MatchConfidence)
	assert.Equal(t, 0, result.IngredientsCreated)
}

func TestPreviewImport(t *testing.T) {
	f := newImportFixture(t)
	f.addGlobalIngredient(t, "Paneer", nil, 0.2)
	f.addGlobalIngredient(t, "Tomato", nil, 0.1)
	f.addGlobalIngredient(t, "Kasuri Methi", nil, 0.01)
	f.addInventory(t, "Paneer", 1.0, 320)
	f.addInventory(t, "Tomato", 5.0, 40)

	preview, err := f.svc.PreviewImport(context.Background(), f.restaurant.ID, f.dish.ID)
	require.NoError(t, err)

	assert.Equal(t, "Paneer Butter Masala", preview.DishName)
	assert.Equal(t, 3, preview.TotalIngredients)
	require.Len(t, preview.Ingredients, 3)

	// paneer: 1.0/0.2 = 5 servings; tomato: 5.0/0.1 = 50. The unmatched
	// requirement does not clamp servings.
	assert.Equal(t, 5, preview.CanMakeServings)

	// 0.2*320 + 0.1*40
	assert.InDelta(t, 68.0, preview.EstimatedCostPerServing, 1e-9)
	assert.InDelta(t, 212.0, preview.ProfitMargin, 1e-9)

	var methi *service.RequirementPreview
	for i := range preview.Ingredients {
		if preview.Ingredients[i].GlobalIngredientName == "Kasuri Methi" {
			methi = &preview.Ingredients[i]
		}
	}
	require.NotNil(t, methi)
	assert.True(t, methi.NeedsCreation)
	assert.Nil(t, methi.BestMatch)
	assert.Empty(t, methi.Matches)
}

func TestPreviewImportNoInventory(t *testing.T) {
	f := newImportFixture(t)
	f.addGlobalIngredient(t, "Paneer", nil, 0.2)

	preview, err := f.svc.PreviewImport(context.Background(), f.restaurant.ID, f.dish.ID)
	require.NoError(t, err)

	assert.Equal(t, 0, preview.CanMakeServings)
	assert.Equal(t, 0.0, preview.EstimatedCostPerServing)
	assert.Equal(t, 280.0, preview.ProfitMargin)
}

func TestImportResultMarshalsEmptyWarnings(t *testing.T) {
	f := newImportFixture(t)
	f.addGlobalIngredient(t, "Paneer", nil, 0.2)
	f.addInventory(t, "Paneer", 5, 320)

	result, err := f.svc.ImportDish(context.Background(), f.importRequest())
	require.NoError(t, err)
	require.Empty(t, result.Warnings)

	data, err := json.Marshal(result)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"warnings":[]`)
	assert.NotContains(t, string(data), `"warnings":null`)
}

func TestPreviewMarshalsEmptyMatches(t *testing.T) {
	f := newImportFixture(t)
	f.addGlobalIngredient(t, "Kasuri Methi", nil, 0.01)

	preview, err := f.svc.PreviewImport(context.Background(), f.restaurant.ID, f.dish.ID)
	require.NoError(t, err)

	data, err := json.Marshal(preview)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"matches":[]`)
	assert.NotContains(t, string(data), `"matches":null`)
}

func TestPreviewImportDishNotFound(t *testing.T) {
	f := newImportFixture(t)

	_, err := f.svc.PreviewImport(context.Background(), f.restaurant.ID, uuid.New())
	assert.ErrorIs(t, err, service.ErrDishNotFound)
}
