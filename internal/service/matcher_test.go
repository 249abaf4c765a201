package service_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rasoihub/backend/internal/models"
	"github.com/rasoihub/backend/internal/service"
)

func inventoryRow(name string, quantity float64) models.Ingredient {
	return models.Ingredient{
		ID:       uuid.New(),
		Name:     name,
		Quantity: quantity,
		Unit:     "kg",
	}
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "paneer", service.NormalizeName("  Paneer "))
	assert.Equal(t, "chicken breast", service.NormalizeName("Chicken-Breast"))
	assert.Equal(t, "chicken breast", service.NormalizeName("chicken_breast"))
	assert.Equal(t, "", service.NormalizeName("   "))
}

func TestFindMatchesExact(t *testing.T) {
	matcher := service.NewIngredientMatcher()
	global := &models.GlobalIngredient{Name: "Paneer"}
	inventory := []models.Ingredient{inventoryRow("  paneer ", 5)}

	matches := matcher.FindMatches(global, inventory)
	require.Len(t, matches, 1)
	assert.Equal(t, service.MatchExact, matches[0].MatchType)
	assert.Equal(t, service.ExactConfidence, matches[0].Confidence)
	assert.Equal(t, "  paneer ", matches[0].Name)
	assert.Equal(t, 5.0, matches[0].CurrentStock)
}

func TestFindMatchesHyphensAndUnderscores(t *testing.T) {
	matcher := service.NewIngredientMatcher()
	global := &models.GlobalIngredient{Name: "Chicken-Breast"}
	inventory := []models.Ingredient{inventoryRow("chicken_breast", 2)}

	matches := matcher.FindMatches(global, inventory)
	require.Len(t, matches, 1)
	assert.Equal(t, service.MatchExact, matches[0].MatchType)
}

func TestFindMatchesAlternateName(t *testing.T) {
	matcher := service.NewIngredientMatcher()
	global := &models.GlobalIngredient{
		Name:           "Paneer",
		AlternateNames: models.JSONBStringArray{"Cottage Cheese", "Indian Cheese"},
	}
	inventory := []models.Ingredient{inventoryRow("Cottage Cheese", 3)}

	matches := matcher.FindMatches(global, inventory)
	require.Len(t, matches, 1)
	assert.Equal(t, service.MatchAlternateName, matches[0].MatchType)
	assert.Equal(t, service.AlternateNameConfidence, matches[0].Confidence)
}

func TestFindMatchesFuzzy(t *testing.T) {
	matcher := service.NewIngredientMatcher()
	global := &models.GlobalIngredient{Name: "Tomato"}
	inventory := []models.Ingredient{inventoryRow("Tomatoes", 10)}

	matches := matcher.FindMatches(global, inventory)
	require.Len(t, matches, 1)
	assert.Equal(t, service.MatchFuzzy, matches[0].MatchType)
	// "tomato" vs "tomatoes": 2*6/(6+8)
	assert.InDelta(t, 12.0/14.0, matches[0].Confidence, 1e-9)
}

func TestFindMatchesSubstringOnlyWhenNothingElseHits(t *testing.T) {
	matcher := service.NewIngredientMatcher()

	// The long row name drags the fuzzy ratio below the floor, so only the
	// substring strategy can report it.
	global := &models.GlobalIngredient{Name: "Oil"}
	inventory := []models.Ingredient{inventoryRow("Sunflower Oil Refined 5L Bottle", 4)}

	matches := matcher.FindMatches(global, inventory)
	require.Len(t, matches, 1)
	assert.Equal(t, service.MatchSubstring, matches[0].MatchType)
	assert.Equal(t, service.SubstringConfidence, matches[0].Confidence)
}

func TestFindMatchesFuzzyShadowsSubstring(t *testing.T) {
	matcher := service.NewIngredientMatcher()

	// "paneer cubes" contains "paneer", but the fuzzy strategy already accepts
	// the row, so the row keeps its fuzzy score rather than the flat
	// substring confidence.
	global := &models.GlobalIngredient{Name: "Paneer"}
	inventory := []models.Ingredient{inventoryRow("Paneer Cubes", 1)}

	matches := matcher.FindMatches(global, inventory)
	require.Len(t, matches, 1)
	assert.Equal(t, service.MatchFuzzy, matches[0].MatchType)
	assert.InDelta(t, 12.0/18.0, matches[0].Confidence, 1e-9)
}

func TestFindMatchesExcludesLowSimilarity(t *testing.T) {
	matcher := service.NewIngredientMatcher()
	global := &models.GlobalIngredient{Name: "Saffron"}
	inventory := []models.Ingredient{inventoryRow("Dishwashing Liquid", 2)}

	matches := matcher.FindMatches(global, inventory)
	assert.Empty(t, matches)
}

func TestFindMatchesOrdering(t *testing.T) {
	matcher := service.NewIngredientMatcher()
	global := &models.GlobalIngredient{Name: "Tomato"}
	inventory := []models.Ingredient{
		inventoryRow("Tomato Puree", 1),
		inventoryRow("tomato", 8),
		inventoryRow("Cherry Tomatoes", 2),
	}

	matches := matcher.FindMatches(global, inventory)
	require.Len(t, matches, 3)
	assert.Equal(t, "tomato", matches[0].Name)
	assert.Equal(t, service.MatchExact, matches[0].MatchType)
	assert.Equal(t, "Tomato Puree", matches[1].Name)
	assert.Equal(t, "Cherry Tomatoes", matches[2].Name)
	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i-1].Confidence, matches[i].Confidence)
	}
}

func TestFindMatchesOnePerRow(t *testing.T) {
	matcher := service.NewIngredientMatcher()

	// The row satisfies exact, alternate and fuzzy at once; only one candidate
	// with the highest confidence comes back.
	global := &models.GlobalIngredient{
		Name:           "Paneer",
		AlternateNames: models.JSONBStringArray{"paneer"},
	}
	inventory := []models.Ingredient{inventoryRow("Paneer", 5)}

	matches := matcher.FindMatches(global, inventory)
	require.Len(t, matches, 1)
	assert.Equal(t, service.MatchExact, matches[0].MatchType)
	assert.Equal(t, service.ExactConfidence, matches[0].Confidence)
}

func TestFindMatchesEmptyInventory(t *testing.T) {
	matcher := service.NewIngredientMatcher()
	global := &models.GlobalIngredient{Name: "Paneer"}

	assert.Empty(t, matcher.FindMatches(global, nil))
	assert.Nil(t, matcher.BestMatch(global, nil))
}

func TestBestMatchPicksTopCandidate(t *testing.T) {
	matcher := service.NewIngredientMatcher()
	global := &models.GlobalIngredient{Name: "Tomato"}
	inventory := []models.Ingredient{
		inventoryRow("Tomato Puree", 1),
		inventoryRow("Tomato", 8),
	}

	best := matcher.BestMatch(global, inventory)
	require.NotNil(t, best)
	assert.Equal(t, "Tomato", best.Name)
	assert.Equal(t, service.ExactConfidence, best.Confidence)
}

func TestBestMatchNilWhenNothingPlausible(t *testing.T) {
	matcher := service.NewIngredientMatcher()
	global := &models.GlobalIngredient{Name: "Saffron"}
	inventory := []models.Ingredient{inventoryRow("Charcoal Briquettes", 9)}

	assert.Nil(t, matcher.BestMatch(global, inventory))
}
