package api

// LoginRequest is the request body for /auth/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AddDishFromGlobalRequest is the request body for importing a global dish.
// All fields are optional; an empty body performs a plain auto-mapped import.
type AddDishFromGlobalRequest struct {
	PriceOverride *float64 `json:"price_override"`
	// IngredientMappings maps global ingredient ids to restaurant ingredient
	// ids for manual overrides.
	IngredientMappings map[string]string `json:"ingredient_mappings"`
	AutoCreateMissing  *bool             `json:"auto_create_missing"`
}
