package database

import (
	"gorm.io/gorm"

	"github.com/rasoihub/backend/internal/models"
)

// RunMigrations applies the schema for every model. Both postgres and the
// sqlite test databases go through GORM auto-migration.
func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Restaurant{},
		&models.Ingredient{},
		&models.MenuItem{},
		&models.DishIngredient{},
		&models.GlobalDish{},
		&models.GlobalIngredient{},
		&models.GlobalDishIngredient{},
		&models.DishAdditionLog{},
	)
}
