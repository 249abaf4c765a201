package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GlobalDish is a shared library entry describing a standard dish that any
// restaurant can add to its menu. Curated centrally; restaurants never edit it.
type GlobalDish struct {
	ID              uuid.UUID        `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	DeletedAt       gorm.DeletedAt   `gorm:"index" json:"-"`
	Name            string           `gorm:"size:255;not null;index" json:"name"`
	Description     string           `gorm:"type:text" json:"description"`
	Category        string           `gorm:"size:100;index" json:"category"`
	Cuisine         string           `gorm:"size:100;index" json:"cuisine"`
	DefaultPrice    float64          `gorm:"not null" json:"default_price"`
	ImageURL        string           `gorm:"size:500" json:"image_url"`
	IsVegetarian    bool             `gorm:"default:false" json:"is_vegetarian"`
	SpiceLevel      int              `gorm:"default:0" json:"spice_level"` // 0-5
	PrepTimeMinutes int              `gorm:"default:15" json:"prep_time_minutes"`
	Calories        int              `json:"calories"`
	Allergens       JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"allergens"`
	Tags            JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"tags"`
	PopularityScore float64          `gorm:"default:0" json:"popularity_score"`
	IsActive        bool             `gorm:"default:true" json:"is_active"`
}

func (d *GlobalDish) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// GlobalIngredient is a shared library ingredient. AlternateNames carries the
// synonyms the matcher checks ("Paneer" -> ["Cottage Cheese", "Indian Cheese"]).
type GlobalIngredient struct {
	ID               uuid.UUID        `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
	Name             string           `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Category         string           `gorm:"size:100;index" json:"category"`
	StandardUnit     string           `gorm:"size:50;not null" json:"standard_unit"`
	AlternateNames   JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"alternate_names"`
	AvgCostPerUnit   float64          `gorm:"default:0" json:"avg_cost_per_unit"`
	IsPerishable     bool             `gorm:"default:false" json:"is_perishable"`
	AvgShelfLifeDays int              `json:"avg_shelf_life_days"`
}

func (i *GlobalIngredient) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// GlobalDishIngredient links a global dish to one of its required ingredients
// with the quantity needed per serving.
type GlobalDishIngredient struct {
	ID                 uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt          time.Time `json:"created_at"`
	DishID             uuid.UUID `gorm:"type:varchar(36);not null;index" json:"dish_id"`
	IngredientID       uuid.UUID `gorm:"type:varchar(36);not null;index" json:"ingredient_id"`
	QuantityPerServing float64   `gorm:"not null" json:"quantity_per_serving"`
	Unit               string    `gorm:"size:50;not null" json:"unit"`
	IsOptional         bool      `gorm:"default:false" json:"is_optional"`
	Notes              string    `gorm:"type:text" json:"notes"`
}

func (di *GlobalDishIngredient) BeforeCreate(tx *gorm.DB) error {
	if di.ID == uuid.Nil {
		di.ID = uuid.New()
	}
	return nil
}
