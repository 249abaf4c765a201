package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Restaurant struct {
	ID        uuid.UUID      `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	Address   string         `gorm:"size:500" json:"address"`
	Phone     string         `gorm:"size:50" json:"phone"`
}

func (r *Restaurant) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Ingredient is a restaurant-private inventory row. The importer may insert new
// rows here (zero stock) when a global ingredient has no acceptable match.
type Ingredient struct {
	ID              uuid.UUID      `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
	RestaurantID    uuid.UUID      `gorm:"type:varchar(36);not null;index" json:"restaurant_id"`
	Name            string         `gorm:"size:255;not null" json:"name"`
	Category        string         `gorm:"size:100" json:"category"`
	Unit            string         `gorm:"size:50" json:"unit"`
	Quantity        float64        `gorm:"default:0" json:"quantity"`
	MinQuantity     float64        `gorm:"default:0" json:"min_quantity"`
	CostPerUnit     float64        `gorm:"default:0" json:"cost_per_unit"`
	Supplier        string         `gorm:"size:255" json:"supplier"`
	StorageLocation string         `gorm:"size:255" json:"storage_location"`
}

func (i *Ingredient) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// MenuItem is a live dish on one restaurant's menu. The name is unique within a
// restaurant so two concurrent imports of the same dish cannot both commit.
type MenuItem struct {
	ID              uuid.UUID        `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	DeletedAt       gorm.DeletedAt   `gorm:"index" json:"-"`
	RestaurantID    uuid.UUID        `gorm:"type:varchar(36);not null;index:idx_menu_items_restaurant_name,unique" json:"restaurant_id"`
	Name            string           `gorm:"size:255;not null;index:idx_menu_items_restaurant_name,unique" json:"name"`
	Description     string           `gorm:"type:text" json:"description"`
	Category        string           `gorm:"size:100;index" json:"category"`
	Price           float64          `gorm:"not null" json:"price"`
	ImageURL        string           `gorm:"size:500" json:"image_url"`
	IsAvailable     bool             `gorm:"default:true" json:"is_available"`
	IsVegetarian    bool             `gorm:"default:false" json:"is_vegetarian"`
	SpiceLevel      int              `gorm:"default:0" json:"spice_level"`
	PrepTimeMinutes int              `gorm:"default:15" json:"prep_time_minutes"`
	Calories        int              `json:"calories"`
	Allergens       JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"allergens"`
	Tags            JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"tags"`
	PopularityScore float64          `gorm:"default:0" json:"popularity_score"`
}

func (m *MenuItem) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// DishIngredient links a menu item to an inventory ingredient with the
// quantity consumed per serving.
type DishIngredient struct {
	ID               uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt        time.Time `json:"created_at"`
	MenuItemID       uuid.UUID `gorm:"type:varchar(36);not null;index" json:"menu_item_id"`
	IngredientID     uuid.UUID `gorm:"type:varchar(36);not null;index" json:"ingredient_id"`
	RequiredQuantity float64   `gorm:"not null" json:"required_quantity"`
}

func (di *DishIngredient) BeforeCreate(tx *gorm.DB) error {
	if di.ID == uuid.Nil {
		di.ID = uuid.New()
	}
	return nil
}

// DishAdditionLog is an append-only analytics record written once per
// successful import. Never updated after creation.
type DishAdditionLog struct {
	ID                 uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt          time.Time `json:"created_at"`
	RestaurantID       uuid.UUID `gorm:"type:varchar(36);not null;index" json:"restaurant_id"`
	GlobalDishID       uuid.UUID `gorm:"type:varchar(36);not null;index" json:"global_dish_id"`
	MenuItemID         uuid.UUID `gorm:"type:varchar(36);not null" json:"menu_item_id"`
	AddedBy            uuid.UUID `gorm:"type:varchar(36);not null" json:"added_by"`
	PriceAdjustment    float64   `gorm:"default:0" json:"price_adjustment"`
	IngredientsMapped  int       `gorm:"default:0" json:"ingredients_mapped"`
	IngredientsCreated int       `gorm:"default:0" json:"ingredients_created"`
	MappingDetails     JSONBMap  `gorm:"type:jsonb" json:"mapping_details"`
}

func (l *DishAdditionLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
