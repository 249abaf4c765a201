package main

import (
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/rasoihub/backend/config"
	"github.com/rasoihub/backend/internal/database"
	"github.com/rasoihub/backend/internal/models"
)

type seedIngredient struct {
	name           string
	category       string
	unit           string
	alternateNames []string
	avgCost        float64
}

type seedRequirement struct {
	ingredient string
	quantity   float64
	unit       string
	optional   bool
}

type seedDish struct {
	name         string
	description  string
	category     string
	cuisine      string
	price        float64
	vegetarian   bool
	spiceLevel   int
	prepMinutes  int
	calories     int
	allergens    []string
	tags         []string
	requirements []seedRequirement
}

var ingredients = []seedIngredient{
	{"Paneer", "Dairy", "kg", []string{"Cottage Cheese", "Indian Cheese"}, 320},
	{"Tomato", "Vegetables", "kg", []string{"Tamatar"}, 40},
	{"Onion", "Vegetables", "kg", []string{"Pyaz"}, 35},
	{"Butter", "Dairy", "kg", []string{"Makhan"}, 450},
	{"Heavy Cream", "Dairy", "liter", []string{"Fresh Cream", "Cooking Cream"}, 280},
	{"Basmati Rice", "Grains", "kg", []string{"Long Grain Rice"}, 120},
	{"Chicken Breast", "Meat", "kg", []string{"Chicken Fillet", "Boneless Chicken"}, 260},
	{"Garam Masala", "Spices", "kg", []string{}, 800},
	{"Ginger Garlic Paste", "Spices", "kg", []string{"Adrak Lehsun Paste"}, 180},
	{"Chickpeas", "Legumes", "kg", []string{"Garbanzo Beans", "Chole", "Chana"}, 110},
	{"All Purpose Flour", "Grains", "kg", []string{"Maida", "Plain Flour"}, 45},
	{"Yogurt", "Dairy", "kg", []string{"Curd", "Dahi"}, 90},
	{"Potato", "Vegetables", "kg", []string{"Aloo"}, 30},
	{"Mozzarella", "Dairy", "kg", []string{"Pizza Cheese"}, 520},
	{"Coriander", "Herbs", "kg", []string{"Cilantro", "Dhania"}, 60},
}

var dishes = []seedDish{
	{
		name:        "Paneer Butter Masala",
		description: "Paneer cubes simmered in a rich tomato and butter gravy.",
		category:    "Main Course",
		cuisine:     "North Indian",
		price:       280,
		vegetarian:  true,
		spiceLevel:  2,
		prepMinutes: 30,
		calories:    450,
		allergens:   []string{"dairy"},
		tags:        []string{"curry", "classic"},
		requirements: []seedRequirement{
			{"Paneer", 0.2, "kg", false},
			{"Tomato", 0.15, "kg", false},
			{"Butter", 0.05, "kg", false},
			{"Heavy Cream", 0.05, "liter", false},
			{"Garam Masala", 0.005, "kg", false},
		},
	},
	{
		name:        "Chicken Biryani",
		description: "Fragrant basmati rice layered with spiced chicken.",
		category:    "Main Course",
		cuisine:     "Hyderabadi",
		price:       350,
		spiceLevel:  3,
		prepMinutes: 60,
		calories:    650,
		tags:        []string{"rice", "signature"},
		requirements: []seedRequirement{
			{"Basmati Rice", 0.25, "kg", false},
			{"Chicken Breast", 0.3, "kg", false},
			{"Onion", 0.1, "kg", false},
			{"Yogurt", 0.1, "kg", false},
			{"Ginger Garlic Paste", 0.02, "kg", false},
			{"Coriander", 0.01, "kg", true},
		},
	},
	{
		name:        "Chole Bhature",
		description: "Spiced chickpea curry served with fried bread.",
		category:    "Main Course",
		cuisine:     "Punjabi",
		price:       180,
		vegetarian:  true,
		spiceLevel:  3,
		prepMinutes: 45,
		calories:    720,
		allergens:   []string{"gluten"},
		tags:        []string{"street food"},
		requirements: []seedRequirement{
			{"Chickpeas", 0.2, "kg", false},
			{"All Purpose Flour", 0.15, "kg", false},
			{"Onion", 0.08, "kg", false},
			{"Tomato", 0.08, "kg", false},
		},
	},
	{
		name:        "Margherita Pizza",
		description: "Classic pizza with tomato, mozzarella and basil.",
		category:    "Main Course",
		cuisine:     "Italian",
		price:       320,
		vegetarian:  true,
		prepMinutes: 25,
		calories:    850,
		allergens:   []string{"gluten", "dairy"},
		tags:        []string{"pizza"},
		requirements: []seedRequirement{
			{"All Purpose Flour", 0.25, "kg", false},
			{"Mozzarella", 0.15, "kg", false},
			{"Tomato", 0.1, "kg", false},
		},
	},
	{
		name:        "Aloo Paratha",
		description: "Whole wheat flatbread stuffed with spiced potatoes.",
		category:    "Breakfast",
		cuisine:     "North Indian",
		price:       90,
		vegetarian:  true,
		spiceLevel:  1,
		prepMinutes: 20,
		calories:    320,
		allergens:   []string{"gluten"},
		requirements: []seedRequirement{
			{"All Purpose Flour", 0.1, "kg", false},
			{"Potato", 0.15, "kg", false},
			{"Butter", 0.02, "kg", true},
		},
	},
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	ingredientIDs := make(map[string]models.GlobalIngredient, len(ingredients))
	for _, ing := range ingredients {
		row := models.GlobalIngredient{
			Name:           ing.name,
			Category:       ing.category,
			StandardUnit:   ing.unit,
			AlternateNames: models.JSONBStringArray(ing.alternateNames),
			AvgCostPerUnit: ing.avgCost,
		}
		if err := db.Where("name = ?", ing.name).FirstOrCreate(&row).Error; err != nil {
			log.Fatalf("Failed to seed ingredient %s: %v", ing.name, err)
		}
		ingredientIDs[ing.name] = row
	}
	log.Printf("Seeded %d global ingredients", len(ingredients))

	for _, d := range dishes {
		dish := models.GlobalDish{
			Name:            d.name,
			Description:     d.description,
			Category:        d.category,
			Cuisine:         d.cuisine,
			DefaultPrice:    d.price,
			IsVegetarian:    d.vegetarian,
			SpiceLevel:      d.spiceLevel,
			PrepTimeMinutes: d.prepMinutes,
			Calories:        d.calories,
			Allergens:       models.JSONBStringArray(d.allergens),
			Tags:            models.JSONBStringArray(d.tags),
			IsActive:        true,
		}
		if dish.Allergens == nil {
			dish.Allergens = models.JSONBStringArray{}
		}
		if dish.Tags == nil {
			dish.Tags = models.JSONBStringArray{}
		}

		var existing int64
		db.Model(&models.GlobalDish{}).Where("name = ?", d.name).Count(&existing)
		if existing > 0 {
			log.Printf("Skipping dish %s (already seeded)", d.name)
			continue
		}
		if err := db.Create(&dish).Error; err != nil {
			log.Fatalf("Failed to seed dish %s: %v", d.name, err)
		}

		for _, req := range d.requirements {
			ing, ok := ingredientIDs[req.ingredient]
			if !ok {
				log.Fatalf("Dish %s references unknown ingredient %s", d.name, req.ingredient)
			}
			link := models.GlobalDishIngredient{
				DishID:             dish.ID,
				IngredientID:       ing.ID,
				QuantityPerServing: req.quantity,
				Unit:               req.unit,
				IsOptional:         req.optional,
			}
			if err := db.Create(&link).Error; err != nil {
				log.Fatalf("Failed to link %s -> %s: %v", d.name, req.ingredient, err)
			}
		}
	}
	log.Printf("Seeded %d global dishes", len(dishes))

	seedDemoUsers(db)
}

// seedDemoUsers creates a demo restaurant with a manager login so the API is
// usable right after seeding.
func seedDemoUsers(db *gorm.DB) {
	restaurant := models.Restaurant{Name: "Demo Kitchen", Address: "12 MG Road, Bengaluru"}
	if err := db.Where("name = ?", restaurant.Name).FirstOrCreate(&restaurant).Error; err != nil {
		log.Fatalf("Failed to seed restaurant: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("manager123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}
	manager := models.User{
		Name:         "Demo Manager",
		Email:        "manager@demo.local",
		PasswordHash: string(hash),
		Role:         models.RoleManager,
		RestaurantID: restaurant.ID,
	}
	if err := db.Where("email = ?", manager.Email).FirstOrCreate(&manager).Error; err != nil {
		log.Fatalf("Failed to seed manager user: %v", err)
	}
	log.Printf("Seeded demo manager %s (restaurant %s)", manager.Email, restaurant.ID)
}
