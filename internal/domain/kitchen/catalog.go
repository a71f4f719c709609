package kitchen

import "strings"

// Grocery categories assigned to canonical ingredients.
const (
	CategoryProduce   = "Produce"
	CategoryDairy     = "Dairy"
	CategoryMeat      = "Meat & Seafood"
	CategoryBakery    = "Bakery"
	CategoryFrozen    = "Frozen"
	CategoryBeverages = "Beverages"
	CategorySpices    = "Spices"
	CategoryPantry    = "Pantry"
	CategoryOther     = "Other"
)

// Categorize returns the grocery category for an ingredient name: exact match
// on the normalised name first, then ordered substring rules, then "Other".
func Categorize(name string) string {
	key := NormalizeName(name)
	if key == "" {
		return CategoryOther
	}
	if cat, ok := exactCategories[key]; ok {
		return cat
	}
	for _, rule := range substringCategories {
		if strings.Contains(key, rule.keyword) {
			return rule.category
		}
	}
	return CategoryOther
}

// PreferredLocations lists storage location names that usually hold a
// category, most likely first.
func PreferredLocations(category string) []string {
	switch category {
	case CategoryFrozen:
		return []string{"Freezer"}
	case CategoryDairy, CategoryMeat:
		return []string{"Fridge", "Refrigerator"}
	case CategoryProduce:
		return []string{"Fridge", "Refrigerator", "Counter", "Pantry"}
	case CategoryBakery:
		return []string{"Bread Box", "Counter", "Pantry"}
	case CategoryBeverages:
		return []string{"Pantry", "Fridge"}
	case CategorySpices:
		return []string{"Spice Rack", "Pantry", "Cupboard"}
	default:
		return []string{"Pantry", "Cupboard", "Cabinet"}
	}
}

var exactCategories = map[string]string{
	"apple": CategoryProduce, "banana": CategoryProduce, "lemon": CategoryProduce,
	"lime": CategoryProduce, "orange": CategoryProduce, "avocado": CategoryProduce,
	"carrot": CategoryProduce, "celery": CategoryProduce, "garlic": CategoryProduce,
	"ginger": CategoryProduce, "onion": CategoryProduce, "shallot": CategoryProduce,
	"tomato": CategoryProduce, "potato": CategoryProduce, "cucumber": CategoryProduce,
	"zucchini": CategoryProduce, "broccoli": CategoryProduce, "mushroom": CategoryProduce,
	"cilantro": CategoryProduce, "parsley": CategoryProduce, "basil": CategoryProduce,

	"milk": CategoryDairy, "butter": CategoryDairy, "egg": CategoryDairy,
	"yogurt": CategoryDairy, "parmesan": CategoryDairy, "mozzarella": CategoryDairy,
	"cheddar": CategoryDairy, "ricotta": CategoryDairy,

	"chicken": CategoryMeat, "beef": CategoryMeat, "pork": CategoryMeat,
	"bacon": CategoryMeat, "salmon": CategoryMeat, "shrimp": CategoryMeat,
	"tuna": CategoryMeat, "sausage": CategoryMeat, "turkey": CategoryMeat,

	"bread": CategoryBakery, "bagel": CategoryBakery, "tortilla": CategoryBakery,
	"baguette": CategoryBakery,

	"flour": CategoryPantry, "sugar": CategoryPantry, "rice": CategoryPantry,
	"pasta": CategoryPantry, "oat": CategoryPantry, "honey": CategoryPantry,
	"olive oil": CategoryPantry, "vinegar": CategoryPantry, "baking soda": CategoryPantry,
	"baking powder": CategoryPantry, "soy sauce": CategoryPantry,

	"salt": CategorySpices, "pepper": CategorySpices, "black pepper": CategorySpices,
	"saffron": CategorySpices, "cumin": CategorySpices, "paprika": CategorySpices,
	"cinnamon": CategorySpices, "oregano": CategorySpices, "nutmeg": CategorySpices,

	"coffee": CategoryBeverages, "tea": CategoryBeverages, "juice": CategoryBeverages,
	"wine": CategoryBeverages, "beer": CategoryBeverages,
}

type categoryRule struct {
	keyword  string
	category string
}

// Longer, more specific keywords come first.
var substringCategories = []categoryRule{
	{"ice cream", CategoryFrozen},
	{"frozen", CategoryFrozen},
	{"popsicle", CategoryFrozen},

	{"chicken broth", CategoryPantry},
	{"chicken stock", CategoryPantry},
	{"peanut butter", CategoryPantry},
	{"coconut milk", CategoryPantry},
	{"tomato paste", CategoryPantry},
	{"tomato sauce", CategoryPantry},

	{"ground beef", CategoryMeat},
	{"chicken", CategoryMeat},
	{"steak", CategoryMeat},
	{"fillet", CategoryMeat},

	{"cream cheese", CategoryDairy},
	{"sour cream", CategoryDairy},
	{"heavy cream", CategoryDairy},
	{"cheese", CategoryDairy},
	{"milk", CategoryDairy},
	{"cream", CategoryDairy},
	{"yogurt", CategoryDairy},

	{"green onion", CategoryProduce},
	{"bell pepper", CategoryProduce},
	{"chili pepper", CategoryProduce},
	{"lettuce", CategoryProduce},
	{"spinach", CategoryProduce},
	{"berry", CategoryProduce},
	{"onion", CategoryProduce},
	{"fresh", CategoryProduce},

	{"bread", CategoryBakery},
	{"bun", CategoryBakery},
	{"roll", CategoryBakery},

	{"powder", CategorySpices},
	{"seasoning", CategorySpices},
	{"flake", CategorySpices},
	{"dried", CategorySpices},

	{"oil", CategoryPantry},
	{"sauce", CategoryPantry},
	{"bean", CategoryPantry},
	{"noodle", CategoryPantry},
	{"canned", CategoryPantry},

	{"juice", CategoryBeverages},
	{"soda", CategoryBeverages},
}
