package models

// Food is the canonical meal record shown by the catalog.
// Values are only produced by the normalizer and are never partially populated.
type Food struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Price          float64 `json:"price"`
	Rating         float64 `json:"rating"`
	Image          string  `json:"image"`
	Restaurant     string  `json:"restaurant"`
	RestaurantLogo string  `json:"restaurantLogo"`
	Status         Status  `json:"status"`
	Description    *string `json:"description,omitempty"`
	Category       *string `json:"category,omitempty"`
}

// FoodInput is the full set of editable fields used to create a meal.
// Status may be expressed in either the display or the form vocabulary.
type FoodInput struct {
	Name           string  `json:"name"`
	Price          float64 `json:"price"`
	Rating         float64 `json:"rating"`
	Image          string  `json:"image"`
	Restaurant     string  `json:"restaurant"`
	RestaurantLogo string  `json:"restaurantLogo"`
	Status         Status  `json:"status"`
}

// FoodPatch carries a partial update. A nil field is absent and is not sent.
type FoodPatch struct {
	Name           *string  `json:"name,omitempty"`
	Price          *float64 `json:"price,omitempty"`
	Rating         *float64 `json:"rating,omitempty"`
	Image          *string  `json:"image,omitempty"`
	Restaurant     *string  `json:"restaurant,omitempty"`
	RestaurantLogo *string  `json:"restaurantLogo,omitempty"`
	Status         *Status  `json:"status,omitempty"`
}

// PatchFromInput converts a full input into a patch carrying every field.
func PatchFromInput(in FoodInput) FoodPatch {
	return FoodPatch{
		Name:           &in.Name,
		Price:          &in.Price,
		Rating:         &in.Rating,
		Image:          &in.Image,
		Restaurant:     &in.Restaurant,
		RestaurantLogo: &in.RestaurantLogo,
		Status:         &in.Status,
	}
}

// FindByID returns the food with the given id from a fetched list.
func FindByID(foods []Food, id string) (Food, bool) {
	for _, f := range foods {
		if f.ID == id {
			return f, true
		}
	}
	return Food{}, false
}
