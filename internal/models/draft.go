package models

import "strconv"

// Draft is the all-string form state held while the add/edit modal is open.
type Draft struct {
	Name             string `json:"food_name" validate:"required"`
	Rating           string `json:"food_rating" validate:"required,numeric"`
	Price            string `json:"food_price"`
	Image            string `json:"food_image" validate:"required"`
	RestaurantName   string `json:"restaurant_name" validate:"required"`
	RestaurantLogo   string `json:"restaurant_logo" validate:"required"`
	RestaurantStatus string `json:"restaurant_status" validate:"oneof='Open Now' Closed"`
}

// EmptyDraft is the initial state of the add form.
func EmptyDraft() Draft {
	return Draft{RestaurantStatus: string(StatusOpenNow)}
}

// DraftFromFood seeds the edit form from an existing meal.
func DraftFromFood(f Food) Draft {
	return Draft{
		Name:             f.Name,
		Rating:           formatNumber(f.Rating),
		Price:            formatNumber(f.Price),
		Image:            f.Image,
		RestaurantName:   f.Restaurant,
		RestaurantLogo:   f.RestaurantLogo,
		RestaurantStatus: string(FormStatus(f.Status)),
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
