// Package factories generates demo catalog data.
package factories

import (
	"fmt"
	"math/rand"
	"strconv"

	"github.com/jaswdr/faker"

	"github.com/Lixing-Zhang/kart-challenge/food-catalog/internal/models"
)

var dishes = []string{
	"Bowl Lasagna", "Chicken Burger", "Veggie Pizza", "Beef Ramen", "Pad Thai",
	"Fish Tacos", "Caesar Salad", "Butter Chicken", "Sushi Platter", "Falafel Wrap",
	"Mushroom Risotto", "Pork Dumplings", "Chilli Con Carne", "Poke Bowl", "Margherita",
}

type FoodFactory struct {
	fake faker.Faker
}

func NewFoodFactory() *FoodFactory {
	return &FoodFactory{fake: faker.New()}
}

// NewFoodFactoryWithSeed returns a factory producing a repeatable sequence.
func NewFoodFactoryWithSeed(seed int64) *FoodFactory {
	return &FoodFactory{fake: faker.NewWithSeed(rand.NewSource(seed))}
}

// Draft returns a form draft that passes validation.
func (f *FoodFactory) Draft() models.Draft {
	status := models.StatusOpenNow
	if f.fake.IntBetween(1, 4) == 1 {
		status = models.StatusClosed
	}

	return models.Draft{
		Name:             f.dish(),
		Rating:           strconv.FormatFloat(f.fake.Float64(1, 1, 4)+1, 'f', -1, 64),
		Price:            strconv.FormatFloat(f.fake.Float64(2, 5, 40), 'f', -1, 64),
		Image:            f.imageURL(),
		RestaurantName:   f.fake.Company().Name(),
		RestaurantLogo:   f.imageURL(),
		RestaurantStatus: string(status),
	}
}

// Drafts returns n drafts.
func (f *FoodFactory) Drafts(n int) []models.Draft {
	out := make([]models.Draft, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, f.Draft())
	}
	return out
}

// RawRecord returns a store record in one of the shapes the hosted store
// actually serves: nested or flat restaurant, numbers or numeric strings,
// status at either level.
func (f *FoodFactory) RawRecord() map[string]any {
	d := f.Draft()
	rec := map[string]any{
		"name":  d.Name,
		"image": d.Image,
	}

	if f.fake.Bool() {
		rec["price"] = d.Price
		rec["rating"] = d.Rating
	} else {
		rec["price"], _ = strconv.ParseFloat(d.Price, 64)
		rec["rating"], _ = strconv.ParseFloat(d.Rating, 64)
	}

	status := models.WireStatus(models.Status(d.RestaurantStatus))
	switch f.fake.IntBetween(0, 2) {
	case 0:
		rec["restaurant"] = map[string]any{
			"name":   d.RestaurantName,
			"logo":   d.RestaurantLogo,
			"status": string(status),
		}
	case 1:
		rec["restaurant"] = d.RestaurantName
		rec["restaurantLogo"] = d.RestaurantLogo
		rec["status"] = string(status)
	default:
		rec["status"] = string(status)
	}
	return rec
}

func (f *FoodFactory) dish() string {
	return f.fake.RandomStringElement(dishes)
}

func (f *FoodFactory) imageURL() string {
	return fmt.Sprintf("%s/%s.png", f.fake.Internet().URL(), f.fake.Lorem().Word())
}
