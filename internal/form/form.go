// Package form validates the add/edit meal form and converts an accepted
// draft into create and update inputs.
package form

import (
	"errors"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Lixing-Zhang/kart-challenge/food-catalog/internal/models"
)

// Form field names, as used in error maps.
const (
	FieldName             = "food_name"
	FieldRating           = "food_rating"
	FieldPrice            = "food_price"
	FieldImage            = "food_image"
	FieldRestaurantName   = "restaurant_name"
	FieldRestaurantLogo   = "restaurant_logo"
	FieldRestaurantStatus = "restaurant_status"
)

const (
	MsgNameRequired           = "Food name is required"
	MsgRatingNotNumber        = "Food Rating must be a number"
	MsgRatingRange            = "Food Rating must be between 1 and 5"
	MsgImageRequired          = "Food Image URL is required"
	MsgRestaurantNameRequired = "Restaurant Name is required"
	MsgRestaurantLogoRequired = "Restaurant Logo URL is required"
	MsgStatusInvalid          = "Restaurant Status must be 'Open Now' or 'Closed'"
)

// ratingRange is the accepted rating interval, inclusive.
const ratingRange = "gte=1,lte=5"

// messages maps a failing field to the message shown under it.
var messages = map[string]string{
	FieldName:             MsgNameRequired,
	FieldRating:           MsgRatingNotNumber,
	FieldImage:            MsgImageRequired,
	FieldRestaurantName:   MsgRestaurantNameRequired,
	FieldRestaurantLogo:   MsgRestaurantLogoRequired,
	FieldRestaurantStatus: MsgStatusInvalid,
}

// Errors maps a form field to its validation message.
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

// Err returns e as an error, or nil when there is nothing to report.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks a draft before it is submitted. Whitespace-only values
// count as blank. An empty result means the draft is acceptable.
func Validate(d models.Draft) Errors {
	errs := Errors{}
	trimmed := trim(d)

	if err := validate.Struct(trimmed); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			errs[FieldName] = err.Error()
			return errs
		}
		for _, fe := range verrs {
			if msg, ok := messages[fe.Field()]; ok {
				errs[fe.Field()] = msg
			}
		}
	}

	if _, failed := errs[FieldRating]; !failed {
		rating, _ := strconv.ParseFloat(trimmed.Rating, 64)
		if err := validate.Var(rating, ratingRange); err != nil {
			errs[FieldRating] = MsgRatingRange
		}
	}

	return errs
}

// ToInput converts an accepted draft into a create input. An unparseable
// price becomes 0.
func ToInput(d models.Draft) models.FoodInput {
	return models.FoodInput{
		Name:           d.Name,
		Price:          parseNumber(d.Price),
		Rating:         parseNumber(d.Rating),
		Image:          d.Image,
		Restaurant:     d.RestaurantName,
		RestaurantLogo: d.RestaurantLogo,
		Status:         models.Status(strings.TrimSpace(d.RestaurantStatus)),
	}
}

// ToPatch converts an accepted draft into an update that re-sends every
// editable field.
func ToPatch(d models.Draft) models.FoodPatch {
	return models.PatchFromInput(ToInput(d))
}

// ValidatePatch checks the fields present in a partial update.
func ValidatePatch(p models.FoodPatch) Errors {
	errs := Errors{}

	requireText := func(field string, v *string) {
		if v != nil && strings.TrimSpace(*v) == "" {
			errs[field] = messages[field]
		}
	}
	requireText(FieldName, p.Name)
	requireText(FieldImage, p.Image)
	requireText(FieldRestaurantName, p.Restaurant)
	requireText(FieldRestaurantLogo, p.RestaurantLogo)

	if p.Rating != nil {
		if err := validate.Var(*p.Rating, ratingRange); err != nil {
			errs[FieldRating] = MsgRatingRange
		}
	}
	if p.Status != nil {
		s := *p.Status
		if !models.ValidFormStatus(s) && s != models.StatusOpen {
			errs[FieldRestaurantStatus] = MsgStatusInvalid
		}
	}

	return errs
}

func trim(d models.Draft) models.Draft {
	return models.Draft{
		Name:             strings.TrimSpace(d.Name),
		Rating:           strings.TrimSpace(d.Rating),
		Price:            strings.TrimSpace(d.Price),
		Image:            strings.TrimSpace(d.Image),
		RestaurantName:   strings.TrimSpace(d.RestaurantName),
		RestaurantLogo:   strings.TrimSpace(d.RestaurantLogo),
		RestaurantStatus: strings.TrimSpace(d.RestaurantStatus),
	}
}

func parseNumber(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
