// Package normalize turns loosely shaped Remote Food Store records into
// models.Food values. Normalization never fails: every missing or malformed
// field degrades to a default.
package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cast"

	"github.com/Lixing-Zhang/kart-challenge/food-catalog/internal/models"
)

const (
	DefaultName       = "Unnamed Meal"
	DefaultRestaurant = "Unknown Restaurant"
)

// IDFunc produces identifiers for records that arrive without one.
// Synthesized identifiers are only used for display keys, never for writes.
type IDFunc func() string

// Normalizer converts raw records into foods.
type Normalizer struct {
	newID IDFunc
}

// New returns a normalizer that synthesizes missing identifiers with UUIDs.
func New() *Normalizer {
	return &Normalizer{newID: uuid.NewString}
}

// NewWithIDFunc returns a normalizer using newID for missing identifiers.
func NewWithIDFunc(newID IDFunc) *Normalizer {
	return &Normalizer{newID: newID}
}

var defaultNormalizer = New()

// Food normalizes a single raw record with the default normalizer.
func Food(raw map[string]any) models.Food {
	return defaultNormalizer.Food(raw)
}

// Foods normalizes a list of raw records with the default normalizer.
func Foods(raws []map[string]any) []models.Food {
	return defaultNormalizer.Foods(raws)
}

// Foods normalizes each record, keeping the received order.
func (n *Normalizer) Foods(raws []map[string]any) []models.Food {
	foods := make([]models.Food, 0, len(raws))
	for _, raw := range raws {
		foods = append(foods, n.Food(raw))
	}
	return foods
}

// Food normalizes one raw record.
func (n *Normalizer) Food(raw map[string]any) models.Food {
	id := text(raw["id"])
	if id == "" {
		id = n.newID()
	}

	restaurant := resolveRestaurant(raw)

	return models.Food{
		ID:             id,
		Name:           textOr(raw["name"], DefaultName),
		Price:          number(raw["price"]),
		Rating:         number(raw["rating"]),
		Image:          text(raw["image"]),
		Restaurant:     restaurant.name,
		RestaurantLogo: restaurant.logo,
		Status:         models.StatusFromRead(restaurant.status, text(raw["status"])),
		Description:    optionalText(raw, "description"),
		Category:       optionalText(raw, "category"),
	}
}

// restaurantShape tags which source form the restaurant field arrived in.
type restaurantShape int

const (
	restaurantAbsent restaurantShape = iota
	restaurantNested
	restaurantFlat
	restaurantMalformed
)

type restaurantFields struct {
	name   string
	logo   string
	status string
}

func classifyRestaurant(v any) restaurantShape {
	switch v.(type) {
	case nil:
		return restaurantAbsent
	case map[string]any:
		return restaurantNested
	case string:
		return restaurantFlat
	default:
		return restaurantMalformed
	}
}

// resolveRestaurant applies the restaurant decision table:
//
//	nested object  -> name/logo/status from the object
//	plain string   -> the string is the name, logo from top-level restaurantLogo
//	absent/other   -> default name, logo from top-level restaurantLogo
func resolveRestaurant(raw map[string]any) restaurantFields {
	v := raw["restaurant"]
	switch classifyRestaurant(v) {
	case restaurantNested:
		nested := v.(map[string]any)
		return restaurantFields{
			name:   textOr(nested["name"], DefaultRestaurant),
			logo:   text(nested["logo"]),
			status: text(nested["status"]),
		}
	case restaurantFlat:
		return restaurantFields{
			name: textOr(v, DefaultRestaurant),
			logo: text(raw["restaurantLogo"]),
		}
	default:
		return restaurantFields{
			name: DefaultRestaurant,
			logo: text(raw["restaurantLogo"]),
		}
	}
}

// number coerces a numeric or numeric-string value. Anything else, and any
// value that does not parse to a real number, becomes zero.
func number(v any) float64 {
	var f float64
	switch val := v.(type) {
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0
		}
		f = parsed
	case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		parsed, err := cast.ToFloat64E(val)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// text returns the string form of scalar values. Empty, nil and composite
// values yield "".
func text(v any) string {
	switch v.(type) {
	case nil, map[string]any, []any:
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return s
}

func textOr(v any, fallback string) string {
	if s := text(v); s != "" {
		return s
	}
	return fallback
}

// optionalText passes a field through, keeping absence distinct from "".
func optionalText(raw map[string]any, key string) *string {
	v, ok := raw[key]
	if !ok || v == nil {
		return nil
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return nil
	}
	return &s
}
