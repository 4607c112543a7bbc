package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lixing-Zhang/kart-challenge/food-catalog/internal/models"
)

func validDraft() models.Draft {
	return models.Draft{
		Name:             "Bowl Lasagna",
		Rating:           "4.5",
		Price:            "12.99",
		Image:            "https://example.com/lasagna.png",
		RestaurantName:   "Pasta Palace",
		RestaurantLogo:   "https://example.com/logo.png",
		RestaurantStatus: "Open Now",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(d *models.Draft)
		want   Errors
	}{
		{
			name:   "valid draft",
			modify: func(d *models.Draft) {},
			want:   Errors{},
		},
		{
			name:   "rating above range",
			modify: func(d *models.Draft) { d.Rating = "6" },
			want:   Errors{FieldRating: MsgRatingRange},
		},
		{
			name:   "rating below range",
			modify: func(d *models.Draft) { d.Rating = "0.5" },
			want:   Errors{FieldRating: MsgRatingRange},
		},
		{
			name:   "rating lower bound",
			modify: func(d *models.Draft) { d.Rating = "1" },
			want:   Errors{},
		},
		{
			name:   "rating upper bound",
			modify: func(d *models.Draft) { d.Rating = "5" },
			want:   Errors{},
		},
		{
			name:   "rating not a number",
			modify: func(d *models.Draft) { d.Rating = "great" },
			want:   Errors{FieldRating: MsgRatingNotNumber},
		},
		{
			name:   "rating empty",
			modify: func(d *models.Draft) { d.Rating = "" },
			want:   Errors{FieldRating: MsgRatingNotNumber},
		},
		{
			name:   "whitespace name is blank",
			modify: func(d *models.Draft) { d.Name = "   " },
			want:   Errors{FieldName: MsgNameRequired},
		},
		{
			name:   "closed status",
			modify: func(d *models.Draft) { d.RestaurantStatus = "Closed" },
			want:   Errors{},
		},
		{
			name:   "display status is not a form value",
			modify: func(d *models.Draft) { d.RestaurantStatus = "Open" },
			want:   Errors{FieldRestaurantStatus: MsgStatusInvalid},
		},
		{
			name:   "price is optional",
			modify: func(d *models.Draft) { d.Price = "" },
			want:   Errors{},
		},
		{
			name: "every required field missing",
			modify: func(d *models.Draft) {
				*d = models.Draft{RestaurantStatus: "Open Now"}
			},
			want: Errors{
				FieldName:           MsgNameRequired,
				FieldRating:         MsgRatingNotNumber,
				FieldImage:          MsgImageRequired,
				FieldRestaurantName: MsgRestaurantNameRequired,
				FieldRestaurantLogo: MsgRestaurantLogoRequired,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			tt.modify(&d)
			assert.Equal(t, tt.want, Validate(d))
		})
	}
}

func TestEmptyDraftFailsValidation(t *testing.T) {
	errs := Validate(models.EmptyDraft())
	assert.NotContains(t, errs, FieldRestaurantStatus)
	assert.Len(t, errs, 5)
	require.Error(t, errs.Err())
}

func TestErrors(t *testing.T) {
	assert.NoError(t, Errors{}.Err())

	errs := Errors{FieldRating: MsgRatingRange, FieldName: MsgNameRequired}
	assert.Equal(t,
		"invalid form: food_name: Food name is required; food_rating: Food Rating must be between 1 and 5",
		errs.Error(),
	)
}

func TestToInput(t *testing.T) {
	in := ToInput(validDraft())
	assert.Equal(t, models.FoodInput{
		Name:           "Bowl Lasagna",
		Price:          12.99,
		Rating:         4.5,
		Image:          "https://example.com/lasagna.png",
		Restaurant:     "Pasta Palace",
		RestaurantLogo: "https://example.com/logo.png",
		Status:         models.StatusOpenNow,
	}, in)

	d := validDraft()
	d.Price = "free"
	assert.Equal(t, 0.0, ToInput(d).Price)

	d.Price = "NaN"
	assert.Equal(t, 0.0, ToInput(d).Price)
}

func TestToPatchCarriesEveryField(t *testing.T) {
	p := ToPatch(validDraft())
	require.NotNil(t, p.Name)
	require.NotNil(t, p.Price)
	require.NotNil(t, p.Rating)
	require.NotNil(t, p.Image)
	require.NotNil(t, p.Restaurant)
	require.NotNil(t, p.RestaurantLogo)
	require.NotNil(t, p.Status)
	assert.Equal(t, models.StatusOpenNow, *p.Status)
}

func TestValidatePatch(t *testing.T) {
	str := func(s string) *string { return &s }
	num := func(f float64) *float64 { return &f }
	status := func(s models.Status) *models.Status { return &s }

	assert.Empty(t, ValidatePatch(models.FoodPatch{}))
	assert.Empty(t, ValidatePatch(models.FoodPatch{RestaurantLogo: str("https://example.com/l.png")}))
	assert.Empty(t, ValidatePatch(models.FoodPatch{Status: status(models.StatusOpen)}))

	errs := ValidatePatch(models.FoodPatch{
		Name:   str(" "),
		Rating: num(7),
		Status: status("Maybe"),
	})
	assert.Equal(t, Errors{
		FieldName:             MsgNameRequired,
		FieldRating:           MsgRatingRange,
		FieldRestaurantStatus: MsgStatusInvalid,
	}, errs)
}
