package models

// RestaurantWrite is the nested restaurant object the store expects on create.
type RestaurantWrite struct {
	Name   string `json:"name"`
	Logo   string `json:"logo"`
	Status Status `json:"status"`
}

// CreatePayload is the write-shaped record sent on create.
type CreatePayload struct {
	Name       string          `json:"name"`
	Price      float64         `json:"price"`
	Rating     float64         `json:"rating"`
	Image      string          `json:"image"`
	Restaurant RestaurantWrite `json:"restaurant"`
}

// RestaurantPatch is the nested restaurant object sent on update. The store
// replaces the nested object as a whole, so an absent name here is dropped
// server-side.
type RestaurantPatch struct {
	Name   *string `json:"name,omitempty"`
	Logo   *string `json:"logo,omitempty"`
	Status *Status `json:"status,omitempty"`
}

// UpdatePayload is the write-shaped record sent on update.
type UpdatePayload struct {
	Name       *string          `json:"name,omitempty"`
	Price      *float64         `json:"price,omitempty"`
	Rating     *float64         `json:"rating,omitempty"`
	Image      *string          `json:"image,omitempty"`
	Restaurant *RestaurantPatch `json:"restaurant,omitempty"`
}

// NewCreatePayload reshapes an input into the store's write format.
func NewCreatePayload(in FoodInput) CreatePayload {
	return CreatePayload{
		Name:   in.Name,
		Price:  in.Price,
		Rating: in.Rating,
		Image:  in.Image,
		Restaurant: RestaurantWrite{
			Name:   in.Restaurant,
			Logo:   in.RestaurantLogo,
			Status: WireStatus(in.Status),
		},
	}
}

// NewUpdatePayload keeps only the fields present in the patch. Empty strings
// count as absent for name and image. The nested restaurant object is sent
// whenever any of its three fields is non-empty, carrying whichever of them
// were supplied.
func NewUpdatePayload(p FoodPatch) UpdatePayload {
	var out UpdatePayload
	if nonEmpty(p.Name) {
		out.Name = p.Name
	}
	out.Price = p.Price
	out.Rating = p.Rating
	if nonEmpty(p.Image) {
		out.Image = p.Image
	}

	restaurant := nonEmpty(p.Restaurant)
	logo := nonEmpty(p.RestaurantLogo)
	status := p.Status != nil && *p.Status != ""
	if restaurant || logo || status {
		nested := &RestaurantPatch{
			Name: p.Restaurant,
			Logo: p.RestaurantLogo,
		}
		if p.Status != nil {
			wire := WireStatus(*p.Status)
			nested.Status = &wire
		}
		out.Restaurant = nested
	}
	return out
}

func nonEmpty(s *string) bool {
	return s != nil && *s != ""
}
