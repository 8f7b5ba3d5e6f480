package rentcast

import "homesearch/internal/model"

// Listing is the subset of the upstream sale listing object the gateway reads
type Listing struct {
	ID               string   `json:"id"`
	FormattedAddress *string  `json:"formattedAddress"`
	PropertyType     *string  `json:"propertyType"`
	Price            *float64 `json:"price"`
	Bedrooms         *float64 `json:"bedrooms"`
	Bathrooms        *float64 `json:"bathrooms"`
	SquareFootage    *float64 `json:"squareFootage"`
	LotSize          *float64 `json:"lotSize"`
	Status           string   `json:"status"`
}

// Record projects the listing onto the compact shape shown to the model
func (l Listing) Record() model.ListingRecord {
	return model.ListingRecord{
		Address:       l.FormattedAddress,
		PropertyType:  l.PropertyType,
		Price:         l.Price,
		Bedrooms:      l.Bedrooms,
		Bathrooms:     l.Bathrooms,
		SquareFootage: l.SquareFootage,
		LotSize:       l.LotSize,
	}
}

// Records projects a whole page of listings
func Records(listings []Listing) []model.ListingRecord {
	out := make([]model.ListingRecord, 0, len(listings))
	for _, l := range listings {
		out = append(out, l.Record())
	}
	return out
}
