package model

import (
	"fmt"
	"regexp"
)

// Property types accepted by the listings API
const (
	PropertyTypeSingleFamily = "Single Family"
	PropertyTypeCondo        = "Condo"
	PropertyTypeTownhouse    = "Townhouse"
	PropertyTypeMultiFamily  = "Multi-Family"
	PropertyTypeApartment    = "Apartment"
	PropertyTypeLand         = "Land"
	PropertyTypeManufactured = "Manufactured"
)

// PropertyTypes lists the canonical property types in schema order.
var PropertyTypes = []string{
	PropertyTypeSingleFamily,
	PropertyTypeCondo,
	PropertyTypeTownhouse,
	PropertyTypeMultiFamily,
	PropertyTypeApartment,
	PropertyTypeLand,
	PropertyTypeManufactured,
}

var zipCodePattern = regexp.MustCompile(`^[0-9]{5}$`)

// SearchFilter represents the arguments of a get_listings tool call.
// Every field is optional; a missing bound of a min/max pair is unbounded.
type SearchFilter struct {
	ZipCode              *string  `json:"zip_code,omitempty"`
	MinimumPrice         *float64 `json:"minimum_price,omitempty"`
	MaximumPrice         *float64 `json:"maximum_price,omitempty"`
	MinimumSquareFootage *float64 `json:"minimum_square_footage,omitempty"`
	MaximumSquareFootage *float64 `json:"maximum_square_footage,omitempty"`
	MinimumBedrooms      *int     `json:"minimum_bedrooms,omitempty"`
	MaximumBedrooms      *int     `json:"maximum_bedrooms,omitempty"`
	PropertyType         *string  `json:"property_type,omitempty"`
}

// Validate checks the filter against the tool schema constraints
func (f *SearchFilter) Validate() error {
	if f.ZipCode != nil && !zipCodePattern.MatchString(*f.ZipCode) {
		return fmt.Errorf("zip_code must be exactly five digits, got %q", *f.ZipCode)
	}

	for name, v := range map[string]*float64{
		"minimum_price":          f.MinimumPrice,
		"maximum_price":          f.MaximumPrice,
		"minimum_square_footage": f.MinimumSquareFootage,
		"maximum_square_footage": f.MaximumSquareFootage,
	} {
		if v != nil && *v < 0 {
			return fmt.Errorf("%s must be non-negative, got %v", name, *v)
		}
	}
	if f.MinimumBedrooms != nil && *f.MinimumBedrooms < 0 {
		return fmt.Errorf("minimum_bedrooms must be non-negative, got %d", *f.MinimumBedrooms)
	}
	if f.MaximumBedrooms != nil && *f.MaximumBedrooms < 0 {
		return fmt.Errorf("maximum_bedrooms must be non-negative, got %d", *f.MaximumBedrooms)
	}

	if f.PropertyType != nil && !IsPropertyType(*f.PropertyType) {
		return fmt.Errorf("invalid property_type: %s", *f.PropertyType)
	}

	return nil
}

// IsPropertyType reports whether v is one of the canonical property types
func IsPropertyType(v string) bool {
	for _, t := range PropertyTypes {
		if t == v {
			return true
		}
	}
	return false
}

// ChatRequest represents a conversation request
type ChatRequest struct {
	Prompt  string  `json:"prompt" binding:"required"`
	History History `json:"history,omitempty"`
}

// ChatResponse represents the outcome of one conversation request
type ChatResponse struct {
	RequestID string  `json:"request_id"`
	Answer    string  `json:"answer"`
	ToolCalls int     `json:"tool_calls"`
	History   History `json:"history"`
	Took      int64   `json:"took_ms"`
}

// ListingsResponse wraps a direct gateway query result
type ListingsResponse struct {
	RequestID string     `json:"request_id"`
	Result    ToolResult `json:"result"`
	Took      int64      `json:"took_ms"`
}
