// Package tools describes the get_listings function to the language model.
//
// The descriptor is assembled from a fixed set of field-group switches and is
// built once at startup; callers treat it as immutable.
package tools

import (
	"encoding/json"

	"homesearch/internal/model"
)

// ListingsToolName is the only tool the model may call
const ListingsToolName = "get_listings"

const listingsToolDescription = "Retrieves a list of active real estate property listings"

// Property names, matching the SearchFilter JSON tags
const (
	FieldZipCode              = "zip_code"
	FieldMinimumSquareFootage = "minimum_square_footage"
	FieldMaximumSquareFootage = "maximum_square_footage"
	FieldMinimumPrice         = "minimum_price"
	FieldMaximumPrice         = "maximum_price"
	FieldMinimumBedrooms      = "minimum_bedrooms"
	FieldMaximumBedrooms      = "maximum_bedrooms"
	FieldPropertyType         = "property_type"
)

// FieldSet switches filter groups on or off
type FieldSet struct {
	ZipCode       bool
	Price         bool
	SquareFootage bool
	Bedrooms      bool
	PropertyType  bool
}

// AllFields enables every filter group
func AllFields() FieldSet {
	return FieldSet{ZipCode: true, Price: true, SquareFootage: true, Bedrooms: true, PropertyType: true}
}

// SchemaType is a JSON Schema "type" keyword; a single type encodes as a
// string, a union (e.g. nullable) as an array.
type SchemaType []string

// MarshalJSON implements json.Marshaler
func (t SchemaType) MarshalJSON() ([]byte, error) {
	if len(t) == 1 {
		return json.Marshal(t[0])
	}
	return json.Marshal([]string(t))
}

// Property describes one tool argument
type Property struct {
	Type        SchemaType `json:"type"`
	Description string     `json:"description"`
	Pattern     string     `json:"pattern,omitempty"`
	Minimum     *float64   `json:"minimum,omitempty"`
	Enum        []any      `json:"enum,omitempty"`
}

// Parameters is the closed object schema of the tool arguments
type Parameters struct {
	Type                 string               `json:"type"`
	Properties           map[string]*Property `json:"properties"`
	Required             []string             `json:"required,omitempty"`
	AdditionalProperties bool                 `json:"additionalProperties"`
}

// ToolDescriptor is the function definition advertised to the model
type ToolDescriptor struct {
	Type        string     `json:"type"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Parameters  Parameters `json:"parameters"`
	Strict      bool       `json:"strict"`
}

type fieldDef struct {
	name string
	prop Property
}

// BuildToolDescriptor returns the get_listings descriptor for the enabled
// field groups. In strict mode every enabled field is required and nullable,
// so the model passes null for filters it does not want to apply.
func BuildToolDescriptor(enabled FieldSet, strict bool) ToolDescriptor {
	var defs []fieldDef

	if enabled.ZipCode {
		defs = append(defs, fieldDef{FieldZipCode, Property{
			Type:        SchemaType{"string"},
			Pattern:     "^[0-9]{5}$",
			Description: "The five-digit US ZIP code to search for listings",
		}})
	}
	if enabled.SquareFootage {
		defs = append(defs,
			fieldDef{FieldMinimumSquareFootage, numberProperty("Minimum interior square footage of the listing")},
			fieldDef{FieldMaximumSquareFootage, numberProperty("Maximum interior square footage of the listing")},
		)
	}
	if enabled.Price {
		defs = append(defs,
			fieldDef{FieldMinimumPrice, numberProperty("Minimum listing price in USD")},
			fieldDef{FieldMaximumPrice, numberProperty("Maximum listing price in USD")},
		)
	}
	if enabled.Bedrooms {
		defs = append(defs,
			fieldDef{FieldMinimumBedrooms, integerProperty("Minimum number of bedrooms")},
			fieldDef{FieldMaximumBedrooms, integerProperty("Maximum number of bedrooms")},
		)
	}
	if enabled.PropertyType {
		enum := make([]any, 0, len(model.PropertyTypes)+1)
		for _, t := range model.PropertyTypes {
			enum = append(enum, t)
		}
		defs = append(defs, fieldDef{FieldPropertyType, Property{
			Type:        SchemaType{"string"},
			Enum:        enum,
			Description: "Type of property",
		}})
	}

	params := Parameters{
		Type:                 "object",
		Properties:           make(map[string]*Property, len(defs)),
		AdditionalProperties: false,
	}
	for _, d := range defs {
		prop := d.prop
		if strict {
			prop.Type = append(SchemaType{}, append(prop.Type, "null")...)
			if prop.Enum != nil {
				prop.Enum = append(prop.Enum, nil)
			}
			params.Required = append(params.Required, d.name)
		}
		params.Properties[d.name] = &prop
	}

	return ToolDescriptor{
		Type:        "function",
		Name:        ListingsToolName,
		Description: listingsToolDescription,
		Parameters:  params,
		Strict:      strict,
	}
}

func numberProperty(description string) Property {
	return Property{Type: SchemaType{"number"}, Minimum: floatPtr(0), Description: description}
}

func integerProperty(description string) Property {
	return Property{Type: SchemaType{"integer"}, Minimum: floatPtr(0), Description: description}
}

func floatPtr(v float64) *float64 {
	return &v
}
