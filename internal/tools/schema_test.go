package tools

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildToolDescriptor_AllFieldsLoose(t *testing.T) {
	d := BuildToolDescriptor(AllFields(), false)

	assert.Equal(t, "function", d.Type)
	assert.Equal(t, ListingsToolName, d.Name)
	assert.False(t, d.Strict)
	assert.Equal(t, "object", d.Parameters.Type)
	assert.False(t, d.Parameters.AdditionalProperties)
	assert.Empty(t, d.Parameters.Required)
	assert.Len(t, d.Parameters.Properties, 8)

	zip := d.Parameters.Properties[FieldZipCode]
	require.NotNil(t, zip)
	assert.Equal(t, SchemaType{"string"}, zip.Type)
	assert.Equal(t, "^[0-9]{5}$", zip.Pattern)

	beds := d.Parameters.Properties[FieldMinimumBedrooms]
	require.NotNil(t, beds)
	assert.Equal(t, SchemaType{"integer"}, beds.Type)
	require.NotNil(t, beds.Minimum)
	assert.Equal(t, 0.0, *beds.Minimum)

	pt := d.Parameters.Properties[FieldPropertyType]
	require.NotNil(t, pt)
	assert.Len(t, pt.Enum, 7)
	assert.Contains(t, pt.Enum, "Multi-Family")
}

func TestBuildToolDescriptor_Strict(t *testing.T) {
	d := BuildToolDescriptor(AllFields(), true)

	assert.True(t, d.Strict)
	assert.Equal(t, []string{
		FieldZipCode,
		FieldMinimumSquareFootage,
		FieldMaximumSquareFootage,
		FieldMinimumPrice,
		FieldMaximumPrice,
		FieldMinimumBedrooms,
		FieldMaximumBedrooms,
		FieldPropertyType,
	}, d.Parameters.Required)

	assert.Equal(t, SchemaType{"number", "null"}, d.Parameters.Properties[FieldMinimumPrice].Type)
	pt := d.Parameters.Properties[FieldPropertyType]
	assert.Len(t, pt.Enum, 8)
	assert.Nil(t, pt.Enum[7])
}

func TestBuildToolDescriptor_SubsetOfGroups(t *testing.T) {
	d := BuildToolDescriptor(FieldSet{ZipCode: true, Price: true}, false)

	assert.Len(t, d.Parameters.Properties, 3)
	assert.Contains(t, d.Parameters.Properties, FieldZipCode)
	assert.Contains(t, d.Parameters.Properties, FieldMinimumPrice)
	assert.Contains(t, d.Parameters.Properties, FieldMaximumPrice)
	assert.NotContains(t, d.Parameters.Properties, FieldPropertyType)
}

func TestBuildToolDescriptor_NoGroups(t *testing.T) {
	d := BuildToolDescriptor(FieldSet{}, true)

	b, err := json.Marshal(d)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))
	params := decoded["parameters"].(map[string]any)
	assert.Equal(t, map[string]any{}, params["properties"])
	assert.NotContains(t, params, "required")
	assert.Equal(t, false, params["additionalProperties"])
}

func TestBuildToolDescriptor_Idempotent(t *testing.T) {
	for _, strict := range []bool{false, true} {
		first, err := json.Marshal(BuildToolDescriptor(AllFields(), strict))
		require.NoError(t, err)
		second, err := json.Marshal(BuildToolDescriptor(AllFields(), strict))
		require.NoError(t, err)
		assert.JSONEq(t, string(first), string(second))
	}
}

func TestSchemaTypeEncoding(t *testing.T) {
	single, err := json.Marshal(SchemaType{"string"})
	require.NoError(t, err)
	assert.Equal(t, `"string"`, string(single))

	union, err := json.Marshal(SchemaType{"integer", "null"})
	require.NoError(t, err)
	assert.Equal(t, `["integer","null"]`, string(union))
}
