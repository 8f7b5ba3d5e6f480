package rentcast

import (
	"net/url"
	"strconv"
	"strings"

	"homesearch/internal/model"
)

// rangePadding widens numeric ranges because the upstream API treats bounds
// as exclusive
const rangePadding = 0.1

const wildcard = "*"

// EncodeRange renders a min/max pair as "min:max". An absent side becomes
// the wildcard, a positive minimum is padded down and a maximum padded up.
func EncodeRange(min, max *float64) string {
	lo, hi := wildcard, wildcard
	if min != nil {
		if *min == 0 {
			lo = "0"
		} else {
			lo = formatNumber(*min - rangePadding)
		}
	}
	if max != nil {
		hi = formatNumber(*max + rangePadding)
	}
	return lo + ":" + hi
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func intToFloat(v *int) *float64 {
	if v == nil {
		return nil
	}
	f := float64(*v)
	return &f
}

type param struct {
	key, value string
}

// BuildQuery serializes a filter into the listings query string. Parameters
// keep a fixed order so identical filters map to identical URLs.
func BuildQuery(f model.SearchFilter, limit int) string {
	params := []param{
		{"limit", strconv.Itoa(limit)},
		{"status", "Active"},
	}

	if f.ZipCode != nil && *f.ZipCode != "" {
		params = append(params, param{"zipCode", *f.ZipCode})
	}
	if f.MinimumPrice != nil || f.MaximumPrice != nil {
		params = append(params, param{"price", EncodeRange(f.MinimumPrice, f.MaximumPrice)})
	}
	if f.MinimumSquareFootage != nil || f.MaximumSquareFootage != nil {
		params = append(params, param{"squareFootage", EncodeRange(f.MinimumSquareFootage, f.MaximumSquareFootage)})
	}
	if f.MinimumBedrooms != nil || f.MaximumBedrooms != nil {
		params = append(params, param{"bedrooms", EncodeRange(intToFloat(f.MinimumBedrooms), intToFloat(f.MaximumBedrooms))})
	}
	if f.PropertyType != nil && *f.PropertyType != "" {
		params = append(params, param{"propertyType", *f.PropertyType})
	}

	var sb strings.Builder
	for i, p := range params {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(p.key)
		sb.WriteByte('=')
		sb.WriteString(escapeValue(p.value))
	}
	return sb.String()
}

// escapeValue query-escapes v but leaves the range separator and wildcard
// readable.
func escapeValue(v string) string {
	escaped := url.QueryEscape(v)
	escaped = strings.ReplaceAll(escaped, "%3A", ":")
	return strings.ReplaceAll(escaped, "%2A", "*")
}

// ProbeFilter is the fixed search used to check the gateway end to end:
// ZIP 94103, at least $1M, 800 to 2000 sq ft
func ProbeFilter() model.SearchFilter {
	zip := "94103"
	minPrice := 1000000.0
	minSqft, maxSqft := 800.0, 2000.0
	return model.SearchFilter{
		ZipCode:              &zip,
		MinimumPrice:         &minPrice,
		MinimumSquareFootage: &minSqft,
		MaximumSquareFootage: &maxSqft,
	}
}
