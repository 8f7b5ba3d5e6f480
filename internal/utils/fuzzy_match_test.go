package utils

import "testing"

var propertyTypes = []string{"Single Family", "Condo", "Townhouse", "Multi-Family", "Apartment", "Land", "Manufactured"}

func TestCanonicalOption(t *testing.T) {
	tests := []struct {
		term   string
		want   string
		wantOK bool
	}{
		{"Condo", "Condo", true},
		{"condo", "Condo", true},
		{"CONDOMINIUM", "Condo", true},
		{"single-family", "Single Family", true},
		{"single family home", "Single Family", true},
		{"multi family", "Multi-Family", true},
		{"Multi_Family", "Multi-Family", true},
		{"duplex", "Multi-Family", true},
		{"townhomes", "Townhouse", true},
		{"mobile home", "Manufactured", true},
		{"vacant land", "Land", true},
		{"castle", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			got, ok := CanonicalOption(tt.term, propertyTypes)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("CanonicalOption(%q) = %q, %v; want %q, %v", tt.term, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestCanonicalOption_RestrictedToOptions(t *testing.T) {
	if got, ok := CanonicalOption("town home", []string{"Townhouse"}); !ok || got != "Townhouse" {
		t.Errorf("town home = %q, %v; want Townhouse", got, ok)
	}
	if got, ok := CanonicalOption("condo", []string{"Townhouse"}); ok {
		t.Errorf("condo matched %q outside the option list", got)
	}
}
