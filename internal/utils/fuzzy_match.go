package utils

import (
	"strings"
)

// propertyTypeAliases maps loose phrasings onto canonical property types.
// Keys are compared after normalizeTerm.
var propertyTypeAliases = map[string][]string{
	"Single Family": {"single family", "single family home", "single family house", "sfh", "house", "detached", "detached house", "home"},
	"Condo":         {"condo", "condominium", "condos", "flat"},
	"Townhouse":     {"townhouse", "townhome", "town house", "town home", "row house", "rowhouse"},
	"Multi-Family":  {"multi family", "multifamily", "duplex", "triplex", "fourplex", "quadplex", "multi unit"},
	"Apartment":     {"apartment", "apt", "apartments", "apartment building"},
	"Land":          {"land", "lot", "vacant land", "parcel", "acreage"},
	"Manufactured":  {"manufactured", "manufactured home", "mobile home", "mobile", "trailer", "modular"},
}

// normalizeTerm lowercases and collapses punctuation so "Single-Family" and
// "single family" compare equal
func normalizeTerm(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("-", " ", "_", " ", "/", " ", ".", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// CanonicalOption returns the option term refers to. Matching is exact
// first, then case and punctuation insensitive, then via the alias table.
func CanonicalOption(term string, options []string) (string, bool) {
	if term == "" {
		return "", false
	}
	for _, opt := range options {
		if term == opt {
			return opt, true
		}
	}

	norm := normalizeTerm(term)
	for _, opt := range options {
		if normalizeTerm(opt) == norm {
			return opt, true
		}
	}

	for _, opt := range options {
		for _, alias := range propertyTypeAliases[opt] {
			if alias == norm {
				return opt, true
			}
		}
	}

	// Plural or decorated forms, e.g. "townhomes" or "condo unit". The
	// longest contained alias wins so "townhomes" is not read as "home".
	best, bestLen := "", 0
	for _, opt := range options {
		for _, alias := range propertyTypeAliases[opt] {
			if len(alias) > 3 && len(alias) > bestLen && strings.Contains(norm, alias) {
				best, bestLen = opt, len(alias)
			}
		}
	}

	return best, best != ""
}
