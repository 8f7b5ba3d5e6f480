package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"homesearch/internal/model"
	"homesearch/internal/rentcast"
)

var filterFlags struct {
	zip          string
	minPrice     float64
	maxPrice     float64
	minSqft      float64
	maxSqft      float64
	minBeds      int
	maxBeds      int
	propertyType string
}

var listingsCmd = &cobra.Command{
	Use:   "listings",
	Short: "Query the listings API directly, without the model",
	Long: `Query the listings API directly and print the tool result the model would
receive. Without filter flags a fixed probe search runs (ZIP 94103, price
from 1M, 800-2000 sqft).`,
	Args: cobra.NoArgs,
	RunE: runListings,
}

func init() {
	f := listingsCmd.Flags()
	f.StringVar(&filterFlags.zip, "zip", "", "Five-digit ZIP code")
	f.Float64Var(&filterFlags.minPrice, "min-price", 0, "Minimum price in USD")
	f.Float64Var(&filterFlags.maxPrice, "max-price", 0, "Maximum price in USD")
	f.Float64Var(&filterFlags.minSqft, "min-sqft", 0, "Minimum square footage")
	f.Float64Var(&filterFlags.maxSqft, "max-sqft", 0, "Maximum square footage")
	f.IntVar(&filterFlags.minBeds, "min-beds", 0, "Minimum bedrooms")
	f.IntVar(&filterFlags.maxBeds, "max-beds", 0, "Maximum bedrooms")
	f.StringVar(&filterFlags.propertyType, "type", "", "Property type, e.g. Condo")
}

func runListings(cmd *cobra.Command, _ []string) error {
	filter := filterFromFlags(cmd)
	if err := filter.Validate(); err != nil {
		return err
	}

	a, cleanup, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	result := a.Gateway.FetchListings(cmd.Context(), filter)

	if err := printJSON(cmd, result); err != nil {
		return err
	}
	if result.IsError() {
		return fmt.Errorf("listings request failed: %s", result.Error)
	}
	return nil
}

// filterFromFlags builds a filter from the flags that were set, falling back
// to the probe filter when none were
func filterFromFlags(cmd *cobra.Command) model.SearchFilter {
	flags := cmd.Flags()
	if flags.NFlag() == 0 {
		return rentcast.ProbeFilter()
	}

	var f model.SearchFilter
	if flags.Changed("zip") {
		f.ZipCode = &filterFlags.zip
	}
	if flags.Changed("min-price") {
		f.MinimumPrice = &filterFlags.minPrice
	}
	if flags.Changed("max-price") {
		f.MaximumPrice = &filterFlags.maxPrice
	}
	if flags.Changed("min-sqft") {
		f.MinimumSquareFootage = &filterFlags.minSqft
	}
	if flags.Changed("max-sqft") {
		f.MaximumSquareFootage = &filterFlags.maxSqft
	}
	if flags.Changed("min-beds") {
		f.MinimumBedrooms = &filterFlags.minBeds
	}
	if flags.Changed("max-beds") {
		f.MaximumBedrooms = &filterFlags.maxBeds
	}
	if flags.Changed("type") {
		f.PropertyType = &filterFlags.propertyType
	}
	return f
}
