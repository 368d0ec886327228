package catalog

import "github.com/shopspring/decimal"

// KnownCategories are the gallery categories offered even before any product uses them
var KnownCategories = []string{"Oil", "Acrylic", "Watercolor", "Mixed Media"}

// SampleProducts returns the built-in catalog served when the art API is offline.
// The first three works are featured.
func SampleProducts() []Product {
	return []Product{
		{
			ID:          "1",
			Title:       "Mountain Sunset",
			Price:       decimal.RequireFromString("49.99"),
			Category:    "Oil",
			ImageURL:    "/paintings/sunset.jpg",
			Featured:    true,
			Description: "A beautiful oil painting capturing the serene colors of a mountain sunset. Perfect for a living room.",
		},
		{
			ID:          "2",
			Title:       "Abstract Ocean",
			Price:       decimal.RequireFromString("79.99"),
			Category:    "Acrylic",
			ImageURL:    "/paintings/ocean.jpg",
			Featured:    true,
			Description: "A large, dynamic abstract piece in acrylics, inspired by the power and motion of the ocean.",
		},
		{
			ID:          "3",
			Title:       "Forest Path",
			Price:       decimal.RequireFromString("39.99"),
			Category:    "Watercolor",
			ImageURL:    "/paintings/forest.jpg",
			Featured:    true,
			Description: "A charming watercolor painting of a sun-dappled path through a green forest.",
		},
		{
			ID:          "4",
			Title:       "Cityscape",
			Price:       decimal.RequireFromString("99.99"),
			Category:    "Mixed Media",
			ImageURL:    "/paintings/city.jpg",
			Description: "A modern, textured mixed-media piece depicting a vibrant city skyline at night.",
		},
	}
}
