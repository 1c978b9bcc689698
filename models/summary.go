package models

// MarketSummary aggregates a scraped pool of cleaned listings.
type MarketSummary struct {
	TotalListings  int `json:"total_listings"`
	PricedListings int `json:"priced_listings"`

	AveragePrice float64 `json:"average_price"`
	MedianPrice  float64 `json:"median_price"`
	MinPrice     int     `json:"min_price"`
	MaxPrice     int     `json:"max_price"`

	Cheapest      *Listing `json:"cheapest,omitempty"`
	MostExpensive *Listing `json:"most_expensive,omitempty"`

	ListingsByCity       map[string]int `json:"listings_by_city"`
	ListingsByEngineType map[string]int `json:"listings_by_engine_type"`
}
