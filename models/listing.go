package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrMissingInput is returned when the reference car lacks a field needed for scoring.
var ErrMissingInput = errors.New("missing input")

// RawListing holds unprocessed scraped data directly from the browser.
// Every field is free text; an empty string means the page did not have it.
type RawListing struct {
	Title        string
	Subtitle     string
	Description  string
	Year         string
	Mileage      string
	Price        string
	Engine       string
	EngineType   string
	EngineSize   string
	Transmission string
	BodyType     string
	Power        string
	Color        string
	Doors        string
	Seats        string
	City         string
	SellerType   string
	FuelType     string
	SellerInfo   string
	Keywords     []string
	URL          string
	ScrapedAt    time.Time
}

// Listing is the cleaned record produced from exactly one RawListing.
// Numeric fields are nil when absent; string fields are empty when absent.
// Every field is always serialized so consumers see a fixed key set.
type Listing struct {
	Title        string   `json:"title"`
	Year         *int     `json:"year"`
	Mileage      *int     `json:"mileage"`
	Price        *int     `json:"price"`
	Engine       string   `json:"engine"`
	EngineType   string   `json:"engine_type"`
	EngineSize   string   `json:"engine_size"`
	Transmission string   `json:"transmission"`
	BodyType     string   `json:"body_type"`
	Power        string   `json:"power"`
	Color        string   `json:"color"`
	Doors        string   `json:"doors"`
	Seats        string   `json:"seats"`
	City         string   `json:"city"`
	SellerType   string   `json:"seller_type"`
	FuelType     string   `json:"fuel_type"`
	SellerInfo   string   `json:"seller_info"`
	Keywords     []string `json:"keywords"`
	URL          string   `json:"url"`
}

// InputCar is the user's reference vehicle. Title, year, mileage and price are required.
type InputCar struct {
	Listing
}

// NewInputCar builds a reference car from the values the CLI asks for.
func NewInputCar(make, model string, year, mileage, price int) *InputCar {
	return &InputCar{Listing: Listing{
		Title:    strings.TrimSpace(make + " " + model),
		Year:     IntPtr(year),
		Mileage:  IntPtr(mileage),
		Price:    IntPtr(price),
		Keywords: []string{},
	}}
}

// Validate reports which required fields are absent, wrapping ErrMissingInput.
func (c *InputCar) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: input car", ErrMissingInput)
	}

	var missing []string
	if strings.TrimSpace(c.Title) == "" {
		missing = append(missing, "make/model")
	}
	if c.Year == nil {
		missing = append(missing, "year")
	}
	if c.Mileage == nil {
		missing = append(missing, "mileage")
	}
	if c.Price == nil {
		missing = append(missing, "price")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingInput, strings.Join(missing, ", "))
	}
	return nil
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}

// IntValue renders an optional integer, with "-" for absent.
func IntValue(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}
