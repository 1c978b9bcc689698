package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"car-evaluator/models"
	"car-evaluator/utils"
)

func newTestLogger() *utils.Logger { return utils.NewDiscardLogger() }

func TestCleanListingFromSearchCard(t *testing.T) {
	raw := &models.RawListing{
		Title:       "Volkswagen Golf 7 2.0 TDI",
		Subtitle:    "Hečbek | Dizel | 2.0 TDI | Manuelni 6 brzina",
		Description: "Servisna knjiga, prvi vlasnik",
		Year:        "2016.",
		Mileage:     "180.000 km",
		Price:       "9.800 €",
		Engine:      " 2.0 tdi ",
		City:        "BEOGRAD",
		SellerType:  "dealer",
		Keywords:    []string{" Klima ", "klima", ""},
		URL:         " https://www.polovniautomobili.com/auto-oglasi/1/vw-golf ",
		ScrapedAt:   time.Now(),
	}

	l := CleanListing(raw)

	require.NotNil(t, l.Year)
	require.NotNil(t, l.Mileage)
	require.NotNil(t, l.Price)
	assert.Equal(t, 2016, *l.Year)
	assert.Equal(t, 180000, *l.Mileage)
	assert.Equal(t, 9800, *l.Price)
	assert.Equal(t, "Volkswagen Golf 7 2.0 TDI", l.Title)
	assert.Equal(t, "2.0 TDI", l.Engine)
	assert.Equal(t, FuelDiesel, l.EngineType)
	assert.Equal(t, "2.0", l.EngineSize)
	assert.Equal(t, TransmissionManual, l.Transmission)
	assert.Empty(t, l.BodyType, "body type is only read from the title")
	assert.Equal(t, "Beograd", l.City)
	assert.Equal(t, "Dealer", l.SellerType)
	assert.Equal(t, []string{"klima", "servisna knjiga", "prvi vlasnik"}, l.Keywords)
	assert.Equal(t, "https://www.polovniautomobili.com/auto-oglasi/1/vw-golf", l.URL)
}

func TestCleanListingCanonicalisesDetailFields(t *testing.T) {
	raw := &models.RawListing{
		Title:        "Škoda Octavia",
		FuelType:     "Dizel",
		Transmission: "Automatski",
		BodyType:     "Karavan",
		EngineSize:   "1598 cm3",
		Power:        " 81kW (110KS) ",
		Color:        "SIVA",
		Doors:        "4/5 vrata",
		Seats:        "5 sedišta",
	}

	l := CleanListing(raw)

	assert.Equal(t, FuelDiesel, l.EngineType)
	assert.Equal(t, "dizel", l.FuelType)
	assert.Equal(t, TransmissionAutomatic, l.Transmission)
	assert.Equal(t, BodyWagon, l.BodyType)
	assert.Equal(t, "1.6", l.EngineSize)
	assert.Equal(t, "81kW (110KS)", l.Power)
	assert.Equal(t, "Siva", l.Color)
	assert.Equal(t, "4/5 vrata", l.Doors)
	assert.Equal(t, "5 sedišta", l.Seats)
}

func TestCleanListingPrefersExplicitEngineType(t *testing.T) {
	raw := &models.RawListing{
		Title:      "Toyota Auris 1.8 hybrid",
		EngineType: "Hybrid",
		FuelType:   "Benzin",
	}

	l := CleanListing(raw)

	assert.Equal(t, FuelHybrid, l.EngineType)
	assert.Equal(t, "benzin", l.FuelType)
	assert.Equal(t, "1.8", l.EngineSize)
}

func TestCleanListingYearFallbackFromTitle(t *testing.T) {
	l := CleanListing(&models.RawListing{Title: "Opel Astra 2012 karavan", Year: "nepoznato"})

	require.NotNil(t, l.Year)
	assert.Equal(t, 2012, *l.Year)
	assert.Equal(t, BodyWagon, l.BodyType)
}

func TestCleanListingIgnoresNonYearNumbersInTitle(t *testing.T) {
	l := CleanListing(&models.RawListing{Title: "Peugeot 3008 1.6 HDi"})
	assert.Nil(t, l.Year)
}

func TestCleanListingEmptyInput(t *testing.T) {
	l := CleanListing(&models.RawListing{})

	assert.Nil(t, l.Year)
	assert.Nil(t, l.Mileage)
	assert.Nil(t, l.Price)
	assert.Empty(t, l.Title)
	assert.Empty(t, l.EngineType)
	assert.Empty(t, l.EngineSize)
	assert.Empty(t, l.Transmission)
	assert.Empty(t, l.BodyType)
	assert.NotNil(t, l.Keywords)
	assert.Empty(t, l.Keywords)
}

func TestCleanerCleanKeepsOrderAndSkipsNil(t *testing.T) {
	c := NewCleaner(newTestLogger())
	raw := []*models.RawListing{
		{Title: "Opel Corsa", Price: "€4,500"},
		nil,
		{Title: "Opel Corsa D", Price: "Po dogovoru"},
	}

	cleaned := c.Clean(raw)

	require.Len(t, cleaned, 2)
	assert.Equal(t, "Opel Corsa", cleaned[0].Title)
	require.NotNil(t, cleaned[0].Price)
	assert.Equal(t, 4500, *cleaned[0].Price)
	assert.Nil(t, cleaned[1].Price)
}

func TestCapitalise(t *testing.T) {
	assert.Equal(t, "Novi sad", capitalise("  NOVI   SAD "))
	assert.Equal(t, "Čačak", capitalise("čačak"))
	assert.Equal(t, "", capitalise(""))
}
