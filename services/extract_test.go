package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseInt(t *testing.T) {
	tests := []struct {
		raw    string
		want   int
		wantOK bool
	}{
		{"12.345 km", 12345, true},
		{"€5,000", 5000, true},
		{"5.500 €", 5500, true},
		{"180.000 km", 180000, true},
		{"2016.", 2016, true},
		{"abc 12 def 34", 12, true},
		{"", 0, false},
		{"   ", 0, false},
		{"Po dogovoru", 0, false},
		{"99999999999999999999999", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseInt(tt.raw)
		assert.Equal(t, tt.wantOK, ok, "ParseInt(%q) ok", tt.raw)
		assert.Equal(t, tt.want, got, "ParseInt(%q)", tt.raw)
	}
}

func TestExtractEngineInfo(t *testing.T) {
	tests := []struct {
		text     string
		wantType string
		wantSize string
	}{
		{"Opel Corsa 1.6 TDI", FuelDiesel, "1.6"},
		{"VW Golf 2.0 TSI", FuelPetrol, "2.0"},
		{"Toyota Prius Hybrid", FuelHybrid, ""},
		{"Tesla Model 3", FuelElectric, ""},
		{"BMW 320d", FuelDiesel, "2.0"},
		{"BMW 318i", FuelPetrol, "1.8"},
		{"Audi A4 1.8 TFSI", FuelPetrol, "1.8"},
		{"Peugeot 308 2.0 HDi", FuelDiesel, "2.0"},
		{"Opel Astra 1.7 CDTI", FuelDiesel, "1.7"},
		{"Skoda Octavia 1598 cm3 dizel", FuelDiesel, "1.6"},
		{"Fiat Punto 1.2 l", "", "1.2"},
		{"Golf 7 2.0", "", "2.0"},
		{"Golf 7", "", ""},
		{"Renault Clio 12.5", "", ""},
		{"", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			info := ExtractEngineInfo(tt.text)
			assert.Equal(t, tt.wantType, info.Type)
			assert.Equal(t, tt.wantSize, info.Size)
			assert.Equal(t, tt.wantType != "", info.HasType())
			assert.Equal(t, tt.wantSize != "", info.HasSize())
		})
	}
}

func TestExtractEngineInfoCodeKeepsEarlierType(t *testing.T) {
	// the table match wins over the code suffix
	info := ExtractEngineInfo("BMW 320i hybrid")
	assert.Equal(t, FuelHybrid, info.Type)
	assert.Equal(t, "2.0", info.Size)
}

func TestExtractEngineInfoRejectsImplausibleCode(t *testing.T) {
	info := ExtractEngineInfo("BMW 100d")
	assert.Equal(t, FuelDiesel, info.Type)
	assert.Empty(t, info.Size)
}

func TestExtractTransmission(t *testing.T) {
	tests := []struct {
		text   string
		want   string
		wantOK bool
	}{
		{"Opel Corsa Automatski", TransmissionAutomatic, true},
		{"VW Golf Manuelni", TransmissionManual, true},
		{"Manuelni 6 brzina", TransmissionManual, true},
		{"automatic or manual", TransmissionAutomatic, true},
		{"BMW 3 Series", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ExtractTransmission(tt.text)
		assert.Equal(t, tt.wantOK, ok, "ExtractTransmission(%q) ok", tt.text)
		assert.Equal(t, tt.want, got, "ExtractTransmission(%q)", tt.text)
	}
}

func TestExtractBodyType(t *testing.T) {
	tests := []struct {
		text   string
		want   string
		wantOK bool
	}{
		{"Opel Corsa Hatchback", BodyHatchback, true},
		{"VW Passat Limuzina", BodySedan, true},
		{"BMW X5 SUV", BodySUV, true},
		{"Opel Astra Karavan", BodyWagon, true},
		{"Renault Trafic Kombi", BodyVan, true},
		{"Mazda MX-5 Kabriolet", BodyConvertible, true},
		{"Audi A4", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ExtractBodyType(tt.text)
		assert.Equal(t, tt.wantOK, ok, "ExtractBodyType(%q) ok", tt.text)
		assert.Equal(t, tt.want, got, "ExtractBodyType(%q)", tt.text)
	}
}

func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"Opel Corsa registrovan do 2025", []string{"registrovan", "registrovan do"}},
		{"VW Golf klima navigacija", []string{"klima", "navigacija"}},
		{"Prvi vlasnik, KOŽNA SEDIŠTA", []string{"kožna sedišta", "prvi vlasnik"}},
		{"BMW 3 Series", []string{}},
		{"", []string{}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtractKeywords(tt.text), "ExtractKeywords(%q)", tt.text)
	}
}

func TestExtractorsOutputVocabulary(t *testing.T) {
	fuels := map[string]bool{"": true, FuelDiesel: true, FuelPetrol: true, FuelLPG: true, FuelHybrid: true, FuelElectric: true}
	bodies := map[string]bool{"": true, BodyHatchback: true, BodySedan: true, BodySUV: true, BodyWagon: true,
		BodyCoupe: true, BodyConvertible: true, BodyVan: true, BodyPickup: true}

	inputs := []string{
		"", "   ", "🚗🚗🚗", "999d", "0.0.0.0", "cm³", "1.6 l 2.0 l", "karavan kombi pick-up",
		"Продаја аутомобила", "auto manuelni", "12.345.678 km €", "tdi tsi lpg ev",
	}
	for _, in := range inputs {
		info := ExtractEngineInfo(in)
		assert.True(t, fuels[info.Type], "engine type %q for %q", info.Type, in)

		if gearbox, ok := ExtractTransmission(in); ok {
			assert.Contains(t, []string{TransmissionAutomatic, TransmissionManual}, gearbox)
		}
		body, _ := ExtractBodyType(in)
		assert.True(t, bodies[body], "body type %q for %q", body, in)
		assert.NotNil(t, ExtractKeywords(in))
	}
}
