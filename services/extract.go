package services

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Fuel categories returned by the engine extractor.
const (
	FuelDiesel   = "diesel"
	FuelPetrol   = "petrol"
	FuelLPG      = "lpg"
	FuelHybrid   = "hybrid"
	FuelElectric = "electric"
)

// Transmission categories.
const (
	TransmissionAutomatic = "automatic"
	TransmissionManual    = "manual"
)

// Body categories.
const (
	BodyHatchback   = "hatchback"
	BodySedan       = "sedan"
	BodySUV         = "suv"
	BodyWagon       = "wagon"
	BodyCoupe       = "coupe"
	BodyConvertible = "convertible"
	BodyVan         = "van"
	BodyPickup      = "pickup"
)

const (
	minEngineLitres = 0.5
	maxEngineLitres = 8.0
)

// markerSet maps a category to the substrings (Serbian and English) that imply it.
type markerSet struct {
	category string
	markers  []string
}

// Lookup tables are read-only after init. Order is priority: the first matching set wins.
var (
	electricBrands = []string{"tesla"}

	// Diesel is checked before petrol because "tdi" and friends are more specific.
	engineTypeTable = []markerSet{
		{FuelDiesel, []string{"diesel", "dizel", "tdi", "td", "cdti", "cdi", "hdi", "jtd", "d4d", "d5"}},
		{FuelPetrol, []string{"benzin", "petrol", "gasoline", "tsi", "ts", "gti", "gtd", "fsi", "tfsi"}},
		{FuelLPG, []string{"lpg", "gas", "plin", "cng"}},
		{FuelHybrid, []string{"hybrid", "hibrid", "hev"}},
		{FuelElectric, []string{"electric", "elektricni", "električni", "ev", "bev", "phev"}},
	}

	transmissionTable = []markerSet{
		{TransmissionAutomatic, []string{"automatski", "automatic", "auto"}},
		{TransmissionManual, []string{"manuelni", "manual", "manuel"}},
	}

	// "kombi" is listed under van only; "karavan" contains "van" but wagon is checked first.
	bodyTypeTable = []markerSet{
		{BodyHatchback, []string{"hatchback", "hecbek", "hečbek"}},
		{BodySedan, []string{"sedan", "limuzina"}},
		{BodySUV, []string{"suv", "terenski", "terrain", "džip", "dzip"}},
		{BodyWagon, []string{"wagon", "karavan"}},
		{BodyCoupe, []string{"coupe", "kupe"}},
		{BodyConvertible, []string{"convertible", "kabriolet", "cabrio", "roadster"}},
		{BodyVan, []string{"van", "kombi", "minibus", "monovolumen"}},
		{BodyPickup, []string{"pickup", "pick-up"}},
	}

	keywordPhrases = []string{
		"registrovan", "registracija", "registrovan do",
		"može zamena", "zamena", "trade in",
		"neispravan", "oštećen", "havarija",
		"klima", "klima uređaj", "air conditioning",
		"navigacija", "gps", "satelitska navigacija",
		"led svetla", "xenon", "bi-xenon",
		"koža", "kožna sedišta", "leather",
		"panorama", "panoramski krov",
		"aluminijumske felne", "alu felne",
		"servisna knjiga", "servisna istorija",
		"prvi vlasnik", "drugi vlasnik",
		"garancija", "warranty",
		"test vožnja", "test drive",
	}
)

var (
	// engineCodeRegexp captures manufacturer codes such as 320d or 118i
	engineCodeRegexp = regexp.MustCompile(`\b([1-9]\d{2})([di])\b`)
	// volumeRegexp captures a number followed by a volume unit
	volumeRegexp = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:liters?|litara|lit|l|ccm|cc|cm3|cm³)(?:[^\p{L}\d]|$)`)
	// designationRegexp captures a number followed by a fuel designation such as 1.6 TDI
	designationRegexp = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:tfsi|tdi|tsi|td|ts|gti|gtd|fsi|cdti|cdi|crdi|hdi|jtd|dci)`)
	// decimalRegexp captures standalone decimal literals such as 1.9
	decimalRegexp = regexp.MustCompile(`\b(\d+\.\d+)\b`)
)

// EngineInfo is the result of the engine extractor. Empty fields were not found.
type EngineInfo struct {
	Type string
	Size string
}

// HasType reports whether a fuel category was found.
func (e EngineInfo) HasType() bool { return e.Type != "" }

// HasSize reports whether a displacement was found.
func (e EngineInfo) HasSize() bool { return e.Size != "" }

// ExtractEngineInfo infers fuel category and displacement (litres, one decimal) from free text.
func ExtractEngineInfo(text string) EngineInfo {
	var info EngineInfo
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return info
	}

	if containsAny(lower, electricBrands) {
		info.Type = FuelElectric
	} else if fuel, ok := matchTable(lower, engineTypeTable); ok {
		info.Type = fuel
	}

	if m := engineCodeRegexp.FindStringSubmatch(lower); m != nil {
		// 320d: the last two digits are the displacement in decilitres
		if n, err := strconv.Atoi(m[1][1:]); err == nil {
			litres := float64(n) / 10
			if litres >= minEngineLitres && litres <= maxEngineLitres {
				info.Size = formatLitres(litres)
			}
		}
		if !info.HasType() {
			if m[2] == "d" {
				info.Type = FuelDiesel
			} else {
				info.Type = FuelPetrol
			}
		}
	}

	if !info.HasSize() {
		if size, ok := extractEngineSize(lower); ok {
			info.Size = size
		}
	}

	return info
}

// extractEngineSize tries, in order: number + volume unit, number + fuel designation,
// standalone decimal in the plausible litre range.
func extractEngineSize(lower string) (string, bool) {
	for _, re := range []*regexp.Regexp{volumeRegexp, designationRegexp} {
		for _, m := range re.FindAllStringSubmatch(lower, -1) {
			if size, ok := toLitres(m[1]); ok {
				return size, true
			}
		}
	}

	for _, m := range decimalRegexp.FindAllStringSubmatch(lower, -1) {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		if v >= minEngineLitres && v <= maxEngineLitres {
			return m[1], true
		}
	}
	return "", false
}

// toLitres accepts a litre value as written, or converts cubic centimetres (1598 → 1.6).
func toLitres(raw string) (string, bool) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return "", false
	}
	if v >= minEngineLitres && v <= maxEngineLitres {
		return raw, true
	}
	if v >= 100 {
		litres := math.Round(v/100) / 10
		if litres >= minEngineLitres && litres <= maxEngineLitres {
			return formatLitres(litres), true
		}
	}
	return "", false
}

func formatLitres(v float64) string {
	return fmt.Sprintf("%.1f", v)
}

// ExtractTransmission returns automatic or manual. Automatic markers are checked first.
func ExtractTransmission(text string) (string, bool) {
	return matchTable(strings.ToLower(text), transmissionTable)
}

// ExtractBodyType maps text to a body category using the first matching table entry.
func ExtractBodyType(text string) (string, bool) {
	return matchTable(strings.ToLower(text), bodyTypeTable)
}

// ExtractKeywords returns the feature phrases found in text, in table order.
// Overlapping phrases ("klima" and "klima uređaj") are both reported.
func ExtractKeywords(text string) []string {
	lower := strings.ToLower(text)
	found := make([]string, 0)
	if strings.TrimSpace(lower) == "" {
		return found
	}
	for _, phrase := range keywordPhrases {
		if strings.Contains(lower, phrase) {
			found = append(found, phrase)
		}
	}
	return found
}

func matchTable(lower string, table []markerSet) (string, bool) {
	if lower == "" {
		return "", false
	}
	for _, set := range table {
		if containsAny(lower, set.markers) {
			return set.category, true
		}
	}
	return "", false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
