package services

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"car-evaluator/models"
	"car-evaluator/utils"
)

var (
	// titleYearRegexp captures a 19xx/20xx year token in a title
	titleYearRegexp = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)

	transmissionAliases = map[string]string{
		"automatski": TransmissionAutomatic,
		"automatic":  TransmissionAutomatic,
		"auto":       TransmissionAutomatic,
		"manuelni":   TransmissionManual,
		"manual":     TransmissionManual,
		"manuel":     TransmissionManual,
	}

	fuelVocabulary = map[string]bool{
		FuelDiesel: true, FuelPetrol: true, FuelLPG: true, FuelHybrid: true, FuelElectric: true,
	}

	bodyVocabulary = map[string]bool{
		BodyHatchback: true, BodySedan: true, BodySUV: true, BodyWagon: true,
		BodyCoupe: true, BodyConvertible: true, BodyVan: true, BodyPickup: true,
	}
)

// Cleaner transforms RawListings into cleaned Listings.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean processes raw listings in order. Nothing is dropped: bad fields become absent.
func (c *Cleaner) Clean(raw []*models.RawListing) []*models.Listing {
	result := make([]*models.Listing, 0, len(raw))
	var missingPrice, missingYear int

	for _, r := range raw {
		if r == nil {
			continue
		}
		l := CleanListing(r)
		if l.Price == nil {
			missingPrice++
		}
		if l.Year == nil {
			missingYear++
		}
		result = append(result, l)
	}

	c.logger.Info("[cleaner] Cleaned %d listings (%d without price, %d without year)",
		len(result), missingPrice, missingYear)
	return result
}

// CleanListing normalizes one raw listing. It never fails.
func CleanListing(r *models.RawListing) *models.Listing {
	title := normaliseText(r.Title)
	headline := title + " " + normaliseText(r.Subtitle)

	l := &models.Listing{
		Title:      title,
		Year:       parseIntPtr(r.Year),
		Mileage:    parseIntPtr(r.Mileage),
		Price:      parseIntPtr(r.Price),
		Engine:     strings.ToUpper(normaliseText(r.Engine)),
		Power:      normaliseText(r.Power),
		Color:      capitalise(r.Color),
		Doors:      normaliseText(r.Doors),
		Seats:      normaliseText(r.Seats),
		City:       capitalise(r.City),
		SellerType: capitalise(r.SellerType),
		FuelType:   strings.ToLower(normaliseText(r.FuelType)),
		SellerInfo: normaliseText(r.SellerInfo),
		URL:        strings.TrimSpace(r.URL),
	}

	extracted := ExtractEngineInfo(headline)

	if fuel, ok := canonicalEngineType(r.EngineType); ok {
		l.EngineType = fuel
	} else if fuel, ok := canonicalEngineType(r.FuelType); ok {
		l.EngineType = fuel
	} else {
		l.EngineType = extracted.Type
	}

	if size := normaliseText(r.EngineSize); size != "" {
		if litres, ok := extractEngineSize(strings.ToLower(size)); ok {
			l.EngineSize = litres
		} else {
			l.EngineSize = size
		}
	} else {
		l.EngineSize = extracted.Size
	}

	if gearbox, ok := canonicalTransmission(r.Transmission); ok {
		l.Transmission = gearbox
	} else if gearbox, ok := ExtractTransmission(headline); ok {
		l.Transmission = gearbox
	}

	if body, ok := canonicalBodyType(r.BodyType); ok {
		l.BodyType = body
	} else if body, ok := ExtractBodyType(title); ok {
		l.BodyType = body
	}

	keywords := append([]string{}, r.Keywords...)
	keywords = append(keywords, ExtractKeywords(title)...)
	keywords = append(keywords, ExtractKeywords(r.Description)...)
	l.Keywords = dedupeKeywords(keywords)

	if l.Year == nil && title != "" {
		if m := titleYearRegexp.FindString(title); m != "" {
			if y, err := strconv.Atoi(m); err == nil {
				l.Year = &y
			}
		}
	}

	return l
}

func canonicalEngineType(raw string) (string, bool) {
	v := strings.ToLower(normaliseText(raw))
	if v == "" {
		return "", false
	}
	if fuelVocabulary[v] {
		return v, true
	}
	info := ExtractEngineInfo(v)
	return info.Type, info.HasType()
}

func canonicalTransmission(raw string) (string, bool) {
	v := strings.ToLower(normaliseText(raw))
	if v == "" {
		return "", false
	}
	if canon, ok := transmissionAliases[v]; ok {
		return canon, true
	}
	return ExtractTransmission(v)
}

func canonicalBodyType(raw string) (string, bool) {
	v := strings.ToLower(normaliseText(raw))
	if v == "" {
		return "", false
	}
	if bodyVocabulary[v] {
		return v, true
	}
	return ExtractBodyType(v)
}

// dedupeKeywords lower-cases, trims and drops empty or repeated keywords, keeping first occurrence.
func dedupeKeywords(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, kw := range in {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	return out
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

// capitalise upper-cases the first letter and lower-cases the rest ("BEOGRAD" → "Beograd").
func capitalise(s string) string {
	s = strings.ToLower(normaliseText(s))
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
