package polovni

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"car-evaluator/models"
	"car-evaluator/services"
)

var (
	// engine fragment in a card subtitle, e.g. "1.6 TDI" or "2.0TSI"
	subtitleEngineRegexp = regexp.MustCompile(`\d\.\d+\s?[A-Za-z]+`)
	cardYearRegexp       = regexp.MustCompile(`(?:19|20)\d{2}`)
)

// ParseTotalPages returns the highest page number in the pagination controls, or 1.
func ParseTotalPages(doc *goquery.Document) int {
	total := 1
	doc.Find("ul.pagination li a").Each(func(_ int, a *goquery.Selection) {
		n, err := strconv.Atoi(strings.TrimSpace(a.Text()))
		if err == nil && n > total {
			total = n
		}
	})
	return total
}

// ParseSearchPage extracts one RawListing per classified card.
func ParseSearchPage(doc *goquery.Document) []*models.RawListing {
	var listings []*models.RawListing
	now := time.Now()

	doc.Find("article.classified").Each(func(_ int, card *goquery.Selection) {
		raw := parseCard(card)
		raw.ScrapedAt = now
		listings = append(listings, raw)
	})
	return listings
}

func parseCard(card *goquery.Selection) *models.RawListing {
	raw := &models.RawListing{}

	link := card.Find("a.ga-title").First()
	raw.Title = text(link)
	if href, ok := link.Attr("href"); ok {
		raw.URL = absoluteURL(strings.TrimSpace(href))
	}

	raw.Subtitle = text(card.Find("div.subtitle").First())
	if raw.Subtitle != "" {
		raw.Engine = subtitleEngineRegexp.FindString(raw.Subtitle)
		lower := strings.ToLower(raw.Subtitle)
		switch {
		case strings.Contains(lower, "automatski"):
			raw.Transmission = "Automatski"
		case strings.Contains(lower, "manuelni"):
			raw.Transmission = "Manuelni"
		}
	}

	raw.City = text(card.Find("div.city").First())

	if strings.Contains(card.Find("div.advertiserText").First().Text(), "OGLASIVAČ") {
		raw.SellerType = "Dealer"
	}
	if strings.Contains(card.Find("div.badge span").First().Text(), "Domaće tablice") {
		raw.SellerType = "Private"
	}

	card.Find("div.top").Each(func(_ int, top *goquery.Selection) {
		t := text(top)
		if raw.Year == "" {
			raw.Year = cardYearRegexp.FindString(t)
		}
		if raw.Mileage == "" && strings.Contains(t, "km") {
			raw.Mileage = t
		}
	})

	card.Find("span").EachWithBreak(func(_ int, span *goquery.Selection) bool {
		if t := text(span); strings.Contains(t, "€") {
			raw.Price = t
			return false
		}
		return true
	})

	return raw
}

// Detail holds the fields read from a listing's own page.
type Detail struct {
	FuelType     string
	Engine       string
	Transmission string
	BodyType     string
	Power        string
	Color        string
	Doors        string
	Seats        string
	SellerInfo   string
	Description  string
	Keywords     []string
}

type specField int

const (
	specFuel specField = iota
	specPower
	specEngine
	specTransmission
	specBody
	specColor
	specDoors
	specSeats
	specSeller
)

// specLabels is ordered: "Snaga motora" must hit power before the generic "motor".
var specLabels = []struct {
	field   specField
	markers []string
}{
	{specFuel, []string{"gorivo", "fuel"}},
	{specPower, []string{"snaga", "power", "kw"}},
	{specEngine, []string{"kubikaža", "engine", "motor"}},
	{specTransmission, []string{"menjač", "transmission", "gearbox"}},
	{specBody, []string{"karoserija", "body"}},
	{specColor, []string{"boja", "color"}},
	{specDoors, []string{"vrata", "doors"}},
	{specSeats, []string{"sedišta", "seats"}},
	{specSeller, []string{"ime prodavca"}},
}

// ParseDetailPage reads the specification pairs, seller block and description of a listing page.
func ParseDetailPage(doc *goquery.Document) Detail {
	var d Detail

	doc.Find("dt").Each(func(_ int, dt *goquery.Selection) {
		d.setSpec(text(dt), text(dt.NextFiltered("dd")))
	})
	doc.Find("table.specifications tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		for i := 0; i+1 < cells.Length(); i += 2 {
			d.setSpec(text(cells.Eq(i)), text(cells.Eq(i+1)))
		}
	})

	for _, sel := range []string{".seller-info", ".advertiser-info", ".contact-info"} {
		if s := text(doc.Find(sel).First()); s != "" {
			d.SellerInfo = s
			break
		}
	}

	for _, sel := range []string{".description", ".ad-description", ".car-description", ".details-text"} {
		if s := text(doc.Find(sel).First()); s != "" {
			d.Description = s
			break
		}
	}

	d.Keywords = services.ExtractKeywords(doc.Find("body").Text())
	return d
}

// setSpec stores value under the first field whose marker appears in label.
// Earlier values win.
func (d *Detail) setSpec(label, value string) {
	if label == "" || value == "" {
		return
	}
	label = strings.ToLower(label)

	for _, spec := range specLabels {
		if !containsAnyOf(label, spec.markers) {
			continue
		}
		target := d.field(spec.field)
		if *target == "" {
			*target = value
		}
		return
	}
}

func (d *Detail) field(f specField) *string {
	switch f {
	case specFuel:
		return &d.FuelType
	case specPower:
		return &d.Power
	case specEngine:
		return &d.Engine
	case specTransmission:
		return &d.Transmission
	case specBody:
		return &d.BodyType
	case specColor:
		return &d.Color
	case specDoors:
		return &d.Doors
	case specSeats:
		return &d.Seats
	default:
		return &d.SellerInfo
	}
}

// MergeInto copies every non-empty detail value over the search-card values.
func (d Detail) MergeInto(raw *models.RawListing) {
	override := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	override(&raw.FuelType, d.FuelType)
	override(&raw.Engine, d.Engine)
	override(&raw.EngineSize, d.Engine)
	override(&raw.Transmission, d.Transmission)
	override(&raw.BodyType, d.BodyType)
	override(&raw.Power, d.Power)
	override(&raw.Color, d.Color)
	override(&raw.Doors, d.Doors)
	override(&raw.Seats, d.Seats)
	override(&raw.SellerInfo, d.SellerInfo)
	override(&raw.Description, d.Description)
	raw.Keywords = append(raw.Keywords, d.Keywords...)
}

func text(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}

func absoluteURL(href string) string {
	if strings.HasPrefix(href, "/") {
		return siteBase + href
	}
	return href
}

func containsAnyOf(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
