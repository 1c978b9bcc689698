package services

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"car-evaluator/models"
)

// powerRegexp captures the first integer in a power string ("90 kW (122 KS)" → 90)
var powerRegexp = regexp.MustCompile(`\d+`)

// Score compares a candidate with the reference car using the default policy.
func Score(ref, cand *models.Listing) (float64, models.MatchQuality) {
	return ScoreWith(DefaultScoringPolicy(), ref, cand)
}

// ScoreWith compares a candidate with the reference car. Each attribute is
// skipped when either side lacks it. It is deterministic and never fails.
func ScoreWith(p ScoringPolicy, ref, cand *models.Listing) (float64, models.MatchQuality) {
	var (
		score float64
		q     models.MatchQuality
	)
	if ref == nil || cand == nil {
		return 0, q
	}

	score += titleScore(p, ref.Title, cand.Title)

	if ref.EngineType != "" && cand.EngineType != "" {
		switch {
		case ref.EngineType == cand.EngineType:
			score += p.EngineTypeMatch
			q.EngineType = true
		case isCombustion(ref.EngineType) && isCombustion(cand.EngineType):
			score += p.EngineTypeSimilar
		}
	}

	if ref.Transmission != "" && cand.Transmission != "" {
		switch {
		case ref.Transmission == cand.Transmission:
			score += p.TransmissionMatch
			q.Transmission = true
		case isGearbox(ref.Transmission) && isGearbox(cand.Transmission):
			score += p.TransmissionMismatch
		}
	}

	if ref.BodyType != "" && cand.BodyType != "" {
		switch {
		case ref.BodyType == cand.BodyType:
			score += p.BodyTypeMatch
			q.BodyType = true
		case isCompactBody(ref.BodyType) && isCompactBody(cand.BodyType):
			score += p.BodyTypeSimilar
		}
	}

	if a, ok := parseLitres(ref.EngineSize); ok {
		if b, ok := parseLitres(cand.EngineSize); ok {
			// compared at millilitre precision
			diff := math.Round(math.Abs(a-b)*1000) / 1000
			switch {
			case diff == 0:
				score += p.EngineSizeMatch
				q.EngineSize = true
			case diff <= p.EngineSizeTolerance:
				score += p.EngineSizeNear
			}
		}
	}

	if a, ok := parsePower(ref.Power); ok {
		if b, ok := parsePower(cand.Power); ok {
			diff := absInt(a - b)
			switch {
			case diff == 0:
				score += p.PowerMatch
				q.Power = true
			case diff <= p.PowerTolerance:
				score += p.PowerNear
			}
		}
	}

	if ref.Color != "" && cand.Color != "" && strings.EqualFold(ref.Color, cand.Color) {
		score += p.ColorMatch
		q.Color = true
	}
	if ref.Doors != "" && cand.Doors != "" && ref.Doors == cand.Doors {
		score += p.DoorsMatch
		q.Doors = true
	}
	if ref.Seats != "" && cand.Seats != "" && ref.Seats == cand.Seats {
		score += p.SeatsMatch
		q.Seats = true
	}

	if ref.Year != nil && cand.Year != nil {
		diff := absInt(*ref.Year - *cand.Year)
		if diff < len(p.YearPoints) {
			score += p.YearPoints[diff]
		}
		q.Year = diff == 0
	}

	if ref.Mileage != nil && cand.Mileage != nil {
		diff := absInt(*ref.Mileage - *cand.Mileage)
		for i, band := range p.MileageBands {
			if diff < band.Below {
				score += band.Points
				q.Mileage = i == 0
				break
			}
		}
	}

	score += exactScore(ref.FuelType, cand.FuelType, p.FuelTypeMatch)
	score += exactScore(ref.Engine, cand.Engine, p.EngineMatch)
	score += exactScore(ref.City, cand.City, p.CityMatch)
	score += exactScore(ref.SellerType, cand.SellerType, p.SellerTypeMatch)

	score += float64(commonKeywords(ref.Keywords, cand.Keywords)) * p.KeywordMatch

	return score, q
}

// titleScore awards points for the reference make and model appearing in the candidate title.
func titleScore(p ScoringPolicy, refTitle, candTitle string) float64 {
	tokens := strings.Fields(strings.ToLower(refTitle))
	cand := strings.ToLower(candTitle)
	if len(tokens) == 0 || cand == "" {
		return 0
	}
	if len(tokens) > 2 {
		tokens = tokens[:2]
	}

	var score float64
	for _, tok := range tokens {
		if strings.Contains(cand, tok) {
			score += p.TitleToken
		}
	}
	return score
}

func exactScore(a, b string, points float64) float64 {
	if a != "" && b != "" && a == b {
		return points
	}
	return 0
}

func commonKeywords(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(a))
	for _, kw := range a {
		set[kw] = struct{}{}
	}
	n := 0
	counted := make(map[string]struct{}, len(b))
	for _, kw := range b {
		if _, ok := set[kw]; !ok {
			continue
		}
		if _, dup := counted[kw]; dup {
			continue
		}
		counted[kw] = struct{}{}
		n++
	}
	return n
}

func parseLitres(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func parsePower(s string) (int, bool) {
	m := powerRegexp.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return v, true
}

func isCombustion(fuel string) bool {
	return fuel == FuelPetrol || fuel == FuelDiesel
}

func isGearbox(t string) bool {
	return t == TransmissionAutomatic || t == TransmissionManual
}

func isCompactBody(b string) bool {
	return b == BodyHatchback || b == BodySedan
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
