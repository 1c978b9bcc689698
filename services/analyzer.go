package services

import (
	"math"
	"sort"

	"car-evaluator/models"
	"car-evaluator/utils"
)

const (
	noMatchMessage = "No similar cars found (using similarity scoring)."
	mediumNote     = "Some technical specifications don't match exactly"
	lowNote        = "Limited matches on technical specifications - comparing mainly by brand/model/year"
)

// Analyzer ranks a listing pool against a reference car and logs a summary.
type Analyzer struct {
	logger *utils.Logger
	policy ScoringPolicy
}

// NewAnalyzer creates an Analyzer with the given weight table.
func NewAnalyzer(logger *utils.Logger, policy ScoringPolicy) *Analyzer {
	return &Analyzer{logger: logger, policy: policy}
}

// Analyze runs AnalyzeWith using the analyzer's policy.
func (a *Analyzer) Analyze(ref *models.InputCar, pool []*models.Listing) *models.AnalysisResult {
	res := AnalyzeWith(a.policy, ref, pool)
	if res.Failed() {
		a.logger.Warn("[analyzer] %s (pool of %d)", res.Message, len(pool))
		return res
	}
	a.logger.Info("[analyzer] %d similar listings, avg %.2f, %s confidence (policy %s)",
		res.CountSimilar, res.AveragePrice, res.ComparisonQuality, a.policy.Version)
	return res
}

// Analyze ranks pool against ref with the default policy.
func Analyze(ref *models.InputCar, pool []*models.Listing) *models.AnalysisResult {
	return AnalyzeWith(DefaultScoringPolicy(), ref, pool)
}

// AnalyzeWith scores every candidate, keeps those with a positive score and a
// price, and aggregates the top matches into a price verdict. Failures are
// returned as the error variant, never as a Go error.
func AnalyzeWith(p ScoringPolicy, ref *models.InputCar, pool []*models.Listing) *models.AnalysisResult {
	if err := ref.Validate(); err != nil {
		return failure(p, models.ErrorKindMissingInput, err.Error(), pool)
	}
	refPrice := *ref.Price

	scored := make([]models.ScoredCandidate, 0, len(pool))
	for _, cand := range pool {
		if cand == nil || cand.Price == nil || *cand.Price <= 0 {
			continue
		}
		score, quality := ScoreWith(p, &ref.Listing, cand)
		if score <= 0 {
			continue
		}
		scored = append(scored, models.ScoredCandidate{Score: score, Candidate: cand, Quality: quality})
	}

	if len(scored) == 0 {
		return failure(p, models.ErrorKindNoMatch, noMatchMessage, pool)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return absInt(*scored[i].Candidate.Price-refPrice) < absInt(*scored[j].Candidate.Price-refPrice)
	})

	top := scored
	if len(top) > p.TopN {
		top = top[:p.TopN]
	}

	var total float64
	for _, sc := range top {
		total += float64(*sc.Candidate.Price)
	}
	avg := total / float64(len(top))
	percent := 100 * (avg - float64(refPrice)) / avg

	verdict := &models.PriceVerdict{
		AveragePrice: round(avg, 2),
		CountSimilar: len(top),
		PercentDiff:  round(math.Abs(percent), 1),
		IsCheaper:    float64(refPrice) < avg,
		TopSimilar:   make([]*models.SimilarListing, 0, len(top)),
	}

	for _, sc := range top {
		switch km := sc.Quality.KeyMatches(); {
		case km >= p.HighKeyMatches:
			verdict.HighQualityMatches++
		case km >= p.MediumKeyMatches:
			verdict.MediumQualityMatches++
		}
		verdict.TopSimilar = append(verdict.TopSimilar, &models.SimilarListing{
			Listing:      sc.Candidate,
			Score:        sc.Score,
			MatchQuality: sc.Quality,
		})
	}

	switch {
	case verdict.HighQualityMatches >= p.MinQualityMatches:
		verdict.ComparisonQuality = models.QualityHigh
	case verdict.MediumQualityMatches >= p.MinQualityMatches:
		verdict.ComparisonQuality = models.QualityMedium
		verdict.QualityNote = mediumNote
	default:
		verdict.ComparisonQuality = models.QualityLow
		verdict.QualityNote = lowNote
	}

	return &models.AnalysisResult{PriceVerdict: verdict}
}

func failure(p ScoringPolicy, kind models.ErrorKind, msg string, pool []*models.Listing) *models.AnalysisResult {
	// nil entries are skipped so both samples stay index-aligned
	sample := make([]*models.Listing, 0, p.SampleSize)
	titles := make([]string, 0, p.SampleSize)
	for _, l := range pool {
		if len(sample) == p.SampleSize {
			break
		}
		if l == nil {
			continue
		}
		sample = append(sample, l)
		titles = append(titles, l.Title)
	}
	return &models.AnalysisResult{AnalysisError: &models.AnalysisError{
		Message:        msg,
		Kind:           kind,
		SampleListings: sample,
		SampleTitles:   titles,
	}}
}

func round(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}
