package models

// ComparisonQuality classifies how trustworthy a price verdict is.
type ComparisonQuality string

const (
	QualityHigh   ComparisonQuality = "high"
	QualityMedium ComparisonQuality = "medium"
	QualityLow    ComparisonQuality = "low"
)

// ErrorKind tells the two analysis failure shapes apart.
type ErrorKind string

const (
	ErrorKindMissingInput ErrorKind = "missing_input"
	ErrorKindNoMatch      ErrorKind = "no_match"
)

// MatchQuality records which attributes matched closely enough to count.
type MatchQuality struct {
	EngineType   bool `json:"engine_type"`
	Transmission bool `json:"transmission"`
	BodyType     bool `json:"body_type"`
	EngineSize   bool `json:"engine_size"`
	Power        bool `json:"power"`
	Color        bool `json:"color"`
	Doors        bool `json:"doors"`
	Seats        bool `json:"seats"`
	Year         bool `json:"year"`
	Mileage      bool `json:"mileage"`
}

// KeyMatches counts the matched key specs: engine type, transmission, body type and power.
func (q MatchQuality) KeyMatches() int {
	n := 0
	for _, ok := range []bool{q.EngineType, q.Transmission, q.BodyType, q.Power} {
		if ok {
			n++
		}
	}
	return n
}

// ScoredCandidate pairs a candidate with its similarity to the reference car.
type ScoredCandidate struct {
	Score     float64
	Candidate *Listing
	Quality   MatchQuality
}

// SimilarListing is a ranked candidate as reported to callers.
type SimilarListing struct {
	*Listing
	Score        float64      `json:"score"`
	MatchQuality MatchQuality `json:"match_quality"`
}

// PriceVerdict is the success payload of an analysis.
type PriceVerdict struct {
	AveragePrice         float64           `json:"average_price"`
	CountSimilar         int               `json:"count_similar"`
	PercentDiff          float64           `json:"percent_diff"`
	IsCheaper            bool              `json:"is_cheaper"`
	ComparisonQuality    ComparisonQuality `json:"comparison_quality"`
	QualityNote          string            `json:"quality_note,omitempty"`
	HighQualityMatches   int               `json:"high_quality_matches"`
	MediumQualityMatches int               `json:"medium_quality_matches"`
	TopSimilar           []*SimilarListing `json:"top_similar"`
}

// AnalysisError is the failure payload of an analysis.
type AnalysisError struct {
	Message        string     `json:"error"`
	Kind           ErrorKind  `json:"error_kind"`
	SampleListings []*Listing `json:"sample_listings"`
	SampleTitles   []string   `json:"sample_titles"`
}

// AnalysisResult holds exactly one of AnalysisError or PriceVerdict.
// Both are embedded so the JSON form is flat.
type AnalysisResult struct {
	*AnalysisError
	*PriceVerdict
}

// Failed reports whether the result is the error variant.
func (r *AnalysisResult) Failed() bool {
	return r.AnalysisError != nil
}
