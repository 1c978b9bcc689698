package services

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ScoringPolicy is the weight table used by the similarity scorer and the
// confidence classifier. Changing a weight changes rankings, so the table is
// versioned and can be loaded from YAML instead of being edited in code.
type ScoringPolicy struct {
	Version string `yaml:"version"`

	TitleToken float64 `yaml:"title_token"`

	EngineTypeMatch   float64 `yaml:"engine_type_match"`
	EngineTypeSimilar float64 `yaml:"engine_type_similar"`

	TransmissionMatch    float64 `yaml:"transmission_match"`
	TransmissionMismatch float64 `yaml:"transmission_mismatch"`

	BodyTypeMatch   float64 `yaml:"body_type_match"`
	BodyTypeSimilar float64 `yaml:"body_type_similar"`

	EngineSizeMatch     float64 `yaml:"engine_size_match"`
	EngineSizeNear      float64 `yaml:"engine_size_near"`
	EngineSizeTolerance float64 `yaml:"engine_size_tolerance"`

	PowerMatch     float64 `yaml:"power_match"`
	PowerNear      float64 `yaml:"power_near"`
	PowerTolerance int     `yaml:"power_tolerance"`

	ColorMatch float64 `yaml:"color_match"`
	DoorsMatch float64 `yaml:"doors_match"`
	SeatsMatch float64 `yaml:"seats_match"`

	// YearPoints[d] is awarded when the years differ by d.
	YearPoints []float64 `yaml:"year_points"`

	// MileageBands are checked in order; the first band whose limit exceeds the difference wins.
	MileageBands []MileageBand `yaml:"mileage_bands"`

	FuelTypeMatch   float64 `yaml:"fuel_type_match"`
	EngineMatch     float64 `yaml:"engine_match"`
	CityMatch       float64 `yaml:"city_match"`
	SellerTypeMatch float64 `yaml:"seller_type_match"`
	KeywordMatch    float64 `yaml:"keyword_match"`

	TopN              int `yaml:"top_n"`
	SampleSize        int `yaml:"sample_size"`
	HighKeyMatches    int `yaml:"high_key_matches"`
	MediumKeyMatches  int `yaml:"medium_key_matches"`
	MinQualityMatches int `yaml:"min_quality_matches"`
}

// MileageBand awards Points when the mileage difference is below Below.
type MileageBand struct {
	Below  int     `yaml:"below"`
	Points float64 `yaml:"points"`
}

// DefaultScoringPolicy returns the reference weight table.
func DefaultScoringPolicy() ScoringPolicy {
	return ScoringPolicy{
		Version: "2024.1",

		TitleToken: 5,

		EngineTypeMatch:   4,
		EngineTypeSimilar: 2,

		TransmissionMatch:    3,
		TransmissionMismatch: -1,

		BodyTypeMatch:   3,
		BodyTypeSimilar: 1,

		EngineSizeMatch:     2,
		EngineSizeNear:      1,
		EngineSizeTolerance: 0.2,

		PowerMatch:     2,
		PowerNear:      1,
		PowerTolerance: 10,

		ColorMatch: 1,
		DoorsMatch: 1,
		SeatsMatch: 1,

		YearPoints: []float64{3, 2, 1},

		MileageBands: []MileageBand{
			{Below: 10000, Points: 3},
			{Below: 20000, Points: 2},
			{Below: 50000, Points: 1},
		},

		FuelTypeMatch:   1,
		EngineMatch:     2,
		CityMatch:       1,
		SellerTypeMatch: 1,
		KeywordMatch:    0.5,

		TopN:              5,
		SampleSize:        5,
		HighKeyMatches:    3,
		MediumKeyMatches:  2,
		MinQualityMatches: 2,
	}
}

// LoadScoringPolicy reads a YAML weight table on top of the defaults.
// An empty path returns the defaults.
func LoadScoringPolicy(path string) (ScoringPolicy, error) {
	policy := DefaultScoringPolicy()
	if path == "" {
		return policy, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return policy, fmt.Errorf("policy: read %q: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&policy); err != nil {
		return DefaultScoringPolicy(), fmt.Errorf("policy: decode %q: %w", path, err)
	}

	if err := policy.validate(); err != nil {
		return DefaultScoringPolicy(), fmt.Errorf("policy: %q: %w", path, err)
	}
	return policy, nil
}

func (p ScoringPolicy) validate() error {
	if p.TopN <= 0 {
		return fmt.Errorf("top_n must be positive, got %d", p.TopN)
	}
	if p.SampleSize < 0 {
		return fmt.Errorf("sample_size must not be negative, got %d", p.SampleSize)
	}
	for i := 1; i < len(p.MileageBands); i++ {
		if p.MileageBands[i].Below <= p.MileageBands[i-1].Below {
			return fmt.Errorf("mileage_bands must be ascending")
		}
	}
	return nil
}
