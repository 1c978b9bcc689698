package services

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// digitsRegexp captures the first run of digits
	digitsRegexp = regexp.MustCompile(`\d+`)

	// numberNoise strips thousands separators, the euro sign and the km unit
	numberNoise = strings.NewReplacer(".", "", ",", "", "€", "", "km", "", "KM", "")
)

// ParseInt extracts a non-negative integer from locale-formatted text.
// Examples:
//
//	"12.345 km" → 12345
//	"€5,000"    → 5000
//	"2016."     → 2016
//
// It reports false for empty input, input without digits, or values that overflow int.
func ParseInt(raw string) (int, bool) {
	cleaned := strings.TrimSpace(numberNoise.Replace(raw))
	if cleaned == "" {
		return 0, false
	}

	match := digitsRegexp.FindString(cleaned)
	if match == "" {
		return 0, false
	}

	n, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return n, true
}

// parseIntPtr is ParseInt shaped for optional model fields.
func parseIntPtr(raw string) *int {
	n, ok := ParseInt(raw)
	if !ok {
		return nil
	}
	return &n
}
