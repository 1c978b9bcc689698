package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompletePromptsForMissingValues(t *testing.T) {
	f := &carFlags{make: "  Opel "}
	in := strings.NewReader("Corsa\nabc\n2010\n\n150.000\n5.000 €\n")
	var out bytes.Buffer

	require.NoError(t, f.complete(in, &out))

	assert.Equal(t, carFlags{make: "Opel", model: "Corsa", year: 2010, mileage: 150000, price: 5000}, *f)
	assert.NotContains(t, out.String(), "Make:")
	assert.Contains(t, out.String(), `"abc" is not a positive number`)
	assert.Equal(t, 2, strings.Count(out.String(), "Mileage (km): "), "blank answers are asked again")
}

func TestCompleteSkipsFlagValues(t *testing.T) {
	f := &carFlags{make: "Opel", model: "Corsa", year: 2010, mileage: 150000, price: 5000}
	var out bytes.Buffer

	require.NoError(t, f.complete(strings.NewReader(""), &out))
	assert.Empty(t, out.String())

	car := f.inputCar()
	assert.Equal(t, "Opel Corsa", car.Title)
	assert.Equal(t, 5000, *car.Price)
}

func TestCompleteStopsAtEOF(t *testing.T) {
	f := &carFlags{}

	err := f.complete(strings.NewReader("Opel\n"), io.Discard)

	require.Error(t, err)
	assert.ErrorIs(t, err, io.EOF)
	assert.Contains(t, err.Error(), "read model")
}

func TestValidateOutput(t *testing.T) {
	for _, format := range []string{"human", "json", "yaml"} {
		assert.NoError(t, validateOutput(format), format)
	}
	assert.ErrorContains(t, validateOutput("table"), `unknown output format "table"`)
}

const listingsJSON = `[
  {"title": "Opel Corsa 1.6 TDI", "year": 2010, "mileage": 150000, "price": 5500, "engine_type": "diesel",
   "transmission": "manual", "body_type": "hatchback", "engine_size": "1.6", "keywords": ["klima"]},
  {"title": "Opel Corsa 1.4", "year": 2010, "mileage": 160000, "price": 4800, "engine_type": "petrol",
   "transmission": "manual", "body_type": "hatchback", "engine_size": "1.4", "keywords": []},
  {"title": "VW Golf", "year": 2015, "mileage": 80000, "price": 12000, "engine_type": "petrol",
   "transmission": "automatic", "body_type": "hatchback", "engine_size": "2.0", "keywords": []}
]`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadListings(t *testing.T) {
	listings, err := loadListings(writeFile(t, "corsa.json", listingsJSON))
	require.NoError(t, err)
	require.Len(t, listings, 3)
	assert.Equal(t, "Opel Corsa 1.4", listings[1].Title)
	assert.Equal(t, 4800, *listings[1].Price)

	_, err = loadListings(writeFile(t, "null.json", "null"))
	assert.ErrorContains(t, err, "no JSON array")

	_, err = loadListings(writeFile(t, "bad.json", "{"))
	assert.ErrorContains(t, err, "listings: decode")

	_, err = loadListings(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "listings: read")
}

func TestAnalyzeCommandWithListingsFile(t *testing.T) {
	t.Setenv("SCORING_POLICY_PATH", "")
	path := writeFile(t, "corsa.json", listingsJSON)

	cmd := NewAnalyzeCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{
		"--make", "Opel", "--model", "Corsa",
		"--year", "2010", "--mileage", "150000", "--price", "5000",
		"--listings", path, "-o", "json",
	})

	require.NoError(t, cmd.Execute())

	var res map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	// flags carry no fuel, gearbox or body, so the Golf scores 0 and is dropped
	assert.Equal(t, 5150.0, res["average_price"])
	assert.Equal(t, true, res["is_cheaper"])
	assert.EqualValues(t, 2, res["count_similar"])
	for _, entry := range res["top_similar"].([]any) {
		assert.NotEqual(t, "VW Golf", entry.(map[string]any)["title"])
	}
}

func TestAnalyzeCommandNeedsOneSource(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"no source", nil, "at least one of the flags"},
		{"both sources", []string{"--listings", "x.json", "--from-db"}, "none of the others can be"},
		{"bad output", []string{"--listings", "x.json", "-o", "xml"}, "unknown output format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewAnalyzeCmd()
			cmd.SetOut(io.Discard)
			cmd.SetErr(io.Discard)
			cmd.SetArgs(tt.args)

			err := cmd.Execute()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
