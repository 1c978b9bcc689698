package services

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"car-evaluator/models"
)

func renderResult(t *testing.T, format string, pool func() []*models.Listing) string {
	t.Helper()
	color.NoColor = true
	var buf bytes.Buffer
	ref := inputCorsa()

	require.NoError(t, NewPrinter(&buf).Render(ref, Analyze(ref, pool()), format))
	return buf.String()
}

func TestRenderHumanVerdict(t *testing.T) {
	out := renderResult(t, FormatHuman, marketPool)

	assert.Contains(t, out, "PRICE CHECK: Opel Corsa, 2010, 150000 km, 5000 €")
	assert.Contains(t, out, "32.7% cheaper than the average of 3 most similar listings (avg: 7433.33€)")
	assert.Contains(t, out, "Comparison quality : LOW (1 high, 1 medium)")
	assert.Contains(t, out, lowNote)
	assert.Contains(t, out, "1. Opel Corsa 1.6 TDI")
	assert.Contains(t, out, "Fuel: diesel ✓")
}

func TestRenderHumanFailure(t *testing.T) {
	out := renderResult(t, FormatHuman, func() []*models.Listing {
		return []*models.Listing{{Title: "Fiat Punto", Price: models.IntPtr(3000)}}
	})

	assert.Contains(t, out, "[!] "+noMatchMessage)
	assert.Contains(t, out, "- Fiat Punto | - | -km | 3000€")
}

func TestRenderJSON(t *testing.T) {
	out := renderResult(t, FormatJSON, marketPool)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, 7433.33, doc["average_price"])
	assert.Equal(t, "low", doc["comparison_quality"])
	assert.NotContains(t, doc, "error")

	top := doc["top_similar"].([]any)
	first := top[0].(map[string]any)
	assert.Equal(t, "Opel Corsa 1.6 TDI", first["title"])
	assert.Equal(t, 28.0, first["score"])
	assert.Contains(t, first, "match_quality")

	// absent attributes are still present as keys
	for _, key := range []string{"city", "seller_type", "fuel_type", "url", "engine"} {
		assert.Contains(t, first, key)
	}
	for _, entry := range top[1:] {
		assert.Len(t, entry.(map[string]any), len(first), "top entries share one key set")
	}
}

func TestRenderJSONFailure(t *testing.T) {
	out := renderResult(t, FormatJSON, func() []*models.Listing { return nil })

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, noMatchMessage, doc["error"])
	assert.Equal(t, "no_match", doc["error_kind"])
	assert.Equal(t, []any{}, doc["sample_listings"])
	assert.NotContains(t, doc, "average_price")
}

func TestRenderYAML(t *testing.T) {
	out := renderResult(t, FormatYAML, marketPool)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, 3, doc["count_similar"])
	assert.Equal(t, true, doc["is_cheaper"])
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "Škoda O...", truncate("Škoda Octavia RS", 10))
}
