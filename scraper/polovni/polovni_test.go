package polovni

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"car-evaluator/config"
	"car-evaluator/utils"
)

// fakeFetcher serves canned HTML by URL and records every request.
type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	fail  map[string]bool
	calls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)
	if f.fail[url] {
		return "", errors.New("timeout")
	}
	html, ok := f.pages[url]
	if !ok {
		return "", fmt.Errorf("unexpected url %s", url)
	}
	return html, nil
}

func (f *fakeFetcher) count(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == url {
			n++
		}
	}
	return n
}

func testConfig() *config.Config {
	return &config.Config{MaxConcurrency: 2, RateLimitMs: 0, MaxRetries: 1}
}

func card(id int, title, price string) string {
	return fmt.Sprintf(`<article class="classified">
  <a class="ga-title" href="/auto-oglasi/%d/x">%s</a>
  <div class="subtitle">Dizel | Manuelni</div>
  <div class="top">2012</div><div class="top">120.000 km</div>
  <span>%s</span>
</article>`, id, title, price)
}

func resultsPage(pagination string, cards ...string) string {
	html := "<html><body>"
	for _, c := range cards {
		html += c
	}
	return html + pagination + "</body></html>"
}

func detailURL(id int) string {
	return fmt.Sprintf("%s/auto-oglasi/%d/x", siteBase, id)
}

func TestScrapeDetectsPagesAndEnriches(t *testing.T) {
	q := Query{Make: "Opel", Model: "Corsa", PriceTo: 6000}
	pagination := `<ul class="pagination"><li><a>1</a></li><li><a>2</a></li></ul>`
	f := &fakeFetcher{pages: map[string]string{
		BuildSearchURL(q, 1): resultsPage(pagination, card(1, "Opel Corsa A", "4.500 €"), card(2, "Opel Corsa B", "5.100 €")),
		// card 2 repeats on page 2 and must be dropped
		BuildSearchURL(q, 2): resultsPage(pagination, card(2, "Opel Corsa B", "5.100 €"), card(3, "Opel Corsa C", "5.900 €")),
		detailURL(1):         `<html><body><dl><dt>Gorivo</dt><dd>Dizel</dd><dt>Boja</dt><dd>Crna</dd></dl></body></html>`,
		detailURL(2):         `<html><body><div class="description">Klima, xenon</div></body></html>`,
		detailURL(3):         `<html><body></body></html>`,
	}}

	listings, err := New(testConfig(), utils.NewDiscardLogger(), f).Scrape(context.Background(), q)

	require.NoError(t, err)
	require.Len(t, listings, 3)
	assert.Equal(t, "Opel Corsa A", listings[0].Title)
	assert.Equal(t, "Opel Corsa B", listings[1].Title)
	assert.Equal(t, "Opel Corsa C", listings[2].Title)

	assert.Equal(t, "Dizel", listings[0].FuelType)
	assert.Equal(t, "Crna", listings[0].Color)
	assert.Equal(t, "Klima, xenon", listings[1].Description)
	assert.Contains(t, listings[1].Keywords, "xenon")

	assert.Equal(t, 1, f.count(BuildSearchURL(q, 1)), "first page is fetched once")
	assert.Equal(t, 1, f.count(detailURL(2)), "duplicate card is not enriched twice")
}

func TestScrapeHonoursExplicitPageCount(t *testing.T) {
	q := Query{Make: "Opel", Model: "Corsa", Pages: 1}
	pagination := `<ul class="pagination"><li><a>1</a></li><li><a>9</a></li></ul>`
	f := &fakeFetcher{pages: map[string]string{
		BuildSearchURL(q, 1): resultsPage(pagination, card(1, "Opel Corsa A", "4.500 €")),
		detailURL(1):         `<html><body></body></html>`,
	}}

	listings, err := New(testConfig(), utils.NewDiscardLogger(), f).Scrape(context.Background(), q)

	require.NoError(t, err)
	assert.Len(t, listings, 1)
	assert.Zero(t, f.count(BuildSearchURL(q, 2)))
}

func TestScrapeFailsWhenFirstPageFails(t *testing.T) {
	q := Query{Make: "Opel", Model: "Corsa"}
	f := &fakeFetcher{fail: map[string]bool{BuildSearchURL(q, 1): true}}

	listings, err := New(testConfig(), utils.NewDiscardLogger(), f).Scrape(context.Background(), q)

	require.Error(t, err)
	assert.ErrorContains(t, err, "polovni: page 1")
	assert.Nil(t, listings)
}

func TestScrapeSkipsFailedPagesAndDetails(t *testing.T) {
	q := Query{Make: "Opel", Model: "Corsa", Pages: 3}
	f := &fakeFetcher{
		pages: map[string]string{
			BuildSearchURL(q, 1): resultsPage("", card(1, "Opel Corsa A", "4.500 €")),
			BuildSearchURL(q, 3): resultsPage("", card(3, "Opel Corsa C", "5.900 €")),
			detailURL(3):         `<html><body><dl><dt>Boja</dt><dd>Siva</dd></dl></body></html>`,
		},
		fail: map[string]bool{BuildSearchURL(q, 2): true, detailURL(1): true},
	}

	listings, err := New(testConfig(), utils.NewDiscardLogger(), f).Scrape(context.Background(), q)

	require.NoError(t, err)
	require.Len(t, listings, 2)
	assert.Equal(t, "4.500 €", listings[0].Price, "card data survives a failed detail page")
	assert.Empty(t, listings[0].Color)
	assert.Equal(t, "Siva", listings[1].Color)
}

func TestScrapeStopsOnCancelledContext(t *testing.T) {
	q := Query{Make: "Opel", Model: "Corsa", Pages: 2}
	f := &fakeFetcher{pages: map[string]string{
		BuildSearchURL(q, 1): resultsPage("", card(1, "Opel Corsa A", "4.500 €")),
	}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(testConfig(), utils.NewDiscardLogger(), f).Scrape(ctx, q)

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
