// Package polovni scrapes used-car listings from polovniautomobili.com.
package polovni

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"car-evaluator/config"
	"car-evaluator/models"
	"car-evaluator/utils"
)

const (
	siteBase   = "https://www.polovniautomobili.com"
	searchBase = siteBase + "/auto-oglasi/pretraga"

	// present on every results page that has at least one card
	cardSelector = "a.ga-title"
)

// Query selects the search results to scrape. Pages == 0 scrapes every page
// reported by the pagination controls.
type Query struct {
	Make    string
	Model   string
	PriceTo int
	Pages   int
}

// BuildSearchURL returns the results URL for one page of q.
func BuildSearchURL(q Query, page int) string {
	params := []string{
		"brand=" + url.QueryEscape(strings.ToLower(strings.TrimSpace(q.Make))),
		"model[]=" + url.QueryEscape(strings.ToLower(strings.TrimSpace(q.Model))),
	}
	if q.PriceTo > 0 {
		params = append(params, "price_to="+strconv.Itoa(q.PriceTo))
	}
	params = append(params, "page="+strconv.Itoa(page))
	return searchBase + "?" + strings.Join(params, "&")
}

// Scraper walks the search results for a Query and enriches every card
// with its detail page.
type Scraper struct {
	cfg     *config.Config
	logger  *utils.Logger
	fetcher Fetcher
	retry   *utils.RetryConfig
}

// New creates a ready-to-use Scraper.
func New(cfg *config.Config, logger *utils.Logger, fetcher Fetcher) *Scraper {
	return &Scraper{
		cfg:     cfg,
		logger:  logger,
		fetcher: fetcher,
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
	}
}

// Scrape returns the raw listings for q. It fails only when the first results
// page cannot be loaded; later page and detail failures are logged and skipped.
func (s *Scraper) Scrape(ctx context.Context, q Query) ([]*models.RawListing, error) {
	s.logger.Info("[polovni] Starting scrape — %s %s, price to %d", q.Make, q.Model, q.PriceTo)

	first, err := s.loadPage(ctx, q, 1)
	if err != nil {
		return nil, fmt.Errorf("polovni: page 1: %w", err)
	}

	total := q.Pages
	if total <= 0 {
		total = ParseTotalPages(first)
	}
	s.logger.Info("[polovni] Scraping %d page(s)", total)

	visited := utils.NewURLSet()
	listings := s.collect(first, 1, visited, nil)

	for page := 2; page <= total; page++ {
		if ctx.Err() != nil {
			break
		}
		doc, err := s.loadPage(ctx, q, page)
		if err != nil {
			s.logger.Warn("[polovni] Page %d skipped: %v", page, err)
			continue
		}
		listings = s.collect(doc, page, visited, listings)
	}

	s.logger.Info("[polovni] Collected %d cards (%d unique URLs) — loading detail pages", len(listings), visited.Size())
	s.enrich(ctx, listings)

	if err := ctx.Err(); err != nil {
		return listings, fmt.Errorf("polovni: %w", err)
	}
	s.logger.Info("[polovni] Scrape complete — total raw listings: %d", len(listings))
	return listings, nil
}

func (s *Scraper) loadPage(ctx context.Context, q Query, page int) (*goquery.Document, error) {
	pageURL := BuildSearchURL(q, page)
	s.logger.Debug("[polovni] Loading %s", pageURL)

	var doc *goquery.Document
	err := s.retry.Do(ctx, fmt.Sprintf("search-page-%d", page), func(ctx context.Context) error {
		html, err := s.fetcher.Fetch(ctx, pageURL, cardSelector)
		if err != nil {
			return err
		}
		doc, err = goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			return fmt.Errorf("parse document: %w", err)
		}
		return nil
	})
	return doc, err
}

// collect appends the cards of doc, dropping URLs already seen.
func (s *Scraper) collect(doc *goquery.Document, page int, visited *utils.URLSet, acc []*models.RawListing) []*models.RawListing {
	cards := ParseSearchPage(doc)
	s.logger.Debug("[polovni] Page %d — found %d cards", page, len(cards))

	for _, c := range cards {
		if c.URL != "" && !visited.Add(c.URL) {
			s.logger.Debug("[polovni] Skipping duplicate: %s", c.URL)
			continue
		}
		acc = append(acc, c)
	}
	return acc
}

// enrich visits the detail page of every listing through the rate-limited pool.
// Each job writes only to its own listing.
func (s *Scraper) enrich(ctx context.Context, listings []*models.RawListing) {
	pool := utils.NewWorkerPool(ctx, s.cfg.MaxConcurrency, s.cfg.RateLimitMs)

	var (
		mu     sync.Mutex
		failed int
	)
	for _, listing := range listings {
		l := listing
		if l.URL == "" {
			continue
		}
		pool.Submit(func(ctx context.Context) error {
			detail, err := s.fetchDetail(ctx, l.URL)
			if err != nil {
				s.logger.Warn("[polovni] Detail page failed for %s: %v", l.URL, err)
				mu.Lock()
				failed++
				mu.Unlock()
				return nil
			}
			detail.MergeInto(l)
			s.logger.Debug("[polovni] Enriched: %s", l.Title)
			return nil
		})
	}
	// jobs never return errors; only cancellation ends the pool early
	_ = pool.Wait()

	if failed > 0 {
		s.logger.Warn("[polovni] %d of %d detail pages could not be loaded", failed, len(listings))
	}
}

func (s *Scraper) fetchDetail(ctx context.Context, detailURL string) (Detail, error) {
	var d Detail
	err := s.retry.Do(ctx, "detail-page", func(ctx context.Context) error {
		html, err := s.fetcher.Fetch(ctx, detailURL, "body")
		if err != nil {
			return err
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			return fmt.Errorf("parse document: %w", err)
		}
		d = ParseDetailPage(doc)
		return nil
	})
	return d, err
}
