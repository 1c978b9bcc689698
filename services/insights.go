package services

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"car-evaluator/models"
	"car-evaluator/utils"
)

// InsightService summarises the scraped market before the price comparison.
type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Generate builds a MarketSummary. Listings without a positive price count
// towards the totals but not the price statistics.
func (s *InsightService) Generate(listings []*models.Listing) *models.MarketSummary {
	report := &models.MarketSummary{
		ListingsByCity:       make(map[string]int),
		ListingsByEngineType: make(map[string]int),
	}

	var prices []int
	for _, l := range listings {
		if l == nil {
			continue
		}
		report.TotalListings++
		if l.City != "" {
			report.ListingsByCity[l.City]++
		}
		if l.EngineType != "" {
			report.ListingsByEngineType[l.EngineType]++
		}
		if l.Price == nil || *l.Price <= 0 {
			continue
		}

		price := *l.Price
		prices = append(prices, price)
		if report.Cheapest == nil || price < *report.Cheapest.Price {
			report.Cheapest = l
		}
		if report.MostExpensive == nil || price > *report.MostExpensive.Price {
			report.MostExpensive = l
		}
	}

	report.PricedListings = len(prices)
	if len(prices) == 0 {
		return report
	}

	sort.Ints(prices)
	var total float64
	for _, p := range prices {
		total += float64(p)
	}
	report.AveragePrice = round(total/float64(len(prices)), 2)
	report.MinPrice = prices[0]
	report.MaxPrice = prices[len(prices)-1]

	mid := len(prices) / 2
	if len(prices)%2 == 0 {
		report.MedianPrice = round(float64(prices[mid-1]+prices[mid])/2, 2)
	} else {
		report.MedianPrice = float64(prices[mid])
	}

	s.logger.Debug("[insights] %d listings, %d priced, avg %.2f", report.TotalListings, report.PricedListings, report.AveragePrice)
	return report
}

// Print writes the summary in the terminal layout used by Printer.
func (s *InsightService) Print(w io.Writer, r *models.MarketSummary) {
	sep := strings.Repeat("═", 72)
	thin := strings.Repeat("─", 72)
	title := color.New(color.FgMagenta, color.Bold)
	heading := color.New(color.FgYellow, color.Bold)
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen, color.Bold)

	fmt.Fprintln(w)
	title.Fprintln(w, sep)
	title.Fprintln(w, "  📊 MARKET OVERVIEW")
	title.Fprintln(w, sep)
	fmt.Fprintln(w)

	heading.Fprintln(w, "  Overview")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Listings scraped : %s\n", bold.Sprint(r.TotalListings))
	fmt.Fprintf(w, "  With a price     : %s\n", bold.Sprint(r.PricedListings))
	fmt.Fprintln(w)

	heading.Fprintln(w, "  Price Statistics")
	fmt.Fprintf(w, "  %s\n", thin)
	if r.PricedListings > 0 {
		fmt.Fprintf(w, "  Average price : %s\n", green.Sprintf("%.2f€", r.AveragePrice))
		fmt.Fprintf(w, "  Median price  : %s\n", green.Sprintf("%.2f€", r.MedianPrice))
		fmt.Fprintf(w, "  Minimum price : %s\n", green.Sprintf("%d€", r.MinPrice))
		fmt.Fprintf(w, "  Maximum price : %s\n", green.Sprintf("%d€", r.MaxPrice))
	} else {
		fmt.Fprintln(w, "  No price data available")
	}
	fmt.Fprintln(w)

	if r.Cheapest != nil {
		heading.Fprintln(w, "  Cheapest Listing")
		fmt.Fprintf(w, "  %s\n", thin)
		fmt.Fprintf(w, "  %s\n", truncate(r.Cheapest.Title, 60))
		fmt.Fprintf(w, "  %s | %skm | %s€\n",
			models.IntValue(r.Cheapest.Year), models.IntValue(r.Cheapest.Mileage), models.IntValue(r.Cheapest.Price))
		fmt.Fprintln(w)
	}

	printCounts(w, heading, thin, "Listings by City", r.ListingsByCity)
	printCounts(w, heading, thin, "Listings by Engine Type", r.ListingsByEngineType)

	title.Fprintln(w, sep)
	fmt.Fprintln(w)
}

func printCounts(w io.Writer, heading *color.Color, thin, label string, counts map[string]int) {
	heading.Fprintf(w, "  %s\n", label)
	fmt.Fprintf(w, "  %s\n", thin)
	if len(counts) == 0 {
		fmt.Fprintln(w, "  No data")
		fmt.Fprintln(w)
		return
	}

	type keyCount struct {
		key   string
		count int
	}
	rows := make([]keyCount, 0, len(counts))
	for k, c := range counts {
		rows = append(rows, keyCount{k, c})
	}
	// count descending, then name for a stable layout
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].count != rows[j].count {
			return rows[i].count > rows[j].count
		}
		return rows[i].key < rows[j].key
	})
	for _, row := range rows {
		bar := strings.Repeat("█", row.count)
		fmt.Fprintf(w, "  %-30s %s (%d)\n", truncate(row.key, 28), bar, row.count)
	}
	fmt.Fprintln(w)
}
