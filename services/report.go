package services

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"car-evaluator/models"
)

// Output formats accepted by Printer.Render.
const (
	FormatHuman = "human"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Printer renders analysis results for the terminal.
type Printer struct {
	w io.Writer
}

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Render writes res in the requested format. Unknown formats fall back to human.
func (p *Printer) Render(ref *models.InputCar, res *models.AnalysisResult, format string) error {
	switch format {
	case FormatJSON:
		out, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("report: encode json: %w", err)
		}
		_, err = fmt.Fprintln(p.w, string(out))
		return err
	case FormatYAML:
		// go through JSON so embedded variants flatten and json field names are kept
		raw, err := json.Marshal(res)
		if err != nil {
			return fmt.Errorf("report: encode yaml: %w", err)
		}
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("report: encode yaml: %w", err)
		}
		out, err := yaml.Marshal(doc)
		if err != nil {
			return fmt.Errorf("report: encode yaml: %w", err)
		}
		_, err = fmt.Fprint(p.w, string(out))
		return err
	default:
		p.printHuman(ref, res)
		return nil
	}
}

func (p *Printer) printHuman(ref *models.InputCar, r *models.AnalysisResult) {
	sep := strings.Repeat("═", 72)
	thin := strings.Repeat("─", 72)
	title := color.New(color.FgMagenta, color.Bold)
	heading := color.New(color.FgYellow, color.Bold)
	good := color.New(color.FgGreen, color.Bold)
	bad := color.New(color.FgRed, color.Bold)

	fmt.Fprintln(p.w)
	title.Fprintln(p.w, sep)
	title.Fprintf(p.w, "  🚗 PRICE CHECK: %s, %s, %s km, %s €\n",
		ref.Title, models.IntValue(ref.Year), models.IntValue(ref.Mileage), models.IntValue(ref.Price))
	title.Fprintln(p.w, sep)
	fmt.Fprintln(p.w)

	if r.Failed() {
		bad.Fprintf(p.w, "  [!] %s\n", r.Message)
		if len(r.SampleListings) > 0 {
			fmt.Fprintln(p.w, "  Sample listings:")
			for _, l := range r.SampleListings {
				if l == nil {
					continue
				}
				fmt.Fprintf(p.w, "    - %s | %s | %skm | %s€\n",
					l.Title, models.IntValue(l.Year), models.IntValue(l.Mileage), models.IntValue(l.Price))
			}
		}
		fmt.Fprintln(p.w)
		return
	}

	heading.Fprintln(p.w, "  Verdict")
	fmt.Fprintf(p.w, "  %s\n", thin)
	if r.IsCheaper {
		good.Fprintf(p.w, "  Your car is %.1f%% cheaper than the average of %d most similar listings (avg: %.2f€). Good deal!\n",
			r.PercentDiff, r.CountSimilar, r.AveragePrice)
	} else {
		bad.Fprintf(p.w, "  Your car is %.1f%% more expensive than the average of %d most similar listings (avg: %.2f€). Not a great deal.\n",
			r.PercentDiff, r.CountSimilar, r.AveragePrice)
	}
	fmt.Fprintf(p.w, "  Comparison quality : %s (%d high, %d medium)\n",
		qualityColor(r.ComparisonQuality).Sprint(strings.ToUpper(string(r.ComparisonQuality))),
		r.HighQualityMatches, r.MediumQualityMatches)
	if r.QualityNote != "" {
		fmt.Fprintf(p.w, "  Note               : %s\n", color.HiBlackString(r.QualityNote))
	}
	fmt.Fprintln(p.w)

	heading.Fprintf(p.w, "  Top %d Most Similar Listings\n", len(r.TopSimilar))
	fmt.Fprintf(p.w, "  %s\n", thin)
	for i, s := range r.TopSimilar {
		fmt.Fprintf(p.w, "  %d. %-40s %6s  %8skm  %7s€  score %.1f\n",
			i+1, truncate(s.Title, 40), models.IntValue(s.Year), models.IntValue(s.Mileage),
			models.IntValue(s.Price), s.Score)
		fmt.Fprintf(p.w, "     %s\n", color.HiBlackString(specLine(s)))
		if s.URL != "" {
			fmt.Fprintf(p.w, "     %s\n", color.CyanString(s.URL))
		}
	}
	fmt.Fprintln(p.w)
	title.Fprintln(p.w, sep)
	fmt.Fprintln(p.w)
}

// specLine summarises the technical fields of a listing, marking matched ones with ✓.
func specLine(s *models.SimilarListing) string {
	parts := make([]string, 0, 8)
	add := func(label, value string, matched bool) {
		if value == "" {
			return
		}
		if matched {
			value += " ✓"
		}
		parts = append(parts, label+": "+value)
	}
	add("Engine", s.Engine, false)
	add("Fuel", s.EngineType, s.MatchQuality.EngineType)
	add("Size", s.EngineSize, s.MatchQuality.EngineSize)
	add("Gearbox", s.Transmission, s.MatchQuality.Transmission)
	add("Body", s.BodyType, s.MatchQuality.BodyType)
	add("Power", s.Power, s.MatchQuality.Power)
	add("City", s.City, false)
	add("Seller", s.SellerType, false)
	if len(parts) == 0 {
		return "no technical details"
	}
	return strings.Join(parts, " | ")
}

func qualityColor(q models.ComparisonQuality) *color.Color {
	switch q {
	case models.QualityHigh:
		return color.New(color.FgGreen, color.Bold)
	case models.QualityMedium:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
