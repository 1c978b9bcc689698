package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"car-evaluator/config"
	"car-evaluator/models"
	"car-evaluator/scraper/polovni"
	"car-evaluator/services"
	"car-evaluator/storage"
	"car-evaluator/utils"
)

type evaluateOptions struct {
	car      carFlags
	pages    int
	csvPath  string
	saveDB   bool
	insights bool
	output   string
}

// NewEvaluateCmd creates the evaluate command
func NewEvaluateCmd() *cobra.Command {
	opts := &evaluateOptions{}

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Check a car's price against current polovniautomobili.com listings",
		Long: `Scrapes listings for the given make and model up to the asking price,
cleans them, and ranks them against your car to tell whether the price is fair.

Missing values are asked for interactively.`,
		Example: `  car-evaluator evaluate --make Opel --model Corsa --year 2010 --mileage 150000 --price 5000
  car-evaluator evaluate --make "Alfa Romeo" --model 147 --pages 2 -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluate(cmd, opts)
		},
	}

	opts.car.register(cmd)
	cmd.Flags().IntVar(&opts.pages, "pages", -1, "Result pages to scrape (0 = all, default from PAGES_TO_SCRAPE)")
	cmd.Flags().StringVar(&opts.csvPath, "csv", "", "CSV export path (default from CSV_OUTPUT_PATH)")
	cmd.Flags().BoolVar(&opts.saveDB, "save-db", false, "Also save cleaned listings to PostgreSQL")
	cmd.Flags().BoolVar(&opts.insights, "insights", true, "Print a market overview before the verdict")
	cmd.Flags().StringVarP(&opts.output, "output", "o", services.FormatHuman, "Output format (human, json, yaml)")

	return cmd
}

func runEvaluate(cmd *cobra.Command, opts *evaluateOptions) error {
	if err := validateOutput(opts.output); err != nil {
		return err
	}

	cfg := config.Load()
	logger := newLogger(cfg, opts.output)

	policy, err := services.LoadScoringPolicy(cfg.ScoringPolicyPath)
	if err != nil {
		return err
	}

	if err := opts.car.complete(cmd.InOrStdin(), cmd.ErrOrStderr()); err != nil {
		return err
	}
	ref := opts.car.inputCar()
	human := opts.output == services.FormatHuman

	pages := cfg.PagesToScrape
	if opts.pages >= 0 {
		pages = opts.pages
	}
	csvPath := cfg.CSVOutputPath
	if opts.csvPath != "" {
		csvPath = opts.csvPath
	}

	if human {
		printHeader(fmt.Sprintf("Evaluating %s %s (%d, %d km, %d €)",
			opts.car.make, opts.car.model, opts.car.year, opts.car.mileage, opts.car.price))
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	fetcher, err := polovni.NewBrowserFetcher(cfg.ChromeBin, logger)
	if err != nil {
		return err
	}
	defer fetcher.Close()

	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond)
	s.Writer = os.Stderr
	s.Suffix = " Scraping listings..."
	s.Start()

	scraper := polovni.New(cfg, logger, fetcher)
	raw, err := scraper.Scrape(ctx, polovni.Query{
		Make:    opts.car.make,
		Model:   opts.car.model,
		PriceTo: opts.car.price,
		Pages:   pages,
	})
	s.Stop()
	if err != nil && len(raw) == 0 {
		return fmt.Errorf("scrape: %w", err)
	}
	if err != nil {
		logger.Warn("Scrape ended early — continuing with %d listings: %v", len(raw), err)
	}

	listings := services.NewCleaner(logger).Clean(raw)
	if human {
		if len(listings) == 0 {
			printError("No listings found for " + opts.car.make + " " + opts.car.model)
		} else {
			printSuccess(fmt.Sprintf("Scraped and cleaned %d listings", len(listings)))
		}
	}

	saveListings(cfg, logger, listings, csvPath, opts.saveDB)

	if human && opts.insights && len(listings) > 0 {
		insights := services.NewInsightService(logger)
		insights.Print(cmd.OutOrStdout(), insights.Generate(listings))
	}

	res := services.NewAnalyzer(logger, policy).Analyze(ref, listings)
	return services.NewPrinter(cmd.OutOrStdout()).Render(ref, res, opts.output)
}

// saveListings writes listings to every configured sink. Sink failures are
// logged; they never abort an evaluation.
func saveListings(cfg *config.Config, logger *utils.Logger, listings []*models.Listing, csvPath string, saveDB bool) {
	type sink struct {
		name   string
		writer storage.ListingWriter
	}
	var sinks []sink

	csvWriter, err := storage.NewCSVWriter(csvPath)
	if err != nil {
		logger.Error("Failed to create CSV writer: %v", err)
	} else {
		sinks = append(sinks, sink{csvPath, csvWriter})
	}

	if saveDB {
		store, err := storage.NewPostgresStore(cfg.DSN())
		if err != nil {
			logger.Error("Failed to connect to PostgreSQL: %v", err)
			logger.Error("Make sure Docker is running: docker compose up -d")
		} else {
			sinks = append(sinks, sink{"PostgreSQL (table: car_listings)", store})
		}
	}

	for _, s := range sinks {
		if err := s.writer.Write(listings); err != nil {
			logger.Error("Write to %s failed: %v", s.name, err)
		} else {
			logger.Info("Cleaned listings saved to %s", s.name)
		}
		if err := s.writer.Close(); err != nil {
			logger.Warn("Close %s: %v", s.name, err)
		}
	}
}
