package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"car-evaluator/config"
	"car-evaluator/models"
	"car-evaluator/services"
	"car-evaluator/storage"
)

type analyzeOptions struct {
	car          carFlags
	listingsPath string
	fromDB       bool
	output       string
}

// NewAnalyzeCmd creates the analyze command
func NewAnalyzeCmd() *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Price-check a car against saved listings without scraping",
		Long: `Ranks previously collected listings against your car. Listings come either
from a JSON array (as returned by POST /api/scrape) or from the PostgreSQL store.`,
		Example: `  car-evaluator analyze --make Opel --model Corsa --year 2010 --mileage 150000 --price 5000 --listings corsa.json
  car-evaluator analyze --make Opel --model Corsa --year 2010 --mileage 150000 --price 5000 --from-db -o yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, opts)
		},
	}

	opts.car.register(cmd)
	cmd.Flags().StringVar(&opts.listingsPath, "listings", "", "JSON file with cleaned listings")
	cmd.Flags().BoolVar(&opts.fromDB, "from-db", false, "Load listings for the make and model from PostgreSQL")
	cmd.Flags().StringVarP(&opts.output, "output", "o", services.FormatHuman, "Output format (human, json, yaml)")
	cmd.MarkFlagsMutuallyExclusive("listings", "from-db")
	cmd.MarkFlagsOneRequired("listings", "from-db")

	return cmd
}

func runAnalyze(cmd *cobra.Command, opts *analyzeOptions) error {
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

	var listings []*models.Listing
	if opts.fromDB {
		ctx, stop := signalContext(cmd.Context())
		defer stop()

		store, err := storage.NewPostgresStore(cfg.DSN())
		if err != nil {
			return err
		}
		defer store.Close()

		var reader storage.ListingReader = store
		if listings, err = reader.FetchByMakeModel(ctx, opts.car.make, opts.car.model); err != nil {
			return err
		}
	} else {
		if listings, err = loadListings(opts.listingsPath); err != nil {
			return err
		}
	}
	logger.Info("Loaded %d listings", len(listings))

	res := services.NewAnalyzer(logger, policy).Analyze(ref, listings)
	return services.NewPrinter(cmd.OutOrStdout()).Render(ref, res, opts.output)
}

// loadListings reads a JSON array of cleaned listings.
func loadListings(path string) ([]*models.Listing, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("listings: read %q: %w", path, err)
	}

	var listings []*models.Listing
	if err := json.Unmarshal(data, &listings); err != nil {
		return nil, fmt.Errorf("listings: decode %q: %w", path, err)
	}
	if listings == nil {
		return nil, errors.New("listings: file holds no JSON array")
	}
	return listings, nil
}
