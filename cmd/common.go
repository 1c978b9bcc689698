package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"car-evaluator/config"
	"car-evaluator/models"
	"car-evaluator/services"
	"car-evaluator/utils"
)

// carFlags holds the reference car given on the command line.
type carFlags struct {
	make    string
	model   string
	year    int
	mileage int
	price   int
}

func (f *carFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.make, "make", "", "Car make (e.g. Opel)")
	cmd.Flags().StringVar(&f.model, "model", "", "Car model (e.g. Corsa)")
	cmd.Flags().IntVar(&f.year, "year", 0, "Production year")
	cmd.Flags().IntVar(&f.mileage, "mileage", 0, "Mileage in km")
	cmd.Flags().IntVar(&f.price, "price", 0, "Asking price in EUR")
}

// complete prompts on out for every value that was not passed as a flag.
func (f *carFlags) complete(in io.Reader, out io.Writer) error {
	r := bufio.NewReader(in)

	var err error
	if strings.TrimSpace(f.make) == "" {
		if f.make, err = promptString(r, out, "Make"); err != nil {
			return err
		}
	}
	if strings.TrimSpace(f.model) == "" {
		if f.model, err = promptString(r, out, "Model"); err != nil {
			return err
		}
	}
	if f.year <= 0 {
		if f.year, err = promptInt(r, out, "Year"); err != nil {
			return err
		}
	}
	if f.mileage <= 0 {
		if f.mileage, err = promptInt(r, out, "Mileage (km)"); err != nil {
			return err
		}
	}
	if f.price <= 0 {
		if f.price, err = promptInt(r, out, "Price (€)"); err != nil {
			return err
		}
	}
	f.make = strings.TrimSpace(f.make)
	f.model = strings.TrimSpace(f.model)
	return nil
}

func (f *carFlags) inputCar() *models.InputCar {
	return models.NewInputCar(f.make, f.model, f.year, f.mileage, f.price)
}

func promptString(r *bufio.Reader, out io.Writer, label string) (string, error) {
	for {
		fmt.Fprintf(out, "%s: ", label)
		line, err := r.ReadString('\n')
		if v := strings.TrimSpace(line); v != "" {
			return v, nil
		}
		if err != nil {
			return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
		}
	}
}

// promptInt accepts locale-formatted numbers such as "150.000".
func promptInt(r *bufio.Reader, out io.Writer, label string) (int, error) {
	for {
		v, err := promptString(r, out, label)
		if err != nil {
			return 0, err
		}
		if n, ok := services.ParseInt(v); ok && n > 0 {
			return n, nil
		}
		fmt.Fprintf(out, "  %q is not a positive number\n", v)
	}
}

func validateOutput(format string) error {
	switch format {
	case services.FormatHuman, services.FormatJSON, services.FormatYAML:
		return nil
	}
	return fmt.Errorf("unknown output format %q (want human, json or yaml)", format)
}

// newLogger keeps stdout clean for machine-readable output.
func newLogger(cfg *config.Config, format string) *utils.Logger {
	logger := utils.NewLogger()
	if format != services.FormatHuman {
		logger = utils.NewLoggerTo(os.Stderr)
	}
	logger.SetDebug(cfg.Debug)
	return logger
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func printHeader(msg string) {
	cyan := color.New(color.FgCyan, color.Bold)
	cyan.Printf("\n🚗 %s\n\n", msg)
}

func printSuccess(msg string) {
	green := color.New(color.FgGreen)
	green.Printf("✓ %s\n", msg)
}

func printError(msg string) {
	red := color.New(color.FgRed)
	red.Printf("✗ %s\n", msg)
}
