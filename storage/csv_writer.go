package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"car-evaluator/models"
)

var csvHeader = []string{
	"title", "year", "mileage", "price", "engine", "engine_type", "engine_size",
	"transmission", "body_type", "power", "color", "doors", "seats", "city",
	"seller_type", "fuel_type", "seller_info", "keywords", "url",
}

// CSVWriter writes cleaned listings to a CSV file.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// Write appends one row per listing. Absent numbers are written as empty cells.
func (c *CSVWriter) Write(listings []*models.Listing) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, l := range listings {
		if l == nil {
			continue
		}
		if err := c.writer.Write(csvRow(l)); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.writer.Flush()
	return c.file.Close()
}

func csvRow(l *models.Listing) []string {
	return []string{
		l.Title,
		intCell(l.Year),
		intCell(l.Mileage),
		intCell(l.Price),
		l.Engine,
		l.EngineType,
		l.EngineSize,
		l.Transmission,
		l.BodyType,
		l.Power,
		l.Color,
		l.Doors,
		l.Seats,
		l.City,
		l.SellerType,
		l.FuelType,
		l.SellerInfo,
		strings.Join(l.Keywords, "; "),
		l.URL,
	}
}

func intCell(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
