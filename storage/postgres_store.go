package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"car-evaluator/models"
)

const (
	listingsTable = "car_listings"
	batchSize     = 50
)

var (
	psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	listingColumns = []string{
		"url", "title", "year", "mileage", "price", "engine", "engine_type", "engine_size",
		"transmission", "body_type", "power", "color", "doors", "seats", "city",
		"seller_type", "fuel_type", "seller_info", "keywords",
	}

	likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
)

// PostgresStore persists cleaned listings to PostgreSQL and reads them back
// for offline analysis.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresStore.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	ps := &PostgresStore{db: db}
	if err := ps.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return ps, nil
}

func (ps *PostgresStore) migrate() error {
	_, err := ps.db.Exec(`
		CREATE TABLE IF NOT EXISTS car_listings (
			id           SERIAL PRIMARY KEY,
			url          TEXT    UNIQUE NOT NULL,
			title        TEXT    NOT NULL DEFAULT '',
			year         INTEGER,
			mileage      INTEGER,
			price        INTEGER,
			engine       TEXT    NOT NULL DEFAULT '',
			engine_type  TEXT    NOT NULL DEFAULT '',
			engine_size  TEXT    NOT NULL DEFAULT '',
			transmission TEXT    NOT NULL DEFAULT '',
			body_type    TEXT    NOT NULL DEFAULT '',
			power        TEXT    NOT NULL DEFAULT '',
			color        TEXT    NOT NULL DEFAULT '',
			doors        TEXT    NOT NULL DEFAULT '',
			seats        TEXT    NOT NULL DEFAULT '',
			city         TEXT    NOT NULL DEFAULT '',
			seller_type  TEXT    NOT NULL DEFAULT '',
			fuel_type    TEXT    NOT NULL DEFAULT '',
			seller_info  TEXT    NOT NULL DEFAULT '',
			keywords     TEXT[]  NOT NULL DEFAULT '{}',
			scraped_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_car_listings_title ON car_listings(title);
		CREATE INDEX IF NOT EXISTS idx_car_listings_price ON car_listings(price);
		CREATE INDEX IF NOT EXISTS idx_car_listings_year  ON car_listings(year);
	`)
	return err
}

// Write saves listings without a caller context.
func (ps *PostgresStore) Write(listings []*models.Listing) error {
	_, err := ps.Save(context.Background(), listings)
	return err
}

// Save upserts listings by URL in batches and returns the number of rows sent.
// Listings without a URL cannot be keyed and are skipped.
func (ps *PostgresStore) Save(ctx context.Context, listings []*models.Listing) (int, error) {
	rows := keyedListings(listings)

	for i := 0; i < len(rows); i += batchSize {
		end := i + batchSize
		if end > len(rows) {
			end = len(rows)
		}

		query, args, err := insertQuery(rows[i:end])
		if err != nil {
			return i, fmt.Errorf("postgres: build insert: %w", err)
		}
		if _, err := ps.db.ExecContext(ctx, query, args...); err != nil {
			return i, fmt.Errorf("postgres: insert batch %d: %w", i/batchSize+1, err)
		}
	}
	return len(rows), nil
}

// FetchByMakeModel returns the stored listings whose title contains both brand and model.
func (ps *PostgresStore) FetchByMakeModel(ctx context.Context, brand, model string) ([]*models.Listing, error) {
	query, args, err := selectQuery(brand, model)
	if err != nil {
		return nil, fmt.Errorf("postgres: build select: %w", err)
	}

	rows, err := ps.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch: %w", err)
	}
	defer rows.Close()

	var listings []*models.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}

// keyedListings drops listings without a URL and keeps the last listing per URL,
// since one upsert statement cannot touch the same row twice.
func keyedListings(listings []*models.Listing) []*models.Listing {
	index := make(map[string]int, len(listings))
	out := make([]*models.Listing, 0, len(listings))
	for _, l := range listings {
		if l == nil || l.URL == "" {
			continue
		}
		if i, ok := index[l.URL]; ok {
			out[i] = l
			continue
		}
		index[l.URL] = len(out)
		out = append(out, l)
	}
	return out
}

func insertQuery(batch []*models.Listing) (string, []interface{}, error) {
	b := psql.Insert(listingsTable).Columns(listingColumns...)
	for _, l := range batch {
		b = b.Values(
			l.URL, l.Title, l.Year, l.Mileage, l.Price, l.Engine, l.EngineType, l.EngineSize,
			l.Transmission, l.BodyType, l.Power, l.Color, l.Doors, l.Seats, l.City,
			l.SellerType, l.FuelType, l.SellerInfo, pq.Array(keywordsOrEmpty(l.Keywords)),
		)
	}
	b = b.Suffix("ON CONFLICT (url) DO UPDATE SET " +
		"price = EXCLUDED.price, mileage = EXCLUDED.mileage, keywords = EXCLUDED.keywords, scraped_at = NOW()")
	return b.ToSql()
}

func selectQuery(brand, model string) (string, []interface{}, error) {
	cond := sq.And{}
	for _, term := range []string{brand, model} {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		cond = append(cond, sq.ILike{"title": "%" + likeEscaper.Replace(term) + "%"})
	}

	b := psql.Select(listingColumns...).From(listingsTable).OrderBy("scraped_at DESC", "id")
	if len(cond) > 0 {
		b = b.Where(cond)
	}
	return b.ToSql()
}

func scanListing(rows *sql.Rows) (*models.Listing, error) {
	var (
		l                    models.Listing
		year, mileage, price sql.NullInt64
		keywords             pq.StringArray
	)
	err := rows.Scan(
		&l.URL, &l.Title, &year, &mileage, &price, &l.Engine, &l.EngineType, &l.EngineSize,
		&l.Transmission, &l.BodyType, &l.Power, &l.Color, &l.Doors, &l.Seats, &l.City,
		&l.SellerType, &l.FuelType, &l.SellerInfo, &keywords,
	)
	if err != nil {
		return nil, err
	}

	l.Year = nullInt(year)
	l.Mileage = nullInt(mileage)
	l.Price = nullInt(price)
	l.Keywords = keywordsOrEmpty(keywords)
	return &l, nil
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	return models.IntPtr(int(v.Int64))
}

func keywordsOrEmpty(kw []string) []string {
	if kw == nil {
		return []string{}
	}
	return kw
}
