package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"realestate-pipeline/models"
)

// PostgresStore persists listings and their price history to PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection to PostgreSQL, creates the schema if
// needed, and returns a ready-to-use store.
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
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	s := &PostgresStore{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, fmt.Errorf("postgres: schema: %w", err)
	}

	return s, nil
}

func (s *PostgresStore) ensureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS listings (
			id             BIGSERIAL PRIMARY KEY,
			address        TEXT        NOT NULL DEFAULT '',
			city           TEXT        NOT NULL DEFAULT '',
			state          VARCHAR(2)  NOT NULL DEFAULT 'XX',
			zip_code       TEXT        NOT NULL DEFAULT '',
			price          DOUBLE PRECISION,
			bedrooms       INT         NOT NULL DEFAULT 0,
			bathrooms      INT         NOT NULL DEFAULT 0,
			square_feet    INT         NOT NULL DEFAULT 0,
			property_type  TEXT        NOT NULL DEFAULT '',
			listing_status TEXT        NOT NULL DEFAULT 'active',
			source_name    TEXT        NOT NULL DEFAULT '',
			latitude       DOUBLE PRECISION,
			longitude      DOUBLE PRECISION,
			scraped_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			url            TEXT UNIQUE NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_listings_city ON listings(city);

		CREATE TABLE IF NOT EXISTS price_history (
			id          BIGSERIAL PRIMARY KEY,
			listing_id  BIGINT NOT NULL REFERENCES listings(id),
			price       DOUBLE PRECISION,
			recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_price_history_listing ON price_history(listing_id);
	`)
	return err
}

// Save runs the upsert-with-history unit of work inside one transaction.
// Any failure rolls back the whole call: no partial history entry, no
// partial field update.
func (s *PostgresStore) Save(ctx context.Context, l *models.Listing) (models.SaveOutcome, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.OutcomeUnchanged, storeErr("begin", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var existingID int64
	var existingPrice sql.NullFloat64
	err = tx.QueryRowContext(ctx,
		`SELECT id, price FROM listings WHERE url = $1 FOR UPDATE`,
		l.URL,
	).Scan(&existingID, &existingPrice)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		err = tx.QueryRowContext(ctx, `
			INSERT INTO listings
				(address, city, state, zip_code, price, bedrooms, bathrooms,
				 square_feet, property_type, listing_status, source_name,
				 latitude, longitude, scraped_at, updated_at, url)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$14,$15)
			RETURNING id`,
			l.Address, l.City, l.State, l.ZipCode, l.Price,
			l.Bedrooms, l.Bathrooms, l.SquareFeet, l.PropertyType,
			l.ListingStatus, l.SourceName, l.Latitude, l.Longitude,
			l.ScrapedAt, l.URL,
		).Scan(&l.ID)
		if err != nil {
			return models.OutcomeUnchanged, storeErr("insert listing", err)
		}
		if err = tx.Commit(); err != nil {
			return models.OutcomeUnchanged, storeErr("commit", err)
		}
		return models.OutcomeCreated, nil

	case err != nil:
		return models.OutcomeUnchanged, storeErr("lookup by url", err)
	}

	l.ID = existingID

	if !nullFloatEqual(existingPrice, l.Price) {
		now := time.Now().UTC()
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO price_history (listing_id, price, recorded_at) VALUES ($1, $2, $3)`,
			existingID, existingPrice, now,
		); err != nil {
			return models.OutcomeUnchanged, storeErr("insert history", err)
		}
		if _, err = tx.ExecContext(ctx,
			`UPDATE listings SET price = $2, listing_status = $3, updated_at = $4 WHERE id = $1`,
			existingID, l.Price, l.ListingStatus, now,
		); err != nil {
			return models.OutcomeUnchanged, storeErr("update listing", err)
		}
		if err = tx.Commit(); err != nil {
			return models.OutcomeUnchanged, storeErr("commit", err)
		}
		return models.OutcomePriceChanged, nil
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE listings SET listing_status = $2 WHERE id = $1`,
		existingID, l.ListingStatus,
	); err != nil {
		return models.OutcomeUnchanged, storeErr("update status", err)
	}
	if err = tx.Commit(); err != nil {
		return models.OutcomeUnchanged, storeErr("commit", err)
	}
	return models.OutcomeUnchanged, nil
}

const listingColumns = `
	id, address, city, state, zip_code, price, bedrooms, bathrooms,
	square_feet, property_type, listing_status, source_name,
	latitude, longitude, scraped_at, updated_at, url`

func scanListing(row interface{ Scan(...any) error }) (*models.Listing, error) {
	l := &models.Listing{}
	err := row.Scan(
		&l.ID, &l.Address, &l.City, &l.State, &l.ZipCode, &l.Price,
		&l.Bedrooms, &l.Bathrooms, &l.SquareFeet, &l.PropertyType,
		&l.ListingStatus, &l.SourceName, &l.Latitude, &l.Longitude,
		&l.ScrapedAt, &l.UpdatedAt, &l.URL,
	)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// FindByURL returns the listing with the given URL, or nil if none exists.
func (s *PostgresStore) FindByURL(ctx context.Context, url string) (*models.Listing, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT`+listingColumns+` FROM listings WHERE url = $1`, url)
	l, err := scanListing(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("find by url", err)
	}
	return l, nil
}

// ListByCity returns all listings in the given city in insertion order.
func (s *PostgresStore) ListByCity(ctx context.Context, city string) ([]*models.Listing, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT`+listingColumns+` FROM listings WHERE city = $1 ORDER BY id`, city)
	if err != nil {
		return nil, storeErr("list by city", err)
	}
	defer rows.Close()

	var listings []*models.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, storeErr("scan listing", err)
		}
		listings = append(listings, l)
	}
	return listings, storeErr("list by city", rows.Err())
}

// History returns a listing's price history, oldest first.
func (s *PostgresStore) History(ctx context.Context, listingID int64) ([]*models.PriceHistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, listing_id, price, recorded_at
		FROM price_history
		WHERE listing_id = $1
		ORDER BY recorded_at, id`, listingID)
	if err != nil {
		return nil, storeErr("history", err)
	}
	defer rows.Close()

	var entries []*models.PriceHistoryEntry
	for rows.Next() {
		e := &models.PriceHistoryEntry{}
		var price sql.NullFloat64
		if err := rows.Scan(&e.ID, &e.ListingID, &price, &e.RecordedAt); err != nil {
			return nil, storeErr("scan history", err)
		}
		e.Price = price.Float64
		entries = append(entries, e)
	}
	return entries, storeErr("history", rows.Err())
}

// PriceDrops returns listings whose current price is below the most recent
// price recorded in their history.
func (s *PostgresStore) PriceDrops(ctx context.Context) ([]*models.PriceDrop, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT l.address, l.price, h.price
		FROM listings l
		JOIN LATERAL (
			SELECT price FROM price_history
			WHERE listing_id = l.id
			ORDER BY recorded_at DESC, id DESC
			LIMIT 1
		) h ON TRUE
		WHERE l.price IS NOT NULL
		  AND h.price IS NOT NULL
		  AND l.price < h.price`)
	if err != nil {
		return nil, storeErr("price drops", err)
	}
	defer rows.Close()

	var drops []*models.PriceDrop
	for rows.Next() {
		d := &models.PriceDrop{}
		if err := rows.Scan(&d.Address, &d.CurrentPrice, &d.OldPrice); err != nil {
			return nil, storeErr("scan price drop", err)
		}
		d.DropAmount = d.OldPrice - d.CurrentPrice
		drops = append(drops, d)
	}
	return drops, storeErr("price drops", rows.Err())
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

var _ Store = (*PostgresStore)(nil)

func nullFloatEqual(a, b sql.NullFloat64) bool {
	if a.Valid != b.Valid {
		return false
	}
	return !a.Valid || a.Float64 == b.Float64
}
