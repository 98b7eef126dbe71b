package repository

import (
	"context"
	"fmt"

	"geosearch-api/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema creates the restaurants table with a geography column and its GiST index.
const Schema = `
	CREATE EXTENSION IF NOT EXISTS postgis;

	CREATE TABLE IF NOT EXISTS restaurants (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		address     TEXT NOT NULL DEFAULT '',
		type        TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		lat         DOUBLE PRECISION NOT NULL,
		lng         DOUBLE PRECISION NOT NULL,
		geom        GEOGRAPHY(POINT, 4326) NOT NULL
	);
	CREATE INDEX IF NOT EXISTS restaurants_geom_idx ON restaurants USING GIST (geom);
`

// Repository implements spatial restaurant search on PostgreSQL with PostGIS
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Search runs SearchRestaurants and encodes the result as a response envelope.
func (r *Repository) Search(ctx context.Context, q models.SpatialQuery) (*models.Envelope, error) {
	result, err := r.SearchRestaurants(ctx, q)
	if err != nil {
		return nil, err
	}
	return models.EnvelopeOf(result)
}

// SearchRestaurants returns every restaurant within the radius, nearest first.
func (r *Repository) SearchRestaurants(ctx context.Context, q models.SpatialQuery) (*models.ResultSet, error) {
	sql := `
		SELECT
			id,
			name,
			address,
			type,
			description,
			lat,
			lng,
			COUNT(*) OVER () AS total
		FROM restaurants
		WHERE ST_DWithin(geom, ST_SetSRID(ST_MakePoint($2, $1), 4326)::geography, $3::float8 * 1000)
		ORDER BY ST_Distance(geom, ST_SetSRID(ST_MakePoint($2, $1), 4326)::geography) ASC, id
	`

	rows, err := r.db.Query(ctx, sql, q.Latitude, q.Longitude, q.RadiusKm)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to execute spatial query: %w", err)
	}
	defer rows.Close()

	result := &models.ResultSet{Docs: []models.Restaurant{}}
	for rows.Next() {
		var rest models.Restaurant
		var total int
		err := rows.Scan(
			&rest.ID,
			&rest.Name,
			&rest.Address,
			&rest.Type,
			&rest.Description,
			&rest.Lat,
			&rest.Lng,
			&total,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan restaurant: %w", err)
		}
		rest.Location = LocationString(rest.Lat, rest.Lng)
		// every row matches the unscored filter equally
		rest.Score = 1.0
		result.NumFound = total
		result.Docs = append(result.Docs, rest)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating rows: %w", err)
	}

	if len(result.Docs) > 0 {
		maxScore := 1.0
		result.MaxScore = &maxScore
	}
	return result, nil
}

// EnsureSchema creates the PostGIS extension, table and index if missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("repository: failed to create schema: %w", err)
	}
	return nil
}

// Ping checks the pool can reach the database.
func (r *Repository) Ping(ctx context.Context) error {
	if err := r.db.Ping(ctx); err != nil {
		return fmt.Errorf("repository: database ping failed: %w", err)
	}
	return nil
}

// DeleteAll empties the restaurants table.
func (r *Repository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, "TRUNCATE restaurants"); err != nil {
		return fmt.Errorf("repository: failed to truncate restaurants: %w", err)
	}
	return nil
}

// InsertRestaurants upserts restaurants in a single batch round trip.
func (r *Repository) InsertRestaurants(ctx context.Context, restaurants []models.Restaurant) error {
	batch := &pgx.Batch{}
	for _, rest := range restaurants {
		batch.Queue(`
			INSERT INTO restaurants (id, name, address, type, description, lat, lng, geom)
			VALUES ($1, $2, $3, $4, $5, $6, $7, ST_SetSRID(ST_MakePoint($7, $6), 4326)::geography)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				address = EXCLUDED.address,
				type = EXCLUDED.type,
				description = EXCLUDED.description,
				lat = EXCLUDED.lat,
				lng = EXCLUDED.lng,
				geom = EXCLUDED.geom`,
			rest.ID, rest.Name, rest.Address, rest.Type, rest.Description, rest.Lat, rest.Lng,
		)
	}

	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("repository: failed to insert restaurants: %w", err)
	}
	return nil
}

// Count returns the number of stored restaurants.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM restaurants").Scan(&count); err != nil {
		return 0, fmt.Errorf("repository: failed to count restaurants: %w", err)
	}
	return count, nil
}
