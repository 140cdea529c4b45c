package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/NINESTRING/my-place/internal/geo"
)

// Place models a geotagged photo review owned by a specific user.
type Place struct {
	ID                int64     `json:"id"`
	UserID            string    `json:"userId"`
	Image             string    `json:"image"`
	ImageCreationTime time.Time `json:"imageCreationTime"`
	Latitude          float64   `json:"latitude"`
	Longitude         float64   `json:"longitude"`
	Description       string    `json:"description"`
	Rating            int       `json:"rating"`
	Category          int       `json:"category"`
}

// PublicID is the provider-side handle of the image: the final path segment
// of the image reference. Recomputed on demand, never stored.
func (p Place) PublicID() string {
	parts := strings.Split(p.Image, "/")
	return parts[len(parts)-1]
}

// Coordinates returns the place location as a geo point.
func (p Place) Coordinates() geo.Point {
	return geo.Point{Latitude: p.Latitude, Longitude: p.Longitude}
}

const placeColumns = `id, user_id, image, image_creation_time, latitude, longitude, description, rating, category`

func scanPlace(row interface{ Scan(...any) error }) (Place, error) {
	var p Place
	err := row.Scan(&p.ID, &p.UserID, &p.Image, &p.ImageCreationTime,
		&p.Latitude, &p.Longitude, &p.Description, &p.Rating, &p.Category)
	return p, err
}

// CreatePlace inserts a new place owned by userID and returns the stored record.
func (s *Store) CreatePlace(ctx context.Context, userID string, place Place) (Place, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO places (user_id, image, image_creation_time, latitude, longitude, description, rating, category)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, userID, place.Image, place.ImageCreationTime, place.Latitude, place.Longitude,
		place.Description, place.Rating, place.Category).Scan(&place.ID)
	if err != nil {
		return Place{}, fmt.Errorf("insert place: %w", err)
	}

	place.UserID = userID
	return place, nil
}

// PlaceByID retrieves a single place by ID.
func (s *Store) PlaceByID(ctx context.Context, id int64) (Place, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+placeColumns+`
		FROM places
		WHERE id = $1
	`, id)

	place, err := scanPlace(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Place{}, ErrPlaceNotFound
	}
	if err != nil {
		return Place{}, fmt.Errorf("select place: %w", err)
	}
	return place, nil
}

// PlacesByBounds lists places whose coordinates fall inside the closed
// rectangle, capped at limit.
func (s *Store) PlacesByBounds(ctx context.Context, bounds geo.Bounds, limit int) ([]Place, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+placeColumns+`
		FROM places
		WHERE latitude >= $1 AND latitude <= $2
		  AND longitude >= $3 AND longitude <= $4
		ORDER BY id ASC
		LIMIT $5
	`, bounds.SW.Latitude, bounds.NE.Latitude, bounds.SW.Longitude, bounds.NE.Longitude, limit)
	if err != nil {
		return nil, fmt.Errorf("select places by bounds: %w", err)
	}
	defer rows.Close()

	return collectPlaces(rows)
}

// AllPlaces lists places without a spatial filter, capped at limit.
func (s *Store) AllPlaces(ctx context.Context, limit int) ([]Place, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+placeColumns+`
		FROM places
		ORDER BY id ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("select places: %w", err)
	}
	defer rows.Close()

	return collectPlaces(rows)
}

// NearbyPlaces lists places inside the rectangle enclosing a circle of
// radiusMeters around the origin, excluding the origin record itself.
func (s *Store) NearbyPlaces(ctx context.Context, origin Place, radiusMeters float64, limit int) ([]Place, error) {
	bounds := geo.BoundsAround(origin.Coordinates(), radiusMeters)

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+placeColumns+`
		FROM places
		WHERE latitude >= $1 AND latitude <= $2
		  AND longitude >= $3 AND longitude <= $4
		  AND id <> $5
		ORDER BY id ASC
		LIMIT $6
	`, bounds.SW.Latitude, bounds.NE.Latitude, bounds.SW.Longitude, bounds.NE.Longitude, origin.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("select nearby places: %w", err)
	}
	defer rows.Close()

	return collectPlaces(rows)
}

// UpdatePlace overwrites the mutable fields of a place. The statement is
// scoped by owner as well as id, so a missing record and a record owned by
// someone else are the same ErrPlaceNotFound.
func (s *Store) UpdatePlace(ctx context.Context, userID string, id int64, place Place) (Place, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE places
		SET image = $1, image_creation_time = $2, latitude = $3, longitude = $4,
		    description = $5, rating = $6, category = $7
		WHERE id = $8 AND user_id = $9
		RETURNING `+placeColumns+`
	`, place.Image, place.ImageCreationTime, place.Latitude, place.Longitude,
		place.Description, place.Rating, place.Category, id, userID)

	updated, err := scanPlace(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Place{}, ErrPlaceNotFound
	}
	if err != nil {
		return Place{}, fmt.Errorf("update place: %w", err)
	}
	return updated, nil
}

// DeletePlace removes a place owned by userID. Returns false when no row
// matched, whether the place is missing or owned by another user.
func (s *Store) DeletePlace(ctx context.Context, userID string, id int64) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM places WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete place: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete place: %w", err)
	}
	return rows > 0, nil
}

func collectPlaces(rows *sql.Rows) ([]Place, error) {
	var places []Place
	for rows.Next() {
		place, err := scanPlace(rows)
		if err != nil {
			return nil, fmt.Errorf("scan place: %w", err)
		}
		places = append(places, place)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate places: %w", err)
	}
	return places, nil
}
