package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/NINESTRING/my-place/internal/store"
)

func bootstrapDemoData(ctx context.Context, db *sql.DB, dataStore *store.Store) error {
	if err := ensureDemoUser(ctx, dataStore); err != nil {
		return err
	}
	return ensureDemoPlaces(ctx, db, dataStore)
}

func ensureDemoUser(ctx context.Context, dataStore *store.Store) error {
	if err := dataStore.CreateUser(ctx, "demo", "demo123"); err != nil && !errors.Is(err, store.ErrUserExists) {
		return fmt.Errorf("bootstrap demo user: %w", err)
	}
	return nil
}

func ensureDemoPlaces(ctx context.Context, db *sql.DB, dataStore *store.Store) error {
	const username = "demo"

	placesTableExists, err := tableExists(ctx, db, "places")
	if err != nil {
		return fmt.Errorf("check places table: %w", err)
	}
	if !placesTableExists {
		return nil
	}

	var count int
	if err := db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM places
		WHERE user_id = $1
	`, username).Scan(&count); err != nil {
		return fmt.Errorf("count demo places: %w", err)
	}
	if count > 0 {
		return nil
	}

	taken := time.Date(2024, time.May, 12, 14, 30, 0, 0, time.UTC)

	places := []store.Place{
		{
			Image:             "https://media.example.com/demo/namsan-tower.jpg",
			ImageCreationTime: taken,
			Latitude:          37.5512,
			Longitude:         126.9882,
			Description:       "N Seoul Tower at sunset, worth the cable car ride",
			Rating:            5,
			Category:          1,
		},
		{
			Image:             "https://media.example.com/demo/gwangjang-market.jpg",
			ImageCreationTime: taken.Add(26 * time.Hour),
			Latitude:          37.5700,
			Longitude:         126.9996,
			Description:       "Bindaetteok stall in Gwangjang Market",
			Rating:            4,
			Category:          2,
		},
		{
			Image:             "https://media.example.com/demo/bukhansan.jpg",
			ImageCreationTime: taken.Add(72 * time.Hour),
			Latitude:          37.6584,
			Longitude:         126.9776,
			Description:       "Baegundae peak trail, start early to beat the crowds",
			Rating:            5,
			Category:          3,
		},
	}

	for _, place := range places {
		if _, err := dataStore.CreatePlace(ctx, username, place); err != nil {
			return fmt.Errorf("insert demo place %q: %w", place.Description, err)
		}
	}

	return nil
}

type queryRower interface {
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

func tableExists(ctx context.Context, q queryRower, table string) (bool, error) {
	var name sql.NullString
	if err := q.QueryRowContext(ctx, `SELECT to_regclass($1)`, table).Scan(&name); err != nil {
		return false, err
	}
	return name.Valid, nil
}
