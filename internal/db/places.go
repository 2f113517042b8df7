package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"nimbus/internal/model"
)

// ErrPlaceNotFound is returned when no place has the requested ID.
var ErrPlaceNotFound = errors.New("place not found")

// ListPlaces returns saved places ordered by name, optionally filtered by
// name or country.
func ListPlaces(db *sql.DB, filter string) ([]model.Place, error) {
	rows, err := db.Query(`
		SELECT id, name, latitude, longitude, COALESCE(country, ''), COALESCE(state, ''), created_at
		FROM places
		WHERE (? = '' OR name LIKE '%' || ? || '%' OR country LIKE '%' || ? || '%')
		ORDER BY name COLLATE NOCASE, id
	`, filter, filter, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list places: %w", err)
	}
	defer rows.Close()

	var places []model.Place
	for rows.Next() {
		p, err := scanPlace(rows)
		if err != nil {
			return nil, err
		}
		places = append(places, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating place rows: %w", err)
	}
	return places, nil
}

// GetPlace retrieves a single place by ID.
func GetPlace(db *sql.DB, id int64) (model.Place, error) {
	row := db.QueryRow(`
		SELECT id, name, latitude, longitude, COALESCE(country, ''), COALESCE(state, ''), created_at
		FROM places
		WHERE id = ?
	`, id)
	p, err := scanPlace(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Place{}, ErrPlaceNotFound
	}
	return p, err
}

// InsertPlace saves a new place and returns its ID.
func InsertPlace(db *sql.DB, p model.NewPlace) (int64, error) {
	result, err := db.Exec(`
		INSERT INTO places (name, latitude, longitude, country, state)
		VALUES (?, ?, ?, ?, ?)
	`, p.Name, p.Lat, p.Lon, nullable(p.Country), nullable(p.State))
	if err != nil {
		return 0, fmt.Errorf("failed to insert place: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}
	return id, nil
}

// InsertPlaceWithID restores a previously deleted place under its old ID.
func InsertPlaceWithID(db *sql.DB, p model.Place) error {
	createdAt := time.Now().UTC().Format(time.RFC3339)
	if !p.CreatedAt.IsZero() {
		createdAt = p.CreatedAt.UTC().Format(time.RFC3339)
	}
	_, err := db.Exec(`
		INSERT INTO places (id, name, latitude, longitude, country, state, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Name, p.Lat, p.Lon, nullable(p.Country), nullable(p.State), createdAt)
	if err != nil {
		return fmt.Errorf("failed to insert place with id: %w", err)
	}
	return nil
}

// DeletePlace removes a place.
func DeletePlace(db *sql.DB, id int64) error {
	result, err := db.Exec(`DELETE FROM places WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete place: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if n == 0 {
		return ErrPlaceNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPlace(s scanner) (model.Place, error) {
	var p model.Place
	var createdAt string
	if err := s.Scan(&p.ID, &p.Name, &p.Lat, &p.Lon, &p.Country, &p.State, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Place{}, err
		}
		return model.Place{}, fmt.Errorf("failed to scan place: %w", err)
	}
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		p.CreatedAt = t
	}
	return p, nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
