// Package profile serves ingredient unit profiles: curated, read-only
// reference data keyed by normalized ingredient name. Profiles are
// maintained out-of-band; this package only reads them.
package profile

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"mealcart/internal/grocery"
)

// PostgresStore reads unit profiles from PostgreSQL.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore creates a profile store on an existing connection and
// ensures the schema exists.
func NewPostgresStore(db *sqlx.DB) (*PostgresStore, error) {
	schema := `
	CREATE TABLE IF NOT EXISTS ingredient_unit_profiles (
		name_normalized TEXT PRIMARY KEY,
		canonical_unit TEXT NOT NULL,
		grams_per_count DOUBLE PRECISION,
		ml_per_count DOUBLE PRECISION,
		pack_size_amount DOUBLE PRECISION,
		pack_size_unit TEXT,
		display_name TEXT,
		exclude_always BOOLEAN NOT NULL DEFAULT FALSE,
		pantry_staple BOOLEAN NOT NULL DEFAULT FALSE,
		buy_unit_label TEXT
	);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create ingredient_unit_profiles table: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// profileRow is the raw storage shape; nullable columns are decoded into
// the typed grocery.UnitProfile before they reach any core logic.
type profileRow struct {
	NameNormalized string          `db:"name_normalized"`
	CanonicalUnit  string          `db:"canonical_unit"`
	GramsPerCount  sql.NullFloat64 `db:"grams_per_count"`
	MlPerCount     sql.NullFloat64 `db:"ml_per_count"`
	PackSizeAmount sql.NullFloat64 `db:"pack_size_amount"`
	PackSizeUnit   sql.NullString  `db:"pack_size_unit"`
	DisplayName    sql.NullString  `db:"display_name"`
	ExcludeAlways  bool            `db:"exclude_always"`
	PantryStaple   bool            `db:"pantry_staple"`
	BuyUnitLabel   sql.NullString  `db:"buy_unit_label"`
}

func (r profileRow) toProfile() (grocery.UnitProfile, bool) {
	unit := grocery.Unit(r.CanonicalUnit)
	if !grocery.IsValidUnit(unit) {
		return grocery.UnitProfile{}, false
	}

	p := grocery.UnitProfile{
		NameNormalized: r.NameNormalized,
		CanonicalUnit:  unit,
		DisplayName:    r.DisplayName.String,
		ExcludeAlways:  r.ExcludeAlways,
		PantryStaple:   r.PantryStaple,
		BuyUnitLabel:   r.BuyUnitLabel.String,
	}
	if r.GramsPerCount.Valid {
		v := r.GramsPerCount.Float64
		p.GramsPerCount = &v
	}
	if r.MlPerCount.Valid {
		v := r.MlPerCount.Float64
		p.MlPerCount = &v
	}
	if r.PackSizeAmount.Valid {
		v := r.PackSizeAmount.Float64
		p.PackSizeAmount = &v
	}
	if r.PackSizeUnit.Valid {
		u := grocery.Unit(r.PackSizeUnit.String)
		if grocery.IsValidUnit(u) {
			p.PackSizeUnit = &u
		}
	}
	return p, true
}

// ProfilesFor returns the profiles for the given normalized names, keyed
// by name. Names without a profile are simply absent from the result.
func (s *PostgresStore) ProfilesFor(ctx context.Context, namesNormalized []string) (map[string]grocery.UnitProfile, error) {
	profiles := make(map[string]grocery.UnitProfile)
	if len(namesNormalized) == 0 {
		return profiles, nil
	}

	var rows []profileRow
	err := s.db.SelectContext(ctx, &rows,
		"SELECT name_normalized, canonical_unit, grams_per_count, ml_per_count, pack_size_amount, pack_size_unit, display_name, exclude_always, pantry_staple, buy_unit_label FROM ingredient_unit_profiles WHERE name_normalized = ANY($1)",
		pq.Array(namesNormalized),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query unit profiles: %w", err)
	}

	for _, r := range rows {
		if p, ok := r.toProfile(); ok {
			profiles[p.NameNormalized] = p
		}
	}
	return profiles, nil
}
