package recipe

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"mealcart/internal/grocery"
)

// Store defines the interface for recipe data operations.
type Store interface {
	GetRecipe(ctx context.Context, id string) (*Recipe, error)
	SaveRecipe(ctx context.Context, recipe *Recipe) error
	ListRecipes(ctx context.Context, cuisine string) ([]*Recipe, error)
}

// PostgresStore implements the Store interface for PostgreSQL.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore creates a recipe store on an existing connection and
// ensures the schema exists.
func NewPostgresStore(db *sqlx.DB) (*PostgresStore, error) {
	schema := `
	CREATE TABLE IF NOT EXISTS recipes (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		servings DOUBLE PRECISION NOT NULL DEFAULT 1,
		ingredients JSONB NOT NULL,
		instructions JSONB NOT NULL,
		cuisine TEXT NOT NULL DEFAULT '',
		cooking_time TEXT NOT NULL DEFAULT ''
	);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create recipes table: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// GetRecipe retrieves a recipe by id, or nil when it does not exist.
func (s *PostgresStore) GetRecipe(ctx context.Context, id string) (*Recipe, error) {
	var r Recipe
	var ingredientsJSON, instructionsJSON []byte

	err := s.db.QueryRowContext(ctx,
		"SELECT id, title, description, servings, ingredients, instructions, cuisine, cooking_time FROM recipes WHERE id = $1",
		id,
	).Scan(
		&r.ID,
		&r.Title,
		&r.Description,
		&r.Servings,
		&ingredientsJSON,
		&instructionsJSON,
		&r.Cuisine,
		&r.CookingTime,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Recipe not found
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}

	if err := decodeRecipeJSON(&r, ingredientsJSON, instructionsJSON); err != nil {
		return nil, err
	}
	return &r, nil
}

// SaveRecipe saves a recipe to the database.
func (s *PostgresStore) SaveRecipe(ctx context.Context, recipe *Recipe) error {
	ingredientsJSON, err := json.Marshal(recipe.Ingredients)
	if err != nil {
		return fmt.Errorf("failed to marshal ingredients: %w", err)
	}
	instructionsJSON, err := json.Marshal(recipe.Instructions)
	if err != nil {
		return fmt.Errorf("failed to marshal instructions: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO recipes (id, title, description, servings, ingredients, instructions, cuisine, cooking_time) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) ON CONFLICT (id) DO UPDATE SET title = $2, description = $3, servings = $4, ingredients = $5, instructions = $6, cuisine = $7, cooking_time = $8",
		recipe.ID,
		recipe.Title,
		recipe.Description,
		recipe.Servings,
		ingredientsJSON,
		instructionsJSON,
		recipe.Cuisine,
		recipe.CookingTime,
	)
	if err != nil {
		return fmt.Errorf("failed to save recipe: %w", err)
	}
	return nil
}

// ListRecipes retrieves saved recipes, optionally filtered by cuisine.
func (s *PostgresStore) ListRecipes(ctx context.Context, cuisine string) ([]*Recipe, error) {
	query := "SELECT id, title, description, servings, ingredients, instructions, cuisine, cooking_time FROM recipes"
	var args []interface{}
	if cuisine != "" {
		query += " WHERE cuisine = $1"
		args = append(args, cuisine)
	}
	query += " ORDER BY title"

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer rows.Close()

	var recipes []*Recipe
	for rows.Next() {
		var r Recipe
		var ingredientsJSON, instructionsJSON []byte
		err := rows.Scan(
			&r.ID,
			&r.Title,
			&r.Description,
			&r.Servings,
			&ingredientsJSON,
			&instructionsJSON,
			&r.Cuisine,
			&r.CookingTime,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recipe row: %w", err)
		}
		if err := decodeRecipeJSON(&r, ingredientsJSON, instructionsJSON); err != nil {
			return nil, err
		}
		recipes = append(recipes, &r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return recipes, nil
}

// decodeRecipeJSON decodes the JSONB columns into typed values, dropping
// ingredients with unknown units so untyped rows never reach core logic.
func decodeRecipeJSON(r *Recipe, ingredientsJSON, instructionsJSON []byte) error {
	if err := json.Unmarshal(ingredientsJSON, &r.Ingredients); err != nil {
		return fmt.Errorf("failed to unmarshal ingredients: %w", err)
	}
	if err := json.Unmarshal(instructionsJSON, &r.Instructions); err != nil {
		return fmt.Errorf("failed to unmarshal instructions: %w", err)
	}

	kept := r.Ingredients[:0]
	for _, ing := range r.Ingredients {
		if grocery.IsValidUnit(ing.Unit) {
			kept = append(kept, ing)
		}
	}
	r.Ingredients = kept
	return nil
}
