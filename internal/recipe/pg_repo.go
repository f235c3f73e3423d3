package recipe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	dbTimeout = time.Second * 3
)

const schema = `
CREATE TABLE IF NOT EXISTS recipes (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	batch_size   DOUBLE PRECISION NOT NULL DEFAULT 0,
	boil_time    INTEGER NOT NULL DEFAULT 0,
	mash_steps   JSONB NOT NULL DEFAULT '[]',
	hop_schedule JSONB NOT NULL DEFAULT '[]',
	ingredients  JSONB NOT NULL DEFAULT '{}',
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const selectColumns = `id, name, batch_size, boil_time, mash_steps, hop_schedule, ingredients`

// ingredients is the JSONB layout of the ingredient lists
type ingredients struct {
	Malts []Ingredient    `json:"malts,omitempty"`
	Hops  []HopIngredient `json:"hops,omitempty"`
	Yeast []Ingredient    `json:"yeast,omitempty"`
}

// PostgresRepository stores recipes in the recipes table
type PostgresRepository struct {
	Conn *pgxpool.Pool
}

// NewPostgresRepository creates a repository on conn
func NewPostgresRepository(conn *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{Conn: conn}
}

// EnsureSchema creates the recipes table if it does not exist
func (p *PostgresRepository) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if _, err := p.Conn.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create recipes table: %w", err)
	}
	return nil
}

func (p *PostgresRepository) Get(ctx context.Context, id string) (*Recipe, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	row := p.Conn.QueryRow(ctx, `SELECT `+selectColumns+` FROM recipes WHERE id = $1`, id)
	r, err := scanRecipe(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe %s: %w", id, err)
	}
	return r, nil
}

// List returns every recipe ordered by name
func (p *PostgresRepository) List(ctx context.Context) ([]Recipe, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := p.Conn.Query(ctx, `SELECT `+selectColumns+` FROM recipes ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer rows.Close()

	var out []Recipe
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to read recipe: %w", err)
		}
		out = append(out, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	return out, nil
}

// Save inserts the recipe or replaces the stored one with the same id
func (p *PostgresRepository) Save(ctx context.Context, recipe *Recipe) error {
	if err := recipe.Validate(); err != nil {
		return err
	}

	mashSteps, err := json.Marshal(nonNil(recipe.MashSteps))
	if err != nil {
		return fmt.Errorf("failed to encode mash steps: %w", err)
	}
	hopSchedule, err := json.Marshal(nonNil(recipe.HopSchedule))
	if err != nil {
		return fmt.Errorf("failed to encode hop schedule: %w", err)
	}
	ingr, err := json.Marshal(ingredients{Malts: recipe.Malts, Hops: recipe.Hops, Yeast: recipe.Yeast})
	if err != nil {
		return fmt.Errorf("failed to encode ingredients: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	_, err = p.Conn.Exec(ctx, `
		INSERT INTO recipes (id, name, batch_size, boil_time, mash_steps, hop_schedule, ingredients, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			batch_size = EXCLUDED.batch_size,
			boil_time = EXCLUDED.boil_time,
			mash_steps = EXCLUDED.mash_steps,
			hop_schedule = EXCLUDED.hop_schedule,
			ingredients = EXCLUDED.ingredients,
			updated_at = now()`,
		recipe.ID, recipe.Name, recipe.BatchSize, recipe.BoilMinutes, mashSteps, hopSchedule, ingr)
	if err != nil {
		return fmt.Errorf("failed to save recipe %s: %w", recipe.ID, err)
	}
	return nil
}

func (p *PostgresRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tag, err := p.Conn.Exec(ctx, `DELETE FROM recipes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete recipe %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func scanRecipe(row pgx.Row) (*Recipe, error) {
	var (
		r                                 Recipe
		mashSteps, hopSchedule, ingrBytes []byte
	)
	if err := row.Scan(&r.ID, &r.Name, &r.BatchSize, &r.BoilMinutes, &mashSteps, &hopSchedule, &ingrBytes); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(mashSteps, &r.MashSteps); err != nil {
		return nil, fmt.Errorf("failed to decode mash steps: %w", err)
	}
	if err := json.Unmarshal(hopSchedule, &r.HopSchedule); err != nil {
		return nil, fmt.Errorf("failed to decode hop schedule: %w", err)
	}
	var ingr ingredients
	if err := json.Unmarshal(ingrBytes, &ingr); err != nil {
		return nil, fmt.Errorf("failed to decode ingredients: %w", err)
	}
	r.Malts, r.Hops, r.Yeast = ingr.Malts, ingr.Hops, ingr.Yeast
	return &r, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
