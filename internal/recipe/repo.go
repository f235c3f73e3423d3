package recipe

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository looks up stored recipes
type Repository interface {
	Get(ctx context.Context, id string) (*Recipe, error)
	List(ctx context.Context) ([]Recipe, error)
	Save(ctx context.Context, recipe *Recipe) error
	Delete(ctx context.Context, id string) error
}

// NewRepository returns a Postgres repository, or an in-memory one when
// there is no connection
func NewRepository(conn *pgxpool.Pool) Repository {
	if conn == nil {
		return NewMemoryRepository()
	}
	return NewPostgresRepository(conn)
}
